package arena

import (
	"fmt"

	"github.com/joshuapare/arenakit/internal/format"
)

// Block describes one live block as seen by Walk.
type Block struct {
	Ref    Ref // payload reference
	Offset int // header offset from the arena base
	Size   int // payload bytes
	Gap    int // free bytes up to the next block, or to the end of the arena for the tail
}

// End returns the offset of the first byte past the block's payload.
func (b Block) End() int {
	return b.Offset + HeaderBytes + b.Size
}

// Walk calls fn for every live block in address order until fn returns
// false. Each header is verified on the way; a damaged list stops the walk
// with ErrCorrupt.
func (a *Arena) Walk(fn func(Block) bool) error {
	return a.walk(func(b block) bool {
		return fn(Block{
			Ref:    b.ref(),
			Offset: int(b.off),
			Size:   int(b.Size),
			Gap:    int(a.gapAfter(b)),
		})
	})
}

// walk traverses the list from head, checking that every back link and the
// tail agree with the forward links.
func (a *Arena) walk(fn func(block) bool) error {
	if a.head == 0 {
		if a.tail != 0 {
			return fmt.Errorf("%w: tail set on an empty list", ErrCorrupt)
		}
		return nil
	}
	cur, err := a.follow(a.head)
	if err != nil {
		return err
	}
	if cur.Prev != 0 {
		return fmt.Errorf("%w: head at offset %d has a prev link", ErrCorrupt, cur.off)
	}
	for {
		if !fn(cur) {
			return nil
		}
		if cur.Next == 0 {
			if a.addrOf(cur.off) != a.tail {
				return fmt.Errorf("%w: list ends at offset %d but tail is %#x", ErrCorrupt, cur.off, a.tail)
			}
			return nil
		}
		next, err := a.follow(cur.Next)
		if err != nil {
			return err
		}
		if next.Prev != a.addrOf(cur.off) {
			return fmt.Errorf("%w: block at offset %d is not linked back", ErrCorrupt, next.off)
		}
		cur = next
	}
}

// Bytes returns the payload of a live block.
func (a *Arena) Bytes(ref Ref) ([]byte, error) {
	cur, _, _, err := a.resolve(ref)
	if err != nil {
		return nil, err
	}
	return a.payload(ref, cur.Size), nil
}

// Size returns the usable payload size of a live block, which is the
// requested size rounded up to WordSize (or lowered by a shrinking Realloc).
func (a *Arena) Size(ref Ref) (int, error) {
	cur, _, _, err := a.resolve(ref)
	if err != nil {
		return 0, err
	}
	return int(cur.Size), nil
}

// Check verifies every structural invariant of the block list: strictly
// increasing addresses from head to tail, a backward walk from tail that
// visits the same blocks in reverse, blocks inside the region that do not
// overlap, and a valid canary on every header.
func (a *Arena) Check() error {
	if !format.IsWordAligned(a.base) {
		return fmt.Errorf("%w: base %#x is not word aligned", ErrCorrupt, a.base)
	}
	var forward []uintptr
	if err := a.walk(func(b block) bool {
		forward = append(forward, b.off)
		return true
	}); err != nil {
		return err
	}

	if a.tail == 0 {
		return nil
	}
	cur, err := a.follow(a.tail)
	if err != nil {
		return err
	}
	if cur.Next != 0 {
		return fmt.Errorf("%w: tail at offset %d has a next link", ErrCorrupt, cur.off)
	}
	i := len(forward) - 1
	for {
		if i < 0 || forward[i] != cur.off {
			return fmt.Errorf("%w: backward walk diverges at offset %d", ErrCorrupt, cur.off)
		}
		if cur.Prev == 0 {
			break
		}
		prev, err := a.follow(cur.Prev)
		if err != nil {
			return err
		}
		cur = prev
		i--
	}
	if i != 0 {
		return fmt.Errorf("%w: backward walk visited %d of %d blocks", ErrCorrupt, len(forward)-i, len(forward))
	}
	return nil
}
