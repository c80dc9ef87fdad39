package arena

import (
	"fmt"

	"github.com/joshuapare/arenakit/internal/buf"
	"github.com/joshuapare/arenakit/internal/format"
)

// Alloc places a block with at least size payload bytes in the lowest gap
// that can hold it (first fit, address ordered) and returns its reference and
// payload. The payload length is size rounded up to WordSize; its contents
// are whatever the region held before. A zero size is legal and yields a
// unique reference with an empty payload.
//
// When no gap fits, Alloc returns ErrOutOfMemory and the arena is unchanged.
func (a *Arena) Alloc(size int) (Ref, []byte, error) {
	padded, err := padSize(size)
	if err != nil {
		return Nil, nil, err
	}
	ref, err := a.alloc(padded)
	if err != nil {
		return Nil, nil, err
	}
	return ref, a.payload(ref, padded), nil
}

// padSize rounds a caller size up to the word size.
func padSize(size int) (uintptr, error) {
	if size < 0 {
		return 0, fmt.Errorf("%w: %d", ErrBadSize, size)
	}
	padded, ok := buf.AlignUp(uintptr(size), format.WordSize)
	if !ok {
		return 0, fmt.Errorf("%w: size %d overflows", ErrOutOfMemory, size)
	}
	return padded, nil
}

// alloc performs placement for an already padded payload size. Every header
// it is about to rewrite is loaded (and therefore verified) before the first
// write, so a corruption error leaves the region untouched.
func (a *Arena) alloc(padded uintptr) (Ref, error) {
	need, ok := buf.AddOverflowSafe(format.HeaderBytes, padded)
	if !ok || need > a.length {
		return Nil, a.outOfMemory(padded)
	}

	// Empty arena: the whole region is one gap.
	if a.head == 0 {
		if a.tail != 0 {
			return Nil, fmt.Errorf("%w: tail set on an empty list", ErrCorrupt)
		}
		nb := block{off: 0, Header: format.Header{Size: padded}}
		a.store(nb)
		a.head = a.addrOf(nb.off)
		a.tail = a.head
		a.log.Debug("alloc", "size", padded, "offset", nb.off, "placement", "empty")
		return nb.ref(), nil
	}

	head, err := a.follow(a.head)
	if err != nil {
		return Nil, err
	}
	if head.Prev != 0 {
		return Nil, fmt.Errorf("%w: head at offset %d has a prev link", ErrCorrupt, head.off)
	}

	// Gap in front of the first block.
	if head.off >= need {
		nb := block{off: 0, Header: format.Header{Size: padded, Next: a.head}}
		a.store(nb)
		head.Prev = a.addrOf(nb.off)
		a.store(head)
		a.head = head.Prev
		a.log.Debug("alloc", "size", padded, "offset", nb.off, "placement", "head")
		return nb.ref(), nil
	}

	// Interior gaps, lowest address first.
	cur := head
	for cur.Next != 0 {
		next, err := a.follow(cur.Next)
		if err != nil {
			return Nil, err
		}
		if next.Prev != a.addrOf(cur.off) {
			return Nil, fmt.Errorf("%w: block at offset %d is not linked back", ErrCorrupt, next.off)
		}
		if next.off-cur.end() >= need {
			ref := a.insertAfter(cur, &next, padded)
			a.log.Debug("alloc", "size", padded, "offset", cur.end(), "placement", "interior")
			return ref, nil
		}
		cur = next
	}

	// Extend past the tail.
	if a.addrOf(cur.off) != a.tail {
		return Nil, fmt.Errorf("%w: list ends at offset %d but tail is %#x", ErrCorrupt, cur.off, a.tail)
	}
	if a.gapAfter(cur) < need {
		return Nil, a.outOfMemory(padded)
	}
	ref := a.insertAfter(cur, nil, padded)
	a.log.Debug("alloc", "size", padded, "offset", cur.end(), "placement", "tail")
	return ref, nil
}

// insertAfter writes a new header at the end of prev and splices it between
// prev and next (nil when prev is the tail). The new header is written first,
// then the neighbours, then the arena's tail.
func (a *Arena) insertAfter(prev block, next *block, padded uintptr) Ref {
	nb := block{off: prev.end(), Header: format.Header{
		Size: padded,
		Prev: a.addrOf(prev.off),
		Next: prev.Next,
	}}
	a.store(nb)

	self := a.addrOf(nb.off)
	prev.Next = self
	a.store(prev)
	if next != nil {
		next.Prev = self
		a.store(*next)
	} else {
		a.tail = self
	}
	return nb.ref()
}

func (a *Arena) outOfMemory(padded uintptr) error {
	a.log.Debug("alloc failed", "size", padded, "arena", a.length)
	return fmt.Errorf("%w: no gap for %d bytes", ErrOutOfMemory, padded+format.HeaderBytes)
}
