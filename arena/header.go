package arena

import (
	"fmt"

	"github.com/joshuapare/arenakit/internal/buf"
	"github.com/joshuapare/arenakit/internal/format"
)

// block is a decoded header together with its position in the region.
type block struct {
	off uintptr // header offset from base
	format.Header
}

func (b block) ref() Ref {
	return Ref(b.off + format.HeaderBytes)
}

// end is the offset of the first byte past the payload.
func (b block) end() uintptr {
	return b.off + format.HeaderBytes + b.Size
}

func (a *Arena) addrOf(off uintptr) uintptr {
	return a.base + off
}

// load decodes the header at off and verifies it before anyone acts on it:
// the canary must match, the payload must stay inside the region, and the
// links must point at headers strictly before and after this block. The
// ordering check is what keeps every traversal finite on a damaged list.
func (a *Arena) load(off uintptr) (block, error) {
	h, err := format.DecodeHeader(a.mem, off)
	if err != nil {
		return block{}, fmt.Errorf("%w: %w", ErrCorrupt, err)
	}
	b := block{off: off, Header: h}
	if !h.Valid(a.canary) {
		a.log.Warn("canary mismatch", "offset", off, "size", h.Size, "canary", h.Canary)
		return block{}, fmt.Errorf("%w: canary mismatch at offset %d", ErrCorrupt, off)
	}
	if !format.IsWordAligned(h.Size) || h.Size > a.length-off-format.HeaderBytes {
		return block{}, fmt.Errorf("%w: block at offset %d has bad size %d", ErrCorrupt, off, h.Size)
	}
	if h.Prev != 0 {
		p, ok := a.linkOffset(h.Prev)
		if !ok || !buf.Has(a.mem[:off], p, format.HeaderBytes) {
			return block{}, fmt.Errorf("%w: block at offset %d has bad prev link %#x", ErrCorrupt, off, h.Prev)
		}
	}
	if h.Next != 0 {
		n, ok := a.linkOffset(h.Next)
		if !ok || n < b.end() {
			return block{}, fmt.Errorf("%w: block at offset %d has bad next link %#x", ErrCorrupt, off, h.Next)
		}
	}
	return b, nil
}

// linkOffset converts a stored header address into an offset, rejecting
// addresses that cannot hold a header inside the region.
func (a *Arena) linkOffset(addr uintptr) (uintptr, bool) {
	if addr < a.base {
		return 0, false
	}
	off := addr - a.base
	if !format.IsWordAligned(off) || !buf.Has(a.mem, off, format.HeaderBytes) {
		return 0, false
	}
	return off, true
}

// follow loads the header a link points at.
func (a *Arena) follow(addr uintptr) (block, error) {
	off, ok := a.linkOffset(addr)
	if !ok {
		return block{}, fmt.Errorf("%w: link %#x outside arena", ErrCorrupt, addr)
	}
	return a.load(off)
}

// store writes b back and recomputes its canary in the same step.
func (a *Arena) store(b block) {
	format.EncodeHeader(a.mem, b.off, b.Header, a.canary)
}

// gapAfter measures the free bytes between b and the next live header, or
// the end of the region when b is the tail. load guarantees b.Next >= end.
func (a *Arena) gapAfter(b block) uintptr {
	if b.Next != 0 {
		return b.Next - a.base - b.end()
	}
	return a.length - b.end()
}

// payload returns the caller's view of a block's bytes.
func (a *Arena) payload(ref Ref, size uintptr) []byte {
	p, _ := buf.Span(a.mem, uintptr(ref), size)
	return p
}

// resolve maps a caller reference to its live block plus the neighbours that
// link to it. A reference that decodes but is not linked from its neighbours
// (or from head/tail) is stale.
func (a *Arena) resolve(ref Ref) (cur, prev, next block, err error) {
	r := uintptr(ref)
	if r < format.HeaderBytes || r > a.length || !format.IsWordAligned(r) {
		return cur, prev, next, fmt.Errorf("%w: %d", ErrBadRef, r)
	}
	cur, err = a.load(r - format.HeaderBytes)
	if err != nil {
		return cur, prev, next, err
	}
	self := a.addrOf(cur.off)

	if cur.Prev == 0 {
		if a.head != self {
			return cur, prev, next, fmt.Errorf("%w: ref %d", ErrNotLive, r)
		}
	} else {
		if prev, err = a.follow(cur.Prev); err != nil {
			return cur, prev, next, err
		}
		if prev.Next != self {
			return cur, prev, next, fmt.Errorf("%w: ref %d", ErrNotLive, r)
		}
	}

	if cur.Next == 0 {
		if a.tail != self {
			return cur, prev, next, fmt.Errorf("%w: ref %d", ErrNotLive, r)
		}
	} else {
		if next, err = a.follow(cur.Next); err != nil {
			return cur, prev, next, err
		}
		if next.Prev != self {
			return cur, prev, next, fmt.Errorf("%w: ref %d", ErrNotLive, r)
		}
	}
	return cur, prev, next, nil
}
