package arena

import "fmt"

// Realloc resizes the block behind ref and returns the (possibly new)
// reference and payload. Realloc(Nil, size) is Alloc(size).
//
//   - Shrinking, or keeping the size, lowers the header size in place and
//     returns ref. The released tail bytes show up as fragmentation in Info
//     until the next block is freed.
//   - Growing stays in place when the gap after the block covers the
//     difference.
//   - Otherwise a new block is allocated first fit, the old payload is
//     copied into it and the old block is freed.
//
// On ErrOutOfMemory the original block is left intact. Callers must always
// continue with the returned reference.
func (a *Arena) Realloc(ref Ref, size int) (Ref, []byte, error) {
	if ref == Nil {
		return a.Alloc(size)
	}
	padded, err := padSize(size)
	if err != nil {
		return Nil, nil, err
	}
	cur, _, _, err := a.resolve(ref)
	if err != nil {
		return Nil, nil, err
	}

	old := cur.Size
	if padded <= old || a.gapAfter(cur) >= padded-old {
		cur.Size = padded
		a.store(cur)
		a.log.Debug("realloc in place", "offset", cur.off, "from", old, "to", padded)
		return ref, a.payload(ref, padded), nil
	}

	moved, err := a.alloc(padded)
	if err != nil {
		return Nil, nil, err
	}
	copy(a.payload(moved, old), a.payload(ref, old))
	if err := a.Free(ref); err != nil {
		return Nil, nil, fmt.Errorf("realloc: release old block: %w", err)
	}
	a.log.Debug("realloc moved", "from", uintptr(ref), "to", uintptr(moved), "size", padded)
	return moved, a.payload(moved, padded), nil
}
