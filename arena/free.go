package arena

// Free releases the block behind ref. Free(Nil) is a no-op.
//
// The freed bytes simply rejoin the surrounding gap: nothing is written to
// them and no free-list entry is created. Freeing a reference that is not
// live returns ErrNotLive (or ErrCorrupt if its header was overwritten since)
// and leaves the arena unchanged.
func (a *Arena) Free(ref Ref) error {
	if ref == Nil {
		return nil
	}
	cur, prev, next, err := a.resolve(ref)
	if err != nil {
		return err
	}
	a.unlink(cur, prev, next)
	a.log.Debug("free", "offset", cur.off, "size", cur.Size)
	return nil
}

// unlink removes cur from the list. prev and next must be the loaded
// neighbours returned by resolve.
func (a *Arena) unlink(cur, prev, next block) {
	if cur.Prev != 0 {
		prev.Next = cur.Next
		a.store(prev)
	}
	if cur.Next != 0 {
		next.Prev = cur.Prev
		a.store(next)
	}
	if cur.Prev == 0 {
		a.head = cur.Next
	}
	if cur.Next == 0 {
		a.tail = cur.Prev
	}
}
