// Package buf contains overflow-safe offset arithmetic for code that indexes
// a byte region with untrusted sizes and offsets.
package buf

// AddOverflowSafe adds a and b, returning ok = false when the result would overflow uintptr.
func AddOverflowSafe(a, b uintptr) (uintptr, bool) {
	if a > ^uintptr(0)-b {
		return 0, false
	}
	return a + b, true
}

// AlignUp rounds n up to a multiple of align, which must be a power of two.
// ok is false when the rounded value does not fit in a uintptr.
func AlignUp(n, align uintptr) (uintptr, bool) {
	mask := align - 1
	sum, ok := AddOverflowSafe(n, mask)
	if !ok {
		return 0, false
	}
	return sum &^ mask, true
}

// Span returns the sub-slice [off:off+n] if it fits within len(b). The
// result's capacity is clipped to n so appends cannot spill past the span.
func Span(b []byte, off, n uintptr) ([]byte, bool) {
	if off > uintptr(len(b)) {
		return nil, false
	}
	end, ok := AddOverflowSafe(off, n)
	if !ok || end > uintptr(len(b)) {
		return nil, false
	}
	return b[off:end:end], true
}

// Has reports whether b[off:off+n] is within bounds.
func Has(b []byte, off, n uintptr) bool {
	_, ok := Span(b, off, n)
	return ok
}
