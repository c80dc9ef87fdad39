package format

// AlignWord returns n aligned up to the next word boundary. The caller is
// responsible for overflow checks; buf.AlignUp is the checked variant.
//
// Example (64-bit):
//
//	AlignWord(0)  = 0
//	AlignWord(1)  = 8
//	AlignWord(8)  = 8
//	AlignWord(10) = 16
func AlignWord(n uintptr) uintptr {
	return (n + WordMask) &^ WordMask
}

// IsWordAligned reports whether n is a multiple of WordSize.
func IsWordAligned(n uintptr) bool {
	return n&WordMask == 0
}
