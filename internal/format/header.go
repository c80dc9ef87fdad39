package format

import "fmt"

// Header is the decoded form of a block header.
//
// Prev and Next are raw addresses of neighbouring headers, not offsets, so a
// header is only meaningful relative to the mapping it was written into.
type Header struct {
	Canary uintptr
	Size   uintptr // payload bytes, excluding the header
	Prev   uintptr
	Next   uintptr
}

// DecodeHeader reads the header located at off within b.
func DecodeHeader(b []byte, off uintptr) (Header, error) {
	if !IsWordAligned(off) {
		return Header{}, fmt.Errorf("header at %d: %w", off, ErrMisaligned)
	}
	if off > uintptr(len(b)) || uintptr(len(b))-off < HeaderBytes {
		return Header{}, fmt.Errorf("header at %d: %w", off, ErrTruncated)
	}
	return Header{
		Canary: ReadWord(b, off+CanaryOffset),
		Size:   ReadWord(b, off+SizeOffset),
		Prev:   ReadWord(b, off+PrevOffset),
		Next:   ReadWord(b, off+NextOffset),
	}, nil
}

// EncodeHeader writes h at off within b, replacing h.Canary with the value
// computed by fn so a header is never stored with a stale tag.
func EncodeHeader(b []byte, off uintptr, h Header, fn CanaryFunc) {
	PutWord(b, off+SizeOffset, h.Size)
	PutWord(b, off+PrevOffset, h.Prev)
	PutWord(b, off+NextOffset, h.Next)
	PutWord(b, off+CanaryOffset, fn(h.Size, h.Prev, h.Next))
}

// Valid reports whether the stored canary matches the other three fields.
func (h Header) Valid(fn CanaryFunc) bool {
	return h.Canary == fn(h.Size, h.Prev, h.Next)
}
