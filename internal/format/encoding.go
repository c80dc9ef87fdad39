package format

import "encoding/binary"

// Header words hold raw addresses, so they are stored in the machine's native
// byte order. Offsets passed here must already be bounds checked.

// PutWord writes a machine word to the buffer at the specified offset.
func PutWord(b []byte, off uintptr, v uintptr) {
	if WordSize == 8 {
		binary.NativeEndian.PutUint64(b[off:off+8], uint64(v))
		return
	}
	binary.NativeEndian.PutUint32(b[off:off+4], uint32(v))
}

// ReadWord reads a machine word from the buffer at the specified offset.
func ReadWord(b []byte, off uintptr) uintptr {
	if WordSize == 8 {
		return uintptr(binary.NativeEndian.Uint64(b[off : off+8]))
	}
	return uintptr(binary.NativeEndian.Uint32(b[off : off+4]))
}
