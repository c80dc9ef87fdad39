// Package format describes the block header that the allocator embeds in the
// arena. It holds no allocator policy, so the arena package and its tools
// decode headers the same way.
package format

import "unsafe"

const (
	// WordSize is the machine pointer width in bytes. Every header field is
	// one word and every payload is aligned to it.
	WordSize = unsafe.Sizeof(uintptr(0))

	// WordMask is the bitmask used for aligning to word boundaries (WordSize - 1).
	WordMask = WordSize - 1

	// HeaderWords is the number of machine words in a block header.
	HeaderWords = 4

	// HeaderBytes is the size of the header preceding every live payload:
	// 16 bytes on 32-bit machines, 32 bytes on 64-bit machines.
	HeaderBytes = HeaderWords * WordSize
)

// Header field offsets, relative to the first byte of the header.
//
//	Offset  Size  Field
//	0*W     W     canary
//	1*W     W     payload size (multiple of W)
//	2*W     W     address of the previous live header, 0 at the head
//	3*W     W     address of the next live header, 0 at the tail
const (
	CanaryOffset = 0 * WordSize
	SizeOffset   = 1 * WordSize
	PrevOffset   = 2 * WordSize
	NextOffset   = 3 * WordSize
)
