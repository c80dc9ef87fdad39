package arena

import "errors"

var (
	// ErrOutOfMemory indicates that no gap in the arena can hold the requested block.
	ErrOutOfMemory = errors.New("arena: out of memory")

	// ErrBadSize indicates a negative or otherwise unrepresentable size.
	ErrBadSize = errors.New("arena: bad size")

	// ErrBadRef indicates a reference that cannot address a payload in this arena
	// (out of range or misaligned).
	ErrBadRef = errors.New("arena: bad reference")

	// ErrNotLive indicates a reference whose header is intact but is not linked
	// into the block list, typically a block that was already freed.
	ErrNotLive = errors.New("arena: block is not live")

	// ErrCorrupt indicates a header whose canary or links are inconsistent.
	// The arena must not be used further once this is returned.
	ErrCorrupt = errors.New("arena: heap corruption detected")

	// ErrUnsupportedType indicates a type that cannot be stored in arena memory.
	ErrUnsupportedType = errors.New("arena: type cannot be stored in an arena")
)
