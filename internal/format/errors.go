package format

import "errors"

var (
	// ErrTruncated indicates the buffer lacked the bytes required for a header.
	ErrTruncated = errors.New("format: truncated buffer")
	// ErrMisaligned indicates a header offset that is not a multiple of WordSize.
	ErrMisaligned = errors.New("format: misaligned header")
)
