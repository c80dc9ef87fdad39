//go:build !linux && !darwin && !freebsd

package mmfile

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"unsafe"
)

// MapAnon returns size bytes of word-aligned heap memory when mmap is not
// available.
func MapAnon(size int) ([]byte, func() error, error) {
	if size <= 0 {
		return []byte{}, noop, nil
	}
	return heap(size), noop, nil
}

// MapFile reads the file into word-aligned heap memory when mmap is not
// available. The cleanup function writes the bytes back to path.
func MapFile(path string, size int) ([]byte, func() error, error) {
	if size < 0 {
		return nil, nil, fmt.Errorf("mmfile: negative size %d", size)
	}
	existing, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, nil, err
	}
	if size == 0 {
		size = len(existing)
	}
	if size == 0 {
		return []byte{}, noop, nil
	}
	full := heap(max(size, len(existing)))
	copy(full, existing)
	if err := os.WriteFile(path, full, 0o644); err != nil {
		return nil, nil, err
	}
	cleanup := func() error {
		if full == nil {
			return nil
		}
		err := os.WriteFile(path, full, 0o644)
		full = nil
		return err
	}
	return full[:size:size], cleanup, nil
}

// Sync is a no-op without mmap; MapFile's cleanup persists the bytes.
func Sync([]byte) error {
	return nil
}

func heap(size int) []byte {
	const word = int(unsafe.Sizeof(uintptr(0)))
	words := make([]uintptr, (size+word-1)/word)
	return unsafe.Slice((*byte)(unsafe.Pointer(unsafe.SliceData(words))), size)
}

func noop() error { return nil }
