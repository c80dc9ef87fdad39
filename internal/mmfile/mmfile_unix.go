//go:build linux || darwin || freebsd

package mmfile

import (
	"errors"
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// MapAnon returns a private, zero-filled read/write mapping of size bytes.
// Mappings are page aligned, which satisfies any word alignment.
func MapAnon(size int) ([]byte, func() error, error) {
	if size <= 0 {
		return []byte{}, noop, nil
	}
	data, err := unix.Mmap(-1, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		return nil, nil, fmt.Errorf("mmfile: anonymous mapping of %d bytes: %w", size, err)
	}
	return data, unmapper(data), nil
}

// MapFile maps the file at path shared read/write, creating it if needed and
// growing it to size bytes. A size of 0 maps the file at its current length.
// Writes to the returned slice reach the file; call Sync to force them out.
func MapFile(path string, size int) ([]byte, func() error, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close() // safe before return; mapping keeps pages alive

	info, err := f.Stat()
	if err != nil {
		return nil, nil, err
	}
	if size == 0 {
		if info.Size() > int64(^uint(0)>>1) {
			return nil, nil, fmt.Errorf("mmfile: file too large to map (%d bytes)", info.Size())
		}
		size = int(info.Size())
	}
	if size < 0 {
		return nil, nil, fmt.Errorf("mmfile: negative size %d", size)
	}
	if size == 0 {
		return []byte{}, noop, nil
	}
	if info.Size() < int64(size) {
		if err := unix.Ftruncate(int(f.Fd()), int64(size)); err != nil {
			return nil, nil, fmt.Errorf("mmfile: grow %s to %d bytes: %w", path, size, err)
		}
	}

	data, err := unix.Mmap(int(f.Fd()), 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		return nil, nil, fmt.Errorf("mmfile: map %s: %w", path, err)
	}
	return data, unmapper(data), nil
}

// Sync flushes a shared file mapping to disk.
func Sync(data []byte) error {
	if len(data) == 0 {
		return nil
	}
	return unix.Msync(data, unix.MS_SYNC)
}

func unmapper(data []byte) func() error {
	return func() error {
		if data == nil {
			return nil
		}
		err := unix.Munmap(data)
		data = nil
		if errors.Is(err, unix.EINVAL) {
			// Treat double-unmap as no-op for callers.
			return nil
		}
		return err
	}
}

func noop() error { return nil }
