// Package region provides backing memory for arenas: word-aligned heap
// slices, anonymous mappings and file-backed mappings.
//
// An arena never acquires memory on its own. A Region owns the memory and
// its release; the arena only borrows the bytes:
//
//	r, err := region.File("heap.bin", 1<<20)
//	if err != nil {
//	    return err
//	}
//	defer r.Close()
//
//	a := arena.New(r.Bytes(), nil)
package region

import (
	"errors"
	"fmt"
	"unsafe"

	"github.com/joshuapare/arenakit/internal/mmfile"
)

// Kind names where a region's memory comes from.
type Kind uint8

const (
	KindHeap Kind = iota
	KindAnon
	KindFile
)

func (k Kind) String() string {
	switch k {
	case KindHeap:
		return "heap"
	case KindAnon:
		return "anon"
	case KindFile:
		return "file"
	default:
		return fmt.Sprintf("Kind(%d)", k)
	}
}

// ErrClosed is returned by Sync after Close.
var ErrClosed = errors.New("region: closed")

// Region is a block of memory suitable for arena.New.
type Region struct {
	data    []byte
	kind    Kind
	path    string
	release func() error
}

// Heap returns a region of size bytes on the Go heap. The start is word
// aligned so an arena can use every byte.
func Heap(size int) (*Region, error) {
	if size < 0 {
		return nil, fmt.Errorf("region: negative size %d", size)
	}
	if size == 0 {
		return &Region{data: []byte{}, kind: KindHeap}, nil
	}
	const word = int(unsafe.Sizeof(uintptr(0)))
	words := make([]uintptr, (size+word-1)/word)
	data := unsafe.Slice((*byte)(unsafe.Pointer(unsafe.SliceData(words))), size)
	return &Region{data: data, kind: KindHeap}, nil
}

// Anon returns a private anonymous mapping of size bytes.
func Anon(size int) (*Region, error) {
	if size < 0 {
		return nil, fmt.Errorf("region: negative size %d", size)
	}
	data, release, err := mmfile.MapAnon(size)
	if err != nil {
		return nil, err
	}
	return &Region{data: data, kind: KindAnon, release: release}, nil
}

// File maps path read/write, creating or growing it to size bytes. A size of
// 0 maps the file at its current length.
//
// Block headers store absolute addresses, so an arena cannot be reattached to
// a file mapped at a different address; the file holds payload bytes only
// for as long as the mapping lives.
func File(path string, size int) (*Region, error) {
	data, release, err := mmfile.MapFile(path, size)
	if err != nil {
		return nil, fmt.Errorf("region: %w", err)
	}
	return &Region{data: data, kind: KindFile, path: path, release: release}, nil
}

// Bytes returns the region's memory, or nil after Close.
func (r *Region) Bytes() []byte {
	return r.data
}

// Len returns the region size in bytes.
func (r *Region) Len() int {
	return len(r.data)
}

// Kind reports where the memory comes from.
func (r *Region) Kind() Kind {
	return r.kind
}

// Path returns the backing file for KindFile regions.
func (r *Region) Path() string {
	return r.path
}

// Sync flushes a file-backed region to disk. It is a no-op for other kinds.
func (r *Region) Sync() error {
	if r.data == nil {
		return ErrClosed
	}
	if r.kind != KindFile {
		return nil
	}
	return mmfile.Sync(r.data)
}

// Close releases the memory. Any arena over the region must not be used
// afterwards. Close is idempotent.
func (r *Region) Close() error {
	if r.data == nil {
		return nil
	}
	r.data = nil
	if r.release == nil {
		return nil
	}
	release := r.release
	r.release = nil
	return release()
}
