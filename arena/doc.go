// Package arena provides a first-fit block allocator over a single
// caller-provided byte region.
//
// # Overview
//
// An Arena manages one contiguous region and hands out variably sized blocks
// from it. The caller supplies the region (a heap slice, an anonymous mapping,
// a file mapping, ...) and keeps owning it; the arena only writes the block
// headers it needs for bookkeeping.
//
// The classic allocate/reallocate/free triad is available, plus an Info call
// that reports usage and fragmentation:
//
//	region := make([]byte, 1024)
//	a := arena.New(region, nil)
//
//	ref, buf, err := a.Alloc(10) // buf has 16 bytes on 64-bit machines
//	if err != nil {
//	    return err
//	}
//	copy(buf, "hello")
//
//	ref, buf, err = a.Realloc(ref, 64) // may move; always use the result
//	...
//	err = a.Free(ref)
//
//	st, err := a.Info()
//	fmt.Println(st.AllocatedBlocks, st.FragmentationBytes)
//
// # Memory Layout
//
// Every live block is a header of four machine words followed by its payload:
//
//	| canary | size | prev | next | payload ... |
//	^ header                      ^ Ref (payload offset from base)
//
// Live headers form a doubly linked list sorted by address; prev and next hold
// the raw addresses of the neighbouring headers. Free space is never recorded:
// it is simply the gap between one block's end and the next header (or the end
// of the region). There is no free list and no coalescing.
//
// # Placement
//
// Alloc uses address-ordered first fit. It tries the gap in front of the first
// block, then every gap between blocks from low to high addresses, and finally
// the space after the last block. Sizes are rounded up to the word size, so
// every payload address is word aligned.
//
// Realloc shrinks and grows in place when it can and otherwise relocates by
// allocating, copying and freeing. Shrinking leaves a gap behind the block
// that Info reports as fragmentation.
//
// # Integrity
//
// Each header carries a canary derived from its size and links (size ^ prev ^
// next by default, or an xxhash64 with Options.Canary = CanaryXXHash). Every
// header an operation reads is verified first. A mismatch, or a link that
// points outside the region or out of address order, is reported as
// ErrCorrupt before anything is written. Freeing a block twice is reported as
// ErrNotLive while its header is still intact. Check performs a full
// structural verification.
//
// # Thread Safety
//
// Arena is not safe for concurrent use. SyncArena wraps an Arena in a
// per-arena mutex:
//
//	sa := arena.NewSync(region, nil)
//	ref, buf, err := sa.Alloc(128)
//
// # Debugging
//
// Setting ARENAKIT_LOG_ALLOC=1 in the environment logs placement decisions at
// debug level to stderr. Options.Logger routes them to any slog.Logger.
package arena
