package arena

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/require"

	"github.com/joshuapare/arenakit/internal/format"
)

// ============================================================================
// Test Helpers
// ============================================================================

// newRegion returns a word-aligned byte region of exactly size bytes.
func newRegion(size int) []byte {
	words := make([]uintptr, (size+WordSize-1)/WordSize+1)
	return unsafe.Slice((*byte)(unsafe.Pointer(&words[0])), size)
}

// newTestArena creates an arena over a fresh aligned region of size bytes.
func newTestArena(t testing.TB, size int) *Arena {
	t.Helper()
	a := New(newRegion(size), nil)
	require.Equal(t, size, a.Len(), "aligned region should be used in full")
	return a
}

// pad mirrors the allocator's rounding for expected values.
func pad(n int) int {
	return (n + WordSize - 1) &^ (WordSize - 1)
}

// headerOffset returns the header offset behind a reference.
func headerOffset(ref Ref) int {
	return int(ref) - HeaderBytes
}

// fillPayload writes a recognisable byte pattern into a payload.
func fillPayload(b []byte, seed byte) {
	for i := range b {
		b[i] = seed + byte(i)
	}
}

// requirePattern checks the first n bytes of a payload against fillPayload.
func requirePattern(t testing.TB, b []byte, seed byte, n int) {
	t.Helper()
	require.GreaterOrEqual(t, len(b), n)
	for i := range n {
		require.Equal(t, seed+byte(i), b[i], "payload byte %d", i)
	}
}

// snapshot captures everything a caller can observe about the list.
type snapshot struct {
	head, tail uintptr
	stats      Stats
}

func takeSnapshot(t testing.TB, a *Arena) snapshot {
	t.Helper()
	st, err := a.Info()
	require.NoError(t, err)
	return snapshot{head: a.head, tail: a.tail, stats: st}
}

// requireWellFormed validates the block list by decoding raw headers, without
// going through the allocator's own walk. It checks:
//  1. forward links strictly increase in address and end at tail
//  2. adjacent blocks do not overlap
//  3. every block lies inside the region
//  4. every canary matches its fields
//  5. payload refs are word aligned
//  6. Info agrees with the raw walk
func requireWellFormed(t testing.TB, a *Arena) {
	t.Helper()
	require.NoError(t, a.Check())

	if a.head == 0 {
		require.Zero(t, a.tail, "tail must be null when head is null")
		st, err := a.Info()
		require.NoError(t, err)
		require.Equal(t, Stats{TotalSize: a.Len()}, st)
		return
	}
	require.NotZero(t, a.tail, "tail must be set when head is set")

	var (
		count     int
		allocated int
		prevAddr  uintptr
		prevEnd   uintptr
		lastEnd   uintptr
	)
	for addr := a.head; addr != 0; {
		require.GreaterOrEqual(t, addr, a.base)
		off := addr - a.base
		require.True(t, format.IsWordAligned(off), "header at %d misaligned", off)
		require.GreaterOrEqual(t, off, prevEnd, "block at %d overlaps its predecessor", off)

		h, err := format.DecodeHeader(a.mem, off)
		require.NoError(t, err)
		require.True(t, h.Valid(a.canary), "canary mismatch at %d", off)
		require.Equal(t, prevAddr, h.Prev, "prev link of block at %d", off)
		require.True(t, format.IsWordAligned(h.Size), "size %d not word aligned", h.Size)

		end := off + format.HeaderBytes + h.Size
		require.LessOrEqual(t, end, a.length, "block at %d runs past the region", off)

		ref := Ref(off + format.HeaderBytes)
		require.Zero(t, a.Addr(ref)%uintptr(WordSize), "payload address not aligned")

		count++
		allocated += int(format.HeaderBytes + h.Size)
		require.Less(t, count, a.Len(), "list does not terminate")

		prevAddr, prevEnd, lastEnd = addr, end, end
		if h.Next != 0 {
			require.Greater(t, h.Next, addr, "next link must increase")
		}
		addr = h.Next
	}
	require.Equal(t, prevAddr, a.tail, "forward walk must end at tail")

	st, err := a.Info()
	require.NoError(t, err)
	require.Equal(t, count, st.AllocatedBlocks)
	require.Equal(t, allocated, st.AllocatedSize)
	require.Equal(t, int(lastEnd), st.UsedSize)
	require.Equal(t, a.Len(), st.TotalSize)
}

// liveRefs lists the live references in address order.
func liveRefs(t testing.TB, a *Arena) []Ref {
	t.Helper()
	var refs []Ref
	require.NoError(t, a.Walk(func(b Block) bool {
		refs = append(refs, b.Ref)
		return true
	}))
	return refs
}
