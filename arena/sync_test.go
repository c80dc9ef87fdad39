package arena

import (
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func TestSyncArena_Concurrent(t *testing.T) {
	sa := NewSync(newRegion(1<<16), nil)

	const workers = 8
	const rounds = 200
	var oom atomic.Int64

	var g errgroup.Group
	for w := range workers {
		g.Go(func() error {
			var mine []Ref
			for i := range rounds {
				ref, b, err := sa.Alloc(8 + (w+i)%64)
				if err != nil {
					oom.Add(1)
					continue
				}
				fillPayload(b, byte(w))
				mine = append(mine, ref)

				if i%3 == 0 {
					got, _, err := sa.Realloc(mine[0], 96)
					if err == nil {
						mine[0] = got
					}
				}
				if len(mine) > 4 {
					if err := sa.Free(mine[0]); err != nil {
						return err
					}
					mine = mine[1:]
				}
			}
			for _, ref := range mine {
				b, err := sa.Bytes(ref)
				if err != nil {
					return err
				}
				if b[0] != byte(w) {
					return assert.AnError
				}
				if err := sa.Free(ref); err != nil {
					return err
				}
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())

	require.NoError(t, sa.Check())
	st, err := sa.Info()
	require.NoError(t, err)
	assert.Zero(t, st.AllocatedBlocks, "every worker freed its blocks")
	assert.Zero(t, oom.Load(), "a 64 KiB arena holds every worker's working set")
}

func TestSyncArena_Do(t *testing.T) {
	sa := NewSync(newRegion(1024), nil)

	var refs []Ref
	err := sa.Do(func(a *Arena) error {
		for range 3 {
			ref, _, err := a.Alloc(16)
			if err != nil {
				return err
			}
			refs = append(refs, ref)
		}
		return a.Free(refs[1])
	})
	require.NoError(t, err)

	var seen []Ref
	require.NoError(t, sa.Walk(func(b Block) bool {
		seen = append(seen, b.Ref)
		return true
	}))
	assert.Equal(t, []Ref{refs[0], refs[2]}, seen)

	size, err := sa.Size(refs[0])
	require.NoError(t, err)
	assert.Equal(t, 16, size)
	assert.Equal(t, 1024, sa.Len())
}

func TestSyncArena_Lifecycle(t *testing.T) {
	a := newTestArena(t, 512)
	sa := Wrap(a)

	ref, _, err := sa.Alloc(32)
	require.NoError(t, err)
	sa.Init()
	_, err = sa.Bytes(ref)
	require.ErrorIs(t, err, ErrNotLive)

	sa.Destroy()
	_, _, err = sa.Alloc(8)
	require.ErrorIs(t, err, ErrOutOfMemory)
}
