package arena

import "github.com/joshuapare/arenakit/internal/format"

// Stats is a snapshot of arena usage.
type Stats struct {
	TotalSize          int // bytes under management
	UsedSize           int // end of the last block minus base, 0 when empty
	AllocatedSize      int // sum of header + payload over live blocks
	FragmentationBytes int // sum of gaps between live blocks; the head and trailing gaps are excluded
	AllocatedBlocks    int // number of live blocks
}

// Free returns the bytes not covered by any live block.
func (s Stats) Free() int {
	return s.TotalSize - s.AllocatedSize
}

// Utilization returns the ratio of allocated bytes to total size (0.0 to 1.0).
// Returns 0.0 for an empty region.
func (s Stats) Utilization() float64 {
	if s.TotalSize == 0 {
		return 0
	}
	return float64(s.AllocatedSize) / float64(s.TotalSize)
}

// Info walks the block list and reports usage statistics.
func (a *Arena) Info() (Stats, error) {
	st := Stats{TotalSize: int(a.length)}
	var last block
	err := a.walk(func(b block) bool {
		st.AllocatedBlocks++
		st.AllocatedSize += int(format.HeaderBytes + b.Size)
		if b.Next != 0 {
			st.FragmentationBytes += int(a.gapAfter(b))
		}
		last = b
		return true
	})
	if err != nil {
		return Stats{TotalSize: int(a.length)}, err
	}
	if st.AllocatedBlocks > 0 {
		st.UsedSize = int(last.end())
	}
	return st, nil
}
