package format

import (
	"encoding/binary"

	"github.com/cespare/xxhash/v2"
)

// CanaryFunc derives a header's integrity tag from its size and link fields.
type CanaryFunc func(size, prev, next uintptr) uintptr

// XORCanary is the default tag: size ^ prev ^ next. It catches single-field
// corruption and most stale links but not a matched rewrite of all three.
func XORCanary(size, prev, next uintptr) uintptr {
	return size ^ prev ^ next
}

// XXHashCanary hashes the three fields with xxhash64 and truncates the sum to
// a machine word.
func XXHashCanary(size, prev, next uintptr) uintptr {
	var raw [24]byte
	binary.LittleEndian.PutUint64(raw[0:], uint64(size))
	binary.LittleEndian.PutUint64(raw[8:], uint64(prev))
	binary.LittleEndian.PutUint64(raw[16:], uint64(next))
	return uintptr(xxhash.Sum64(raw[:]))
}
