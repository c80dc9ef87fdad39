package arena

import (
	"log/slog"
	"unsafe"

	"github.com/joshuapare/arenakit/internal/format"
)

const (
	// WordSize is the machine word size; payloads are aligned to it.
	WordSize = int(format.WordSize)

	// HeaderBytes is the per-block overhead: 4 machine words.
	HeaderBytes = int(format.HeaderBytes)
)

// Ref identifies a live block by the offset of its payload from the arena
// base. Refs are never smaller than HeaderBytes, so the zero value Nil plays
// the role of the null pointer.
type Ref uintptr

// Nil is the null reference. Free(Nil) is a no-op and Realloc(Nil, n) allocates.
const Nil Ref = 0

// CanaryKind selects the header integrity tag.
type CanaryKind uint8

const (
	// CanaryXOR tags each header with size ^ prev ^ next.
	CanaryXOR CanaryKind = iota

	// CanaryXXHash tags each header with an xxhash64 of the same three fields.
	// It is slower but also catches matched rewrites that cancel under xor.
	CanaryXXHash
)

// Options configures an Arena. A nil *Options selects the defaults.
type Options struct {
	// Logger receives placement and corruption diagnostics. Defaults to a
	// discarding logger unless ARENAKIT_LOG_ALLOC is set.
	Logger *slog.Logger

	// Canary selects the header integrity tag. Defaults to CanaryXOR.
	Canary CanaryKind
}

// Arena carves variably sized blocks out of one caller-provided region.
//
// The arena owns only the block headers it writes into the region; the
// region itself stays owned by the caller and must outlive the arena. Live
// blocks form an address-ordered doubly linked list threaded through their
// headers; free space is whatever the list does not cover.
//
// Arena is not safe for concurrent use. Use SyncArena to share one arena
// between goroutines.
type Arena struct {
	mem    []byte  // word-aligned window of the caller's region
	base   uintptr // address of mem[0]
	length uintptr // len(mem)
	head   uintptr // address of the lowest live header, 0 when empty
	tail   uintptr // address of the highest live header, 0 when empty

	canary format.CanaryFunc
	log    *slog.Logger
}

// New prepares region for allocation and returns an empty arena over it.
//
// Leading bytes are skipped until the first word boundary, and the length is
// trimmed to a whole number of words, so Len may be slightly smaller than
// len(region). Header links hold raw addresses: the region must not be copied
// or moved while blocks are live (heap slices and mappings never move).
func New(region []byte, opts *Options) *Arena {
	a := &Arena{}
	a.configure(opts)
	a.attach(region)
	a.Init()
	return a
}

func (a *Arena) configure(opts *Options) {
	a.canary = format.XORCanary
	a.log = nil
	if opts != nil {
		if opts.Canary == CanaryXXHash {
			a.canary = format.XXHashCanary
		}
		a.log = opts.Logger
	}
	if a.log == nil {
		a.log = defaultLogger()
	}
}

func (a *Arena) attach(region []byte) {
	if len(region) == 0 {
		return
	}
	start := uintptr(unsafe.Pointer(unsafe.SliceData(region)))
	skip := format.AlignWord(start) - start
	if skip >= uintptr(len(region)) {
		return
	}
	mem := region[skip:]
	n := uintptr(len(mem)) &^ format.WordMask
	a.mem = mem[:n:n]
	a.base = start + skip
	a.length = n
}

// Init empties the arena: every block becomes invalid and the whole region
// is one gap again. The region bytes are not touched.
func (a *Arena) Init() {
	a.head = 0
	a.tail = 0
}

// Destroy detaches the arena from its region. Live blocks are not walked or
// released; the caller either freed them or reclaims the region wholesale.
// A destroyed arena behaves like an arena over an empty region.
func (a *Arena) Destroy() {
	a.mem = nil
	a.base = 0
	a.length = 0
	a.head = 0
	a.tail = 0
}

// Len returns the number of bytes under management.
func (a *Arena) Len() int {
	return int(a.length)
}

// Base returns the address of the first managed byte, 0 for an empty arena.
func (a *Arena) Base() uintptr {
	return a.base
}

// Addr returns the absolute address of ref's payload, or 0 for Nil.
// The address is always a multiple of WordSize.
func (a *Arena) Addr(ref Ref) uintptr {
	if ref == Nil {
		return 0
	}
	return a.base + uintptr(ref)
}

// Empty reports whether the arena has no live blocks.
func (a *Arena) Empty() bool {
	return a.head == 0
}
