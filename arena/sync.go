package arena

import "sync"

// SyncArena is a mutex-protected wrapper around Arena for concurrent access.
// Every operation runs in one critical section per arena; distinct arenas do
// not contend. Payload slices handed out are not protected: goroutines must
// coordinate access to the bytes of a block they share.
type SyncArena struct {
	mu sync.Mutex
	a  *Arena
}

// NewSync creates a thread-safe arena over region.
func NewSync(region []byte, opts *Options) *SyncArena {
	return &SyncArena{a: New(region, opts)}
}

// Wrap puts an existing arena behind a mutex. The caller must stop using a
// directly.
func Wrap(a *Arena) *SyncArena {
	return &SyncArena{a: a}
}

// Init thread-safely empties the arena.
func (s *SyncArena) Init() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.a.Init()
}

// Destroy thread-safely detaches the arena from its region.
func (s *SyncArena) Destroy() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.a.Destroy()
}

// Alloc thread-safely allocates a block of at least size bytes.
func (s *SyncArena) Alloc(size int) (Ref, []byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.a.Alloc(size)
}

// Free thread-safely releases a block.
func (s *SyncArena) Free(ref Ref) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.a.Free(ref)
}

// Realloc thread-safely resizes a block. The lock is held across the
// relocating path, so no other goroutine can observe the copy half done.
func (s *SyncArena) Realloc(ref Ref, size int) (Ref, []byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.a.Realloc(ref, size)
}

// Info thread-safely returns usage statistics.
func (s *SyncArena) Info() (Stats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.a.Info()
}

// Check thread-safely verifies the block list.
func (s *SyncArena) Check() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.a.Check()
}

// Walk thread-safely visits live blocks. fn runs with the lock held and must
// not call back into s.
func (s *SyncArena) Walk(fn func(Block) bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.a.Walk(fn)
}

// Bytes thread-safely returns the payload of a live block.
func (s *SyncArena) Bytes(ref Ref) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.a.Bytes(ref)
}

// Size thread-safely returns the payload size of a live block.
func (s *SyncArena) Size(ref Ref) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.a.Size(ref)
}

// Len returns the number of bytes under management.
func (s *SyncArena) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.a.Len()
}

// Do runs fn with exclusive access to the underlying arena, for sequences of
// operations that must not interleave with other goroutines. fn must not
// retain the *Arena.
func (s *SyncArena) Do(fn func(*Arena) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.a)
}
