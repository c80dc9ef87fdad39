package main

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/joshuapare/arenakit/arena"
	"github.com/joshuapare/arenakit/pkg/region"
)

// replayConfig describes the arena a trace runs against.
type replayConfig struct {
	Size   int
	Mmap   string // backing file; empty for heap memory
	Canary string // "xor" or "xxhash"
	Logger *slog.Logger
}

// stepResult is the outcome of one instruction.
type stepResult struct {
	Line    int          `json:"line"`
	Op      string       `json:"op"`
	Ref     uint64       `json:"ref,omitempty"`
	Size    int          `json:"size,omitempty"`
	Moved   bool         `json:"moved,omitempty"`
	Freed   bool         `json:"freed,omitempty"`
	OOM     bool         `json:"out_of_memory,omitempty"`
	Stats   *arena.Stats `json:"stats,omitempty"`
	Message string       `json:"message,omitempty"`
}

// session is an arena plus the names the trace gave its blocks.
type session struct {
	reg   *region.Region
	a     *arena.Arena
	refs  map[string]arena.Ref
	fills map[string]byte
}

func newSession(cfg replayConfig) (*session, error) {
	opts := &arena.Options{Logger: cfg.Logger}
	switch cfg.Canary {
	case "", "xor":
		opts.Canary = arena.CanaryXOR
	case "xxhash":
		opts.Canary = arena.CanaryXXHash
	default:
		return nil, fmt.Errorf("unknown canary %q (want xor or xxhash)", cfg.Canary)
	}
	if cfg.Size <= 0 {
		return nil, fmt.Errorf("arena size must be positive, got %d", cfg.Size)
	}

	var (
		reg *region.Region
		err error
	)
	if cfg.Mmap != "" {
		reg, err = region.File(cfg.Mmap, cfg.Size)
	} else {
		reg, err = region.Heap(cfg.Size)
	}
	if err != nil {
		return nil, err
	}
	return &session{
		reg:   reg,
		a:     arena.New(reg.Bytes(), opts),
		refs:  make(map[string]arena.Ref),
		fills: make(map[string]byte),
	}, nil
}

// Close releases the backing region, flushing it first when file backed.
func (s *session) Close() error {
	s.a.Destroy()
	syncErr := s.reg.Sync()
	return errors.Join(syncErr, s.reg.Close())
}

// replay runs ops in order. Running out of memory is a normal outcome and is
// recorded; any other failure stops the replay.
func (s *session) replay(ops []op) ([]stepResult, error) {
	results := make([]stepResult, 0, len(ops))
	for _, o := range ops {
		res, err := s.step(o)
		if err != nil {
			return results, fmt.Errorf("line %d (%s): %w", o.Line, o, err)
		}
		results = append(results, res)
	}
	return results, nil
}

func (s *session) step(o op) (stepResult, error) {
	res := stepResult{Line: o.Line, Op: o.String()}

	switch o.Kind {
	case opAlloc:
		if _, live := s.refs[o.Name]; live {
			return res, fmt.Errorf("block %q is already allocated", o.Name)
		}
		ref, buf, err := s.a.Alloc(o.Size)
		if errors.Is(err, arena.ErrOutOfMemory) {
			res.OOM = true
			return res, nil
		}
		if err != nil {
			return res, err
		}
		s.refs[o.Name] = ref
		res.Ref, res.Size = uint64(ref), len(buf)

	case opRealloc:
		ref, err := s.lookup(o.Name)
		if err != nil {
			return res, err
		}
		got, buf, err := s.a.Realloc(ref, o.Size)
		if errors.Is(err, arena.ErrOutOfMemory) {
			res.OOM = true
			res.Ref = uint64(ref)
			return res, nil
		}
		if err != nil {
			return res, err
		}
		s.refs[o.Name] = got
		res.Ref, res.Size, res.Moved = uint64(got), len(buf), got != ref
		if fill, ok := s.fills[o.Name]; ok {
			res.Message = preserved(buf, fill)
		}

	case opFree:
		ref, err := s.lookup(o.Name)
		if err != nil {
			return res, err
		}
		if err := s.a.Free(ref); err != nil {
			return res, err
		}
		delete(s.refs, o.Name)
		delete(s.fills, o.Name)
		res.Ref, res.Freed = uint64(ref), true

	case opFill:
		ref, err := s.lookup(o.Name)
		if err != nil {
			return res, err
		}
		buf, err := s.a.Bytes(ref)
		if err != nil {
			return res, err
		}
		for i := range buf {
			buf[i] = o.Fill
		}
		s.fills[o.Name] = o.Fill
		res.Ref, res.Size = uint64(ref), len(buf)

	case opInfo:
		st, err := s.a.Info()
		if err != nil {
			return res, err
		}
		res.Stats = &st

	case opCheck:
		if err := s.a.Check(); err != nil {
			return res, err
		}
		res.Message = "ok"
	}
	return res, nil
}

func (s *session) lookup(name string) (arena.Ref, error) {
	ref, ok := s.refs[name]
	if !ok {
		return arena.Nil, fmt.Errorf("no live block named %q", name)
	}
	return ref, nil
}

// preserved reports how much of a previously filled payload survived a resize.
func preserved(buf []byte, fill byte) string {
	n := 0
	for n < len(buf) && buf[n] == fill {
		n++
	}
	return fmt.Sprintf("%d leading byte(s) still 0x%02x", n, fill)
}

// names maps live references back to their trace names.
func (s *session) names() map[arena.Ref]string {
	out := make(map[arena.Ref]string, len(s.refs))
	for name, ref := range s.refs {
		out[ref] = name
	}
	return out
}
