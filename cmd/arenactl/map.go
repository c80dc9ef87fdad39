package main

import (
	"github.com/spf13/cobra"

	"github.com/joshuapare/arenakit/arena"
)

func init() {
	cmd := newMapCmd()
	addArenaFlags(cmd)
	rootCmd.AddCommand(cmd)
}

func newMapCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "map <script>",
		Short: "Replay a trace and print the resulting block layout",
		Long: `The map command replays a trace script and then prints the arena in
address order: every header, every payload and every free gap, with the
trace name of each live block.

Example:
  arenactl map trace.txt
  arenactl map trace.txt --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMap(args)
		},
	}
	return cmd
}

// segment is one contiguous range of the arena.
type segment struct {
	Offset int    `json:"offset"`
	End    int    `json:"end"`
	Kind   string `json:"kind"` // header, payload or gap
	Name   string `json:"name,omitempty"`
}

func runMap(args []string) error {
	ops, err := loadScript(args[0])
	if err != nil {
		return err
	}
	s, err := newSession(arenaConfig())
	if err != nil {
		return err
	}
	defer s.Close()

	if _, err := s.replay(ops); err != nil {
		return err
	}
	segs, err := layout(s.a, s.names())
	if err != nil {
		return err
	}

	if jsonOut {
		return printJSON(segs)
	}
	printInfo("%-8s %-8s %-8s %6s  %s\n", "OFFSET", "END", "KIND", "BYTES", "NAME")
	for _, seg := range segs {
		printInfo("%-8d %-8d %-8s %6d  %s\n", seg.Offset, seg.End, seg.Kind, seg.End-seg.Offset, seg.Name)
	}
	return nil
}

// layout describes the arena from offset 0 to its end.
func layout(a *arena.Arena, names map[arena.Ref]string) ([]segment, error) {
	var segs []segment
	pos := 0
	err := a.Walk(func(b arena.Block) bool {
		if b.Offset > pos {
			segs = append(segs, segment{Offset: pos, End: b.Offset, Kind: "gap"})
		}
		name := names[b.Ref]
		payload := b.Offset + arena.HeaderBytes
		segs = append(segs,
			segment{Offset: b.Offset, End: payload, Kind: "header", Name: name},
			segment{Offset: payload, End: b.End(), Kind: "payload", Name: name},
		)
		pos = b.End()
		return true
	})
	if err != nil {
		return nil, err
	}
	if pos < a.Len() {
		segs = append(segs, segment{Offset: pos, End: a.Len(), Kind: "gap"})
	}
	return segs, nil
}
