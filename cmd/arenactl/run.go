package main

import (
	"fmt"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"

	"github.com/joshuapare/arenakit/arena"
	"github.com/joshuapare/arenakit/pkg/metrics"
)

var (
	arenaSize   int
	arenaMmap   string
	arenaCanary string
	runMetrics  bool
)

func init() {
	cmd := newRunCmd()
	addArenaFlags(cmd)
	cmd.Flags().BoolVar(&runMetrics, "metrics", false, "Print final statistics in Prometheus text format")
	rootCmd.AddCommand(cmd)
}

// addArenaFlags registers the flags that describe the arena a trace runs on.
func addArenaFlags(cmd *cobra.Command) {
	cmd.Flags().IntVar(&arenaSize, "size", 1024, "Arena size in bytes")
	cmd.Flags().StringVar(&arenaMmap, "mmap", "", "Back the arena with a shared mapping of this file")
	cmd.Flags().StringVar(&arenaCanary, "canary", "xor", "Header canary: xor or xxhash")
}

func arenaConfig() replayConfig {
	return replayConfig{
		Size:   arenaSize,
		Mmap:   arenaMmap,
		Canary: arenaCanary,
		Logger: allocLogger(),
	}
}

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <script>",
		Short: "Replay an allocation trace and report each step",
		Long: `The run command replays a trace script against a fresh arena and prints
the outcome of every instruction followed by the final statistics.

Script format (one instruction per line, '#' starts a comment):
  alloc   <name> <size>
  realloc <name> <size>
  free    <name>
  fill    <name> <byte>
  info
  check

Running out of memory is reported and the replay continues. Any other error
(unknown block, corruption) stops the replay.

Example:
  arenactl run trace.txt
  arenactl run trace.txt --size 4096 --canary xxhash
  arenactl run trace.txt --mmap heap.bin --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRun(args)
		},
	}
	return cmd
}

type runReport struct {
	Steps []stepResult `json:"steps"`
	Stats arena.Stats  `json:"stats"`
}

func runRun(args []string) error {
	ops, err := loadScript(args[0])
	if err != nil {
		return err
	}
	printVerbose("Loaded %d instruction(s) from %s\n", len(ops), args[0])

	s, err := newSession(arenaConfig())
	if err != nil {
		return err
	}
	defer s.Close()
	printVerbose("Arena: %d bytes (%s), canary %s\n", s.a.Len(), s.reg.Kind(), arenaCanary)

	steps, replayErr := s.replay(ops)
	if !jsonOut {
		for _, st := range steps {
			printInfo("%s\n", formatStep(st))
		}
	}
	if replayErr != nil {
		return replayErr
	}

	stats, err := s.a.Info()
	if err != nil {
		return err
	}

	if runMetrics {
		return printMetrics(s.a)
	}
	if jsonOut {
		return printJSON(runReport{Steps: steps, Stats: stats})
	}
	printInfo("\n%s\n", formatStats(stats))
	return nil
}

func formatStep(st stepResult) string {
	prefix := fmt.Sprintf("%4d  %-24s", st.Line, st.Op)
	switch {
	case st.OOM:
		return prefix + " -> out of memory"
	case st.Freed:
		return fmt.Sprintf("%s -> freed ref %d", prefix, st.Ref)
	case st.Stats != nil:
		return prefix + " -> " + formatStats(*st.Stats)
	case st.Message != "" && st.Ref == 0:
		return prefix + " -> " + st.Message
	case st.Ref != 0:
		out := fmt.Sprintf("%s -> ref %d, %d bytes", prefix, st.Ref, st.Size)
		if st.Moved {
			out += " (moved)"
		}
		if st.Message != "" {
			out += "; " + st.Message
		}
		return out
	default:
		return prefix
	}
}

func formatStats(st arena.Stats) string {
	return fmt.Sprintf("total=%d used=%d allocated=%d free=%d fragmentation=%d blocks=%d utilization=%.1f%%",
		st.TotalSize, st.UsedSize, st.AllocatedSize, st.Free(), st.FragmentationBytes,
		st.AllocatedBlocks, st.Utilization()*100)
}

// printMetrics writes the arena's gauges in the Prometheus text format.
func printMetrics(src metrics.StatsSource) error {
	reg := prometheus.NewRegistry()
	if err := reg.Register(metrics.NewCollector("arenactl", src)); err != nil {
		return err
	}
	families, err := reg.Gather()
	if err != nil {
		return err
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(os.Stdout, mf); err != nil {
			return err
		}
	}
	return nil
}
