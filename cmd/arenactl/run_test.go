package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/arenakit/arena"
)

func TestRunCommand(t *testing.T) {
	tests := []struct {
		name           string
		script         string
		size           int
		canary         string
		wantErr        bool
		wantContain    []string
		wantNotContain []string
	}{
		{
			name:   "fragment and refill",
			script: "fragment.trace",
			wantContain: []string{
				"fragmentation=" + strconv.Itoa(arena.HeaderBytes+16),
				"(moved)",
				"16 leading byte(s) still 0xaa",
				"check",
				"-> ok",
				"blocks=3",
			},
			wantNotContain: []string{"out of memory"},
		},
		{
			name:        "out of memory is not fatal",
			script:      "oom.trace",
			wantContain: []string{"alloc huge 4096", "-> out of memory", "realloc big 2000", "freed ref", "blocks=0"},
		},
		{
			name:        "xxhash canary",
			script:      "fragment.trace",
			canary:      "xxhash",
			wantContain: []string{"-> ok"},
		},
		{
			name:    "unknown canary",
			script:  "fragment.trace",
			canary:  "crc",
			wantErr: true,
		},
		{
			name:    "double free",
			script:  "bad.trace",
			wantErr: true,
		},
		{
			name:    "negative arena size",
			script:  "fragment.trace",
			size:    -1,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetFlags()
			if tt.size != 0 {
				arenaSize = tt.size
			}
			if tt.canary != "" {
				arenaCanary = tt.canary
			}

			output, err := captureOutput(t, func() error {
				return runRun([]string{testScriptPath(t, tt.script)})
			})

			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assertContains(t, output, tt.wantContain)
			assertNotContains(t, output, tt.wantNotContain)
		})
	}
}

func TestRunCommand_DoubleFreeReportsLine(t *testing.T) {
	resetFlags()
	_, err := captureOutput(t, func() error {
		return runRun([]string{testScriptPath(t, "bad.trace")})
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 3 (free a)")
	assert.Contains(t, err.Error(), `no live block named "a"`)
}

func TestRunCommand_JSON(t *testing.T) {
	resetFlags()
	jsonOut = true

	output, err := captureOutput(t, func() error {
		return runRun([]string{testScriptPath(t, "fragment.trace")})
	})
	require.NoError(t, err)
	assertJSON(t, output)

	var report runReport
	require.NoError(t, json.Unmarshal([]byte(output), &report))
	require.Len(t, report.Steps, 10)
	assert.Equal(t, 3, report.Stats.AllocatedBlocks)
	assert.Equal(t, 1024, report.Stats.TotalSize)

	// Step 6 is "alloc d 8", which reuses b's slot.
	assert.Equal(t, report.Steps[1].Ref, report.Steps[5].Ref)
	assert.True(t, report.Steps[7].Moved)
}

func TestRunCommand_Mmap(t *testing.T) {
	resetFlags()
	backing := filepath.Join(t.TempDir(), "heap.bin")
	arenaMmap = backing
	arenaSize = 4096

	output, err := captureOutput(t, func() error {
		return runRun([]string{testScriptPath(t, "fragment.trace")})
	})
	require.NoError(t, err)
	assertContains(t, output, []string{"total=4096"})

	info, err := os.Stat(backing)
	require.NoError(t, err)
	assert.Equal(t, int64(4096), info.Size())
}

func TestRunCommand_Metrics(t *testing.T) {
	resetFlags()
	runMetrics = true

	output, err := captureOutput(t, func() error {
		return runRun([]string{testScriptPath(t, "oom.trace")})
	})
	require.NoError(t, err)
	assertContains(t, output, []string{
		`arenakit_arena_total_bytes{arena="arenactl"} 1024`,
		`arenakit_arena_allocated_blocks{arena="arenactl"} 0`,
		`arenakit_arena_healthy{arena="arenactl"} 1`,
	})
}

func TestRunCommand_Quiet(t *testing.T) {
	resetFlags()
	quiet = true

	output, err := captureOutput(t, func() error {
		return runRun([]string{writeScript(t, "alloc a 8\nfree a\n")})
	})
	require.NoError(t, err)
	assert.Empty(t, output)
}

func TestVersionCommand(t *testing.T) {
	output, err := captureOutput(t, func() error {
		versionCmd.Run(versionCmd, nil)
		return nil
	})
	require.NoError(t, err)
	assertContains(t, output, []string{"arenactl dev", "commit: none"})
}
