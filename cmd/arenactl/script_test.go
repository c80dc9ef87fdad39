package main

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseScript(t *testing.T) {
	src := `
# comment line
alloc a 16
ALLOC b 0      # trailing comment
realloc a 64
fill a 0xff
fill b 7
free b
info
check
`
	ops, err := parseScript(strings.NewReader(src))
	require.NoError(t, err)
	require.Len(t, ops, 8)

	assert.Equal(t, op{Line: 3, Kind: opAlloc, Name: "a", Size: 16}, ops[0])
	assert.Equal(t, op{Line: 4, Kind: opAlloc, Name: "b", Size: 0}, ops[1])
	assert.Equal(t, op{Line: 5, Kind: opRealloc, Name: "a", Size: 64}, ops[2])
	assert.Equal(t, op{Line: 6, Kind: opFill, Name: "a", Fill: 0xff}, ops[3])
	assert.Equal(t, byte(7), ops[4].Fill)
	assert.Equal(t, op{Line: 8, Kind: opFree, Name: "b"}, ops[5])
	assert.Equal(t, opInfo, ops[6].Kind)
	assert.Equal(t, opCheck, ops[7].Kind)

	assert.Equal(t, "fill a 0xff", ops[3].String())
	assert.Equal(t, "realloc a 64", ops[2].String())
	assert.Equal(t, "info", ops[6].String())
}

func TestParseScript_Errors(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		wantErr string
	}{
		{"unknown instruction", "grow a 10", `line 1: unknown instruction "grow"`},
		{"missing size", "alloc a", "alloc takes 2 operand(s), got 1"},
		{"extra operand", "info now", "info takes 0 operand(s), got 1"},
		{"negative size", "alloc a -4", `bad size "-4"`},
		{"non-numeric size", "realloc a big", `bad size "big"`},
		{"fill overflow", "\nfill a 256", `line 2: bad fill byte "256"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseScript(strings.NewReader(tt.src))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestParseScript_Empty(t *testing.T) {
	ops, err := parseScript(strings.NewReader("# nothing here\n\n   \n"))
	require.NoError(t, err)
	assert.Empty(t, ops)
}

func TestLoadScript_Missing(t *testing.T) {
	_, err := loadScript("testdata/does-not-exist.trace")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open script")
}
