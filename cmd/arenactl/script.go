package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// opKind is one trace instruction.
type opKind string

const (
	opAlloc   opKind = "alloc"
	opRealloc opKind = "realloc"
	opFree    opKind = "free"
	opFill    opKind = "fill"
	opInfo    opKind = "info"
	opCheck   opKind = "check"
)

// op is a parsed trace line.
type op struct {
	Line int
	Kind opKind
	Name string
	Size int
	Fill byte
}

func (o op) String() string {
	switch o.Kind {
	case opAlloc, opRealloc:
		return fmt.Sprintf("%s %s %d", o.Kind, o.Name, o.Size)
	case opFree:
		return fmt.Sprintf("%s %s", o.Kind, o.Name)
	case opFill:
		return fmt.Sprintf("%s %s 0x%02x", o.Kind, o.Name, o.Fill)
	default:
		return string(o.Kind)
	}
}

// arity is the number of operands each instruction takes.
var arity = map[opKind]int{
	opAlloc:   2,
	opRealloc: 2,
	opFree:    1,
	opFill:    2,
	opInfo:    0,
	opCheck:   0,
}

// parseScript reads a trace: one instruction per line, '#' starts a comment.
func parseScript(r io.Reader) ([]op, error) {
	var ops []op
	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		text := sc.Text()
		if i := strings.IndexByte(text, '#'); i >= 0 {
			text = text[:i]
		}
		fields := strings.Fields(text)
		if len(fields) == 0 {
			continue
		}

		o := op{Line: line, Kind: opKind(strings.ToLower(fields[0]))}
		want, ok := arity[o.Kind]
		if !ok {
			return nil, fmt.Errorf("line %d: unknown instruction %q", line, fields[0])
		}
		if len(fields)-1 != want {
			return nil, fmt.Errorf("line %d: %s takes %d operand(s), got %d", line, o.Kind, want, len(fields)-1)
		}
		if want > 0 {
			o.Name = fields[1]
		}

		switch o.Kind {
		case opAlloc, opRealloc:
			n, err := strconv.Atoi(fields[2])
			if err != nil || n < 0 {
				return nil, fmt.Errorf("line %d: bad size %q", line, fields[2])
			}
			o.Size = n
		case opFill:
			b, err := strconv.ParseUint(fields[2], 0, 8)
			if err != nil {
				return nil, fmt.Errorf("line %d: bad fill byte %q", line, fields[2])
			}
			o.Fill = byte(b)
		}
		ops = append(ops, o)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return ops, nil
}

// loadScript parses the trace at path; "-" reads standard input.
func loadScript(path string) ([]op, error) {
	if path == "-" {
		return parseScript(os.Stdin)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open script: %w", err)
	}
	defer f.Close()
	return parseScript(f)
}
