// Package asm assembles the simulator's plain-text assembly language into a
// loaded memory image: one pass strips comments and blank lines, a second
// resolves label references to hex literals of their absolute addresses, and a third
// decodes each remaining line into either an Instruction or a bare data
// word.
package asm

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/sarchlab/rrsim/mem"
)

// ParseError reports a malformed assembly line. Line is the index into the
// comment-stripped, blank-line-removed source (with label-only lines also
// removed, for errors after label extraction) — not the original file line
// number, since all of those are discarded before line numbers matter.
type ParseError struct {
	Line int
	Text string
	Msg  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: %s: %q", e.Line, e.Msg, e.Text)
}

// AssembleFile reads path and assembles it into a fresh Memory image.
func AssembleFile(path string) (*mem.Memory, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read assembly source: %w", err)
	}
	return Assemble(string(data))
}

// Assemble decodes source into a fresh Memory image.
func Assemble(source string) (*mem.Memory, error) {
	lines := stripCommentsAndBlanks(source)

	labels, labelOrder, err := extractLabels(&lines)
	if err != nil {
		return nil, err
	}

	resolveLabels(lines, labels, labelOrder)

	m := mem.New()
	for idx, line := range lines {
		inst, word, isInst, err := parseLine(line, idx)
		if err != nil {
			return nil, err
		}
		if isInst {
			m.SetInstruction(int64(idx), inst)
		} else {
			m.Set(int64(idx), word)
		}
	}

	return m, nil
}

func stripCommentsAndBlanks(source string) []string {
	raw := strings.Split(source, "\n")
	out := make([]string, 0, len(raw))
	for _, line := range raw {
		if i := strings.IndexByte(line, ';'); i >= 0 {
			line = line[:i]
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		out = append(out, line)
	}
	return out
}

// extractLabels finds every "label:" or "label: rest-of-line" prefix,
// records its PC, and either deletes the now-empty line (a label on its own
// line) or leaves the trailing instruction text in place. labelOrder
// preserves first-seen order so resolveLabels substitutes deterministically
// regardless of map iteration order.
func extractLabels(lines *[]string) (map[string]int, []string, error) {
	labels := map[string]int{}
	var labelOrder []string

	idx := 0
	for idx < len(*lines) {
		line := (*lines)[idx]
		colons := strings.Count(line, ":")

		if colons > 1 {
			return nil, nil, &ParseError{Line: idx, Text: line, Msg: "multiple colons: only one label per line is allowed"}
		}

		if colons == 1 {
			parts := strings.SplitN(line, ":", 2)
			left, right := parts[0], parts[1]

			if _, exists := labels[left]; exists {
				return nil, nil, &ParseError{Line: idx, Text: line, Msg: "label reused: " + left}
			}
			labels[left] = idx
			labelOrder = append(labelOrder, left)

			if right == "" {
				*lines = append((*lines)[:idx], (*lines)[idx+1:]...)
				idx--
			} else {
				(*lines)[idx] = right
			}
		}

		idx++
	}

	return labels, labelOrder, nil
}

func resolveLabels(lines []string, labels map[string]int, labelOrder []string) {
	for idx, line := range lines {
		for _, name := range labelOrder {
			if strings.Contains(line, name) {
				line = strings.ReplaceAll(line, name, fmt.Sprintf("0x%x", labels[name]))
			}
		}
		lines[idx] = line
	}
}

func parseImm(s string) (int64, error) {
	return strconv.ParseInt(strings.TrimPrefix(strings.ToLower(s), "0x"), 16, 64)
}
