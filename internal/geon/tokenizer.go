package geon

import (
	"strings"
	"unicode"
)

// Line is one non-blank source line.
type Line struct {
	Number  int    // 1-based line number in the source text
	Indent  int    // count of leading whitespace characters
	Content string // trimmed content
}

// Tokenize splits text into its non-blank lines. Blank lines carry no
// structure and are dropped.
func Tokenize(text string) []Line {
	raw := strings.Split(text, "\n")
	lines := make([]Line, 0, len(raw))

	for i, s := range raw {
		s = strings.TrimRight(s, "\r")
		content := strings.TrimSpace(s)
		if content == "" {
			continue
		}

		indent := 0
		for _, r := range s {
			if !unicode.IsSpace(r) {
				break
			}
			indent++
		}

		lines = append(lines, Line{Number: i + 1, Indent: indent, Content: content})
	}

	return lines
}
