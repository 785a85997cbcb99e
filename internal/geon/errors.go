package geon

import "fmt"

// SyntaxError describes a source line the parser skipped.
type SyntaxError struct {
	Line    int
	Content string
	Reason  string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("line %d: %s: %q", e.Line, e.Reason, e.Content)
}

// FieldError describes a field value the builder could not use.
type FieldError struct {
	Field  string
	Value  string
	Reason string
}

func (e *FieldError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("%s: %s: %q", e.Field, e.Reason, e.Value)
}
