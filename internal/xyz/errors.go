package xyz

import (
	"errors"
	"fmt"
	"strings"
)

// ErrRowMismatch indicates a column or layer table whose row count differs from the model's.
var ErrRowMismatch = errors.New("row count mismatch")

// MalformedHeaderError indicates the header section ended while a key was still waiting for its value.
type MalformedHeaderError struct {
	Line   int
	Key    string
	Reason string
}

func (e *MalformedHeaderError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("malformed header at line %d: key %q: %s", e.Line, e.Key, e.Reason)
	}
	return fmt.Sprintf("malformed header at line %d: %s", e.Line, e.Reason)
}

// ColumnCountMismatchError indicates a body row with more tokens than declared columns.
type ColumnCountMismatchError struct {
	Line int
	Want int
	Got  int
}

func (e *ColumnCountMismatchError) Error() string {
	return fmt.Sprintf("line %d: expected %d columns, got %d", e.Line, e.Want, e.Got)
}

// AmbiguousLayerColumnError indicates two raw columns that classify into the same layer slot.
type AmbiguousLayerColumnError struct {
	Group   string
	Layer   int
	Columns []string
}

func (e *AmbiguousLayerColumnError) Error() string {
	return fmt.Sprintf("columns %s collide in layer group %q at layer %d",
		strings.Join(e.Columns, ", "), e.Group, e.Layer)
}
