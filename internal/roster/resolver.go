// Package roster reads employee tables and infers which columns matter.
package roster

import (
	"errors"
	"strings"
)

// ErrInsufficientColumns is returned when a table lacks the minimum two
// columns needed for positional fallback.
var ErrInsufficientColumns = errors.New("roster needs at least two columns")

// ResolvedColumns identifies which table columns hold each employee field.
// Prefix is empty and PrefixIdx is -1 when no prefix column exists.
type ResolvedColumns struct {
	Name   string
	ID     string
	Prefix string

	NameIdx   int
	IDIdx     int
	PrefixIdx int
}

// HasPrefix reports whether a per-row prefix column was found.
func (rc ResolvedColumns) HasPrefix() bool {
	return rc.PrefixIdx >= 0
}

// Resolve infers employee columns from header names using case-insensitive
// substring heuristics, first match wins: "name" for the employee name,
// "code" or "id" for the identifier, "prefix" for the optional per-row
// prefix. Columns without a heuristic match fall back to position (column 0
// for name, column 1 for identifier). This is best effort, not a validated
// schema: aside from the two-column minimum it never fails.
func Resolve(columns []string) (ResolvedColumns, error) {
	if len(columns) < 2 {
		return ResolvedColumns{}, ErrInsufficientColumns
	}

	rc := ResolvedColumns{NameIdx: -1, IDIdx: -1, PrefixIdx: -1}
	for i, col := range columns {
		lower := strings.ToLower(col)
		if rc.NameIdx < 0 && strings.Contains(lower, "name") {
			rc.Name, rc.NameIdx = col, i
		}
		if rc.IDIdx < 0 && (strings.Contains(lower, "code") || strings.Contains(lower, "id")) {
			rc.ID, rc.IDIdx = col, i
		}
		if rc.PrefixIdx < 0 && strings.Contains(lower, "prefix") {
			rc.Prefix, rc.PrefixIdx = col, i
		}
	}

	if rc.NameIdx < 0 {
		rc.Name, rc.NameIdx = columns[0], 0
	}
	if rc.IDIdx < 0 {
		rc.ID, rc.IDIdx = columns[1], 1
	}
	return rc, nil
}
