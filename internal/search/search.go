// Package search narrows an already-fetched list in memory.
//
// Filtering never widens the input: every result element comes from the source
// slice, in source order, and the source is never modified.
package search

import (
	"slices"
	"strings"

	"golang.org/x/text/cases"
)

// Field extracts one searchable string from an item.
type Field[T any] func(T) string

// Normalize case-folds s. Casers are stateful, so one is built per call.
func Normalize(s string) string {
	return cases.Fold().String(s)
}

// Matches reports whether the folded term is a substring of any folded value.
// A blank term matches everything.
func Matches(term string, values ...string) bool {
	term = strings.TrimSpace(term)
	if term == "" {
		return true
	}
	return matchesFolded(Normalize(term), values)
}

func matchesFolded(folded string, values []string) bool {
	for _, v := range values {
		if v == "" {
			continue
		}
		if strings.Contains(Normalize(v), folded) {
			return true
		}
	}
	return false
}

// Filter returns the items for which any field contains term, ignoring case.
// The term is trimmed first, so a whitespace-only term counts as blank and
// returns a copy of items. No match returns an empty, non-nil slice.
func Filter[T any](items []T, term string, fields ...Field[T]) []T {
	term = strings.TrimSpace(term)
	if term == "" {
		return slices.Clone(items)
	}

	folded := Normalize(term)
	out := make([]T, 0, len(items))
	values := make([]string, len(fields))
	for _, item := range items {
		for i, f := range fields {
			values[i] = f(item)
		}
		if matchesFolded(folded, values) {
			out = append(out, item)
		}
	}
	return out
}
