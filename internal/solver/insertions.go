package solver

import (
	"fmt"
	"slices"
)

// PlusOneInsertions returns every sequence obtained by inserting item into
// list at one position in [start, len(list)], in order of that position.
func PlusOneInsertions[T any](list []T, item T, start int) ([][]T, error) {
	if start < 0 || start > len(list) {
		return nil, fmt.Errorf("plus one insertions: start %d out of range [0, %d]", start, len(list))
	}
	out := make([][]T, 0, len(list)-start+1)
	for i := start; i <= len(list); i++ {
		out = append(out, slices.Insert(slices.Clone(list), i, item))
	}
	return out, nil
}

// PlusTwoInsertions returns every sequence obtained by inserting item twice
// into list, the first copy at a position >= start. Results are ordered by
// the position of the first copy, then of the second.
func PlusTwoInsertions[T any](list []T, item T, start int) ([][]T, error) {
	if start < 0 || start > len(list) {
		return nil, fmt.Errorf("plus two insertions: start %d out of range [0, %d]", start, len(list))
	}
	n := len(list) - start
	out := make([][]T, 0, (n+1)*(n+2)/2)
	for i := start; i <= len(list); i++ {
		first := slices.Insert(slices.Clone(list), i, item)
		seconds, err := PlusOneInsertions(first, item, i+1)
		if err != nil {
			return nil, err
		}
		out = append(out, seconds...)
	}
	return out, nil
}
