// Package prefs negotiates device and surface capabilities against ranked
// preference lists supplied by the application.
//
// Every list is ordered from most to least preferred. Matching always returns
// the earliest-ranked entry present in the available set, and fails with
// fault.ErrNoMatch when no entry is present. There is no "pick anything"
// fallback.
package prefs

import (
	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/presentkit/fault"
)

// Match returns the element of preferred with the lowest rank that equal
// reports as present in available, along with that rank.
func Match[T any](preferred, available []T, equal func(a, b T) bool) (T, int, error) {
	for rank, want := range preferred {
		for _, have := range available {
			if equal(want, have) {
				return want, rank, nil
			}
		}
	}

	var zero T
	return zero, -1, fault.Mark(errors.Newf("none of %d preferences among %d available", len(preferred), len(available)), fault.ErrNoMatch)
}

func MatchComparable[T comparable](preferred, available []T) (T, error) {
	match, _, err := Match(preferred, available, func(a, b T) bool { return a == b })
	return match, err
}

// rankOf returns the index of v in list, or -1.
func rankOf[T comparable](list []T, v T) int {
	for i, item := range list {
		if item == v {
			return i
		}
	}
	return -1
}

func orDefault[T any](list, defaults []T) []T {
	if len(list) == 0 {
		return defaults
	}
	return list
}
