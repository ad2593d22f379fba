package prefs

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vkngwrapper/presentkit/fault"
)

func TestMatchPrefersLowestRank(t *testing.T) {
	got, rank, err := Match([]int{7, 3, 5}, []int{5, 3}, func(a, b int) bool { return a == b })
	require.NoError(t, err)
	assert.Equal(t, 3, got)
	assert.Equal(t, 1, rank)
}

func TestMatchNoMatch(t *testing.T) {
	_, rank, err := Match([]int{1, 2}, []int{3}, func(a, b int) bool { return a == b })
	assert.ErrorIs(t, err, fault.ErrNoMatch)
	assert.Equal(t, -1, rank)

	_, err = MatchComparable([]string(nil), []string{"a"})
	assert.ErrorIs(t, err, fault.ErrNoMatch)
}

func TestMatchProperty(t *testing.T) {
	rng := rand.New(rand.NewSource(1))

	for iter := 0; iter < 500; iter++ {
		preferred := rng.Perm(8)[:1+rng.Intn(8)]
		var available []int
		for v := 0; v < 8; v++ {
			if rng.Intn(2) == 0 {
				available = append(available, v)
			}
		}

		got, err := MatchComparable(preferred, available)
		if err != nil {
			for _, p := range preferred {
				assert.NotContains(t, available, p)
			}
			continue
		}

		assert.Contains(t, preferred, got)
		assert.Contains(t, available, got)
		for _, p := range preferred[:rankOf(preferred, got)] {
			assert.NotContains(t, available, p, "preferred %v available %v", preferred, available)
		}
	}
}
