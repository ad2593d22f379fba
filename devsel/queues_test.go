package devsel

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vkngwrapper/core/core1_0"
	"github.com/vkngwrapper/presentkit/fault"
)

const (
	g = core1_0.QueueGraphics
	c = core1_0.QueueCompute
	x = core1_0.QueueTransfer
)

func families(flags ...core1_0.QueueFlags) []*core1_0.QueueFamily {
	var out []*core1_0.QueueFamily
	for _, f := range flags {
		out = append(out, &core1_0.QueueFamily{QueueFlags: f, QueueCount: 1})
	}
	return out
}

func presentOn(indices ...int) func(int) (bool, error) {
	return func(index int) (bool, error) {
		for _, i := range indices {
			if i == index {
				return true, nil
			}
		}
		return false, nil
	}
}

func TestAssignQueueFamiliesDedicated(t *testing.T) {
	a, err := AssignQueueFamilies(families(g|c|x, c|x, x), presentOn(0), RoleGraphics|RoleCompute|RoleTransfer)
	require.NoError(t, err)
	assert.Equal(t, QueueFamilyAssignment{Graphics: 0, Compute: 1, Transfer: 2}, a)
	assert.Equal(t, []int{0, 1, 2}, a.Unique())
}

func TestAssignQueueFamiliesGraphicsNeedsPresent(t *testing.T) {
	a, err := AssignQueueFamilies(families(g|c|x, g|c|x), presentOn(1), RoleGraphics)
	require.NoError(t, err)
	assert.Equal(t, 1, a.Graphics)

	_, err = AssignQueueFamilies(families(g|c|x, c), presentOn(1), RoleGraphics|RoleCompute)
	assert.ErrorIs(t, err, fault.ErrNoGraphicsQueue)
}

func TestAssignQueueFamiliesFirstGraphicsWins(t *testing.T) {
	a, err := AssignQueueFamilies(families(g|c|x, g|c|x), presentOn(0, 1), RoleGraphics)
	require.NoError(t, err)
	assert.Equal(t, 0, a.Graphics)
}

func TestAssignQueueFamiliesMissingOptionalRoles(t *testing.T) {
	a, err := AssignQueueFamilies(families(g|c|x), presentOn(0), RoleGraphics|RoleCompute|RoleTransfer)
	require.NoError(t, err)
	assert.Equal(t, 0, a.Graphics)
	assert.Equal(t, NoIndex, a.Compute)
	assert.Equal(t, NoIndex, a.Transfer)
	assert.True(t, a.Has(RoleGraphics))
	assert.False(t, a.Has(RoleCompute))
	assert.False(t, a.Has(RoleTransfer))
}

func TestAssignQueueFamiliesNeverSharesAFamily(t *testing.T) {
	layouts := [][]core1_0.QueueFlags{
		{g | c | x, c | x, x},
		{c | x, g | c | x, x, c},
		{x, c, g},
		{g | x, c | x, g | c},
		{c | x, c | x, x, x},
	}

	for _, layout := range layouts {
		a, err := AssignQueueFamilies(families(layout...), presentOn(0, 1, 2, 3), RoleGraphics|RoleCompute|RoleTransfer)
		if errors.Is(err, fault.ErrNoGraphicsQueue) {
			continue
		}
		require.NoError(t, err)

		seen := map[int]bool{}
		for _, index := range a.Unique() {
			assert.False(t, seen[index], "layout %v assigned family %d twice", layout, index)
			seen[index] = true
		}
		if a.Compute != NoIndex {
			assert.Zero(t, layout[a.Compute]&g)
		}
		if a.Transfer != NoIndex {
			assert.Zero(t, layout[a.Transfer]&(g|c))
		}
	}
}

func TestAssignQueueFamiliesOnlyRequestedRoles(t *testing.T) {
	a, err := AssignQueueFamilies(families(c, x), presentOn(), RoleTransfer)
	require.NoError(t, err)
	assert.Equal(t, QueueFamilyAssignment{Graphics: NoIndex, Compute: NoIndex, Transfer: 1}, a)
}

func TestAssignQueueFamiliesPresentError(t *testing.T) {
	_, err := AssignQueueFamilies(families(g), func(int) (bool, error) { return false, errors.New("surface lost") }, RoleGraphics)
	assert.Error(t, err)
}

func TestQueueCreateInfos(t *testing.T) {
	infos := QueueCreateInfos(QueueFamilyAssignment{Graphics: 0, Compute: NoIndex, Transfer: 2})
	require.Len(t, infos, 2)
	assert.Equal(t, 0, infos[0].QueueFamilyIndex)
	assert.Equal(t, 2, infos[1].QueueFamilyIndex)
	assert.Equal(t, []float32{1.0}, infos[1].QueuePriorities)
}
