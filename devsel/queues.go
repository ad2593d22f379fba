package devsel

import (
	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/core1_0"
	"github.com/vkngwrapper/presentkit/fault"
)

// NoIndex marks a queue role that was not requested or could not be filled.
const NoIndex = -1

type Role int

const (
	RoleGraphics Role = 1 << iota
	RoleCompute
	RoleTransfer
)

// QueueFamilyAssignment holds one queue family index per role.
type QueueFamilyAssignment struct {
	Graphics int
	Compute  int
	Transfer int
}

func (a QueueFamilyAssignment) Has(role Role) bool {
	switch role {
	case RoleGraphics:
		return a.Graphics != NoIndex
	case RoleCompute:
		return a.Compute != NoIndex
	case RoleTransfer:
		return a.Transfer != NoIndex
	}
	return false
}

// Unique returns the assigned family indices in role order.
func (a QueueFamilyAssignment) Unique() []int {
	var indices []int
	for _, index := range []int{a.Graphics, a.Compute, a.Transfer} {
		if index != NoIndex {
			indices = append(indices, index)
		}
	}
	return indices
}

// AssignQueueFamilies scans families once, in index order. A family becomes
// the graphics family if it supports graphics and can present, the compute
// family if it supports compute but not graphics, or the transfer family if
// it supports transfer but neither graphics nor compute. The first family to
// qualify for a role keeps it, and no family serves two roles.
//
// A requested graphics role that cannot be filled is an error. Compute and
// transfer are left at NoIndex instead.
func AssignQueueFamilies(families []*core1_0.QueueFamily, present func(familyIndex int) (bool, error), want Role) (QueueFamilyAssignment, error) {
	assignment := QueueFamilyAssignment{Graphics: NoIndex, Compute: NoIndex, Transfer: NoIndex}

	for index, family := range families {
		flags := family.QueueFlags
		graphics := flags&core1_0.QueueGraphics != 0
		compute := flags&core1_0.QueueCompute != 0
		transfer := flags&core1_0.QueueTransfer != 0

		if want&RoleGraphics != 0 && graphics {
			if assignment.Graphics != NoIndex {
				continue
			}

			supported, err := present(index)
			if err != nil {
				return assignment, errors.Wrapf(err, "query present support of queue family %d", index)
			}
			if supported {
				assignment.Graphics = index
			}
			continue
		}

		if want&RoleCompute != 0 && compute && !graphics {
			if assignment.Compute == NoIndex {
				assignment.Compute = index
			}
			continue
		}

		if want&RoleTransfer != 0 && transfer && !graphics && !compute {
			if assignment.Transfer == NoIndex {
				assignment.Transfer = index
			}
		}
	}

	if want&RoleGraphics != 0 && assignment.Graphics == NoIndex {
		return assignment, fault.Mark(errors.Newf("none of %d queue families supports graphics and presentation", len(families)), fault.ErrNoGraphicsQueue)
	}

	return assignment, nil
}
