package prefs

import (
	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/extensions/khr_surface"
)

type presentModeSource int

const (
	useSyncedDefaults presentModeSource = iota
	useUnsyncedDefaults
	useExplicit
)

// PresentModePreference selects either one of the two built-in present mode
// lists or an explicit ranked list. The zero value selects the synced
// defaults.
type PresentModePreference struct {
	source presentModeSource
	modes  []khr_surface.PresentMode
}

// PresentModesSynced prefers FIFO relaxed, then FIFO.
func PresentModesSynced() PresentModePreference {
	return PresentModePreference{source: useSyncedDefaults}
}

// PresentModesUnsynced prefers mailbox, then immediate, then FIFO.
func PresentModesUnsynced() PresentModePreference {
	return PresentModePreference{source: useUnsyncedDefaults}
}

// PresentModes ranks modes explicitly. An empty list falls back to the
// synced defaults.
func PresentModes(modes ...khr_surface.PresentMode) PresentModePreference {
	if len(modes) == 0 {
		return PresentModesSynced()
	}
	return PresentModePreference{source: useExplicit, modes: append([]khr_surface.PresentMode(nil), modes...)}
}

func (p PresentModePreference) IsExplicit() bool {
	return p.source == useExplicit
}

// List returns the ranked present modes this preference stands for.
func (p PresentModePreference) List() []khr_surface.PresentMode {
	switch p.source {
	case useUnsyncedDefaults:
		return DefaultUnsyncedPresentModes
	case useExplicit:
		return p.modes
	default:
		return DefaultSyncedPresentModes
	}
}

func (p PresentModePreference) String() string {
	switch p.source {
	case useUnsyncedDefaults:
		return "unsynced"
	case useExplicit:
		return "explicit"
	default:
		return "synced"
	}
}

// ChoosePresentMode matches pref against the present modes the surface
// currently reports. An exhausted explicit list is an error like any other
// exhausted list.
func ChoosePresentMode(pref PresentModePreference, available []khr_surface.PresentMode) (khr_surface.PresentMode, error) {
	mode, err := MatchComparable(pref.List(), available)
	if err != nil {
		return mode, errors.Wrapf(err, "choose %s present mode", pref)
	}
	return mode, nil
}
