package state

import (
	"os"
)

const (
	ActionCompile = "compile"
	ActionSkip    = "skip"

	ReasonForced        = "forced"
	ReasonNew           = "new"
	ReasonFlagsChanged  = "flags changed"
	ReasonInputChanged  = "input changed"
	ReasonOutputMissing = "output missing"
	ReasonUpToDate      = "up to date"
)

// Unit is one translation unit as seen by change detection.
type Unit struct {
	Source    string
	Object    string
	InputHash string
}

// UnitAction describes the action to take for a single unit.
type UnitAction struct {
	Unit   Unit
	Action string
	Reason string
}

// DetectChanges determines which units need recompiling by comparing current
// inputs against the stored build state. Units are keyed by object path.
func DetectChanges(bs *BuildState, units []Unit, configHash string, force bool) []UnitAction {
	actions := make([]UnitAction, len(units))

	if force {
		for i, u := range units {
			actions[i] = UnitAction{Unit: u, Action: ActionCompile, Reason: ReasonForced}
		}
		return actions
	}

	if bs.ConfigHash != "" && configHash != bs.ConfigHash {
		for i, u := range units {
			actions[i] = UnitAction{Unit: u, Action: ActionCompile, Reason: ReasonFlagsChanged}
		}
		return actions
	}

	for i, u := range units {
		prior, exists := bs.Units[u.Object]
		if !exists || bs.ConfigHash == "" {
			actions[i] = UnitAction{Unit: u, Action: ActionCompile, Reason: ReasonNew}
			continue
		}

		if u.InputHash != prior.InputHash {
			actions[i] = UnitAction{Unit: u, Action: ActionCompile, Reason: ReasonInputChanged}
			continue
		}

		if _, err := os.Stat(u.Object); os.IsNotExist(err) {
			actions[i] = UnitAction{Unit: u, Action: ActionCompile, Reason: ReasonOutputMissing}
			continue
		}

		actions[i] = UnitAction{Unit: u, Action: ActionSkip, Reason: ReasonUpToDate}
	}

	return actions
}

// ArchiveReason reports why the archive must be rebuilt, or ReasonUpToDate
// when every unit was skipped and the archive is on disk.
func ArchiveReason(actions []UnitAction, archive string) string {
	for _, a := range actions {
		if a.Action == ActionCompile {
			return a.Reason
		}
	}
	if _, err := os.Stat(archive); err != nil {
		return ReasonOutputMissing
	}
	return ReasonUpToDate
}

// Prune removes entries from the build state that are not in the current set
// of object keys.
func Prune(bs *BuildState, currentKeys map[string]bool) {
	for key := range bs.Units {
		if !currentKeys[key] {
			delete(bs.Units, key)
		}
	}
}

// Summary counts actions by type.
func Summary(actions []UnitAction) (compile, skip int) {
	for _, a := range actions {
		switch a.Action {
		case ActionCompile:
			compile++
		case ActionSkip:
			skip++
		}
	}
	return compile, skip
}
