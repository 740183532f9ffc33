package state

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"
)

// UnitState tracks the inputs and output of a single compiled unit.
type UnitState struct {
	Source    string `json:"source"`
	InputHash string `json:"input_hash"`
	// Deps are the headers the compiler reported for the unit, beyond the
	// ones tracked for every unit.
	Deps       []string  `json:"deps,omitempty"`
	CompiledAt time.Time `json:"compiled_at"`
}

// BuildState tracks every registered input of the last successful build.
type BuildState struct {
	BuildID     string               `json:"build_id,omitempty"`
	ConfigHash  string               `json:"config_hash"`
	Fingerprint string               `json:"fingerprint"`
	Flags       []string             `json:"flags,omitempty"`
	Features    []string             `json:"features,omitempty"`
	Strategy    string               `json:"strategy,omitempty"`
	Inputs      []FileHash           `json:"inputs,omitempty"`
	Archive     string               `json:"archive,omitempty"`
	BuiltAt     time.Time            `json:"built_at"`
	Units       map[string]UnitState `json:"units"`
}

// Load reads build state from the given path. A missing or corrupt file
// returns an empty state without error.
func Load(path string) (*BuildState, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return emptyState(), nil
	}

	var bs BuildState
	if err := json.Unmarshal(data, &bs); err != nil {
		return emptyState(), nil
	}

	if bs.Units == nil {
		bs.Units = map[string]UnitState{}
	}
	return &bs, nil
}

// Save writes the build state atomically to the given path.
func (bs *BuildState) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(bs, "", "  ")
	if err != nil {
		return err
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}

	return os.Rename(tmp, path)
}

func emptyState() *BuildState {
	return &BuildState{
		Units: map[string]UnitState{},
	}
}
