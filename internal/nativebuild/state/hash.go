package state

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"sort"
)

// BuildInput is the canonical structure hashed for whole-build changes.
// Any difference forces every unit to recompile.
type BuildInput struct {
	Platform string   `json:"platform"`
	Strategy string   `json:"strategy"`
	Flags    []string `json:"flags"`
	Features []string `json:"features"`
}

// FileHash pairs a registered path with its content hash.
type FileHash struct {
	Path string `json:"path"`
	Hash string `json:"hash"`
}

// unitInput is the canonical structure hashed for per-unit changes.
type unitInput struct {
	Source  FileHash   `json:"source"`
	Headers []FileHash `json:"headers"`
}

// BuildConfigHash returns a deterministic hash of the whole-build inputs.
func BuildConfigHash(in BuildInput) string {
	features := append([]string(nil), in.Features...)
	sort.Strings(features)
	in.Features = features
	return hashJSON(in)
}

// UnitInputHash returns a deterministic hash of everything a single
// translation unit consumes. Header order is preserved since inclusion
// order matters.
func UnitInputHash(source FileHash, headers []FileHash) string {
	return hashJSON(unitInput{Source: source, Headers: headers})
}

func hashJSON(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		// Should never happen with known struct types.
		return fmt.Sprintf("sha256:error-%v", err)
	}
	sum := sha256.Sum256(data)
	return fmt.Sprintf("sha256:%x", sum)
}
