package toolchain

import (
	"runtime"
	"sort"
)

// Role is the job a tool performs in the pipeline.
type Role string

const (
	RoleCompiler Role = "cc"
	RoleArchiver Role = "ar"
)

// Source records where a tool path came from.
type Source string

const (
	SourceUnknown Source = ""
	SourceEnv     Source = "env"
	SourceConfig  Source = "config"
	SourceCross   Source = "cross"
	SourceSystem  Source = "system"
)

// Definition describes how to discover and probe one tool.
type Definition struct {
	Role          Role
	Candidates    []string
	VersionSwitch string
	// Cross is the executable suffix appended to a platform cross prefix.
	Cross string
}

var definitions = map[Role]Definition{
	RoleCompiler: {
		Role:          RoleCompiler,
		Candidates:    []string{"cc", "gcc", "clang"},
		VersionSwitch: "--version",
		Cross:         "gcc",
	},
	RoleArchiver: {
		Role:          RoleArchiver,
		Candidates:    []string{"ar", "llvm-ar"},
		VersionSwitch: "--version",
		Cross:         "ar",
	},
}

func executableName(base string) string {
	if runtime.GOOS == "windows" {
		return base + ".exe"
	}
	return base
}

// Roles returns the known tool roles in sorted order.
func Roles() []Role {
	roles := make([]Role, 0, len(definitions))
	for role := range definitions {
		roles = append(roles, role)
	}
	sort.Slice(roles, func(i, j int) bool { return roles[i] < roles[j] })
	return roles
}

// DefinitionFor returns the definition of role.
func DefinitionFor(role Role) (Definition, bool) {
	def, ok := definitions[role]
	return def, ok
}
