// Package flags assembles the ordered compiler argument list shared by the
// native build and the binding generator.
package flags

import (
	"strings"

	"elecbind/internal/cfgerr"
	"elecbind/internal/envconfig"
	"elecbind/internal/features"
	"elecbind/internal/paths"
	"elecbind/internal/platform"
)

const (
	StdFlag          = "-std=c99"
	DefineStandalone = "LIBELEC_NO_XPLANE"
	DefineLive       = "LIBELEC_WITH_DRS"
)

// FlagList is an ordered, immutable compiler argument list.
type FlagList struct {
	args []string
}

// New copies args into a FlagList.
func New(args ...string) FlagList {
	return FlagList{args: append([]string(nil), args...)}
}

// Args returns a copy of the arguments.
func (f FlagList) Args() []string {
	return append([]string(nil), f.args...)
}

// Len returns the number of arguments.
func (f FlagList) Len() int { return len(f.args) }

// With returns a new list with extra appended.
func (f FlagList) With(extra ...string) FlagList {
	out := make([]string, 0, len(f.args)+len(extra))
	out = append(out, f.args...)
	out = append(out, extra...)
	return FlagList{args: out}
}

// IncludeDirs returns the -I directories in order.
func (f FlagList) IncludeDirs() []string {
	var dirs []string
	for _, a := range f.args {
		if dir, ok := strings.CutPrefix(a, "-I"); ok {
			dirs = append(dirs, dir)
		}
	}
	return dirs
}

// Defines returns the -D macros in order, without the prefix.
func (f FlagList) Defines() []string {
	var defs []string
	for _, a := range f.args {
		if def, ok := strings.CutPrefix(a, "-D"); ok {
			defs = append(defs, def)
		}
	}
	return defs
}

// Equal reports whether two lists hold the same arguments in the same order.
func (f FlagList) Equal(other FlagList) bool {
	if len(f.args) != len(other.args) {
		return false
	}
	for i := range f.args {
		if f.args[i] != other.args[i] {
			return false
		}
	}
	return true
}

func (f FlagList) String() string {
	return strings.Join(f.args, " ")
}

// Assemble builds the flag list for the target platform. The result depends
// only on its inputs. Every include directory must exist.
func Assemble(info platform.Info, deps paths.DependencyPaths, fs features.Set) (FlagList, error) {
	if info.Identity == platform.Unknown {
		return FlagList{}, cfgerr.New(envconfig.KeyTargetOS, "platform is not resolved")
	}
	if fs.Has(features.LiveAttributes) && !fs.Has(features.HostIntegration) {
		return FlagList{}, cfgerr.New(envconfig.KeyFeatures,
			"%s requires %s", features.LiveAttributes, features.HostIntegration)
	}

	args := []string{StdFlag}

	acf, err := includeDir(deps.Acfutils)
	if err != nil {
		return FlagList{}, err
	}
	args = append(args, "-I"+acf)

	sdk, err := includeDir(deps.SDK)
	if err != nil {
		return FlagList{}, err
	}
	args = append(args, "-I"+sdk)
	if widgets := deps.WidgetsIncludeDir(); widgets != "" {
		args = append(args, "-I"+widgets)
	}

	elec, err := includeDir(deps.Libelec)
	if err != nil {
		return FlagList{}, err
	}
	args = append(args, "-I"+elec)

	args = append(args, "-D"+info.Define)
	if !fs.Has(features.HostIntegration) {
		args = append(args, "-D"+DefineStandalone)
	}
	if fs.LiveAttributesEnabled() {
		args = append(args, "-D"+DefineLive)
	}

	return FlagList{args: args}, nil
}

func includeDir(dep paths.Dependency) (string, error) {
	if !dep.Present() || dep.Include == "" {
		return "", cfgerr.New(dep.EnvKey, "%s include directory is required", dep.Name)
	}
	ok, err := paths.DirExists(dep.Include)
	if err != nil {
		return "", cfgerr.Wrap(dep.EnvKey, err)
	}
	if !ok {
		return "", cfgerr.New(dep.EnvKey, "include directory %s does not exist", dep.Include)
	}
	return dep.Include, nil
}
