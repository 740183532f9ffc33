package paths

import (
	"fmt"
	"path/filepath"

	"elecbind/internal/cfgerr"
	"elecbind/internal/envconfig"
)

// Layout distinguishes a buildable source tree from a redistribution tree.
type Layout string

const (
	LayoutNone   Layout = ""
	LayoutSource Layout = "source"
	LayoutRedist Layout = "redist"
)

// Dependency is one externally supplied root.
type Dependency struct {
	Name   string `json:"name"`
	EnvKey string `json:"env"`
	Root   string `json:"root,omitempty"`
	Layout Layout `json:"layout,omitempty"`
	// Include is the header search directory derived from Root and Layout.
	Include string `json:"include,omitempty"`
}

// Present reports whether the dependency was resolved.
func (d Dependency) Present() bool {
	return d.Root != ""
}

// DependencyPaths maps each logical dependency to its location.
type DependencyPaths struct {
	Libelec  Dependency `json:"libelec"`
	Acfutils Dependency `json:"libacfutils"`
	SDK      Dependency `json:"sdk"`
}

// Requirements says which optional roots the selected build needs.
type Requirements struct {
	Acfutils bool
	SDK      bool
}

// ResolveDependencies validates the environment-provided roots required by
// req. libelec is always required. Roots that are set but not required are
// still resolved so they can be reported, but a problem with them is not
// fatal.
func ResolveDependencies(env envconfig.Env, req Requirements) (DependencyPaths, error) {
	var deps DependencyPaths
	var err error

	deps.Libelec, err = resolveLibelec(env.Libelec)
	if err != nil {
		return DependencyPaths{}, err
	}

	deps.Acfutils, err = resolveAcfutils(env.Acfutils)
	if err != nil && req.Acfutils {
		return DependencyPaths{}, err
	}
	if err != nil {
		deps.Acfutils = Dependency{Name: "libacfutils", EnvKey: envconfig.KeyAcfutils}
	}

	deps.SDK, err = resolveSDK(env.SDK)
	if err != nil && req.SDK {
		return DependencyPaths{}, err
	}
	if err != nil {
		deps.SDK = Dependency{Name: "X-Plane SDK", EnvKey: envconfig.KeySDK}
	}

	return deps, nil
}

func absRoot(key, value string) (string, error) {
	if value == "" {
		return "", cfgerr.New(key, "not set")
	}
	abs, err := filepath.Abs(value)
	if err != nil {
		return "", cfgerr.Wrap(key, err)
	}
	ok, err := DirExists(abs)
	if err != nil {
		return "", cfgerr.Wrap(key, err)
	}
	if !ok {
		return "", cfgerr.New(key, "directory %s does not exist", abs)
	}
	return abs, nil
}

func resolveLibelec(value string) (Dependency, error) {
	dep := Dependency{Name: "libelec", EnvKey: envconfig.KeyLibelec}
	root, err := absRoot(dep.EnvKey, value)
	if err != nil {
		return dep, err
	}
	dep.Root = root

	if ok, _ := FileExists(filepath.Join(root, "src", "libelec.c")); ok {
		dep.Layout = LayoutSource
		dep.Include = filepath.Join(root, "src")
		return dep, nil
	}
	if ok, _ := FileExists(filepath.Join(root, "include", "libelec.h")); ok {
		dep.Layout = LayoutRedist
		dep.Include = filepath.Join(root, "include")
		return dep, nil
	}
	return dep, cfgerr.New(dep.EnvKey, "%s holds neither src/libelec.c nor include/libelec.h", root)
}

func resolveAcfutils(value string) (Dependency, error) {
	dep := Dependency{Name: "libacfutils", EnvKey: envconfig.KeyAcfutils}
	root, err := absRoot(dep.EnvKey, value)
	if err != nil {
		return dep, err
	}
	dep.Root = root

	candidates := []struct {
		layout  Layout
		include string
	}{
		{LayoutRedist, filepath.Join(root, "libacfutils-redist", "include")},
		{LayoutRedist, filepath.Join(root, "include")},
		{LayoutSource, filepath.Join(root, "src")},
	}
	for _, c := range candidates {
		if ok, _ := DirExists(filepath.Join(c.include, "acfutils")); ok {
			dep.Layout = c.layout
			dep.Include = c.include
			return dep, nil
		}
	}
	return dep, cfgerr.New(dep.EnvKey, "%s has no acfutils header directory", root)
}

func resolveSDK(value string) (Dependency, error) {
	dep := Dependency{Name: "X-Plane SDK", EnvKey: envconfig.KeySDK}
	root, err := absRoot(dep.EnvKey, value)
	if err != nil {
		return dep, err
	}
	dep.Root = root
	dep.Layout = LayoutRedist
	dep.Include = filepath.Join(root, "CHeaders", "XPLM")
	if ok, _ := DirExists(dep.Include); !ok {
		return dep, cfgerr.New(dep.EnvKey, "%s has no CHeaders/XPLM directory", root)
	}
	return dep, nil
}

// WidgetsIncludeDir returns the optional Widgets header directory of the
// SDK, or "" when absent.
func (d DependencyPaths) WidgetsIncludeDir() string {
	if !d.SDK.Present() {
		return ""
	}
	dir := filepath.Join(d.SDK.Root, "CHeaders", "Widgets")
	if ok, _ := DirExists(dir); ok {
		return dir
	}
	return ""
}

// AcfutilsLibDir returns the redistributed libacfutils archive directory for
// a platform subdirectory, or "" when libacfutils is not a redistribution.
func (d DependencyPaths) AcfutilsLibDir(platformDir string) string {
	if d.Acfutils.Layout != LayoutRedist {
		return ""
	}
	return filepath.Join(filepath.Dir(d.Acfutils.Include), platformDir, "lib")
}

// LibelecLibDir returns the prebuilt archive directory of a libelec
// redistribution for a platform subdirectory.
func (d DependencyPaths) LibelecLibDir(platformDir string) string {
	return filepath.Join(d.Libelec.Root, platformDir, "lib")
}

func (d Dependency) String() string {
	if !d.Present() {
		return fmt.Sprintf("%s (unset)", d.Name)
	}
	return fmt.Sprintf("%s %s [%s]", d.Name, d.Root, d.Layout)
}
