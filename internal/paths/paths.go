package paths

import (
	"fmt"
	"os"
	"path/filepath"

	"elecbind/internal/config"
)

// ProjectPaths captures canonical locations for an elecbind project.
type ProjectPaths struct {
	Root         string
	ConfigFile   string
	BuildDir     string
	MetaDir      string
	StateFile    string
	LogsDir      string
	ObjDir       string
	BindingsFile string
	CgoFile      string
}

// Resolve determines the project root using the optional --project flag or the
// current working directory when the flag is empty.
func Resolve(projectFlag string) (ProjectPaths, error) {
	var (
		root string
		err  error
	)

	if projectFlag != "" {
		root, err = filepath.Abs(projectFlag)
	} else {
		root, err = os.Getwd()
	}
	if err != nil {
		return ProjectPaths{}, fmt.Errorf("resolve project root: %w", err)
	}

	return newProjectPaths(root), nil
}

func newProjectPaths(root string) ProjectPaths {
	defaults := config.Default()
	pp := ProjectPaths{
		Root:       root,
		ConfigFile: filepath.Join(root, config.FileName),
	}
	return ApplyConfig(pp, defaults)
}

// ApplyConfig derives build and output locations from cfg.
func ApplyConfig(pp ProjectPaths, cfg config.Config) ProjectPaths {
	pp.BuildDir = resolveProjectPath(pp.Root, cfg.Build.Dir)
	pp.MetaDir = filepath.Join(pp.BuildDir, ".elecbind")
	pp.StateFile = filepath.Join(pp.MetaDir, "state.json")
	pp.LogsDir = filepath.Join(pp.BuildDir, "logs")
	pp.ObjDir = filepath.Join(pp.BuildDir, "obj")
	pp.BindingsFile = resolveProjectPath(pp.Root, cfg.Bindings.Output)
	pp.CgoFile = resolveProjectPath(pp.Root, cfg.Cgo.Output)
	return pp
}

// ArchiveDir is where the compile strategy places the static archive for a
// platform library subdirectory, mirroring the redistribution layout.
func (p ProjectPaths) ArchiveDir(libDir string) string {
	return filepath.Join(p.BuildDir, libDir, "lib")
}

func resolveProjectPath(root, value string) string {
	if filepath.IsAbs(value) {
		return filepath.Clean(value)
	}
	return filepath.Join(root, value)
}

// EnsureMetaDirs creates the build, metadata, object and logs directories.
func (p ProjectPaths) EnsureMetaDirs() error {
	dirs := []string{p.BuildDir, p.MetaDir, p.ObjDir, p.LogsDir}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}
	return nil
}

// FileExists reports whether a path exists and is a regular file.
func FileExists(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return info.Mode().IsRegular(), nil
}

// DirExists reports whether a path exists and is a directory.
func DirExists(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return info.IsDir(), nil
}
