package paths

import (
	"path/filepath"
	"testing"

	"elecbind/internal/config"
)

func TestResolveDefaults(t *testing.T) {
	root := t.TempDir()
	pp, err := Resolve(root)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if pp.ConfigFile != filepath.Join(root, config.FileName) {
		t.Errorf("ConfigFile = %s", pp.ConfigFile)
	}
	if pp.BuildDir != filepath.Join(root, "build") {
		t.Errorf("BuildDir = %s", pp.BuildDir)
	}
	if pp.StateFile != filepath.Join(root, "build", ".elecbind", "state.json") {
		t.Errorf("StateFile = %s", pp.StateFile)
	}
	if pp.BindingsFile != filepath.Join(root, "pkg", "libelec", "bindings_gen.go") {
		t.Errorf("BindingsFile = %s", pp.BindingsFile)
	}
}

func TestApplyConfigAbsolute(t *testing.T) {
	root := t.TempDir()
	buildAbs := filepath.Join(t.TempDir(), "out")

	cfg := config.Default()
	cfg.Build.Dir = buildAbs
	cfg.Bindings.Output = "bindings/elec_gen.go"

	applied := ApplyConfig(ProjectPaths{Root: root}, cfg)
	if applied.BuildDir != buildAbs {
		t.Fatalf("expected build dir %s, got %s", buildAbs, applied.BuildDir)
	}
	if applied.BindingsFile != filepath.Join(root, "bindings", "elec_gen.go") {
		t.Fatalf("unexpected bindings file %s", applied.BindingsFile)
	}
	if applied.ArchiveDir("lin64") != filepath.Join(buildAbs, "lin64", "lib") {
		t.Fatalf("unexpected archive dir %s", applied.ArchiveDir("lin64"))
	}
}

func TestEnsureMetaDirs(t *testing.T) {
	pp, _ := Resolve(t.TempDir())
	if err := pp.EnsureMetaDirs(); err != nil {
		t.Fatalf("EnsureMetaDirs: %v", err)
	}
	for _, dir := range []string{pp.BuildDir, pp.MetaDir, pp.ObjDir, pp.LogsDir} {
		ok, err := DirExists(dir)
		if err != nil || !ok {
			t.Errorf("expected %s to exist (err=%v)", dir, err)
		}
	}
}
