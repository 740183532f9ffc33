package cli

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"elecbind/internal/cfgerr"
	"elecbind/internal/envconfig"
	"elecbind/internal/pipeline"
)

// execute runs the root command with a fake environment and returns
// everything written to stdout and stderr.
func execute(t *testing.T, env map[string]string, args ...string) (string, error) {
	t.Helper()
	projectDir, outputJSON, targetOS, featureSelects = "", false, "", nil
	lookupEnv = mapLookup(env)
	t.Cleanup(func() { lookupEnv = nil })

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func writeFile(t *testing.T, path, contents string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatal(err)
	}
}

// depsEnv lays out a libelec redistribution with a linux archive, a
// libacfutils redistribution and an SDK, and returns the matching env.
func depsEnv(t *testing.T) map[string]string {
	t.Helper()
	root := t.TempDir()
	libelec := filepath.Join(root, "libelec")
	writeFile(t, filepath.Join(libelec, "include", "libelec.h"), "void *libelec_new(const char *filename);\n")
	writeFile(t, filepath.Join(libelec, "lin64", "lib", "libelec.a"), "!<arch>\n")

	acfutils := filepath.Join(root, "acfutils")
	writeFile(t, filepath.Join(acfutils, "libacfutils-redist", "include", "acfutils", "core.h"), "\n")

	sdk := filepath.Join(root, "SDK")
	writeFile(t, filepath.Join(sdk, "CHeaders", "XPLM", "XPLMDefs.h"), "\n")

	return map[string]string{
		envconfig.KeyLibelec:  libelec,
		envconfig.KeyAcfutils: acfutils,
		envconfig.KeySDK:      sdk,
	}
}

func TestPlatformCommandJSON(t *testing.T) {
	out, err := execute(t, nil, "platform", "--target", "windows", "--json")
	if err != nil {
		t.Fatalf("platform: %v", err)
	}
	for _, want := range []string{`"identity": "Windows"`, `"lib_dir": "mingw64"`, `"define": "IBM"`} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %s:\n%s", want, out)
		}
	}
}

func TestPlatformCommandUsesEnvTarget(t *testing.T) {
	out, err := execute(t, map[string]string{envconfig.KeyTargetOS: "macos"}, "platform")
	if err != nil {
		t.Fatalf("platform: %v", err)
	}
	if !strings.Contains(out, "mac64") || !strings.Contains(out, "archive: libelec.a") {
		t.Fatalf("unexpected output:\n%s", out)
	}
}

func TestPlatformCommandMissingTarget(t *testing.T) {
	_, err := execute(t, nil, "platform")
	var ce *cfgerr.Error
	if !errors.As(err, &ce) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestPlatformCommandAll(t *testing.T) {
	out, err := execute(t, nil, "platform", "--all")
	if err != nil {
		t.Fatalf("platform --all: %v", err)
	}
	for _, want := range []string{"mingw64", "mac64", "lin64"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %s:\n%s", want, out)
		}
	}
}

func TestEnvCommandJSON(t *testing.T) {
	out, err := execute(t, map[string]string{envconfig.KeyLibelec: "/opt/libelec"}, "env", "--json")
	if err != nil {
		t.Fatalf("env: %v", err)
	}
	if !strings.Contains(out, `"value": "/opt/libelec"`) {
		t.Fatalf("output missing LIBELEC value:\n%s", out)
	}
	if !strings.Contains(out, `"name": "XPLANE_SDK"`) {
		t.Fatalf("output missing XPLANE_SDK:\n%s", out)
	}
}

func TestConfigInitAndShow(t *testing.T) {
	dir := t.TempDir()
	if _, err := execute(t, nil, "--project", dir, "config", "init"); err != nil {
		t.Fatalf("config init: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "elecbind.yaml")); err != nil {
		t.Fatalf("config file not written: %v", err)
	}

	if _, err := execute(t, nil, "--project", dir, "config", "init"); err == nil {
		t.Fatal("expected second init to fail without --force")
	}
	if _, err := execute(t, nil, "--project", dir, "config", "init", "--force"); err != nil {
		t.Fatalf("config init --force: %v", err)
	}

	out, err := execute(t, nil, "--project", dir, "config", "show")
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	if !strings.Contains(out, "strategy: link") {
		t.Fatalf("unexpected config:\n%s", out)
	}
}

func TestFlagsCommandLines(t *testing.T) {
	env := depsEnv(t)
	out, err := execute(t, env, "--project", t.TempDir(), "flags", "--target", "linux", "--lines")
	if err != nil {
		t.Fatalf("flags: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if lines[0] != "-std=c99" {
		t.Fatalf("first flag = %q", lines[0])
	}
	if last := lines[len(lines)-1]; last != "-DLIBELEC_NO_XPLANE" {
		t.Fatalf("last flag = %q", last)
	}

	out, err = execute(t, env, "--project", t.TempDir(), "flags", "--target", "linux", "--lines",
		"--features", "host-integration,live-attributes")
	if err != nil {
		t.Fatalf("flags with features: %v", err)
	}
	if !strings.Contains(out, "-DLIBELEC_WITH_DRS") {
		t.Fatalf("missing live attribute define:\n%s", out)
	}
}

func TestBuildDryRunLinkOnly(t *testing.T) {
	out, err := execute(t, depsEnv(t), "--project", t.TempDir(), "build", "--target", "linux", "--dry-run")
	if err != nil {
		t.Fatalf("build --dry-run: %v", err)
	}
	if !strings.Contains(out, "strategy: link") || !strings.Contains(out, "nothing to compile") {
		t.Fatalf("unexpected plan:\n%s", out)
	}
}

func TestBuildLinkOnlyWritesCgoDirectives(t *testing.T) {
	dir := t.TempDir()
	out, err := execute(t, depsEnv(t), "--project", dir, "build", "--target", "linux", "--no-progress")
	if err != nil {
		t.Fatalf("build: %v\n%s", err, out)
	}
	cgoFile := filepath.Join(dir, "pkg", "libelec", "cgo_flags_gen.go")
	data, err := os.ReadFile(cgoFile)
	if err != nil {
		t.Fatalf("read cgo file: %v", err)
	}
	if !strings.Contains(string(data), "-lelec") {
		t.Fatalf("cgo file missing link directive:\n%s", data)
	}
	if !strings.Contains(out, "cgo:") {
		t.Fatalf("output missing cgo line:\n%s", out)
	}
}

func TestDoctorReportsMissingTarget(t *testing.T) {
	out, err := execute(t, nil, "--project", t.TempDir(), "doctor", "--json")
	if err != nil {
		t.Fatalf("doctor: %v", err)
	}
	if !strings.Contains(out, `"name": "Target"`) || !strings.Contains(out, `"status": "error"`) {
		t.Fatalf("unexpected doctor output:\n%s", out)
	}
}

func TestExitCodes(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "elecbind.yaml"), "version: 1\nfeatures: [live-attributes]\n")
	_, err := execute(t, depsEnv(t), "--project", dir, "flags", "--target", "linux")
	if err == nil || !strings.Contains(err.Error(), "host-integration") {
		t.Fatalf("expected feature dependency error, got %v", err)
	}
	if got := exitCode(err); got != 2 {
		t.Errorf("invalid config: exit %d, want 2", got)
	}

	_, err = pipeline.ResolveTarget("host", envconfig.Env{}, "plan9")
	if got := exitCode(err); got != 2 {
		t.Errorf("unsupported host: exit %d (%v), want 2", got, err)
	}

	_, err = execute(t, nil, "platform", "--target", "beos")
	if got := exitCode(err); got != 2 {
		t.Errorf("unsupported target: exit %d (%v), want 2", got, err)
	}

	cfgDir := t.TempDir()
	if _, err := execute(t, nil, "--project", cfgDir, "config", "init"); err != nil {
		t.Fatalf("config init: %v", err)
	}
	_, err = execute(t, nil, "--project", cfgDir, "config", "init")
	if got := exitCode(err); got != 1 {
		t.Errorf("existing config: exit %d (%v), want 1", got, err)
	}

	if got := exitCode(nil); got != 0 {
		t.Errorf("success: exit %d, want 0", got)
	}
}
