package toolchain

import (
	"context"
	"errors"
	"io"
	"os/exec"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"elecbind/internal/config"
	"elecbind/internal/envconfig"
	"elecbind/internal/flags"
	"elecbind/internal/platform"
)

type call struct {
	command string
	args    []string
	stdin   string
}

type fakeRunner struct {
	calls  []call
	stdout string
	stderr string
	err    error
}

func (f *fakeRunner) Run(_ context.Context, command string, args []string, opts RunOptions) (RunResult, error) {
	c := call{command: command, args: append([]string(nil), args...)}
	if opts.Stdin != nil {
		data, _ := io.ReadAll(opts.Stdin)
		c.stdin = string(data)
	}
	f.calls = append(f.calls, c)
	return RunResult{Stdout: []byte(f.stdout), Stderr: []byte(f.stderr)}, f.err
}

func lookIn(available ...string) func(string) (string, error) {
	set := map[string]bool{}
	for _, a := range available {
		set[a] = true
	}
	return func(name string) (string, error) {
		if set[name] {
			return "/usr/bin/" + name, nil
		}
		return "", exec.ErrNotFound
	}
}

func linux(t *testing.T) platform.Info {
	t.Helper()
	info, err := platform.Resolve("linux")
	if err != nil {
		t.Fatal(err)
	}
	return info
}

func TestResolvePrecedence(t *testing.T) {
	info := linux(t)

	tests := []struct {
		name       string
		env        envconfig.Env
		cfg        config.ToolchainConfig
		available  []string
		wantCC     string
		wantSource Source
	}{
		{"path fallback", envconfig.Env{}, config.ToolchainConfig{}, []string{"gcc", "ar"}, "/usr/bin/gcc", SourceSystem},
		{"config wins over path", envconfig.Env{}, config.ToolchainConfig{CC: "clang"}, []string{"gcc", "clang", "ar"}, "/usr/bin/clang", SourceConfig},
		{"env wins over config", envconfig.Env{CC: "gcc"}, config.ToolchainConfig{CC: "clang"}, []string{"gcc", "clang", "ar"}, "/usr/bin/gcc", SourceEnv},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Resolve(Options{
				Platform: info,
				HostGOOS: "linux",
				Env:      tc.env,
				Config:   tc.cfg,
				LookPath: lookIn(tc.available...),
			})
			if err != nil {
				t.Fatalf("Resolve: %v", err)
			}
			if got.CC.Path != tc.wantCC || got.CC.Source != tc.wantSource {
				t.Fatalf("CC = %+v, want %s from %s", got.CC, tc.wantCC, tc.wantSource)
			}
		})
	}
}

func TestResolveCrossPrefix(t *testing.T) {
	win, err := platform.Resolve("windows")
	if err != nil {
		t.Fatal(err)
	}
	tc, err := Resolve(Options{
		Platform: win,
		HostGOOS: "linux",
		LookPath: lookIn("x86_64-w64-mingw32-gcc", "x86_64-w64-mingw32-ar", "gcc", "ar"),
	})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if tc.CC.Path != "/usr/bin/x86_64-w64-mingw32-gcc" || tc.CC.Source != SourceCross {
		t.Fatalf("CC = %+v", tc.CC)
	}
	if tc.AR.Path != "/usr/bin/x86_64-w64-mingw32-ar" {
		t.Fatalf("AR = %+v", tc.AR)
	}
}

func TestResolveMissingCompiler(t *testing.T) {
	_, err := Resolve(Options{Platform: linux(t), HostGOOS: "linux", LookPath: lookIn("ar")})
	var te *ToolError
	if !errors.As(err, &te) {
		t.Fatalf("expected ToolError, got %v", err)
	}
	if te.Tool != "cc" {
		t.Fatalf("tool = %s", te.Tool)
	}
}

func TestResolveOverrideWithArguments(t *testing.T) {
	tc, err := Resolve(Options{
		Platform: linux(t),
		HostGOOS: "linux",
		Env:      envconfig.Env{CC: "ccache gcc"},
		LookPath: lookIn("ccache", "ar"),
	})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if tc.CC.Path != "/usr/bin/ccache" || !reflect.DeepEqual(tc.CC.Extra, []string{"gcc"}) {
		t.Fatalf("CC = %+v", tc.CC)
	}
}

func TestCompileAndArchiveArguments(t *testing.T) {
	runner := &fakeRunner{}
	tc := New("cc", "ar", runner)
	fl := flags.New("-std=c99", "-DLIN")

	if err := tc.Compile(context.Background(), fl, "libelec.c", "libelec.o"); err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if err := tc.Archive(context.Background(), "libelec.a", []string{"libelec.o"}); err != nil {
		t.Fatalf("Archive: %v", err)
	}

	want := []call{
		{command: "cc", args: []string{"-std=c99", "-DLIN", "-MMD", "-MF", "libelec.d", "-c", "libelec.c", "-o", "libelec.o"}},
		{command: "ar", args: []string{"rcs", "libelec.a", "libelec.o"}},
	}
	if !reflect.DeepEqual(runner.calls, want) {
		t.Fatalf("calls = %+v\nwant %+v", runner.calls, want)
	}
}

func TestPreprocessFeedsStdin(t *testing.T) {
	runner := &fakeRunner{stdout: "# 1 \"<stdin>\"\n"}
	tc := New("cc", "ar", runner)

	out, err := tc.Preprocess(context.Background(), flags.New("-DLIN"), "#include \"libelec.h\"\n")
	if err != nil {
		t.Fatalf("Preprocess: %v", err)
	}
	if string(out) != runner.stdout {
		t.Fatalf("output = %q", out)
	}
	got := runner.calls[0]
	if !reflect.DeepEqual(got.args, []string{"-E", "-dD", "-DLIN", "-x", "c", "-"}) {
		t.Fatalf("args = %v", got.args)
	}
	if got.stdin != "#include \"libelec.h\"\n" {
		t.Fatalf("stdin = %q", got.stdin)
	}
}

func TestToolErrorCarriesStderr(t *testing.T) {
	runner := &fakeRunner{stderr: "libelec.c:1:1: error: expected ';'\n", err: errors.New("exit status 1")}
	tc := New("cc", "ar", runner)

	err := tc.Compile(context.Background(), flags.New(), "libelec.c", "libelec.o")
	var te *ToolError
	if !errors.As(err, &te) {
		t.Fatalf("expected ToolError, got %v", err)
	}
	if !strings.Contains(err.Error(), "expected ';'") {
		t.Fatalf("error should include stderr: %v", err)
	}
	if !strings.HasPrefix(te.CommandLine(), "cc -c libelec.c") {
		t.Fatalf("command line = %s", te.CommandLine())
	}
}

func TestDetectReportsEachRole(t *testing.T) {
	runner := &fakeRunner{stdout: "gcc (Ubuntu 13.2.0-23ubuntu4) 13.2.0\nCopyright\n"}
	statuses := Detect(context.Background(), Options{
		Platform: linux(t),
		HostGOOS: "linux",
		Runner:   runner,
		LookPath: lookIn("gcc"),
	})
	if len(statuses) != 2 {
		t.Fatalf("statuses = %+v", statuses)
	}
	byRole := map[Role]Status{}
	for _, s := range statuses {
		byRole[s.Role] = s
	}
	if cc := byRole[RoleCompiler]; !cc.Available || cc.Version != "13.2.0" {
		t.Fatalf("cc status = %+v", cc)
	}
	if ar := byRole[RoleArchiver]; ar.Available || ar.Error == "" || len(ar.Notes) == 0 {
		t.Fatalf("ar status = %+v", ar)
	}
}

func TestNormalizeVersionLine(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"gcc (Ubuntu 13.2.0-23ubuntu4) 13.2.0", "13.2.0"},
		{"Apple clang version 15.0.0 (clang-1500.3.9.4)", "15.0.0"},
		{"GNU ar (GNU Binutils for Ubuntu) 2.42", "2.42"},
		{"unknown", "unknown"},
	}
	for _, tc := range tests {
		if got := normalizeVersionLine(tc.in); got != tc.want {
			t.Errorf("normalizeVersionLine(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestDepFile(t *testing.T) {
	obj := filepath.Join("build", "obj", "lin64", "libelec.o")
	if got, want := DepFile(obj), filepath.Join("build", "obj", "lin64", "libelec.d"); got != want {
		t.Fatalf("DepFile = %q, want %q", got, want)
	}
}
