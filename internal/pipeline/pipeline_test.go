package pipeline

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"elecbind/internal/cfgerr"
	"elecbind/internal/config"
	"elecbind/internal/envconfig"
	"elecbind/internal/nativebuild"
	"elecbind/internal/paths"
	"elecbind/internal/platform"
	"elecbind/internal/toolchain"
)

const testHeader = `typedef struct elec_sys_s elec_sys_t;
elec_sys_t *libelec_new(const char *filename);
void libelec_destroy(elec_sys_t *sys);
`

// fakeToolchain stands in for cc and ar. The preprocessor expands each
// #include of the synthetic unit into a line marker plus the file body.
type fakeToolchain struct {
	mu        sync.Mutex
	calls     []string
	failStage string
}

func (f *fakeToolchain) Run(_ context.Context, command string, args []string, opts toolchain.RunOptions) (toolchain.RunResult, error) {
	tool := filepath.Base(command)
	f.mu.Lock()
	f.calls = append(f.calls, tool+" "+strings.Join(args, " "))
	f.mu.Unlock()

	if len(args) > 0 && args[0] == "-E" {
		if f.failStage == "preprocess" {
			return toolchain.RunResult{Stderr: []byte("fatal error: acfutils/log.h: No such file")}, errors.New("exit status 1")
		}
		return f.preprocess(opts.Stdin)
	}
	var out string
	switch tool {
	case "cc":
		for i, a := range args {
			if a == "-o" && i+1 < len(args) {
				out = args[i+1]
			}
		}
	case "ar":
		out = args[1]
	}
	if out != "" {
		if err := os.WriteFile(out, []byte(tool), 0o644); err != nil {
			return toolchain.RunResult{}, err
		}
	}
	return toolchain.RunResult{}, nil
}

func (f *fakeToolchain) preprocess(stdin io.Reader) (toolchain.RunResult, error) {
	var out bytes.Buffer
	sc := bufio.NewScanner(stdin)
	for sc.Scan() {
		path, ok := strings.CutPrefix(sc.Text(), "#include ")
		if !ok {
			continue
		}
		path = strings.Trim(path, `"`)
		body, err := os.ReadFile(path)
		if err != nil {
			return toolchain.RunResult{}, err
		}
		fmt.Fprintf(&out, "# 1 %q\n%s", path, body)
	}
	return toolchain.RunResult{Stdout: out.Bytes()}, sc.Err()
}

func (f *fakeToolchain) count(tool string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if strings.HasPrefix(c, tool+" ") {
			n++
		}
	}
	return n
}

func lookPath(name string) (string, error) {
	switch name {
	case "cc", "ar":
		return "/usr/bin/" + name, nil
	}
	return "", errors.New("not found")
}

func noTools(name string) (string, error) {
	return "", fmt.Errorf("%s: lookup not expected", name)
}

func write(t *testing.T, path, body string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
}

type fixture struct {
	env  envconfig.Env
	root string
}

// newFixture lays out a libelec source tree, a libacfutils redistribution
// with a linux archive, an SDK and an empty project.
func newFixture(t *testing.T) fixture {
	t.Helper()
	base := t.TempDir()
	elec := filepath.Join(base, "libelec")
	acf := filepath.Join(base, "libacfutils")
	sdk := filepath.Join(base, "SDK")
	write(t, filepath.Join(elec, "src", "libelec.h"), testHeader)
	write(t, filepath.Join(elec, "src", "libelec.c"), "#include \"libelec.h\"\n")
	require.NoError(t, os.MkdirAll(filepath.Join(acf, "libacfutils-redist", "include", "acfutils"), 0o755))
	write(t, filepath.Join(acf, "libacfutils-redist", "lin64", "lib", "libacfutils.a"), "!<arch>\n")
	require.NoError(t, os.MkdirAll(filepath.Join(sdk, "CHeaders", "XPLM"), 0o755))

	root := filepath.Join(base, "project")
	require.NoError(t, os.MkdirAll(root, 0o755))
	return fixture{
		env:  envconfig.Env{TargetOS: "linux", Libelec: elec, Acfutils: acf, SDK: sdk},
		root: root,
	}
}

func (f fixture) options(cfg config.Config, runner toolchain.Runner) Options {
	pp := paths.ApplyConfig(paths.ProjectPaths{Root: f.root, ConfigFile: filepath.Join(f.root, config.FileName)}, cfg)
	return Options{
		Mode:     ModeBuild,
		Paths:    pp,
		Config:   cfg,
		Env:      f.env,
		Runner:   runner,
		LookPath: lookPath,
		HostGOOS: "linux",
	}
}

func compileConfig() config.Config {
	cfg := config.Default()
	cfg.Strategy = config.StrategyCompile
	cfg.Build.Jobs = 2
	return cfg
}

type phases struct {
	mu   sync.Mutex
	seen []string
	done int
}

func (p *phases) Start(nativebuild.UnitPlan) {}

func (p *phases) Complete(nativebuild.UnitResult) {
	p.mu.Lock()
	p.done++
	p.mu.Unlock()
}

func (p *phases) Phase(text string) {
	p.mu.Lock()
	p.seen = append(p.seen, text)
	p.mu.Unlock()
}

func TestRunCompileAndRegenerate(t *testing.T) {
	fx := newFixture(t)
	runner := &fakeToolchain{}
	cfg := compileConfig()
	cfg.Features = []string{"regenerate-bindings"}
	opts := fx.options(cfg, runner)
	rep := &phases{}
	opts.Reporter = rep

	res, err := Run(context.Background(), opts)
	require.NoError(t, err)

	require.Equal(t, platform.Linux, res.Platform.Identity)
	require.Equal(t, []string{"regenerate-bindings"}, res.Features)
	require.NotNil(t, res.Build)
	require.NotNil(t, res.Bindings)
	require.Equal(t, res.Fingerprint, res.Build.Fingerprint)
	require.Equal(t, res.Fingerprint, res.Bindings.Fingerprint)
	require.Equal(t, 2, res.Bindings.Functions)
	require.Equal(t, 1, runner.count("ar"))
	require.Equal(t, 1, rep.done)
	require.Contains(t, rep.seen, "generating bindings")
	require.Contains(t, rep.seen, "writing cgo directives")

	bindings, err := os.ReadFile(opts.Paths.BindingsFile)
	require.NoError(t, err)
	require.Contains(t, string(bindings), "func New(filename string) *ElecSys")
	require.Contains(t, string(bindings), "// Manifest: "+res.Fingerprint)

	cgo, err := os.ReadFile(res.CgoFile)
	require.NoError(t, err)
	text := string(cgo)
	require.Contains(t, text, "//go:build libelec")
	require.Contains(t, text, "#cgo CFLAGS: -std=c99 -I")
	require.Contains(t, text, "-DLIN -DLIBELEC_NO_XPLANE")
	require.Contains(t, text, "-L"+filepath.Join(fx.root, "build", "lin64", "lib"))
	require.Contains(t, text, "-lelec -lacfutils")
}

func TestRunSecondCompileIsCached(t *testing.T) {
	fx := newFixture(t)
	runner := &fakeToolchain{}
	opts := fx.options(compileConfig(), runner)
	write(t, opts.Paths.BindingsFile, "// Code generated by elecbind. DO NOT EDIT.\n// Manifest: sha256:old\n\npackage libelec\n")

	_, err := Run(context.Background(), opts)
	require.NoError(t, err)
	res, err := Run(context.Background(), opts)
	require.NoError(t, err)

	require.Equal(t, 1, runner.count("ar"))
	require.Len(t, res.Build.Units, 1)
	require.Equal(t, "skip", res.Build.Units[0].Action)
	require.True(t, res.BindingsStale, "committed bindings carry another fingerprint")
}

func TestRunLinkOnlySkipsToolchain(t *testing.T) {
	fx := newFixture(t)
	redist := filepath.Join(t.TempDir(), "libelec-redist")
	write(t, filepath.Join(redist, "include", "libelec.h"), testHeader)
	write(t, filepath.Join(redist, "lin64", "lib", "libelec.a"), "!<arch>\n")
	fx.env.Libelec = redist
	fx.env.Acfutils = ""
	fx.env.SDK = ""

	cfg := config.Default()
	emit := false
	cfg.Cgo.Emit = &emit
	opts := fx.options(cfg, &fakeToolchain{})
	opts.LookPath = noTools

	res, err := Run(context.Background(), opts)
	require.NoError(t, err)
	require.Equal(t, string(config.StrategyLink), res.Build.Strategy)
	require.Equal(t, filepath.Join(redist, "lin64", "lib", "libelec.a"), res.Build.Archive)
	require.Empty(t, res.Flags)
	require.Empty(t, res.CgoFile)
}

func TestRunGenerateOnly(t *testing.T) {
	fx := newFixture(t)
	runner := &fakeToolchain{}
	opts := fx.options(config.Default(), runner)
	opts.Mode = ModeGenerate

	res, err := Run(context.Background(), opts)
	require.NoError(t, err)
	require.Nil(t, res.Build)
	require.NotNil(t, res.Bindings)
	require.Zero(t, runner.count("ar"))
	require.FileExists(t, opts.Paths.BindingsFile)
	require.NoFileExists(t, opts.Paths.CgoFile)
}

func TestRunPreprocessorFailureStopsPipeline(t *testing.T) {
	fx := newFixture(t)
	runner := &fakeToolchain{failStage: "preprocess"}
	cfg := compileConfig()
	cfg.Features = []string{"regenerate-bindings"}
	opts := fx.options(cfg, runner)

	_, err := Run(context.Background(), opts)
	require.Error(t, err)

	var te *toolchain.ToolError
	require.True(t, errors.As(err, &te), "expected ToolError, got %v", err)
	require.Contains(t, err.Error(), "acfutils/log.h")
	require.NoFileExists(t, opts.Paths.CgoFile)
}

func TestPrepareConfigErrors(t *testing.T) {
	tests := []struct {
		name  string
		edit  func(*Options)
		input string
	}{
		{
			name:  "missing target",
			edit:  func(o *Options) { o.Env.TargetOS = "" },
			input: "target OS",
		},
		{
			name:  "live attributes without host",
			edit:  func(o *Options) { o.Features = []string{"live-attributes"} },
			input: "features",
		},
		{
			name:  "sdk required for cgo directives",
			edit:  func(o *Options) { o.Env.SDK = "" },
			input: envconfig.KeySDK,
		},
		{
			name:  "redist tree cannot compile",
			edit:  func(o *Options) { o.Config.Strategy = config.StrategyCompile; o.Env.Libelec = redistOnly(t) },
			input: envconfig.KeyLibelec,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fx := newFixture(t)
			opts := fx.options(config.Default(), &fakeToolchain{})
			tt.edit(&opts)

			_, err := Prepare(opts)
			require.Error(t, err)
			var ce *cfgerr.Error
			require.True(t, errors.As(err, &ce), "expected configuration error, got %v", err)
			require.Equal(t, tt.input, ce.Input)
		})
	}
}

func redistOnly(t *testing.T) string {
	dir := filepath.Join(t.TempDir(), "redist")
	write(t, filepath.Join(dir, "include", "libelec.h"), testHeader)
	return dir
}

func TestResolveTarget(t *testing.T) {
	info, err := ResolveTarget("host", envconfig.Env{}, "darwin")
	require.NoError(t, err)
	require.Equal(t, "macos", info.Signal)

	info, err = ResolveTarget("", envconfig.Env{TargetOS: "windows"}, "linux")
	require.NoError(t, err)
	require.Equal(t, "mingw64", info.LibDir)

	info, err = ResolveTarget("linux", envconfig.Env{TargetOS: "windows"}, "linux")
	require.NoError(t, err)
	require.Equal(t, "LIN", info.Define)

	_, err = ResolveTarget("beos", envconfig.Env{}, "linux")
	require.True(t, cfgerr.Is(err))
}

func TestMergeFeatures(t *testing.T) {
	cfg := config.Default()
	cfg.Features = []string{"host-integration"}
	fs, err := MergeFeatures(cfg, envconfig.Env{Features: []string{"drawing"}}, []string{"live-attributes, visualization"})
	require.NoError(t, err)
	require.Equal(t, []string{"drawing", "host-integration", "live-attributes", "visualization"}, fs.Strings())

	_, err = MergeFeatures(config.Default(), envconfig.Env{}, []string{"turbo"})
	require.True(t, cfgerr.Is(err))
}

func TestPlanReportsUnitsWithoutRunningTools(t *testing.T) {
	fx := newFixture(t)
	runner := &fakeToolchain{}
	cfg := compileConfig()
	cfg.Features = []string{"host-integration", "drawing"}
	write(t, filepath.Join(fx.env.Libelec, "src", "libelec_drawing.h"), "void libelec_draw(void);\n")
	write(t, filepath.Join(fx.env.Libelec, "src", "libelec_drawing.c"), "\n")

	in, plans, err := Plan(fx.options(cfg, runner))
	require.NoError(t, err)
	require.True(t, in.NeedsFlags())
	require.Len(t, plans, 2)
	require.Equal(t, "libelec.c", plans[0].Key())
	require.Equal(t, "libelec_drawing.c", plans[1].Key())
	require.Equal(t, "new", plans[1].Reason)
	require.Empty(t, runner.calls)
}
