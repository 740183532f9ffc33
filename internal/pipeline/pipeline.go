package pipeline

import (
	"context"
	"fmt"
	"log"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"elecbind/internal/bindgen"
	"elecbind/internal/config"
	"elecbind/internal/envconfig"
	"elecbind/internal/features"
	"elecbind/internal/flags"
	"elecbind/internal/logx"
	"elecbind/internal/manifest"
	"elecbind/internal/nativebuild"
	"elecbind/internal/paths"
	"elecbind/internal/platform"
	"elecbind/internal/toolchain"
)

// Mode selects which halves of the pipeline run.
type Mode int

const (
	// ModeBuild runs the native build, regenerates bindings when the
	// regenerate-bindings feature is selected, and writes cgo directives.
	ModeBuild Mode = iota
	// ModeGenerate only regenerates the bindings.
	ModeGenerate
)

// PhaseReporter is optionally implemented by progress reporters that show
// the current pipeline phase.
type PhaseReporter interface {
	Phase(text string)
}

// Options carries everything one run needs. Nothing is read from the
// process environment past this point.
type Options struct {
	Mode     Mode
	Paths    paths.ProjectPaths
	Config   config.Config
	Env      envconfig.Env
	Target   string
	Features []string
	Force    bool

	Logger   *log.Logger
	Reporter nativebuild.ProgressReporter

	// Runner, LookPath and HostGOOS are substituted in tests.
	Runner   toolchain.Runner
	LookPath func(string) (string, error)
	HostGOOS string
}

// Inputs is the resolved, immutable configuration of one run.
type Inputs struct {
	Platform  platform.Info
	Features  features.Set
	Deps      paths.DependencyPaths
	Manifest  manifest.Manifest
	Flags     flags.FlagList
	Strategy  nativebuild.Strategy
	Toolchain toolchain.Toolchain

	Regenerate bool
	EmitCgo    bool
}

// NeedsFlags reports whether the flag list, and with it libacfutils and the
// SDK, is required.
func (in Inputs) NeedsFlags() bool {
	_, compile := in.Strategy.(nativebuild.Compile)
	return compile || in.Regenerate || in.EmitCgo
}

func (in Inputs) needsToolchain() bool {
	_, compile := in.Strategy.(nativebuild.Compile)
	return compile || in.Regenerate
}

// Result reports what a run produced.
type Result struct {
	Platform     platform.Info       `json:"platform"`
	Features     []string            `json:"features"`
	Flags        []string            `json:"flags,omitempty"`
	Fingerprint  string              `json:"fingerprint"`
	Build        *nativebuild.Result `json:"build,omitempty"`
	Bindings     *bindgen.Source     `json:"bindings,omitempty"`
	BindingsFile string              `json:"bindings_file,omitempty"`
	// BindingsStale is set when the committed bindings were generated from
	// a different header set than this build used.
	BindingsStale bool   `json:"bindings_stale,omitempty"`
	CgoFile       string `json:"cgo_file,omitempty"`
}

// Prepare resolves the platform, features, dependencies, manifest, flag list
// and toolchain, in that order. Every configuration error surfaces here,
// before any tool runs.
func Prepare(opts Options) (Inputs, error) {
	var in Inputs
	var err error

	in.Platform, err = ResolveTarget(opts.Target, opts.Env, opts.HostGOOS)
	if err != nil {
		return Inputs{}, err
	}
	in.Features, err = MergeFeatures(opts.Config, opts.Env, opts.Features)
	if err != nil {
		return Inputs{}, err
	}

	switch opts.Mode {
	case ModeGenerate:
		in.Strategy = nativebuild.LinkOnly{}
		in.Regenerate = true
	default:
		in.Strategy = nativebuild.StrategyFor(opts.Config, opts.Force)
		in.Regenerate = in.Features.Has(features.RegenerateBindings)
		in.EmitCgo = opts.Config.EmitCgo()
	}

	needFlags := in.NeedsFlags()
	in.Deps, err = paths.ResolveDependencies(opts.Env, paths.Requirements{Acfutils: needFlags, SDK: needFlags})
	if err != nil {
		return Inputs{}, err
	}

	_, compile := in.Strategy.(nativebuild.Compile)
	in.Manifest, err = manifest.Discover(in.Deps, in.Features, compile && opts.Mode == ModeBuild)
	if err != nil {
		return Inputs{}, err
	}

	if needFlags {
		in.Flags, err = flags.Assemble(in.Platform, in.Deps, in.Features)
		if err != nil {
			return Inputs{}, err
		}
	}

	if in.needsToolchain() {
		in.Toolchain, err = toolchain.Resolve(toolchain.Options{
			Platform: in.Platform,
			HostGOOS: opts.HostGOOS,
			Env:      opts.Env,
			Config:   opts.Config.Toolchain,
			Runner:   opts.Runner,
			LookPath: opts.LookPath,
		})
		if err != nil {
			return Inputs{}, err
		}
	}
	return in, nil
}

func (in Inputs) driver(pp paths.ProjectPaths, logger *log.Logger, r nativebuild.ProgressReporter) nativebuild.Driver {
	return nativebuild.Driver{
		Platform:  in.Platform,
		Deps:      in.Deps,
		Paths:     pp,
		Manifest:  in.Manifest,
		Flags:     in.Flags,
		Features:  in.Features,
		Toolchain: in.Toolchain,
		Logger:    logger,
		Reporter:  r,
	}
}

// Plan resolves the inputs and reports what a build would compile without
// running any tool. The link-only strategy has no units.
func Plan(opts Options) (Inputs, []nativebuild.UnitPlan, error) {
	in, err := Prepare(opts)
	if err != nil {
		return Inputs{}, nil, err
	}
	c, ok := in.Strategy.(nativebuild.Compile)
	if !ok || opts.Mode != ModeBuild {
		return in, nil, nil
	}
	plans, err := in.driver(opts.Paths, logx.Discard(), nil).Plan(c)
	if err != nil {
		return Inputs{}, nil, err
	}
	return in, plans, nil
}

// Run prepares the inputs and executes the selected mode. The native build
// and the generator run concurrently; the first failure cancels the other.
func Run(ctx context.Context, opts Options) (Result, error) {
	logger := opts.Logger
	if logger == nil {
		logger = logx.Discard()
	}

	in, err := Prepare(opts)
	if err != nil {
		return Result{}, err
	}
	logger.Printf("target %s (%s), features [%s], strategy %s",
		in.Platform.Signal, in.Platform.LibDir, in.Features, in.Strategy.Name())
	if in.Flags.Len() > 0 {
		logger.Printf("flags: %s", in.Flags)
	}
	if in.needsToolchain() {
		logger.Printf("toolchain: cc=%s (%s) ar=%s (%s)", in.Toolchain.CC.Path, in.Toolchain.CC.Source, in.Toolchain.AR.Path, in.Toolchain.AR.Source)
	}

	res := Result{
		Platform:     in.Platform,
		Features:     in.Features.Strings(),
		Flags:        in.Flags.Args(),
		Fingerprint:  in.Manifest.Fingerprint,
		BindingsFile: opts.Paths.BindingsFile,
	}

	var (
		build    nativebuild.Result
		bindings bindgen.Source
	)
	g, gctx := errgroup.WithContext(ctx)

	if opts.Mode == ModeBuild {
		if err := opts.Paths.EnsureMetaDirs(); err != nil {
			return Result{}, err
		}
		driver := in.driver(opts.Paths, logger, opts.Reporter)
		g.Go(func() error {
			phase(opts.Reporter, "building")
			r, err := driver.Run(gctx, in.Strategy)
			if err != nil {
				return fmt.Errorf("native build: %w", err)
			}
			build = r
			return nil
		})
	}

	if in.Regenerate {
		g.Go(func() error {
			phase(opts.Reporter, "generating bindings")
			src, err := bindgen.Generate(gctx, in.Toolchain, in.Manifest, in.Flags, bindgen.Options{
				Package:  opts.Config.Bindings.Package,
				BuildTag: opts.Config.Bindings.BuildTag,
				Policy:   bindgen.PolicyFromConfig(opts.Config.Bindings),
				Filename: filepath.Base(opts.Paths.BindingsFile),
			})
			if err != nil {
				return err
			}
			if err := src.Write(opts.Paths.BindingsFile); err != nil {
				return err
			}
			logger.Printf("wrote %s: %d functions, %d enums, %d types, %d constants",
				opts.Paths.BindingsFile, src.Functions, src.Enums, src.Types, src.Constants)
			bindings = src
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		logger.Printf("pipeline failed: %v", err)
		return Result{}, err
	}

	if in.Regenerate {
		res.Bindings = &bindings
	}
	if opts.Mode != ModeBuild {
		return res, nil
	}
	res.Build = &build

	if in.Regenerate && bindings.Fingerprint != build.Fingerprint {
		return Result{}, fmt.Errorf("manifest fingerprint mismatch: build %s, bindings %s", build.Fingerprint, bindings.Fingerprint)
	}
	if !in.Regenerate {
		res.BindingsStale = committedStale(opts.Paths.BindingsFile, in.Manifest, logger)
	}

	if in.EmitCgo {
		phase(opts.Reporter, "writing cgo directives")
		cgo := nativebuild.CgoFile{
			Path:        opts.Paths.CgoFile,
			Package:     opts.Config.Bindings.Package,
			BuildTag:    opts.Config.Bindings.BuildTag,
			Fingerprint: in.Manifest.Fingerprint,
			Flags:       in.Flags,
			Link:        build.Directives.WithExtra(opts.Config.Cgo.ExtraLDFlags...),
		}
		if err := cgo.Write(); err != nil {
			return Result{}, err
		}
		logger.Printf("wrote %s", cgo.Path)
		res.CgoFile = cgo.Path
	}
	return res, nil
}

// committedStale compares the committed bindings against the header set of
// this build.
func committedStale(path string, m manifest.Manifest, logger *log.Logger) bool {
	committed, err := bindgen.ReadFingerprint(path)
	if err != nil {
		logger.Printf("cannot read committed bindings: %v", err)
		return false
	}
	if committed == m.Fingerprint {
		return false
	}
	logger.Printf("committed bindings fingerprint %s differs from headers %s", committed, m.Fingerprint)
	return true
}

func phase(r nativebuild.ProgressReporter, text string) {
	if p, ok := r.(PhaseReporter); ok {
		p.Phase(text)
	}
}
