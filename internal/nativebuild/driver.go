package nativebuild

import (
	"context"
	"fmt"
	"io"
	iofs "io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"elecbind/internal/cfgerr"
	"elecbind/internal/config"
	"elecbind/internal/envconfig"
	"elecbind/internal/features"
	"elecbind/internal/flags"
	"elecbind/internal/manifest"
	"elecbind/internal/nativebuild/state"
	"elecbind/internal/paths"
	"elecbind/internal/platform"
	"elecbind/internal/toolchain"
)

const (
	LibElec     = "elec"
	LibAcfutils = "acfutils"

	DefineHost    = "XPLANE"
	DefineDrawing = "LIBELEC_WITH_DRAWING"
	DefineVis     = "LIBELEC_WITH_VIS"
)

// ProgressReporter receives per-unit progress from the compile strategy.
// Implementations must be safe for concurrent use.
type ProgressReporter interface {
	Start(unit UnitPlan)
	Complete(res UnitResult)
}

// UnitPlan is the decision taken for one translation unit.
type UnitPlan struct {
	Index  int    `json:"index"`
	Source string `json:"source"`
	Object string `json:"object"`
	Action string `json:"action"`
	Reason string `json:"reason"`
}

// Key identifies the unit in progress displays.
func (u UnitPlan) Key() string {
	return filepath.Base(u.Source)
}

// UnitResult is the outcome of one translation unit.
type UnitResult struct {
	UnitPlan
	Duration time.Duration `json:"duration"`
	Err      error         `json:"-"`
}

// Result summarises one driver run.
type Result struct {
	BuildID       string         `json:"build_id,omitempty"`
	Strategy      string         `json:"strategy"`
	Archive       string         `json:"archive"`
	ArchiveReason string         `json:"archive_reason,omitempty"`
	Fingerprint   string         `json:"fingerprint"`
	Directives    LinkDirectives `json:"directives"`
	Units         []UnitResult   `json:"units,omitempty"`
}

// Driver runs a strategy for one resolved target. All inputs are computed
// once by the caller and never mutated.
type Driver struct {
	Platform  platform.Info
	Deps      paths.DependencyPaths
	Paths     paths.ProjectPaths
	Manifest  manifest.Manifest
	Flags     flags.FlagList
	Features  features.Set
	Toolchain toolchain.Toolchain
	Logger    *log.Logger
	Reporter  ProgressReporter
}

func (d Driver) logf(format string, args ...any) {
	if d.Logger != nil {
		d.Logger.Printf(format, args...)
	}
}

// Run executes s.
func (d Driver) Run(ctx context.Context, s Strategy) (Result, error) {
	switch s := s.(type) {
	case LinkOnly:
		return d.linkOnly()
	case Compile:
		return d.compile(ctx, s)
	default:
		return Result{}, fmt.Errorf("unknown build strategy %T", s)
	}
}

func (d Driver) linkOnly() (Result, error) {
	dir := d.Deps.LibelecLibDir(d.Platform.LibDir)
	archive := filepath.Join(dir, d.Platform.ArchiveName(LibElec))
	ok, err := paths.FileExists(archive)
	if err != nil {
		return Result{}, cfgerr.Wrap(envconfig.KeyLibelec, err)
	}
	if !ok {
		return Result{}, cfgerr.New(envconfig.KeyLibelec, "prebuilt archive %s does not exist", archive)
	}
	d.logf("link-only: using %s", archive)

	return Result{
		Strategy:    string(config.StrategyLink),
		Archive:     archive,
		Fingerprint: d.Manifest.Fingerprint,
		Directives:  d.directives(dir),
	}, nil
}

// directives adds libacfutils after libelec when its redistributed archive
// is present, since static link order follows dependencies.
func (d Driver) directives(elecDir string) LinkDirectives {
	ld := LinkDirectives{SearchDirs: []string{elecDir}, StaticLibs: []string{LibElec}}
	if acfDir := d.Deps.AcfutilsLibDir(d.Platform.AcfutilsLibDir); acfDir != "" {
		if ok, _ := paths.FileExists(filepath.Join(acfDir, d.Platform.ArchiveName(LibAcfutils))); ok {
			ld.SearchDirs = append(ld.SearchDirs, acfDir)
			ld.StaticLibs = append(ld.StaticLibs, LibAcfutils)
		}
	}
	return ld
}

// CompileFlags extends the shared flag list with the defines only the
// native sources need.
func CompileFlags(fl flags.FlagList, fs features.Set) flags.FlagList {
	var extra []string
	if fs.Has(features.HostIntegration) {
		extra = append(extra, "-D"+DefineHost)
	}
	if fs.Has(features.Drawing) {
		extra = append(extra, "-D"+DefineDrawing)
	}
	if fs.Has(features.Visualization) {
		extra = append(extra, "-D"+DefineVis)
	}
	return fl.With(extra...)
}

// trackedHeaders lists the manifest headers followed by every other header
// under the libelec source tree, where the private includes live.
func (d Driver) trackedHeaders() ([]state.FileHash, error) {
	var out []state.FileHash
	seen := map[string]bool{}
	add := func(path string) error {
		path = filepath.Clean(path)
		if seen[path] {
			return nil
		}
		seen[path] = true
		sum, err := manifest.FileHash(path)
		if err != nil {
			return err
		}
		out = append(out, state.FileHash{Path: path, Hash: sum})
		return nil
	}
	for _, h := range d.Manifest.Headers {
		if err := add(h.Path); err != nil {
			return nil, err
		}
	}

	srcDir := filepath.Join(d.Deps.Libelec.Root, "src")
	err := filepath.WalkDir(srcDir, func(path string, entry iofs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() || filepath.Ext(path) != ".h" {
			return nil
		}
		return add(path)
	})
	if err != nil {
		return nil, fmt.Errorf("scan libelec headers: %w", err)
	}
	return out, nil
}

// unitHash hashes a source, the headers tracked for every unit and the
// extra headers the unit's last compile reported. A reported header that
// no longer exists hashes as missing, which forces a rebuild.
func unitHash(source state.FileHash, tracked []state.FileHash, deps []string) string {
	headers := append([]state.FileHash(nil), tracked...)
	known := make(map[string]bool, len(tracked))
	for _, h := range tracked {
		known[h.Path] = true
	}
	for _, p := range deps {
		if known[p] {
			continue
		}
		sum, err := manifest.FileHash(p)
		if err != nil {
			sum = "missing"
		}
		headers = append(headers, state.FileHash{Path: p, Hash: sum})
	}
	return state.UnitInputHash(source, headers)
}

// objectPath maps a source to its object file under the per-platform object
// directory.
func (d Driver) objectPath(source string) string {
	base := strings.TrimSuffix(filepath.Base(source), filepath.Ext(source))
	return filepath.Join(d.Paths.ObjDir, d.Platform.LibDir, base+".o")
}

// Plan computes the per-unit decisions without running any tool.
func (d Driver) Plan(s Compile) ([]UnitPlan, error) {
	plans, _, _, err := d.plan(s)
	return plans, err
}

type planInputs struct {
	configHash string
	inputs     []state.FileHash
	// tracked are hashed into every unit: the manifest headers and every
	// other header in the libelec source tree.
	tracked []state.FileHash
	sources []state.FileHash
	units   []state.Unit
}

func (d Driver) plan(s Compile) ([]UnitPlan, planInputs, *state.BuildState, error) {
	var in planInputs
	if len(d.Manifest.Sources) == 0 {
		return nil, in, nil, cfgerr.New(envconfig.KeyLibelec, "compile strategy needs libelec sources")
	}

	bs, err := state.Load(d.Paths.StateFile)
	if err != nil {
		return nil, in, nil, err
	}

	in.tracked, err = d.trackedHeaders()
	if err != nil {
		return nil, in, nil, err
	}
	in.inputs = append(in.inputs, in.tracked...)

	for _, src := range d.Manifest.Sources {
		sum, err := manifest.FileHash(src.Path)
		if err != nil {
			return nil, in, nil, err
		}
		fh := state.FileHash{Path: src.Path, Hash: sum}
		obj := d.objectPath(src.Path)
		in.inputs = append(in.inputs, fh)
		in.sources = append(in.sources, fh)
		in.units = append(in.units, state.Unit{
			Source:    src.Path,
			Object:    obj,
			InputHash: unitHash(fh, in.tracked, bs.Units[obj].Deps),
		})
	}

	in.configHash = state.BuildConfigHash(state.BuildInput{
		Platform: d.Platform.Signal,
		Strategy: string(s.Name()),
		Flags:    CompileFlags(d.Flags, d.Features).Args(),
		Features: d.Features.Strings(),
	})

	actions := state.DetectChanges(bs, in.units, in.configHash, s.Force)

	plans := make([]UnitPlan, len(actions))
	for i, a := range actions {
		plans[i] = UnitPlan{Index: i, Source: a.Unit.Source, Object: a.Unit.Object, Action: a.Action, Reason: a.Reason}
	}
	return plans, in, bs, nil
}

func (d Driver) compile(ctx context.Context, s Compile) (Result, error) {
	plans, in, bs, err := d.plan(s)
	if err != nil {
		return Result{}, err
	}

	archiveDir := d.Paths.ArchiveDir(d.Platform.LibDir)
	archive := filepath.Join(archiveDir, d.Platform.ArchiveName(LibElec))
	for _, dir := range []string{filepath.Join(d.Paths.ObjDir, d.Platform.LibDir), archiveDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return Result{}, fmt.Errorf("create directory %s: %w", dir, err)
		}
	}

	compileFlags := CompileFlags(d.Flags, d.Features)
	results := make([]UnitResult, len(plans))
	unitDeps := make([][]string, len(plans))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.jobs())
	for i, plan := range plans {
		if plan.Action == state.ActionSkip {
			results[i] = UnitResult{UnitPlan: plan}
			d.reportComplete(results[i])
			continue
		}
		g.Go(func() error {
			d.reportStart(plan)
			start := time.Now()
			err := d.Toolchain.Compile(gctx, compileFlags, plan.Source, plan.Object)
			res := UnitResult{UnitPlan: plan, Duration: time.Since(start), Err: err}
			results[i] = res
			d.reportComplete(res)
			if err != nil {
				d.logf("compile %s failed (%s): %v", plan.Key(), plan.Reason, err)
				return fmt.Errorf("compile %s: %w", plan.Key(), err)
			}
			d.logf("compiled %s (%s) in %s", plan.Key(), plan.Reason, res.Duration.Round(time.Millisecond))
			deps, err := readDepFile(toolchain.DepFile(plan.Object), plan.Source)
			if err != nil {
				d.logf("no dependency file for %s: %v", plan.Key(), err)
			}
			unitDeps[i] = deps
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Result{}, err
	}

	actions := make([]state.UnitAction, len(plans))
	for i, p := range plans {
		actions[i] = state.UnitAction{Action: p.Action, Reason: p.Reason}
	}
	reason := state.ArchiveReason(actions, archive)
	if reason != state.ReasonUpToDate {
		if err := os.Remove(archive); err != nil && !os.IsNotExist(err) {
			return Result{}, fmt.Errorf("remove stale archive: %w", err)
		}
		objects := make([]string, len(plans))
		for i, p := range plans {
			objects[i] = p.Object
		}
		if err := d.Toolchain.Archive(ctx, archive, objects); err != nil {
			return Result{}, fmt.Errorf("archive %s: %w", filepath.Base(archive), err)
		}
		d.logf("archived %d objects into %s (%s)", len(objects), archive, reason)
	} else {
		d.logf("archive %s is up to date", archive)
	}

	buildID := uuid.NewString()
	if err := d.saveState(bs, buildID, in, plans, unitDeps, archive, compileFlags, s); err != nil {
		return Result{}, fmt.Errorf("save build state: %w", err)
	}

	return Result{
		BuildID:       buildID,
		Strategy:      string(s.Name()),
		Archive:       archive,
		ArchiveReason: reason,
		Fingerprint:   d.Manifest.Fingerprint,
		Directives:    d.directives(archiveDir),
		Units:         results,
	}, nil
}

func (d Driver) reportStart(plan UnitPlan) {
	if d.Reporter != nil {
		d.Reporter.Start(plan)
	}
}

func (d Driver) reportComplete(res UnitResult) {
	if d.Reporter != nil {
		d.Reporter.Complete(res)
	}
}

// saveState records compiled units with the hash of the dependencies the
// compiler just reported, so the next plan hashes the same inputs.
func (d Driver) saveState(bs *state.BuildState, buildID string, in planInputs, plans []UnitPlan, unitDeps [][]string, archive string, fl flags.FlagList, s Compile) error {
	now := time.Now().UTC()
	keys := make(map[string]bool, len(plans))
	for i, p := range plans {
		keys[p.Object] = true
		if p.Action == state.ActionCompile {
			bs.Units[p.Object] = state.UnitState{
				Source:     p.Source,
				InputHash:  unitHash(in.sources[i], in.tracked, unitDeps[i]),
				Deps:       unitDeps[i],
				CompiledAt: now,
			}
		}
	}
	state.Prune(bs, keys)

	bs.BuildID = buildID
	bs.ConfigHash = in.configHash
	bs.Fingerprint = d.Manifest.Fingerprint
	bs.Flags = fl.Args()
	bs.Features = d.Features.Strings()
	bs.Strategy = string(s.Name())
	bs.Inputs = in.inputs
	bs.Archive = archive
	bs.BuiltAt = now
	return bs.Save(d.Paths.StateFile)
}

// Describe writes a human-readable summary of res.
func Describe(w io.Writer, res Result) {
	fmt.Fprintf(w, "strategy: %s\n", res.Strategy)
	fmt.Fprintf(w, "archive:  %s\n", res.Archive)
	if res.ArchiveReason != "" {
		fmt.Fprintf(w, "          (%s)\n", res.ArchiveReason)
	}
	for _, u := range res.Units {
		fmt.Fprintf(w, "  %-20s %-8s %s\n", u.Key(), u.Action, u.Reason)
	}
	fmt.Fprintf(w, "ldflags:  %s\n", strings.Join(res.Directives.LDFlags(), " "))
}
