package cli

import (
	"context"
	"fmt"
	"runtime"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"elecbind/internal/bindgen"
	"elecbind/internal/config"
	"elecbind/internal/envconfig"
	"elecbind/internal/features"
	"elecbind/internal/manifest"
	"elecbind/internal/nativebuild/state"
	"elecbind/internal/paths"
	"elecbind/internal/pipeline"
)

func newDoctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check the project, dependency roots and toolchain",
		Args:  cobra.NoArgs,
		RunE:  runDoctor,
	}
}

type healthCheck struct {
	Name    string `json:"name"`
	Status  string `json:"status"` // "ok", "warning", "error"
	Summary string `json:"summary"`
}

func runDoctor(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	pp, err := paths.Resolve(projectDir)
	if err != nil {
		return err
	}
	exists, err := paths.DirExists(pp.Root)
	if err != nil {
		return fmt.Errorf("stat project dir: %w", err)
	}
	if !exists {
		return fmt.Errorf("project directory does not exist: %s", pp.Root)
	}

	var checks []healthCheck

	cfg, cfgErr := config.Load(pp.ConfigFile)
	checks = append(checks, checkConfig(cfg, cfgErr))
	if cfgErr != nil {
		return writeDoctorResult(cmd, pp.Root, checks)
	}
	p := project{paths: paths.ApplyConfig(pp, cfg), config: cfg, env: loadEnv()}

	checks = append(checks, checkTarget(p))
	fs, fsErr := pipeline.MergeFeatures(cfg, p.env, featureSelects)
	checks = append(checks, checkFeatures(fs, fsErr))

	needFlags := cfg.Strategy == config.StrategyCompile || cfg.EmitCgo() || fs.Has(features.RegenerateBindings)
	deps, depsCheck := checkDependencies(p.env, needFlags)
	checks = append(checks, depsCheck)

	needTools := cfg.Strategy == config.StrategyCompile || fs.Has(features.RegenerateBindings)
	checks = append(checks, checkTools(ctx, p, needTools))
	checks = append(checks, checkBuildState(p.paths))
	if deps.Libelec.Present() && fsErr == nil {
		checks = append(checks, checkBindings(p.paths, deps, fs))
	}

	return writeDoctorResult(cmd, pp.Root, checks)
}

func checkConfig(cfg config.Config, cfgErr error) healthCheck {
	if cfgErr != nil {
		return healthCheck{Name: "Config", Status: "error", Summary: cfgErr.Error()}
	}

	var warnings, errs int
	for _, v := range cfg.ValidateStrict() {
		switch v.Level {
		case "warning":
			warnings++
		case "error":
			errs++
		}
	}

	summary := fmt.Sprintf("strategy %s, %d features", cfg.Strategy, len(cfg.Features))
	if errs > 0 {
		return healthCheck{Name: "Config", Status: "error", Summary: fmt.Sprintf("%s; %d errors", summary, errs)}
	}
	if warnings > 0 {
		return healthCheck{Name: "Config", Status: "warning", Summary: fmt.Sprintf("%s; %d warnings", summary, warnings)}
	}
	return healthCheck{Name: "Config", Status: "ok", Summary: summary}
}

func checkTarget(p project) healthCheck {
	info, err := pipeline.ResolveTarget(targetOS, p.env, runtime.GOOS)
	if err != nil {
		return healthCheck{Name: "Target", Status: "error", Summary: err.Error()}
	}
	summary := fmt.Sprintf("%s (%s, -D%s)", info.Signal, info.LibDir, info.Define)
	if info.IsCross(runtime.GOOS) {
		summary += ", cross " + info.CrossPrefix
	}
	return healthCheck{Name: "Target", Status: "ok", Summary: summary}
}

func checkFeatures(fs features.Set, err error) healthCheck {
	if err != nil {
		return healthCheck{Name: "Features", Status: "error", Summary: err.Error()}
	}
	if len(fs.List()) == 0 {
		return healthCheck{Name: "Features", Status: "ok", Summary: "none (standalone build)"}
	}
	return healthCheck{Name: "Features", Status: "ok", Summary: joinComma(fs.Strings())}
}

func checkDependencies(env envconfig.Env, required bool) (paths.DependencyPaths, healthCheck) {
	deps, err := paths.ResolveDependencies(env, paths.Requirements{})
	if err != nil {
		return deps, healthCheck{Name: "Deps", Status: "error", Summary: err.Error()}
	}

	parts := []string{fmt.Sprintf("libelec %s", deps.Libelec.Layout)}
	status := "ok"
	for _, dep := range []paths.Dependency{deps.Acfutils, deps.SDK} {
		if dep.Present() {
			parts = append(parts, fmt.Sprintf("%s %s", dep.Name, dep.Layout))
			continue
		}
		parts = append(parts, fmt.Sprintf("%s unset ($%s)", dep.Name, dep.EnvKey))
		if required {
			status = "error"
		} else if status == "ok" {
			status = "warning"
		}
	}
	return deps, healthCheck{Name: "Deps", Status: status, Summary: joinComma(parts)}
}

func checkTools(ctx context.Context, p project, required bool) healthCheck {
	var found []string
	missing := 0
	for _, st := range detectTools(ctx, p) {
		if !st.Available {
			missing++
			continue
		}
		label := string(st.Role)
		if st.Version != "" {
			label += " " + st.Version
		}
		found = append(found, label)
	}
	switch {
	case missing == 0:
		return healthCheck{Name: "Toolchain", Status: "ok", Summary: joinComma(found)}
	case required:
		return healthCheck{Name: "Toolchain", Status: "error", Summary: fmt.Sprintf("%d tools missing; run elecbind tools list", missing)}
	default:
		return healthCheck{Name: "Toolchain", Status: "warning", Summary: fmt.Sprintf("%d tools missing (not needed for link-only)", missing)}
	}
}

func checkBuildState(pp paths.ProjectPaths) healthCheck {
	bs, err := state.Load(pp.StateFile)
	if err != nil {
		return healthCheck{Name: "Build", Status: "warning", Summary: "could not load build state"}
	}
	if bs.BuildID == "" {
		return healthCheck{Name: "Build", Status: "warning", Summary: "no compile recorded yet"}
	}
	summary := fmt.Sprintf("%s build %s at %s, %d units", bs.Strategy, shortID(bs.BuildID), bs.BuiltAt.Local().Format("2006-01-02 15:04"), len(bs.Units))
	if ok, _ := paths.FileExists(bs.Archive); !ok {
		return healthCheck{Name: "Build", Status: "warning", Summary: summary + "; archive missing"}
	}
	return healthCheck{Name: "Build", Status: "ok", Summary: summary}
}

func checkBindings(pp paths.ProjectPaths, deps paths.DependencyPaths, fs features.Set) healthCheck {
	committed, err := bindgen.ReadFingerprint(pp.BindingsFile)
	if err != nil {
		return healthCheck{Name: "Bindings", Status: "error", Summary: fmt.Sprintf("%s missing; run elecbind generate", pp.BindingsFile)}
	}
	m, err := manifest.Discover(deps, fs, false)
	if err != nil {
		return healthCheck{Name: "Bindings", Status: "warning", Summary: err.Error()}
	}
	if committed != m.Fingerprint {
		return healthCheck{Name: "Bindings", Status: "warning", Summary: "generated from different headers; run elecbind generate"}
	}
	return healthCheck{Name: "Bindings", Status: "ok", Summary: fmt.Sprintf("match %d headers", len(m.Headers))}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func writeDoctorResult(cmd *cobra.Command, projectRoot string, checks []healthCheck) error {
	if outputJSON {
		return writeJSON(cmd, checks)
	}

	bold := lipgloss.NewStyle().Bold(true).Inline(true)
	green := lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Inline(true)
	yellow := lipgloss.NewStyle().Foreground(lipgloss.Color("3")).Inline(true)
	red := lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Inline(true)

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, bold.Render("PROJECT HEALTH:")+" "+projectRoot)

	for _, c := range checks {
		var statusStr string
		switch c.Status {
		case "ok":
			statusStr = green.Render("OK")
		case "warning":
			statusStr = yellow.Render("WARN")
		case "error":
			statusStr = red.Render("ERROR")
		}
		fmt.Fprintf(out, "  %-12s %s    %s\n", c.Name+":", statusStr, c.Summary)
	}
	return nil
}

func joinComma(items []string) string {
	return strings.Join(items, ", ")
}

func nonEmptyOrDash(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return "-"
	}
	return value
}
