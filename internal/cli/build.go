package cli

import (
	"context"
	"fmt"
	"io"
	"strconv"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"elecbind/internal/nativebuild"
	"elecbind/internal/pipeline"
	"elecbind/internal/tui"
)

var (
	buildForce      bool
	buildDryRun     bool
	buildNoProgress bool
)

func newBuildCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build or link libelec and write the cgo directives",
		Long: "Build resolves the target, the dependency roots and the flag list once,\n" +
			"then runs the native build and (with regenerate-bindings) the binding\n" +
			"generator concurrently.",
		Args: cobra.NoArgs,
		RunE: runBuild,
	}
	cmd.Flags().BoolVar(&buildForce, "force", false, "Recompile every unit regardless of the build state")
	cmd.Flags().BoolVar(&buildDryRun, "dry-run", false, "Show what would be compiled and why, without running any tool")
	cmd.Flags().BoolVar(&buildNoProgress, "no-progress", false, "Disable the interactive progress table")
	return cmd
}

func runBuild(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	p, err := loadProject()
	if err != nil {
		return err
	}
	opts := p.options(pipeline.ModeBuild)
	opts.Force = buildForce

	if buildDryRun {
		in, plans, err := pipeline.Plan(opts)
		if err != nil {
			return err
		}
		return printPlan(cmd, in, plans)
	}

	logger, closeLog, err := p.openLogger("build")
	defer closeLog()
	if err != nil {
		return err
	}
	opts.Logger = logger

	out := cmd.OutOrStdout()
	var res pipeline.Result
	switch tui.DetectMode(out, buildNoProgress, outputJSON) {
	case tui.ModeTUI:
		model := tui.NewBuildModel("elecbind build: " + p.paths.Root)
		err = tui.RunWithWork(out, model, func(send func(tea.Msg)) error {
			opts.Reporter = tui.NewBuildReporter(send)
			var runErr error
			res, runErr = pipeline.Run(ctx, opts)
			return runErr
		})
	case tui.ModePlain:
		opts.Reporter = tui.NewLineReporter(out)
		res, err = pipeline.Run(ctx, opts)
	default:
		res, err = pipeline.Run(ctx, opts)
	}
	if err != nil {
		return err
	}

	if outputJSON {
		return writeJSON(cmd, res)
	}
	printBuildResult(out, res)
	return nil
}

type planReport struct {
	Target   string                 `json:"target"`
	Strategy string                 `json:"strategy"`
	Units    []nativebuild.UnitPlan `json:"units"`
}

func printPlan(cmd *cobra.Command, in pipeline.Inputs, plans []nativebuild.UnitPlan) error {
	report := planReport{Target: in.Platform.Signal, Strategy: string(in.Strategy.Name()), Units: plans}
	if outputJSON {
		return writeJSON(cmd, report)
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "target:   %s\nstrategy: %s\n", report.Target, report.Strategy)
	if len(plans) == 0 {
		fmt.Fprintln(out, "nothing to compile")
		return nil
	}
	rows := make([][]string, len(plans))
	for i, u := range plans {
		rows[i] = []string{strconv.Itoa(u.Index + 1), u.Key(), u.Action, u.Reason}
	}
	fmt.Fprintln(out)
	renderTable(out, []string{"#", "UNIT", "ACTION", "REASON"}, rows)
	return nil
}

func printBuildResult(w io.Writer, res pipeline.Result) {
	fmt.Fprintf(w, "target:   %s (%s)\n", res.Platform.Signal, res.Platform.LibDir)
	if res.Build != nil {
		nativebuild.Describe(w, *res.Build)
	}
	if res.Bindings != nil {
		fmt.Fprintf(w, "bindings: %s (%d functions, %d enums, %d types, %d constants)\n",
			res.BindingsFile, res.Bindings.Functions, res.Bindings.Enums, res.Bindings.Types, res.Bindings.Constants)
	} else if res.BindingsStale {
		fmt.Fprintf(w, "warning:  %s was generated from different headers; run elecbind generate\n", res.BindingsFile)
	}
	if res.CgoFile != "" {
		fmt.Fprintf(w, "cgo:      %s\n", res.CgoFile)
	}
}
