package cli

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/spf13/cobra"

	"elecbind/internal/flags"
	"elecbind/internal/nativebuild"
	"elecbind/internal/paths"
	"elecbind/internal/pipeline"
)

var (
	flagsCompile bool
	flagsLines   bool
)

func newFlagsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "flags",
		Short: "Print the assembled compiler flags for the target",
		Args:  cobra.NoArgs,
		RunE:  runFlags,
	}
	cmd.Flags().BoolVar(&flagsCompile, "compile", false, "Include the defines only the native sources use")
	cmd.Flags().BoolVar(&flagsLines, "lines", false, "Print one argument per line")
	return cmd
}

type flagsReport struct {
	Target   string   `json:"target"`
	Features []string `json:"features"`
	Flags    []string `json:"flags"`
}

func runFlags(cmd *cobra.Command, _ []string) error {
	p, err := loadProject()
	if err != nil {
		return err
	}
	info, err := pipeline.ResolveTarget(targetOS, p.env, runtime.GOOS)
	if err != nil {
		return err
	}
	fs, err := pipeline.MergeFeatures(p.config, p.env, featureSelects)
	if err != nil {
		return err
	}
	deps, err := paths.ResolveDependencies(p.env, paths.Requirements{Acfutils: true, SDK: true})
	if err != nil {
		return err
	}
	fl, err := flags.Assemble(info, deps, fs)
	if err != nil {
		return err
	}
	if flagsCompile {
		fl = nativebuild.CompileFlags(fl, fs)
	}

	if outputJSON {
		return writeJSON(cmd, flagsReport{Target: info.Signal, Features: fs.Strings(), Flags: fl.Args()})
	}
	sep := " "
	if flagsLines {
		sep = "\n"
	}
	fmt.Fprintln(cmd.OutOrStdout(), strings.Join(fl.Args(), sep))
	return nil
}
