package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"elecbind/internal/pipeline"
	"elecbind/internal/tui"
)

var generateQuiet bool

func newGenerateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Regenerate the Go bindings from the libelec headers",
		Args:  cobra.NoArgs,
		RunE:  runGenerate,
	}
	cmd.Flags().BoolVarP(&generateQuiet, "quiet", "q", false, "Only print errors")
	return cmd
}

func runGenerate(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	p, err := loadProject()
	if err != nil {
		return err
	}
	logger, closeLog, err := p.openLogger("generate")
	defer closeLog()
	if err != nil {
		return err
	}
	opts := p.options(pipeline.ModeGenerate)
	opts.Logger = logger

	var status *tui.StatusWriter
	if !outputJSON && !generateQuiet && tui.DetectMode(cmd.ErrOrStderr(), false, false) == tui.ModeTUI {
		status = tui.NewStatusWriter(cmd.ErrOrStderr(), "resolving inputs")
		opts.Reporter = status
	}

	res, err := pipeline.Run(ctx, opts)
	if status != nil {
		status.Stop()
	}
	if err != nil {
		return err
	}
	if outputJSON {
		return writeJSON(cmd, res)
	}
	if !generateQuiet {
		b := res.Bindings
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %s: %d functions, %d enums, %d types, %d constants\n",
			res.BindingsFile, b.Functions, b.Enums, b.Types, b.Constants)
		if len(b.Blocked) > 0 {
			fmt.Fprintf(cmd.OutOrStdout(), "blocked: %s\n", joinComma(b.Blocked))
		}
	}
	return nil
}
