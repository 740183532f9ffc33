// Package cli implements the elecbind command line.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"elecbind/internal/cfgerr"
)

var (
	projectDir     string
	outputJSON     bool
	targetOS       string
	featureSelects []string
)

// Execute runs the root cobra command and returns the process exit status.
func Execute(ctx context.Context) int {
	err := newRootCmd().ExecuteContext(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
	}
	return exitCode(err)
}

// exitCode maps an error to a status: 2 for configuration errors, 1 for
// anything else.
func exitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case cfgerr.Is(err):
		return 2
	default:
		return 1
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "elecbind",
		Short:         "Build libelec and its Go bindings",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&projectDir, "project", "", "Path to project directory")
	cmd.PersistentFlags().BoolVar(&outputJSON, "json", false, "Output machine-readable JSON")
	cmd.PersistentFlags().StringVar(&targetOS, "target", "", "Target OS: windows, macos, linux or host (default $ELECBIND_TARGET_OS)")
	cmd.PersistentFlags().StringSliceVar(&featureSelects, "features", nil, "Extra features, merged with the config and $ELECBIND_FEATURES")

	cmd.AddCommand(newPlatformCmd())
	cmd.AddCommand(newFlagsCmd())
	cmd.AddCommand(newBuildCmd())
	cmd.AddCommand(newGenerateCmd())
	cmd.AddCommand(newEnvCmd())
	cmd.AddCommand(newToolsCmd())
	cmd.AddCommand(newDoctorCmd())
	cmd.AddCommand(newConfigCmd())

	return cmd
}
