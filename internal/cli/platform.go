package cli

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"elecbind/internal/nativebuild"
	"elecbind/internal/pipeline"
	"elecbind/internal/platform"
)

var platformAll bool

func newPlatformCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "platform",
		Short: "Show the resolved target platform",
		Args:  cobra.NoArgs,
		RunE:  runPlatform,
	}
	cmd.Flags().BoolVar(&platformAll, "all", false, "List every supported platform")
	return cmd
}

func runPlatform(cmd *cobra.Command, _ []string) error {
	var infos []platform.Info
	if platformAll {
		for _, signal := range platform.Supported() {
			info, err := platform.Resolve(signal)
			if err != nil {
				return err
			}
			infos = append(infos, info)
		}
	} else {
		info, err := pipeline.ResolveTarget(targetOS, loadEnv(), runtime.GOOS)
		if err != nil {
			return err
		}
		infos = append(infos, info)
	}

	if outputJSON {
		if platformAll {
			return writeJSON(cmd, infos)
		}
		return writeJSON(cmd, infos[0])
	}

	rows := make([][]string, 0, len(infos))
	for _, info := range infos {
		cross := "-"
		if info.IsCross(runtime.GOOS) {
			cross = info.CrossPrefix + "gcc"
		}
		rows = append(rows, []string{
			info.Signal,
			info.Identity.String(),
			info.LibDir,
			"-D" + info.Define,
			info.AcfutilsLibDir,
			cross,
		})
	}
	renderTable(cmd.OutOrStdout(), []string{"SIGNAL", "IDENTITY", "LIB DIR", "DEFINE", "ACFUTILS DIR", "CROSS CC"}, rows)
	if !platformAll {
		fmt.Fprintf(cmd.OutOrStdout(), "\narchive: %s\n", infos[0].ArchiveName(nativebuild.LibElec))
	}
	return nil
}
