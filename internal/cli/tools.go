package cli

import (
	"context"
	"runtime"
	"strings"

	"github.com/spf13/cobra"

	"elecbind/internal/pipeline"
	"elecbind/internal/toolchain"
)

func newToolsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tools",
		Short: "Inspect the C toolchain",
	}
	cmd.AddCommand(newToolsListCmd())
	return cmd
}

func newToolsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the resolved compiler and archiver",
		Args:  cobra.NoArgs,
		RunE:  runToolsList,
	}
}

func runToolsList(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	p, err := loadProject()
	if err != nil {
		return err
	}
	statuses := detectTools(ctx, p)

	if outputJSON {
		return writeJSON(cmd, statuses)
	}
	printStatusTable(cmd, statuses)
	return nil
}

// detectTools probes the toolchain for the configured target, or the host
// when no target is set.
func detectTools(ctx context.Context, p project) []toolchain.Status {
	info, err := pipeline.ResolveTarget(targetOS, p.env, runtime.GOOS)
	if err != nil {
		info, _ = pipeline.ResolveTarget(pipeline.HostTarget, p.env, runtime.GOOS)
	}
	return toolchain.Detect(ctx, toolchain.Options{
		Platform: info,
		Env:      p.env,
		Config:   p.config.Toolchain,
	})
}

func printStatusTable(cmd *cobra.Command, statuses []toolchain.Status) {
	if len(statuses) == 0 {
		cmd.Println("(no tool statuses)")
		return
	}

	rows := make([][]string, 0, len(statuses))
	for _, st := range statuses {
		ok := "no"
		if st.Available {
			ok = "yes"
		}
		path := st.Path
		if path == "" {
			path = "(missing)"
		}
		rows = append(rows, []string{string(st.Role), nonEmptyOrDash(string(st.Source)), nonEmptyOrDash(st.Version), ok, path})
	}
	renderTable(cmd.OutOrStdout(), []string{"TOOL", "SOURCE", "VERSION", "OK", "PATH"}, rows)

	for _, st := range statuses {
		if st.Error != "" {
			cmd.Printf("%s: %s\n", st.Role, st.Error)
		}
		for _, note := range st.Notes {
			cmd.Printf("  %s\n", strings.TrimSpace(note))
		}
	}
}
