package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"elecbind/internal/envconfig"
)

func newEnvCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "env",
		Short: "List the environment variables elecbind reads",
		Args:  cobra.NoArgs,
		RunE:  runEnv,
	}
}

type envEntry struct {
	Name        string `json:"name"`
	Value       string `json:"value"`
	Description string `json:"description"`
}

func runEnv(cmd *cobra.Command, _ []string) error {
	vars := loadEnv().AsMap()
	entries := make([]envEntry, 0, len(vars))
	for _, key := range envconfig.Keys() {
		v := vars[key]
		entries = append(entries, envEntry{Name: v.Name, Value: fmt.Sprintf("%v", v.Value), Description: v.Description})
	}

	if outputJSON {
		return writeJSON(cmd, entries)
	}
	rows := make([][]string, len(entries))
	for i, e := range entries {
		rows[i] = []string{e.Name, nonEmptyOrDash(e.Value), e.Description}
	}
	renderTable(cmd.OutOrStdout(), []string{"VARIABLE", "VALUE", "DESCRIPTION"}, rows)
	return nil
}
