package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"log"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"elecbind/internal/cfgerr"
	"elecbind/internal/config"
	"elecbind/internal/envconfig"
	"elecbind/internal/logx"
	"elecbind/internal/paths"
	"elecbind/internal/pipeline"
)

// lookupEnv is replaced in tests.
var lookupEnv envconfig.LookupFunc

func loadEnv() envconfig.Env {
	if lookupEnv != nil {
		return envconfig.Load(lookupEnv)
	}
	return envconfig.FromOS()
}

// project bundles the resolved project paths, configuration and environment.
type project struct {
	paths  paths.ProjectPaths
	config config.Config
	env    envconfig.Env
}

func loadProject() (project, error) {
	pp, err := paths.Resolve(projectDir)
	if err != nil {
		return project{}, err
	}
	cfg, err := config.Load(pp.ConfigFile)
	if err != nil {
		return project{}, cfgerr.Wrap(config.FileName, err)
	}
	if err := config.Errors(cfg.ValidateStrict()); err != nil {
		return project{}, cfgerr.Wrap(config.FileName, err)
	}
	return project{
		paths:  paths.ApplyConfig(pp, cfg),
		config: cfg,
		env:    loadEnv(),
	}, nil
}

func (p project) options(mode pipeline.Mode) pipeline.Options {
	return pipeline.Options{
		Mode:     mode,
		Paths:    p.paths,
		Config:   p.config,
		Env:      p.env,
		Target:   targetOS,
		Features: featureSelects,
	}
}

// openLogger opens the per-run log file. The returned close func is never nil.
func (p project) openLogger(command string) (*log.Logger, func(), error) {
	logger, closer, err := logx.New(p.paths, p.env.Debug)
	if err != nil {
		return nil, func() {}, err
	}
	logger.Printf("elecbind %s: project=%s", command, p.paths.Root)
	return logger, func() { closer.Close() }, nil
}

func writeJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return nil
}

func renderTable(w io.Writer, header []string, rows [][]string) {
	table := tablewriter.NewWriter(w)
	table.SetHeader(header)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetNoWhiteSpace(true)
	table.SetTablePadding("    ")
	table.SetAutoWrapText(false)
	table.AppendBulk(rows)
	table.Render()
}
