package toolchain

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"runtime"
	"strings"

	"elecbind/internal/config"
	"elecbind/internal/envconfig"
	"elecbind/internal/platform"
)

// Tool is one resolved executable.
type Tool struct {
	Role   Role   `json:"role"`
	Path   string `json:"path"`
	Source Source `json:"source"`
	// Extra holds leading arguments from an override such as "ccache gcc".
	Extra []string `json:"extra,omitempty"`
}

// Options controls tool resolution.
type Options struct {
	Platform platform.Info
	HostGOOS string
	Env      envconfig.Env
	Config   config.ToolchainConfig
	Runner   Runner
	// LookPath defaults to exec.LookPath.
	LookPath func(string) (string, error)
}

func (o Options) lookPath() func(string) (string, error) {
	if o.LookPath != nil {
		return o.LookPath
	}
	return exec.LookPath
}

func (o Options) hostGOOS() string {
	if o.HostGOOS != "" {
		return o.HostGOOS
	}
	return runtime.GOOS
}

// Toolchain pairs the compiler and archiver with the runner used to invoke
// them.
type Toolchain struct {
	CC     Tool
	AR     Tool
	runner Runner
}

// Resolve locates the compiler and archiver. Precedence is the environment
// override, then the project config, then the platform cross prefix, then
// the first candidate found on PATH.
func Resolve(opts Options) (Toolchain, error) {
	cc, err := resolveTool(opts, RoleCompiler, opts.Env.CC, opts.Config.CC)
	if err != nil {
		return Toolchain{}, err
	}
	ar, err := resolveTool(opts, RoleArchiver, opts.Env.AR, opts.Config.AR)
	if err != nil {
		return Toolchain{}, err
	}
	runner := opts.Runner
	if runner == nil {
		runner = CmdRunner{}
	}
	return Toolchain{CC: cc, AR: ar, runner: runner}, nil
}

// New builds a Toolchain from known paths.
func New(cc, ar string, runner Runner) Toolchain {
	if runner == nil {
		runner = CmdRunner{}
	}
	return Toolchain{
		CC:     Tool{Role: RoleCompiler, Path: cc, Source: SourceConfig},
		AR:     Tool{Role: RoleArchiver, Path: ar, Source: SourceConfig},
		runner: runner,
	}
}

func resolveTool(opts Options, role Role, envValue, cfgValue string) (Tool, error) {
	def, _ := DefinitionFor(role)
	look := opts.lookPath()

	if envValue != "" {
		path, extra, err := lookExplicit(look, envValue)
		if err != nil {
			return Tool{}, &ToolError{Tool: string(role), Err: fmt.Errorf("%s=%s: %w", strings.ToUpper(string(role)), envValue, err)}
		}
		return Tool{Role: role, Path: path, Source: SourceEnv, Extra: extra}, nil
	}
	if cfgValue != "" {
		path, extra, err := lookExplicit(look, cfgValue)
		if err != nil {
			return Tool{}, &ToolError{Tool: string(role), Err: fmt.Errorf("toolchain.%s=%s: %w", role, cfgValue, err)}
		}
		return Tool{Role: role, Path: path, Source: SourceConfig, Extra: extra}, nil
	}

	if opts.Platform.IsCross(opts.hostGOOS()) {
		name := executableName(opts.Platform.CrossPrefix + def.Cross)
		path, err := look(name)
		if err != nil {
			return Tool{}, &ToolError{Tool: string(role), Err: fmt.Errorf("cross tool %s for %s: %w", name, opts.Platform.Signal, err)}
		}
		return Tool{Role: role, Path: path, Source: SourceCross}, nil
	}

	var tried []string
	for _, candidate := range def.Candidates {
		name := executableName(candidate)
		tried = append(tried, name)
		if path, err := look(name); err == nil {
			return Tool{Role: role, Path: path, Source: SourceSystem}, nil
		}
	}
	return Tool{}, &ToolError{Tool: string(role), Err: fmt.Errorf("not found on PATH (tried %s)", strings.Join(tried, ", "))}
}

// lookExplicit resolves a user-supplied command, which may carry a path and
// leading arguments.
func lookExplicit(look func(string) (string, error), value string) (string, []string, error) {
	fields := strings.Fields(value)
	if len(fields) == 0 {
		return "", nil, errors.New("empty command")
	}
	path, err := look(fields[0])
	if err != nil {
		return "", nil, err
	}
	return path, fields[1:], nil
}

// Status reports resolution and version details for one role.
type Status struct {
	Role      Role     `json:"role"`
	Path      string   `json:"path,omitempty"`
	Source    Source   `json:"source,omitempty"`
	Version   string   `json:"version,omitempty"`
	Available bool     `json:"available"`
	Error     string   `json:"error,omitempty"`
	Notes     []string `json:"notes,omitempty"`
}

// Detect resolves each role independently and probes its version, so that a
// missing archiver does not hide a working compiler.
func Detect(ctx context.Context, opts Options) []Status {
	runner := opts.Runner
	if runner == nil {
		runner = CmdRunner{}
	}

	overrides := map[Role][2]string{
		RoleCompiler: {opts.Env.CC, opts.Config.CC},
		RoleArchiver: {opts.Env.AR, opts.Config.AR},
	}

	var statuses []Status
	for _, role := range Roles() {
		o := overrides[role]
		status := Status{Role: role}
		tool, err := resolveTool(opts, role, o[0], o[1])
		if err != nil {
			status.Error = err.Error()
			status.Notes = installHints(role, opts.Platform)
			statuses = append(statuses, status)
			continue
		}
		status.Path = tool.Path
		status.Source = tool.Source
		status.Available = true

		version, err := readVersion(ctx, runner, tool)
		if err != nil {
			status.Notes = append(status.Notes, fmt.Sprintf("version probe failed: %v", err))
		} else {
			status.Version = version
		}
		statuses = append(statuses, status)
	}
	return statuses
}
