package toolchain

import (
	"context"
	"path/filepath"
	"strings"

	"elecbind/internal/flags"
)

// Runner returns the runner used for invocations.
func (t Toolchain) Runner() Runner {
	if t.runner == nil {
		return CmdRunner{}
	}
	return t.runner
}

func (t Toolchain) run(ctx context.Context, tool Tool, args []string, opts RunOptions) (RunResult, error) {
	full := append(append([]string(nil), tool.Extra...), args...)
	res, err := t.Runner().Run(ctx, tool.Path, full, opts)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return res, ctxErr
		}
		return res, &ToolError{Tool: tool.Path, Args: full, Stderr: string(res.Stderr), Err: err}
	}
	return res, nil
}

// CompileArgs returns the compiler arguments for one translation unit. The
// compiler also writes the unit's header dependencies to DepFile(object).
func CompileArgs(fl flags.FlagList, source, object string) []string {
	return append(fl.Args(), "-MMD", "-MF", DepFile(object), "-c", source, "-o", object)
}

// DepFile names the make-style dependency file written next to object.
func DepFile(object string) string {
	return strings.TrimSuffix(object, filepath.Ext(object)) + ".d"
}

// Compile builds one object file from source.
func (t Toolchain) Compile(ctx context.Context, fl flags.FlagList, source, object string) error {
	_, err := t.run(ctx, t.CC, CompileArgs(fl, source, object), RunOptions{})
	return err
}

// Archive replaces archive with the given objects using "ar rcs".
func (t Toolchain) Archive(ctx context.Context, archive string, objects []string) error {
	args := append([]string{"rcs", archive}, objects...)
	_, err := t.run(ctx, t.AR, args, RunOptions{})
	return err
}

// PreprocessArgs returns the arguments that preprocess C from stdin while
// keeping macro definitions in the output.
func PreprocessArgs(fl flags.FlagList) []string {
	return append(append([]string{"-E", "-dD"}, fl.Args()...), "-x", "c", "-")
}

// Preprocess runs the compiler's preprocessor over the given source text.
func (t Toolchain) Preprocess(ctx context.Context, fl flags.FlagList, source string) ([]byte, error) {
	res, err := t.run(ctx, t.CC, PreprocessArgs(fl), RunOptions{Stdin: strings.NewReader(source)})
	if err != nil {
		return nil, err
	}
	return res.Stdout, nil
}
