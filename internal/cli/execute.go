package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/roach88/wrexpt/internal/export"
)

// Execute runs wrexpt with args (without the program name) and returns the
// process exit code. Errors are reported on stderr, or on stdout as a JSON
// error response with --format json.
func Execute(args []string, stdout, stderr io.Writer) int {
	return ExecuteWithOptions(&RootOptions{}, args, stdout, stderr)
}

// ExecuteWithOptions is Execute with injectable root options.
func ExecuteWithOptions(opts *RootOptions, args []string, stdout, stderr io.Writer) int {
	cmd := NewRootCommandWithOptions(opts)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	rewritten, err := RewriteLegacyArgs(args)
	if err != nil {
		fmt.Fprintf(stderr, "ERROR: %v\n", err)
		fmt.Fprint(stderr, cmd.UsageString())
		return ExitUsage
	}
	cmd.SetArgs(rewritten)

	err = cmd.Execute()
	if err == nil {
		return ExitSuccess
	}

	code := GetExitCode(err)
	formatter := &OutputFormatter{Format: opts.Format, Writer: stderr, Verbose: opts.Verbose}
	if opts.Format == "json" {
		formatter.Writer = stdout
	}
	_ = formatter.Error(code, err.Error(), errorDetails(err))
	if code == ExitUsage {
		fmt.Fprint(stderr, cmd.UsageString())
	}
	return code
}

// ExportErrorDetails locates a failed export for --verbose and JSON output.
type ExportErrorDetails struct {
	Kind  export.Kind `json:"kind"`
	Step  export.Step `json:"step"`
	Phase string      `json:"phase"`
}

func (d ExportErrorDetails) String() string {
	return fmt.Sprintf("kind=%s step=%s phase=%s", d.Kind, d.Step, d.Phase)
}

// errorDetails returns the export failure behind err, or nil.
func errorDetails(err error) any {
	var ee *export.Error
	if !errors.As(err, &ee) {
		return nil
	}
	return ExportErrorDetails{Kind: ee.Kind, Step: ee.Step, Phase: ee.Phase.String()}
}
