package dispatch

import (
	"context"
	"errors"
	"os/exec"
	"strings"
)

// Runner executes a bound command line and returns its combined stdout and
// stderr. A non-zero exit code is reported through the int return, not the
// error: many wrapped tools use exit codes for normal signaling. The error
// is reserved for failures to start or finish the process.
type Runner interface {
	Run(ctx context.Context, command string) (output string, exitCode int, err error)
}

// ShellRunner executes commands through the system shell so templates can
// rely on shell semantics (pipes, redirects, quoting).
type ShellRunner struct{}

// Run executes command via sh -c and captures combined output. The context
// bounds execution; the process is killed when it expires.
func (ShellRunner) Run(ctx context.Context, command string) (string, int, error) {
	cmd := exec.CommandContext(ctx, "sh", "-c", command)
	out, err := cmd.CombinedOutput()
	output := strings.TrimSpace(string(out))
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && ctx.Err() == nil {
			return output, exitErr.ExitCode(), nil
		}
		if ctx.Err() != nil {
			return output, -1, ctx.Err()
		}
		return output, -1, err
	}
	return output, 0, nil
}

var _ Runner = ShellRunner{}
