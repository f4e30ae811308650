// internal/execx/runner.go
package execx

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Output holds what a finished command wrote
type Output struct {
	Stdout   []byte
	Stderr   []byte
	ExitCode int
}

// Runner executes external programs. Implementations must honor ctx
// cancellation and return an error for a non-zero exit status.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (*Output, error)
}

// ExitError is returned when a command ran but exited non-zero
type ExitError struct {
	Command  string
	ExitCode int
	Stderr   string
}

func (e *ExitError) Error() string {
	msg := fmt.Sprintf("%s exited with code %d", e.Command, e.ExitCode)
	if e.Stderr != "" {
		msg += ": " + e.Stderr
	}
	return msg
}

// CommandRunner runs programs with os/exec
type CommandRunner struct {
	timeout time.Duration
	logger  *zap.Logger
}

// NewCommandRunner creates a runner. A positive timeout bounds every
// command in addition to the caller's context.
func NewCommandRunner(timeout time.Duration, logger *zap.Logger) *CommandRunner {
	return &CommandRunner{
		timeout: timeout,
		logger:  logger.With(zap.String("component", "execx")),
	}
}

// Run executes name with args and captures its output
func (r *CommandRunner) Run(ctx context.Context, name string, args ...string) (*Output, error) {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	// Children that inherit the pipes must not keep Wait blocked after kill.
	cmd.WaitDelay = time.Second

	start := time.Now()
	err := cmd.Run()
	out := &Output{Stdout: stdout.Bytes(), Stderr: stderr.Bytes()}
	if cmd.ProcessState != nil {
		out.ExitCode = cmd.ProcessState.ExitCode()
	}

	r.logger.Debug("Command finished",
		zap.String("command", name),
		zap.Strings("args", args),
		zap.Int("exit_code", out.ExitCode),
		zap.Duration("duration", time.Since(start)),
	)

	if ctxErr := ctx.Err(); ctxErr != nil {
		return out, fmt.Errorf("%s did not finish: %w", name, ctxErr)
	}

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return out, &ExitError{
				Command:  name,
				ExitCode: exitErr.ExitCode(),
				Stderr:   strings.TrimSpace(stderr.String()),
			}
		}
		return out, fmt.Errorf("failed to run %s: %w", name, err)
	}

	return out, nil
}
