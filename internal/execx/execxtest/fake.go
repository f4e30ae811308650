// Package execxtest provides a scripted execx.Runner for tests.
package execxtest

import (
	"context"
	"strings"
	"sync"

	"thermal-print-service/internal/execx"
)

// Call is one recorded invocation
type Call struct {
	Name string
	Args []string
}

// Line renders the call as a shell-like command line
func (c Call) Line() string {
	return strings.TrimSpace(c.Name + " " + strings.Join(c.Args, " "))
}

// Handler answers a call
type Handler func(ctx context.Context, name string, args []string) (*execx.Output, error)

// Runner records calls and answers them by command name. Commands with
// no handler succeed with empty output.
type Runner struct {
	mu       sync.Mutex
	calls    []Call
	handlers map[string]Handler
}

// NewRunner creates an empty fake runner
func NewRunner() *Runner {
	return &Runner{handlers: make(map[string]Handler)}
}

// Handle registers the handler for a command name
func (r *Runner) Handle(name string, h Handler) *Runner {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[name] = h
	return r
}

// Respond registers a fixed stdout for a command name
func (r *Runner) Respond(name, stdout string) *Runner {
	return r.Handle(name, func(context.Context, string, []string) (*execx.Output, error) {
		return &execx.Output{Stdout: []byte(stdout)}, nil
	})
}

// Fail registers a non-zero exit for a command name
func (r *Runner) Fail(name string, code int, stderr string) *Runner {
	return r.Handle(name, func(context.Context, string, []string) (*execx.Output, error) {
		return &execx.Output{Stderr: []byte(stderr), ExitCode: code},
			&execx.ExitError{Command: name, ExitCode: code, Stderr: stderr}
	})
}

func (r *Runner) Run(ctx context.Context, name string, args ...string) (*execx.Output, error) {
	r.mu.Lock()
	r.calls = append(r.calls, Call{Name: name, Args: append([]string(nil), args...)})
	h := r.handlers[name]
	r.mu.Unlock()

	if h == nil {
		return &execx.Output{}, nil
	}
	return h(ctx, name, args)
}

// Calls returns the recorded calls in order
func (r *Runner) Calls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Call(nil), r.calls...)
}

// Lines returns the recorded calls as command lines
func (r *Runner) Lines() []string {
	calls := r.Calls()
	lines := make([]string, len(calls))
	for i, c := range calls {
		lines[i] = c.Line()
	}
	return lines
}
