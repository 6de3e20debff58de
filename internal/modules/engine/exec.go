package engine

import (
	"bytes"
	"context"
	"os/exec"
	"strings"
	"time"
)

const terminalStateOutput = "terminal state"

// ExecEngine invokes the engine binary once per call. Each invocation is
// bounded by the configured timeout; a hung engine process is killed and
// surfaced as *Error.
type ExecEngine struct {
	path    string
	timeout time.Duration
}

var _ Engine = (*ExecEngine)(nil)

func NewExecEngine(path string, timeout time.Duration) *ExecEngine {
	return &ExecEngine{path: path, timeout: timeout}
}

func (e *ExecEngine) InitialState(ctx context.Context) (string, string, error) {
	stdout, stderr, err := e.run(ctx, "initial-state", "-I")
	if err != nil {
		return "", stderr, err
	}
	return strings.TrimSpace(stdout), stderr, nil
}

func (e *ExecEngine) LegalActions(ctx context.Context, state string) ([]string, string, error) {
	stdout, stderr, err := e.run(ctx, "legal-actions", "-l", state)
	if err != nil {
		return nil, stderr, err
	}

	out := strings.TrimSpace(stdout)
	if out == terminalStateOutput {
		return []string{}, stderr, nil
	}

	return strings.Split(out, "\n"), stderr, nil
}

func (e *ExecEngine) Apply(ctx context.Context, state, notation string) (string, string, error) {
	// The slash selector keeps notations with a leading minus from
	// being parsed as flags by the engine.
	stdout, stderr, err := e.run(ctx, "apply", "/a", notation, state)
	if err != nil {
		return "", stderr, err
	}
	return strings.TrimSpace(stdout), stderr, nil
}

func (e *ExecEngine) Winner(ctx context.Context, state string) (Winner, string, error) {
	stdout, stderr, err := e.run(ctx, "winner", "/W", state)
	if err != nil {
		return WinnerNone, stderr, err
	}

	switch w := Winner(strings.TrimSpace(stdout)); w {
	case WinnerSeat0, WinnerSeat1, WinnerDraw:
		return w, stderr, nil
	default:
		return WinnerNone, stderr, nil
	}
}

func (e *ExecEngine) run(ctx context.Context, op string, args ...string) (string, string, error) {
	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	var stdout, stderr bytes.Buffer

	cmd := exec.CommandContext(ctx, e.path, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = ctxErr
		}
		return "", stderr.String(), &Error{Op: op, Diagnostic: stderr.String(), Err: err}
	}

	return stdout.String(), stderr.String(), nil
}
