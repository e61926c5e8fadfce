// Package gitexec runs the git executable. Everything else in the server
// reaches git through the Runner interface so tests can script its output.
package gitexec

import (
	"bytes"
	"context"
	stderrors "errors"
	"os/exec"
	"strings"

	"github.com/m4xw311/review-mcp/errors"
)

// Result is the outcome of one command invocation.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Runner executes argv in dir and waits for it to exit. A nonzero exit is
// reported through Result.ExitCode, not as an error; the error return is for
// commands that could not be started at all.
type Runner interface {
	Run(ctx context.Context, dir string, argv ...string) (Result, error)
}

// ExecRunner runs real processes. Only the binaries listed in Allowed may be
// started; an empty list allows just "git".
type ExecRunner struct {
	Allowed []string
}

func (r *ExecRunner) Run(ctx context.Context, dir string, argv ...string) (Result, error) {
	if len(argv) == 0 {
		return Result{}, errors.New("empty command")
	}
	if !r.isAllowed(argv[0]) {
		return Result{}, errors.New("command '%s' is not in the list of allowed commands", argv[0])
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Dir = dir
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	res := Result{Stdout: stdout.String(), Stderr: stderr.String()}
	if err != nil {
		var exitErr *exec.ExitError
		if stderrors.As(err, &exitErr) {
			res.ExitCode = exitErr.ExitCode()
			return res, nil
		}
		return res, errors.Wrapf(err, "failed to start %s", argv[0])
	}
	return res, nil
}

func (r *ExecRunner) isAllowed(name string) bool {
	if len(r.Allowed) == 0 {
		return name == "git"
	}
	for _, a := range r.Allowed {
		if a == name {
			return true
		}
	}
	return false
}

// Output runs argv and returns its stdout. A failed start or a nonzero exit
// becomes an error of the given kind whose message is the command's stderr,
// or "command failed: <argv>" when stderr is empty.
func Output(ctx context.Context, r Runner, kind errors.Kind, dir string, argv ...string) (string, error) {
	res, err := r.Run(ctx, dir, argv...)
	if err != nil {
		return "", kind.Wrapf(err, "command failed: %s", strings.Join(argv, " "))
	}
	if res.ExitCode != 0 {
		return "", kind.New("%s", FailureMessage(argv, res.Stderr))
	}
	return res.Stdout, nil
}

// FailureMessage is the caller-visible text for a failed command.
func FailureMessage(argv []string, stderr string) string {
	if msg := strings.TrimSpace(stderr); msg != "" {
		return msg
	}
	return "command failed: " + strings.Join(argv, " ")
}
