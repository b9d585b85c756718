package shell

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"unicode/utf8"

	"driversync/pkg/driver"
	execdriver "driversync/pkg/driver/exec"
)

// Kind names a host shell.
type Kind string

const (
	PowerShell Kind = "powershell"
	Cmd        Kind = "cmd"
)

var (
	// ErrStart means the shell could not be started at all.
	ErrStart = errors.New("shell command could not run")
	// ErrExit means the shell ran and reported a non-zero exit status.
	ErrExit = errors.New("shell command failed")
)

// Driver describes how to invoke one kind of shell.
type Driver interface {
	// Kind returns the shell this driver runs.
	Kind() Kind

	// Path returns the full path to the shell executable
	Path(ctx context.Context) (string, error)

	// Args returns the argument list that makes the shell execute script and exit.
	Args(script string) []string
}

// ProviderID returns the driver ID a provider for kind registers under.
func ProviderID(kind Kind) string {
	return "shell_" + string(kind)
}

// Get returns the driver for the given shell kind.
func Get(ctx context.Context, kind Kind) (Driver, error) {
	return driver.GetByID[Driver](ctx, ProviderID(kind))
}

// Run executes script with the given shell and returns its trimmed standard output.
// A shell that cannot be started yields ErrStart; a non-zero exit yields ErrExit.
func Run(ctx context.Context, kind Kind, script string) (string, error) {
	d, err := Get(ctx, kind)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrStart, kind, err)
	}
	path, err := d.Path(ctx)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrStart, kind, err)
	}

	cmd, err := execdriver.Run(ctx, path, d.Args(script)...)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrStart, kind, err)
	}
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return "", fmt.Errorf("%w: %s exited with %d: %s", ErrExit, kind, exitErr.ExitCode(), strings.TrimSpace(stderr.String()))
		}
		return "", fmt.Errorf("%w: %s: %v", ErrStart, kind, err)
	}

	out := stdout.Bytes()
	if !utf8.Valid(out) {
		return "", fmt.Errorf("%w: %s produced non UTF-8 output", ErrExit, kind)
	}
	return strings.TrimSpace(string(out)), nil
}

// Runner is the narrow contract the rest of the program uses to reach a shell.
type Runner interface {
	Run(ctx context.Context, kind Kind, script string) (string, error)
}

// Gateway is the Runner backed by the registered shell drivers.
type Gateway struct{}

func (Gateway) Run(ctx context.Context, kind Kind, script string) (string, error) {
	return Run(ctx, kind, script)
}
