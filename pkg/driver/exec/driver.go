package exec

import (
	"context"
	"fmt"
	"os/exec"

	"driversync/pkg/driver"
)

// Driver spawns processes and resolves executables on the search path.
type Driver interface {
	// Run prepares a command; the caller decides how to wire its output.
	Run(ctx context.Context, name string, args ...string) *exec.Cmd

	// Which resolves name to the first matching executable on the search path.
	Which(ctx context.Context, name string) (string, error)
}

// Run prepares a command with the active exec driver.
func Run(ctx context.Context, name string, args ...string) (*exec.Cmd, error) {
	d, err := driver.Get[Driver](ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get exec driver: %w", err)
	}
	return d.Run(ctx, name, args...), nil
}

// Which resolves name on the search path with the active exec driver.
func Which(ctx context.Context, name string) (string, error) {
	d, err := driver.Get[Driver](ctx)
	if err != nil {
		return "", err
	}
	return d.Which(ctx, name)
}
