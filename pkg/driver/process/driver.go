package process

import (
	"context"

	"driversync/pkg/driver"
)

// Driver stops running processes.
type Driver interface {
	// Stop forcibly terminates every process whose executable name is name or
	// name.exe (case-insensitive) and returns how many were killed.
	Stop(ctx context.Context, name string) (int, error)
}

// Stop terminates running processes with the active process driver.
func Stop(ctx context.Context, name string) (int, error) {
	d, err := driver.Get[Driver](ctx)
	if err != nil {
		return 0, err
	}
	return d.Stop(ctx, name)
}
