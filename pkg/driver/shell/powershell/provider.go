package powershell

import (
	"context"
	"fmt"

	"driversync/pkg/driver"
	execdriver "driversync/pkg/driver/exec"
	shelldriver "driversync/pkg/driver/shell"
)

// candidates are tried in order.
var candidates = []string{"powershell", "pwsh"}

type Provider struct{}

func (p *Provider) ID() string {
	return shelldriver.ProviderID(shelldriver.PowerShell)
}

func (p *Provider) Name() string {
	return "PowerShell"
}

func (p *Provider) DefaultWeight() int {
	return driver.DefaultWeight
}

func (p *Provider) CheckCompatibility(ctx context.Context) error {
	if _, err := lookup(ctx); err != nil {
		return fmt.Errorf("%w: %v", driver.ErrIncompatible, err)
	}
	return nil
}

func (p *Provider) New(ctx context.Context) (shelldriver.Driver, error) {
	return &Driver{}, nil
}

type Driver struct{}

func (d *Driver) Kind() shelldriver.Kind {
	return shelldriver.PowerShell
}

func (d *Driver) Path(ctx context.Context) (string, error) {
	return lookup(ctx)
}

func (d *Driver) Args(script string) []string {
	return []string{"-NoProfile", "-NonInteractive", "-Command", script}
}

func lookup(ctx context.Context) (string, error) {
	var lastErr error
	for _, name := range candidates {
		path, err := execdriver.Which(ctx, name)
		if err == nil {
			return path, nil
		}
		lastErr = err
	}
	return "", lastErr
}

func init() {
	driver.Register[shelldriver.Driver](&Provider{})
}
