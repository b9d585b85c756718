package cmd

import (
	"context"
	"fmt"

	"driversync/pkg/driver"
	execdriver "driversync/pkg/driver/exec"
	shelldriver "driversync/pkg/driver/shell"
)

type Provider struct{}

func (p *Provider) ID() string {
	return shelldriver.ProviderID(shelldriver.Cmd)
}

func (p *Provider) Name() string {
	return "Command Prompt"
}

func (p *Provider) DefaultWeight() int {
	return driver.DefaultWeight
}

func (p *Provider) CheckCompatibility(ctx context.Context) error {
	if _, err := execdriver.Which(ctx, "cmd"); err != nil {
		return fmt.Errorf("%w: %v", driver.ErrIncompatible, err)
	}
	return nil
}

func (p *Provider) New(ctx context.Context) (shelldriver.Driver, error) {
	return &Driver{}, nil
}

type Driver struct{}

func (d *Driver) Kind() shelldriver.Kind {
	return shelldriver.Cmd
}

func (d *Driver) Path(ctx context.Context) (string, error) {
	return execdriver.Which(ctx, "cmd")
}

func (d *Driver) Args(script string) []string {
	return []string{"/C", script}
}

func init() {
	driver.Register[shelldriver.Driver](&Provider{})
}
