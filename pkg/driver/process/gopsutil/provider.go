package gopsutil

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"driversync/pkg/driver"
	processdriver "driversync/pkg/driver/process"

	"github.com/shirou/gopsutil/v3/process"
)

func init() {
	driver.Register[processdriver.Driver](&Provider{})
}

type Provider struct{}

func (p *Provider) ID() string         { return "process_gopsutil" }
func (p *Provider) Name() string       { return "gopsutil" }
func (p *Provider) DefaultWeight() int { return driver.DefaultWeight }

func (p *Provider) CheckCompatibility(ctx context.Context) error {
	return nil
}

func (p *Provider) New(ctx context.Context) (processdriver.Driver, error) {
	return &Driver{}, nil
}

type Driver struct{}

func (d *Driver) Stop(ctx context.Context, name string) (int, error) {
	procs, err := process.ProcessesWithContext(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list processes: %w", err)
	}

	var (
		killed int
		errs   []error
	)
	for _, p := range procs {
		pname, err := p.NameWithContext(ctx)
		if err != nil || !Matches(pname, name) {
			continue
		}
		if err := p.KillWithContext(ctx); err != nil {
			errs = append(errs, fmt.Errorf("kill %s (pid %d): %w", pname, p.Pid, err))
			continue
		}
		slog.Debug("process killed", "name", pname, "pid", p.Pid)
		killed++
	}
	return killed, errors.Join(errs...)
}

// Matches reports whether a process name refers to the executable name.
func Matches(processName, name string) bool {
	processName = strings.ToLower(processName)
	name = strings.ToLower(name)
	return processName == name || processName == name+".exe"
}
