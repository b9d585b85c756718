package native

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"

	"driversync/pkg/api"
	"driversync/pkg/driver"
	execdriver "driversync/pkg/driver/exec"
)

func init() {
	driver.Register[execdriver.Driver](&Provider{})
}

type Provider struct{}

func (p *Provider) ID() string         { return "exec_native" }
func (p *Provider) Name() string       { return "Native" }
func (p *Provider) DefaultWeight() int { return driver.DefaultWeight }

func (p *Provider) CheckCompatibility(ctx context.Context) error {
	return nil
}

func (p *Provider) New(ctx context.Context) (execdriver.Driver, error) {
	return &Driver{}, nil
}

type Driver struct{}

func (d *Driver) Run(ctx context.Context, name string, args ...string) *exec.Cmd {
	slog.Debug("exec", "command", name, "args", args)
	return exec.CommandContext(ctx, name, args...)
}

func (d *Driver) Which(ctx context.Context, name string) (string, error) {
	if filepath.IsAbs(name) {
		if info, err := os.Stat(name); err == nil && !info.IsDir() {
			slog.Debug("which", "binary", name, "result", name)
			return name, nil
		}
		slog.Debug("which", "binary", name, "result", api.ErrBinaryNotFound)
		return "", fmt.Errorf("%w: %s", api.ErrBinaryNotFound, name)
	}

	// LookPath honours PATHEXT, so "chromedriver" resolves to chromedriver.exe on Windows.
	path, err := exec.LookPath(name)
	if err != nil {
		if errors.Is(err, exec.ErrDot) {
			// Found relative to the working directory; accept it as an absolute path.
			if abs, absErr := filepath.Abs(path); absErr == nil {
				slog.Debug("which", "binary", name, "result", abs)
				return abs, nil
			}
		}
		slog.Debug("which", "binary", name, "result", api.ErrBinaryNotFound)
		return "", fmt.Errorf("%w: %s", api.ErrBinaryNotFound, name)
	}
	slog.Debug("which", "binary", name, "result", path)
	return path, nil
}
