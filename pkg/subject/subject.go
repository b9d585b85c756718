package subject

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	execdriver "driversync/pkg/driver/exec"
	"driversync/pkg/driver/shell"
	"driversync/pkg/family"
	"driversync/pkg/semver"
)

// Browser is the installed browser as observed at detection time.
type Browser struct {
	Family      family.Family
	Raw         string
	Version     string
	MainVersion string
}

// Detected reports whether a usable browser version was found.
func (b Browser) Detected() bool {
	return b.MainVersion != ""
}

// Driver is the installed automation driver as observed at detection time.
type Driver struct {
	Family      family.Family
	Name        string
	Raw         string
	Version     string
	MainVersion string
	// Path is where the driver binary was found on the search path.
	Path string
}

// Located reports whether the driver binary was found on the search path.
func (d Driver) Located() bool {
	return d.Path != ""
}

// Detected reports whether the driver reported a version.
func (d Driver) Detected() bool {
	return d.Version != ""
}

// LookPathFunc resolves an executable name on the search path.
type LookPathFunc func(ctx context.Context, name string) (string, error)

// Detector builds descriptors by querying the live system.
type Detector struct {
	Shell    shell.Runner
	LookPath LookPathFunc
}

// NewDetector returns a Detector backed by the registered shell and exec drivers.
func NewDetector() *Detector {
	return &Detector{
		Shell:    shell.Gateway{},
		LookPath: execdriver.Which,
	}
}

// Browser queries the browser executable's product version.
func (d *Detector) Browser(ctx context.Context, f family.Family) Browser {
	raw, err := d.Shell.Run(ctx, shell.PowerShell, BrowserVersionCommand(f))
	if err != nil {
		slog.Debug("browser version query failed", "family", f.ID, "path", f.BrowserPath, "error", err)
		raw = ""
	}
	return Browser{
		Family:      f,
		Raw:         raw,
		Version:     semver.FindVersion(raw),
		MainVersion: semver.FindMainVersion(raw),
	}
}

// Driver locates the driver on the search path and asks it for its version.
// When the lookup fails, cmd's where is consulted. The version is not queried
// when the driver cannot be located.
func (d *Detector) Driver(ctx context.Context, f family.Family) Driver {
	out := Driver{Family: f, Name: f.DriverName}

	path, err := d.LookPath(ctx, f.DriverName)
	if err != nil {
		slog.Debug("driver lookup failed, trying where", "driver", f.DriverName, "error", err)
		path, err = d.where(ctx, f.DriverName)
	}
	if err != nil {
		slog.Debug("driver not on search path", "driver", f.DriverName, "error", err)
		return out
	}
	out.Path = strings.TrimSpace(path)

	raw, err := d.Shell.Run(ctx, shell.PowerShell, DriverVersionCommand(out.Path))
	if err != nil {
		slog.Debug("driver version query failed", "driver", f.DriverName, "path", out.Path, "error", err)
		return out
	}
	out.Raw = raw
	out.Version = semver.FindVersion(raw)
	out.MainVersion = semver.FindMainVersion(raw)
	return out
}

// where returns the first match printed by cmd's where.
func (d *Detector) where(ctx context.Context, name string) (string, error) {
	out, err := d.Shell.Run(ctx, shell.Cmd, "where "+name)
	if err != nil {
		return "", err
	}
	for _, line := range strings.Split(out, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			return line, nil
		}
	}
	return "", fmt.Errorf("where printed nothing for %s", name)
}

// BrowserVersionCommand is the PowerShell expression printing the browser's product version.
func BrowserVersionCommand(f family.Family) string {
	return fmt.Sprintf("(Get-Item %s).VersionInfo.ProductVersion", quote(f.BrowserPath))
}

// DriverVersionCommand is the PowerShell expression running the driver with --version.
func DriverVersionCommand(path string) string {
	return fmt.Sprintf("& %s --version", quote(path))
}

// quote renders s as a PowerShell single-quoted literal.
func quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
