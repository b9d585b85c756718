package subject

import (
	"context"
	"fmt"
	"testing"

	"driversync/pkg/api"
	"driversync/pkg/driver/shell"
	"driversync/pkg/family"

	"github.com/stretchr/testify/assert"
)

type scriptedShell map[string]string

func (s scriptedShell) Run(ctx context.Context, kind shell.Kind, script string) (string, error) {
	out, ok := s[string(kind)+"> "+script]
	if !ok {
		return "", fmt.Errorf("%w: %s", shell.ErrExit, script)
	}
	return out, nil
}

func lookPathAt(paths map[string]string) LookPathFunc {
	return func(ctx context.Context, name string) (string, error) {
		if p, ok := paths[name]; ok {
			return p, nil
		}
		return "", fmt.Errorf("%w: %s", api.ErrBinaryNotFound, name)
	}
}

func TestBrowserDetected(t *testing.T) {
	d := &Detector{
		Shell: scriptedShell{
			`powershell> (Get-Item 'C:\Program Files\Google\Chrome\Application\chrome.exe').VersionInfo.ProductVersion`: "124.0.6367.91",
		},
	}

	b := d.Browser(context.Background(), family.Chrome)
	assert.True(t, b.Detected())
	assert.Equal(t, "124.0.6367.91", b.Version)
	assert.Equal(t, "124", b.MainVersion)
}

func TestBrowserNotInstalled(t *testing.T) {
	d := &Detector{Shell: scriptedShell{}}

	b := d.Browser(context.Background(), family.Edge)
	assert.False(t, b.Detected())
	assert.Empty(t, b.Version)
}

func TestDriverDetected(t *testing.T) {
	path := `C:\tools\chromedriver.exe`
	d := &Detector{
		Shell: scriptedShell{
			`powershell> & 'C:\tools\chromedriver.exe' --version`: "ChromeDriver 124.0.6367.60 (8771130bd84f76d855ae42fbe02752b03e352f17-refs/branch-heads/6367@{#798})",
		},
		LookPath: lookPathAt(map[string]string{"chromedriver": path + "\r\n"}),
	}

	drv := d.Driver(context.Background(), family.Chrome)
	assert.True(t, drv.Located())
	assert.True(t, drv.Detected())
	assert.Equal(t, "chromedriver", drv.Name)
	assert.Equal(t, path, drv.Path)
	assert.Equal(t, "124.0.6367.60", drv.Version)
	assert.Equal(t, "124", drv.MainVersion)
}

func TestDriverNotOnPath(t *testing.T) {
	var scripts []string
	d := &Detector{
		Shell: shellFunc(func(ctx context.Context, kind shell.Kind, script string) (string, error) {
			scripts = append(scripts, string(kind)+"> "+script)
			return "", fmt.Errorf("%w: INFO: Could not find files for the given pattern(s).", shell.ErrExit)
		}),
		LookPath: lookPathAt(nil),
	}

	drv := d.Driver(context.Background(), family.Chrome)
	assert.False(t, drv.Located())
	assert.False(t, drv.Detected())
	assert.Equal(t, []string{"cmd> where chromedriver"}, scripts)
}

func TestDriverFoundByWhere(t *testing.T) {
	d := &Detector{
		Shell: scriptedShell{
			"cmd> where msedgedriver": "C:\\WebDriver\\msedgedriver.exe\r\nC:\\Old\\msedgedriver.exe",
			`powershell> & 'C:\WebDriver\msedgedriver.exe' --version`: "Microsoft Edge WebDriver 124.0.2478.80 (2a4e5e8b0c0c)",
		},
		LookPath: lookPathAt(nil),
	}

	drv := d.Driver(context.Background(), family.Edge)
	assert.Equal(t, `C:\WebDriver\msedgedriver.exe`, drv.Path)
	assert.Equal(t, "124.0.2478.80", drv.Version)
}

func TestQuoteEscapesSingleQuotes(t *testing.T) {
	assert.Equal(t, `& 'C:\Users\o''brien\chromedriver.exe' --version`, DriverVersionCommand(`C:\Users\o'brien\chromedriver.exe`))
}

type shellFunc func(ctx context.Context, kind shell.Kind, script string) (string, error)

func (f shellFunc) Run(ctx context.Context, kind shell.Kind, script string) (string, error) {
	return f(ctx, kind, script)
}
