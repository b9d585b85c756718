package shell_test

import (
	"context"
	"testing"

	"driversync/pkg/driver"
	execdriver "driversync/pkg/driver/exec"
	_ "driversync/pkg/driver/exec/native"
	"driversync/pkg/driver/shell"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const posix shell.Kind = "posix_test"

type posixProvider struct{}

func (posixProvider) ID() string         { return shell.ProviderID(posix) }
func (posixProvider) Name() string       { return "POSIX sh (test)" }
func (posixProvider) DefaultWeight() int { return driver.DefaultWeight }

func (posixProvider) CheckCompatibility(ctx context.Context) error {
	_, err := execdriver.Which(ctx, "sh")
	return err
}

func (posixProvider) New(ctx context.Context) (shell.Driver, error) {
	return posixDriver{}, nil
}

type posixDriver struct{}

func (posixDriver) Kind() shell.Kind { return posix }

func (posixDriver) Path(ctx context.Context) (string, error) {
	return execdriver.Which(ctx, "sh")
}

func (posixDriver) Args(script string) []string {
	return []string{"-c", script}
}

func init() {
	driver.Register[shell.Driver](posixProvider{})
}

func requireSh(t *testing.T) {
	t.Helper()
	if _, err := execdriver.Which(context.Background(), "sh"); err != nil {
		t.Skip("sh not available")
	}
}

func TestRunTrimsOutput(t *testing.T) {
	requireSh(t)
	out, err := shell.Gateway{}.Run(context.Background(), posix, "printf '  124.0.6367.91\\n\\n'")
	require.NoError(t, err)
	assert.Equal(t, "124.0.6367.91", out)
}

func TestRunNonZeroExit(t *testing.T) {
	requireSh(t)
	_, err := shell.Run(context.Background(), posix, "echo boom >&2; exit 3")
	require.Error(t, err)
	assert.ErrorIs(t, err, shell.ErrExit)
	assert.Contains(t, err.Error(), "boom")
}

func TestRunRejectsInvalidUTF8(t *testing.T) {
	requireSh(t)
	_, err := shell.Run(context.Background(), posix, "printf '\\377\\376'")
	assert.ErrorIs(t, err, shell.ErrExit)
}

func TestRunUnknownKind(t *testing.T) {
	_, err := shell.Run(context.Background(), shell.Kind("nope"), "true")
	assert.ErrorIs(t, err, shell.ErrStart)
}
