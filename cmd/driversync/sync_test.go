package main

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"driversync/pkg/config"
	"driversync/pkg/family"
	"driversync/pkg/updater"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeReconciler struct {
	ran  []string
	fail map[string]error
}

func (r *fakeReconciler) Run(ctx context.Context, f family.Family) (updater.Result, error) {
	r.ran = append(r.ran, f.ID)
	if err := r.fail[f.ID]; err != nil {
		return updater.Result{}, err
	}
	return updater.Result{Outcome: updater.OutcomeUpdated, Message: "Finish"}, nil
}

func withReconciler(t *testing.T, r reconciler) *syncOptions {
	t.Helper()
	var got syncOptions
	saved := newReconciler
	newReconciler = func(ctx context.Context, cfg config.Config, opts syncOptions, progress io.Writer) reconciler {
		got = opts
		return r
	}
	t.Cleanup(func() { newReconciler = saved })
	return &got
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cfgPath := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(cfgPath, nil, 0644))

	var out bytes.Buffer
	cmd := newRootCommand()
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(append([]string{"--config", cfgPath}, args...))
	err := cmd.ExecuteContext(context.Background())
	if globals.closeLog != nil {
		require.NoError(t, globals.closeLog())
		globals.closeLog = nil
	}
	return out.String(), err
}

func TestSyncRunsEveryFamilyInOrder(t *testing.T) {
	r := &fakeReconciler{fail: map[string]error{
		"edge": &updater.Error{Code: updater.NotDetected, Message: "Edge version not found"},
	}}
	withReconciler(t, r)
	workDir := t.TempDir()

	out, err := execute(t, "--work-dir", workDir, "sync", "edge", "chrome")
	assert.ErrorIs(t, err, errReported)
	assert.Equal(t, []string{"edge", "chrome"}, r.ran)
	assert.Equal(t, "Error: Edge version not found\nSuccess: Finish\n", out)
	assert.NoFileExists(t, filepath.Join(workDir, lockName))
}

func TestSyncSuccess(t *testing.T) {
	r := &fakeReconciler{}
	opts := withReconciler(t, r)

	out, err := execute(t, "--work-dir", t.TempDir(), "sync", "chrome", "--force", "--sha256", "abc")
	require.NoError(t, err)
	assert.Equal(t, "Success: Finish\n", out)
	assert.True(t, opts.force)
	assert.Equal(t, "abc", opts.sha256)
}

func TestRootWithoutSubcommandSyncsAll(t *testing.T) {
	r := &fakeReconciler{}
	withReconciler(t, r)

	_, err := execute(t, "--work-dir", t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, family.IDs(), r.ran)
}

func TestSyncRejectsHashForSeveralFamilies(t *testing.T) {
	r := &fakeReconciler{}
	withReconciler(t, r)

	_, err := execute(t, "--work-dir", t.TempDir(), "sync", "--sha256", "abc")
	assert.ErrorContains(t, err, "exactly one family")
	assert.Empty(t, r.ran)
}

func TestSyncUnknownFamily(t *testing.T) {
	r := &fakeReconciler{}
	withReconciler(t, r)

	_, err := execute(t, "--work-dir", t.TempDir(), "sync", "firefox")
	assert.ErrorContains(t, err, "firefox")
	assert.Empty(t, r.ran)
}

func TestSyncFailsWhenLocked(t *testing.T) {
	r := &fakeReconciler{}
	withReconciler(t, r)
	workDir := t.TempDir()

	release, err := acquireLock(context.Background(), workDir)
	require.NoError(t, err)
	defer release()

	_, err = execute(t, "--work-dir", workDir, "sync", "chrome")
	assert.ErrorIs(t, err, errLocked)
	assert.Empty(t, r.ran)
}

func TestReconcileStopsOnCancel(t *testing.T) {
	r := &fakeReconciler{}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out bytes.Buffer
	failed := reconcile(ctx, r, []family.Family{family.Chrome}, &out)
	assert.Equal(t, 1, failed)
	assert.Empty(t, r.ran)
	assert.Contains(t, out.String(), "Error: Chrome skipped")
}

func TestFamiliesCommand(t *testing.T) {
	out, err := execute(t, "families")
	require.NoError(t, err)
	assert.Contains(t, out, "chromedriver")
	assert.Contains(t, out, "msedgedriver")
	assert.Contains(t, out, "status-page")
}
