package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"driversync/pkg/logging"

	"github.com/shirou/gopsutil/v3/process"
)

const lockName = "driversync.lock"

var errLocked = errors.New("another driversync instance is running")

// acquireLock creates <dir>/driversync.lock holding our PID. A lock left by
// a process that no longer exists is taken over.
func acquireLock(ctx context.Context, dir string) (func() error, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	path := filepath.Join(dir, lockName)

	for attempt := 0; ; attempt++ {
		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
		if err == nil {
			_, werr := fmt.Fprintf(f, "%d\n", os.Getpid())
			if cerr := f.Close(); werr == nil {
				werr = cerr
			}
			if werr != nil {
				os.Remove(path)
				return nil, werr
			}
			return func() error { return os.Remove(path) }, nil
		}
		if !errors.Is(err, os.ErrExist) {
			return nil, err
		}
		if attempt > 0 || !staleLock(ctx, path) {
			return nil, fmt.Errorf("%w (lock file %s)", errLocked, path)
		}
		logging.GetLogger(ctx).Warn("removing stale lock", "path", path)
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
	}
}

// staleLock reports whether the PID recorded in path is no longer running.
// Unreadable locks are treated as held.
func staleLock(ctx context.Context, path string) bool {
	data, err := os.ReadFile(path)
	if err != nil {
		return false
	}
	pid, err := strconv.ParseInt(strings.TrimSpace(string(data)), 10, 32)
	if err != nil || pid <= 0 {
		return false
	}
	exists, err := process.PidExistsWithContext(ctx, int32(pid))
	if err != nil {
		return false
	}
	return !exists
}
