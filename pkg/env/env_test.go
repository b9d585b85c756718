package env

import (
	"os"
	"path/filepath"
	"testing"
)

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}
	t.Setenv("DRIVERSYNC_TEST_DIR", "/opt/drivers")

	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"~", home},
		{"~/work", filepath.Join(home, "work")},
		{"$DRIVERSYNC_TEST_DIR/bin", "/opt/drivers/bin"},
		{"${DRIVERSYNC_TEST_DIR}/bin", "/opt/drivers/bin"},
		{"%DRIVERSYNC_TEST_DIR%/bin", "/opt/drivers/bin"},
		{"%DRIVERSYNC_UNSET_VAR%/bin", "%DRIVERSYNC_UNSET_VAR%/bin"},
		{`C:\Program Files (x86)\Microsoft\Edge\Application\msedge.exe`, `C:\Program Files (x86)\Microsoft\Edge\Application\msedge.exe`},
	}
	for _, tt := range tests {
		if got := ExpandPath(tt.in); got != tt.want {
			t.Errorf("ExpandPath(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
