package env

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

var percentVar = regexp.MustCompile(`%([A-Za-z_][A-Za-z0-9_()]*)%`)

// ExpandPath expands a leading ~ to the user's home directory and
// environment variables written as $VAR, ${VAR} or %VAR%. Unset %VAR%
// references are left untouched.
func ExpandPath(path string) string {
	if path == "" {
		return path
	}
	if path == "~" || strings.HasPrefix(path, "~/") || strings.HasPrefix(path, `~\`) {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, path[1:])
		}
	}
	path = percentVar.ReplaceAllStringFunc(path, func(m string) string {
		if v, ok := os.LookupEnv(m[1 : len(m)-1]); ok {
			return v
		}
		return m
	})
	if strings.Contains(path, "$") {
		path = os.ExpandEnv(path)
	}
	return path
}
