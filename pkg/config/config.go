// Package config loads driversync settings from a TOML file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"driversync/pkg/env"
	"driversync/pkg/family"

	"github.com/BurntSushi/toml"
)

// Duration is a time.Duration written as a string such as "30s" or "10m".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(strings.TrimSpace(string(text)))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// FamilyConfig overrides the built-in settings of one family.
type FamilyConfig struct {
	BrowserPath  string `toml:"browser_path"`
	CatalogURL   string `toml:"catalog_url"`
	DownloadBase string `toml:"download_base"`
}

type Config struct {
	// Families reconciled by a bare sync, in order. Empty means all.
	Families        []string `toml:"families"`
	WorkDir         string   `toml:"work_dir"`
	LogFile         string   `toml:"log_file"`
	LogMaxSizeMB    int      `toml:"log_max_size_mb"`
	LogMaxBackups   int      `toml:"log_max_backups"`
	CatalogTimeout  Duration `toml:"catalog_timeout"`
	DownloadTimeout Duration `toml:"download_timeout"`
	FetchurlServers []string `toml:"fetchurl_servers"`
	// Drivers maps provider IDs to weights; 0 disables a provider.
	Drivers map[string]int          `toml:"drivers"`
	Family  map[string]FamilyConfig `toml:"family"`
}

// Default returns the settings used when no file exists.
func Default() Config {
	return Config{
		WorkDir:         ".",
		LogMaxSizeMB:    10,
		LogMaxBackups:   3,
		CatalogTimeout:  Duration{30 * time.Second},
		DownloadTimeout: Duration{10 * time.Minute},
		Drivers:         map[string]int{},
		Family:          map[string]FamilyConfig{},
	}
}

// DefaultPath is <user config dir>/driversync/config.toml.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "driversync", "config.toml"), nil
}

// Load reads the file at path over the defaults. An empty path means
// DefaultPath, which may be missing; an explicit path must exist.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err != nil {
			return cfg, nil
		}
		path = p
	}

	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if explicit {
			return cfg, fmt.Errorf("config file %s does not exist", path)
		}
		return cfg, nil
	}

	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return cfg, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		return cfg, fmt.Errorf("unknown keys in %s: %s", path, strings.Join(keys, ", "))
	}
	if cfg.Drivers == nil {
		cfg.Drivers = map[string]int{}
	}
	if cfg.Family == nil {
		cfg.Family = map[string]FamilyConfig{}
	}
	cfg.WorkDir = env.ExpandPath(cfg.WorkDir)
	cfg.LogFile = env.ExpandPath(cfg.LogFile)
	for id, fc := range cfg.Family {
		fc.BrowserPath = env.ExpandPath(fc.BrowserPath)
		cfg.Family[id] = fc
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks family names and limits.
func (c Config) Validate() error {
	for _, name := range c.Families {
		if _, err := family.Lookup(name); err != nil {
			return err
		}
	}
	for id := range c.Family {
		if _, err := family.Lookup(id); err != nil {
			return fmt.Errorf("[family.%s]: %w", id, err)
		}
	}
	if c.CatalogTimeout.Duration < 0 || c.DownloadTimeout.Duration < 0 {
		return fmt.Errorf("timeouts must not be negative")
	}
	if c.LogMaxSizeMB < 0 || c.LogMaxBackups < 0 {
		return fmt.Errorf("log rotation limits must not be negative")
	}
	return nil
}

// Lookup resolves a family by name with its configured overrides applied.
func (c Config) Lookup(name string) (family.Family, error) {
	f, err := family.Lookup(name)
	if err != nil {
		return family.Family{}, err
	}
	for id, o := range c.Family {
		if strings.EqualFold(id, f.ID) {
			f = f.With(family.Overrides{
				BrowserPath:  o.BrowserPath,
				CatalogURL:   o.CatalogURL,
				DownloadBase: o.DownloadBase,
			})
		}
	}
	return f, nil
}

// Select resolves names, or the configured families when names is empty, or
// every family when neither is set. Duplicates are dropped, order is kept.
func (c Config) Select(names []string) ([]family.Family, error) {
	if len(names) == 0 {
		names = c.Families
	}
	if len(names) == 0 {
		names = family.IDs()
	}

	var out []family.Family
	seen := map[string]bool{}
	for _, name := range names {
		f, err := c.Lookup(name)
		if err != nil {
			return nil, err
		}
		if seen[f.ID] {
			continue
		}
		seen[f.ID] = true
		out = append(out, f)
	}
	return out, nil
}
