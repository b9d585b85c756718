// Package family describes the browser/driver pairs driversync knows how to
// reconcile. The set is closed: every family is declared here.
package family

import (
	"fmt"
	"sort"
	"strings"
)

// Strategy selects how a driver download URL is found in the remote catalog.
type Strategy int

const (
	// StatusPage catalogs list builds in an HTML table whose rows are marked
	// healthy or broken; the URL is looked up by browser main version.
	StatusPage Strategy = iota
	// Template catalogs embed download URLs that contain the exact browser version.
	Template
)

func (s Strategy) String() string {
	switch s {
	case StatusPage:
		return "status-page"
	case Template:
		return "template"
	default:
		return fmt.Sprintf("strategy(%d)", int(s))
	}
}

// Family is one browser and its paired automation driver.
type Family struct {
	ID          string
	DisplayName string
	// DriverName is the driver executable name without extension.
	DriverName string
	// BrowserPath is the browser executable whose product version is queried.
	BrowserPath string
	Strategy    Strategy
	// CatalogURL is the page listing available driver builds.
	CatalogURL string
	// DownloadBase prefixes every download URL in the catalog.
	DownloadBase string
	// Artifact is the archive file name at the end of the download URL.
	Artifact string
	// ExtractedBinary is the driver executable's path inside the extracted archive.
	ExtractedBinary string
	// CleanupPaths are removed from the work directory after install.
	CleanupPaths []string
}

var (
	Chrome = Family{
		ID:              "chrome",
		DisplayName:     "Chrome",
		DriverName:      "chromedriver",
		BrowserPath:     `C:\Program Files\Google\Chrome\Application\chrome.exe`,
		Strategy:        StatusPage,
		CatalogURL:      "https://googlechromelabs.github.io/chrome-for-testing/",
		DownloadBase:    "https://storage.googleapis.com/chrome-for-testing-public",
		Artifact:        "chromedriver-win64.zip",
		ExtractedBinary: "chromedriver-win64/chromedriver.exe",
		CleanupPaths:    []string{"chromedriver-win64"},
	}

	Edge = Family{
		ID:              "edge",
		DisplayName:     "Edge",
		DriverName:      "msedgedriver",
		BrowserPath:     `C:\Program Files (x86)\Microsoft\Edge\Application\msedge.exe`,
		Strategy:        Template,
		CatalogURL:      "https://developer.microsoft.com/en-us/microsoft-edge/tools/webdriver/",
		DownloadBase:    "https://msedgedriver.azureedge.net",
		Artifact:        "edgedriver_win64.zip",
		ExtractedBinary: "msedgedriver.exe",
		CleanupPaths:    []string{"Driver_Notes", "msedgedriver.exe"},
	}
)

var all = map[string]Family{
	Chrome.ID: Chrome,
	Edge.ID:   Edge,
}

// All returns every known family ordered by ID.
func All() []Family {
	out := make([]Family, 0, len(all))
	for _, f := range all {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// IDs returns the IDs of every known family ordered alphabetically.
func IDs() []string {
	var ids []string
	for _, f := range All() {
		ids = append(ids, f.ID)
	}
	return ids
}

// Lookup finds a family by ID or display name, case-insensitively.
func Lookup(name string) (Family, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if f, ok := all[key]; ok {
		return f, nil
	}
	for _, f := range all {
		if strings.EqualFold(f.DisplayName, key) || strings.EqualFold(f.DriverName, key) {
			return f, nil
		}
	}
	return Family{}, fmt.Errorf("unknown browser family %q (known: %s)", name, strings.Join(IDs(), ", "))
}

func (f Family) String() string {
	return f.DisplayName
}

// ArchiveName is the file the downloaded archive is saved as.
func (f Family) ArchiveName() string {
	return f.DriverName + ".zip"
}

// ResolutionTarget picks the version the catalog is searched with: the main
// version for status pages, the exact browser version for templates.
func (f Family) ResolutionTarget(version, mainVersion string) string {
	if f.Strategy == Template {
		return version
	}
	return mainVersion
}

// Overrides replaces per-host settings of a family. Empty fields keep the default.
type Overrides struct {
	BrowserPath  string
	CatalogURL   string
	DownloadBase string
}

// With returns a copy of f with the non-empty overrides applied.
func (f Family) With(o Overrides) Family {
	if o.BrowserPath != "" {
		f.BrowserPath = o.BrowserPath
	}
	if o.CatalogURL != "" {
		f.CatalogURL = o.CatalogURL
	}
	if o.DownloadBase != "" {
		f.DownloadBase = strings.TrimRight(o.DownloadBase, "/")
	}
	f.CleanupPaths = append([]string(nil), f.CleanupPaths...)
	return f
}
