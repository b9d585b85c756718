package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"regexp"
	"strings"
	"time"

	"driversync/pkg/family"
)

// ErrNotFound folds every resolution failure: transport errors, non-2xx
// responses and catalogs without a matching URL.
var ErrNotFound = errors.New("get url failed")

// DefaultTimeout bounds a single catalog request.
const DefaultTimeout = 30 * time.Second

// maxPageSize caps a catalog page; larger pages are rejected.
var maxPageSize int64 = 16 << 20

// Resolver finds driver download URLs in a family's remote catalog.
type Resolver struct {
	client  *http.Client
	timeout time.Duration
}

// NewResolver returns a Resolver using client. A zero timeout means DefaultTimeout.
func NewResolver(client *http.Client, timeout time.Duration) *Resolver {
	if client == nil {
		client = http.DefaultClient
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Resolver{client: client, timeout: timeout}
}

// Resolve returns the first download URL in the catalog that satisfies target.
// Target is a main version for status-page families and an exact version for
// template families.
func (r *Resolver) Resolve(ctx context.Context, f family.Family, target string) (string, error) {
	if target == "" {
		return "", fmt.Errorf("%w: %s: empty version", ErrNotFound, f.DriverName)
	}

	body, err := r.fetch(ctx, f.CatalogURL)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrNotFound, f.DriverName, err)
	}

	var url string
	switch f.Strategy {
	case family.StatusPage:
		url, err = FirstHealthyMatch(body, StatusPagePattern(f, target))
		if err != nil {
			return "", fmt.Errorf("%w: %s: %v", ErrNotFound, f.DriverName, err)
		}
	case family.Template:
		url = TemplatePattern(f, target).FindString(body)
	default:
		return "", fmt.Errorf("%w: %s: unsupported strategy %s", ErrNotFound, f.DriverName, f.Strategy)
	}

	if url == "" {
		return "", fmt.Errorf("%w: %s: no build for %s in %s", ErrNotFound, f.DriverName, target, f.CatalogURL)
	}
	slog.Debug("catalog resolved", "family", f.ID, "target", target, "url", url)
	return url, nil
}

func (r *Resolver) fetch(ctx context.Context, url string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	resp, err := r.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("catalog returned %s", resp.Status)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxPageSize+1))
	if err != nil {
		return "", fmt.Errorf("failed to read catalog: %w", err)
	}
	if int64(len(data)) > maxPageSize {
		return "", fmt.Errorf("catalog page exceeds %d bytes", maxPageSize)
	}
	return string(data), nil
}

// StatusPagePattern matches <base>/<main>.X.Y.Z/win64/<artifact>.
func StatusPagePattern(f family.Family, mainVersion string) *regexp.Regexp {
	return regexp.MustCompile(
		regexp.QuoteMeta(f.DownloadBase) + "/" +
			regexp.QuoteMeta(mainVersion) + `\.\d+\.\d+\.\d+/win64/` +
			regexp.QuoteMeta(f.Artifact),
	)
}

// TemplatePattern matches <base>/<version>/<artifact>.
func TemplatePattern(f family.Family, version string) *regexp.Regexp {
	return regexp.MustCompile(
		regexp.QuoteMeta(strings.TrimRight(f.DownloadBase, "/")) + "/" +
			regexp.QuoteMeta(version) + "/" +
			regexp.QuoteMeta(f.Artifact),
	)
}
