package catalog

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"driversync/pkg/family"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const cftBase = "https://storage.googleapis.com/chrome-for-testing-public"

func cftRow(class, version string) string {
	return `<tr class="` + class + `"><th><code>chromedriver</code><th><code>win64</code>` +
		`<td><code>` + cftBase + `/` + version + `/win64/chromedriver-win64.zip</code><td><code>200</code></tr>`
}

func statusPage(rows ...string) string {
	return `<!DOCTYPE html><html><body><table><tbody>` + strings.Join(rows, "\n") + `</tbody></table></body></html>`
}

func serve(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func chromeAt(url string) family.Family {
	return family.Chrome.With(family.Overrides{CatalogURL: url})
}

func TestResolveStatusPageSkipsBrokenRows(t *testing.T) {
	page := statusPage(
		cftRow("status-not-ok", "124.0.6367.201"),
		cftRow("status-ok", "123.0.6312.122"),
		cftRow("status-ok", "124.0.6367.91"),
		cftRow("status-ok", "124.0.6367.78"),
	)
	srv := serve(t, http.StatusOK, page)

	url, err := NewResolver(srv.Client(), time.Second).Resolve(context.Background(), chromeAt(srv.URL), "124")
	require.NoError(t, err)
	assert.Equal(t, cftBase+"/124.0.6367.91/win64/chromedriver-win64.zip", url)
}

func TestResolveStatusPageClassListToken(t *testing.T) {
	page := statusPage(
		cftRow("row status-ok-ish", "124.0.6367.1"),
		cftRow("row  status-ok  highlighted", "124.0.6367.2"),
	)
	srv := serve(t, http.StatusOK, page)

	url, err := NewResolver(srv.Client(), time.Second).Resolve(context.Background(), chromeAt(srv.URL), "124")
	require.NoError(t, err)
	assert.Contains(t, url, "/124.0.6367.2/")
}

func TestResolveStatusPageNoHealthyMatch(t *testing.T) {
	page := statusPage(
		cftRow("status-not-ok", "124.0.6367.91"),
		cftRow("status-ok", "123.0.6312.122"),
	)
	srv := serve(t, http.StatusOK, page)

	_, err := NewResolver(srv.Client(), time.Second).Resolve(context.Background(), chromeAt(srv.URL), "124")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestResolveDoesNotMatchLongerMajor(t *testing.T) {
	srv := serve(t, http.StatusOK, statusPage(cftRow("status-ok", "1240.0.1.2")))

	_, err := NewResolver(srv.Client(), time.Second).Resolve(context.Background(), chromeAt(srv.URL), "124")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestResolveHTTPFailure(t *testing.T) {
	srv := serve(t, http.StatusServiceUnavailable, statusPage(cftRow("status-ok", "124.0.6367.91")))

	_, err := NewResolver(srv.Client(), time.Second).Resolve(context.Background(), chromeAt(srv.URL), "124")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestResolveTransportFailure(t *testing.T) {
	srv := serve(t, http.StatusOK, "")
	url := srv.URL
	srv.Close()

	_, err := NewResolver(nil, time.Second).Resolve(context.Background(), chromeAt(url), "124")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestResolveEmptyTarget(t *testing.T) {
	_, err := NewResolver(nil, 0).Resolve(context.Background(), family.Chrome, "")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestResolveTemplate(t *testing.T) {
	page := `<html><body>
<a href="https://msedgedriver.azureedge.net/124.0.2478.51/edgedriver_arm64.zip">arm64</a>
<a href="https://msedgedriver.azureedge.net/124.0.2478.51/edgedriver_win64.zip">x64</a>
<a href="https://msedgedriver.azureedge.net/124.0.2478.51/edgedriver_win64.zip">x64 again</a>
<a href="https://msedgedriver.azureedge.net/125.0.2535.6/edgedriver_win64.zip">beta</a>
</body></html>`
	srv := serve(t, http.StatusOK, page)
	edge := family.Edge.With(family.Overrides{CatalogURL: srv.URL})
	r := NewResolver(srv.Client(), time.Second)

	url, err := r.Resolve(context.Background(), edge, "124.0.2478.51")
	require.NoError(t, err)
	assert.Equal(t, "https://msedgedriver.azureedge.net/124.0.2478.51/edgedriver_win64.zip", url)

	_, err = r.Resolve(context.Background(), edge, "124.0.2478.80")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestTemplatePatternQuotesVersion(t *testing.T) {
	re := TemplatePattern(family.Edge, "124.0.2478.51")
	assert.False(t, re.MatchString("https://msedgedriver.azureedge.net/124x0x2478x51/edgedriver_win64.zip"))
}

func TestResolveRejectsOversizedPage(t *testing.T) {
	saved := maxPageSize
	maxPageSize = 256
	t.Cleanup(func() { maxPageSize = saved })

	rows := make([]string, 0, 8)
	for range 8 {
		rows = append(rows, cftRow("status-ok", "123.0.6312.122"))
	}
	rows = append(rows, cftRow("status-ok", "124.0.6367.91"))
	page := statusPage(rows...)
	require.Greater(t, int64(len(page)), maxPageSize)
	srv := serve(t, http.StatusOK, page)

	_, err := NewResolver(srv.Client(), time.Second).Resolve(context.Background(), chromeAt(srv.URL), "124")
	require.ErrorIs(t, err, ErrNotFound)
	assert.Contains(t, err.Error(), "exceeds")
}
