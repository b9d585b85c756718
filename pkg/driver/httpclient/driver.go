package httpclient

import (
	"context"
	"net/http"

	"driversync/pkg/driver"
	"driversync/pkg/logging"
)

// Driver provides the HTTP client used for catalog pages and archive downloads.
type Driver interface {
	// Client returns a configured HTTP client with proper certificate handling
	Client() *http.Client
}

// Client returns the client of the active driver wrapped with request logging.
func Client(ctx context.Context) (*http.Client, error) {
	d, err := driver.Get[Driver](ctx)
	if err != nil {
		return nil, err
	}
	return WithLogging(d).Client(), nil
}

// WithLogging wraps a Driver so that every HTTP request logs the URL at Debug level.
func WithLogging(d Driver) Driver {
	return &loggingDriver{inner: d}
}

type loggingDriver struct {
	inner Driver
}

func (d *loggingDriver) Client() *http.Client {
	c := d.inner.Client()
	base := c.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	clone := *c
	clone.Transport = &loggingTransport{base: base}
	return &clone
}

type loggingTransport struct {
	base http.RoundTripper
}

func (t *loggingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	logger := logging.GetLogger(req.Context())
	logger.Debug("http request", "method", req.Method, "url", req.URL.String())
	resp, err := t.base.RoundTrip(req)
	if err != nil {
		logger.Debug("http request failed", "url", req.URL.String(), "error", err)
		return nil, err
	}
	logger.Debug("http response", "url", req.URL.String(), "status", resp.StatusCode)
	return resp, nil
}
