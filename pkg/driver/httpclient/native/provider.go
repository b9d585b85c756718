package native

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"log/slog"
	"net"
	"net/http"
	"os"
	"sync"
	"time"

	"driversync/pkg/driver"
	httpclientdriver "driversync/pkg/driver/httpclient"
	"driversync/pkg/version"
)

func init() {
	driver.Register[httpclientdriver.Driver](&Provider{})
}

const (
	dialTimeout         = 30 * time.Second
	tlsHandshakeTimeout = 10 * time.Second
)

type Provider struct{}

func (p *Provider) ID() string         { return "httpclient_native" }
func (p *Provider) Name() string       { return "Native HTTP Client" }
func (p *Provider) DefaultWeight() int { return driver.DefaultWeight }

func (p *Provider) CheckCompatibility(ctx context.Context) error {
	// Always compatible
	return nil
}

func (p *Provider) New(ctx context.Context) (httpclientdriver.Driver, error) {
	return &Driver{}, nil
}

type Driver struct {
	once   sync.Once
	client *http.Client
}

func (d *Driver) Client() *http.Client {
	d.once.Do(func() {
		dialer := &net.Dialer{
			Timeout:   dialTimeout,
			KeepAlive: 30 * time.Second,
		}

		d.client = &http.Client{
			Transport: &userAgentTransport{
				base: &http.Transport{
					Proxy:       http.ProxyFromEnvironment,
					DialContext: dialer.DialContext,
					TLSClientConfig: &tls.Config{
						RootCAs: loadSystemCerts(),
					},
					ForceAttemptHTTP2:     true,
					MaxIdleConns:          10,
					IdleConnTimeout:       90 * time.Second,
					TLSHandshakeTimeout:   tlsHandshakeTimeout,
					ExpectContinueTimeout: 1 * time.Second,
				},
			},
			// No client timeout: request deadlines come from the caller's context.
		}
	})
	return d.client
}

type userAgentTransport struct {
	base http.RoundTripper
}

func (t *userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Header.Get("User-Agent") == "" {
		req = req.Clone(req.Context())
		req.Header.Set("User-Agent", "driversync/"+version.Version())
	}
	return t.base.RoundTrip(req)
}

// loadSystemCerts returns the system pool, or a pool built from SSL_CERT_FILE when the
// system pool is unavailable.
func loadSystemCerts() *x509.CertPool {
	if pool, err := x509.SystemCertPool(); err == nil && pool != nil {
		return pool
	}

	pool := x509.NewCertPool()
	if certFile := os.Getenv("SSL_CERT_FILE"); certFile != "" {
		if certs, err := os.ReadFile(certFile); err == nil && pool.AppendCertsFromPEM(certs) {
			return pool
		}
	}
	slog.Warn("could not load system CA certificates")
	return pool
}
