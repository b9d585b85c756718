package fetchurl

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"

	"driversync/pkg/driver"
	fetchurldriver "driversync/pkg/driver/fetchurl"
	"driversync/pkg/driver/httpclient"

	"github.com/lucasew/fetchurl"
)

func init() {
	driver.Register[fetchurldriver.Driver](&Provider{})
}

// Servers lists content-addressed mirrors consulted before the origin URL.
// It is filled from configuration before the driver is first built.
var Servers []string

type Provider struct{}

func (p *Provider) ID() string         { return "fetchurl" }
func (p *Provider) Name() string       { return "fetchurl" }
func (p *Provider) DefaultWeight() int { return driver.DefaultWeight }

func (p *Provider) CheckCompatibility(ctx context.Context) error {
	// fetchurl is a pure Go library, always compatible
	return nil
}

func (p *Provider) New(ctx context.Context) (fetchurldriver.Driver, error) {
	var client *http.Client
	if c, err := httpclient.Client(ctx); err == nil {
		client = c
	}
	// If httpclient driver not available, fetchurl will create default client

	return &Driver{
		fetcher: fetchurl.NewFetcher(client, servers()),
	}, nil
}

type Driver struct {
	fetcher *fetchurl.Fetcher
}

func (d *Driver) Fetch(ctx context.Context, opts fetchurldriver.FetchOptions) error {
	if len(opts.URLs) == 0 {
		return fmt.Errorf("no URLs provided")
	}
	if opts.Out == nil {
		return fmt.Errorf("no output writer provided")
	}
	if opts.Hash == "" {
		return fmt.Errorf("no hash provided for %s", opts.URLs[0])
	}

	return d.fetcher.Fetch(ctx, fetchurl.FetchOptions{
		URLs: opts.URLs,
		Algo: opts.Algo,
		Hash: strings.ToLower(opts.Hash),
		Out:  opts.Out,
	})
}

// servers merges configured mirrors with FETCHURL_SERVERS (comma-separated URLs).
func servers() []string {
	out := append([]string(nil), Servers...)
	for _, s := range strings.Split(os.Getenv("FETCHURL_SERVERS"), ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
