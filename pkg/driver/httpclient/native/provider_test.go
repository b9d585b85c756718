package native

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientTransportLimits(t *testing.T) {
	assert.Equal(t, 30*time.Second, dialTimeout)
	assert.Equal(t, 10*time.Second, tlsHandshakeTimeout)

	c := (&Driver{}).Client()
	assert.Zero(t, c.Timeout)

	ua, ok := c.Transport.(*userAgentTransport)
	require.True(t, ok)
	base, ok := ua.base.(*http.Transport)
	require.True(t, ok)
	assert.Equal(t, tlsHandshakeTimeout, base.TLSHandshakeTimeout)
}

func TestClientSetsUserAgent(t *testing.T) {
	var got string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("User-Agent")
	}))
	t.Cleanup(srv.Close)

	resp, err := (&Driver{}).Client().Get(srv.URL)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Contains(t, got, "driversync/")
}
