// File: internal/netutil/httpclient_test.go
package netutil

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewClient_Defaults(t *testing.T) {
	client := NewClient(nil)
	require.NotNil(t, client)
	require.NotNil(t, client.Client)

	assert.Equal(t, DefaultRequestTimeout, client.Timeout)

	transport, ok := client.Transport.(*http.Transport)
	require.True(t, ok)
	assert.Equal(t, DefaultMaxIdleConnsPerHost, transport.MaxIdleConnsPerHost)
	assert.True(t, transport.ForceAttemptHTTP2)
	require.NotNil(t, transport.TLSClientConfig)
	assert.False(t, transport.TLSClientConfig.InsecureSkipVerify)
	assert.GreaterOrEqual(t, transport.TLSClientConfig.MinVersion, uint16(0x0303))
}

func TestNewClient_FollowsRedirectsByDefault(t *testing.T) {
	final := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "landed")
	}))
	defer final.Close()

	redirecting := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, final.URL, http.StatusMovedPermanently)
	}))
	defer redirecting.Close()

	client := NewClient(&ClientConfig{
		RequestTimeout:  5 * time.Second,
		FollowRedirects: true,
		Logger:          zap.NewNop(),
	})

	resp, err := client.Get(redirecting.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "landed", string(body))
}

func TestNewClient_RedirectOptOut(t *testing.T) {
	redirecting := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "http://example.invalid/", http.StatusFound)
	}))
	defer redirecting.Close()

	client := NewClient(&ClientConfig{
		RequestTimeout:  5 * time.Second,
		FollowRedirects: false,
		Logger:          zap.NewNop(),
	})

	resp, err := client.Get(redirecting.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusFound, resp.StatusCode)
}

func TestConfigureTLS_InsecureOverride(t *testing.T) {
	cfg := NewDefaultClientConfig()
	cfg.IgnoreTLSErrors = true

	tlsConfig := configureTLS(cfg)
	require.NotNil(t, tlsConfig)
	assert.True(t, tlsConfig.InsecureSkipVerify)
}
