package fetch_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/aqtcache/internal/adapters/fetch"
)

func TestFetcher_RewritesOriginToUpstream(t *testing.T) {
	t.Parallel()

	var gotPath, gotForwardedHost, gotConnection string
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.RequestURI()
		gotForwardedHost = r.Header.Get("X-Forwarded-Host")
		gotConnection = r.Header.Get("Proxy-Connection")
		_, _ = io.WriteString(w, "trades")
	}))
	t.Cleanup(upstream.Close)

	origin, err := url.Parse("https://journal.test")
	require.NoError(t, err)
	upstreamURL, err := url.Parse(upstream.URL + "/app")
	require.NoError(t, err)

	f := fetch.New(fetch.WithUpstream(origin, upstreamURL))

	req := httptest.NewRequest(http.MethodGet, "https://journal.test/api/trades?page=2", nil)
	req.Header.Set("Proxy-Connection", "keep-alive")
	resp, err := f.Fetch(context.Background(), req)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "trades", string(body))
	assert.Equal(t, "/app/api/trades?page=2", gotPath)
	assert.Equal(t, "journal.test", gotForwardedHost)
	assert.Empty(t, gotConnection)
}

func TestFetcher_DoesNotFollowRedirects(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/login", http.StatusFound)
	}))
	t.Cleanup(srv.Close)

	req := httptest.NewRequest(http.MethodGet, srv.URL+"/", nil)
	resp, err := fetch.New().Fetch(context.Background(), req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/login", resp.Header.Get("Location"))
}

func TestFetcher_NetworkError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.NotFoundHandler())
	addr := srv.URL
	srv.Close()

	req := httptest.NewRequest(http.MethodGet, addr+"/api/trades", nil)
	resp, err := fetch.New().Fetch(context.Background(), req)
	if resp != nil {
		_ = resp.Body.Close()
	}
	require.Error(t, err)
}
