package domain_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/aqtcache/internal/core/domain"
)

func TestNewEntry_Snapshots(t *testing.T) {
	resp := &http.Response{StatusCode: http.StatusOK, Header: http.Header{"Content-Type": {"text/css"}}}
	body := []byte("body{}")
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	e := domain.NewEntry("https://journal.test/app.css", "aqt-static-v1", resp, body, now)

	body[0] = 'X'
	resp.Header.Set("Content-Type", "text/plain")

	assert.Equal(t, []byte("body{}"), e.Body)
	assert.Equal(t, "text/css", e.Header.Get("Content-Type"))
	assert.Equal(t, domain.BodyDigest([]byte("body{}")), e.Digest)
	assert.Equal(t, now, e.StoredAt)
	assert.Equal(t, "aqt-static-v1", e.Partition)
}

func TestEntry_ResponseIndependent(t *testing.T) {
	e := &domain.Entry{Key: "k", Status: http.StatusOK, Body: []byte("hello")}
	req := httptest.NewRequest(http.MethodGet, "https://journal.test/", nil)

	first := e.Response(req)
	second := e.Response(req)

	b1, err := io.ReadAll(first.Body)
	require.NoError(t, err)
	b2, err := io.ReadAll(second.Body)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(b1))
	assert.Equal(t, "hello", string(b2))

	first.Header.Set("X-Test", "1")
	assert.Empty(t, second.Header.Get("X-Test"))
	assert.Nil(t, e.Header)
	assert.Equal(t, int64(5), first.ContentLength)
	assert.Same(t, req, first.Request)
}

func TestRequestKey_DropsFragment(t *testing.T) {
	req, err := http.NewRequest(http.MethodGet, "https://journal.test/trades?id=1#notes", nil)
	require.NoError(t, err)
	assert.Equal(t, "https://journal.test/trades?id=1", domain.RequestKey(req))
}

func TestCacheable(t *testing.T) {
	assert.True(t, domain.Cacheable(&http.Response{StatusCode: http.StatusOK}))
	assert.False(t, domain.Cacheable(&http.Response{StatusCode: http.StatusNoContent}))
	assert.False(t, domain.Cacheable(&http.Response{StatusCode: http.StatusNotFound}))
	assert.False(t, domain.Cacheable(&http.Response{}))
	assert.False(t, domain.Cacheable(nil))
}

func TestOfflineResponse(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "https://journal.test/api/trades", nil)
	resp := domain.OfflineResponse(req)

	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Equal(t, "503 Service Unavailable", resp.Status)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, domain.OfflineBody, string(body))
}
