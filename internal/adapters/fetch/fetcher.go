// Package fetch implements the network side of the cache controller.
package fetch

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.trai.ch/aqtcache/internal/core/ports"
)

var _ ports.Fetcher = (*Fetcher)(nil)

// hopHeaders are connection-scoped and must not be forwarded.
var hopHeaders = []string{
	"Connection",
	"Keep-Alive",
	"Proxy-Authenticate",
	"Proxy-Authorization",
	"Proxy-Connection",
	"Te",
	"Trailer",
	"Transfer-Encoding",
	"Upgrade",
}

// Fetcher implements ports.Fetcher with an http.Client.
// Requests for the application origin are sent to the upstream instead,
// so cache keys stay in the origin's URL space.
type Fetcher struct {
	client   *http.Client
	origin   *url.URL
	upstream *url.URL
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithClient replaces the HTTP client.
func WithClient(c *http.Client) Option {
	return func(f *Fetcher) {
		f.client = c
	}
}

// WithUpstream routes origin requests to upstream.
func WithUpstream(origin, upstream *url.URL) Option {
	return func(f *Fetcher) {
		f.origin = origin
		f.upstream = upstream
	}
}

// WithTimeout sets the client timeout. Zero means no timeout.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		f.client.Timeout = d
	}
}

// New creates a Fetcher. Redirects are returned to the caller rather than followed,
// matching what a page would observe.
func New(opts ...Option) *Fetcher {
	f := &Fetcher{
		client: &http.Client{
			CheckRedirect: func(_ *http.Request, _ []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch sends the request upstream.
func (f *Fetcher) Fetch(ctx context.Context, req *http.Request) (*http.Response, error) {
	out := req.Clone(ctx)
	out.RequestURI = ""
	for _, h := range hopHeaders {
		out.Header.Del(h)
	}

	if f.upstream != nil && f.origin != nil && strings.EqualFold(out.URL.Host, f.origin.Host) {
		target := *out.URL
		target.Scheme = f.upstream.Scheme
		target.Host = f.upstream.Host
		if base := strings.TrimSuffix(f.upstream.Path, "/"); base != "" {
			target.Path = base + target.Path
			target.RawPath = ""
		}
		out.URL = &target
		out.Host = f.upstream.Host
		out.Header.Set("X-Forwarded-Host", f.origin.Host)
		out.Header.Set("X-Forwarded-Proto", f.origin.Scheme)
	}

	return f.client.Do(out)
}
