package worker_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.trai.ch/aqtcache/internal/adapters/memstore"
	"go.trai.ch/aqtcache/internal/core/domain"
	"go.trai.ch/aqtcache/internal/engine/worker"
)

const originURL = "https://app.test"

var errUnreachable = errors.New("network unreachable")

type resource struct {
	status int
	body   string
}

// fakeOrigin serves canned resources by request URI and counts every fetch.
type fakeOrigin struct {
	mu        sync.Mutex
	resources map[string]resource
	offline   bool
	calls     map[string]int
}

func newFakeOrigin() *fakeOrigin {
	o := &fakeOrigin{
		resources: make(map[string]resource),
		calls:     make(map[string]int),
	}
	for _, p := range domain.DefaultManifest() {
		o.resources[p] = resource{status: http.StatusOK, body: "asset " + p}
	}
	return o
}

func (o *fakeOrigin) Fetch(_ context.Context, req *http.Request) (*http.Response, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	key := req.URL.RequestURI()
	o.calls[key]++
	if o.offline {
		return nil, errUnreachable
	}
	r, ok := o.resources[key]
	if !ok {
		r = resource{status: http.StatusNotFound, body: "not found"}
	}
	return &http.Response{
		StatusCode: r.status,
		Header:     http.Header{"Content-Type": []string{"text/plain"}},
		Body:       io.NopCloser(strings.NewReader(r.body)),
		Request:    req,
	}, nil
}

func (o *fakeOrigin) set(path string, status int, body string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.resources[path] = resource{status: status, body: body}
}

func (o *fakeOrigin) setOffline(offline bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.offline = offline
}

func (o *fakeOrigin) callCount(path string) int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.calls[path]
}

func newGeneration(version string) domain.Generation {
	origin, _ := url.Parse(originURL)
	return domain.Generation{
		Version:        version,
		Origin:         origin,
		Manifest:       domain.DefaultManifest(),
		StaticStrategy: domain.StrategyCacheFirst,
		SkipWaiting:    true,
	}
}

func newDeps(origin *fakeOrigin) (worker.Deps, *memstore.Store) {
	store := memstore.NewStore()
	return worker.Deps{Storage: store, Fetcher: origin}, store
}

// activeController installs and activates a controller for gen.
func activeController(t *testing.T, gen domain.Generation, deps worker.Deps) *worker.Controller {
	t.Helper()
	c := worker.NewController(gen, deps)
	require.NoError(t, c.Install(context.Background()))
	require.NoError(t, c.Activate(context.Background()))
	return c
}

func get(target string) *http.Request {
	return request(http.MethodGet, target)
}

func request(method, target string) *http.Request {
	req, _ := http.NewRequestWithContext(context.Background(), method, target, nil)
	// Incoming server requests carry origin-form URLs.
	if strings.HasPrefix(target, "/") {
		req.URL = &url.URL{Path: req.URL.Path, RawQuery: req.URL.RawQuery}
	}
	return req
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	require.NotNil(t, resp)
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	return string(data)
}

func cachedBody(t *testing.T, store *memstore.Store, partition, key string) (string, bool) {
	t.Helper()
	ctx := context.Background()
	ok, err := store.Has(ctx, partition)
	require.NoError(t, err)
	if !ok {
		return "", false
	}
	p, err := store.Open(ctx, partition)
	require.NoError(t, err)
	entry, err := p.Match(ctx, key)
	require.NoError(t, err)
	if entry == nil {
		return "", false
	}
	return string(entry.Body), true
}
