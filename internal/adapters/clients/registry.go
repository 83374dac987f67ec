// Package clients tracks the pages controlled by the cache controller.
package clients

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/simplelru"
	"go.trai.ch/aqtcache/internal/core/domain"
	"go.trai.ch/aqtcache/internal/core/ports"
	"go.trai.ch/zerr"
)

// DefaultMaxClients bounds how many pages a registry tracks.
const DefaultMaxClients = 256

var _ ports.Clients = (*Registry)(nil)

// Registry is an in-memory ports.Clients. A page becomes a client the first
// time it is observed; the most recently observed or focused client has focus.
// Past the size bound the least recently seen client is forgotten.
type Registry struct {
	mu      sync.Mutex
	clients *simplelru.LRU[string, *domain.Client]
	focused string
	// controller is the version that claimed clients; newly observed pages
	// are controlled by it.
	controller string
}

// Option configures a Registry.
type Option func(*options)

type options struct {
	maxClients int
}

// WithMaxClients sets the size bound. Values below one keep the default.
func WithMaxClients(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.maxClients = n
		}
	}
}

// NewRegistry creates an empty registry.
func NewRegistry(opts ...Option) *Registry {
	o := options{maxClients: DefaultMaxClients}
	for _, opt := range opts {
		opt(&o)
	}

	r := &Registry{}
	// NewLRU only fails for a non-positive size.
	r.clients, _ = simplelru.NewLRU[string, *domain.Client](o.maxClients, r.evicted)
	return r
}

// evicted runs for every removed client, whether evicted or forgotten.
// Callers hold r.mu.
func (r *Registry) evicted(id string, _ *domain.Client) {
	if r.focused == id {
		r.focused = ""
	}
}

// Observe records that the page id is open at url. An empty id allocates one.
func (r *Registry) Observe(_ context.Context, id, url string) domain.Client {
	r.mu.Lock()
	defer r.mu.Unlock()

	if id == "" {
		id = uuid.NewString()
	}
	c, ok := r.clients.Get(id)
	if !ok {
		c = &domain.Client{ID: id, Controller: r.controller}
		r.clients.Add(id, c)
	}
	c.URL = url
	r.focused = id
	return r.snapshot(c)
}

// MatchAll returns every known client, least recently seen first.
func (r *Registry) MatchAll(_ context.Context) []domain.Client {
	r.mu.Lock()
	defer r.mu.Unlock()

	values := r.clients.Values()
	out := make([]domain.Client, 0, len(values))
	for _, c := range values {
		out = append(out, r.snapshot(c))
	}
	return out
}

// Claim makes version the controller of every known client.
func (r *Registry) Claim(ctx context.Context, version string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.controller = version
	for _, c := range r.clients.Values() {
		c.Controller = version
	}
	return nil
}

// Focus gives focus to the client with the given id.
func (r *Registry) Focus(_ context.Context, id string) (domain.Client, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.clients.Get(id)
	if !ok {
		return domain.Client{}, zerr.With(domain.ErrClientNotFound, "id", id)
	}
	r.focused = id
	return r.snapshot(c), nil
}

// OpenWindow registers a new focused client at url.
func (r *Registry) OpenWindow(ctx context.Context, url string) (domain.Client, error) {
	if err := ctx.Err(); err != nil {
		return domain.Client{}, err
	}
	if strings.TrimSpace(url) == "" {
		url = domain.DefaultNotificationURL
	}
	return r.Observe(ctx, "", url), nil
}

// Forget removes a client, as when its page is closed.
func (r *Registry) Forget(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.clients.Remove(id) {
		return zerr.With(domain.ErrClientNotFound, "id", id)
	}
	return nil
}

func (r *Registry) snapshot(c *domain.Client) domain.Client {
	out := *c
	out.Focused = c.ID == r.focused
	return out
}
