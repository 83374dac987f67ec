package worker

import (
	"bytes"
	"context"
	"io"
	"net/http"

	"go.trai.ch/aqtcache/internal/core/domain"
	"go.trai.ch/aqtcache/internal/core/ports"
	"go.trai.ch/zerr"
)

// Intercept decides how a request is answered.
//
// Cross-origin requests and non-GET requests outside the API are left to the
// host (Handled is false). API requests of every method are served
// network-first, but only GET responses are read from or written to the
// cache. Everything else uses the generation's static strategy. Network and cache failures are recovered
// locally, so the only errors returned concern the controller itself.
func (c *Controller) Intercept(ctx context.Context, req *http.Request) (domain.Result, error) {
	if err := c.ready(ctx); err != nil {
		return domain.Result{}, err
	}

	if !c.gen.SameOrigin(req.URL) {
		return domain.Result{Strategy: domain.StrategyBypass}, nil
	}
	api := domain.IsAPIPath(req.URL.Path)
	if req.Method != http.MethodGet && !api {
		return domain.Result{Strategy: domain.StrategyBypass}, nil
	}

	req = c.absolute(ctx, req)
	key := domain.RequestKey(req)

	strategy := c.gen.StaticStrategy
	if api {
		strategy = domain.StrategyNetworkFirst
	} else if strategy == "" {
		strategy = domain.StrategyCacheFirst
	}

	ctx, span := c.deps.Tracer.Start(ctx, "intercept",
		ports.WithAttribute("url", key),
		ports.WithAttribute("strategy", strategy.String()),
	)
	defer span.End()

	var (
		resp   *http.Response
		source domain.Source
	)
	switch strategy {
	case domain.StrategyNetworkFirst:
		resp, source = c.networkFirst(ctx, req, key)
	case domain.StrategyStaleWhileRevalidate:
		resp, source = c.staleWhileRevalidate(ctx, req, key)
	default:
		resp, source = c.cacheFirst(ctx, req, key)
	}

	span.SetAttribute("source", string(source))
	c.deps.Metrics.ObserveServe(strategy, source)
	return domain.Result{
		Response: resp,
		Handled:  true,
		Strategy: strategy,
		Source:   source,
	}, nil
}

// ready checks that the controller may serve events, waiting out an
// activation in progress.
func (c *Controller) ready(ctx context.Context) error {
	switch c.State() {
	case domain.StateActivated:
		return nil
	case domain.StateActivating:
		return c.awaitActivation(ctx)
	case domain.StateRedundant:
		return domain.ErrControllerRedundant
	default:
		return domain.ErrNoActiveController
	}
}

// absolute resolves an origin-form request against the origin.
func (c *Controller) absolute(ctx context.Context, req *http.Request) *http.Request {
	if req.URL.IsAbs() {
		return req
	}
	out := req.Clone(ctx)
	out.URL = c.gen.Origin.ResolveReference(req.URL)
	out.Host = out.URL.Host
	return out
}

// networkFirst answers API requests. Only GET responses are cached and only
// GET requests fall back to the cache.
func (c *Controller) networkFirst(ctx context.Context, req *http.Request, key string) (*http.Response, domain.Source) {
	cacheable := req.Method == http.MethodGet
	resp, body, err := c.fetch(ctx, req)
	if err == nil {
		if cacheable && domain.Cacheable(resp) {
			c.put(ctx, domain.NewEntry(key, c.gen.RuntimePartition(), resp, body, c.deps.Now()))
		}
		return resp, domain.SourceNetwork
	}
	c.deps.Logger.Debug("network unavailable for " + req.Method + " " + key + ": " + err.Error())
	if !cacheable {
		return domain.OfflineResponse(req), domain.SourceOffline
	}

	entry, err := c.deps.Storage.Match(ctx, key)
	if err != nil {
		c.deps.Logger.Error(err)
	}
	if entry != nil {
		return entry.Response(req), domain.SourceCache
	}
	return domain.OfflineResponse(req), domain.SourceOffline
}

func (c *Controller) cacheFirst(ctx context.Context, req *http.Request, key string) (*http.Response, domain.Source) {
	if entry := c.lookup(ctx, key); entry != nil {
		return entry.Response(req), domain.SourceCache
	}
	return c.fromNetwork(ctx, req, key)
}

func (c *Controller) staleWhileRevalidate(ctx context.Context, req *http.Request, key string) (*http.Response, domain.Source) {
	entry := c.lookup(ctx, key)
	if entry == nil {
		return c.fromNetwork(ctx, req, key)
	}

	bg := context.WithoutCancel(ctx)
	refresh := req.Clone(bg)
	c.background.Add(1)
	go func() {
		defer c.background.Done()
		resp, body, err := c.fetch(bg, refresh)
		if err != nil {
			c.deps.Logger.Debug("revalidation failed for " + key + ": " + err.Error())
			return
		}
		if domain.Cacheable(resp) {
			c.put(bg, domain.NewEntry(key, c.gen.RuntimePartition(), resp, body, c.deps.Now()))
		}
	}()
	return entry.Response(req), domain.SourceCache
}

// fromNetwork answers a cache miss. An unreachable network yields the offline response.
func (c *Controller) fromNetwork(ctx context.Context, req *http.Request, key string) (*http.Response, domain.Source) {
	resp, body, err := c.fetch(ctx, req)
	if err != nil {
		c.deps.Logger.Debug("network unavailable for " + key + ": " + err.Error())
		return domain.OfflineResponse(req), domain.SourceOffline
	}
	if domain.Cacheable(resp) {
		c.put(ctx, domain.NewEntry(key, c.gen.RuntimePartition(), resp, body, c.deps.Now()))
	}
	return resp, domain.SourceNetwork
}

// lookup searches this generation's partitions, static first.
// Read failures count as misses.
func (c *Controller) lookup(ctx context.Context, key string) *domain.Entry {
	for _, name := range c.gen.Partitions() {
		ok, err := c.deps.Storage.Has(ctx, name)
		if err != nil {
			c.deps.Logger.Error(err)
			continue
		}
		if !ok {
			continue
		}
		p, err := c.deps.Storage.Open(ctx, name)
		if err != nil {
			c.deps.Logger.Error(err)
			continue
		}
		entry, err := p.Match(ctx, key)
		if err != nil {
			c.deps.Logger.Error(err)
			continue
		}
		if entry != nil {
			return entry
		}
	}
	return nil
}

// put writes to the runtime partition. Failures are logged and counted only.
// Once writes are frozen the entry is dropped, so a superseded controller
// cannot recreate a partition its successor deleted.
func (c *Controller) put(ctx context.Context, entry *domain.Entry) {
	c.writes.RLock()
	defer c.writes.RUnlock()
	if c.frozen {
		c.deps.Logger.Debug("dropping cache write for " + entry.Key + ": controller " + c.gen.Version + " is retiring")
		return
	}

	name := c.gen.RuntimePartition()
	p, err := c.deps.Storage.Open(ctx, name)
	if err == nil {
		err = p.Put(ctx, entry)
	}
	if err != nil {
		c.deps.Logger.Error(zerr.With(err, "partition", name))
		c.deps.Metrics.ObserveCacheWriteFailure(name)
	}
}

// fetch sends the request and buffers the response body.
func (c *Controller) fetch(ctx context.Context, req *http.Request) (*http.Response, []byte, error) {
	resp, err := c.deps.Fetcher.Fetch(ctx, req)
	if err != nil {
		return nil, nil, err
	}
	return capture(resp)
}

// capture reads the body once and returns a response carrying its own copy,
// leaving body free to be stored independently.
func capture(resp *http.Response) (*http.Response, []byte, error) {
	body, err := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if err != nil {
		return nil, nil, zerr.Wrap(err, domain.ErrResponseReadFailed.Error())
	}

	out := *resp
	out.Header = resp.Header.Clone()
	out.Body = io.NopCloser(bytes.NewReader(bytes.Clone(body)))
	out.ContentLength = int64(len(body))
	out.TransferEncoding = nil
	return &out, body, nil
}
