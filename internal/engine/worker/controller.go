// Package worker implements the offline cache controller and the registration
// that hosts its versions.
package worker

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"go.trai.ch/aqtcache/internal/core/domain"
	"go.trai.ch/aqtcache/internal/core/ports"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

// Deps are the collaborators shared by every controller version.
type Deps struct {
	Storage  ports.CacheStorage
	Fetcher  ports.Fetcher
	Logger   ports.Logger
	Tracer   ports.Tracer
	Metrics  ports.Metrics
	Clients  ports.Clients
	Notifier ports.Notifier
	// Now returns the current time. Defaults to time.Now.
	Now func() time.Time
}

func (d Deps) withDefaults() Deps {
	if d.Tracer == nil {
		d.Tracer = noopTracer{}
	}
	if d.Metrics == nil {
		d.Metrics = noopMetrics{}
	}
	if d.Logger == nil {
		d.Logger = noopLogger{}
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	return d
}

// Controller is one version of the offline cache controller.
type Controller struct {
	gen  domain.Generation
	deps Deps

	mu          sync.RWMutex
	state       domain.State
	skipWaiting bool
	// activated is closed once the controller reaches StateActivated or StateRedundant.
	activated chan struct{}
	closeOnce sync.Once

	// background tracks stale-while-revalidate refreshes.
	background sync.WaitGroup

	// writes is held shared by cache writes; frozen stops them for good.
	writes sync.RWMutex
	frozen bool
}

// NewController creates a controller for the generation in the parsed state.
func NewController(gen domain.Generation, deps Deps) *Controller {
	return &Controller{
		gen:       gen,
		deps:      deps.withDefaults(),
		state:     domain.StateParsed,
		activated: make(chan struct{}),
	}
}

// Generation returns the controller's generation.
func (c *Controller) Generation() domain.Generation {
	return c.gen
}

// Version returns the controller's version tag.
func (c *Controller) Version() string {
	return c.gen.Version
}

// State returns the current lifecycle state.
func (c *Controller) State() domain.State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// SkipWaitingRequested reports whether the controller asked to activate without waiting.
func (c *Controller) SkipWaitingRequested() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.skipWaiting
}

// Status returns a snapshot of the controller for reporting.
func (c *Controller) Status() *domain.ControllerStatus {
	return &domain.ControllerStatus{
		Version:          c.gen.Version,
		State:            c.State(),
		StaticPartition:  c.gen.StaticPartition(),
		RuntimePartition: c.gen.RuntimePartition(),
	}
}

// Install populates the static partition with every manifest asset.
// Installation is all-or-nothing: assets are fetched first and written only
// when every fetch succeeded. A failed install leaves the controller redundant.
func (c *Controller) Install(ctx context.Context) error {
	ctx, span := c.deps.Tracer.Start(ctx, "install", ports.WithAttribute("version", c.gen.Version))
	defer span.End()

	if err := c.transition(domain.StateInstalling); err != nil {
		return err
	}

	entries, err := c.fetchManifest(ctx)
	if err == nil {
		err = c.writeStatic(ctx, entries)
	}
	if err != nil {
		span.RecordError(err)
		c.markRedundant()
		return errors.Join(domain.ErrInstallFailed, zerr.With(err, "version", c.gen.Version))
	}

	if err := c.transition(domain.StateInstalled); err != nil {
		return err
	}

	c.mu.Lock()
	c.skipWaiting = c.gen.SkipWaiting
	c.mu.Unlock()

	span.SetAttribute("assets", len(entries))
	c.deps.Logger.Info(fmt.Sprintf("installed %s with %d assets", c.gen.Version, len(entries)))
	return nil
}

// fetchManifest fetches every manifest path concurrently and buffers the responses.
func (c *Controller) fetchManifest(ctx context.Context) ([]*domain.Entry, error) {
	entries := make([]*domain.Entry, len(c.gen.Manifest))
	static := c.gen.StaticPartition()

	g, gctx := errgroup.WithContext(ctx)
	for i, path := range c.gen.Manifest {
		g.Go(func() error {
			target := c.gen.Resolve(path).String()
			req, err := http.NewRequestWithContext(gctx, http.MethodGet, target, nil)
			if err != nil {
				return zerr.With(zerr.Wrap(err, domain.ErrManifestFetchFailed.Error()), "path", path)
			}

			resp, err := c.deps.Fetcher.Fetch(gctx, req)
			if err != nil {
				return zerr.With(zerr.Wrap(err, domain.ErrManifestFetchFailed.Error()), "path", path)
			}
			if !domain.Cacheable(resp) {
				_ = resp.Body.Close()
				return zerr.With(zerr.With(domain.ErrManifestAssetRejected, "path", path), "status", resp.StatusCode)
			}

			_, body, err := capture(resp)
			if err != nil {
				return zerr.With(err, "path", path)
			}
			entries[i] = domain.NewEntry(domain.RequestKey(req), static, resp, body, c.deps.Now())
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return entries, nil
}

// writeStatic stores the buffered manifest. If any write fails the static
// partition is removed so no partial install survives.
func (c *Controller) writeStatic(ctx context.Context, entries []*domain.Entry) error {
	name := c.gen.StaticPartition()
	p, err := c.deps.Storage.Open(ctx, name)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if err := p.Put(ctx, e); err != nil {
			if _, delErr := c.deps.Storage.Delete(context.WithoutCancel(ctx), name); delErr != nil {
				c.deps.Logger.Error(delErr)
			}
			return err
		}
	}
	return nil
}

// Activate deletes every partition not owned by this generation and then
// claims all open clients. Deletion always completes before claiming.
// Failures to delete or claim are logged; the controller still activates.
func (c *Controller) Activate(ctx context.Context) error {
	ctx, span := c.deps.Tracer.Start(ctx, "activate", ports.WithAttribute("version", c.gen.Version))
	defer span.End()

	if err := c.transition(domain.StateActivating); err != nil {
		return err
	}

	deleted, err := c.deleteStalePartitions(ctx)
	if err != nil {
		span.RecordError(err)
		c.deps.Logger.Error(errors.Join(domain.ErrActivateFailed, err))
	}
	c.deps.Metrics.ObservePartitionsDeleted(deleted)
	span.SetAttribute("partitions_deleted", deleted)

	if c.deps.Clients != nil {
		if err := c.deps.Clients.Claim(ctx, c.gen.Version); err != nil {
			span.RecordError(err)
			c.deps.Logger.Error(zerr.Wrap(err, "failed to claim clients"))
		}
	}

	if err := c.transition(domain.StateActivated); err != nil {
		return err
	}
	c.deps.Logger.Info(fmt.Sprintf("activated %s, removed %d stale partitions", c.gen.Version, deleted))
	return nil
}

func (c *Controller) deleteStalePartitions(ctx context.Context) (int, error) {
	names, err := c.deps.Storage.Keys(ctx)
	if err != nil {
		return 0, err
	}

	var errs error
	deleted := 0
	for _, name := range names {
		if c.gen.Owns(name) {
			continue
		}
		ok, err := c.deps.Storage.Delete(ctx, name)
		if err != nil {
			errs = errors.Join(errs, zerr.With(err, "partition", name))
			continue
		}
		if ok {
			deleted++
			c.deps.Logger.Debug(fmt.Sprintf("deleted stale partition %s", name))
		}
	}
	return deleted, errs
}

// MarkRedundant retires the controller. It is idempotent.
func (c *Controller) MarkRedundant() {
	c.markRedundant()
}

// FreezeWrites stops runtime cache writes and waits for those in flight.
// A successor calls it on its predecessor before deleting stale partitions.
func (c *Controller) FreezeWrites() {
	c.writes.Lock()
	c.frozen = true
	c.writes.Unlock()
}

func (c *Controller) markRedundant() {
	c.FreezeWrites()

	c.mu.Lock()
	changed := c.state != domain.StateRedundant
	c.state = domain.StateRedundant
	c.mu.Unlock()

	if changed {
		c.deps.Metrics.ObserveTransition(c.gen.Version, domain.StateRedundant)
	}
	c.closeOnce.Do(func() { close(c.activated) })
}

// Wait blocks until background revalidations have finished.
func (c *Controller) Wait() {
	c.background.Wait()
}

func (c *Controller) transition(next domain.State) error {
	c.mu.Lock()
	state, err := c.state.Transition(next)
	c.state = state
	c.mu.Unlock()

	if err != nil {
		return zerr.With(err, "version", c.gen.Version)
	}
	c.deps.Metrics.ObserveTransition(c.gen.Version, next)
	if next == domain.StateActivated {
		c.closeOnce.Do(func() { close(c.activated) })
	}
	return nil
}

// awaitActivation blocks a fetch that arrives while the controller is
// still activating, so no request reads a partition that is being deleted.
func (c *Controller) awaitActivation(ctx context.Context) error {
	select {
	case <-c.activated:
	case <-ctx.Done():
		return ctx.Err()
	}
	if c.State() == domain.StateRedundant {
		return domain.ErrControllerRedundant
	}
	return nil
}
