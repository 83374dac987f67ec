// Package app implements the application layer for aqtcache.
package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"slices"
	"sync"

	"go.trai.ch/aqtcache/internal/adapters/fetch"
	"go.trai.ch/aqtcache/internal/adapters/server"    //nolint:depguard // Wired in app layer
	"go.trai.ch/aqtcache/internal/adapters/telemetry" //nolint:depguard // Wired in app layer
	"go.trai.ch/aqtcache/internal/adapters/watcher"
	"go.trai.ch/aqtcache/internal/core/domain"
	"go.trai.ch/aqtcache/internal/core/ports"
	"go.trai.ch/aqtcache/internal/engine/worker"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

// MetricsRecorder records controller metrics and serves them.
type MetricsRecorder interface {
	ports.Metrics
	Handler() http.Handler
}

// Shutdowner flushes and stops a background component.
type Shutdowner interface {
	Shutdown(ctx context.Context) error
}

// logSettings is implemented by loggers whose output can be reconfigured.
type logSettings interface {
	SetJSON(bool)
	SetVerbose(bool)
}

// App represents the main application logic.
type App struct {
	configLoader ports.ConfigLoader
	opener       ports.StorageOpener
	logger       ports.Logger
	tracer       ports.Tracer
	metrics      MetricsRecorder
	clients      ports.Clients
	notifier     ports.Notifier
	watcher      ports.Watcher
	telemetry    Shutdowner

	newFetcher func(*domain.Settings) ports.Fetcher
	listen     func(addr string) (net.Listener, error)
	cwd        string
}

// New creates a new App instance.
func New(
	loader ports.ConfigLoader,
	opener ports.StorageOpener,
	log ports.Logger,
	tracer ports.Tracer,
	metrics MetricsRecorder,
	clients ports.Clients,
	notifier ports.Notifier,
	w ports.Watcher,
	telemetry Shutdowner,
) *App {
	return &App{
		configLoader: loader,
		opener:       opener,
		logger:       log,
		tracer:       tracer,
		metrics:      metrics,
		clients:      clients,
		notifier:     notifier,
		watcher:      w,
		telemetry:    telemetry,
		newFetcher:   NewFetcher,
		listen: func(addr string) (net.Listener, error) {
			return net.Listen("tcp", addr)
		},
		cwd: ".",
	}
}

// WithFetcher replaces the network used for the loaded settings.
// This is primarily used for testing.
func (a *App) WithFetcher(f func(*domain.Settings) ports.Fetcher) *App {
	a.newFetcher = f
	return a
}

// WithListener replaces how the proxy listens.
// This is primarily used for testing.
func (a *App) WithListener(listen func(addr string) (net.Listener, error)) *App {
	a.listen = listen
	return a
}

// WithWorkingDir sets the directory configuration discovery starts from.
func (a *App) WithWorkingDir(dir string) *App {
	a.cwd = dir
	return a
}

// NewFetcher builds the network fetcher for settings.
func NewFetcher(s *domain.Settings) ports.Fetcher {
	return fetch.New(
		fetch.WithTimeout(s.FetchTimeout),
		fetch.WithUpstream(s.Origin, s.Upstream),
	)
}

// ConfigOptions selects the configuration file.
type ConfigOptions struct {
	// ConfigPath is an explicit configuration file. Empty means discovery.
	ConfigPath string
}

func (a *App) loadSettings(opts ConfigOptions) (*domain.Settings, error) {
	var (
		s   *domain.Settings
		err error
	)
	if opts.ConfigPath != "" {
		s, err = a.configLoader.LoadFile(opts.ConfigPath)
	} else {
		s, err = a.configLoader.Load(a.cwd)
	}
	if err != nil {
		return nil, zerr.Wrap(err, "failed to load configuration")
	}
	return s, nil
}

// ServeOptions configuration for the Serve method.
type ServeOptions struct {
	ConfigOptions
	// Listen overrides the configured listen address.
	Listen string
	// Watch reloads the configuration when the file changes.
	Watch   bool
	Verbose bool
	JSON    bool
}

// Serve runs the proxy until ctx is cancelled.
func (a *App) Serve(ctx context.Context, opts ServeOptions) error {
	settings, err := a.loadSettings(opts.ConfigOptions)
	if err != nil {
		return err
	}
	a.configureLogger(opts.Verbose, opts.JSON || settings.LogJSON)

	storage, err := a.opener.OpenStorage(ctx, settings.Storage)
	if err != nil {
		return zerr.Wrap(err, "failed to open cache storage")
	}
	defer func() {
		if cerr := storage.Close(); cerr != nil {
			a.logger.Error(zerr.Wrap(cerr, "failed to close cache storage"))
		}
	}()

	fetcher := a.newFetcher(settings)
	reg := worker.NewRegistration(worker.Deps{
		Storage:  storage,
		Fetcher:  fetcher,
		Logger:   a.logger,
		Tracer:   a.tracerFor(settings),
		Metrics:  a.metrics,
		Clients:  a.clients,
		Notifier: a.notifier,
	})
	defer a.shutdownTelemetry(ctx)
	defer reg.Wait()

	// A failed first install leaves the proxy passing requests through;
	// the next configuration change retries.
	if _, err := reg.Register(ctx, settings.Generation()); err != nil {
		a.logger.Error(err)
	}

	listen := settings.Listen
	if opts.Listen != "" {
		listen = opts.Listen
	}
	ln, err := a.listen(listen)
	if err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrServeFailed.Error()), "addr", listen)
	}

	cfg := server.Config{
		Addr:         listen,
		Origin:       settings.Origin,
		Registration: reg,
		Fetcher:      fetcher,
		Clients:      a.clients,
		Notifier:     a.notifier,
		Logger:       a.logger,
	}
	if a.metrics != nil {
		cfg.Metrics = a.metrics.Handler()
	}
	srv := server.New(cfg)

	g, gctx := errgroup.WithContext(ctx)
	if opts.Watch && a.watcher != nil {
		r := newReloader(a, reg, settings)
		if err := a.watcher.Start(gctx, settings.Path); err != nil {
			a.logger.Warn(fmt.Sprintf("configuration reload disabled: %v", err))
		} else {
			g.Go(func() error {
				return a.watch(gctx, r)
			})
		}
	}
	g.Go(func() error {
		return srv.Serve(gctx, ln)
	})

	return g.Wait()
}

// watch registers a new generation whenever the configuration file changes.
func (a *App) watch(ctx context.Context, r *reloader) error {
	defer func() {
		_ = a.watcher.Stop()
	}()

	debouncer := watcher.NewDebouncer(watcher.DefaultDebounceWindow, func() {
		r.reload(ctx)
	})
	defer debouncer.Stop()

	for range a.watcher.Events() {
		debouncer.Trigger()
	}
	return nil
}

type reloader struct {
	app     *App
	reg     *worker.Registration
	mu      sync.Mutex
	current *domain.Settings
	last    uint64
}

func newReloader(a *App, reg *worker.Registration, current *domain.Settings) *reloader {
	r := &reloader{app: a, reg: reg, current: current}
	r.last, _ = watcher.Fingerprint(current.Path)
	return r
}

func (r *reloader) reload(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if ctx.Err() != nil {
		return
	}
	sum, ok := watcher.Fingerprint(r.current.Path)
	if !ok || sum == r.last {
		return
	}
	r.last = sum

	next, err := r.app.configLoader.LoadFile(r.current.Path)
	if err != nil {
		r.app.logger.Error(zerr.Wrap(err, "configuration reload failed"))
		return
	}
	if next.Origin.String() != r.current.Origin.String() || next.Listen != r.current.Listen ||
		next.Storage != r.current.Storage {
		r.app.logger.Warn("origin, listen and storage changes take effect after a restart")
	}

	if next.Version == r.current.Version {
		if !sameGeneration(next.Generation(), r.current.Generation()) {
			r.app.logger.Warn(fmt.Sprintf(
				"configuration changed without a version bump, keeping version %s; change version to apply it",
				next.Version))
		}
		r.current = next
		return
	}

	r.app.logger.Info(fmt.Sprintf("configuration changed, registering version %s", next.Version))
	if _, err := r.reg.Register(ctx, next.Generation()); err != nil {
		r.app.logger.Error(err)
		return
	}
	r.current = next
}

// tracerFor returns the tracer for settings. With tracing off no span is started.
func (a *App) tracerFor(s *domain.Settings) ports.Tracer {
	if !s.LogTrace || a.tracer == nil {
		return telemetry.NewNoOpTracer()
	}
	return a.tracer
}

// sameGeneration reports whether two generations of one version would cache
// the same way.
func sameGeneration(a, b domain.Generation) bool {
	return a.StaticPrefix == b.StaticPrefix &&
		a.RuntimePrefix == b.RuntimePrefix &&
		slices.Equal(a.Manifest, b.Manifest) &&
		a.StaticStrategy == b.StaticStrategy &&
		a.SkipWaiting == b.SkipWaiting
}

func (a *App) configureLogger(verbose, json bool) {
	if l, ok := a.logger.(logSettings); ok {
		l.SetVerbose(verbose)
		l.SetJSON(json)
	}
}

func (a *App) shutdownTelemetry(ctx context.Context) {
	if a.telemetry == nil {
		return
	}
	if err := a.telemetry.Shutdown(context.WithoutCancel(ctx)); err != nil {
		a.logger.Error(zerr.Wrap(err, "failed to flush traces"))
	}
}

// PartitionInfo describes one stored partition.
type PartitionInfo struct {
	Name    string
	Entries int
	// Current marks partitions of the configured version.
	Current bool
}

// Partitions lists the partitions in the configured storage.
func (a *App) Partitions(ctx context.Context, opts ConfigOptions) ([]PartitionInfo, error) {
	settings, storage, err := a.openConfigured(ctx, opts)
	if err != nil {
		return nil, err
	}
	defer storage.Close()

	names, err := storage.Keys(ctx)
	if err != nil {
		return nil, err
	}

	gen := settings.Generation()
	out := make([]PartitionInfo, 0, len(names))
	for _, name := range names {
		p, err := storage.Open(ctx, name)
		if err != nil {
			return nil, err
		}
		keys, err := p.Keys(ctx)
		if err != nil {
			return nil, err
		}
		out = append(out, PartitionInfo{
			Name:    name,
			Entries: len(keys),
			Current: gen.Owns(name),
		})
	}
	return out, nil
}

// PurgeOptions configuration for the Purge method.
type PurgeOptions struct {
	ConfigOptions
	// All also deletes the partitions of the configured version.
	All bool
}

// Purge deletes stale partitions and returns their names.
func (a *App) Purge(ctx context.Context, opts PurgeOptions) ([]string, error) {
	settings, storage, err := a.openConfigured(ctx, opts.ConfigOptions)
	if err != nil {
		return nil, err
	}
	defer storage.Close()

	names, err := storage.Keys(ctx)
	if err != nil {
		return nil, err
	}

	gen := settings.Generation()
	var (
		deleted []string
		errs    error
	)
	for _, name := range names {
		if !opts.All && gen.Owns(name) {
			continue
		}
		if _, err := storage.Delete(ctx, name); err != nil {
			errs = errors.Join(errs, err)
			continue
		}
		a.logger.Info(fmt.Sprintf("deleted partition %s", name))
		deleted = append(deleted, name)
	}
	return deleted, errs
}

func (a *App) openConfigured(ctx context.Context, opts ConfigOptions) (*domain.Settings, ports.CacheStorage, error) {
	settings, err := a.loadSettings(opts)
	if err != nil {
		return nil, nil, err
	}
	storage, err := a.opener.OpenStorage(ctx, settings.Storage)
	if err != nil {
		return nil, nil, zerr.Wrap(err, "failed to open cache storage")
	}
	return settings, storage, nil
}
