// Package config provides the configuration loader for aqtcache.
package config

import (
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"go.trai.ch/aqtcache/internal/core/domain"
	"go.trai.ch/aqtcache/internal/core/ports"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

// DefaultListen is the address the proxy listens on when none is configured.
const DefaultListen = ":8080"

var _ ports.ConfigLoader = (*Loader)(nil)

// Loader implements ports.ConfigLoader using a YAML file.
type Loader struct {
	Logger   ports.Logger
	validate *validator.Validate
}

// NewLoader creates a new Loader with the given logger.
func NewLoader(logger ports.Logger) *Loader {
	return &Loader{
		Logger:   logger,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// Load finds aqtcache.yaml in cwd or the nearest parent and resolves it.
func (l *Loader) Load(cwd string) (*domain.Settings, error) {
	path, err := findConfiguration(cwd)
	if err != nil {
		return nil, err
	}
	return l.LoadFile(path)
}

// LoadFile reads and resolves the configuration at path.
func (l *Loader) LoadFile(path string) (*domain.Settings, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrConfigReadFailed.Error()), "path", path)
	}

	var cfg Configfile
	if err := readAndUnmarshalYAML(abs, &cfg); err != nil {
		return nil, err
	}
	if err := applyEnv(&cfg); err != nil {
		return nil, err
	}
	if err := l.validate.Struct(cfg); err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrInvalidConfig.Error()), "path", abs)
	}

	settings, err := l.resolve(abs, &cfg)
	if err != nil {
		return nil, zerr.With(err, "path", abs)
	}
	return settings, nil
}

func (l *Loader) resolve(path string, cfg *Configfile) (*domain.Settings, error) {
	origin, err := parseOrigin(cfg.Origin)
	if err != nil {
		return nil, err
	}

	upstream := origin
	if cfg.Upstream != "" {
		if upstream, err = parseOrigin(cfg.Upstream); err != nil {
			return nil, zerr.With(err, "field", "upstream")
		}
	}

	strategy, err := domain.ParseStaticStrategy(cfg.Strategy)
	if err != nil {
		return nil, err
	}

	var timeout time.Duration
	if cfg.FetchTimeout != "" {
		timeout, err = time.ParseDuration(cfg.FetchTimeout)
		if err != nil || timeout < 0 {
			return nil, zerr.With(domain.ErrInvalidConfig, "fetch_timeout", cfg.FetchTimeout)
		}
	}

	manifest := cfg.Manifest
	if manifest == nil {
		manifest = domain.DefaultManifest()
	}

	listen := cfg.Listen
	if listen == "" {
		listen = DefaultListen
	}

	s := &domain.Settings{
		Path:           path,
		Version:        cfg.Version,
		Origin:         origin,
		Upstream:       upstream,
		Listen:         listen,
		StaticPrefix:   orDefault(cfg.Partitions.StaticPrefix, domain.DefaultStaticPrefix),
		RuntimePrefix:  orDefault(cfg.Partitions.RuntimePrefix, domain.DefaultRuntimePrefix),
		Manifest:       manifest,
		StaticStrategy: strategy,
		SkipWaiting:    cfg.SkipWaiting == nil || *cfg.SkipWaiting,
		FetchTimeout:   timeout,
		Storage:        resolveStorage(filepath.Dir(path), cfg.Storage),
		LogJSON:        cfg.Log.JSON != nil && *cfg.Log.JSON,
		LogTrace:       cfg.Log.Trace == nil || *cfg.Log.Trace,
	}

	if s.StaticPrefix == s.RuntimePrefix {
		return nil, zerr.With(domain.ErrInvalidConfig, "partitions", "static and runtime prefixes must differ")
	}
	if err := s.Generation().Validate(); err != nil {
		return nil, err
	}
	if l.Logger != nil && cfg.Upstream == "" {
		l.Logger.Debug("no upstream configured, fetching from the origin")
	}
	return s, nil
}

func findConfiguration(cwd string) (string, error) {
	currentDir := cwd
	for {
		path := filepath.Join(currentDir, domain.ConfigFileName)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			break
		}
		currentDir = parentDir
	}
	return "", zerr.With(domain.ErrConfigNotFound, "cwd", cwd)
}

func readAndUnmarshalYAML[T any](configPath string, target *T) error {
	data, err := os.ReadFile(configPath) //nolint:gosec // path is provided by user
	if err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrConfigReadFailed.Error()), "path", configPath)
	}
	if err := yaml.Unmarshal(data, target); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrConfigParseFailed.Error()), "path", configPath)
	}
	return nil
}

func applyEnv(cfg *Configfile) error {
	var o envOverrides
	if err := env.Parse(&o); err != nil {
		return zerr.Wrap(err, domain.ErrInvalidConfig.Error())
	}
	set := func(dst *string, v *string) {
		if v != nil {
			*dst = *v
		}
	}
	set(&cfg.Version, o.Version)
	set(&cfg.Origin, o.Origin)
	set(&cfg.Upstream, o.Upstream)
	set(&cfg.Listen, o.Listen)
	set(&cfg.Storage.Backend, o.StorageBackend)
	set(&cfg.Storage.Path, o.StoragePath)
	if o.LogJSON != nil {
		cfg.Log.JSON = o.LogJSON
	}
	if o.LogTrace != nil {
		cfg.Log.Trace = o.LogTrace
	}
	return nil
}

// parseOrigin accepts scheme://host[:port] with at most a trailing slash.
// Cache keys and manifest entries are root-relative, so a path prefix
// could not be honored.
func parseOrigin(raw string) (*url.URL, error) {
	u, err := url.Parse(strings.TrimRight(raw, "/"))
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrInvalidOrigin.Error()), "origin", raw)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, zerr.With(domain.ErrInvalidOrigin, "origin", raw)
	}
	if u.Path != "" || u.RawQuery != "" || u.Fragment != "" {
		return nil, zerr.With(domain.ErrInvalidOrigin, "origin", raw)
	}
	return u, nil
}

// resolveStorage fills in the backend default and anchors relative paths at
// the directory holding the configuration file.
func resolveStorage(base string, dto StorageDTO) domain.StorageSettings {
	backend := domain.StorageBackend(orDefault(dto.Backend, string(domain.StorageBadger)))
	path := dto.Path
	if path == "" {
		switch backend {
		case domain.StorageFS:
			path = domain.DefaultPartitionsPath()
		case domain.StorageBadger:
			path = domain.DefaultBadgerPath()
		}
	}
	if path != "" && !filepath.IsAbs(path) {
		path = filepath.Join(base, path)
	}
	return domain.StorageSettings{Backend: backend, Path: path}
}

func orDefault(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
