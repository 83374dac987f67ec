package domain

import (
	"net/url"
	"regexp"
	"strings"

	"go.trai.ch/zerr"
)

const (
	// DefaultStaticPrefix is the name prefix of the static partition.
	DefaultStaticPrefix = "aqt-static"
	// DefaultRuntimePrefix is the name prefix of the runtime partition.
	DefaultRuntimePrefix = "aqt-journal"
	// APIPathMarker marks request paths that are served network-first.
	APIPathMarker = "/api/"
)

// DefaultManifest returns the assets cached at install time when none are configured.
func DefaultManifest() []string {
	return []string{"/", "/manifest.json", "/icon-192.png", "/icon-512.png"}
}

var validVersionRegex = regexp.MustCompile(`^[a-zA-Z0-9._-]+$`)

// Generation describes one code version of the cache controller.
// It replaces the module-level cache names of a browser service worker
// with values injected at construction.
type Generation struct {
	Version        string
	Origin         *url.URL
	StaticPrefix   string
	RuntimePrefix  string
	Manifest       []string
	StaticStrategy Strategy
	SkipWaiting    bool
}

// StaticPartition returns the name of the partition seeded at install time.
func (g Generation) StaticPartition() string {
	return partitionName(g.StaticPrefix, DefaultStaticPrefix, g.Version)
}

// RuntimePartition returns the name of the lazily populated partition.
func (g Generation) RuntimePartition() string {
	return partitionName(g.RuntimePrefix, DefaultRuntimePrefix, g.Version)
}

// Partitions returns the partitions owned by this generation, static first.
func (g Generation) Partitions() []string {
	return []string{g.StaticPartition(), g.RuntimePartition()}
}

// Owns reports whether the named partition belongs to this generation.
func (g Generation) Owns(name string) bool {
	return name == g.StaticPartition() || name == g.RuntimePartition()
}

// SameOrigin reports whether u targets the generation's origin.
// Relative URLs are treated as same-origin.
func (g Generation) SameOrigin(u *url.URL) bool {
	if u == nil || g.Origin == nil {
		return false
	}
	if !u.IsAbs() {
		return true
	}
	return strings.EqualFold(u.Scheme, g.Origin.Scheme) && strings.EqualFold(u.Host, g.Origin.Host)
}

// Resolve returns the absolute URL of a root-relative path on the origin.
func (g Generation) Resolve(path string) *url.URL {
	ref, err := url.Parse(path)
	if err != nil {
		ref = &url.URL{Path: path}
	}
	return g.Origin.ResolveReference(ref)
}

// Validate checks that the generation is usable.
func (g Generation) Validate() error {
	if !validVersionRegex.MatchString(g.Version) {
		return zerr.With(ErrInvalidVersion, "version", g.Version)
	}
	if g.Origin == nil || !g.Origin.IsAbs() || (g.Origin.Scheme != "http" && g.Origin.Scheme != "https") ||
		g.Origin.Host == "" || strings.Trim(g.Origin.Path, "/") != "" {
		return ErrInvalidOrigin
	}
	for _, p := range g.Manifest {
		if !strings.HasPrefix(p, "/") || strings.HasPrefix(p, "//") {
			return zerr.With(ErrInvalidManifestPath, "path", p)
		}
	}
	if _, err := ParseStaticStrategy(string(g.StaticStrategy)); err != nil {
		return err
	}
	return nil
}

// IsAPIPath reports whether a request path is an API call.
func IsAPIPath(path string) bool {
	return strings.Contains(path, APIPathMarker)
}

func partitionName(prefix, fallback, version string) string {
	if prefix == "" {
		prefix = fallback
	}
	return prefix + "-" + version
}
