package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/aqtcache/internal/adapters/config"
	"go.trai.ch/aqtcache/internal/core/domain"
	"go.trai.ch/aqtcache/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, domain.ConfigFileName)
	require.NoError(t, os.WriteFile(path, []byte(content), domain.FilePerm))
	return path
}

func newLoader(t *testing.T) *config.Loader {
	t.Helper()
	logger := mocks.NewMockLogger(gomock.NewController(t))
	logger.EXPECT().Debug(gomock.Any()).AnyTimes()
	return config.NewLoader(logger)
}

func TestLoader_Defaults(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "version: v1\norigin: https://journal.example.com\n")

	s, err := newLoader(t).Load(dir)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, domain.ConfigFileName), s.Path)
	assert.Equal(t, "v1", s.Version)
	assert.Equal(t, "https://journal.example.com", s.Origin.String())
	assert.Equal(t, s.Origin, s.Upstream)
	assert.Equal(t, config.DefaultListen, s.Listen)
	assert.Equal(t, domain.DefaultStaticPrefix, s.StaticPrefix)
	assert.Equal(t, domain.DefaultRuntimePrefix, s.RuntimePrefix)
	assert.Equal(t, domain.DefaultManifest(), s.Manifest)
	assert.Equal(t, domain.StrategyCacheFirst, s.StaticStrategy)
	assert.True(t, s.SkipWaiting)
	assert.Zero(t, s.FetchTimeout)
	assert.Equal(t, domain.StorageBadger, s.Storage.Backend)
	assert.Equal(t, filepath.Join(dir, domain.DefaultBadgerPath()), s.Storage.Path)
	assert.False(t, s.LogJSON)
}

func TestLoader_FullFile(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, `
version: "2024.06.1"
origin: http://localhost:5173/
upstream: http://10.0.0.5:5173
listen: 127.0.0.1:9000
partitions:
  static_prefix: journal-static
  runtime_prefix: journal-runtime
manifest:
  - /
  - /app.js
strategy: stale-while-revalidate
skip_waiting: false
fetch_timeout: 3s
storage:
  backend: fs
  path: cache
log:
  json: true
`)

	s, err := newLoader(t).LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:5173", s.Origin.String())
	assert.Equal(t, "http://10.0.0.5:5173", s.Upstream.String())
	assert.Equal(t, "127.0.0.1:9000", s.Listen)
	assert.Equal(t, []string{"/", "/app.js"}, s.Manifest)
	assert.Equal(t, domain.StrategyStaleWhileRevalidate, s.StaticStrategy)
	assert.False(t, s.SkipWaiting)
	assert.Equal(t, 3*time.Second, s.FetchTimeout)
	assert.Equal(t, domain.StorageSettings{Backend: domain.StorageFS, Path: filepath.Join(dir, "cache")}, s.Storage)
	assert.True(t, s.LogJSON)

	gen := s.Generation()
	assert.Equal(t, "journal-static-2024.06.1", gen.StaticPartition())
	assert.Equal(t, "journal-runtime-2024.06.1", gen.RuntimePartition())
}

func TestLoader_DiscoversParentDirectory(t *testing.T) {
	root := t.TempDir()
	writeConfig(t, root, "version: v1\norigin: https://journal.example.com\n")
	nested := filepath.Join(root, "web", "src")
	require.NoError(t, os.MkdirAll(nested, domain.DirPerm))

	s, err := newLoader(t).Load(nested)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, domain.ConfigFileName), s.Path)
}

func TestLoader_NotFound(t *testing.T) {
	_, err := newLoader(t).Load(t.TempDir())
	require.Error(t, err)
	assert.ErrorContains(t, err, domain.ErrConfigNotFound.Error())
}

func TestLoader_EnvOverrides(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "version: v1\norigin: https://journal.example.com\n")

	t.Setenv("AQTCACHE_VERSION", "v2")
	t.Setenv("AQTCACHE_LISTEN", ":9999")
	t.Setenv("AQTCACHE_STORAGE_BACKEND", "memory")
	t.Setenv("AQTCACHE_LOG_JSON", "true")

	s, err := newLoader(t).Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "v2", s.Version)
	assert.Equal(t, ":9999", s.Listen)
	assert.Equal(t, domain.StorageSettings{Backend: domain.StorageMemory}, s.Storage)
	assert.True(t, s.LogJSON)
}

func TestLoader_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name:    "malformed yaml",
			content: "version: [v1\n",
			wantErr: domain.ErrConfigParseFailed.Error(),
		},
		{
			name:    "missing version",
			content: "origin: https://journal.example.com\n",
			wantErr: domain.ErrInvalidConfig.Error(),
		},
		{
			name:    "missing origin",
			content: "version: v1\n",
			wantErr: domain.ErrInvalidConfig.Error(),
		},
		{
			name:    "invalid version characters",
			content: "version: v 1\norigin: https://journal.example.com\n",
			wantErr: domain.ErrInvalidVersion.Error(),
		},
		{
			name:    "non http origin",
			content: "version: v1\norigin: ftp://journal.example.com\n",
			wantErr: domain.ErrInvalidOrigin.Error(),
		},
		{
			name:    "origin with path prefix",
			content: "version: v1\norigin: https://journal.example.com/app/\n",
			wantErr: domain.ErrInvalidOrigin.Error(),
		},
		{
			name:    "origin with query",
			content: "version: v1\norigin: https://journal.example.com/?a=b\n",
			wantErr: domain.ErrInvalidOrigin.Error(),
		},
		{
			name:    "relative manifest path",
			content: "version: v1\norigin: https://journal.example.com\nmanifest: [app.js]\n",
			wantErr: domain.ErrInvalidConfig.Error(),
		},
		{
			name:    "unknown strategy",
			content: "version: v1\norigin: https://journal.example.com\nstrategy: network-only\n",
			wantErr: domain.ErrInvalidConfig.Error(),
		},
		{
			name:    "unknown backend",
			content: "version: v1\norigin: https://journal.example.com\nstorage:\n  backend: redis\n",
			wantErr: domain.ErrInvalidConfig.Error(),
		},
		{
			name:    "bad timeout",
			content: "version: v1\norigin: https://journal.example.com\nfetch_timeout: soon\n",
			wantErr: domain.ErrInvalidConfig.Error(),
		},
		{
			name:    "same prefixes",
			content: "version: v1\norigin: https://journal.example.com\npartitions:\n  static_prefix: aqt\n  runtime_prefix: aqt\n",
			wantErr: domain.ErrInvalidConfig.Error(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, t.TempDir(), tt.content)
			_, err := newLoader(t).LoadFile(path)
			require.Error(t, err)
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestLoader_UnreadableFile(t *testing.T) {
	_, err := newLoader(t).LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.ErrorContains(t, err, domain.ErrConfigReadFailed.Error())
}
