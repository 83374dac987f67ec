package config

// Configfile represents the structure of the aqtcache.yaml configuration file.
type Configfile struct {
	Version      string        `yaml:"version"       validate:"required"`
	Origin       string        `yaml:"origin"        validate:"required,url"`
	Upstream     string        `yaml:"upstream"      validate:"omitempty,url"`
	Listen       string        `yaml:"listen"`
	Partitions   PartitionsDTO `yaml:"partitions"`
	Manifest     []string      `yaml:"manifest"      validate:"dive,startswith=/"`
	Strategy     string        `yaml:"strategy"      validate:"omitempty,oneof=cache-first stale-while-revalidate"`
	SkipWaiting  *bool         `yaml:"skip_waiting"`
	FetchTimeout string        `yaml:"fetch_timeout"`
	Storage      StorageDTO    `yaml:"storage"`
	Log          LogDTO        `yaml:"log"`
}

// PartitionsDTO configures partition naming.
type PartitionsDTO struct {
	StaticPrefix  string `yaml:"static_prefix"  validate:"omitempty,excludesall=/\\"`
	RuntimePrefix string `yaml:"runtime_prefix" validate:"omitempty,excludesall=/\\"`
}

// StorageDTO selects the cache storage backend.
type StorageDTO struct {
	Backend string `yaml:"backend" validate:"omitempty,oneof=memory fs badger"`
	Path    string `yaml:"path"`
}

// LogDTO configures logging.
type LogDTO struct {
	JSON *bool `yaml:"json"`
	// Trace reports controller spans at debug level. Defaults to true.
	Trace *bool `yaml:"trace"`
}

// envOverrides are applied on top of the file. Unset variables leave the
// file's values untouched.
type envOverrides struct {
	Version        *string `env:"AQTCACHE_VERSION"`
	Origin         *string `env:"AQTCACHE_ORIGIN"`
	Upstream       *string `env:"AQTCACHE_UPSTREAM"`
	Listen         *string `env:"AQTCACHE_LISTEN"`
	StorageBackend *string `env:"AQTCACHE_STORAGE_BACKEND"`
	StoragePath    *string `env:"AQTCACHE_STORAGE_PATH"`
	LogJSON        *bool   `env:"AQTCACHE_LOG_JSON"`
	LogTrace       *bool   `env:"AQTCACHE_LOG_TRACE"`
}
