package domain

import "go.trai.ch/zerr"

var (
	// ErrInstallFailed is returned when a controller cannot populate its static partition.
	ErrInstallFailed = zerr.New("controller installation failed")

	// ErrManifestFetchFailed is returned when a manifest asset cannot be fetched.
	ErrManifestFetchFailed = zerr.New("failed to fetch manifest asset")

	// ErrManifestAssetRejected is returned when a manifest asset responds with a non-cacheable status.
	ErrManifestAssetRejected = zerr.New("manifest asset response is not cacheable")

	// ErrActivateFailed is returned when a controller cannot complete activation.
	ErrActivateFailed = zerr.New("controller activation failed")

	// ErrInvalidTransition is returned when a lifecycle transition is not allowed from the current state.
	ErrInvalidTransition = zerr.New("invalid lifecycle transition")

	// ErrInvalidState is returned when a lifecycle state name is not recognized.
	ErrInvalidState = zerr.New("unknown controller state")

	// ErrControllerRedundant is returned when an event is dispatched to a superseded controller.
	ErrControllerRedundant = zerr.New("controller is redundant")

	// ErrNoActiveController is returned when an operation requires an active controller.
	ErrNoActiveController = zerr.New("no active controller")

	// ErrNoWaitingController is returned when skip-waiting is requested without a waiting controller.
	ErrNoWaitingController = zerr.New("no waiting controller")

	// ErrUnknownEvent is returned when an event kind has no registered handler.
	ErrUnknownEvent = zerr.New("unknown event kind")

	// ErrInvalidPushPayload is returned when a push payload cannot be decoded.
	ErrInvalidPushPayload = zerr.New("invalid push payload")

	// ErrNotificationNotFound is returned when a notification id is unknown.
	ErrNotificationNotFound = zerr.New("notification not found")

	// ErrClientNotFound is returned when a client id is unknown.
	ErrClientNotFound = zerr.New("client not found")

	// ErrInvalidStrategy is returned when a strategy name is not recognized.
	ErrInvalidStrategy = zerr.New("invalid strategy, expected 'cache-first' or 'stale-while-revalidate'")

	// ErrInvalidOrigin is returned when the configured origin is not an absolute http(s) URL.
	ErrInvalidOrigin = zerr.New("origin must be an absolute http or https URL")

	// ErrInvalidVersion is returned when a version tag is empty or contains invalid characters.
	ErrInvalidVersion = zerr.New("version can only contain alphanumeric characters, dots, hyphens and underscores")

	// ErrInvalidManifestPath is returned when a manifest entry is not root-relative.
	ErrInvalidManifestPath = zerr.New("manifest paths must be root-relative")

	// ErrInvalidStorageBackend is returned when the storage backend is not recognized.
	ErrInvalidStorageBackend = zerr.New("invalid storage backend, expected 'memory', 'fs' or 'badger'")

	// ErrStoreOpenFailed is returned when the cache storage cannot be opened.
	ErrStoreOpenFailed = zerr.New("failed to open cache storage")

	// ErrStoreCreateFailed is returned when a partition cannot be created.
	ErrStoreCreateFailed = zerr.New("failed to create cache partition")

	// ErrStoreReadFailed is returned when a cache entry cannot be read.
	ErrStoreReadFailed = zerr.New("failed to read cache entry")

	// ErrStoreUnmarshalFailed is returned when a cache entry cannot be decoded.
	ErrStoreUnmarshalFailed = zerr.New("failed to unmarshal cache entry")

	// ErrStoreMarshalFailed is returned when a cache entry cannot be encoded.
	ErrStoreMarshalFailed = zerr.New("failed to marshal cache entry")

	// ErrStoreWriteFailed is returned when a cache entry cannot be written.
	ErrStoreWriteFailed = zerr.New("failed to write cache entry")

	// ErrStoreDeleteFailed is returned when a cache entry or partition cannot be deleted.
	ErrStoreDeleteFailed = zerr.New("failed to delete from cache storage")

	// ErrStoreListFailed is returned when partitions or keys cannot be listed.
	ErrStoreListFailed = zerr.New("failed to list cache storage")

	// ErrResponseReadFailed is returned when a network response body cannot be buffered.
	ErrResponseReadFailed = zerr.New("failed to read response body")

	// ErrConfigReadFailed is returned when the config file cannot be read.
	ErrConfigReadFailed = zerr.New("failed to read config file")

	// ErrConfigParseFailed is returned when the config file cannot be parsed.
	ErrConfigParseFailed = zerr.New("failed to parse config file")

	// ErrConfigNotFound is returned when the config file cannot be found.
	ErrConfigNotFound = zerr.New("could not find aqtcache.yaml")

	// ErrInvalidConfig is returned when the config file contains invalid values.
	ErrInvalidConfig = zerr.New("invalid configuration")

	// ErrServeFailed is returned when the HTTP front end stops with an error.
	ErrServeFailed = zerr.New("server failed")
)
