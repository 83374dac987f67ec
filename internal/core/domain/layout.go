package domain

import "path/filepath"

const (
	// StateDirName is the name of the internal state directory.
	StateDirName = ".aqtcache"

	// PartitionsDirName is the name of the file-backed partition directory.
	PartitionsDirName = "partitions"

	// BadgerDirName is the name of the badger database directory.
	BadgerDirName = "badger"

	// ConfigFileName is the name of the configuration file.
	ConfigFileName = "aqtcache.yaml"

	// DirPerm is the default permission for directories (rwxr-x---).
	DirPerm = 0o750

	// FilePerm is the default permission for files (rw-r--r--).
	FilePerm = 0o644
)

// DefaultPartitionsPath returns the default path for file-backed partitions.
// It joins .aqtcache and partitions.
func DefaultPartitionsPath() string {
	return filepath.Join(StateDirName, PartitionsDirName)
}

// DefaultBadgerPath returns the default path for the badger database.
// It joins .aqtcache and badger.
func DefaultBadgerPath() string {
	return filepath.Join(StateDirName, BadgerDirName)
}
