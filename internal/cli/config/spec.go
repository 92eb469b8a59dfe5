// Package config defines the CLI configuration structure.
package config

// Config is the configuration for diskemb-cli.
type Config struct {
	Store    StoreConfig    `koanf:"store"`
	Snapshot SnapshotConfig `koanf:"snapshot"`
	Log      LogConfig      `koanf:"log"`
}

// StoreConfig configures the embedded store.
type StoreConfig struct {
	// Dir is the store directory.
	Dir string `koanf:"dir"`

	// ReadOnly opens the store without write capability.
	ReadOnly bool `koanf:"read_only"`

	// SyncWrites enables fsync after each write.
	SyncWrites bool `koanf:"sync_writes"`

	// CacheSize is the block cache size in bytes.
	CacheSize int64 `koanf:"cache_size"`
}

// SnapshotConfig configures the managed snapshot directory.
type SnapshotConfig struct {
	// Dir is the managed snapshot directory.
	Dir string `koanf:"dir"`

	RetentionCount int `koanf:"retention_count"`
	RetentionDays  int `koanf:"retention_days"`
}

// LogConfig configures CLI logging.
type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// Default returns the default CLI configuration.
func Default() *Config {
	return &Config{
		Store: StoreConfig{
			Dir:       "./data",
			CacheSize: 64 << 20,
		},
		Snapshot: SnapshotConfig{
			Dir:            "./snapshots",
			RetentionCount: 5,
			RetentionDays:  7,
		},
		Log: LogConfig{
			Level:  "warn",
			Format: "text",
		},
	}
}
