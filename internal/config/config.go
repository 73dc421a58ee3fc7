// Package config loads the object manager's tunables from a YAML file,
// following the same viper-based pattern the rest of this codebase uses
// for configuration.
package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// Config holds the ambient knobs an embedder of this module may want to
// override. Storage layout constants (page size, header size, ...) are
// compile-time in internal/storage, since the wire format they describe
// is not something a config file can safely change after pages already
// exist on disk.
type Config struct {
	// BufferPoolCapacity is the number of frames the buffer pool keeps
	// resident.
	BufferPoolCapacity int `mapstructure:"buffer_pool_capacity"`

	// DataDir is the base directory LocalFileSet resolves segment files
	// under.
	DataDir string `mapstructure:"data_dir"`

	// ExtentFillFactor is the default eff hint handed to the extent
	// allocator for new files.
	ExtentFillFactor int16 `mapstructure:"extent_fill_factor"`

	// LogLevel is parsed by the caller into a log/slog.Level; kept as a
	// string here so the config file stays human-editable ("debug",
	// "info", "warn", "error").
	LogLevel string `mapstructure:"log_level"`
}

// Default returns the configuration used when no file is supplied.
func Default() Config {
	return Config{
		BufferPoolCapacity: 128,
		DataDir:            "./data",
		ExtentFillFactor:   100,
		LogLevel:           "info",
	}
}

// Load reads a YAML config file at path and unmarshals it over the
// defaults. A missing path falls back to Default() untouched.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		return cfg, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("config: unmarshal %s: %w", path, err)
	}
	return cfg, nil
}
