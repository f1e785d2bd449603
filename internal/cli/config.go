package cli

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/topdag/pkg/toptree"
)

// Config holds defaults loaded from .topdag.toml. Command-line flags
// override everything in here.
type Config struct {
	// MinRatio is the default minimum edge ratio for the RePair variant.
	MinRatio float64 `toml:"min_ratio"`

	// OutputDir is where compress writes archives when -o is not given.
	OutputDir string `toml:"output_dir"`

	Cache CacheConfig `toml:"cache"`
	Mongo MongoConfig `toml:"mongo"`
}

// CacheConfig selects and configures the artifact cache backend.
type CacheConfig struct {
	// Backend is "file", "redis" or "none".
	Backend string `toml:"backend"`
	// Dir is the file backend's directory. Defaults to
	// $HOME/.cache/topdag.
	Dir string `toml:"dir"`
	// RedisAddr is the redis backend's host:port.
	RedisAddr string `toml:"redis_addr"`
}

// MongoConfig configures the optional evaluation result sink.
type MongoConfig struct {
	URI      string `toml:"uri"`
	Database string `toml:"database"`
}

// defaultConfig returns the configuration used when no config file
// exists.
func defaultConfig() Config {
	return Config{
		MinRatio:  toptree.DefaultMinRatio,
		OutputDir: ".",
		Cache: CacheConfig{
			Backend: "file",
		},
		Mongo: MongoConfig{
			Database: "topdag",
		},
	}
}

// configPaths lists the locations probed for a config file, most
// specific first.
func configPaths() []string {
	paths := []string{".topdag.toml"}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "topdag", "config.toml"))
	}
	return paths
}

// loadConfigOrDefault reads the first config file found, falling back
// to defaults on absence or parse errors. A broken config file must not
// make the CLI unusable.
func loadConfigOrDefault() Config {
	cfg := defaultConfig()
	for _, path := range configPaths() {
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return defaultConfig()
		}
		break
	}
	if cfg.MinRatio <= 1 {
		cfg.MinRatio = toptree.DefaultMinRatio
	}
	return cfg
}

// cacheDir returns the directory for the file cache backend.
func (c CacheConfig) cacheDir() string {
	if c.Dir != "" {
		return c.Dir
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".cache", "topdag")
	}
	return filepath.Join(os.TempDir(), "topdag-cache")
}
