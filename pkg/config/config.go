// Package config loads crimeviz settings.
//
// Settings are layered: [Default] values, then the TOML file
// (~/.config/crimeviz/config.toml or an explicit path), then CRIMEVIZ_*
// environment variables. Command-line flags are applied on top by the CLI.
//
//	# config.toml
//	[pie]
//	min_label_percent = 2
//
//	[palette]
//	ROBBERY = "#ff0000"
//
//	[cache]
//	redis_url = "redis://localhost:6379/0"
//
// Environment variables follow envconfig naming, for example
// CRIMEVIZ_SERVER_ADDR, CRIMEVIZ_CACHE_REDIS_URL or CRIMEVIZ_PIE_MARGIN.
package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/kelseyhightower/envconfig"

	"github.com/matzehuels/crimeviz/pkg/chart/bar"
	"github.com/matzehuels/crimeviz/pkg/chart/palette"
	"github.com/matzehuels/crimeviz/pkg/chart/pie"
	"github.com/matzehuels/crimeviz/pkg/errors"
)

const (
	appName   = "crimeviz"
	envPrefix = "CRIMEVIZ"
)

// Config is the full settings tree.
type Config struct {
	Pie     pie.Options       `toml:"pie"`
	Bar     bar.Options       `toml:"bar"`
	Palette map[string]string `toml:"palette"` // category colour overrides
	Cache   Cache             `toml:"cache"`
	HTTP    HTTP              `toml:"http"`
	Source  Source            `toml:"source"`
	Server  Server            `toml:"server"`
}

// Cache configures the artifact cache.
type Cache struct {
	Disabled bool          `toml:"disabled"`
	Dir      string        `toml:"dir"`
	RedisURL string        `toml:"redis_url" split_words:"true"` // replaces the file cache when set
	Prefix   string        `toml:"prefix"`
	TTL      time.Duration `toml:"ttl"`
}

// HTTP configures record downloads.
type HTTP struct {
	CacheDir string        `toml:"cache_dir" split_words:"true"`
	CacheTTL time.Duration `toml:"cache_ttl" split_words:"true"`
	Timeout  time.Duration `toml:"timeout"`
	Attempts int           `toml:"attempts"`
}

// Source names the default borough record source.
type Source struct {
	Records         string `toml:"records"` // file path, http(s) URL or mongodb:// URI
	MongoDatabase   string `toml:"mongo_database" split_words:"true"`
	MongoCollection string `toml:"mongo_collection" split_words:"true"`
}

// Server configures `crimeviz serve`.
type Server struct {
	Addr         string        `toml:"addr"`
	ReadTimeout  time.Duration `toml:"read_timeout" split_words:"true"`
	WriteTimeout time.Duration `toml:"write_timeout" split_words:"true"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Pie: pie.DefaultOptions(),
		Bar: bar.DefaultOptions(),
		Cache: Cache{
			Dir:    filepath.Join(cacheHome(), appName, "artifacts"),
			Prefix: appName + ":",
			TTL:    7 * 24 * time.Hour,
		},
		HTTP: HTTP{
			CacheDir: filepath.Join(cacheHome(), appName, "http"),
			CacheTTL: 24 * time.Hour,
			Timeout:  30 * time.Second,
			Attempts: 3,
		},
		Source: Source{
			MongoDatabase:   appName,
			MongoCollection: "crime_stats",
		},
		Server: Server{
			Addr:         ":8080",
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
	}
}

// DefaultPath returns ~/.config/crimeviz/config.toml, honouring
// XDG_CONFIG_HOME.
func DefaultPath() string {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, appName, "config.toml")
}

// Load builds the configuration. An empty path reads DefaultPath when it
// exists; an explicit path must exist.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := decodeFile(path, &cfg); err != nil {
				return Config{}, err
			}
		} else if explicit {
			return Config{}, errors.Wrap(errors.ErrCodeFileNotFound, err, "config file %s", path)
		}
	}

	if err := envconfig.Process(envPrefix, &cfg); err != nil {
		return Config{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "environment")
	}
	cfg.Pie.SetDefaults()
	cfg.Bar.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func decodeFile(path string, cfg *Config) error {
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return errors.New(errors.ErrCodeInvalidConfig, "%s: unknown keys %s", path, strings.Join(keys, ", "))
	}
	return nil
}

// Validate checks every section.
func (c Config) Validate() error {
	if err := c.Pie.Validate(); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "[pie]")
	}
	if err := c.Bar.Validate(); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "[bar]")
	}
	if err := c.CategoryPalette().Validate(); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "[palette]")
	}
	if c.Cache.TTL < 0 || c.HTTP.CacheTTL < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "cache ttl must not be negative")
	}
	if c.HTTP.Attempts < 1 {
		return errors.New(errors.ErrCodeInvalidConfig, "http attempts must be at least 1, got %d", c.HTTP.Attempts)
	}
	if c.Server.Addr == "" {
		return errors.New(errors.ErrCodeInvalidConfig, "server addr is empty")
	}
	return nil
}

// CategoryPalette returns the category colours with the [palette]
// overrides applied.
func (c Config) CategoryPalette() palette.Palette {
	return palette.Categories().With(c.Palette)
}

func cacheHome() string {
	if dir := os.Getenv("XDG_CACHE_HOME"); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return os.TempDir()
	}
	return filepath.Join(home, ".cache")
}
