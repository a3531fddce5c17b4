// Package config loads mavenclosure settings.
//
// Settings come from, in increasing precedence: built-in defaults, a TOML
// file, a .env file, MAVENCLOSURE_* environment variables and command-line
// flags (applied by the caller). A sample file:
//
//	repository = "https://repo1.maven.org/maven2"
//	exclude    = ["commons-logging:commons-logging"]
//	optional   = ["org.slf4j:slf4j-api"]
//	workers    = 8
//	timeout    = "10s"
//	retries    = 2
//
//	[cache]
//	backend = "file"   # file, memory, redis or none
//	ttl     = "24h"
//
//	[server]
//	addr = ":8080"
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/matzehuels/mavenclosure/pkg/errors"
	"github.com/matzehuels/mavenclosure/pkg/integrations"
	"github.com/matzehuels/mavenclosure/pkg/integrations/maven"
	"github.com/matzehuels/mavenclosure/pkg/resolve"
)

const appName = "mavenclosure"

// EnvPrefix prefixes every environment override.
const EnvPrefix = "MAVENCLOSURE_"

// Cache backends.
const (
	BackendFile   = "file"
	BackendMemory = "memory"
	BackendRedis  = "redis"
	BackendNone   = "none"
)

// Config is the merged configuration.
type Config struct {
	Repository string   `toml:"repository"`
	Exclude    []string `toml:"exclude"`
	Optional   []string `toml:"optional"`
	Workers    int      `toml:"workers"`
	Timeout    Duration `toml:"timeout"`
	Retries    int      `toml:"retries"`

	Cache  CacheConfig  `toml:"cache"`
	Server ServerConfig `toml:"server"`
}

// CacheConfig selects the persistent response cache.
type CacheConfig struct {
	Backend  string   `toml:"backend"`
	TTL      Duration `toml:"ttl"`
	Dir      string   `toml:"dir"`       // file backend; defaults to the user cache dir
	Size     int      `toml:"size"`      // memory backend entry limit
	RedisURL string   `toml:"redis_url"` // redis backend
}

// ServerConfig configures "mavenclosure serve".
type ServerConfig struct {
	Addr string `toml:"addr"`
}

// Duration is a time.Duration written as "10s" or "24h" in TOML.
type Duration struct {
	time.Duration
}

// UnmarshalText parses a duration string.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(strings.TrimSpace(string(text)))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText formats the duration.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Repository: maven.DefaultRepository,
		Workers:    resolve.DefaultWorkers,
		Timeout:    Duration{integrations.DefaultTimeout},
		Cache: CacheConfig{
			Backend: BackendFile,
			TTL:     Duration{24 * time.Hour},
			Size:    10000,
		},
		Server: ServerConfig{Addr: ":8080"},
	}
}

// DefaultPath returns $XDG_CONFIG_HOME/mavenclosure/config.toml, falling
// back to ~/.config.
func DefaultPath() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, appName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, "config.toml"), nil
}

// DefaultCacheDir returns $XDG_CACHE_HOME/mavenclosure, falling back to
// ~/.cache.
func DefaultCacheDir() (string, error) {
	if dir := os.Getenv("XDG_CACHE_HOME"); dir != "" {
		return filepath.Join(dir, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// Load builds the configuration from the file at path and the environment.
// An empty path means [DefaultPath], which may be absent; an explicit path
// must exist.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err == nil {
			path = p
		}
	}
	if path != "" {
		if err := cfg.loadFile(path, explicit); err != nil {
			return Config{}, err
		}
	}

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return Config{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "load .env")
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string, explicit bool) error {
	md, err := toml.DecodeFile(path, c)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return nil
		}
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "read config %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return errors.New(errors.ErrCodeInvalidConfig, "config %s: unknown keys %s", path, strings.Join(keys, ", "))
	}
	return nil
}

// ApplyEnv overrides fields from MAVENCLOSURE_* variables read through lookup.
// List values are comma-separated.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	get := func(name string) (string, bool) {
		v, ok := lookup(EnvPrefix + name)
		return strings.TrimSpace(v), ok && strings.TrimSpace(v) != ""
	}

	if v, ok := get("REPOSITORY"); ok {
		c.Repository = v
	}
	if v, ok := get("EXCLUDE"); ok {
		c.Exclude = splitList(v)
	}
	if v, ok := get("OPTIONAL"); ok {
		c.Optional = splitList(v)
	}
	if v, ok := get("CACHE_BACKEND"); ok {
		c.Cache.Backend = v
	}
	if v, ok := get("CACHE_DIR"); ok {
		c.Cache.Dir = v
	}
	if v, ok := get("REDIS_URL"); ok {
		c.Cache.RedisURL = v
	}
	if v, ok := get("SERVER_ADDR"); ok {
		c.Server.Addr = v
	}

	for name, dst := range map[string]*int{"WORKERS": &c.Workers, "RETRIES": &c.Retries, "CACHE_SIZE": &c.Cache.Size} {
		if v, ok := get(name); ok {
			n, err := strconv.Atoi(v)
			if err != nil {
				return errors.New(errors.ErrCodeInvalidConfig, "%s%s: %q is not a number", EnvPrefix, name, v)
			}
			*dst = n
		}
	}
	for name, dst := range map[string]*Duration{"TIMEOUT": &c.Timeout, "CACHE_TTL": &c.Cache.TTL} {
		if v, ok := get(name); ok {
			if err := dst.UnmarshalText([]byte(v)); err != nil {
				return errors.New(errors.ErrCodeInvalidConfig, "%s%s: %q is not a duration", EnvPrefix, name, v)
			}
		}
	}
	return nil
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	invalid := func(format string, args ...any) error {
		return errors.New(errors.ErrCodeInvalidConfig, format, args...)
	}
	switch {
	case strings.TrimSpace(c.Repository) == "":
		return invalid("repository must not be empty")
	case c.Workers < 0:
		return invalid("workers must not be negative (got %d)", c.Workers)
	case c.Retries < 0:
		return invalid("retries must not be negative (got %d)", c.Retries)
	case c.Timeout.Duration < 0:
		return invalid("timeout must not be negative (got %s)", c.Timeout)
	case c.Cache.TTL.Duration < 0:
		return invalid("cache ttl must not be negative (got %s)", c.Cache.TTL)
	}

	switch c.Cache.Backend {
	case BackendFile, BackendMemory, BackendNone:
	case BackendRedis:
		if c.Cache.RedisURL == "" {
			return invalid("cache backend redis requires redis_url")
		}
	default:
		return invalid("unknown cache backend %q (want file, memory, redis or none)", c.Cache.Backend)
	}

	if _, err := resolve.NewConstraints(c.Exclude, c.Optional); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "invalid pattern")
	}
	return nil
}

// Constraints returns the configured exclusions and optional allowlist.
func (c *Config) Constraints() (resolve.Constraints, error) {
	return resolve.NewConstraints(c.Exclude, c.Optional)
}

// String renders the configuration as TOML.
func (c Config) String() string {
	var b strings.Builder
	if err := toml.NewEncoder(&b).Encode(c); err != nil {
		return fmt.Sprintf("%+v", c)
	}
	return b.String()
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
