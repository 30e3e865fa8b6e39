package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/shaderport/pkg/errors"
)

const configFileName = "shaderport.toml"

// Cache backends.
const (
	backendFile   = "file"
	backendMemory = "memory"
	backendRedis  = "redis"
	backendNone   = "none"
)

// Config is the optional shaderport.toml. Flags override its values.
type Config struct {
	Manifest   string      `toml:"manifest"`
	Strict     bool        `toml:"strict"`
	ForceUnlit bool        `toml:"force_unlit"`
	Cache      CacheConfig `toml:"cache"`
}

// CacheConfig selects the cache backend.
type CacheConfig struct {
	Backend  string   `toml:"backend"`
	Dir      string   `toml:"dir"`
	RedisURL string   `toml:"redis_url"`
	Size     int      `toml:"size"`
	TTL      duration `toml:"ttl"`
}

// duration decodes TOML strings like "72h".
type duration struct{ time.Duration }

func (d *duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func defaultConfig() Config {
	return Config{Cache: CacheConfig{Backend: backendFile, Size: 256}}
}

// loadConfig reads path, or the first config file found in the working
// directory and the XDG config directory. A missing default file is not an
// error; a missing explicit one is.
func (c *CLI) loadConfig(path string) error {
	explicit := path != ""
	if !explicit {
		path = findConfig()
		if path == "" {
			return nil
		}
	}
	cfg, err := readConfig(path)
	if err != nil {
		if !explicit && os.IsNotExist(err) {
			return nil
		}
		return err
	}
	c.Config = cfg
	c.Logger.Debug("loaded config", "path", path, "cache", cfg.Cache.Backend)
	return nil
}

func findConfig() string {
	candidates := []string{configFileName}
	if dir, err := configDir(); err == nil {
		candidates = append(candidates, filepath.Join(dir, "config.toml"))
	}
	for _, p := range candidates {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

func readConfig(path string) (Config, error) {
	cfg := defaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	md, err := toml.Decode(string(data), &cfg)
	if err != nil {
		return cfg, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return cfg, errors.New(errors.ErrCodeInvalidInput, "%s: unknown key %q", path, undecoded[0].String())
	}
	switch cfg.Cache.Backend {
	case backendFile, backendMemory, backendNone:
	case backendRedis:
		if cfg.Cache.RedisURL == "" {
			return cfg, errors.New(errors.ErrCodeInvalidInput, "%s: cache backend redis needs redis_url", path)
		}
	default:
		return cfg, errors.New(errors.ErrCodeInvalidInput, "%s: unknown cache backend %q", path, cfg.Cache.Backend)
	}
	if cfg.Cache.Size <= 0 {
		return cfg, fmt.Errorf("%s: cache size must be positive", path)
	}
	return cfg, nil
}
