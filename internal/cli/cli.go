package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/shaderport/pkg/buildinfo"
	"github.com/matzehuels/shaderport/pkg/cache"
	"github.com/matzehuels/shaderport/pkg/errors"
	"github.com/matzehuels/shaderport/pkg/export"
	"github.com/matzehuels/shaderport/pkg/manifest"
)

// appName is used for directories and display.
const appName = "shaderport"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
	Config Config

	configPath string
}

// New creates a CLI logging to w at level.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level), Config: defaultConfig()}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// loadManifest loads the manifest named by path, or by the config file
// when path is empty.
func (c *CLI) loadManifest(path string) (*manifest.Manifest, error) {
	if path == "" {
		path = c.Config.Manifest
	}
	if path == "" {
		return nil, errors.New(errors.ErrCodeManifestMissing,
			"no manifest given; pass --manifest or set manifest in %s", configFileName)
	}
	m, err := manifest.Load(path)
	if err != nil {
		return nil, err
	}
	c.Logger.Debug("loaded manifest", "path", path, "version", m.Version(), "nodes", m.Len())
	return m, nil
}

// newRunner creates an export runner over m with the configured cache.
func (c *CLI) newRunner(ctx context.Context, m *manifest.Manifest, noCache bool) (*export.Runner, error) {
	cc, err := c.newCache(ctx, noCache)
	if err != nil {
		return nil, err
	}
	keyer := cache.NewScopedKeyer(cache.NewDefaultKeyer(), buildinfo.Version+":")
	r := export.NewRunner(m, cc, keyer, c.Logger)
	r.TTL = c.Config.Cache.TTL.Duration
	return r, nil
}

// newCache opens the configured cache backend. Backends that cannot be
// opened fall back to no caching with a warning.
func (c *CLI) newCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	cfg := c.Config.Cache
	if noCache {
		cfg.Backend = backendNone
	}
	switch cfg.Backend {
	case backendNone:
		return cache.NewNullCache(), nil
	case backendMemory:
		return cache.NewMemoryCache(cfg.Size)
	case backendRedis:
		rc, err := cache.NewRedisCache(ctx, cfg.RedisURL, appName+":")
		if err != nil {
			c.Logger.Warn("redis cache unavailable, caching disabled", "error", err)
			return cache.NewNullCache(), nil
		}
		return rc, nil
	}
	dir, err := c.fileCacheDir()
	if err != nil {
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

// cacheDir returns the cache directory using XDG standard (~/.cache/shaderport/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// configDir returns the config directory (~/.config/shaderport/).
func configDir() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName), nil
}
