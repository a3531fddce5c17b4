package cli

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/mavenclosure/internal/config"
	"github.com/matzehuels/mavenclosure/pkg/buildinfo"
	"github.com/matzehuels/mavenclosure/pkg/cache"
	"github.com/matzehuels/mavenclosure/pkg/integrations"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "mavenclosure"

	// httpNamespace prefixes repository response cache keys.
	httpNamespace = "maven"

	// retryDelay is the initial backoff between repository retries.
	retryDelay = 500 * time.Millisecond
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// Stdout receives command results and nothing else.
	Stdout io.Writer

	configPath string
}

// New creates a new CLI instance with a default logger writing to w.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Stdout: os.Stdout,
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// verbose reports whether debug logging is enabled.
func (c *CLI) verbose() bool {
	return c.Logger.GetLevel() <= log.DebugLevel
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "mavenclosure resolves transitive Maven dependency closures",
		Long: `mavenclosure computes the flat, conflict-resolved set of artifacts a build
needs for one or more Maven coordinates, reading POMs from a Maven 2 layout
repository (remote or local).`,
		Version:       buildinfo.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/mavenclosure/config.toml)")

	root.AddCommand(c.resolveCommand())
	root.AddCommand(c.treeCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.versionCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// loadConfig reads the config file named by --config (or the default path)
// and the environment.
func (c *CLI) loadConfig() (config.Config, error) {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return config.Config{}, err
	}
	c.Logger.Debug("config loaded", "repository", cfg.Repository, "cache", cfg.Cache.Backend)
	return cfg, nil
}

// =============================================================================
// Cache & Client Factory
// =============================================================================

// newCache opens the response cache selected by cfg.
func newCache(ctx context.Context, cfg config.CacheConfig, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	switch cfg.Backend {
	case config.BackendNone:
		return cache.NewNullCache(), nil
	case config.BackendMemory:
		return cache.NewMemoryCache(cfg.Size, cfg.TTL.Duration), nil
	case config.BackendRedis:
		return cache.NewRedisCache(ctx, cfg.RedisURL)
	default:
		dir := cfg.Dir
		if dir == "" {
			d, err := cacheDir()
			if err != nil {
				return cache.NewNullCache(), nil
			}
			dir = d
		}
		return cache.NewFileCache(dir)
	}
}

// newClient creates the repository client shared by all roots of one run.
func newClient(c cache.Cache, cfg config.Config) *integrations.Client {
	headers := map[string]string{"User-Agent": buildinfo.UserAgent()}
	return integrations.NewClient(c, httpNamespace, cfg.Cache.TTL.Duration, headers,
		integrations.WithTimeout(cfg.Timeout.Duration),
		integrations.WithRetries(cfg.Retries, retryDelay),
	)
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/mavenclosure/).
func cacheDir() (string, error) {
	return config.DefaultCacheDir()
}
