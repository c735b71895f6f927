// Package cli implements the chainlens command-line interface.
//
// This package provides commands for fetching bitcoin address details,
// building address relationship graphs, serving the HTTP API, and
// inspecting the upstream call log. The CLI is built using cobra and
// supports verbose logging via the charmbracelet/log library.
//
// # Commands
//
// The main commands are:
//   - address: Fetch transaction details for a single address
//   - graph: Build an address relationship graph, optionally expanding neighbors
//   - serve: Run the HTTP API server
//   - calls: Inspect the upstream call log of a running server
//   - cache: Manage the page cache
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging.
package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/chainlens/chainlens/internal/config"
	"github.com/chainlens/chainlens/pkg/blockchain"
	"github.com/chainlens/chainlens/pkg/buildinfo"
	"github.com/chainlens/chainlens/pkg/cache"
	"github.com/chainlens/chainlens/pkg/calllog"
	"github.com/chainlens/chainlens/pkg/ratelimit"
)

// appName is the application name used for directories and display.
const appName = "chainlens"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Chainlens explores bitcoin address relationship graphs",
		Long:         `Chainlens fetches address transaction history from a public ledger API under a strict rate budget and turns it into an address relationship graph that can be explored address by address.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "path to a TOML config file")

	root.AddCommand(c.addressCommand())
	root.AddCommand(c.graphCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.callsCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// loadConfig loads the configuration from --config, falling back to
// defaults and environment overrides.
func (c *CLI) loadConfig() (*config.Config, error) {
	return config.Load(c.configPath)
}

// newClient assembles a rate-governed ledger client from the config.
// The returned cleanup closes the cache backend.
func (c *CLI) newClient(ctx context.Context, cfg *config.Config, noCache bool) (*blockchain.Client, func(), error) {
	c.registerHooks()

	store, err := c.newPageCache(ctx, cfg, noCache)
	if err != nil {
		return nil, nil, err
	}

	gov := ratelimit.New(cfg.GovernorConfig())
	client := blockchain.NewClient(cfg.ClientConfig(), gov, calllog.New(0), store)
	return client, func() { _ = store.Close() }, nil
}

// newPageCache creates the page cache backend selected in the config.
func (c *CLI) newPageCache(ctx context.Context, cfg *config.Config, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}

	switch cfg.Cache.Backend {
	case config.CacheBackendNone:
		return cache.NewNullCache(), nil
	case config.CacheBackendRedis:
		return cache.NewRedisCache(ctx, cfg.RedisCacheConfig())
	default:
		dir := cfg.Cache.Dir
		if dir == "" {
			var err error
			if dir, err = cacheDir(); err != nil {
				return cache.NewNullCache(), nil
			}
		}
		return cache.NewFileCache(dir)
	}
}

// cacheDir returns the cache directory using XDG standard (~/.cache/chainlens/).
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
