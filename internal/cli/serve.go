package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/chainlens/chainlens/internal/config"
	"github.com/chainlens/chainlens/internal/server"
	"github.com/chainlens/chainlens/pkg/session"
)

// serveCommand creates the "serve" command running the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var listen string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if listen != "" {
				cfg.Server.Listen = listen
			}

			ctx := cmd.Context()
			client, cleanup, err := c.newClient(ctx, cfg, false)
			if err != nil {
				return err
			}
			defer cleanup()

			store, err := c.newSessionStore(ctx, cfg)
			if err != nil {
				return err
			}
			defer store.Close(context.Background())

			svc := session.NewService(client, store, cfg.Sessions.PageLimit, cfg.SessionTTL())
			srv := server.New(client, svc, client.Calls(), c.Logger)

			c.Logger.Info("starting server",
				"cache", cfg.Cache.Backend,
				"sessions", cfg.Sessions.Backend,
				"min_delay", cfg.RateLimit.MinDelaySeconds,
				"max_per_window", cfg.RateLimit.MaxRequestsPerWindow)
			return srv.ListenAndServe(ctx, cfg.Server.Listen)
		},
	}

	cmd.Flags().StringVar(&listen, "listen", "", "listen address (overrides config)")

	return cmd
}

// newSessionStore creates the session backend selected in the config.
func (c *CLI) newSessionStore(ctx context.Context, cfg *config.Config) (session.Store, error) {
	if cfg.Sessions.Backend == config.SessionBackendMongo {
		return session.NewMongoStore(ctx, cfg.MongoSessionConfig())
	}
	return session.NewMemoryStore(), nil
}
