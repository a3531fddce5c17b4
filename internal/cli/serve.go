package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/mavenclosure/internal/config"
	"github.com/matzehuels/mavenclosure/internal/server"
	"github.com/matzehuels/mavenclosure/pkg/cache"
)

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr       string
		repository string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve dependency resolution over HTTP",
		Long: `Serve starts an HTTP service answering

  GET /v1/resolve?artifact=g:a:v[&exclude=g:a][&optional=g:a][&format=tree]
  GET /healthz

Repository responses and rendered results are cached in the configured
backend. With the file backend, results are kept in memory.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("addr") {
				cfg.Server.Addr = addr
			}
			if cmd.Flags().Changed("repository") {
				cfg.Repository = repository
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			store, err := newCache(ctx, cfg.Cache, false)
			if err != nil {
				return err
			}
			defer store.Close()

			results := store
			if cfg.Cache.Backend == config.BackendFile {
				mem := cache.NewMemoryCache(cfg.Cache.Size, cfg.Cache.TTL.Duration)
				defer mem.Close()
				results = mem
			}

			_, reset := installHooks(c.Logger)
			defer reset()

			srv := server.New(server.Options{
				Repository: cfg.Repository,
				Client:     newClient(store, cfg),
				Results:    results,
				ResultTTL:  cfg.Cache.TTL.Duration,
				Workers:    cfg.Workers,
				Exclude:    cfg.Exclude,
				Optional:   cfg.Optional,
				Logger:     c.Logger,
			})
			printInfo("Serving dependency resolution")
			printKeyValue("Address", cfg.Server.Addr)
			printKeyValue("Repository", cfg.Repository)
			printKeyValue("Cache", cfg.Cache.Backend)
			return srv.ListenAndServe(ctx, cfg.Server.Addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default :8080)")
	cmd.Flags().StringVarP(&repository, "repository", "r", "", "repository base URL or local path")
	return cmd
}
