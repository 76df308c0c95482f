package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	platformcmd "github.com/muslimbek77/tanlov-ai/internal/platform/cmd"
	"github.com/muslimbek77/tanlov-ai/internal/services/dashboard"
)

func newServeCmd(app *cli) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the dashboard API",
		Long: `Serve the dashboard API: catalogs, transliteration, language options and
settings for the browser dashboard. Stops gracefully on SIGINT or SIGTERM.`,
		Args: cobra.NoArgs,
		RunE: app.traced(platformcmd.ServiceDashboard, func(cmd *cobra.Command, _ []string) error {
			return app.runServe(cmd, addr)
		}),
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default: TANLOV_HTTP_ADDR)")
	return cmd
}

func (c *cli) runServe(cmd *cobra.Command, addr string) error {
	ctx := cmd.Context()
	if addr == "" {
		addr = c.cfg.HTTPAddr
	}
	store, err := c.openStore(ctx)
	if err != nil {
		return err
	}
	server, err := dashboard.NewServer(dashboard.Config{
		HTTPAddr: addr,
		Settings: store,
		Logger:   c.logger.With(zap.String("component", platformcmd.ServiceDashboard)),
	})
	if err != nil {
		return err
	}
	return server.ListenAndServe(ctx)
}
