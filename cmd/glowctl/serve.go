package main

import (
	"github.com/spf13/cobra"

	"github.com/mikecbrant/glowcycle/internal/httpapi"
	"github.com/mikecbrant/glowcycle/internal/utils/logging"
)

func newServeCmd(c *cli) *cobra.Command {
	var debug bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := c.service()
			if err != nil {
				return err
			}
			srv := httpapi.New(svc, c.tracker(), httpapi.Config{
				AllowOrigins: c.cfg.Server.AllowOrigins,
				Debug:        debug,
				Gatherer:     c.registry,
				WellnessRate: httpapi.RateLimit{PerMinute: c.cfg.Server.WellnessPerMinute, Burst: c.cfg.Server.WellnessBurst},
			}, c.logger)
			c.logger.Info("glowctl.serve", logging.Fields{"table": c.cfg.Table, "provider": c.cfg.Generator.Provider})
			return srv.Run(cmd.Context(), c.cfg.Server.Addr, c.cfg.Server.ReadTimeout, c.cfg.Server.WriteTimeout)
		},
	}
	cmd.Flags().String("addr", "", "listen address (overrides server.addr)")
	cmd.Flags().BoolVar(&debug, "debug", false, "gin debug mode")
	if err := c.v.BindPFlag("server.addr", cmd.Flags().Lookup("addr")); err != nil {
		panic(err)
	}
	return cmd
}
