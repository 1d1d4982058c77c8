package main

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mikecbrant/glowcycle/internal/awssdk"
	"github.com/mikecbrant/glowcycle/internal/awssdk/dynamo"
	"github.com/mikecbrant/glowcycle/internal/config"
	"github.com/mikecbrant/glowcycle/internal/generator"
	"github.com/mikecbrant/glowcycle/internal/metrics"
	"github.com/mikecbrant/glowcycle/internal/store"
	"github.com/mikecbrant/glowcycle/internal/tracker"
	"github.com/mikecbrant/glowcycle/internal/utils/logging"
	"github.com/mikecbrant/glowcycle/internal/wellness"
)

// cli carries resolved configuration and the collaborators commands share.
type cli struct {
	v       *viper.Viper
	cfgFile string
	envFile string
	cfg     config.Config
	logger  logging.Logger
	logOut  io.Writer

	registry *prometheus.Registry
	store    store.Store
	awsCfg   aws.Config

	openStore     func(ctx context.Context, c config.Config, logger logging.Logger) (store.Store, aws.Config, error)
	openGenerator func(c config.Config, awsCfg aws.Config, logger logging.Logger) (wellness.MessageGenerator, error)
}

func newCLI() *cli {
	return &cli{
		v:             viper.New(),
		logOut:        os.Stderr,
		registry:      prometheus.NewRegistry(),
		openStore:     openDynamo,
		openGenerator: generator.New,
	}
}

func openDynamo(ctx context.Context, c config.Config, logger logging.Logger) (store.Store, aws.Config, error) {
	awsCfg, err := awssdk.LoadDefault(ctx, awssdk.Options{Region: c.Region, Profile: c.Profile})
	if err != nil {
		return nil, aws.Config{}, err
	}
	return dynamo.New(dynamo.NewClient(awsCfg, c.Endpoint), c.Table, logger), awsCfg, nil
}

// load resolves configuration and opens the store; it runs before every
// subcommand.
func (c *cli) load(cmd *cobra.Command) error {
	cfg, err := config.Load(c.v, c.cfgFile, c.envFile)
	if err != nil {
		return err
	}
	c.cfg = cfg
	c.logger = logging.NewSlog(slog.New(slog.NewJSONHandler(c.logOut, &slog.HandlerOptions{Level: logging.ParseLevel(cfg.LogLevel)})))
	s, awsCfg, err := c.openStore(cmd.Context(), cfg, c.logger)
	if err != nil {
		return err
	}
	c.store, c.awsCfg = s, awsCfg
	return nil
}

func (c *cli) tracker() *tracker.Tracker { return tracker.New(c.store, c.logger) }

func (c *cli) service() (*wellness.Service, error) {
	gen, err := c.openGenerator(c.cfg.Generator, c.awsCfg, c.logger)
	if err != nil {
		return nil, err
	}
	obs, err := metrics.NewPrometheusObserver(metrics.DefaultNamespace, c.registry)
	if err != nil {
		return nil, err
	}
	return wellness.NewService(c.store, gen,
		wellness.WithLogger(c.logger),
		wellness.WithObserver(obs),
		wellness.WithMaxOutputTokens(c.cfg.MaxOutputTokens),
		wellness.WithLimits(wellness.Limits{
			Periods:  c.cfg.Query.Periods,
			Journals: c.cfg.Query.Journals,
			Skins:    c.cfg.Query.Skins,
		}),
	), nil
}
