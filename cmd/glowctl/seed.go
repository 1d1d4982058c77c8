package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"github.com/mikecbrant/glowcycle/internal/fixtures"
	"github.com/mikecbrant/glowcycle/internal/tracker"
)

func newSeedCmd(c *cli) *cobra.Command {
	var (
		dir  string
		demo bool
	)
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load YAML fixtures (and optionally the demo account) into the table",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if dir == "" && !demo {
				return fmt.Errorf("nothing to seed: pass --dir and/or --demo")
			}
			users, err := fixtures.Load(dir, demo)
			if err != nil {
				return err
			}
			limiter := rate.NewLimiter(rate.Limit(c.cfg.Seed.WritesPerSecond), max(c.cfg.Seed.Burst, 1))
			st, err := fixtures.NewSeeder(tracker.New(c.store, c.logger), limiter, c.logger).Seed(cmd.Context(), users)
			fmt.Fprintf(cmd.OutOrStdout(), "seeded %d users (%d writes)\n", st.Users, st.Writes)
			return err
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "", "directory searched recursively for *.yaml fixtures")
	cmd.Flags().BoolVar(&demo, "demo", false, "include the built-in demo account")
	return cmd
}

func newClearCmd(c *cli) *cobra.Command {
	var (
		user string
		yes  bool
	)
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete every record of a user",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !yes {
				return fmt.Errorf("refusing to clear %q without --yes", user)
			}
			n, err := c.tracker().ClearUser(cmd.Context(), user)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %d records for %s\n", n, user)
			return nil
		},
	}
	cmd.Flags().StringVar(&user, "user", "", "user id")
	cmd.Flags().BoolVar(&yes, "yes", false, "confirm deletion")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}
