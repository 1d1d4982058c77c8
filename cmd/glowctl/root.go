package main

import (
	"github.com/spf13/cobra"
)

// flag name -> config key
var persistentBindings = map[string]string{
	"table":     "table",
	"region":    "region",
	"profile":   "profile",
	"endpoint":  "endpoint",
	"log-level": "log_level",
	"provider":  "generator.provider",
	"model":     "generator.model",
}

func newRootCmd(c *cli) *cobra.Command {
	root := &cobra.Command{
		Use:           "glowctl",
		Short:         "GlowCycle wellness service and record management",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return c.load(cmd)
		},
	}
	pf := root.PersistentFlags()
	pf.StringVar(&c.cfgFile, "config", "", "YAML config file")
	pf.StringVar(&c.envFile, "env-file", ".env", "optional .env file")
	pf.String("table", "", "DynamoDB table name")
	pf.String("region", "", "AWS region")
	pf.String("profile", "", "AWS shared-config profile")
	pf.String("endpoint", "", "DynamoDB endpoint override (e.g. DynamoDB Local)")
	pf.String("log-level", "", "debug, info, warn or error")
	pf.String("provider", "", "message generator: bedrock or openai")
	pf.String("model", "", "generator model id")
	for flag, key := range persistentBindings {
		if err := c.v.BindPFlag(key, pf.Lookup(flag)); err != nil {
			panic(err)
		}
	}

	root.AddCommand(
		newServeCmd(c),
		newSupportCmd(c),
		newPeriodCmd(c),
		newJournalCmd(c),
		newSkinCmd(c),
		newSeedCmd(c),
		newClearCmd(c),
	)
	return root
}
