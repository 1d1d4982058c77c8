package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mikecbrant/glowcycle/internal/wellness"
)

func newSupportCmd(c *cli) *cobra.Command {
	var (
		user, name string
		asJSON     bool
	)
	cmd := &cobra.Command{
		Use:   "support",
		Short: "Generate a support message for a user",
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := c.service()
			if err != nil {
				return err
			}
			res, err := svc.Generate(cmd.Context(), wellness.Request{User: user, DisplayName: name})
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(res)
			}
			fmt.Fprintln(out, res.Message)
			fmt.Fprintf(out, "source=%s phase=%s day=%d/%d feeling=%s energy=%d defaulted=%t\n",
				res.Source, res.Basis.CyclePhase, res.Basis.CycleDay, res.Basis.CycleLength,
				res.Basis.Feeling, res.Basis.Energy, res.Basis.CycleDefaulted)
			return nil
		},
	}
	cmd.Flags().StringVar(&user, "user", "", "user id")
	cmd.Flags().StringVar(&name, "name", "", "display name override")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the full result as JSON")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}
