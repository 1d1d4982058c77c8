package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mikecbrant/glowcycle/internal/records"
	"github.com/mikecbrant/glowcycle/internal/tracker"
)

func newPeriodCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{Use: "period", Short: "Manage period entries"}

	var in tracker.PeriodInput
	add := &cobra.Command{
		Use:   "add",
		Short: "Record a period start date",
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := c.tracker().SavePeriod(cmd.Context(), in)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "saved %s for %s\n", e.Date.Format(records.DateLayout), e.User)
			return nil
		},
	}
	add.Flags().StringVar(&in.User, "user", "", "user id")
	add.Flags().StringVar(&in.Date, "date", "", "start date (YYYY-MM-DD)")
	add.Flags().IntVar(&in.CycleLength, "cycle-length", 0, "self-reported cycle length")
	add.Flags().IntVar(&in.UserAge, "age", 0, "self-reported age")
	add.Flags().StringVar(&in.Notes, "notes", "", "free-form notes")

	var listUser string
	list := &cobra.Command{
		Use:   "list",
		Short: "List period entries, newest first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			periods, err := c.tracker().ListPeriods(cmd.Context(), listUser)
			if err != nil {
				return err
			}
			for _, p := range periods {
				line := p.Date.Format(records.DateLayout)
				if p.CycleLength > 0 {
					line += fmt.Sprintf(" cycle=%d", p.CycleLength)
				}
				if p.Notes != "" {
					line += " " + p.Notes
				}
				fmt.Fprintln(cmd.OutOrStdout(), line)
			}
			return nil
		},
	}
	list.Flags().StringVar(&listUser, "user", "", "user id")

	var delUser, delDate string
	del := &cobra.Command{
		Use:   "delete",
		Short: "Delete the period entry for a date",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := c.tracker().DeletePeriod(cmd.Context(), delUser, delDate); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %s for %s\n", delDate, delUser)
			return nil
		},
	}
	del.Flags().StringVar(&delUser, "user", "", "user id")
	del.Flags().StringVar(&delDate, "date", "", "start date to delete")

	for _, sub := range []*cobra.Command{add, list, del} {
		_ = sub.MarkFlagRequired("user")
	}
	_ = add.MarkFlagRequired("date")
	_ = del.MarkFlagRequired("date")
	cmd.AddCommand(add, list, del)
	return cmd
}

func newJournalCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{Use: "journal", Short: "Manage journal entries"}

	var in tracker.JournalInput
	add := &cobra.Command{
		Use:   "add",
		Short: "Write a journal slot, replacing any entry already there",
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := c.tracker().SaveJournal(cmd.Context(), in)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "saved %s for %s\n", records.JournalSK(e.Date, e.DayPeriod), e.User)
			return nil
		},
	}
	add.Flags().StringVar(&in.User, "user", "", "user id")
	add.Flags().StringVar(&in.Date, "date", "", "entry date (YYYY-MM-DD)")
	add.Flags().BoolVar(&in.Night, "night", false, "evening entry")
	add.Flags().StringVar(&in.Feeling, "feeling", "", strings.Join(moodNames(), ", "))
	add.Flags().IntVar(&in.Energy, "energy", 0, "energy 0-100")
	add.Flags().StringVar(&in.Thoughts, "thoughts", "", "free-form thoughts")
	add.Flags().StringSliceVar(&in.Tags, "tags", nil, "comma-separated tags")
	for _, f := range []string{"user", "date", "feeling", "energy"} {
		_ = add.MarkFlagRequired(f)
	}

	var (
		listUser  string
		listLimit int
	)
	list := &cobra.Command{
		Use:   "list",
		Short: "List journal entries, newest first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			entries, err := c.tracker().ListJournal(cmd.Context(), listUser, listLimit)
			if err != nil {
				return err
			}
			for _, e := range entries {
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s energy=%d %s\n",
					records.JournalSK(e.Date, e.DayPeriod), e.Mood, e.Energy, strings.Join(e.Tags, ","))
			}
			return nil
		},
	}
	list.Flags().StringVar(&listUser, "user", "", "user id")
	list.Flags().IntVar(&listLimit, "limit", 20, "maximum entries")
	_ = list.MarkFlagRequired("user")

	cmd.AddCommand(add, list)
	return cmd
}

func newSkinCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{Use: "skin", Short: "Inspect skin analyses"}
	var (
		user  string
		limit int
	)
	list := &cobra.Command{
		Use:   "list",
		Short: "List skin analyses, newest first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			analyses, err := c.tracker().ListSkinAnalyses(cmd.Context(), user, limit)
			if err != nil {
				return err
			}
			for _, a := range analyses {
				fmt.Fprintf(cmd.OutOrStdout(), "%s health=%.0f %s\n", records.SkinSK(a.TakenAt), a.OverallHealth, a.Summary)
			}
			return nil
		},
	}
	list.Flags().StringVar(&user, "user", "", "user id")
	list.Flags().IntVar(&limit, "limit", 5, "maximum analyses")
	_ = list.MarkFlagRequired("user")
	cmd.AddCommand(list)
	return cmd
}

func moodNames() []string {
	out := make([]string, 0, len(records.Moods))
	for _, m := range records.Moods {
		out = append(out, string(m))
	}
	return out
}
