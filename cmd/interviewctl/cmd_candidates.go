package main

import (
	"fmt"
	"text/tabwriter"

	"interviewassist/core/internal/models"
	"interviewassist/core/internal/roster"

	"github.com/spf13/cobra"
)

type candidatesOptions struct {
	driver string
	dsn    string
}

func newCandidatesCommand(opts *rootOptions) *cobra.Command {
	co := &candidatesOptions{}
	cmd := &cobra.Command{
		Use:   "candidates",
		Short: "Browse the candidate roster",
		Long: `Browse the candidate roster stored by the server. The database defaults
to DATABASE_DRIVER and DATABASE_DSN.`,
	}

	cmd.PersistentFlags().StringVar(&co.driver, "driver", "", "Database driver (sqlite, postgres)")
	cmd.PersistentFlags().StringVar(&co.dsn, "dsn", "", "Database DSN")

	cmd.AddCommand(newCandidatesListCommand(opts, co))
	cmd.AddCommand(newCandidatesShowCommand(opts, co))

	return cmd
}

func (co *candidatesOptions) open(opts *rootOptions) (*roster.Roster, func(), error) {
	cfg := roster.DatabaseConfig{Driver: opts.cfg.DatabaseDriver, DSN: opts.cfg.DatabaseDSN}
	if co.driver != "" {
		cfg.Driver = co.driver
	}
	if co.dsn != "" {
		cfg.DSN = co.dsn
	}

	db, err := roster.OpenDatabase(cfg)
	if err != nil {
		return nil, nil, err
	}
	closeFn := func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	return roster.New(db, opts.logger), closeFn, nil
}

func newCandidatesListCommand(opts *rootOptions, co *candidatesOptions) *cobra.Command {
	filter := models.CandidateFilter{}
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List candidates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, closeFn, err := co.open(opts)
			if err != nil {
				return err
			}
			defer closeFn()

			candidates, err := r.List(cmd.Context(), filter)
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), candidates)
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tEMAIL\tSTATUS\tSCORE")
			for _, c := range candidates {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\n", c.ID, c.Name, c.Email, c.Status, c.Score)
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVarP(&filter.Search, "search", "s", "", "Match against name or email")
	cmd.Flags().StringVar(&filter.Status, "status", "all", "Filter by status: pending, in-progress, completed or all")
	cmd.Flags().StringVar(&filter.SortBy, "sort", roster.SortByScore, "Sort by score, name or date")
	cmd.Flags().IntVar(&filter.Limit, "limit", 0, "Maximum number of candidates, 0 for no limit")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON instead of a table")

	return cmd
}

func newCandidatesShowCommand(opts *rootOptions, co *candidatesOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show <candidate-id>",
		Short: "Show one candidate with their answers",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, closeFn, err := co.open(opts)
			if err != nil {
				return err
			}
			defer closeFn()

			candidate, err := r.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), candidate)
		},
	}
}
