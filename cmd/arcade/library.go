package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"assessment-games-go/internal/game"
	"assessment-games-go/internal/library"
)

var (
	listType  string
	listLimit int
)

var importCmd = &cobra.Command{
	Use:   "import [file]",
	Short: "Add an assessment JSON file to the library",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		a, err := game.DecodeAssessment(data)
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		if err := migrateStore(ctx); err != nil {
			return err
		}
		store, closeStore, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer closeStore()

		created, err := library.NewService(store, logger).Create(ctx, a)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), created.Base().ID)
		return nil
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the assessments in the library",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		store, closeStore, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer closeStore()

		filter := library.NewFilter()
		filter.Limit = listLimit
		if listType != "" {
			t := game.AssessmentType(listType)
			filter.Type = &t
		}
		items, err := library.NewService(store, logger).List(ctx, filter)
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tTitle\tType\tUpdated")
		for _, s := range items {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", s.ID, s.Title, s.Type, s.UpdatedAt.Format("2006-01-02 15:04"))
		}
		return w.Flush()
	},
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or upgrade the library schema",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := migrateStore(cmd.Context()); err != nil {
			return err
		}
		logger.Info("library schema is up to date", "driver", cfg.DatabaseDriver)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(importCmd, listCmd, migrateCmd)
	listCmd.Flags().StringVar(&listType, "type", "", "Only list this assessment type")
	listCmd.Flags().IntVar(&listLimit, "limit", 50, "Maximum number of assessments")
}
