package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"assessment-games-go/internal/bundle"
	"assessment-games-go/internal/library"
)

var (
	bundleGrades  []string
	bundleTags    []string
	bundleTypes   []string
	bundleSearch  string
	bundleSubject string
	bundleStatus  string
	bundleSort    string
	bundleLimit   int
)

var bundleCmd = &cobra.Command{
	Use:   "bundle",
	Short: "Manage material bundles",
}

var bundleImportCmd = &cobra.Command{
	Use:   "import [file]",
	Short: "Add a bundle JSON file to the library",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		b := &bundle.Bundle{}
		if err := json.Unmarshal(data, b); err != nil {
			return fmt.Errorf("decode bundle: %w", err)
		}

		ctx := cmd.Context()
		if err := migrateStore(ctx); err != nil {
			return err
		}
		svc, closeAll, err := openBundleService(ctx)
		if err != nil {
			return err
		}
		defer closeAll()

		created, err := svc.Create(ctx, b)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), created.ID)
		return nil
	},
}

var bundleListCmd = &cobra.Command{
	Use:   "list",
	Short: "List material bundles",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		filter := bundle.NewFilter()
		filter.Limit = bundleLimit
		for _, g := range bundleGrades {
			filter.Grades = append(filter.Grades, bundle.Grade(strings.ToUpper(g)))
		}
		filter.Tags = bundleTags
		for _, t := range bundleTypes {
			filter.Types = append(filter.Types, bundle.MaterialType(t))
		}
		filter.Search = bundleSearch
		filter.Subject = bundleSubject
		filter.Status = bundle.Status(bundleStatus)
		switch f := bundle.SortField(bundleSort); f {
		case bundle.SortTitle:
			filter.Sort = bundle.Sort{Field: f}
		case bundle.SortCreatedAt, bundle.SortUpdatedAt:
			filter.Sort = bundle.Sort{Field: f, Desc: true}
		default:
			return fmt.Errorf("unknown sort %q", bundleSort)
		}

		ctx := cmd.Context()
		svc, closeAll, err := openBundleService(ctx)
		if err != nil {
			return err
		}
		defer closeAll()

		bundles, err := svc.List(ctx, filter)
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tTitle\tStatus\tGrades\tAssessments\tUpdated")
		for _, b := range bundles {
			grades := make([]string, len(b.Metadata.Grades))
			for i, g := range b.Metadata.Grades {
				grades[i] = string(g)
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%s\n", b.ID, b.Title, b.Status,
				strings.Join(grades, ","), len(b.Contents.Assessments), b.UpdatedAt.Format("2006-01-02 15:04"))
		}
		return w.Flush()
	},
}

// openBundleService returns a bundle service that checks linked ids
// against the assessment library
func openBundleService(ctx context.Context) (bundle.Service, func(), error) {
	store, closeStore, err := openStore(ctx)
	if err != nil {
		return nil, nil, err
	}
	bundles, closeBundles, err := openBundleStore(ctx)
	if err != nil {
		closeStore()
		return nil, nil, err
	}
	svc := bundle.NewService(bundles, library.NewService(store, logger), logger)
	return svc, func() {
		closeBundles()
		closeStore()
	}, nil
}

func init() {
	rootCmd.AddCommand(bundleCmd)
	bundleCmd.AddCommand(bundleImportCmd, bundleListCmd)

	f := bundleListCmd.Flags()
	f.StringSliceVar(&bundleGrades, "grade", nil, "Only bundles for these grades (K, 1-12)")
	f.StringSliceVar(&bundleTags, "tag", nil, "Only bundles with one of these tag ids or names")
	f.StringSliceVar(&bundleTypes, "type", nil, "Only bundles holding one of these material types")
	f.StringVar(&bundleSearch, "search", "", "Match title, description, subject or tags")
	f.StringVar(&bundleSubject, "subject", "", "Only bundles for this subject")
	f.StringVar(&bundleStatus, "status", "", "Only bundles with this status")
	f.StringVar(&bundleSort, "sort", string(bundle.SortCreatedAt), "Sort by title, created_at or updated_at")
	f.IntVar(&bundleLimit, "limit", 50, "Maximum number of bundles")
}
