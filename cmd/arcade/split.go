package main

import (
	"fmt"
	"image/png"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"assessment-games-go/internal/game/puzzle"
)

var splitSeed int64

var splitCmd = &cobra.Command{
	Use:   "split [image] [rows] [cols] [dir]",
	Short: "Cut an image into puzzle pieces and write them as PNG files",
	Args:  cobra.ExactArgs(4),
	RunE: func(cmd *cobra.Command, args []string) error {
		rows, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid rows %q", args[1])
		}
		cols, err := strconv.Atoi(args[2])
		if err != nil {
			return fmt.Errorf("invalid cols %q", args[2])
		}

		var opts []puzzle.SplitterOption
		if cmd.Flags().Changed("seed") {
			opts = append(opts, puzzle.WithSeed(splitSeed))
		}
		pieces, err := newSplitter(cmd.Context(), opts...).Split(cmd.Context(), args[0], rows, cols)
		if err != nil {
			return err
		}

		dir := args[3]
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
		for _, p := range pieces {
			name := filepath.Join(dir, fmt.Sprintf("piece-%02d.png", p.Index))
			f, err := os.Create(name)
			if err != nil {
				return err
			}
			err = png.Encode(f, p.Image)
			if cerr := f.Close(); err == nil {
				err = cerr
			}
			if err != nil {
				return fmt.Errorf("write %s: %w", name, err)
			}
		}
		logger.Info("wrote puzzle pieces", "count", len(pieces), "dir", dir)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(splitCmd)
	splitCmd.Flags().Int64Var(&splitSeed, "seed", 0, "Seed for the tab pattern")
}
