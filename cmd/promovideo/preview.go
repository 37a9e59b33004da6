package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/idamadam/promovideo/internal/preview"
)

func newPreviewCommand(ctx *commandContext) *cobra.Command {
	var (
		output    string
		every     int
		columns   int
		tileWidth int
	)

	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Draw a storyboard PNG of sampled frames",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			opts := cfg.Preview
			if cmd.Flags().Changed("output") {
				opts.Output = output
			}
			if cmd.Flags().Changed("every") {
				opts.Every = every
			}
			if cmd.Flags().Changed("columns") {
				opts.Columns = columns
			}
			if cmd.Flags().Changed("tile-width") {
				opts.TileWidth = tileWidth
			}

			comp, sc, err := ctx.composition()
			if err != nil {
				return err
			}
			board := preview.NewBoard(comp, sc, ctx.logger())
			sheet, err := board.Storyboard(preview.Options{
				Every:     opts.Every,
				Columns:   opts.Columns,
				TileWidth: opts.TileWidth,
			})
			if err != nil {
				return err
			}
			if err := preview.WritePNG(opts.Output, sheet); err != nil {
				return err
			}

			ctx.logger().Info("Storyboard saved", zap.String("path", opts.Output))
			fmt.Fprintf(cmd.OutOrStdout(), "storyboard -> %s\n", opts.Output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "PNG file to write")
	cmd.Flags().IntVar(&every, "every", 0, "Sample one frame out of every N")
	cmd.Flags().IntVar(&columns, "columns", 0, "Tiles per row")
	cmd.Flags().IntVar(&tileWidth, "tile-width", 0, "Tile width in pixels")
	return cmd
}
