package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/idamadam/promovideo/internal/engine"
	"github.com/idamadam/promovideo/internal/video"
)

func newRenderCommand(ctx *commandContext) *cobra.Command {
	var (
		output string
		from   int
		to     int
		stats  bool
		dryRun bool
	)

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Evaluate every frame and write the render states as JSON Lines",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("output") {
				cfg.OutputPath = output
			}
			if cmd.Flags().Changed("from") {
				cfg.From = from
			}
			if cmd.Flags().Changed("to") {
				cfg.To = to
			}
			if stats {
				cfg.ShowStats = true
			}

			sc, err := ctx.loadScenario()
			if err != nil {
				return err
			}

			var sink video.FrameSink = video.Discard{}
			if !dryRun {
				jw, err := video.Create(cfg.OutputPath)
				if err != nil {
					return err
				}
				sink = jw
			}

			report, err := engine.NewProject(cfg, sc, sink, ctx.logger()).Run(cmd.Context())
			if cerr := sink.Close(); err == nil {
				err = cerr
			}
			if err != nil {
				return err
			}

			if !dryRun {
				ctx.logger().Info("Frames written", zap.String("path", cfg.OutputPath))
				fmt.Fprintf(cmd.OutOrStdout(), "%d frames -> %s\n", report.Stats.Frames, cfg.OutputPath)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "%d frames evaluated\n", report.Stats.Frames)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Output JSON Lines file")
	cmd.Flags().IntVar(&from, "from", 0, "First frame to render")
	cmd.Flags().IntVar(&to, "to", 0, "Frame to stop before (0: end of timeline)")
	cmd.Flags().BoolVar(&stats, "stats", false, "Print a performance report and append it to the benchmark log")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Evaluate frames without writing them")
	return cmd
}
