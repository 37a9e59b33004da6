package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/idamadam/promovideo/internal/director"
)

func newScenarioCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scenario",
		Short: "Write or validate scenario files",
	}
	cmd.AddCommand(newScenarioWriteCommand(ctx))
	cmd.AddCommand(newScenarioValidateCommand(ctx))
	return cmd
}

func newScenarioWriteCommand(ctx *commandContext) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "write",
		Short: "Write the built-in reference timeline as YAML",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			path := output
			if path == "" {
				path = director.GenerateScenarioPath(cfg.ScenariosDir, time.Now())
			}
			if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
				return err
			}
			if err := director.WriteScenario(director.Reference(), path); err != nil {
				return err
			}
			ctx.logger().Info("Scenario saved", zap.String("path", path))
			fmt.Fprintf(cmd.OutOrStdout(), "scenario -> %s\n", path)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default: timestamped file in the scenarios directory)")
	return cmd
}

func newScenarioValidateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "validate [file]",
		Short: "Check a scenario and report every problem",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if len(args) == 1 {
				cfg.ScenarioPath = args[0]
			}
			comp, sc, err := ctx.composition()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "ok: %d scenes, %d transitions, %d frames\n",
				len(sc.Scenes), len(sc.Transitions), comp.TotalFrames())
			return nil
		},
	}
}
