package main

import (
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	ctx := newCommandContext()

	rootCmd := &cobra.Command{
		Use:           "promovideo",
		Short:         "Frame-accurate timeline engine for the promo video",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			_, err := ctx.ensureConfig()
			return err
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			ctx.close()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&ctx.configFlag, "config", "c", "", "Configuration file path")
	flags.StringVarP(&ctx.scenarioFlag, "scenario", "s", "", "Scenario file (default: newest file in the scenarios directory, else the built-in reference)")
	flags.StringVar(&ctx.logLevelFlag, "log-level", "", "Console log level: none, normal, debug")
	flags.IntVarP(&ctx.workersFlag, "workers", "w", 0, "Evaluation workers (default: logical CPUs)")

	rootCmd.AddCommand(newRenderCommand(ctx))
	rootCmd.AddCommand(newFrameCommand(ctx))
	rootCmd.AddCommand(newInspectCommand(ctx))
	rootCmd.AddCommand(newPreviewCommand(ctx))
	rootCmd.AddCommand(newDemoCommand(ctx))
	rootCmd.AddCommand(newScenarioCommand(ctx))

	return rootCmd
}
