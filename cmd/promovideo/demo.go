package main

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/idamadam/promovideo/internal/demo"
	"github.com/idamadam/promovideo/internal/state"
)

func newDemoCommand(ctx *commandContext) *cobra.Command {
	var (
		scriptPath string
		fps        int
		replay     bool
	)

	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Play the interactive demo script, or replay it frame by frame",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := ctx.ensureConfig(); err != nil {
				return err
			}
			script := demo.DefaultScript()
			if scriptPath != "" {
				var err error
				if script, err = demo.LoadScript(scriptPath); err != nil {
					return err
				}
			}
			out := cmd.OutOrStdout()

			if replay {
				m, err := script.Machine(fps)
				if err != nil {
					return err
				}
				printReplay(out, m)
				return nil
			}

			player := demo.NewPlayer(script, demo.RealClock, ctx.logger())
			return player.Run(cmd.Context(), func(ev demo.Event) {
				fmt.Fprintf(out, "[%8s] %s\n", ev.Elapsed.Round(time.Millisecond), ev.Action)
			})
		},
	}

	cmd.Flags().StringVar(&scriptPath, "script", "", "YAML demo script (default: the built-in editor walkthrough)")
	cmd.Flags().IntVar(&fps, "fps", 30, "Frame rate used by --replay")
	cmd.Flags().BoolVar(&replay, "replay", false, "Print the script as a deterministic state table instead of playing it")
	return cmd
}

func printReplay(out io.Writer, m *state.Machine) {
	var rows [][]string
	for _, l := range m.Leaves() {
		rows = append(rows, []string{itoa(l.Start), itoa(l.End), l.State, l.Previous})
	}
	fmt.Fprintln(out, renderTable([]string{"Start", "End", "State", "Previous"}, rows,
		[]columnAlignment{alignRight, alignRight, alignLeft, alignLeft}))
}
