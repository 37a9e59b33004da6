package main

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newFrameCommand(ctx *commandContext) *cobra.Command {
	var compact bool

	cmd := &cobra.Command{
		Use:   "frame <n>",
		Short: "Print the render state of one frame",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("frame must be an integer: %w", err)
			}
			comp, _, err := ctx.composition()
			if err != nil {
				return err
			}
			rs, err := comp.Evaluate(n)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			if !compact {
				enc.SetIndent("", "  ")
			}
			return enc.Encode(rs)
		},
	}

	cmd.Flags().BoolVar(&compact, "compact", false, "Print a single line")
	return cmd
}
