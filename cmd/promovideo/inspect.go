package main

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/idamadam/promovideo/internal/director"
	"github.com/idamadam/promovideo/internal/effects"
	"github.com/idamadam/promovideo/internal/engine"
	"github.com/idamadam/promovideo/internal/renderer"
)

func newInspectCommand(ctx *commandContext) *cobra.Command {
	var (
		frame  int
		curves bool
	)

	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Show the scenario timeline, elements and state tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			comp, sc, err := ctx.composition()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			if cmd.Flags().Changed("frame") {
				rs, err := comp.Evaluate(frame)
				if err != nil {
					return err
				}
				printFrame(out, rs)
				return nil
			}

			plan, err := sc.Compile()
			if err != nil {
				return err
			}
			printTimeline(out, sc, plan.Total)
			printElements(out, sc, plan)
			printMachines(out, plan)
			if curves {
				return printCurves(out, sc)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&frame, "frame", "f", 0, "Show the evaluated elements of one frame instead")
	cmd.Flags().BoolVar(&curves, "curves", false, "Print element tracks as piecewise-linear expressions")
	return cmd
}

func itoa(n int) string { return strconv.Itoa(n) }

func printTimeline(out io.Writer, sc *director.Scenario, total int) {
	fmt.Fprintf(out, "Timeline: %d frames @ %d fps (%.2fs), %dx%d\n", total, sc.FPS, float64(total)/float64(sc.FPS), sc.Width, sc.Height)

	rows := make([][]string, 0, len(sc.Scenes))
	for _, s := range sc.Scenes {
		n := 0
		effects.Walk(s.Elements, func(effects.ElementSpec, int) { n++ })
		rows = append(rows, []string{s.ID, itoa(s.Start), itoa(s.End()), itoa(s.Duration), itoa(n)})
	}
	fmt.Fprintln(out, renderTable(
		[]string{"Scene", "Start", "End", "Frames", "Elements"}, rows,
		[]columnAlignment{alignLeft, alignRight, alignRight, alignRight, alignRight}))

	if len(sc.Transitions) == 0 {
		return
	}
	rows = rows[:0]
	for _, w := range sc.Transitions {
		rows = append(rows, []string{w.From, w.To, itoa(w.Start), itoa(w.End)})
	}
	fmt.Fprintln(out, renderTable(
		[]string{"From", "To", "Start", "End"}, rows,
		[]columnAlignment{alignLeft, alignLeft, alignRight, alignRight}))
}

func printElements(out io.Writer, sc *director.Scenario, plan *director.Plan) {
	var rows [][]string
	for _, s := range sc.Scenes {
		settle := plan.Evaluators[s.ID].SettleFrames()
		effects.Walk(s.Elements, func(spec effects.ElementSpec, depth int) {
			exit := "end"
			if spec.Exit > 0 {
				exit = itoa(spec.Exit)
			}
			motion := spec.Motion
			if motion == "" {
				motion = effects.MotionLinear
			}
			rest := "-"
			if n, ok := settle[spec.ID]; ok {
				rest = itoa(n)
			}
			rows = append(rows, []string{
				strings.Repeat("  ", depth) + spec.ID, s.ID, itoa(spec.Enter), exit, motion, rest, itoa(len(spec.Tracks)),
			})
		})
	}
	fmt.Fprintln(out, renderTable(
		[]string{"Element", "Scene", "Enter", "Exit", "Motion", "Settles", "Tracks"}, rows,
		[]columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignLeft, alignRight, alignRight}))
}

func printMachines(out io.Writer, plan *director.Plan) {
	if len(plan.Machines) == 0 {
		return
	}
	var rows [][]string
	for _, m := range plan.Machines {
		for _, l := range m.Leaves() {
			rows = append(rows, []string{m.Name(), itoa(l.Start), itoa(l.End), l.State, l.Previous, l.Group, itoa(l.Fade)})
		}
	}
	fmt.Fprintln(out, renderTable(
		[]string{"Machine", "Start", "End", "State", "Previous", "Group", "Fade"}, rows,
		[]columnAlignment{alignLeft, alignRight, alignRight, alignLeft, alignLeft, alignLeft, alignRight}))
}

func printCurves(out io.Writer, sc *director.Scenario) error {
	var rows [][]string
	for _, s := range sc.Scenes {
		var errs []error
		effects.Walk(s.Elements, func(spec effects.ElementSpec, _ int) {
			for _, t := range spec.Tracks {
				expr, err := trackExpression(t)
				if err != nil {
					errs = append(errs, fmt.Errorf("%s.%s: %w", spec.ID, t.Property, err))
					continue
				}
				rows = append(rows, []string{spec.ID, t.Property, expr})
			}
		})
		if err := errors.Join(errs...); err != nil {
			return err
		}
	}
	if len(rows) == 0 {
		fmt.Fprintln(out, "No element tracks.")
		return nil
	}
	fmt.Fprintln(out, renderTable([]string{"Element", "Property", "Expression (t = element frame)"}, rows, nil))
	return nil
}

func trackExpression(t effects.Track) (string, error) {
	left, err := renderer.ParseExtrapolation(t.Left)
	if err != nil {
		return "", err
	}
	right, err := renderer.ParseExtrapolation(t.Right)
	if err != nil {
		return "", err
	}
	fn, err := renderer.LookupEasing(t.Easing)
	if err != nil {
		return "", err
	}
	c, err := renderer.NewCurve(t.Frames, t.Values, renderer.Options{Left: left, Right: right, Easing: fn})
	if err != nil {
		return "", err
	}
	expr, err := c.Expression("t")
	if errors.Is(err, renderer.ErrEasedCurve) {
		return fmt.Sprintf("(eased: %s)", t.Easing), nil
	}
	return expr, err
}

func printFrame(out io.Writer, rs engine.RenderState) {
	fmt.Fprintf(out, "Frame %d\n", rs.Frame)

	rows := make([][]string, 0, len(rs.Layers))
	for _, l := range rs.Layers {
		rows = append(rows, []string{l.SceneID, itoa(l.LocalFrame), fmt.Sprintf("%.3f", l.Blend)})
	}
	fmt.Fprintln(out, renderTable([]string{"Scene", "Local", "Blend"}, rows,
		[]columnAlignment{alignLeft, alignRight, alignRight}))

	ids := make([]string, 0, len(rs.Elements))
	for id := range rs.Elements {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	rows = rows[:0]
	for _, id := range ids {
		e := rs.Elements[id]
		rows = append(rows, []string{
			id, e.Scene, itoa(e.Local),
			fmt.Sprintf("%.3f", e.Opacity),
			fmt.Sprintf("%.1f", e.TranslateX),
			fmt.Sprintf("%.1f", e.TranslateY),
			fmt.Sprintf("%.3f", e.Scale),
		})
	}
	fmt.Fprintln(out, renderTable(
		[]string{"Element", "Scene", "Local", "Opacity", "X", "Y", "Scale"}, rows,
		[]columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignRight, alignRight, alignRight}))

	names := make([]string, 0, len(rs.States))
	for name := range rs.States {
		names = append(names, name)
	}
	sort.Strings(names)
	rows = rows[:0]
	for _, name := range names {
		r := rs.States[name]
		rows = append(rows, []string{name, r.State, r.Previous, fmt.Sprintf("%.2f", r.Progress)})
	}
	if len(rows) > 0 {
		fmt.Fprintln(out, renderTable([]string{"Machine", "State", "Previous", "Progress"}, rows,
			[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight}))
	}
}
