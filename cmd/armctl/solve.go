package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/teslashibe/go-planar-arm/pkg/arm"
	"github.com/teslashibe/go-planar-arm/pkg/kinematics"
)

var (
	solveAlgorithm string
	solveMaxIter   int
	solveTolerance float64
	solvePatience  int
	solveTrace     bool

	solveCmd = &cobra.Command{
		Use:   "solve x,y [x,y...]",
		Short: "Move the configured arm through one or more targets",
		Long: `solve builds the configured default arm and solves each target in turn,
starting every solve from where the previous one left the arm.`,
		Example: `  armctl solve 6,6
  armctl solve --algorithm fabrik 6,6 1,8 -- -6,3`,
		Args: cobra.MinimumNArgs(1),
		RunE: runSolve,
	}
)

func init() {
	solveCmd.Flags().StringVarP(&solveAlgorithm, "algorithm", "a", "", "solver: jt, dls, sgd or fabrik (default from config)")
	solveCmd.Flags().IntVar(&solveMaxIter, "max-iterations", 0, "iteration budget (0 uses the solver default)")
	solveCmd.Flags().Float64Var(&solveTolerance, "tolerance", 0, "accepted distance (0 uses the solver default)")
	solveCmd.Flags().IntVar(&solvePatience, "patience", 0, "stop after this many iterations without improvement")
	solveCmd.Flags().BoolVar(&solveTrace, "trace", false, "print the end effector after every iteration")
}

func runSolve(cmd *cobra.Command, args []string) error {
	targets := make([][2]float64, len(args))
	for i, a := range args {
		t, err := parseTarget(a)
		if err != nil {
			return err
		}
		targets[i] = t
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	opts := cfg.ControllerOptions()
	if solveAlgorithm != "" {
		if opts.Algorithm, err = kinematics.ParseAlgorithm(solveAlgorithm); err != nil {
			return err
		}
	}

	a, err := cfg.ArmSpec().Build()
	if err != nil {
		return err
	}
	ctrl, err := arm.NewController(a, opts)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	state := ctrl.State()
	fmt.Fprintln(out, titleStyle.Render("Arm"))
	fmt.Fprintf(out, "  angles  %s\n", formatAngles(state.Angles))
	fmt.Fprintf(out, "  tip     %s\n", formatPoint(state.Positions[len(state.Positions)-1]))
	fmt.Fprintf(out, "  reach   %.3f\n\n", a.Reach())

	params := kinematics.Params{
		MaxIterations: solveMaxIter,
		Tolerance:     solveTolerance,
		Patience:      solvePatience,
	}
	if solveTrace {
		params.OnIteration = func(it int, s kinematics.State) {
			fmt.Fprintln(out, mutedStyle.Render(fmt.Sprintf("  %5d  %s", it, formatPoint(s.Positions[len(s.Positions)-1]))))
		}
	}

	for _, t := range targets {
		res, err := ctrl.MoveToWith(r2.Vec{X: t[0], Y: t[1]}, "", params)
		if err != nil {
			return err
		}
		state := ctrl.State()

		fmt.Fprintln(out, titleStyle.Render("Target "+formatPoint(t)))
		fmt.Fprintf(out, "  %-10s %s\n", "algorithm", res.Algorithm)
		fmt.Fprintf(out, "  %-10s %s\n", "outcome", outcomeText(res.Outcome.String()))
		fmt.Fprintf(out, "  %-10s %d\n", "iterations", res.Iterations)
		fmt.Fprintf(out, "  %-10s %.5f\n", "distance", res.Distance)
		fmt.Fprintf(out, "  %-10s %s\n", "elapsed", res.Elapsed)
		fmt.Fprintf(out, "  %-10s %s\n", "angles", formatAngles(state.Angles))
		fmt.Fprintf(out, "  %-10s %s\n\n", "tip", formatPoint(state.Positions[len(state.Positions)-1]))
	}
	return nil
}
