package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/teslashibe/go-planar-arm/pkg/kinematics"
)

// benchTargets are reachable by the default arm from its rest pose.
var benchTargets = []string{"6,6", "1,8", "5.3,2.1", "-6,3"}

var (
	benchRuns       int
	benchTargetArgs []string
	benchSequential bool

	benchCmd = &cobra.Command{
		Use:   "bench",
		Short: "Compare every solver on a set of targets",
		Long: `bench solves each target with every algorithm and reports the outcome,
iterations, residual distance and mean wall time over --runs repetitions.

By default every solve starts from the configured rest pose. With
--sequential each algorithm walks the targets in order instead.`,
		Args: cobra.NoArgs,
		RunE: runBench,
	}
)

func init() {
	benchCmd.Flags().IntVarP(&benchRuns, "runs", "n", 10, "repetitions per solve")
	benchCmd.Flags().StringArrayVarP(&benchTargetArgs, "target", "t", benchTargets, "target as x,y (repeatable)")
	benchCmd.Flags().BoolVar(&benchSequential, "sequential", false, "chain targets instead of resetting the arm")
}

type benchRow struct {
	alg     kinematics.Algorithm
	target  [2]float64
	result  kinematics.Result
	average time.Duration
}

func runBench(cmd *cobra.Command, args []string) error {
	if benchRuns < 1 {
		return fmt.Errorf("--runs must be at least 1")
	}
	targets := make([][2]float64, len(benchTargetArgs))
	for i, a := range benchTargetArgs {
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
	rest, err := cfg.ArmSpec().Build()
	if err != nil {
		return err
	}
	params := cfg.ControllerOptions().Params

	var rows []benchRow
	for _, alg := range kinematics.Algorithms() {
		solver, err := kinematics.NewSolver(alg)
		if err != nil {
			return err
		}
		start := rest.Clone()
		for _, t := range targets {
			row, end, err := benchOne(solver, start, t, params)
			if err != nil {
				return err
			}
			rows = append(rows, row)
			if benchSequential {
				start = end
			}
		}
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, titleStyle.Render(fmt.Sprintf("Solver benchmark (%d runs each)", benchRuns)))
	fmt.Fprintln(out)

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, headerStyle.Render("ALGORITHM")+"\t"+headerStyle.Render("TARGET")+"\t"+
		headerStyle.Render("OUTCOME")+"\t"+headerStyle.Render("ITER")+"\t"+
		headerStyle.Render("DISTANCE")+"\t"+headerStyle.Render("MEAN"))
	for _, r := range rows {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%.5f\t%s\n",
			r.alg, formatPoint(r.target), outcomeText(r.result.Outcome.String()),
			r.result.Iterations, r.result.Distance, r.average)
	}
	return w.Flush()
}

// benchOne solves target benchRuns times from copies of start and returns the
// last result with the arm it produced.
func benchOne(solver kinematics.Solver, start *kinematics.Arm, target [2]float64, p kinematics.Params) (benchRow, *kinematics.Arm, error) {
	var (
		total time.Duration
		res   kinematics.Result
		end   *kinematics.Arm
	)
	for i := 0; i < benchRuns; i++ {
		end = start.Clone()
		var err error
		if res, err = solver.Solve(end, r2.Vec{X: target[0], Y: target[1]}, p); err != nil {
			return benchRow{}, nil, err
		}
		total += res.Elapsed
	}
	return benchRow{
		alg:     solver.Algorithm(),
		target:  target,
		result:  res,
		average: total / time.Duration(benchRuns),
	}, end, nil
}
