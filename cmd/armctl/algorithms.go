package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/teslashibe/go-planar-arm/pkg/kinematics"
)

var algorithmsCmd = &cobra.Command{
	Use:     "algorithms",
	Aliases: []string{"algs"},
	Short:   "List the available solvers and their defaults",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "NAME\tMAX ITERATIONS\tTOLERANCE\t")
		for _, alg := range kinematics.Algorithms() {
			solver, err := kinematics.NewSolver(alg)
			if err != nil {
				return err
			}
			d := solver.Defaults()
			name := string(alg)
			if alg == kinematics.DefaultAlgorithm {
				name += " (default)"
			}
			fmt.Fprintf(w, "%s\t%d\t%g\t\n", name, d.MaxIterations, d.Tolerance)
		}
		return w.Flush()
	},
}
