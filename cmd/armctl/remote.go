package main

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/teslashibe/go-planar-arm/internal/httpc"
	"github.com/teslashibe/go-planar-arm/pkg/protocol"
)

var (
	remoteURL     string
	remoteTimeout time.Duration
	remoteAlg     string

	remoteCmd = &cobra.Command{
		Use:   "remote",
		Short: "Drive a running armd over its REST API",
	}

	remoteInitCmd = &cobra.Command{
		Use:   "init",
		Short: "Create the server's default arm",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			state, err := remoteClient().InitDefault(cmd.Context())
			if err != nil {
				return err
			}
			printState(cmd.OutOrStdout(), state)
			return nil
		},
	}

	remoteResetCmd = &cobra.Command{
		Use:   "reset",
		Short: "Discard the server's arm",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return remoteClient().Reset(cmd.Context())
		},
	}

	remotePositionCmd = &cobra.Command{
		Use:   "position",
		Short: "Print joint positions and angles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			state, err := remoteClient().Position(cmd.Context())
			if err != nil {
				return err
			}
			printState(cmd.OutOrStdout(), state)
			return nil
		},
	}

	remoteControlCmd = &cobra.Command{
		Use:   "control joint delta",
		Short: "Move one joint by delta degrees",
		Example: `  armctl remote control 1 10
  armctl remote control -- 1 -10`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			joint, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("joint %q: %w", args[0], err)
			}
			delta, err := strconv.ParseFloat(args[1], 64)
			if err != nil {
				return fmt.Errorf("delta %q: %w", args[1], err)
			}
			state, err := remoteClient().Control(cmd.Context(), joint, delta)
			if err != nil {
				return err
			}
			printState(cmd.OutOrStdout(), state)
			return nil
		},
	}

	remoteMoveToCmd = &cobra.Command{
		Use:   "moveto x,y",
		Short: "Solve for a target on the server",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := parseTarget(args[0])
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), remoteTimeout)
			defer cancel()

			res, err := remoteClient().MoveTo(ctx, &protocol.MoveToCommand{
				Target:    []float64{t[0], t[1]},
				Algorithm: remoteAlg,
			})
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s %s iterations=%d distance=%.5f elapsed=%.2fms\n",
				res.Algorithm, outcomeText(res.Outcome), res.Iterations, res.Distance, res.ElapsedMs)
			printState(out, &protocol.StateData{Positions: res.Positions, Angles: res.Angles})
			return nil
		},
	}
)

func init() {
	remoteCmd.PersistentFlags().StringVar(&remoteURL, "url", "http://localhost:8080", "armd base URL")
	remoteCmd.PersistentFlags().DurationVar(&remoteTimeout, "timeout", 10*time.Second, "request timeout")
	remoteMoveToCmd.Flags().StringVarP(&remoteAlg, "algorithm", "a", "", "solver (default from server)")

	remoteCmd.AddCommand(remoteInitCmd, remoteResetCmd, remotePositionCmd, remoteControlCmd, remoteMoveToCmd)
	rootCmd.AddCommand(remoteCmd)
}

func remoteClient() *httpc.Client {
	return httpc.New(remoteURL, remoteTimeout)
}

func printState(w io.Writer, s *protocol.StateData) {
	if s.ID != "" {
		fmt.Fprintf(w, "%s %s\n", mutedStyle.Render("arm"), s.ID)
	}
	for i, p := range s.Positions {
		fmt.Fprintf(w, "  p%-2d %s\n", i, formatPoint(p))
	}
	fmt.Fprintf(w, "  angles %s\n", formatAngles(s.Angles))
}
