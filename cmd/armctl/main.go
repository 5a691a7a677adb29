// armctl: command line tools for the planar arm
// Solves targets offline, benchmarks the solvers and watches a running armd
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/teslashibe/go-planar-arm/internal/config"
	"github.com/teslashibe/go-planar-arm/internal/log"
)

var (
	configPath string
	logLevel   string

	rootCmd = &cobra.Command{
		Use:   "armctl",
		Short: "Solve, benchmark and watch a planar articulated arm",
		Long: `armctl runs the inverse kinematics solvers against the configured arm
without a server, compares them side by side, and follows the state
stream of a running armd.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			log.Init(logLevel, "text")
		},
	}
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to YAML config file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level: debug, info, warn, error")

	rootCmd.AddCommand(solveCmd, benchCmd, watchCmd, algorithmsCmd)
}

// loadConfig reads the shared config used by the offline commands.
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadWithFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
