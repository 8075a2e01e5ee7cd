// Package cli implements the trailnet command-line interface.
package cli

import (
	"os"
	"runtime"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/carthorse/trailnet"
	"github.com/carthorse/trailnet/geo"
)

const version = "v0.1.0"

// NewRootCmd creates the top-level "trailnet" command with the build
// parameters as global flags and all subcommands registered. Every flag can
// also be set through a TRAILNET_* environment variable.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "trailnet",
		Short:        "Build routable trail networks and recommend routes",
		Long:         "Trailnet cleans raw trail geometries into a routable network graph\nand searches it for loop, out-and-back and point-to-point routes.",
		SilenceUsage: true,
	}

	pf := root.PersistentFlags()
	pf.Float64("tolerance", 1.0, "snap tolerance in meters")
	pf.Float64("min-segment", 0.3, "minimum segment length in meters")
	pf.Int("precision", geo.DefaultPrecision, "coordinate rounding precision in decimal places")
	pf.Int("workers", runtime.NumCPU(), "parallel workers for intersection checks")

	viper.SetEnvPrefix("TRAILNET")
	viper.AutomaticEnv()
	for _, name := range []string{"tolerance", "min-segment", "precision", "workers"} {
		_ = viper.BindPFlag(name, pf.Lookup(name))
	}

	root.AddCommand(newBuildCmd())
	root.AddCommand(newRoutesCmd())
	root.AddCommand(newDescribeCmd())
	root.AddCommand(newVersionCmd())
	return root
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func buildOptions() trailnet.BuildOptions {
	return trailnet.BuildOptions{
		ToleranceMeters:  viper.GetFloat64("tolerance"),
		MinSegmentMeters: viper.GetFloat64("min-segment"),
		Precision:        viper.GetInt("precision"),
		Parallelism:      viper.GetInt("workers"),
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the trailnet version",
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Println(version)
		},
	}
}
