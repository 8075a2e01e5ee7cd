package cli

import (
	"fmt"
	"os"

	humanize "github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/carthorse/trailnet/internal/export"
)

func newBuildCmd() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "build <trails.geojson>",
		Short: "Build a routable network graph from raw trail geometries",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, ci, err := loadNetwork(args[0])
			if err != nil {
				return err
			}

			var length float64
			for _, e := range g.Edges {
				length += e.Length
			}
			fmt.Fprintf(cmd.OutOrStdout(), "network: %s nodes, %s edges, %s km\n",
				humanize.Comma(int64(len(g.Nodes))),
				humanize.Comma(int64(len(g.Edges))),
				humanize.FtoaWithDigits(length, 1))

			if out == "" {
				return nil
			}
			f, err := os.Create(out)
			if err != nil {
				return fmt.Errorf("creating %s: %w", out, err)
			}
			defer f.Close()
			if err := export.Network(f, g, ci); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "network.geojson", "network GeoJSON output path, empty to skip")
	return cmd
}
