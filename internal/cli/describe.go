package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/carthorse/trailnet"
)

func newDescribeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "describe <trails.geojson> <edge-id>",
		Short: "Report which original trails an edge was built from",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			edgeID, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("edge id %q is not a number", args[1])
			}
			g, ci, err := loadNetwork(args[0])
			if err != nil {
				return err
			}
			entries, err := trailnet.DescribeEdge(g, ci, edgeID)
			if err != nil {
				return fmt.Errorf("describing edge %d: %w", edgeID, err)
			}
			e := g.Edges[edgeID]
			fmt.Fprintf(cmd.OutOrStdout(), "edge %d: node %d -> node %d, %.3f km\n", e.ID, e.From, e.To, e.Length)
			for _, entry := range entries {
				name := entry.TrailName
				if name == "" {
					name = entry.TrailID
				}
				fmt.Fprintf(cmd.OutOrStdout(), "  %6.2f%%  %s (segment %d)\n", entry.Percent, name, entry.SegmentOrdinal)
			}
			return nil
		},
	}
}
