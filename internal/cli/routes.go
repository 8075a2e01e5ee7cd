package cli

import (
	"fmt"
	"os"

	humanize "github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/carthorse/trailnet"
	"github.com/carthorse/trailnet/internal/export"
)

func newRoutesCmd() *cobra.Command {
	var (
		distance  float64
		gain      float64
		shape     string
		routeTol  float64
		start     int
		maxRoutes int
		maxCycle  int
		maxSteps  int
		dbOut     string
		jsonOut   string
		kmlOut    string
	)
	cmd := &cobra.Command{
		Use:   "routes <trails.geojson>",
		Short: "Search the network for routes matching a target pattern",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, ci, err := loadNetwork(args[0])
			if err != nil {
				return err
			}

			pattern := trailnet.RoutePattern{
				TargetKm:   distance,
				TargetGain: gain,
				Tolerance:  routeTol,
				Shape:      trailnet.Shape(shape),
			}
			opts := trailnet.RouteOptions{
				StartNode:     start,
				MaxCandidates: maxRoutes,
				MaxCycleEdges: maxCycle,
				MaxExpansions: maxSteps,
			}
			candidates, diags, err := trailnet.FindRoutes(g, ci, pattern, opts)
			if err != nil {
				return fmt.Errorf("finding routes: %w", err)
			}
			for _, d := range diags {
				fmt.Fprintf(cmd.ErrOrStderr(), "diagnostic: %s\n", d)
			}

			for i, c := range candidates {
				fmt.Fprintf(cmd.OutOrStdout(), "%2d. %s: %s km, %s m gain, score %.3f\n",
					i+1, c.Name,
					humanize.FtoaWithDigits(c.DistanceKm, 1),
					humanize.FtoaWithDigits(c.Gain, 0),
					c.Score)
			}

			if dbOut != "" {
				if err := export.RouteRecommendations(dbOut, g, pattern, candidates); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", dbOut)
			}
			if jsonOut != "" {
				if err := writeTo(jsonOut, func(f *os.File) error {
					return export.Routes(f, g, pattern, candidates)
				}); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", jsonOut)
			}
			if kmlOut != "" {
				if err := writeTo(kmlOut, func(f *os.File) error {
					return export.RouteKML(f, g, ci, candidates)
				}); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", kmlOut)
			}
			return nil
		},
	}
	flags := cmd.Flags()
	flags.Float64VarP(&distance, "distance", "d", 10, "target distance in km")
	flags.Float64VarP(&gain, "gain", "g", 0, "target elevation gain in m, 0 to ignore")
	flags.StringVarP(&shape, "shape", "s", "loop", "route shape: loop, out-and-back or point-to-point")
	flags.Float64Var(&routeTol, "route-tolerance", 0.1, "acceptable deviation from the targets as a fraction")
	flags.IntVar(&start, "start", -1, "start node id, -1 for any")
	flags.IntVarP(&maxRoutes, "max-candidates", "n", 10, "maximum candidates returned")
	flags.IntVar(&maxCycle, "max-cycle-edges", 12, "maximum edges per enumerated cycle")
	flags.IntVar(&maxSteps, "max-expansions", 500000, "search step budget")
	flags.StringVar(&dbOut, "db", "", "route recommendations SQLite output path")
	flags.StringVar(&jsonOut, "geojson", "", "route GeoJSON output path")
	flags.StringVar(&kmlOut, "kml", "", "route KML output path")
	return cmd
}

func writeTo(path string, write func(*os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()
	return write(f)
}
