package trailnet

import (
	"fmt"
	"runtime"

	"github.com/carthorse/trailnet/geo"
)

// BuildOptions configure one network build.
type BuildOptions struct {
	ToleranceMeters  float64 // snap tolerance for intersections and node coalescing
	MinSegmentMeters float64 // segments shorter than this are dropped as noise
	Precision        int     // decimal places coordinates are rounded to before comparison
	Parallelism      int     // workers for pairwise intersection checks
}

func DefaultBuildOptions() BuildOptions {
	return BuildOptions{
		ToleranceMeters:  1.0,
		MinSegmentMeters: 0.3,
		Precision:        geo.DefaultPrecision,
		Parallelism:      runtime.NumCPU(),
	}
}

// BuildNetwork turns raw trails into a routable graph: intersections are
// resolved, trails split at them (loops always split in two), segments
// assembled into a node/edge graph, and degree-2 pass-throughs merged away.
// The composition index traces every resulting edge back to the trails it
// was built from.
//
// The build is best-effort: per-trail and per-edge problems are isolated and
// reported in the diagnostics list next to the result. Only structural
// failures return an error.
//
// Each call works on its own state, so builds of disjoint trail sets may run
// concurrently.
func BuildNetwork(trails []Trail, opts BuildOptions) (*Graph, *CompositionIndex, []Diagnostic, error) {
	toleranceKm := opts.ToleranceMeters / 1000
	minKm := opts.MinSegmentMeters / 1000
	var diags []Diagnostic

	var valid []Trail
	for _, t := range trails {
		if !t.Line.Valid() {
			diags = append(diags, Diagnostic{
				Kind:    GeometryInvalid,
				TrailID: t.ID,
				Detail:  fmt.Sprintf("%q has malformed geometry (%d vertices), excluded from the network", t.Name, len(t.Line)),
			})
			continue
		}
		valid = append(valid, t)
	}

	splits, err := resolveIntersections(valid, toleranceKm, opts.Precision, opts.Parallelism)
	if err != nil {
		return nil, nil, diags, fmt.Errorf("resolving intersections: %w", err)
	}

	var segments []Segment
	for _, t := range valid {
		if isLoop(t, toleranceKm) {
			// the whole-loop record is superseded here: only its two
			// halves continue into assembly
			halves, diag := splitLoop(t, splits[t.ID], toleranceKm)
			segments = append(segments, halves...)
			diags = append(diags, diag)
			continue
		}
		segments = append(segments, splitTrail(t, splits[t.ID], toleranceKm)...)
	}

	segments = filterShortSegments(segments, minKm, toleranceKm, &diags)

	g, ci, assemblyDiags, err := assembleGraph(segments, toleranceKm, opts.Precision)
	diags = append(diags, assemblyDiags...)
	if err != nil {
		return nil, nil, diags, fmt.Errorf("assembling graph: %w", err)
	}

	g, ci, mergeDiags, err := mergeDegree2(g, ci, opts.Precision)
	diags = append(diags, mergeDiags...)
	if err != nil {
		return nil, nil, diags, fmt.Errorf("merging degree-2 chains: %w", err)
	}

	// the ledger invariant must hold for every edge after every mutation
	for _, e := range g.Edges {
		if err := ci.Validate(e.ID); err != nil {
			diags = append(diags, Diagnostic{Kind: CompositionImbalance, EdgeID: e.ID, Detail: err.Error()})
		}
	}
	return g, ci, diags, nil
}

// DescribeEdge reports which trails an edge was built from, in order along
// the edge with each trail's share of the edge's length.
func DescribeEdge(g *Graph, ci *CompositionIndex, edgeID int) ([]CompositionEntry, error) {
	if edgeID < 0 || edgeID >= len(g.Edges) {
		return nil, fmt.Errorf("edge %d not in graph", edgeID)
	}
	if err := ci.Validate(edgeID); err != nil {
		return nil, err
	}
	return ci.Entries(edgeID), nil
}
