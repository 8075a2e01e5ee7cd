package trailnet

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carthorse/trailnet/geo"
)

// chainGraph assembles three end-to-end segments with an elevation profile:
// climb 50, drop 10, climb 20 walking south to north.
func chainGraph(t *testing.T) (*Graph, *CompositionIndex) {
	t.Helper()
	segments := []Segment{
		testSegment("a", 0, geo.Line{
			{Lat: 40.000, Lon: -105, Ele: 100},
			{Lat: 40.010, Lon: -105, Ele: 150},
		}),
		testSegment("b", 0, geo.Line{
			{Lat: 40.010, Lon: -105, Ele: 150},
			{Lat: 40.020, Lon: -105, Ele: 140},
		}),
		testSegment("c", 0, geo.Line{
			{Lat: 40.020, Lon: -105, Ele: 140},
			{Lat: 40.030, Lon: -105, Ele: 160},
		}),
	}
	g, ci, diags, err := assembleGraph(segments, 0.001, geo.DefaultPrecision)
	require.NoError(t, err)
	require.Empty(t, diags)
	require.Len(t, g.Edges, 3)
	return g, ci
}

func TestMergeDegree2Chain(t *testing.T) {
	g, ci := chainGraph(t)
	merged, mci, diags, err := mergeDegree2(g, ci, geo.DefaultPrecision)
	require.NoError(t, err)
	assert.Empty(t, diags)
	require.Len(t, merged.Edges, 1)
	require.Len(t, merged.Nodes, 2)

	e := merged.Edges[0]
	assert.InDelta(t, g.Edges[0].Length*3, e.Length, 1e-9)
	assert.InDelta(t, 70.0, e.Gain, 1e-9)
	assert.InDelta(t, 10.0, e.Loss, 1e-9)
	assert.Equal(t, merged.Nodes[e.From].Pos, e.Line.Start(), "geometry oriented from the From node")

	entries, err := DescribeEdge(merged, mci, e.ID)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	var sum float64
	for _, entry := range entries {
		assert.InDelta(t, 100.0/3, entry.Percent, 0.1)
		sum += entry.Percent
	}
	assert.InDelta(t, 100, sum, CompositionEpsilon)
}

func TestMergeDegree2Idempotent(t *testing.T) {
	g, ci := chainGraph(t)
	once, onceCI, _, err := mergeDegree2(g, ci, geo.DefaultPrecision)
	require.NoError(t, err)
	twice, _, diags, err := mergeDegree2(once, onceCI, geo.DefaultPrecision)
	require.NoError(t, err)
	assert.Empty(t, diags)
	assert.Equal(t, len(once.Edges), len(twice.Edges))
	assert.Equal(t, len(once.Nodes), len(twice.Nodes))
	assert.Equal(t, once.Edges[0].Length, twice.Edges[0].Length)
}

func TestMergeDegree2ClosedCycle(t *testing.T) {
	segments := []Segment{
		testSegment("ring", 0, geo.Line{{Lat: 40.000, Lon: -105.000}, {Lat: 40.000, Lon: -104.990}}),
		testSegment("ring", 1, geo.Line{{Lat: 40.000, Lon: -104.990}, {Lat: 40.010, Lon: -104.990}}),
		testSegment("ring", 2, geo.Line{{Lat: 40.010, Lon: -104.990}, {Lat: 40.010, Lon: -105.000}}),
		testSegment("ring", 3, geo.Line{{Lat: 40.010, Lon: -105.000}, {Lat: 40.000, Lon: -105.000}}),
	}
	g, ci, _, err := assembleGraph(segments, 0.001, geo.DefaultPrecision)
	require.NoError(t, err)
	require.Len(t, g.Nodes, 4)

	merged, mci, diags, err := mergeDegree2(g, ci, geo.DefaultPrecision)
	require.NoError(t, err)
	assert.Empty(t, diags)
	assert.Len(t, merged.Edges, 2, "a pure cycle splits midway, never a self-loop")
	assert.Len(t, merged.Nodes, 2)
	require.NoError(t, merged.check())
	for _, e := range merged.Edges {
		require.NoError(t, mci.Validate(e.ID))
	}

	// merging again changes nothing: a two-edge pair is left alone
	again, _, _, err := mergeDegree2(merged, mci, geo.DefaultPrecision)
	require.NoError(t, err)
	assert.Len(t, again.Edges, 2)
	assert.Len(t, again.Nodes, 2)
}

func TestMergeDegree2Ambiguous(t *testing.T) {
	line := geo.Line{
		{Lat: 40.000, Lon: -105},
		{Lat: 40.005, Lon: -105},
		{Lat: 40.010, Lon: -105},
	}
	segments := []Segment{
		testSegment("east", 0, line.Copy()),
		testSegment("west", 0, line.Copy()),
	}
	g, ci, _, err := assembleGraph(segments, 0.001, geo.DefaultPrecision)
	require.NoError(t, err)
	require.Len(t, g.Nodes, 2)
	require.Len(t, g.Edges, 2)

	merged, _, diags, err := mergeDegree2(g, ci, geo.DefaultPrecision)
	require.NoError(t, err)
	require.NotEmpty(t, diags)
	assert.Equal(t, AmbiguousMerge, diags[0].Kind)
	assert.Len(t, merged.Edges, 2, "coincident edges are left unmerged")
}

func TestMergeDegree2LeavesJunctions(t *testing.T) {
	// a cross: four spokes around a degree-4 hub, nothing to merge
	hub := geo.Pos{Lat: 40.000, Lon: -105.000}
	segments := []Segment{
		testSegment("n", 0, geo.Line{hub, {Lat: 40.010, Lon: -105.000}}),
		testSegment("s", 0, geo.Line{hub, {Lat: 39.990, Lon: -105.000}}),
		testSegment("e", 0, geo.Line{hub, {Lat: 40.000, Lon: -104.990}}),
		testSegment("w", 0, geo.Line{hub, {Lat: 40.000, Lon: -105.010}}),
	}
	g, ci, _, err := assembleGraph(segments, 0.001, geo.DefaultPrecision)
	require.NoError(t, err)

	merged, _, diags, err := mergeDegree2(g, ci, geo.DefaultPrecision)
	require.NoError(t, err)
	assert.Empty(t, diags)
	assert.Len(t, merged.Edges, 4)
	assert.Len(t, merged.Nodes, 5)
}
