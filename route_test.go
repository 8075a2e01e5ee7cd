package trailnet

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carthorse/trailnet/geo"
)

// lineGraph is three nodes in a row, 1km apart. The second edge is oriented
// against the walking direction to exercise gain/loss swapping.
func lineGraph() (*Graph, *CompositionIndex) {
	n0 := geo.Pos{Lat: 40, Lon: -105, Ele: 1000}
	n1 := geo.Pos{Lat: 40 + kmLat, Lon: -105, Ele: 1100}
	n2 := geo.Pos{Lat: 40 + 2*kmLat, Lon: -105, Ele: 1150}
	g := &Graph{
		Nodes: []Node{
			{ID: 0, Pos: n0, Degree: 1},
			{ID: 1, Pos: n1, Degree: 2},
			{ID: 2, Pos: n2, Degree: 1},
		},
		Edges: []Edge{
			{ID: 0, From: 0, To: 1, Line: geo.Line{n0, n1}, Length: 1, Gain: 100, Loss: 0},
			{ID: 1, From: 2, To: 1, Line: geo.Line{n2, n1}, Length: 1, Gain: 0, Loss: 50},
		},
	}
	ci := NewCompositionIndex()
	ci.Init(0, Segment{TrailID: "low", TrailName: "Lower Trail", Fraction: 1})
	ci.Init(1, Segment{TrailID: "up", TrailName: "Upper Trail", Fraction: 1})
	return g, ci
}

func TestRoutePatternValidate(t *testing.T) {
	assert.Error(t, RoutePattern{TargetKm: 0, Tolerance: 0.1, Shape: ShapeLoop}.validate())
	assert.Error(t, RoutePattern{TargetKm: 5, Tolerance: 0, Shape: ShapeLoop}.validate())
	assert.Error(t, RoutePattern{TargetKm: 5, Tolerance: 0.1, Shape: "figure-eight"}.validate())
	assert.NoError(t, RoutePattern{TargetKm: 5, Tolerance: 0.1, Shape: ShapeOutAndBack}.validate())
}

func TestRoutePatternScore(t *testing.T) {
	p := RoutePattern{TargetKm: 10, TargetGain: 500, Tolerance: 0.1, Shape: ShapeLoop}

	s, ok := p.score(10, 500)
	require.True(t, ok)
	assert.Zero(t, s)

	s, ok = p.score(11, 500)
	require.True(t, ok, "exactly at the tolerance edge")
	assert.InDelta(t, 0.5, s, 1e-9)

	_, ok = p.score(11.2, 500)
	assert.False(t, ok, "past distance tolerance")

	_, ok = p.score(10, 600)
	assert.False(t, ok, "past gain tolerance")

	noGain := RoutePattern{TargetKm: 10, Tolerance: 0.1, Shape: ShapeLoop}
	s, ok = noGain.score(10, 9999)
	require.True(t, ok, "zero target gain means gain is unconstrained")
	assert.Zero(t, s)
}

func TestFindPointToPoint(t *testing.T) {
	g, ci := lineGraph()
	pattern := RoutePattern{TargetKm: 2, Tolerance: 0.1, Shape: ShapePointToPoint}
	candidates, diags, err := FindRoutes(g, ci, pattern, DefaultRouteOptions())
	require.NoError(t, err)
	assert.Empty(t, diags)
	require.Len(t, candidates, 1)

	c := candidates[0]
	assert.Equal(t, 0, c.StartNode)
	assert.Equal(t, 2, c.EndNode)
	assert.Equal(t, []int{0, 1}, c.EdgeIDs)
	assert.InDelta(t, 2.0, c.DistanceKm, 1e-9)
	assert.InDelta(t, 150.0, c.Gain, 1e-9, "reverse-oriented edge contributes its loss as climb")
	assert.Zero(t, c.Score)
	assert.Equal(t, []string{"Lower Trail", "Upper Trail"}, c.TrailNames)
	assert.Equal(t, "Point-to-Point via Lower Trail, Upper Trail", c.Name)
}

func TestFindPointToPointReverseDirection(t *testing.T) {
	// walking 0 -> 2 climbs 100 and drops 50; walking 2 -> 0 climbs 50.
	// A 50m-gain pattern is only satisfied starting from node 2.
	n0 := geo.Pos{Lat: 40, Lon: -105}
	n1 := geo.Pos{Lat: 40 + kmLat, Lon: -105}
	n2 := geo.Pos{Lat: 40 + 2*kmLat, Lon: -105}
	g := &Graph{
		Nodes: []Node{
			{ID: 0, Pos: n0, Degree: 1},
			{ID: 1, Pos: n1, Degree: 2},
			{ID: 2, Pos: n2, Degree: 1},
		},
		Edges: []Edge{
			{ID: 0, From: 0, To: 1, Line: geo.Line{n0, n1}, Length: 1, Gain: 100, Loss: 0},
			{ID: 1, From: 1, To: 2, Line: geo.Line{n1, n2}, Length: 1, Gain: 0, Loss: 50},
		},
	}
	ci := NewCompositionIndex()
	ci.Init(0, Segment{TrailID: "a", TrailName: "A", Fraction: 1})
	ci.Init(1, Segment{TrailID: "b", TrailName: "B", Fraction: 1})

	pattern := RoutePattern{TargetKm: 2, TargetGain: 50, Tolerance: 0.1, Shape: ShapePointToPoint}
	candidates, _, err := FindRoutes(g, ci, pattern, DefaultRouteOptions())
	require.NoError(t, err)
	require.Len(t, candidates, 1)

	c := candidates[0]
	assert.Equal(t, 2, c.StartNode)
	assert.Equal(t, 0, c.EndNode)
	assert.Equal(t, []int{1, 0}, c.EdgeIDs, "edges in walking order from node 2")
	assert.InDelta(t, 50.0, c.Gain, 1e-9)
	assert.Zero(t, c.Score)

	// pinned to the uphill start nothing fits
	opts := DefaultRouteOptions()
	opts.StartNode = 0
	candidates, _, err = FindRoutes(g, ci, pattern, opts)
	require.NoError(t, err)
	assert.Empty(t, candidates)
}

func TestFindOutAndBack(t *testing.T) {
	g, ci := lineGraph()
	pattern := RoutePattern{TargetKm: 4, Tolerance: 0.1, Shape: ShapeOutAndBack}
	opts := DefaultRouteOptions()
	opts.StartNode = 0
	candidates, _, err := FindRoutes(g, ci, pattern, opts)
	require.NoError(t, err)
	require.Len(t, candidates, 1)

	c := candidates[0]
	assert.Equal(t, 0, c.StartNode)
	assert.Equal(t, 0, c.EndNode, "out-and-back returns to the start")
	assert.Equal(t, []int{0, 1, 1, 0}, c.EdgeIDs)
	assert.InDelta(t, 4.0, c.DistanceKm, 1e-9)
	assert.InDelta(t, 150.0, c.Gain, 1e-9, "return leg climbs what the outward leg descended")
}

func TestFindLoops(t *testing.T) {
	g, ci := ringGraph(10, 0.5)
	pattern := RoutePattern{TargetKm: 5, Tolerance: 0.05, Shape: ShapeLoop}
	candidates, diags, err := FindRoutes(g, ci, pattern, DefaultRouteOptions())
	require.NoError(t, err)
	assert.Empty(t, diags)
	require.Len(t, candidates, 1, "both directions collapse to one cycle")

	c := candidates[0]
	assert.Equal(t, ShapeLoop, c.Shape)
	assert.Equal(t, c.StartNode, c.EndNode)
	assert.Len(t, c.EdgeIDs, 10)
	assert.InDelta(t, 5.0, c.DistanceKm, 1e-9)
	assert.Zero(t, c.Score)
	assert.Contains(t, c.Name, "Ring Trail")
}

func TestFindLoopsNothingFits(t *testing.T) {
	g, ci := ringGraph(10, 0.5)
	pattern := RoutePattern{TargetKm: 50, Tolerance: 0.1, Shape: ShapeLoop}
	candidates, diags, err := FindRoutes(g, ci, pattern, DefaultRouteOptions())
	require.NoError(t, err, "an empty result is not an error")
	assert.Empty(t, candidates)
	require.NotEmpty(t, diags)
	assert.Equal(t, ToleranceExhausted, diags[len(diags)-1].Kind)
}

func TestFindLoopsCycleCap(t *testing.T) {
	g, ci := ringGraph(10, 0.5)
	pattern := RoutePattern{TargetKm: 5, Tolerance: 0.05, Shape: ShapeLoop}
	opts := DefaultRouteOptions()
	opts.MaxCycleEdges = 5 // the only cycle needs 10
	candidates, _, err := FindRoutes(g, ci, pattern, opts)
	require.NoError(t, err)
	assert.Empty(t, candidates)
}

func TestFindLoopsBudgetExhausted(t *testing.T) {
	g, ci := ringGraph(10, 0.5)
	pattern := RoutePattern{TargetKm: 5, Tolerance: 0.05, Shape: ShapeLoop}
	opts := DefaultRouteOptions()
	opts.MaxExpansions = 1
	_, diags, err := FindRoutes(g, ci, pattern, opts)
	require.NoError(t, err)
	var kinds []DiagnosticKind
	for _, d := range diags {
		kinds = append(kinds, d.Kind)
	}
	assert.Contains(t, kinds, SearchBudgetExhausted)
}

func TestFindRoutesMaxCandidates(t *testing.T) {
	g, ci := ringGraph(10, 0.5)
	pattern := RoutePattern{TargetKm: 2.5, Tolerance: 1.0, Shape: ShapePointToPoint}
	opts := DefaultRouteOptions()
	opts.MaxCandidates = 3
	candidates, _, err := FindRoutes(g, ci, pattern, opts)
	require.NoError(t, err)
	require.Len(t, candidates, 3)
	for i := 1; i < len(candidates); i++ {
		assert.LessOrEqual(t, candidates[i-1].Score, candidates[i].Score, "ranked best first")
	}
}

func TestFindRoutesDeterministic(t *testing.T) {
	g, ci := ringGraph(10, 0.5)
	pattern := RoutePattern{TargetKm: 2.5, Tolerance: 1.0, Shape: ShapePointToPoint}
	a, _, err := FindRoutes(g, ci, pattern, DefaultRouteOptions())
	require.NoError(t, err)
	b, _, err := FindRoutes(g, ci, pattern, DefaultRouteOptions())
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestFindRoutesBadInput(t *testing.T) {
	g, ci := lineGraph()
	_, _, err := FindRoutes(g, ci, RoutePattern{TargetKm: -1, Tolerance: 0.1, Shape: ShapeLoop}, DefaultRouteOptions())
	assert.Error(t, err)

	opts := DefaultRouteOptions()
	opts.StartNode = 99
	_, _, err = FindRoutes(g, ci, RoutePattern{TargetKm: 2, Tolerance: 0.1, Shape: ShapeLoop}, opts)
	assert.Error(t, err)
}
