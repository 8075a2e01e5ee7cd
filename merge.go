package trailnet

import (
	"fmt"
	"math"

	"github.com/carthorse/trailnet/geo"
)

// chainStep is one edge of a degree-2 chain with the node it is entered from,
// which fixes the traversal direction of the edge's geometry.
type chainStep struct {
	edge int
	from int
}

// mergeDegree2 collapses maximal chains of edges passing through degree-2
// nodes into single edges. Chain direction at each pass-through node is
// resolved by geometry continuity: with degree exactly 2 there is only one
// other edge to continue along, so the walk is unambiguous unless the two
// incident edges are geometrically coincident, which is reported as an
// ambiguous merge and left alone.
//
// Merging is a single pass to exhaustion. A merged chain's boundary nodes
// keep their degree, so no new degree-2 node appears between already-merged
// endpoints and running the merger again changes nothing.
func mergeDegree2(g *Graph, ci *CompositionIndex, precision int) (*Graph, *CompositionIndex, []Diagnostic, error) {
	inc := g.Incidence()
	var diags []Diagnostic

	ambiguous := make([]bool, len(g.Nodes))
	for _, n := range g.Nodes {
		if n.Degree != 2 {
			continue
		}
		e1, e2 := g.Edges[inc[n.ID][0]], g.Edges[inc[n.ID][1]]
		if coincidentEdges(e1, e2, n.ID, precision) {
			ambiguous[n.ID] = true
			diags = append(diags, Diagnostic{
				Kind:   AmbiguousMerge,
				EdgeID: e1.ID,
				Detail: fmt.Sprintf("edges %d and %d at node %d are geometrically coincident, chain left unmerged", e1.ID, e2.ID, n.ID),
			})
		}
	}

	visited := make([]bool, len(g.Edges))
	chainOf := make([]int, len(g.Edges)) // edge id -> chain index, -1 when untouched
	for i := range chainOf {
		chainOf[i] = -1
	}
	type chain struct {
		steps  []chainStep
		closed bool // boundary nodes coincide
	}
	var chains []chain

	walk := func(start, firstEdge int, inWalk map[int]bool) ([]chainStep, int) {
		var steps []chainStep
		cur, edge := start, firstEdge
		for {
			inWalk[edge] = true
			steps = append(steps, chainStep{edge: edge, from: cur})
			next := g.Edges[edge].Opposite(cur)
			if g.Nodes[next].Degree != 2 || ambiguous[next] {
				return steps, next
			}
			other := inc[next][0]
			if other == edge {
				other = inc[next][1]
			}
			if inWalk[other] || visited[other] {
				return steps, next
			}
			cur, edge = next, other
		}
	}

	for _, n := range g.Nodes {
		if n.Degree != 2 || ambiguous[n.ID] {
			continue
		}
		e1, e2 := inc[n.ID][0], inc[n.ID][1]
		if visited[e1] || visited[e2] {
			continue
		}
		inWalk := map[int]bool{}
		stepsA, boundaryA := walk(n.ID, e1, inWalk)
		var steps []chainStep
		var end int
		if inWalk[e2] {
			// the walk came back around: a closed cycle through n
			steps, end = stepsA, boundaryA
		} else {
			stepsB, boundaryB := walk(n.ID, e2, inWalk)
			// stepsA walked away from n; flip it so the chain reads
			// boundaryA -> n -> boundaryB
			steps = make([]chainStep, 0, len(stepsA)+len(stepsB))
			for i := len(stepsA) - 1; i >= 0; i-- {
				s := stepsA[i]
				steps = append(steps, chainStep{edge: s.edge, from: g.Edges[s.edge].Opposite(s.from)})
			}
			steps = append(steps, stepsB...)
			end = boundaryB
		}
		c := chain{steps: steps, closed: steps[0].from == end}
		idx := len(chains)
		chains = append(chains, c)
		for _, s := range steps {
			visited[s.edge] = true
			chainOf[s.edge] = idx
		}
	}

	// emit the new edge set in old-edge-id order so output is deterministic:
	// untouched edges keep their place, a chain lands where its lowest
	// constituent edge id was
	out := &Graph{Nodes: make([]Node, len(g.Nodes))}
	copy(out.Nodes, g.Nodes)
	for i := range out.Nodes {
		out.Nodes[i].Degree = 0
	}
	outCI := NewCompositionIndex()

	addEdge := func(e Edge) {
		e.ID = len(out.Edges)
		out.Edges = append(out.Edges, e)
		out.Nodes[e.From].Degree++
		out.Nodes[e.To].Degree++
	}
	copyEdge := func(old Edge) {
		id := len(out.Edges)
		addEdge(old)
		outCI.entries[id] = ci.Entries(old.ID)
	}
	mergeChain := func(steps []chainStep) {
		from := steps[0].from
		to := g.Edges[steps[len(steps)-1].edge].Opposite(steps[len(steps)-1].from)
		var lines []geo.Line
		var length, gain, loss float64
		var parts []mergePart
		for _, s := range steps {
			e := g.Edges[s.edge]
			reversed := s.from != e.From
			if reversed {
				lines = append(lines, e.Line.Reversed())
				gain += e.Loss
				loss += e.Gain
			} else {
				lines = append(lines, e.Line)
				gain += e.Gain
				loss += e.Loss
			}
			length += e.Length
			parts = append(parts, mergePart{edgeID: e.ID, reversed: reversed})
		}
		for i := range parts {
			parts[i].share = g.Edges[parts[i].edgeID].Length / length
		}
		id := len(out.Edges)
		addEdge(Edge{From: from, To: to, Line: geo.MergeLines(lines), Length: length, Gain: gain, Loss: loss})
		outCI.SetMergedFrom(ci, id, parts)
		if err := outCI.Validate(id); err != nil {
			diags = append(diags, Diagnostic{Kind: CompositionImbalance, EdgeID: id, Detail: err.Error()})
			dropLastEdge(out, outCI)
		}
	}

	emitted := make([]bool, len(chains))
	for _, old := range g.Edges {
		idx := chainOf[old.ID]
		if idx < 0 {
			copyEdge(old)
			continue
		}
		if emitted[idx] {
			continue
		}
		emitted[idx] = true
		c := chains[idx]
		switch {
		case !c.closed:
			mergeChain(c.steps)
		case len(c.steps) == 2:
			// a minimal parallel pair; merging would make a self-loop
			copyEdge(g.Edges[c.steps[0].edge])
			copyEdge(g.Edges[c.steps[1].edge])
		default:
			// a closed cycle collapses to two edges split midway, never
			// to a single self-loop
			k := len(c.steps) / 2
			mergeChain(c.steps[:k])
			mergeChain(c.steps[k:])
		}
	}

	out.compact(outCI)
	if err := out.check(); err != nil {
		return nil, nil, diags, fmt.Errorf("after degree-2 merge: %w", err)
	}
	return out, outCI, diags, nil
}

// dropLastEdge backs out the most recently added edge, used when its
// composition fails validation. Only that edge is lost, not the build.
func dropLastEdge(g *Graph, ci *CompositionIndex) {
	e := g.Edges[len(g.Edges)-1]
	g.Nodes[e.From].Degree--
	g.Nodes[e.To].Degree--
	ci.Drop(e.ID)
	g.Edges = g.Edges[:len(g.Edges)-1]
}

// coincidentEdges reports whether two edges incident to node n are
// geometrically the same line: same far endpoint, same length, same rounded
// midpoint. Distinct parallel edges (two halves of a split loop) differ in
// geometry and are not coincident.
func coincidentEdges(e1, e2 Edge, n, precision int) bool {
	if e1.Opposite(n) != e2.Opposite(n) {
		return false
	}
	if math.Abs(e1.Length-e2.Length) > 1e-6 {
		return false
	}
	m1 := geo.Round(e1.Line.PointAt(0.5), precision)
	m2 := geo.Round(e2.Line.PointAt(0.5), precision)
	return m1.Lat == m2.Lat && m1.Lon == m2.Lon
}
