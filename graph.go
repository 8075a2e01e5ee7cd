package trailnet

import (
	"fmt"

	"github.com/carthorse/trailnet/geo"
)

// Node is a graph vertex: a point where segments meet, or a dead end. Nodes
// and edges are arena slices referenced by integer index, so there is no
// pointer cycle between them.
type Node struct {
	ID     int
	Pos    geo.Pos
	Degree int // count of incident edges
}

// Edge is a routable graph arc between two nodes. After degree-2 merging an
// edge may represent several original segments; the composition index keeps
// the mapping back to source trails.
type Edge struct {
	ID     int
	From   int // node id at Line.Start()
	To     int // node id at Line.End()
	Line   geo.Line
	Length float64 // km
	Gain   float64 // m climbed traversing From -> To
	Loss   float64 // m descended traversing From -> To
}

// Opposite returns the node at the other end of the edge.
func (e Edge) Opposite(n int) int {
	if e.From == n {
		return e.To
	}
	if e.To == n {
		return e.From
	}
	panic("should check edge has node before getting opposite")
}

// Graph is the assembled trail network.
type Graph struct {
	Nodes []Node
	Edges []Edge
}

// Incidence returns, per node id, the ids of incident edges in ascending
// order. Both endpoints of an edge see it once; a well-formed graph has no
// self-loop edges.
func (g *Graph) Incidence() [][]int {
	inc := make([][]int, len(g.Nodes))
	for _, e := range g.Edges {
		inc[e.From] = append(inc[e.From], e.ID)
		inc[e.To] = append(inc[e.To], e.ID)
	}
	return inc
}

// unionFind over segment endpoints, used to coalesce endpoints that fall
// within snapping tolerance of each other into one node.
type unionFind struct {
	parent []int
}

func newUnionFind(n int) *unionFind {
	parent := make([]int, n)
	for i := range parent {
		parent[i] = i
	}
	return &unionFind{parent: parent}
}

func (u *unionFind) find(i int) int {
	for u.parent[i] != i {
		u.parent[i] = u.parent[u.parent[i]]
		i = u.parent[i]
	}
	return i
}

func (u *unionFind) union(i, j int) {
	ri, rj := u.find(i), u.find(j)
	if ri == rj {
		return
	}
	// lower index wins so node numbering follows input order
	if ri < rj {
		u.parent[rj] = ri
	} else {
		u.parent[ri] = rj
	}
}

// assembleGraph turns segments into a node/edge graph. Each segment's two
// endpoints are candidate nodes; endpoints within toleranceKm of each other
// coalesce into one node, and each segment becomes one edge between its
// coalesced endpoints. A segment whose endpoints coalesce into the same node
// would be a self-loop, which the loop splitter is supposed to prevent; if
// one still appears it is excluded with a diagnostic.
func assembleGraph(segments []Segment, toleranceKm float64, precision int) (*Graph, *CompositionIndex, []Diagnostic, error) {
	type endpoint struct {
		pos geo.Pos
		seg int // segment index
	}
	endpoints := make([]endpoint, 0, 2*len(segments))
	for i, s := range segments {
		endpoints = append(endpoints, endpoint{pos: geo.Round(s.Line.Start(), precision), seg: i})
		endpoints = append(endpoints, endpoint{pos: geo.Round(s.Line.End(), precision), seg: i})
	}

	uf := newUnionFind(len(endpoints))
	for i := range endpoints {
		for j := i + 1; j < len(endpoints); j++ {
			if endpoints[i].pos.Distance(endpoints[j].pos) <= toleranceKm {
				uf.union(i, j)
			}
		}
	}

	g := &Graph{}
	ci := NewCompositionIndex()
	var diags []Diagnostic

	nodeOf := map[int]int{} // union root -> node id
	nodeFor := func(i int) int {
		root := uf.find(i)
		if id, ok := nodeOf[root]; ok {
			return id
		}
		id := len(g.Nodes)
		g.Nodes = append(g.Nodes, Node{ID: id, Pos: endpoints[root].pos})
		nodeOf[root] = id
		return id
	}

	for i, s := range segments {
		from := nodeFor(2 * i)
		to := nodeFor(2*i + 1)
		if from == to {
			diags = append(diags, Diagnostic{
				Kind:    GeometryInvalid,
				TrailID: s.TrailID,
				Detail:  s.String() + " collapses to a self-loop edge",
			})
			continue
		}
		gain, loss := s.Line.ElevationProfile()
		e := Edge{
			ID:     len(g.Edges),
			From:   from,
			To:     to,
			Line:   s.Line,
			Length: s.Length,
			Gain:   gain,
			Loss:   loss,
		}
		g.Edges = append(g.Edges, e)
		ci.Init(e.ID, s)
		g.Nodes[from].Degree++
		g.Nodes[to].Degree++
	}

	// nodes whose only edge was excluded have no business staying in the arena
	g.compact(ci)

	if err := g.check(); err != nil {
		return nil, nil, diags, err
	}
	return g, ci, diags, nil
}

// compact renumbers nodes and edges into dense ids, removing nodes with no
// incident edge. The composition index is re-keyed to the new edge ids.
func (g *Graph) compact(ci *CompositionIndex) {
	nodeMap := make([]int, len(g.Nodes))
	var nodes []Node
	for _, n := range g.Nodes {
		if n.Degree == 0 {
			nodeMap[n.ID] = -1
			continue
		}
		nodeMap[n.ID] = len(nodes)
		n.ID = len(nodes)
		nodes = append(nodes, n)
	}
	var edges []Edge
	moved := map[int][]CompositionEntry{}
	for _, e := range g.Edges {
		entries := ci.entries[e.ID]
		e.ID = len(edges)
		e.From = nodeMap[e.From]
		e.To = nodeMap[e.To]
		edges = append(edges, e)
		moved[e.ID] = entries
	}
	g.Nodes = nodes
	g.Edges = edges
	ci.entries = moved
}

// check verifies structural integrity: every edge joins two distinct live
// nodes and recorded degrees match the edge set. A failure here is a bug in
// assembly or merging and aborts the build.
func (g *Graph) check() error {
	degrees := make([]int, len(g.Nodes))
	for _, e := range g.Edges {
		if e.From < 0 || e.From >= len(g.Nodes) || e.To < 0 || e.To >= len(g.Nodes) {
			return fmt.Errorf("edge %d references missing node", e.ID)
		}
		if e.From == e.To {
			return fmt.Errorf("edge %d is a self-loop at node %d", e.ID, e.From)
		}
		degrees[e.From]++
		degrees[e.To]++
	}
	for _, n := range g.Nodes {
		if degrees[n.ID] != n.Degree {
			return fmt.Errorf("node %d records degree %d but has %d incident edges", n.ID, n.Degree, degrees[n.ID])
		}
		if n.Degree == 0 {
			return fmt.Errorf("node %d is disconnected", n.ID)
		}
	}
	return nil
}
