package trailnet

import (
	"github.com/carthorse/trailnet/geo"
)

// about one meter / one kilometer of latitude in degrees
const (
	meterLat = 1.0 / 111194.9
	kmLat    = 1000 * meterLat
)

// straightTrail builds a trail as a straight line with n evenly spaced
// vertices, elevation interpolated between the endpoints.
func straightTrail(id, name string, from, to geo.Pos, n int) Trail {
	line := make(geo.Line, n)
	for i := 0; i < n; i++ {
		t := float64(i) / float64(n-1)
		line[i] = geo.Pos{
			Lat: from.Lat + (to.Lat-from.Lat)*t,
			Lon: from.Lon + (to.Lon-from.Lon)*t,
			Ele: from.Ele + (to.Ele-from.Ele)*t,
		}
	}
	return NewTrail(id, name, line, nil)
}

// testSegment wraps a line as a whole-trail segment.
func testSegment(trailID string, ordinal int, line geo.Line) Segment {
	return Segment{
		TrailID:   trailID,
		TrailName: trailID,
		Ordinal:   ordinal,
		Fraction:  1,
		Line:      line,
		Length:    line.Length(),
	}
}

// ringGraph builds a cycle of n nodes and n edges by hand, each edge
// edgeKm long, flat. Composition is one synthetic trail per edge.
func ringGraph(n int, edgeKm float64) (*Graph, *CompositionIndex) {
	g := &Graph{}
	ci := NewCompositionIndex()
	for i := 0; i < n; i++ {
		g.Nodes = append(g.Nodes, Node{
			ID:     i,
			Pos:    geo.Pos{Lat: 40 + float64(i)*edgeKm*kmLat/10, Lon: -105},
			Degree: 2,
		})
	}
	for i := 0; i < n; i++ {
		from, to := i, (i+1)%n
		e := Edge{
			ID:     i,
			From:   from,
			To:     to,
			Line:   geo.Line{g.Nodes[from].Pos, g.Nodes[to].Pos},
			Length: edgeKm,
		}
		g.Edges = append(g.Edges, e)
		ci.Init(e.ID, Segment{TrailID: "ring", TrailName: "Ring Trail", Ordinal: i, Fraction: 1.0 / float64(n)})
	}
	return g, ci
}
