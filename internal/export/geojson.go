// Package export writes built networks and route recommendations to the
// formats downstream tools consume: GeoJSON, SQLite and KML.
package export

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/carthorse/trailnet"
)

type featureCollection struct {
	Type     string    `json:"type"`
	Features []feature `json:"features"`
}

type feature struct {
	Type       string         `json:"type"`
	Properties map[string]any `json:"properties"`
	Geometry   any            `json:"geometry"`
}

type lineString struct {
	Type        string      `json:"type"`
	Coordinates [][]float64 `json:"coordinates"`
}

type multiLineString struct {
	Type        string        `json:"type"`
	Coordinates [][][]float64 `json:"coordinates"`
}

type point struct {
	Type        string    `json:"type"`
	Coordinates []float64 `json:"coordinates"`
}

func lineCoords(e trailnet.Edge) [][]float64 {
	coords := make([][]float64, len(e.Line))
	for i, pos := range e.Line {
		coords[i] = []float64{pos.Lon, pos.Lat, pos.Ele}
	}
	return coords
}

// routeGeometry is the MultiLineString for a candidate: one line per edge, in
// route order.
func routeGeometry(g *trailnet.Graph, c trailnet.RouteCandidate) multiLineString {
	mls := multiLineString{Type: "MultiLineString"}
	for _, id := range c.EdgeIDs {
		mls.Coordinates = append(mls.Coordinates, lineCoords(g.Edges[id]))
	}
	return mls
}

// Network writes the graph as a FeatureCollection: one LineString feature per
// edge with its provenance in the properties, and one Point feature per node.
func Network(w io.Writer, g *trailnet.Graph, ci *trailnet.CompositionIndex) error {
	fc := featureCollection{Type: "FeatureCollection"}
	for _, e := range g.Edges {
		var composed []map[string]any
		for _, entry := range ci.Entries(e.ID) {
			composed = append(composed, map[string]any{
				"trail_id":   entry.TrailID,
				"trail_name": entry.TrailName,
				"percentage": entry.Percent,
				"segment":    entry.SegmentOrdinal,
			})
		}
		fc.Features = append(fc.Features, feature{
			Type: "Feature",
			Properties: map[string]any{
				"edge_id":        e.ID,
				"from_node":      e.From,
				"to_node":        e.To,
				"length_km":      e.Length,
				"elevation_gain": e.Gain,
				"elevation_loss": e.Loss,
				"composition":    composed,
				"layer":          "edges",
			},
			Geometry: lineString{Type: "LineString", Coordinates: lineCoords(e)},
		})
	}
	for _, n := range g.Nodes {
		fc.Features = append(fc.Features, feature{
			Type: "Feature",
			Properties: map[string]any{
				"node_id": n.ID,
				"degree":  n.Degree,
				"layer":   "nodes",
			},
			Geometry: point{Type: "Point", Coordinates: []float64{n.Pos.Lon, n.Pos.Lat, n.Pos.Ele}},
		})
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(fc); err != nil {
		return fmt.Errorf("encoding network geojson: %w", err)
	}
	return nil
}

// Routes writes route candidates as a FeatureCollection of MultiLineStrings,
// best candidate first.
func Routes(w io.Writer, g *trailnet.Graph, pattern trailnet.RoutePattern, candidates []trailnet.RouteCandidate) error {
	fc := featureCollection{Type: "FeatureCollection"}
	for _, c := range candidates {
		fc.Features = append(fc.Features, feature{
			Type: "Feature",
			Properties: map[string]any{
				"id":                         c.ID,
				"route_uuid":                 c.ID,
				"route_name":                 c.Name,
				"route_score":                c.Score,
				"route_shape":                string(c.Shape),
				"recommended_length_km":      c.DistanceKm,
				"recommended_elevation_gain": c.Gain,
				"trail_count":                len(c.TrailNames),
				"input_length_km":            pattern.TargetKm,
				"input_elevation_gain":       pattern.TargetGain,
				"layer":                      "routes",
			},
			Geometry: routeGeometry(g, c),
		})
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(fc); err != nil {
		return fmt.Errorf("encoding route geojson: %w", err)
	}
	return nil
}
