// Package ingest reads trail geometries from GeoJSON. Trails arrive as a
// FeatureCollection of LineString features whose coordinates carry elevation
// as a third ordinate.
package ingest

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/carthorse/trailnet"
	"github.com/carthorse/trailnet/geo"
)

type featureCollection struct {
	Type     string    `json:"type"`
	Features []feature `json:"features"`
}

type feature struct {
	Type       string         `json:"type"`
	Geometry   geometry       `json:"geometry"`
	Properties map[string]any `json:"properties"`
}

type geometry struct {
	Type string `json:"type"`
	// deferred so a Point or Polygon feature fails per-feature, not fatally
	Coordinates json.RawMessage `json:"coordinates"`
}

// Trails parses a GeoJSON FeatureCollection into trail records. Features
// that are not usable line geometries are reported as diagnostics and
// skipped; only malformed JSON is fatal.
func Trails(r io.Reader) ([]trailnet.Trail, []trailnet.Diagnostic, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, nil, fmt.Errorf("reading input: %w", err)
	}
	var fc featureCollection
	if err := json.Unmarshal(data, &fc); err != nil {
		return nil, nil, fmt.Errorf("parsing feature collection: %w", err)
	}

	var trails []trailnet.Trail
	var diags []trailnet.Diagnostic
	for i, f := range fc.Features {
		if f.Geometry.Type != "LineString" {
			diags = append(diags, trailnet.Diagnostic{
				Kind:   trailnet.GeometryInvalid,
				Detail: fmt.Sprintf("feature %d is %q, want a LineString", i, f.Geometry.Type),
			})
			continue
		}
		var coords [][]float64
		if err := json.Unmarshal(f.Geometry.Coordinates, &coords); err != nil || len(coords) < 2 {
			diags = append(diags, trailnet.Diagnostic{
				Kind:   trailnet.GeometryInvalid,
				Detail: fmt.Sprintf("feature %d has %d positions, want at least 2", i, len(coords)),
			})
			continue
		}
		line := make(geo.Line, 0, len(coords))
		ok := true
		for _, c := range coords {
			if len(c) < 2 {
				ok = false
				break
			}
			pos := geo.Pos{Lon: c[0], Lat: c[1]}
			if len(c) > 2 {
				pos.Ele = c[2]
			}
			line = append(line, pos)
		}
		if !ok {
			diags = append(diags, trailnet.Diagnostic{
				Kind:   trailnet.GeometryInvalid,
				Detail: fmt.Sprintf("feature %d has a position with fewer than 2 ordinates", i),
			})
			continue
		}

		id := stringProp(f.Properties, "id")
		name := stringProp(f.Properties, "name")
		tags := map[string]string{}
		for k, v := range f.Properties {
			if k == "id" || k == "name" {
				continue
			}
			tags[k] = fmt.Sprint(v)
		}
		trails = append(trails, trailnet.NewTrail(id, name, line, tags))
	}
	return trails, diags, nil
}

func stringProp(props map[string]any, key string) string {
	if v, ok := props[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
		return fmt.Sprint(v)
	}
	return ""
}
