package export

import (
	"fmt"
	"io"

	"github.com/twpayne/go-kml"

	"github.com/carthorse/trailnet"
)

// RouteKML writes candidates as a KML document: one folder per route, one
// placemark per edge so map viewers show where a route switches trails.
func RouteKML(w io.Writer, g *trailnet.Graph, ci *trailnet.CompositionIndex, candidates []trailnet.RouteCandidate) error {
	doc := kml.Document(kml.Name("Route recommendations"))
	for _, c := range candidates {
		folder := kml.Folder(
			kml.Name(c.Name),
			kml.Description(fmt.Sprintf("%.1f km, %.0f m gain, score %.3f", c.DistanceKm, c.Gain, c.Score)),
		)
		for _, id := range c.EdgeIDs {
			e := g.Edges[id]
			coords := make([]kml.Coordinate, len(e.Line))
			for i, pos := range e.Line {
				coords[i] = kml.Coordinate{Lon: pos.Lon, Lat: pos.Lat, Alt: pos.Ele}
			}
			var name string
			if entries := ci.Entries(e.ID); len(entries) > 0 {
				name = entries[0].TrailName
			}
			folder.Add(kml.Placemark(
				kml.Name(fmt.Sprintf("%s (edge %d)", name, e.ID)),
				kml.LineString(
					kml.Tessellate(true),
					kml.Coordinates(coords...),
				),
			))
		}
		doc.Add(folder)
	}
	if err := kml.KML(doc).WriteIndent(w, "", "  "); err != nil {
		return fmt.Errorf("writing kml: %w", err)
	}
	return nil
}
