package export

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/carthorse/trailnet"
)

// Schema for the recommendation database read by downstream exporters.
const createRouteRecommendations = `CREATE TABLE IF NOT EXISTS route_recommendations (
    route_uuid TEXT PRIMARY KEY,
    route_name TEXT NOT NULL,
    route_shape TEXT NOT NULL,
    route_score REAL NOT NULL,
    route_path TEXT NOT NULL,
    recommended_length_km REAL NOT NULL,
    recommended_elevation_gain REAL NOT NULL,
    input_length_km REAL NOT NULL,
    input_elevation_gain REAL NOT NULL,
    trail_count INTEGER NOT NULL,
    created_at TEXT NOT NULL
);`

const insertRouteRecommendation = `INSERT OR REPLACE INTO route_recommendations (
    route_uuid, route_name, route_shape, route_score, route_path,
    recommended_length_km, recommended_elevation_gain,
    input_length_km, input_elevation_gain, trail_count, created_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?);`

// RouteRecommendations writes ranked candidates to a SQLite database at path,
// creating the table when missing. The route path is stored as MultiLineString
// GeoJSON so exports need no access to the graph.
func RouteRecommendations(path string, g *trailnet.Graph, pattern trailnet.RoutePattern, candidates []trailnet.RouteCandidate) error {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	defer db.Close()

	if _, err := db.Exec(createRouteRecommendations); err != nil {
		return fmt.Errorf("creating route_recommendations: %w", err)
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(insertRouteRecommendation)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC().Format(time.RFC3339)
	for _, c := range candidates {
		path, err := json.Marshal(routeGeometry(g, c))
		if err != nil {
			return fmt.Errorf("encoding route path for %s: %w", c.ID, err)
		}
		_, err = stmt.Exec(
			c.ID, c.Name, string(c.Shape), c.Score, string(path),
			c.DistanceKm, c.Gain,
			pattern.TargetKm, pattern.TargetGain, len(c.TrailNames), now,
		)
		if err != nil {
			return fmt.Errorf("inserting route %s: %w", c.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing recommendations: %w", err)
	}
	return nil
}
