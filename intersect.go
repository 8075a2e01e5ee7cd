package trailnet

import (
	"fmt"

	"github.com/carthorse/trailnet/geo"
	"github.com/destel/rill"
	"github.com/golang/geo/s2"
)

// trailPair is one candidate pair of trails whose bounding regions overlap.
type trailPair struct {
	a, b int // indexes into the trail slice
}

// pairHits is the set of intersection points found between one pair.
type pairHits struct {
	a, b   int
	points []geo.Pos
}

// resolveIntersections finds every point where two trails meet or cross, and
// every point where a trail crosses itself. Coordinates are rounded to the
// configured precision and each trail is snapped to the other before the
// intersection test, so visually-touching endpoints register as touching.
// The result maps trail id to split points on that trail. An empty point set
// for a pair is not an error, the pair is simply not connected.
//
// Pairwise checks are independent, so they fan out across parallelism
// workers; results are combined in input order to keep output deterministic.
func resolveIntersections(trails []Trail, toleranceKm float64, precision, parallelism int) (map[string][]geo.Pos, error) {
	bounds := make([]s2.Rect, len(trails))
	rounded := make([]geo.Line, len(trails))
	for i, t := range trails {
		bounds[i] = t.Line.Bounds()
		rounded[i] = t.Line.Round(precision)
	}

	var pairs []trailPair
	for i := range trails {
		for j := i + 1; j < len(trails); j++ {
			if geo.BoundsOverlap(bounds[i], bounds[j], toleranceKm) {
				pairs = append(pairs, trailPair{a: i, b: j})
			}
		}
	}

	if parallelism < 1 {
		parallelism = 1
	}
	in := rill.FromSlice(pairs, nil)
	out := rill.OrderedMap(in, parallelism, func(p trailPair) (pairHits, error) {
		a := rounded[p.a].Snap(rounded[p.b], toleranceKm)
		b := rounded[p.b].Snap(rounded[p.a], toleranceKm)
		return pairHits{a: p.a, b: p.b, points: geo.Intersections(a, b, toleranceKm)}, nil
	})

	splits := map[string][]geo.Pos{}
	err := rill.ForEach(out, 1, func(h pairHits) error {
		if len(h.points) == 0 {
			return nil
		}
		splits[trails[h.a].ID] = append(splits[trails[h.a].ID], h.points...)
		splits[trails[h.b].ID] = append(splits[trails[h.b].ID], h.points...)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("pairwise intersection: %w", err)
	}

	// a trail crossing itself splits at the crossing too
	for i, t := range trails {
		self := geo.SelfIntersections(rounded[i], toleranceKm)
		if len(self) > 0 {
			splits[t.ID] = append(splits[t.ID], self...)
		}
	}
	return splits, nil
}
