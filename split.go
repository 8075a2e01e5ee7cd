package trailnet

import (
	"sort"

	"github.com/carthorse/trailnet/geo"
)

// splitTrail cuts a trail at every split point, emitting segments in original
// trail order. Split points are projected onto the trail's path, ordered by
// their fraction of total length, merged when closer together than half the
// tolerance, and then cut in increasing order. Points that project onto an
// endpoint produce no cut.
//
// Every vertex of the trail survives into exactly one segment boundary or
// interior, so concatenating the segments in ordinal order reproduces the
// original point sequence.
func splitTrail(t Trail, points []geo.Pos, toleranceKm float64) []Segment {
	fracs := cutFractions(t, points, toleranceKm)
	if len(fracs) == 0 {
		return []Segment{newSegment(t, 0, t.Line.Copy())}
	}

	var segments []Segment
	remaining := t.Line.Copy()
	prev := 0.0
	for _, f := range fracs {
		// f is a fraction of the whole trail; rescale to the remainder
		local := (f - prev) / (1 - prev)
		head, tail := remaining.Cut(local)
		segments = append(segments, newSegment(t, len(segments), head))
		remaining = tail
		prev = f
	}
	segments = append(segments, newSegment(t, len(segments), remaining))
	normaliseFractions(segments)
	return segments
}

// cutFractions converts split points to sorted interior path fractions.
func cutFractions(t Trail, points []geo.Pos, toleranceKm float64) []float64 {
	if t.Length == 0 {
		return nil
	}
	// fractions within this distance of each other (or of an endpoint)
	// collapse, so cutting never produces zero-length segments
	eps := (toleranceKm / 2) / t.Length
	var fracs []float64
	for _, p := range points {
		f, dist := t.Line.Project(p)
		if dist > toleranceKm {
			continue // not on this trail
		}
		if f <= eps || f >= 1-eps {
			continue // coincident with an endpoint
		}
		fracs = append(fracs, f)
	}
	sort.Float64s(fracs)
	var merged []float64
	for _, f := range fracs {
		if len(merged) > 0 && f-merged[len(merged)-1] < eps {
			continue
		}
		merged = append(merged, f)
	}
	return merged
}

// normaliseFractions absorbs floating error so segment fractions sum to
// exactly 1.0, with the adjustment landing on the last segment.
func normaliseFractions(segments []Segment) {
	var sum float64
	for _, s := range segments[:len(segments)-1] {
		sum += s.Fraction
	}
	segments[len(segments)-1].Fraction = 1 - sum
}

// filterShortSegments drops segments below the minimum length, unless the
// drop would strand a node: a short segment whose endpoints both touch other
// segments at two distinct places is a link between junctions and is kept,
// flagged. A segment whose own endpoints fall within the snap tolerance of
// each other coalesces to a single node, so removing it cannot disconnect
// anything; it is dropped like a dead-end nub.
func filterShortSegments(segments []Segment, minKm, toleranceKm float64, diags *[]Diagnostic) []Segment {
	short := make([]bool, len(segments))
	var any bool
	for i, s := range segments {
		if s.Length < minKm {
			short[i] = true
			any = true
		}
	}
	if !any {
		return segments
	}

	touches := func(i int, p geo.Pos) bool {
		for j, s := range segments {
			if j == i {
				continue
			}
			if s.Line.Start().Distance(p) <= toleranceKm || s.Line.End().Distance(p) <= toleranceKm {
				return true
			}
		}
		return false
	}

	out := segments[:0:0]
	for i, s := range segments {
		if !short[i] {
			out = append(out, s)
			continue
		}
		pointlike := s.Line.Start().Distance(s.Line.End()) <= toleranceKm
		if !pointlike && touches(i, s.Line.Start()) && touches(i, s.Line.End()) {
			s.Flagged = true
			out = append(out, s)
			*diags = append(*diags, Diagnostic{
				Kind:    ShortSegmentKept,
				TrailID: s.TrailID,
				Detail:  s.String() + " below minimum length but dropping it would disconnect the network",
			})
			continue
		}
		*diags = append(*diags, Diagnostic{
			Kind:    ShortSegmentDropped,
			TrailID: s.TrailID,
			Detail:  s.String() + " below minimum length",
		})
	}
	return out
}
