package trailnet

import (
	"fmt"
	"math"

	"github.com/carthorse/trailnet/geo"
)

// isLoop reports whether the trail closes on itself: start and end within
// tolerance. A trail whose whole length fits inside the tolerance is not a
// loop, it is noise for the short-segment filter.
func isLoop(t Trail, toleranceKm float64) bool {
	return t.Length > toleranceKm && t.Line.Start().Distance(t.Line.End()) <= toleranceKm
}

// splitLoop cuts a self-closing trail into exactly two segments. A single
// edge must not start and end at the same node, so the whole-loop record is
// retired and only the two halves go on to graph assembly.
//
// The cut lands on an intersection point with another trail when one lies in
// the loop's interior, preferring the point nearest the halfway mark so the
// halves stay balanced. Without intersections the cut is the path-length
// midpoint.
func splitLoop(t Trail, intersections []geo.Pos, toleranceKm float64) ([]Segment, Diagnostic) {
	cut := 0.5
	detail := "cut at path midpoint"
	if t.Length > 0 {
		eps := (toleranceKm / 2) / t.Length
		best := math.Inf(1)
		for _, p := range intersections {
			f, dist := t.Line.Project(p)
			if dist > toleranceKm || f <= eps || f >= 1-eps {
				continue
			}
			if d := math.Abs(f - 0.5); d < best || (d == best && f < cut) {
				best = d
				cut = f
			}
		}
		if !math.IsInf(best, 1) {
			detail = fmt.Sprintf("cut at intersection point, %.1f%% along the loop", cut*100)
		}
	}

	head, tail := t.Line.Cut(cut)
	segments := []Segment{
		newSegment(t, 0, head),
		newSegment(t, 1, tail),
	}
	normaliseFractions(segments)
	return segments, Diagnostic{Kind: LoopSplit, TrailID: t.ID, Detail: detail}
}
