package geo

import (
	"math"
	"sort"
)

// DefaultPrecision is the decimal precision coordinates are rounded to before
// comparison. Six places is roughly 0.11m on the ground, fine enough to keep
// real detail and coarse enough that floating-point near-misses collapse.
const DefaultPrecision = 6

// Round rounds lat and lon to the given number of decimal places. Elevation
// is left alone.
func Round(p Pos, digits int) Pos {
	scale := math.Pow(10, float64(digits))
	return Pos{
		Lat: math.Round(p.Lat*scale) / scale,
		Lon: math.Round(p.Lon*scale) / scale,
		Ele: p.Ele,
	}
}

func (l Line) Round(digits int) Line {
	out := make(Line, len(l))
	for i, pos := range l {
		out[i] = Round(pos, digits)
	}
	return out
}

// Snap returns a copy of l with every vertex within toleranceKm of the target
// line pulled onto the target. Vertices further away are unchanged.
func (l Line) Snap(target Line, toleranceKm float64) Line {
	out := make(Line, len(l))
	for i, pos := range l {
		nearest, dist := target.Nearest(pos)
		if dist <= toleranceKm {
			out[i] = Pos{Lat: nearest.Lat, Lon: nearest.Lon, Ele: pos.Ele}
		} else {
			out[i] = pos
		}
	}
	return out
}

// Nearest returns the point on the line closest to p and its distance in km.
func (l Line) Nearest(p Pos) (Pos, float64) {
	best := l[0]
	bestDist := p.Distance(l[0])
	for i := 1; i < len(l); i++ {
		c, _ := closestOnSegment(p, l[i-1], l[i])
		if d := p.Distance(c); d < bestDist {
			best, bestDist = c, d
		}
	}
	return best, bestDist
}

// Project returns the position of the point on the line nearest p as a
// fraction of total path length, plus the offset distance in km.
func (l Line) Project(p Pos) (frac float64, dist float64) {
	total := l.Length()
	if total == 0 {
		return 0, p.Distance(l[0])
	}
	var before float64
	var bestAt float64
	bestDist := math.Inf(1)
	for i := 1; i < len(l); i++ {
		c, t := closestOnSegment(p, l[i-1], l[i])
		if d := p.Distance(c); d < bestDist {
			bestDist = d
			bestAt = before + t*l[i-1].Distance(l[i])
		}
		before += l[i-1].Distance(l[i])
	}
	return bestAt / total, bestDist
}

// PointAt returns the position at fraction f of the line's path length, with
// elevation interpolated between the bracketing vertices.
func (l Line) PointAt(f float64) Pos {
	if f <= 0 {
		return l.Start()
	}
	if f >= 1 {
		return l.End()
	}
	want := f * l.Length()
	var walked float64
	for i := 1; i < len(l); i++ {
		step := l[i-1].Distance(l[i])
		if walked+step >= want && step > 0 {
			t := (want - walked) / step
			return lerp(l[i-1], l[i], t)
		}
		walked += step
	}
	return l.End()
}

// Cut splits the line at fraction f of its path length. Both halves share the
// cut vertex, so MergeLines of the two halves reproduces the original.
func (l Line) Cut(f float64) (Line, Line) {
	want := f * l.Length()
	var walked float64
	for i := 1; i < len(l); i++ {
		step := l[i-1].Distance(l[i])
		if walked+step >= want {
			t := 0.0
			if step > 0 {
				t = (want - walked) / step
			}
			cut := lerp(l[i-1], l[i], t)
			var head Line
			head = append(head, l[:i]...)
			if head[len(head)-1] != cut {
				head = append(head, cut)
			}
			var tail Line
			tail = append(tail, cut)
			if l[i] != cut {
				tail = append(tail, l[i:]...)
			} else {
				tail = append(tail, l[i+1:]...)
			}
			return head, tail
		}
		walked += step
	}
	return l.Copy(), Line{l.End()}
}

// Intersections returns the points where lines a and b cross or touch within
// toleranceKm, ordered by position along a and deduplicated within tolerance.
// Endpoint contacts count: a T-intersection with a 0m gap is one point.
func Intersections(a, b Line, toleranceKm float64) []Pos {
	var hits []Pos
	for i := 1; i < len(a); i++ {
		for j := 1; j < len(b); j++ {
			if p, ok := segmentCrossing(a[i-1], a[i], b[j-1], b[j]); ok {
				hits = append(hits, p)
			}
		}
	}
	// touches: a vertex of either line lying on (or within tolerance of)
	// the other line, which planar crossing misses for tangent contacts
	for _, pos := range a {
		if n, d := b.Nearest(pos); d <= toleranceKm {
			hits = append(hits, Pos{Lat: n.Lat, Lon: n.Lon, Ele: pos.Ele})
		}
	}
	for _, pos := range b {
		if n, d := a.Nearest(pos); d <= toleranceKm {
			hits = append(hits, n)
		}
	}
	return dedupeAlong(a, hits, toleranceKm)
}

// SelfIntersections returns points where the line crosses itself. Adjacent
// segments (which always share a vertex) are skipped, as is the start/end
// contact of a closed loop.
func SelfIntersections(l Line, toleranceKm float64) []Pos {
	var hits []Pos
	for i := 1; i < len(l); i++ {
		for j := i + 2; j < len(l); j++ {
			if i == 1 && j == len(l)-1 && l.Start().Distance(l.End()) <= toleranceKm {
				continue
			}
			if p, ok := segmentCrossing(l[i-1], l[i], l[j-1], l[j]); ok {
				hits = append(hits, p)
			}
		}
	}
	return dedupeAlong(l, hits, toleranceKm)
}

// dedupeAlong orders hits by their fraction along ref and merges points
// closer together than toleranceKm.
func dedupeAlong(ref Line, hits []Pos, toleranceKm float64) []Pos {
	if len(hits) == 0 {
		return nil
	}
	type at struct {
		frac float64
		pos  Pos
	}
	ordered := make([]at, 0, len(hits))
	for _, h := range hits {
		f, _ := ref.Project(h)
		ordered = append(ordered, at{frac: f, pos: h})
	}
	sort.Slice(ordered, func(i, j int) bool {
		if ordered[i].frac != ordered[j].frac {
			return ordered[i].frac < ordered[j].frac
		}
		if ordered[i].pos.Lat != ordered[j].pos.Lat {
			return ordered[i].pos.Lat < ordered[j].pos.Lat
		}
		return ordered[i].pos.Lon < ordered[j].pos.Lon
	})
	var out []Pos
	for _, h := range ordered {
		if len(out) > 0 && out[len(out)-1].Distance(h.pos) <= toleranceKm {
			continue
		}
		out = append(out, h.pos)
	}
	return out
}

// lerp interpolates between two positions, elevation included.
func lerp(a, b Pos, t float64) Pos {
	return Pos{
		Lat: a.Lat + (b.Lat-a.Lat)*t,
		Lon: a.Lon + (b.Lon-a.Lon)*t,
		Ele: a.Ele + (b.Ele-a.Ele)*t,
	}
}

// closestOnSegment returns the point on segment ab nearest p and the
// parameter t in [0,1] along the segment.
func closestOnSegment(p, a, b Pos) (Pos, float64) {
	latRef := (a.Lat + b.Lat) / 2
	cos := math.Cos(latRef * math.Pi / 180)
	ax, ay := a.Lon*cos, a.Lat
	bx, by := b.Lon*cos, b.Lat
	px, py := p.Lon*cos, p.Lat
	dx, dy := bx-ax, by-ay
	den := dx*dx + dy*dy
	if den == 0 {
		return a, 0
	}
	t := ((px-ax)*dx + (py-ay)*dy) / den
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	return lerp(a, b, t), t
}

// segmentCrossing solves for a proper crossing of segments ab and cd in a
// local planar frame. Parallel or non-overlapping segments return false.
func segmentCrossing(a, b, c, d Pos) (Pos, bool) {
	latRef := (a.Lat + b.Lat + c.Lat + d.Lat) / 4
	cos := math.Cos(latRef * math.Pi / 180)
	ax, ay := a.Lon*cos, a.Lat
	bx, by := b.Lon*cos, b.Lat
	cx, cy := c.Lon*cos, c.Lat
	dx, dy := d.Lon*cos, d.Lat
	den := (bx-ax)*(dy-cy) - (by-ay)*(dx-cx)
	if den == 0 {
		return Pos{}, false
	}
	t := ((cx-ax)*(dy-cy) - (cy-ay)*(dx-cx)) / den
	u := ((cx-ax)*(by-ay) - (cy-ay)*(bx-ax)) / den
	if t < 0 || t > 1 || u < 0 || u > 1 {
		return Pos{}, false
	}
	return lerp(a, b, t), true
}
