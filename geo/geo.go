package geo

import (
	"math"

	"github.com/golang/geo/s2"
)

// Mean earth radius, used to convert spherical angles to ground distance.
const earthRadiusKm = 6371.0088

type Line []Pos

func (l Line) Length() float64 {
	var total float64
	for i, pos := range l {
		if i == 0 {
			continue
		}
		total += l[i-1].Distance(pos)
	}
	return total
}

func (l Line) Reverse() {
	for i, j := 0, len(l)-1; i < j; i, j = i+1, j-1 {
		l[i], l[j] = l[j], l[i]
	}
}

// Reversed returns a reversed copy, leaving l untouched.
func (l Line) Reversed() Line {
	out := make(Line, len(l))
	for i, pos := range l {
		out[len(l)-1-i] = pos
	}
	return out
}

// Start is the first Pos in the line
func (l Line) Start() Pos {
	return l[0]
}

// End is the last Pos in the line
func (l Line) End() Pos {
	return l[len(l)-1]
}

func (l Line) Copy() Line {
	out := make(Line, len(l))
	copy(out, l)
	return out
}

// MergeLines concatenates lines end to start. Where one line ends on the next
// line's start vertex the duplicate vertex is dropped, so merging the two
// halves of a cut reproduces the original point sequence.
func MergeLines(lines []Line) Line {
	var out Line
	for _, l := range lines {
		if len(out) > 0 && len(l) > 0 && out[len(out)-1] == l[0] {
			l = l[1:]
		}
		out = append(out, l...)
	}
	return out
}

// ElevationProfile is the total climb and total descent along the line, both
// reported as non-negative.
func (l Line) ElevationProfile() (gain, loss float64) {
	for i, pos := range l {
		if i == 0 {
			continue
		}
		d := pos.Ele - l[i-1].Ele
		if d > 0 {
			gain += d
		} else {
			loss -= d
		}
	}
	return gain, loss
}

// Bounds is the lat/lng rectangle covering all vertices.
func (l Line) Bounds() s2.Rect {
	rb := s2.NewRectBounder()
	for _, pos := range l {
		rb.AddPoint(s2.PointFromLatLng(s2.LatLngFromDegrees(pos.Lat, pos.Lon)))
	}
	return rb.RectBound()
}

// BoundsOverlap reports whether the two rectangles intersect after each has
// been grown by marginKm of ground distance.
func BoundsOverlap(a, b s2.Rect, marginKm float64) bool {
	margin := marginKm / earthRadiusKm // radians
	a = s2.Rect{Lat: a.Lat.Expanded(margin), Lng: a.Lng.Expanded(margin)}
	b = s2.Rect{Lat: b.Lat.Expanded(margin), Lng: b.Lng.Expanded(margin)}
	return a.Intersects(b)
}

// Valid reports whether the line is usable as a trail geometry: at least two
// vertices, all coordinates finite and in range.
func (l Line) Valid() bool {
	if len(l) < 2 {
		return false
	}
	for _, pos := range l {
		if math.IsNaN(pos.Lat) || math.IsNaN(pos.Lon) || math.IsNaN(pos.Ele) {
			return false
		}
		if math.IsInf(pos.Lat, 0) || math.IsInf(pos.Lon, 0) || math.IsInf(pos.Ele, 0) {
			return false
		}
		if pos.Lat < -90 || pos.Lat > 90 || pos.Lon < -180 || pos.Lon > 180 {
			return false
		}
	}
	return true
}

type Pos struct {
	Lat, Lon, Ele float64
}

// distance in km to another location (only considering lat and lon)
func (p1 Pos) Distance(p2 Pos) float64 {
	ll1 := s2.LatLngFromDegrees(p1.Lat, p1.Lon)
	ll2 := s2.LatLngFromDegrees(p2.Lat, p2.Lon)
	return ll1.Distance(ll2).Radians() * earthRadiusKm
}
