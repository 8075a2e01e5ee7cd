package trailnet

import (
	"fmt"
	"math"
)

// CompositionEpsilon is the tolerance on an edge's percentage sum.
const CompositionEpsilon = 0.01

// CompositionEntry maps one slice of an edge back to its source trail: which
// trail, what share of the edge's length, and which segment of that trail.
// Entries are ordered along the edge with no gaps.
type CompositionEntry struct {
	TrailID        string
	TrailName      string
	Percent        float64 // share of the edge's length, all entries sum to 100
	SegmentOrdinal int     // sequence number of the source segment along its trail
}

// CompositionIndex answers, for any edge at any point in the pipeline, which
// original trails make it up, in what order and proportion. It is an
// append-only ledger: entries are written when an edge is created and only
// replaced wholesale when edges merge.
type CompositionIndex struct {
	entries map[int][]CompositionEntry
}

func NewCompositionIndex() *CompositionIndex {
	return &CompositionIndex{entries: map[int][]CompositionEntry{}}
}

// Init records a freshly assembled edge as 100% of its source segment.
func (ci *CompositionIndex) Init(edgeID int, seg Segment) {
	ci.entries[edgeID] = []CompositionEntry{{
		TrailID:        seg.TrailID,
		TrailName:      seg.TrailName,
		Percent:        100,
		SegmentOrdinal: seg.Ordinal,
	}}
}

// Entries returns a copy of the edge's ledger in order along the edge.
func (ci *CompositionIndex) Entries(edgeID int) []CompositionEntry {
	src := ci.entries[edgeID]
	out := make([]CompositionEntry, len(src))
	copy(out, src)
	return out
}

// mergePart is one constituent of a merged edge: the source edge, its share
// of the new edge's length, and whether it was traversed geometry-reversed.
type mergePart struct {
	edgeID   int
	share    float64
	reversed bool
}

// SetMergedFrom writes the new edge's ledger as the ordered concatenation of
// its constituents' ledgers from src, percentages rescaled by each
// constituent's share of the new length. A reversed constituent contributes
// its entries in reverse order so the ledger still reads start-to-end along
// the new edge.
func (ci *CompositionIndex) SetMergedFrom(src *CompositionIndex, edgeID int, parts []mergePart) {
	var merged []CompositionEntry
	for _, part := range parts {
		src := src.entries[part.edgeID]
		ordered := make([]CompositionEntry, len(src))
		copy(ordered, src)
		if part.reversed {
			for i, j := 0, len(ordered)-1; i < j; i, j = i+1, j-1 {
				ordered[i], ordered[j] = ordered[j], ordered[i]
			}
		}
		for _, e := range ordered {
			e.Percent *= part.share
			merged = append(merged, e)
		}
	}
	ci.entries[edgeID] = merged
}

// Drop removes an edge's ledger, used when the edge itself is dropped.
func (ci *CompositionIndex) Drop(edgeID int) {
	delete(ci.entries, edgeID)
}

// Validate checks the ledger invariant for one edge: percentages sum to 100
// within epsilon and every entry carries a positive share.
func (ci *CompositionIndex) Validate(edgeID int) error {
	entries, ok := ci.entries[edgeID]
	if !ok {
		return fmt.Errorf("edge %d has no composition entries", edgeID)
	}
	var sum float64
	for i, e := range entries {
		if e.Percent <= 0 {
			return fmt.Errorf("edge %d entry %d has non-positive share %.4f", edgeID, i, e.Percent)
		}
		sum += e.Percent
	}
	if math.Abs(sum-100) > CompositionEpsilon {
		return fmt.Errorf("edge %d composition sums to %.4f%%, want 100%%", edgeID, sum)
	}
	return nil
}

// TrailNames returns the distinct trail names across the given edges, in
// first-appearance order along the route.
func (ci *CompositionIndex) TrailNames(edgeIDs []int) []string {
	seen := map[string]bool{}
	var names []string
	for _, id := range edgeIDs {
		for _, e := range ci.entries[id] {
			name := e.TrailName
			if name == "" {
				name = e.TrailID
			}
			if !seen[name] {
				seen[name] = true
				names = append(names, name)
			}
		}
	}
	return names
}
