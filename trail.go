package trailnet

import (
	"fmt"

	"github.com/carthorse/trailnet/geo"
	"github.com/google/uuid"
)

// Trail is an immutable source record: one raw line geometry with metadata.
// Trails are created at ingestion and never mutated; splitting produces
// Segments that supersede them.
type Trail struct {
	ID     string            // unique identifier; generated when the source has none
	Name   string            // display name
	Line   geo.Line          // ordered lon/lat/ele vertices
	Length float64           // km, derived from Line
	Gain   float64           // m climbed, derived from Line
	Loss   float64           // m descended, derived from Line
	Tags   map[string]string // free-form source metadata
}

// NewTrail builds a Trail with derived length and elevation profile. An empty
// id gets a deterministic uuid from the name and geometry, so repeated
// ingestion of the same source yields the same identifier.
func NewTrail(id, name string, line geo.Line, tags map[string]string) Trail {
	if id == "" {
		seed := fmt.Sprintf("trail:%s:%d:%v:%v", name, len(line), line.Start(), line.End())
		id = uuid.NewSHA1(uuid.NameSpaceOID, []byte(seed)).String()
	}
	gain, loss := line.ElevationProfile()
	return Trail{
		ID:     id,
		Name:   name,
		Line:   line,
		Length: line.Length(),
		Gain:   gain,
		Loss:   loss,
		Tags:   tags,
	}
}

// Segment is a contiguous piece of one Trail produced by splitting. Segments
// of a trail concatenated in ordinal order reproduce the trail's original
// point sequence, with the shared boundary vertex appearing in both
// neighbours.
type Segment struct {
	TrailID   string   // originating trail
	TrailName string
	Ordinal   int      // position along the original trail, from 0
	Fraction  float64  // share of the original trail's length, all ordinals sum to 1
	Line      geo.Line
	Length    float64  // km
	Flagged   bool     // shorter than the minimum but kept to preserve connectivity
}

func (s Segment) String() string {
	return fmt.Sprintf("%s#%d (%.3fkm)", s.TrailID, s.Ordinal, s.Length)
}

func newSegment(t Trail, ordinal int, line geo.Line) Segment {
	length := line.Length()
	var fraction float64
	if t.Length > 0 {
		fraction = length / t.Length
	}
	return Segment{
		TrailID:   t.ID,
		TrailName: t.Name,
		Ordinal:   ordinal,
		Fraction:  fraction,
		Line:      line,
		Length:    length,
	}
}
