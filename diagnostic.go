package trailnet

import "fmt"

// DiagnosticKind classifies per-item conditions reported alongside a build or
// search result. None of these abort the whole run.
type DiagnosticKind string

const (
	// GeometryInvalid marks a malformed input geometry. The trail is
	// excluded from splitting but always leaves this record behind.
	GeometryInvalid DiagnosticKind = "geometry-invalid"
	// AmbiguousMerge marks a degree-2 node whose two incident edges are
	// geometrically coincident, so the merge direction cannot be resolved.
	// The chain is left unmerged.
	AmbiguousMerge DiagnosticKind = "ambiguous-merge"
	// CompositionImbalance marks an edge whose provenance percentages no
	// longer sum to 100. A freshly merged edge failing the check is dropped;
	// an imbalance surfacing in the final sweep is reported with the edge
	// left in place for the operator to judge. The build continues.
	CompositionImbalance DiagnosticKind = "composition-imbalance"
	// ToleranceExhausted marks a route search that found no candidate
	// within the pattern's tolerance. An empty result, not an error.
	ToleranceExhausted DiagnosticKind = "tolerance-exhausted"
	// LoopSplit records that a self-closing trail was cut into two
	// segments and its whole-loop record retired.
	LoopSplit DiagnosticKind = "loop-split"
	// ShortSegmentDropped records a sub-minimum segment removed as noise.
	ShortSegmentDropped DiagnosticKind = "short-segment-dropped"
	// ShortSegmentKept records a sub-minimum segment retained because
	// dropping it would have stranded a node.
	ShortSegmentKept DiagnosticKind = "short-segment-kept"
	// SearchBudgetExhausted records that cycle enumeration hit its
	// expansion budget and returned the candidates found so far.
	SearchBudgetExhausted DiagnosticKind = "search-budget-exhausted"
)

// Diagnostic is one per-item report. TrailID or EdgeID is set when the
// condition concerns a specific trail or edge.
type Diagnostic struct {
	Kind    DiagnosticKind
	TrailID string
	EdgeID  int
	Detail  string
}

func (d Diagnostic) String() string {
	switch {
	case d.TrailID != "":
		return fmt.Sprintf("%s: trail %s: %s", d.Kind, d.TrailID, d.Detail)
	case d.EdgeID != 0 || d.Kind == CompositionImbalance || d.Kind == AmbiguousMerge:
		return fmt.Sprintf("%s: edge %d: %s", d.Kind, d.EdgeID, d.Detail)
	default:
		return fmt.Sprintf("%s: %s", d.Kind, d.Detail)
	}
}
