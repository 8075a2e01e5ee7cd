package cli

import (
	"fmt"
	"log"
	"os"

	"github.com/carthorse/trailnet"
	"github.com/carthorse/trailnet/internal/ingest"
)

// loadNetwork ingests a trails GeoJSON file and builds the network, logging
// every diagnostic. Diagnostics never fail the command; they are for the
// operator to judge.
func loadNetwork(path string) (*trailnet.Graph, *trailnet.CompositionIndex, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	in := progressReader(f)
	trails, diags, err := ingest.Trails(in)
	in.Close()
	if err != nil {
		return nil, nil, fmt.Errorf("ingesting trails: %w", err)
	}

	g, ci, buildDiags, err := trailnet.BuildNetwork(trails, buildOptions())
	if err != nil {
		return nil, nil, fmt.Errorf("building network: %w", err)
	}
	for _, d := range append(diags, buildDiags...) {
		log.Printf("diagnostic: %s", d)
	}
	return g, ci, nil
}
