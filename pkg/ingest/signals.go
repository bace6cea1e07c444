package ingest

import (
	"fmt"
	"os"

	"github.com/plantops/assetgraph/pkg/types"
	"gopkg.in/yaml.v3"
)

// DefaultSignals returns the built-in simulated signal set: two temperature
// signals and two pressure signals matching the seeded catalog.
func DefaultSignals() []types.SimulatedSignal {
	return []types.SimulatedSignal{
		{ID: "sig-1", Base: 45, Variance: 5},
		{ID: "sig-2", Base: 42, Variance: 5},
		{ID: "sig-3", Base: 100, Variance: 10},
		{ID: "sig-4", Base: 98, Variance: 10},
	}
}

// signalManifest is the YAML shape of a signal definition file.
type signalManifest struct {
	Signals []types.SimulatedSignal `yaml:"signals"`
}

// LoadSignals reads simulated signal definitions from a YAML manifest.
func LoadSignals(path string) ([]types.SimulatedSignal, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read signals file: %w", err)
	}
	var manifest signalManifest
	if err := yaml.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("parse signals file: %w", err)
	}
	if len(manifest.Signals) == 0 {
		return nil, fmt.Errorf("signals file %s defines no signals", path)
	}
	for _, sig := range manifest.Signals {
		if sig.ID == "" {
			return nil, fmt.Errorf("signals file %s contains a signal without an id", path)
		}
		if sig.Variance < 0 {
			return nil, fmt.Errorf("signal %s has negative variance", sig.ID)
		}
	}
	return manifest.Signals, nil
}
