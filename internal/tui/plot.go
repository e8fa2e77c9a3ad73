package tui

import (
	"fmt"

	"github.com/guptarohit/asciigraph"

	"github.com/wisdom-holman/whsim/internal/store"
)

// PlotDrift renders an asciigraph rendering of a persisted run's energy
// and angular-momentum drift over its metrics log, one point per
// timeblock (spec §4.14), grounded on the teacher's asciigraph usage in
// cmd/dynsim/main.go.
func PlotDrift(runID string, samples []store.MetricsSample) (string, error) {
	if len(samples) == 0 {
		return "", fmt.Errorf("no metrics recorded for run %s", runID)
	}

	energy := make([]float64, len(samples))
	angular := make([]float64, len(samples))
	for i, s := range samples {
		energy[i] = s.EnergyDrift
		angular[i] = s.AngularMomentumDrift
	}

	energyGraph := asciigraph.Plot(energy,
		asciigraph.Height(10),
		asciigraph.Width(60),
		asciigraph.Caption(fmt.Sprintf("%s: energy drift", runID)),
	)
	angularGraph := asciigraph.Plot(angular,
		asciigraph.Height(10),
		asciigraph.Width(60),
		asciigraph.Caption(fmt.Sprintf("%s: angular momentum drift", runID)),
	)

	return energyGraph + "\n\n" + angularGraph, nil
}
