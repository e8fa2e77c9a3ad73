// Package metrics observes a running Wisdom-Holman simulation block by
// block and reports drift-style diagnostics over its history.
package metrics

import (
	"math"

	"github.com/wisdom-holman/whsim/internal/wh"
)

// EnergyDrift tracks the largest relative deviation of total planetary
// energy from its value at the first observation.
type EnergyDrift struct {
	name          string
	initialEnergy float64
	maxDrift      float64
	samples       int
}

func NewEnergyDrift() *EnergyDrift {
	return &EnergyDrift{name: "energy_drift"}
}

func (e *EnergyDrift) Name() string { return e.name }

// Observe records the planetary energy at a block boundary.
func (e *EnergyDrift) Observe(pl *wh.PlanetState) {
	energy, _ := wh.CalculatePlanetMetrics(pl)

	if e.samples == 0 {
		e.initialEnergy = energy
	}
	e.samples++

	if e.initialEnergy != 0 {
		drift := math.Abs(energy-e.initialEnergy) / math.Abs(e.initialEnergy)
		e.maxDrift = math.Max(e.maxDrift, drift)
	}
}

func (e *EnergyDrift) Value() float64 { return e.maxDrift }

func (e *EnergyDrift) Reset() {
	e.initialEnergy = 0
	e.maxDrift = 0
	e.samples = 0
}

// AngularMomentumDrift is EnergyDrift's angular-momentum analogue.
type AngularMomentumDrift struct {
	name     string
	initialL float64
	maxDrift float64
	samples  int
}

func NewAngularMomentumDrift() *AngularMomentumDrift {
	return &AngularMomentumDrift{name: "angular_momentum_drift"}
}

func (a *AngularMomentumDrift) Name() string { return a.name }

func (a *AngularMomentumDrift) Observe(pl *wh.PlanetState) {
	_, l := wh.CalculatePlanetMetrics(pl)

	if a.samples == 0 {
		a.initialL = l
	}
	a.samples++

	if a.initialL != 0 {
		drift := math.Abs(l-a.initialL) / math.Abs(a.initialL)
		a.maxDrift = math.Max(a.maxDrift, drift)
	}
}

func (a *AngularMomentumDrift) Value() float64 { return a.maxDrift }

func (a *AngularMomentumDrift) Reset() {
	a.initialL = 0
	a.maxDrift = 0
	a.samples = 0
}
