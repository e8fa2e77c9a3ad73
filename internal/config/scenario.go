package config

import (
	"math"

	"github.com/wisdom-holman/whsim/internal/vecmath"
	"github.com/wisdom-holman/whsim/internal/wh"
)

// BodySeed describes one massive body's initial heliocentric state. Body
// 0 must be the central mass, at rest at the origin.
type BodySeed struct {
	Name       string
	Mass       float64
	X, Y, Z    float64
	VX, VY, VZ float64
}

// DiskSeed describes a ring of massless test particles on circular
// orbits about the central mass, spread uniformly in true anomaly and
// linearly in semimajor axis between RMin and RMax.
type DiskSeed struct {
	Count      int
	RMin, RMax float64
}

// Scenario bundles an integrator configuration with the initial
// conditions that seed a run.
type Scenario struct {
	Name   string
	Bundle Bundle
	Bodies []BodySeed
	Disk   DiskSeed
}

// BuildPlanets allocates and fills a wh.PlanetState from the scenario's
// body seeds.
func (s Scenario) BuildPlanets() *wh.PlanetState {
	pl := wh.NewPlanetState(len(s.Bodies), s.Bundle.TimeBlockSize)
	for i, b := range s.Bodies {
		pl.M[i] = b.Mass
		pl.R[i] = vecmath.New(b.X, b.Y, b.Z)
		pl.V[i] = vecmath.New(b.VX, b.VY, b.VZ)
	}
	return pl
}

// BuildParticles allocates a wh.ParticleState seeded with the scenario's
// disk, each particle on a circular orbit about body 0.
func (s Scenario) BuildParticles() *wh.ParticleState {
	pa := wh.NewParticleState(s.Disk.Count)
	if s.Disk.Count == 0 {
		return pa
	}

	mu := s.Bodies[0].Mass
	span := s.Disk.RMax - s.Disk.RMin
	for i := 0; i < s.Disk.Count; i++ {
		frac := float64(i) / float64(s.Disk.Count)
		r := s.Disk.RMin + frac*span
		theta := 2 * math.Pi * frac

		v := math.Sqrt(mu / r)
		pa.R[i] = vecmath.New(r*math.Cos(theta), r*math.Sin(theta), 0)
		pa.V[i] = vecmath.New(-v*math.Sin(theta), v*math.Cos(theta), 0)
	}
	return pa
}
