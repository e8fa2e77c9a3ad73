// Package wh implements a Wisdom-Holman mixed-variable symplectic
// integrator: planets advance in heliocentric coordinates via Jacobi-frame
// Kepler drifts, and a large population of massless test particles is
// advanced in the field of the logged planetary trajectory. See the
// package-level operations on [Integrator] for the driver-facing API.
package wh

import "github.com/wisdom-holman/whsim/internal/vecmath"

// DeathFlag bits. The low byte carries the cause; the high byte, when the
// cause is a collision, carries the index of the colliding planet.
const (
	DeathCollided uint16 = 0x0001
	DeathEscaped  uint16 = 0x0002
)

// EncodeCollision packs a colliding planet index into the death-flag
// bitfield alongside DeathCollided.
func EncodeCollision(planetIndex int) uint16 {
	return uint16(planetIndex<<8) | DeathCollided
}

// CollidingPlanet extracts the colliding planet index from a death flag
// that has DeathCollided set. Callers must check the bit first.
func CollidingPlanet(flags uint16) int {
	return int(flags >> 8)
}

// PlanetState holds the massive bodies, indexed 0..NAlive-1, with body 0
// the central mass. R and V are heliocentric; R[0] and V[0] are the zero
// vector by construction.
type PlanetState struct {
	M []float64
	R []vecmath.Vec3
	V []vecmath.Vec3

	NAlive int

	// RLog and VLog hold one entry per (timestep, alive body 1..NAlive-1)
	// pair, flattened as (NAlive-1)*timestepIndex + (i-1), written once per
	// timestep by a planet step and read by particle steps in the same
	// block.
	RLog []vecmath.Vec3
	VLog []vecmath.Vec3

	// H0Log holds one heliocentric reference acceleration per timestep,
	// reused by particle acceleration in the same block.
	H0Log []vecmath.Vec3
}

// NewPlanetState allocates a PlanetState for n bodies (including the
// central mass) and a log long enough for tbsize timesteps.
func NewPlanetState(n, tbsize int) *PlanetState {
	return &PlanetState{
		M:      make([]float64, n),
		R:      make([]vecmath.Vec3, n),
		V:      make([]vecmath.Vec3, n),
		NAlive: n,
		RLog:   make([]vecmath.Vec3, (n-1)*tbsize),
		VLog:   make([]vecmath.Vec3, (n-1)*tbsize),
		H0Log:  make([]vecmath.Vec3, tbsize),
	}
}

// LogOffset returns the flat offset of planet i (1-based, i>=1) at
// timestep ts within RLog/VLog.
func (pl *PlanetState) LogOffset(ts, i int) int {
	return (pl.NAlive-1)*ts + (i - 1)
}

// ParticleState holds the massless test particles, indexed 0..N-1.
type ParticleState struct {
	R []vecmath.Vec3
	V []vecmath.Vec3

	DeathFlags []uint16
	DeathTime  []float64
}

// NewParticleState allocates a ParticleState for n particles, all alive.
func NewParticleState(n int) *ParticleState {
	return &ParticleState{
		R:          make([]vecmath.Vec3, n),
		V:          make([]vecmath.Vec3, n),
		DeathFlags: make([]uint16, n),
		DeathTime:  make([]float64, n),
	}
}

// Alive reports whether particle i has not been flagged dead.
func (pa *ParticleState) Alive(i int) bool {
	return pa.DeathFlags[i] == 0
}

// Len returns the number of particles tracked (alive or dead).
func (pa *ParticleState) Len() int {
	return len(pa.R)
}

// Params is the configuration bundle consumed by the integrator (spec §6).
type Params struct {
	Dt                float64
	TimeBlockSize     int
	ResolveEncounters bool
	EncounterN1       int
	EncounterN2       int
	EncounterR1       float64
	EncounterR2       float64
	CollisionRadius   float64
	EscapeRadius      float64

	// Parallel enables chunked goroutine fan-out over particle ranges in
	// IntegrateParticlesTimeblock. Each chunk's accelerations, drift, and
	// death-flag writes touch only that chunk's particle indices, so no
	// cross-chunk synchronization is needed; disable for bit-identical
	// single-threaded runs.
	Parallel      bool
	MinChunkSize  int
}

// DefaultParams returns the spec's documented defaults.
func DefaultParams() Params {
	return Params{
		Dt:                1.0 / 50.0,
		TimeBlockSize:     128,
		ResolveEncounters: true,
		EncounterN1:       4,
		EncounterN2:       16,
		EncounterR1:       3.0,
		EncounterR2:       8.0,
		CollisionRadius:   0.5,
		EscapeRadius:      200.0,
		Parallel:          true,
		MinChunkSize:      256,
	}
}

const (
	// MaxKeplerIter bounds the Newton iteration for the universal Kepler
	// equation (spec §4.3, MAXKEP).
	MaxKeplerIter = 10
	// KeplerTolerance is the convergence threshold on the Newton step
	// (spec §4.3, TOLKEP). The original source used 1e-13; spec.md is
	// authoritative and tightens this to 1e-14.
	KeplerTolerance = 1e-14
)
