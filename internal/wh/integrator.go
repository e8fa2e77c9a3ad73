package wh

import (
	"fmt"
	"sync"

	"github.com/wisdom-holman/whsim/internal/vecmath"
)

// Frame identifies the frame PlanetState/ParticleState positions and
// velocities are given in at construction time.
type Frame int

const (
	Heliocentric Frame = iota
	Barycentric
)

// StepEngine is the capability set a driver needs to run a Wisdom-Holman
// simulation: advance planets, advance particles, compact survivors, and
// catch a particle up to the end of a block after an out-of-band encounter
// flag. *Integrator is the only implementation; callers should still
// depend on this interface rather than the concrete type, matching spec
// §9's guidance to express integrator variants as a capability set rather
// than a base-class hierarchy.
type StepEngine interface {
	IntegratePlanetsTimeblock(pl *PlanetState, t float64) error
	IntegrateParticlesTimeblock(pl *PlanetState, pa *ParticleState, begin, length int, t float64) error
	GatherParticles(pa *ParticleState, indices []int, begin, length int)
	EncounterCatchup(pl *PlanetState, pa *ParticleState, i, fromTS int, tBlockStart float64) error
}

var _ StepEngine = (*Integrator)(nil)

// Integrator is a Wisdom-Holman step engine. It owns a set of working
// arrays sized to the largest of the planet and particle populations,
// reused across every call (spec §3, §5). A PlanetState/ParticleState pair
// is mutably borrowed only for the duration of a step call; the
// Integrator itself holds no phase-space state of its own.
type Integrator struct {
	params Params

	eta []float64

	invHelio3  []float64
	invJacobi3 []float64
	mu         []float64

	rj []vecmath.Vec3
	vj []vecmath.Vec3

	// accel is the per-particle acceleration scratch (indices 0..N-1): it
	// holds each particle's closing acceleration from its last step, which
	// the next particle step's opening kick reads. New also writes the
	// initial planet accelerations here before the particle pass; planet
	// steps compute their own accelerations in a separate array.
	accel []vecmath.Vec3

	// encounters and encMu are shared across parallel particle chunks;
	// chunks act on disjoint particle ranges but the map itself is not
	// safe for concurrent access without the lock.
	encounters map[int]*encounterState
	encMu      sync.Mutex
}

// New builds an Integrator and runs the initialization of spec §4.9: it
// computes eta, converts pl/pa from frame into heliocentric coordinates if
// needed, derives the initial Jacobi coordinates, and computes the
// initial planet and particle accelerations so the first step's opening
// kick is well-defined. New does not itself apply any kick.
func New(pl *PlanetState, pa *ParticleState, params Params, frame Frame) (*Integrator, error) {
	maxN := len(pl.M)
	if n := pa.Len(); n > maxN {
		maxN = n
	}

	in := &Integrator{
		params:     params,
		eta:        ComputeEta(pl.M),
		invHelio3:  make([]float64, maxN),
		invJacobi3: make([]float64, maxN),
		mu:         make([]float64, maxN),
		accel:      make([]vecmath.Vec3, maxN),
		encounters: make(map[int]*encounterState),
	}

	if frame == Barycentric {
		shiftR, shiftV := pl.R[0].Scale(-1), pl.V[0].Scale(-1)
		Shift(pl.R, pl.V, shiftR, shiftV)
		Shift(pa.R, pa.V, shiftR, shiftV)
	}
	pl.R[0] = vecmath.Vec3{}
	pl.V[0] = vecmath.Vec3{}

	in.rj = HelioToJacobiRPlanets(pl.R, pl.M, in.eta)
	in.vj = HelioToJacobiVPlanets(pl.V, pl.M, in.eta)

	h0 := HelioAccPlanets(pl, in.eta, in.rj, in.invHelio3, in.invJacobi3, in.accel)
	if len(pl.H0Log) > 0 {
		pl.H0Log[0] = h0
	}

	HelioAccParticlesRange(pl, pa, h0, 0, params.CollisionRadius, params.EscapeRadius, in.accel, 0, pa.Len())

	return in, nil
}

// IntegratePlanetsTimeblock advances planets by params.TimeBlockSize
// steps starting at absolute time t. On return, pl's logs are populated
// for timestep indices 0..TimeBlockSize-1 (spec §6).
func (in *Integrator) IntegratePlanetsTimeblock(pl *PlanetState, t float64) error {
	for ts := 0; ts < in.params.TimeBlockSize; ts++ {
		if err := in.stepPlanets(pl, in.params.Dt, ts); err != nil {
			return fmt.Errorf("wh: planet timeblock step %d (t=%g): %w", ts, t+float64(ts)*in.params.Dt, err)
		}
	}
	return nil
}

// stepPlanets performs one kick-drift-kick planet step, writing this
// timestep's logs (spec §4.7). The opening acceleration is recomputed from
// the current planet state, in an array separate from the particles' accel.
func (in *Integrator) stepPlanets(pl *PlanetState, dt float64, ts int) error {
	n := pl.NAlive

	acc := make([]vecmath.Vec3, len(pl.M))
	HelioAccPlanets(pl, in.eta, in.rj, in.invHelio3, in.invJacobi3, acc)

	for i := 1; i < n; i++ {
		pl.V[i] = pl.V[i].AddScaled(acc[i], dt/2)
	}

	in.vj = HelioToJacobiVPlanets(pl.V, pl.M, in.eta)

	for i := 1; i < n; i++ {
		in.mu[i] = pl.M[0] * in.eta[i] / in.eta[i-1]
	}

	if err := Drift(dt, in.mu, in.rj, in.vj, 1, n-1, nil); err != nil {
		return err
	}

	r, v := JacobiToHelioPlanets(in.rj, in.vj, pl.M, in.eta)
	pl.R, pl.V = r, v

	h0 := HelioAccPlanets(pl, in.eta, in.rj, in.invHelio3, in.invJacobi3, acc)
	pl.H0Log[ts] = h0

	for i := 1; i < n; i++ {
		off := pl.LogOffset(ts, i)
		pl.RLog[off] = pl.R[i]
		pl.VLog[off] = pl.V[i]
	}

	for i := 1; i < n; i++ {
		pl.V[i] = pl.V[i].AddScaled(acc[i], dt/2)
	}

	return nil
}

// IntegrateParticlesTimeblock advances particles [begin, begin+length) by
// params.TimeBlockSize steps starting at absolute time t, using the
// planet logs populated by the matching IntegratePlanetsTimeblock call
// (spec §6).
func (in *Integrator) IntegrateParticlesTimeblock(pl *PlanetState, pa *ParticleState, begin, length int, t float64) error {
	for ts := 0; ts < in.params.TimeBlockSize; ts++ {
		tStart := t + float64(ts)*in.params.Dt
		if err := in.stepParticles(pl, pa, begin, length, in.params.Dt, ts, tStart); err != nil {
			return fmt.Errorf("wh: particle timeblock step %d (t=%g): %w", ts, tStart, err)
		}
	}
	return nil
}

// stepParticles performs one kick-drift-kick particle step (spec §4.7).
// Dead particles (DeathFlags != 0) are frozen: skipped entirely. A
// particle inside a planet's encounter shell drifts in that planet's own
// frame instead of the heliocentric Kepler drift (spec §4.8). Planet
// positions and velocities are read from pl's logs at timestep ts, not
// from pl.R/pl.V.
func (in *Integrator) stepParticles(pl *PlanetState, pa *ParticleState, begin, length int, dt float64, ts int, tStart float64) error {
	snap := planetLogSnapshot(pl, ts)
	run := func(start, n int) error {
		for i := start; i < start+n; i++ {
			if pa.Alive(i) {
				pa.V[i] = pa.V[i].AddScaled(in.accel[i], dt/2)
			}
		}

		for i := start; i < start+n; i++ {
			if !pa.Alive(i) {
				continue
			}

			if in.params.ResolveEncounters {
				if central, steps, ok := in.encounterFor(snap, pa, i); ok {
					if err := in.substepEncounter(snap, pa, i, central, steps, dt); err != nil {
						return err
					}
					checkCollisionEscape(snap, pa, i, tStart+dt, in.params.CollisionRadius, in.params.EscapeRadius)
					continue
				}
			}

			nr, nv, err := driftOne(i, dt, pl.M[0], pa.R[i], pa.V[i])
			if err != nil {
				mu := make([]float64, start+n)
				for k := range mu {
					mu[k] = pl.M[0]
				}
				return &DriftError{Index: i, Start: start, N: n, Cause: withDump(err, mu, pa.R, pa.V, start, n)}
			}
			pa.R[i], pa.V[i] = nr, nv
		}

		HelioAccParticlesRange(snap, pa, pl.H0Log[ts], tStart+dt, in.params.CollisionRadius, in.params.EscapeRadius, in.accel, start, n)

		for i := start; i < start+n; i++ {
			if pa.Alive(i) {
				pa.V[i] = pa.V[i].AddScaled(in.accel[i], dt/2)
			}
		}
		return nil
	}

	if !in.params.Parallel || length <= in.params.MinChunkSize {
		return run(begin, length)
	}

	errs := make([]error, numChunks(length, in.params.MinChunkSize))
	parallelChunks(length, in.params.MinChunkSize, func(idx, s, e int) {
		errs[idx] = run(begin+s, e-s)
	})
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

// GatherParticles compacts the alive particles in [begin, begin+length)
// according to indices, an ordering of offsets into that range to keep,
// reordering the integrator's own per-particle accel scratch and
// encounter bookkeeping to match (spec §6).
func (in *Integrator) GatherParticles(pa *ParticleState, indices []int, begin, length int) {
	k := len(indices)
	r := make([]vecmath.Vec3, k)
	v := make([]vecmath.Vec3, k)
	flags := make([]uint16, k)
	dtime := make([]float64, k)
	accel := make([]vecmath.Vec3, k)

	in.encMu.Lock()
	encounters := make(map[int]*encounterState, len(in.encounters))
	for dst, off := range indices {
		if st, ok := in.encounters[begin+off]; ok {
			encounters[begin+dst] = st
		}
	}
	for i := range in.encounters {
		if i >= begin && i < begin+length {
			delete(in.encounters, i)
		}
	}
	for i, st := range encounters {
		in.encounters[i] = st
	}
	in.encMu.Unlock()

	for dst, off := range indices {
		src := begin + off
		r[dst] = pa.R[src]
		v[dst] = pa.V[src]
		flags[dst] = pa.DeathFlags[src]
		dtime[dst] = pa.DeathTime[src]
		accel[dst] = in.accel[src]
	}

	copy(pa.R[begin:], r)
	copy(pa.V[begin:], v)
	copy(pa.DeathFlags[begin:], flags)
	copy(pa.DeathTime[begin:], dtime)
	copy(in.accel[begin:], accel)
}

// CalculatePlanetMetrics computes total system energy (kinetic + pairwise
// potential, in the barycentric frame) and total angular momentum over
// the alive planets (spec §6).
func CalculatePlanetMetrics(pl *PlanetState) (energy, angularMomentum float64) {
	bary, baryV := FindBarycenter(pl.R, pl.V, pl.M, pl.NAlive)

	for i := 0; i < pl.NAlive; i++ {
		vRel := pl.V[i].Sub(baryV)
		energy += 0.5 * pl.M[i] * vRel.LenSq()
	}
	for i := 0; i < pl.NAlive; i++ {
		for j := i + 1; j < pl.NAlive; j++ {
			d := pl.R[i].Sub(pl.R[j]).Len()
			energy -= pl.M[i] * pl.M[j] / d
		}
	}

	var l vecmath.Vec3
	for i := 0; i < pl.NAlive; i++ {
		rRel := pl.R[i].Sub(bary)
		vRel := pl.V[i].Sub(baryV)
		l = l.Add(rRel.Cross(vRel).Scale(pl.M[i]))
	}

	return energy, l.Len()
}
