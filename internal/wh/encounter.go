package wh

import (
	"math"

	"github.com/wisdom-holman/whsim/internal/vecmath"
)

// encounterState records which planet a particle is currently being
// integrated against in its own frame, so that while the particle stays
// inside that planet's outer shell it keeps the same central planet from
// one timestep to the next. Entry and exit both use the outer radius
// EncounterR2, so a particle straddling that boundary can still switch
// between the heliocentric and encounter drifts on successive timesteps
// (spec §4.8).
type encounterState struct {
	planet int
}

// hillRadius approximates planet j's Hill radius using its current
// heliocentric distance as a stand-in for its semimajor axis, since the
// integrator does not separately track osculating elements.
func hillRadius(pl *PlanetState, j int) float64 {
	return pl.R[j].Len() * math.Cbrt(pl.M[j]/(3*pl.M[0]))
}

// encounterFor decides whether particle i should be drifted in the
// encounter frame of some planet this step, and if so which one and at
// what substep count. It favors the planet the particle was already in
// an encounter with (hysteresis): that encounter only ends once the
// particle clears the outer shell.
func (in *Integrator) encounterFor(pl *PlanetState, pa *ParticleState, i int) (central, steps int, ok bool) {
	in.encMu.Lock()
	st, tracked := in.encounters[i]
	in.encMu.Unlock()

	if tracked {
		j := st.planet
		d := pa.R[i].Sub(pl.R[j]).Len()
		rh := hillRadius(pl, j)
		switch {
		case d < in.params.EncounterR1*rh:
			return j, in.params.EncounterN2, true
		case d < in.params.EncounterR2*rh:
			return j, in.params.EncounterN1, true
		default:
			in.encMu.Lock()
			delete(in.encounters, i)
			in.encMu.Unlock()
		}
	}

	best := -1
	bestRatio := math.Inf(1)
	for j := 1; j < pl.NAlive; j++ {
		d := pa.R[i].Sub(pl.R[j]).Len()
		rh := hillRadius(pl, j)
		ratio := d / rh
		if ratio < in.params.EncounterR2 && ratio < bestRatio {
			best, bestRatio = j, ratio
		}
	}
	if best < 0 {
		return 0, 0, false
	}

	in.encMu.Lock()
	in.encounters[i] = &encounterState{planet: best}
	in.encMu.Unlock()

	if bestRatio < in.params.EncounterR1 {
		return best, in.params.EncounterN2, true
	}
	return best, in.params.EncounterN1, true
}

// substepEncounter advances particle i by dt in the reference frame of
// planet central, held fixed at its current heliocentric state for the
// duration of the substeps (spec §4.8). Within that frame, particle
// motion is a two-body Kepler problem about central perturbed by every
// other alive planet, handled with the same kick-drift-kick splitting
// used for the heliocentric step.
func (in *Integrator) substepEncounter(pl *PlanetState, pa *ParticleState, i, central, steps int, dt float64) error {
	h := dt / float64(steps)
	mu := pl.M[central]

	dr := pa.R[i].Sub(pl.R[central])
	dv := pa.V[i].Sub(pl.V[central])

	for s := 0; s < steps; s++ {
		pa.R[i], pa.V[i] = pl.R[central].Add(dr), pl.V[central].Add(dv)
		a := AccelNonHelio(pl, pa, central, i)
		dv = dv.AddScaled(a, h/2)

		nr, nv, err := driftOne(i, h, mu, dr, dv)
		if err != nil {
			return &DriftError{Index: i, Start: i, N: 1, Cause: err}
		}
		dr, dv = nr, nv

		pa.R[i], pa.V[i] = pl.R[central].Add(dr), pl.V[central].Add(dv)
		a = AccelNonHelio(pl, pa, central, i)
		dv = dv.AddScaled(a, h/2)
	}

	pa.R[i], pa.V[i] = pl.R[central].Add(dr), pl.V[central].Add(dv)
	return nil
}

// planetLogSnapshot returns a PlanetState reflecting the planets' logged
// positions and velocities at timestep ts within the current block. It
// lets catch-up integration read the planet trajectory as it stood at an
// earlier timestep even after IntegratePlanetsTimeblock has already
// advanced pl.R/pl.V to the block's final state.
func planetLogSnapshot(pl *PlanetState, ts int) *PlanetState {
	snap := &PlanetState{
		M:      pl.M,
		R:      make([]vecmath.Vec3, pl.NAlive),
		V:      make([]vecmath.Vec3, pl.NAlive),
		NAlive: pl.NAlive,
	}
	for j := 1; j < pl.NAlive; j++ {
		off := pl.LogOffset(ts, j)
		snap.R[j] = pl.RLog[off]
		snap.V[j] = pl.VLog[off]
	}
	return snap
}

// EncounterCatchup replays particle i from timestep fromTS through the end
// of the current block, one kick-drift-kick step at a time, reading the
// planets' positions from pl.RLog/pl.VLog/pl.H0Log rather than their live
// pl.R/pl.V (spec §4.8). It is the continuation a driver calls for a
// particle flagged for encounter treatment mid-block by some other pass,
// since by then pl.R/pl.V already hold the block's final planet state and
// can no longer stand in for the planets' position at timestep fromTS.
// in.accel[i] must already hold the pending half-kick acceleration for
// particle i, the same invariant stepParticles maintains across timesteps.
func (in *Integrator) EncounterCatchup(pl *PlanetState, pa *ParticleState, i, fromTS int, tBlockStart float64) error {
	dt := in.params.Dt

	for ts := fromTS; ts < in.params.TimeBlockSize; ts++ {
		if !pa.Alive(i) {
			return nil
		}

		tStart := tBlockStart + float64(ts)*dt
		snap := planetLogSnapshot(pl, ts)

		pa.V[i] = pa.V[i].AddScaled(in.accel[i], dt/2)

		if in.params.ResolveEncounters {
			if central, steps, ok := in.encounterFor(snap, pa, i); ok {
				if err := in.substepEncounter(snap, pa, i, central, steps, dt); err != nil {
					return err
				}
				checkCollisionEscape(snap, pa, i, tStart+dt, in.params.CollisionRadius, in.params.EscapeRadius)
				if !pa.Alive(i) {
					return nil
				}
				in.accel[i] = AccelNonHelio(snap, pa, central, i)
				continue
			}
		}

		nr, nv, err := driftOne(i, dt, pl.M[0], pa.R[i], pa.V[i])
		if err != nil {
			return &DriftError{Index: i, Start: i, N: 1, Cause: err}
		}
		pa.R[i], pa.V[i] = nr, nv

		HelioAccParticlesRange(snap, pa, pl.H0Log[ts], tStart+dt, in.params.CollisionRadius, in.params.EscapeRadius, in.accel, i, 1)

		if pa.Alive(i) {
			pa.V[i] = pa.V[i].AddScaled(in.accel[i], dt/2)
		}
	}

	return nil
}

// checkCollisionEscape applies the same collision/escape tests
// HelioAccParticlesRange performs, for use after an encounter substep
// where the particle's position moved under local-frame dynamics rather
// than the bulk heliocentric pass.
func checkCollisionEscape(pl *PlanetState, pa *ParticleState, i int, t, collisionRadius, escapeRadius float64) {
	collisionR2 := collisionRadius * collisionRadius
	escapeR2 := escapeRadius * escapeRadius

	for j := 1; j < pl.NAlive; j++ {
		if pa.R[i].Sub(pl.R[j]).LenSq() < collisionR2 {
			pa.DeathFlags[i] |= EncodeCollision(j)
			pa.DeathTime[i] = t
		}
	}
	if pa.R[i].LenSq() > escapeR2 {
		pa.DeathFlags[i] |= DeathEscaped
		pa.DeathTime[i] = t
	}
}
