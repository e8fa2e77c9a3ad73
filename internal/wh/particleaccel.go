package wh

import (
	"math"

	"github.com/wisdom-holman/whsim/internal/vecmath"
)

// HelioAccParticlesRange computes heliocentric accelerations for particles
// [begin, begin+length) into accel, reusing h0 (the planet update's
// recorded reference acceleration) as the starting point, and updates
// deathflags/deathtime for collisions and escapes (spec §4.6). Particles
// already dead (DeathFlags != 0) are skipped entirely.
func HelioAccParticlesRange(pl *PlanetState, pa *ParticleState, h0 vecmath.Vec3, t, collisionRadius, escapeRadius float64, accel []vecmath.Vec3, begin, length int) {
	collisionR2 := collisionRadius * collisionRadius
	escapeR2 := escapeRadius * escapeRadius

	for i := begin; i < begin+length; i++ {
		if pa.DeathFlags[i] != 0 {
			continue
		}

		a := h0
		for j := 1; j < pl.NAlive; j++ {
			dr := pa.R[i].Sub(pl.R[j])
			d2 := dr.LenSq()
			ir3 := 1 / (d2 * math.Sqrt(d2))
			a = a.Sub(dr.Scale(pl.M[j] * ir3))

			if d2 < collisionR2 {
				pa.DeathFlags[i] |= EncodeCollision(j)
				pa.DeathTime[i] = t
			}
		}

		if pa.R[i].LenSq() > escapeR2 {
			pa.DeathFlags[i] |= DeathEscaped
			pa.DeathTime[i] = t
		}

		accel[i] = a
	}
}

// AccelNonHelio computes the perturbation acceleration of particle idx
// relative to a central planet's own (non-inertial) frame, for use during
// encounter substepping (spec §4.6). Both the planet-planet reference sum
// and the particle-planet sum exclude the central planet itself: its pull
// on the particle is handled exactly by the Kepler drift, and its own
// acceleration from every other body must be subtracted to express the
// particle's acceleration relative to the central planet's accelerating
// frame.
func AccelNonHelio(pl *PlanetState, pa *ParticleState, central, idx int) vecmath.Vec3 {
	rc := pl.R[central]
	var aParticle, aCentral vecmath.Vec3

	for j := 0; j < pl.NAlive; j++ {
		if j == central {
			continue
		}
		mj := pl.M[j]

		drp := pa.R[idx].Sub(pl.R[j])
		d2p := drp.LenSq()
		ir3p := 1 / (d2p * math.Sqrt(d2p))
		aParticle = aParticle.Sub(drp.Scale(mj * ir3p))

		drc := rc.Sub(pl.R[j])
		d2c := drc.LenSq()
		ir3c := 1 / (d2c * math.Sqrt(d2c))
		aCentral = aCentral.Sub(drc.Scale(mj * ir3c))
	}

	return aParticle.Sub(aCentral)
}
