package wh

import (
	"math"

	"github.com/wisdom-holman/whsim/internal/vecmath"
)

// HelioAccPlanets computes heliocentric accelerations for alive planets
// 1..pl.NAlive-1 into accel (spec §4.5). rj must hold current Jacobi
// positions. invHelio3 and invJacobi3 are scratch, sized at least
// pl.NAlive. It returns h0, the "free" heliocentric reference
// acceleration later reused by particle acceleration.
func HelioAccPlanets(pl *PlanetState, eta []float64, rj []vecmath.Vec3, invHelio3, invJacobi3 []float64, accel []vecmath.Vec3) vecmath.Vec3 {
	n := pl.NAlive

	for i := 1; i < n; i++ {
		r2 := pl.R[i].LenSq()
		invHelio3[i] = 1 / (math.Sqrt(r2) * r2)
		r2 = rj[i].LenSq()
		invJacobi3[i] = 1 / (math.Sqrt(r2) * r2)
	}

	var aCommon vecmath.Vec3
	for i := 2; i < n; i++ {
		aCommon = aCommon.Sub(pl.R[i].Scale(pl.M[i] * invHelio3[i]))
	}

	for i := 1; i < n; i++ {
		accel[i] = aCommon
	}

	h0 := aCommon.Sub(pl.R[1].Scale(pl.M[1] * invHelio3[1]))

	for i := 2; i < n; i++ {
		accel[i] = accel[i].Add(rj[i].Scale(invJacobi3[i]).Sub(pl.R[i].Scale(invHelio3[i])).Scale(pl.M[0]))
	}

	var aAccum vecmath.Vec3
	for i := 2; i < n; i++ {
		mfac := pl.M[i] * pl.M[0] * invJacobi3[i] / eta[i-1]
		aAccum = aAccum.AddScaled(rj[i], mfac)
		accel[i] = accel[i].Add(aAccum)
	}

	for i := 1; i < n-1; i++ {
		for j := i + 1; j < n; j++ {
			dr := pl.R[j].Sub(pl.R[i])
			r2 := dr.LenSq()
			ir3 := 1 / (r2 * math.Sqrt(r2))

			accel[j] = accel[j].Sub(dr.Scale(pl.M[i] * ir3))
			accel[i] = accel[i].Add(dr.Scale(pl.M[j] * ir3))
		}
	}

	return h0
}
