package wh

import "github.com/wisdom-holman/whsim/internal/vecmath"

// ComputeEta builds the cumulative mass prefix eta[i] = sum_{k<=i} m[k]
// (spec §3, §GLOSSARY).
func ComputeEta(m []float64) []float64 {
	eta := make([]float64, len(m))
	if len(m) == 0 {
		return eta
	}
	eta[0] = m[0]
	for i := 1; i < len(m); i++ {
		eta[i] = eta[i-1] + m[i]
	}
	return eta
}

// HelioToJacobiRPlanets converts heliocentric planet positions to Jacobi
// positions: rj[0] = 0, and rj[i] is body i's position relative to the
// barycenter of bodies 0..i-1 (spec §4.2).
func HelioToJacobiRPlanets(r []vecmath.Vec3, m, eta []float64) []vecmath.Vec3 {
	rj := make([]vecmath.Vec3, len(r))
	var sum vecmath.Vec3
	for i := 1; i < len(r); i++ {
		sum = sum.AddScaled(r[i-1], m[i-1])
		rj[i] = r[i].Sub(sum.Scale(1 / eta[i-1]))
	}
	return rj
}

// HelioToJacobiVPlanets is the velocity analogue of HelioToJacobiRPlanets.
func HelioToJacobiVPlanets(v []vecmath.Vec3, m, eta []float64) []vecmath.Vec3 {
	vj := make([]vecmath.Vec3, len(v))
	var sum vecmath.Vec3
	for i := 1; i < len(v); i++ {
		sum = sum.AddScaled(v[i-1], m[i-1])
		vj[i] = v[i].Sub(sum.Scale(1 / eta[i-1]))
	}
	return vj
}

// JacobiToHelioPlanets inverts HelioToJacobiRPlanets/HelioToJacobiVPlanets:
// r_helio[1] = rj[1] since body 0 sits at the origin in heliocentric
// coordinates; for i>=2, r_helio[i] = rj[i] + barycenter(0..i-1) (spec
// §4.2).
func JacobiToHelioPlanets(rj, vj []vecmath.Vec3, m, eta []float64) (r, v []vecmath.Vec3) {
	n := len(rj)
	r = make([]vecmath.Vec3, n)
	v = make([]vecmath.Vec3, n)
	if n == 0 {
		return r, v
	}
	r[1] = rj[1]
	v[1] = vj[1]
	var sumR, sumV vecmath.Vec3
	sumR = r[1].Scale(m[1])
	sumV = v[1].Scale(m[1])
	for i := 2; i < n; i++ {
		r[i] = rj[i].Add(sumR.Scale(1 / eta[i-1]))
		v[i] = vj[i].Add(sumV.Scale(1 / eta[i-1]))
		sumR = sumR.AddScaled(r[i], m[i])
		sumV = sumV.AddScaled(v[i], m[i])
	}
	return r, v
}

// FindBarycenter returns the mass-weighted centroid of position and
// velocity over the alive bodies [0, nAlive) (spec §4.2).
func FindBarycenter(r, v []vecmath.Vec3, m []float64, nAlive int) (vecmath.Vec3, vecmath.Vec3) {
	var rSum, vSum vecmath.Vec3
	var mSum float64
	for i := 0; i < nAlive; i++ {
		rSum = rSum.AddScaled(r[i], m[i])
		vSum = vSum.AddScaled(v[i], m[i])
		mSum += m[i]
	}
	if mSum == 0 {
		return vecmath.Vec3{}, vecmath.Vec3{}
	}
	return rSum.Scale(1 / mSum), vSum.Scale(1 / mSum)
}

// Shift translates every body in r, v (planets and particles alike) by
// dr, dv in place. bary_to_helio and helio_to_bary are both this primitive,
// parameterized by the vector FindBarycenter (or a single body's raw
// position, at construction) produces.
func Shift(r, v []vecmath.Vec3, dr, dv vecmath.Vec3) {
	for i := range r {
		r[i] = r[i].Add(dr)
		v[i] = v[i].Add(dv)
	}
}

// ShiftCopy is Shift applied to freshly allocated copies, leaving the
// inputs untouched. Used where a frame change is needed only transiently,
// e.g. to evaluate barycentric energy without mutating the integrator's
// persistent heliocentric state.
func ShiftCopy(r, v []vecmath.Vec3, dr, dv vecmath.Vec3) ([]vecmath.Vec3, []vecmath.Vec3) {
	rOut := make([]vecmath.Vec3, len(r))
	vOut := make([]vecmath.Vec3, len(v))
	for i := range r {
		rOut[i] = r[i].Add(dr)
		vOut[i] = v[i].Add(dv)
	}
	return rOut, vOut
}
