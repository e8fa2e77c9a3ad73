package wh

import (
	"math"

	"github.com/wisdom-holman/whsim/internal/vecmath"
)

const twoPi = 2 * math.Pi

// driftOne advances a single (r0, v0) along its Kepler ellipse about a
// central mass mu by elapsed time t, per spec §4.4 steps 1-9. index is
// reported in any resulting error for context; callers that have no
// natural index may pass 0.
func driftOne(index int, t, mu float64, r0, v0 vecmath.Vec3) (r, v vecmath.Vec3, err error) {
	d := r0.Len()
	vsq := v0.LenSq()
	vdotr := v0.Dot(r0)

	energy := 0.5*vsq - mu/d
	if energy >= 0 {
		return r0, v0, &UnboundOrbitError{Index: index, Energy: energy}
	}

	a := -0.5 * mu / energy
	n := math.Sqrt(mu / (a * a * a))
	ecosEo := 1 - d/a
	esinEo := vdotr / (n * a * a)

	dM := t*n - twoPi*math.Floor(t*n/twoPi)
	dt := dM / n

	dE, sinDE, cosDE, kerr := SolveKepler(dM, ecosEo, esinEo)
	if kerr != nil {
		return r0, v0, kerr
	}

	fp := 1 - ecosEo*cosDE + esinEo*sinDE
	f := 1 + a*(cosDE-1)/d
	g := dt + (sinDE-dE)/n
	fdot := -n * sinDE * a / (d * fp)
	gdot := 1 + (cosDE-1)/fp

	r = r0.Scale(f).AddScaled(v0, g)
	v = r0.Scale(fdot).AddScaled(v0, gdot)
	return r, v, nil
}

// Drift advances each body in [start, start+n) along its own Kepler
// ellipse about the per-body central mass mu[i], in place over r, v (spec
// §4.4). mask, if non-nil, must have length n; mask[i-start] true skips
// body i entirely — it is neither updated nor checked for an unbound
// orbit. On failure, returns a *DriftError wrapping either
// *UnboundOrbitError or *KeplerNonConvergedError.
func Drift(t float64, mu []float64, r, v []vecmath.Vec3, start, n int, mask []bool) error {
	for i := start; i < start+n; i++ {
		if mask != nil && mask[i-start] {
			continue
		}

		nr, nv, err := driftOne(i, t, mu[i], r[i], v[i])
		if err != nil {
			return &DriftError{Index: i, Start: start, N: n, Cause: withDump(err, mu, r, v, start, n)}
		}
		r[i], v[i] = nr, nv
	}
	return nil
}

// DriftSingle is the single-body variant of Drift, used by encounter
// substepping against a lone central mass.
func DriftSingle(t, mu float64, r0, v0 vecmath.Vec3) (vecmath.Vec3, vecmath.Vec3, error) {
	r, v, err := driftOne(0, t, mu, r0, v0)
	if err != nil {
		return r0, v0, err
	}
	return r, v, nil
}

// withDump attaches the diagnostic dump of the whole drift range to an
// UnboundOrbitError; other error types pass through unchanged.
func withDump(err error, mu []float64, r, v []vecmath.Vec3, start, n int) error {
	ub, ok := err.(*UnboundOrbitError)
	if !ok {
		return err
	}
	ub.Start = start
	ub.N = n
	ub.Dump = make([]BodyDiagnostic, n)
	for i := start; i < start+n; i++ {
		ub.Dump[i-start] = BodyDiagnostic{Index: i, R: r[i], V: v[i], Mu: mu[i]}
	}
	return ub
}
