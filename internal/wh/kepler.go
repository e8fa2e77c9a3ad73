package wh

import "math"

// SolveKepler solves the universal Kepler equation
//
//	dE - ecosEo*sin(dE) + esinEo*(1-cos(dE)) = dM
//
// for dE by Newton iteration, starting from the initial guess
//
//	dE0 = dM - esinEo + esinEo*cos(dM) + ecosEo*sin(dM)
//
// (spec §4.3). It returns dE and sin(dE), cos(dE) evaluated once after the
// final accepted update. If the iteration has not converged to within
// KeplerTolerance after MaxKeplerIter steps, it returns
// *KeplerNonConvergedError.
func SolveKepler(dM, ecosEo, esinEo float64) (dE, sinDE, cosDE float64, err error) {
	dE = dM - esinEo + esinEo*math.Cos(dM) + ecosEo*math.Sin(dM)

	var delta float64
	for i := 0; i < MaxKeplerIter; i++ {
		s, c := math.Sincos(dE)
		f := dE - ecosEo*s + esinEo*(1-c) - dM
		fp := 1 - ecosEo*c + esinEo*s
		delta = -f / fp
		dE += delta

		if math.Abs(delta) < KeplerTolerance {
			sinDE, cosDE = math.Sincos(dE)
			return dE, sinDE, cosDE, nil
		}
	}

	return dE, 0, 0, &KeplerNonConvergedError{
		DeltaM:    dM,
		EcosEo:    ecosEo,
		EsinEo:    esinEo,
		LastDelta: delta,
	}
}
