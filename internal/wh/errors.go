package wh

import (
	"fmt"

	"github.com/wisdom-holman/whsim/internal/vecmath"
)

// UnboundOrbitError reports a drift-eligible body whose specific energy is
// nonnegative (spec §4.4 step 3, §7). It carries a diagnostic dump of every
// body in the drift range so the driver can inspect what went unstable.
// Drift and particle steps attach that dump; single-body drifts
// (DriftSingle, encounter substeps, EncounterCatchup) return the error
// without one.
type UnboundOrbitError struct {
	Index  int
	Energy float64
	Start  int
	N      int
	Dump   []BodyDiagnostic
}

// BodyDiagnostic is one entry of an UnboundOrbitError's diagnostic dump.
type BodyDiagnostic struct {
	Index int
	R, V  vecmath.Vec3
	Mu    float64
}

func (e *UnboundOrbitError) Error() string {
	return fmt.Sprintf("wh: unbound orbit at body %d (energy=%g) in drift range [%d,%d)", e.Index, e.Energy, e.Start, e.Start+e.N)
}

// KeplerNonConvergedError reports a Newton iteration on the universal
// Kepler equation that failed to converge within MaxKeplerIter (spec §4.3,
// §7).
type KeplerNonConvergedError struct {
	DeltaM    float64
	EcosEo    float64
	EsinEo    float64
	LastDelta float64
}

func (e *KeplerNonConvergedError) Error() string {
	return fmt.Sprintf("wh: kepler equation did not converge in %d iterations (dM=%g, ecosEo=%g, esinEo=%g, last delta=%g)",
		MaxKeplerIter, e.DeltaM, e.EcosEo, e.EsinEo, e.LastDelta)
}

// DriftError wraps a per-body failure (UnboundOrbitError or
// KeplerNonConvergedError) raised while drifting a range of bodies, adding
// the body index and range for context. It unwraps to the underlying
// cause so callers can errors.As through it.
type DriftError struct {
	Index int
	Start int
	N     int
	Cause error
}

func (e *DriftError) Error() string {
	return fmt.Sprintf("wh: drift failed at body %d in range [%d,%d): %v", e.Index, e.Start, e.Start+e.N, e.Cause)
}

func (e *DriftError) Unwrap() error {
	return e.Cause
}
