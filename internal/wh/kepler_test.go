package wh

import (
	"errors"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Kepler equation solver", func() {
	It("returns dE = 0 for dM = 0 on any ellipse", func() {
		dE, sinDE, cosDE, err := SolveKepler(0, 0.3, 0.1)
		Expect(err).NotTo(HaveOccurred())
		Expect(dE).To(BeNumerically("~", 0, 1e-13))
		Expect(sinDE).To(BeNumerically("~", 0, 1e-13))
		Expect(cosDE).To(BeNumerically("~", 1, 1e-13))
	})

	It("converges for a representative eccentric case and satisfies Kepler's equation", func() {
		dM := 1.2345
		ecosEo := 0.45
		esinEo := -0.2

		dE, sinDE, cosDE, err := SolveKepler(dM, ecosEo, esinEo)
		Expect(err).NotTo(HaveOccurred())

		residual := dE - ecosEo*sinDE + esinEo*(1-cosDE) - dM
		Expect(residual).To(BeNumerically("~", 0, 1e-12))
		Expect(sinDE).To(BeNumerically("~", math.Sin(dE), 1e-13))
		Expect(cosDE).To(BeNumerically("~", math.Cos(dE), 1e-13))
	})

	It("converges across a spread of eccentricities and mean anomalies", func() {
		for _, ecc := range []float64{0.0, 0.1, 0.5, 0.9} {
			for _, dM := range []float64{0.01, 1.0, 3.0, 6.0} {
				ecosEo := ecc
				esinEo := 0.0
				_, sinDE, cosDE, err := SolveKepler(dM, ecosEo, esinEo)
				Expect(err).NotTo(HaveOccurred())
				Expect(sinDE*sinDE + cosDE*cosDE).To(BeNumerically("~", 1, 1e-10))
			}
		}
	})

	It("never returns silent garbage at e=0.9999 near dM=pi: it either converges to a true root or reports KeplerNonConverged", func() {
		ecosEo, esinEo := 0.9999, 0.0
		dM := math.Pi - 0.001

		dE, sinDE, cosDE, err := SolveKepler(dM, ecosEo, esinEo)
		if err != nil {
			var nonConverged *KeplerNonConvergedError
			Expect(errors.As(err, &nonConverged)).To(BeTrue(), "expected *KeplerNonConvergedError, got %T: %v", err, err)
			return
		}

		residual := dE - ecosEo*sinDE + esinEo*(1-cosDE) - dM
		Expect(residual).To(BeNumerically("~", 0, 1e-9))
		Expect(sinDE*sinDE + cosDE*cosDE).To(BeNumerically("~", 1, 1e-9))
	})
})
