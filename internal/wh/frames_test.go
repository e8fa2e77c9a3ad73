package wh

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/wisdom-holman/whsim/internal/vecmath"
)

var _ = Describe("frame transforms", func() {
	m := []float64{1.0, 0.001, 0.0003, 0.00005}
	r := []vecmath.Vec3{
		{},
		vecmath.New(1, 0, 0),
		vecmath.New(0, 2, 0.1),
		vecmath.New(-3, 1, 0),
	}
	v := []vecmath.Vec3{
		{},
		vecmath.New(0, 1, 0),
		vecmath.New(-0.7, 0, 0.05),
		vecmath.New(0.1, 0.2, 0.3),
	}

	It("round-trips heliocentric to Jacobi and back to heliocentric", func() {
		eta := ComputeEta(m)
		rj := HelioToJacobiRPlanets(r, m, eta)
		vj := HelioToJacobiVPlanets(v, m, eta)

		r2, v2 := JacobiToHelioPlanets(rj, vj, m, eta)

		for i := 1; i < len(m); i++ {
			Expect(r2[i].X).To(BeNumerically("~", r[i].X, 1e-12))
			Expect(r2[i].Y).To(BeNumerically("~", r[i].Y, 1e-12))
			Expect(r2[i].Z).To(BeNumerically("~", r[i].Z, 1e-12))
			Expect(v2[i].X).To(BeNumerically("~", v[i].X, 1e-12))
			Expect(v2[i].Y).To(BeNumerically("~", v[i].Y, 1e-12))
			Expect(v2[i].Z).To(BeNumerically("~", v[i].Z, 1e-12))
		}
	})

	It("computes eta as the running sum of masses", func() {
		eta := ComputeEta(m)
		Expect(eta[0]).To(Equal(m[0]))
		Expect(eta[1]).To(BeNumerically("~", m[0]+m[1], 1e-15))
		Expect(eta[3]).To(BeNumerically("~", m[0]+m[1]+m[2]+m[3], 1e-15))
	})

	It("round-trips a barycentric shift", func() {
		rCopy := append([]vecmath.Vec3{}, r...)
		vCopy := append([]vecmath.Vec3{}, v...)

		bary, baryV := FindBarycenter(rCopy, vCopy, m, len(m))
		Shift(rCopy, vCopy, bary.Scale(-1), baryV.Scale(-1))
		Shift(rCopy, vCopy, bary, baryV)

		for i := range m {
			Expect(rCopy[i].X).To(BeNumerically("~", r[i].X, 1e-12))
			Expect(vCopy[i].X).To(BeNumerically("~", v[i].X, 1e-12))
		}
	})

	It("places the barycenter at the origin once shifted", func() {
		rCopy := append([]vecmath.Vec3{}, r...)
		vCopy := append([]vecmath.Vec3{}, v...)

		bary, baryV := FindBarycenter(rCopy, vCopy, m, len(m))
		Shift(rCopy, vCopy, bary.Scale(-1), baryV.Scale(-1))

		newBary, newBaryV := FindBarycenter(rCopy, vCopy, m, len(m))
		Expect(newBary.Len()).To(BeNumerically("<", 1e-12))
		Expect(newBaryV.Len()).To(BeNumerically("<", 1e-12))
	})
})
