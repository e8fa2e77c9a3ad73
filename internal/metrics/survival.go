package metrics

import "github.com/wisdom-holman/whsim/internal/wh"

// SurvivalRate tracks the fraction of observed particle samples that were
// alive (deathflags == 0), counted over every observation since creation
// or the last Reset.
type SurvivalRate struct {
	name       string
	violations int
	samples    int
}

func NewSurvivalRate() *SurvivalRate {
	return &SurvivalRate{name: "survival_rate"}
}

func (s *SurvivalRate) Name() string { return s.name }

// Observe records one particle's survival state.
func (s *SurvivalRate) Observe(pa *wh.ParticleState, i int) {
	s.samples++
	if !pa.Alive(i) {
		s.violations++
	}
}

// ObserveAll records every particle's survival state at once.
func (s *SurvivalRate) ObserveAll(pa *wh.ParticleState) {
	for i := 0; i < pa.Len(); i++ {
		s.Observe(pa, i)
	}
}

func (s *SurvivalRate) Value() float64 {
	if s.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(s.violations)/float64(s.samples)
}

func (s *SurvivalRate) Reset() {
	s.violations = 0
	s.samples = 0
}
