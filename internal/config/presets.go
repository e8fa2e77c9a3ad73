package config

import (
	"math"
	"sort"
)

func circularVelocity(mu, r float64) float64 {
	return math.Sqrt(mu / r)
}

func circularBody(name string, mass, r float64, mu float64) BodySeed {
	v := circularVelocity(mu, r)
	return BodySeed{Name: name, Mass: mass, X: r, VY: v}
}

// Presets holds the named scenarios a driver can load by name, grounded
// on spec.md §8's worked examples: a two-body sanity check, the outer
// solar system's giant planets, and the inner solar system seeded with a
// test-particle disk.
var Presets = buildPresets()

func buildPresets() map[string]Scenario {
	const sunMass = 1.0

	twoBody := Scenario{
		Name:   "two-body",
		Bundle: DefaultBundle(),
		Bodies: []BodySeed{
			{Name: "sun", Mass: sunMass},
			circularBody("jupiter", 9.55e-4, 5.2, sunMass),
		},
	}

	outer := Scenario{
		Name:   "outer-solar-system",
		Bundle: DefaultBundle(),
		Bodies: []BodySeed{
			{Name: "sun", Mass: sunMass},
			circularBody("jupiter", 9.55e-4, 5.2, sunMass),
			circularBody("saturn", 2.86e-4, 9.58, sunMass),
			circularBody("uranus", 4.37e-5, 19.2, sunMass),
			circularBody("neptune", 5.15e-5, 30.1, sunMass),
		},
	}

	innerDisk := Scenario{
		Name:   "inner-disk",
		Bundle: DefaultBundle(),
		Bodies: []BodySeed{
			{Name: "sun", Mass: sunMass},
			circularBody("venus", 2.45e-6, 0.72, sunMass),
			circularBody("earth", 3.00e-6, 1.0, sunMass),
			circularBody("mars", 3.23e-7, 1.52, sunMass),
		},
		Disk: DiskSeed{Count: 200, RMin: 1.2, RMax: 2.8},
	}

	return map[string]Scenario{
		twoBody.Name:   twoBody,
		outer.Name:     outer,
		innerDisk.Name: innerDisk,
	}
}

// GetPreset looks up a named scenario.
func GetPreset(name string) (Scenario, bool) {
	s, ok := Presets[name]
	return s, ok
}

// ListPresets returns every preset name, sorted.
func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
