// Package config loads and persists the tunable parameters of a
// Wisdom-Holman run: the integrator bundle (timestep, block size,
// encounter thresholds, collision and escape radii) and the named
// scenario presets used to seed a run.
package config

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/wisdom-holman/whsim/internal/wh"
)

// Bundle is the YAML-serializable form of wh.Params.
type Bundle struct {
	Dt                float64 `yaml:"dt"`
	TimeBlockSize     int     `yaml:"tbsize"`
	ResolveEncounters bool    `yaml:"resolve_encounters"`
	EncounterN1       int     `yaml:"encounter_n1"`
	EncounterN2       int     `yaml:"encounter_n2"`
	EncounterR1       float64 `yaml:"encounter_r1"`
	EncounterR2       float64 `yaml:"encounter_r2"`
	CollisionRadius   float64 `yaml:"collision_radius"`
	EscapeRadius      float64 `yaml:"escape_radius"`
	Parallel          bool    `yaml:"parallel"`
	MinChunkSize      int     `yaml:"min_chunk_size"`
}

// DefaultBundle mirrors wh.DefaultParams.
func DefaultBundle() Bundle {
	p := wh.DefaultParams()
	return Bundle{
		Dt:                p.Dt,
		TimeBlockSize:     p.TimeBlockSize,
		ResolveEncounters: p.ResolveEncounters,
		EncounterN1:       p.EncounterN1,
		EncounterN2:       p.EncounterN2,
		EncounterR1:       p.EncounterR1,
		EncounterR2:       p.EncounterR2,
		CollisionRadius:   p.CollisionRadius,
		EscapeRadius:      p.EscapeRadius,
		Parallel:          p.Parallel,
		MinChunkSize:      p.MinChunkSize,
	}
}

// Params converts a Bundle into the wh.Params the integrator consumes.
func (b Bundle) Params() wh.Params {
	return wh.Params{
		Dt:                b.Dt,
		TimeBlockSize:     b.TimeBlockSize,
		ResolveEncounters: b.ResolveEncounters,
		EncounterN1:       b.EncounterN1,
		EncounterN2:       b.EncounterN2,
		EncounterR1:       b.EncounterR1,
		EncounterR2:       b.EncounterR2,
		CollisionRadius:   b.CollisionRadius,
		EscapeRadius:      b.EscapeRadius,
		Parallel:          b.Parallel,
		MinChunkSize:      b.MinChunkSize,
	}
}

// Load reads a Bundle from a YAML file, starting from DefaultBundle so an
// incomplete file only overrides the fields it sets.
func Load(path string) (Bundle, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Bundle{}, err
	}
	b := DefaultBundle()
	if err := yaml.Unmarshal(data, &b); err != nil {
		return Bundle{}, err
	}
	return b, nil
}

// Save writes a Bundle to path as YAML.
func Save(path string, b Bundle) error {
	data, err := yaml.Marshal(b)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
