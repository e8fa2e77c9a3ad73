// Package store persists completed simulation runs to a directory tree:
// one subdirectory per run, holding metadata.json and CSV logs of the
// planetary and particle trajectories and run diagnostics, each sampled
// once per timeblock.
package store

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/wisdom-holman/whsim/internal/config"
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

// RunMetadata records the configuration and final diagnostics of one run.
type RunMetadata struct {
	ID        string       `json:"id"`
	Scenario  string       `json:"scenario"`
	Timestamp time.Time    `json:"timestamp"`
	Seed      int64        `json:"seed"`
	Blocks    int          `json:"blocks"`
	Bundle    config.Bundle `json:"bundle"`
	Metrics   map[string]float64 `json:"metrics"`
}

// PlanetSample is one logged planet position/velocity at a block boundary.
type PlanetSample struct {
	Time float64
	Name string
	R    [3]float64
	V    [3]float64
}

// ParticleSample is one logged particle position/velocity at a block
// boundary, with its death state at the time of sampling.
type ParticleSample struct {
	Time   float64
	Index  int
	R      [3]float64
	V      [3]float64
	Alive  bool
	Flags  uint16
}

// MetricsSample is one block boundary's run diagnostics, the series a
// persisted run's drift plot is drawn from.
type MetricsSample struct {
	Block                int
	Time                 float64
	EnergyDrift          float64
	AngularMomentumDrift float64
	Alive                int
}

// Save writes metadata.json, planets.csv, particles.csv, and metrics.csv
// under a new run directory and returns its run ID.
func (s *Store) Save(meta RunMetadata, planets []PlanetSample, particles []ParticleSample, metricsLog []MetricsSample) (string, error) {
	runID := fmt.Sprintf("%s_%d", meta.Scenario, meta.Timestamp.Unix())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta.ID = runID

	metaPath := filepath.Join(runDir, "metadata.json")
	metaFile, err := os.Create(metaPath)
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	if err := writePlanetsCSV(filepath.Join(runDir, "planets.csv"), planets); err != nil {
		return "", err
	}
	if err := writeParticlesCSV(filepath.Join(runDir, "particles.csv"), particles); err != nil {
		return "", err
	}
	if err := writeMetricsCSV(filepath.Join(runDir, "metrics.csv"), metricsLog); err != nil {
		return "", err
	}

	return runID, nil
}

func writeMetricsCSV(path string, samples []MetricsSample) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write([]string{"block", "time", "energy_drift", "angular_momentum_drift", "alive"}); err != nil {
		return err
	}

	for _, m := range samples {
		row := []string{
			strconv.Itoa(m.Block),
			strconv.FormatFloat(m.Time, 'f', 6, 64),
			strconv.FormatFloat(m.EnergyDrift, 'g', -1, 64),
			strconv.FormatFloat(m.AngularMomentumDrift, 'g', -1, 64),
			strconv.Itoa(m.Alive),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return w.Error()
}

func writePlanetsCSV(path string, samples []PlanetSample) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write([]string{"time", "name", "x", "y", "z", "vx", "vy", "vz"}); err != nil {
		return err
	}

	for _, p := range samples {
		row := []string{
			strconv.FormatFloat(p.Time, 'f', 6, 64),
			p.Name,
			strconv.FormatFloat(p.R[0], 'f', 9, 64),
			strconv.FormatFloat(p.R[1], 'f', 9, 64),
			strconv.FormatFloat(p.R[2], 'f', 9, 64),
			strconv.FormatFloat(p.V[0], 'f', 9, 64),
			strconv.FormatFloat(p.V[1], 'f', 9, 64),
			strconv.FormatFloat(p.V[2], 'f', 9, 64),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return w.Error()
}

func writeParticlesCSV(path string, samples []ParticleSample) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write([]string{"time", "index", "x", "y", "z", "vx", "vy", "vz", "alive", "flags"}); err != nil {
		return err
	}

	for _, p := range samples {
		row := []string{
			strconv.FormatFloat(p.Time, 'f', 6, 64),
			strconv.Itoa(p.Index),
			strconv.FormatFloat(p.R[0], 'f', 9, 64),
			strconv.FormatFloat(p.R[1], 'f', 9, 64),
			strconv.FormatFloat(p.R[2], 'f', 9, 64),
			strconv.FormatFloat(p.V[0], 'f', 9, 64),
			strconv.FormatFloat(p.V[1], 'f', 9, 64),
			strconv.FormatFloat(p.V[2], 'f', 9, 64),
			strconv.FormatBool(p.Alive),
			strconv.FormatUint(uint64(p.Flags), 10),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return w.Error()
}

// List returns the metadata of every persisted run, skipping any run
// directory whose metadata.json is missing or unreadable.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, "metadata.json"))
	if err != nil {
		return nil, err
	}
	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// LoadPlanets reads back a run's planets.csv.
func (s *Store) LoadPlanets(runID string) ([]PlanetSample, error) {
	f, err := os.Open(filepath.Join(s.baseDir, runID, "planets.csv"))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return []PlanetSample{}, nil
	}

	samples := make([]PlanetSample, 0, len(records)-1)
	for _, row := range records[1:] {
		t, _ := strconv.ParseFloat(row[0], 64)
		p := PlanetSample{Time: t, Name: row[1]}
		for i := 0; i < 3; i++ {
			p.R[i], _ = strconv.ParseFloat(row[2+i], 64)
			p.V[i], _ = strconv.ParseFloat(row[5+i], 64)
		}
		samples = append(samples, p)
	}
	return samples, nil
}

// LoadMetrics reads back a run's metrics.csv, the per-block energy and
// angular-momentum drift series a drift plot is drawn from.
func (s *Store) LoadMetrics(runID string) ([]MetricsSample, error) {
	f, err := os.Open(filepath.Join(s.baseDir, runID, "metrics.csv"))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return []MetricsSample{}, nil
	}

	samples := make([]MetricsSample, 0, len(records)-1)
	for _, row := range records[1:] {
		var m MetricsSample
		m.Block, _ = strconv.Atoi(row[0])
		m.Time, _ = strconv.ParseFloat(row[1], 64)
		m.EnergyDrift, _ = strconv.ParseFloat(row[2], 64)
		m.AngularMomentumDrift, _ = strconv.ParseFloat(row[3], 64)
		m.Alive, _ = strconv.Atoi(row[4])
		samples = append(samples, m)
	}
	return samples, nil
}
