package main

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/wisdom-holman/whsim/internal/config"
	"github.com/wisdom-holman/whsim/internal/metrics"
	"github.com/wisdom-holman/whsim/internal/store"
	"github.com/wisdom-holman/whsim/internal/tui"
	"github.com/wisdom-holman/whsim/internal/wh"
)

var (
	dataDir    string
	configFile string
	blocks     int
	seed       int64
)

// main registers the whsim CLI's subcommands and executes the root
// command, exiting the process with status 1 on error.
func main() {
	rootCmd := &cobra.Command{
		Use:   "whsim",
		Short: "Wisdom-Holman N-body simulation lab",
	}
	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".whsim", "data directory")

	runCmd := &cobra.Command{
		Use:   "run [preset]",
		Short: "run a scenario to completion and persist the result",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}
	runCmd.Flags().IntVar(&blocks, "blocks", 20, "number of timeblocks to integrate")
	runCmd.Flags().Int64Var(&seed, "seed", time.Now().UnixNano(), "run seed, recorded in metadata only")
	runCmd.Flags().StringVar(&configFile, "config", "", "override the preset's integrator config (yaml)")

	watchCmd := &cobra.Command{
		Use:   "watch [preset]",
		Short: "run a scenario with a live terminal view",
		Args:  cobra.ExactArgs(1),
		RunE:  watchScenario,
	}
	watchCmd.Flags().StringVar(&configFile, "config", "", "override the preset's integrator config (yaml)")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list persisted runs",
		RunE:  listRuns,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available scenario presets",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range config.ListPresets() {
				fmt.Println(name)
			}
			return nil
		},
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot a persisted run's energy and angular-momentum drift",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	rootCmd.AddCommand(runCmd, watchCmd, listCmd, presetsCmd, plotCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func loadScenario(name string) (config.Scenario, error) {
	scenario, ok := config.GetPreset(name)
	if !ok {
		return config.Scenario{}, fmt.Errorf("unknown preset: %s (available: %v)", name, config.ListPresets())
	}
	if configFile != "" {
		bundle, err := config.Load(configFile)
		if err != nil {
			return config.Scenario{}, fmt.Errorf("failed to load config: %w", err)
		}
		scenario.Bundle = bundle
	}
	return scenario, nil
}

func runScenario(cmd *cobra.Command, args []string) error {
	name := args[0]
	scenario, err := loadScenario(name)
	if err != nil {
		return err
	}

	pl := scenario.BuildPlanets()
	pa := scenario.BuildParticles()
	params := scenario.Bundle.Params()

	in, err := wh.New(pl, pa, params, wh.Heliocentric)
	if err != nil {
		return fmt.Errorf("constructing integrator: %w", err)
	}

	energyDrift := metrics.NewEnergyDrift()
	angularDrift := metrics.NewAngularMomentumDrift()
	survival := metrics.NewSurvivalRate()
	energyDrift.Observe(pl)
	angularDrift.Observe(pl)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "BLOCK\tT\tALIVE\tENERGY DRIFT\tL DRIFT")

	var planetSamples []store.PlanetSample
	var particleSamples []store.ParticleSample
	var metricsLog []store.MetricsSample

	snapshotBlock := func(b int, t float64) {
		for i := 0; i < pl.NAlive; i++ {
			planetSamples = append(planetSamples, store.PlanetSample{
				Time: t,
				Name: fmt.Sprintf("body%d", i),
				R:    [3]float64{pl.R[i].X, pl.R[i].Y, pl.R[i].Z},
				V:    [3]float64{pl.V[i].X, pl.V[i].Y, pl.V[i].Z},
			})
		}
		for i := 0; i < pa.Len(); i++ {
			particleSamples = append(particleSamples, store.ParticleSample{
				Time:  t,
				Index: i,
				R:     [3]float64{pa.R[i].X, pa.R[i].Y, pa.R[i].Z},
				V:     [3]float64{pa.V[i].X, pa.V[i].Y, pa.V[i].Z},
				Alive: pa.Alive(i),
				Flags: pa.DeathFlags[i],
			})
		}
		metricsLog = append(metricsLog, store.MetricsSample{
			Block:                b,
			Time:                 t,
			EnergyDrift:          energyDrift.Value(),
			AngularMomentumDrift: angularDrift.Value(),
			Alive:                aliveCount(pa),
		})
	}

	t := 0.0
	snapshotBlock(0, t)
	for b := 0; b < blocks; b++ {
		if err := in.IntegratePlanetsTimeblock(pl, t); err != nil {
			return fmt.Errorf("block %d: %w", b, err)
		}
		if err := in.IntegrateParticlesTimeblock(pl, pa, 0, pa.Len(), t); err != nil {
			return fmt.Errorf("block %d: %w", b, err)
		}
		t += params.Dt * float64(params.TimeBlockSize)
		energyDrift.Observe(pl)
		angularDrift.Observe(pl)
		snapshotBlock(b+1, t)
		fmt.Fprintf(w, "%d\t%.4f\t%d/%d\t%.3e\t%.3e\n",
			b+1, t, aliveCount(pa), pa.Len(), energyDrift.Value(), angularDrift.Value())
	}
	if err := w.Flush(); err != nil {
		return err
	}
	survival.ObserveAll(pa)

	st := store.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	meta := store.RunMetadata{
		Scenario:  name,
		Timestamp: time.Now(),
		Seed:      seed,
		Blocks:    blocks,
		Bundle:    scenario.Bundle,
		Metrics: map[string]float64{
			"energy_drift":           energyDrift.Value(),
			"angular_momentum_drift": angularDrift.Value(),
			"survival_rate":          survival.Value(),
		},
	}

	runID, err := st.Save(meta, planetSamples, particleSamples, metricsLog)
	if err != nil {
		return fmt.Errorf("saving run: %w", err)
	}
	fmt.Printf("saved run %s\n", runID)
	return nil
}

func watchScenario(cmd *cobra.Command, args []string) error {
	name := args[0]
	scenario, err := loadScenario(name)
	if err != nil {
		return err
	}

	pl := scenario.BuildPlanets()
	pa := scenario.BuildParticles()
	params := scenario.Bundle.Params()

	in, err := wh.New(pl, pa, params, wh.Heliocentric)
	if err != nil {
		return fmt.Errorf("constructing integrator: %w", err)
	}

	m := tui.NewWatchModel(name, params.Dt, in, pl, pa)
	p := tea.NewProgram(m)
	_, err = p.Run()
	return err
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := store.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSCENARIO\tTIME\tBLOCKS\tENERGY DRIFT\tSURVIVAL")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%.3e\t%.3f\n",
			run.ID,
			run.Scenario,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Blocks,
			run.Metrics["energy_drift"],
			run.Metrics["survival_rate"],
		)
	}
	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]
	st := store.New(dataDir)

	samples, err := st.LoadMetrics(runID)
	if err != nil {
		return err
	}

	graph, err := tui.PlotDrift(runID, samples)
	if err != nil {
		return err
	}
	fmt.Println(graph)
	return nil
}

func aliveCount(pa *wh.ParticleState) int {
	n := 0
	for i := 0; i < pa.Len(); i++ {
		if pa.Alive(i) {
			n++
		}
	}
	return n
}
