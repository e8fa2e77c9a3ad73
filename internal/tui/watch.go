// Package tui renders a running simulation live in the terminal, one
// timeblock per tick, using bubbletea for the event loop and lipgloss
// and asciigraph for layout.
package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/wisdom-holman/whsim/internal/metrics"
	"github.com/wisdom-holman/whsim/internal/wh"
)

const historyCapacity = 600

var (
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true).MarginBottom(1)
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(16)
	valueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	graphStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("49")).Padding(1, 0)
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginTop(1)
	deadStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
)

type tickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(50*time.Millisecond, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// WatchModel drives a live view of a Wisdom-Holman run: it advances one
// timeblock per tick and tracks energy and angular momentum drift.
type WatchModel struct {
	scenario string
	in       *wh.Integrator
	pl       *wh.PlanetState
	pa       *wh.ParticleState

	energy   *metrics.EnergyDrift
	angular  *metrics.AngularMomentumDrift
	survival *metrics.SurvivalRate

	dt      float64
	t       float64
	block   int
	running bool
	paused  bool
	err     error

	energyHistory []float64

	width, height int
}

// NewWatchModel builds a live view over an already-constructed
// integrator and state pair.
func NewWatchModel(scenario string, dt float64, in *wh.Integrator, pl *wh.PlanetState, pa *wh.ParticleState) WatchModel {
	return WatchModel{
		scenario:      scenario,
		dt:            dt,
		in:            in,
		pl:            pl,
		pa:            pa,
		energy:        metrics.NewEnergyDrift(),
		angular:       metrics.NewAngularMomentumDrift(),
		survival:      metrics.NewSurvivalRate(),
		running:       true,
		energyHistory: make([]float64, 0, historyCapacity),
		width:         80,
		height:        24,
	}
}

func (m WatchModel) Init() tea.Cmd { return tick() }

func (m WatchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.paused = !m.paused
		}
		return m, nil
	case tickMsg:
		if m.running && !m.paused && m.err == nil {
			m.advanceBlock()
		}
		if m.running {
			return m, tick()
		}
		return m, nil
	}
	return m, nil
}

func (m *WatchModel) advanceBlock() {
	tbsize := len(m.pl.H0Log)

	if err := m.in.IntegratePlanetsTimeblock(m.pl, m.t); err != nil {
		m.err = err
		return
	}
	if err := m.in.IntegrateParticlesTimeblock(m.pl, m.pa, 0, m.pa.Len(), m.t); err != nil {
		m.err = err
		return
	}

	m.block++
	m.t += m.dt * float64(tbsize)

	m.energy.Observe(m.pl)
	m.angular.Observe(m.pl)
	m.survival.Reset()
	m.survival.ObserveAll(m.pa)

	m.energyHistory = append(m.energyHistory, m.energy.Value())
	if len(m.energyHistory) > historyCapacity {
		m.energyHistory = m.energyHistory[len(m.energyHistory)-historyCapacity:]
	}
}

func (m WatchModel) View() string {
	var s strings.Builder

	s.WriteString(headerStyle.Render(fmt.Sprintf("whsim — %s", m.scenario)) + "\n")

	if m.err != nil {
		s.WriteString(deadStyle.Render(fmt.Sprintf("stopped: %v", m.err)) + "\n")
	}

	if len(m.energyHistory) > 1 {
		chart := asciigraph.Plot(m.energyHistory,
			asciigraph.Height(6),
			asciigraph.Width(50),
			asciigraph.Caption("energy drift"),
		)
		s.WriteString(graphStyle.Render(chart) + "\n")
	}

	s.WriteString(labelStyle.Render("block") + valueStyle.Render(fmt.Sprintf("%d", m.block)) + "\n")
	s.WriteString(labelStyle.Render("time") + valueStyle.Render(fmt.Sprintf("%.3f", m.t)) + "\n")
	s.WriteString(labelStyle.Render("planets") + valueStyle.Render(fmt.Sprintf("%d", m.pl.NAlive)) + "\n")
	s.WriteString(labelStyle.Render("particles alive") + valueStyle.Render(fmt.Sprintf("%d / %d", aliveCount(m.pa), m.pa.Len())) + "\n")
	s.WriteString(labelStyle.Render("energy drift") + valueStyle.Render(fmt.Sprintf("%.3e", m.energy.Value())) + "\n")
	s.WriteString(labelStyle.Render("angular drift") + valueStyle.Render(fmt.Sprintf("%.3e", m.angular.Value())) + "\n")

	status := "running"
	if m.paused {
		status = "paused"
	}
	if m.err != nil {
		status = "stopped"
	}
	s.WriteString(helpStyle.Render(fmt.Sprintf("[%s] space: pause  q: quit", status)))

	return s.String()
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
