package viz

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/san-kum/potsim/internal/field"
	"github.com/san-kum/potsim/internal/metrics"
	"github.com/san-kum/potsim/internal/particle"
	"github.com/san-kum/potsim/internal/potential"
	"github.com/san-kum/potsim/internal/sim"
)

const (
	fieldCols       = 64
	fieldRows       = 24
	historyCapacity = 600
	frameInterval   = time.Second / 30
	velocityTail    = 0.02
)

type TickMsg time.Time

// Model steps one of several engines over a shared ensemble and draws the
// latest field. Switching engines keeps the ensemble where it is.
type Model struct {
	engines []potential.Engine
	active  int
	cmap    sim.ColorMap

	initial []particle.Particle
	ps      []particle.Particle
	cfg     sim.Config

	iter    int
	ext     field.Extent
	scaled  bool
	running bool
	err     error
	stepDur time.Duration

	energy []float64
	canvas *Canvas
}

func NewModel(engines []potential.Engine, cmap sim.ColorMap, ps []particle.Particle, cfg sim.Config) (Model, error) {
	if len(engines) == 0 {
		return Model{}, fmt.Errorf("viz: no engines")
	}
	if err := particle.Validate(ps); err != nil {
		return Model{}, fmt.Errorf("viz: %w", err)
	}
	if cfg.Dt <= 0 || cfg.Substeps <= 0 {
		return Model{}, fmt.Errorf("viz: dt and substeps must be positive")
	}
	return Model{
		engines: engines,
		cmap:    cmap,
		initial: particle.Clone(ps),
		ps:      particle.Clone(ps),
		cfg:     cfg,
		ext:     field.EmptyExtent(),
		running: true,
		energy:  make([]float64, 0, historyCapacity),
		canvas:  NewCanvas(fieldCols/2, fieldRows/2),
	}, nil
}

func tick() tea.Cmd {
	return tea.Tick(frameInterval, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Init() tea.Cmd { return tick() }

func (m Model) Engine() potential.Engine { return m.engines[m.active] }
func (m Model) Iteration() int           { return m.iter }
func (m Model) Running() bool            { return m.running }
func (m Model) Err() error               { return m.err }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "s":
			m.switchEngine()
		case "r":
			m.reset()
		}
	case TickMsg:
		if m.running && m.err == nil && !m.done() {
			m.step()
		}
		return m, tick()
	}
	return m, nil
}

func (m Model) done() bool {
	return m.cfg.MaxIter > 0 && m.iter >= m.cfg.MaxIter
}

func (m *Model) step() {
	eng := m.Engine()
	start := time.Now()

	ext, err := eng.ComputeField(m.ps)
	if err != nil {
		m.err = err
		return
	}
	if !m.scaled || m.cfg.UpdateScale {
		m.cmap.SetScale(ext.Lo, ext.Hi)
		m.scaled = true
	}
	if err := eng.MoveParticles(m.ps, m.cfg.Dt, m.cfg.Substeps); err != nil {
		m.err = err
		return
	}

	m.stepDur = time.Since(start)
	m.ext = ext
	m.iter++
	m.energy = append(m.energy, metrics.TotalEnergy(m.ps))
	if len(m.energy) > historyCapacity {
		m.energy = m.energy[1:]
	}
}

// switchEngine activates the next engine and fills its grid from the current
// ensemble so the view never shows a stale or empty field.
func (m *Model) switchEngine() {
	prev := m.Engine()
	m.active = (m.active + 1) % len(m.engines)
	if !prev.Grid().Ready() || m.err != nil {
		return
	}
	ext, err := m.Engine().ComputeField(m.ps)
	if err != nil {
		m.err = err
		return
	}
	m.ext = ext
}

func (m *Model) reset() {
	m.ps = particle.Clone(m.initial)
	m.iter = 0
	m.ext = field.EmptyExtent()
	m.scaled = false
	m.err = nil
	m.energy = m.energy[:0]
}

func (m Model) View() string {
	var fieldView string
	if m.Engine().Grid().Ready() {
		s, err := RenderField(m.Engine().Grid(), m.cmap, fieldCols, fieldRows)
		if err != nil {
			s = StatusError.Render(err.Error())
		}
		fieldView = s
	} else {
		fieldView = Subtle("computing first frame...")
	}

	m.canvas.Clear()
	m.canvas.PlotParticles(m.ps, velocityTail)

	var s strings.Builder
	s.WriteString(Title.Render("POTENTIAL") + "\n")
	switch {
	case m.err != nil:
		s.WriteString(StatusError.Render("ERROR: "+m.err.Error()) + "\n\n")
	case m.done():
		s.WriteString(StatusPaused.Render("DONE") + "\n\n")
	case m.running:
		s.WriteString(StatusRunning.Render("RUNNING") + "\n\n")
	default:
		s.WriteString(StatusPaused.Render("PAUSED") + "\n\n")
	}

	row := func(label, value string) {
		s.WriteString(MetricLabel.Render(label) + MetricValue.Render(value) + "\n")
	}
	row("Engine", m.Engine().Name())
	row("Iteration", fmt.Sprintf("%d", m.iter))
	row("Particles", fmt.Sprintf("%d", len(m.ps)))
	if !m.ext.Empty() {
		row("Range", fmt.Sprintf("[%.3g, %.3g]", m.ext.Lo, m.ext.Hi))
	}
	row("Step", m.stepDur.Round(time.Microsecond).String())
	if m.cfg.MaxIter > 0 {
		s.WriteString(ProgressBar(float64(m.iter)/float64(m.cfg.MaxIter), 24) + "\n")
	}
	s.WriteString("\n" + MetricLabel.Render("Energy") + "\n")
	s.WriteString(Sparkline(m.energy, 24) + "\n\n")
	s.WriteString(m.canvas.String())
	s.WriteString(KeyHint.Render("\nSPC:Pause S:Engine R:Reset Q:Quit"))

	return lipgloss.JoinHorizontal(lipgloss.Top, Panel.Render(fieldView), Panel.Render(s.String()))
}
