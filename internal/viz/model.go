package viz

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/rigid2d/internal/engine"
	"github.com/san-kum/rigid2d/internal/metrics"
)

const (
	width           = 80
	height          = 24
	historyCapacity = 600
	frameInterval   = time.Second / 60
)

type TickMsg time.Time

// Builder creates a fresh system for the scene; Model calls it on start and
// on every reset.
type Builder func() (*engine.System, error)

// Model steps a scene on a timer and draws it with an energy panel.
type Model struct {
	title         string
	build         Builder
	sys           *engine.System
	dt, t         float64
	steps         int
	stepsPerFrame int
	bounds        Bounds
	fitted        bool
	canvas        *Canvas
	proj          Projector
	running       bool
	showHelp      bool
	energyHistory []float64
	speedHistory  []float64
	err           error
}

// NewModel builds the scene once. An empty bounds is fitted to the initial
// bodies.
func NewModel(title string, build Builder, dt float64, stepsPerFrame int, bounds Bounds) (Model, error) {
	sys, err := build()
	if err != nil {
		return Model{}, err
	}
	if stepsPerFrame < 1 {
		stepsPerFrame = 1
	}

	m := Model{
		title:         title,
		build:         build,
		sys:           sys,
		dt:            dt,
		stepsPerFrame: stepsPerFrame,
		bounds:        bounds,
		fitted:        bounds.Empty(),
		canvas:        NewCanvas(width, height),
		running:       true,
		energyHistory: make([]float64, 0, historyCapacity),
		speedHistory:  make([]float64, 0, historyCapacity),
	}
	m.frame()
	return m, nil
}

func tick() tea.Cmd {
	return tea.Tick(frameInterval, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Init() tea.Cmd {
	return tick()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "n", ".":
			if !m.running {
				m.step()
			}
		case "r":
			m.reset()
		case "?":
			m.showHelp = !m.showHelp
		}
	case TickMsg:
		if m.running && m.err == nil {
			for i := 0; i < m.stepsPerFrame; i++ {
				m.step()
			}
		}
		return m, tick()
	}
	return m, nil
}

func (m *Model) step() {
	m.sys.Step(m.dt)
	m.steps++
	m.t = float64(m.steps) * m.dt
	if !m.sys.Finite() {
		m.err = fmt.Errorf("state diverged at step %d", m.steps)
		m.running = false
	}
	m.record()
}

// reset rebuilds the scene from the builder and clears the history.
func (m *Model) reset() {
	sys, err := m.build()
	if err != nil {
		m.err = err
		return
	}
	m.sys = sys
	m.t, m.steps, m.err = 0, 0, nil
	m.energyHistory = m.energyHistory[:0]
	m.speedHistory = m.speedHistory[:0]
	m.frame()
}

// frame records the current state and refits the projector when the view
// follows the bodies.
func (m *Model) frame() {
	if m.fitted {
		m.bounds = Fit(m.sys.Snapshot(), 5)
	}
	pw, ph := m.canvas.Pixels()
	m.proj = NewProjector(m.bounds, pw, ph)
	m.record()
}

func (m *Model) record() {
	m.energyHistory = append(m.energyHistory, m.sys.TotalEnergy())
	if len(m.energyHistory) > historyCapacity {
		m.energyHistory = m.energyHistory[1:]
	}
	m.speedHistory = append(m.speedHistory, metrics.MaxSpeed(m.sys.Snapshot()))
	if len(m.speedHistory) > historyCapacity {
		m.speedHistory = m.speedHistory[1:]
	}
}

func (m Model) Time() float64          { return m.t }
func (m Model) Steps() int             { return m.steps }
func (m Model) Running() bool          { return m.running }
func (m Model) System() *engine.System { return m.sys }

func (m Model) View() string {
	m.canvas.Clear()
	DrawSnapshot(m.canvas, m.proj, m.sys.Snapshot())
	canvasView := canvasStyle.Render(m.canvas.String())

	var s strings.Builder
	s.WriteString(headerStyle.Render(strings.ToUpper(m.title)) + "\n")
	switch {
	case m.err != nil:
		s.WriteString(errorStyle.Render(m.err.Error()))
	case m.running:
		s.WriteString(StatusRunning.Render("RUNNING"))
	default:
		s.WriteString(StatusPaused.Render("PAUSED"))
	}
	s.WriteString("\n\n")

	if len(m.energyHistory) > 1 {
		chart := asciigraph.Plot(m.energyHistory, asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("Energy"))
		s.WriteString(graphStyle.Render(chart) + "\n\n")
	}

	st := m.sys.Stats()
	s.WriteString(row("Time", fmt.Sprintf("%.2fs", m.t)))
	s.WriteString(row("Step", fmt.Sprintf("%d", m.steps)))
	s.WriteString(row("Bodies", fmt.Sprintf("%d", m.sys.Len())))
	s.WriteString(row("Energy", fmt.Sprintf("%.2f", m.energyHistory[len(m.energyHistory)-1])))
	s.WriteString(row("Contacts", fmt.Sprintf("%d / %d", st.Contacts, st.Candidates)))
	s.WriteString(row("Degenerate", fmt.Sprintf("%d", st.Degenerate)))
	s.WriteString(row("Max |v|", SparklineChart(m.speedHistory, 20)))

	s.WriteString(helpStyle.Render("\n─────────────────────\nSP:Pause N:Step R:Reset\nQ:Quit   ?:Help"))
	statsView := statsStyle.Render(s.String())
	mainView := lipgloss.JoinHorizontal(lipgloss.Top, canvasView, statsView)
	if m.showHelp {
		return `
╔══════════════════════════════════════╗
║           KEYBOARD SHORTCUTS         ║
╠══════════════════════════════════════╣
║  Space    - Pause/Resume simulation  ║
║  N        - Step once while paused   ║
║  R        - Rebuild the scene        ║
║  Q        - Quit                     ║
║  ?        - Toggle this help         ║
╚══════════════════════════════════════╝
` + "\n\n" + mainView
	}
	return mainView
}
