// Package viz renders a running simulation in the terminal: an xy
// cross-section of the solvent, per-step observable sparklines, and
// the scheduler status line.
package viz

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/mesoflow/internal/metrics"
	"github.com/san-kum/mesoflow/internal/sched"
)

const (
	canvasWidth  = 60
	canvasHeight = 24
	stepsPerTick = 5
	historyCap   = 120
)

var (
	canvasStyle = lipgloss.NewStyle().Padding(1, 2)
	statsStyle  = lipgloss.NewStyle().Border(lipgloss.NormalBorder(), false, false, false, true).BorderForeground(lipgloss.Color("240")).Padding(1, 2).Width(44)
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true).MarginBottom(1)
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(14)
	valueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	graphStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("49")).Padding(1, 0)
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginTop(2)
)

type TickMsg time.Time

// Model drives the scheduler a few base steps per frame and renders
// the result.
type Model struct {
	sch     *sched.Scheduler
	ms      []metrics.Metric
	title   string
	canvas  [][]rune
	running bool
	err     error
}

func NewModel(title string, sch *sched.Scheduler, ms []metrics.Metric) Model {
	canvas := make([][]rune, canvasHeight)
	for i := range canvas {
		canvas[i] = make([]rune, canvasWidth)
	}
	return Model{
		sch:     sch,
		ms:      ms,
		title:   title,
		canvas:  canvas,
		running: true,
	}
}

func (m Model) Init() tea.Cmd {
	return tick()
}

func tick() tea.Cmd {
	return tea.Tick(time.Second/30, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.sch.Stop()
			return m, tea.Quit
		case " ":
			m.running = !m.running
		}
	case TickMsg:
		if m.running && m.err == nil {
			if err := m.sch.Run(context.Background(), stepsPerTick); err != nil {
				m.err = err
				m.running = false
			}
		}
		return m, tick()
	}
	return m, nil
}

func (m Model) View() string {
	m.draw()

	var canvas strings.Builder
	for _, row := range m.canvas {
		canvas.WriteString(string(row))
		canvas.WriteRune('\n')
	}

	var s strings.Builder
	s.WriteString(headerStyle.Render(strings.ToUpper(m.title)) + "\n")
	status := "RUNNING"
	if m.err != nil {
		status = "ERROR: " + m.err.Error()
	} else if !m.running {
		status = "PAUSED"
	}
	s.WriteString(status + "\n\n")

	for _, metric := range m.ms {
		series := metric.Series()
		if len(series) > historyCap {
			series = series[len(series)-historyCap:]
		}
		if len(series) > 1 {
			chart := asciigraph.Plot(series, asciigraph.Height(3), asciigraph.Width(30), asciigraph.Caption(metric.Name()))
			s.WriteString(graphStyle.Render(chart) + "\n\n")
		}
	}

	s.WriteString(labelStyle.Render("Step") + valueStyle.Render(fmt.Sprintf("%d", m.sch.CurrentStep())) + "\n")
	s.WriteString(labelStyle.Render("Time") + valueStyle.Render(fmt.Sprintf("%.3f", m.sch.Time())) + "\n")
	s.WriteString(labelStyle.Render("Particles") + valueStyle.Render(fmt.Sprintf("%d", m.sch.Solvent().N())) + "\n")
	s.WriteString(labelStyle.Render("State") + valueStyle.Render(m.sch.State().String()) + "\n")

	for _, w := range m.sch.Warnings() {
		s.WriteString(warnStyle.Render("! "+w) + "\n")
	}

	s.WriteString(helpStyle.Render("SP:Pause  Q:Quit"))

	return lipgloss.JoinHorizontal(lipgloss.Top,
		canvasStyle.Render(canvas.String()),
		statsStyle.Render(s.String()))
}

// draw scatters the solvent's xy projection onto the rune canvas,
// solute particles on top.
func (m Model) draw() {
	for y := range m.canvas {
		for x := range m.canvas[y] {
			m.canvas[y][x] = ' '
		}
	}

	box := m.sch.Config().Box
	solvent := m.sch.Solvent()
	for _, p := range solvent.Pos {
		x := int(p[0] / box.L[0] * canvasWidth)
		y := int(p[1] / box.L[1] * canvasHeight)
		m.set(x, y, '.')
	}
	if solute := m.sch.Solute(); solute != nil {
		for _, p := range solute.Pos {
			x := int(p[0] / box.L[0] * canvasWidth)
			y := int(p[1] / box.L[1] * canvasHeight)
			m.set(x, y, '@')
		}
	}
}

func (m Model) set(x, y int, c rune) {
	if x >= 0 && x < canvasWidth && y >= 0 && y < canvasHeight {
		m.canvas[y][x] = c
	}
}

// RunLive blocks until the user quits the live view.
func RunLive(title string, sch *sched.Scheduler, ms []metrics.Metric) error {
	_, err := tea.NewProgram(NewModel(title, sch, ms)).Run()
	return err
}
