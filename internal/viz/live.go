package viz

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/armkin/internal/jog"
	"github.com/san-kum/armkin/internal/robot"
)

const residualHistory = 120

var (
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true).MarginBottom(1)
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(10)
	valueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
	failStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("203")).Bold(true)
	panelStyle  = lipgloss.NewStyle().Border(lipgloss.NormalBorder(), false, false, false, true).BorderForeground(lipgloss.Color("240")).Padding(0, 2)
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginTop(1)
)

// Model renders jog tracker states. It owns no solver state: everything it
// shows arrives over the tracker's state channel.
type Model struct {
	states <-chan jog.State
	limits [robot.NumJoints]robot.Limit
	names  [robot.NumJoints]string

	latest    jog.State
	residuals []float64
	failures  int
	paused    bool
}

type stateMsg jog.State

// NewModel builds the live view over a tracker state channel.
func NewModel(states <-chan jog.State, names [robot.NumJoints]string, limits [robot.NumJoints]robot.Limit) Model {
	return Model{
		states:    states,
		limits:    limits,
		names:     names,
		residuals: make([]float64, 0, residualHistory),
	}
}

func (m Model) Init() tea.Cmd {
	return m.waitForState()
}

func (m Model) waitForState() tea.Cmd {
	return func() tea.Msg {
		s, ok := <-m.states
		if !ok {
			return tea.Quit()
		}
		return stateMsg(s)
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.paused = !m.paused
		}
		return m, nil
	case stateMsg:
		if !m.paused {
			m.latest = jog.State(msg)
			if !m.latest.Result.Success {
				m.failures++
			}
			m.residuals = append(m.residuals, m.latest.Result.Residual)
			if len(m.residuals) > residualHistory {
				m.residuals = m.residuals[1:]
			}
		}
		return m, m.waitForState()
	}
	return m, nil
}

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(headerStyle.Render("armkin jog"))
	b.WriteString("\n")

	s := m.latest
	status := okStyle.Render("tracking")
	if s.Tick == 0 {
		status = valueStyle.Render("waiting for first tick")
	} else if !s.Result.Success {
		status = failStyle.Render("lost: " + s.Result.Reason.String())
	}

	var joints strings.Builder
	for i := 0; i < robot.NumJoints; i++ {
		joints.WriteString(fmt.Sprintf("%s %9.3f°  %s\n",
			labelStyle.Render(m.names[i]),
			s.Joints[i],
			limitBar(s.Joints[i], m.limits[i], 24),
		))
	}

	target := fmt.Sprintf(
		"X %8.1f  Y %8.1f  Z %8.1f\nRX %7.2f  RY %7.2f  RZ %7.2f",
		s.Target.X, s.Target.Y, s.Target.Z, s.Target.RX, s.Target.RY, s.Target.RZ,
	)

	stats := fmt.Sprintf("tick %d   iters %d   residual %.4f   failures %d",
		s.Tick, s.Result.Iterations, s.Result.Residual, m.failures)

	b.WriteString(panelStyle.Render(joints.String()))
	b.WriteString("\n")
	b.WriteString(panelStyle.Render("target\n" + valueStyle.Render(target)))
	b.WriteString("\n")
	b.WriteString(valueStyle.Render(stats))
	b.WriteString("  ")
	b.WriteString(status)
	b.WriteString("\n")
	b.WriteString(Sparkline(m.residuals, 60))
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("space pause · q quit"))

	return b.String()
}

// limitBar renders a joint's position inside its limit range.
func limitBar(v float64, l robot.Limit, width int) string {
	span := l.Max - l.Min
	if span <= 0 {
		return strings.Repeat("─", width)
	}
	pos := int(float64(width-1) * (v - l.Min) / span)
	if pos < 0 {
		pos = 0
	}
	if pos >= width {
		pos = width - 1
	}
	bar := []rune(strings.Repeat("·", width))
	bar[pos] = '█'
	return string(bar)
}
