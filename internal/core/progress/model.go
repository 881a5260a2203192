package progress

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))  // cyan
	fileStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("212"))            // pink
	successStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42"))  // green
	labelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))            // gray
	valueStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("255"))            // white
	errStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196")) // red
)

type tickMsg time.Time

type model struct {
	progress progress.Model
	spinner  spinner.Model

	label  string
	detail string
	width  int
	state  *state
}

func newModel(label, detail string, width int, st *state) model {
	p := progress.New(
		progress.WithScaledGradient("#FF6B6B", "#4ECDC4"),
		progress.WithWidth(40),
	)

	s := spinner.New()
	s.Spinner = spinner.MiniDot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	return model{
		progress: p,
		spinner:  s,
		label:    label,
		detail:   detail,
		width:    width,
		state:    st,
	}
}

func tickCmd() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, tickCmd())
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case progress.FrameMsg:
		pm, cmd := m.progress.Update(msg)
		m.progress = pm.(progress.Model)
		return m, cmd

	case tickMsg:
		snap := m.state.get()
		if snap.finished {
			return m, tea.Quit
		}
		return m, tea.Batch(tickCmd(), m.progress.SetPercent(snap.percent()))
	}

	return m, nil
}

func (m model) View() string {
	snap := m.state.get()
	label := m.fitLabel()

	if snap.finished {
		if snap.err != nil {
			return fmt.Sprintf("  %s %s %s\n", errStyle.Render("✗"), fileStyle.Render(label), snap.err)
		}
		return fmt.Sprintf("  %s %s %s\n",
			successStyle.Render("✓"),
			fileStyle.Render(label),
			labelStyle.Render("("+formatElapsed(snap.elapsed)+")"),
		)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "  %s %s %s\n", m.spinner.View(), titleStyle.Render(stageText(snap.stage)), fileStyle.Render(label))
	if m.detail != "" {
		fmt.Fprintf(&b, "  %s %s\n", labelStyle.Render("Model:"), valueStyle.Render(m.detail))
	}
	if snap.total > 0 {
		fmt.Fprintf(&b, "  %s %s\n", m.progress.View(), valueStyle.Render(fmt.Sprintf("%d/%d", snap.done, snap.total)))
	}
	fmt.Fprintf(&b, "  %s %s\n", labelStyle.Render("Elapsed:"), valueStyle.Render(formatElapsed(snap.elapsed)))
	return b.String()
}

// fitLabel truncates the label so the header stays on one terminal line.
func (m model) fitLabel() string {
	if m.width <= 0 {
		return m.label
	}
	room := m.width - 30
	if room < 10 {
		room = 10
	}
	return runewidth.Truncate(m.label, room, "…")
}

func stageText(stage string) string {
	switch stage {
	case StageConverting:
		return "Converting audio..."
	case StageDetecting:
		return "Detecting speech..."
	case StageTranscribing:
		return "Transcribing speech..."
	case StageTranslating:
		return "Translating..."
	case StageWriting:
		return "Writing subtitles..."
	default:
		return "Preparing..."
	}
}

// formatElapsed renders a duration as 42s or 3m07s.
func formatElapsed(d time.Duration) string {
	d = d.Round(time.Second)
	m := d / time.Minute
	s := (d % time.Minute) / time.Second
	if m > 0 {
		return fmt.Sprintf("%dm%02ds", m, s)
	}
	return fmt.Sprintf("%ds", s)
}
