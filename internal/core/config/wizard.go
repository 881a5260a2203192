package config

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const asciiArt = `
 ██╗   ██╗███████╗██╗   ██╗██████╗
 ██║   ██║██╔════╝██║   ██║██╔══██╗
 ██║   ██║███████╗██║   ██║██████╔╝
 ╚██╗ ██╔╝╚════██║██║   ██║██╔══██╗
  ╚████╔╝ ███████║╚██████╔╝██████╔╝
   ╚═══╝  ╚══════╝ ╚═════╝ ╚═════╝
`

var (
	logoStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true)
	titleStyle       = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	stepStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("248"))
	selectedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true)
	unselectedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	cursorStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	helpStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	inputStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	inputCursorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true)
	labelStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("248")).Width(16)
	valueStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	containerStyle   = lipgloss.NewStyle().Padding(2, 4)
)

const (
	stepProvider = iota
	stepAPIKey
	stepLanguage
	stepTimestamps
	stepFormat
	stepConfirm
	numSteps
)

type option struct {
	label, value string
}

// wizardLanguages is the short list offered by the wizard; any ISO 639-1
// code can still be set with `vsub config set`.
var wizardLanguages = []option{
	{"Auto-detect", "auto"},
	{"English", "en"},
	{"Indonesian", "id"},
	{"Japanese", "ja"},
	{"Korean", "ko"},
	{"Chinese", "zh"},
	{"Spanish", "es"},
	{"French", "fr"},
	{"German", "de"},
}

type model struct {
	currentStep int
	cursor      int
	config      *Config
	confirmed   bool
	cancelled   bool
	inputBuffer string
	width       int
	height      int
}

func initialModel(cfg *Config) model {
	m := model{config: cfg}
	m.setCursorFromConfig()
	return m
}

func (m *model) stepTitle() (string, string) {
	switch m.currentStep {
	case stepProvider:
		return "Transcription service", "Which API turns speech into text"
	case stepAPIKey:
		return "API key", "Leave empty to read OPENAI_API_KEY from the environment"
	case stepLanguage:
		return "Spoken language", "Hint passed to the transcription service"
	case stepTimestamps:
		return "Timestamps", "Where subtitle timing comes from"
	case stepFormat:
		return "Subtitle format", "Default output file type"
	case stepConfirm:
		return "Confirm", "Save these settings?"
	}
	return "", ""
}

func (m *model) options() []option {
	switch m.currentStep {
	case stepProvider:
		return []option{
			{"OpenAI audio chat model (recommended)", ProviderOpenAIAudio},
			{"Whisper transcription endpoint", ProviderWhisper},
		}
	case stepLanguage:
		return wizardLanguages
	case stepTimestamps:
		return []option{
			{"Detected speech regions (recommended)", TimestampsVAD},
			{"Returned by the model", TimestampsModel},
		}
	case stepFormat:
		return []option{
			{"SubRip (.srt)", FormatSRT},
			{"WebVTT (.vtt)", FormatVTT},
			{"Markdown transcript (.md)", FormatMarkdown},
		}
	case stepConfirm:
		return []option{
			{"Yes, save", "yes"},
			{"No, cancel", "no"},
		}
	}
	return nil
}

func (m *model) isInputStep() bool {
	return m.currentStep == stepAPIKey
}

func (m *model) setCursorFromConfig() {
	if m.isInputStep() {
		m.inputBuffer = m.config.Transcription.APIKey
		return
	}

	var current string
	switch m.currentStep {
	case stepProvider:
		current = m.config.Transcription.Provider
	case stepLanguage:
		current = m.config.Transcription.Language
	case stepTimestamps:
		current = m.config.Transcription.Timestamps
	case stepFormat:
		current = m.config.Subtitle.Format
	}

	for i, opt := range m.options() {
		if opt.value == current {
			m.cursor = i
			break
		}
	}
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			m.cancelled = true
			return m, tea.Quit

		case "left":
			if m.currentStep > 0 {
				m.saveCurrentValue()
				m.currentStep--
				m.cursor = 0
				m.setCursorFromConfig()
			}
			return m, nil

		case "right", "enter":
			m.saveCurrentValue()

			if m.currentStep == stepConfirm {
				if m.cursor == 0 {
					m.confirmed = true
				} else {
					m.cancelled = true
				}
				return m, tea.Quit
			}

			m.currentStep++
			m.cursor = 0
			m.setCursorFromConfig()
			return m, nil

		case "up", "k":
			if !m.isInputStep() {
				if m.cursor > 0 {
					m.cursor--
				} else {
					m.cursor = len(m.options()) - 1
				}
				return m, nil
			}

		case "down", "j":
			if !m.isInputStep() {
				if m.cursor < len(m.options())-1 {
					m.cursor++
				} else {
					m.cursor = 0
				}
				return m, nil
			}

		case "backspace":
			if m.isInputStep() && len(m.inputBuffer) > 0 {
				m.inputBuffer = m.inputBuffer[:len(m.inputBuffer)-1]
			}
			return m, nil
		}

		if m.isInputStep() && len(msg.String()) == 1 {
			m.inputBuffer += msg.String()
		}
	}

	return m, nil
}

func (m *model) saveCurrentValue() {
	if m.isInputStep() {
		m.config.Transcription.APIKey = strings.TrimSpace(m.inputBuffer)
		return
	}

	options := m.options()
	if m.cursor >= len(options) {
		return
	}
	value := options[m.cursor].value
	switch m.currentStep {
	case stepProvider:
		if value != m.config.Transcription.Provider {
			m.config.Transcription.Provider = value
			m.config.Transcription.Model = ""
			m.config.ApplyDefaults()
		}
	case stepLanguage:
		m.config.Transcription.Language = value
	case stepTimestamps:
		m.config.Transcription.Timestamps = value
	case stepFormat:
		m.config.Subtitle.Format = value
	}
}

func (m model) View() string {
	var b strings.Builder

	b.WriteString(logoStyle.Render(asciiArt))
	b.WriteString("\n\n")

	b.WriteString(stepStyle.Render(fmt.Sprintf("Step %d of %d", m.currentStep+1, numSteps)))
	b.WriteString("\n\n")

	title, desc := m.stepTitle()
	b.WriteString(titleStyle.Render(title))
	b.WriteString("\n")
	b.WriteString(stepStyle.Render(desc))
	b.WriteString("\n\n")

	if m.currentStep == stepConfirm {
		b.WriteString(m.renderReview())
		b.WriteString("\n")
	}

	if m.isInputStep() {
		b.WriteString(inputCursorStyle.Render("> "))
		b.WriteString(inputStyle.Render(strings.Repeat("•", len(m.inputBuffer))))
		b.WriteString(inputCursorStyle.Render("█"))
		b.WriteString("\n")
	} else {
		for i, opt := range m.options() {
			cursor := "  "
			style := unselectedStyle
			if i == m.cursor {
				cursor = cursorStyle.Render("> ")
				style = selectedStyle
			}
			b.WriteString(cursor)
			b.WriteString(style.Render(opt.label))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(helpStyle.Render("← back • → next • ↑↓ select • enter confirm • esc quit"))

	content := containerStyle.Render(b.String())
	if m.width > 0 && m.height > 0 {
		content = lipgloss.Place(m.width, m.height, lipgloss.Left, lipgloss.Top, content)
	}
	return content
}

func (m model) renderReview() string {
	var b strings.Builder

	apiKey := MaskSecret(m.config.Transcription.APIKey)
	if apiKey == "" {
		apiKey = "(from environment)"
	}

	lines := []option{
		{"Provider", m.config.Transcription.Provider},
		{"Model", m.config.Transcription.Model},
		{"API key", apiKey},
		{"Language", m.config.Transcription.Language},
		{"Timestamps", m.config.Transcription.Timestamps},
		{"Format", m.config.Subtitle.Format},
	}
	for _, line := range lines {
		b.WriteString(labelStyle.Render(line.label + ":"))
		b.WriteString(valueStyle.Render(line.value))
		b.WriteString("\n")
	}
	return b.String()
}

// RunInitWizard runs an interactive TUI wizard to configure vsub.
func RunInitWizard() (*Config, error) {
	cfg := LoadOrDefault()

	p := tea.NewProgram(initialModel(cfg), tea.WithAltScreen())
	finalModel, err := p.Run()
	if err != nil {
		return nil, err
	}

	result := finalModel.(model)
	if result.cancelled || !result.confirmed {
		return nil, fmt.Errorf("configuration cancelled")
	}
	return result.config, nil
}
