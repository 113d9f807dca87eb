package walkthrough

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/flowlens/flowlens/engine/core"
)

const (
	autoplayInterval  = time.Second
	defaultWidth      = 80
	defaultHeight     = 14
	chromeHeight      = 8
	minViewportHeight = 3
)

// -----
// Models
// -----

// Model steps through the narrated execution of a snippet one step at a
// time, with the source shown in a scrollable pane.
type Model struct {
	steps    []core.ExecutionStep
	source   []string
	profile  string
	index    int
	autoplay bool
	viewport viewport.Model
	keys     keyMap
	help     help.Model
	width    int
	height   int
	done     bool
}

// -----
// Messages
// -----

// tickMsg drives autoplay advancement
type tickMsg struct{}

// -----
// Key Bindings
// -----

type keyMap struct {
	Next     key.Binding
	Prev     key.Binding
	First    key.Binding
	Last     key.Binding
	Autoplay key.Binding
	Help     key.Binding
	Quit     key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Next: key.NewBinding(
			key.WithKeys("right", "l", "n", "enter"),
			key.WithHelp("→/n", "next"),
		),
		Prev: key.NewBinding(
			key.WithKeys("left", "h", "p"),
			key.WithHelp("←/p", "prev"),
		),
		First: key.NewBinding(
			key.WithKeys("home", "g"),
			key.WithHelp("g", "first"),
		),
		Last: key.NewBinding(
			key.WithKeys("end", "G"),
			key.WithHelp("G", "last"),
		),
		Autoplay: key.NewBinding(
			key.WithKeys(" ", "space"),
			key.WithHelp("space", "autoplay"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "esc", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// ShortHelp implements help.KeyMap
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Next, k.Prev, k.Autoplay, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Next, k.Prev, k.First, k.Last},
		{k.Autoplay, k.Help, k.Quit},
	}
}

// -----
// Styles
// -----

var (
	titleStyle       = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("252"))
	profileStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("69"))
	counterStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	descriptionStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("252"))
	explanationStyle = lipgloss.NewStyle().Faint(true).Foreground(lipgloss.Color("250"))
	memoryEventStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("108"))
	sourceStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("246"))
	currentLineStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("82"))
	emptyStyle       = lipgloss.NewStyle().Faint(true)

	categoryColors = map[core.StepCategory]lipgloss.Color{
		core.StepCategoryMemory:    lipgloss.Color("69"),
		core.StepCategoryControl:   lipgloss.Color("214"),
		core.StepCategoryExecution: lipgloss.Color("82"),
		core.StepCategoryStructure: lipgloss.Color("135"),
	}
)

func badgeStyle(category core.StepCategory) lipgloss.Style {
	color, ok := categoryColors[category]
	if !ok {
		color = lipgloss.Color("245")
	}
	return lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("232")).Background(color)
}

func categoryTitle(category core.StepCategory) string {
	caser := cases.Title(language.English)
	return caser.String(string(category))
}

// -----
// Constructor
// -----

// New creates a walkthrough model for one analysis result. The source text
// is passed separately because results do not retain the raw snippet.
func New(result *core.AnalysisResult, source string) Model {
	m := Model{
		steps:    result.Steps,
		source:   splitLines(source),
		profile:  result.Profile,
		viewport: viewport.New(defaultWidth, defaultHeight),
		keys:     defaultKeyMap(),
		help:     help.New(),
	}
	m.syncViewport()
	return m
}

func splitLines(source string) []string {
	if source == "" {
		return nil
	}
	lines := strings.Split(source, "\n")
	for i := range lines {
		lines[i] = strings.TrimRight(lines[i], "\r")
	}
	return lines
}

// -----
// Bubbletea Interface
// -----

// Init implements tea.Model
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.viewport.Width = msg.Width
		contentHeight := msg.Height - chromeHeight
		if contentHeight < minViewportHeight {
			contentHeight = minViewportHeight
		}
		m.viewport.Height = contentHeight
		m.syncViewport()
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.done = true
			return m, tea.Quit

		case key.Matches(msg, m.keys.Next):
			m.moveTo(m.index + 1)
			return m, nil

		case key.Matches(msg, m.keys.Prev):
			m.moveTo(m.index - 1)
			return m, nil

		case key.Matches(msg, m.keys.First):
			m.moveTo(0)
			return m, nil

		case key.Matches(msg, m.keys.Last):
			m.moveTo(len(m.steps) - 1)
			return m, nil

		case key.Matches(msg, m.keys.Autoplay):
			m.autoplay = !m.autoplay
			if m.autoplay {
				return m, m.tick()
			}
			return m, nil

		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
			return m, nil
		}

		// Unmatched keys scroll the source pane
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd

	case tickMsg:
		if !m.autoplay {
			return m, nil
		}
		if m.index >= len(m.steps)-1 {
			m.autoplay = false
			return m, nil
		}
		m.moveTo(m.index + 1)
		return m, m.tick()

	default:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}
}

// View implements tea.Model
func (m *Model) View() string {
	if m.done {
		return ""
	}
	if len(m.steps) == 0 {
		return emptyStyle.Render("No execution steps to display.") + "\n"
	}

	step := m.steps[m.index]

	header := lipgloss.JoinHorizontal(lipgloss.Left,
		titleStyle.Render("Execution Walkthrough"),
		"  ",
		profileStyle.Render(m.profile),
		"  ",
		counterStyle.Render(fmt.Sprintf("Step %d/%d", m.index+1, len(m.steps))),
	)

	card := []string{
		lipgloss.JoinHorizontal(lipgloss.Left,
			badgeStyle(step.Category).Render(" "+categoryTitle(step.Category)+" "),
			" ",
			descriptionStyle.Render(step.Description),
		),
	}
	if step.Explanation != "" {
		card = append(card, explanationStyle.Render("  "+step.Explanation))
	}
	for _, event := range step.MemoryEvents {
		card = append(card, memoryEventStyle.Render(
			fmt.Sprintf("  %s %s (%s)", event.Action, event.Variable, event.Kind)))
	}

	parts := []string{
		header,
		"",
		strings.Join(card, "\n"),
		"",
		m.viewport.View(),
		"",
		m.help.View(m.keys),
	}
	return strings.Join(parts, "\n")
}

// -----
// Navigation
// -----

func (m *Model) moveTo(index int) {
	if len(m.steps) == 0 {
		return
	}
	if index < 0 {
		index = 0
	}
	if index > len(m.steps)-1 {
		index = len(m.steps) - 1
	}
	m.index = index
	m.syncViewport()
}

// syncViewport refreshes the source pane and keeps the current line
// roughly centered.
func (m *Model) syncViewport() {
	if len(m.steps) == 0 || len(m.source) == 0 {
		m.viewport.SetContent("")
		return
	}
	m.viewport.SetContent(m.renderSource())
	target := m.steps[m.index].Line - 1 - m.viewport.Height/2
	if target < 0 {
		target = 0
	}
	m.viewport.SetYOffset(target)
}

func (m *Model) renderSource() string {
	current := m.steps[m.index].Line
	var b strings.Builder
	for i, line := range m.source {
		number := i + 1
		if number == current {
			b.WriteString(currentLineStyle.Render(fmt.Sprintf("→ %3d  %s", number, line)))
		} else {
			b.WriteString(sourceStyle.Render(fmt.Sprintf("  %3d  %s", number, line)))
		}
		if i < len(m.source)-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func (m *Model) tick() tea.Cmd {
	return tea.Tick(autoplayInterval, func(time.Time) tea.Msg {
		return tickMsg{}
	})
}
