package monitor

import (
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// HelpProvider is implemented by panels with key bindings of their own.
type HelpProvider interface {
	KeyBindings() []key.Binding
}

// keyMap is the dashboard's shortcuts plus any the panel adds. It satisfies
// help.KeyMap.
type keyMap struct {
	Quit  key.Binding
	Close key.Binding
	Help  key.Binding

	scroll key.Binding
	panel  []key.Binding
}

func newKeyMap(panel any) keyMap {
	k := keyMap{
		Quit:  key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "stop and exit")),
		Close: key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "close help / exit")),
		Help:  key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "toggle help")),
	}
	if _, ok := panel.(KeyHandler); ok {
		k.scroll = key.NewBinding(key.WithKeys("up", "down"), key.WithHelp("↑↓", "scroll"))
	}
	if p, ok := panel.(HelpProvider); ok {
		k.panel = p.KeyBindings()
	}
	return k
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Quit, k.Help, k.scroll}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	cols := [][]key.Binding{{k.Quit, k.Close, k.Help}}
	if len(k.panel) > 0 {
		cols = append(cols, k.panel)
	}
	return cols
}

func newHelp() help.Model {
	h := help.New()
	h.ShortSeparator = " | "
	h.Styles.ShortKey = lipgloss.NewStyle().Foreground(ColorTextSecondary)
	h.Styles.ShortDesc = lipgloss.NewStyle().Foreground(ColorTextMuted)
	h.Styles.ShortSeparator = lipgloss.NewStyle().Foreground(ColorTextMuted)
	h.Styles.FullKey = lipgloss.NewStyle().Foreground(ColorTextPrimary).Bold(true)
	h.Styles.FullDesc = lipgloss.NewStyle().Foreground(ColorTextSecondary)
	h.Styles.FullSeparator = lipgloss.NewStyle().Foreground(ColorTextMuted)
	return h
}

var (
	helpBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorAccent).
			Background(ColorSurfaceBg).
			Padding(1, 2)

	helpTitleStyle = lipgloss.NewStyle().
			Foreground(ColorAccent).
			Bold(true).
			MarginBottom(1)
)

// HandleKeyMsg applies a key press and reports whether anything used it.
func (m *Model[S]) HandleKeyMsg(msg tea.KeyMsg) (bool, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Help):
		m.showHelp = !m.showHelp
		return true, nil

	case m.showHelp && key.Matches(msg, m.keys.Close):
		m.showHelp = false
		return true, nil

	case key.Matches(msg, m.keys.Quit, m.keys.Close):
		// The session ends as Cancelled and its sessionDoneMsg would quit
		// too; quitting here keeps a stuck sampler from holding the terminal.
		m.cancel()
		m.quitting = true
		return true, tea.Quit
	}

	if h, ok := m.panel.(KeyHandler); ok {
		return h.HandleKey(msg), nil
	}
	return false, nil
}

// renderHelpOverlay centers the full shortcut list over the dashboard.
func (m Model[S]) renderHelpOverlay() string {
	body := strings.Join([]string{
		helpTitleStyle.Render("Keyboard Shortcuts"),
		m.help.FullHelpView(m.keys.FullHelp()),
		"",
		LabelStyle.Render("Press ? to close"),
	}, "\n")

	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center,
		helpBoxStyle.Render(body), lipgloss.WithWhitespaceChars(" "))
}

// renderFooter renders the one-line shortcut hint.
func (m Model[S]) renderFooter() string {
	return FooterStyle.Render(m.help.ShortHelpView(m.keys.ShortHelp()))
}
