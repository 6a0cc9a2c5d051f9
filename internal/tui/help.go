package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"
)

type helpModel struct {
	keys  keyMap
	width int
}

func newHelpModel() helpModel {
	return helpModel{
		keys:  defaultKeyMap(),
		width: 80,
	}
}

func (m *helpModel) SetWidth(width int) {
	m.width = width
}

func (m helpModel) View() string {
	var b strings.Builder

	b.WriteString(helpTitleStyle.Render("shelf help"))
	b.WriteString("\n\n")

	b.WriteString(helpSectionStyle.Render("dashboard"))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("  %s  refresh the library\n", helpKeyStyle.Render("ctrl+r")))
	b.WriteString(fmt.Sprintf("  %s  analyze the top 100\n", helpKeyStyle.Render("ctrl+a")))
	b.WriteString(fmt.Sprintf("  %s  analyze the whole library\n", helpKeyStyle.Render("ctrl+e")))
	b.WriteString(fmt.Sprintf("  %s  switch pane focus\n", helpKeyStyle.Render("tab")))
	b.WriteString(fmt.Sprintf("  %s  store details for the selected game\n", helpKeyStyle.Render("enter (table)")))

	b.WriteString("\n")

	b.WriteString(helpSectionStyle.Render("assistant"))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("  %s  ask for a recommendation\n", helpKeyStyle.Render("enter")))
	b.WriteString(fmt.Sprintf("  %s  clear the chat\n", helpKeyStyle.Render("ctrl+l")))

	b.WriteString("\n")
	b.WriteString(helpFooterStyle.Render("shift+q quit | tab focus | ctrl+r refresh"))

	return b.String()
}

type keyMap struct {
	Quit       key.Binding
	Enter      key.Binding
	FocusNext  key.Binding
	Refresh    key.Binding
	AnalyzeTop key.Binding
	AnalyzeAll key.Binding
	Clear      key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Quit: key.NewBinding(
			key.WithKeys("Q", "ctrl+c"),
			key.WithHelp("shift+q", "quit"),
		),
		Enter: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "send / select"),
		),
		FocusNext: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "switch focus"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("ctrl+r"),
			key.WithHelp("ctrl+r", "refresh library"),
		),
		AnalyzeTop: key.NewBinding(
			key.WithKeys("ctrl+a"),
			key.WithHelp("ctrl+a", "analyze top 100"),
		),
		AnalyzeAll: key.NewBinding(
			key.WithKeys("ctrl+e"),
			key.WithHelp("ctrl+e", "analyze everything"),
		),
		Clear: key.NewBinding(
			key.WithKeys("ctrl+l"),
			key.WithHelp("ctrl+l", "clear chat"),
		),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Enter, k.Refresh, k.AnalyzeTop, k.FocusNext, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Enter, k.Refresh, k.AnalyzeTop, k.AnalyzeAll, k.Clear, k.Quit},
	}
}

// Minimal transparent styles
var (
	helpTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFB86C"))

	helpSectionStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("#BD93F9"))

	helpKeyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF79C6"))

	helpFooterStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#44475A")).
			Italic(true)
)
