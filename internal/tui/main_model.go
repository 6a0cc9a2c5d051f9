package tui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/Cathesth/SHELF/internal/app"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type focusArea int

const (
	focusInput focusArea = iota
	focusChat
	focusTable
)

type Message struct {
	ID        string
	Role      string
	Content   string
	Timestamp time.Time
}

type spinMsg struct{}

// RefreshRequestMsg asks for a library refresh. The cron refresher sends it
// through Program.Send; the ctrl+r binding produces the same message.
type RefreshRequestMsg struct{}

type refreshDoneMsg struct{ err error }
type askDoneMsg struct {
	reply string
	err   error
}
type detailsDoneMsg struct {
	name    string
	details *app.GameDetails
	err     error
}

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

const fetchTimeout = 5 * time.Minute

type MainModel struct {
	app     *app.Application
	session *app.Controller

	theme Theme
	help  helpModel

	width  int
	height int
	ready  bool

	focus focusArea

	messages []Message
	input    textarea.Model
	chatVP   viewport.Model

	tableSel int
	tableOff int

	fetching   bool
	asking     bool
	statusText string
	spinnerPos int
	cancel     context.CancelFunc
}

func NewMainModel(application *app.Application) *MainModel {
	ta := textarea.New()
	ta.Placeholder = "Ask for a recommendation, then press Enter. Tab switches focus."
	ta.Focus()
	ta.CharLimit = 2000
	ta.SetHeight(1)
	ta.Prompt = " "
	ta.ShowLineNumbers = false

	// Keep textarea styling minimal; we style the input container instead.
	ta.FocusedStyle.CursorLine = lipgloss.NewStyle()
	ta.BlurredStyle.CursorLine = lipgloss.NewStyle()
	ta.FocusedStyle.Base = lipgloss.NewStyle()
	ta.BlurredStyle.Base = lipgloss.NewStyle()

	m := &MainModel{
		app:        application,
		session:    application.NewSession(),
		theme:      NewTheme(application.Config.Theme),
		help:       newHelpModel(),
		width:      100,
		height:     30,
		focus:      focusInput,
		input:      ta,
		statusText: "Ready",
	}

	m.messages = append(m.messages, Message{
		ID:        "welcome-1",
		Role:      "system",
		Content:   "shelf ready. Ctrl+R fetches your library. Enter asks the assistant.",
		Timestamp: time.Now(),
	})
	if !m.app.HasSteamCredentials() {
		m.messages = append(m.messages, Message{
			ID:        "setup-steam",
			Role:      "system",
			Content:   "Steam is not configured. Set steam_api_key and steam_id in " + app.DefaultConfigPath() + " (or STEAM_API_KEY / STEAM_ID).",
			Timestamp: time.Now(),
		})
	}
	if !m.app.HasGeminiCredentials() {
		m.messages = append(m.messages, Message{
			ID:        "setup-gemini",
			Role:      "system",
			Content:   "Gemini is not configured. The table will show playtime without genre labels and the assistant is disabled. Set gemini_api_key (or GEMINI_API_KEY).",
			Timestamp: time.Now(),
		})
	}

	return m
}

func (m *MainModel) Init() tea.Cmd {
	if m.app.HasSteamCredentials() {
		return tea.Batch(textarea.Blink, func() tea.Msg { return RefreshRequestMsg{} })
	}
	return textarea.Blink
}

func (m *MainModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		m.help.SetWidth(m.width)

		layout := m.computeLayout()
		if !m.ready {
			m.chatVP = viewport.New(layout.ChatW, layout.ChatH)
			m.chatVP.Style = lipgloss.NewStyle()
			m.ready = true
		} else {
			m.chatVP.Width = layout.ChatW
			m.chatVP.Height = layout.ChatH
		}
		m.input.SetWidth(maxInt(10, layout.InputW))
		m.updateChatViewport()
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.help.keys.Quit):
			if m.cancel != nil {
				m.cancel()
			}
			return m, tea.Quit

		case key.Matches(msg, m.help.keys.FocusNext):
			m.cycleFocus()
			return m, nil

		case key.Matches(msg, m.help.keys.Refresh):
			return m, m.startRefresh()

		case key.Matches(msg, m.help.keys.AnalyzeTop):
			return m, m.startRaise(app.AnalysisMilestone)

		case key.Matches(msg, m.help.keys.AnalyzeAll):
			return m, m.startRaise(len(m.session.Games()))

		case key.Matches(msg, m.help.keys.Clear):
			m.messages = []Message{{
				ID:        "welcome-1",
				Role:      "system",
				Content:   "cleared.",
				Timestamp: time.Now(),
			}}
			m.updateChatViewport()
			return m, nil

		case key.Matches(msg, m.help.keys.Enter):
			if m.focus == focusTable {
				return m, m.startDetails()
			}
			return m, m.onEnter()

		case msg.Type == tea.KeyUp:
			if m.focus == focusChat {
				m.chatVP.LineUp(1)
				return m, nil
			}
			if m.focus == focusTable {
				m.moveTable(-1)
				return m, nil
			}
		case msg.Type == tea.KeyDown:
			if m.focus == focusChat {
				m.chatVP.LineDown(1)
				return m, nil
			}
			if m.focus == focusTable {
				m.moveTable(1)
				return m, nil
			}
		case msg.Type == tea.KeyPgUp:
			m.chatVP.ViewUp()
			return m, nil
		case msg.Type == tea.KeyPgDown:
			m.chatVP.ViewDown()
			return m, nil
		}

	case RefreshRequestMsg:
		return m, m.startRefresh()

	case refreshDoneMsg:
		m.fetching = false
		m.statusText = "Ready"
		m.cancel = nil
		if msg.err != nil {
			role := "error"
			if errorIsEmptyLibrary(msg.err) {
				role = "system"
			}
			m.appendMessage(role, fmt.Sprintf("refresh: %v", msg.err))
		} else {
			stats := m.session.Stats()
			m.appendMessage("system", fmt.Sprintf(
				"library refreshed: %d games, %d hours on record, top %d analyzed.",
				stats.TotalGames, stats.TotalHours, m.session.AnalysisLimit()))
		}
		m.clampTable()
		return m, nil

	case askDoneMsg:
		m.asking = false
		m.statusText = "Ready"
		m.cancel = nil
		if msg.err != nil {
			m.appendMessage("error", fmt.Sprintf("assistant: %v", msg.err))
		} else {
			m.appendMessage("assistant", msg.reply)
		}
		return m, nil

	case detailsDoneMsg:
		if msg.err != nil {
			m.appendMessage("error", fmt.Sprintf("store details: %v", msg.err))
			return m, nil
		}
		d := msg.details
		content := fmt.Sprintf("%s\n%s", d.Name, d.ShortDescription)
		if d.ReleaseDate != "" {
			content += "\nReleased: " + d.ReleaseDate
		}
		if d.Developers != "" {
			content += "\nBy: " + d.Developers
		}
		m.appendMessage("system", content)
		return m, nil

	case spinMsg:
		m.spinnerPos = (m.spinnerPos + 1) % len(spinnerFrames)
		if m.fetching || m.asking {
			return m, m.spinTick()
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)

	m.chatVP, cmd = m.chatVP.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

func (m *MainModel) View() string {
	if !m.ready {
		return "…"
	}

	layout := m.computeLayout()
	top := m.renderTopBar()
	stats := m.renderStatsBar()
	main := m.renderMain(layout)
	input := m.renderInputArea(layout)
	footer := m.renderFooter()
	return lipgloss.JoinVertical(lipgloss.Left, top, stats, main, input, footer)
}

func (m *MainModel) onEnter() tea.Cmd {
	val := strings.TrimSpace(m.input.Value())
	if val == "" {
		return nil
	}

	if val == "/help" {
		m.input.Reset()
		m.appendMessage("system", m.help.View())
		return nil
	}

	if !m.app.HasGeminiCredentials() {
		m.input.Reset()
		m.appendMessage("system", "the assistant needs gemini_api_key; recommendations stay disabled until it is set.")
		return nil
	}

	m.appendMessage("user", val)
	m.input.Reset()

	if m.asking || m.fetching {
		m.appendMessage("system", "busy, try again in a moment.")
		return nil
	}

	m.asking = true
	m.statusText = "Thinking…"
	m.spinnerPos = 0

	ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
	m.cancel = cancel
	session := m.session
	return tea.Batch(func() tea.Msg {
		defer cancel()
		reply, err := session.Ask(ctx, val)
		return askDoneMsg{reply: reply, err: err}
	}, m.spinTick())
}

func (m *MainModel) startRefresh() tea.Cmd {
	if !m.app.HasSteamCredentials() {
		m.appendMessage("system", "fetching needs steam_api_key and steam_id; set them and press Ctrl+R.")
		return nil
	}
	if m.fetching || m.asking {
		return nil
	}

	m.fetching = true
	m.statusText = "Fetching library…"
	m.spinnerPos = 0

	ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
	m.cancel = cancel
	session := m.session
	return tea.Batch(func() tea.Msg {
		defer cancel()
		return refreshDoneMsg{err: session.Refresh(ctx)}
	}, m.spinTick())
}

func (m *MainModel) startRaise(target int) tea.Cmd {
	if m.session.Phase() != app.PhaseReady {
		m.appendMessage("system", "fetch the library first (Ctrl+R).")
		return nil
	}
	total := len(m.session.Games())
	limit := m.session.AnalysisLimit()
	if limit >= total {
		m.appendMessage("system", "the whole library is already analyzed.")
		return nil
	}
	if target <= limit {
		m.appendMessage("system", fmt.Sprintf("already analyzing the top %d.", limit))
		return nil
	}
	if m.fetching || m.asking {
		return nil
	}

	m.fetching = true
	m.statusText = fmt.Sprintf("Re-analyzing top %d…", target)
	m.spinnerPos = 0

	ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
	m.cancel = cancel
	session := m.session
	return tea.Batch(func() tea.Msg {
		defer cancel()
		return refreshDoneMsg{err: session.RaiseLimit(ctx, target)}
	}, m.spinTick())
}

func (m *MainModel) startDetails() tea.Cmd {
	visible := m.session.Visible()
	if m.tableSel < 0 || m.tableSel >= len(visible) {
		return nil
	}
	game := visible[m.tableSel]
	session := m.session
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		details, err := session.GameDetails(ctx, game.AppID)
		return detailsDoneMsg{name: game.Name, details: details, err: err}
	}
}

func (m *MainModel) spinTick() tea.Cmd {
	// Reduced motion option.
	d := 90 * time.Millisecond
	if os.Getenv("SHELF_REDUCE_MOTION") == "1" {
		d = 250 * time.Millisecond
	}
	return tea.Tick(d, func(_ time.Time) tea.Msg { return spinMsg{} })
}

func (m *MainModel) appendMessage(role, content string) {
	m.messages = append(m.messages, Message{
		ID:        fmt.Sprintf("%s-%d", role, time.Now().UnixNano()),
		Role:      role,
		Content:   content,
		Timestamp: time.Now(),
	})
	m.updateChatViewport()
	m.chatVP.GotoBottom()
}

func (m *MainModel) cycleFocus() {
	next := m.focus + 1
	if next > focusTable {
		next = focusInput
	}
	// Skip table focus while there is nothing to select.
	if next == focusTable && len(m.session.Visible()) == 0 {
		next = focusInput
	}
	m.focus = next
	if m.focus == focusInput {
		m.input.Focus()
	} else {
		m.input.Blur()
	}
}

func (m *MainModel) moveTable(delta int) {
	visible := len(m.session.Visible())
	if visible == 0 {
		return
	}
	m.tableSel += delta
	if m.tableSel < 0 {
		m.tableSel = 0
	}
	if m.tableSel >= visible {
		m.tableSel = visible - 1
	}
	m.normalizeTableScroll()
}

func (m *MainModel) clampTable() {
	visible := len(m.session.Visible())
	if m.tableSel >= visible {
		m.tableSel = maxInt(0, visible-1)
	}
	m.normalizeTableScroll()
}

func (m *MainModel) normalizeTableScroll() {
	rows := m.computeLayout().TableRows
	if rows <= 0 {
		rows = 1
	}
	if m.tableSel < m.tableOff {
		m.tableOff = m.tableSel
	}
	if m.tableSel >= m.tableOff+rows {
		m.tableOff = m.tableSel - rows + 1
	}
	if m.tableOff < 0 {
		m.tableOff = 0
	}
	maxOff := len(m.session.Visible()) - rows
	if maxOff < 0 {
		maxOff = 0
	}
	if m.tableOff > maxOff {
		m.tableOff = maxOff
	}
}

func (m *MainModel) updateChatViewport() {
	var b strings.Builder
	chatWidth := m.computeLayout().ChatW - 2
	if chatWidth < 20 {
		chatWidth = 20
	}
	for _, msg := range m.messages {
		b.WriteString(m.renderMessage(msg, chatWidth))
		b.WriteString("\n\n")
	}
	m.chatVP.SetContent(strings.TrimRight(b.String(), "\n"))
}

func (m *MainModel) renderMessage(msg Message, width int) string {
	var roleStyle lipgloss.Style
	roleLabel := "SYS"
	switch msg.Role {
	case "user":
		roleStyle = m.theme.RoleYou
		roleLabel = "YOU"
	case "assistant":
		roleStyle = m.theme.RoleAI
		roleLabel = "SHELF"
	case "error":
		roleStyle = m.theme.RoleErr
		roleLabel = "ERR"
	default:
		roleStyle = m.theme.RoleSys
	}

	head := roleStyle.Render(roleLabel)
	meta := m.theme.TopBarMeta.Render(msg.Timestamp.Format("15:04"))
	header := head + " " + meta

	body := lipgloss.NewStyle().Foreground(m.theme.TextPrimary).Width(width).Render(msg.Content)
	return header + "\n" + body
}

type layoutInfo struct {
	TopH  int
	FootH int

	MainH int

	LibW   int
	ChartH int

	TableRows int

	ChatW int
	ChatH int

	InputH int
	InputW int
}

func (m *MainModel) computeLayout() layoutInfo {
	top := 2
	foot := 1
	inputH := 3
	mainH := m.height - top - foot - inputH
	if mainH < 3 {
		mainH = 3
	}

	showChart := m.height >= 24
	chartH := 0
	if showChart {
		chartH = minInt(chartMaxRows+1, mainH/3)
	}

	gap := 1
	libW := int(float64(m.width-gap) * 0.58)
	if libW < 50 {
		libW = 50
	}
	chatW := m.width - gap - libW
	if chatW < 32 {
		chatW = 32
		libW = m.width - gap - chatW
	}

	// Pane borders and headers eat four lines.
	tableRows := mainH - chartH - 4
	if tableRows < 1 {
		tableRows = 1
	}

	return layoutInfo{
		TopH: top, FootH: foot, MainH: mainH,
		LibW: libW, ChartH: chartH,
		TableRows: tableRows,
		ChatW:     chatW, ChatH: mainH - 2,
		InputH: inputH,
		InputW: m.width - 6,
	}
}

func (m *MainModel) renderTopBar() string {
	left := m.theme.TopBarTitle.Render("shelf") + " " + m.theme.TopBarBadge.Render(strings.ToUpper(string(m.session.Phase())))
	status := m.statusText
	if m.fetching || m.asking {
		status = spinnerFrames[m.spinnerPos] + " " + m.statusText
		status = m.theme.Spinner.Render(status)
	} else {
		status = m.theme.TopBarMeta.Render(status)
	}
	right := m.theme.TopBarMeta.Render(time.Now().Format("15:04"))

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(status) - lipgloss.Width(right)
	if gap < 2 {
		gap = 2
	}
	a := gap / 2
	b := gap - a
	return m.theme.TopBar.Render(left + strings.Repeat(" ", a) + status + strings.Repeat(" ", b) + right)
}

func (m *MainModel) renderStatsBar() string {
	stats := m.session.Stats()
	parts := []string{
		m.theme.StatLabel.Render("games ") + m.theme.StatValue.Render(fmt.Sprintf("%d", stats.TotalGames)),
		m.theme.StatLabel.Render("hours ") + m.theme.StatValue.Render(fmt.Sprintf("%d", stats.TotalHours)),
		m.theme.StatLabel.Render("analyzed ") + m.theme.StatValue.Render(fmt.Sprintf("%d", m.session.AnalysisLimit())),
	}
	if stats.MostPlayed != "" {
		parts = append(parts, m.theme.StatLabel.Render("most played ")+m.theme.StatValue.Render(stats.MostPlayed))
	}
	return m.theme.TopBar.Width(m.width).Render(" " + strings.Join(parts, "   "))
}

func (m *MainModel) renderFooter() string {
	hints := "Tab focus  Ctrl+R refresh  Ctrl+A top 100  Ctrl+E all  Ctrl+L clear  Q quit"
	if m.width < 90 {
		hints = "Tab focus  Ctrl+R refresh  Q quit"
	}
	return m.theme.Footer.Width(m.width).Render(hints)
}

func (m *MainModel) renderInputArea(l layoutInfo) string {
	box := m.theme.InputBox
	if m.focus == focusInput {
		box = m.theme.InputBoxF
	}
	return box.Width(maxInt(10, m.width-2)).Render(m.input.View())
}

func (m *MainModel) renderMain(l layoutInfo) string {
	lib := m.renderLibraryPane(l)
	chat := m.renderChatPane(l)
	sep := m.theme.PaneDivider.Render("│")
	return lipgloss.JoinHorizontal(lipgloss.Top, lib, sep, chat)
}

func (m *MainModel) renderLibraryPane(l layoutInfo) string {
	titleText := "Library"
	if limit := m.session.AnalysisLimit(); limit > 0 && len(m.session.Games()) > 0 {
		titleText = fmt.Sprintf("Library (top %d of %d)", limit, len(m.session.Games()))
	}
	box := m.theme.Pane
	title := m.theme.PaneTitle.Render(titleText)
	if m.focus == focusTable {
		box = m.theme.PaneFocused
		title = m.theme.PaneTitleF.Render(titleText)
	}

	var content string
	if l.ChartH > 0 {
		chart := RenderChart(m.session.Distribution(), l.LibW-4, m.theme)
		content = title + "\n" + chart + "\n\n" + m.renderTable(l)
	} else {
		content = title + "\n" + m.renderTable(l)
	}
	return box.Width(l.LibW).Height(l.MainH).Render(content)
}

func (m *MainModel) renderTable(l layoutInfo) string {
	visible := m.session.Visible()
	if len(visible) == 0 {
		if m.session.Phase() == app.PhaseFetching {
			return m.theme.TableDim.Render("Fetching…")
		}
		return m.theme.TableDim.Render("No games yet. Ctrl+R fetches your library.")
	}

	nameW := maxInt(16, l.LibW-46)
	header := fmt.Sprintf("  %-*s %7s  %-12s %-12s %-10s", nameW, "GAME", "HOURS", "GENRE", "STYLE", "VIBE")
	var b strings.Builder
	b.WriteString(m.theme.TableHeader.Render(truncateRunes(header, l.LibW-4)))
	b.WriteString("\n")

	start := m.tableOff
	end := minInt(start+l.TableRows, len(visible))
	for i := start; i < end; i++ {
		g := visible[i]
		prefix := "  "
		rowStyle := m.theme.TableRow
		if g.Genre == app.SentinelLabel {
			rowStyle = m.theme.TableDim
		}
		if i == m.tableSel && m.focus == focusTable {
			prefix = "> "
			rowStyle = m.theme.TableSel
		}
		line := fmt.Sprintf("%s%-*s %7.1f  %-12s %-12s %-10s",
			prefix, nameW, truncateRunes(g.Name, nameW), g.HoursPlayed,
			truncateRunes(g.Genre, 12), truncateRunes(g.Style, 12), truncateRunes(g.Vibe, 10))
		b.WriteString(rowStyle.Render(truncateRunes(line, l.LibW-4)))
		if i != end-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

func (m *MainModel) renderChatPane(l layoutInfo) string {
	title := "Assistant"
	box := m.theme.Pane
	if m.focus == focusChat {
		box = m.theme.PaneFocused
		title = m.theme.PaneTitleF.Render(title)
	} else {
		title = m.theme.PaneTitle.Render(title)
	}
	return box.Width(l.ChatW).Height(l.MainH).Render(title + "\n" + m.chatVP.View())
}

func errorIsEmptyLibrary(err error) bool {
	return errors.Is(err, app.ErrEmptyLibrary)
}

func truncateRunes(s string, maxRunes int) string {
	if maxRunes <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= maxRunes {
		return s
	}
	if maxRunes <= 1 {
		return string(r[:maxRunes])
	}
	return string(r[:maxRunes-1]) + "…"
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
