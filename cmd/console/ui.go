package main

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"github.com/guildforge/engine/pkg/guild"
	"github.com/guildforge/engine/pkg/respond"
)

const PlaceHolderText = "fire <player> <trigger> | attack <attacker> <defender> <item> <qty> | advance | reset | store <id> | refresh"

// ConsoleUI is the BubbleTea model that runs the admin console.
// https://github.com/charmbracelet/bubbletea
type ConsoleUI struct {
	config       *ConsoleConfig
	api          *apiClient
	record       *guild.Record
	logViewport  viewport.Model
	metaViewport viewport.Model
	textarea     textarea.Model
	ready        bool
	width        int
	height       int
	err          error
	loading      bool
	logLines     []string
}

type commandResultMsg struct {
	label    string
	response *respond.Response
	text     string
	err      error
}

type guildRefreshedMsg struct {
	record *guild.Record
	err    error
}

var (
	logPanelStyle = lipgloss.NewStyle().
			PaddingTop(2).
			PaddingBottom(1).
			PaddingLeft(3).
			PaddingRight(0)

	metaPanelStyle = lipgloss.NewStyle().
			PaddingTop(2).
			PaddingBottom(0).
			PaddingLeft(0).
			PaddingRight(2)

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")). // pink
			Bold(true)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("212")). // purple
			Bold(true)

	resultStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")) // green

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")) // red

	loadingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")) // yellow

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")) // dark grey
)

func NewConsoleUI(cfg *ConsoleConfig, api *apiClient, rec *guild.Record) ConsoleUI {
	ta := textarea.New()
	ta.Placeholder = PlaceHolderText
	ta.Focus()
	ta.Prompt = promptStyle.Render(":: ")
	ta.CharLimit = 500
	ta.SetWidth(50)
	ta.SetHeight(2)
	ta.ShowLineNumbers = false

	logVp := viewport.New(50, 20)
	logVp.MouseWheelEnabled = true

	metaVp := viewport.New(20, 20)

	return ConsoleUI{
		config:       cfg,
		api:          api,
		record:       rec,
		textarea:     ta,
		logViewport:  logVp,
		metaViewport: metaVp,
	}
}

func (m ConsoleUI) Init() tea.Cmd {
	return textarea.Blink
}

func (m ConsoleUI) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var (
		taCmd tea.Cmd
		vpCmd tea.Cmd
	)
	m.textarea, taCmd = m.textarea.Update(msg)
	m.logViewport, vpCmd = m.logViewport.Update(msg)

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layout()
		m.ready = true

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyEnter:
			if m.loading {
				return m, nil
			}
			input := strings.TrimSpace(m.textarea.Value())
			m.textarea.Reset()
			if input == "" {
				return m, nil
			}
			m.appendLog(promptStyle.Render(":: " + input))
			cmd := m.dispatch(input)
			if cmd != nil {
				m.loading = true
				return m, tea.Batch(taCmd, vpCmd, cmd)
			}
		}

	case commandResultMsg:
		m.loading = false
		if msg.err != nil {
			m.appendLog(errorStyle.Render(fmt.Sprintf("%s failed: %v", msg.label, msg.err)))
		} else {
			m.appendLog(labelStyle.Render(msg.label))
			if msg.response != nil {
				if msg.response.Title != "" {
					m.appendLog(titleStyle.Render(msg.response.Title))
				}
				m.appendLog(resultStyle.Render(msg.response.Text))
				for _, b := range msg.response.Buttons {
					m.appendLog(resultStyle.Render(fmt.Sprintf("  [%s]", b.Label)))
				}
			}
			if msg.text != "" {
				m.appendLog(resultStyle.Render(msg.text))
			}
		}
		// Engine commands mutate state, so refresh the side panel
		return m, m.refreshGuild()

	case guildRefreshedMsg:
		if msg.err == nil && msg.record != nil {
			m.record = msg.record
			m.metaViewport.SetContent(m.renderMeta())
		}
	}

	return m, tea.Batch(taCmd, vpCmd)
}

// dispatch parses one console command and returns the tea.Cmd that
// executes it. Unknown commands log usage instead of running anything.
func (m *ConsoleUI) dispatch(input string) tea.Cmd {
	fields := strings.Fields(input)
	verb := strings.ToLower(fields[0])
	guildID := m.config.GuildID

	switch verb {
	case "fire":
		if len(fields) < 3 {
			m.appendLog(errorStyle.Render("usage: fire <player> <trigger> [false]"))
			return nil
		}
		player, trig := fields[1], fields[2]
		forceFalse := len(fields) > 3 && strings.EqualFold(fields[3], "false")
		return func() tea.Msg {
			resp, err := m.api.fireTrigger(guildID, player, trig, forceFalse)
			return commandResultMsg{label: "fire " + trig, response: resp, err: err}
		}

	case "attack":
		if len(fields) < 5 {
			m.appendLog(errorStyle.Render("usage: attack <attacker> <defender> <item> <qty>"))
			return nil
		}
		qty, err := strconv.Atoi(fields[4])
		if err != nil {
			m.appendLog(errorStyle.Render("quantity must be a number"))
			return nil
		}
		attacker, defender, item := fields[1], fields[2], fields[3]
		return func() tea.Msg {
			resp, err := m.api.scheduleAttack(guildID, attacker, defender, item, qty)
			return commandResultMsg{label: "attack", response: resp, err: err}
		}

	case "advance":
		return func() tea.Msg {
			resp, err := m.api.advanceRound(guildID)
			return commandResultMsg{label: "advance", response: resp, err: err}
		}

	case "reset":
		return func() tea.Msg {
			resp, err := m.api.resetGame(guildID)
			return commandResultMsg{label: "reset", response: resp, err: err}
		}

	case "store":
		if len(fields) < 2 {
			m.appendLog(errorStyle.Render("usage: store <store-id>"))
			return nil
		}
		storeID := fields[1]
		return func() tea.Msg {
			text, err := m.api.storeView(guildID, storeID)
			return commandResultMsg{label: "store " + storeID, text: text, err: err}
		}

	case "refresh":
		return func() tea.Msg {
			return commandResultMsg{label: "refresh"}
		}

	default:
		m.appendLog(errorStyle.Render("unknown command: " + verb))
		return nil
	}
}

func (m *ConsoleUI) refreshGuild() tea.Cmd {
	guildID := m.config.GuildID
	return func() tea.Msg {
		rec, err := m.api.getGuild(guildID)
		return guildRefreshedMsg{record: rec, err: err}
	}
}

func (m *ConsoleUI) appendLog(line string) {
	wrapped := wordwrap.String(line, m.logViewport.Width)
	m.logLines = append(m.logLines, wrapped)
	m.logViewport.SetContent(strings.Join(m.logLines, "\n"))
	m.logViewport.GotoBottom()
}

func (m *ConsoleUI) layout() {
	metaWidth := m.width / 3
	logWidth := m.width - metaWidth - 6
	contentHeight := m.height - m.textarea.Height() - 4

	m.logViewport.Width = logWidth
	m.logViewport.Height = contentHeight
	m.metaViewport.Width = metaWidth
	m.metaViewport.Height = contentHeight
	m.textarea.SetWidth(m.width - 4)

	m.metaViewport.SetContent(m.renderMeta())
}

// renderMeta summarizes the guild document for the side panel.
func (m *ConsoleUI) renderMeta() string {
	rec := m.record
	if rec == nil {
		return "No guild loaded."
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("Guild "+rec.ID) + "\n\n")

	rc := rec.Round
	if rc.TotalRounds > 0 {
		fmt.Fprintf(&b, "Round: %d / %d\n", rc.CurrentRound, rc.TotalRounds)
	} else {
		b.WriteString("Rounds: not configured\n")
	}
	fmt.Fprintf(&b, "Triggers: %d\n", len(rec.Triggers))
	fmt.Fprintf(&b, "Stores: %d\n", len(rec.Stores))
	fmt.Fprintf(&b, "Items: %d\n\n", len(rec.Items))

	ids := make([]string, 0, len(rec.Players))
	for id := range rec.Players {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	b.WriteString(labelStyle.Render("Players") + "\n")
	for _, id := range ids {
		p := rec.Players[id]
		if p == nil {
			continue
		}
		fmt.Fprintf(&b, "  %s — %d coins\n", id, p.Currency)
	}
	if len(ids) == 0 {
		b.WriteString("  none yet\n")
	}

	return wordwrap.String(b.String(), m.metaViewport.Width)
}

func (m ConsoleUI) View() string {
	if !m.ready {
		return "Loading..."
	}

	status := ""
	if m.loading {
		status = loadingStyle.Render(" working...")
	}

	left := logPanelStyle.Render(m.logViewport.View())
	right := metaPanelStyle.Render(m.metaViewport.View())
	panels := lipgloss.JoinHorizontal(lipgloss.Top, left, right)

	return fmt.Sprintf("%s\n%s%s\n%s", panels, m.textarea.View(), status, promptStyle.Render("esc to quit"))
}
