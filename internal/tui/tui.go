package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/lox/blackjack/internal/deck"
	"github.com/lox/blackjack/internal/game"
	"github.com/lox/blackjack/internal/table"
)

// Table is the part of table.Session the terminal client drives
type Table interface {
	Apply(ctx context.Context, cmd table.Command) (game.Snapshot, error)
	Snapshot() game.Snapshot
	Subscribe(fn func(table.Update)) func()
}

// UpdateMsg carries a session update into the bubbletea loop
type UpdateMsg table.Update

// QuitMsg is a custom message to signal quit
type QuitMsg struct{}

// applyFailedMsg reports an Apply that never reached the round
type applyFailedMsg struct{ err error }

const (
	logPane = iota
	inputPane
)

var helpLines = []string{
	"Commands:",
	"  bet N (b N)      stake N for the current bettor",
	"  next (n)         pass betting to the other player",
	"  deal             deal the round",
	"  hit (h) / stand (s) / double (d) / split (sp)",
	"  players N (p N)  seat 1 or 2 players",
	"  reset (r)        clear the table and return stakes",
	"  quit (q)         leave the table",
}

// TUIModel represents the Bubble Tea model for the blackjack table
type TUIModel struct {
	table  Table
	ctx    context.Context
	logger *log.Logger
	styles Styles

	// UI components
	logViewport viewport.Model
	actionInput textinput.Model

	// State
	snapshot    game.Snapshot
	chips       []int
	gameLog     []string
	quitting    bool
	focusedPane int

	// Dimensions
	width       int
	height      int
	initialized bool

	// Test mode
	testMode    bool
	capturedLog []string
}

// Option configures a TUIModel
type Option func(*TUIModel)

// WithChips lists the chip denominations shown in the sidebar
func WithChips(chips []int) Option {
	return func(m *TUIModel) { m.chips = append([]int(nil), chips...) }
}

// WithStyles replaces the default palette
func WithStyles(styles Styles) Option {
	return func(m *TUIModel) { m.styles = styles }
}

// WithTestMode captures log entries for assertions and renders without colour
func WithTestMode() Option {
	return func(m *TUIModel) {
		m.testMode = true
		m.styles = NewStyles(plainRenderer())
	}
}

// NewTUIModel creates a model showing t's current state
func NewTUIModel(ctx context.Context, t Table, logger *log.Logger, opts ...Option) *TUIModel {
	// Sized properly when the first WindowSizeMsg arrives
	vp := viewport.New(10, 5)
	vp.SetContent("")

	m := &TUIModel{
		table:       t,
		ctx:         ctx,
		logger:      logger.WithPrefix("tui"),
		styles:      NewStyles(nil),
		logViewport: vp,
		gameLog:     []string{},
		focusedPane: inputPane,
		capturedLog: []string{},
	}
	for _, opt := range opts {
		opt(m)
	}

	ti := textinput.New()
	ti.Placeholder = "bet 25, deal, hit, stand, double, split, help"
	ti.Focus()
	ti.CharLimit = 100
	ti.Width = 100
	ti.PromptStyle = m.styles.Prompt
	ti.TextStyle = m.styles.InputText
	ti.Prompt = "> "
	m.actionInput = ti

	m.snapshot = t.Snapshot().Masked()
	m.AddLogEntry(m.snapshot.Status)
	return m
}

// Init initializes the TUI model
func (m *TUIModel) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages in the TUI
func (m *TUIModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case QuitMsg:
		m.quitting = true
		return m, tea.Sequence(tea.ClearScreen, tea.Quit)

	case UpdateMsg:
		m.applyUpdate(table.Update(msg))

	case applyFailedMsg:
		m.addStyledLogEntry(m.styles.Error, msg.err.Error())

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.logger.Debug("Updating dimensions", "width", m.width, "height", m.height)

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Sequence(tea.ClearScreen, tea.Quit)
		case "tab":
			if m.focusedPane == logPane {
				m.focusedPane = inputPane
				m.actionInput.Focus()
			} else {
				m.focusedPane = logPane
				m.actionInput.Blur()
			}
		case "enter":
			if m.focusedPane == inputPane {
				cmd := m.Submit(m.actionInput.Value())
				m.actionInput.SetValue("")
				if m.quitting {
					return m, cmd
				}
				cmds = append(cmds, cmd)
			}
		case "up", "k":
			if m.focusedPane == logPane {
				m.logViewport.ScrollUp(1)
			}
		case "down", "j":
			if m.focusedPane == logPane {
				m.logViewport.ScrollDown(1)
			}
		case "pgup":
			if m.focusedPane == logPane {
				m.logViewport.HalfPageUp()
			}
		case "pgdown":
			if m.focusedPane == logPane {
				m.logViewport.HalfPageDown()
			}
		case "home", "g":
			if m.focusedPane == logPane {
				m.logViewport.GotoTop()
			}
		case "end", "G":
			if m.focusedPane == logPane {
				m.logViewport.GotoBottom()
			}
		}
	}

	var cmd tea.Cmd
	if m.focusedPane == inputPane {
		m.actionInput, cmd = m.actionInput.Update(msg)
		cmds = append(cmds, cmd)
	}

	m.logViewport, cmd = m.logViewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// Submit handles one line typed by the player. Table commands run on a
// bubbletea command; their outcome arrives back as an UpdateMsg.
func (m *TUIModel) Submit(input string) tea.Cmd {
	input = strings.TrimSpace(input)
	switch strings.ToLower(input) {
	case "":
		return nil
	case "quit", "q", "exit":
		m.quitting = true
		return tea.Sequence(tea.ClearScreen, tea.Quit)
	case "help", "?":
		for _, line := range helpLines {
			m.addStyledLogEntry(m.styles.Info, line)
		}
		return nil
	}

	cmd, err := table.ParseCommand(input)
	if err != nil {
		m.addStyledLogEntry(m.styles.Error, err.Error()+" (type help for commands)")
		return nil
	}

	m.logger.Debug("Submitting command", "command", cmd)
	return m.apply(cmd)
}

func (m *TUIModel) apply(cmd table.Command) tea.Cmd {
	return func() tea.Msg {
		_, err := m.table.Apply(m.ctx, cmd)
		if err != nil && (errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)) {
			return applyFailedMsg{err: err}
		}
		// Rule rejections are delivered with the update
		return nil
	}
}

// applyUpdate logs the events in u and adopts its snapshot
func (m *TUIModel) applyUpdate(u table.Update) {
	for _, line := range u.Lines {
		m.AddLogEntry(line)
	}
	if u.Err != nil {
		m.addStyledLogEntry(m.styles.Error, playerMessage(u.Err))
	}
	if u.Command == nil {
		m.addStyledLogEntry(m.styles.Info, u.Snapshot.Status)
	}
	m.snapshot = u.Snapshot.Masked()
}

// playerMessage strips the error kind from rule violations
func playerMessage(err error) string {
	var re *game.RuleError
	if errors.As(err, &re) {
		return re.Message
	}
	return err.Error()
}

// View renders the TUI
func (m *TUIModel) View() string {
	if m.quitting {
		return ""
	}

	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	actionContent := m.renderActionPane()
	actionHeight := lipgloss.Height(actionContent) + 2
	actionPane := m.paneStyle(m.focusedPane == inputPane).
		Width(max(m.width-2, 1)).
		Render(actionContent)

	sidebarContent := m.renderSidebarPane()
	sidebarWidth := max(lipgloss.Width(sidebarContent), 28)
	paneHeight := max(m.height-actionHeight-2, 1)

	sidebarPane := m.styles.Pane.
		Width(sidebarWidth).
		Height(paneHeight).
		Render(sidebarContent)

	logWidth := max(m.width-sidebarWidth-4, 1)
	m.logViewport.Width = logWidth
	m.logViewport.Height = paneHeight
	m.logViewport.SetContent(m.renderLogPane())

	if !m.initialized && logWidth > 1 && paneHeight > 1 {
		m.logViewport.GotoBottom()
		m.initialized = true
	}

	logPane := m.paneStyle(m.focusedPane == logPane).
		Width(logWidth).
		Height(paneHeight).
		Render(m.logViewport.View())

	topRow := lipgloss.JoinHorizontal(lipgloss.Top, logPane, sidebarPane)
	return lipgloss.JoinVertical(lipgloss.Top, topRow, actionPane)
}

func (m *TUIModel) paneStyle(focused bool) lipgloss.Style {
	if focused {
		return m.styles.FocusedPane
	}
	return m.styles.Pane
}

func (m *TUIModel) renderLogPane() string {
	return strings.Join(m.gameLog, "\n")
}

// renderSidebarPane shows the dealer, every seated player and the chip rack
func (m *TUIModel) renderSidebarPane() string {
	s := m.snapshot
	var b strings.Builder

	b.WriteString(m.styles.Header.Render(" Blackjack "))
	b.WriteString("\n")
	if s.RoundID != "" {
		b.WriteString(m.styles.Info.Render("Round " + shortRoundID(s.RoundID)))
		b.WriteString("\n")
	}
	b.WriteString(m.styles.Warning.Render(fmt.Sprintf("Pot: $%d", s.Pot)))
	b.WriteString("\n\n")

	b.WriteString(m.styles.PlayerInfo.Render("Dealer"))
	b.WriteString("\n")
	if len(s.Dealer.Cards) > 0 {
		score := fmt.Sprintf("%d", s.Dealer.Value)
		if s.Dealer.HoleHidden {
			score = fmt.Sprintf("showing %d", s.Dealer.Showing)
		}
		fmt.Fprintf(&b, "  %s %s\n", m.formatCards(s.Dealer.Cards, s.Dealer.HoleHidden), score)
	}
	b.WriteString("\n")

	for _, p := range s.Players {
		name := p.Name
		switch {
		case s.Phase == game.PlayerTurn && s.ActivePlayer == p.Seat:
			name = m.styles.Active.Render("▶ " + name)
		case (s.Phase == game.Betting || s.Phase == game.Settlement) && s.Bettor == p.Seat && s.PlayerCount > 1:
			name = m.styles.Active.Render("$ " + name)
		default:
			name = m.styles.PlayerInfo.Render("  " + name)
		}
		b.WriteString(name)
		b.WriteString("\n")
		fmt.Fprintf(&b, "  Bankroll $%d", p.Bankroll)
		if p.Bet > 0 {
			fmt.Fprintf(&b, "  Bet $%d", p.Bet)
		}
		b.WriteString("\n")
		for _, h := range p.Hands {
			label := ""
			if h.Slot == game.SlotSplit {
				label = " (split)"
			}
			fmt.Fprintf(&b, "  %s %d%s\n", m.formatCards(h.Cards, false), h.Value, label)
		}
		b.WriteString(m.styles.Info.Render("  " + p.Stats.String()))
		b.WriteString("\n\n")
	}

	if len(m.chips) > 0 {
		chips := make([]string, len(m.chips))
		for i, c := range m.chips {
			chips[i] = fmt.Sprintf("$%d", c)
		}
		b.WriteString(m.styles.Info.Render("Chips: " + strings.Join(chips, " ")))
		b.WriteString("\n")
	}

	return b.String()
}

// renderActionPane shows the status line, the legal commands and the input
func (m *TUIModel) renderActionPane() string {
	var b strings.Builder

	b.WriteString(m.styles.HandInfo.Render(m.snapshot.Status))
	b.WriteString("\n")
	b.WriteString(m.styles.Actions.Render("Actions: " + strings.Join(availableActions(m.snapshot), " ")))
	b.WriteString("\n")
	b.WriteString(m.actionInput.View())
	b.WriteString("\n")

	if m.focusedPane == logPane {
		b.WriteString(m.styles.Info.Render("Log focused: ↑↓ scroll, PgUp/PgDn half page, Home/End, Tab to input"))
	} else {
		b.WriteString(m.styles.Info.Render("Tab to scroll log • Enter to submit • help for commands • Ctrl+C to quit"))
	}
	return b.String()
}

// availableActions lists the commands that make sense in s's phase
func availableActions(s game.Snapshot) []string {
	switch s.Phase {
	case game.PlayerTurn:
		actions := []string{"[hit]", "[stand]"}
		if p, ok := s.Player(s.ActivePlayer); ok && len(p.Hands) == 1 && len(p.Hands[0].Cards) == 2 {
			actions = append(actions, "[double]")
			if p.Hands[0].Cards[0].Rank == p.Hands[0].Cards[1].Rank {
				actions = append(actions, "[split]")
			}
		}
		return actions
	case game.Betting, game.Settlement:
		actions := []string{"[bet N]"}
		if s.Pot > 0 {
			actions = append(actions, "[deal]")
		}
		if s.PlayerCount > 1 {
			actions = append(actions, "[next]")
		}
		return append(actions, "[players N]", "[reset]")
	}
	return []string{"[reset]"}
}

// formatCards renders cards with suit colours; a hidden first card is "??"
func (m *TUIModel) formatCards(cards []deck.Card, holeHidden bool) string {
	formatted := make([]string, len(cards))
	for i, card := range cards {
		switch {
		case i == 0 && holeHidden:
			formatted[i] = m.styles.HoleCard.Render("??")
		case card.IsRed():
			formatted[i] = m.styles.RedCard.Render(card.String())
		default:
			formatted[i] = m.styles.BlackCard.Render(card.String())
		}
	}
	return "[" + strings.Join(formatted, " ") + "]"
}

func shortRoundID(id string) string {
	if len(id) > 8 {
		return id[len(id)-8:]
	}
	return id
}

// AddLogEntry adds an entry to the game log
func (m *TUIModel) AddLogEntry(entry string) {
	m.addLogLine(entry, m.styles.GameLog.Render(entry))
}

func (m *TUIModel) addStyledLogEntry(style lipgloss.Style, entry string) {
	m.addLogLine(entry, style.Render(entry))
}

func (m *TUIModel) addLogLine(plain, rendered string) {
	if plain == "" {
		return
	}
	m.gameLog = append(m.gameLog, rendered)

	if m.testMode {
		m.capturedLog = append(m.capturedLog, plain)
		return
	}

	m.logViewport.SetContent(strings.Join(m.gameLog, "\n"))
	if m.logViewport.Height > 0 && m.logViewport.Width > 0 {
		m.logViewport.GotoBottom()
	}
}

// ClearLog clears the game log
func (m *TUIModel) ClearLog() {
	m.gameLog = []string{}
	m.logViewport.SetContent("")
}

// Snapshot returns the (masked) table state the model is showing
func (m *TUIModel) Snapshot() game.Snapshot {
	return m.snapshot
}

// GetCapturedLog returns the captured log entries (test mode only)
func (m *TUIModel) GetCapturedLog() []string {
	if !m.testMode {
		return nil
	}
	result := make([]string, len(m.capturedLog))
	copy(result, m.capturedLog)
	return result
}

// IsTestMode returns whether the TUI is in test mode
func (m *TUIModel) IsTestMode() bool {
	return m.testMode
}

// Run plays at t in the terminal until the player quits or ctx ends
func Run(ctx context.Context, t Table, logger *log.Logger, opts ...Option) error {
	m := NewTUIModel(ctx, t, logger, opts...)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))

	unsubscribe := t.Subscribe(func(u table.Update) {
		p.Send(UpdateMsg(u))
	})
	defer unsubscribe()

	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
