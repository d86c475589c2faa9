package tui

import (
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Styles holds every style the model renders with. They are bound to one
// renderer so the colour profile can be pinned per model.
type Styles struct {
	Header     lipgloss.Style
	GameLog    lipgloss.Style
	HandInfo   lipgloss.Style
	Actions    lipgloss.Style
	RedCard    lipgloss.Style
	BlackCard  lipgloss.Style
	HoleCard   lipgloss.Style
	PlayerInfo lipgloss.Style
	Active     lipgloss.Style
	Success    lipgloss.Style
	Error      lipgloss.Style
	Warning    lipgloss.Style
	Info       lipgloss.Style
	Prompt     lipgloss.Style
	InputText  lipgloss.Style

	Pane        lipgloss.Style
	FocusedPane lipgloss.Style
}

// NewStyles builds the palette on r. A nil renderer uses lipgloss's default.
func NewStyles(r *lipgloss.Renderer) Styles {
	if r == nil {
		r = lipgloss.DefaultRenderer()
	}
	bold := func(color string) lipgloss.Style {
		return r.NewStyle().Foreground(lipgloss.Color(color)).Bold(true)
	}

	return Styles{
		Header:     r.NewStyle().Foreground(lipgloss.Color("#FAFAFA")).Background(lipgloss.Color("#7D56F4")).Bold(true),
		GameLog:    r.NewStyle().Foreground(lipgloss.Color("#FAFAFA")),
		HandInfo:   bold("#96CEB4"),
		Actions:    bold("#FFD700"),
		RedCard:    bold("#FF6B6B"),
		BlackCard:  bold("#FAFAFA"),
		HoleCard:   bold("#626262"),
		PlayerInfo: r.NewStyle().Foreground(lipgloss.Color("#FAFAFA")),
		Active:     bold("#04B575"),
		Success:    bold("#96CEB4"),
		Error:      bold("#FF6B6B"),
		Warning:    bold("#FFEAA7"),
		Info:       r.NewStyle().Foreground(lipgloss.Color("#626262")),
		Prompt:     bold("#04B575"),
		InputText:  r.NewStyle().Foreground(lipgloss.Color("#FAFAFA")),

		Pane:        r.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#626262")),
		FocusedPane: r.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#04B575")),
	}
}

// plainRenderer renders without any colour, used by test mode
func plainRenderer() *lipgloss.Renderer {
	r := lipgloss.NewRenderer(io.Discard)
	r.SetColorProfile(termenv.Ascii)
	return r
}
