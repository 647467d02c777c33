// Package theme holds the lipgloss palette and styles shared by all views.
// Every color adapts to the terminal background, which the app sets from the
// dark_mode setting.
package theme

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/todokeeper/internal/model"
)

var (
	ColorBlue    = lipgloss.AdaptiveColor{Light: "#2B6CB0", Dark: "#5B9BD5"}
	ColorGreen   = lipgloss.AdaptiveColor{Light: "#2F855A", Dark: "#6BCB77"}
	ColorYellow  = lipgloss.AdaptiveColor{Light: "#B7791F", Dark: "#FFD93D"}
	ColorRed     = lipgloss.AdaptiveColor{Light: "#C53030", Dark: "#FF6B6B"}
	ColorOrange  = lipgloss.AdaptiveColor{Light: "#C05621", Dark: "#FFA94D"}
	ColorMagenta = lipgloss.AdaptiveColor{Light: "#805AD5", Dark: "#CC5DE8"}
	ColorGray    = lipgloss.AdaptiveColor{Light: "#718096", Dark: "#868E96"}
	ColorWhite   = lipgloss.AdaptiveColor{Light: "#1A202C", Dark: "#F8F9FA"}
	ColorSubtle  = lipgloss.AdaptiveColor{Light: "#CBD5E0", Dark: "#495057"}
	ColorBorder  = lipgloss.AdaptiveColor{Light: "#E2E8F0", Dark: "#495057"}
)

// Frame.
var (
	HeaderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorWhite).
			Background(ColorBlue).
			Padding(0, 1)

	StatusBarStyle = lipgloss.NewStyle().
			Foreground(ColorWhite).
			Background(ColorSubtle).
			Padding(0, 1)

	// DetailPanelStyle boxes the detail, help and palette views.
	DetailPanelStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(ColorBorder).
				Padding(1, 2)

	PanelTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorWhite).
			MarginBottom(1)
)

// Rows.
var (
	ListItemStyle = lipgloss.NewStyle().PaddingLeft(2)

	// SelectedItemStyle keeps the row text aligned with ListItemStyle: one
	// column of padding plus the left bar.
	SelectedItemStyle = lipgloss.NewStyle().
				Border(lipgloss.NormalBorder(), false, false, false, true).
				BorderForeground(ColorBlue).
				Foreground(ColorBlue).
				Bold(true).
				PaddingLeft(1)
)

// Text.
var (
	HelpStyle      = lipgloss.NewStyle().Foreground(ColorGray).Italic(true)
	DimmedStyle    = lipgloss.NewStyle().Foreground(ColorGray)
	CompletedStyle = DimmedStyle.Strikethrough(true)
	OverdueStyle   = lipgloss.NewStyle().Foreground(ColorRed).Bold(true)
	ErrorStyle     = lipgloss.NewStyle().Foreground(ColorRed).Bold(true)
	TagStyle       = lipgloss.NewStyle().Foreground(ColorMagenta)
	LabelStyle     = lipgloss.NewStyle().Foreground(ColorBlue).Bold(true)
)

var priorityColors = map[model.Priority]lipgloss.TerminalColor{
	model.PriorityHigh:   ColorRed,
	model.PriorityMedium: ColorYellow,
	model.PriorityLow:    ColorGreen,
}

// PriorityStyle colors a priority badge; unset priorities are gray.
func PriorityStyle(p model.Priority) lipgloss.Style {
	c, ok := priorityColors[p]
	if !ok {
		c = ColorGray
	}
	return lipgloss.NewStyle().Bold(true).Foreground(c)
}

// KindLabelStyle colors the memo/list/checklist badge.
func KindLabelStyle(k model.Kind) lipgloss.Style {
	s := lipgloss.NewStyle().Bold(true).Padding(0, 1)
	switch k {
	case model.KindList:
		return s.Foreground(ColorBlue)
	case model.KindChecklist:
		return s.Foreground(ColorOrange)
	}
	return s.Foreground(ColorGray)
}

// AccentStyle colors text with an item's custom color. An empty color
// yields a plain style.
func AccentStyle(customColor string) lipgloss.Style {
	if customColor == "" {
		return lipgloss.NewStyle()
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color(customColor))
}
