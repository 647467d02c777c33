package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/todokeeper/internal/theme"
)

// Layout splits the terminal into a one-line header, the content area and a
// one-line status bar.
type Layout struct {
	Width           int
	Height          int
	HeaderHeight    int
	StatusBarHeight int
}

// NewLayout creates a Layout for a terminal of the given size.
func NewLayout(width, height int) Layout {
	return Layout{
		Width:           width,
		Height:          height,
		HeaderHeight:    1,
		StatusBarHeight: 1,
	}
}

// ContentWidth returns the width available to views.
func (l Layout) ContentWidth() int {
	return l.Width
}

// ContentHeight returns the height left between header and status bar.
func (l Layout) ContentHeight() int {
	return l.Height - l.HeaderHeight - l.StatusBarHeight
}

// RenderHeader renders title on the left and status on the right.
func (l Layout) RenderHeader(title, status string) string {
	left := theme.HeaderStyle.Render(title)
	right := theme.HeaderStyle.Align(lipgloss.Right).Render(status)
	return l.row(theme.HeaderStyle, left, right)
}

// RenderStatusBar renders the bottom line. A non-empty message replaces the
// key hints; isErr renders it in the error color.
func (l Layout) RenderStatusBar(hints, message string, isErr bool) string {
	if message == "" {
		return l.row(theme.StatusBarStyle, theme.StatusBarStyle.Render(hints), "")
	}
	style := theme.StatusBarStyle
	if isErr {
		style = style.Foreground(theme.ErrorStyle.GetForeground())
	}
	return l.row(theme.StatusBarStyle, style.Render(message), "")
}

// row joins left and right with a gap painted in bg's background so the
// line spans the full width.
func (l Layout) row(bg lipgloss.Style, left, right string) string {
	gap := max(l.Width-lipgloss.Width(left)-lipgloss.Width(right), 0)
	filler := bg.Render(
		lipgloss.NewStyle().
			Width(gap).
			Background(bg.GetBackground()).
			Render(""),
	)
	return lipgloss.JoinHorizontal(lipgloss.Top, left, filler, right)
}

// RenderWithFrame stacks header, content and status bar.
func (l Layout) RenderWithFrame(header, content, statusBar string) string {
	return lipgloss.JoinVertical(lipgloss.Left, header, content, statusBar)
}
