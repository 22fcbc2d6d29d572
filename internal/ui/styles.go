package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// Color palette
var (
	ColorPrimary   = lipgloss.Color("39")  // Cyan
	ColorSecondary = lipgloss.Color("212") // Pink
	ColorSuccess   = lipgloss.Color("82")  // Green
	ColorWarning   = lipgloss.Color("214") // Orange
	ColorError     = lipgloss.Color("196") // Red
	ColorMuted     = lipgloss.Color("245") // Gray
	ColorHighlight = lipgloss.Color("226") // Yellow
)

// Styles for various UI elements
var (
	// Text styles
	Bold      = lipgloss.NewStyle().Bold(true)
	Dim       = lipgloss.NewStyle().Foreground(ColorMuted)
	Highlight = lipgloss.NewStyle().Foreground(ColorHighlight)
	Header    = lipgloss.NewStyle().Foreground(ColorPrimary).Bold(true)

	// Status styles
	Success = lipgloss.NewStyle().Foreground(ColorSuccess)
	Warning = lipgloss.NewStyle().Foreground(ColorWarning)
	Error   = lipgloss.NewStyle().Foreground(ColorError)

	// Document styles
	DocID      = lipgloss.NewStyle().Foreground(ColorPrimary).Bold(true)
	DocTime    = lipgloss.NewStyle().Foreground(ColorMuted)
	DocContent = lipgloss.NewStyle().PaddingLeft(2)
	Distance   = lipgloss.NewStyle().Foreground(ColorSuccess)

	// Section styles
	SectionTitle = lipgloss.NewStyle().Foreground(ColorSecondary).Bold(true).MarginTop(1)
	Divider      = lipgloss.NewStyle().Foreground(ColorMuted)
)

// HorizontalRule returns a styled horizontal divider.
func HorizontalRule(width int) string {
	if width < 0 {
		width = 0
	}
	return Divider.Render(strings.Repeat("─", width))
}

// FormatDocHeader formats a document id with its creation time (unix milliseconds).
func FormatDocHeader(id int64, createdAt int64) string {
	ts := time.UnixMilli(createdAt).Local().Format("2006-01-02 15:04:05")
	return DocID.Render(fmt.Sprintf("#%d", id)) + " " + DocTime.Render(ts)
}

// FormatDistance formats a similarity distance; smaller is closer.
func FormatDistance(d float32) string {
	return Distance.Render(fmt.Sprintf("(distance %.4f)", d))
}

// Preview shortens content to at most n characters for display.
func Preview(content string, n int) string {
	content = strings.Join(strings.Fields(content), " ")
	runes := []rune(content)
	if n <= 0 || len(runes) <= n {
		return content
	}
	return string(runes[:n]) + "..."
}
