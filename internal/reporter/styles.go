package reporter

import (
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// HTTP status colours.
var (
	Status2xx  = lipgloss.Color("#00D26A")
	Status3xx  = lipgloss.Color("#FFD93D")
	Status4xx  = lipgloss.Color("#FF6B6B")
	Status5xx  = lipgloss.Color("#FF0000")
	StatusNone = lipgloss.Color("#6B7280")

	urlColor      = lipgloss.Color("#00D4AA")
	ipColor       = lipgloss.Color("#C678DD")
	redirectColor = lipgloss.Color("#4D96FF")
)

// Styles renders table cells for one output stream.
type Styles struct {
	renderer *lipgloss.Renderer
	Header   lipgloss.Style
	URL      lipgloss.Style
	IP       lipgloss.Style
	Title    lipgloss.Style
	Redirect lipgloss.Style
}

// NewStyles binds the styles to out. Colour is detected from out unless noColor is set.
func NewStyles(out io.Writer, noColor bool) *Styles {
	renderer := lipgloss.NewRenderer(out)
	if noColor {
		renderer.SetColorProfile(termenv.Ascii)
	}
	return &Styles{
		renderer: renderer,
		Header:   renderer.NewStyle().Bold(true),
		URL:      renderer.NewStyle().Foreground(urlColor),
		IP:       renderer.NewStyle().Foreground(ipColor),
		Title:    renderer.NewStyle().Bold(true),
		Redirect: renderer.NewStyle().Foreground(redirectColor),
	}
}

// StatusColor picks the colour for a status, grey when there is none.
func StatusColor(code int, ok bool) lipgloss.Color {
	if !ok {
		return StatusNone
	}
	switch {
	case code >= 200 && code < 300:
		return Status2xx
	case code >= 300 && code < 400:
		return Status3xx
	case code >= 400 && code < 500:
		return Status4xx
	case code >= 500 && code < 600:
		return Status5xx
	default:
		return lipgloss.Color("#FAFAFA")
	}
}

// Status renders the status cell, "ERR" when no status was obtained.
func (s *Styles) Status(code int, ok bool, text string) string {
	return s.renderer.NewStyle().Foreground(StatusColor(code, ok)).Render(text)
}

// padRight pads to a visible width, ignoring ANSI sequences.
func padRight(s string, width int) string {
	padding := width - lipgloss.Width(s)
	if padding <= 0 {
		return s
	}
	return s + strings.Repeat(" ", padding)
}

// truncate shortens s to maxLen runes with an ellipsis.
func truncate(s string, maxLen int) string {
	runes := []rune(s)
	if maxLen <= 3 || len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen-3]) + "..."
}
