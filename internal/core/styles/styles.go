// Package styles provides the shared lipgloss styles and glamour theme used
// by the CLI output.
package styles

import (
	"github.com/charmbracelet/glamour/ansi"
	glamourstyles "github.com/charmbracelet/glamour/styles"
	"github.com/charmbracelet/lipgloss"
)

// CurrentPalette is the palette applied by the last SetTheme call.
var CurrentPalette Palette

// Style exports.
var (
	HeaderStyle  lipgloss.Style
	MutedStyle   lipgloss.Style
	SuccessStyle lipgloss.Style
	WarningStyle lipgloss.Style
	ErrorStyle   lipgloss.Style

	IDStyle        lipgloss.Style
	FavoriteStyle  lipgloss.Style
	CompletedStyle lipgloss.Style

	// Calendar styles.
	CalendarTitleStyle   lipgloss.Style
	CalendarWeekdayStyle lipgloss.Style
	CalendarDayStyle     lipgloss.Style
	CalendarOutsideStyle lipgloss.Style
	CalendarTodayStyle   lipgloss.Style
	CalendarBoxStyle     lipgloss.Style

	// CalendarHeat is indexed by activity level, 0 meaning no entities.
	CalendarHeat [4]lipgloss.Style
)

// ColorPool is used for deterministic color hashing of categories.
var ColorPool []lipgloss.Color

// SetTheme sets the active palette and rebuilds all global styles.
func SetTheme(p Palette) {
	CurrentPalette = p

	HeaderStyle = lipgloss.NewStyle().
		Foreground(p.Primary).
		Bold(true)
	MutedStyle = lipgloss.NewStyle().Foreground(p.Muted)
	SuccessStyle = lipgloss.NewStyle().Foreground(p.Success)
	WarningStyle = lipgloss.NewStyle().Foreground(p.Warning)
	ErrorStyle = lipgloss.NewStyle().Foreground(p.Error).Bold(true)

	IDStyle = lipgloss.NewStyle().Foreground(p.Muted)
	FavoriteStyle = lipgloss.NewStyle().Foreground(p.Warning)
	CompletedStyle = lipgloss.NewStyle().Foreground(p.Success)

	CalendarTitleStyle = lipgloss.NewStyle().
		Foreground(p.Primary).
		Bold(true).
		Align(lipgloss.Center)
	CalendarWeekdayStyle = lipgloss.NewStyle().
		Foreground(p.Muted).
		Width(4).
		Align(lipgloss.Right)
	CalendarDayStyle = lipgloss.NewStyle().
		Foreground(p.Foreground).
		Width(4).
		Align(lipgloss.Right)
	CalendarOutsideStyle = CalendarDayStyle.
		Foreground(p.Surface)
	CalendarTodayStyle = CalendarDayStyle.
		Underline(true).
		Bold(true)
	CalendarBoxStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(p.Surface).
		Padding(0, 1)

	CalendarHeat = [4]lipgloss.Style{
		CalendarDayStyle,
		CalendarDayStyle.Foreground(p.Secondary),
		CalendarDayStyle.Foreground(p.Primary).Bold(true),
		CalendarDayStyle.Foreground(p.Success).Bold(true),
	}

	ColorPool = []lipgloss.Color{
		p.Primary,
		p.Secondary,
		p.Success,
		p.Warning,
		p.Error,
	}
}

// ColorForString returns a deterministic color for a given string.
// The same string always produces the same color.
func ColorForString(s string) lipgloss.Color {
	var hash uint32
	for _, c := range s {
		hash = hash*31 + uint32(c)
	}
	return ColorPool[hash%uint32(len(ColorPool))]
}

// nolint:gochecknoinits // bootstrap default theme before any style is accessed.
func init() {
	SetTheme(themes[DefaultTheme])
}

func colorPtr(c lipgloss.Color) *string {
	if c == "" {
		return nil
	}
	s := string(c)
	return &s
}

// GlamourStyle returns a Glamour style config derived from the active theme.
func GlamourStyle() ansi.StyleConfig {
	cfg := glamourstyles.DarkStyleConfig

	fg := colorPtr(CurrentPalette.Foreground)
	primary := colorPtr(CurrentPalette.Primary)
	secondary := colorPtr(CurrentPalette.Secondary)
	muted := colorPtr(CurrentPalette.Muted)
	surface := colorPtr(CurrentPalette.Surface)

	cfg.Document.Color = fg

	cfg.Paragraph.Color = fg

	cfg.Heading.Color = primary
	cfg.H1.Color = fg
	cfg.H1.BackgroundColor = surface
	cfg.H2.Color = primary
	cfg.H3.Color = primary

	cfg.BlockQuote.Color = muted
	cfg.HorizontalRule.Color = muted

	cfg.Code.Color = secondary
	cfg.CodeBlock.Color = muted

	cfg.Table.Color = fg

	return cfg
}
