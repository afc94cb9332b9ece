package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Default is the palette used for terminal output.
var Default = NewPalette("#7D56F4", "#04B575", "#FF0000", "#FFA500", "#626262")

// Plain renders every style as unstyled text.
var Plain = &Palette{plain: true}

// interface Painter defines coloring text with [lipgloss] styles
type Painter interface {
	On(string, lipgloss.Color) string // Sets background color
	As(string, lipgloss.Color) string // Sets foreground color
}

// struct Palette is a simple stylesheet built with named [lipgloss.Style] fields
type Palette struct {
	title lipgloss.Style
	ok    lipgloss.Style
	err   lipgloss.Style
	warn  lipgloss.Style
	help  lipgloss.Style
	plain bool
}

func NewPalette(t, s, e, w, h string) *Palette {
	return &Palette{
		title: NewBold(t),
		ok:    NewBold(s),
		err:   NewBold(e),
		warn:  NewStyle(w),
		help:  NewEm(h),
	}
}

func NewStyle(fg string) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(fg))
}

func NewBold(fg string) lipgloss.Style {
	return NewStyle(fg).Bold(true)
}

func NewEm(fg string) lipgloss.Style {
	return NewStyle(fg).Italic(true)
}

func (p *Palette) render(s lipgloss.Style, text string) string {
	if p.plain {
		return text
	}
	return s.Render(text)
}

func (p *Palette) Title(s string) string { return p.render(p.title, s) }
func (p *Palette) OK(s string) string    { return p.render(p.ok, s) }
func (p *Palette) Err(s string) string   { return p.render(p.err, s) }
func (p *Palette) Warn(s string) string  { return p.render(p.warn, s) }
func (p *Palette) Help(s string) string  { return p.render(p.help, s) }

// On renders s on a background color.
func (p *Palette) On(s string, bg lipgloss.Color) string {
	return p.render(lipgloss.NewStyle().Background(bg), s)
}

// As renders s in a foreground color.
func (p *Palette) As(s string, fg lipgloss.Color) string {
	return p.render(lipgloss.NewStyle().Foreground(fg), s)
}

// Header renders a title between two rules as wide as the title.
func (p *Palette) Header(title string) string {
	rule := strings.Repeat("═", max(lipgloss.Width(title), 39))
	return fmt.Sprintf("%s\n%s\n%s\n", rule, p.Title(title), rule)
}

// Bar renders a proportional bar of up to width cells for n out of total.
func (p *Palette) Bar(n, total, width int) string {
	if total <= 0 || width <= 0 {
		return ""
	}
	cells := max(n*width/total, 1)
	return p.OK(strings.Repeat("█", min(cells, width)))
}
