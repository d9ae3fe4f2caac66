// Package preview draws an evaluated card in the terminal the way the web widget
// would lay it out: one row per item with a coloured range bar for percentages.
package preview

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/okian/plantcard/internal/domain/gradient"
	"github.com/okian/plantcard/internal/domain/model"
)

const (
	defaultBarWidth = 30
	barFilled       = "█"
	barEmpty        = "░"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true)
	nameStyle  = lipgloss.NewStyle().Width(14)
	iconStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	mutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Italic(true)
	dryStyle   = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#ffffff")).
			Background(lipgloss.Color("#d32f2f")).
			Padding(0, 1)
	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			Padding(0, 1)
)

// Option configures a Renderer.
type Option func(*Renderer)

// WithBarWidth sets the number of cells a range bar spans.
func WithBarWidth(cells int) Option {
	return func(r *Renderer) {
		if cells > 0 {
			r.barWidth = cells
		}
	}
}

// WithIcons toggles the icon name column.
func WithIcons(show bool) Option {
	return func(r *Renderer) {
		r.showIcons = show
	}
}

// Renderer turns card presentations into terminal text.
type Renderer struct {
	barWidth  int
	showIcons bool
}

// New builds a Renderer.
func New(opts ...Option) *Renderer {
	r := &Renderer{barWidth: defaultBarWidth, showIcons: true}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Render draws the whole card.
func (r *Renderer) Render(card model.CardPresentation) string {
	var rows []string

	header := card.Title
	if header == "" {
		header = card.ID
	}
	header = titleStyle.Render(header)
	if card.Dry {
		header = lipgloss.JoinHorizontal(lipgloss.Top, header, " ", dryStyle.Render("Dry"))
	}
	rows = append(rows, header)
	if card.Image != "" {
		rows = append(rows, mutedStyle.Render(card.Image))
	}

	for _, item := range card.Items {
		rows = append(rows, r.renderItem(item))
	}

	return cardStyle.Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (r *Renderer) renderItem(item model.Presentation) string {
	var line strings.Builder
	if r.showIcons {
		line.WriteString(iconStyle.Render(fmt.Sprintf("%-26s", string(item.Icon))))
		line.WriteByte(' ')
	}
	line.WriteString(nameStyle.Render(item.Name))
	if item.Display != "" {
		label := lipgloss.NewStyle()
		if item.Gradient != nil {
			c, _ := ParseColor(item.Gradient.LabelColor)
			label = label.Foreground(lipgloss.Color(c.Hex()))
		}
		line.WriteByte(' ')
		line.WriteString(label.Render(item.Display))
	}

	lines := []string{line.String()}
	if item.Gradient != nil {
		lines = append(lines, r.Bar(*item.Gradient))
	}
	if item.LastUpdated != "" {
		lines = append(lines, mutedStyle.Render(item.LastUpdated))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

// Bar samples the gradient once per cell. Cells up to the reading are drawn solid and
// the rest shaded, so both the range bands and the current level stay visible.
func (r *Renderer) Bar(spec gradient.Spec) string {
	var b strings.Builder
	for i := 0; i < r.barWidth; i++ {
		pos := (float64(i) + 0.5) / float64(r.barWidth) * 100
		from, to, t := spec.ColorAt(pos)
		cell := barEmpty
		if !spec.Disabled && pos <= float64(spec.Percent) {
			cell = barFilled
		}
		style := lipgloss.NewStyle().Foreground(lipgloss.Color(mix(from, to, t).Hex()))
		b.WriteString(style.Render(cell))
	}
	return b.String()
}
