// Package style holds the palette and glyphs shared by the logger and the
// hierarchy listing.
package style

import (
	"github.com/charmbracelet/lipgloss"

	"go.trai.ch/ilview/internal/core/domain"
)

// Palette.
var (
	Iris   = lipgloss.Color("#8B5CF6")
	Slate  = lipgloss.Color("#667085")
	Teal   = lipgloss.Color("#0E9F9A")
	Green  = lipgloss.Color("#22A06B")
	Red    = lipgloss.Color("#D93025")
	Yellow = lipgloss.Color("#F59E0B")
	Blue   = lipgloss.Color("#3B82F6")
)

// Status glyphs.
const (
	Check   = "✓"
	Cross   = "✗"
	Warning = "!"
	Dot     = "●"
	Circle  = "○"
)

// KindGlyph returns the marker printed in front of a member of the given kind.
func KindGlyph(kind domain.MemberKind) string {
	switch kind {
	case domain.KindAssembly:
		return "▣"
	case domain.KindNamespace:
		return "{}"
	case domain.KindType:
		return "◆"
	case domain.KindMethod:
		return "ƒ"
	case domain.KindField:
		return "▪"
	case domain.KindProperty:
		return "◇"
	case domain.KindEvent:
		return "⚡"
	default:
		return Circle
	}
}

// KindColor returns the color used for a member of the given kind.
func KindColor(kind domain.MemberKind) lipgloss.Color {
	switch kind {
	case domain.KindAssembly:
		return Iris
	case domain.KindNamespace:
		return Slate
	case domain.KindType:
		return Teal
	case domain.KindMethod:
		return Blue
	case domain.KindField, domain.KindProperty:
		return Green
	case domain.KindEvent:
		return Yellow
	default:
		return Slate
	}
}
