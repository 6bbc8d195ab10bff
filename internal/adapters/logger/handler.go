package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/muesli/termenv"

	"go.trai.ch/ilview/internal/ui/output"
	"go.trai.ch/ilview/internal/ui/style"
)

// PrettyHandler renders records for a terminal: a level glyph, the message and
// key=value attributes on one colored line. Error blocks built by Logger.Error
// keep their own line breaks.
type PrettyHandler struct {
	out   *termenv.Output
	level slog.Leveler
	// prefix qualifies attributes added after WithGroup.
	prefix string
	// attrs holds attributes from WithAttrs, already rendered.
	attrs []string
}

// NewPrettyHandler creates a PrettyHandler writing to w, or stderr when w is
// nil. The leveler is read on every record, so verbose mode can be toggled
// through a *slog.LevelVar after construction.
func NewPrettyHandler(w io.Writer, opts *slog.HandlerOptions) *PrettyHandler {
	if w == nil {
		w = os.Stderr
	}

	var level slog.Leveler = slog.LevelInfo
	if opts != nil && opts.Level != nil {
		level = opts.Level
	}

	return &PrettyHandler{
		out:   output.New(w),
		level: level,
	}
}

// Enabled reports whether records at level are written.
func (h *PrettyHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

// Handle writes one record.
//
//nolint:gocritic // slog.Handler interface requires slog.Record by value
func (h *PrettyHandler) Handle(_ context.Context, r slog.Record) error {
	glyph, color := levelStyle(r.Level)

	var b strings.Builder
	if glyph != "" {
		b.WriteString(glyph)
		b.WriteByte(' ')
	}
	b.WriteString(r.Message)

	for _, attr := range h.attrs {
		b.WriteByte(' ')
		b.WriteString(attr)
	}
	r.Attrs(func(attr slog.Attr) bool {
		for _, part := range formatAttr(h.prefix, attr) {
			b.WriteByte(' ')
			b.WriteString(part)
		}
		return true
	})

	styled := h.out.String(b.String()).Foreground(termenv.RGBColor(string(color)))
	_, err := h.out.WriteString(styled.String() + "\n")
	return err
}

// WithAttrs returns a handler that appends attrs, qualified by the groups
// opened so far, to every record.
func (h *PrettyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	rendered := make([]string, len(h.attrs), len(h.attrs)+len(attrs))
	copy(rendered, h.attrs)
	for _, attr := range attrs {
		rendered = append(rendered, formatAttr(h.prefix, attr)...)
	}

	return &PrettyHandler{
		out:    h.out,
		level:  h.level,
		prefix: h.prefix,
		attrs:  rendered,
	}
}

// WithGroup returns a handler that qualifies later attributes with name.
// Nested groups are joined with dots.
func (h *PrettyHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}

	return &PrettyHandler{
		out:    h.out,
		level:  h.level,
		prefix: h.prefix + name + ".",
		attrs:  h.attrs,
	}
}

func levelStyle(level slog.Level) (string, string) {
	switch {
	case level >= slog.LevelError:
		return style.Cross, string(style.Red)
	case level >= slog.LevelWarn:
		return style.Warning, string(style.Yellow)
	case level >= slog.LevelInfo:
		return "", string(style.Slate)
	default:
		return style.Circle, string(style.Iris)
	}
}

// formatAttr renders attr as key=value pairs. Group attributes are flattened,
// and values containing spaces, quotes or '=' are quoted.
func formatAttr(prefix string, attr slog.Attr) []string {
	attr.Value = attr.Value.Resolve()
	if attr.Equal(slog.Attr{}) {
		return nil
	}

	if attr.Value.Kind() == slog.KindGroup {
		inner := prefix
		if attr.Key != "" {
			inner += attr.Key + "."
		}
		var parts []string
		for _, a := range attr.Value.Group() {
			parts = append(parts, formatAttr(inner, a)...)
		}
		return parts
	}

	value := attr.Value.String()
	if value == "" || strings.ContainsAny(value, " \t\"=") {
		value = strconv.Quote(value)
	}
	return []string{prefix + attr.Key + "=" + value}
}
