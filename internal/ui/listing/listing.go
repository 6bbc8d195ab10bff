// Package listing renders member hierarchies, code and session status for the
// terminal.
package listing

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"go.trai.ch/ilview/internal/core/domain"
	"go.trai.ch/ilview/internal/ui/style"
)

// Entry is one member in a rendered hierarchy.
type Entry struct {
	Name     string
	Kind     domain.MemberKind
	Children []Entry
}

// Status is a snapshot of the session shown by the browse shell.
type Status struct {
	State      domain.SessionState
	PID        int
	Generation string
	Language   domain.Language
	Watch      bool
	Assemblies []domain.AssemblyDescriptor
}

// Renderer writes styled listings to a writer.
type Renderer struct {
	mu sync.Mutex
	w  io.Writer
	re *lipgloss.Renderer
}

// NewRenderer creates a renderer for w using the given color profile.
func NewRenderer(w io.Writer, profile termenv.Profile) *Renderer {
	re := lipgloss.NewRenderer(w)
	re.SetColorProfile(profile)
	return &Renderer{w: w, re: re}
}

func (r *Renderer) member(e Entry) string {
	glyph := r.re.NewStyle().Foreground(style.KindColor(e.Kind)).Render(style.KindGlyph(e.Kind))
	name := e.Name
	if e.Kind == domain.KindAssembly || e.Kind == domain.KindType {
		name = r.re.NewStyle().Bold(true).Render(name)
	}
	return glyph + " " + name
}

// Tree prints each entry as a root followed by its descendants.
func (r *Renderer) Tree(entries []Entry) error {
	var b strings.Builder
	for _, e := range entries {
		b.WriteString(r.member(e))
		b.WriteByte('\n')
		r.branches(&b, e.Children, "")
	}
	return r.write(b.String())
}

func (r *Renderer) branches(b *strings.Builder, children []Entry, indent string) {
	guide := r.re.NewStyle().Foreground(style.Slate)
	for i, c := range children {
		connector, next := "├── ", "│   "
		if i == len(children)-1 {
			connector, next = "└── ", "    "
		}
		b.WriteString(guide.Render(indent + connector))
		b.WriteString(r.member(c))
		b.WriteByte('\n')
		r.branches(b, c.Children, indent+next)
	}
}

// Members prints one entry per line without descendants.
func (r *Renderer) Members(entries []Entry) error {
	var b strings.Builder
	for _, e := range entries {
		b.WriteString(r.member(e))
		b.WriteByte('\n')
	}
	return r.write(b.String())
}

// Code prints decompiled text verbatim, ending it with a newline.
func (r *Renderer) Code(code string) error {
	if code != "" && !strings.HasSuffix(code, "\n") {
		code += "\n"
	}
	return r.write(code)
}

// Paths prints one path per line.
func (r *Renderer) Paths(paths []string) error {
	var b strings.Builder
	for _, p := range paths {
		b.WriteString(p)
		b.WriteByte('\n')
	}
	return r.write(b.String())
}

// Added reports an assembly that joined the tree.
func (r *Renderer) Added(desc domain.AssemblyDescriptor) error {
	check := r.re.NewStyle().Foreground(style.Green).Render(style.Check)
	return r.write(fmt.Sprintf("%s %s\n", check, describe(desc)))
}

// Removed reports an assembly that left the tree.
func (r *Renderer) Removed(path string) error {
	dot := r.re.NewStyle().Foreground(style.Slate).Render(style.Circle)
	return r.write(fmt.Sprintf("%s removed %s\n", dot, path))
}

// Notice prints a dimmed informational line.
func (r *Renderer) Notice(msg string) error {
	return r.write(r.re.NewStyle().Foreground(style.Slate).Render(msg) + "\n")
}

const statusLabelWidth = len("assemblies")

// Status prints the session snapshot.
func (r *Renderer) Status(s Status) error {
	label := r.re.NewStyle().Foreground(style.Slate)

	engine := s.State.String()
	if s.State == domain.StateRunning {
		engine = fmt.Sprintf("%s (pid %d, generation %s)", engine, s.PID, s.Generation)
	}
	watch := "off"
	if s.Watch {
		watch = "on"
	}

	field := func(b *strings.Builder, name string, value any) {
		fmt.Fprintf(b, "%s%s %v\n", label.Render(name+":"), strings.Repeat(" ", statusLabelWidth-len(name)), value)
	}

	var b strings.Builder
	field(&b, "engine", engine)
	field(&b, "language", s.Language)
	field(&b, "watch", watch)
	field(&b, "assemblies", len(s.Assemblies))
	for _, a := range s.Assemblies {
		fmt.Fprintf(&b, "  %s\n", describe(a))
	}
	return r.write(b.String())
}

func describe(desc domain.AssemblyDescriptor) string {
	parts := []string{desc.Name}
	if desc.Version != "" {
		parts = append(parts, desc.Version)
	}
	if desc.TargetFramework != "" {
		parts = append(parts, "("+desc.TargetFramework+")")
	}
	parts = append(parts, desc.Path)
	return strings.Join(parts, " ")
}

func (r *Renderer) write(s string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, err := io.WriteString(r.w, s)
	return err
}
