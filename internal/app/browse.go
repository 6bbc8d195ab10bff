package app

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"

	"go.trai.ch/ilview/internal/adapters/watcher" //nolint:depguard // Wired in app layer
	"go.trai.ch/ilview/internal/core/domain"
	"go.trai.ch/ilview/internal/core/ports"
	"go.trai.ch/ilview/internal/engine/tree"
	"go.trai.ch/ilview/internal/ui/listing"
)

const shellHelp = `commands:
  ls [assembly [member...]]   list loaded assemblies or the children of a member
  cat assembly [member...]    print the code of a member
  add path                    load an assembly
  rm assembly                 unload an assembly
  refresh                     drop everything fetched so far
  lang csharp|il              switch the output language
  status                      show the engine and loaded assemblies
  quit                        leave the shell
`

// BrowseOptions configures the Browse command.
type BrowseOptions struct {
	// Watch overrides the configured auto-refresh setting when non-nil.
	Watch *bool
}

// Browse loads the assemblies at paths and runs an interactive shell over
// them until the input ends, the user quits or ctx is canceled.
func (a *App) Browse(ctx context.Context, opts Options, browseOpts BrowseOptions, paths []string) error {
	cfg, cwd, err := a.configure(opts)
	if err != nil {
		return err
	}

	session, t := a.open(cfg)
	defer session.Stop()

	sh := &shell{
		app:     a,
		session: session,
		tree:    t,
		render:  a.renderer(),
		cwd:     cwd,
	}

	watch := cfg.Watch
	if browseOpts.Watch != nil {
		watch = *browseOpts.Watch
	}

	g, gctx := errgroup.WithContext(ctx)

	if watch {
		if err := a.watcher.Start(gctx); err != nil {
			a.logger.Warn("auto-refresh disabled: " + err.Error())
		} else {
			sh.watching = true
			debouncer := watcher.NewDebouncer(a.debounce, sh.changed)
			g.Go(func() error {
				defer debouncer.Stop()
				for event := range a.watcher.Events() {
					debouncer.Add(event.Path)
				}
				return nil
			})
		}
	}

	for _, raw := range paths {
		if err := sh.add(ctx, raw); err != nil {
			a.logger.Error(err)
		}
	}

	lines := make(chan string)
	go a.readLines(gctx, lines)

	g.Go(func() error {
		if sh.watching {
			defer func() {
				if err := a.watcher.Stop(); err != nil {
					a.logger.Warn("failed to stop watcher: " + err.Error())
				}
			}()
		}
		return sh.run(gctx, lines)
	})

	return g.Wait()
}

func (a *App) readLines(ctx context.Context, lines chan<- string) {
	defer close(lines)

	scanner := bufio.NewScanner(a.stdin)
	for scanner.Scan() {
		select {
		case lines <- scanner.Text():
		case <-ctx.Done():
			return
		}
	}
	if err := scanner.Err(); err != nil {
		a.logger.Warn("failed to read input: " + err.Error())
	}
}

// shell executes browse commands against one tree.
type shell struct {
	app      *App
	session  ports.Decompiler
	tree     *tree.Tree
	render   *listing.Renderer
	cwd      string
	watching bool

	mu        sync.Mutex
	shown     *tree.Node
	shownLang domain.Language
}

func (s *shell) run(ctx context.Context, lines <-chan string) error {
	for {
		if s.app.prompt != nil {
			_, _ = fmt.Fprint(s.app.prompt, "ilview> ")
		}

		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			if err := s.exec(ctx, line); err != nil {
				if errors.Is(err, errQuit) {
					return nil
				}
				s.app.logger.Error(err)
			}
		}
	}
}

func (s *shell) exec(ctx context.Context, line string) error {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return nil
	}

	name, rest, _ := strings.Cut(line, " ")
	rest = strings.TrimSpace(rest)

	switch name {
	case "ls":
		return s.list(ctx, splitArgs(rest))
	case "cat":
		return s.cat(ctx, splitArgs(rest))
	case "add":
		if rest == "" {
			return s.render.Notice("usage: add path")
		}
		return s.add(ctx, rest)
	case "rm":
		if rest == "" {
			return s.render.Notice("usage: rm assembly")
		}
		return s.remove(ctx, rest)
	case "refresh":
		s.refresh()
		return s.render.Notice(fmt.Sprintf("refreshed %d assemblies", len(s.tree.Roots())))
	case "lang":
		return s.language(rest)
	case "status":
		return s.status()
	case "help", "?":
		return s.render.Code(shellHelp)
	case "quit", "exit":
		return errQuit
	default:
		return zerr.With(zerr.Wrap(domain.ErrUnknownCommand, "unknown command"), "command", name)
	}
}

func (s *shell) locate(ctx context.Context, args []string) (*tree.Node, error) {
	root, err := findRoot(s.tree, args[0], s.cwd)
	if err != nil {
		return nil, err
	}
	return s.tree.Resolve(ctx, root, args[1:]...)
}

func (s *shell) list(ctx context.Context, args []string) error {
	if len(args) == 0 {
		roots := s.tree.Roots()
		if len(roots) == 0 {
			return s.render.Notice("no assemblies loaded")
		}
		return s.render.Members(entries(roots))
	}

	node, err := s.locate(ctx, args)
	if err != nil {
		return err
	}
	children, err := s.tree.GetChildren(ctx, node)
	if err != nil {
		return err
	}
	if len(children) == 0 {
		return s.render.Notice(node.Name() + " has no members")
	}
	return s.render.Members(entries(children))
}

func (s *shell) cat(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return s.render.Notice("usage: cat assembly [member...]")
	}

	node, err := s.locate(ctx, args)
	if err != nil {
		return err
	}

	lang := s.tree.Language()
	s.mu.Lock()
	same := s.shown == node && s.shownLang == lang
	s.mu.Unlock()
	if same {
		return s.render.Notice("already shown: " + strings.Join(node.Names(), " "))
	}

	code, err := s.tree.GetCode(ctx, node)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.shown, s.shownLang = node, lang
	s.mu.Unlock()
	return s.render.Code(code)
}

func (s *shell) add(ctx context.Context, raw string) error {
	root, added, err := s.app.add(ctx, s.tree, raw, s.cwd)
	if err != nil {
		return err
	}
	path := root.Key().Assembly
	if !added {
		return s.render.Notice("already loaded: " + path)
	}

	if s.watching {
		if err := s.app.watcher.Add(path); err != nil {
			s.app.logger.Warn("cannot watch " + path + ": " + err.Error())
		} else {
			s.app.fingerprints.Remember(path)
		}
	}
	return s.render.Added(root.Assembly())
}

func (s *shell) remove(ctx context.Context, arg string) error {
	root, err := findRoot(s.tree, arg, s.cwd)
	if err != nil {
		return err
	}
	path := root.Key().Assembly

	removed, err := s.tree.RemoveAssembly(ctx, path)
	if s.watching {
		s.app.fingerprints.Forget(path)
		if werr := s.app.watcher.Remove(path); werr != nil {
			s.app.logger.Warn("cannot unwatch " + path + ": " + werr.Error())
		}
	}
	if removed {
		if rerr := s.render.Removed(path); rerr != nil {
			return rerr
		}
	}
	return err
}

func (s *shell) refresh() {
	s.tree.Refresh()
	s.mu.Lock()
	s.shown = nil
	s.mu.Unlock()
}

func (s *shell) language(arg string) error {
	if arg == "" {
		return s.render.Notice("language: " + s.tree.Language().String())
	}
	lang, err := domain.ParseLanguage(arg)
	if err != nil {
		return err
	}
	s.tree.SetLanguage(lang)
	return s.render.Notice("language: " + lang.String())
}

func (s *shell) status() error {
	roots := s.tree.Roots()
	assemblies := make([]domain.AssemblyDescriptor, 0, len(roots))
	for _, root := range roots {
		assemblies = append(assemblies, root.Assembly())
	}

	return s.render.Status(listing.Status{
		State:      s.session.State(),
		PID:        s.session.PID(),
		Generation: s.session.Generation(),
		Language:   s.tree.Language(),
		Watch:      s.watching,
		Assemblies: assemblies,
	})
}

// changed receives debounced watcher batches.
func (s *shell) changed(paths []string) {
	changed := s.app.fingerprints.Filter(paths)
	if len(changed) == 0 {
		return
	}
	s.refresh()
	s.app.logger.Info("reloaded after change: " + strings.Join(changed, ", "))
}

// splitArgs splits on whitespace and keeps double-quoted runs together.
func splitArgs(s string) []string {
	var (
		args    []string
		cur     strings.Builder
		quoted  bool
		pending bool
	)
	for _, r := range s {
		switch {
		case r == '"':
			quoted = !quoted
			pending = true
		case !quoted && (r == ' ' || r == '\t'):
			if pending {
				args = append(args, cur.String())
				cur.Reset()
				pending = false
			}
		default:
			cur.WriteRune(r)
			pending = true
		}
	}
	if pending {
		args = append(args, cur.String())
	}
	return args
}
