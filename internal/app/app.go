// Package app implements the application layer for ilview.
package app

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/muesli/termenv"
	"go.trai.ch/zerr"

	"go.trai.ch/ilview/internal/adapters/config"  //nolint:depguard // Wired in app layer
	"go.trai.ch/ilview/internal/adapters/watcher" //nolint:depguard // Wired in app layer
	"go.trai.ch/ilview/internal/core/domain"
	"go.trai.ch/ilview/internal/core/ports"
	"go.trai.ch/ilview/internal/engine/tree"
	"go.trai.ch/ilview/internal/ui/listing"
	"go.trai.ch/ilview/internal/ui/output"
)

// Options are the settings shared by every command.
type Options struct {
	// ConfigPath is an explicit config file. Empty means discovery.
	ConfigPath string
	// Engine overrides the engine executable.
	Engine string
	// Language overrides the configured language.
	Language string
	// JSONLogs switches the logger to JSON output.
	JSONLogs bool
	// Verbose enables debug logging.
	Verbose bool
}

// logSwitches is implemented by loggers whose format can change at runtime.
type logSwitches interface {
	SetJSON(enable bool)
	SetVerbose(enable bool)
}

// App represents the main application logic.
type App struct {
	configLoader ports.ConfigLoader
	factory      ports.DecompilerFactory
	finder       ports.AssemblyFinder
	watcher      ports.Watcher
	fingerprints *watcher.Fingerprints
	logger       ports.Logger

	stdin    io.Reader
	stdout   io.Writer
	prompt   io.Writer
	profile  termenv.Profile
	debounce time.Duration
}

// New creates a new App instance.
func New(
	loader ports.ConfigLoader,
	factory ports.DecompilerFactory,
	finder ports.AssemblyFinder,
	w ports.Watcher,
	fingerprints *watcher.Fingerprints,
	log ports.Logger,
) *App {
	return &App{
		configLoader: loader,
		factory:      factory,
		finder:       finder,
		watcher:      w,
		fingerprints: fingerprints,
		logger:       log,
		stdin:        os.Stdin,
		stdout:       os.Stdout,
		profile:      output.ColorProfile(),
		debounce:     watcher.DefaultDebounceWindow,
	}
}

// WithIO replaces the streams used by the commands.
func (a *App) WithIO(stdin io.Reader, stdout io.Writer) *App {
	a.stdin = stdin
	a.stdout = stdout
	return a
}

// WithColorProfile overrides the detected color profile of listings.
func (a *App) WithColorProfile(p termenv.Profile) *App {
	a.profile = p
	return a
}

// WithPrompt makes the browse shell print a prompt to w before each command.
func (a *App) WithPrompt(w io.Writer) *App {
	a.prompt = w
	return a
}

// WithDebounce sets how long file changes settle before an auto-refresh.
func (a *App) WithDebounce(d time.Duration) *App {
	a.debounce = d
	return a
}

func (a *App) renderer() *listing.Renderer {
	return listing.NewRenderer(a.stdout, a.profile)
}

// configure loads the configuration, applies the overrides in opts and
// switches the logger accordingly.
func (a *App) configure(opts Options) (*domain.Config, string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, "", zerr.Wrap(err, "failed to get working directory")
	}

	cfg, err := a.configLoader.Load(cwd, opts.ConfigPath)
	if err != nil {
		return nil, "", zerr.Wrap(err, "failed to load configuration")
	}

	if opts.Engine != "" {
		cfg.Engine.Path = config.ResolveEnginePath(opts.Engine, cwd)
	}
	if opts.Language != "" {
		lang, err := domain.ParseLanguage(opts.Language)
		if err != nil {
			return nil, "", err
		}
		cfg.Language = lang
	}

	if sw, ok := a.logger.(logSwitches); ok {
		sw.SetJSON(opts.JSONLogs || cfg.Log.JSON)
		sw.SetVerbose(opts.Verbose || cfg.Log.Verbose)
	}
	if cfg.Source != "" {
		a.logger.Debug("using config " + cfg.Source)
	}

	return cfg, cwd, nil
}

// open creates a session and a tree over it. The caller must stop the session.
func (a *App) open(cfg *domain.Config) (ports.Decompiler, *tree.Tree) {
	session := a.factory.New(cfg.Engine)
	t := tree.New(session, tree.WithLanguage(cfg.Language), tree.WithLogger(a.logger))
	t.Subscribe(func(ev tree.Event) {
		if ev.Path == "" {
			a.logger.Debug("tree: " + ev.Kind.String())
			return
		}
		a.logger.Debug("tree: " + ev.Kind.String() + " " + ev.Path)
	})
	return session, t
}

// add checks raw and loads it into t. It returns the root and whether it was
// newly added.
func (a *App) add(ctx context.Context, t *tree.Tree, raw, cwd string) (*tree.Node, bool, error) {
	path, err := a.finder.Check(raw, cwd)
	if err != nil {
		return nil, false, err
	}

	added, err := t.AddAssembly(ctx, path)
	if err != nil {
		return nil, false, err
	}

	root, ok := t.Root(path)
	if !ok {
		// Removed concurrently.
		return nil, false, zerr.With(zerr.Wrap(domain.ErrAssemblyNotLoaded, "assembly was removed"), "path", path)
	}
	return root, added, nil
}

// findRoot returns the root named by arg: a loaded path (absolute or relative
// to cwd) or an assembly display name.
func findRoot(t *tree.Tree, arg, cwd string) (*tree.Node, error) {
	path := strings.Trim(strings.TrimSpace(arg), `"`)
	if !filepath.IsAbs(path) {
		path = filepath.Join(cwd, path)
	}
	if root, ok := t.Root(filepath.Clean(path)); ok {
		return root, nil
	}

	for _, root := range t.Roots() {
		if root.Name() == arg {
			return root, nil
		}
	}
	return nil, zerr.With(zerr.Wrap(domain.ErrAssemblyNotLoaded, "no loaded assembly matches"), "assembly", arg)
}

// Components holds the application components.
type Components struct {
	App    *App
	Logger ports.Logger
}
