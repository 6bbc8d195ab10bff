package app_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"iter"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"go.trai.ch/ilview/internal/adapters/watcher"
	"go.trai.ch/ilview/internal/app"
	"go.trai.ch/ilview/internal/core/domain"
	"go.trai.ch/ilview/internal/core/ports"
	"go.trai.ch/ilview/internal/core/ports/mocks"
)

const assemblyA = "/x/A.dll"

var (
	keyA  = domain.AssemblyKey(assemblyA)
	keyT  = domain.MemberKey{Assembly: assemblyA, Symbol: "T:Demo.T"}
	keyM1 = domain.MemberKey{Assembly: assemblyA, Symbol: "M:Demo.T.M1"}
	keyM2 = domain.MemberKey{Assembly: assemblyA, Symbol: "M:Demo.T.M2"}

	descA     = domain.AssemblyDescriptor{Path: assemblyA, Name: "A", Version: "1.0.0.0"}
	childrenA = []domain.ChildDescriptor{{Name: "T", Kind: domain.KindType, Symbol: keyT.Symbol}}
	childrenT = []domain.ChildDescriptor{
		{Name: "M1", Kind: domain.KindMethod, Symbol: keyM1.Symbol},
		{Name: "M2", Kind: domain.KindMethod, Symbol: keyM2.Symbol},
	}
)

type fixture struct {
	loader  *mocks.MockConfigLoader
	factory *mocks.MockDecompilerFactory
	session *mocks.MockDecompiler
	finder  *mocks.MockAssemblyFinder
	watcher *mocks.MockWatcher
	hasher  *mocks.MockFingerprinter
	logger  *mocks.MockLogger
	out     *bytes.Buffer
	app     *app.App
}

func newFixture(t *testing.T, cfg *domain.Config, stdin io.Reader) *fixture {
	t.Helper()
	ctrl := gomock.NewController(t)

	f := &fixture{
		loader:  mocks.NewMockConfigLoader(ctrl),
		factory: mocks.NewMockDecompilerFactory(ctrl),
		session: mocks.NewMockDecompiler(ctrl),
		finder:  mocks.NewMockAssemblyFinder(ctrl),
		watcher: mocks.NewMockWatcher(ctrl),
		hasher:  mocks.NewMockFingerprinter(ctrl),
		logger:  mocks.NewMockLogger(ctrl),
		out:     &bytes.Buffer{},
	}

	if cfg == nil {
		cfg = domain.DefaultConfig()
	}
	f.loader.EXPECT().Load(gomock.Any(), "").Return(cfg, nil).AnyTimes()
	f.factory.EXPECT().New(cfg.Engine).Return(f.session).AnyTimes()
	f.session.EXPECT().EnsureRunning(gomock.Any()).Return(nil).AnyTimes()
	f.session.EXPECT().Generation().Return("g1").AnyTimes()
	f.session.EXPECT().Stop().MaxTimes(1)
	f.finder.EXPECT().Check(gomock.Any(), gomock.Any()).DoAndReturn(func(raw, _ string) (string, error) {
		return raw, nil
	}).AnyTimes()
	f.logger.EXPECT().Debug(gomock.Any()).AnyTimes()

	f.app = app.New(f.loader, f.factory, f.finder, f.watcher, watcher.NewFingerprints(f.hasher), f.logger).
		WithIO(stdin, f.out).
		WithColorProfile(termenv.Ascii).
		WithDebounce(time.Millisecond)
	return f
}

func (f *fixture) expectTree() {
	f.session.EXPECT().LoadAssembly(gomock.Any(), assemblyA).Return(descA, nil)
	f.session.EXPECT().ListChildren(gomock.Any(), keyA).Return(childrenA, nil)
	f.session.EXPECT().ListChildren(gomock.Any(), keyT).Return(childrenT, nil)
}

func TestApp_Tree(t *testing.T) {
	f := newFixture(t, nil, nil)
	f.expectTree()
	f.session.EXPECT().ListChildren(gomock.Any(), keyM1).Return(nil, nil)
	f.session.EXPECT().ListChildren(gomock.Any(), keyM2).Return([]domain.ChildDescriptor{}, nil)

	err := f.app.Tree(t.Context(), app.Options{}, []string{assemblyA, assemblyA}, app.TreeOptions{})
	require.NoError(t, err)

	assert.Equal(t, "▣ A\n└── ◆ T\n    ├── ƒ M1\n    └── ƒ M2\n", f.out.String())
}

func TestApp_TreeDepth(t *testing.T) {
	f := newFixture(t, nil, nil)
	f.session.EXPECT().LoadAssembly(gomock.Any(), assemblyA).Return(descA, nil)
	f.session.EXPECT().ListChildren(gomock.Any(), keyA).Return(childrenA, nil)

	err := f.app.Tree(t.Context(), app.Options{}, []string{assemblyA}, app.TreeOptions{Depth: 1})
	require.NoError(t, err)

	assert.Equal(t, "▣ A\n└── ◆ T\n", f.out.String())
}

func TestApp_TreeLoadFailure(t *testing.T) {
	f := newFixture(t, nil, nil)
	f.session.EXPECT().LoadAssembly(gomock.Any(), "/x/missing.dll").Return(domain.AssemblyDescriptor{}, domain.ErrLoadFailure)

	err := f.app.Tree(t.Context(), app.Options{}, []string{"/x/missing.dll"}, app.TreeOptions{})
	require.ErrorIs(t, err, domain.ErrLoadFailure)
	assert.Empty(t, f.out.String())
}

func TestApp_Decompile(t *testing.T) {
	f := newFixture(t, nil, nil)
	f.expectTree()
	f.session.EXPECT().Decompile(gomock.Any(), keyM1, domain.LanguageCSharp).Return("public void M1()\n{\n}", nil)

	err := f.app.Decompile(t.Context(), app.Options{}, assemblyA, []string{"T", "M1"})
	require.NoError(t, err)

	assert.Equal(t, "public void M1()\n{\n}\n", f.out.String())
}

func TestApp_DecompileLanguageOverride(t *testing.T) {
	f := newFixture(t, nil, nil)
	f.session.EXPECT().LoadAssembly(gomock.Any(), assemblyA).Return(descA, nil)
	f.session.EXPECT().ListChildren(gomock.Any(), keyA).Return(childrenA, nil)
	f.session.EXPECT().Decompile(gomock.Any(), keyT, domain.LanguageIL).Return(".class public T\n", nil)

	err := f.app.Decompile(t.Context(), app.Options{Language: "IL"}, assemblyA, []string{"T:Demo.T"})
	require.NoError(t, err)

	assert.Equal(t, ".class public T\n", f.out.String())
}

func TestApp_DecompileUnknownMember(t *testing.T) {
	f := newFixture(t, nil, nil)
	f.session.EXPECT().LoadAssembly(gomock.Any(), assemblyA).Return(descA, nil)
	f.session.EXPECT().ListChildren(gomock.Any(), keyA).Return(childrenA, nil)

	err := f.app.Decompile(t.Context(), app.Options{}, assemblyA, []string{"Nope"})
	require.ErrorIs(t, err, domain.ErrMemberNotFound)
}

func TestApp_InvalidLanguage(t *testing.T) {
	f := newFixture(t, nil, nil)

	err := f.app.Decompile(t.Context(), app.Options{Language: "vb"}, assemblyA, nil)
	require.ErrorIs(t, err, domain.ErrInvalidLanguage)
}

func TestApp_ConfigError(t *testing.T) {
	ctrl := gomock.NewController(t)
	loader := mocks.NewMockConfigLoader(ctrl)
	loader.EXPECT().Load(gomock.Any(), "bad.yaml").Return(nil, domain.ErrConfigParseFailed)

	a := app.New(loader, nil, nil, nil, nil, mocks.NewMockLogger(ctrl))

	err := a.Tree(t.Context(), app.Options{ConfigPath: "bad.yaml"}, []string{assemblyA}, app.TreeOptions{})
	require.ErrorIs(t, err, domain.ErrConfigParseFailed)
}

func TestApp_Find(t *testing.T) {
	f := newFixture(t, nil, nil)
	f.finder.EXPECT().Find("/src").Return([]string{"/src/A.dll", "/src/bin/B.exe"}, nil)

	require.NoError(t, f.app.Find(t.Context(), "/src"))
	assert.Equal(t, "/src/A.dll\n/src/bin/B.exe\n", f.out.String())
}

func TestApp_FindNothing(t *testing.T) {
	f := newFixture(t, nil, nil)
	f.finder.EXPECT().Find("/src").Return(nil, nil)
	f.logger.EXPECT().Info("no assemblies found under /src")

	require.NoError(t, f.app.Find(t.Context(), "/src"))
	assert.Empty(t, f.out.String())
}

func TestApp_BrowseSession(t *testing.T) {
	script := strings.Join([]string{
		"ls",
		"ls A",
		"ls A T",
		"cat A T M1",
		"cat A T M1",
		"lang il",
		"cat A T M1",
		"",
		"bogus",
		"status",
		"refresh",
		"rm A",
		"ls",
		"quit",
		"ls",
	}, "\n")

	f := newFixture(t, nil, strings.NewReader(script))
	f.expectTree()
	f.session.EXPECT().Decompile(gomock.Any(), keyM1, domain.LanguageCSharp).Return("public void M1()\n{\n}\n", nil)
	f.session.EXPECT().Decompile(gomock.Any(), keyM1, domain.LanguageIL).Return("ret\n", nil)
	f.session.EXPECT().State().Return(domain.StateRunning)
	f.session.EXPECT().PID().Return(42)
	f.session.EXPECT().UnloadAssembly(gomock.Any(), assemblyA).Return(nil)

	var logged []error
	f.logger.EXPECT().Error(gomock.Any()).Do(func(err error) { logged = append(logged, err) })

	err := f.app.Browse(t.Context(), app.Options{}, app.BrowseOptions{}, []string{assemblyA})
	require.NoError(t, err)

	require.Len(t, logged, 1)
	require.ErrorIs(t, logged[0], domain.ErrUnknownCommand)

	assert.Equal(t, strings.Join([]string{
		"✓ A 1.0.0.0 /x/A.dll",
		"▣ A",
		"◆ T",
		"ƒ M1",
		"ƒ M2",
		"public void M1()",
		"{",
		"}",
		"already shown: A T M1",
		"language: il",
		"ret",
		"engine:     running (pid 42, generation g1)",
		"language:   il",
		"watch:      off",
		"assemblies: 1",
		"  A 1.0.0.0 /x/A.dll",
		"refreshed 1 assemblies",
		"○ removed /x/A.dll",
		"no assemblies loaded",
		"",
	}, "\n"), f.out.String())
}

func TestApp_BrowseAdd(t *testing.T) {
	ctrl := gomock.NewController(t)
	finder := mocks.NewMockAssemblyFinder(ctrl)
	finder.EXPECT().Check(`"/x/A.dll"`, gomock.Any()).Return(assemblyA, nil).Times(2)
	finder.EXPECT().Check("/x/gone.dll", gomock.Any()).Return("", domain.ErrAssemblyUnreadable)

	f := newFixture(t, nil, nil)
	f.session.EXPECT().LoadAssembly(gomock.Any(), assemblyA).Return(descA, nil)
	f.logger.EXPECT().Error(gomock.Any()).Do(func(err error) {
		assert.ErrorIs(t, err, domain.ErrAssemblyUnreadable)
	})

	a := app.New(f.loader, f.factory, finder, f.watcher, watcher.NewFingerprints(f.hasher), f.logger).
		WithIO(strings.NewReader("add /x/gone.dll\nadd \"/x/A.dll\"\nadd \"/x/A.dll\"\nadd\n"), f.out).
		WithColorProfile(termenv.Ascii)

	require.NoError(t, a.Browse(t.Context(), app.Options{}, app.BrowseOptions{}, nil))

	assert.Equal(t, "✓ A 1.0.0.0 /x/A.dll\nalready loaded: /x/A.dll\nusage: add path\n", f.out.String())
}

func TestApp_BrowseAutoRefresh(t *testing.T) {
	stdin, input := io.Pipe()
	t.Cleanup(func() { _ = input.Close() })

	cfg := domain.DefaultConfig()
	cfg.Watch = true
	f := newFixture(t, cfg, stdin)

	events := make(chan ports.WatchEvent)
	var closeOnce sync.Once
	f.watcher.EXPECT().Start(gomock.Any()).Return(nil)
	f.watcher.EXPECT().Events().Return(iter.Seq[ports.WatchEvent](func(yield func(ports.WatchEvent) bool) {
		for ev := range events {
			if !yield(ev) {
				return
			}
		}
	}))
	f.watcher.EXPECT().Add(assemblyA).Return(nil)
	f.watcher.EXPECT().Stop().DoAndReturn(func() error {
		closeOnce.Do(func() { close(events) })
		return nil
	})

	gomock.InOrder(
		f.hasher.EXPECT().Fingerprint(assemblyA).Return("a1", nil),
		f.hasher.EXPECT().Fingerprint(assemblyA).Return("a2", nil),
	)

	listed := make(chan struct{}, 2)
	f.session.EXPECT().LoadAssembly(gomock.Any(), assemblyA).Return(descA, nil).Times(2)
	f.session.EXPECT().ListChildren(gomock.Any(), keyA).DoAndReturn(
		func(context.Context, domain.MemberKey) ([]domain.ChildDescriptor, error) {
			listed <- struct{}{}
			return childrenA, nil
		}).Times(2)

	reloaded := make(chan struct{})
	f.logger.EXPECT().Info("reloaded after change: " + assemblyA).Do(func(string) { close(reloaded) })

	done := make(chan error, 1)
	go func() {
		done <- f.app.Browse(t.Context(), app.Options{}, app.BrowseOptions{}, []string{assemblyA})
	}()

	_, err := io.WriteString(input, "ls A\n")
	require.NoError(t, err)
	<-listed

	events <- ports.WatchEvent{Path: assemblyA, Operation: ports.OpWrite}
	select {
	case <-reloaded:
	case <-time.After(5 * time.Second):
		t.Fatal("change did not trigger a refresh")
	}

	_, err = io.WriteString(input, "ls A\nquit\n")
	require.NoError(t, err)

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("browse did not return")
	}
	<-listed
}

func TestApp_BrowseWatchDisabledByFlag(t *testing.T) {
	cfg := domain.DefaultConfig()
	cfg.Watch = true
	f := newFixture(t, cfg, strings.NewReader("status\n"))
	f.session.EXPECT().State().Return(domain.StateStopped)
	f.session.EXPECT().PID().Return(0)

	off := false
	require.NoError(t, f.app.Browse(t.Context(), app.Options{}, app.BrowseOptions{Watch: &off}, nil))

	assert.Contains(t, f.out.String(), "engine:     stopped\n")
	assert.Contains(t, f.out.String(), "watch:      off\n")
}

func TestApp_BrowseWatchStartFailure(t *testing.T) {
	cfg := domain.DefaultConfig()
	cfg.Watch = true
	f := newFixture(t, cfg, strings.NewReader(""))
	f.watcher.EXPECT().Start(gomock.Any()).Return(errors.New("no inotify"))
	f.logger.EXPECT().Warn("auto-refresh disabled: no inotify")

	require.NoError(t, f.app.Browse(t.Context(), app.Options{}, app.BrowseOptions{}, nil))
}

func TestApp_BrowseStopsOnCancel(t *testing.T) {
	stdin, input := io.Pipe()
	t.Cleanup(func() { _ = input.Close() })

	f := newFixture(t, nil, stdin)

	ctx, cancel := context.WithCancel(t.Context())
	done := make(chan error, 1)
	go func() {
		done <- f.app.Browse(ctx, app.Options{}, app.BrowseOptions{}, nil)
	}()
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("browse did not return after cancel")
	}
}

func TestSplitArgs(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{in: "", want: nil},
		{in: "A T M1", want: []string{"A", "T", "M1"}},
		{in: `  A   "My Type"  M1 `, want: []string{"A", "My Type", "M1"}},
		{in: `""`, want: []string{""}},
		{in: "A\tT", want: []string{"A", "T"}},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, app.SplitArgs(tt.in), "input %q", tt.in)
	}
}
