package commands_test

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.trai.ch/ilview/cmd/ilview/commands"
	"go.trai.ch/ilview/internal/app"
	"go.trai.ch/ilview/internal/build"
)

type call struct {
	name    string
	opts    app.Options
	paths   []string
	members []string
	tree    app.TreeOptions
	browse  app.BrowseOptions
	dir     string
}

type mockApp struct {
	calls []call
	err   error
}

func (m *mockApp) Tree(_ context.Context, opts app.Options, paths []string, treeOpts app.TreeOptions) error {
	m.calls = append(m.calls, call{name: "tree", opts: opts, paths: paths, tree: treeOpts})
	return m.err
}

func (m *mockApp) Decompile(_ context.Context, opts app.Options, path string, members []string) error {
	m.calls = append(m.calls, call{name: "decompile", opts: opts, paths: []string{path}, members: members})
	return m.err
}

func (m *mockApp) Browse(_ context.Context, opts app.Options, browseOpts app.BrowseOptions, paths []string) error {
	m.calls = append(m.calls, call{name: "browse", opts: opts, paths: paths, browse: browseOpts})
	return m.err
}

func (m *mockApp) Find(_ context.Context, dir string) error {
	m.calls = append(m.calls, call{name: "find", dir: dir})
	return m.err
}

func execute(t *testing.T, m *mockApp, args ...string) (string, error) {
	t.Helper()
	cli := commands.New(m)
	buf := new(bytes.Buffer)
	cli.SetOutput(buf, buf)
	cli.SetArgs(args)
	err := cli.Execute(context.Background())
	return buf.String(), err
}

func TestCommands_Tree(t *testing.T) {
	m := &mockApp{}
	_, err := execute(t, m, "tree", "A.dll", "B.dll", "--depth", "2",
		"--config", "cfg.yaml", "--engine", "./engine", "-l", "il", "--json-logs", "-v")
	require.NoError(t, err)

	require.Len(t, m.calls, 1)
	got := m.calls[0]
	assert.Equal(t, "tree", got.name)
	assert.Equal(t, []string{"A.dll", "B.dll"}, got.paths)
	assert.Equal(t, app.TreeOptions{Depth: 2}, got.tree)
	assert.Equal(t, app.Options{
		ConfigPath: "cfg.yaml",
		Engine:     "./engine",
		Language:   "il",
		JSONLogs:   true,
		Verbose:    true,
	}, got.opts)
}

func TestCommands_TreeNeedsAnAssembly(t *testing.T) {
	m := &mockApp{}
	_, err := execute(t, m, "tree")
	require.Error(t, err)
	assert.Empty(t, m.calls)
}

func TestCommands_Decompile(t *testing.T) {
	m := &mockApp{}
	_, err := execute(t, m, "decompile", "A.dll", "T", "M1")
	require.NoError(t, err)

	require.Len(t, m.calls, 1)
	assert.Equal(t, []string{"A.dll"}, m.calls[0].paths)
	assert.Equal(t, []string{"T", "M1"}, m.calls[0].members)
}

func TestCommands_Browse(t *testing.T) {
	t.Run("watch follows config by default", func(t *testing.T) {
		m := &mockApp{}
		_, err := execute(t, m, "browse", "A.dll")
		require.NoError(t, err)
		require.Len(t, m.calls, 1)
		assert.Nil(t, m.calls[0].browse.Watch)
		assert.Equal(t, []string{"A.dll"}, m.calls[0].paths)
	})

	t.Run("explicit watch flag", func(t *testing.T) {
		m := &mockApp{}
		_, err := execute(t, m, "browse", "--watch=false")
		require.NoError(t, err)
		require.Len(t, m.calls, 1)
		require.NotNil(t, m.calls[0].browse.Watch)
		assert.False(t, *m.calls[0].browse.Watch)
	})
}

func TestCommands_Find(t *testing.T) {
	m := &mockApp{}
	_, err := execute(t, m, "find")
	require.NoError(t, err)
	_, err = execute(t, m, "find", "bin")
	require.NoError(t, err)

	require.Len(t, m.calls, 2)
	assert.Empty(t, m.calls[0].dir)
	assert.Equal(t, "bin", m.calls[1].dir)
}

func TestCommands_ReturnsAppErrors(t *testing.T) {
	m := &mockApp{err: errors.New("simulated error")}
	_, err := execute(t, m, "decompile", "A.dll")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "simulated error")
}

func TestCommands_Version(t *testing.T) {
	out, err := execute(t, &mockApp{}, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "ilview version "+build.Version)

	out, err = execute(t, &mockApp{}, "--version")
	require.NoError(t, err)
	assert.Contains(t, out, build.Version)
}

func TestCommands_TreeWithoutFlags(t *testing.T) {
	m := &mockApp{}
	_, err := execute(t, m, "tree", "A.dll")
	require.NoError(t, err)

	require.Len(t, m.calls, 1)
	assert.Equal(t, app.Options{}, m.calls[0].opts)
	assert.Equal(t, app.TreeOptions{}, m.calls[0].tree)
}

func TestCommands_ShortVerboseIsNotVersion(t *testing.T) {
	m := &mockApp{}
	out, err := execute(t, m, "find", "-v")
	require.NoError(t, err)
	assert.NotContains(t, out, build.Version)

	require.Len(t, m.calls, 1)
	assert.Equal(t, "find", m.calls[0].name)
}
