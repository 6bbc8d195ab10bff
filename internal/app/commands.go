package app

import (
	"context"
	"errors"
	"os"

	"go.trai.ch/zerr"

	"go.trai.ch/ilview/internal/engine/tree"
	"go.trai.ch/ilview/internal/ui/listing"
)

// TreeOptions configures the Tree command.
type TreeOptions struct {
	// Depth limits how many levels below each assembly are printed. Zero or
	// less prints everything.
	Depth int
}

// Tree loads the assemblies at paths and prints their member hierarchy.
func (a *App) Tree(ctx context.Context, opts Options, paths []string, treeOpts TreeOptions) error {
	cfg, cwd, err := a.configure(opts)
	if err != nil {
		return err
	}

	session, t := a.open(cfg)
	defer session.Stop()

	roots := make([]*tree.Node, 0, len(paths))
	for _, raw := range paths {
		root, added, err := a.add(ctx, t, raw, cwd)
		if err != nil {
			return err
		}
		if added {
			roots = append(roots, root)
		}
	}

	entries := make([]listing.Entry, 0, len(roots))
	for _, root := range roots {
		entry, err := a.entry(ctx, t, root, 0, treeOpts.Depth)
		if err != nil {
			return err
		}
		entries = append(entries, entry)
	}

	return a.renderer().Tree(entries)
}

func (a *App) entry(ctx context.Context, t *tree.Tree, n *tree.Node, depth, limit int) (listing.Entry, error) {
	e := listing.Entry{Name: n.Name(), Kind: n.Kind()}
	if limit > 0 && depth >= limit {
		return e, nil
	}

	children, err := t.GetChildren(ctx, n)
	if err != nil {
		return e, err
	}
	for _, c := range children {
		child, err := a.entry(ctx, t, c, depth+1, limit)
		if err != nil {
			return e, err
		}
		e.Children = append(e.Children, child)
	}
	return e, nil
}

func entries(nodes []*tree.Node) []listing.Entry {
	out := make([]listing.Entry, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, listing.Entry{Name: n.Name(), Kind: n.Kind()})
	}
	return out
}

// Decompile loads the assembly at path, walks down the display names in
// members and prints the code of the member found there.
func (a *App) Decompile(ctx context.Context, opts Options, path string, members []string) error {
	cfg, cwd, err := a.configure(opts)
	if err != nil {
		return err
	}

	session, t := a.open(cfg)
	defer session.Stop()

	root, _, err := a.add(ctx, t, path, cwd)
	if err != nil {
		return err
	}

	node, err := t.Resolve(ctx, root, members...)
	if err != nil {
		return err
	}

	code, err := t.GetCode(ctx, node)
	if err != nil {
		return err
	}
	return a.renderer().Code(code)
}

// Find prints the assemblies below dir, or below the working directory when
// dir is empty.
func (a *App) Find(_ context.Context, dir string) error {
	if dir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return zerr.Wrap(err, "failed to get working directory")
		}
		dir = cwd
	}

	found, err := a.finder.Find(dir)
	if err != nil {
		return err
	}
	if len(found) == 0 {
		a.logger.Info("no assemblies found under " + dir)
		return nil
	}
	return a.renderer().Paths(found)
}

var errQuit = errors.New("quit")
