// Package tree implements the lazily populated member hierarchy of loaded
// assemblies on top of a decompiler session.
package tree

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"go.trai.ch/zerr"
	"golang.org/x/sync/singleflight"

	"go.trai.ch/ilview/internal/core/domain"
	"go.trai.ch/ilview/internal/core/ports"
)

// Tree owns the assembly roots and every node reachable from them. Nodes are
// kept in an arena keyed by MemberKey; Refresh bumps the epoch, which
// invalidates memoized state and any fetch still in flight.
type Tree struct {
	session ports.Decompiler
	logger  ports.Logger

	mu       sync.RWMutex
	roots    []*Node
	byPath   map[string]*Node
	nodes    map[domain.MemberKey]*Node
	epoch    uint64
	language domain.Language

	group singleflight.Group

	subsMu  sync.Mutex
	subs    map[int]func(Event)
	nextSub int
}

// Option configures a Tree.
type Option func(*Tree)

// WithLanguage sets the language GetCode requests.
func WithLanguage(l domain.Language) Option {
	return func(t *Tree) {
		t.language = l
	}
}

// WithLogger sets the logger that reports children the tree cannot address.
func WithLogger(l ports.Logger) Option {
	return func(t *Tree) {
		t.logger = l
	}
}

// New creates an empty tree backed by session.
func New(session ports.Decompiler, opts ...Option) *Tree {
	t := &Tree{
		session:  session,
		byPath:   make(map[string]*Node),
		nodes:    make(map[domain.MemberKey]*Node),
		language: domain.DefaultLanguage,
		subs:     make(map[int]func(Event)),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Language returns the language GetCode requests.
func (t *Tree) Language() domain.Language {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.language
}

// SetLanguage changes the language of later GetCode calls. Code memoized for
// other languages is kept.
func (t *Tree) SetLanguage(l domain.Language) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.language = l
}

// Subscribe registers fn for structure-changed events and returns a function
// that removes it. fn runs synchronously on the goroutine that made the change.
func (t *Tree) Subscribe(fn func(Event)) func() {
	t.subsMu.Lock()
	defer t.subsMu.Unlock()

	id := t.nextSub
	t.nextSub++
	t.subs[id] = fn

	return func() {
		t.subsMu.Lock()
		defer t.subsMu.Unlock()
		delete(t.subs, id)
	}
}

func (t *Tree) emit(ev Event) {
	t.subsMu.Lock()
	fns := make([]func(Event), 0, len(t.subs))
	for _, fn := range t.subs {
		fns = append(fns, fn)
	}
	t.subsMu.Unlock()

	for _, fn := range fns {
		fn(ev)
	}
}

// Roots returns the assembly roots in insertion order.
func (t *Tree) Roots() []*Node {
	t.mu.RLock()
	defer t.mu.RUnlock()

	roots := make([]*Node, len(t.roots))
	copy(roots, t.roots)
	return roots
}

// Root returns the root for path.
func (t *Tree) Root(path string) (*Node, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	n, ok := t.byPath[path]
	return n, ok
}

// Lookup returns the attached node with key, if it has been materialized.
func (t *Tree) Lookup(key domain.MemberKey) (*Node, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	n, ok := t.nodes[key]
	return n, ok
}

// AddAssembly loads path into the engine and attaches a root for it. It
// returns false without error when path is already a root. On failure the
// tree is left unchanged.
func (t *Tree) AddAssembly(ctx context.Context, path string) (bool, error) {
	if _, ok := t.Root(path); ok {
		return false, nil
	}

	desc, err := t.session.LoadAssembly(ctx, path)
	if err != nil {
		return false, err
	}
	generation := t.session.Generation()

	t.mu.Lock()
	if _, ok := t.byPath[path]; ok {
		t.mu.Unlock()
		return false, nil
	}

	root := &Node{
		tree:       t,
		key:        domain.AssemblyKey(path),
		name:       rootName(desc),
		kind:       domain.KindAssembly,
		assembly:   desc,
		generation: generation,
	}
	t.roots = append(t.roots, root)
	t.byPath[path] = root
	t.nodes[root.key] = root
	t.mu.Unlock()

	t.emit(Event{Kind: EventAdded, Path: path})
	return true, nil
}

// RemoveAssembly detaches the root for path and all of its descendants, then
// asks a running engine to unload it. The root is detached even when the
// engine refuses, in which case the error is returned with true.
func (t *Tree) RemoveAssembly(ctx context.Context, path string) (bool, error) {
	t.mu.Lock()
	root, ok := t.byPath[path]
	if !ok {
		t.mu.Unlock()
		return false, nil
	}

	delete(t.byPath, path)
	for i, r := range t.roots {
		if r == root {
			t.roots = append(t.roots[:i], t.roots[i+1:]...)
			break
		}
	}
	t.detachLocked(root)
	t.mu.Unlock()

	t.emit(Event{Kind: EventRemoved, Path: path})

	if err := t.session.UnloadAssembly(ctx, path); err != nil {
		return true, err
	}
	return true, nil
}

// Refresh discards every memoized child list and code text. Roots keep their
// identity but are re-loaded by the engine on next access; all other nodes
// are detached and rebuilt lazily.
func (t *Tree) Refresh() {
	t.mu.Lock()
	t.epoch++
	for _, root := range t.roots {
		for _, child := range root.children {
			t.detachLocked(child)
		}
		root.children = nil
		root.childrenLoaded = false
		root.code = nil
		root.generation = ""
	}
	t.mu.Unlock()

	t.emit(Event{Kind: EventRefreshed})
}

// GetChildren returns n's children, asking the engine once per node. The
// returned slice is shared and must not be modified.
func (t *Tree) GetChildren(ctx context.Context, n *Node) ([]*Node, error) {
	t.mu.RLock()
	if n.tree != t || n.detached {
		t.mu.RUnlock()
		return nil, detachedError(n)
	}
	if n.childrenLoaded {
		children := n.children
		t.mu.RUnlock()
		return children, nil
	}
	epoch := t.epoch
	t.mu.RUnlock()

	flightKey := fmt.Sprintf("%d|children|%s", epoch, n.key)
	v, err, _ := t.group.Do(flightKey, func() (any, error) {
		return t.fetchChildren(context.WithoutCancel(ctx), n, epoch)
	})
	if err != nil {
		return nil, err
	}
	if v == nil {
		// A Refresh landed while the engine was answering.
		return t.GetChildren(ctx, n)
	}
	return v.([]*Node), nil
}

func (t *Tree) fetchChildren(ctx context.Context, n *Node, epoch uint64) (any, error) {
	if err := t.ensureLoaded(ctx, n.key.Assembly, epoch); err != nil {
		return nil, err
	}

	descs, err := t.session.ListChildren(ctx, n.key)
	if err != nil {
		return nil, err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if n.detached {
		return nil, detachedError(n)
	}
	if t.epoch != epoch {
		return nil, nil
	}
	if n.childrenLoaded {
		return n.children, nil
	}

	children := make([]*Node, 0, len(descs))
	for _, d := range descs {
		if d.Symbol == "" {
			// An empty symbol addresses the assembly itself.
			t.debug(fmt.Sprintf("skipping member %q of %s: no symbol", d.Name, n.key))
			continue
		}
		child := &Node{
			tree:   t,
			key:    domain.MemberKey{Assembly: n.key.Assembly, Symbol: d.Symbol},
			name:   d.Name,
			kind:   d.Kind,
			parent: n,
		}
		if _, taken := t.nodes[child.key]; taken {
			t.debug(fmt.Sprintf("member %q of %s reuses symbol %s", d.Name, n.key, d.Symbol))
		} else {
			t.nodes[child.key] = child
		}
		children = append(children, child)
	}
	n.children = children
	n.childrenLoaded = true
	return children, nil
}

// GetCode returns n decompiled in the tree's current language, asking the
// engine once per node and language.
func (t *Tree) GetCode(ctx context.Context, n *Node) (string, error) {
	t.mu.RLock()
	if n.tree != t || n.detached {
		t.mu.RUnlock()
		return "", detachedError(n)
	}
	lang := t.language
	if code, ok := n.code[lang]; ok {
		t.mu.RUnlock()
		return code, nil
	}
	epoch := t.epoch
	t.mu.RUnlock()

	flightKey := fmt.Sprintf("%d|code|%s|%s", epoch, lang, n.key)
	v, err, _ := t.group.Do(flightKey, func() (any, error) {
		return t.fetchCode(context.WithoutCancel(ctx), n, lang, epoch)
	})
	if err != nil {
		return "", err
	}
	if v == nil {
		return t.GetCode(ctx, n)
	}
	return v.(string), nil
}

func (t *Tree) fetchCode(ctx context.Context, n *Node, lang domain.Language, epoch uint64) (any, error) {
	if err := t.ensureLoaded(ctx, n.key.Assembly, epoch); err != nil {
		return nil, err
	}

	code, err := t.session.Decompile(ctx, n.key, lang)
	if err != nil {
		return nil, err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if n.detached {
		return nil, detachedError(n)
	}
	if t.epoch != epoch {
		return nil, nil
	}
	if memo, ok := n.code[lang]; ok {
		return memo, nil
	}
	if n.code == nil {
		n.code = make(map[domain.Language]string)
	}
	n.code[lang] = code
	return code, nil
}

// detachLocked marks n and every materialized descendant detached and drops
// them from the arena. The caller holds t.mu.
func (t *Tree) detachLocked(n *Node) {
	n.detached = true
	if t.nodes[n.key] == n {
		delete(t.nodes, n.key)
	}
	for _, child := range n.children {
		t.detachLocked(child)
	}
}

func (t *Tree) debug(msg string) {
	if t.logger != nil {
		t.logger.Debug(msg)
	}
}

// ensureLoaded makes sure the engine generation that will answer the next
// request has the assembly at path loaded. A restarted engine has forgotten
// everything, so the assembly is loaded again.
func (t *Tree) ensureLoaded(ctx context.Context, path string, epoch uint64) error {
	if err := t.session.EnsureRunning(ctx); err != nil {
		return err
	}

	t.mu.RLock()
	root, ok := t.byPath[path]
	var loadedIn string
	if ok {
		loadedIn = root.generation
	}
	t.mu.RUnlock()

	if !ok {
		return zerr.With(zerr.Wrap(domain.ErrNodeDetached, "assembly was removed"), "assembly", path)
	}
	if loadedIn != "" && loadedIn == t.session.Generation() {
		return nil
	}

	_, err, _ := t.group.Do(fmt.Sprintf("%d|load|%s", epoch, path), func() (any, error) {
		desc, err := t.session.LoadAssembly(ctx, path)
		if err != nil {
			return nil, err
		}
		generation := t.session.Generation()

		t.mu.Lock()
		defer t.mu.Unlock()
		if t.byPath[path] == root {
			root.assembly = desc
			root.generation = generation
		}
		return nil, nil
	})
	return err
}

// Resolve walks from start through children matching names. A name matches
// a child's display name, or its symbol when no display name matches.
func (t *Tree) Resolve(ctx context.Context, start *Node, names ...string) (*Node, error) {
	cur := start
	for _, name := range names {
		children, err := t.GetChildren(ctx, cur)
		if err != nil {
			return nil, err
		}

		next := matchChild(children, name)
		if next == nil {
			err := zerr.With(zerr.Wrap(domain.ErrMemberNotFound, "no member named "+name), "parent", cur.Name())
			return nil, zerr.With(err, "available", childNames(children))
		}
		cur = next
	}
	return cur, nil
}

func matchChild(children []*Node, name string) *Node {
	for _, c := range children {
		if c.name == name {
			return c
		}
	}
	for _, c := range children {
		if c.key.Symbol == name {
			return c
		}
	}
	return nil
}

func childNames(children []*Node) string {
	names := make([]string, 0, len(children))
	for _, c := range children {
		names = append(names, c.name)
	}
	return strings.Join(names, ", ")
}

func rootName(desc domain.AssemblyDescriptor) string {
	if desc.Name != "" {
		return desc.Name
	}
	return strings.TrimSuffix(filepath.Base(desc.Path), filepath.Ext(desc.Path))
}
