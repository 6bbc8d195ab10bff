package tree

import (
	"go.trai.ch/zerr"

	"go.trai.ch/ilview/internal/core/domain"
)

// Node is one member of the hierarchy. Its memoized children and code are
// owned by the Tree and only change through Tree operations.
type Node struct {
	tree   *Tree
	key    domain.MemberKey
	name   string
	kind   domain.MemberKind
	parent *Node

	// Guarded by tree.mu.
	children       []*Node
	childrenLoaded bool
	code           map[domain.Language]string
	detached       bool

	// Roots only, guarded by tree.mu.
	assembly   domain.AssemblyDescriptor
	generation string
}

// Key returns the identity used to address the member in engine requests.
func (n *Node) Key() domain.MemberKey { return n.key }

// Name returns the display name.
func (n *Node) Name() string { return n.name }

// Kind returns the member kind.
func (n *Node) Kind() domain.MemberKind { return n.kind }

// Parent returns the enclosing node, or nil for an assembly root.
func (n *Node) Parent() *Node { return n.parent }

// IsRoot reports whether n is an assembly root.
func (n *Node) IsRoot() bool { return n.parent == nil }

// Assembly returns the descriptor of the assembly containing n.
func (n *Node) Assembly() domain.AssemblyDescriptor {
	root := n
	for root.parent != nil {
		root = root.parent
	}

	n.tree.mu.RLock()
	defer n.tree.mu.RUnlock()
	return root.assembly
}

// Detached reports whether n no longer belongs to its tree.
func (n *Node) Detached() bool {
	n.tree.mu.RLock()
	defer n.tree.mu.RUnlock()
	return n.detached
}

// Expanded reports whether n's children are memoized.
func (n *Node) Expanded() bool {
	n.tree.mu.RLock()
	defer n.tree.mu.RUnlock()
	return n.childrenLoaded
}

// Names returns the display names from the root down to n.
func (n *Node) Names() []string {
	var names []string
	for cur := n; cur != nil; cur = cur.parent {
		names = append(names, cur.name)
	}
	for i, j := 0, len(names)-1; i < j; i, j = i+1, j-1 {
		names[i], names[j] = names[j], names[i]
	}
	return names
}

func detachedError(n *Node) error {
	return zerr.With(zerr.Wrap(domain.ErrNodeDetached, "stale node"), "member", n.key.String())
}
