package domain

// MemberKind tags a node of the member hierarchy.
type MemberKind string

const (
	// KindAssembly is the root of a hierarchy.
	KindAssembly MemberKind = "assembly"
	// KindNamespace groups types.
	KindNamespace MemberKind = "namespace"
	// KindType is a class, struct, interface, enum or delegate.
	KindType MemberKind = "type"
	// KindMethod is a method or constructor.
	KindMethod MemberKind = "method"
	// KindField is a field.
	KindField MemberKind = "field"
	// KindProperty is a property.
	KindProperty MemberKind = "property"
	// KindEvent is an event.
	KindEvent MemberKind = "event"
)

// IsKnown reports whether k is one of the kinds the engine protocol defines.
func (k MemberKind) IsKnown() bool {
	switch k {
	case KindAssembly, KindNamespace, KindType, KindMethod, KindField, KindProperty, KindEvent:
		return true
	default:
		return false
	}
}

// MemberKey is the stable identity used to address a member in engine requests.
// Symbol is the engine's symbol id (for example "T:Demo.Widget"); it is empty
// for the assembly itself.
type MemberKey struct {
	Assembly string
	Symbol   string
}

// AssemblyKey returns the key of the assembly root at path.
func AssemblyKey(path string) MemberKey {
	return MemberKey{Assembly: path}
}

// IsAssembly reports whether the key addresses an assembly root.
func (k MemberKey) IsAssembly() bool {
	return k.Symbol == ""
}

// String returns "assembly!symbol", or just the assembly path for roots.
func (k MemberKey) String() string {
	if k.Symbol == "" {
		return k.Assembly
	}
	return k.Assembly + "!" + k.Symbol
}

// AssemblyDescriptor describes an assembly accepted by the engine.
type AssemblyDescriptor struct {
	Path            string
	Name            string
	Version         string
	TargetFramework string
}

// ChildDescriptor describes one child reported by the engine for a member.
type ChildDescriptor struct {
	Name   string
	Kind   MemberKind
	Symbol string
}
