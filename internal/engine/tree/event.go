package tree

// EventKind says how the set of roots changed.
type EventKind uint8

const (
	// EventAdded follows a successful AddAssembly.
	EventAdded EventKind = iota + 1
	// EventRemoved follows RemoveAssembly.
	EventRemoved
	// EventRefreshed follows Refresh.
	EventRefreshed
)

func (k EventKind) String() string {
	switch k {
	case EventAdded:
		return "added"
	case EventRemoved:
		return "removed"
	case EventRefreshed:
		return "refreshed"
	default:
		return "unknown"
	}
}

// Event is a structure-changed notification. Path is empty for EventRefreshed.
type Event struct {
	Kind EventKind
	Path string
}
