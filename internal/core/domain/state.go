package domain

// SessionState is the lifecycle state of a decompiler session.
//
//	Stopped -> Starting -> Running -> Stopping -> Stopped
//	                       Running -> Crashed  -> Stopped
type SessionState uint8

const (
	// StateStopped means no engine process exists.
	StateStopped SessionState = iota
	// StateStarting means a process was spawned and readiness is pending.
	StateStarting
	// StateRunning means the engine accepts requests.
	StateRunning
	// StateStopping means termination is in progress.
	StateStopping
	// StateCrashed means the process exited without being asked to.
	StateCrashed
)

func (s SessionState) String() string {
	switch s {
	case StateStopped:
		return "stopped"
	case StateStarting:
		return "starting"
	case StateRunning:
		return "running"
	case StateStopping:
		return "stopping"
	case StateCrashed:
		return "crashed"
	default:
		return "unknown"
	}
}
