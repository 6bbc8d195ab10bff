// Package ports defines the core interfaces for the application.
package ports

import (
	"context"

	"go.trai.ch/ilview/internal/core/domain"
)

// Decompiler is a session with an external decompiler engine.
//
//go:generate mockgen -source=decompiler.go -destination=mocks/mock_decompiler.go -package=mocks
type Decompiler interface {
	// EnsureRunning restarts the engine if it is not running. It is idempotent.
	EnsureRunning(ctx context.Context) error

	// IsRunning reports whether an engine process is alive.
	IsRunning() bool

	// Restart terminates any running engine and starts a new one.
	Restart(ctx context.Context) error

	// Stop terminates the engine. Failures are logged, never returned.
	Stop()

	// State returns the current lifecycle state.
	State() domain.SessionState

	// Generation identifies the current engine process. It changes on every
	// successful start and is empty while no engine is running.
	Generation() string

	// PID returns the engine's process id, or zero while no engine is running.
	PID() int

	// LoadAssembly ensures the engine is running and loads the assembly at path.
	LoadAssembly(ctx context.Context, path string) (domain.AssemblyDescriptor, error)

	// UnloadAssembly asks a running engine to forget an assembly.
	UnloadAssembly(ctx context.Context, path string) error

	// ListChildren enumerates the children of a member. Leaves yield an empty slice.
	ListChildren(ctx context.Context, key domain.MemberKey) ([]domain.ChildDescriptor, error)

	// Decompile renders a member in the given language.
	Decompile(ctx context.Context, key domain.MemberKey, language domain.Language) (string, error)
}

// DecompilerFactory creates decompiler sessions from engine settings.
type DecompilerFactory interface {
	// New creates a session. The engine is not started until first use.
	New(cfg domain.EngineConfig) Decompiler
}
