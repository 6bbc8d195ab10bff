package domain

import "go.trai.ch/zerr"

var (
	// ErrStartupFailure is returned when the decompiler engine cannot be started or never signals readiness.
	ErrStartupFailure = zerr.New("decompiler engine failed to start")

	// ErrEngineUnavailable is returned when a request is sent while no engine process is running,
	// or when the process exits or is restarted while the request is in flight.
	ErrEngineUnavailable = zerr.New("decompiler engine is not running")

	// ErrTimeout is returned when the engine does not answer a request within the request timeout.
	ErrTimeout = zerr.New("decompiler engine did not respond in time")

	// ErrMalformedResponse is returned when an engine message cannot be parsed.
	ErrMalformedResponse = zerr.New("malformed response from decompiler engine")

	// ErrLoadFailure is returned when the engine rejects an assembly.
	ErrLoadFailure = zerr.New("failed to load assembly")

	// ErrDecompileFailure is returned when the engine cannot enumerate or decompile a member.
	ErrDecompileFailure = zerr.New("failed to decompile member")

	// ErrNodeDetached is returned when a node no longer belongs to the cache tree.
	ErrNodeDetached = zerr.New("node is no longer part of the tree")

	// ErrAssemblyUnreadable is returned when an assembly path cannot be read before it is sent to the engine.
	ErrAssemblyUnreadable = zerr.New("cannot read the file")

	// ErrMemberNotFound is returned when a display-name path does not resolve to a node.
	ErrMemberNotFound = zerr.New("member not found")

	// ErrInvalidLanguage is returned when a language name is not recognized.
	ErrInvalidLanguage = zerr.New("invalid language, expected 'csharp' or 'il'")

	// ErrConfigReadFailed is returned when the config file cannot be read.
	ErrConfigReadFailed = zerr.New("failed to read config file")

	// ErrConfigParseFailed is returned when the config file cannot be parsed.
	ErrConfigParseFailed = zerr.New("failed to parse config file")

	// ErrWatchFailed is returned when the file watcher cannot be started.
	ErrWatchFailed = zerr.New("failed to watch assemblies")

	// ErrAssemblyNotLoaded is returned when a command names an assembly that is not in the tree.
	ErrAssemblyNotLoaded = zerr.New("assembly is not loaded")

	// ErrUnknownCommand is returned by the browse shell for input it does not understand.
	ErrUnknownCommand = zerr.New("unknown command, type 'help' for a list")
)
