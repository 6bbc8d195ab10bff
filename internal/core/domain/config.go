package domain

import "time"

const (
	// DefaultEngineExecutable is the engine binary looked up on PATH when none is configured.
	DefaultEngineExecutable = "ilspy-engine"

	// DefaultStartupTimeout bounds the wait for the engine's ready event.
	DefaultStartupTimeout = 10 * time.Second

	// DefaultRequestTimeout bounds the wait for a single response.
	DefaultRequestTimeout = 30 * time.Second

	// DefaultStopGracePeriod is how long a stopping engine may take to exit before it is killed.
	DefaultStopGracePeriod = 2 * time.Second
)

// EngineConfig describes how to launch the decompiler engine.
type EngineConfig struct {
	// Path is the engine executable, resolved once when the config is loaded.
	Path            string
	Args            []string
	Env             []string
	StartupTimeout  time.Duration
	RequestTimeout  time.Duration
	StopGracePeriod time.Duration
}

// LogConfig holds logging switches.
type LogConfig struct {
	JSON    bool
	Verbose bool
}

// Config is the resolved ilview configuration.
type Config struct {
	// Source is the file the config was read from, empty when defaults are used.
	Source   string
	Language Language
	Watch    bool
	Engine   EngineConfig
	Log      LogConfig
}

// DefaultConfig returns the configuration used when no config file exists.
func DefaultConfig() *Config {
	return &Config{
		Language: DefaultLanguage,
		Engine: EngineConfig{
			Path:            DefaultEngineExecutable,
			StartupTimeout:  DefaultStartupTimeout,
			RequestTimeout:  DefaultRequestTimeout,
			StopGracePeriod: DefaultStopGracePeriod,
		},
	}
}
