package config

// Configfile is the structure of ilview.yaml.
type Configfile struct {
	Language string    `yaml:"language"`
	Watch    bool      `yaml:"watch"`
	Engine   EngineDTO `yaml:"engine"`
	Log      LogDTO    `yaml:"log"`
}

// EngineDTO describes the decompiler engine. Durations use Go syntax ("10s").
type EngineDTO struct {
	Path            string            `yaml:"path"`
	Args            []string          `yaml:"args"`
	Env             map[string]string `yaml:"env"`
	StartupTimeout  string            `yaml:"startup_timeout"`
	RequestTimeout  string            `yaml:"request_timeout"`
	StopGracePeriod string            `yaml:"stop_grace_period"`
}

// LogDTO holds logging switches.
type LogDTO struct {
	JSON    bool `yaml:"json"`
	Verbose bool `yaml:"verbose"`
}
