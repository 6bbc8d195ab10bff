// Package config provides the configuration loader for ilview.
package config

import (
	"bytes"
	"errors"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"

	"go.trai.ch/ilview/internal/core/domain"
	"go.trai.ch/ilview/internal/core/ports"
)

// Loader implements ports.ConfigLoader using ilview.yaml.
type Loader struct {
	Logger ports.Logger
}

var _ ports.ConfigLoader = (*Loader)(nil)

// NewLoader creates a new Loader with the given logger.
func NewLoader(logger ports.Logger) *Loader {
	return &Loader{Logger: logger}
}

// Load reads explicitPath when given, otherwise the nearest ilview.yaml at or
// above cwd. Without a file the defaults are returned.
func (l *Loader) Load(cwd, explicitPath string) (*domain.Config, error) {
	configPath := explicitPath
	if configPath != "" && !filepath.IsAbs(configPath) {
		configPath = filepath.Join(cwd, configPath)
	}
	if configPath == "" {
		configPath = findConfigfile(cwd)
	}
	if configPath == "" {
		l.Logger.Debug("no " + domain.ConfigFileName + " found, using defaults")
		return domain.DefaultConfig(), nil
	}

	var file Configfile
	if err := readAndUnmarshalYAML(configPath, &file); err != nil {
		return nil, err
	}

	cfg, err := fromConfigfile(&file, filepath.Dir(configPath))
	if err != nil {
		return nil, zerr.With(err, "path", configPath)
	}
	cfg.Source = configPath

	l.Logger.Debug("loaded config from " + configPath)
	return cfg, nil
}

// findConfigfile walks from cwd to the filesystem root.
func findConfigfile(cwd string) string {
	currentDir := cwd
	for {
		candidate := filepath.Join(currentDir, domain.ConfigFileName)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			return ""
		}
		currentDir = parentDir
	}
}

func readAndUnmarshalYAML[T any](configPath string, target *T) error {
	// #nosec G304 -- configPath is the user's own config file
	content, err := os.ReadFile(configPath)
	if err != nil {
		return zerr.With(zerr.Wrap(domain.ErrConfigReadFailed, err.Error()), "path", configPath)
	}

	dec := yaml.NewDecoder(bytes.NewReader(content))
	dec.KnownFields(true)
	if err := dec.Decode(target); err != nil && !errors.Is(err, io.EOF) {
		return zerr.With(zerr.Wrap(domain.ErrConfigParseFailed, err.Error()), "path", configPath)
	}

	return nil
}

func fromConfigfile(file *Configfile, baseDir string) (*domain.Config, error) {
	cfg := domain.DefaultConfig()
	cfg.Watch = file.Watch
	cfg.Log = domain.LogConfig{JSON: file.Log.JSON, Verbose: file.Log.Verbose}

	lang, err := domain.ParseLanguage(file.Language)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(domain.ErrConfigParseFailed, "invalid language"), "language", file.Language)
	}
	cfg.Language = lang

	if file.Engine.Path != "" {
		cfg.Engine.Path = file.Engine.Path
	}
	cfg.Engine.Path = ResolveEnginePath(cfg.Engine.Path, baseDir)
	cfg.Engine.Args = file.Engine.Args
	cfg.Engine.Env = envList(file.Engine.Env)

	durations := []struct {
		key   string
		value string
		dst   *time.Duration
	}{
		{"engine.startup_timeout", file.Engine.StartupTimeout, &cfg.Engine.StartupTimeout},
		{"engine.request_timeout", file.Engine.RequestTimeout, &cfg.Engine.RequestTimeout},
		{"engine.stop_grace_period", file.Engine.StopGracePeriod, &cfg.Engine.StopGracePeriod},
	}
	for _, d := range durations {
		if d.value == "" {
			continue
		}
		parsed, err := time.ParseDuration(d.value)
		if err != nil || parsed <= 0 {
			derr := zerr.With(zerr.Wrap(domain.ErrConfigParseFailed, "invalid duration"), "field", d.key)
			return nil, zerr.With(derr, "value", d.value)
		}
		*d.dst = parsed
	}

	return cfg, nil
}

// ResolveEnginePath resolves the engine executable once. Paths containing a
// separator are taken relative to baseDir; bare names are looked up on PATH
// and kept as given when the lookup fails, so the failure surfaces at startup.
func ResolveEnginePath(path, baseDir string) string {
	if path == "" {
		return path
	}
	if strings.ContainsRune(path, '/') || strings.ContainsRune(path, filepath.Separator) {
		if filepath.IsAbs(path) || baseDir == "" {
			return filepath.Clean(path)
		}
		return filepath.Join(baseDir, path)
	}
	if resolved, err := exec.LookPath(path); err == nil {
		return resolved
	}
	return path
}

func envList(env map[string]string) []string {
	if len(env) == 0 {
		return nil
	}
	list := make([]string, 0, len(env))
	for k, v := range env {
		list = append(list, k+"="+v)
	}
	sort.Strings(list)
	return list
}
