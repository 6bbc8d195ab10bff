package ports

import "go.trai.ch/ilview/internal/core/domain"

// ConfigLoader defines the interface for loading the ilview configuration.
//
//go:generate mockgen -source=config_loader.go -destination=mocks/mock_config_loader.go -package=mocks
type ConfigLoader interface {
	// Load reads the configuration. An explicit path wins; otherwise the loader
	// searches cwd and its parents for ilview.yaml and falls back to defaults.
	Load(cwd, explicitPath string) (*domain.Config, error)
}
