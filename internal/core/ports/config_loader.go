package ports

import "go.trai.ch/harvest/internal/core/domain"

// ConfigLoader defines the interface for loading the batch configuration.
//
//go:generate go run go.uber.org/mock/mockgen -source=config_loader.go -destination=mocks/mock_config_loader.go -package=mocks
type ConfigLoader interface {
	// Load reads the configuration file at path, relative to baseDir unless absolute.
	// A missing file yields the default configuration rooted at baseDir.
	Load(baseDir, path string) (*domain.Config, error)
}
