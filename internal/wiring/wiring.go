// Package wiring registers all Graft nodes for the application.
package wiring

import (
	// Register adapter nodes.
	_ "go.trai.ch/harvest/internal/adapters/config"
	_ "go.trai.ch/harvest/internal/adapters/fs"
	_ "go.trai.ch/harvest/internal/adapters/git"
	_ "go.trai.ch/harvest/internal/adapters/logger"
	_ "go.trai.ch/harvest/internal/adapters/shell"
	// Register app nodes.
	_ "go.trai.ch/harvest/internal/app"
)
