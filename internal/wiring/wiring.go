// Package wiring registers all Graft nodes for the application.
package wiring

import (
	// Register adapter nodes.
	_ "go.trai.ch/ilview/internal/adapters/config"
	_ "go.trai.ch/ilview/internal/adapters/decompiler"
	_ "go.trai.ch/ilview/internal/adapters/fs"
	_ "go.trai.ch/ilview/internal/adapters/logger"
	_ "go.trai.ch/ilview/internal/adapters/telemetry"
	_ "go.trai.ch/ilview/internal/adapters/watcher"
	// Register app nodes.
	_ "go.trai.ch/ilview/internal/app"
)
