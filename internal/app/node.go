package app

import (
	"context"

	"github.com/grindlemire/graft"

	"go.trai.ch/ilview/internal/adapters/config"     //nolint:depguard // Wired in app layer
	"go.trai.ch/ilview/internal/adapters/decompiler" //nolint:depguard // Wired in app layer
	"go.trai.ch/ilview/internal/adapters/fs"         //nolint:depguard // Wired in app layer
	"go.trai.ch/ilview/internal/adapters/logger"     //nolint:depguard // Wired in app layer
	"go.trai.ch/ilview/internal/adapters/watcher"    //nolint:depguard // Wired in app layer
	"go.trai.ch/ilview/internal/core/ports"
)

const (
	// AppNodeID is the unique identifier for the main App Graft node.
	AppNodeID graft.ID = "app.main"
	// ComponentsNodeID is the unique identifier for the App components Graft node.
	ComponentsNodeID graft.ID = "app.components"
)

func init() {
	graft.Register(graft.Node[*App]{
		ID:        AppNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			config.NodeID,
			decompiler.NodeID,
			fs.FinderNodeID,
			watcher.WatcherNodeID,
			watcher.FingerprintsNodeID,
			logger.NodeID,
		},
		Run: runAppNode,
	})

	graft.Register(graft.Node[*Components]{
		ID:        ComponentsNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			AppNodeID,
			logger.NodeID,
		},
		Run: func(ctx context.Context) (*Components, error) {
			app, err := graft.Dep[*App](ctx)
			if err != nil {
				return nil, err
			}

			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}

			return &Components{App: app, Logger: log}, nil
		},
	})
}

func runAppNode(ctx context.Context) (*App, error) {
	loader, err := graft.Dep[ports.ConfigLoader](ctx)
	if err != nil {
		return nil, err
	}

	factory, err := graft.Dep[ports.DecompilerFactory](ctx)
	if err != nil {
		return nil, err
	}

	finder, err := graft.Dep[ports.AssemblyFinder](ctx)
	if err != nil {
		return nil, err
	}

	w, err := graft.Dep[ports.Watcher](ctx)
	if err != nil {
		return nil, err
	}

	fingerprints, err := graft.Dep[*watcher.Fingerprints](ctx)
	if err != nil {
		return nil, err
	}

	log, err := graft.Dep[ports.Logger](ctx)
	if err != nil {
		return nil, err
	}

	return New(loader, factory, finder, w, fingerprints, log), nil
}
