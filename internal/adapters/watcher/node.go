package watcher

import (
	"context"
	"time"

	"github.com/grindlemire/graft"

	"go.trai.ch/ilview/internal/adapters/fs"
	"go.trai.ch/ilview/internal/adapters/logger"
	"go.trai.ch/ilview/internal/core/ports"
)

const (
	// WatcherNodeID is the unique identifier for the file watcher Graft node.
	WatcherNodeID graft.ID = "adapter.watcher"
	// FingerprintsNodeID is the unique identifier for the fingerprint cache Graft node.
	FingerprintsNodeID graft.ID = "adapter.fingerprints"
)

// DefaultDebounceWindow is the quiet period before a batch of changes is acted on.
const DefaultDebounceWindow = 250 * time.Millisecond

func init() {
	graft.Register(graft.Node[ports.Watcher]{
		ID:        WatcherNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{logger.NodeID},
		Run: func(ctx context.Context) (ports.Watcher, error) {
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			return NewWatcher(log)
		},
	})

	graft.Register(graft.Node[*Fingerprints]{
		ID:        FingerprintsNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{fs.HasherNodeID},
		Run: func(ctx context.Context) (*Fingerprints, error) {
			hasher, err := graft.Dep[ports.Fingerprinter](ctx)
			if err != nil {
				return nil, err
			}
			return NewFingerprints(hasher), nil
		},
	})
}
