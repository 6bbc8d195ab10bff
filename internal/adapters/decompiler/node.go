package decompiler

import (
	"context"

	"github.com/grindlemire/graft"
	"go.opentelemetry.io/otel/trace"

	"go.trai.ch/ilview/internal/adapters/logger"
	"go.trai.ch/ilview/internal/adapters/telemetry"
	"go.trai.ch/ilview/internal/core/domain"
	"go.trai.ch/ilview/internal/core/ports"
)

// NodeID is the unique identifier for the decompiler factory Graft node.
const NodeID graft.ID = "adapter.decompiler"

// Factory creates sessions that share a logger and tracer provider.
type Factory struct {
	logger ports.Logger
	tp     trace.TracerProvider
}

var _ ports.DecompilerFactory = (*Factory)(nil)

// NewFactory creates a Factory. A nil tp uses the global provider.
func NewFactory(logger ports.Logger, tp trace.TracerProvider) *Factory {
	return &Factory{logger: logger, tp: tp}
}

// New creates a session for cfg. The engine starts on first use.
func (f *Factory) New(cfg domain.EngineConfig) ports.Decompiler {
	var opts []Option
	if f.tp != nil {
		opts = append(opts, WithTracerProvider(f.tp))
	}
	return NewSession(cfg, f.logger, opts...)
}

func init() {
	graft.Register(graft.Node[ports.DecompilerFactory]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{logger.NodeID, telemetry.NodeID},
		Run: func(ctx context.Context) (ports.DecompilerFactory, error) {
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			tp, err := graft.Dep[trace.TracerProvider](ctx)
			if err != nil {
				return nil, err
			}
			return NewFactory(log, tp), nil
		},
	})
}
