package telemetry

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/aqtcache/internal/adapters/logger"
	"go.trai.ch/aqtcache/internal/core/ports"
)

// ProviderNodeID is the unique identifier for the tracer provider Graft node.
const ProviderNodeID graft.ID = "adapter.telemetry.provider"

// TracerNodeID is the unique identifier for the Telemetry adapter Graft node.
const TracerNodeID graft.ID = "adapter.telemetry"

func init() {
	graft.Register(graft.Node[*Provider]{
		ID:        ProviderNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{logger.NodeID},
		Run: func(ctx context.Context) (*Provider, error) {
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			return NewProvider(log), nil
		},
	})

	graft.Register(graft.Node[ports.Tracer]{
		ID:        TracerNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{ProviderNodeID},
		Run: func(ctx context.Context) (ports.Tracer, error) {
			p, err := graft.Dep[*Provider](ctx)
			if err != nil {
				return nil, err
			}
			return p.Tracer(), nil
		},
	})
}
