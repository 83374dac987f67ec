package notify

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/aqtcache/internal/adapters/logger"
	"go.trai.ch/aqtcache/internal/core/ports"
)

// NodeID is the unique identifier for the notification center Graft node.
const NodeID graft.ID = "adapter.notify"

func init() {
	graft.Register(graft.Node[*Center]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{logger.NodeID},
		Run: func(ctx context.Context) (*Center, error) {
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			return NewCenter(log), nil
		},
	})
}
