package app

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/aqtcache/internal/adapters/clients"   //nolint:depguard // Wired in app layer
	"go.trai.ch/aqtcache/internal/adapters/config"    //nolint:depguard // Wired in app layer
	"go.trai.ch/aqtcache/internal/adapters/logger"    //nolint:depguard // Wired in app layer
	"go.trai.ch/aqtcache/internal/adapters/metrics"   //nolint:depguard // Wired in app layer
	"go.trai.ch/aqtcache/internal/adapters/notify"    //nolint:depguard // Wired in app layer
	"go.trai.ch/aqtcache/internal/adapters/storage"   //nolint:depguard // Wired in app layer
	"go.trai.ch/aqtcache/internal/adapters/telemetry" //nolint:depguard // Wired in app layer
	"go.trai.ch/aqtcache/internal/adapters/watcher"   //nolint:depguard // Wired in app layer
	"go.trai.ch/aqtcache/internal/core/ports"
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
			storage.NodeID,
			logger.NodeID,
			telemetry.TracerNodeID,
			telemetry.ProviderNodeID,
			metrics.NodeID,
			clients.NodeID,
			notify.NodeID,
			watcher.NodeID,
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
			a, err := graft.Dep[*App](ctx)
			if err != nil {
				return nil, err
			}
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			return &Components{App: a, Logger: log}, nil
		},
	})
}

func runAppNode(ctx context.Context) (*App, error) {
	loader, err := graft.Dep[ports.ConfigLoader](ctx)
	if err != nil {
		return nil, err
	}
	opener, err := graft.Dep[ports.StorageOpener](ctx)
	if err != nil {
		return nil, err
	}
	log, err := graft.Dep[ports.Logger](ctx)
	if err != nil {
		return nil, err
	}
	tracer, err := graft.Dep[ports.Tracer](ctx)
	if err != nil {
		return nil, err
	}
	provider, err := graft.Dep[*telemetry.Provider](ctx)
	if err != nil {
		return nil, err
	}
	recorder, err := graft.Dep[*metrics.Recorder](ctx)
	if err != nil {
		return nil, err
	}
	registry, err := graft.Dep[*clients.Registry](ctx)
	if err != nil {
		return nil, err
	}
	center, err := graft.Dep[*notify.Center](ctx)
	if err != nil {
		return nil, err
	}
	w, err := graft.Dep[ports.Watcher](ctx)
	if err != nil {
		return nil, err
	}

	return New(loader, opener, log, tracer, recorder, registry, center, w, provider), nil
}
