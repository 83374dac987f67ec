package ports

import (
	"context"

	"go.trai.ch/aqtcache/internal/core/domain"
)

// Clients tracks the pages served through the controller.
//
//go:generate go run go.uber.org/mock/mockgen -source=clients.go -destination=mocks/mock_clients.go -package=mocks
type Clients interface {
	// Observe records that a page with the given id is open at url.
	Observe(ctx context.Context, id, url string) domain.Client

	// MatchAll returns every known client.
	MatchAll(ctx context.Context) []domain.Client

	// Claim hands every known client to the controller of the given version.
	Claim(ctx context.Context, version string) error

	// Focus focuses the client with the given id.
	Focus(ctx context.Context, id string) (domain.Client, error)

	// OpenWindow opens a new client at url.
	OpenWindow(ctx context.Context, url string) (domain.Client, error)

	// Forget drops the client with the given id, as when its page closes.
	Forget(ctx context.Context, id string) error
}
