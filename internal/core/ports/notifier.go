package ports

import (
	"context"

	"go.trai.ch/aqtcache/internal/core/domain"
)

// Notifier displays notifications to the user.
//
//go:generate go run go.uber.org/mock/mockgen -source=notifier.go -destination=mocks/mock_notifier.go -package=mocks
type Notifier interface {
	// Show displays the notification and returns it with its assigned id.
	Show(ctx context.Context, n domain.Notification) (domain.Notification, error)

	// Close dismisses the notification and returns it.
	Close(ctx context.Context, id string) (domain.Notification, error)

	// List returns the notifications currently displayed.
	List(ctx context.Context) []domain.Notification
}
