// Package notify keeps the notifications shown to the user.
package notify

import (
	"context"
	"slices"
	"sync"

	"github.com/google/uuid"
	"go.trai.ch/aqtcache/internal/core/domain"
	"go.trai.ch/aqtcache/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.Notifier = (*Center)(nil)

// Center is an in-memory ports.Notifier. Shown notifications stay listed
// until closed.
type Center struct {
	mu     sync.Mutex
	shown  []domain.Notification
	logger ports.Logger
}

// NewCenter creates an empty notification center. A non-nil logger receives
// one line per shown notification.
func NewCenter(logger ports.Logger) *Center {
	return &Center{logger: logger}
}

// Show displays n under a fresh id.
func (c *Center) Show(ctx context.Context, n domain.Notification) (domain.Notification, error) {
	if err := ctx.Err(); err != nil {
		return domain.Notification{}, err
	}
	n.ID = uuid.NewString()

	c.mu.Lock()
	c.shown = append(c.shown, n)
	c.mu.Unlock()

	if c.logger != nil {
		c.logger.Info("notification " + n.ID + ": " + n.Title + ": " + n.Body)
	}
	return n, nil
}

// Close dismisses the notification and returns it.
func (c *Center) Close(_ context.Context, id string) (domain.Notification, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	i := slices.IndexFunc(c.shown, func(n domain.Notification) bool { return n.ID == id })
	if i < 0 {
		return domain.Notification{}, errNotFound(id)
	}
	n := c.shown[i]
	c.shown = slices.Delete(c.shown, i, i+1)
	return n, nil
}

// List returns the notifications still displayed, oldest first.
func (c *Center) List(_ context.Context) []domain.Notification {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.shown)
}

func errNotFound(id string) error {
	return zerr.With(domain.ErrNotificationNotFound, "id", id)
}
