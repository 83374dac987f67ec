package worker

import (
	"context"

	"go.trai.ch/aqtcache/internal/core/domain"
	"go.trai.ch/zerr"
)

// HandleSync records a background-sync request. There is no submission queue;
// the tag is only logged.
func (c *Controller) HandleSync(ctx context.Context, tag string) error {
	if err := c.ready(ctx); err != nil {
		return err
	}
	c.deps.Logger.Info("background sync requested: " + tag)
	return nil
}

// HandlePush shows a notification built from the push payload.
// A malformed payload is reported as a warning and the defaults are shown.
func (c *Controller) HandlePush(ctx context.Context, payload []byte) (domain.Notification, error) {
	if err := c.ready(ctx); err != nil {
		return domain.Notification{}, err
	}

	n, err := domain.ParsePushPayload(payload)
	if err != nil {
		c.deps.Logger.Warn(err.Error())
	}
	if c.deps.Notifier == nil {
		return n, nil
	}
	return c.deps.Notifier.Show(ctx, n)
}

// HandleNotificationClick closes the notification and brings its target to
// the front: an open client already at the target URL is focused, otherwise
// a new window is opened.
func (c *Controller) HandleNotificationClick(ctx context.Context, id string) (domain.Client, error) {
	if err := c.ready(ctx); err != nil {
		return domain.Client{}, err
	}
	if c.deps.Notifier == nil || c.deps.Clients == nil {
		return domain.Client{}, zerr.With(domain.ErrNotificationNotFound, "id", id)
	}

	n, err := c.deps.Notifier.Close(ctx, id)
	if err != nil {
		return domain.Client{}, err
	}

	target := n.URL
	if target == "" {
		target = domain.DefaultNotificationURL
	}
	targetURL := c.gen.Resolve(target).String()

	for _, client := range c.deps.Clients.MatchAll(ctx) {
		if client.URL == targetURL || client.URL == target {
			return c.deps.Clients.Focus(ctx, client.ID)
		}
	}
	return c.deps.Clients.OpenWindow(ctx, targetURL)
}
