package domain

import (
	"bytes"
	"encoding/json"

	"go.trai.ch/zerr"
)

const (
	// DefaultNotificationTitle is used when a push payload has no title.
	DefaultNotificationTitle = "AQT Journal"
	// DefaultNotificationBody is used when a push payload has no body.
	DefaultNotificationBody = "You have a new update"
	// DefaultNotificationIcon is used when a push payload has no icon.
	DefaultNotificationIcon = "/icon-192.png"
	// DefaultNotificationURL is opened when a notification without a target is clicked.
	DefaultNotificationURL = "/"
)

// PushPayload is the JSON document delivered with a push event.
// Every field is optional.
type PushPayload struct {
	Title *string `json:"title"`
	Body  *string `json:"body"`
	Icon  *string `json:"icon"`
	URL   *string `json:"url"`
}

// Notification is a notification shown to the user.
type Notification struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Body  string `json:"body"`
	Icon  string `json:"icon"`
	URL   string `json:"url"`
}

// ParsePushPayload decodes a push payload into a notification.
// Missing or empty fields take their declared defaults. A malformed payload
// still yields a fully defaulted notification together with ErrInvalidPushPayload,
// so callers can report the problem without failing the event.
func ParsePushPayload(data []byte) (Notification, error) {
	var payload PushPayload
	var parseErr error
	if len(bytes.TrimSpace(data)) > 0 {
		if err := json.Unmarshal(data, &payload); err != nil {
			payload = PushPayload{}
			parseErr = zerr.Wrap(err, ErrInvalidPushPayload.Error())
		}
	}

	return Notification{
		Title: orDefault(payload.Title, DefaultNotificationTitle),
		Body:  orDefault(payload.Body, DefaultNotificationBody),
		Icon:  orDefault(payload.Icon, DefaultNotificationIcon),
		URL:   orDefault(payload.URL, DefaultNotificationURL),
	}, parseErr
}

func orDefault(v *string, fallback string) string {
	if v == nil || *v == "" {
		return fallback
	}
	return *v
}
