package domain

import "net/http"

// EventKind identifies an event delivered to the controller by its host.
type EventKind string

const (
	// EventInstall asks a new controller to populate its static partition.
	EventInstall EventKind = "install"
	// EventActivate asks an installed controller to take over.
	EventActivate EventKind = "activate"
	// EventFetch carries an intercepted request.
	EventFetch EventKind = "fetch"
	// EventMessage carries a control message from a page.
	EventMessage EventKind = "message"
	// EventSync carries a background-sync tag.
	EventSync EventKind = "sync"
	// EventPush carries a push payload.
	EventPush EventKind = "push"
	// EventNotificationClick carries the id of a clicked notification.
	EventNotificationClick EventKind = "notificationclick"
)

// MessageSkipWaiting is the control message that activates a waiting controller.
const MessageSkipWaiting = "SKIP_WAITING"

// Message is a control message posted by a page.
type Message struct {
	Type string `json:"type"`
}

// Event is a single unit of work for the controller.
// Only the fields relevant to Kind are set.
type Event struct {
	Kind           EventKind
	Generation     *Generation
	Request        *http.Request
	Message        Message
	Tag            string
	Payload        []byte
	NotificationID string
}

// Result is the outcome of dispatching an event.
// Response is nil unless a fetch event was handled by a controller.
type Result struct {
	Response     *http.Response
	Handled      bool
	Strategy     Strategy
	Source       Source
	Notification *Notification
	Client       *Client
}

// Client is a page controlled, or controllable, by the controller.
type Client struct {
	ID         string `json:"id"`
	URL        string `json:"url"`
	Focused    bool   `json:"focused"`
	Controller string `json:"controller,omitzero"`
}

// ControllerStatus describes one controller held by the registration.
type ControllerStatus struct {
	Version          string `json:"version"`
	State            State  `json:"state"`
	StaticPartition  string `json:"static_partition"`
	RuntimePartition string `json:"runtime_partition"`
}

// RegistrationStatus describes the controllers currently registered.
type RegistrationStatus struct {
	Active  *ControllerStatus `json:"active,omitzero"`
	Waiting *ControllerStatus `json:"waiting,omitzero"`
}
