package models

import "time"

// Notification is one received push notification, kept as local history.
// Records are created only by the worker's push handler, marked read on
// acknowledgment and cleared in bulk by explicit user action.
type Notification struct {
	Id         int64
	Title      string
	Body       string
	Data       map[string]any
	ReceivedAt time.Time
	Read       bool
}
