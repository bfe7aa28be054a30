// Package models defines the server-side persistence shapes.
package models

import "time"

// Note is one synced note document, deduplicated by ClientId.
type Note struct {
	ClientId  string    `json:"clientId"`
	Text      string    `json:"text"`
	Timestamp int64     `json:"timestamp"`
	SavedAt   time.Time `json:"savedAt"`
}

// SubscriptionKeys are the encryption credentials of a push subscription.
type SubscriptionKeys struct {
	P256dh string `json:"p256dh"`
	Auth   string `json:"auth"`
}

// Subscription is a stored push subscription, keyed by endpoint.
type Subscription struct {
	Endpoint     string           `json:"endpoint"`
	Keys         SubscriptionKeys `json:"keys"`
	UserName     string           `json:"userName"`
	Preferences  []string         `json:"preferences"`
	SubscribedAt time.Time        `json:"subscribedAt"`
}
