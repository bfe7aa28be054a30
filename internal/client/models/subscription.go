package models

import "time"

// SubscriptionID is the fixed key of the singleton subscription record,
// mirroring the browser's own single push subscription.
const SubscriptionID = "current"

// SubscriptionKeys are the credentials issued together with the push
// endpoint.
type SubscriptionKeys struct {
	P256dh string `json:"p256dh"`
	Auth   string `json:"auth"`
}

// Subscription is the locally stored push subscription plus the user data
// attached to it.
type Subscription struct {
	Id          string
	Endpoint    string
	Keys        SubscriptionKeys
	UserName    string
	Preferences []string
	CreatedAt   time.Time
}
