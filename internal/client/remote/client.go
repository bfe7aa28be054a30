// Package remote is the client for the NotiApp API server. It carries the
// exact JSON contracts the sync engine and the push session manager depend
// on.
package remote

import (
	"context"

	"github.com/notiapp/notiapp/internal/client/models"
)

// Per-item dedup statuses returned by the batch sync endpoint. Both mean the
// remote store holds exactly one document for the clientId, so the local
// record may be marked synced either way.
const (
	StatusSynced        = "synced"
	StatusAlreadyExists = "already_exists"
)

// SaveResult is the response of POST /api/data/save.
type SaveResult struct {
	Success bool   `json:"success"`
	ID      string `json:"id"`
}

// SyncItem is one unsynced note in a batch sync request.
type SyncItem struct {
	ClientId  string `json:"clientId"`
	Text      string `json:"text"`
	Timestamp int64  `json:"timestamp"`
}

// SyncItemResult reports the dedup outcome for one clientId.
type SyncItemResult struct {
	ClientId string `json:"clientId"`
	Status   string `json:"status"`
}

// SyncResult is the response of POST /api/data/sync.
type SyncResult struct {
	Success bool             `json:"success"`
	Synced  int              `json:"synced"`
	Results []SyncItemResult `json:"results"`
}

// WebSubscription is the push credential sent to the server on subscribe.
type WebSubscription struct {
	Endpoint string                  `json:"endpoint"`
	Keys     models.SubscriptionKeys `json:"keys"`
}

// UserData is the personalization payload attached to a subscription.
type UserData struct {
	UserName     string   `json:"userName"`
	Preferences  []string `json:"preferences"`
	SubscribedAt string   `json:"subscribedAt,omitempty"`
	UserAgent    string   `json:"userAgent,omitempty"`
	Language     string   `json:"language,omitempty"`
}

// Notification is the display payload for POST /api/push/send.
type Notification struct {
	Title string         `json:"title"`
	Body  string         `json:"body"`
	Icon  string         `json:"icon,omitempty"`
	Badge string         `json:"badge,omitempty"`
	Tag   string         `json:"tag,omitempty"`
	Data  map[string]any `json:"data,omitempty"`
}

// Client talks to the remote API. All calls are best-effort from the
// caller's point of view: a transport failure defers work, it never loses
// local state.
type Client interface {
	// SaveNote upserts a single note keyed by clientId.
	SaveNote(ctx context.Context, clientID, text string) (*SaveResult, error)

	// SyncNotes batch-upserts unsynced notes and reports a per-item dedup
	// status.
	SyncNotes(ctx context.Context, items []SyncItem) (*SyncResult, error)

	// Subscribe registers a push subscription with the server.
	Subscribe(ctx context.Context, sub WebSubscription, user UserData) error

	// Unsubscribe removes the subscription with the given endpoint.
	Unsubscribe(ctx context.Context, endpoint string) error

	// SendNotification asks the server to push a notification to endpoint.
	// Returns common.ErrSubscriptionExpired when the server reports the
	// endpoint dead (HTTP 410).
	SendNotification(ctx context.Context, endpoint string, n Notification) error

	// VAPIDPublicKey fetches the server's public VAPID key.
	VAPIDPublicKey(ctx context.Context) (string, error)

	// Ping probes server reachability.
	Ping(ctx context.Context) error
}
