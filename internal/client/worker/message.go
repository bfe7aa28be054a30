// Package worker is the client's network mediator, the counterpart of a
// browser service worker. It runs as an independent execution context that
// shares no memory with the pages it controls: everything crosses the
// boundary as an explicit Message. It intercepts outbound requests as an
// http.RoundTripper, owns the two cache generations, and receives push
// events regardless of whether any page is open.
package worker

// MessageType tags a message crossing the page/worker boundary. There is no
// reply correlation beyond the type tag.
type MessageType string

const (
	MsgNotificationReceived MessageType = "NOTIFICATION_RECEIVED"
	MsgNotificationClicked  MessageType = "NOTIFICATION_CLICKED"
	MsgSyncComplete         MessageType = "SYNC_COMPLETE"
	MsgSkipWaiting          MessageType = "SKIP_WAITING"
	MsgCacheURLs            MessageType = "CACHE_URLS"
	MsgClearCache           MessageType = "CLEAR_CACHE"
)

// Message is the unit of page/worker communication. Fire-and-forget: senders
// never wait for a reply.
type Message struct {
	Type    MessageType    `json:"type"`
	Payload map[string]any `json:"payload,omitempty"`
}
