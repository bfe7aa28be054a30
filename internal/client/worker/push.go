package worker

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/notiapp/notiapp/internal/metrics"
)

// PushAction is one button on a rendered notification.
type PushAction struct {
	Action string `json:"action"`
	Title  string `json:"title"`
}

// PushPayload is the structured form of an incoming push message, merged
// over display defaults.
type PushPayload struct {
	Title   string         `json:"title"`
	Body    string         `json:"body"`
	Icon    string         `json:"icon"`
	Badge   string         `json:"badge"`
	Tag     string         `json:"tag"`
	Data    map[string]any `json:"data"`
	Actions []PushAction   `json:"actions"`
}

func defaultPayload() PushPayload {
	return PushPayload{
		Title: "NotiApp",
		Body:  "You have a new notification",
		Icon:  "/icons/icon-192.svg",
		Badge: "/icons/icon-72.svg",
		Tag:   "notiapp-notification",
		Data:  map[string]any{},
		Actions: []PushAction{
			{Action: "open", Title: "Open"},
			{Action: "close", Title: "Close"},
		},
	}
}

// parsePushPayload merges the incoming payload over the defaults. A payload
// that is not valid JSON is treated as plain text and becomes the body.
func parsePushPayload(raw []byte) PushPayload {
	p := defaultPayload()
	if len(raw) == 0 {
		return p
	}

	var incoming PushPayload
	if err := json.Unmarshal(raw, &incoming); err != nil {
		p.Body = string(raw)
		return p
	}

	if incoming.Title != "" {
		p.Title = incoming.Title
	}
	if incoming.Body != "" {
		p.Body = incoming.Body
	}
	if incoming.Icon != "" {
		p.Icon = incoming.Icon
	}
	if incoming.Badge != "" {
		p.Badge = incoming.Badge
	}
	if incoming.Tag != "" {
		p.Tag = incoming.Tag
	}
	if incoming.Data != nil {
		p.Data = incoming.Data
	}
	if incoming.Actions != nil {
		p.Actions = incoming.Actions
	}
	return p
}

// HandlePush processes one push event. It must work with no page open:
// render the system notification first, then tell whatever pages exist to
// append the notification to their history. There is nothing to return to
// the push transport and no retry; the delivery was at-most-once.
func (w *Worker) HandlePush(ctx context.Context, raw []byte) {
	w.pending.Add(1)
	defer w.pending.Done()

	p := parsePushPayload(raw)

	if w.display != nil {
		if err := w.display.Show(ctx, p.Title, p); err != nil {
			w.log.Error(ctx, "failed to render notification", "err", err)
		} else {
			metrics.NotificationsShownTotal.Inc()
		}
	}

	w.hub.Broadcast(Message{
		Type: MsgNotificationReceived,
		Payload: map[string]any{
			"title":     p.Title,
			"body":      p.Body,
			"timestamp": time.Now().UnixMilli(),
			"data":      p.Data,
		},
	})
}

// HandleNotificationClick reacts to the user tapping a rendered
// notification. The "close" action is a no-op. Otherwise the first attached
// same-origin page gets focused and receives the payload; with no pages
// attached a new window is opened at the payload's target URL.
func (w *Worker) HandleNotificationClick(ctx context.Context, action string, data map[string]any) {
	if action == "close" {
		return
	}

	for _, c := range w.hub.Clients() {
		if !w.sameOrigin(c.URL()) {
			continue
		}
		if err := c.Send(Message{Type: MsgNotificationClicked, Payload: data}); err != nil {
			continue
		}
		if err := c.Focus(); err != nil {
			w.log.Warn(ctx, "failed to focus page", "err", err)
		}
		return
	}

	if w.opener == nil {
		return
	}
	url := "/"
	if u, ok := data["url"].(string); ok && u != "" {
		url = u
	}
	if err := w.opener.OpenWindow(url); err != nil {
		w.log.Warn(ctx, "failed to open window", "url", url, "err", err)
	}
}

func (w *Worker) sameOrigin(url string) bool {
	// the hub only ever holds same-app pages, but a page may have
	// navigated away since it registered
	return url == "" || w.origin == "" || strings.Contains(url, w.origin)
}
