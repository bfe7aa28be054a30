// Package webpush dispatches encrypted push messages to subscription
// endpoints using the Web Push protocol with VAPID authorization.
package webpush

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	wp "github.com/SherClockHolmes/webpush-go"

	"github.com/notiapp/notiapp/internal/common"
	"github.com/notiapp/notiapp/internal/metrics"
	"github.com/notiapp/notiapp/internal/server/models"
)

// Payload is the notification document encrypted into the push message. The
// client merges it over its display defaults.
type Payload struct {
	Title string         `json:"title"`
	Body  string         `json:"body"`
	Icon  string         `json:"icon,omitempty"`
	Badge string         `json:"badge,omitempty"`
	Tag   string         `json:"tag,omitempty"`
	Data  map[string]any `json:"data,omitempty"`
}

// Sender pushes payloads to stored subscriptions.
type Sender struct {
	publicKey  string
	privateKey string
	subject    string
}

func NewSender(publicKey, privateKey, subject string) *Sender {
	return &Sender{publicKey: publicKey, privateKey: privateKey, subject: subject}
}

// PublicKey returns the VAPID public key clients subscribe with.
func (s *Sender) PublicKey() string { return s.publicKey }

// Send encrypts and delivers one payload. A 404 or 410 from the push
// service means the endpoint is permanently dead and is reported as
// common.ErrSubscriptionExpired so the caller can drop the subscription.
func (s *Sender) Send(ctx context.Context, sub *models.Subscription, p *Payload) error {
	body, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to encode payload: %w", err)
	}

	resp, err := wp.SendNotificationWithContext(ctx, body, &wp.Subscription{
		Endpoint: sub.Endpoint,
		Keys: wp.Keys{
			P256dh: sub.Keys.P256dh,
			Auth:   sub.Keys.Auth,
		},
	}, &wp.Options{
		Subscriber:      s.subject,
		VAPIDPublicKey:  s.publicKey,
		VAPIDPrivateKey: s.privateKey,
		TTL:             60,
	})
	if err != nil {
		metrics.PushSendsTotal.WithLabelValues("error").Inc()
		return fmt.Errorf("push delivery failed: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone:
		metrics.PushSendsTotal.WithLabelValues("expired").Inc()
		return fmt.Errorf("%w: endpoint returned %d", common.ErrSubscriptionExpired, resp.StatusCode)
	case resp.StatusCode >= 400:
		metrics.PushSendsTotal.WithLabelValues("failure").Inc()
		return fmt.Errorf("%w: push service returned %d", common.ErrRemoteFailure, resp.StatusCode)
	}

	metrics.PushSendsTotal.WithLabelValues("success").Inc()
	return nil
}
