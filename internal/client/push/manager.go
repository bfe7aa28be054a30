// Package push owns the push subscription lifecycle: subscribe,
// unsubscribe, status, and expiry cleanup. It bridges the platform's push
// service to both the remote store and the local subscription record.
package push

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/notiapp/notiapp/internal/client/models"
	"github.com/notiapp/notiapp/internal/client/remote"
	"github.com/notiapp/notiapp/internal/client/repositories/subscriptions"
	"github.com/notiapp/notiapp/internal/common"
	"github.com/notiapp/notiapp/internal/logging"
)

// Notification permission states, mirroring the platform's.
const (
	PermissionGranted = "granted"
	PermissionDenied  = "denied"
	PermissionDefault = "default"
)

// PlatformSubscription is the credential issued by the platform's push
// service.
type PlatformSubscription struct {
	Endpoint string
	Keys     models.SubscriptionKeys
}

// Platform abstracts the runtime's push capabilities so the manager can be
// driven by a real push service or a test double.
type Platform interface {
	// Supported reports whether push is available at all.
	Supported() bool

	// Permission returns the current notification permission state.
	Permission() string

	// RequestPermission prompts the user if needed and returns the
	// resulting state.
	RequestPermission(ctx context.Context) (string, error)

	// Subscribe creates a push subscription against the given VAPID key.
	Subscribe(ctx context.Context, vapidPublicKey string) (*PlatformSubscription, error)

	// Unsubscribe tears down the platform-level subscription.
	Unsubscribe(ctx context.Context) error

	// Current returns the existing subscription, or nil if there is none.
	Current(ctx context.Context) (*PlatformSubscription, error)
}

// UserData is the personalization attached to a subscription.
type UserData struct {
	UserName    string
	Preferences []string
}

// Status is the answer to "where does push stand right now".
type Status struct {
	Supported   bool
	Subscribed  bool
	Permission  string
	UserName    string
	Preferences []string
}

// Manager drives the subscription state machine.
type Manager struct {
	platform Platform
	remote   remote.Client
	subs     subscriptions.Repository
	log      logging.Logger

	mu      sync.Mutex
	current *PlatformSubscription
}

func NewManager(platform Platform, client remote.Client, repo subscriptions.Repository, log logging.Logger) *Manager {
	if log == nil {
		log = logging.NewDiscard()
	}
	return &Manager{platform: platform, remote: client, subs: repo, log: log}
}

// Init looks for an existing platform subscription and reports whether one
// was found. Errors while checking are logged, not fatal: the manager just
// starts unsubscribed.
func (m *Manager) Init(ctx context.Context) (bool, error) {
	if !m.platform.Supported() {
		m.log.Warn(ctx, "push notifications not supported")
		return false, nil
	}

	sub, err := m.platform.Current(ctx)
	if err != nil {
		m.log.Error(ctx, "failed to check existing subscription", "err", err)
		return false, nil
	}

	m.mu.Lock()
	m.current = sub
	m.mu.Unlock()
	return sub != nil, nil
}

// Subscribe creates a push subscription. Permission must end up granted;
// the platform subscribe must succeed; then the subscription is saved to
// the remote store (best-effort: failure is logged, a subscription must
// remain usable offline) and to the local store (must succeed, or the whole
// call fails).
func (m *Manager) Subscribe(ctx context.Context, user UserData) (*models.Subscription, error) {
	if !m.platform.Supported() {
		return nil, common.ErrUnsupported
	}

	perm, err := m.platform.RequestPermission(ctx)
	if err != nil {
		return nil, fmt.Errorf("permission request failed: %w", err)
	}
	if perm != PermissionGranted {
		return nil, fmt.Errorf("%w: permission is %q", common.ErrPermissionDenied, perm)
	}

	key, err := m.remote.VAPIDPublicKey(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch vapid key: %w", err)
	}

	ps, err := m.platform.Subscribe(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("platform subscribe rejected: %w", err)
	}

	if err := m.remote.Subscribe(ctx, remote.WebSubscription{Endpoint: ps.Endpoint, Keys: ps.Keys}, remote.UserData{
		UserName:     user.UserName,
		Preferences:  user.Preferences,
		SubscribedAt: time.Now().UTC().Format(time.RFC3339),
	}); err != nil {
		// not fatal: the subscription stays usable offline and the server
		// learns about it on a later subscribe
		m.log.Warn(ctx, "could not save subscription to server", "err", err)
	}

	sub := &models.Subscription{
		Id:          models.SubscriptionID,
		Endpoint:    ps.Endpoint,
		Keys:        ps.Keys,
		UserName:    user.UserName,
		Preferences: user.Preferences,
		CreatedAt:   time.Now().UTC(),
	}
	if err := m.subs.Save(ctx, sub); err != nil {
		return nil, fmt.Errorf("failed to save subscription locally: %w", err)
	}

	m.mu.Lock()
	m.current = ps
	m.mu.Unlock()

	m.log.Info(ctx, "subscribed", "endpoint", ps.Endpoint)
	return sub, nil
}

// Unsubscribe tears the subscription down. The platform-level unsubscribe
// must succeed; the remote and local removals that follow are independent
// best-effort steps.
func (m *Manager) Unsubscribe(ctx context.Context) (bool, error) {
	m.mu.Lock()
	ps := m.current
	m.mu.Unlock()

	if ps == nil {
		m.log.Info(ctx, "no subscription to unsubscribe")
		return true, nil
	}

	if err := m.platform.Unsubscribe(ctx); err != nil {
		return false, fmt.Errorf("platform unsubscribe failed: %w", err)
	}

	if err := m.remote.Unsubscribe(ctx, ps.Endpoint); err != nil {
		m.log.Warn(ctx, "could not remove subscription from server", "err", err)
	}
	if err := m.subs.Delete(ctx); err != nil {
		m.log.Warn(ctx, "could not remove local subscription", "err", err)
	}

	m.mu.Lock()
	m.current = nil
	m.mu.Unlock()

	m.log.Info(ctx, "unsubscribed", "endpoint", ps.Endpoint)
	return true, nil
}

// Status reports support, subscription and permission state, plus the
// locally stored user data.
func (m *Manager) Status(ctx context.Context) Status {
	if !m.platform.Supported() {
		return Status{Supported: false, Permission: "unsupported"}
	}

	m.mu.Lock()
	subscribed := m.current != nil
	m.mu.Unlock()

	st := Status{
		Supported:  true,
		Subscribed: subscribed,
		Permission: m.platform.Permission(),
	}

	if stored, err := m.subs.Get(ctx); err == nil {
		st.UserName = stored.UserName
		st.Preferences = stored.Preferences
	}
	return st
}

// SendTest asks the server to push a notification back to this client.
// A 410 from the server means the endpoint is dead: the only correct
// reaction is to drop the subscription everywhere and make the user
// re-subscribe.
func (m *Manager) SendTest(ctx context.Context, title, body string, data map[string]any) error {
	m.mu.Lock()
	ps := m.current
	m.mu.Unlock()

	if ps == nil {
		return common.ErrNotSubscribed
	}

	err := m.remote.SendNotification(ctx, ps.Endpoint, remote.Notification{
		Title: title,
		Body:  body,
		Data:  data,
	})
	if errors.Is(err, common.ErrSubscriptionExpired) {
		m.log.Warn(ctx, "subscription expired, cleaning up", "endpoint", ps.Endpoint)
		m.HandleExpired(ctx)
		return common.ErrSubscriptionExpired
	}
	return err
}

// HandleExpired removes the subscription from the platform, the remote
// store and the local store after the remote reported the endpoint dead.
// Every step is best-effort: the endpoint is already gone.
func (m *Manager) HandleExpired(ctx context.Context) {
	m.mu.Lock()
	ps := m.current
	m.current = nil
	m.mu.Unlock()

	if ps == nil {
		return
	}

	if err := m.platform.Unsubscribe(ctx); err != nil {
		m.log.Warn(ctx, "platform unsubscribe failed during expiry cleanup", "err", err)
	}
	if err := m.remote.Unsubscribe(ctx, ps.Endpoint); err != nil {
		m.log.Warn(ctx, "remote unsubscribe failed during expiry cleanup", "err", err)
	}
	if err := m.subs.Delete(ctx); err != nil {
		m.log.Warn(ctx, "local delete failed during expiry cleanup", "err", err)
	}
}
