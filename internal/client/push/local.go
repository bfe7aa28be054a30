package push

import (
	"context"
	"crypto/ecdh"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/notiapp/notiapp/internal/client/models"
)

// LocalPlatform is a push platform backed by nothing but the local process.
// It mints real P-256 credentials so payload encryption works end to end,
// with the endpoint pointing at the configured push relay. Permission is
// granted up front; there is no user to ask.
type LocalPlatform struct {
	// RelayURL is the base URL subscriptions are minted under.
	RelayURL string

	mu      sync.Mutex
	current *PlatformSubscription
}

func NewLocalPlatform(relayURL string) *LocalPlatform {
	return &LocalPlatform{RelayURL: relayURL}
}

func (p *LocalPlatform) Supported() bool { return true }

func (p *LocalPlatform) Permission() string { return PermissionGranted }

func (p *LocalPlatform) RequestPermission(ctx context.Context) (string, error) {
	return PermissionGranted, nil
}

func (p *LocalPlatform) Subscribe(ctx context.Context, vapidPublicKey string) (*PlatformSubscription, error) {
	key, err := ecdh.P256().GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("failed to generate subscription keys: %w", err)
	}

	auth := make([]byte, 16)
	if _, err := rand.Read(auth); err != nil {
		return nil, fmt.Errorf("failed to generate auth secret: %w", err)
	}

	sub := &PlatformSubscription{
		Endpoint: p.RelayURL + "/" + uuid.NewString(),
		Keys: models.SubscriptionKeys{
			P256dh: base64.RawURLEncoding.EncodeToString(key.PublicKey().Bytes()),
			Auth:   base64.RawURLEncoding.EncodeToString(auth),
		},
	}

	p.mu.Lock()
	p.current = sub
	p.mu.Unlock()
	return sub, nil
}

func (p *LocalPlatform) Unsubscribe(ctx context.Context) error {
	p.mu.Lock()
	p.current = nil
	p.mu.Unlock()
	return nil
}

func (p *LocalPlatform) Current(ctx context.Context) (*PlatformSubscription, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current, nil
}
