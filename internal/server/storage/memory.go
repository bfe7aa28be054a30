package storage

import (
	"context"
	"sort"
	"sync"

	"github.com/notiapp/notiapp/internal/common"
	"github.com/notiapp/notiapp/internal/server/models"
)

// Memory keeps everything in process memory. It backs tests and single-node
// development setups where losing data on restart is acceptable.
type Memory struct {
	mu   sync.RWMutex
	note map[string]models.Note
	subs map[string]models.Subscription
}

func NewMemory() *Memory {
	return &Memory{
		note: make(map[string]models.Note),
		subs: make(map[string]models.Subscription),
	}
}

func (m *Memory) UpsertNote(ctx context.Context, n *models.Note) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	_, exists := m.note[n.ClientId]
	m.note[n.ClientId] = *n
	return !exists, nil
}

func (m *Memory) ListNotes(ctx context.Context) ([]models.Note, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]models.Note, 0, len(m.note))
	for _, n := range m.note {
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp > out[j].Timestamp })
	return out, nil
}

func (m *Memory) SaveSubscription(ctx context.Context, sub *models.Subscription) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.subs[sub.Endpoint] = *sub
	return nil
}

func (m *Memory) GetSubscription(ctx context.Context, endpoint string) (*models.Subscription, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	sub, ok := m.subs[endpoint]
	if !ok {
		return nil, common.ErrNotFound
	}
	return &sub, nil
}

func (m *Memory) DeleteSubscription(ctx context.Context, endpoint string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	_, ok := m.subs[endpoint]
	delete(m.subs, endpoint)
	return ok, nil
}

func (m *Memory) ListSubscriptions(ctx context.Context) ([]models.Subscription, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]models.Subscription, 0, len(m.subs))
	for _, s := range m.subs {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Endpoint < out[j].Endpoint })
	return out, nil
}

func (m *Memory) Ping(ctx context.Context) error { return nil }

func (m *Memory) Close() error { return nil }
