package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/notiapp/notiapp/internal/common"
	"github.com/notiapp/notiapp/internal/server/models"
)

const (
	noteKeyPrefix = "notiapp:note:"
	noteIndexKey  = "notiapp:notes"
	subKeyPrefix  = "notiapp:sub:"
	subIndexKey   = "notiapp:subs"
)

// Redis stores documents as JSON values with two index structures: a sorted
// set over note timestamps for newest-first listing and a plain set of
// subscription endpoints.
type Redis struct {
	rdb *redis.Client
}

func NewRedis(ctx context.Context, addr string) (*Redis, error) {
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis connect error: %w", err)
	}
	return &Redis{rdb: rdb}, nil
}

func (r *Redis) UpsertNote(ctx context.Context, n *models.Note) (bool, error) {
	data, err := json.Marshal(n)
	if err != nil {
		return false, fmt.Errorf("failed to encode note: %w", err)
	}

	// SET ... GET returns the previous value, which distinguishes a fresh
	// insert from an overwrite in one round trip
	_, err = r.rdb.SetArgs(ctx, noteKeyPrefix+n.ClientId, data, redis.SetArgs{Get: true}).Result()
	created := errors.Is(err, redis.Nil)
	if err != nil && !created {
		return false, fmt.Errorf("redis error: %w", err)
	}

	if err := r.rdb.ZAdd(ctx, noteIndexKey, redis.Z{
		Score:  float64(n.Timestamp),
		Member: n.ClientId,
	}).Err(); err != nil {
		return false, fmt.Errorf("redis error: %w", err)
	}
	return created, nil
}

func (r *Redis) ListNotes(ctx context.Context) ([]models.Note, error) {
	ids, err := r.rdb.ZRevRange(ctx, noteIndexKey, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("redis error: %w", err)
	}
	if len(ids) == 0 {
		return nil, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = noteKeyPrefix + id
	}
	vals, err := r.rdb.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("redis error: %w", err)
	}

	var result []models.Note
	for _, v := range vals {
		s, ok := v.(string)
		if !ok {
			continue
		}
		var n models.Note
		if err := json.Unmarshal([]byte(s), &n); err != nil {
			return nil, fmt.Errorf("failed to decode note: %w", err)
		}
		result = append(result, n)
	}
	return result, nil
}

func (r *Redis) SaveSubscription(ctx context.Context, sub *models.Subscription) error {
	data, err := json.Marshal(sub)
	if err != nil {
		return fmt.Errorf("failed to encode subscription: %w", err)
	}

	pipe := r.rdb.TxPipeline()
	pipe.Set(ctx, subKeyPrefix+sub.Endpoint, data, 0)
	pipe.SAdd(ctx, subIndexKey, sub.Endpoint)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis error: %w", err)
	}
	return nil
}

func (r *Redis) GetSubscription(ctx context.Context, endpoint string) (*models.Subscription, error) {
	data, err := r.rdb.Get(ctx, subKeyPrefix+endpoint).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis error: %w", err)
	}

	var sub models.Subscription
	if err := json.Unmarshal(data, &sub); err != nil {
		return nil, fmt.Errorf("failed to decode subscription: %w", err)
	}
	return &sub, nil
}

func (r *Redis) DeleteSubscription(ctx context.Context, endpoint string) (bool, error) {
	pipe := r.rdb.TxPipeline()
	del := pipe.Del(ctx, subKeyPrefix+endpoint)
	pipe.SRem(ctx, subIndexKey, endpoint)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("redis error: %w", err)
	}
	return del.Val() > 0, nil
}

func (r *Redis) ListSubscriptions(ctx context.Context) ([]models.Subscription, error) {
	endpoints, err := r.rdb.SMembers(ctx, subIndexKey).Result()
	if err != nil {
		return nil, fmt.Errorf("redis error: %w", err)
	}

	var result []models.Subscription
	for _, ep := range endpoints {
		sub, err := r.GetSubscription(ctx, ep)
		if errors.Is(err, common.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		result = append(result, *sub)
	}
	return result, nil
}

func (r *Redis) Ping(ctx context.Context) error { return r.rdb.Ping(ctx).Err() }

func (r *Redis) Close() error { return r.rdb.Close() }
