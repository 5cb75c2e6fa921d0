package sessionstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/impactwon/checkin/internal/domain/session"
)

// Redis stores snapshots as JSON strings with a TTL.
type Redis struct {
	client *redis.Client
	cfg    config
}

var _ Store = (*Redis)(nil)

// NewRedis wraps an existing client.
func NewRedis(client *redis.Client, opts ...Option) *Redis {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Redis{client: client, cfg: cfg}
}

// OpenRedis parses a redis:// URL, connects, and pings the server.
func OpenRedis(ctx context.Context, url string, opts ...Option) (*Redis, error) {
	o, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(o)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return NewRedis(client, opts...), nil
}

func (r *Redis) key(id string) string { return r.cfg.prefix + id }

func (r *Redis) Save(ctx context.Context, snap session.Snapshot) error {
	if snap.ID == "" {
		return ErrInvalidID
	}
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := r.client.Set(ctx, r.key(snap.ID), data, r.cfg.ttl).Err(); err != nil {
		return fmt.Errorf("save session %s: %w", snap.ID, err)
	}
	return nil
}

func (r *Redis) Get(ctx context.Context, id string) (session.Snapshot, error) {
	data, err := r.client.Get(ctx, r.key(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return session.Snapshot{}, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return session.Snapshot{}, fmt.Errorf("get session %s: %w", id, err)
	}
	var snap session.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return session.Snapshot{}, fmt.Errorf("decode session %s: %w", id, err)
	}
	return snap, nil
}

func (r *Redis) Delete(ctx context.Context, id string) error {
	if err := r.client.Del(ctx, r.key(id)).Err(); err != nil {
		return fmt.Errorf("delete session %s: %w", id, err)
	}
	return nil
}

// Count scans the key prefix.
func (r *Redis) Count(ctx context.Context) (int, error) {
	n := 0
	iter := r.client.Scan(ctx, 0, r.cfg.prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		n++
	}
	if err := iter.Err(); err != nil {
		return 0, fmt.Errorf("count sessions: %w", err)
	}
	return n, nil
}

func (r *Redis) Close() error {
	return r.client.Close()
}
