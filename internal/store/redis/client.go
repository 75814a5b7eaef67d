// Package redis stores session snapshots in Redis.
package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/zuckel/ImperialCommander2/internal/deploy"
)

// Client wraps the Redis client for session snapshots.
type Client struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewClient creates a Redis client from a connection URL. Snapshots expire
// after ttl; zero keeps them forever.
func NewClient(redisURL string, ttl time.Duration) (*Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &Client{rdb: rdb, ttl: ttl}, nil
}

// NewClientFromPool wraps an existing redis.Client for use in tests.
func NewClientFromPool(rdb *redis.Client, ttl time.Duration) *Client {
	return &Client{rdb: rdb, ttl: ttl}
}

// Close closes the Redis connection.
func (c *Client) Close() error {
	return c.rdb.Close()
}

func snapshotKey(sessionID string) string { return "session:" + sessionID + ":snapshot" }
func threatKey(sessionID string) string   { return "session:" + sessionID + ":threat" }

// Save stores the snapshot JSON and the current threat.
func (c *Client) Save(ctx context.Context, sessionID string, s deploy.Snapshot) error {
	data, err := deploy.MarshalSnapshot(s)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	pipe := c.rdb.TxPipeline()
	pipe.Set(ctx, snapshotKey(sessionID), data, c.ttl)
	pipe.Set(ctx, threatKey(sessionID), s.Economy.Threat, c.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// Load retrieves a snapshot. found is false when the key does not exist.
func (c *Client) Load(ctx context.Context, sessionID string) (deploy.Snapshot, bool, error) {
	data, err := c.rdb.Get(ctx, snapshotKey(sessionID)).Bytes()
	if err == redis.Nil {
		return deploy.Snapshot{}, false, nil
	}
	if err != nil {
		return deploy.Snapshot{}, false, fmt.Errorf("load session: %w", err)
	}
	s, err := deploy.UnmarshalSnapshot(data)
	if err != nil {
		return deploy.Snapshot{}, false, err
	}
	return s, true, nil
}

// Threat returns the threat recorded by the last save, without decoding
// the snapshot.
func (c *Client) Threat(ctx context.Context, sessionID string) (int, bool, error) {
	n, err := c.rdb.Get(ctx, threatKey(sessionID)).Int()
	if err == redis.Nil {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("get threat: %w", err)
	}
	return n, true, nil
}

// Delete removes a session's keys.
func (c *Client) Delete(ctx context.Context, sessionID string) error {
	return c.rdb.Del(ctx, snapshotKey(sessionID), threatKey(sessionID)).Err()
}
