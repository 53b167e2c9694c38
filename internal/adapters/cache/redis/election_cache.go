package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/vncsmyrnk/ballot/internal/core/domain"
	"github.com/vncsmyrnk/ballot/internal/core/ports"
	"github.com/vncsmyrnk/ballot/internal/platform/config"
	"github.com/vncsmyrnk/ballot/internal/platform/logger"
)

const currentElectionKey = "ballot:election:current"

// NewClient returns nil when no URL is configured.
func NewClient(ctx context.Context, cfg config.Redis) (*redis.Client, error) {
	if cfg.URL == "" {
		return nil, nil
	}
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return client, nil
}

// ElectionCache is a read-through cache in front of an election repository.
// Saves go to the primary first and then drop the cached snapshot. Cache
// errors fall back to the primary.
type ElectionCache struct {
	primary ports.ElectionRepository
	client  *redis.Client
	ttl     time.Duration
	logger  *slog.Logger
}

func NewElectionCache(primary ports.ElectionRepository, client *redis.Client, ttl time.Duration, log *slog.Logger) *ElectionCache {
	return &ElectionCache{
		primary: primary,
		client:  client,
		ttl:     ttl,
		logger:  logger.Resolve(log),
	}
}

func (c *ElectionCache) Current(ctx context.Context) (*domain.Election, error) {
	payload, err := c.client.Get(ctx, currentElectionKey).Bytes()
	switch {
	case err == nil:
		var election domain.Election
		if err := json.Unmarshal(payload, &election); err == nil {
			return &election, nil
		}
		c.logger.WarnContext(ctx, "discarding undecodable cached election", "event", "election_cache_decode_failed")
	case errors.Is(err, redis.Nil):
	default:
		c.logger.WarnContext(ctx, "election cache read failed", "event", "election_cache_read_failed", "error", err.Error())
	}

	election, err := c.primary.Current(ctx)
	if err != nil {
		return nil, err
	}
	if payload, err := json.Marshal(election); err == nil {
		if err := c.client.Set(ctx, currentElectionKey, payload, c.ttl).Err(); err != nil {
			c.logger.WarnContext(ctx, "election cache write failed", "event", "election_cache_write_failed", "error", err.Error())
		}
	}
	return election, nil
}

func (c *ElectionCache) Save(ctx context.Context, election *domain.Election) error {
	if err := c.primary.Save(ctx, election); err != nil {
		return err
	}
	c.Invalidate(ctx)
	return nil
}

func (c *ElectionCache) Invalidate(ctx context.Context) {
	if err := c.client.Del(ctx, currentElectionKey).Err(); err != nil {
		c.logger.WarnContext(ctx, "election cache invalidation failed", "event", "election_cache_del_failed", "error", err.Error())
	}
}

// Consistent returns a repository that bypasses the cache for reads and
// still invalidates it on save.
func (c *ElectionCache) Consistent() ports.ElectionRepository {
	return consistentView{cache: c}
}

type consistentView struct {
	cache *ElectionCache
}

func (v consistentView) Current(ctx context.Context) (*domain.Election, error) {
	return v.cache.primary.Current(ctx)
}

func (v consistentView) Save(ctx context.Context, election *domain.Election) error {
	return v.cache.Save(ctx, election)
}

var _ ports.ElectionRepository = (*ElectionCache)(nil)
