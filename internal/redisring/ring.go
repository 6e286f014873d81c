// Package redisring builds the go-redis Ring client from the configured
// db.redis.addrs list. Keys are distributed across the members by
// consistent hashing, so member names must stay stable across restarts.
package redisring

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/streamdate/sapi/internal/config"
)

// New builds and pings a Ring over the configured members. Shard names
// are derived from the member address so the key distribution does not
// depend on list order.
func New(ctx context.Context, cfg config.Redis, logger zerolog.Logger) (*redis.Ring, error) {
	addrs := make(map[string]string, len(cfg.Addrs))
	for _, member := range cfg.Addrs {
		addrs[member.Addr()] = member.Addr()
	}

	ring := redis.NewRing(&redis.RingOptions{
		Addrs:        addrs,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := ring.Ping(pingCtx).Err(); err != nil {
		ring.Close()
		return nil, fmt.Errorf("redis ring ping failed: %w", err)
	}

	logger.Info().
		Int("members", len(addrs)).
		Msg("connected to redis ring")

	return ring, nil
}
