package player

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const playerKeyPrefix = "player:"

// RedisRegistry implements Registry with one JSON value per player.
type RedisRegistry struct {
	rdb *redis.Client
}

func NewRedisRegistry(rdb *redis.Client) *RedisRegistry {
	return &RedisRegistry{rdb: rdb}
}

func playerKey(name string) string {
	return playerKeyPrefix + name
}

func (r *RedisRegistry) Register(ctx context.Context, p Player) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode player: %w", err)
	}

	ok, err := r.rdb.SetNX(ctx, playerKey(p.Name), data, 0).Result()
	if err != nil {
		return fmt.Errorf("register player %q: %w", p.Name, err)
	}
	if !ok {
		return ErrPlayerExists
	}
	return nil
}

func (r *RedisRegistry) Exists(ctx context.Context, name string) (bool, error) {
	n, err := r.rdb.Exists(ctx, playerKey(name)).Result()
	if err != nil {
		return false, fmt.Errorf("player exists %q: %w", name, err)
	}
	return n > 0, nil
}
