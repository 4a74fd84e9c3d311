package redis

import (
	"context"
	"fmt"

	"opening-hours/db"
)

// CONFIG_KEY_FORMAT namespaces config values by scope and key.
const CONFIG_KEY_FORMAT = "config_v1:%s:%s"

// RedisConfigDAO stores scoped string config values.
type RedisConfigDAO struct {
	client db.RedisClient
}

// NewRedisConfigDAO initializes a RedisConfigDAO with the Redis client.
func NewRedisConfigDAO(client db.RedisClient) *RedisConfigDAO {
	return &RedisConfigDAO{client: client}
}

// Read returns the value stored for scope/key. A missing value is reported
// as an error wrapping db.ErrKeyNotFound.
func (dao *RedisConfigDAO) Read(ctx context.Context, scope, key string) (string, error) {
	value, err := dao.client.Get(ctx, fmt.Sprintf(CONFIG_KEY_FORMAT, scope, key))
	if err != nil {
		return "", fmt.Errorf("failed to read config %s/%s: %w", scope, key, err)
	}
	return value, nil
}

// Write stores value for scope/key.
func (dao *RedisConfigDAO) Write(ctx context.Context, scope, key, value string) error {
	if err := dao.client.Set(ctx, fmt.Sprintf(CONFIG_KEY_FORMAT, scope, key), value); err != nil {
		return fmt.Errorf("failed to write config %s/%s: %w", scope, key, err)
	}
	return nil
}
