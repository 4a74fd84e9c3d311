package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"opening-hours/db"
	"opening-hours/models/openinghours"
)

// APPLICATION_DATA_KEY holds the bulk data document shared with the front end.
const APPLICATION_DATA_KEY = "application_data_v1"

// RedisApplicationDataDAO reads the bulk application data document.
type RedisApplicationDataDAO struct {
	client db.RedisClient
}

func NewRedisApplicationDataDAO(client db.RedisClient) *RedisApplicationDataDAO {
	return &RedisApplicationDataDAO{client: client}
}

// Load returns the stored application data. A missing document yields empty
// data rather than an error.
func (dao *RedisApplicationDataDAO) Load(ctx context.Context) (openinghours.ApplicationData, error) {
	var data openinghours.ApplicationData
	str, err := dao.client.Get(ctx, APPLICATION_DATA_KEY)
	if errors.Is(err, db.ErrKeyNotFound) {
		return data, nil
	}
	if err != nil {
		return data, fmt.Errorf("failed to get application data from redis: %w", err)
	}
	if err := json.Unmarshal([]byte(str), &data); err != nil {
		return data, fmt.Errorf("failed to unmarshal application data JSON: %w", err)
	}
	return data, nil
}

// Store replaces the application data document.
func (dao *RedisApplicationDataDAO) Store(ctx context.Context, data openinghours.ApplicationData) error {
	b, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal application data: %w", err)
	}
	if err := dao.client.Set(ctx, APPLICATION_DATA_KEY, string(b)); err != nil {
		return fmt.Errorf("failed to set application data in redis: %w", err)
	}
	return nil
}
