package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dk2904/aircraft-factory/internal/core/domain"
)

const (
	userKeyPrefix  = "user:"
	planeKeyPrefix = "plane:"
)

// RedisCache stores JSON snapshots of read-only catalog and identity
// records. A missing key is a miss, never an error.
type RedisCache struct {
	client *redis.Client
}

func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{client: client}
}

func (r *RedisCache) GetUser(ctx context.Context, username string) (*domain.User, bool, error) {
	var u domain.User
	ok, err := r.getJSON(ctx, userKeyPrefix+username, &u)
	if err != nil || !ok {
		return nil, false, err
	}
	return &u, true, nil
}

func (r *RedisCache) SetUser(ctx context.Context, user *domain.User, ttl time.Duration) error {
	return r.setJSON(ctx, userKeyPrefix+user.Username, user, ttl)
}

func (r *RedisCache) GetPlane(ctx context.Context, id int64) (*domain.Plane, bool, error) {
	var p domain.Plane
	ok, err := r.getJSON(ctx, planeKeyPrefix+strconv.FormatInt(id, 10), &p)
	if err != nil || !ok {
		return nil, false, err
	}
	return &p, true, nil
}

func (r *RedisCache) SetPlane(ctx context.Context, plane *domain.Plane, ttl time.Duration) error {
	return r.setJSON(ctx, planeKeyPrefix+strconv.FormatInt(plane.ID, 10), plane, ttl)
}

func (r *RedisCache) getJSON(ctx context.Context, key string, dst interface{}) (bool, error) {
	raw, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("cache get %s: %w", key, err)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		// A corrupt entry behaves like a miss; the caller refreshes it.
		return false, nil
	}
	return true, nil
}

func (r *RedisCache) setJSON(ctx context.Context, key string, val interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(val)
	if err != nil {
		return fmt.Errorf("cache marshal %s: %w", key, err)
	}
	if err := r.client.Set(ctx, key, raw, ttl).Err(); err != nil {
		return fmt.Errorf("cache set %s: %w", key, err)
	}
	return nil
}
