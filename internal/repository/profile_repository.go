package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"askher-go/internal/model"

	"github.com/go-redis/redis/v8"
)

// ProfileRepository 按设备保存社区用户档案。
type ProfileRepository interface {
	Load(ctx context.Context, deviceID string) (*model.User, error)
	Save(ctx context.Context, deviceID string, user model.User) error
}

type redisProfileRepository struct {
	redisClient *redis.Client
	prefix      string
	ttl         time.Duration
}

// NewProfileRepository 创建基于 Redis 的档案仓库，键为 "<prefix>:<deviceID>"。
// ttl 为 0 时档案永不过期，否则每次读写都会刷新过期时间。
func NewProfileRepository(redisClient *redis.Client, prefix string, ttl time.Duration) ProfileRepository {
	return &redisProfileRepository{redisClient: redisClient, prefix: prefix, ttl: ttl}
}

func (r *redisProfileRepository) key(deviceID string) string {
	return fmt.Sprintf("%s:%s", r.prefix, deviceID)
}

// Load 在槽位不存在时返回 (nil, nil)。
func (r *redisProfileRepository) Load(ctx context.Context, deviceID string) (*model.User, error) {
	raw, err := r.redisClient.Get(ctx, r.key(deviceID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	var user model.User
	if err := json.Unmarshal(raw, &user); err != nil {
		return nil, fmt.Errorf("failed to unmarshal profile: %w", err)
	}
	if r.ttl > 0 {
		_ = r.redisClient.Expire(ctx, r.key(deviceID), r.ttl).Err()
	}
	return &user, nil
}

// Save 覆盖写入档案并刷新过期时间。
func (r *redisProfileRepository) Save(ctx context.Context, deviceID string, user model.User) error {
	raw, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("failed to marshal profile: %w", err)
	}
	if err := r.redisClient.Set(ctx, r.key(deviceID), raw, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set profile: %w", err)
	}
	return nil
}
