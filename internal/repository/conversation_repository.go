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

// ConversationRepository 定义了聊天机器人会话历史的操作接口。
type ConversationRepository interface {
	GetConversationHistory(ctx context.Context, sessionID string) ([]model.ChatMessage, error)
	UpdateConversationHistory(ctx context.Context, sessionID string, messages []model.ChatMessage) error
	DeleteConversation(ctx context.Context, sessionID string) error
}

type redisConversationRepository struct {
	redisClient *redis.Client
	limit       int
	ttl         time.Duration
}

// NewConversationRepository 创建一个新的 ConversationRepository 实例。
// limit 为保留的最近消息条数，ttl 为会话过期时间。
func NewConversationRepository(redisClient *redis.Client, limit int, ttl time.Duration) ConversationRepository {
	if limit <= 0 {
		limit = 20
	}
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}
	return &redisConversationRepository{redisClient: redisClient, limit: limit, ttl: ttl}
}

func conversationKey(sessionID string) string {
	return fmt.Sprintf("chatbot:session:%s", sessionID)
}

// GetConversationHistory 从 Redis 获取会话历史，不存在时返回空切片。
func (r *redisConversationRepository) GetConversationHistory(ctx context.Context, sessionID string) ([]model.ChatMessage, error) {
	jsonData, err := r.redisClient.Get(ctx, conversationKey(sessionID)).Result()
	if errors.Is(err, redis.Nil) {
		return []model.ChatMessage{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get conversation history: %w", err)
	}
	var messages []model.ChatMessage
	if err := json.Unmarshal([]byte(jsonData), &messages); err != nil {
		return nil, fmt.Errorf("failed to unmarshal conversation history: %w", err)
	}
	return messages, nil
}

// UpdateConversationHistory 只保留最近 limit 条消息并刷新过期时间。
func (r *redisConversationRepository) UpdateConversationHistory(ctx context.Context, sessionID string, messages []model.ChatMessage) error {
	if len(messages) > r.limit {
		messages = messages[len(messages)-r.limit:]
	}
	jsonData, err := json.Marshal(messages)
	if err != nil {
		return fmt.Errorf("failed to marshal conversation history: %w", err)
	}
	if err := r.redisClient.Set(ctx, conversationKey(sessionID), jsonData, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set conversation history: %w", err)
	}
	return nil
}

func (r *redisConversationRepository) DeleteConversation(ctx context.Context, sessionID string) error {
	return r.redisClient.Del(ctx, conversationKey(sessionID)).Err()
}
