package service

import (
	"context"
	"fmt"
	"time"

	"askher-go/internal/model"
	"askher-go/internal/repository"
)

// ConversationService 管理聊天机器人会话的消息历史。
type ConversationService interface {
	GetConversationHistory(ctx context.Context, sessionID string) ([]model.ChatMessage, error)
	// AppendExchange 追加一轮用户提问与助手回答。
	AppendExchange(ctx context.Context, sessionID, question, answer string) error
}

type conversationService struct {
	repo repository.ConversationRepository
	now  func() time.Time
}

// NewConversationService 创建一个新的 ConversationService。
func NewConversationService(repo repository.ConversationRepository) ConversationService {
	return &conversationService{repo: repo, now: time.Now}
}

func (s *conversationService) GetConversationHistory(ctx context.Context, sessionID string) ([]model.ChatMessage, error) {
	return s.repo.GetConversationHistory(ctx, sessionID)
}

func (s *conversationService) AppendExchange(ctx context.Context, sessionID, question, answer string) error {
	history, err := s.repo.GetConversationHistory(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("failed to get conversation history: %w", err)
	}
	now := s.now()
	history = append(history,
		model.ChatMessage{Role: "user", Content: question, Timestamp: now},
		model.ChatMessage{Role: "assistant", Content: answer, Timestamp: now},
	)
	return s.repo.UpdateConversationHistory(ctx, sessionID, history)
}
