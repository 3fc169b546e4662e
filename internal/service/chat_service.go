package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"askher-go/internal/config"
	"askher-go/internal/model"
	"askher-go/pkg/llm"
	"askher-go/pkg/log"
	"askher-go/pkg/metrics"
	"askher-go/pkg/token"
)

// Greeting 是聊天界面打开时展示的第一条助手消息。
const Greeting = "Hello! I'm here to listen and support you. What's on your mind today?"

const defaultFallback = "I apologize, but I'm having trouble processing that right now. Could you try rephrasing your message?"

// ChatReply 是一次聊天的结果。
type ChatReply struct {
	Response  string `json:"response"`
	SessionID string `json:"session_id"`
}

// ChatService 定义了陪伴聊天机器人的操作接口。
type ChatService interface {
	// Chat 回复一条消息。sessionID 为空或无效时签发新的会话 id。
	// 模型调用失败时仍返回带兜底文案的 ChatReply 以及错误。
	Chat(ctx context.Context, sessionID, message string) (ChatReply, error)
	// StreamChat 把回复以分块形式写入 writer，返回实际使用的会话 id。
	StreamChat(ctx context.Context, sessionID, message string, writer llm.MessageWriter, shouldStop func() bool) (string, error)
	// History 返回会话已保存的消息。
	History(ctx context.Context, sessionID string) ([]model.ChatMessage, error)
	// GenerateResponse 是不带会话历史的一次性回复。
	GenerateResponse(ctx context.Context, question, tone string) (string, error)
}

type chatService struct {
	llmClient     llm.Client
	conversations ConversationService
	sessions      *token.SessionManager
	llmCfg        config.LLMConfig
	metrics       *metrics.Metrics
}

// NewChatService 创建一个新的 ChatService 实例。
func NewChatService(llmClient llm.Client, conversations ConversationService, sessions *token.SessionManager, llmCfg config.LLMConfig, m *metrics.Metrics) ChatService {
	return &chatService{
		llmClient:     llmClient,
		conversations: conversations,
		sessions:      sessions,
		llmCfg:        llmCfg,
		metrics:       m,
	}
}

func (s *chatService) fallbackText() string {
	if s.llmCfg.Prompt.FallbackText != "" {
		return s.llmCfg.Prompt.FallbackText
	}
	return defaultFallback
}

// prepare 解析会话并组装发给模型的消息。
func (s *chatService) prepare(ctx context.Context, sessionID, message string) (string, string, []llm.Message, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return "", "", nil, fmt.Errorf("%w: message is empty", ErrValidation)
	}
	id, key, issued, err := s.sessions.Resolve(sessionID)
	if err != nil {
		return "", "", nil, fmt.Errorf("issue session: %w", err)
	}
	var history []model.ChatMessage
	if !issued {
		history, err = s.conversations.GetConversationHistory(ctx, key)
		if err != nil {
			log.Errorf("[ChatService] 读取会话历史失败: %v", err)
			history = nil
		}
	}
	llmHistory := make([]llm.Message, 0, len(history))
	for _, m := range history {
		llmHistory = append(llmHistory, llm.Message{Role: m.Role, Content: m.Content})
	}
	return id, key, llm.BuildMessages(s.llmCfg.Prompt.System, "", llmHistory, message), nil
}

func (s *chatService) remember(key, question, answer string) {
	// 即使请求已取消也保存已生成的回答
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := s.conversations.AppendExchange(ctx, key, question, answer); err != nil {
		log.Errorf("[ChatService] 保存会话历史失败: %v", err)
	}
}

func (s *chatService) Chat(ctx context.Context, sessionID, message string) (ChatReply, error) {
	id, key, messages, err := s.prepare(ctx, sessionID, message)
	if err != nil {
		return ChatReply{}, err
	}
	answer, err := s.llmClient.Complete(ctx, messages, llm.ParamsFromConfig(s.llmCfg.Generation))
	s.metrics.ChatbotReply(err)
	if err != nil {
		log.Errorf("[ChatService] 调用模型失败, session: %s, error: %v", key, err)
		return ChatReply{Response: s.fallbackText(), SessionID: id}, fmt.Errorf("generate reply: %w", err)
	}
	s.remember(key, strings.TrimSpace(message), answer)
	return ChatReply{Response: answer, SessionID: id}, nil
}

func (s *chatService) StreamChat(ctx context.Context, sessionID, message string, writer llm.MessageWriter, shouldStop func() bool) (string, error) {
	id, key, messages, err := s.prepare(ctx, sessionID, message)
	if err != nil {
		return "", err
	}
	answer := &strings.Builder{}
	interceptor := &chunkInterceptor{writer: writer, answer: answer, shouldStop: shouldStop}
	err = s.llmClient.StreamChatMessages(ctx, messages, llm.ParamsFromConfig(s.llmCfg.Generation), interceptor)
	if IsStopped(err) {
		err = nil
	}
	s.metrics.ChatbotReply(err)
	if err != nil {
		return id, err
	}
	if answer.Len() > 0 {
		s.remember(key, strings.TrimSpace(message), answer.String())
	}
	return id, nil
}

func (s *chatService) History(ctx context.Context, sessionID string) ([]model.ChatMessage, error) {
	key, err := s.sessions.Verify(sessionID)
	if err != nil {
		return nil, fmt.Errorf("%w: session", ErrNotFound)
	}
	return s.conversations.GetConversationHistory(ctx, key)
}

func (s *chatService) GenerateResponse(ctx context.Context, question, tone string) (string, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return "", fmt.Errorf("%w: question is empty", ErrValidation)
	}
	messages := llm.BuildMessages(s.llmCfg.Prompt.System, llm.ToneHint(tone), nil, question)
	answer, err := s.llmClient.Complete(ctx, messages, llm.ParamsFromConfig(s.llmCfg.Generation))
	s.metrics.ChatbotReply(err)
	if err != nil {
		return "", fmt.Errorf("generate response: %w", err)
	}
	return answer, nil
}

// chunkInterceptor 捕获完整回答，并把每个分块包装为 {"chunk":"..."} 写出。
type chunkInterceptor struct {
	writer     llm.MessageWriter
	answer     *strings.Builder
	shouldStop func() bool
}

// errStopped 让模型客户端在用户要求停止后尽快返回。
var errStopped = errors.New("stream stopped")

// WriteMessage 满足 llm.MessageWriter 接口。
func (w *chunkInterceptor) WriteMessage(messageType int, data []byte) error {
	if w.shouldStop != nil && w.shouldStop() {
		return errStopped
	}
	w.answer.Write(data)
	b, err := json.Marshal(map[string]string{"chunk": string(data)})
	if err != nil {
		return err
	}
	return w.writer.WriteMessage(messageType, b)
}

// IsStopped 报告 err 是否由用户主动停止造成。
func IsStopped(err error) bool {
	return errors.Is(err, errStopped)
}
