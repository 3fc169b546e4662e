package llm

import (
	"context"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// CannedResponses 是演示模式下随机返回的支持性回复。
var CannedResponses = []string{
	"It's completely normal to feel that way. Many women experience similar challenges.",
	"I hear you. It takes courage to share these feelings. Would it help to break down this situation into smaller, more manageable parts?",
	"You're not alone in this experience. Have you considered talking to someone you trust about how you're feeling?",
	"That sounds difficult. Remember that it's okay to prioritize your own wellbeing sometimes.",
	"I'm here to listen without judgment. Would sharing more details help you process these emotions?",
	"Your feelings are valid. Many women in our community have faced similar situations and found ways forward.",
	"It's brave of you to express this. What small step might help you feel more in control of the situation?",
	"Thank you for sharing that with me. Is there a particular aspect of this situation that's most concerning to you?",
	"I'm sorry you're going through this. Would it help to explore some coping strategies together?",
	"You've shown resilience just by reaching out. Let's think about what support might be most helpful right now.",
}

// MockClient 在延迟 delay 之后返回一条随机的预置回复，不访问网络。
type MockClient struct {
	delay time.Duration

	mu  sync.Mutex
	rng *rand.Rand
}

// NewMockClient 创建演示用客户端。rng 为 nil 时使用以当前时间为种子的随机源。
func NewMockClient(delay time.Duration, rng *rand.Rand) *MockClient {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &MockClient{delay: delay, rng: rng}
}

func (m *MockClient) pick() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return CannedResponses[m.rng.Intn(len(CannedResponses))]
}

func (m *MockClient) wait(ctx context.Context) error {
	if m.delay <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(m.delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (m *MockClient) Complete(ctx context.Context, _ []Message, _ *GenerationParams) (string, error) {
	if err := m.wait(ctx); err != nil {
		return "", err
	}
	return m.pick(), nil
}

// StreamChatMessages 按单词把预置回复写入 writer。
func (m *MockClient) StreamChatMessages(ctx context.Context, _ []Message, _ *GenerationParams, writer MessageWriter) error {
	if err := m.wait(ctx); err != nil {
		return err
	}
	words := strings.SplitAfter(m.pick(), " ")
	for _, w := range words {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := writer.WriteMessage(websocket.TextMessage, []byte(w)); err != nil {
			return err
		}
	}
	return nil
}
