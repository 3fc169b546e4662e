package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"askher-go/internal/model"
	"askher-go/internal/service"
	"askher-go/pkg/llm"

	"github.com/gorilla/websocket"
)

type fakeChat struct {
	service.ChatService
	reply  service.ChatReply
	err    error
	chunks []string

	mu       sync.Mutex
	sessions []string
}

func (f *fakeChat) seen() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.sessions...)
}

func (f *fakeChat) Chat(_ context.Context, sessionID, message string) (service.ChatReply, error) {
	if strings.TrimSpace(message) == "" {
		return service.ChatReply{}, fmt.Errorf("%w: message is empty", service.ErrValidation)
	}
	return f.reply, f.err
}

func (f *fakeChat) StreamChat(_ context.Context, sessionID, _ string, w llm.MessageWriter, _ func() bool) (string, error) {
	f.mu.Lock()
	f.sessions = append(f.sessions, sessionID)
	f.mu.Unlock()
	for _, c := range f.chunks {
		b, _ := json.Marshal(map[string]string{"chunk": c})
		if err := w.WriteMessage(websocket.TextMessage, b); err != nil {
			return "", err
		}
	}
	return "sid-1", f.err
}

func (f *fakeChat) History(_ context.Context, sessionID string) ([]model.ChatMessage, error) {
	if sessionID != "sid-1" {
		return nil, fmt.Errorf("%w: session", service.ErrNotFound)
	}
	return []model.ChatMessage{{Role: "user", Content: "hi"}, {Role: "assistant", Content: "hello"}}, nil
}

func (f *fakeChat) GenerateResponse(_ context.Context, question, _ string) (string, error) {
	return "You matter.", f.err
}

func TestChatEndpoint(t *testing.T) {
	chat := &fakeChat{reply: service.ChatReply{Response: "I hear you.", SessionID: "sid-1"}}
	r := NewRouter(Services{Chat: chat}, RouterOptions{Quiet: true})

	w, env := perform(t, r, http.MethodPost, "/chatbot/chat", "", ChatRequest{Message: "rough day"})
	var reply service.ChatReply
	_ = json.Unmarshal(env.Data, &reply)
	if w.Code != http.StatusOK || reply.Response != "I hear you." || reply.SessionID != "sid-1" {
		t.Fatalf("unexpected chat reply %d %+v", w.Code, reply)
	}

	w, _ = perform(t, r, http.MethodPost, "/chatbot/chat", "", ChatRequest{Message: "  "})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for empty message, got %d", w.Code)
	}
}

func TestChatEndpointFallbackOnModelError(t *testing.T) {
	chat := &fakeChat{
		reply: service.ChatReply{Response: "I apologize, but I'm having trouble processing that right now.", SessionID: "sid-1"},
		err:   errors.New("upstream timeout"),
	}
	r := NewRouter(Services{Chat: chat}, RouterOptions{Quiet: true})

	w, env := perform(t, r, http.MethodPost, "/chatbot/chat", "", ChatRequest{Message: "hello"})
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
	var reply service.ChatReply
	_ = json.Unmarshal(env.Data, &reply)
	if !strings.HasPrefix(reply.Response, "I apologize") || reply.SessionID != "sid-1" {
		t.Fatalf("expected fallback reply in data, got %+v", reply)
	}
}

func TestChatHistoryAndGenerate(t *testing.T) {
	r := NewRouter(Services{Chat: &fakeChat{}}, RouterOptions{Quiet: true})

	w, _ := perform(t, r, http.MethodGet, "/chatbot/history", "", nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without session_id, got %d", w.Code)
	}
	w, _ = perform(t, r, http.MethodGet, "/chatbot/history?session_id=other", "", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown session, got %d", w.Code)
	}
	_, env := perform(t, r, http.MethodGet, "/chatbot/history?session_id=sid-1", "", nil)
	var history []model.ChatMessage
	_ = json.Unmarshal(env.Data, &history)
	if len(history) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(history))
	}

	_, env = perform(t, r, http.MethodPost, "/generate-response", "", GenerateRequest{Question: "I failed", Tone: "encouragement"})
	var out map[string]string
	_ = json.Unmarshal(env.Data, &out)
	if out["response"] != "You matter." {
		t.Fatalf("unexpected generate response %v", out)
	}
}

func readFrame(t *testing.T, conn *websocket.Conn) map[string]interface{} {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read frame: %v", err)
	}
	var frame map[string]interface{}
	if err := json.Unmarshal(data, &frame); err != nil {
		t.Fatalf("frame is not JSON: %q", data)
	}
	return frame
}

func TestChatStreamWebsocket(t *testing.T) {
	chat := &fakeChat{chunks: []string{"You are ", "not alone"}}
	srv := httptest.NewServer(NewRouter(Services{Chat: chat}, RouterOptions{Quiet: true}))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/chatbot/stream?session_id=start"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	if err := conn.WriteMessage(websocket.TextMessage, []byte(`{"message":"hi"}`)); err != nil {
		t.Fatalf("write: %v", err)
	}
	var text strings.Builder
	for {
		frame := readFrame(t, conn)
		if chunk, isChunk := frame["chunk"].(string); isChunk {
			text.WriteString(chunk)
			continue
		}
		if frame["type"] != "completion" || frame["status"] != "finished" || frame["session_id"] != "sid-1" {
			t.Fatalf("unexpected completion frame %v", frame)
		}
		break
	}
	if text.String() != "You are not alone" {
		t.Fatalf("unexpected streamed text %q", text.String())
	}

	// 第二条消息沿用服务端签发的会话 id
	if err := conn.WriteMessage(websocket.TextMessage, []byte("plain text works too")); err != nil {
		t.Fatalf("write: %v", err)
	}
	for {
		if frame := readFrame(t, conn); frame["type"] == "completion" {
			break
		}
	}
	if seen := chat.seen(); len(seen) != 2 || seen[0] != "start" || seen[1] != "sid-1" {
		t.Fatalf("unexpected session ids %v", seen)
	}
}

func TestChatStreamStopAcknowledged(t *testing.T) {
	srv := httptest.NewServer(NewRouter(Services{Chat: &fakeChat{}}, RouterOptions{Quiet: true}))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/chatbot/stream"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	if err := conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"stop"}`)); err != nil {
		t.Fatalf("write: %v", err)
	}
	if frame := readFrame(t, conn); frame["type"] != "stop" {
		t.Fatalf("expected stop acknowledgement, got %v", frame)
	}
}
