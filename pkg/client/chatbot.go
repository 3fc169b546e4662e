package client

import (
	"context"
	"net/http"
	"net/url"

	"askher-go/internal/model"
)

type chatReply struct {
	Response  string `json:"response"`
	SessionID string `json:"session_id"`
}

// SessionID 返回服务端签发并由客户端保存的聊天会话 id。
func (c *Client) SessionID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sessionID
}

// ResetSession 丢弃当前会话，下一次 Chat 会开启新会话。
func (c *Client) ResetSession() {
	c.mu.Lock()
	c.sessionID = ""
	c.mu.Unlock()
}

// Chat 发送一条消息并保存服务端返回的会话 id，之后的调用会自动带上它。
// 服务端模型失败时返回兜底回复以及 *APIError。
func (c *Client) Chat(ctx context.Context, message string) (string, error) {
	body := map[string]string{"message": message}
	if sid := c.SessionID(); sid != "" {
		body["session_id"] = sid
	}
	var out chatReply
	err := c.do(ctx, http.MethodPost, "/chatbot/chat", body, &out)
	if out.SessionID != "" {
		c.mu.Lock()
		c.sessionID = out.SessionID
		c.mu.Unlock()
	}
	return out.Response, err
}

// History 返回当前会话的聊天记录；还没有会话时返回空。
func (c *Client) History(ctx context.Context) ([]model.ChatMessage, error) {
	sid := c.SessionID()
	if sid == "" {
		return []model.ChatMessage{}, nil
	}
	var out []model.ChatMessage
	err := c.do(ctx, http.MethodGet, "/chatbot/history?session_id="+url.QueryEscape(sid), nil, &out)
	return out, err
}

// GenerateResponse 请求一次性的支持性回复，不使用会话。
func (c *Client) GenerateResponse(ctx context.Context, question, tone string) (string, error) {
	var out chatReply
	err := c.do(ctx, http.MethodPost, "/generate-response", map[string]string{"question": question, "tone": tone}, &out)
	return out.Response, err
}
