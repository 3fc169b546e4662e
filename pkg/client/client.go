// Package client 是 AskHer 论坛与聊天机器人接口的 Go 客户端。
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"askher-go/internal/model"
)

const deviceIDHeader = "X-Device-ID"

// APIError 表示服务端返回了非 2xx 响应。
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("askher api: status %d", e.StatusCode)
	}
	return fmt.Sprintf("askher api: status %d: %s", e.StatusCode, e.Message)
}

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// Client 调用 AskHer HTTP 接口。并发安全。
type Client struct {
	baseURL    string
	httpClient *http.Client

	mu        sync.Mutex
	deviceID  string
	sessionID string
}

// Option 配置 Client。
type Option func(*Client)

// WithHTTPClient 替换默认的 http.Client。
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.httpClient = h }
}

// WithDeviceID 指定设备 id；未指定时使用服务端第一次签发的 id。
func WithDeviceID(id string) Option {
	return func(c *Client) { c.deviceID = id }
}

// New 创建一个指向 baseURL 的客户端。
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// DeviceID 返回当前使用的设备 id。
func (c *Client) DeviceID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.deviceID
}

// do 发送请求并把 data 字段解码到 out。非 2xx 时返回 *APIError，
// 若响应体仍带 data，也会解码到 out。
func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if id := c.DeviceID(); id != "" {
		req.Header.Set(deviceIDHeader, id)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if id := resp.Header.Get(deviceIDHeader); id != "" {
		c.mu.Lock()
		if c.deviceID == "" {
			c.deviceID = id
		}
		c.mu.Unlock()
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	var env envelope
	decodeErr := json.Unmarshal(raw, &env)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode, Message: env.Message}
		if decodeErr != nil {
			apiErr.Message = strings.TrimSpace(string(raw))
		} else if out != nil && len(env.Data) > 0 && string(env.Data) != "null" {
			_ = json.Unmarshal(env.Data, out)
		}
		return apiErr
	}
	if decodeErr != nil {
		return fmt.Errorf("decode response: %w", decodeErr)
	}
	if out == nil || len(env.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("decode data: %w", err)
	}
	return nil
}

// Questions 返回全部论坛问题，最新在前。
func (c *Client) Questions(ctx context.Context) ([]model.QuestionRecord, error) {
	var out []model.QuestionRecord
	err := c.do(ctx, http.MethodGet, "/questions", nil, &out)
	return out, err
}

func (c *Client) Question(ctx context.Context, id string) (*model.QuestionRecord, error) {
	var out model.QuestionRecord
	if err := c.do(ctx, http.MethodGet, "/questions/"+url.PathEscape(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// AskQuestion 创建论坛问题。tone 可为 advice、listen 或 just_listen。
func (c *Client) AskQuestion(ctx context.Context, userID, content, tone string) (*model.QuestionRecord, error) {
	var out model.QuestionRecord
	body := map[string]string{"user_id": userID, "content": content, "tone": tone}
	if err := c.do(ctx, http.MethodPost, "/questions", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) MyQuestions(ctx context.Context, userID string) ([]model.QuestionRecord, error) {
	var out []model.QuestionRecord
	err := c.do(ctx, http.MethodGet, "/my/questions?user_id="+url.QueryEscape(userID), nil, &out)
	return out, err
}

func (c *Client) Responses(ctx context.Context) ([]model.ResponseRecord, error) {
	var out []model.ResponseRecord
	err := c.do(ctx, http.MethodGet, "/responses", nil, &out)
	return out, err
}

func (c *Client) QuestionResponses(ctx context.Context, questionID string) ([]model.ResponseRecord, error) {
	var out []model.ResponseRecord
	err := c.do(ctx, http.MethodGet, "/questions/"+url.PathEscape(questionID)+"/responses", nil, &out)
	return out, err
}

func (c *Client) MyResponses(ctx context.Context, userID string) ([]model.ResponseRecord, error) {
	var out []model.ResponseRecord
	err := c.do(ctx, http.MethodGet, "/my/responses?user_id="+url.QueryEscape(userID), nil, &out)
	return out, err
}

// Respond 回复问题；isEmoji 标记纯表情回复。
func (c *Client) Respond(ctx context.Context, questionID, userID, content string, isEmoji bool) (*model.ResponseRecord, error) {
	var out model.ResponseRecord
	body := map[string]interface{}{"question_id": questionID, "user_id": userID, "content": content, "is_emoji": isEmoji}
	if err := c.do(ctx, http.MethodPost, "/responses", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Trending 返回最新的回复。
func (c *Client) Trending(ctx context.Context) ([]model.ResponseRecord, error) {
	var out []model.ResponseRecord
	err := c.do(ctx, http.MethodGet, "/trending", nil, &out)
	return out, err
}

// Upvote 点赞回复，重复点赞返回 false。
func (c *Client) Upvote(ctx context.Context, responseID, userID string) (bool, error) {
	var out struct {
		Created bool `json:"created"`
	}
	err := c.do(ctx, http.MethodPost, "/responses/"+url.PathEscape(responseID)+"/upvote", map[string]string{"user_id": userID}, &out)
	return out.Created, err
}

func (c *Client) Upvotes(ctx context.Context, responseID string) (int64, error) {
	var out struct {
		Count int64 `json:"count"`
	}
	err := c.do(ctx, http.MethodGet, "/responses/"+url.PathEscape(responseID)+"/upvotes", nil, &out)
	return out.Count, err
}

func (c *Client) Comment(ctx context.Context, responseID, userID, content string) (*model.Comment, error) {
	var out model.Comment
	body := map[string]string{"user_id": userID, "content": content}
	if err := c.do(ctx, http.MethodPost, "/responses/"+url.PathEscape(responseID)+"/comments", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Comments(ctx context.Context, responseID string) ([]model.Comment, error) {
	var out []model.Comment
	err := c.do(ctx, http.MethodGet, "/responses/"+url.PathEscape(responseID)+"/comments", nil, &out)
	return out, err
}
