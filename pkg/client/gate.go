package client

import (
	"context"
	"sync"

	"askher-go/internal/model"
)

// Gate 为同一类刷新请求分配递增的代号。只有最近一次开始的请求可以应用结果，
// 先发后至的旧响应会被丢弃。
type Gate struct {
	mu  sync.Mutex
	gen uint64
}

// Ticket 是一次请求在 Gate 上的代号。
type Ticket struct {
	gate *Gate
	gen  uint64
}

// Begin 开始一次新请求，使之前发出的 Ticket 全部失效。
func (g *Gate) Begin() Ticket {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.gen++
	return Ticket{gate: g, gen: g.gen}
}

// Current 报告 t 是否仍是最新的请求。
func (t Ticket) Current() bool {
	t.gate.mu.Lock()
	defer t.gate.mu.Unlock()
	return t.gen == t.gate.gen
}

// Apply 仅当 t 仍是最新请求时在锁内执行 fn，返回是否执行。
func (t Ticket) Apply(fn func()) bool {
	t.gate.mu.Lock()
	defer t.gate.mu.Unlock()
	if t.gen != t.gate.gen {
		return false
	}
	fn()
	return true
}

// Refresh 在 g 上开始一次请求，fetch 成功且期间没有更新的请求开始时才调用 apply。
func Refresh[T any](ctx context.Context, g *Gate, fetch func(context.Context) (T, error), apply func(T)) (bool, error) {
	ticket := g.Begin()
	v, err := fetch(ctx)
	if err != nil {
		return false, err
	}
	return ticket.Apply(func() { apply(v) }), nil
}

// RefreshQuestions 拉取问题列表并在结果仍然最新时交给 apply。
func (c *Client) RefreshQuestions(ctx context.Context, g *Gate, apply func([]model.QuestionRecord)) (bool, error) {
	return Refresh(ctx, g, c.Questions, apply)
}

// RefreshTrending 拉取热门回复并在结果仍然最新时交给 apply。
func (c *Client) RefreshTrending(ctx context.Context, g *Gate, apply func([]model.ResponseRecord)) (bool, error) {
	return Refresh(ctx, g, c.Trending, apply)
}

// RefreshResponses 拉取某个问题的回复并在结果仍然最新时交给 apply。
func (c *Client) RefreshResponses(ctx context.Context, g *Gate, questionID string, apply func([]model.ResponseRecord)) (bool, error) {
	fetch := func(ctx context.Context) ([]model.ResponseRecord, error) {
		return c.QuestionResponses(ctx, questionID)
	}
	return Refresh(ctx, g, fetch, apply)
}
