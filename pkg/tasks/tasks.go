// Package tasks defines the structure for tasks that are sent to Kafka.
package tasks

import (
	"context"
	"time"
)

// Type 区分后台任务的种类。
type Type string

const (
	// TypeAIReply 为论坛新问题生成一条 AI 支持性回复。
	TypeAIReply Type = "ai_reply"
	// TypeIndexQuestion 把公开到 Wisdom Wall 的问题写入搜索索引。
	TypeIndexQuestion Type = "index_question"
)

// Task represents a background job carried over Kafka.
type Task struct {
	ID         string    `json:"id"`
	Type       Type      `json:"type"`
	QuestionID string    `json:"question_id"`
	UserID     string    `json:"user_id,omitempty"`
	Content    string    `json:"content"`
	Tone       string    `json:"tone,omitempty"`
	Tags       []string  `json:"tags,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// Publisher 把任务投递到队列。
type Publisher interface {
	Publish(ctx context.Context, task Task) error
}

// Processor 处理从队列取出的任务。
type Processor interface {
	Process(ctx context.Context, task Task) error
}
