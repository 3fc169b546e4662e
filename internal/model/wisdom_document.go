package model

import "time"

// WisdomDocument 定义了存储在 Elasticsearch 中的公开问题文档结构。
type WisdomDocument struct {
	QuestionID   string    `json:"question_id"`
	Content      string    `json:"content"`
	Tone         Tone      `json:"tone"`
	Tags         []string  `json:"tags"`
	Vector       []float32 `json:"vector,omitempty"`
	ModelVersion string    `json:"model_version"`
	IsPublic     bool      `json:"is_public"`
	CreatedAt    time.Time `json:"created_at"`
}

// WisdomSearchResult 定义了返回给前端的搜索结果结构。
type WisdomSearchResult struct {
	QuestionID string    `json:"questionId"`
	Content    string    `json:"content"`
	Tone       Tone      `json:"tone"`
	Tags       []string  `json:"tags"`
	Score      float64   `json:"score"`
	CreatedAt  time.Time `json:"createdAt"`
}
