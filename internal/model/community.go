// Package model 包含了应用的数据模型定义。
package model

import (
	"strings"
	"time"
)

// Tone 表示提问者期望得到的回应风格，仅用于展示，不参与路由。
type Tone string

const (
	ToneAdvice        Tone = "advice"
	ToneListen        Tone = "listen"
	ToneEncouragement Tone = "encouragement"
)

// ParseTone 解析前端或后端传入的语气值，"just_listen" 是后端表结构使用的别名。
func ParseTone(raw string) (Tone, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "advice":
		return ToneAdvice, true
	case "listen", "just_listen":
		return ToneListen, true
	case "encouragement":
		return ToneEncouragement, true
	}
	return "", false
}

// Valid 报告 t 是否是受支持的语气。
func (t Tone) Valid() bool {
	switch t {
	case ToneAdvice, ToneListen, ToneEncouragement:
		return true
	}
	return false
}

// User 是当前设备/会话对应的匿名用户档案，以 JSON 形式保存在 "askher-user" 槽位中。
type User struct {
	ID             string `json:"id"`
	Points         int    `json:"points"`
	HeartsReceived int    `json:"heartsReceived"`
	QuestionsAsked int    `json:"questionsAsked"`
	ResponsesGiven int    `json:"responsesGiven"`
}

// Question 是社区中的一条提问。Responses 按追加顺序保存（最早的在前）。
type Question struct {
	ID        string     `json:"id"`
	Content   string     `json:"content"`
	Tone      Tone       `json:"tone"`
	CreatedAt time.Time  `json:"createdAt"`
	UserID    string     `json:"userId"`
	Responses []Response `json:"responses"`
	IsPublic  bool       `json:"isPublic"`
	Tags      []string   `json:"tags"`
}

// Clone 返回一个与原问题不共享切片的副本。
func (q Question) Clone() Question {
	cp := q
	cp.Responses = append([]Response(nil), q.Responses...)
	cp.Tags = append([]string(nil), q.Tags...)
	return cp
}

// Response 是对某个问题的一条回复，创建后不可变。
type Response struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
	UserID    string    `json:"userId"`
	IsAI      bool      `json:"isAI"`
}
