package model

import "time"

// QuestionRecord 对应于数据库中的 'questions' 表。
type QuestionRecord struct {
	ID        string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	UserID    string    `gorm:"type:varchar(64);index;not null" json:"user_id"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	Tone      Tone      `gorm:"type:varchar(20);not null" json:"tone"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// TableName 指定了此模型在数据库中对应的表名。
func (QuestionRecord) TableName() string {
	return "questions"
}

// ResponseRecord 对应于数据库中的 'responses' 表。
type ResponseRecord struct {
	ID         string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	QuestionID string    `gorm:"type:varchar(36);index;not null" json:"question_id"`
	UserID     string    `gorm:"type:varchar(64);index;not null" json:"user_id"`
	Content    string    `gorm:"type:text;not null" json:"content"`
	IsEmoji    bool      `gorm:"not null;default:false" json:"is_emoji"`
	IsAI       bool      `gorm:"not null;default:false" json:"is_ai"`
	CreatedAt  time.Time `gorm:"autoCreateTime;index" json:"created_at"`
}

func (ResponseRecord) TableName() string {
	return "responses"
}

// Upvote 记录某个用户对某条回复的点赞，同一用户对同一回复只计一次。
type Upvote struct {
	ID         string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	ResponseID string    `gorm:"type:varchar(36);not null;uniqueIndex:idx_upvote_response_user" json:"response_id"`
	UserID     string    `gorm:"type:varchar(64);not null;uniqueIndex:idx_upvote_response_user" json:"user_id"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (Upvote) TableName() string {
	return "upvotes"
}

// Comment 是挂在回复下的评论。
type Comment struct {
	ID         string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	ResponseID string    `gorm:"type:varchar(36);index;not null" json:"response_id"`
	UserID     string    `gorm:"type:varchar(64);not null" json:"user_id"`
	Content    string    `gorm:"type:text;not null" json:"content"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (Comment) TableName() string {
	return "comments"
}
