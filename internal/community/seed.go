package community

import (
	"time"

	"askher-go/internal/model"
)

// SystemUserID 是示例问题的作者。
const SystemUserID = "system"

// SampleQuestions 返回新会话默认看到的三条公开示例问题，时间相对于 now。
func SampleQuestions(now time.Time) []model.Question {
	return []model.Question{
		{
			ID:        "q1",
			Content:   "How do you handle feeling overwhelmed at work when deadlines are approaching?",
			Tone:      model.ToneAdvice,
			CreatedAt: now.Add(-24 * time.Hour),
			UserID:    SystemUserID,
			Responses: []model.Response{
				{
					ID:        "r1",
					Content:   "I break down tasks into smaller chunks and tackle them one by one. It helps me see progress and feel less overwhelmed.",
					CreatedAt: now.Add(-12 * time.Hour),
					UserID:    "user1",
				},
				{
					ID:        "r2",
					Content:   "Taking short breaks to breathe or meditate helps me. Sometimes stepping away for 5 minutes clears my mind.",
					CreatedAt: now.Add(-6 * time.Hour),
					UserID:    "user2",
				},
			},
			IsPublic: true,
			Tags:     []string{"work", "stress", "time-management"},
		},
		{
			ID:        "q2",
			Content:   "I'm constantly comparing myself to others on social media and it's affecting my self-esteem. Does anyone else struggle with this?",
			Tone:      model.ToneListen,
			CreatedAt: now.Add(-48 * time.Hour),
			UserID:    SystemUserID,
			Responses: []model.Response{
				{
					ID:        "r3",
					Content:   "I've been there too. Remember that people only post their highlights, not their struggles. You're seeing their curated life, not reality.",
					CreatedAt: now.Add(-24 * time.Hour),
					UserID:    "user3",
				},
			},
			IsPublic: true,
			Tags:     []string{"social-media", "self-esteem", "mental-health"},
		},
		{
			ID:        "q3",
			Content:   "I recently had to make a difficult decision that I know was right for me, but I still feel guilty about it. How do I move forward?",
			Tone:      model.ToneEncouragement,
			CreatedAt: now.Add(-72 * time.Hour),
			UserID:    SystemUserID,
			Responses: []model.Response{},
			IsPublic:  true,
			Tags:      []string{"decisions", "guilt", "self-care"},
		},
	}
}
