package community

import (
	"sort"
	"strings"

	"askher-go/internal/model"
)

// WallFilter 是 Wisdom Wall 的筛选条件，零值不做任何筛选。
type WallFilter struct {
	// Keyword 不区分大小写地匹配正文或任一标签。
	Keyword string
	// Tags 要求问题带有其中每一个标签（精确匹配）。
	Tags []string
}

// Match 报告问题是否同时满足关键词与标签条件。
func (f WallFilter) Match(q model.Question) bool {
	if kw := strings.ToLower(strings.TrimSpace(f.Keyword)); kw != "" {
		found := strings.Contains(strings.ToLower(q.Content), kw)
		for _, tag := range q.Tags {
			if found {
				break
			}
			found = strings.Contains(strings.ToLower(tag), kw)
		}
		if !found {
			return false
		}
	}
	for _, want := range f.Tags {
		if !hasTag(q.Tags, want) {
			return false
		}
	}
	return true
}

// FilterQuestions 返回满足 f 的问题，保持输入顺序。
func FilterQuestions(questions []model.Question, f WallFilter) []model.Question {
	out := make([]model.Question, 0, len(questions))
	for _, q := range questions {
		if f.Match(q) {
			out = append(out, q)
		}
	}
	return out
}

// UniqueTags 返回问题集合中出现过的全部标签，去重后按字典序排列。
func UniqueTags(questions []model.Question) []string {
	seen := make(map[string]struct{})
	out := []string{}
	for _, q := range questions {
		for _, tag := range q.Tags {
			if _, dup := seen[tag]; dup {
				continue
			}
			seen[tag] = struct{}{}
			out = append(out, tag)
		}
	}
	sort.Strings(out)
	return out
}

func hasTag(tags []string, want string) bool {
	for _, tag := range tags {
		if tag == want {
			return true
		}
	}
	return false
}
