package llm

import "strings"

// toneHints 告诉模型提问者希望得到哪种回应。
var toneHints = map[string]string{
	"advice":        "The person is asking for practical advice.",
	"listen":        "The person mainly wants to be heard. Do not push solutions.",
	"just_listen":   "The person mainly wants to be heard. Do not push solutions.",
	"encouragement": "The person is looking for encouragement.",
}

// ToneHint 返回语气对应的提示句，未知语气返回空串。
func ToneHint(tone string) string {
	return toneHints[strings.ToLower(strings.TrimSpace(tone))]
}

// BuildMessages 组装 system 消息、历史消息和本轮用户输入。
// hint 非空时追加到 system 消息末尾。
func BuildMessages(system, hint string, history []Message, userInput string) []Message {
	msgs := make([]Message, 0, len(history)+2)
	sys := strings.TrimSpace(system)
	if hint != "" {
		if sys != "" {
			sys += "\n\n"
		}
		sys += hint
	}
	if sys != "" {
		msgs = append(msgs, Message{Role: "system", Content: sys})
	}
	msgs = append(msgs, history...)
	msgs = append(msgs, Message{Role: "user", Content: userInput})
	return msgs
}
