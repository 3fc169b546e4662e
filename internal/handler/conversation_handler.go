package handler

import (
	"net/http"

	"askher-go/internal/service"

	"github.com/gin-gonic/gin"
)

// ConversationHandler 处理聊天记录相关的 API 请求。
type ConversationHandler struct {
	chatService service.ChatService
}

// NewConversationHandler 创建一个新的 ConversationHandler。
func NewConversationHandler(chatService service.ChatService) *ConversationHandler {
	return &ConversationHandler{chatService: chatService}
}

// GetHistory 返回 session_id 对应会话的消息记录。
func (h *ConversationHandler) GetHistory(c *gin.Context) {
	sessionID := c.Query("session_id")
	if sessionID == "" {
		fail(c, http.StatusBadRequest, "session_id is required")
		return
	}
	history, err := h.chatService.History(c.Request.Context(), sessionID)
	if err != nil {
		failWith(c, "ConversationHandler", err)
		return
	}
	ok(c, history)
}
