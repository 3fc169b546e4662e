package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"askher-go/internal/service"
	"askher-go/pkg/log"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var (
	upgrader = websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			return true // 允许所有来源
		},
	}
)

// ChatHandler 负责聊天机器人的 HTTP 与 WebSocket 接口。
type ChatHandler struct {
	chatService service.ChatService
}

// NewChatHandler 创建一个新的 ChatHandler。
func NewChatHandler(chatService service.ChatService) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

// ChatRequest 是 POST /chatbot/chat 的请求体。
type ChatRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id"`
}

// GenerateRequest 是 POST /generate-response 的请求体。
type GenerateRequest struct {
	Question string `json:"question"`
	Tone     string `json:"tone"`
}

// Chat 回复一条消息。模型失败时返回 500，data 中仍带兜底回复和会话 id。
func (h *ChatHandler) Chat(c *gin.Context) {
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid request body")
		return
	}
	reply, err := h.chatService.Chat(c.Request.Context(), req.SessionID, req.Message)
	if err != nil {
		if errors.Is(err, service.ErrValidation) {
			fail(c, http.StatusBadRequest, err.Error())
			return
		}
		log.Errorf("[ChatHandler] 聊天失败: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"code": http.StatusInternalServerError, "message": "chatbot unavailable", "data": reply})
		return
	}
	ok(c, reply)
}

// GenerateResponse 是不带会话的一次性回复。
func (h *ChatHandler) GenerateResponse(c *gin.Context) {
	var req GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid request body")
		return
	}
	answer, err := h.chatService.GenerateResponse(c.Request.Context(), req.Question, req.Tone)
	if err != nil {
		failWith(c, "ChatHandler", err)
		return
	}
	ok(c, gin.H{"response": answer})
}

// Greeting 返回聊天界面的开场白。
func (h *ChatHandler) Greeting(c *gin.Context) {
	ok(c, gin.H{"response": service.Greeting})
}

// streamFrame 是客户端发来的 WebSocket 消息。
// 纯文本消息视为 {"message": 文本}；{"type":"stop"} 中断当前回复。
type streamFrame struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// lockedConn 串行化对同一连接的并发写。
type lockedConn struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (l *lockedConn) WriteMessage(messageType int, data []byte) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.conn.WriteMessage(messageType, data)
}

func (l *lockedConn) writeJSON(v interface{}) {
	b, err := json.Marshal(v)
	if err != nil {
		return
	}
	_ = l.WriteMessage(websocket.TextMessage, b)
}

func event(kind string, fields gin.H) gin.H {
	fields["type"] = kind
	fields["timestamp"] = time.Now().UnixMilli()
	return fields
}

// Stream 处理 /chatbot/stream 的 WebSocket 连接。
// 读循环始终运行，因此流式回复过程中也能收到停止指令；同一连接同时只生成一条回复。
func (h *ChatHandler) Stream(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error("WebSocket 升级失败", err)
		return
	}
	defer conn.Close()
	out := &lockedConn{conn: conn}

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	var (
		sessionMu sync.Mutex
		sessionID = c.Query("session_id")
		stopped   atomic.Bool
		busy      atomic.Bool
		wg        sync.WaitGroup
	)
	log.Infof("[ChatHandler] WebSocket 连接已建立, remote: %s", c.ClientIP())

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Warnf("[ChatHandler] 从 WebSocket 读取消息失败: %v", err)
			}
			break
		}

		var frame streamFrame
		if len(raw) == 0 || raw[0] != '{' || json.Unmarshal(raw, &frame) != nil {
			frame = streamFrame{Message: string(raw)}
		}
		if frame.Type == "stop" {
			stopped.Store(true)
			out.writeJSON(event("stop", gin.H{"message": "response stopped"}))
			continue
		}
		if strings.TrimSpace(frame.Message) == "" {
			out.writeJSON(event("error", gin.H{"error": "message is empty"}))
			continue
		}
		if !busy.CompareAndSwap(false, true) {
			out.writeJSON(event("error", gin.H{"error": "a reply is already streaming"}))
			continue
		}
		stopped.Store(false)

		sessionMu.Lock()
		current := sessionID
		sessionMu.Unlock()

		wg.Add(1)
		go func(message string) {
			defer wg.Done()
			defer busy.Store(false)

			sid, err := h.chatService.StreamChat(ctx, current, message, out, stopped.Load)
			if sid != "" {
				sessionMu.Lock()
				sessionID = sid
				sessionMu.Unlock()
			}
			status := "finished"
			switch {
			case err != nil:
				log.Errorf("[ChatHandler] 处理流式响应失败: %v", err)
				out.writeJSON(event("error", gin.H{"error": "chatbot unavailable, please try again later"}))
				status = "error"
			case stopped.Load():
				status = "stopped"
			}
			out.writeJSON(event("completion", gin.H{"status": status, "session_id": sid}))
		}(frame.Message)
	}
	cancel()
	wg.Wait()
}
