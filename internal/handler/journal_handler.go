package handler

import (
	"net/http"

	"askher-go/internal/service"

	"github.com/gin-gonic/gin"
)

// JournalHandler 处理 /api/v1/journal 下的私密日记请求，数据按设备隔离。
type JournalHandler struct {
	journalService service.JournalService
}

// NewJournalHandler 创建一个新的 JournalHandler。
func NewJournalHandler(journalService service.JournalService) *JournalHandler {
	return &JournalHandler{journalService: journalService}
}

// List 返回日记条目，最新在前；q 参数按标题、正文和标签过滤。
func (h *JournalHandler) List(c *gin.Context) {
	entries, err := h.journalService.List(deviceID(c), c.Query("q"))
	if err != nil {
		failWith(c, "JournalHandler", err)
		return
	}
	ok(c, entries)
}

func (h *JournalHandler) Create(c *gin.Context) {
	var req service.JournalInput
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid request body")
		return
	}
	entry, err := h.journalService.Create(deviceID(c), req)
	if err != nil {
		failWith(c, "JournalHandler", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"code": http.StatusCreated, "message": "success", "data": entry})
}

func (h *JournalHandler) Update(c *gin.Context) {
	var req service.JournalInput
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid request body")
		return
	}
	entry, err := h.journalService.Update(deviceID(c), c.Param("id"), req)
	if err != nil {
		failWith(c, "JournalHandler", err)
		return
	}
	ok(c, entry)
}

func (h *JournalHandler) Delete(c *gin.Context) {
	if err := h.journalService.Delete(deviceID(c), c.Param("id")); err != nil {
		failWith(c, "JournalHandler", err)
		return
	}
	ok(c, nil)
}

// Export 打包导出全部日记，返回限时下载链接。
func (h *JournalHandler) Export(c *gin.Context) {
	export, err := h.journalService.Export(c.Request.Context(), deviceID(c))
	if err != nil {
		failWith(c, "JournalHandler", err)
		return
	}
	ok(c, export)
}
