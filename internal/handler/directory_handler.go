package handler

import (
	"askher-go/internal/service"

	"github.com/gin-gonic/gin"
)

// DirectoryHandler 提供热线与资源目录。
type DirectoryHandler struct {
	directoryService service.DirectoryService
}

// NewDirectoryHandler 创建一个新的 DirectoryHandler。
func NewDirectoryHandler(directoryService service.DirectoryService) *DirectoryHandler {
	return &DirectoryHandler{directoryService: directoryService}
}

func (h *DirectoryHandler) Hotlines(c *gin.Context) {
	ok(c, h.directoryService.Hotlines(c.Query("category")))
}

func (h *DirectoryHandler) Resources(c *gin.Context) {
	ok(c, h.directoryService.Resources(c.Query("category"), c.Query("tag")))
}
