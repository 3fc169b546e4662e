// Package handler 包含了处理 HTTP 请求的控制器逻辑。
package handler

import (
	"errors"
	"net/http"

	"askher-go/internal/middleware"
	"askher-go/internal/service"
	"askher-go/pkg/log"

	"github.com/gin-gonic/gin"
)

// ok 写出统一的成功响应。
func ok(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, gin.H{"code": http.StatusOK, "message": "success", "data": data})
}

// fail 写出统一的错误响应。
func fail(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"code": status, "message": message, "data": nil})
}

// failWith 按服务层错误类型选择状态码：校验错误 400，不存在 404，其余 500。
func failWith(c *gin.Context, component string, err error) {
	switch {
	case errors.Is(err, service.ErrValidation):
		fail(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrNotFound):
		fail(c, http.StatusNotFound, err.Error())
	default:
		log.Errorf("[%s] 请求处理失败, path: %s, error: %v", component, c.Request.URL.Path, err)
		fail(c, http.StatusInternalServerError, "internal server error")
	}
}

func deviceID(c *gin.Context) string {
	return c.GetString(middleware.DeviceIDKey)
}
