package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// DeviceIDHeader 标识一个匿名设备，对应浏览器中的本地存储槽位。
	DeviceIDHeader = "X-Device-ID"
	// DeviceIDKey 是设备 id 在 gin.Context 中的键。
	DeviceIDKey = "deviceID"
	maxDeviceID = 64
)

// DeviceID 读取 X-Device-ID 请求头；缺失或过长时生成新的 id。
// 实际使用的 id 总会通过响应头回传给客户端。
func DeviceID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader(DeviceIDHeader))
		if id == "" || len(id) > maxDeviceID {
			id = uuid.NewString()
		}
		c.Set(DeviceIDKey, id)
		c.Header(DeviceIDHeader, id)
		c.Next()
	}
}
