// Package service 包含了应用的业务逻辑层。
package service

import "askher-go/internal/community"

// 服务层与社区状态模型共用同一组错误值，handler 只需用 errors.Is 判断一次。
var (
	ErrNotFound   = community.ErrNotFound
	ErrValidation = community.ErrValidation
)
