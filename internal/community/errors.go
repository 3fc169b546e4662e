package community

import "errors"

var (
	// ErrNotFound 表示引用的问题或回复不存在。
	ErrNotFound = errors.New("community: not found")
	// ErrValidation 表示输入不合法，变更未被应用。
	ErrValidation = errors.New("community: validation failed")
)
