// Package repository 提供了数据访问层的实现。
package repository

import (
	"errors"

	"gorm.io/gorm"
)

// ErrNotFound 表示请求的记录不存在。
var ErrNotFound = errors.New("record not found")

// translate 把 gorm 的未找到错误映射为 ErrNotFound。
func translate(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
