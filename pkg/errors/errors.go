package errors

import (
	"errors"

	"gorm.io/gorm"
)

// ErrNotFound 数据集中不存在对应记录
var ErrNotFound = errors.New("记录不存在")

// IsNotFound 判断错误是否表示"记录不存在"（兼容 GORM 的 ErrRecordNotFound）
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, gorm.ErrRecordNotFound)
}
