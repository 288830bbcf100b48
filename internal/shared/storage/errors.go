// Package storage 定义存储层领域错误
//
// 这些错误用于隔离业务层与底层存储引擎的错误类型，
// 各驱动（postgres/mysql/sqlite）的底层错误由 repository 转换为这些领域错误。
package storage

import "errors"

var (
	// ErrNotFound 实体不存在
	// 替代 sql.ErrNoRows / 影响行数为 0
	ErrNotFound = errors.New("entity not found")

	// ErrDuplicate 唯一键冲突（如重复邮箱）
	ErrDuplicate = errors.New("duplicate: entity already exists")
)
