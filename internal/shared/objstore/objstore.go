// Package objstore 上传文件的对象存储
//
// 提供两种后端：本地文件系统（开发/单机部署）和 MinIO（S3 兼容）。
// 对象以 "/" 分隔的 key 寻址，例如 products/<uuid>.png。
package objstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"
)

// ErrNotFound 对象不存在
var ErrNotFound = errors.New("object not found")

// ErrInvalidKey key 非法（为空、绝对路径或包含 ..）
var ErrInvalidKey = errors.New("invalid object key")

// ObjectInfo 对象元信息
type ObjectInfo struct {
	Size        int64
	ContentType string
	ModTime     time.Time
}

// Store 对象存储接口
type Store interface {
	// Put 写入对象，size 未知时传 -1
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	// Open 读取对象，调用方负责关闭返回的 ReadCloser
	Open(ctx context.Context, key string) (io.ReadCloser, *ObjectInfo, error)
}

// CleanKey 校验并规范化 key
func CleanKey(key string) (string, error) {
	if key == "" || strings.HasPrefix(key, "/") || strings.Contains(key, "\\") {
		return "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	for _, seg := range strings.Split(key, "/") {
		if seg == ".." || seg == "." || seg == "" {
			return "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
		}
	}
	return path.Clean(key), nil
}
