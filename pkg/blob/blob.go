package blob

import (
	"context"
	"errors"
	"io"
)

// ErrNotFound 对象不存在
var ErrNotFound = errors.New("对象不存在")

// Store 对象存储接口（remote 模式的文件内容后端）
//
// 键格式约定为 `{courseId}/{category}/{生成文件名}`，
// 原始文件名只保留在元数据行，不进入存储路径。
type Store interface {
	// Put 写入对象（整体替换）
	Put(ctx context.Context, key string, r io.Reader) error
	// Get 读取对象内容，调用方负责 Close
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	// Delete 删除对象；对象不存在返回 ErrNotFound
	Delete(ctx context.Context, key string) error
}
