package blob

import (
	"context"
	"fmt"
	"io"

	"github.com/kurin/blazer/b2"

	"github.com/Unbornmoral/academic-flow-compass/config"
)

// B2Store Backblaze B2 对象存储实现
type B2Store struct {
	client *b2.Client
	bucket *b2.Bucket
}

// NewB2Store 建立 B2 连接并定位目标 bucket
func NewB2Store(ctx context.Context, cfg *config.BlobConfig) (*B2Store, error) {
	client, err := b2.NewClient(ctx, cfg.B2AccountID, cfg.B2AppKey)
	if err != nil {
		return nil, fmt.Errorf("创建 B2 客户端失败: %w", err)
	}

	bucket, err := client.Bucket(ctx, cfg.B2Bucket)
	if err != nil {
		return nil, fmt.Errorf("获取 B2 bucket 失败: %w", err)
	}

	return &B2Store{client: client, bucket: bucket}, nil
}

func (s *B2Store) Put(ctx context.Context, key string, r io.Reader) error {
	w := s.bucket.Object(key).NewWriter(ctx)
	if _, err := io.Copy(w, r); err != nil {
		w.Close()
		return fmt.Errorf("写入对象失败: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("提交对象失败: %w", err)
	}
	return nil
}

func (s *B2Store) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	obj := s.bucket.Object(key)
	if _, err := obj.Attrs(ctx); err != nil {
		if b2.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("查询对象失败: %w", err)
	}
	return obj.NewReader(ctx), nil
}

func (s *B2Store) Delete(ctx context.Context, key string) error {
	if err := s.bucket.Object(key).Delete(ctx); err != nil {
		if b2.IsNotExist(err) {
			return ErrNotFound
		}
		return fmt.Errorf("删除对象失败: %w", err)
	}
	return nil
}
