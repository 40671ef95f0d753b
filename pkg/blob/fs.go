package blob

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// FSStore 本地磁盘对象存储（开发环境用）
// 键中的 "/" 映射为子目录；键不允许越出根目录
type FSStore struct {
	root string
}

// NewFSStore 创建磁盘存储，确保根目录存在
func NewFSStore(root string) (*FSStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("创建存储目录失败: %w", err)
	}
	return &FSStore{root: root}, nil
}

func (s *FSStore) resolve(key string) (string, error) {
	p := filepath.Join(s.root, filepath.FromSlash(key))
	if !strings.HasPrefix(p, filepath.Clean(s.root)+string(os.PathSeparator)) {
		return "", fmt.Errorf("非法对象键 %q", key)
	}
	return p, nil
}

func (s *FSStore) Put(_ context.Context, key string, r io.Reader) error {
	p, err := s.resolve(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return fmt.Errorf("创建对象目录失败: %w", err)
	}

	f, err := os.Create(p)
	if err != nil {
		return fmt.Errorf("创建对象文件失败: %w", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(p)
		return fmt.Errorf("写入对象文件失败: %w", err)
	}
	return f.Close()
}

func (s *FSStore) Get(_ context.Context, key string) (io.ReadCloser, error) {
	p, err := s.resolve(key)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(p)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("打开对象文件失败: %w", err)
	}
	return f, nil
}

func (s *FSStore) Delete(_ context.Context, key string) error {
	p, err := s.resolve(key)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil {
		if os.IsNotExist(err) {
			return ErrNotFound
		}
		return fmt.Errorf("删除对象文件失败: %w", err)
	}
	return nil
}
