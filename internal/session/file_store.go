package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// FileStore 将登录态写入本地 JSON 文件（权限 0600）
type FileStore struct {
	path string
	mu   sync.Mutex
}

// NewFileStore 创建文件存储，目录不存在时在首次保存时创建
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (f *FileStore) Load(_ context.Context) (*Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNoSession
	}
	if err != nil {
		return nil, fmt.Errorf("读取登录态失败: %w", err)
	}

	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		// 文件损坏按未登录处理
		return nil, ErrNoSession
	}
	if s.Token == "" {
		return nil, ErrNoSession
	}
	return &s, nil
}

func (f *FileStore) Save(_ context.Context, s *Session) error {
	if s == nil || s.Token == "" {
		return errors.New("登录态缺少 token")
	}
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("序列化登录态失败: %w", err)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return fmt.Errorf("创建登录态目录失败: %w", err)
	}
	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("写入登录态失败: %w", err)
	}
	return os.Rename(tmp, f.path)
}

func (f *FileStore) Clear(_ context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := os.Remove(f.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("清除登录态失败: %w", err)
	}
	return nil
}
