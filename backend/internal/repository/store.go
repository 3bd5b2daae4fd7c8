package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	apperrors "github.com/chrissi82/Dashboard-IU/backend/pkg/errors"
)

// fileStore 本地 JSON 文件存储
//
// 每个账户对应 root 下的一个目录。同一账户目录的读-改-写由一把进程内互斥锁串行化；
// 跨进程并发不在保护范围内。写入先落到同目录临时文件再 rename，单个文件的替换是原子的。
type fileStore struct {
	root string

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newFileStore(root string) *fileStore {
	return &fileStore{root: root, locks: make(map[string]*sync.Mutex)}
}

// accountDir 账户目录（调用方需保证用户名已校验）
func (s *fileStore) accountDir(username string) string {
	return filepath.Join(s.root, username)
}

// lock 获取账户级互斥锁，返回解锁函数
func (s *fileStore) lock(username string) func() {
	key := filepath.Clean(s.accountDir(username))

	s.mu.Lock()
	l, ok := s.locks[key]
	if !ok {
		l = &sync.Mutex{}
		s.locks[key] = l
	}
	s.mu.Unlock()

	l.Lock()
	return l.Unlock
}

// readJSON 读取并解码 JSON 文件
// 文件不存在 → ErrRecordNotFound；语法或结构错误 → ErrCorruptRecord
func (s *fileStore) readJSON(ctx context.Context, op, path string, v any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &apperrors.StorageError{Op: op, Path: path, Kind: apperrors.ErrRecordNotFound}
		}
		return &apperrors.StorageError{Op: op, Path: path, Kind: apperrors.ErrCorruptRecord, Err: err}
	}
	if err := json.Unmarshal(data, v); err != nil {
		return &apperrors.StorageError{Op: op, Path: path, Kind: apperrors.ErrCorruptRecord, Err: err}
	}
	return nil
}

// writeJSON 以 4 空格缩进、非 ASCII 字符原样输出的格式原子写入
func (s *fileStore) writeJSON(ctx context.Context, op, path string, v any) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(v); err != nil {
		return &apperrors.StorageError{Op: op, Path: path, Kind: apperrors.ErrStorageWrite, Err: err}
	}

	if err := writeFileAtomic(path, buf.Bytes()); err != nil {
		return &apperrors.StorageError{Op: op, Path: path, Kind: apperrors.ErrStorageWrite, Err: err}
	}
	return nil
}

func writeFileAtomic(path string, data []byte) (err error) {
	dir, base := filepath.Split(path)
	tmp, err := os.CreateTemp(dir, "."+base+".tmp-*")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err = tmp.Sync(); err != nil {
		_ = tmp.Close()
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	if err = os.Chmod(tmp.Name(), 0o644); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// fileExists 判断普通文件是否存在
func fileExists(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	return info.Mode().IsRegular(), nil
}

// dirExists 判断目录是否存在
func dirExists(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	return info.IsDir(), nil
}
