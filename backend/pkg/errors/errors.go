package errors

import (
	"errors"
	"fmt"
)

// ── 业务错误分类 ──
// 所有层共用同一组哨兵错误，Handler 通过 errors.Is 映射为业务码，无需解析消息文本。

var (
	// ErrInvalidRange 日期区间无效（开始日期不早于结束日期）
	ErrInvalidRange = errors.New("日期区间无效：开始日期必须早于结束日期")
	// ErrSegmentIndex 学期序号超出学习周期可划分的学期数
	ErrSegmentIndex = errors.New("学期序号超出学习周期范围")
	// ErrRecordNotFound 持久化记录不存在
	ErrRecordNotFound = errors.New("记录不存在")
	// ErrCorruptRecord 持久化记录结构损坏或缺少必填字段
	ErrCorruptRecord = errors.New("记录已损坏")
	// ErrStorageWrite 写入存储失败（权限、磁盘空间等）
	ErrStorageWrite = errors.New("写入存储失败")
	// ErrAuthFailure 用户名或密码错误
	ErrAuthFailure = errors.New("用户名或密码错误")
	// ErrNameTaken 用户名已被占用
	ErrNameTaken = errors.New("用户名已被占用")
	// ErrValidation 输入校验失败（成绩、学分、名称等）
	ErrValidation = errors.New("输入校验失败")
)

// StorageError 存储层错误，携带操作与路径上下文
type StorageError struct {
	Op   string // load | create | update | list ...
	Path string
	Kind error // 上面的哨兵错误之一
	Err  error // 底层原因（可为空）
}

func (e *StorageError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s %s: %v: %v", e.Op, e.Path, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Kind)
}

// Unwrap 返回底层原因；没有底层原因时返回错误分类
func (e *StorageError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return e.Kind
}

// Is 同时匹配错误分类与底层原因
func (e *StorageError) Is(target error) bool {
	if e.Kind != nil && errors.Is(e.Kind, target) {
		return true
	}
	return e.Err != nil && errors.Is(e.Err, target)
}

// Validation 构造带字段说明的校验错误
func Validation(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// Corrupt 构造带说明的记录损坏错误
func Corrupt(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrCorruptRecord, fmt.Sprintf(format, args...))
}
