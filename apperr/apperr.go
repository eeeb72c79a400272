// Package apperr 定义账本与身份模块共用的错误分类
package apperr

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrValidation 参数校验失败（金额、类别、必填字段）
	ErrValidation = errors.New("validation failed")
	// ErrNotFound 记录不存在
	ErrNotFound = errors.New("record not found")
	// ErrForbidden 记录不属于当前用户
	ErrForbidden = errors.New("forbidden")
	// ErrConflict 用户名已被占用
	ErrConflict = errors.New("conflict")
	// ErrAuth 用户名或密码错误
	ErrAuth = errors.New("invalid credentials")
	// ErrStorage 存储后端故障
	ErrStorage = errors.New("storage failure")
)

// ValidationError 带字段信息的校验错误
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// Is 使 errors.Is(err, ErrValidation) 成立
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// Invalid 构造校验错误
func Invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// StorageError 包装存储层原始错误，错误链保持可追溯
type StorageError struct {
	Err error
}

func (e *StorageError) Error() string {
	return "storage: " + e.Err.Error()
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// Is 使 errors.Is(err, ErrStorage) 成立
func (e *StorageError) Is(target error) bool {
	return target == ErrStorage
}

// Storage 将后端错误包装为 StorageError，op 描述失败的操作；err 为 nil 时返回 nil
func Storage(err error, op string) error {
	if err == nil {
		return nil
	}
	return &StorageError{Err: errors.Wrap(err, op)}
}

// NotFoundf 返回带上下文的 ErrNotFound
func NotFoundf(format string, args ...interface{}) error {
	return errors.Wrapf(ErrNotFound, format, args...)
}

// Forbiddenf 返回带上下文的 ErrForbidden
func Forbiddenf(format string, args ...interface{}) error {
	return errors.Wrapf(ErrForbidden, format, args...)
}
