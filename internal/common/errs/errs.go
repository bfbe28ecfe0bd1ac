package errs

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind 业务错误分类（对外映射为 HTTP 状态码）。
type Kind int

const (
	KindInternal        Kind = iota // 内部错误 / 存储层异常
	KindNotFound                    // 引用的记录不存在
	KindInvalidArgument             // 参数非法（状态枚举、数量等）
	KindConflict                    // 冲突（重复开票、并发约束失败）
	KindInsufficient                // 库存不足
	KindUnauthenticated             // 未认证 / 凭证错误
)

// Error 统一的领域错误。Msg 面向调用方；Err 保留底层原因（不直接外泄）。
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func NotFound(format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Msg: fmt.Sprintf(format, args...)}
}

func InvalidArgument(format string, args ...any) *Error {
	return &Error{Kind: KindInvalidArgument, Msg: fmt.Sprintf(format, args...)}
}

func Conflict(format string, args ...any) *Error {
	return &Error{Kind: KindConflict, Msg: fmt.Sprintf(format, args...)}
}

func Insufficient(format string, args ...any) *Error {
	return &Error{Kind: KindInsufficient, Msg: fmt.Sprintf(format, args...)}
}

func Unauthenticated(format string, args ...any) *Error {
	return &Error{Kind: KindUnauthenticated, Msg: fmt.Sprintf(format, args...)}
}

// Internal 包装底层错误。对外只展示 msg，底层 err 进入日志。
func Internal(err error, msg string) *Error {
	return &Error{Kind: KindInternal, Msg: msg, Err: err}
}

// KindOf 提取错误分类；非 *Error 一律按 Internal 处理。
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) && e != nil {
		return e.Kind
	}
	return KindInternal
}

// Message 返回可安全外泄的错误文案。
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) && e != nil {
		return e.Msg
	}
	return "internal error"
}

// HTTPStatus 将错误分类映射为 HTTP 状态码。
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindNotFound:
		return http.StatusNotFound
	case KindInvalidArgument, KindInsufficient:
		return http.StatusBadRequest
	case KindConflict:
		return http.StatusConflict
	case KindUnauthenticated:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}
