package httpx

import (
	"errors"
	"fmt"
	"net/http"

	"hamutea-admin/internal/shared/storage"
)

// Kind 错误分类，决定 HTTP 状态码
type Kind int

const (
	KindValidation Kind = iota + 1
	KindUnauthorized
	KindForbidden
	KindNotFound
	KindInternal
)

// Status 返回对应的 HTTP 状态码
func (k Kind) Status() int {
	switch k {
	case KindValidation:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

// Error 可直接呈现给客户端的错误
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func Validation(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

func Unauthorized(message string) *Error {
	return &Error{Kind: KindUnauthorized, Message: message}
}

func Forbidden(message string) *Error {
	return &Error{Kind: KindForbidden, Message: message}
}

func NotFound(message string) *Error {
	return &Error{Kind: KindNotFound, Message: message}
}

// Internal 包装未预期错误，消息固定，细节仅在非生产环境返回
func Internal(err error) *Error {
	return &Error{Kind: KindInternal, Message: internalMessage, Err: err}
}

// OrNotFound 把 storage.ErrNotFound 换成带资源名的 404，其他错误原样返回
func OrNotFound(err error, message string) error {
	if errors.Is(err, storage.ErrNotFound) {
		return NotFound(message)
	}
	return err
}

const internalMessage = "Internal server error"

// classify 将任意错误归类为 *Error
func classify(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return &Error{Kind: KindNotFound, Message: "Resource not found", Err: err}
	case errors.Is(err, storage.ErrDuplicate):
		return &Error{Kind: KindValidation, Message: "Resource already exists", Err: err}
	}
	return Internal(err)
}
