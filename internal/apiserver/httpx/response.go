// Package httpx HTTP 响应封装与错误分类
//
// 所有接口统一返回 Envelope：
//
//	{"success": bool, "data"?: any, "message"?: string, "count"?: int, "error"?: string}
package httpx

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"hamutea-admin/pkg/logging"
)

// Envelope 统一响应结构
type Envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
	Count   *int   `json:"count,omitempty"`
	Error   string `json:"error,omitempty"`
}

// WriteJSON 将数据以 JSON 格式写入 HTTP 响应
func WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// OK 成功响应
func OK(w http.ResponseWriter, status int, data any) {
	WriteJSON(w, status, Envelope{Success: true, Data: data})
}

// Message 带提示信息的成功响应，data 可为 nil
func Message(w http.ResponseWriter, status int, message string, data any) {
	WriteJSON(w, status, Envelope{Success: true, Message: message, Data: data})
}

// List 列表响应
func List(w http.ResponseWriter, data any, count int) {
	WriteJSON(w, http.StatusOK, Envelope{Success: true, Data: data, Count: &count})
}

// Responder 错误响应器
type Responder struct {
	exposeErrors bool
	log          *logging.Logger
}

// NewResponder 创建错误响应器，exposeErrors 为 true 时 500 响应携带底层错误信息
func NewResponder(exposeErrors bool, log *logging.Logger) *Responder {
	if log == nil {
		log = logging.Discard()
	}
	return &Responder{exposeErrors: exposeErrors, log: log}
}

// Error 按错误分类写响应，500 会记录日志
func (rs *Responder) Error(w http.ResponseWriter, r *http.Request, err error) {
	e := classify(err)
	env := Envelope{Success: false, Message: e.Message}
	if e.Kind == KindInternal {
		rs.log.WithContext(r.Context()).WithError(err).Error("request failed",
			"method", r.Method, "path", r.URL.Path)
		if rs.exposeErrors && e.Err != nil {
			env.Error = e.Err.Error()
		}
	}
	WriteJSON(w, e.Kind.Status(), env)
}

// PathID 解析路径中的数字 ID
func PathID(r *http.Request, name string) (int64, error) {
	raw := r.PathValue(name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, Validation("Invalid %s: %q", name, raw)
	}
	return id, nil
}

// DecodeJSON 解析请求体，空请求体视为空对象
func DecodeJSON(r *http.Request, dst any) error {
	err := json.NewDecoder(r.Body).Decode(dst)
	if err == nil || errors.Is(err, io.EOF) {
		return nil
	}
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		return Validation("Invalid value for field %s", typeErr.Field)
	}
	return &Error{Kind: KindValidation, Message: "Invalid JSON body", Err: fmt.Errorf("decode body: %w", err)}
}
