package model

import (
	"bytes"
	"encoding/json"
)

// Optional 可区分"未提供"与"零值"的 JSON 字段
//
// 字段缺失或为 null 时 Set == false；显式的 0、false、"" 均视为已提供。
type Optional[T comparable] struct {
	Value T
	Set   bool
}

// Some 构造已赋值的 Optional
func Some[T comparable](v T) Optional[T] {
	return Optional[T]{Value: v, Set: true}
}

// UnmarshalJSON 实现 json.Unmarshaler
func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*o = Optional[T]{}
		return nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*o = Optional[T]{Value: v, Set: true}
	return nil
}

// MarshalJSON 实现 json.Marshaler，未赋值时输出 null
func (o Optional[T]) MarshalJSON() ([]byte, error) {
	if !o.Set {
		return []byte("null"), nil
	}
	return json.Marshal(o.Value)
}

// Or 已提供时返回新值，否则返回 fallback
func (o Optional[T]) Or(fallback T) T {
	if o.Set {
		return o.Value
	}
	return fallback
}

// OrNonZero 仅当已提供且非零值时返回新值
func (o Optional[T]) OrNonZero(fallback T) T {
	var zero T
	if o.Set && o.Value != zero {
		return o.Value
	}
	return fallback
}
