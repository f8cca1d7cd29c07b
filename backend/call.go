// Package backend wraps calls into the connection backend. Every call
// resolves to a Result: transport errors and panics become failed results
// instead of propagating, and message codes are translated for display.
package backend

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/yllada/gterm/common"
)

// Response is the envelope every backend operation returns.
type Response struct {
	OK   bool        `json:"ok"`
	Msg  string      `json:"msg,omitempty"`
	Data interface{} `json:"data,omitempty"`
	Code string      `json:"code,omitempty"`
}

// OK returns a successful response carrying data and an optional code.
func OK(code string, data interface{}) *Response {
	return &Response{OK: true, Code: code, Data: data}
}

// Fail returns a failed response with a code and fallback message.
func Fail(code, msg string) *Response {
	return &Response{Code: code, Msg: msg}
}

// Result is what callers see after a backend call.
type Result[T any] struct {
	OK   bool
	Msg  string
	Data T
}

// Func performs one backend operation.
type Func func(ctx context.Context) (*Response, error)

// Call invokes fn and converts its outcome into a Result. A nil
// translator leaves messages untranslated.
func Call[T any](ctx context.Context, fn Func, tr Translator) (res Result[T]) {
	if err := ctx.Err(); err != nil {
		return Result[T]{Msg: err.Error()}
	}

	defer func() {
		if r := recover(); r != nil {
			common.LogError("Backend call panicked: %v", r)
			res = Result[T]{Msg: fmt.Sprintf("%v: %v", common.ErrBackendCall, r)}
		}
	}()

	resp, err := fn(ctx)
	if err != nil {
		common.LogWarn("Backend call failed: %v", err)
		return Result[T]{Msg: err.Error()}
	}
	if resp == nil {
		return Result[T]{Msg: common.ErrBackendCall.Error()}
	}
	return Handle[T](resp, tr)
}

// Handle converts an already received response into a Result.
func Handle[T any](resp *Response, tr Translator) Result[T] {
	msg := Translate(tr, resp.Code, resp.Msg)
	if !resp.OK {
		return Result[T]{Msg: msg}
	}

	data, err := convert[T](resp.Data)
	if err != nil {
		common.LogWarn("Unexpected backend payload: %v", err)
		return Result[T]{Msg: fmt.Errorf("%w: %w", common.ErrBackendCall, err).Error()}
	}
	return Result[T]{OK: true, Msg: msg, Data: data}
}

// convert coerces a decoded payload into T. Payloads that arrived as
// generic JSON values are re-encoded and decoded into T.
func convert[T any](v interface{}) (T, error) {
	var out T
	if v == nil {
		return out, nil
	}
	if typed, ok := v.(T); ok {
		return typed, nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return out, fmt.Errorf("encode %T: %w", v, err)
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, fmt.Errorf("decode into %T: %w", out, err)
	}
	return out, nil
}
