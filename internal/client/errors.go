package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"unicode/utf8"
)

// ── 上游错误分类 ──

var (
	ErrUnauthorized = errors.New("登录已失效，请重新登录")
	ErrForbidden    = errors.New("无权限访问")
	ErrNotFound     = errors.New("资源不存在")
	ErrTransport    = errors.New("网络异常，请稍后再试")
	ErrDecode       = errors.New("上游响应格式错误")
)

// ErrMissingToken 受保护接口未携带 Token，不会发出请求
var ErrMissingToken = &APIError{StatusCode: http.StatusUnauthorized, Message: "缺少登录凭证"}

// maxErrorText 错误信息回退为原始响应文本时的最大长度
const maxErrorText = 512

// APIError 上游返回的非 2xx 响应
// Error() 只返回上游给出的可读信息，前端原样展示
type APIError struct {
	Operation  string
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return e.Message
}

// Is 按状态码归类，调用方统一使用 errors.Is(err, client.ErrUnauthorized) 判断
func (e *APIError) Is(target error) bool {
	switch target {
	case ErrUnauthorized:
		return e.StatusCode == http.StatusUnauthorized
	case ErrForbidden:
		return e.StatusCode == http.StatusForbidden
	case ErrNotFound:
		return e.StatusCode == http.StatusNotFound
	}
	return false
}

// TransportError 网络层失败（连接拒绝、超时等）
type TransportError struct {
	Operation string
	Err       error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s 请求失败: %v", e.Operation, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

func (e *TransportError) Is(target error) bool { return target == ErrTransport }

// StatusCode 提取上游状态码，非 APIError 返回 0
func StatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

// errorMessage 从错误响应体中提取可读信息
// 优先取 JSON 中的 error / message / msg / detail 字段，否则回退为原始文本，再回退为状态文本
func errorMessage(statusCode int, body []byte) string {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err == nil {
		for _, key := range []string{"error", "message", "msg", "detail"} {
			raw, ok := fields[key]
			if !ok {
				continue
			}
			var s string
			if err := json.Unmarshal(raw, &s); err == nil && strings.TrimSpace(s) != "" {
				return strings.TrimSpace(s)
			}
		}
	}

	text := strings.TrimSpace(string(body))
	if text != "" && !strings.HasPrefix(text, "{") {
		return truncate(text, maxErrorText)
	}

	if st := http.StatusText(statusCode); st != "" {
		return st
	}
	return fmt.Sprintf("HTTP %d", statusCode)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	s = s[:n]
	for !utf8.ValidString(s) {
		s = s[:len(s)-1]
	}
	return s
}
