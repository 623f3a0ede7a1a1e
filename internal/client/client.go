// Package client 是校园后端的类型化 HTTP 客户端。
//
// 每个上游接口对应一个方法：拼接 URL、附加 Content-Type 与 Bearer Token、
// 序列化请求体、发起一次请求，并把响应映射为 internal/model 中的规范类型或错误。
// 客户端本身无状态，不缓存、不重试。
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"unihub-board/config"
	"unihub-board/pkg/metrics"
)

const (
	// DefaultBaseURL 上游默认地址（含版本前缀）
	DefaultBaseURL = "http://127.0.0.1:8080/api/v1"

	maxResponseBody = 10 << 20
	userAgent       = "unihub-board/1.0"
)

// Client 校园后端 API 客户端
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
	metrics    metrics.Recorder
}

// Option 可选配置
type Option func(*Client)

// WithHTTPClient 替换底层 http.Client（测试时注入 httptest 客户端）
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithMetrics 注入指标记录器
func WithMetrics(r metrics.Recorder) Option {
	return func(c *Client) { c.metrics = r }
}

// New 创建客户端
func New(cfg *config.UpstreamConfig, logger *zap.Logger, opts ...Option) *Client {
	base := strings.TrimRight(cfg.BaseURL, "/")
	if base == "" {
		base = DefaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	c := &Client{
		baseURL:    base,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
		metrics:    metrics.Nop{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL 上游地址
func (c *Client) BaseURL() string {
	return c.baseURL
}

// ResolveURL 将上游返回的相对路径（如 resources/Export/Sheet1_1.xlsx）解析为可下载的绝对地址
func (c *Client) ResolveURL(relative string) string {
	if u, err := url.Parse(relative); err == nil && u.IsAbs() {
		return relative
	}
	return c.baseURL + "/" + strings.TrimLeft(relative, "/")
}

type requestIDKey struct{}

// WithRequestID 将 BFF 的请求追踪 ID 放入 context，上游请求会透传 X-Request-ID
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

func requestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// request 描述一次上游调用
type request struct {
	op     string
	method string
	path   string
	token  string
	auth   bool
	body   interface{}
}

// do 发起请求，返回 2xx 响应体；非 2xx 返回 *APIError，网络失败返回 *TransportError
func (c *Client) do(ctx context.Context, r request) ([]byte, error) {
	if r.auth && r.token == "" {
		return nil, &APIError{Operation: r.op, StatusCode: ErrMissingToken.StatusCode, Message: ErrMissingToken.Message}
	}

	var reader io.Reader
	if r.body != nil {
		payload, err := json.Marshal(r.body)
		if err != nil {
			return nil, fmt.Errorf("%s 序列化请求体失败: %w", r.op, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, r.method, c.baseURL+r.path, reader)
	if err != nil {
		return nil, fmt.Errorf("%s 创建请求失败: %w", r.op, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	if r.auth {
		req.Header.Set("Authorization", "Bearer "+r.token)
	}
	if r.method == http.MethodPost {
		req.Header.Set("Idempotency-Key", uuid.NewString())
	}
	rid := requestIDFrom(ctx)
	if rid != "" {
		req.Header.Set("X-Request-ID", rid)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.RecordTransportError(r.op)
		c.logger.Warn("上游请求失败",
			zap.String("request_id", rid),
			zap.String("operation", r.op),
			zap.String("path", r.path),
			zap.Error(err),
		)
		return nil, &TransportError{Operation: r.op, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	elapsed := time.Since(start)
	c.metrics.ObserveUpstream(r.op, resp.StatusCode, elapsed)
	if err != nil {
		return nil, &TransportError{Operation: r.op, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{
			Operation:  r.op,
			StatusCode: resp.StatusCode,
			Message:    errorMessage(resp.StatusCode, body),
		}
		c.logger.Warn("上游返回错误",
			zap.String("request_id", rid),
			zap.String("operation", r.op),
			zap.Int("status", resp.StatusCode),
			zap.String("message", apiErr.Message),
			zap.Duration("latency", elapsed),
		)
		return nil, apiErr
	}

	c.logger.Debug("上游请求完成",
		zap.String("operation", r.op),
		zap.Int("status", resp.StatusCode),
		zap.Duration("latency", elapsed),
	)
	return body, nil
}

// decode 解码 2xx 响应体，失败时包装为 ErrDecode
func decode(op string, body []byte, v interface{}) error {
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("%s: %w: %v", op, ErrDecode, err)
	}
	return nil
}
