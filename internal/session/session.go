// Package session 管理控制台的登录态。
//
// 登录态只有一个 Bearer Token（附带从 Token 中读出的角色与过期时间），
// 持久化在文件或 Redis 中，跨进程重启保留；每个请求通过 context 显式携带，
// 业务代码不读取任何全局状态。
package session

import (
	"context"
	"errors"
	"time"

	"unihub-board/pkg/jwt"
)

// ErrNoSession 没有可用的登录态
var ErrNoSession = errors.New("未登录")

// Session 当前登录态
type Session struct {
	Token     string    `json:"token"`
	Role      string    `json:"role,omitempty"`
	ExpiresAt time.Time `json:"expires_at,omitempty"`
}

// IsExpired 无过期时间的 Token 视为永不过期
func (s *Session) IsExpired(now time.Time) bool {
	if s == nil || s.Token == "" {
		return true
	}
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}

// Store 登录态持久化接口
type Store interface {
	Load(ctx context.Context) (*Session, error)
	Save(ctx context.Context, s *Session) error
	Clear(ctx context.Context) error
}

// FromToken 由上游签发的 Token 构造登录态
// 非 JWT 格式的 Token 同样接受，只是没有角色与过期时间
func FromToken(token string, inspector *jwt.Inspector) *Session {
	s := &Session{Token: token}
	if inspector == nil {
		return s
	}
	claims, err := inspector.Inspect(token)
	if err != nil {
		return s
	}
	s.Role = claims.RoleName()
	if claims.ExpiresAt != nil {
		s.ExpiresAt = claims.ExpiresAt.Time
	}
	return s
}

// ── context 传递 ──

type ctxKey struct{}

// WithSession 将登录态放入 context
func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

// FromContext 取出登录态
func FromContext(ctx context.Context) (*Session, bool) {
	s, ok := ctx.Value(ctxKey{}).(*Session)
	return s, ok && s != nil
}
