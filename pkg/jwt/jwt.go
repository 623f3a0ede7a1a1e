package jwt

import (
	"errors"
	"strings"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"
)

var (
	ErrTokenExpired = errors.New("token 已过期")
	ErrTokenInvalid = errors.New("token 无效")
)

// Claims 校园后端签发的 Token 中控制台关心的声明
// 控制台不持有签名密钥，只做未验签的读取，真正的校验由后端完成
type Claims struct {
	Role    string `json:"role,omitempty"`
	RoleKey string `json:"role_key,omitempty"`
	jwtv5.RegisteredClaims
}

// RoleName 兼容 role / role_key 两种写法
func (c *Claims) RoleName() string {
	if c.RoleKey != "" {
		return c.RoleKey
	}
	return c.Role
}

// Inspector Bearer Token 检查器
type Inspector struct {
	parser *jwtv5.Parser
	now    func() time.Time
}

// NewInspector 创建 Token 检查器
func NewInspector() *Inspector {
	return &Inspector{
		parser: jwtv5.NewParser(),
		now:    time.Now,
	}
}

// Inspect 读取 Token 声明
// 非 JWT 格式（后端可能签发不透明 Token）返回 ErrTokenInvalid，调用方可按无过期时间处理
func (i *Inspector) Inspect(tokenString string) (*Claims, error) {
	if strings.Count(tokenString, ".") != 2 {
		return nil, ErrTokenInvalid
	}

	claims := &Claims{}
	if _, _, err := i.parser.ParseUnverified(tokenString, claims); err != nil {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}

// ExpiresAt 返回过期时间，无 exp 声明时返回零值
func (i *Inspector) ExpiresAt(tokenString string) (time.Time, error) {
	claims, err := i.Inspect(tokenString)
	if err != nil {
		return time.Time{}, err
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, nil
	}
	return claims.ExpiresAt.Time, nil
}

// CheckExpiry Token 已过期时返回 ErrTokenExpired
func (i *Inspector) CheckExpiry(tokenString string) error {
	exp, err := i.ExpiresAt(tokenString)
	if err != nil {
		return err
	}
	if !exp.IsZero() && !i.now().Before(exp) {
		return ErrTokenExpired
	}
	return nil
}
