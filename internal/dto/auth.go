package dto

// ── 认证模块 DTO ──

// LoginRequest 登录请求，同时作为上游 POST /auth/login 的请求体
// 空值校验由 AuthService 完成，保证校验失败时不发出任何请求
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterRequest 注册请求，同时作为上游 POST /auth/register 的请求体
type RegisterRequest struct {
	Nickname   string `json:"nickname"`
	Email      string `json:"email"`
	Password   string `json:"password"`
	RoleKey    string `json:"role_key"`
	StudentNo  string `json:"student_no,omitempty"`
	StaffNo    string `json:"staff_no,omitempty"`
	InviteCode string `json:"invite_code,omitempty"`
}

// SessionResponse 登录成功后返回给前端的会话信息
type SessionResponse struct {
	Token     string `json:"token"`
	Role      string `json:"role,omitempty"`
	ExpiresAt string `json:"expires_at,omitempty"`
	Redirect  string `json:"redirect"`
}
