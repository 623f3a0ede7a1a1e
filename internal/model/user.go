package model

// ── 用户与角色 ──

// 角色标识，决定控制台可见的菜单与可调用的接口
const (
	RoleStudent   = "student"
	RoleCounselor = "counselor"
	RoleTeacher   = "teacher"
	RoleAdmin     = "admin"
)

// Role 角色
type Role struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Key  string `json:"key"`
}

// IsStaff 辅导员、教师、管理员均为教职工角色
func (r Role) IsStaff() bool {
	switch r.Key {
	case RoleCounselor, RoleTeacher, RoleAdmin:
		return true
	}
	return false
}

// ValidRoleKey 校验角色标识
func ValidRoleKey(key string) bool {
	switch key {
	case RoleStudent, RoleCounselor, RoleTeacher, RoleAdmin:
		return true
	}
	return false
}

// UserProfile 当前登录用户资料
type UserProfile struct {
	ID        int64  `json:"id"`
	Nickname  string `json:"nickname"`
	Email     string `json:"email"`
	Role      Role   `json:"role"`
	StudentNo string `json:"student_no,omitempty"`
	StaffNo   string `json:"staff_no,omitempty"`
}

// AuthResult 登录 / 注册结果
type AuthResult struct {
	Token string       `json:"token"`
	User  *UserProfile `json:"user,omitempty"`
}
