package model

import "time"

// InviteCodeLength 部门 / 班级邀请码长度
const InviteCodeLength = 8

// OrgKind 组织类型：辅导员管理部门，教师管理班级
type OrgKind string

const (
	OrgDepartment OrgKind = "dept"
	OrgClass      OrgKind = "class"
)

// Label 中文名称
func (k OrgKind) Label() string {
	if k == OrgClass {
		return "班级"
	}
	return "部门"
}

// Org 部门或班级
type Org struct {
	ID         int64     `json:"id"`
	Kind       OrgKind   `json:"kind"`
	Name       string    `json:"name"`
	InviteCode string    `json:"invite_code"`
	OwnerID    int64     `json:"owner_id"`
	CreatedAt  time.Time `json:"created_at"`
}

// Student 花名册中的学生
type Student struct {
	ID        int64  `json:"id"`
	Nickname  string `json:"nickname"`
	Email     string `json:"email"`
	StudentNo string `json:"student_no"`
	ParentID  int64  `json:"parent_id"`
}

// DisplayName 缺省昵称时显示 Unknown
func (s Student) DisplayName() string {
	if s.Nickname == "" {
		return "Unknown"
	}
	return s.Nickname
}

// DisplayNo 缺省学号时显示 -
func (s Student) DisplayNo() string {
	if s.StudentNo == "" {
		return "-"
	}
	return s.StudentNo
}

// OrgDetail 部门 / 班级详情（含花名册）
type OrgDetail struct {
	Org
	Students []Student `json:"students"`
}

// ValidInviteCode 校验邀请码格式
func ValidInviteCode(code string) bool {
	if len(code) != InviteCodeLength {
		return false
	}
	for _, r := range code {
		if !(r >= '0' && r <= '9' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z') {
			return false
		}
	}
	return true
}

// JoinPayload 班级二维码内容，移动端据 action 识别加入班级
type JoinPayload struct {
	Type   OrgKind `json:"type"`
	Code   string  `json:"code"`
	Action string  `json:"action"`
}

// NewJoinPayload 构造加入组织的二维码内容
func NewJoinPayload(kind OrgKind, code string) JoinPayload {
	action := "join_department"
	if kind == OrgClass {
		action = "join_class"
	}
	return JoinPayload{Type: kind, Code: code, Action: action}
}
