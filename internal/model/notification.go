package model

import "fmt"

// Notification 通知，每次只发给一个部门或班级
type Notification struct {
	Title      string  `json:"title"`
	Content    string  `json:"content"`
	TargetType OrgKind `json:"target_type"`
	TargetID   int64   `json:"target_id"`
}

// Target 可选的通知对象
type Target struct {
	ID   int64   `json:"id"`
	Name string  `json:"name"`
	Type OrgKind `json:"type"`
	Key  string  `json:"key"`
}

// TargetKey 通知对象的唯一键，如 dept-3 / class-7
func TargetKey(kind OrgKind, id int64) string {
	return fmt.Sprintf("%s-%d", kind, id)
}

// TargetFromOrg 组织转通知对象
func TargetFromOrg(o Org) Target {
	return Target{ID: o.ID, Name: o.Name, Type: o.Kind, Key: TargetKey(o.Kind, o.ID)}
}
