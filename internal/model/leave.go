package model

import (
	"strings"
	"time"
)

// LeaveStatus 请假状态
type LeaveStatus int

const (
	LeavePending  LeaveStatus = 0
	LeaveApproved LeaveStatus = 1
	LeaveRejected LeaveStatus = 2
)

// Label 中文名称
func (s LeaveStatus) Label() string {
	switch s {
	case LeavePending:
		return "待审批"
	case LeaveApproved:
		return "已通过"
	case LeaveRejected:
		return "已驳回"
	}
	return "未知"
}

// Key 上游审批接口使用的状态字符串
func (s LeaveStatus) Key() string {
	switch s {
	case LeaveApproved:
		return "approved"
	case LeaveRejected:
		return "rejected"
	}
	return "pending"
}

// ParseLeaveStatus 兼容字符串与数字两种写法
func ParseLeaveStatus(v string) (LeaveStatus, bool) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "0", "pending":
		return LeavePending, true
	case "1", "approved", "approve":
		return LeaveApproved, true
	case "2", "rejected", "reject":
		return LeaveRejected, true
	}
	return LeavePending, false
}

// LeaveType 请假类型
type LeaveType int

const (
	LeaveSick     LeaveType = 1
	LeavePersonal LeaveType = 2
)

// Label 中文名称
func (t LeaveType) Label() string {
	switch t {
	case LeaveSick:
		return "病假"
	case LeavePersonal:
		return "事假"
	}
	return "其他"
}

// LeaveRequest 请假申请
type LeaveRequest struct {
	ID          int64       `json:"id"`
	StudentID   int64       `json:"student_id"`
	StudentName string      `json:"student_name"`
	StudentNo   string      `json:"student_no"`
	Type        LeaveType   `json:"type"`
	StartTime   time.Time   `json:"start_time"`
	EndTime     time.Time   `json:"end_time"`
	Reason      string      `json:"reason"`
	Status      LeaveStatus `json:"status"`
}

// LeaveBackInfo 主页看板的请假销假统计
type LeaveBackInfo struct {
	Approved     []LeaveRequest `json:"approved"`
	Returned     []LeaveRequest `json:"returned"`
	LateReturned []LeaveRequest `json:"late_returned"`
	Leaving      []LeaveRequest `json:"leaving"`
}

// EmptyLeaveBackInfo 无权限或无数据时的默认值，各列表均为空而非 nil
func EmptyLeaveBackInfo() *LeaveBackInfo {
	return &LeaveBackInfo{
		Approved:     []LeaveRequest{},
		Returned:     []LeaveRequest{},
		LateReturned: []LeaveRequest{},
		Leaving:      []LeaveRequest{},
	}
}
