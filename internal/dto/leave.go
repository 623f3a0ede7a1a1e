package dto

// ── 请假模块 DTO ──

// AuditLeaveRequest 审批请假
type AuditLeaveRequest struct {
	LeaveID int64  `json:"leave_id" binding:"required,gt=0"`
	Status  string `json:"status"   binding:"required,oneof=approved rejected"`
}
