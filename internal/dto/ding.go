package dto

// ── 打卡模块 DTO ──

// CreateDingRequest 发起打卡，同时作为上游 POST /dings/createdings 的请求体
// 时间为 RFC3339 字符串；dept_id / class_id / student_id 必须且只能填一个
type CreateDingRequest struct {
	Title     string  `json:"title"`
	StartTime string  `json:"start_time"`
	EndTime   string  `json:"end_time"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Radius    float64 `json:"radius"`
	Type      string  `json:"type"`
	DeptID    *int64  `json:"dept_id,omitempty"`
	ClassID   *int64  `json:"class_id,omitempty"`
	StudentID *int64  `json:"student_id,omitempty"`
}

// DingListQuery 打卡列表视图：normal 常规任务 / return 返校签到
type DingListQuery struct {
	View string `form:"view"`
}
