package model

import "time"

// ReturnTaskTitle 返校签到任务的固定标题，历史数据靠标题识别
const ReturnTaskTitle = "返校签到"

// DingType 打卡任务类型
type DingType string

const (
	DingSignIn      DingType = "sign_in"
	DingDormCheck   DingType = "dorm_check"
	DingLeaveReturn DingType = "leave_return"
)

// Label 中文名称
func (t DingType) Label() string {
	switch t {
	case DingDormCheck:
		return "查寝"
	case DingLeaveReturn:
		return "返校"
	}
	return "签到"
}

// Valid 校验任务类型
func (t DingType) Valid() bool {
	switch t {
	case DingSignIn, DingDormCheck, DingLeaveReturn:
		return true
	}
	return false
}

// DingTask 打卡任务
type DingTask struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	StartTime time.Time `json:"start_time"`
	Deadline  time.Time `json:"deadline"`
	Type      DingType  `json:"type"`
	Latitude  float64   `json:"latitude,omitempty"`
	Longitude float64   `json:"longitude,omitempty"`
	Radius    float64   `json:"radius,omitempty"`
	DeptID    int64     `json:"dept_id,omitempty"`
	ClassID   int64     `json:"class_id,omitempty"`
	StudentID int64     `json:"student_id,omitempty"`
}

// IsReturnTask 标题完全等于“返校签到”
func (d DingTask) IsReturnTask() bool {
	return d.Title == ReturnTaskTitle
}

// DingRecordStatus 打卡记录状态
type DingRecordStatus string

const (
	DingPending  DingRecordStatus = "pending"
	DingComplete DingRecordStatus = "complete"
	DingLate     DingRecordStatus = "late"
)

// Label 中文名称，未知状态按未完成处理
func (s DingRecordStatus) Label() string {
	switch s {
	case DingComplete:
		return "已完成"
	case DingLate:
		return "迟到"
	}
	return "未完成"
}

// DingRecord 单个学生的打卡记录
type DingRecord struct {
	StudentID   int64            `json:"student_id"`
	StudentName string           `json:"student_name"`
	StudentNo   string           `json:"student_no"`
	Status      DingRecordStatus `json:"status"`
	DingTime    *time.Time       `json:"ding_time,omitempty"`
	Location    string           `json:"location"`
}

// Progress 已完成数 / 总数
func Progress(records []DingRecord) (complete, total int) {
	for _, r := range records {
		if r.Status == DingComplete {
			complete++
		}
	}
	return complete, len(records)
}

// DingStats 打卡统计
type DingStats struct {
	TotalTasks   int `json:"total_tasks"`
	TotalRecords int `json:"total_records"`
	Complete     int `json:"complete"`
	Late         int `json:"late"`
	Pending      int `json:"pending"`
}
