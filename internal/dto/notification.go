package dto

// ── 通知模块 DTO ──

// CreateNotificationRequest 上游 POST /notifications 的请求体
type CreateNotificationRequest struct {
	Title      string `json:"title"`
	Content    string `json:"content"`
	TargetType string `json:"target_type"`
	TargetID   int64  `json:"target_id"`
}

// SendNotificationRequest 控制台多对象发送请求，targets 为 dept-1 / class-2 形式的键
type SendNotificationRequest struct {
	Title   string   `json:"title"`
	Content string   `json:"content"`
	Targets []string `json:"targets"`
}
