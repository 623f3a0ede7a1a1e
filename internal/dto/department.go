package dto

// ── 部门 / 班级模块 DTO ──

// CreateOrgRequest 创建部门或班级，同时作为上游请求体 {name}
type CreateOrgRequest struct {
	Name string `json:"name" binding:"required,max=100"`
}

// ToggleResponse 展开 / 收起一行后的状态
type ToggleResponse struct {
	ID       int64       `json:"id"`
	Open     bool        `json:"open"`
	Loaded   bool        `json:"loaded"`
	Fetched  bool        `json:"fetched"`
	Items    interface{} `json:"items,omitempty"`
	Progress *Progress   `json:"progress,omitempty"`
}

// Progress 打卡进度
type Progress struct {
	Complete int `json:"complete"`
	Total    int `json:"total"`
}

// ViewResponse 列表视图：每次进入页面生成新的视图 ID，展开缓存仅在该视图内有效
type ViewResponse struct {
	ViewID string      `json:"view_id"`
	List   interface{} `json:"list"`
}
