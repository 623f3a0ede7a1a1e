package dto

import (
	"bytes"
	"encoding/json"
)

// ── 数据导出模块 DTO ──

// ExportQueryRequest 查询打卡明细；UseDateRange 为 false 时查询全部历史数据
// 日期格式 2006-01-02，结束日当天包含在内
type ExportQueryRequest struct {
	UseDateRange bool   `json:"use_date_range"`
	StartDate    string `json:"start_date"`
	EndDate      string `json:"end_date"`
}

// FlatRecord 展平后的打卡明细行
type FlatRecord struct {
	TaskTitle   string `json:"task_title"`
	TaskType    string `json:"task_type"`
	TaskDate    string `json:"task_date"`
	StudentName string `json:"student_name"`
	StudentNo   string `json:"student_no"`
	Status      string `json:"status"`
	CheckInTime string `json:"check_in_time"`
	Location    string `json:"location"`
}

// ExportRowsRequest 导出请求，rows 来自上一次查询结果
type ExportRowsRequest struct {
	Rows []FlatRecord `json:"rows" binding:"required,min=1"`
}

// Cell 带表头的单元格
type Cell struct {
	Label string
	Value string
}

// LabeledRow 按表头顺序序列化为 JSON 对象，上游以键的顺序生成 Excel 列
type LabeledRow []Cell

// MarshalJSON 保持列顺序
func (r LabeledRow) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, c := range r {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(c.Label)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(c.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// ExportDataRequest 上游导出接口请求体
type ExportDataRequest struct {
	Data []LabeledRow `json:"data"`
}

// ExportResponse 导出结果
type ExportResponse struct {
	Path        string `json:"path"`
	DownloadURL string `json:"download_url"`
}
