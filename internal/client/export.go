package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"unihub-board/internal/dto"
)

// ExportData POST /export/excel，上游生成 Excel 并返回相对路径
// 响应可能是 {"path": "..."}、{"data": "..."}、{"url": "..."} 或裸字符串
func (c *Client) ExportData(ctx context.Context, token string, rows []dto.LabeledRow) (string, error) {
	body, err := c.do(ctx, request{
		op:     "export_data",
		method: http.MethodPost,
		path:   "/export/excel",
		token:  token,
		auth:   true,
		body:   &dto.ExportDataRequest{Data: rows},
	})
	if err != nil {
		return "", err
	}

	path := exportPath(body)
	if path == "" {
		return "", fmt.Errorf("export_data: %w: 响应中缺少文件路径", ErrDecode)
	}
	return path, nil
}

func exportPath(body []byte) string {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return ""
	}
	if body[0] == '"' {
		var s string
		if json.Unmarshal(body, &s) == nil {
			return strings.TrimSpace(s)
		}
		return ""
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(body, &obj); err != nil {
		return ""
	}
	for _, k := range []string{"path", "file", "url", "data"} {
		raw, ok := obj[k]
		if !ok {
			continue
		}
		if p := exportPath(raw); p != "" {
			return p
		}
	}
	return ""
}
