package client

import (
	"context"
	"errors"
	"net/http"

	"unihub-board/internal/dto"
	"unihub-board/internal/model"
)

// ListPendingLeaves GET /leaves/pending
func (c *Client) ListPendingLeaves(ctx context.Context, token string) ([]model.LeaveRequest, error) {
	body, err := c.do(ctx, request{
		op:     "list_pending_leaves",
		method: http.MethodGet,
		path:   "/leaves/pending",
		token:  token,
		auth:   true,
	})
	if err != nil {
		return nil, err
	}

	var ws []wireLeave
	if err := decode("list_pending_leaves", unwrapList(body, "leaves"), &ws); err != nil {
		return nil, err
	}
	return leavesToModel(ws), nil
}

// AuditLeave POST /leaves/audit {leave_id, status}
func (c *Client) AuditLeave(ctx context.Context, token string, payload *dto.AuditLeaveRequest) error {
	_, err := c.do(ctx, request{
		op:     "audit_leave",
		method: http.MethodPost,
		path:   "/leaves/audit",
		token:  token,
		auth:   true,
		body:   payload,
	})
	return err
}

// GetLeaveBackInfo POST /leaves/leavebackinfo（空请求体）
// 上游返回 403 时视为无数据：学生等角色没有权限查看辅导员看板，页面应降级显示而不是报错
func (c *Client) GetLeaveBackInfo(ctx context.Context, token string) (*model.LeaveBackInfo, error) {
	body, err := c.do(ctx, request{
		op:     "leave_back_info",
		method: http.MethodPost,
		path:   "/leaves/leavebackinfo",
		token:  token,
		auth:   true,
	})
	if err != nil {
		if errors.Is(err, ErrForbidden) {
			return model.EmptyLeaveBackInfo(), nil
		}
		return nil, err
	}

	var w wireLeaveBackInfo
	if len(body) > 0 {
		if err := decode("leave_back_info", unwrapObject(body), &w); err != nil {
			return nil, err
		}
	}
	return w.toModel(), nil
}
