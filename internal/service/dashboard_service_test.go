package service

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"unihub-board/internal/client"
	"unihub-board/internal/model"
	"unihub-board/internal/session"
)

func TestDashboardService_Stats(t *testing.T) {
	up := newMockUpstream()
	up.stats = &model.DingStats{TotalTasks: 4, Complete: 10}
	up.leaveBack = &model.LeaveBackInfo{
		Approved:     []model.LeaveRequest{{ID: 1}},
		Returned:     []model.LeaveRequest{},
		LateReturned: []model.LeaveRequest{},
		Leaving:      []model.LeaveRequest{{ID: 2}},
	}
	svc := NewDashboardService(up, zap.NewNop())

	stats, err := svc.Stats(context.Background(), testSession)
	if err != nil {
		t.Fatalf("Stats 失败: %v", err)
	}
	if stats.Ding.TotalTasks != 4 || len(stats.LeaveBack.Leaving) != 1 || len(stats.Errors) != 0 {
		t.Errorf("统计错误: %+v", stats)
	}
}

func TestDashboardService_FailuresIsolated(t *testing.T) {
	up := newMockUpstream()
	up.statsErr = &client.APIError{StatusCode: 500, Message: "boom"}
	up.leaveBack = &model.LeaveBackInfo{Approved: []model.LeaveRequest{{ID: 1}}}
	svc := NewDashboardService(up, zap.NewNop())

	stats, err := svc.Stats(context.Background(), testSession)
	if err != nil {
		t.Fatalf("单项失败不应使整体失败: %v", err)
	}
	if len(stats.LeaveBack.Approved) != 1 {
		t.Error("成功的一项应保留数据")
	}
	if stats.Ding == nil || stats.Ding.TotalTasks != 0 || len(stats.Errors) != 1 {
		t.Errorf("失败的一项应保留零值: %+v", stats)
	}
}

func TestDashboardService_NoSession(t *testing.T) {
	svc := NewDashboardService(newMockUpstream(), zap.NewNop())
	if _, err := svc.Stats(context.Background(), nil); !errors.Is(err, session.ErrNoSession) {
		t.Errorf("未登录应返回 ErrNoSession，实际: %v", err)
	}
}

func TestDashboardService_Upstream401Fails(t *testing.T) {
	tests := []struct {
		name  string
		setup func(up *mockUpstream)
	}{
		{"打卡统计 401", func(up *mockUpstream) { up.statsErr = &client.APIError{StatusCode: 401, Message: "token expired"} }},
		{"销假统计 401", func(up *mockUpstream) { up.leaveBackErr = &client.APIError{StatusCode: 401, Message: "token expired"} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			up := newMockUpstream()
			tt.setup(up)
			svc := NewDashboardService(up, zap.NewNop())

			stats, err := svc.Stats(context.Background(), testSession)
			if !errors.Is(err, client.ErrUnauthorized) {
				t.Fatalf("登录失效期望 ErrUnauthorized，实际: %v", err)
			}
			if stats != nil {
				t.Errorf("登录失效时不应返回统计: %+v", stats)
			}
		})
	}
}
