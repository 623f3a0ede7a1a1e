package service

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"unihub-board/internal/model"
	"unihub-board/internal/session"
)

// DashboardStats 首页看板
// 两项数据互不影响：除登录失效外，任何一项失败只记录日志并保留零值
type DashboardStats struct {
	LeaveBack *model.LeaveBackInfo `json:"leave_back"`
	Ding      *model.DingStats     `json:"ding"`
	Errors    []string             `json:"errors,omitempty"`
}

// DashboardService 首页统计
type DashboardService interface {
	Stats(ctx context.Context, sess *session.Session) (*DashboardStats, error)
}

type dashboardService struct {
	upstream Upstream
	logger   *zap.Logger
}

// NewDashboardService 创建 DashboardService 实例
func NewDashboardService(upstream Upstream, logger *zap.Logger) DashboardService {
	return &dashboardService{upstream: upstream, logger: logger}
}

func (s *dashboardService) Stats(ctx context.Context, sess *session.Session) (*DashboardStats, error) {
	token, err := requireToken(sess)
	if err != nil {
		return nil, err
	}

	var (
		leaveBack *model.LeaveBackInfo
		ding      *model.DingStats
		leaveErr  error
		dingErr   error
	)

	// 单项失败不取消另一项；只有登录失效需要整体失败并跳转登录页
	var g errgroup.Group
	g.Go(func() error {
		leaveBack, leaveErr = s.upstream.GetLeaveBackInfo(ctx, token)
		return unauthorizedOnly(leaveErr)
	})
	g.Go(func() error {
		ding, dingErr = s.upstream.GetDingStats(ctx, token)
		return unauthorizedOnly(dingErr)
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	stats := &DashboardStats{LeaveBack: leaveBack, Ding: ding}
	if leaveErr != nil {
		s.logger.Warn("获取销假统计失败", zap.Error(leaveErr))
		stats.LeaveBack = model.EmptyLeaveBackInfo()
		stats.Errors = append(stats.Errors, "leave_back: "+leaveErr.Error())
	}
	if dingErr != nil {
		s.logger.Warn("获取打卡统计失败", zap.Error(dingErr))
		stats.Ding = &model.DingStats{}
		stats.Errors = append(stats.Errors, "ding: "+dingErr.Error())
	}
	return stats, nil
}
