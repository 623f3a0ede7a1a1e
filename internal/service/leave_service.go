package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"unihub-board/internal/alert"
	"unihub-board/internal/dto"
	"unihub-board/internal/model"
	"unihub-board/internal/session"
)

// LeaveService 请假审批
type LeaveService interface {
	ListPending(ctx context.Context, sess *session.Session) ([]model.LeaveRequest, error)
	// Audit 审批后返回刷新后的待审批列表
	Audit(ctx context.Context, sess *session.Session, leaveID int64, status string) ([]model.LeaveRequest, error)
}

type leaveService struct {
	upstream Upstream
	guard    Guard
	alerts   *alert.Center
	logger   *zap.Logger
}

// NewLeaveService 创建 LeaveService 实例
func NewLeaveService(upstream Upstream, guard Guard, alerts *alert.Center, logger *zap.Logger) LeaveService {
	return &leaveService{upstream: upstream, guard: guard, alerts: alerts, logger: logger}
}

func (s *leaveService) ListPending(ctx context.Context, sess *session.Session) ([]model.LeaveRequest, error) {
	token, err := requireToken(sess)
	if err != nil {
		return nil, err
	}

	list, err := s.upstream.ListPendingLeaves(ctx, token)
	if err != nil {
		s.logger.Warn("获取待审批请假失败", zap.Error(err))
		alertFailure(s.alerts, "获取请假列表失败", err)
		return nil, err
	}
	return list, nil
}

func (s *leaveService) Audit(ctx context.Context, sess *session.Session, leaveID int64, status string) ([]model.LeaveRequest, error) {
	if leaveID <= 0 {
		return nil, alertInvalid(s.alerts, invalid("请假记录无效"))
	}
	st, ok := model.ParseLeaveStatus(status)
	if !ok || st == model.LeavePending {
		return nil, alertInvalid(s.alerts, invalid("审批结果只能是 approved 或 rejected"))
	}
	token, err := requireToken(sess)
	if err != nil {
		return nil, err
	}

	release, err := s.guard.Acquire(ctx, fmt.Sprintf("audit_leave:%d", leaveID))
	if err != nil {
		return nil, err
	}
	defer release()

	err = s.upstream.AuditLeave(ctx, token, &dto.AuditLeaveRequest{LeaveID: leaveID, Status: st.Key()})
	if err != nil {
		s.logger.Warn("审批失败", zap.Int64("leave_id", leaveID), zap.Error(err))
		alertFailure(s.alerts, "审批失败", err)
		return nil, err
	}

	s.logger.Info("审批完成", zap.Int64("leave_id", leaveID), zap.String("status", st.Key()))
	alertSuccess(s.alerts, "审批成功", "该请假申请"+st.Label())

	return s.ListPending(ctx, sess)
}
