package service

import (
	"context"

	"go.uber.org/zap"

	"unihub-board/internal/alert"
	"unihub-board/internal/model"
	"unihub-board/internal/session"
)

// ProfileService 当前用户资料
type ProfileService interface {
	Get(ctx context.Context, sess *session.Session) (*model.UserProfile, error)
}

type profileService struct {
	upstream Upstream
	alerts   *alert.Center
	logger   *zap.Logger
}

// NewProfileService 创建 ProfileService 实例
func NewProfileService(upstream Upstream, alerts *alert.Center, logger *zap.Logger) ProfileService {
	return &profileService{upstream: upstream, alerts: alerts, logger: logger}
}

func (s *profileService) Get(ctx context.Context, sess *session.Session) (*model.UserProfile, error) {
	token, err := requireToken(sess)
	if err != nil {
		return nil, err
	}

	p, err := s.upstream.GetProfile(ctx, token)
	if err != nil {
		s.logger.Warn("获取用户信息失败", zap.Error(err))
		alertFailure(s.alerts, "获取用户信息失败", err)
		return nil, err
	}
	if p.Role.Key == "" {
		p.Role.Key = sess.Role
	}
	return p, nil
}
