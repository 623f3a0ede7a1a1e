package service

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"unihub-board/internal/alert"
	"unihub-board/internal/dto"
	"unihub-board/internal/model"
	"unihub-board/internal/session"
)

// ── 部门 / 班级页面 ──
//
// 辅导员管理部门，教师管理班级，两个页面逻辑一致，按 OrgKind 区分。

// OrgService 部门 / 班级业务接口
type OrgService interface {
	// Activate 进入页面：重新拉取列表并创建新视图
	Activate(ctx context.Context, sess *session.Session, kind model.OrgKind) (*dto.ViewResponse, error)
	// Create 创建后重新拉取列表
	Create(ctx context.Context, sess *session.Session, kind model.OrgKind, name string) (*dto.ViewResponse, error)
	// Toggle 展开或收起一行，首次展开时加载花名册
	Toggle(ctx context.Context, sess *session.Session, kind model.OrgKind, viewID string, orgID int64) (*dto.ToggleResponse, error)
	// InviteQR 班级二维码内容
	InviteQR(ctx context.Context, sess *session.Session, kind model.OrgKind, orgID int64) (*model.JoinPayload, error)
}

type orgService struct {
	upstream Upstream
	guard    Guard
	alerts   *alert.Center
	logger   *zap.Logger

	views map[model.OrgKind]*viewRegistry[model.Student]
}

// NewOrgService 创建 OrgService 实例
func NewOrgService(upstream Upstream, guard Guard, alerts *alert.Center, logger *zap.Logger) OrgService {
	return &orgService{
		upstream: upstream,
		guard:    guard,
		alerts:   alerts,
		logger:   logger,
		views: map[model.OrgKind]*viewRegistry[model.Student]{
			model.OrgDepartment: newViewRegistry[model.Student](),
			model.OrgClass:      newViewRegistry[model.Student](),
		},
	}
}

// ────────────────────── Activate ──────────────────────

func (s *orgService) Activate(ctx context.Context, sess *session.Session, kind model.OrgKind) (*dto.ViewResponse, error) {
	list, err := s.list(ctx, sess, kind)
	if err != nil {
		return nil, err
	}
	v := s.views[kind].create()
	return &dto.ViewResponse{ViewID: v.id, List: list}, nil
}

func (s *orgService) list(ctx context.Context, sess *session.Session, kind model.OrgKind) ([]model.Org, error) {
	token, err := requireToken(sess)
	if err != nil {
		return nil, err
	}

	list, err := s.upstream.ListMine(ctx, token, kind)
	if err != nil {
		s.logger.Warn("获取列表失败", zap.String("kind", string(kind)), zap.Error(err))
		alertFailure(s.alerts, fmt.Sprintf("获取%s列表失败", kind.Label()), err)
		return nil, err
	}
	return list, nil
}

// ────────────────────── Create ──────────────────────

func (s *orgService) Create(ctx context.Context, sess *session.Session, kind model.OrgKind, name string) (*dto.ViewResponse, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, alertInvalid(s.alerts, invalid("请输入%s名称", kind.Label()))
	}
	if utf8.RuneCountInString(name) > 100 {
		return nil, alertInvalid(s.alerts, invalid("%s名称不能超过 100 个字符", kind.Label()))
	}
	token, err := requireToken(sess)
	if err != nil {
		return nil, err
	}

	release, err := s.guard.Acquire(ctx, guardKey("create_"+string(kind), token))
	if err != nil {
		return nil, err
	}
	defer release()

	if _, err := s.upstream.CreateOrg(ctx, token, kind, name); err != nil {
		s.logger.Warn("创建失败", zap.String("kind", string(kind)), zap.String("name", name), zap.Error(err))
		alertFailure(s.alerts, "创建失败", err)
		return nil, err
	}

	s.logger.Info("创建成功", zap.String("kind", string(kind)), zap.String("name", name))
	alertSuccess(s.alerts, fmt.Sprintf("创建%s成功", kind.Label()),
		fmt.Sprintf("已生成%d位邀请码，根据需要分享给成员", model.InviteCodeLength))

	// 创建后以服务端列表为准
	return s.Activate(ctx, sess, kind)
}

// ────────────────────── Toggle ──────────────────────

func (s *orgService) Toggle(ctx context.Context, sess *session.Session, kind model.OrgKind, viewID string, orgID int64) (*dto.ToggleResponse, error) {
	token, err := requireToken(sess)
	if err != nil {
		return nil, err
	}
	v, err := s.views[kind].get(viewID)
	if err != nil {
		return nil, err
	}

	res, err := v.toggle(ctx, orgID, func(ctx context.Context) ([]model.Student, error) {
		d, err := s.upstream.OrgDetail(ctx, token, kind, orgID)
		if err != nil {
			return nil, err
		}
		return d.Students, nil
	})
	if err != nil {
		s.logger.Warn("加载花名册失败", zap.String("kind", string(kind)), zap.Int64("id", orgID), zap.Error(err))
		alertFailure(s.alerts, fmt.Sprintf("获取%s成员失败", kind.Label()), err)
		return nil, err
	}

	return &dto.ToggleResponse{
		ID:      orgID,
		Open:    res.Open,
		Loaded:  res.Loaded,
		Fetched: res.Fetched,
		Items:   res.Items,
	}, nil
}

// ────────────────────── InviteQR ──────────────────────

// InviteQR 每次都重新拉取列表，邀请码不跨页面缓存
func (s *orgService) InviteQR(ctx context.Context, sess *session.Session, kind model.OrgKind, orgID int64) (*model.JoinPayload, error) {
	list, err := s.list(ctx, sess, kind)
	if err != nil {
		return nil, err
	}
	for _, org := range list {
		if org.ID != orgID {
			continue
		}
		if org.InviteCode == "" {
			break
		}
		p := model.NewJoinPayload(kind, org.InviteCode)
		return &p, nil
	}
	return nil, ErrRowNotFound
}
