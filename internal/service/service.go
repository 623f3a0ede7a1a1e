package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"unihub-board/config"
	"unihub-board/internal/alert"
	"unihub-board/internal/client"
	"unihub-board/internal/dto"
	"unihub-board/internal/model"
	"unihub-board/internal/session"
	"unihub-board/pkg/jwt"
	"unihub-board/pkg/metrics"
)

// Upstream 页面逻辑依赖的上游接口，由 *client.Client 实现
type Upstream interface {
	Login(ctx context.Context, req *dto.LoginRequest) (*model.AuthResult, error)
	Register(ctx context.Context, req *dto.RegisterRequest) (*model.AuthResult, error)
	GetProfile(ctx context.Context, token string) (*model.UserProfile, error)

	ListMine(ctx context.Context, token string, kind model.OrgKind) ([]model.Org, error)
	CreateOrg(ctx context.Context, token string, kind model.OrgKind, name string) (*model.Org, error)
	OrgDetail(ctx context.Context, token string, kind model.OrgKind, id int64) (*model.OrgDetail, error)

	ListPendingLeaves(ctx context.Context, token string) ([]model.LeaveRequest, error)
	AuditLeave(ctx context.Context, token string, req *dto.AuditLeaveRequest) error
	GetLeaveBackInfo(ctx context.Context, token string) (*model.LeaveBackInfo, error)

	CreateDing(ctx context.Context, token string, req *dto.CreateDingRequest) (*model.DingTask, error)
	ListMyCreatedDings(ctx context.Context, token string) ([]model.DingTask, error)
	ListDingRecords(ctx context.Context, token string, dingID int64) ([]model.DingRecord, error)
	GetDingStats(ctx context.Context, token string) (*model.DingStats, error)

	CreateNotification(ctx context.Context, token string, req *dto.CreateNotificationRequest) error
	ExportData(ctx context.Context, token string, rows []dto.LabeledRow) (string, error)
	ResolveURL(relative string) string
}

var _ Upstream = (*client.Client)(nil)

// Service 所有页面 Service 的聚合入口
type Service struct {
	Auth         AuthService
	Profile      ProfileService
	Org          OrgService
	Leave        LeaveService
	Ding         DingService
	Dashboard    DashboardService
	Notification NotificationService
	Export       ExportService
}

// Deps 构造 Service 所需的依赖
type Deps struct {
	Config    *config.Config
	Upstream  Upstream
	Store     session.Store
	Guard     Guard
	Alerts    *alert.Center
	Inspector *jwt.Inspector
	Metrics   metrics.Recorder
	Logger    *zap.Logger
}

// NewService 创建 Service 聚合
func NewService(d Deps) *Service {
	if d.Metrics == nil {
		d.Metrics = metrics.Nop{}
	}
	if d.Guard == nil {
		d.Guard = NewMemoryGuard()
	}
	if d.Inspector == nil {
		d.Inspector = jwt.NewInspector()
	}
	concurrency := 0
	if d.Config != nil {
		concurrency = d.Config.Export.RecordConcurrency
	}

	org := NewOrgService(d.Upstream, d.Guard, d.Alerts, d.Logger)
	return &Service{
		Auth:         NewAuthService(d.Upstream, d.Store, d.Guard, d.Alerts, d.Inspector, d.Logger),
		Profile:      NewProfileService(d.Upstream, d.Alerts, d.Logger),
		Org:          org,
		Leave:        NewLeaveService(d.Upstream, d.Guard, d.Alerts, d.Logger),
		Ding:         NewDingService(d.Upstream, d.Guard, d.Alerts, d.Logger),
		Dashboard:    NewDashboardService(d.Upstream, d.Logger),
		Notification: NewNotificationService(d.Upstream, d.Guard, d.Alerts, d.Metrics, d.Logger),
		Export:       NewExportService(d.Upstream, d.Guard, d.Alerts, concurrency, d.Logger),
	}
}

// ── 通用错误 ──

var (
	ErrValidation   = errors.New("参数校验失败")
	ErrViewNotFound = errors.New("视图已失效，请刷新页面")
	ErrRowNotFound  = errors.New("记录不存在")
)

// ValidationError 表单校验错误，Message 直接展示给用户
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

func invalid(format string, args ...interface{}) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// requireToken 未登录直接返回，不发请求
func requireToken(sess *session.Session) (string, error) {
	if sess == nil || sess.Token == "" {
		return "", session.ErrNoSession
	}
	return sess.Token, nil
}

// unauthorizedOnly 只保留登录失效错误，其余错误由调用方降级处理
func unauthorizedOnly(err error) error {
	if errors.Is(err, client.ErrUnauthorized) {
		return err
	}
	return nil
}

// alertFailure 操作失败时弹出提示
// 登录失效由 BFF 统一跳转登录页，不再弹提示
func alertFailure(alerts *alert.Center, title string, err error) {
	if alerts == nil || err == nil {
		return
	}
	if errors.Is(err, client.ErrUnauthorized) || errors.Is(err, session.ErrNoSession) {
		return
	}
	alerts.Error(title, err.Error())
}

// alertInvalid 表单校验失败时提示并原样返回错误，此时不会发出任何请求
func alertInvalid(alerts *alert.Center, err error) error {
	if alerts != nil {
		alerts.Error("提示", err.Error())
	}
	return err
}

func alertSuccess(alerts *alert.Center, title, content string) {
	if alerts != nil {
		alerts.Success(title, content)
	}
}
