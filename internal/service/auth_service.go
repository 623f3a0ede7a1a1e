package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"unihub-board/internal/alert"
	"unihub-board/internal/dto"
	"unihub-board/internal/model"
	"unihub-board/internal/session"
	"unihub-board/pkg/jwt"
)

var (
	ErrLoginNoToken    = errors.New("请检查用户名和密码")
	ErrRegisterNoToken = errors.New("注册成功但未返回登录凭证，请手动登录")
)

// AuthService 登录 / 注册 / 登出
type AuthService interface {
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.SessionResponse, error)
	Register(ctx context.Context, req *dto.RegisterRequest) (*dto.SessionResponse, error)
	Logout(ctx context.Context) error
	// CurrentSession 读取持久化的登录态，已过期的会被清除
	CurrentSession(ctx context.Context) (*session.Session, error)
}

type authService struct {
	upstream  Upstream
	store     session.Store
	guard     Guard
	alerts    *alert.Center
	inspector *jwt.Inspector
	logger    *zap.Logger
	now       func() time.Time
}

// NewAuthService 创建 AuthService 实例
func NewAuthService(
	upstream Upstream,
	store session.Store,
	guard Guard,
	alerts *alert.Center,
	inspector *jwt.Inspector,
	logger *zap.Logger,
) AuthService {
	return &authService{
		upstream:  upstream,
		store:     store,
		guard:     guard,
		alerts:    alerts,
		inspector: inspector,
		logger:    logger,
		now:       time.Now,
	}
}

func (s *authService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.SessionResponse, error) {
	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || req.Password == "" {
		return nil, alertInvalid(s.alerts, invalid("请输入邮箱和密码"))
	}

	release, err := s.guard.Acquire(ctx, guardKey("login", req.Email))
	if err != nil {
		return nil, err
	}
	defer release()

	res, err := s.upstream.Login(ctx, req)
	if err != nil {
		s.logger.Warn("登录失败", zap.String("email", req.Email), zap.Error(err))
		s.alertCredentialError("登录失败", err)
		return nil, err
	}
	if res.Token == "" {
		alertFailure(s.alerts, "登录失败", ErrLoginNoToken)
		return nil, ErrLoginNoToken
	}

	sess, err := s.persist(ctx, res.Token, res.User)
	if err != nil {
		return nil, err
	}
	alertSuccess(s.alerts, "登录成功", "欢迎回来")
	return toSessionResponse(sess), nil
}

func (s *authService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.SessionResponse, error) {
	if err := validateRegister(req); err != nil {
		return nil, alertInvalid(s.alerts, err)
	}

	release, err := s.guard.Acquire(ctx, guardKey("register", req.Email))
	if err != nil {
		return nil, err
	}
	defer release()

	res, err := s.upstream.Register(ctx, req)
	if err != nil {
		s.logger.Warn("注册失败", zap.String("email", req.Email), zap.Error(err))
		s.alertCredentialError("注册失败", err)
		return nil, err
	}
	if res.Token == "" {
		alertFailure(s.alerts, "注册失败", ErrRegisterNoToken)
		return nil, ErrRegisterNoToken
	}

	sess, err := s.persist(ctx, res.Token, res.User)
	if err != nil {
		return nil, err
	}
	alertSuccess(s.alerts, "注册成功", "已自动登录")
	return toSessionResponse(sess), nil
}

func (s *authService) Logout(ctx context.Context) error {
	return s.store.Clear(ctx)
}

func (s *authService) CurrentSession(ctx context.Context) (*session.Session, error) {
	sess, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	if sess.IsExpired(s.now()) {
		if err := s.store.Clear(ctx); err != nil {
			s.logger.Warn("清除过期登录态失败", zap.Error(err))
		}
		return nil, session.ErrNoSession
	}
	return sess, nil
}

// alertCredentialError 登录 / 注册接口的 401 表示凭证错误而非登录态失效，同样需要提示
func (s *authService) alertCredentialError(title string, err error) {
	if s.alerts != nil {
		s.alerts.Error(title, err.Error())
	}
}

// persist 保存登录态；Token 中没有角色时退回到响应里的用户角色
func (s *authService) persist(ctx context.Context, token string, user *model.UserProfile) (*session.Session, error) {
	sess := session.FromToken(token, s.inspector)
	if sess.Role == "" && user != nil {
		sess.Role = user.Role.Key
	}
	if err := s.store.Save(ctx, sess); err != nil {
		s.logger.Error("保存登录态失败", zap.Error(err))
		return nil, err
	}
	return sess, nil
}

func validateRegister(req *dto.RegisterRequest) error {
	req.Nickname = strings.TrimSpace(req.Nickname)
	req.Email = strings.TrimSpace(req.Email)
	req.InviteCode = strings.TrimSpace(req.InviteCode)

	switch {
	case req.Nickname == "":
		return invalid("请输入昵称")
	case req.Email == "" || !strings.Contains(req.Email, "@"):
		return invalid("请输入有效的邮箱")
	case req.Password == "":
		return invalid("请输入密码")
	case !model.ValidRoleKey(req.RoleKey):
		return invalid("请选择身份")
	}

	if req.RoleKey == model.RoleStudent {
		if strings.TrimSpace(req.StudentNo) == "" {
			return invalid("学生注册需要填写学号")
		}
	} else if strings.TrimSpace(req.StaffNo) == "" {
		return invalid("教职工注册需要填写工号")
	}

	if req.InviteCode != "" && !model.ValidInviteCode(req.InviteCode) {
		return invalid("邀请码应为 %d 位字母或数字", model.InviteCodeLength)
	}
	return nil
}

func toSessionResponse(sess *session.Session) *dto.SessionResponse {
	resp := &dto.SessionResponse{Token: sess.Token, Role: sess.Role, Redirect: "/"}
	if !sess.ExpiresAt.IsZero() {
		resp.ExpiresAt = sess.ExpiresAt.Format(time.RFC3339)
	}
	return resp
}

