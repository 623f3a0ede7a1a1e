package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"unihub-board/internal/alert"
	"unihub-board/internal/client"
	"unihub-board/internal/dto"
	"unihub-board/internal/model"
	"unihub-board/internal/session"
	"unihub-board/pkg/metrics"
)

// ErrPartialDelivery 部分通知发送失败
var ErrPartialDelivery = errors.New("部分通知发送失败")

// TargetResult 单个对象的发送结果
type TargetResult struct {
	Key   string `json:"key"`
	Name  string `json:"name"`
	Type  string `json:"type"`
	Error string `json:"error,omitempty"`
}

// SendReport 批量发送结果；上游每次只接受一个对象，失败的对象不会回滚已成功的
type SendReport struct {
	Succeeded []TargetResult `json:"succeeded"`
	Failed    []TargetResult `json:"failed"`
}

// Selection 当前可选对象与已选中的键
type Selection struct {
	Targets  []model.Target `json:"targets"`
	Selected []string       `json:"selected"`
}

// NotificationService 通知发送
type NotificationService interface {
	// Targets 加载可选对象：先部门后班级，任何一类失败都忽略
	Targets(ctx context.Context, sess *session.Session) (*Selection, error)
	Toggle(key string) (*Selection, error)
	// SelectAll 已全选时清空，否则全选
	SelectAll() *Selection
	// Send keys 为空时使用当前选中项
	Send(ctx context.Context, sess *session.Session, req *dto.SendNotificationRequest) (*SendReport, error)
}

type notificationService struct {
	upstream Upstream
	guard    Guard
	alerts   *alert.Center
	metrics  metrics.Recorder
	logger   *zap.Logger

	mu       sync.Mutex
	targets  []model.Target
	selected map[string]struct{}
}

// NewNotificationService 创建 NotificationService 实例
func NewNotificationService(upstream Upstream, guard Guard, alerts *alert.Center, rec metrics.Recorder, logger *zap.Logger) NotificationService {
	return &notificationService{
		upstream: upstream,
		guard:    guard,
		alerts:   alerts,
		metrics:  rec,
		logger:   logger,
		selected: make(map[string]struct{}),
	}
}

// ────────────────────── 对象选择 ──────────────────────

func (s *notificationService) Targets(ctx context.Context, sess *session.Session) (*Selection, error) {
	token, err := requireToken(sess)
	if err != nil {
		return nil, err
	}

	targets := make([]model.Target, 0)
	for _, kind := range []model.OrgKind{model.OrgDepartment, model.OrgClass} {
		list, err := s.upstream.ListMine(ctx, token, kind)
		if errors.Is(err, client.ErrUnauthorized) {
			return nil, err
		}
		if err != nil {
			// 用户可能只有一种身份，另一类接口返回 403 属正常
			s.logger.Debug("加载通知对象失败", zap.String("kind", string(kind)), zap.Error(err))
			continue
		}
		for _, o := range list {
			targets = append(targets, model.TargetFromOrg(o))
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.targets = targets
	// 丢弃已不存在的选中项
	for key := range s.selected {
		if _, ok := s.findLocked(key); !ok {
			delete(s.selected, key)
		}
	}
	return s.snapshotLocked(), nil
}

func (s *notificationService) Toggle(key string) (*Selection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.findLocked(key); !ok {
		return nil, alertInvalid(s.alerts, invalid("未知的发送对象：%s", key))
	}
	if _, ok := s.selected[key]; ok {
		delete(s.selected, key)
	} else {
		s.selected[key] = struct{}{}
	}
	return s.snapshotLocked(), nil
}

func (s *notificationService) SelectAll() *Selection {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.selected) == len(s.targets) {
		s.selected = make(map[string]struct{})
	} else {
		s.selected = make(map[string]struct{}, len(s.targets))
		for _, t := range s.targets {
			s.selected[t.Key] = struct{}{}
		}
	}
	return s.snapshotLocked()
}

func (s *notificationService) findLocked(key string) (model.Target, bool) {
	for _, t := range s.targets {
		if t.Key == key {
			return t, true
		}
	}
	return model.Target{}, false
}

func (s *notificationService) snapshotLocked() *Selection {
	sel := &Selection{
		Targets:  append([]model.Target(nil), s.targets...),
		Selected: make([]string, 0, len(s.selected)),
	}
	if sel.Targets == nil {
		sel.Targets = []model.Target{}
	}
	for key := range s.selected {
		sel.Selected = append(sel.Selected, key)
	}
	sort.Strings(sel.Selected)
	return sel
}

// ────────────────────── Send ──────────────────────

func (s *notificationService) Send(ctx context.Context, sess *session.Session, req *dto.SendNotificationRequest) (*SendReport, error) {
	title := strings.TrimSpace(req.Title)
	content := strings.TrimSpace(req.Content)

	s.mu.Lock()
	keys := req.Targets
	if len(keys) == 0 {
		for key := range s.selected {
			keys = append(keys, key)
		}
		sort.Strings(keys)
	}
	targets := make([]model.Target, 0, len(keys))
	seen := make(map[string]bool, len(keys))
	var unknown []string
	for _, key := range keys {
		if seen[key] {
			continue
		}
		seen[key] = true
		t, ok := s.findLocked(key)
		if !ok {
			unknown = append(unknown, key)
			continue
		}
		targets = append(targets, t)
	}
	s.mu.Unlock()

	if title == "" || content == "" || len(keys) == 0 {
		return nil, alertInvalid(s.alerts, invalid("请填写完整标题、内容并至少选择一个发送对象"))
	}
	if len(unknown) > 0 {
		return nil, alertInvalid(s.alerts, invalid("未知的发送对象：%s", strings.Join(unknown, ", ")))
	}
	token, err := requireToken(sess)
	if err != nil {
		return nil, err
	}

	release, err := s.guard.Acquire(ctx, guardKey("send_notification", token))
	if err != nil {
		return nil, err
	}
	defer release()

	// 每个对象一次请求，全部并发；单个失败不影响其他对象
	results := make([]error, len(targets))
	var g errgroup.Group
	for i, t := range targets {
		i, t := i, t
		g.Go(func() error {
			results[i] = s.upstream.CreateNotification(ctx, token, &dto.CreateNotificationRequest{
				Title:      title,
				Content:    content,
				TargetType: string(t.Type),
				TargetID:   t.ID,
			})
			return nil
		})
	}
	// 各对象的结果写入 results，Wait 只用于等待全部完成
	g.Wait()

	report := &SendReport{Succeeded: []TargetResult{}, Failed: []TargetResult{}}
	for i, t := range targets {
		r := TargetResult{Key: t.Key, Name: t.Name, Type: string(t.Type)}
		if results[i] != nil {
			r.Error = results[i].Error()
			report.Failed = append(report.Failed, r)
			s.logger.Warn("通知发送失败", zap.String("target", t.Key), zap.Error(results[i]))
			continue
		}
		report.Succeeded = append(report.Succeeded, r)
	}
	s.metrics.RecordFanOut("create_notification", len(report.Succeeded), len(report.Failed))

	if len(report.Failed) > 0 {
		// 登录失效时整批都会失败，交给上层跳转登录页
		for _, err := range results {
			if errors.Is(err, client.ErrUnauthorized) {
				return report, err
			}
		}
		first := report.Failed[0].Error
		alertFailure(s.alerts, "部分通知发送失败", errors.New(first))
		return report, fmt.Errorf("%w: %d/%d 失败: %s", ErrPartialDelivery, len(report.Failed), len(targets), first)
	}

	s.logger.Info("通知发送完成", zap.Int("count", len(targets)))
	alertSuccess(s.alerts, "发送成功", fmt.Sprintf("成功发送 %d 条通知！", len(targets)))

	s.mu.Lock()
	s.selected = make(map[string]struct{})
	s.mu.Unlock()
	return report, nil
}
