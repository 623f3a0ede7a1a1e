package service

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"go.uber.org/zap"

	"unihub-board/internal/alert"
	"unihub-board/internal/dto"
	"unihub-board/internal/model"
	"unihub-board/internal/session"
)

// 打卡列表视图
const (
	DingViewNormal = "normal"
	DingViewReturn = "return"
)

// DingService 打卡任务
type DingService interface {
	Create(ctx context.Context, sess *session.Session, req *dto.CreateDingRequest) (*model.DingTask, error)
	// List view=return 只看返校签到，其余为常规任务
	List(ctx context.Context, sess *session.Session, view string) (*dto.ViewResponse, error)
	ToggleRecords(ctx context.Context, sess *session.Session, viewID string, dingID int64) (*dto.ToggleResponse, error)
	// Calendar 以 iCalendar 格式导出任务
	Calendar(ctx context.Context, sess *session.Session, view string) ([]byte, error)
}

type dingService struct {
	upstream Upstream
	guard    Guard
	alerts   *alert.Center
	logger   *zap.Logger
	views    *viewRegistry[model.DingRecord]
	now      func() time.Time
}

// NewDingService 创建 DingService 实例
func NewDingService(upstream Upstream, guard Guard, alerts *alert.Center, logger *zap.Logger) DingService {
	return &dingService{
		upstream: upstream,
		guard:    guard,
		alerts:   alerts,
		logger:   logger,
		views:    newViewRegistry[model.DingRecord](),
		now:      time.Now,
	}
}

// ────────────────────── Create ──────────────────────

func (s *dingService) Create(ctx context.Context, sess *session.Session, req *dto.CreateDingRequest) (*model.DingTask, error) {
	if err := validateDing(req); err != nil {
		return nil, alertInvalid(s.alerts, err)
	}
	token, err := requireToken(sess)
	if err != nil {
		return nil, err
	}

	release, err := s.guard.Acquire(ctx, guardKey("create_ding", token))
	if err != nil {
		return nil, err
	}
	defer release()

	task, err := s.upstream.CreateDing(ctx, token, req)
	if err != nil {
		s.logger.Warn("发起打卡失败", zap.String("title", req.Title), zap.Error(err))
		alertFailure(s.alerts, "发起打卡失败", err)
		return nil, err
	}

	s.logger.Info("发起打卡成功", zap.String("title", req.Title), zap.Int64("id", task.ID))
	alertSuccess(s.alerts, "发起打卡成功", req.Title)
	return task, nil
}

// validateDing 校验并规范化请求；时间统一转为 RFC3339
func validateDing(req *dto.CreateDingRequest) error {
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		return invalid("请输入打卡主题")
	}

	start, err := parseFormTime(req.StartTime)
	if err != nil {
		return invalid("开始时间格式错误")
	}
	end, err := parseFormTime(req.EndTime)
	if err != nil {
		return invalid("截止时间格式错误")
	}
	if !start.Before(end) {
		return invalid("截止时间必须晚于开始时间")
	}
	req.StartTime = start.Format(time.RFC3339)
	req.EndTime = end.Format(time.RFC3339)

	if req.Type == "" {
		req.Type = string(model.DingSignIn)
	}
	if !model.DingType(req.Type).Valid() {
		return invalid("打卡类型无效")
	}

	targets := 0
	for _, id := range []*int64{req.DeptID, req.ClassID, req.StudentID} {
		if id != nil {
			if *id <= 0 {
				return invalid("打卡对象无效")
			}
			targets++
		}
	}
	if targets != 1 {
		return invalid("请选择一个打卡对象（部门、班级或学生）")
	}

	switch {
	case math.IsNaN(req.Latitude) || req.Latitude < -90 || req.Latitude > 90:
		return invalid("纬度应在 -90 到 90 之间")
	case math.IsNaN(req.Longitude) || req.Longitude < -180 || req.Longitude > 180:
		return invalid("经度应在 -180 到 180 之间")
	case math.IsNaN(req.Radius) || req.Radius < 0:
		return invalid("打卡半径不能为负数")
	}
	return nil
}

var formTimeLayouts = []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02T15:04", "2006-01-02 15:04:05", "2006-01-02 15:04"}

// parseFormTime 兼容 RFC3339 与浏览器 datetime-local（按本地时区）
func parseFormTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	var lastErr error
	for _, layout := range formTimeLayouts {
		t, err := time.ParseInLocation(layout, s, time.Local)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

// ────────────────────── List ──────────────────────

func (s *dingService) List(ctx context.Context, sess *session.Session, view string) (*dto.ViewResponse, error) {
	tasks, err := s.filtered(ctx, sess, view)
	if err != nil {
		return nil, err
	}
	v := s.views.create()
	return &dto.ViewResponse{ViewID: v.id, List: tasks}, nil
}

func (s *dingService) filtered(ctx context.Context, sess *session.Session, view string) ([]model.DingTask, error) {
	token, err := requireToken(sess)
	if err != nil {
		return nil, err
	}

	all, err := s.upstream.ListMyCreatedDings(ctx, token)
	if err != nil {
		s.logger.Warn("获取打卡任务失败", zap.Error(err))
		alertFailure(s.alerts, "获取打卡任务失败", err)
		return nil, err
	}
	return FilterDings(all, view), nil
}

// FilterDings 按视图筛选：返校签到只按标题精确匹配
func FilterDings(all []model.DingTask, view string) []model.DingTask {
	wantReturn := view == DingViewReturn
	out := make([]model.DingTask, 0, len(all))
	for _, d := range all {
		if d.IsReturnTask() == wantReturn {
			out = append(out, d)
		}
	}
	return out
}

// ────────────────────── ToggleRecords ──────────────────────

func (s *dingService) ToggleRecords(ctx context.Context, sess *session.Session, viewID string, dingID int64) (*dto.ToggleResponse, error) {
	token, err := requireToken(sess)
	if err != nil {
		return nil, err
	}
	v, err := s.views.get(viewID)
	if err != nil {
		return nil, err
	}

	res, err := v.toggle(ctx, dingID, func(ctx context.Context) ([]model.DingRecord, error) {
		return s.upstream.ListDingRecords(ctx, token, dingID)
	})
	if err != nil {
		s.logger.Warn("获取打卡记录失败", zap.Int64("ding_id", dingID), zap.Error(err))
		alertFailure(s.alerts, "获取打卡记录失败", err)
		return nil, err
	}

	resp := &dto.ToggleResponse{
		ID:      dingID,
		Open:    res.Open,
		Loaded:  res.Loaded,
		Fetched: res.Fetched,
		Items:   res.Items,
	}
	if res.Loaded {
		done, total := model.Progress(res.Items)
		resp.Progress = &dto.Progress{Complete: done, Total: total}
	}
	return resp, nil
}

// ────────────────────── Calendar ──────────────────────

func (s *dingService) Calendar(ctx context.Context, sess *session.Session, view string) ([]byte, error) {
	tasks, err := s.filtered(ctx, sess, view)
	if err != nil {
		return nil, err
	}
	name := "常规打卡任务"
	if view == DingViewReturn {
		name = "返校销假记录"
	}
	return []byte(RenderDingCalendar(name, tasks, s.now())), nil
}

// dingTargetLabel 打卡对象描述
func dingTargetLabel(d model.DingTask) string {
	switch {
	case d.DeptID != 0:
		return fmt.Sprintf("部门 #%d", d.DeptID)
	case d.ClassID != 0:
		return fmt.Sprintf("班级 #%d", d.ClassID)
	case d.StudentID != 0:
		return fmt.Sprintf("学生 #%d", d.StudentID)
	}
	return "-"
}
