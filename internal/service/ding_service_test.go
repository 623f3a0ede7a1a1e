package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	ics "github.com/arran4/golang-ical"
	"go.uber.org/zap"

	"unihub-board/internal/client"
	"unihub-board/internal/dto"
	"unihub-board/internal/model"
)

func setupTestDingService() (DingService, *mockUpstream) {
	up := newMockUpstream()
	start := time.Date(2024, 5, 1, 21, 0, 0, 0, time.Local)
	up.dings = []model.DingTask{
		{ID: 1, Title: "晚查寝", Type: model.DingDormCheck, StartTime: start, Deadline: start.Add(2 * time.Hour), ClassID: 7},
		{ID: 2, Title: "返校签到", Type: model.DingLeaveReturn, StartTime: start, StudentID: 9},
		{ID: 3, Title: "返校签到（补）", Type: model.DingLeaveReturn, StartTime: start, Latitude: 31.2, Longitude: 121.5, Radius: 300, DeptID: 1},
	}
	up.records[1] = []model.DingRecord{
		{StudentName: "A", Status: model.DingComplete},
		{StudentName: "B", Status: model.DingLate},
		{StudentName: "C", Status: "pending"},
	}
	return NewDingService(up, NewMemoryGuard(), nil, zap.NewNop()), up
}

func int64Ptr(v int64) *int64 { return &v }

// ── Create ──

func TestDingService_Create_Validation(t *testing.T) {
	base := func() *dto.CreateDingRequest {
		return &dto.CreateDingRequest{
			Title:     "早操",
			StartTime: "2024-05-01T07:00",
			EndTime:   "2024-05-01T08:00",
			Type:      "sign_in",
			ClassID:   int64Ptr(7),
		}
	}
	tests := []struct {
		name   string
		mutate func(r *dto.CreateDingRequest)
	}{
		{"缺标题", func(r *dto.CreateDingRequest) { r.Title = " " }},
		{"截止早于开始", func(r *dto.CreateDingRequest) { r.EndTime = "2024-05-01T06:00" }},
		{"时间格式", func(r *dto.CreateDingRequest) { r.StartTime = "明天" }},
		{"类型无效", func(r *dto.CreateDingRequest) { r.Type = "party" }},
		{"无对象", func(r *dto.CreateDingRequest) { r.ClassID = nil }},
		{"多个对象", func(r *dto.CreateDingRequest) { r.DeptID = int64Ptr(1) }},
		{"纬度越界", func(r *dto.CreateDingRequest) { r.Latitude = 91 }},
		{"经度越界", func(r *dto.CreateDingRequest) { r.Longitude = -181 }},
		{"半径为负", func(r *dto.CreateDingRequest) { r.Radius = -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, up := setupTestDingService()
			req := base()
			tt.mutate(req)
			if _, err := svc.Create(context.Background(), testSession, req); !errors.Is(err, ErrValidation) {
				t.Errorf("期望 ErrValidation，实际: %v", err)
			}
			if len(up.createdDings) != 0 {
				t.Error("校验失败时不应请求上游")
			}
		})
	}
}

func TestDingService_Create_NormalizesTimes(t *testing.T) {
	svc, up := setupTestDingService()

	_, err := svc.Create(context.Background(), testSession, &dto.CreateDingRequest{
		Title: "早操", StartTime: "2024-05-01T07:00", EndTime: "2024-05-01T08:00", ClassID: int64Ptr(7),
	})
	if err != nil {
		t.Fatalf("Create 失败: %v", err)
	}
	sent := up.createdDings[0]
	if _, err := time.Parse(time.RFC3339, sent.StartTime); err != nil {
		t.Errorf("开始时间应转为 RFC3339: %s", sent.StartTime)
	}
	if sent.Type != "sign_in" {
		t.Errorf("缺省类型应为 sign_in，实际=%s", sent.Type)
	}
}

// ── List ──

func TestDingService_List_Views(t *testing.T) {
	svc, _ := setupTestDingService()

	ret, err := svc.List(context.Background(), testSession, DingViewReturn)
	if err != nil {
		t.Fatalf("List 失败: %v", err)
	}
	list := ret.List.([]model.DingTask)
	if len(list) != 1 || list[0].ID != 2 {
		t.Errorf("返校视图只应包含标题完全匹配的任务: %+v", list)
	}

	normal, _ := svc.List(context.Background(), testSession, "")
	if n := len(normal.List.([]model.DingTask)); n != 2 {
		t.Errorf("常规视图期望 2 项，实际 %d", n)
	}
}

// ── ToggleRecords ──

func TestDingService_ToggleRecords_Progress(t *testing.T) {
	svc, up := setupTestDingService()
	view, _ := svc.List(context.Background(), testSession, DingViewNormal)

	res, err := svc.ToggleRecords(context.Background(), testSession, view.ViewID, 1)
	if err != nil {
		t.Fatalf("ToggleRecords 失败: %v", err)
	}
	if res.Progress == nil || res.Progress.Complete != 1 || res.Progress.Total != 3 {
		t.Errorf("进度错误: %+v", res.Progress)
	}

	_, _ = svc.ToggleRecords(context.Background(), testSession, view.ViewID, 1)
	_, _ = svc.ToggleRecords(context.Background(), testSession, view.ViewID, 1)
	if up.recordCalls != 1 {
		t.Errorf("同一视图内只应请求一次，实际 %d", up.recordCalls)
	}
}

func TestDingService_ToggleRecords_EmptyIsLoaded(t *testing.T) {
	svc, up := setupTestDingService()
	view, _ := svc.List(context.Background(), testSession, DingViewReturn)

	res, err := svc.ToggleRecords(context.Background(), testSession, view.ViewID, 2)
	if err != nil {
		t.Fatalf("失败: %v", err)
	}
	if !res.Loaded || len(res.Items.([]model.DingRecord)) != 0 {
		t.Errorf("空记录也应标记为已加载: %+v", res)
	}
	_, _ = svc.ToggleRecords(context.Background(), testSession, view.ViewID, 2)
	_, _ = svc.ToggleRecords(context.Background(), testSession, view.ViewID, 2)
	if up.recordCalls != 1 {
		t.Errorf("空记录不应重复请求，实际 %d", up.recordCalls)
	}
}

func TestDingService_ToggleRecords_FailureRetries(t *testing.T) {
	svc, up := setupTestDingService()
	view, _ := svc.List(context.Background(), testSession, DingViewNormal)
	up.recordErr[1] = &client.TransportError{Operation: "list_ding_records", Err: errors.New("connection refused")}

	if _, err := svc.ToggleRecords(context.Background(), testSession, view.ViewID, 1); !errors.Is(err, client.ErrTransport) {
		t.Fatalf("期望 ErrTransport，实际: %v", err)
	}
	delete(up.recordErr, 1)
	res, err := svc.ToggleRecords(context.Background(), testSession, view.ViewID, 1)
	if err != nil || !res.Fetched {
		t.Errorf("失败后应可重试: %+v %v", res, err)
	}
}

// ── Calendar ──

func TestDingService_Calendar(t *testing.T) {
	svc, _ := setupTestDingService()

	data, err := svc.Calendar(context.Background(), testSession, DingViewNormal)
	if err != nil {
		t.Fatalf("Calendar 失败: %v", err)
	}
	cal, err := ics.ParseCalendar(strings.NewReader(string(data)))
	if err != nil {
		t.Fatalf("生成的日历无法解析: %v", err)
	}
	events := cal.Events()
	if len(events) != 2 {
		t.Fatalf("期望 2 个事件，实际 %d", len(events))
	}
	summaries := map[string]bool{}
	for _, e := range events {
		summaries[e.GetProperty(ics.ComponentPropertySummary).Value] = true
		if e.Id() == "" {
			t.Error("事件应有 UID")
		}
	}
	if !summaries["晚查寝"] || !summaries["返校签到（补）"] {
		t.Errorf("事件标题错误: %v", summaries)
	}
	if !strings.Contains(string(data), "GEO:31.200000;121.500000") {
		t.Error("带坐标的任务应输出 GEO")
	}
}
