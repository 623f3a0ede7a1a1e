package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"

	"unihub-board/internal/alert"
	"unihub-board/internal/client"
	"unihub-board/internal/model"
	"unihub-board/internal/session"
)

// ── 测试辅助 ──

var testSession = &session.Session{Token: "tok", Role: model.RoleCounselor}

func setupTestOrgService() (OrgService, *mockUpstream, *alert.Center) {
	up := newMockUpstream()
	up.orgs[model.OrgDepartment] = []model.Org{
		{ID: 1, Kind: model.OrgDepartment, Name: "计算机学院", InviteCode: "AAAA1111"},
		{ID: 2, Kind: model.OrgDepartment, Name: "外国语学院", InviteCode: "BBBB2222"},
	}
	up.orgs[model.OrgClass] = []model.Org{
		{ID: 7, Kind: model.OrgClass, Name: "软件2301", InviteCode: "CCCC3333"},
	}
	up.details[1] = &model.OrgDetail{
		Org:      model.Org{ID: 1, Name: "计算机学院"},
		Students: []model.Student{{ID: 10, Nickname: "张三", StudentNo: "2023001"}},
	}
	alerts := alert.NewCenter(time.Minute)
	return NewOrgService(up, NewMemoryGuard(), alerts, zap.NewNop()), up, alerts
}

// ── Activate ──

func TestOrgService_Activate_NewViewEachTime(t *testing.T) {
	svc, _, _ := setupTestOrgService()

	v1, err := svc.Activate(context.Background(), testSession, model.OrgDepartment)
	if err != nil {
		t.Fatalf("Activate 失败: %v", err)
	}
	v2, _ := svc.Activate(context.Background(), testSession, model.OrgDepartment)
	if v1.ViewID == v2.ViewID {
		t.Error("每次进入页面应生成新的视图 ID")
	}
	if list := v1.List.([]model.Org); len(list) != 2 {
		t.Errorf("期望 2 个部门，实际 %d", len(list))
	}
}

// ── Create ──

func TestOrgService_Create_ReloadsList(t *testing.T) {
	svc, up, alerts := setupTestOrgService()

	resp, err := svc.Create(context.Background(), testSession, model.OrgDepartment, "  数学学院 ")
	if err != nil {
		t.Fatalf("Create 失败: %v", err)
	}
	if len(up.createdOrgs) != 1 || up.createdOrgs[0] != "数学学院" {
		t.Errorf("名称应去除首尾空白: %v", up.createdOrgs)
	}
	if list := resp.List.([]model.Org); len(list) != 3 {
		t.Errorf("创建后应重新拉取列表，期望 3 项，实际 %d", len(list))
	}
	a, ok := alerts.Current()
	if !ok || a.Title != "创建部门成功" || a.Content != "已生成8位邀请码，根据需要分享给成员" {
		t.Errorf("提示内容错误: %+v", a)
	}
}

func TestOrgService_Create_BlankName(t *testing.T) {
	svc, up, _ := setupTestOrgService()

	_, err := svc.Create(context.Background(), testSession, model.OrgClass, "   ")
	if !errors.Is(err, ErrValidation) {
		t.Errorf("期望 ErrValidation，实际: %v", err)
	}
	if len(up.createdOrgs) != 0 {
		t.Error("空名称不应请求上游")
	}
}

// ── Toggle ──

func TestOrgService_Toggle_FetchesOncePerView(t *testing.T) {
	svc, up, _ := setupTestOrgService()
	ctx := context.Background()
	view, _ := svc.Activate(ctx, testSession, model.OrgDepartment)

	open1, err := svc.Toggle(ctx, testSession, model.OrgDepartment, view.ViewID, 1)
	if err != nil {
		t.Fatalf("Toggle 失败: %v", err)
	}
	if !open1.Open || !open1.Fetched || len(open1.Items.([]model.Student)) != 1 {
		t.Errorf("首次展开应加载花名册: %+v", open1)
	}

	closed, _ := svc.Toggle(ctx, testSession, model.OrgDepartment, view.ViewID, 1)
	if closed.Open {
		t.Error("再次点击应收起")
	}
	open2, _ := svc.Toggle(ctx, testSession, model.OrgDepartment, view.ViewID, 1)
	if !open2.Open || open2.Fetched {
		t.Errorf("重新展开应使用缓存: %+v", open2)
	}
	if up.detailCalls != 1 {
		t.Errorf("同一视图内只应请求一次，实际 %d 次", up.detailCalls)
	}

	// 新视图重新加载
	view2, _ := svc.Activate(ctx, testSession, model.OrgDepartment)
	_, _ = svc.Toggle(ctx, testSession, model.OrgDepartment, view2.ViewID, 1)
	if up.detailCalls != 2 {
		t.Errorf("新视图应重新请求，实际 %d 次", up.detailCalls)
	}
}

func TestOrgService_Toggle_FailureRetries(t *testing.T) {
	svc, up, alerts := setupTestOrgService()
	ctx := context.Background()
	view, _ := svc.Activate(ctx, testSession, model.OrgDepartment)

	up.detailErr = &client.APIError{StatusCode: 500, Message: "服务器错误"}
	if _, err := svc.Toggle(ctx, testSession, model.OrgDepartment, view.ViewID, 1); err == nil {
		t.Fatal("上游失败时应返回错误")
	}
	if _, ok := alerts.Current(); !ok {
		t.Error("失败时应显示提示")
	}

	up.detailErr = nil
	res, err := svc.Toggle(ctx, testSession, model.OrgDepartment, view.ViewID, 1)
	if err != nil || !res.Open || !res.Fetched {
		t.Errorf("失败后再次展开应重新请求: %+v %v", res, err)
	}
	if up.detailCalls != 2 {
		t.Errorf("期望请求 2 次，实际 %d", up.detailCalls)
	}
}

func TestOrgService_Toggle_ConcurrentLoadsCollapse(t *testing.T) {
	svc, up, _ := setupTestOrgService()
	ctx := context.Background()
	view, _ := svc.Activate(ctx, testSession, model.OrgDepartment)
	up.detailGate = make(chan struct{})

	// 展开（加载中）→ 收起 → 再展开，第二次展开与第一次加载合并
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, _ = svc.Toggle(ctx, testSession, model.OrgDepartment, view.ViewID, 1)
	}()
	for atomic.LoadInt32(&up.detailCalls) == 0 {
		time.Sleep(time.Millisecond)
	}
	_, _ = svc.Toggle(ctx, testSession, model.OrgDepartment, view.ViewID, 1)

	wg.Add(1)
	go func() {
		defer wg.Done()
		_, _ = svc.Toggle(ctx, testSession, model.OrgDepartment, view.ViewID, 1)
	}()
	time.Sleep(20 * time.Millisecond)
	close(up.detailGate)
	wg.Wait()

	if n := atomic.LoadInt32(&up.detailCalls); n != 1 {
		t.Errorf("并发加载应合并为 1 次请求，实际 %d", n)
	}
}

func TestOrgService_Toggle_UnknownView(t *testing.T) {
	svc, _, _ := setupTestOrgService()

	_, err := svc.Toggle(context.Background(), testSession, model.OrgDepartment, "missing", 1)
	if !errors.Is(err, ErrViewNotFound) {
		t.Errorf("期望 ErrViewNotFound，实际: %v", err)
	}
}

// ── InviteQR ──

func TestOrgService_InviteQR(t *testing.T) {
	svc, _, _ := setupTestOrgService()

	p, err := svc.InviteQR(context.Background(), testSession, model.OrgClass, 7)
	if err != nil {
		t.Fatalf("InviteQR 失败: %v", err)
	}
	if p.Type != model.OrgClass || p.Code != "CCCC3333" || p.Action != "join_class" {
		t.Errorf("二维码内容错误: %+v", p)
	}

	if _, err := svc.InviteQR(context.Background(), testSession, model.OrgClass, 99); !errors.Is(err, ErrRowNotFound) {
		t.Errorf("未知班级期望 ErrRowNotFound，实际: %v", err)
	}
}

func TestOrgService_InviteQR_NotCached(t *testing.T) {
	svc, up, _ := setupTestOrgService()
	ctx := context.Background()

	if _, err := svc.Activate(ctx, testSession, model.OrgClass); err != nil {
		t.Fatal(err)
	}
	// 邀请码在上游被重置
	up.orgs[model.OrgClass][0].InviteCode = "DDDD4444"

	p, err := svc.InviteQR(ctx, testSession, model.OrgClass, 7)
	if err != nil {
		t.Fatalf("InviteQR 失败: %v", err)
	}
	if p.Code != "DDDD4444" {
		t.Errorf("应使用最新的邀请码，实际 %s", p.Code)
	}
}

func TestOrgService_UnauthorizedNoAlert(t *testing.T) {
	svc, up, alerts := setupTestOrgService()
	up.orgErr[model.OrgDepartment] = &client.APIError{StatusCode: 401, Message: "token expired"}

	_, err := svc.Activate(context.Background(), testSession, model.OrgDepartment)
	if !errors.Is(err, client.ErrUnauthorized) {
		t.Fatalf("期望 ErrUnauthorized，实际: %v", err)
	}
	if _, ok := alerts.Current(); ok {
		t.Error("登录失效不应弹出提示")
	}
}
