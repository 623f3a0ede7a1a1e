package service

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"unihub-board/internal/dto"
	"unihub-board/internal/model"
	"unihub-board/internal/session"
)

func TestMemoryGuard(t *testing.T) {
	g := NewMemoryGuard()
	ctx := context.Background()

	release, err := g.Acquire(ctx, "login")
	if err != nil {
		t.Fatalf("首次获取应成功: %v", err)
	}
	if _, err := g.Acquire(ctx, "login"); !errors.Is(err, ErrDuplicateSubmission) {
		t.Errorf("重复提交期望 ErrDuplicateSubmission，实际: %v", err)
	}
	if r, err := g.Acquire(ctx, "register"); err != nil {
		t.Errorf("不同操作互不影响: %v", err)
	} else {
		r()
	}

	release()
	release()
	if _, err := g.Acquire(ctx, "login"); err != nil {
		t.Errorf("释放后应可再次获取: %v", err)
	}
}

func TestGuardKey_ScopedToCaller(t *testing.T) {
	g := NewMemoryGuard()
	ctx := context.Background()

	release, err := g.Acquire(ctx, guardKey("create_ding", "tok-a"))
	if err != nil {
		t.Fatalf("首次获取应成功: %v", err)
	}
	defer release()

	if r, err := g.Acquire(ctx, guardKey("create_ding", "tok-b")); err != nil {
		t.Errorf("不同用户的同一操作不应互相阻塞: %v", err)
	} else {
		r()
	}
	if _, err := g.Acquire(ctx, guardKey("create_ding", "tok-a")); !errors.Is(err, ErrDuplicateSubmission) {
		t.Errorf("同一用户重复提交期望 ErrDuplicateSubmission，实际: %v", err)
	}
	if guardKey("login", " A@B.c ") != guardKey("login", "a@b.c") {
		t.Error("登录邮箱应忽略大小写和首尾空白")
	}
}

func TestDingService_Create_OtherSessionNotBlocked(t *testing.T) {
	up := newMockUpstream()
	guard := NewMemoryGuard()
	svc := NewDingService(up, guard, nil, zap.NewNop())
	ctx := context.Background()

	// 模拟用户 A 的发起请求仍在处理中
	release, err := guard.Acquire(ctx, guardKey("create_ding", "tok-a"))
	if err != nil {
		t.Fatal(err)
	}
	defer release()

	newReq := func() *dto.CreateDingRequest {
		return &dto.CreateDingRequest{
			Title:     "早操",
			StartTime: "2024-05-01T07:00",
			EndTime:   "2024-05-01T08:00",
			Type:      "sign_in",
			ClassID:   int64Ptr(7),
		}
	}

	sessA := &session.Session{Token: "tok-a", Role: model.RoleCounselor}
	sessB := &session.Session{Token: "tok-b", Role: model.RoleCounselor}
	if _, err := svc.Create(ctx, sessA, newReq()); !errors.Is(err, ErrDuplicateSubmission) {
		t.Errorf("用户 A 重复提交期望 ErrDuplicateSubmission，实际: %v", err)
	}
	if _, err := svc.Create(ctx, sessB, newReq()); err != nil {
		t.Errorf("用户 B 不应被用户 A 阻塞: %v", err)
	}
	if len(up.createdDings) != 1 {
		t.Errorf("期望上游收到 1 次请求，实际 %d", len(up.createdDings))
	}
}
