package service

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"unihub-board/internal/client"
	"unihub-board/internal/dto"
	"unihub-board/internal/model"
)

// ── Mock Upstream ──

type mockUpstream struct {
	mu sync.Mutex

	authResult *model.AuthResult
	authErr    error
	profile    *model.UserProfile
	loginCalls int32

	orgs      map[model.OrgKind][]model.Org
	orgErr    map[model.OrgKind]error
	details   map[int64]*model.OrgDetail
	detailErr error
	// detailGate 非 nil 时花名册请求阻塞到通道关闭
	detailGate  chan struct{}
	detailCalls int32
	createdOrgs []string

	leaves       []model.LeaveRequest
	audited      []dto.AuditLeaveRequest
	leaveBack    *model.LeaveBackInfo
	leaveBackErr error

	dings        []model.DingTask
	dingsErr     error
	records      map[int64][]model.DingRecord
	recordErr    map[int64]error
	recordCalls  int32
	createdDings []dto.CreateDingRequest
	stats        *model.DingStats
	statsErr     error

	notifyErr map[string]error
	notified  []dto.CreateNotificationRequest

	exportPath string
	exportErr  error
	exported   [][]dto.LabeledRow
}

func newMockUpstream() *mockUpstream {
	return &mockUpstream{
		orgs:      make(map[model.OrgKind][]model.Org),
		orgErr:    make(map[model.OrgKind]error),
		details:   make(map[int64]*model.OrgDetail),
		records:   make(map[int64][]model.DingRecord),
		recordErr: make(map[int64]error),
		notifyErr: make(map[string]error),
	}
}

var _ Upstream = (*mockUpstream)(nil)

func (m *mockUpstream) Login(_ context.Context, _ *dto.LoginRequest) (*model.AuthResult, error) {
	atomic.AddInt32(&m.loginCalls, 1)
	if m.authErr != nil {
		return nil, m.authErr
	}
	return m.authResult, nil
}

func (m *mockUpstream) Register(_ context.Context, _ *dto.RegisterRequest) (*model.AuthResult, error) {
	if m.authErr != nil {
		return nil, m.authErr
	}
	return m.authResult, nil
}

func (m *mockUpstream) GetProfile(_ context.Context, _ string) (*model.UserProfile, error) {
	if m.profile == nil {
		return nil, &client.APIError{StatusCode: 404, Message: "用户不存在"}
	}
	p := *m.profile
	return &p, nil
}

func (m *mockUpstream) ListMine(_ context.Context, _ string, kind model.OrgKind) ([]model.Org, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.orgErr[kind]; err != nil {
		return nil, err
	}
	return append([]model.Org{}, m.orgs[kind]...), nil
}

func (m *mockUpstream) CreateOrg(_ context.Context, _ string, kind model.OrgKind, name string) (*model.Org, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o := model.Org{ID: int64(len(m.orgs[kind]) + 100), Kind: kind, Name: name, InviteCode: "NEWCODE1"}
	m.orgs[kind] = append(m.orgs[kind], o)
	m.createdOrgs = append(m.createdOrgs, name)
	return &o, nil
}

func (m *mockUpstream) OrgDetail(_ context.Context, _ string, kind model.OrgKind, id int64) (*model.OrgDetail, error) {
	atomic.AddInt32(&m.detailCalls, 1)
	if m.detailGate != nil {
		<-m.detailGate
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.detailErr != nil {
		return nil, m.detailErr
	}
	d, ok := m.details[id]
	if !ok {
		return &model.OrgDetail{Org: model.Org{ID: id, Kind: kind}, Students: []model.Student{}}, nil
	}
	return d, nil
}

func (m *mockUpstream) ListPendingLeaves(_ context.Context, _ string) ([]model.LeaveRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]model.LeaveRequest{}, m.leaves...), nil
}

func (m *mockUpstream) AuditLeave(_ context.Context, _ string, req *dto.AuditLeaveRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.audited = append(m.audited, *req)
	kept := m.leaves[:0]
	for _, l := range m.leaves {
		if l.ID != req.LeaveID {
			kept = append(kept, l)
		}
	}
	m.leaves = kept
	return nil
}

func (m *mockUpstream) GetLeaveBackInfo(_ context.Context, _ string) (*model.LeaveBackInfo, error) {
	if m.leaveBackErr != nil {
		return nil, m.leaveBackErr
	}
	if m.leaveBack == nil {
		return model.EmptyLeaveBackInfo(), nil
	}
	return m.leaveBack, nil
}

func (m *mockUpstream) CreateDing(_ context.Context, _ string, req *dto.CreateDingRequest) (*model.DingTask, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.createdDings = append(m.createdDings, *req)
	return &model.DingTask{ID: int64(len(m.createdDings)), Title: req.Title, Type: model.DingType(req.Type)}, nil
}

func (m *mockUpstream) ListMyCreatedDings(_ context.Context, _ string) ([]model.DingTask, error) {
	if m.dingsErr != nil {
		return nil, m.dingsErr
	}
	return append([]model.DingTask{}, m.dings...), nil
}

func (m *mockUpstream) ListDingRecords(_ context.Context, _ string, dingID int64) ([]model.DingRecord, error) {
	atomic.AddInt32(&m.recordCalls, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.recordErr[dingID]; err != nil {
		return nil, err
	}
	return m.records[dingID], nil
}

func (m *mockUpstream) GetDingStats(_ context.Context, _ string) (*model.DingStats, error) {
	if m.statsErr != nil {
		return nil, m.statsErr
	}
	if m.stats == nil {
		return &model.DingStats{}, nil
	}
	return m.stats, nil
}

func (m *mockUpstream) CreateNotification(_ context.Context, _ string, req *dto.CreateNotificationRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.notifyErr[fmt.Sprintf("%s-%d", req.TargetType, req.TargetID)]; err != nil {
		return err
	}
	m.notified = append(m.notified, *req)
	return nil
}

func (m *mockUpstream) ExportData(_ context.Context, _ string, rows []dto.LabeledRow) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.exportErr != nil {
		return "", m.exportErr
	}
	m.exported = append(m.exported, rows)
	return m.exportPath, nil
}

func (m *mockUpstream) ResolveURL(relative string) string {
	return "http://upstream.test/api/v1/" + relative
}
