package router

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"unihub-board/config"
	"unihub-board/internal/alert"
	"unihub-board/internal/api/handler"
	"unihub-board/internal/client"
	"unihub-board/internal/service"
	"unihub-board/internal/session"
	"unihub-board/pkg/jwt"
	"unihub-board/pkg/metrics"
)

// fakeUpstream 校园后端替身：登录接口签发不透明 Token，资料接口校验 Bearer
func fakeUpstream(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/auth/login", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"token":"opaque-tok","user":{"ID":7,"Nickname":"王老师","Role":{"Key":"teacher"}}}`)
	})
	mux.HandleFunc("/api/v1/user/profile", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer opaque-tok" {
			w.WriteHeader(http.StatusUnauthorized)
			io.WriteString(w, `{"message":"token invalid"}`)
			return
		}
		io.WriteString(w, `{"user":{"ID":7,"Nickname":"王老师","Role":{"Key":"teacher"}}}`)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func setupRouter(t *testing.T) (http.Handler, session.Store, *alert.Center) {
	t.Helper()
	upstream := fakeUpstream(t)
	logger := zap.NewNop()

	cfg := &config.Config{}
	cfg.Server.BodyLimit = 1 << 20
	cfg.Server.MetricsRoute = true
	cfg.Upstream = config.UpstreamConfig{BaseURL: upstream.URL + "/api/v1", Timeout: 5 * time.Second}
	cfg.Limit = config.LimitConfig{Requests: 100, Window: time.Minute}

	reg := prometheus.NewRegistry()
	rec := metrics.NewCollector(reg)
	store := session.NewMemoryStore()
	alerts := alert.NewCenter(time.Minute)
	inspector := jwt.NewInspector()

	svc := service.NewService(service.Deps{
		Config:    cfg,
		Upstream:  client.New(&cfg.Upstream, logger, client.WithMetrics(rec)),
		Store:     store,
		Alerts:    alerts,
		Inspector: inspector,
		Metrics:   rec,
		Logger:    logger,
	})

	engine := Setup(Deps{
		Config:    cfg,
		Handler:   handler.NewHandler(svc, alerts),
		Auth:      svc.Auth,
		Inspector: inspector,
		Gatherer:  reg,
		Logger:    logger,
	})
	return engine, store, alerts
}

func serve(h http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	r, _, _ := setupRouter(t)

	w := serve(r, http.MethodGet, "/health", nil)
	if w.Code != http.StatusOK || w.Header().Get("X-Request-ID") == "" {
		t.Errorf("健康检查异常: %d %v", w.Code, w.Header())
	}
}

func TestConsole_RequiresSession(t *testing.T) {
	r, _, _ := setupRouter(t)

	w := serve(r, http.MethodGet, "/api/v1/console/dashboard/stats", nil)
	if w.Code != http.StatusUnauthorized || !strings.Contains(w.Body.String(), `"redirect":"/login"`) {
		t.Errorf("未登录应跳转登录页: %d %s", w.Code, w.Body.String())
	}
}

func TestConsole_LoginThenProfile(t *testing.T) {
	r, store, alerts := setupRouter(t)

	w := serve(r, http.MethodPost, "/api/v1/console/session", map[string]string{"email": "a@b.c", "password": "pw"})
	if w.Code != http.StatusOK {
		t.Fatalf("登录失败: %d %s", w.Code, w.Body.String())
	}
	if a, ok := alerts.Current(); !ok || a.Severity != alert.SeveritySuccess {
		t.Errorf("登录成功应有提示: %+v", a)
	}

	w = serve(r, http.MethodGet, "/api/v1/console/profile", nil)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "王老师") {
		t.Fatalf("使用保存的登录态获取资料失败: %d %s", w.Code, w.Body.String())
	}

	// 登录态失效：上游返回 401 时清除并要求重新登录
	_ = store.Save(context.Background(), &session.Session{Token: "stale"})
	w = serve(r, http.MethodGet, "/api/v1/console/profile", nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("期望 401，实际 %d", w.Code)
	}
	if _, err := store.Load(context.Background()); err == nil {
		t.Error("上游 401 后应清除登录态")
	}
}

func TestConsole_ForeignBearer401KeepsStoredSession(t *testing.T) {
	r, store, _ := setupRouter(t)
	_ = store.Save(context.Background(), &session.Session{Token: "opaque-tok"})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/console/profile", nil)
	req.Header.Set("Authorization", "Bearer other-tok")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("期望 401，实际 %d", w.Code)
	}
	saved, err := store.Load(context.Background())
	if err != nil || saved.Token != "opaque-tok" {
		t.Errorf("其他 Token 失效不应清除控制台登录态: %+v %v", saved, err)
	}
}

func TestMetricsRoute(t *testing.T) {
	r, _, _ := setupRouter(t)

	serve(r, http.MethodPost, "/api/v1/console/session", map[string]string{"email": "a@b.c", "password": "pw"})
	w := serve(r, http.MethodGet, "/metrics", nil)
	if !strings.Contains(w.Body.String(), `unihub_upstream_requests_total{operation="login",status_code="200"} 1`) {
		t.Errorf("/metrics 应记录上游请求: %s", w.Body.String())
	}
}
