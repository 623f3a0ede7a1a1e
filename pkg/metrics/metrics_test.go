package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCollector_ObserveUpstream(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.ObserveUpstream("list_dings", 200, 120*time.Millisecond)
	c.ObserveUpstream("list_dings", 200, 80*time.Millisecond)
	c.ObserveUpstream("list_dings", 403, 10*time.Millisecond)

	if got := testutil.ToFloat64(c.upstreamTotal.WithLabelValues("list_dings", "200")); got != 2 {
		t.Errorf("期望 200 计数为 2，实际=%v", got)
	}
	if got := testutil.ToFloat64(c.upstreamTotal.WithLabelValues("list_dings", "403")); got != 1 {
		t.Errorf("期望 403 计数为 1，实际=%v", got)
	}
}

func TestCollector_FanOut(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordFanOut("create_notification", 3, 1)

	if got := testutil.ToFloat64(c.fanOutResults.WithLabelValues("create_notification", "success")); got != 3 {
		t.Errorf("期望成功 3，实际=%v", got)
	}
	if got := testutil.ToFloat64(c.fanOutResults.WithLabelValues("create_notification", "failure")); got != 1 {
		t.Errorf("期望失败 1，实际=%v", got)
	}
}

func TestHandler_ExposesMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)
	c.RecordTransportError("login")

	w := httptest.NewRecorder()
	Handler(reg).ServeHTTP(w, httptest.NewRequest("GET", "/metrics", nil))

	body, _ := io.ReadAll(w.Result().Body)
	if !strings.Contains(string(body), "unihub_upstream_transport_errors_total") {
		t.Error("/metrics 应包含网络失败计数")
	}
}
