package metrics

import (
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCommunityEventCounts(t *testing.T) {
	m := New()
	m.CommunityEvent("asked")
	m.CommunityEvent("asked")
	m.CommunityEvent("published")

	if got := testutil.ToFloat64(m.communityEvents.WithLabelValues("asked")); got != 2 {
		t.Fatalf("expected 2 asked events, got %v", got)
	}
	if got := testutil.ToFloat64(m.communityEvents.WithLabelValues("published")); got != 1 {
		t.Fatalf("expected 1 published event, got %v", got)
	}
}

func TestTaskProcessedOutcome(t *testing.T) {
	m := New()
	m.TaskProcessed("ai_reply", nil)
	m.TaskProcessed("ai_reply", errors.New("boom"))

	if got := testutil.ToFloat64(m.tasksProcessed.WithLabelValues("ai_reply", "ok")); got != 1 {
		t.Fatalf("expected 1 ok, got %v", got)
	}
	if got := testutil.ToFloat64(m.tasksProcessed.WithLabelValues("ai_reply", "error")); got != 1 {
		t.Fatalf("expected 1 error, got %v", got)
	}
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	m.CommunityEvent("asked")
	m.ObserveRequest("GET", "/", 200, time.Millisecond)
	m.ChatbotReply(nil)
	m.TaskProcessed("x", nil)
}

func TestHandlerExposesMetrics(t *testing.T) {
	m := New()
	m.ObserveRequest("GET", "/api/v1/hotlines", 200, 5*time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	if !strings.Contains(rec.Body.String(), "askher_http_requests_total") {
		t.Fatalf("metrics output missing request counter:\n%s", rec.Body.String())
	}
}
