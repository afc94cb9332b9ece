package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func scrape(t *testing.T, m *Metrics) string {
	t.Helper()
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)
	return string(body)
}

func TestMetrics(t *testing.T) {
	t.Run("records series", func(t *testing.T) {
		m := New()
		m.ObserveRequest("/", http.MethodPost, http.StatusOK, 20*time.Millisecond)
		m.JobEvent("enqueued")
		m.Outcome("fetch")
		m.WordsCounted(6)

		body := scrape(t, m)
		for _, want := range []string{
			`wordcount_http_requests_total{method="POST",route="/",status="200"} 1`,
			`wordcount_jobs_total{event="enqueued"} 1`,
			`wordcount_count_outcomes_total{kind="fetch"} 1`,
			`wordcount_words_counted_total 6`,
			`go_goroutines`,
		} {
			if !strings.Contains(body, want) {
				t.Errorf("expected %q in scrape output", want)
			}
		}
	})

	t.Run("queue depth", func(t *testing.T) {
		m := New()
		depth := 3.0
		m.QueueDepth(func() float64 { return depth })

		if body := scrape(t, m); !strings.Contains(body, "wordcount_queue_depth 3") {
			t.Errorf("expected queue depth 3 in scrape output")
		}
		depth = 0
		if body := scrape(t, m); !strings.Contains(body, "wordcount_queue_depth 0") {
			t.Errorf("expected gauge to be read on every scrape")
		}
	})

	t.Run("mounted as handler", func(t *testing.T) {
		m := New()
		if routes := m.Routes(); len(routes) != 1 || routes[0] != "/metrics" {
			t.Errorf("unexpected routes %v", routes)
		}
		rec := httptest.NewRecorder()
		m.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
		if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "go_goroutines") {
			t.Errorf("expected metrics from ServeHTTP, got %d", rec.Code)
		}
	})

	t.Run("separate registries", func(t *testing.T) {
		a, b := New(), New()
		a.JobEvent("failed")
		if strings.Contains(scrape(t, b), `event="failed"`) {
			t.Error("metrics leaked between registries")
		}
	})

	t.Run("nil receiver", func(t *testing.T) {
		var m *Metrics
		m.ObserveRequest("/", http.MethodGet, 200, time.Second)
		m.JobEvent("enqueued")
		m.Outcome("none")
		m.WordsCounted(1)
		m.QueueDepth(func() float64 { return 1 })
		rec := httptest.NewRecorder()
		m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
		if rec.Code != http.StatusNotFound {
			t.Errorf("expected 404 from nil metrics handler, got %d", rec.Code)
		}
	})
}
