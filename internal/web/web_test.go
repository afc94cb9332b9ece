package web

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/desertthunder/wordcount/internal/metrics"
	"github.com/desertthunder/wordcount/internal/models"
	"github.com/desertthunder/wordcount/internal/queue"
	"github.com/desertthunder/wordcount/internal/repositories"
	"github.com/desertthunder/wordcount/internal/shared"
	"github.com/desertthunder/wordcount/internal/tasks"
	tu "github.com/desertthunder/wordcount/internal/testing"
	"github.com/desertthunder/wordcount/internal/testing/fakes"
)

const exampleURL = "http://example.com"

func newSyncApp(t *testing.T) (*App, *fakes.MockResultStore) {
	t.Helper()

	store := fakes.NewMockResultStore()
	fetcher := fakes.NewMockFetcher(map[string]string{exampleURL: tu.ExamplePage})
	app, err := NewApp(Options{
		Mode:    shared.ModeSync,
		Store:   store,
		Engine:  tasks.NewCountEngine(fetcher, store, nil, nil),
		Metrics: metrics.New(),
	})
	if err != nil {
		t.Fatalf("failed to create app: %v", err)
	}
	return app, store
}

func newAsyncApp(t *testing.T) (*App, *queue.Queue, *tasks.CountEngine, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	cfg := shared.DefaultConfig().Queue
	cfg.BlockTimeout = queue.MinBlockTimeout
	q := queue.New(client, cfg, nil, nil)

	store := fakes.NewMockResultStore()
	fetcher := fakes.NewMockFetcher(map[string]string{exampleURL: tu.ExamplePage})
	engine := tasks.NewCountEngine(fetcher, store, nil, nil)

	app, err := NewApp(Options{
		Mode:      shared.ModeAsync,
		Store:     store,
		Queue:     q,
		ResultTTL: q.ResultTTL(),
	})
	if err != nil {
		t.Fatalf("failed to create app: %v", err)
	}
	return app, q, engine, mr
}

func postForm(app http.Handler, value string, accept string) *httptest.ResponseRecorder {
	form := url.Values{"url": {value}}
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if accept != "" {
		req.Header.Set("Accept", accept)
	}
	rec := httptest.NewRecorder()
	app.ServeHTTP(rec, req)
	return rec
}

func get(app http.Handler, path string, accept string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if accept != "" {
		req.Header.Set("Accept", accept)
	}
	rec := httptest.NewRecorder()
	app.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON %q: %v", rec.Body.String(), err)
	}
	return body
}

func TestNewApp(t *testing.T) {
	store := fakes.NewMockResultStore()

	tests := []struct {
		name string
		opts Options
		want error
	}{
		{"missing store", Options{Mode: shared.ModeSync}, shared.ErrMissingArgument},
		{"sync without engine", Options{Mode: shared.ModeSync, Store: store}, shared.ErrMissingArgument},
		{"async without queue", Options{Mode: shared.ModeAsync, Store: store}, shared.ErrMissingArgument},
		{"unknown mode", Options{Mode: "batch", Store: store}, shared.ErrInvalidArgument},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := NewApp(tc.opts); !errors.Is(err, tc.want) {
				t.Errorf("expected %v, got %v", tc.want, err)
			}
		})
	}

	t.Run("defaults to sync", func(t *testing.T) {
		app, err := NewApp(Options{Store: store, Engine: tasks.NewCountEngine(fakes.NewMockFetcher(nil), store, nil, nil)})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if app.Mode() != shared.ModeSync {
			t.Errorf("expected sync mode, got %s", app.Mode())
		}
	})
}

func TestSyncIndex(t *testing.T) {
	t.Run("GET renders form", func(t *testing.T) {
		app, _ := newSyncApp(t)
		rec := get(app, "/", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if !strings.Contains(rec.Body.String(), `name="url"`) {
			t.Error("expected url form field")
		}
	})

	t.Run("POST counts words", func(t *testing.T) {
		app, store := newSyncApp(t)
		rec := postForm(app, "  example.com  ", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if store.Len() != 1 {
			t.Fatalf("expected one stored result, got %d", store.Len())
		}

		body := rec.Body.String()
		for id := range store.Results {
			if !strings.Contains(body, "/result/"+id) {
				t.Error("expected permalink to the stored result")
			}
		}
		if strings.Index(body, "<td>dog</td>") > strings.Index(body, "<td>Cat</td>") {
			t.Error("expected dog (2) listed before Cat (1)")
		}
		if strings.Contains(body, "<td>The</td>") {
			t.Error("stop words should not be rendered")
		}
	})

	t.Run("POST JSON", func(t *testing.T) {
		app, store := newSyncApp(t)
		rec := postForm(app, "example.com", "application/json")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		body := decode(t, rec)
		id, _ := body["result"].(string)
		if _, err := store.Get(id); err != nil {
			t.Errorf("result %q not stored: %v", id, err)
		}
	})

	t.Run("POST unreachable URL", func(t *testing.T) {
		app, store := newSyncApp(t)

		rec := postForm(app, "nowhere.invalid", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if !strings.Contains(rec.Body.String(), "Unable to get URL") {
			t.Error("expected fetch error message")
		}

		rec = postForm(app, "nowhere.invalid", "application/json")
		if rec.Code != http.StatusBadGateway {
			t.Fatalf("expected 502, got %d", rec.Code)
		}
		errs := decode(t, rec)["error"].([]any)
		if len(errs) != 1 || errs[0] != tasks.FetchErrorMessage {
			t.Errorf("unexpected errors %v", errs)
		}
		if store.Len() != 0 {
			t.Error("nothing should be stored for a failed fetch")
		}
	})

	t.Run("POST persistence failure", func(t *testing.T) {
		app, store := newSyncApp(t)
		store.Err = errors.New("disk full")

		rec := postForm(app, "example.com", "application/json")
		if rec.Code != http.StatusInternalServerError {
			t.Fatalf("expected 500, got %d", rec.Code)
		}
		errs := decode(t, rec)["error"].([]any)
		if errs[0] != tasks.PersistenceErrorMessage {
			t.Errorf("unexpected errors %v", errs)
		}
	})

	t.Run("POST empty URL", func(t *testing.T) {
		app, _ := newSyncApp(t)
		if rec := postForm(app, "   ", ""); rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", rec.Code)
		}
		if rec := postForm(app, "", "application/json"); rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("Unsupported method", func(t *testing.T) {
		app, _ := newSyncApp(t)
		rec := httptest.NewRecorder()
		app.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/", nil))
		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("expected 405, got %d", rec.Code)
		}
	})

	t.Run("Job status without queue", func(t *testing.T) {
		app, _ := newSyncApp(t)
		if rec := get(app, "/job/anything", ""); rec.Code != http.StatusNotFound {
			t.Errorf("expected 404, got %d", rec.Code)
		}
	})

	t.Run("Malformed result id", func(t *testing.T) {
		app, store := newSyncApp(t)
		for _, path := range []string{"/result/not-a-uuid", "/result/1%20OR%201=1"} {
			if rec := get(app, path, "application/json"); rec.Code != http.StatusNotFound {
				t.Errorf("%s: expected 404, got %d", path, rec.Code)
			}
		}
		if store.Lookups != 0 {
			t.Errorf("malformed ids should not reach the store, got %d lookups", store.Lookups)
		}
	})
}

func TestAsyncJobs(t *testing.T) {
	t.Run("Submit And Poll", func(t *testing.T) {
		app, q, engine, _ := newAsyncApp(t)

		rec := postForm(app, "example.com", "application/json")
		if rec.Code != http.StatusAccepted {
			t.Fatalf("expected 202, got %d", rec.Code)
		}
		jobID, _ := decode(t, rec)["job_id"].(string)
		if !shared.IsID(jobID) {
			t.Fatalf("expected uuid job id, got %q", jobID)
		}
		if loc := rec.Header().Get("Location"); loc != "/job/"+jobID {
			t.Errorf("unexpected Location %q", loc)
		}

		rec = get(app, "/job/"+jobID, "")
		if rec.Code != http.StatusAccepted {
			t.Fatalf("expected 202 while queued, got %d", rec.Code)
		}
		if body := decode(t, rec); body["status"] != "queued" || body["job_id"] != jobID {
			t.Errorf("unexpected queued body %v", body)
		}

		worker := queue.NewWorker(q, 1, engine.HandleJob)
		if ok, err := worker.ProcessNext(context.Background()); !ok || err != nil {
			t.Fatalf("expected a processed job, got %v, %v", ok, err)
		}

		rec = get(app, "/job/"+jobID, "")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200 once finished, got %d", rec.Code)
		}
		resultID, _ := decode(t, rec)["result"].(string)
		if rec := get(app, "/result/"+resultID, ""); rec.Code != http.StatusOK {
			t.Errorf("expected stored result page, got %d", rec.Code)
		}
	})

	t.Run("Submit Renders Job Link", func(t *testing.T) {
		app, _, _, _ := newAsyncApp(t)
		rec := postForm(app, "example.com", "")
		if rec.Code != http.StatusAccepted {
			t.Fatalf("expected 202, got %d", rec.Code)
		}
		if !strings.Contains(rec.Body.String(), `href="/job/`) {
			t.Error("expected link to the job status")
		}
	})

	t.Run("Finished With Fetch Error", func(t *testing.T) {
		app, q, engine, _ := newAsyncApp(t)
		job, _ := q.Enqueue(context.Background(), "http://nowhere.invalid", 0)

		worker := queue.NewWorker(q, 1, engine.HandleJob)
		worker.ProcessNext(context.Background())

		rec := get(app, "/job/"+job.ID, "")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		errs := decode(t, rec)["error"].([]any)
		if errs[0] != tasks.FetchErrorMessage {
			t.Errorf("unexpected errors %v", errs)
		}
	})

	t.Run("Failed Job", func(t *testing.T) {
		app, q, _, _ := newAsyncApp(t)
		job, _ := q.Enqueue(context.Background(), exampleURL, 0)

		worker := queue.NewWorker(q, 1, func(ctx context.Context, job *models.Job) ([]byte, error) {
			panic("worker crashed")
		})
		worker.ProcessNext(context.Background())

		rec := get(app, "/job/"+job.ID, "")
		if rec.Code != http.StatusInternalServerError {
			t.Fatalf("expected 500, got %d", rec.Code)
		}
		if body := decode(t, rec); body["status"] != "failed" {
			t.Errorf("unexpected body %v", body)
		}
	})

	t.Run("Unknown Job", func(t *testing.T) {
		app, _, _, _ := newAsyncApp(t)
		rec := get(app, "/job/does-not-exist", "")
		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
		errs := decode(t, rec)["error"].([]any)
		if errs[0] != "job not found" {
			t.Errorf("unexpected errors %v", errs)
		}
	})

	t.Run("Malformed Job ID", func(t *testing.T) {
		app, _, _, mr := newAsyncApp(t)
		mr.Close()

		if rec := get(app, "/job/not-a-uuid", ""); rec.Code != http.StatusNotFound {
			t.Errorf("expected 404 before touching the queue, got %d", rec.Code)
		}
	})

	t.Run("Healthz Reports Queue Length", func(t *testing.T) {
		app, q, _, _ := newAsyncApp(t)
		for range 2 {
			if _, err := q.Enqueue(context.Background(), exampleURL, 0); err != nil {
				t.Fatalf("failed to enqueue: %v", err)
			}
		}

		rec := get(app, "/healthz", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if body := decode(t, rec); body["status"] != "ok" || body["queued"] != float64(2) {
			t.Errorf("unexpected body %v", body)
		}
	})

	t.Run("Expired Job", func(t *testing.T) {
		app, q, _, mr := newAsyncApp(t)
		job, _ := q.Enqueue(context.Background(), exampleURL, time.Second)
		mr.FastForward(2 * time.Second)

		if rec := get(app, "/job/"+job.ID, ""); rec.Code != http.StatusNotFound {
			t.Errorf("expected 404 for expired job, got %d", rec.Code)
		}
	})

	t.Run("Queue Unavailable", func(t *testing.T) {
		app, _, _, mr := newAsyncApp(t)
		mr.Close()

		rec := postForm(app, "example.com", "application/json")
		if rec.Code != http.StatusServiceUnavailable {
			t.Errorf("expected 503, got %d", rec.Code)
		}
		if rec := get(app, "/healthz", ""); rec.Code != http.StatusServiceUnavailable {
			t.Errorf("expected unhealthy, got %d", rec.Code)
		}
	})
}

func TestResultPage(t *testing.T) {
	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := shared.RunMigrations(db); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	repo := repositories.NewResultRepository(db)
	result := models.NewResult(0, exampleURL,
		map[string]int{"dog": 2, "cat": 1, "the": 3, "b": 1, "a": 1},
		map[string]int{"dog": 2, "cat": 1, "b": 1, "a": 1},
	)
	if err := repo.Create(result); err != nil {
		t.Fatalf("failed to create result: %v", err)
	}

	app, err := NewApp(Options{
		Mode:   shared.ModeSync,
		Store:  repo,
		Engine: tasks.NewCountEngine(fakes.NewMockFetcher(nil), repo, nil, nil),
		DB:     db,
	})
	if err != nil {
		t.Fatalf("failed to create app: %v", err)
	}

	t.Run("HTML", func(t *testing.T) {
		rec := get(app, "/result/"+result.ID(), "")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		body := rec.Body.String()
		if !strings.Contains(body, exampleURL) {
			t.Error("expected URL on the page")
		}
		order := []string{"<td>dog</td>", "<td>a</td>", "<td>b</td>", "<td>cat</td>"}
		last := -1
		for _, cell := range order {
			i := strings.Index(body, cell)
			if i <= last {
				t.Fatalf("expected %s after previous rows", cell)
			}
			last = i
		}
	})

	t.Run("JSON", func(t *testing.T) {
		rec := get(app, "/result/"+result.ID()+"?format=json", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if body := decode(t, rec); body["id"] != result.ID() {
			t.Errorf("unexpected body %v", body)
		}
	})

	t.Run("CSV download", func(t *testing.T) {
		rec := get(app, "/result/"+result.ID()+"?format=csv", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
			t.Errorf("unexpected Content-Type %q", ct)
		}
		if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, result.ID()+".csv") {
			t.Errorf("unexpected Content-Disposition %q", cd)
		}
		if !strings.HasPrefix(rec.Body.String(), "Word,Count\ndog,2\n") {
			t.Errorf("unexpected CSV %q", rec.Body.String())
		}
	})

	t.Run("PDF download", func(t *testing.T) {
		rec := get(app, "/result/"+result.ID()+"?format=pdf", "")
		if rec.Code != http.StatusOK || !strings.HasPrefix(rec.Body.String(), "%PDF") {
			t.Errorf("expected PDF, got %d", rec.Code)
		}
	})

	t.Run("Unknown format", func(t *testing.T) {
		if rec := get(app, "/result/"+result.ID()+"?format=xml", ""); rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("Missing", func(t *testing.T) {
		if rec := get(app, "/result/"+shared.GenerateID(), ""); rec.Code != http.StatusNotFound {
			t.Errorf("expected 404, got %d", rec.Code)
		}
		rec := get(app, "/result/missing", "application/json")
		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
		if errs := decode(t, rec)["error"].([]any); errs[0] != "result not found" {
			t.Errorf("unexpected errors %v", errs)
		}
	})

	t.Run("Healthz", func(t *testing.T) {
		rec := get(app, "/healthz", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		body := decode(t, rec)
		if body["status"] != "ok" {
			t.Errorf("unexpected body %v", body)
		}
		if _, ok := body["queued"]; ok {
			t.Error("sync mode should not report a queue length")
		}
	})
}

func TestMetricsRoute(t *testing.T) {
	app, _ := newSyncApp(t)
	postForm(app, "example.com", "")

	rec := get(app, "/metrics", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "wordcount_http_requests_total") {
		t.Error("expected request counter in metrics output")
	}
}
