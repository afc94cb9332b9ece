// Package web implements the word count web application.
//
// # Routes
//
//	GET  /                 → URL form
//	POST /                 → count the URL inline (sync mode) or enqueue a job (async mode)
//	GET  /job/{job_id}     → job status as JSON
//	GET  /result/{result_id} → stored counts, as a page or downloaded with ?format=json|csv|md|txt|pdf
//	GET  /healthz          → database (and queue) liveness, plus queue length in async mode
//	GET  /metrics          → Prometheus metrics
//
// Sync mode runs [tasks.Engine] inside the request. Async mode only enqueues, and a separate
// worker process (see the queue package) runs the engine and stores the outcome on the job.
package web

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/wordcount/internal/metrics"
	"github.com/desertthunder/wordcount/internal/models"
	"github.com/desertthunder/wordcount/internal/server"
	"github.com/desertthunder/wordcount/internal/shared"
	"github.com/desertthunder/wordcount/internal/tasks"
)

// ResultStore persists and loads results. Satisfied by repositories.ResultRepository.
type ResultStore interface {
	Create(result *models.Result) error
	Get(id string) (*models.Result, error)
}

// JobQueue is the part of queue.Queue used by the web app.
type JobQueue interface {
	Enqueue(ctx context.Context, url string, ttl time.Duration) (*models.Job, error)
	Fetch(ctx context.Context, id string) (*models.Job, error)
	Len(ctx context.Context) (int64, error)
}

// Pinger reports database liveness. Satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Options wires an [App]. Store is always required, Engine in sync mode and Queue in async mode.
type Options struct {
	Mode      string
	Store     ResultStore
	Engine    tasks.Engine
	Queue     JobQueue
	ResultTTL time.Duration
	DB        Pinger
	Metrics   *metrics.Metrics
	Logger    *log.Logger
	Limits    shared.LimitsConfig
}

// App holds the dependencies shared by every request handler.
type App struct {
	mode      string
	store     ResultStore
	engine    tasks.Engine
	queue     JobQueue
	resultTTL time.Duration
	db        Pinger
	metrics   *metrics.Metrics
	logger    *log.Logger
	templates *template.Template
	router    server.Router
}

// NewApp validates opts, parses the page templates and registers all routes.
func NewApp(opts Options) (*App, error) {
	if opts.Mode == "" {
		opts.Mode = shared.ModeSync
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(io.Discard)
	}

	switch {
	case opts.Store == nil:
		return nil, fmt.Errorf("%w: result store", shared.ErrMissingArgument)
	case opts.Mode == shared.ModeSync && opts.Engine == nil:
		return nil, fmt.Errorf("%w: sync mode needs an engine", shared.ErrMissingArgument)
	case opts.Mode == shared.ModeAsync && opts.Queue == nil:
		return nil, fmt.Errorf("%w: async mode needs a queue", shared.ErrMissingArgument)
	case opts.Mode != shared.ModeSync && opts.Mode != shared.ModeAsync:
		return nil, fmt.Errorf("%w: unknown mode %q", shared.ErrInvalidArgument, opts.Mode)
	}

	templates, err := parseTemplates()
	if err != nil {
		return nil, err
	}

	a := &App{
		mode:      opts.Mode,
		store:     opts.Store,
		engine:    opts.Engine,
		queue:     opts.Queue,
		resultTTL: opts.ResultTTL,
		db:        opts.DB,
		metrics:   opts.Metrics,
		logger:    shared.WithLogger(opts.Logger, "component", "web", "mode", opts.Mode),
		templates: templates,
		router:    server.NewBasicRouter(),
	}
	a.routes(a.router, opts.Limits)
	return a, nil
}

func (a *App) routes(r server.Router, limits shared.LimitsConfig) {
	r.Use(
		server.Recover(a.logger),
		server.Logging(a.logger, a.metrics),
		server.RateLimit(limits.RequestsPerSecond, limits.Burst),
	)

	r.Handle(http.MethodGet, "/{$}", http.HandlerFunc(a.index))
	r.Handle(http.MethodPost, "/{$}", http.HandlerFunc(a.submit))
	r.Handle(http.MethodGet, "/job/{job_id}", http.HandlerFunc(a.jobStatus))
	r.Handle(http.MethodGet, "/result/{result_id}", http.HandlerFunc(a.result))
	r.Handle(http.MethodGet, "/healthz", http.HandlerFunc(a.healthz))
	if a.metrics != nil {
		r.Handler(a.metrics)
	}
}

// Mode returns the serving mode.
func (a *App) Mode() string { return a.mode }

// ServeHTTP implements [http.Handler].
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.router.ServeHTTP(w, r)
}

// Serve listens on addr until ctx is cancelled, then drains in-flight requests.
func (a *App) Serve(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           a,
		ReadHeaderTimeout: 10 * time.Second,
	}
	a.logger.Info("listening", "addr", addr)
	if err := server.Run(ctx, srv, a.logger); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}
