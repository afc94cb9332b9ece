package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/wordcount/internal/metrics"
	"github.com/desertthunder/wordcount/internal/queue"
	"github.com/desertthunder/wordcount/internal/repositories"
	"github.com/desertthunder/wordcount/internal/server"
	"github.com/desertthunder/wordcount/internal/shared"
	"github.com/desertthunder/wordcount/internal/web"
)

// Serve runs the web application until interrupted.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	mode := r.config.Server.Mode
	if cmd.Bool("async") {
		mode = shared.ModeAsync
	}
	addr := cmd.String("addr")
	if addr == "" {
		addr = r.config.Server.Addr()
	}

	db, closeDB, err := r.openDatabase()
	if err != nil {
		return err
	}
	defer closeDB()

	m := metrics.New()
	opts := web.Options{
		Mode:      mode,
		Store:     repositories.NewResultRepository(db),
		DB:        db,
		Metrics:   m,
		Logger:    r.logger,
		Limits:    r.config.Limits,
		ResultTTL: r.config.Queue.ResultTTL,
	}

	if mode == shared.ModeAsync {
		q := r.newQueue(m)
		defer q.Close()
		if err := q.Ping(ctx); err != nil {
			return err
		}
		m.QueueDepth(queueDepth(q))
		opts.Queue = q
	} else {
		opts.Engine = r.newEngine(db, m)
	}

	app, err := web.NewApp(opts)
	if err != nil {
		return fmt.Errorf("failed to create web app: %w", err)
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	r.logger.Info("starting server", "addr", addr, "mode", app.Mode(), "profile", r.profile.Name)
	return app.Serve(ctx, addr)
}

// Worker processes queued jobs until interrupted, finishing any job already started.
func (r *Runner) Worker(ctx context.Context, cmd *cli.Command) error {
	db, closeDB, err := r.openDatabase()
	if err != nil {
		return err
	}
	defer closeDB()

	m := metrics.New()
	q := r.newQueue(m)
	defer q.Close()
	if err := q.Ping(ctx); err != nil {
		return err
	}

	m.QueueDepth(queueDepth(q))

	concurrency := int(cmd.Int("concurrency"))
	if concurrency <= 0 {
		concurrency = r.config.Queue.Concurrency
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if addr := cmd.String("metrics-addr"); addr != "" {
		router := server.NewBasicRouter()
		router.Use(server.Recover(r.logger))
		router.Handler(m)
		srv := &http.Server{Addr: addr, Handler: router, ReadHeaderTimeout: 10 * time.Second}
		go func() {
			if err := server.Run(ctx, srv, r.logger); err != nil {
				r.logger.Error("metrics server stopped", "err", err)
			}
		}()
		r.logger.Info("serving metrics", "addr", addr)
	}

	engine := r.newEngine(db, m)
	return queue.NewWorker(q, concurrency, engine.HandleJob).Start(ctx)
}

// queueDepth reads the queue length for the depth gauge, reporting -1 when Redis is unreachable.
func queueDepth(q *queue.Queue) func() float64 {
	return func() float64 {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		n, err := q.Len(ctx)
		if err != nil {
			return -1
		}
		return float64(n)
	}
}
