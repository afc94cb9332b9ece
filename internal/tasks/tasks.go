// package tasks implements the fetch-and-count unit of work.
//
// The core abstraction is Engine, which fetches a page, counts its words and persists a Result.
// Runs emit progress updates via channels for non-blocking status reporting to the CLI.
package tasks

import (
	"bytes"
	"context"
	"io"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/wordcount/internal/metrics"
	"github.com/desertthunder/wordcount/internal/models"
	"github.com/desertthunder/wordcount/internal/services"
	"github.com/desertthunder/wordcount/internal/shared"
	"github.com/desertthunder/wordcount/internal/wordfreq"
)

// Engine runs the fetch-and-count unit of work for a normalized URL.
type Engine interface {
	// Run fetches url, counts its words and persists a result.
	// Failures are reported in the returned [Outcome], never as a panic or error.
	Run(ctx context.Context, progress chan<- ProgressUpdate, url string) *Outcome
}

// ResultStore persists new results. Satisfied by repositories.ResultRepository.
type ResultStore interface {
	Create(result *models.Result) error
}

// CountEngine implements [Engine].
type CountEngine struct {
	fetcher services.Fetcher
	store   ResultStore
	logger  *log.Logger
	metrics *metrics.Metrics
}

// NewCountEngine creates a new CountEngine. logger and m may be nil.
func NewCountEngine(fetcher services.Fetcher, store ResultStore, logger *log.Logger, m *metrics.Metrics) *CountEngine {
	if logger == nil {
		logger = shared.NewLogger(io.Discard)
	}
	return &CountEngine{
		fetcher: fetcher,
		store:   store,
		logger:  shared.WithLogger(logger, "component", "engine"),
		metrics: m,
	}
}

// sendProgress sends a progress update through the channel without blocking.
func (e *CountEngine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

// Run fetches url, strips markup, counts raw and stop-word filtered tokens and saves a [models.Result].
//
// A fetch failure persists nothing. A persistence failure leaves no partial row.
func (e *CountEngine) Run(ctx context.Context, progress chan<- ProgressUpdate, url string) *Outcome {
	logger := e.logger.With("url", url)

	outcome := e.run(ctx, progress, logger, url)
	e.metrics.Outcome(outcome.Kind.String())
	e.sendProgress(progress, doneUpdate(outcome))
	return outcome
}

func (e *CountEngine) run(ctx context.Context, progress chan<- ProgressUpdate, logger *log.Logger, url string) *Outcome {
	e.sendProgress(progress, fetchUpdate(url))
	page, err := e.fetcher.Fetch(ctx, url)
	if err != nil {
		logger.Error("fetch failed", "err", err)
		return failed(url, KindFetch)
	}
	logger.Debug("fetched page", "status", page.StatusCode, "bytes", len(page.Body), "elapsed", page.Elapsed)

	e.sendProgress(progress, parseUpdate(len(page.Body)))
	text, err := wordfreq.StripMarkup(bytes.NewReader(page.Body))
	if err != nil {
		logger.Error("unreadable page", "err", err)
		return failed(url, KindFetch)
	}

	e.sendProgress(progress, countUpdate(len(text)))
	counts := wordfreq.CountText(text)

	e.sendProgress(progress, persistUpdate(len(counts.All)))
	result := models.NewResult(0, url, counts.All, counts.NoStopWords)
	if err := e.store.Create(result); err != nil {
		logger.Error("persist failed", "err", err)
		return failed(url, KindPersistence)
	}

	e.metrics.WordsCounted(result.TotalWords())
	logger.Info("saved result", "id", result.ID(), "words", result.TotalWords(), "distinct", len(counts.All))
	return succeeded(url, result)
}

// HandleJob runs a queued job and returns its encoded [Outcome]. It has the shape of queue.Handler.
//
// Fetch and persistence failures are still a finished job; only an encoding error fails it.
func (e *CountEngine) HandleJob(ctx context.Context, job *models.Job) ([]byte, error) {
	return e.Run(ctx, nil, job.URL).Encode()
}
