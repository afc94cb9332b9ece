package web

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/desertthunder/wordcount/internal/formatter"
	"github.com/desertthunder/wordcount/internal/models"
	"github.com/desertthunder/wordcount/internal/shared"
	"github.com/desertthunder/wordcount/internal/tasks"
)

// Messages for request-level failures.
const (
	missingURLMessage  = "Please enter a URL."
	queueErrorMessage  = "Unable to queue the URL right now. Please try again later."
	jobNotFoundMessage = "job not found"
	notFoundMessage    = "result not found"
	healthCheckTimeout = 2 * time.Second
)

func (a *App) index(w http.ResponseWriter, r *http.Request) {
	a.render(w, http.StatusOK, "index.html", page{})
}

// submit handles the URL form in either mode.
func (a *App) submit(w http.ResponseWriter, r *http.Request) {
	raw := strings.TrimSpace(r.FormValue("url"))
	if raw == "" {
		if wantsJSON(r) {
			writeJSON(w, http.StatusBadRequest, errorBody(missingURLMessage))
			return
		}
		a.render(w, http.StatusBadRequest, "index.html", page{Errors: []string{missingURLMessage}})
		return
	}
	url := tasks.NormalizeURL(raw)

	if a.mode == shared.ModeAsync {
		a.enqueue(w, r, url)
		return
	}
	a.count(w, r, url)
}

// count runs the unit of work inside the request.
func (a *App) count(w http.ResponseWriter, r *http.Request, url string) {
	outcome := a.engine.Run(r.Context(), nil, url)

	if wantsJSON(r) {
		status := http.StatusOK
		switch outcome.Kind {
		case tasks.KindFetch:
			status = http.StatusBadGateway
		case tasks.KindPersistence:
			status = http.StatusInternalServerError
		}
		writeJSON(w, status, outcome)
		return
	}

	data := page{URL: url, Errors: outcome.Errors}
	if outcome.OK() && outcome.Result != nil {
		data.Result = outcome.Result
		data.Words = outcome.Result.Sorted()
	}
	a.render(w, http.StatusOK, "index.html", data)
}

// enqueue hands url to the worker queue and reports the job id.
func (a *App) enqueue(w http.ResponseWriter, r *http.Request, url string) {
	job, err := a.queue.Enqueue(r.Context(), url, a.resultTTL)
	if err != nil {
		a.logger.Error("failed to enqueue job", "url", url, "err", err)
		if wantsJSON(r) {
			writeJSON(w, http.StatusServiceUnavailable, errorBody(queueErrorMessage))
			return
		}
		a.render(w, http.StatusServiceUnavailable, "index.html", page{URL: url, Errors: []string{queueErrorMessage}})
		return
	}

	location := "/job/" + job.ID
	w.Header().Set("Location", location)
	if wantsJSON(r) {
		writeJSON(w, http.StatusAccepted, map[string]string{"job_id": job.ID})
		return
	}
	a.render(w, http.StatusAccepted, "index.html", page{URL: url, JobID: job.ID})
}

// jobStatus reports a job's state, and its stored outcome once finished.
func (a *App) jobStatus(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("job_id")
	if a.queue == nil || !shared.IsID(id) {
		writeJSON(w, http.StatusNotFound, errorBody(jobNotFoundMessage))
		return
	}

	job, err := a.queue.Fetch(r.Context(), id)
	switch {
	case errors.Is(err, shared.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody(jobNotFoundMessage))
		return
	case err != nil:
		a.logger.Error("failed to fetch job", "job_id", id, "err", err)
		writeJSON(w, http.StatusServiceUnavailable, errorBody(queueErrorMessage))
		return
	}

	switch job.Status {
	case models.JobFinished:
		if len(job.Result) == 0 {
			writeJSON(w, http.StatusOK, map[string]string{})
			return
		}
		writeRawJSON(w, http.StatusOK, job.Result)
	case models.JobFailed:
		msg := job.Error
		if msg == "" {
			msg = "job failed"
		}
		writeJSON(w, http.StatusInternalServerError, map[string]any{
			"status": string(models.JobFailed),
			"error":  []string{msg},
		})
	default:
		writeJSON(w, http.StatusAccepted, map[string]string{
			"status": string(job.Status),
			"job_id": job.ID,
		})
	}
}

// result shows a stored result, or downloads it when ?format is set.
func (a *App) result(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("result_id")
	if !shared.IsID(id) {
		a.renderError(w, r, http.StatusNotFound, notFoundMessage)
		return
	}

	result, err := a.store.Get(id)
	switch {
	case errors.Is(err, shared.ErrNotFound):
		a.renderError(w, r, http.StatusNotFound, notFoundMessage)
		return
	case err != nil:
		a.logger.Error("failed to load result", "result_id", id, "err", err)
		a.renderError(w, r, http.StatusInternalServerError, tasks.PersistenceErrorMessage)
		return
	}

	name := r.URL.Query().Get("format")
	if name == "" && wantsJSON(r) {
		name = string(formatter.FormatJSON)
	}
	if name == "" {
		a.render(w, http.StatusOK, "result.html", page{
			Title:   result.URL(),
			URL:     result.URL(),
			Result:  result,
			Words:   result.Sorted(),
			Formats: formatter.Formats,
		})
		return
	}

	format, err := formatter.ParseFormat(name)
	if err != nil {
		a.renderError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	data, err := formatter.Render(result, format)
	if err != nil {
		a.logger.Error("failed to export result", "result_id", id, "format", format, "err", err)
		a.renderError(w, r, http.StatusInternalServerError, "export failed")
		return
	}

	w.Header().Set("Content-Type", format.ContentType())
	if format != formatter.FormatJSON {
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", format.Filename(result)))
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// healthz pings the database, and the queue in async mode.
func (a *App) healthz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
	defer cancel()

	body := map[string]any{"status": "ok"}
	var failures []string
	if a.db != nil {
		if err := a.db.PingContext(ctx); err != nil {
			a.logger.Warn("database health check failed", "err", err)
			failures = append(failures, "database unavailable")
		}
	}
	if a.mode == shared.ModeAsync && a.queue != nil {
		if n, err := a.queue.Len(ctx); err != nil {
			a.logger.Warn("queue health check failed", "err", err)
			failures = append(failures, "queue unavailable")
		} else {
			body["queued"] = n
		}
	}

	if len(failures) > 0 {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{"status": "unavailable", "error": failures})
		return
	}
	writeJSON(w, http.StatusOK, body)
}
