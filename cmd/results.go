package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/wordcount/internal/formatter"
	"github.com/desertthunder/wordcount/internal/models"
	"github.com/desertthunder/wordcount/internal/repositories"
	"github.com/desertthunder/wordcount/internal/shared"
	"github.com/desertthunder/wordcount/internal/tasks"
)

// JobSubmit queues a URL for the worker and prints the job id.
func (r *Runner) JobSubmit(ctx context.Context, cmd *cli.Command) error {
	raw := strings.TrimSpace(cmd.StringArg("url"))
	if raw == "" {
		return fmt.Errorf("%w: url", shared.ErrMissingArgument)
	}

	q := r.newQueue(nil)
	defer q.Close()

	job, err := q.Enqueue(ctx, tasks.NormalizeURL(raw), cmd.Duration("ttl"))
	if err != nil {
		return err
	}
	return r.writeJSON(map[string]string{"job_id": job.ID}, false)
}

// JobStatus prints a job's state as JSON.
//
// A failed job, or a finished one whose outcome is an error, is printed and then returned as an error
// so the exit status reflects it.
func (r *Runner) JobStatus(ctx context.Context, cmd *cli.Command) error {
	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("%w: job id", shared.ErrMissingArgument)
	}
	if !shared.IsID(id) {
		return fmt.Errorf("%w: job %s", shared.ErrNotFound, id)
	}

	q := r.newQueue(nil)
	defer q.Close()

	job, err := q.Fetch(ctx, id)
	if err != nil {
		return err
	}
	if err := r.writeJSON(job, cmd.Bool("pretty")); err != nil {
		return err
	}

	switch job.Status {
	case models.JobFailed:
		return fmt.Errorf("%w: %s", shared.ErrJobFailed, job.Error)
	case models.JobFinished:
		if len(job.Result) == 0 {
			return nil
		}
		outcome, err := tasks.DecodeOutcome(job.Result)
		if err != nil {
			return err
		}
		return outcome.Err()
	}
	return nil
}

// ResultShow prints a stored result.
func (r *Runner) ResultShow(ctx context.Context, cmd *cli.Command) error {
	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("%w: result id", shared.ErrMissingArgument)
	}

	db, closeDB, err := r.openDatabase()
	if err != nil {
		return err
	}
	defer closeDB()

	result, err := repositories.NewResultRepository(db).Get(id)
	if err != nil {
		return err
	}

	if cmd.Bool("open") {
		url := shared.ResultURL(r.config.Server, result.ID())
		if err := r.openBrowser(url); err != nil {
			return err
		}
		r.logger.Info("opened result", "url", url)
	}

	if cmd.Bool("json") {
		return r.writeJSON(formatter.NewExport(result), true)
	}
	r.printResult(result, int(cmd.Int("limit")), cmd.Bool("all"))
	return nil
}

type resultSummary struct {
	ID          string    `json:"id"`
	URL         string    `json:"url"`
	TotalWords  int       `json:"total_words"`
	UniqueWords int       `json:"unique_words"`
	CreatedAt   time.Time `json:"created_at"`
}

// ResultList prints stored results, newest first.
func (r *Runner) ResultList(ctx context.Context, cmd *cli.Command) error {
	db, closeDB, err := r.openDatabase()
	if err != nil {
		return err
	}
	defer closeDB()

	criteria := map[string]any{"limit": int(cmd.Int("limit"))}
	if url := cmd.String("url"); url != "" {
		criteria["url"] = tasks.NormalizeURL(url)
	}

	results, err := repositories.NewResultRepository(db).List(criteria)
	if err != nil {
		return err
	}

	summaries := make([]resultSummary, len(results))
	for i, result := range results {
		summaries[i] = resultSummary{
			ID:          result.ID(),
			URL:         result.URL(),
			TotalWords:  result.TotalWords(),
			UniqueWords: len(result.NoStopWords()),
			CreatedAt:   result.CreatedAt(),
		}
	}

	if cmd.Bool("json") {
		return r.writeJSON(summaries, true)
	}

	r.writePlainHeader(fmt.Sprintf("Results (%d)", len(summaries)))
	for _, s := range summaries {
		r.writePlain("%s  %s  %6d words  %s\n", s.ID, s.CreatedAt.Format("2006-01-02 15:04"), s.TotalWords, s.URL)
	}
	return nil
}

// ResultExport writes a stored result to a file in the requested format.
func (r *Runner) ResultExport(ctx context.Context, cmd *cli.Command) error {
	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("%w: result id", shared.ErrMissingArgument)
	}

	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return fmt.Errorf("%w: --format must be one of %s", shared.ErrInvalidFlag, formatNames())
	}

	db, closeDB, err := r.openDatabase()
	if err != nil {
		return err
	}
	defer closeDB()

	result, err := repositories.NewResultRepository(db).Get(id)
	if err != nil {
		return err
	}

	path, err := formatter.WriteExport(result, format, cmd.String("output"))
	if err != nil {
		return err
	}

	r.logger.Info("exported result", "id", id, "format", format, "path", path)
	r.writePlain("%s\n", r.palette.OK("✓ Exported to "+path))
	return nil
}

// ResultDelete soft-deletes a stored result.
func (r *Runner) ResultDelete(ctx context.Context, cmd *cli.Command) error {
	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("%w: result id", shared.ErrMissingArgument)
	}

	db, closeDB, err := r.openDatabase()
	if err != nil {
		return err
	}
	defer closeDB()

	if err := repositories.NewResultRepository(db).Delete(id); err != nil {
		return err
	}

	r.writePlain("%s\n", r.palette.OK("✓ Deleted "+id))
	return nil
}
