package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/schollz/progressbar/v3"
	"github.com/urfave/cli/v3"

	"github.com/desertthunder/wordcount/internal/formatter"
	"github.com/desertthunder/wordcount/internal/models"
	"github.com/desertthunder/wordcount/internal/shared"
	"github.com/desertthunder/wordcount/internal/tasks"
)

// Count runs one fetch-and-count in the foreground and prints the most frequent words.
func (r *Runner) Count(ctx context.Context, cmd *cli.Command) error {
	raw := strings.TrimSpace(cmd.StringArg("url"))
	if raw == "" {
		return fmt.Errorf("%w: url", shared.ErrMissingArgument)
	}
	url := tasks.NormalizeURL(raw)

	db, closeDB, err := r.openDatabase()
	if err != nil {
		return err
	}
	defer closeDB()

	engine := r.newEngine(db, nil)

	progressCh := make(chan tasks.ProgressUpdate, 8)
	done := make(chan struct{})
	go func() {
		defer close(done)
		r.showProgress(progressCh, cmd.Bool("quiet") || cmd.Bool("json"))
	}()

	outcome := engine.Run(ctx, progressCh, url)
	close(progressCh)
	<-done

	if cmd.Bool("json") {
		if !outcome.OK() {
			if err := r.writeJSON(outcome, true); err != nil {
				return err
			}
			return outcome.Err()
		}
		return r.writeJSON(formatter.NewExport(outcome.Result), true)
	}

	if !outcome.OK() {
		r.writePlain("%s\n", r.palette.Err("✗ "+outcome.Message()))
		return outcome.Err()
	}

	r.printResult(outcome.Result, int(cmd.Int("limit")), false)
	return nil
}

// showProgress renders updates as a progress bar, or drains them when hidden.
func (r *Runner) showProgress(updates <-chan tasks.ProgressUpdate, hidden bool) {
	var bar *progressbar.ProgressBar
	for update := range updates {
		if hidden {
			continue
		}
		if bar == nil {
			bar = progressbar.NewOptions(update.Total,
				progressbar.OptionSetWriter(r.progress),
				progressbar.OptionSetDescription(update.Message),
				progressbar.OptionSetWidth(30),
				progressbar.OptionShowCount(),
				progressbar.OptionSetTheme(progressbar.Theme{
					Saucer:        "=",
					SaucerHead:    ">",
					SaucerPadding: " ",
					BarStart:      "[",
					BarEnd:        "]",
				}))
		}
		bar.Describe(update.Message)
		_ = bar.Set(update.Step)
	}
	if bar != nil {
		_ = bar.Finish()
		fmt.Fprintln(r.progress)
	}
}

// printResult prints up to limit words of result as a table with proportional bars.
// A limit of zero prints every word.
func (r *Runner) printResult(result *models.Result, limit int, all bool) {
	words := result.Sorted()
	label := "excluding stop words"
	if all {
		words = result.SortedAll()
		label = "including stop words"
	}

	r.writePlainHeader(result.URL())
	r.writePlain("Result: %s\n", result.ID())
	if !result.CreatedAt().IsZero() {
		r.writePlain("Saved: %s\n", result.CreatedAt().Format("2006-01-02 15:04:05"))
	}
	r.writePlain("Words: %d total, %d distinct %s\n\n", result.TotalWords(), len(words), label)

	if len(words) == 0 {
		r.writePlain("%s\n", r.palette.Help("No words found."))
		return
	}

	shown := words
	if limit > 0 && len(shown) > limit {
		shown = shown[:limit]
	}

	width := 0
	for _, wc := range shown {
		width = max(width, len(wc.Word))
	}
	top := shown[0].Count
	for _, wc := range shown {
		r.writePlain("%-*s %6d %s\n", width, wc.Word, wc.Count, r.palette.Bar(wc.Count, top, 30))
	}

	if hidden := len(words) - len(shown); hidden > 0 {
		r.writePlain("%s\n", r.palette.Help(fmt.Sprintf("... %d more (use --limit 0 to show all)", hidden)))
	}
}
