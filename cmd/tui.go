package main

import (
	"context"
	"fmt"
	"io"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/urfave/cli/v3"

	"github.com/desertthunder/wordcount/internal/repositories"
	"github.com/desertthunder/wordcount/internal/shared"
	"github.com/desertthunder/wordcount/internal/ui"
)

// TUI launches the interactive result browser.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	db, closeDB, err := r.openDatabase()
	if err != nil {
		return err
	}
	defer closeDB()

	// Logs would draw over the UI
	if path := cmd.String("log"); path != "" {
		fileLogger, f, err := shared.NewFileLogger(path)
		if err != nil {
			return err
		}
		defer f.Close()
		fileLogger.SetLevel(r.logger.GetLevel())
		r.logger = fileLogger
	} else {
		r.logger = shared.NewLogger(io.Discard)
	}

	server := r.config.Server
	model := ui.NewModel(ctx, ui.Options{
		Results:   repositories.NewResultRepository(db),
		Engine:    r.newEngine(db, nil),
		Limit:     int(cmd.Int("limit")),
		ResultURL: func(id string) string { return shared.ResultURL(server, id) },
		Open:      r.openBrowser,
		Palette:   r.palette,
	})

	opts := append([]tea.ProgramOption{tea.WithContext(ctx)}, r.tuiOptions...)
	if _, err := tea.NewProgram(model, opts...).Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}
	return nil
}
