package main

import (
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/desertthunder/wordcount/internal/metrics"
	"github.com/desertthunder/wordcount/internal/queue"
	"github.com/desertthunder/wordcount/internal/repositories"
	"github.com/desertthunder/wordcount/internal/services"
	"github.com/desertthunder/wordcount/internal/shared"
	"github.com/desertthunder/wordcount/internal/tasks"
	"github.com/desertthunder/wordcount/internal/ui"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config   *shared.Config
	profile  *shared.Profile
	db       *sql.DB
	fetcher  services.Fetcher
	logger   *log.Logger
	output   io.Writer
	progress io.Writer
	palette  *ui.Palette

	openBrowser func(url string) error
	tuiOptions  []tea.ProgramOption
}

// RunnerOpts contains configuration options for creating a Runner.
//
// A nil Config is loaded from --config when a command runs. DB and Fetcher replace the
// configured database and page fetcher.
type RunnerOpts struct {
	Config   *shared.Config
	Profile  *shared.Profile
	DB       *sql.DB
	Fetcher  services.Fetcher
	Logger   *log.Logger
	Output   io.Writer
	Progress io.Writer
	Palette  *ui.Palette

	// OpenBrowser opens result pages, defaulting to [shared.OpenBrowser].
	OpenBrowser func(url string) error
	// TUIOptions replace the program options of `wordcount tui`.
	TUIOptions []tea.ProgramOption
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.Progress == nil {
		opts.Progress = os.Stderr
	}
	if opts.Palette == nil {
		opts.Palette = ui.Default
	}
	if opts.OpenBrowser == nil {
		opts.OpenBrowser = shared.OpenBrowser
	}
	if opts.TUIOptions == nil {
		opts.TUIOptions = []tea.ProgramOption{tea.WithAltScreen()}
	}
	if opts.Profile == nil {
		opts.Profile = &shared.Profile{Name: shared.ProfileDevelopment, SecretKey: shared.DefaultSecretKey}
	}

	return &Runner{
		config:   opts.Config,
		profile:  opts.Profile,
		db:       opts.DB,
		fetcher:  opts.Fetcher,
		logger:   opts.Logger,
		output:   opts.Output,
		progress: opts.Progress,
		palette:  opts.Palette,

		openBrowser: opts.OpenBrowser,
		tuiOptions:  opts.TUIOptions,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		serveCommand, workerCommand, countCommand, jobCommand, resultCommand, tuiCommand, setupCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// loadConfig reads path when it exists, falls back to the embedded defaults otherwise,
// then applies the settings profile. A config passed to [NewRunner] is kept as is.
func (r *Runner) loadConfig(path string) error {
	if r.config != nil {
		return nil
	}

	config := shared.DefaultConfig()
	if _, err := os.Stat(path); err == nil {
		if config, err = shared.LoadConfig(path); err != nil {
			return err
		}
		r.logger.Debug("loaded config", "path", path)
	} else if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to stat config file: %w", err)
	}

	if err := config.ApplyProfile(r.profile); err != nil {
		return err
	}
	r.config = config
	return nil
}

// openDatabase returns the database with migrations applied and a func that closes it.
func (r *Runner) openDatabase() (*sql.DB, func(), error) {
	if r.db != nil {
		return r.db, func() {}, nil
	}
	db, err := shared.OpenDatabase(r.config.Database)
	if err != nil {
		return nil, nil, err
	}
	return db, func() { db.Close() }, nil
}

func (r *Runner) newFetcher() services.Fetcher {
	if r.fetcher != nil {
		return r.fetcher
	}
	return services.NewPageServiceFromConfig(r.config.Fetch)
}

func (r *Runner) newEngine(db *sql.DB, m *metrics.Metrics) *tasks.CountEngine {
	return tasks.NewCountEngine(r.newFetcher(), repositories.NewResultRepository(db), r.logger, m)
}

func (r *Runner) newQueue(m *metrics.Metrics) *queue.Queue {
	return queue.New(queue.NewClient(r.config.Queue), r.config.Queue, r.logger, m)
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	output, err := shared.MarshalJSON(data, pretty)
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("%s", r.palette.Header(title))
}
