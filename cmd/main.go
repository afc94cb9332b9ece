package main

import (
	"context"
	"errors"
	"os"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v3"

	"github.com/desertthunder/wordcount/internal/shared"
	"github.com/desertthunder/wordcount/internal/ui"
)

func main() {
	logger := shared.NewLogger(nil)

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		logger.Warn("failed to load .env file", "error", err)
	}

	profile, err := shared.LoadProfile(os.Getenv("APP_SETTINGS"), os.Getenv)
	if err != nil {
		logger.Fatalf("invalid settings profile: %v", err)
	}
	shared.SetLogLevel(logger, shared.LevelFor(profile.Debug))
	if profile.Name == shared.ProfileProduction && profile.UsesDefaultSecret() {
		logger.Warn("SECRET_KEY is not set; using the default secret key in production")
	}

	palette := ui.Default
	if fi, err := os.Stdout.Stat(); err == nil && fi.Mode()&os.ModeCharDevice == 0 {
		palette = ui.Plain
	}

	runner := NewRunner(RunnerOpts{
		Profile: profile,
		Logger:  logger,
		Palette: palette,
	})

	if err := runner.app().Run(context.Background(), os.Args); err != nil {
		logger.Fatalf("application error: %v", err)
	}
}

// app builds the root command.
func (r *Runner) app() *cli.Command {
	return &cli.Command{
		Name:    "wordcount",
		Usage:   "Count word frequencies of web pages",
		Version: "1.0.0",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   "config.toml",
			},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			return ctx, r.loadConfig(cmd.String("config"))
		},
		Commands: r.register(),
	}
}
