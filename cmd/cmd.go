// Command tree for serve, worker, count, job, result, tui and setup.
package main

import (
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/wordcount/internal/formatter"
)

func formatNames() string {
	names := make([]string, len(formatter.Formats))
	for i, f := range formatter.Formats {
		names[i] = string(f)
	}
	return strings.Join(names, ", ")
}

// serveCommand starts the web application.
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the web application",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "async",
				Usage: "Queue submitted URLs for `wordcount worker` instead of counting in the request",
			},
			&cli.StringFlag{
				Name:  "addr",
				Usage: "Listen address (defaults to server.host:server.port)",
			},
		},
		Action: r.Serve,
	}
}

// workerCommand processes queued jobs.
func workerCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "worker",
		Usage: "Process queued fetch-and-count jobs",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "concurrency",
				Usage: "Jobs processed in parallel (defaults to queue.concurrency)",
			},
			&cli.StringFlag{
				Name:  "metrics-addr",
				Usage: "Serve Prometheus metrics on this address",
			},
		},
		Action: r.Worker,
	}
}

// countCommand runs one fetch-and-count inline.
func countCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "count",
		Usage: "Fetch a URL, count its words and save the result",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "url"},
		},
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
			&cli.IntFlag{
				Name:  "limit",
				Usage: "Number of words to print",
				Value: 20,
			},
			&cli.BoolFlag{
				Name:    "quiet",
				Aliases: []string{"q"},
				Usage:   "Hide the progress bar",
			},
		},
		Action: r.Count,
	}
}

// jobCommand inspects the job queue.
func jobCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "job",
		Usage: "Job queue operations",
		Commands: []*cli.Command{
			{
				Name:  "submit",
				Usage: "Queue a URL for the worker",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "url"},
				},
				Flags: []cli.Flag{
					&cli.DurationFlag{
						Name:  "ttl",
						Usage: "How long the job and its result are kept (defaults to queue.result_ttl)",
					},
				},
				Action: r.JobSubmit,
			},
			{
				Name:  "status",
				Usage: "Show a job's status and result",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
						Value: true,
					},
				},
				Action: r.JobStatus,
			},
		},
	}
}

// resultCommand reads and exports stored results.
func resultCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "result",
		Usage: "Stored result operations",
		Commands: []*cli.Command{
			{
				Name:  "show",
				Usage: "Print a result's word counts",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Number of words to print (0 for all)",
						Value: 20,
					},
					&cli.BoolFlag{
						Name:  "all",
						Usage: "Include stop words",
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
					&cli.BoolFlag{
						Name:  "open",
						Usage: "Open the result page served by `wordcount serve` in a browser",
					},
				},
				Action: r.ResultShow,
			},
			{
				Name:  "list",
				Usage: "List stored results, newest first",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "url",
						Usage: "Only results for this URL",
					},
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of results to list",
						Value: 20,
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.ResultList,
			},
			{
				Name:  "export",
				Usage: "Write a result to a file",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "format",
						Aliases:  []string{"f"},
						Usage:    "Export format: " + formatNames(),
						Required: true,
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output file path (defaults to <id>.<format>)",
					},
				},
				Action: r.ResultExport,
			},
			{
				Name:  "delete",
				Usage: "Soft-delete a result",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Action: r.ResultDelete,
			},
		},
	}
}

// tuiCommand browses stored results and counts new URLs interactively.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "tui",
		Usage: "Browse stored results in an interactive terminal UI",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "limit",
				Usage: "Number of results to list (0 for all)",
				Value: 100,
			},
			&cli.StringFlag{
				Name:  "log",
				Usage: "Append logs to this file while the UI runs",
				Value: "./tmp/wordcount-tui.log",
			},
		},
		Action: r.TUI,
	}
}

// setupCommand handles setup operations for the config file and database.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:   "database",
				Usage:  "Initialize database and run migrations",
				Action: r.SetupDatabase,
			},
			{
				Name:   "rollback",
				Usage:  "Roll back the most recent migration",
				Action: r.SetupRollback,
			},
			{
				Name:  "config",
				Usage: "Write the default config file",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Config file path",
						Value:   "config.toml",
					},
				},
				Action: r.SetupConfig,
			},
		},
	}
}
