// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"strings"

	"github.com/poiesic/concierge"
	"github.com/poiesic/concierge/config"
	"github.com/urfave/cli/v2"
)

// openSystem assembles the system for a command. Tests replace it.
var openSystem = func(ctx context.Context, cfg *config.Config, opts ...concierge.Option) (*concierge.System, error) {
	return concierge.Open(ctx, cfg, opts...)
}

func main() {
	if err := newApp(os.Stdout).Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp(out io.Writer) *cli.App {
	return &cli.App{
		Name:      "concierge",
		Usage:     "Answer questions over a private document collection",
		Writer:    out,
		ErrWriter: os.Stderr,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to the YAML configuration file",
				EnvVars: []string{"CONCIERGE_CONFIG"},
			},
			&cli.StringFlag{
				Name:    "data",
				Aliases: []string{"d"},
				Usage:   "Local data directory (overrides storage.path)",
			},
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:      "ask",
				Usage:     "Answer a question; with \"-\" answer one question per stdin line",
				ArgsUsage: "QUESTION...",
				Action:    askCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "session",
						Aliases: []string{"s"},
						Usage:   "Session id",
						Value:   "default",
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Print the full result as JSON",
					},
					&cli.BoolFlag{
						Name:  "stats",
						Usage: "Print request counters when done",
					},
				},
			},
			{
				Name:      "search",
				Usage:     "Run a hybrid search and print the reranked passages",
				ArgsUsage: "QUERY...",
				Action:    searchCommand,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:    "top-k",
						Aliases: []string{"k"},
						Usage:   "Number of passages to return",
						Value:   7,
					},
					&cli.BoolFlag{
						Name:  "trace",
						Usage: "Log every search stage at debug level",
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Print passages as JSON",
					},
				},
			},
			{
				Name:      "feedback",
				Usage:     "Record feedback about an answer",
				ArgsUsage: "ANSWER_ID utile|inutile [COMMENT...]",
				Action:    feedbackCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "session",
						Aliases: []string{"s"},
						Usage:   "Session id",
						Value:   "default",
					},
				},
			},
			{
				Name:  "session",
				Usage: "Inspect or clear sessions",
				Subcommands: []*cli.Command{
					{
						Name:      "show",
						Usage:     "Print a session as JSON",
						ArgsUsage: "SESSION_ID",
						Action:    sessionShowCommand,
					},
					{
						Name:      "clear",
						Usage:     "Delete a session",
						ArgsUsage: "SESSION_ID",
						Action:    sessionClearCommand,
					},
					{
						Name:      "set",
						Usage:     "Set a session variable (top_k, extract_on_full_doc, n8n_webhook, user)",
						ArgsUsage: "SESSION_ID NAME VALUE",
						Action:    sessionSetCommand,
					},
					{
						Name:      "attach",
						Usage:     "Attach a document's full text to a session",
						ArgsUsage: "SESSION_ID FILE",
						Action:    sessionAttachCommand,
					},
				},
			},
			{
				Name:      "ingest",
				Usage:     "Chunk text files into the local dense store and the lexical index",
				ArgsUsage: "FILE...",
				Action:    ingestCommand,
			},
			{
				Name:   "reembed",
				Usage:  "Rebuild every chunk vector in the local store with the configured embedder",
				Action: reembedCommand,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Number of chunks embedded per call",
						Value: 64,
					},
					&cli.IntFlag{
						Name:  "report-interval",
						Usage: "Report progress every N chunks",
						Value: 100,
					},
					&cli.IntFlag{
						Name:  "max-retries",
						Usage: "Maximum attempts per embedding call",
						Value: 3,
					},
				},
			},
			{
				Name:   "audit",
				Usage:  "List recorded feedback or evaluations, newest first",
				Action: auditCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "kind",
						Usage: "feedback or evaluations",
						Value: "feedback",
					},
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of events (0 for all)",
						Value: 20,
					},
				},
			},
		},
	}
}

func setupLogger(c *cli.Context) error {
	levelStr := strings.ToLower(c.String("log-level"))

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)
	return nil
}

// loadConfig reads the configuration named by the global flags.
func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, err
	}
	if data := c.String("data"); data != "" {
		cfg.Storage.Path = data
	}
	return cfg, nil
}

func open(c *cli.Context, opts ...concierge.Option) (*concierge.System, error) {
	cfg, err := loadConfig(c)
	if err != nil {
		return nil, err
	}
	sys, err := openSystem(c.Context, cfg, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to open concierge: %w", err)
	}
	return sys, nil
}
