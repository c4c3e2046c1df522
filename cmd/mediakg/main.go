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
	"log"
	"log/slog"
	"os"
	"strings"

	"github.com/poiesic/mediakg"
	"github.com/poiesic/mediakg/config"
	"github.com/poiesic/mediakg/graph"
	"github.com/urfave/cli/v2"
)

const configKey = "config"

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "mediakg",
		Usage: "Build a knowledge graph from multimedia files",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to a YAML config file",
				EnvVars: []string{"MEDIAKG_CONFIG"},
			},
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error), overriding the config file",
			},
			&cli.StringFlag{
				Name:    "db",
				Aliases: []string{"d"},
				Usage:   "Path to BadgerDB database directory, overriding the config file",
			},
			&cli.BoolFlag{
				Name:  "no-ai",
				Usage: "Disable embedding, keyword extraction and object detection",
			},
		},
		Before: setup,
		Commands: []*cli.Command{
			ingestCommand(),
			promptCommand(),
			searchCommand(),
			reembedCommand(),
			ontologyCommand(),
			convertCommand(),
			snapshotCommand(),
			{
				Name:   "config",
				Usage:  "Print the effective configuration",
				Action: printConfig,
			},
		},
	}
}

// setup loads the config, applies global flag overrides and installs the
// logger.
func setup(c *cli.Context) error {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return err
	}
	if c.IsSet("log-level") {
		cfg.LogLevel = c.String("log-level")
	}
	if c.IsSet("db") {
		cfg.Store.Path = c.String("db")
		cfg.Store.InMemory = false
	}
	if c.Bool("no-ai") {
		cfg.AI.Enabled = false
	}

	if err := setupLogger(cfg.LogLevel); err != nil {
		return err
	}
	if c.App.Metadata == nil {
		c.App.Metadata = make(map[string]any)
	}
	c.App.Metadata[configKey] = cfg
	return nil
}

func setupLogger(levelStr string) error {
	// Normalize to lowercase
	levelStr = strings.ToLower(levelStr)

	// Map string to slog.Level
	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn", "warning":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	// Configure slog with the specified level
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}

func configFrom(c *cli.Context) *config.Config {
	if cfg, ok := c.App.Metadata[configKey].(*config.Config); ok {
		return cfg
	}
	return config.Default()
}

func openKnowledgeBase(ctx context.Context, cfg *config.Config) (*mediakg.KnowledgeBase, error) {
	graphOpts := []graph.Option{
		graph.WithNamespace(cfg.Graph.Namespace),
		graph.WithPrefix(cfg.Graph.Prefix),
	}
	if cfg.Graph.Permissive {
		graphOpts = append(graphOpts, graph.WithPermissive())
	}

	opts := []mediakg.Option{
		mediakg.WithSnapshot(cfg.Graph.Snapshot),
		mediakg.WithGraphOptions(graphOpts...),
		mediakg.WithLogger(slog.Default()),
	}
	if cfg.Store.InMemory {
		opts = append(opts, mediakg.WithInMemory())
	}
	if cfg.AI.Enabled {
		opts = append(opts, mediakg.WithAIConfig(cfg.AIConfig()))
	} else {
		opts = append(opts, mediakg.WithoutAI())
	}

	kb, err := mediakg.Open(ctx, cfg.Store.Path, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to open knowledge base: %w", err)
	}
	return kb, nil
}

func printConfig(c *cli.Context) error {
	data, err := configFrom(c).Marshal()
	if err != nil {
		return err
	}
	_, err = c.App.Writer.Write(data)
	return err
}
