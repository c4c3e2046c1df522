package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/poiesic/mediakg/graph"
	"github.com/poiesic/mediakg/ingestion"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/urfave/cli/v2"
)

func ingestCommand() *cli.Command {
	return &cli.Command{
		Name:      "ingest",
		Usage:     "Ingest files and directories into the knowledge graph",
		ArgsUsage: "<path>...",
		Action:    ingest,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Serialize the graph to this file after ingesting (overrides graph.output)",
			},
			&cli.StringFlag{
				Name:  "format",
				Usage: "Output format (turtle, ntriples); defaults to the file extension",
			},
			&cli.IntFlag{
				Name:    "workers",
				Aliases: []string{"w"},
				Usage:   "Number of files ingested concurrently (overrides ingest.workers)",
			},
			&cli.BoolFlag{
				Name:  "force",
				Usage: "Re-ingest files even if unchanged since the last run",
			},
			&cli.BoolFlag{
				Name:    "quiet",
				Aliases: []string{"q"},
				Usage:   "Do not report progress",
			},
			&cli.StringFlag{
				Name:  "metrics-file",
				Usage: "Write Prometheus metrics in text format to this file when done",
			},
		},
	}
}

func ingest(c *cli.Context) error {
	if c.NArg() == 0 {
		return errors.New("at least one path is required")
	}
	cfg := configFrom(c)
	ctx := c.Context

	kb, err := openKnowledgeBase(ctx, cfg)
	if err != nil {
		return err
	}
	defer kb.Close()

	workers := cfg.Ingest.Workers
	if c.IsSet("workers") {
		workers = c.Int("workers")
	}
	registry := prometheus.NewRegistry()
	opts := []ingestion.Option{
		ingestion.WithPoolSize(workers),
		ingestion.WithBackoff(ingestion.Backoff{
			Attempts: cfg.Ingest.Retry.Attempts,
			Base:     cfg.Ingest.Retry.Base,
			Max:      cfg.Ingest.Retry.Max,
		}),
		ingestion.WithMinConfidence(cfg.AI.MinConfidence),
		ingestion.WithMetrics(registry),
	}
	if !cfg.Ingest.Checkpoints || c.Bool("force") {
		opts = append(opts, ingestion.WithCheckpoints(nil))
	}
	if !c.Bool("quiet") {
		opts = append(opts, ingestion.WithProgress(c.App.ErrWriter))
	}

	pipeline, err := kb.NewIngestionPipeline(opts...)
	if err != nil {
		return fmt.Errorf("failed to create pipeline: %w", err)
	}
	defer pipeline.Release()

	var (
		total    ingestion.Report
		failures []error
	)
	for _, path := range c.Args().Slice() {
		info, err := os.Stat(path)
		if err != nil {
			return err
		}

		if !info.IsDir() {
			res, err := pipeline.IngestFile(ctx, path)
			total.Files++
			switch {
			case err != nil:
				total.Failed++
				failures = append(failures, fmt.Errorf("%s: %w", path, err))
			case res.Skipped:
				total.Skipped++
			default:
				total.Ingested++
				total.Triples += res.Triples
			}
			continue
		}

		report, err := pipeline.IngestDir(ctx, path)
		if err != nil {
			return err
		}
		total.Files += report.Files
		total.Ingested += report.Ingested
		total.Skipped += report.Skipped
		total.Failed += report.Failed
		total.Triples += report.Triples
		if err := report.Err(); err != nil {
			failures = append(failures, err)
		}
	}

	if _, err := kb.Save(ctx); err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}

	output := cfg.Graph.Output
	if c.IsSet("output") {
		output = c.String("output")
	}
	if output != "" {
		format, err := outputFormat(c.String("format"), cfg.Graph.Format, output, c.IsSet("format"))
		if err != nil {
			return err
		}
		if err := kb.Export(output, format); err != nil {
			return err
		}
	}

	if path := c.String("metrics-file"); path != "" {
		if err := prometheus.WriteToTextfile(path, registry); err != nil {
			return fmt.Errorf("failed to write metrics: %w", err)
		}
	}

	fmt.Fprintf(c.App.Writer, "files=%d ingested=%d skipped=%d failed=%d triples=%d graph=%d\n",
		total.Files, total.Ingested, total.Skipped, total.Failed, total.Triples, kb.Graph().Len())
	if output != "" {
		fmt.Fprintf(c.App.Writer, "Graph written to %s\n", output)
	}
	return errors.Join(failures...)
}

// outputFormat picks the flag format when given, then the format implied
// by a known file extension, then the configured format.
func outputFormat(flag, configured, path string, flagSet bool) (graph.Format, error) {
	if flagSet {
		return graph.ParseFormat(flag)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".nt", ".ttl", ".owl":
		return graph.FormatFromPath(path), nil
	}
	return graph.ParseFormat(configured)
}
