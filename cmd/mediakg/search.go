package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/poiesic/mediakg/ingestion"
	"github.com/poiesic/mediakg/reembed"
	"github.com/poiesic/mediakg/search"
	"github.com/urfave/cli/v2"
)

func promptCommand() *cli.Command {
	return &cli.Command{
		Name:      "prompt",
		Usage:     "Record a text prompt as a TextFile entity with its keywords and embedding",
		ArgsUsage: "<text>...",
		Action:    recordPrompt,
	}
}

func recordPrompt(c *cli.Context) error {
	text := strings.Join(c.Args().Slice(), " ")
	if strings.TrimSpace(text) == "" {
		return errors.New("prompt text is required")
	}
	cfg := configFrom(c)
	ctx := c.Context

	kb, err := openKnowledgeBase(ctx, cfg)
	if err != nil {
		return err
	}
	defer kb.Close()

	pipeline, err := kb.NewIngestionPipeline()
	if err != nil {
		return fmt.Errorf("failed to create pipeline: %w", err)
	}
	defer pipeline.Release()

	res, err := pipeline.IngestPrompt(ctx, text)
	if err != nil {
		return err
	}
	if _, err := kb.Save(ctx); err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}

	w := c.App.Writer
	fmt.Fprintf(w, "Entity: %s\n", res.EntityID)
	fmt.Fprintf(w, "Prompt: %s\n", res.Prompt.Text)
	if len(res.Prompt.Keywords) > 0 {
		fmt.Fprintf(w, "Keywords: %s\n", res.Prompt.Keywords)
	}
	if res.FeatureID != "" {
		fmt.Fprintf(w, "Feature: %s\n", res.FeatureID)
	}
	return nil
}

func searchCommand() *cli.Command {
	return &cli.Command{
		Name:      "search",
		Usage:     "Find entities matching a text query",
		ArgsUsage: "<query>...",
		Action:    runSearch,
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "max-hits",
				Aliases: []string{"n"},
				Usage:   "Maximum number of results (overrides search.max_hits)",
			},
			&cli.Float64Flag{
				Name:  "min-similarity",
				Usage: "Minimum cosine similarity for semantic matches (overrides search.min_similarity)",
			},
		},
	}
}

func runSearch(c *cli.Context) error {
	query := strings.Join(c.Args().Slice(), " ")
	if strings.TrimSpace(query) == "" {
		return errors.New("query is required")
	}
	cfg := configFrom(c)
	ctx := c.Context

	maxHits := cfg.Search.MaxHits
	if c.IsSet("max-hits") {
		maxHits = c.Int("max-hits")
	}
	minSimilarity := cfg.Search.MinSimilarity
	if c.IsSet("min-similarity") {
		minSimilarity = float32(c.Float64("min-similarity"))
	}

	kb, err := openKnowledgeBase(ctx, cfg)
	if err != nil {
		return err
	}
	defer kb.Close()

	searcher, err := kb.NewSearcher(search.WithMinSimilarity(minSimilarity))
	if err != nil {
		return fmt.Errorf("failed to create searcher: %w", err)
	}

	hits, err := searcher.Find(ctx, query, maxHits)
	if err != nil {
		return err
	}

	w := c.App.Writer
	fmt.Fprintf(w, "Found %d hits\n", len(hits))
	for i, hit := range hits {
		label := hit.Caption
		if label == "" {
			label = hit.FileName
		}
		fmt.Fprintf(w, "%d: %s %s '%s' [%0.3f]\n", i, hit.EntityID, hit.Class, label, hit.Score)
	}
	return nil
}

func reembedCommand() *cli.Command {
	return &cli.Command{
		Name:   "reembed",
		Usage:  "Re-embed the captions behind stored features with the configured embedding model",
		Action: runReembed,
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "batch-size",
				Usage: "Number of captions embedded per request",
				Value: reembed.DefaultConfig().BatchSize,
			},
		},
	}
}

func runReembed(c *cli.Context) error {
	cfg := configFrom(c)
	ctx := c.Context

	kb, err := openKnowledgeBase(ctx, cfg)
	if err != nil {
		return err
	}
	defer kb.Close()

	r, err := kb.NewReembedder(&reembed.Config{
		BatchSize:      c.Int("batch-size"),
		ReportInterval: 100,
		Backoff: ingestion.Backoff{
			Attempts: cfg.Ingest.Retry.Attempts,
			Base:     cfg.Ingest.Retry.Base,
			Max:      cfg.Ingest.Retry.Max,
		},
	}, c.App.ErrWriter)
	if err != nil {
		return fmt.Errorf("failed to create reembedder: %w", err)
	}

	n, err := r.Run(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "Re-embedded %d features\n", n)
	return nil
}
