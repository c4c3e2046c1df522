// Package ingestion turns files and prompts into knowledge-graph entities.
//
// A Pipeline classifies each file, probes its metadata, optionally enriches
// it through an ai.AIProvider and commits the mapped entity to a graph:
//   - Videos without a caption are captioned from detected objects
//   - Captions are embedded and stored as features referenced by hasFeatureID
//   - Unchanged files are skipped using stored checkpoints
//
// Directory ingestion runs files concurrently on a worker pool. Enrichment
// failures are logged and reported as warnings; they never fail a file.
package ingestion
