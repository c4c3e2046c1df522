package storage

import (
	"context"
	"time"

	"github.com/poiesic/mediakg/core"
)

// Repository provides common storage operations shared across all repositories.
// Implementations must be thread-safe and support concurrent access.
type Repository interface {
	// WithTransaction executes a function within a transaction.
	// If fn returns an error, the transaction is rolled back.
	// If fn returns nil, the transaction is committed.
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error

	// Close releases the repository. The shared backend is closed separately.
	Close() error
}

// GraphInfo describes a stored graph snapshot.
type GraphInfo struct {
	Name       string
	Namespace  string
	Triples    int
	Generation uint64 // incremented by every save
	SavedAt    time.Time
}

// GraphRepository stores named snapshots of knowledge graphs.
type GraphRepository interface {
	Repository

	// SaveGraph replaces the snapshot called name with triples.
	// Names must be non-empty and must not contain ':'.
	SaveGraph(ctx context.Context, name, namespace string, triples []core.Triple) (*GraphInfo, error)

	// LoadGraph returns the snapshot's namespace and triples.
	// Returns ErrNotFound if no snapshot has that name.
	LoadGraph(ctx context.Context, name string) (*GraphInfo, []core.Triple, error)

	// ListGraphs returns every snapshot, ordered by name.
	ListGraphs(ctx context.Context) ([]*GraphInfo, error)

	// DeleteGraph removes a snapshot and all its triples.
	// Returns ErrNotFound if no snapshot has that name.
	DeleteGraph(ctx context.Context, name string) error
}

// FeatureRepository stores embedding vectors referenced by graph entities.
type FeatureRepository interface {
	Repository

	// AddFeatures stores features. Features with an empty ID get
	// core.FeatureID of their vector. Storing an existing ID overwrites it.
	// Sets InsertedAt if not already set.
	AddFeatures(ctx context.Context, features ...*core.Feature) ([]*core.Feature, error)

	// GetFeature retrieves a feature by ID.
	// Returns ErrNotFound if the feature doesn't exist.
	GetFeature(ctx context.Context, id string) (*core.Feature, error)

	// DeleteFeatures removes features by ID. Missing IDs are ignored.
	DeleteFeatures(ctx context.Context, ids ...string) error

	// CountFeatures returns the number of stored features.
	CountFeatures(ctx context.Context) (int, error)

	// FindSimilar finds features whose vectors are similar to vector.
	// Returns matches with similarity >= minSimilarity, up to limit results,
	// ordered by similarity score (highest first).
	FindSimilar(ctx context.Context, vector []float32, minSimilarity float32, limit int) ([]*core.FeatureMatch, error)
}

// CheckpointRepository records which files have been ingested.
type CheckpointRepository interface {
	// SaveCheckpoint persists a checkpoint, setting UpdatedAt.
	SaveCheckpoint(ctx context.Context, checkpoint *core.Checkpoint) error

	// LoadCheckpoint retrieves the checkpoint for a file path.
	// Returns nil, nil if no checkpoint exists.
	LoadCheckpoint(ctx context.Context, path string) (*core.Checkpoint, error)
}
