package badger

import (
	"context"
	"errors"
	"slices"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/mediakg/core"
	"github.com/poiesic/mediakg/storage"
)

// FeatureRepository implements storage.FeatureRepository for BadgerDB.
type FeatureRepository struct {
	backend *Backend
}

var _ storage.FeatureRepository = (*FeatureRepository)(nil)

// NewFeatureRepository creates a new FeatureRepository.
func NewFeatureRepository(backend *Backend) (*FeatureRepository, error) {
	return &FeatureRepository{
		backend: backend,
	}, nil
}

// Close releases resources. FeatureRepository has no resources to release.
func (r *FeatureRepository) Close() error {
	return nil
}

// WithTransaction delegates to the backend.
func (r *FeatureRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// AddFeatures stores one or more features.
func (r *FeatureRepository) AddFeatures(ctx context.Context, features ...*core.Feature) ([]*core.Feature, error) {
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		now := time.Now().UTC()
		for _, f := range features {
			if len(f.Vector) == 0 {
				return storage.ErrInvalidQuery
			}
			// Use content-based ID if not set
			if f.ID == "" {
				f.ID = core.FeatureID(f.Vector)
			}
			if f.InsertedAt.IsZero() {
				f.InsertedAt = now
			}
			if err := tx.Set(makeFeatureKey(f.ID), storage.MarshalFeature(f)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
	if err != nil {
		return nil, err
	}
	return features, nil
}

// GetFeature retrieves a single feature by ID.
func (r *FeatureRepository) GetFeature(ctx context.Context, id string) (*core.Feature, error) {
	var feature *core.Feature
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeFeatureKey(id))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return storage.ErrNotFound
			}
			return err
		}
		return item.Value(func(val []byte) error {
			var err error
			feature, err = storage.UnmarshalFeature(val)
			return err
		})
	}, false)
	return feature, err
}

// DeleteFeatures removes features by ID.
func (r *FeatureRepository) DeleteFeatures(ctx context.Context, ids ...string) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range ids {
			if err := tx.Delete(makeFeatureKey(id)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// CountFeatures returns the number of stored features.
func (r *FeatureRepository) CountFeatures(ctx context.Context) (int, error) {
	count := 0
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(featurePrefix + ":")
		opts.PrefetchValues = false
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			count++
		}
		return nil
	}, false)
	return count, err
}

// FindSimilar scans every stored vector and scores it against vector.
func (r *FeatureRepository) FindSimilar(ctx context.Context, vector []float32, minSimilarity float32, limit int) ([]*core.FeatureMatch, error) {
	if limit <= 0 {
		return nil, storage.ErrInvalidQuery
	}

	var results []*core.FeatureMatch
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(featurePrefix + ":")
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}

			var feature *core.Feature
			err := iter.Item().Value(func(val []byte) error {
				var err error
				feature, err = storage.UnmarshalFeature(val)
				return err
			})
			if err != nil {
				return err
			}

			// Calculate cosine similarity (dot product for normalized vectors)
			similarity := dotProduct(vector, feature.Vector)
			if similarity >= minSimilarity {
				results = append(results, &core.FeatureMatch{
					Feature: feature,
					Score:   similarity,
				})
			}
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}

	// Sort by similarity descending
	slices.SortFunc(results, func(a, b *core.FeatureMatch) int {
		if a.Score > b.Score {
			return -1
		}
		if a.Score < b.Score {
			return 1
		}
		return 0
	})

	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}
