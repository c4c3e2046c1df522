package badger

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/mediakg/core"
	"github.com/poiesic/mediakg/storage"
)

// GraphRepository implements storage.GraphRepository for BadgerDB.
//
// Each triple is its own key under the graph's prefix, so snapshots of any
// size are written through a write batch. Every save writes a new
// generation of keys and then commits metadata pointing at it; the previous
// generation is dropped only after that commit, so an interrupted save
// leaves the last complete snapshot readable.
type GraphRepository struct {
	backend *Backend
}

var _ storage.GraphRepository = (*GraphRepository)(nil)

// NewGraphRepository creates a new GraphRepository.
func NewGraphRepository(backend *Backend) (*GraphRepository, error) {
	return &GraphRepository{
		backend: backend,
	}, nil
}

// Close releases resources. GraphRepository has no resources to release.
func (r *GraphRepository) Close() error {
	return nil
}

// WithTransaction delegates to the backend.
func (r *GraphRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// SaveGraph replaces the snapshot called name.
func (r *GraphRepository) SaveGraph(ctx context.Context, name, namespace string, triples []core.Triple) (*storage.GraphInfo, error) {
	if err := validateGraphName(name); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var previous *storage.GraphInfo
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		previous, err = readGraphInfo(tx, name)
		if errors.Is(err, storage.ErrNotFound) {
			return nil
		}
		return err
	}, false)
	if err != nil {
		return nil, err
	}

	generation := uint64(1)
	if previous != nil {
		generation = previous.Generation + 1
	}

	// Leftovers of an interrupted save may occupy this generation.
	if err := r.backend.DropPrefix(makeGraphGenerationPrefix(name, generation)); err != nil {
		return nil, err
	}

	err = r.backend.WithBatch(func(wb *badger.WriteBatch) error {
		for i, t := range triples {
			if err := wb.Set(makeGraphTripleKey(name, generation, uint64(i)), storage.MarshalTriple(t)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	info := &storage.GraphInfo{
		Name:       name,
		Namespace:  namespace,
		Triples:    len(triples),
		Generation: generation,
		SavedAt:    time.Now().UTC(),
	}
	err = r.backend.WithTx(func(tx *badger.Txn) error {
		if err := tx.Set(makeGraphMetaKey(name), storage.MarshalGraphInfo(info)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
	if err != nil {
		return nil, err
	}

	if previous != nil {
		if err := r.backend.DropPrefix(makeGraphGenerationPrefix(name, previous.Generation)); err != nil {
			r.backend.logger.Warn("failed to drop previous graph generation", "name", name, "generation", previous.Generation, "err", err)
		}
	}

	r.backend.logger.Debug("graph snapshot saved", "name", name, "triples", len(triples), "generation", generation)
	return info, nil
}

// LoadGraph returns the snapshot's metadata and triples, sorted.
func (r *GraphRepository) LoadGraph(ctx context.Context, name string) (*storage.GraphInfo, []core.Triple, error) {
	if err := validateGraphName(name); err != nil {
		return nil, nil, err
	}

	var info *storage.GraphInfo
	var triples []core.Triple
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		info, err = readGraphInfo(tx, name)
		if err != nil {
			return err
		}

		opts := badger.DefaultIteratorOptions
		opts.Prefix = makeGraphGenerationPrefix(name, info.Generation)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			err := iter.Item().Value(func(val []byte) error {
				t, err := storage.UnmarshalTriple(val)
				if err != nil {
					return err
				}
				triples = append(triples, t)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	}, false)
	if err != nil {
		return nil, nil, err
	}
	if len(triples) != info.Triples {
		return nil, nil, fmt.Errorf("%w: %q has %d of %d triples", storage.ErrIncompleteSnapshot, name, len(triples), info.Triples)
	}

	slices.SortFunc(triples, core.Compare)
	return info, triples, nil
}

// ListGraphs returns metadata for every snapshot, ordered by name.
func (r *GraphRepository) ListGraphs(ctx context.Context) ([]*storage.GraphInfo, error) {
	var infos []*storage.GraphInfo
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(graphMetaPrefix + ":")
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			err := iter.Item().Value(func(val []byte) error {
				info, err := storage.UnmarshalGraphInfo(val)
				if err != nil {
					return err
				}
				infos = append(infos, info)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}

	slices.SortFunc(infos, func(a, b *storage.GraphInfo) int { return strings.Compare(a.Name, b.Name) })
	return infos, nil
}

// DeleteGraph removes a snapshot and its triples.
func (r *GraphRepository) DeleteGraph(ctx context.Context, name string) error {
	if err := validateGraphName(name); err != nil {
		return err
	}

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		if _, err := readGraphInfo(tx, name); err != nil {
			return err
		}
		if err := tx.Delete(makeGraphMetaKey(name)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
	if err != nil {
		return err
	}

	return r.backend.DropPrefix(makeGraphTriplePrefix(name))
}

func readGraphInfo(tx *badger.Txn, name string) (*storage.GraphInfo, error) {
	item, err := tx.Get(makeGraphMetaKey(name))
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, storage.ErrNotFound
		}
		return nil, err
	}

	var info *storage.GraphInfo
	err = item.Value(func(val []byte) error {
		var err error
		info, err = storage.UnmarshalGraphInfo(val)
		return err
	})
	return info, err
}
