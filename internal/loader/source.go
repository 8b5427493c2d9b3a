package loader

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/koustreak/tpchkit/internal/errs"
	"github.com/koustreak/tpchkit/internal/filestore"
	"github.com/koustreak/tpchkit/internal/schema"
)

// Source supplies one batch of rows per entity. The pipeline calls Batch
// once per entity, in dependency order; a source never needs to support
// concurrent calls.
type Source interface {
	Batch(ctx context.Context, entity string) ([]schema.Row, error)
}

// MemorySource serves pre-built batches, keyed by entity name.
type MemorySource map[string][]schema.Row

// Batch returns the stored batch. Missing entities are an error: every
// entity needs a batch, even an empty one.
func (m MemorySource) Batch(_ context.Context, entity string) ([]schema.Row, error) {
	rows, ok := m[entity]
	if !ok {
		return nil, errs.New(errs.ErrKindNotFound,
			fmt.Sprintf("no batch for entity %s", entity))
	}
	return rows, nil
}

// DirSource reads per-entity CSV files (region.csv, nation.csv, …) from a
// local directory, the layout the generator exports.
type DirSource struct {
	Dir string
}

func (d DirSource) Batch(_ context.Context, entity string) ([]schema.Row, error) {
	path := filepath.Join(d.Dir, entity+".csv")
	f, err := os.Open(path)
	if err != nil {
		return nil, errs.Wrap(errs.ErrKindNotFound,
			fmt.Sprintf("cannot open batch file %s", path), err)
	}
	defer f.Close()

	return ReadBatch(f, entity)
}

// StoreSource streams per-entity CSV objects from an object store bucket,
// keyed <prefix><entity>.csv.
type StoreSource struct {
	Store  filestore.Store
	Bucket string
	Prefix string
}

func (s StoreSource) Batch(ctx context.Context, entity string) ([]schema.Row, error) {
	key := s.Prefix + entity + ".csv"
	obj, err := s.Store.GetObject(ctx, s.Bucket, key)
	if err != nil {
		return nil, err
	}
	defer obj.Close()

	return ReadBatch(obj, entity)
}
