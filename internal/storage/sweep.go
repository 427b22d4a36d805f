package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
)

// SweepStore is the subset of the object store the orphan sweep needs.
// Satisfied by *MinioStore.
type SweepStore interface {
	List(ctx context.Context, prefix string) ([]Object, error)
	Remove(ctx context.Context, key string) error
	KeyFromURL(raw string) (string, bool)
}

// ReferenceLister returns every object URL still referenced by a record.
type ReferenceLister interface {
	ReferencedObjects(ctx context.Context) ([]string, error)
}

// SweepResult summarises one sweep run.
type SweepResult struct {
	Scanned int
	Orphans []Object
	Removed int
	Failed  int
}

// Sweeper removes payment proofs that were uploaded but never made it into
// a record, which happens when the insert after a successful upload fails.
type Sweeper struct {
	store SweepStore
	refs  ReferenceLister
	now   func() time.Time
}

func NewSweeper(store SweepStore, refs ReferenceLister) *Sweeper {
	return &Sweeper{store: store, refs: refs, now: time.Now}
}

// Sweep deletes unreferenced proofs older than grace. Younger objects are
// skipped because their record insert may still be in flight. With dryRun
// set nothing is deleted.
func (s *Sweeper) Sweep(ctx context.Context, grace time.Duration, dryRun bool) (SweepResult, error) {
	var res SweepResult

	urls, err := s.refs.ReferencedObjects(ctx)
	if err != nil {
		return res, fmt.Errorf("list referenced objects: %w", err)
	}
	referenced := make(map[string]struct{}, len(urls))
	for _, u := range urls {
		if key, ok := s.store.KeyFromURL(u); ok {
			referenced[key] = struct{}{}
		}
	}

	objects, err := s.store.List(ctx, ProofPrefix)
	if err != nil {
		return res, err
	}

	cutoff := s.now().Add(-grace)
	for _, obj := range objects {
		res.Scanned++
		if _, ok := referenced[obj.Key]; ok {
			continue
		}
		if obj.LastModified.After(cutoff) {
			continue
		}
		res.Orphans = append(res.Orphans, obj)
		if dryRun {
			continue
		}
		if err := s.store.Remove(ctx, obj.Key); err != nil {
			log.Warn().Err(err).Str("key", obj.Key).Msg("remove orphaned proof")
			res.Failed++
			continue
		}
		res.Removed++
	}
	return res, nil
}
