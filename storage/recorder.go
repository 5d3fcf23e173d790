package storage

import (
	"context"
	"fmt"

	"github.com/baldhumanity/neatsnake/neat"
)

// Recorder is a neat.Reporter that writes every new best genome and every
// generation's statistics to a Store. Reporter methods cannot fail, so the
// first write error is kept and later writes are skipped; check Err after
// each generation.
type Recorder struct {
	neat.BaseReporter

	Store Store
	RunID string

	ctx context.Context
	err error
}

// NewRecorder creates a recorder for one run. The store must already be
// initialized.
func NewRecorder(ctx context.Context, store Store, runID string) *Recorder {
	return &Recorder{Store: store, RunID: runID, ctx: ctx}
}

// Err returns the first write error, if any.
func (r *Recorder) Err() error { return r.err }

func (r *Recorder) PostEvaluate(stats neat.GenerationStats) {
	if r.err != nil {
		return
	}
	if err := r.Store.SaveGenerationStats(r.ctx, NewGenerationRecord(r.RunID, stats)); err != nil {
		r.err = fmt.Errorf("save stats for generation %d: %w", stats.Generation, err)
	}
}

func (r *Recorder) NewBest(entry neat.StashEntry) {
	if r.err != nil {
		return
	}
	rec := NewStashRecord(r.RunID, entry)
	if err := r.Store.SaveStashEntry(r.ctx, rec); err != nil {
		r.err = fmt.Errorf("save stash entry for genome %d: %w", entry.Genome.ID, err)
		return
	}
	if err := r.Store.SaveGenome(r.ctx, r.RunID, rec.Genome); err != nil {
		r.err = fmt.Errorf("save genome %d: %w", entry.Genome.ID, err)
	}
}

// Restore rebuilds the stashed genomes of a run, oldest first.
func Restore(ctx context.Context, store Store, runID string) ([]neat.StashEntry, error) {
	recs, err := store.ListStash(ctx, runID)
	if err != nil {
		return nil, err
	}
	entries := make([]neat.StashEntry, 0, len(recs))
	for _, rec := range recs {
		g, err := neat.FromRecord(rec.Genome)
		if err != nil {
			return nil, fmt.Errorf("restore genome %d: %w", rec.Genome.ID, err)
		}
		entries = append(entries, neat.StashEntry{Genome: g, Generation: rec.Generation})
	}
	return entries, nil
}
