// Package storage persists the progress of evolution runs: every all-time-best
// genome, arbitrary genome snapshots and per-generation statistics, keyed by a
// run id.
package storage

import (
	"context"

	"github.com/google/uuid"

	"github.com/baldhumanity/neatsnake/neat"
)

// Store defines persistence operations for run artifacts.
type Store interface {
	Init(ctx context.Context) error
	SaveStashEntry(ctx context.Context, rec StashRecord) error
	ListStash(ctx context.Context, runID string) ([]StashRecord, error)
	SaveGenome(ctx context.Context, runID string, genome neat.GenomeRecord) error
	GetGenome(ctx context.Context, runID string, id neat.GenomeID) (neat.GenomeRecord, bool, error)
	SaveGenerationStats(ctx context.Context, rec GenerationRecord) error
	ListGenerationStats(ctx context.Context, runID string) ([]GenerationRecord, error)
}

// VersionedRecord tags every stored payload with the layout it was written in.
type VersionedRecord struct {
	SchemaVersion int `json:"schema_version"`
	CodecVersion  int `json:"codec_version"`
}

func currentVersion() VersionedRecord {
	return VersionedRecord{SchemaVersion: CurrentSchemaVersion, CodecVersion: CurrentCodecVersion}
}

// StashRecord is a persisted all-time-best genome.
type StashRecord struct {
	VersionedRecord
	RunID      string            `json:"run_id"`
	Generation int               `json:"generation"`
	Genome     neat.GenomeRecord `json:"genome"`
}

// NewStashRecord converts a stash entry for storage.
func NewStashRecord(runID string, e neat.StashEntry) StashRecord {
	return StashRecord{
		VersionedRecord: currentVersion(),
		RunID:           runID,
		Generation:      e.Generation,
		Genome:          e.Genome.Record(),
	}
}

// GenerationRecord is a persisted neat.GenerationStats.
type GenerationRecord struct {
	VersionedRecord
	RunID       string             `json:"run_id"`
	Generation  int                `json:"generation"`
	Era         int                `json:"era"`
	Criterion   string             `json:"criterion"`
	Multiplier  float64            `json:"multiplier"`
	Size        int                `json:"size"`
	Evaluated   int                `json:"evaluated"`
	Best        neat.Fitness       `json:"best"`
	BestID      neat.GenomeID      `json:"best_id"`
	Scores      map[string]float64 `json:"scores"`
	MeanHidden  float64            `json:"mean_hidden"`
	MeanEnabled float64            `json:"mean_enabled"`
}

// NewGenerationRecord converts generation statistics for storage.
func NewGenerationRecord(runID string, s neat.GenerationStats) GenerationRecord {
	return GenerationRecord{
		VersionedRecord: currentVersion(),
		RunID:           runID,
		Generation:      s.Generation,
		Era:             s.Schedule.Era,
		Criterion:       s.Schedule.Criterion.String(),
		Multiplier:      s.Multiplier,
		Size:            s.Size,
		Evaluated:       s.Evaluated,
		Best:            s.Best,
		BestID:          s.BestID,
		Scores:          s.Scores,
		MeanHidden:      s.MeanHidden,
		MeanEnabled:     s.MeanEnabled,
	}
}

// NewRunID returns a fresh random run id.
func NewRunID() string {
	return uuid.NewString()
}
