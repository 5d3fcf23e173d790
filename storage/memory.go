package storage

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/baldhumanity/neatsnake/neat"
)

var errNotInitialized = errors.New("store not initialized")

type genomeKey struct {
	runID string
	id    neat.GenomeID
}

type MemoryStore struct {
	mu          sync.RWMutex
	initialized bool
	stash       map[string][]StashRecord
	genomes     map[genomeKey]neat.GenomeRecord
	generations map[string]map[int]GenerationRecord
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Init(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.initialized = true
	s.stash = make(map[string][]StashRecord)
	s.genomes = make(map[genomeKey]neat.GenomeRecord)
	s.generations = make(map[string]map[int]GenerationRecord)
	return nil
}

func (s *MemoryStore) SaveStashEntry(_ context.Context, rec StashRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return errNotInitialized
	}
	s.stash[rec.RunID] = append(s.stash[rec.RunID], rec)
	return nil
}

func (s *MemoryStore) ListStash(_ context.Context, runID string) ([]StashRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.initialized {
		return nil, errNotInitialized
	}
	return append([]StashRecord(nil), s.stash[runID]...), nil
}

func (s *MemoryStore) SaveGenome(_ context.Context, runID string, genome neat.GenomeRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return errNotInitialized
	}
	s.genomes[genomeKey{runID, genome.ID}] = genome
	return nil
}

func (s *MemoryStore) GetGenome(_ context.Context, runID string, id neat.GenomeID) (neat.GenomeRecord, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.initialized {
		return neat.GenomeRecord{}, false, errNotInitialized
	}
	genome, ok := s.genomes[genomeKey{runID, id}]
	return genome, ok, nil
}

func (s *MemoryStore) SaveGenerationStats(_ context.Context, rec GenerationRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return errNotInitialized
	}
	byGen, ok := s.generations[rec.RunID]
	if !ok {
		byGen = make(map[int]GenerationRecord)
		s.generations[rec.RunID] = byGen
	}
	byGen[rec.Generation] = rec
	return nil
}

func (s *MemoryStore) ListGenerationStats(_ context.Context, runID string) ([]GenerationRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.initialized {
		return nil, errNotInitialized
	}
	out := make([]GenerationRecord, 0, len(s.generations[runID]))
	for _, rec := range s.generations[runID] {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Generation < out[j].Generation })
	return out, nil
}
