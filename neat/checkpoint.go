package neat

import (
	"compress/gzip"
	"encoding/gob"
	"fmt"
	"io"
	"os"
)

// PopulationSaveData holds the parts of a Population needed to resume a run.
// The Config is not saved; it is reloaded from the original file.
type PopulationSaveData struct {
	Genomes    []GenomeRecord
	Stash      []StashRecord
	Generation int
	Multiplier float64
	LastID     uint64
}

// StashRecord is the portable form of a StashEntry.
type StashRecord struct {
	Genome     GenomeRecord
	Generation int
}

// SaveCheckpoint saves the current state of the Population to a gzip-compressed gob file.
func (p *Population) SaveCheckpoint(filePath string) error {
	file, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("failed to create checkpoint file '%s': %w", filePath, err)
	}
	defer file.Close()

	if err := p.WriteCheckpoint(file); err != nil {
		return err
	}
	return file.Close()
}

// WriteCheckpoint encodes the population state to w.
func (p *Population) WriteCheckpoint(w io.Writer) error {
	gzWriter := gzip.NewWriter(w)

	saveData := PopulationSaveData{
		Genomes:    make([]GenomeRecord, len(p.Genomes)),
		Stash:      make([]StashRecord, len(p.stash)),
		Generation: p.Generation,
		Multiplier: p.multiplier,
		LastID:     p.IDs.Last(),
	}
	for i, g := range p.Genomes {
		saveData.Genomes[i] = g.Record()
	}
	for i, e := range p.stash {
		saveData.Stash[i] = StashRecord{Genome: e.Genome.Record(), Generation: e.Generation}
	}

	if err := gob.NewEncoder(gzWriter).Encode(saveData); err != nil {
		return fmt.Errorf("failed to encode population data: %w", err)
	}
	if err := gzWriter.Close(); err != nil {
		return fmt.Errorf("failed to flush checkpoint: %w", err)
	}
	return nil
}

// LoadCheckpoint loads a Population state from a checkpoint file.
// It requires the original configuration file path to reconstruct the Config object.
func LoadCheckpoint(checkpointPath string, configPath string) (*Population, error) {
	config, err := LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config '%s' for checkpoint: %w", configPath, err)
	}

	file, err := os.Open(checkpointPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open checkpoint file '%s': %w", checkpointPath, err)
	}
	defer file.Close()

	return ReadCheckpoint(file, config)
}

// ReadCheckpoint decodes a checkpoint written by WriteCheckpoint.
func ReadCheckpoint(r io.Reader, config *Config) (*Population, error) {
	gzReader, err := gzip.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to create gzip reader for checkpoint: %w", err)
	}
	defer gzReader.Close()

	var saveData PopulationSaveData
	if err := gob.NewDecoder(gzReader).Decode(&saveData); err != nil {
		return nil, fmt.Errorf("failed to decode population data from checkpoint: %w", err)
	}

	p, err := NewPopulation(config)
	if err != nil {
		return nil, err
	}
	p.IDs.Observe(saveData.LastID)
	for _, rec := range saveData.Genomes {
		g, err := FromRecord(rec)
		if err != nil {
			return nil, fmt.Errorf("failed to restore genome from checkpoint: %w", err)
		}
		p.IDs.ObserveGenome(g)
		p.Genomes = append(p.Genomes, g)
	}
	for _, rec := range saveData.Stash {
		g, err := FromRecord(rec.Genome)
		if err != nil {
			return nil, fmt.Errorf("failed to restore stash entry from checkpoint: %w", err)
		}
		p.IDs.ObserveGenome(g)
		p.stash = append(p.stash, StashEntry{Genome: g, Generation: rec.Generation})
	}
	p.Generation = saveData.Generation
	if saveData.Multiplier > 0 {
		p.multiplier = saveData.Multiplier
	}
	return p, nil
}
