package storage

import (
	"encoding/json"
	"errors"

	"github.com/baldhumanity/neatsnake/neat"
)

const (
	CurrentSchemaVersion = 1
	CurrentCodecVersion  = 1
)

var ErrVersionMismatch = errors.New("record version mismatch")

type genomeEnvelope struct {
	VersionedRecord
	Genome neat.GenomeRecord `json:"genome"`
}

func EncodeGenome(g neat.GenomeRecord) ([]byte, error) {
	return json.Marshal(genomeEnvelope{VersionedRecord: currentVersion(), Genome: g})
}

func DecodeGenome(data []byte) (neat.GenomeRecord, error) {
	var env genomeEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return neat.GenomeRecord{}, err
	}
	if err := checkVersion(env.VersionedRecord); err != nil {
		return neat.GenomeRecord{}, err
	}
	return env.Genome, nil
}

func EncodeStash(rec StashRecord) ([]byte, error) {
	return json.Marshal(rec)
}

func DecodeStash(data []byte) (StashRecord, error) {
	var rec StashRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return StashRecord{}, err
	}
	if err := checkVersion(rec.VersionedRecord); err != nil {
		return StashRecord{}, err
	}
	return rec, nil
}

func EncodeGeneration(rec GenerationRecord) ([]byte, error) {
	return json.Marshal(rec)
}

func DecodeGeneration(data []byte) (GenerationRecord, error) {
	var rec GenerationRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return GenerationRecord{}, err
	}
	if err := checkVersion(rec.VersionedRecord); err != nil {
		return GenerationRecord{}, err
	}
	return rec, nil
}

func checkVersion(v VersionedRecord) error {
	if v.SchemaVersion != CurrentSchemaVersion || v.CodecVersion != CurrentCodecVersion {
		return ErrVersionMismatch
	}
	return nil
}
