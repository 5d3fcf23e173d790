package neat

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// GenomeRecord is the portable form of a Genome. It carries stable ids only;
// arena positions are rebuilt on load. Node and connection order is preserved,
// which keeps the summation order of every node identical after a round trip.
type GenomeRecord struct {
	ID          GenomeID           `json:"id" yaml:"id"`
	Inputs      []NodeID           `json:"inputs" yaml:"inputs"`
	Outputs     []NodeID           `json:"outputs" yaml:"outputs"`
	Nodes       []NodeRecord       `json:"nodes" yaml:"nodes"`
	Connections []ConnectionRecord `json:"connections" yaml:"connections"`
	Fitness     *FitnessRecord     `json:"fitness,omitempty" yaml:"fitness,omitempty"`
}

// NodeRecord is the portable form of a NodeGene.
type NodeRecord struct {
	ID         NodeID `json:"id" yaml:"id"`
	Activation string `json:"activation" yaml:"activation"`
	Layer      string `json:"layer,omitempty" yaml:"layer,omitempty"` // informational
}

// ConnectionRecord is the portable form of a ConnectionGene.
type ConnectionRecord struct {
	ID      ConnID  `json:"id" yaml:"id"`
	In      NodeID  `json:"in" yaml:"in"`
	Out     NodeID  `json:"out" yaml:"out"`
	Weight  float64 `json:"weight" yaml:"weight"`
	Enabled bool    `json:"enabled" yaml:"enabled"`
}

// FitnessRecord is present when the genome carries a computed fitness.
type FitnessRecord struct {
	Fitness `yaml:",inline"`
	Stamp   Stamp `json:"stamp" yaml:"stamp"`
}

// Record converts the genome to its portable form.
func (g *Genome) Record() GenomeRecord {
	rec := GenomeRecord{
		ID:          g.ID,
		Inputs:      make([]NodeID, len(g.inputs)),
		Outputs:     make([]NodeID, len(g.outputs)),
		Nodes:       make([]NodeRecord, len(g.nodes)),
		Connections: make([]ConnectionRecord, len(g.conns)),
	}
	for i, p := range g.inputs {
		rec.Inputs[i] = g.nodes[p].ID
	}
	for i, p := range g.outputs {
		rec.Outputs[i] = g.nodes[p].ID
	}
	for i := range g.nodes {
		n := &g.nodes[i]
		rec.Nodes[i] = NodeRecord{ID: n.ID, Activation: n.Activation.String(), Layer: n.Layer.String()}
	}
	for i := range g.conns {
		c := &g.conns[i]
		rec.Connections[i] = ConnectionRecord{
			ID:      c.ID,
			In:      g.nodes[c.In.pos].ID,
			Out:     g.nodes[c.Out.pos].ID,
			Weight:  c.Weight,
			Enabled: c.Enabled,
		}
	}
	if g.Evaluated {
		rec.Fitness = &FitnessRecord{Fitness: g.Fitness, Stamp: g.Stamp}
	}
	return rec
}

// FromRecord rebuilds a genome from its portable form and recomputes its
// evaluation order. Malformed records produce an error rather than a panic.
func FromRecord(rec GenomeRecord) (*Genome, error) {
	if len(rec.Inputs) == 0 || len(rec.Outputs) == 0 {
		return nil, fmt.Errorf("genome %d: record needs inputs and outputs", rec.ID)
	}
	kinds := make(map[NodeID]LayerKind, len(rec.Inputs)+len(rec.Outputs))
	for _, id := range rec.Inputs {
		kinds[id] = LayerInput
	}
	for _, id := range rec.Outputs {
		if _, dup := kinds[id]; dup {
			return nil, fmt.Errorf("genome %d: node %d declared twice as input/output", rec.ID, id)
		}
		kinds[id] = LayerOutput
	}

	g := newBareGenome(rec.ID)
	for _, nr := range rec.Nodes {
		act, err := GetActivation(nr.Activation)
		if err != nil {
			return nil, fmt.Errorf("genome %d node %d: %w", rec.ID, nr.ID, err)
		}
		if _, dup := g.nodePos[nr.ID]; dup {
			return nil, fmt.Errorf("genome %d: duplicate node id %d", rec.ID, nr.ID)
		}
		kind, ok := kinds[nr.ID]
		if !ok {
			kind = LayerHidden
		}
		g.addNode(nr.ID, act, Layer{Kind: kind})
	}
	for _, id := range rec.Inputs {
		pos, ok := g.nodePos[id]
		if !ok {
			return nil, fmt.Errorf("genome %d: input node %d missing", rec.ID, id)
		}
		g.inputs = append(g.inputs, pos)
	}
	for _, id := range rec.Outputs {
		pos, ok := g.nodePos[id]
		if !ok {
			return nil, fmt.Errorf("genome %d: output node %d missing", rec.ID, id)
		}
		g.outputs = append(g.outputs, pos)
	}
	for _, cr := range rec.Connections {
		in, okIn := g.nodePos[cr.In]
		out, okOut := g.nodePos[cr.Out]
		if !okIn || !okOut {
			return nil, fmt.Errorf("genome %d: connection %d references unknown node", rec.ID, cr.ID)
		}
		if _, dup := g.connPos[cr.ID]; dup {
			return nil, fmt.Errorf("genome %d: duplicate connection id %d", rec.ID, cr.ID)
		}
		if g.nodes[out].Layer.Kind == LayerInput || g.nodes[in].Layer.Kind == LayerOutput {
			return nil, fmt.Errorf("genome %d: connection %d has an illegal direction", rec.ID, cr.ID)
		}
		g.addConn(cr.ID, g.nodes[in].Index, g.nodes[out].Index, cr.Weight, cr.Enabled)
	}
	if err := g.buildOrderChecked(); err != nil {
		return nil, fmt.Errorf("genome %d: %w", rec.ID, err)
	}
	if rec.Fitness != nil {
		g.SetFitness(rec.Fitness.Fitness, rec.Fitness.Stamp)
	}
	return g, nil
}

// buildOrderChecked converts the cycle panic of BuildEvaluationOrder into an error.
func (g *Genome) buildOrderChecked() (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("invalid structure: %v", r)
		}
	}()
	g.BuildEvaluationOrder()
	return g.Verify()
}

// MarshalJSON encodes the genome through its GenomeRecord.
func (g *Genome) MarshalJSON() ([]byte, error) {
	return json.Marshal(g.Record())
}

// UnmarshalJSON decodes a GenomeRecord into g.
func (g *Genome) UnmarshalJSON(data []byte) error {
	var rec GenomeRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return err
	}
	ng, err := FromRecord(rec)
	if err != nil {
		return err
	}
	*g = *ng
	return nil
}

// Dump renders the genome as YAML for diagnostics.
func (g *Genome) Dump() string {
	out, err := yaml.Marshal(g.Record())
	if err != nil {
		return fmt.Sprintf("<genome %d: yaml dump failed: %v>", g.ID, err)
	}
	return string(out)
}
