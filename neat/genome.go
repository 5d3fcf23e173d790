package neat

import (
	"fmt"
)

// Fitness is the record produced by a FitnessFunc. Score drives selection, the
// remaining metrics are kept for reporting and for population events.
type Fitness struct {
	Score   float64 `json:"score" yaml:"score"`
	Goals   float64 `json:"goals" yaml:"goals"`
	Visited float64 `json:"visited" yaml:"visited"`
	Moves   float64 `json:"moves" yaml:"moves"`
}

// MetricNames lists the names accepted by Fitness.Metric.
var MetricNames = []string{"score", "goals", "visited", "moves"}

// Metric returns a fitness component by name. It panics on unknown names;
// configuration loading validates names up front.
func (f Fitness) Metric(name string) float64 {
	switch name {
	case "score":
		return f.Score
	case "goals":
		return f.Goals
	case "visited":
		return f.Visited
	case "moves":
		return f.Moves
	}
	panic(fmt.Sprintf("unknown fitness metric %q", name))
}

// Stamp identifies the schedule state a fitness was computed under.
type Stamp struct {
	Era       int       `json:"era" yaml:"era"`
	Criterion Criterion `json:"criterion" yaml:"criterion"`
}

// Genome represents an individual network in the population.
// Nodes and connections live in two dense arenas addressed by NodeIndex/ConnIndex;
// stable ids map back to arena positions for gene matching.
type Genome struct {
	ID        GenomeID
	Fitness   Fitness
	Evaluated bool  // Fitness holds a computed value
	Stamp     Stamp // schedule state Fitness was computed under

	arena   uint64
	nodes   []NodeGene
	conns   []ConnectionGene
	nodePos map[NodeID]int
	connPos map[ConnID]int
	inputs  []int // arena positions, declaration order
	outputs []int

	order        []int
	orderCurrent bool
	outputsValid bool // an evaluation pass ran since the last change to structure or parameters
}

func newBareGenome(id GenomeID) *Genome {
	return &Genome{
		ID:      id,
		arena:   arenaTags.Add(1),
		nodePos: make(map[NodeID]int),
		connPos: make(map[ConnID]int),
	}
}

// NewGenome creates a genome with inputCount input nodes followed by outputCount
// output nodes and no connections. Every node starts with the Sigmoid activation.
func NewGenome(ids *IDAllocator, inputCount, outputCount int) *Genome {
	if inputCount <= 0 || outputCount <= 0 {
		panic(fmt.Sprintf("genome needs at least one input and one output, got %d/%d", inputCount, outputCount))
	}
	g := newBareGenome(ids.GenomeID())
	for i := 0; i < inputCount; i++ {
		g.inputs = append(g.inputs, g.addNode(ids.NodeID(), Sigmoid, Layer{Kind: LayerInput}).pos)
	}
	for i := 0; i < outputCount; i++ {
		g.outputs = append(g.outputs, g.addNode(ids.NodeID(), Sigmoid, Layer{Kind: LayerOutput, Depth: 1}).pos)
	}
	g.BuildEvaluationOrder()
	return g
}

// addNode appends a node to the arena without touching the order cache.
func (g *Genome) addNode(id NodeID, act Activation, layer Layer) NodeIndex {
	if _, dup := g.nodePos[id]; dup {
		panic(fmt.Sprintf("duplicate node id %d in genome %d", id, g.ID))
	}
	idx := NodeIndex{arena: g.arena, pos: len(g.nodes)}
	g.nodes = append(g.nodes, NodeGene{Index: idx, ID: id, Activation: act, Layer: layer})
	g.nodePos[id] = idx.pos
	return idx
}

// addConn appends a connection and registers it with its output node.
func (g *Genome) addConn(id ConnID, in, out NodeIndex, weight float64, enabled bool) ConnIndex {
	if _, dup := g.connPos[id]; dup {
		panic(fmt.Sprintf("duplicate connection id %d in genome %d", id, g.ID))
	}
	idx := ConnIndex{arena: g.arena, pos: len(g.conns)}
	g.conns = append(g.conns, ConnectionGene{Index: idx, ID: id, In: in, Out: out, Weight: weight, Enabled: enabled})
	g.connPos[id] = idx.pos
	outNode := &g.nodes[out.pos]
	outNode.Incoming = append(outNode.Incoming, idx)
	return idx
}

// AddConnection links from to to with a fresh connection id. The caller is
// responsible for keeping the network acyclic; the order cache is rebuilt
// lazily and a cycle panics there.
func (g *Genome) AddConnection(ids *IDAllocator, from, to NodeIndex, weight float64) ConnIndex {
	g.checkNode(from)
	g.checkNode(to)
	if g.nodes[to.pos].Layer.Kind == LayerInput {
		panic(fmt.Sprintf("connection into input node %d", g.nodes[to.pos].ID))
	}
	if g.nodes[from.pos].Layer.Kind == LayerOutput {
		panic(fmt.Sprintf("connection out of output node %d", g.nodes[from.pos].ID))
	}
	idx := g.addConn(ids.ConnID(), from, to, weight, true)
	g.invalidate()
	return idx
}

// SetActivation replaces a node's activation function.
func (g *Genome) SetActivation(n NodeIndex, act Activation) {
	g.checkNode(n)
	if !act.Valid() {
		panic(fmt.Sprintf("invalid activation %d", act))
	}
	g.nodes[n.pos].Activation = act
	g.outputsValid = false
}

// SetEnabled changes a connection's enabled flag. Only the evaluation order
// depends on it, layering does not.
func (g *Genome) SetEnabled(c ConnIndex, enabled bool) {
	g.checkConn(c)
	if g.conns[c.pos].Enabled != enabled {
		g.conns[c.pos].Enabled = enabled
		g.invalidate()
	}
}

// SetWeight changes a connection's weight.
func (g *Genome) SetWeight(c ConnIndex, w float64) {
	g.checkConn(c)
	g.conns[c.pos].Weight = w
	g.outputsValid = false
}

func (g *Genome) invalidate() {
	g.orderCurrent = false
	g.outputsValid = false
}

func (g *Genome) checkNode(i NodeIndex) {
	if i.pos < 0 || i.pos >= len(g.nodes) || (verifyInvariants && i.arena != g.arena) {
		panic(fmt.Sprintf("node index %s does not belong to genome %d (arena %d)", i, g.ID, g.arena))
	}
}

func (g *Genome) checkConn(i ConnIndex) {
	if i.pos < 0 || i.pos >= len(g.conns) || (verifyInvariants && i.arena != g.arena) {
		panic(fmt.Sprintf("connection index %s does not belong to genome %d (arena %d)", i, g.ID, g.arena))
	}
}

// Node returns the node at i. The pointer is valid until the next structural change.
func (g *Genome) Node(i NodeIndex) *NodeGene {
	g.checkNode(i)
	return &g.nodes[i.pos]
}

// Connection returns the connection at i.
func (g *Genome) Connection(i ConnIndex) *ConnectionGene {
	g.checkConn(i)
	return &g.conns[i.pos]
}

// Nodes returns the node arena. Callers must not modify it.
func (g *Genome) Nodes() []NodeGene { return g.nodes }

// Connections returns the connection arena. Callers must not modify it.
func (g *Genome) Connections() []ConnectionGene { return g.conns }

// NodeByID resolves a stable node id.
func (g *Genome) NodeByID(id NodeID) (NodeIndex, bool) {
	pos, ok := g.nodePos[id]
	if !ok {
		return NodeIndex{}, false
	}
	return g.nodes[pos].Index, true
}

// ConnectionByID resolves a stable connection id.
func (g *Genome) ConnectionByID(id ConnID) (ConnIndex, bool) {
	pos, ok := g.connPos[id]
	if !ok {
		return ConnIndex{}, false
	}
	return g.conns[pos].Index, true
}

// NumInputs returns the declared input count.
func (g *Genome) NumInputs() int { return len(g.inputs) }

// NumOutputs returns the declared output count.
func (g *Genome) NumOutputs() int { return len(g.outputs) }

// InputIndices returns the input nodes in declaration order.
func (g *Genome) InputIndices() []NodeIndex {
	return g.indices(g.inputs)
}

// OutputIndices returns the output nodes in declaration order.
func (g *Genome) OutputIndices() []NodeIndex {
	return g.indices(g.outputs)
}

func (g *Genome) indices(pos []int) []NodeIndex {
	out := make([]NodeIndex, len(pos))
	for i, p := range pos {
		out[i] = g.nodes[p].Index
	}
	return out
}

// HiddenCount returns the number of non input/output nodes.
func (g *Genome) HiddenCount() int {
	return len(g.nodes) - len(g.inputs) - len(g.outputs)
}

// EnabledCount returns the number of enabled connections.
func (g *Genome) EnabledCount() int {
	n := 0
	for i := range g.conns {
		if g.conns[i].Enabled {
			n++
		}
	}
	return n
}

// SetInputs assigns values to the input nodes in declaration order.
func (g *Genome) SetInputs(values []float64) {
	if len(values) != len(g.inputs) {
		panic(fmt.Sprintf("genome %d expects %d inputs, got %d", g.ID, len(g.inputs), len(values)))
	}
	for i, p := range g.inputs {
		g.nodes[p].Value = values[i]
	}
}

// Evaluate runs one forward pass. The evaluation order must be current.
func (g *Genome) Evaluate() {
	if !g.orderCurrent {
		panic(fmt.Sprintf("evaluating genome %d with a stale evaluation order\n%s", g.ID, g.Dump()))
	}
	for _, p := range g.order {
		n := &g.nodes[p]
		if n.Layer.Kind == LayerInput {
			continue
		}
		sum := 0.0
		for _, ci := range n.Incoming {
			c := &g.conns[ci.pos]
			if c.Enabled {
				sum += g.nodes[c.In.pos].Value * c.Weight
			}
		}
		n.Value = n.Activation.Apply(sum)
	}
	g.outputsValid = true
}

// Outputs returns the output values of the last evaluation, in declaration order.
func (g *Genome) Outputs() []float64 {
	if !g.outputsValid {
		panic(fmt.Sprintf("reading outputs of genome %d before evaluation", g.ID))
	}
	out := make([]float64, len(g.outputs))
	for i, p := range g.outputs {
		out[i] = g.nodes[p].Value
	}
	return out
}

// Activate is SetInputs, Evaluate and Outputs in one call, rebuilding the
// evaluation order first if needed.
func (g *Genome) Activate(inputs []float64) []float64 {
	if !g.orderCurrent {
		g.BuildEvaluationOrder()
	}
	g.SetInputs(inputs)
	g.Evaluate()
	return g.Outputs()
}

// Clone returns a deep copy with the same GenomeID, gene ids and fitness but a new arena.
func (g *Genome) Clone() *Genome {
	c := &Genome{
		ID:           g.ID,
		Fitness:      g.Fitness,
		Evaluated:    g.Evaluated,
		Stamp:        g.Stamp,
		arena:        arenaTags.Add(1),
		nodes:        make([]NodeGene, len(g.nodes)),
		conns:        make([]ConnectionGene, len(g.conns)),
		nodePos:      make(map[NodeID]int, len(g.nodePos)),
		connPos:      make(map[ConnID]int, len(g.connPos)),
		inputs:       append([]int(nil), g.inputs...),
		outputs:      append([]int(nil), g.outputs...),
		order:        append([]int(nil), g.order...),
		orderCurrent: g.orderCurrent,
		outputsValid: g.outputsValid,
	}
	for i, n := range g.nodes {
		n.Index.arena = c.arena
		in := make([]ConnIndex, len(n.Incoming))
		for j, ci := range n.Incoming {
			in[j] = ConnIndex{arena: c.arena, pos: ci.pos}
		}
		n.Incoming = in
		c.nodes[i] = n
		c.nodePos[n.ID] = i
	}
	for i, cg := range g.conns {
		cg.Index.arena = c.arena
		cg.In.arena = c.arena
		cg.Out.arena = c.arena
		c.conns[i] = cg
		c.connPos[cg.ID] = i
	}
	return c
}

// SetFitness stores a freshly computed fitness along with the schedule stamp.
func (g *Genome) SetFitness(f Fitness, stamp Stamp) {
	g.Fitness = f
	g.Stamp = stamp
	g.Evaluated = true
}

// FitnessCurrent reports whether the stored fitness was computed under stamp.
func (g *Genome) FitnessCurrent(stamp Stamp) bool {
	return g.Evaluated && g.Stamp == stamp
}

func (g *Genome) String() string {
	return fmt.Sprintf("Genome(ID: %d, Nodes: %d, Connections: %d (%d enabled), Score: %.4f)",
		g.ID, len(g.nodes), len(g.conns), g.EnabledCount(), g.Fitness.Score)
}
