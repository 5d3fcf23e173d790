package nn

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"

	"github.com/baldhumanity/neatsnake/neat"
)

// neuralNode is a node prepared for activation.
type neuralNode struct {
	Pos        int
	Activation neat.Activation
	Inputs     []link // enabled incoming links, in the genome's summation order
}

type link struct {
	From   int
	Weight float64
}

// FeedForwardNetwork is an immutable phenotype compiled from a genome.
// It produces the same values as Genome.Evaluate, but owns its own buffers and
// does not touch the genome, so one genome can back several networks at once.
type FeedForwardNetwork struct {
	InputPos      []int
	OutputPos     []int
	NodeEvalOrder []int // topologically sorted non-input nodes
	Nodes         map[int]neuralNode

	values []float64
}

// CreateFeedForwardNetwork builds a runnable feed-forward network from a genome.
// The activation order comes from a stabilised topological sort of the enabled
// connections; a cycle is reported as an error.
func CreateFeedForwardNetwork(g *neat.Genome) (*FeedForwardNetwork, error) {
	genes := g.Nodes()
	conns := g.Connections()

	dg := simple.NewDirectedGraph()
	for i := range genes {
		dg.AddNode(simple.Node(int64(i)))
	}
	for i := range conns {
		c := &conns[i]
		if !c.Enabled {
			continue
		}
		from, to := int64(c.In.Pos()), int64(c.Out.Pos())
		if from == to {
			return nil, fmt.Errorf("genome %d: self connection on node %d", g.ID, genes[from].ID)
		}
		dg.SetEdge(dg.NewEdge(dg.Node(from), dg.Node(to)))
	}

	sorted, err := topo.SortStabilized(dg, func(nodes []graph.Node) {
		sort.Slice(nodes, func(i, j int) bool { return nodes[i].ID() < nodes[j].ID() })
	})
	if err != nil {
		return nil, fmt.Errorf("genome %d: failed topological sort: %w", g.ID, err)
	}

	net := &FeedForwardNetwork{
		Nodes:  make(map[int]neuralNode, len(genes)),
		values: make([]float64, len(genes)),
	}
	for _, idx := range g.InputIndices() {
		net.InputPos = append(net.InputPos, idx.Pos())
	}
	for _, idx := range g.OutputIndices() {
		net.OutputPos = append(net.OutputPos, idx.Pos())
	}

	for _, n := range sorted {
		pos := int(n.ID())
		gene := &genes[pos]
		if gene.Layer.Kind == neat.LayerInput {
			continue
		}
		node := neuralNode{Pos: pos, Activation: gene.Activation}
		for _, ci := range gene.Incoming {
			c := &conns[ci.Pos()]
			if c.Enabled {
				node.Inputs = append(node.Inputs, link{From: c.In.Pos(), Weight: c.Weight})
			}
		}
		net.Nodes[pos] = node
		net.NodeEvalOrder = append(net.NodeEvalOrder, pos)
	}
	return net, nil
}

// Activate computes the network's output for a given slice of input values.
// The input slice must match the number of input nodes.
func (net *FeedForwardNetwork) Activate(inputs []float64) ([]float64, error) {
	if len(inputs) != len(net.InputPos) {
		return nil, fmt.Errorf("mismatch between input count (%d) and network input nodes (%d)", len(inputs), len(net.InputPos))
	}
	clear(net.values)
	for i, p := range net.InputPos {
		net.values[p] = inputs[i]
	}

	for _, p := range net.NodeEvalOrder {
		node := net.Nodes[p]
		sum := 0.0
		for _, in := range node.Inputs {
			sum += net.values[in.From] * in.Weight
		}
		net.values[p] = node.Activation.Apply(sum)
	}

	outputs := make([]float64, len(net.OutputPos))
	for i, p := range net.OutputPos {
		outputs[i] = net.values[p]
	}
	return outputs, nil
}
