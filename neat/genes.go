package neat

import (
	"fmt"
	"sync/atomic"
)

// arenaTags gives every Genome instance its own tag. Clones share a GenomeID but
// never an arena, so indices are tagged with this value instead.
var arenaTags atomic.Uint64

// NodeIndex is the position of a node inside one genome's arena.
// It is only meaningful for the genome that produced it.
type NodeIndex struct {
	arena uint64
	pos   int
}

// Pos returns the raw arena position.
func (i NodeIndex) Pos() int { return i.pos }

func (i NodeIndex) String() string { return fmt.Sprintf("n%d@%d", i.pos, i.arena) }

// ConnIndex is the position of a connection inside one genome's arena.
type ConnIndex struct {
	arena uint64
	pos   int
}

// Pos returns the raw arena position.
func (i ConnIndex) Pos() int { return i.pos }

func (i ConnIndex) String() string { return fmt.Sprintf("c%d@%d", i.pos, i.arena) }

// LayerKind classifies a node's role in the network.
type LayerKind uint8

const (
	LayerInput LayerKind = iota
	LayerHidden
	LayerOutput
	LayerUnreachable
)

func (k LayerKind) String() string {
	switch k {
	case LayerInput:
		return "input"
	case LayerHidden:
		return "hidden"
	case LayerOutput:
		return "output"
	case LayerUnreachable:
		return "unreachable"
	}
	return fmt.Sprintf("LayerKind(%d)", uint8(k))
}

// Layer is a node's classification plus its topological depth.
// Inputs sit at depth 0 and outputs at the deepest level of the genome.
// Unreachable nodes still carry the depth computed for them.
type Layer struct {
	Kind  LayerKind
	Depth int
}

// ComesBefore reports whether l strictly precedes other. Unreachable layers never
// precede and are never preceded.
func (l Layer) ComesBefore(other Layer) bool {
	if l.Kind == LayerUnreachable || other.Kind == LayerUnreachable {
		return false
	}
	return l.Depth < other.Depth
}

// SameHidden reports whether both layers are hidden at the same depth.
func (l Layer) SameHidden(other Layer) bool {
	return l.Kind == LayerHidden && other.Kind == LayerHidden && l.Depth == other.Depth
}

func (l Layer) String() string {
	if l.Kind == LayerHidden {
		return fmt.Sprintf("hidden(%d)", l.Depth)
	}
	return l.Kind.String()
}

// NodeGene represents a neuron of the genome.
type NodeGene struct {
	Index      NodeIndex
	ID         NodeID
	Activation Activation
	Layer      Layer
	Incoming   []ConnIndex // in the order connections were added
	Value      float64     // valid only after an evaluation pass
}

func (n *NodeGene) String() string {
	return fmt.Sprintf("NodeGene(ID: %d, Layer: %s, Activation: %s, Incoming: %d)",
		n.ID, n.Layer, n.Activation, len(n.Incoming))
}

// ConnectionGene represents a weighted edge between two nodes of the same genome.
type ConnectionGene struct {
	Index   ConnIndex
	ID      ConnID
	In      NodeIndex
	Out     NodeIndex
	Weight  float64
	Enabled bool
}

func (c *ConnectionGene) String() string {
	return fmt.Sprintf("ConnGene(ID: %d, %s->%s, Weight: %.3f, Enabled: %t)",
		c.ID, c.In, c.Out, c.Weight, c.Enabled)
}
