package neat

import "sync/atomic"

// NodeID is the stable identity of a node gene. It survives cloning and crossover.
type NodeID uint64

// ConnID is the stable identity of a connection gene.
type ConnID uint64

// GenomeID identifies a genome. Clones keep it, crossover children get a new one.
type GenomeID uint64

// IDAllocator hands out identifiers that are unique for the lifetime of the process.
// Node, connection and genome ids share one counter. Safe for concurrent use.
type IDAllocator struct {
	last atomic.Uint64
}

// NewIDAllocator creates an allocator whose first id is 1.
func NewIDAllocator() *IDAllocator {
	return &IDAllocator{}
}

func (a *IDAllocator) next() uint64 {
	return a.last.Add(1)
}

// NodeID returns a fresh node id.
func (a *IDAllocator) NodeID() NodeID { return NodeID(a.next()) }

// ConnID returns a fresh connection id.
func (a *IDAllocator) ConnID() ConnID { return ConnID(a.next()) }

// GenomeID returns a fresh genome id.
func (a *IDAllocator) GenomeID() GenomeID { return GenomeID(a.next()) }

// Last returns the most recently issued id (0 if none).
func (a *IDAllocator) Last() uint64 {
	return a.last.Load()
}

// Observe makes sure ids handed out later are greater than id.
// Used after restoring genomes that were created by another process.
func (a *IDAllocator) Observe(id uint64) {
	for {
		cur := a.last.Load()
		if id <= cur || a.last.CompareAndSwap(cur, id) {
			return
		}
	}
}

// ObserveGenome bumps the allocator past every id found in g.
func (a *IDAllocator) ObserveGenome(g *Genome) {
	a.Observe(uint64(g.ID))
	for i := range g.nodes {
		a.Observe(uint64(g.nodes[i].ID))
	}
	for i := range g.conns {
		a.Observe(uint64(g.conns[i].ID))
	}
}
