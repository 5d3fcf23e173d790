package neat

import (
	"errors"
	"fmt"
)

// Verify checks the structural invariants of the genome:
// indices resolve inside this genome, gene ids are unique, every connection is
// listed exactly once in its output node's incoming list, and, while the order
// is current, connections run from earlier layers to later ones and the order
// is topological over enabled connections.
func (g *Genome) Verify() error {
	var errs []error
	fail := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf(format, args...))
	}

	if len(g.nodePos) != len(g.nodes) {
		fail("node id map has %d entries for %d nodes (duplicate node id?)", len(g.nodePos), len(g.nodes))
	}
	if len(g.connPos) != len(g.conns) {
		fail("connection id map has %d entries for %d connections (duplicate connection id?)", len(g.connPos), len(g.conns))
	}

	for p := range g.nodes {
		n := &g.nodes[p]
		if n.Index.arena != g.arena || n.Index.pos != p {
			fail("node %d carries foreign index %s", n.ID, n.Index)
		}
		if pos, ok := g.nodePos[n.ID]; !ok || pos != p {
			fail("node %d not registered at position %d", n.ID, p)
		}
		if !n.Activation.Valid() {
			fail("node %d has invalid activation %d", n.ID, n.Activation)
		}
	}

	listed := make([]int, len(g.conns))
	for p := range g.nodes {
		n := &g.nodes[p]
		for _, ci := range n.Incoming {
			if ci.arena != g.arena || ci.pos < 0 || ci.pos >= len(g.conns) {
				fail("node %d lists foreign connection %s", n.ID, ci)
				continue
			}
			if g.conns[ci.pos].Out.pos != p {
				fail("node %d lists connection %d which ends at another node", n.ID, g.conns[ci.pos].ID)
			}
			listed[ci.pos]++
		}
	}

	for p := range g.conns {
		c := &g.conns[p]
		if c.Index.arena != g.arena || c.Index.pos != p {
			fail("connection %d carries foreign index %s", c.ID, c.Index)
		}
		if pos, ok := g.connPos[c.ID]; !ok || pos != p {
			fail("connection %d not registered at position %d", c.ID, p)
		}
		if c.In.arena != g.arena || c.In.pos < 0 || c.In.pos >= len(g.nodes) ||
			c.Out.arena != g.arena || c.Out.pos < 0 || c.Out.pos >= len(g.nodes) {
			fail("connection %d references a foreign node (%s -> %s)", c.ID, c.In, c.Out)
			continue
		}
		if listed[p] != 1 {
			fail("connection %d appears %d times in incoming lists", c.ID, listed[p])
		}
		if !g.orderCurrent {
			continue
		}
		lin, lout := g.nodes[c.In.pos].Layer, g.nodes[c.Out.pos].Layer
		if lin.Kind == LayerUnreachable || lout.Kind == LayerUnreachable {
			continue
		}
		if !lin.ComesBefore(lout) && !(!c.Enabled && lin.SameHidden(lout)) {
			fail("connection %d runs from %s to %s", c.ID, lin, lout)
		}
	}

	if g.orderCurrent {
		rank := make([]int, len(g.nodes))
		for i := range rank {
			rank[i] = -1
		}
		for i, p := range g.order {
			rank[p] = i
		}
		for p := range g.conns {
			c := &g.conns[p]
			if !c.Enabled || c.In.pos >= len(g.nodes) || c.Out.pos >= len(g.nodes) || rank[c.Out.pos] < 0 {
				continue
			}
			if rank[c.In.pos] < 0 || rank[c.In.pos] >= rank[c.Out.pos] {
				fail("enabled connection %d is not in topological order", c.ID)
			}
		}
	}

	return errors.Join(errs...)
}

// mustVerify panics with a genome dump when invariant checking is enabled and fails.
func (g *Genome) mustVerify(after string) {
	if !verifyInvariants {
		return
	}
	if err := g.Verify(); err != nil {
		panic(fmt.Sprintf("genome %d violates invariants after %s: %v\n%s", g.ID, after, err, g.Dump()))
	}
}
