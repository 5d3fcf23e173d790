package neat

import "fmt"

const (
	white = iota // not visited
	gray         // on the stack
	black        // finished
)

type frame struct {
	pos  int
	next int // next incoming connection to look at
}

// BuildEvaluationOrder recomputes node layers and the evaluation order.
// Both walks use an explicit stack; running into a node that is still on the
// stack, or growing the stack past twice the node count, means the genome has a
// cycle and panics with a dump of the genome.
func (g *Genome) BuildEvaluationOrder() {
	g.assignLayers()
	g.order = g.traversalOrder()
	g.orderCurrent = true
	g.outputsValid = false
}

// OrderCurrent reports whether the cached evaluation order matches the structure.
func (g *Genome) OrderCurrent() bool { return g.orderCurrent }

// EvaluationOrder returns the node visit sequence. It panics if the order is stale.
func (g *Genome) EvaluationOrder() []NodeIndex {
	if !g.orderCurrent {
		panic(fmt.Sprintf("evaluation order of genome %d is stale", g.ID))
	}
	return g.indices(g.order)
}

// traversalOrder runs a post-order DFS from every output over enabled connections.
func (g *Genome) traversalOrder() []int {
	state := make([]uint8, len(g.nodes))
	order := make([]int, 0, len(g.nodes))
	limit := 2 * len(g.nodes)
	stack := make([]frame, 0, len(g.nodes))

	for _, root := range g.outputs {
		if state[root] != white {
			continue
		}
		stack = append(stack, frame{pos: root})
		state[root] = gray
		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			n := &g.nodes[top.pos]
			if top.next < len(n.Incoming) {
				c := &g.conns[n.Incoming[top.next].pos]
				top.next++
				if !c.Enabled {
					continue
				}
				switch state[c.In.pos] {
				case gray:
					g.cyclePanic("evaluation order", c.In.pos)
				case white:
					if len(stack) >= limit {
						g.cyclePanic("evaluation order depth guard", c.In.pos)
					}
					state[c.In.pos] = gray
					stack = append(stack, frame{pos: c.In.pos})
				}
				continue
			}
			state[top.pos] = black
			order = append(order, top.pos)
			stack = stack[:len(stack)-1]
		}
	}
	return order
}

// assignLayers computes depths over all connections, enabled or not, then
// classifies nodes. Inputs sit at 0, outputs share the deepest level and hidden
// nodes without a path from any input become Unreachable.
func (g *Genome) assignLayers() {
	depth := g.rawDepths()
	reachable := g.reachableFromInputs()

	outDepth := 1
	for _, p := range g.outputs {
		outDepth = max(outDepth, depth[p])
	}
	isIO := make([]bool, len(g.nodes))
	for _, p := range g.inputs {
		isIO[p] = true
	}
	for _, p := range g.outputs {
		isIO[p] = true
	}
	for p := range g.nodes {
		if !isIO[p] {
			outDepth = max(outDepth, depth[p]+1)
		}
	}

	for p := range g.nodes {
		n := &g.nodes[p]
		switch {
		case n.Layer.Kind == LayerInput:
			n.Layer = Layer{Kind: LayerInput}
		case n.Layer.Kind == LayerOutput:
			n.Layer = Layer{Kind: LayerOutput, Depth: outDepth}
		case reachable[p]:
			n.Layer = Layer{Kind: LayerHidden, Depth: depth[p]}
		default:
			n.Layer = Layer{Kind: LayerUnreachable, Depth: depth[p]}
		}
	}
}

// rawDepths returns 0 for nodes without incoming connections and
// 1 + max(predecessor depth) otherwise.
func (g *Genome) rawDepths() []int {
	depth := make([]int, len(g.nodes))
	state := make([]uint8, len(g.nodes))
	limit := 2 * len(g.nodes)
	stack := make([]frame, 0, len(g.nodes))

	for root := range g.nodes {
		if state[root] != white {
			continue
		}
		stack = append(stack, frame{pos: root})
		state[root] = gray
		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			n := &g.nodes[top.pos]
			if top.next < len(n.Incoming) {
				in := g.conns[n.Incoming[top.next].pos].In.pos
				top.next++
				switch state[in] {
				case gray:
					g.cyclePanic("layer assignment", in)
				case white:
					if len(stack) >= limit {
						g.cyclePanic("layer assignment depth guard", in)
					}
					state[in] = gray
					stack = append(stack, frame{pos: in})
				}
				continue
			}
			d := 0
			for _, ci := range n.Incoming {
				d = max(d, depth[g.conns[ci.pos].In.pos]+1)
			}
			depth[top.pos] = d
			state[top.pos] = black
			stack = stack[:len(stack)-1]
		}
	}
	return depth
}

// reachableFromInputs marks every node with a directed path from an input.
func (g *Genome) reachableFromInputs() []bool {
	outgoing := make([][]int, len(g.nodes))
	for i := range g.conns {
		c := &g.conns[i]
		outgoing[c.In.pos] = append(outgoing[c.In.pos], c.Out.pos)
	}
	seen := make([]bool, len(g.nodes))
	queue := make([]int, 0, len(g.nodes))
	for _, p := range g.inputs {
		seen[p] = true
		queue = append(queue, p)
	}
	for len(queue) > 0 {
		p := queue[0]
		queue = queue[1:]
		for _, q := range outgoing[p] {
			if !seen[q] {
				seen[q] = true
				queue = append(queue, q)
			}
		}
	}
	return seen
}

func (g *Genome) cyclePanic(where string, pos int) {
	panic(fmt.Sprintf("cycle detected in genome %d during %s at node %d\n%s",
		g.ID, where, g.nodes[pos].ID, g.Dump()))
}
