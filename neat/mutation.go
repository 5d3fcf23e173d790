package neat

// Mutate perturbs g in place. Every operator is rolled independently with its
// configured probability scaled by multiplier and capped at 1. The evaluation
// order is rebuilt afterwards.
func (r *Reproduction) Mutate(g *Genome, multiplier float64) {
	gc := &r.Config.Genome
	if !g.orderCurrent {
		g.BuildEvaluationOrder()
	}

	if r.roll(gc.ProbMutateActivation, multiplier) {
		r.mutateActivation(g)
	}
	if r.roll(gc.ProbMutateWeight, multiplier) {
		r.mutateWeight(g)
	}
	if r.roll(gc.ProbToggleEnabled, multiplier) {
		r.toggleEnabled(g)
	}
	// Layers may be stale after this point: a same-depth hidden pair can now be
	// linked. The rebuild below settles it.
	if r.roll(gc.ProbAddConnection, multiplier) {
		r.AddRandomConnection(g)
	}
	if r.roll(gc.ProbAddNode, multiplier) && len(g.conns) > 0 {
		r.SplitConnection(g, g.conns[r.rng.Intn(len(g.conns))].Index)
	}

	g.BuildEvaluationOrder()
	g.mustVerify("mutation")
}

func (r *Reproduction) roll(p, multiplier float64) bool {
	return r.rng.Float64() < scaledProb(p, multiplier)
}

// mutateActivation picks any node; inputs are left untouched.
func (r *Reproduction) mutateActivation(g *Genome) {
	n := &g.nodes[r.rng.Intn(len(g.nodes))]
	if n.Layer.Kind == LayerInput {
		return
	}
	g.outputsValid = false
	opts := r.Config.Genome.Activations
	if len(opts) == 0 {
		n.Activation = RandomActivation(r.rng)
		return
	}
	n.Activation = opts[r.rng.Intn(len(opts))]
}

func (r *Reproduction) mutateWeight(g *Genome) {
	if len(g.conns) == 0 {
		return
	}
	g.outputsValid = false
	c := &g.conns[r.rng.Intn(len(g.conns))]
	c.Weight += (r.rng.Float64()*2 - 1) * r.Config.Genome.MaxWeightChangeMagnitude
}

func (r *Reproduction) toggleEnabled(g *Genome) {
	if len(g.conns) == 0 {
		return
	}
	c := &g.conns[r.rng.Intn(len(g.conns))]
	c.Enabled = !c.Enabled
	g.invalidate()
}

// AddRandomConnection links a random Input/Hidden node to a random Hidden/Output
// node with a weight drawn from U(-1, 1). Hidden pairs are oriented so the
// shallower node feeds the deeper one; same-depth hidden pairs are allowed.
// Unreachable nodes are never chosen. It reports whether a connection was added.
func (r *Reproduction) AddRandomConnection(g *Genome) bool {
	var sources, targets []int
	for p := range g.nodes {
		switch g.nodes[p].Layer.Kind {
		case LayerInput:
			sources = append(sources, p)
		case LayerHidden:
			sources = append(sources, p)
			targets = append(targets, p)
		case LayerOutput:
			targets = append(targets, p)
		}
	}
	if len(sources) == 0 || len(targets) == 0 {
		return false
	}

	for attempt := 0; attempt < r.Config.Genome.AddConnectionAttempts; attempt++ {
		from := sources[r.rng.Intn(len(sources))]
		to := targets[r.rng.Intn(len(targets))]
		if from == to {
			continue
		}
		lf, lt := g.nodes[from].Layer, g.nodes[to].Layer
		if lf.Kind == LayerHidden && lt.Kind == LayerHidden && lt.Depth < lf.Depth {
			from, to = to, from
			lf, lt = lt, lf
		}
		if !lf.ComesBefore(lt) && !lf.SameHidden(lt) {
			continue
		}
		g.addConn(r.IDs.ConnID(), g.nodes[from].Index, g.nodes[to].Index, r.rng.Float64()*2-1, true)
		g.invalidate()
		return true
	}
	return false
}

// SplitConnection disables c and routes it through a new hidden node that uses
// the target's activation. The incoming half keeps the old weight and the
// outgoing half gets the activation's neutral value, so the network output is
// nearly unchanged at the moment of the split.
func (r *Reproduction) SplitConnection(g *Genome, c ConnIndex) NodeIndex {
	g.checkConn(c)
	old := g.conns[c.pos]
	g.conns[c.pos].Enabled = false

	act := g.nodes[old.Out.pos].Activation
	depth := g.nodes[old.In.pos].Layer.Depth + 1
	n := g.addNode(r.IDs.NodeID(), act, Layer{Kind: LayerHidden, Depth: depth})
	g.addConn(r.IDs.ConnID(), old.In, n, old.Weight, true)
	g.addConn(r.IDs.ConnID(), n, old.Out, act.NeutralValue(), true)
	g.invalidate()
	return n
}
