package neat

// Crossover builds a child from two parents by matching genes on their stable
// ids, then mutates it.
//
// The fitter parent is the winner (ties go to a) unless the roles are swapped
// with probability winner_swap_prob. Only the winner's genes are considered:
// matched genes come from either parent with equal chance, disjoint genes come
// from the winner, and a connection's enabled flag always comes from the winner.
// One hidden node and one connection of the winner may be left out.
func (r *Reproduction) Crossover(a, b *Genome, multiplier float64) *Genome {
	winner, loser := a, b
	if b.Evaluated && (!a.Evaluated || b.Fitness.Score > a.Fitness.Score) {
		winner, loser = b, a
	}
	if r.rng.Float64() < r.Config.Reproduction.WinnerSwapProb {
		winner, loser = loser, winner
	}

	gc := &r.Config.Genome
	var dropNode NodeID
	hasDropNode := false
	if r.roll(gc.ProbRemoveNode, multiplier) {
		var hidden []NodeID
		for i := range winner.nodes {
			if k := winner.nodes[i].Layer.Kind; k == LayerHidden || k == LayerUnreachable {
				hidden = append(hidden, winner.nodes[i].ID)
			}
		}
		if len(hidden) > 0 {
			dropNode, hasDropNode = hidden[r.rng.Intn(len(hidden))], true
		}
	}
	var dropConn ConnID
	hasDropConn := false
	if r.roll(gc.ProbRemoveConnection, multiplier) && len(winner.conns) > 0 {
		dropConn, hasDropConn = winner.conns[r.rng.Intn(len(winner.conns))].ID, true
	}

	child := newBareGenome(r.IDs.GenomeID())
	for i := range winner.nodes {
		wn := &winner.nodes[i]
		if hasDropNode && wn.ID == dropNode {
			continue
		}
		src := wn
		if lp, ok := loser.nodePos[wn.ID]; ok && r.rng.Float64() < 0.5 {
			src = &loser.nodes[lp]
		}
		kind := wn.Layer.Kind
		if kind == LayerUnreachable {
			kind = LayerHidden
		}
		child.addNode(wn.ID, src.Activation, Layer{Kind: kind, Depth: wn.Layer.Depth})
	}
	for _, p := range winner.inputs {
		child.inputs = append(child.inputs, child.nodePos[winner.nodes[p].ID])
	}
	for _, p := range winner.outputs {
		child.outputs = append(child.outputs, child.nodePos[winner.nodes[p].ID])
	}

	for i := range winner.conns {
		wc := &winner.conns[i]
		if hasDropConn && wc.ID == dropConn {
			continue
		}
		inID, outID := winner.nodes[wc.In.pos].ID, winner.nodes[wc.Out.pos].ID
		if hasDropNode && (inID == dropNode || outID == dropNode) {
			continue
		}
		src, srcGenome := wc, winner
		if lp, ok := loser.connPos[wc.ID]; ok && r.rng.Float64() < 0.5 {
			src, srcGenome = &loser.conns[lp], loser
		}
		in := child.nodes[child.nodePos[srcGenome.nodes[src.In.pos].ID]].Index
		out := child.nodes[child.nodePos[srcGenome.nodes[src.Out.pos].ID]].Index
		child.addConn(wc.ID, in, out, src.Weight, wc.Enabled)
	}

	child.BuildEvaluationOrder()
	child.mustVerify("crossover")
	r.Mutate(child, multiplier)
	return child
}
