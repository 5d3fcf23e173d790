package neat

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMutationKeepsGenomesLayered(t *testing.T) {
	r := newTestReproduction(busyConfig(t), 11)

	for trial := 0; trial < 20; trial++ {
		g := r.NewGenome()
		for i := 0; i < 150; i++ {
			r.Mutate(g, 1)
			requireLayered(t, g)
		}
	}
}

func TestMutationMultiplierRaisesPressure(t *testing.T) {
	c := testConfig(t, func(c *Config) {
		c.Genome.ProbMutateActivation = 0
		c.Genome.ProbMutateWeight = 0
		c.Genome.ProbToggleEnabled = 0
		c.Genome.ProbAddConnection = 0.2
		c.Genome.ProbAddNode = 0
	})
	r := newTestReproduction(c, 3)

	grown := func(m float64) int {
		total := 0
		for i := 0; i < 200; i++ {
			g := r.NewGenome()
			r.Mutate(g, m)
			total += len(g.Connections())
		}
		return total
	}
	// With a multiplier of 5 every genome rolls the operator.
	assert.Equal(t, 200, grown(5))
	assert.Less(t, grown(1), 120)
}

func TestAddRandomConnectionOrientsHiddenPairs(t *testing.T) {
	c := testConfig(t, nil)
	r := newTestReproduction(c, 5)
	g := r.NewGenome()
	in, out := g.InputIndices(), g.OutputIndices()
	first := g.AddConnection(r.IDs, in[0], out[0], 1)
	g.BuildEvaluationOrder()
	r.SplitConnection(g, first)
	g.BuildEvaluationOrder()

	added := 0
	for i := 0; i < 200; i++ {
		if r.AddRandomConnection(g) {
			added++
			g.BuildEvaluationOrder()
			requireLayered(t, g)
		}
	}
	assert.Positive(t, added)
	for _, conn := range g.Connections() {
		assert.NotEqual(t, LayerInput, g.Node(conn.Out).Layer.Kind)
		assert.NotEqual(t, LayerOutput, g.Node(conn.In).Layer.Kind)
	}
}

func TestAddRandomConnectionSkipsUnreachable(t *testing.T) {
	ids := NewIDAllocator()
	c := testConfig(t, func(c *Config) {
		c.Genome.NumInputs = 1
		c.Genome.NumOutputs = 1
	})
	r := NewReproduction(c, ids, rand.New(rand.NewSource(1)))

	g := NewGenome(ids, 1, 1)
	orphan := g.addNode(ids.NodeID(), Identity, Layer{Kind: LayerHidden})
	g.addConn(ids.ConnID(), orphan, g.OutputIndices()[0], 1, true)
	g.BuildEvaluationOrder()
	require.Equal(t, LayerUnreachable, g.Node(orphan).Layer.Kind)

	for i := 0; i < 50; i++ {
		if r.AddRandomConnection(g) {
			g.BuildEvaluationOrder()
		}
	}
	for _, conn := range g.Connections() {
		if conn.Out == orphan || (conn.In == orphan && conn.Out != g.OutputIndices()[0]) {
			t.Fatalf("connection %d touches the unreachable node", conn.ID)
		}
	}
}

func TestSplitConnectionIsNearlyNeutral(t *testing.T) {
	for _, act := range []Activation{Identity, ReLU} {
		t.Run(act.String(), func(t *testing.T) {
			ids := NewIDAllocator()
			r := NewReproduction(testConfig(t, nil), ids, rand.New(rand.NewSource(2)))
			g := NewGenome(ids, 2, 1)
			in, out := g.InputIndices(), g.OutputIndices()[0]
			g.SetActivation(out, act)
			c := g.AddConnection(ids, in[0], out, 0.7)
			g.AddConnection(ids, in[1], out, 0.4)
			g.BuildEvaluationOrder()

			inputs := []float64{0.5, 0.9}
			before := g.Activate(inputs)

			hidden := r.SplitConnection(g, c)
			assert.False(t, g.Connection(c).Enabled)
			assert.Equal(t, act, g.Node(hidden).Activation)
			g.BuildEvaluationOrder()
			requireLayered(t, g)
			after := g.Activate(inputs)

			assert.InDelta(t, before[0], after[0], 1e-3)
		})
	}
}

func TestMutationPreservesIDConsistency(t *testing.T) {
	c := busyConfig(t)
	r := newTestReproduction(c, 21)
	genomes := r.CreateNewPopulation(c.Neat.PopSize)
	for gen := 0; gen < 10; gen++ {
		for i, g := range genomes {
			g.SetFitness(Fitness{Score: float64(i % 7)}, Stamp{})
		}
		genomes = r.Reproduce(genomes, c.Neat.PopSize, 1)
	}

	// A connection id names the same link everywhere it appears.
	type link struct{ in, out NodeID }
	links := make(map[ConnID]link)
	genomeIDs := make(map[GenomeID]bool)
	for _, g := range genomes {
		require.NoError(t, g.Verify())
		assert.False(t, genomeIDs[g.ID], "genome id %d repeated", g.ID)
		genomeIDs[g.ID] = true
		for _, conn := range g.Connections() {
			l := link{g.Node(conn.In).ID, g.Node(conn.Out).ID}
			if prev, ok := links[conn.ID]; ok {
				assert.Equal(t, prev, l, "connection %d", conn.ID)
			}
			links[conn.ID] = l
		}
	}
}
