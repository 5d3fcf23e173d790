package neat

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

// testConfig returns a validated small configuration. edit may adjust it first.
func testConfig(t *testing.T, edit func(c *Config)) *Config {
	t.Helper()
	c := DefaultConfig()
	c.Neat.PopSize = 30
	c.Neat.Seed = 7
	c.Genome.NumInputs = 4
	c.Genome.NumOutputs = 3
	c.Reproduction.Elitism = 2
	c.Stagnation.EventCycle = []string{"none"}
	if edit != nil {
		edit(c)
	}
	require.NoError(t, c.Validate())
	return c
}

// quietConfig disables every random operator so crossover only recombines.
func quietConfig(t *testing.T) *Config {
	return testConfig(t, func(c *Config) {
		g := &c.Genome
		g.ProbMutateActivation = 0
		g.ProbMutateWeight = 0
		g.ProbToggleEnabled = 0
		g.ProbAddConnection = 0
		g.ProbAddNode = 0
		g.ProbRemoveConnection = 0
		g.ProbRemoveNode = 0
		c.Reproduction.WinnerSwapProb = 0
	})
}

// busyConfig makes structural mutations frequent.
func busyConfig(t *testing.T) *Config {
	return testConfig(t, func(c *Config) {
		g := &c.Genome
		g.ProbMutateActivation = 0.3
		g.ProbMutateWeight = 0.8
		g.ProbToggleEnabled = 0.3
		g.ProbAddConnection = 0.6
		g.ProbAddNode = 0.4
		g.ProbRemoveConnection = 0.2
		g.ProbRemoveNode = 0.2
	})
}

func newTestReproduction(c *Config, seed int64) *Reproduction {
	return NewReproduction(c, NewIDAllocator(), rand.New(rand.NewSource(seed)))
}

// requireLayered checks that enabled connections go from a shallower layer to a
// deeper one and that the evaluation order is topological.
func requireLayered(t *testing.T, g *Genome) {
	t.Helper()
	require.NoError(t, g.Verify())
	require.True(t, g.OrderCurrent())

	rank := make(map[int]int)
	for i, n := range g.EvaluationOrder() {
		rank[n.Pos()] = i
	}
	for _, out := range g.OutputIndices() {
		require.Contains(t, rank, out.Pos(), "output missing from evaluation order")
	}
	for _, c := range g.Connections() {
		if !c.Enabled {
			continue
		}
		lin, lout := g.Node(c.In).Layer, g.Node(c.Out).Layer
		if lin.Kind != LayerUnreachable && lout.Kind != LayerUnreachable {
			require.True(t, lin.ComesBefore(lout), "connection %d: %s -> %s", c.ID, lin, lout)
		}
		if ro, ok := rank[c.Out.Pos()]; ok {
			ri, ok := rank[c.In.Pos()]
			require.True(t, ok, "connection %d source not ordered", c.ID)
			require.Less(t, ri, ro, "connection %d out of order", c.ID)
		}
	}
}

// randomInputs returns n values in [-1, 1).
func randomInputs(rng *rand.Rand, n int) []float64 {
	in := make([]float64, n)
	for i := range in {
		in[i] = rng.Float64()*2 - 1
	}
	return in
}
