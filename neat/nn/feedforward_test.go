package nn

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baldhumanity/neatsnake/neat"
)

func evolve(t *testing.T, seed int64, steps int) *neat.Genome {
	t.Helper()
	c := neat.DefaultConfig()
	c.Genome.NumInputs = 5
	c.Genome.NumOutputs = 3
	c.Genome.ProbAddConnection = 0.6
	c.Genome.ProbAddNode = 0.3
	c.Genome.ProbToggleEnabled = 0.2
	c.Genome.ProbMutateWeight = 0.8
	c.Genome.ProbMutateActivation = 0.3
	require.NoError(t, c.Validate())

	r := neat.NewReproduction(c, neat.NewIDAllocator(), rand.New(rand.NewSource(seed)))
	g := r.NewGenome()
	for i := 0; i < steps; i++ {
		r.Mutate(g, 1)
	}
	return g
}

func TestNetworkMatchesGenomeEvaluation(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for seed := int64(1); seed <= 15; seed++ {
		g := evolve(t, seed, 100)
		net, err := CreateFeedForwardNetwork(g)
		require.NoError(t, err)

		for i := 0; i < 10; i++ {
			in := make([]float64, g.NumInputs())
			for j := range in {
				in[j] = rng.Float64()*4 - 2
			}
			got, err := net.Activate(in)
			require.NoError(t, err)
			assert.Equal(t, g.Activate(in), got)
		}
	}
}

func TestNetworkSingleConnection(t *testing.T) {
	ids := neat.NewIDAllocator()
	g := neat.NewGenome(ids, 2, 1)
	g.AddConnection(ids, g.InputIndices()[0], g.OutputIndices()[0], 1.0)
	g.BuildEvaluationOrder()

	net, err := CreateFeedForwardNetwork(g)
	require.NoError(t, err)
	out, err := net.Activate([]float64{1, 0})
	require.NoError(t, err)
	assert.InDelta(t, 0.7311, out[0], 1e-4)
}

func TestNetworkRejectsWrongInputCount(t *testing.T) {
	g := neat.NewGenome(neat.NewIDAllocator(), 3, 1)
	net, err := CreateFeedForwardNetwork(g)
	require.NoError(t, err)
	_, err = net.Activate([]float64{1})
	assert.Error(t, err)
}
