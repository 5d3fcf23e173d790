package neat

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// parentPair returns two genomes with the same genes but different enabled
// flags and weights. a has the higher score.
func parentPair(t *testing.T, r *Reproduction) (a, b *Genome) {
	t.Helper()
	a = NewGenome(r.IDs, 3, 2)
	in, out := a.InputIndices(), a.OutputIndices()
	split := a.AddConnection(r.IDs, in[0], out[0], 0.5)
	a.AddConnection(r.IDs, in[1], out[0], -0.3)
	a.AddConnection(r.IDs, in[2], out[1], 0.9)
	a.AddConnection(r.IDs, in[0], out[1], 0.1)
	a.BuildEvaluationOrder()
	r.SplitConnection(a, split)
	a.BuildEvaluationOrder()

	b = a.Clone()
	b.ID = r.IDs.GenomeID()
	for i, c := range b.Connections() {
		if i%2 == 0 {
			b.SetEnabled(c.Index, !c.Enabled)
		}
		b.SetWeight(c.Index, c.Weight+1)
	}
	b.BuildEvaluationOrder()
	require.NoError(t, b.Verify())

	a.SetFitness(Fitness{Score: 10}, Stamp{})
	b.SetFitness(Fitness{Score: 5}, Stamp{})
	return a, b
}

func TestCrossoverEnabledFlagComesFromWinner(t *testing.T) {
	r := newTestReproduction(quietConfig(t), 4)
	a, b := parentPair(t, r)

	for _, order := range [][2]*Genome{{a, b}, {b, a}} {
		for trial := 0; trial < 1000; trial++ {
			child := r.Crossover(order[0], order[1], 1)
			require.Len(t, child.Connections(), len(a.Connections()))
			for _, c := range child.Connections() {
				wi, ok := a.ConnectionByID(c.ID)
				require.True(t, ok)
				assert.Equal(t, a.Connection(wi).Enabled, c.Enabled, "connection %d", c.ID)
			}
		}
	}
}

func TestCrossoverUnevaluatedParentNeverWins(t *testing.T) {
	r := newTestReproduction(quietConfig(t), 8)
	a, b := parentPair(t, r)
	a.Evaluated = false

	child := r.Crossover(a, b, 1)
	for _, c := range child.Connections() {
		bi, _ := b.ConnectionByID(c.ID)
		assert.Equal(t, b.Connection(bi).Enabled, c.Enabled)
	}
}

func TestCrossoverInheritsWeightsEvenly(t *testing.T) {
	ids := NewIDAllocator()
	r := NewReproduction(quietConfig(t), ids, rand.New(rand.NewSource(99)))

	record := func(id GenomeID, w float64) GenomeRecord {
		return GenomeRecord{
			ID:      id,
			Inputs:  []NodeID{1, 2},
			Outputs: []NodeID{3},
			Nodes: []NodeRecord{
				{ID: 1, Activation: "sigmoid"},
				{ID: 2, Activation: "sigmoid"},
				{ID: 3, Activation: "sigmoid"},
			},
			Connections: []ConnectionRecord{{ID: 10, In: 1, Out: 3, Weight: w, Enabled: true}},
		}
	}
	a, err := FromRecord(record(100, 0.2))
	require.NoError(t, err)
	b, err := FromRecord(record(101, 0.8))
	require.NoError(t, err)
	ids.ObserveGenome(b)
	a.SetFitness(Fitness{Score: 1}, Stamp{})
	b.SetFitness(Fitness{Score: 1}, Stamp{})

	const trials = 2000
	fromA := 0
	for i := 0; i < trials; i++ {
		child := r.Crossover(a, b, 1)
		ci, ok := child.ConnectionByID(10)
		require.True(t, ok)
		w := child.Connection(ci).Weight
		require.Contains(t, []float64{0.2, 0.8}, w)
		if w == 0.2 {
			fromA++
		}
	}
	assert.InDelta(t, 0.5, float64(fromA)/trials, 0.05)
}

func TestCrossoverChildGetsFreshID(t *testing.T) {
	r := newTestReproduction(quietConfig(t), 6)
	a, b := parentPair(t, r)

	child := r.Crossover(a, b, 1)
	assert.NotEqual(t, a.ID, child.ID)
	assert.NotEqual(t, b.ID, child.ID)
	assert.False(t, child.Evaluated)
	requireLayered(t, child)
}

func TestCrossoverRemovalOperators(t *testing.T) {
	c := quietConfig(t)
	c.Genome.ProbRemoveNode = 1
	c.Genome.ProbRemoveConnection = 1
	r := newTestReproduction(c, 12)
	a, b := parentPair(t, r)

	for i := 0; i < 100; i++ {
		child := r.Crossover(a, b, 1)
		requireLayered(t, child)
		assert.Zero(t, child.HiddenCount())
		// The hidden node took its two links with it, and one more link went.
		assert.GreaterOrEqual(t, len(a.Connections())-len(child.Connections()), 2)
	}
}

func TestCrossoverOfEvolvedGenomesStaysValid(t *testing.T) {
	c := busyConfig(t)
	r := newTestReproduction(c, 17)
	genomes := r.CreateNewPopulation(20)
	for _, g := range genomes {
		for i := 0; i < 30; i++ {
			r.Mutate(g, 1)
		}
	}
	rng := rand.New(rand.NewSource(5))
	for i := 0; i < 300; i++ {
		a, b := genomes[rng.Intn(len(genomes))], genomes[rng.Intn(len(genomes))]
		a.SetFitness(Fitness{Score: rng.Float64()}, Stamp{})
		b.SetFitness(Fitness{Score: rng.Float64()}, Stamp{})
		child := r.Crossover(a, b, 2)
		requireLayered(t, child)
		genomes[rng.Intn(len(genomes))] = child
	}
}
