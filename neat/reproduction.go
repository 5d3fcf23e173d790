package neat

import (
	"math"
	"math/rand"
	"sort"
)

// Reproduction handles the creation of new genomes, either from scratch or through
// selection, crossover and mutation. It is not safe for concurrent use.
type Reproduction struct {
	Config *Config
	IDs    *IDAllocator
	rng    *rand.Rand
}

// NewReproduction creates a new reproduction manager.
func NewReproduction(config *Config, ids *IDAllocator, rng *rand.Rand) *Reproduction {
	return &Reproduction{
		Config: config,
		IDs:    ids,
		rng:    rng,
	}
}

// NewGenome creates an empty genome of the configured shape with the default
// output activation. It is not mutated.
func (r *Reproduction) NewGenome() *Genome {
	gc := &r.Config.Genome
	g := NewGenome(r.IDs, gc.NumInputs, gc.NumOutputs)
	for _, out := range g.OutputIndices() {
		g.SetActivation(out, gc.DefaultActivation)
	}
	return g
}

// CreateNewPopulation creates popSize fresh genomes, each mutated once.
func (r *Reproduction) CreateNewPopulation(popSize int) []*Genome {
	genomes := make([]*Genome, 0, popSize)
	for len(genomes) < popSize {
		g := r.NewGenome()
		r.Mutate(g, 1)
		genomes = append(genomes, g)
	}
	return genomes
}

// SortByScore orders genomes best first. Genomes without a fitness sort last.
func SortByScore(genomes []*Genome) {
	sort.SliceStable(genomes, func(i, j int) bool {
		a, b := genomes[i], genomes[j]
		if a.Evaluated != b.Evaluated {
			return a.Evaluated
		}
		return a.Fitness.Score > b.Fitness.Score
	})
}

// rankBiased draws an index in [0, n) favouring the front of a sorted slice.
func (r *Reproduction) rankBiased(n int) int {
	u := r.rng.Float64()
	return int(u * u * float64(n))
}

// Reproduce builds the next generation of popSize genomes from the evaluated
// ones. genomes is sorted in place, best first.
//
// The top elitism genomes are cloned unchanged. Then round(survival_fraction *
// popSize) distinct genomes are copied using rank-biased picks. The rest are
// crossovers of two distinct rank-biased parents.
func (r *Reproduction) Reproduce(genomes []*Genome, popSize int, multiplier float64) []*Genome {
	SortByScore(genomes)
	next := make([]*Genome, 0, popSize)
	if len(genomes) == 0 {
		return r.CreateNewPopulation(popSize)
	}
	chosen := make([]bool, len(genomes))

	elite := min(r.Config.Reproduction.Elitism, len(genomes), popSize)
	for i := 0; i < elite; i++ {
		next = append(next, genomes[i].Clone())
		chosen[i] = true
	}

	survivors := int(math.Round(r.Config.Reproduction.SurvivalFraction * float64(popSize)))
	target := min(popSize, len(genomes), len(next)+survivors)
	for len(next) < target {
		idx := r.rankBiased(len(genomes))
		if chosen[idx] {
			continue
		}
		chosen[idx] = true
		next = append(next, genomes[idx].Clone())
	}

	for len(next) < popSize {
		if len(genomes) < 2 {
			child := genomes[0].Clone()
			child.ID = r.IDs.GenomeID()
			child.Evaluated = false
			r.Mutate(child, multiplier)
			next = append(next, child)
			continue
		}
		a := r.rankBiased(len(genomes))
		b := r.rankBiased(len(genomes))
		for b == a {
			b = r.rankBiased(len(genomes))
		}
		next = append(next, r.Crossover(genomes[a], genomes[b], multiplier))
	}
	return next
}
