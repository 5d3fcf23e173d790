package neat

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/sourcegraph/conc/pool"
)

// FitnessFunc scores one genome under the given criterion. With eval_workers > 1
// it is called from several goroutines at once, each with a different genome.
type FitnessFunc func(g *Genome, criterion Criterion) (Fitness, error)

// StashEntry is a snapshot of a genome that set a new all-time best, together
// with the generation it happened in. The genome must not be modified.
type StashEntry struct {
	Genome     *Genome
	Generation int
}

// Population holds the state of the evolutionary process.
type Population struct {
	Config       *Config
	Genomes      []*Genome // current generation, best first after reproduction
	Reproduction *Reproduction
	Stagnation   *Stagnation
	IDs          *IDAllocator
	Reporters    ReporterSet
	Generation   int // generation that the next RunGeneration call processes

	stash      []StashEntry
	multiplier float64
	rng        *rand.Rand
}

// NewPopulation creates an empty population. The first RunGeneration call
// builds the initial genomes.
func NewPopulation(config *Config) (*Population, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	stagnation, err := NewStagnation(&config.Stagnation)
	if err != nil {
		return nil, fmt.Errorf("failed to create stagnation clock: %w", err)
	}
	seed := config.Neat.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))
	ids := NewIDAllocator()

	return &Population{
		Config:       config,
		Reproduction: NewReproduction(config, ids, rng),
		Stagnation:   stagnation,
		IDs:          ids,
		multiplier:   1,
		rng:          rng,
	}, nil
}

// Stash returns every all-time-best snapshot, oldest first.
func (p *Population) Stash() []StashEntry { return p.stash }

// Best returns the best genome found so far, or nil before the first evaluation.
func (p *Population) Best() *Genome {
	if len(p.stash) == 0 {
		return nil
	}
	return p.stash[len(p.stash)-1].Genome
}

// RestoreStash appends stash entries persisted by an earlier run, oldest first.
// Entries that do not beat the current best are skipped so scores stay strictly
// increasing. The id allocator is moved past every restored id, and Generation
// is advanced past the last restored entry so the era clock never runs
// backwards. It returns the number of entries kept.
func (p *Population) RestoreStash(entries []StashEntry) int {
	kept := 0
	for _, e := range entries {
		p.IDs.ObserveGenome(e.Genome)
		if best := p.Best(); best != nil && e.Genome.Fitness.Score <= best.Fitness.Score {
			continue
		}
		p.stash = append(p.stash, StashEntry{Genome: e.Genome.Clone(), Generation: e.Generation})
		kept++
	}
	if last := p.lastStashGeneration(); p.Generation <= last {
		p.Generation = last + 1
	}
	return kept
}

// Multiplier returns the mutation multiplier currently applied to reproduction.
func (p *Population) Multiplier() float64 { return p.multiplier }

func (p *Population) lastStashGeneration() int {
	if len(p.stash) == 0 {
		return -1
	}
	return p.stash[len(p.stash)-1].Generation
}

// Schedule returns the era schedule for the next generation.
func (p *Population) Schedule() Schedule {
	return p.Stagnation.Schedule(p.Generation, p.lastStashGeneration())
}

// RunGeneration executes a single generation: populate when empty, evaluate,
// handle era boundaries, then select and reproduce.
// Returns the best genome if the fitness threshold is met, otherwise nil.
func (p *Population) RunGeneration(fitnessFunc FitnessFunc) (*Genome, error) {
	gen := p.Generation
	start := time.Now()
	p.Reporters.StartGeneration(gen)

	if len(p.Genomes) == 0 {
		p.Genomes = p.Reproduction.CreateNewPopulation(p.Config.Neat.PopSize)
	}

	// The criterion is fixed before evaluation; stash updates below may move the clock.
	sch := p.Schedule()
	fresh, err := p.evaluate(p.Genomes, sch, fitnessFunc)
	if err != nil {
		return nil, fmt.Errorf("fitness evaluation failed in generation %d: %w", gen, err)
	}
	p.updateStash(fresh, gen)
	p.Reporters.PostEvaluate(p.stats(gen, sch, len(fresh)))

	after := p.Schedule()
	if after.Boundary {
		p.multiplier = after.Multiplier()
		ev := p.Stagnation.EventAt(after.Era)
		p.Reporters.EraBoundary(gen, after, ev)
		if err := p.dispatch(ev, after, fitnessFunc); err != nil {
			return nil, fmt.Errorf("event %s failed in generation %d: %w", ev, gen, err)
		}
	}

	p.Genomes = p.Reproduction.Reproduce(p.Genomes, p.Config.Neat.PopSize, p.multiplier)
	p.Generation++
	p.Reporters.EndGeneration(gen, len(p.Genomes), time.Since(start))

	if best := p.Best(); best != nil && !p.Config.Neat.NoFitnessTermination &&
		best.Fitness.Score >= p.Config.Neat.FitnessThreshold {
		return best, nil
	}
	return nil, nil
}

// evaluate computes fitness for every genome not yet scored under sch and
// returns those genomes in population order.
func (p *Population) evaluate(genomes []*Genome, sch Schedule, fitnessFunc FitnessFunc) ([]*Genome, error) {
	stamp := sch.Stamp()
	var pending []*Genome
	for _, g := range genomes {
		if !g.FitnessCurrent(stamp) {
			pending = append(pending, g)
		}
	}

	if p.Config.Neat.EvalWorkers <= 1 || len(pending) < 2 {
		for _, g := range pending {
			f, err := fitnessFunc(g, sch.Criterion)
			if err != nil {
				return nil, fmt.Errorf("genome %d: %w", g.ID, err)
			}
			g.SetFitness(f, stamp)
		}
		return pending, nil
	}

	// Workers only write the fitness of their own genome.
	wp := pool.New().WithMaxGoroutines(p.Config.Neat.EvalWorkers).WithErrors()
	for _, g := range pending {
		g := g
		wp.Go(func() error {
			f, err := fitnessFunc(g, sch.Criterion)
			if err != nil {
				return fmt.Errorf("genome %d: %w", g.ID, err)
			}
			g.SetFitness(f, stamp)
			return nil
		})
	}
	if err := wp.Wait(); err != nil {
		return nil, err
	}
	return pending, nil
}

// updateStash records, in order, every genome that beats the running best.
func (p *Population) updateStash(fresh []*Genome, gen int) {
	for _, g := range fresh {
		if best := p.Best(); best != nil && g.Fitness.Score <= best.Fitness.Score {
			continue
		}
		entry := StashEntry{Genome: g.Clone(), Generation: gen}
		p.stash = append(p.stash, entry)
		p.Reporters.NewBest(entry)
	}
}

func (p *Population) dispatch(ev Event, sch Schedule, fitnessFunc FitnessFunc) error {
	switch ev {
	case EventCataclysm:
		SortByScore(p.Genomes)
		metric := p.Config.Stagnation.CataclysmMetric
		values := make([]float64, len(p.Genomes))
		for i, g := range p.Genomes {
			values[i] = g.Fitness.Metric(metric)
		}
		threshold, _ := CataclysmThreshold(values, p.rng)
		p.Genomes = Cataclysm(p.Genomes, metric, threshold, p.Config.Reproduction.Elitism)
	case EventResurrection:
		revived := make([]*Genome, 0, len(p.stash))
		for _, e := range p.stash {
			revived = append(revived, e.Genome.Clone())
		}
		fresh, err := p.evaluate(revived, sch, fitnessFunc)
		if err != nil {
			return err
		}
		p.updateStash(fresh, p.Generation)
		p.Genomes = append(p.Genomes, revived...)
	}
	return nil
}

func (p *Population) stats(gen int, sch Schedule, evaluated int) GenerationStats {
	s := GenerationStats{
		Generation: gen,
		Schedule:   sch,
		Multiplier: p.multiplier,
		Size:       len(p.Genomes),
		Evaluated:  evaluated,
		Scores:     make(map[string]float64, len(StatFunctions)),
	}
	scores := make([]float64, 0, len(p.Genomes))
	hidden, enabled := 0, 0
	for _, g := range p.Genomes {
		scores = append(scores, g.Fitness.Score)
		hidden += g.HiddenCount()
		enabled += g.EnabledCount()
		if s.BestID == 0 || g.Fitness.Score > s.Best.Score {
			s.Best, s.BestID = g.Fitness, g.ID
		}
	}
	for name, fn := range StatFunctions {
		s.Scores[name] = fn(scores)
	}
	if n := len(p.Genomes); n > 0 {
		s.MeanHidden = float64(hidden) / float64(n)
		s.MeanEnabled = float64(enabled) / float64(n)
	}
	return s
}
