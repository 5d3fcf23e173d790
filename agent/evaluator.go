package agent

import (
	"fmt"
	"math/rand"
	"sync/atomic"

	"github.com/baldhumanity/neatsnake/neat"
	"github.com/baldhumanity/neatsnake/neat/nn"
	"github.com/baldhumanity/neatsnake/snake"
)

// OracleFactory creates a fresh game for one evaluation.
type OracleFactory func(rng *rand.Rand) Oracle

// Evaluator scores genomes by playing several games with each one.
// Fitness is safe for concurrent use: every call compiles its own network and
// plays on its own game instance.
type Evaluator struct {
	Games     int
	Player    Player
	NewOracle OracleFactory

	seed atomic.Int64
}

// NewEvaluator creates an evaluator on the default snake grid. Game seeds are
// derived from seed, one per Fitness call.
func NewEvaluator(games int, budget StepBudget, seed int64) *Evaluator {
	e := &Evaluator{
		Games:  games,
		Player: Player{Budget: budget},
		NewOracle: func(rng *rand.Rand) Oracle {
			return snake.New(rng)
		},
	}
	e.seed.Store(seed)
	return e
}

// Fitness implements neat.FitnessFunc.
func (e *Evaluator) Fitness(g *neat.Genome, c neat.Criterion) (neat.Fitness, error) {
	if e.Games <= 0 {
		return neat.Fitness{}, fmt.Errorf("games per genome must be positive, got %d", e.Games)
	}
	net, err := nn.CreateFeedForwardNetwork(g)
	if err != nil {
		return neat.Fitness{}, fmt.Errorf("compile genome %d: %w", g.ID, err)
	}
	rng := rand.New(rand.NewSource(e.seed.Add(1)))
	oracle := e.NewOracle(rng)

	games := make([]neat.Fitness, 0, e.Games)
	for i := 0; i < e.Games; i++ {
		ep, err := e.Player.Play(net, oracle)
		if err != nil {
			return neat.Fitness{}, fmt.Errorf("genome %d game %d: %w", g.ID, i, err)
		}
		games = append(games, Score(c, ep))
	}
	return Combine(games), nil
}
