// Package agent plays snake episodes with evolved networks and turns the
// results into neat.Fitness records.
package agent

import (
	"fmt"

	"github.com/baldhumanity/neatsnake/snake"
)

// Oracle is the game contract consumed by the player.
type Oracle interface {
	Reset()
	Step(d snake.Direction) snake.State
	Sensors() []float64
	Goals() int
	Visited() int
	VisitedSinceGoal() int
}

// Brain maps a sensor vector to four move intents (N, E, S, W).
type Brain interface {
	Activate(inputs []float64) ([]float64, error)
}

// ChooseDirection returns the direction with the strictly largest output.
// On ties the lowest index wins.
func ChooseDirection(outputs []float64) snake.Direction {
	best := 0
	for i := 1; i < len(outputs) && i < len(snake.Directions); i++ {
		if outputs[i] > outputs[best] {
			best = i
		}
	}
	return snake.Directions[best]
}

// StepBudget caps an episode at Base + PerCell*(visited + goals) moves.
type StepBudget struct {
	Base    int
	PerCell int
}

// Allows reports whether another move fits in the budget.
func (b StepBudget) Allows(moves, visited, goals int) bool {
	return moves <= b.Base+b.PerCell*(visited+goals)
}

// Episode is the outcome of one game.
type Episode struct {
	Goals   int
	Visited int
	Moves   int
	Crashed bool
}

// Player runs episodes.
type Player struct {
	Budget StepBudget
}

// Play resets the oracle and drives it with brain until the game ends or the
// step budget runs out.
func (p Player) Play(brain Brain, oracle Oracle) (Episode, error) {
	oracle.Reset()
	var ep Episode
	for p.Budget.Allows(ep.Moves, oracle.Visited(), oracle.Goals()) {
		outputs, err := brain.Activate(oracle.Sensors())
		if err != nil {
			return ep, fmt.Errorf("activate at move %d: %w", ep.Moves, err)
		}
		ep.Moves++
		if oracle.Step(ChooseDirection(outputs)) != snake.Running {
			ep.Crashed = true
			break
		}
	}
	ep.Goals = oracle.Goals()
	ep.Visited = oracle.Visited()
	return ep, nil
}
