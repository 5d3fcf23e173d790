package agent

import (
	"fmt"

	"github.com/baldhumanity/neatsnake/neat"
)

// Score turns an episode into a fitness record under criterion c.
//
//	Normal:           10000*goals - adj*0.001*(moves-visited)/(goals+1) + visited
//	FavorExploration: 1000*goals + 10*visited
//	FavorSurvival:    1000*goals + moves
//
// adj is -1 below two goals, so early wandering is rewarded, and 1 afterwards.
func Score(c neat.Criterion, ep Episode) neat.Fitness {
	goals, visited, moves := float64(ep.Goals), float64(ep.Visited), float64(ep.Moves)
	f := neat.Fitness{Goals: goals, Visited: visited, Moves: moves}
	switch c {
	case neat.Normal:
		adj := 1.0
		if ep.Goals < 2 {
			adj = -1.0
		}
		f.Score = 10000*goals - adj*0.001*((moves-visited)/(goals+1)) + visited
	case neat.FavorExploration:
		f.Score = 1000*goals + 10*visited
	case neat.FavorSurvival:
		f.Score = 1000*goals + moves
	default:
		panic(fmt.Sprintf("unknown criterion %s", c))
	}
	return f
}

// Combine folds per-game results into one record: 0.75 times the best game
// plus 0.25 times the average, applied to every metric. The best game is the
// one with the highest score.
func Combine(games []neat.Fitness) neat.Fitness {
	if len(games) == 0 {
		return neat.Fitness{}
	}
	best := games[0]
	var sum neat.Fitness
	for _, g := range games {
		if g.Score > best.Score {
			best = g
		}
		sum.Score += g.Score
		sum.Goals += g.Goals
		sum.Visited += g.Visited
		sum.Moves += g.Moves
	}
	n := float64(len(games))
	return neat.Fitness{
		Score:   0.75*best.Score + 0.25*sum.Score/n,
		Goals:   0.75*best.Goals + 0.25*sum.Goals/n,
		Visited: 0.75*best.Visited + 0.25*sum.Visited/n,
		Moves:   0.75*best.Moves + 0.25*sum.Moves/n,
	}
}
