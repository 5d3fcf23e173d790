// Package snake is a headless grid game used as a fitness oracle.
//
// The grid is walled on all sides. The snake moves one cell per step, grows
// by GrowIncrement cells for every apple it eats, and dies when its head
// enters a wall or its own body. North increases y.
package snake

import (
	"fmt"
	"math/rand"
)

const (
	DefaultWidth  = 40
	DefaultHeight = 30
	GrowIncrement = 5
)

// Direction is a move of the snake's head.
type Direction int

const (
	North Direction = iota
	East
	South
	West
)

// Directions lists every direction in output order.
var Directions = [4]Direction{North, East, South, West}

// Delta returns the unit offset of the direction.
func (d Direction) Delta() Point {
	switch d {
	case North:
		return Point{0, 1}
	case East:
		return Point{1, 0}
	case South:
		return Point{0, -1}
	case West:
		return Point{-1, 0}
	}
	panic(fmt.Sprintf("invalid direction %d", int(d)))
}

func (d Direction) String() string {
	switch d {
	case North:
		return "north"
	case East:
		return "east"
	case South:
		return "south"
	case West:
		return "west"
	}
	return fmt.Sprintf("Direction(%d)", int(d))
}

// Point is a grid coordinate.
type Point struct {
	X, Y int
}

// Add returns p + o.
func (p Point) Add(o Point) Point { return Point{p.X + o.X, p.Y + o.Y} }

// Cell is the content of one grid cell.
type Cell uint8

const (
	Empty Cell = iota
	Apple
	Body
	Wall
	Crash
)

// State tells whether an episode is still running.
type State int

const (
	Running State = iota
	GameOver
)

func (s State) String() string {
	if s == Running {
		return "running"
	}
	return "game over"
}

// Game is one snake episode. It is not safe for concurrent use; give every
// goroutine its own Game.
type Game struct {
	width, height int
	cells         []Cell
	body          []Point // tail first, head last
	toGrow        int
	apple         Point
	goals         int
	state         State
	moves         int

	seen      []bool // cells entered since the last apple
	visited   int    // unique cells entered, counted per apple window
	sinceGoal int
	rng       *rand.Rand
}

// New creates a game on the default 40x30 grid and starts an episode.
func New(rng *rand.Rand) *Game {
	return NewSized(DefaultWidth, DefaultHeight, rng)
}

// NewSized creates a game with a custom grid size. The interior must leave
// room for a two-cell snake and an apple.
func NewSized(width, height int, rng *rand.Rand) *Game {
	if width < 5 || height < 5 {
		panic(fmt.Sprintf("grid %dx%d is too small", width, height))
	}
	g := &Game{
		width:  width,
		height: height,
		cells:  make([]Cell, width*height),
		body:   make([]Point, 0, width*height),
		seen:   make([]bool, width*height),
		rng:    rng,
	}
	g.Reset()
	return g
}

// Reset starts a new episode: walls around the border, a two-cell snake at a
// random spot and one apple.
func (g *Game) Reset() {
	for y := 0; y < g.height; y++ {
		for x := 0; x < g.width; x++ {
			c := Empty
			if x == 0 || y == 0 || x == g.width-1 || y == g.height-1 {
				c = Wall
			}
			g.cells[y*g.width+x] = c
		}
	}
	g.body = g.body[:0]
	g.toGrow = 0
	g.goals = 0
	g.moves = 0
	g.state = Running
	g.visited = 0
	g.sinceGoal = 0
	clear(g.seen)

	g.placeSnake()
	g.placeApple()
}

func (g *Game) placeSnake() {
	for i := 0; i < 1000; i++ {
		tail := g.randomInterior()
		head := tail.Add(Directions[g.rng.Intn(len(Directions))].Delta())
		if g.At(tail) != Empty || g.At(head) != Empty {
			continue
		}
		g.set(tail, Body)
		g.set(head, Body)
		g.body = append(g.body, tail, head)
		return
	}
	panic("no room for snake")
}

func (g *Game) placeApple() {
	for i := 0; i < 10000; i++ {
		p := g.randomInterior()
		if g.At(p) == Empty {
			g.apple = p
			g.set(p, Apple)
			return
		}
	}
	// Random probing failed on a crowded grid, fall back to a scan.
	for y := 1; y < g.height-1; y++ {
		for x := 1; x < g.width-1; x++ {
			if p := (Point{x, y}); g.At(p) == Empty {
				g.apple = p
				g.set(p, Apple)
				return
			}
		}
	}
	g.state = GameOver
}

func (g *Game) randomInterior() Point {
	return Point{1 + g.rng.Intn(g.width-2), 1 + g.rng.Intn(g.height-2)}
}

func (g *Game) inBounds(p Point) bool {
	return p.X >= 0 && p.Y >= 0 && p.X < g.width && p.Y < g.height
}

// At returns the content of p. Out-of-bounds points read as Wall.
func (g *Game) At(p Point) Cell {
	if !g.inBounds(p) {
		return Wall
	}
	return g.cells[p.Y*g.width+p.X]
}

func (g *Game) set(p Point, c Cell) {
	g.cells[p.Y*g.width+p.X] = c
}

// Step moves the snake one cell. Stepping a finished game is a no-op.
func (g *Game) Step(d Direction) State {
	if g.state != Running {
		return g.state
	}
	g.moves++

	if g.toGrow == 0 {
		g.set(g.body[0], Empty)
		g.body = g.body[1:]
	} else {
		g.toGrow--
	}

	head := g.Head().Add(d.Delta())
	switch g.At(head) {
	case Empty:
		g.set(head, Body)
	case Apple:
		g.set(head, Body)
		g.goals++
		g.toGrow += GrowIncrement
		clear(g.seen)
		g.sinceGoal = 0
		g.placeApple()
	default:
		g.state = GameOver
		if g.inBounds(head) {
			g.set(head, Crash)
		}
	}
	g.body = append(g.body, head)

	if g.inBounds(head) {
		if i := head.Y*g.width + head.X; !g.seen[i] {
			g.seen[i] = true
			g.visited++
			g.sinceGoal++
		}
	}
	return g.state
}

// Head returns the position of the snake's head.
func (g *Game) Head() Point { return g.body[len(g.body)-1] }

// Apple returns the position of the current apple.
func (g *Game) Apple() Point { return g.apple }

// Length returns the number of cells the snake occupies.
func (g *Game) Length() int { return len(g.body) }

// State returns the episode state.
func (g *Game) State() State { return g.state }

// Goals returns the number of apples eaten this episode.
func (g *Game) Goals() int { return g.goals }

// Moves returns the number of steps taken this episode.
func (g *Game) Moves() int { return g.moves }

// Visited returns the number of unique cells entered this episode. The set of
// cells counts as fresh again after every apple, so the total keeps growing.
func (g *Game) Visited() int { return g.visited }

// VisitedSinceGoal returns the unique cells entered since the last apple.
func (g *Game) VisitedSinceGoal() int { return g.sinceGoal }

// Size returns the grid dimensions.
func (g *Game) Size() (width, height int) { return g.width, g.height }

// distance counts the cells between the head and the first cell of kind c in
// direction d, stopping at the grid edge.
func (g *Game) distance(d Direction, c Cell) int {
	delta := d.Delta()
	n := 0
	for p := g.Head().Add(delta); g.inBounds(p) && g.At(p) != c; p = p.Add(delta) {
		n++
	}
	return n
}

// WallDistances returns the free cells to the wall in N, E, S, W order.
func (g *Game) WallDistances() [4]int {
	var out [4]int
	for i, d := range Directions {
		out[i] = g.distance(d, Wall)
	}
	return out
}

// BodyDistances returns the cells to the snake's own body in N, E, S, W order,
// or the distance to the grid edge when no body segment lies that way.
func (g *Game) BodyDistances() [4]int {
	var out [4]int
	for i, d := range Directions {
		out[i] = g.distance(d, Body)
	}
	return out
}
