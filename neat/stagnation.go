package neat

import "fmt"

// Criterion selects which fitness formula the evaluator applies.
type Criterion int

const (
	Normal Criterion = iota
	FavorExploration
	FavorSurvival
)

// criterionRotation is indexed by era modulo its length during the first half of an era.
var criterionRotation = [...]Criterion{Normal, FavorExploration, FavorSurvival}

func (c Criterion) String() string {
	switch c {
	case Normal:
		return "normal"
	case FavorExploration:
		return "favor_exploration"
	case FavorSurvival:
		return "favor_survival"
	}
	return fmt.Sprintf("Criterion(%d)", int(c))
}

// Schedule is the era state derived from the stagnation clock.
type Schedule struct {
	GensSinceMax int
	Era          int
	Boundary     bool
	Criterion    Criterion
}

// Stamp returns the fitness cache key for this schedule.
func (s Schedule) Stamp() Stamp {
	return Stamp{Era: s.Era, Criterion: s.Criterion}
}

// Stagnation turns the distance to the last all-time best into an era schedule.
type Stagnation struct {
	Config *StagnationConfig
}

// NewStagnation creates a new stagnation clock.
func NewStagnation(config *StagnationConfig) (*Stagnation, error) {
	if config.EraLength <= 0 {
		return nil, fmt.Errorf("invalid era_length in config: %d", config.EraLength)
	}
	return &Stagnation{Config: config}, nil
}

// Schedule computes the era state for generation. lastBest is the generation of
// the newest stash entry, or -1 when nothing was stashed yet.
func (s *Stagnation) Schedule(generation, lastBest int) Schedule {
	since := generation
	if lastBest >= 0 {
		since = generation - lastBest
	}
	e := s.Config.EraLength
	sch := Schedule{
		GensSinceMax: since,
		Era:          since / e,
		Boundary:     since%e == 0,
		Criterion:    Normal,
	}
	if within := since % e; 2*within < e {
		sch.Criterion = criterionRotation[sch.Era%len(criterionRotation)]
	}
	return sch
}

// Multiplier is the mutation pressure applied after an era boundary.
func (s Schedule) Multiplier() float64 {
	return float64(1 + s.Era)
}

// EventAt returns the event dispatched on the boundary of era.
func (s *Stagnation) EventAt(era int) Event {
	events := s.Config.Events
	if len(events) == 0 {
		return EventNone
	}
	return events[era%len(events)]
}
