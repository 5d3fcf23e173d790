package neat

import (
	"fmt"
	"math/rand"
	"strings"
)

// Event is a population-wide intervention dispatched on era boundaries.
type Event int

const (
	EventNone Event = iota
	EventCataclysm
	EventResurrection
)

var eventNames = map[string]Event{
	"none":         EventNone,
	"cataclysm":    EventCataclysm,
	"resurrection": EventResurrection,
}

// ParseEvent resolves an event name from configuration.
func ParseEvent(name string) (Event, error) {
	if ev, ok := eventNames[strings.ToLower(strings.TrimSpace(name))]; ok {
		return ev, nil
	}
	return EventNone, fmt.Errorf("unknown event: %s", name)
}

func (e Event) String() string {
	switch e {
	case EventNone:
		return "none"
	case EventCataclysm:
		return "cataclysm"
	case EventResurrection:
		return "resurrection"
	}
	return fmt.Sprintf("Event(%d)", int(e))
}

// CataclysmThreshold picks the cut-off used by a cataclysm: half the best
// metric value or the mean metric value, with equal chance.
func CataclysmThreshold(values []float64, rng *rand.Rand) (threshold float64, usedMean bool) {
	if rng.Float64() < 0.5 {
		return Mean(values), true
	}
	return MaxFloat(values) / 2, false
}

// Cataclysm drops every genome whose metric falls below threshold. genomes must
// be sorted best first; the first protect genomes always survive.
func Cataclysm(genomes []*Genome, metric string, threshold float64, protect int) []*Genome {
	kept := make([]*Genome, 0, len(genomes))
	for i, g := range genomes {
		if i < protect || g.Fitness.Metric(metric) >= threshold {
			kept = append(kept, g)
		}
	}
	return kept
}
