package neat

import (
	"io"
	"log"
	"time"
)

// GenerationStats summarises one evaluated generation.
type GenerationStats struct {
	Generation  int
	Schedule    Schedule
	Multiplier  float64
	Size        int
	Evaluated   int // genomes whose fitness was (re)computed this generation
	Best        Fitness
	BestID      GenomeID
	Scores      map[string]float64 // StatFunctions applied to every score
	MeanHidden  float64
	MeanEnabled float64
}

// Reporter receives progress notifications from a Population.
type Reporter interface {
	StartGeneration(generation int)
	PostEvaluate(stats GenerationStats)
	NewBest(entry StashEntry)
	EraBoundary(generation int, schedule Schedule, event Event)
	EndGeneration(generation int, size int, elapsed time.Duration)
}

// BaseReporter implements Reporter with no-ops so concrete reporters only
// override what they need.
type BaseReporter struct{}

func (BaseReporter) StartGeneration(int) {}
func (BaseReporter) PostEvaluate(GenerationStats) {}
func (BaseReporter) NewBest(StashEntry) {}
func (BaseReporter) EraBoundary(int, Schedule, Event) {}
func (BaseReporter) EndGeneration(int, int, time.Duration) {}

// ReporterSet fans notifications out to every registered reporter.
type ReporterSet struct {
	reporters []Reporter
}

// Add registers r.
func (rs *ReporterSet) Add(r Reporter) {
	rs.reporters = append(rs.reporters, r)
}

func (rs *ReporterSet) StartGeneration(generation int) {
	for _, r := range rs.reporters {
		r.StartGeneration(generation)
	}
}

func (rs *ReporterSet) PostEvaluate(stats GenerationStats) {
	for _, r := range rs.reporters {
		r.PostEvaluate(stats)
	}
}

func (rs *ReporterSet) NewBest(entry StashEntry) {
	for _, r := range rs.reporters {
		r.NewBest(entry)
	}
}

func (rs *ReporterSet) EraBoundary(generation int, schedule Schedule, event Event) {
	for _, r := range rs.reporters {
		r.EraBoundary(generation, schedule, event)
	}
}

func (rs *ReporterSet) EndGeneration(generation int, size int, elapsed time.Duration) {
	for _, r := range rs.reporters {
		r.EndGeneration(generation, size, elapsed)
	}
}

// LogReporter writes progress lines to a log.Logger.
type LogReporter struct {
	Logger *log.Logger
}

// NewLogReporter creates a reporter writing to w.
func NewLogReporter(w io.Writer) *LogReporter {
	return &LogReporter{Logger: log.New(w, "", log.LstdFlags)}
}

func (l *LogReporter) StartGeneration(generation int) {
	l.Logger.Printf(" ****** Generation %d ******", generation)
}

func (l *LogReporter) PostEvaluate(s GenerationStats) {
	l.Logger.Printf(" Evaluated %d/%d genomes (era %d, %s, multiplier %.1f)",
		s.Evaluated, s.Size, s.Schedule.Era, s.Schedule.Criterion, s.Multiplier)
	l.Logger.Printf(" Best of generation: ID %d, score %.4f (goals %.0f, visited %.0f, moves %.0f)",
		s.BestID, s.Best.Score, s.Best.Goals, s.Best.Visited, s.Best.Moves)
	l.Logger.Printf(" Score mean %.4f stdev %.4f median %.4f, hidden %.2f, enabled %.2f",
		s.Scores["mean"], s.Scores["stdev"], s.Scores["median"], s.MeanHidden, s.MeanEnabled)
}

func (l *LogReporter) NewBest(e StashEntry) {
	l.Logger.Printf(" New best genome found! ID: %d, score: %.4f (generation %d)",
		e.Genome.ID, e.Genome.Fitness.Score, e.Generation)
}

func (l *LogReporter) EraBoundary(generation int, s Schedule, ev Event) {
	l.Logger.Printf(" Era %d begins at generation %d (%d since last best), event: %s",
		s.Era, generation, s.GensSinceMax, ev)
}

func (l *LogReporter) EndGeneration(generation int, size int, elapsed time.Duration) {
	l.Logger.Printf(" Generation %d finished in %s, next population %d", generation, elapsed, size)
}
