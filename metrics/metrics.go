// Package metrics exports evolution progress as Prometheus metrics.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/baldhumanity/neatsnake/neat"
)

const namespace = "neatsnake"

// Reporter is a neat.Reporter that updates a private Prometheus registry.
type Reporter struct {
	neat.BaseReporter

	registry *prometheus.Registry

	generations   prometheus.Counter
	evaluations   prometheus.Counter
	newBests      prometheus.Counter
	eraBoundaries *prometheus.CounterVec
	generation    prometheus.Gauge
	era           prometheus.Gauge
	multiplier    prometheus.Gauge
	population    prometheus.Gauge
	bestEver      prometheus.Gauge
	best          *prometheus.GaugeVec
	score         *prometheus.GaugeVec
	meanHidden    prometheus.Gauge
	meanEnabled   prometheus.Gauge
	duration      prometheus.Histogram
}

func NewReporter() *Reporter {
	r := &Reporter{
		registry:    prometheus.NewRegistry(),
		generations: prometheus.NewCounter(prometheus.CounterOpts{Namespace: namespace, Name: "generations_total"}),
		evaluations: prometheus.NewCounter(prometheus.CounterOpts{Namespace: namespace, Name: "evaluations_total"}),
		newBests:    prometheus.NewCounter(prometheus.CounterOpts{Namespace: namespace, Name: "new_best_total"}),
		eraBoundaries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "era_boundaries_total",
		}, []string{"event"}),
		generation:  prometheus.NewGauge(prometheus.GaugeOpts{Namespace: namespace, Name: "generation"}),
		era:         prometheus.NewGauge(prometheus.GaugeOpts{Namespace: namespace, Name: "era"}),
		multiplier:  prometheus.NewGauge(prometheus.GaugeOpts{Namespace: namespace, Name: "mutation_multiplier"}),
		population:  prometheus.NewGauge(prometheus.GaugeOpts{Namespace: namespace, Name: "population_size"}),
		bestEver:    prometheus.NewGauge(prometheus.GaugeOpts{Namespace: namespace, Name: "best_ever_score"}),
		best:        prometheus.NewGaugeVec(prometheus.GaugeOpts{Namespace: namespace, Name: "generation_best"}, []string{"metric"}),
		score:       prometheus.NewGaugeVec(prometheus.GaugeOpts{Namespace: namespace, Name: "score"}, []string{"stat"}),
		meanHidden:  prometheus.NewGauge(prometheus.GaugeOpts{Namespace: namespace, Name: "mean_hidden_nodes"}),
		meanEnabled: prometheus.NewGauge(prometheus.GaugeOpts{Namespace: namespace, Name: "mean_enabled_connections"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "generation_duration_seconds",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 14),
		}),
	}
	r.registry.MustRegister(
		r.generations, r.evaluations, r.newBests, r.eraBoundaries,
		r.generation, r.era, r.multiplier, r.population, r.bestEver,
		r.best, r.score, r.meanHidden, r.meanEnabled, r.duration,
	)
	return r
}

// Registry exposes the collectors, mostly for tests.
func (r *Reporter) Registry() *prometheus.Registry { return r.registry }

// Handler serves the registry in the Prometheus text format.
func (r *Reporter) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

func (r *Reporter) StartGeneration(generation int) {
	r.generation.Set(float64(generation))
}

func (r *Reporter) PostEvaluate(s neat.GenerationStats) {
	r.evaluations.Add(float64(s.Evaluated))
	r.era.Set(float64(s.Schedule.Era))
	r.multiplier.Set(s.Multiplier)
	r.population.Set(float64(s.Size))
	for _, name := range neat.MetricNames {
		r.best.WithLabelValues(name).Set(s.Best.Metric(name))
	}
	for stat, v := range s.Scores {
		r.score.WithLabelValues(stat).Set(v)
	}
	r.meanHidden.Set(s.MeanHidden)
	r.meanEnabled.Set(s.MeanEnabled)
}

func (r *Reporter) NewBest(e neat.StashEntry) {
	r.newBests.Inc()
	r.bestEver.Set(e.Genome.Fitness.Score)
}

func (r *Reporter) EraBoundary(_ int, _ neat.Schedule, ev neat.Event) {
	r.eraBoundaries.WithLabelValues(ev.String()).Inc()
}

func (r *Reporter) EndGeneration(_ int, _ int, elapsed time.Duration) {
	r.generations.Inc()
	r.duration.Observe(elapsed.Seconds())
}
