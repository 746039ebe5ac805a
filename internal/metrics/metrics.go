// Package metrics holds the Prometheus collectors for badge resolution and the quiz.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Resolution outcomes.
const (
	OutcomeCached      = "cached"
	OutcomeResolved    = "resolved"
	OutcomeFallback    = "fallback"
	OutcomeMissing     = "missing"
	OutcomeInterrupted = "interrupted"
)

// Metrics groups every collector the service exports. A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	resolutions   *prometheus.CounterVec
	lookups       *prometheus.CounterVec
	missingTeams  prometheus.Gauge
	roundsGraded  *prometheus.CounterVec
	matchesLoaded *prometheus.GaugeVec
}

// New registers the collectors on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		registry: reg,
		resolutions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "footyguess",
			Name:      "badge_resolutions_total",
			Help:      "Team badge resolutions by outcome.",
		}, []string{"outcome"}),
		lookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "footyguess",
			Name:      "badge_lookups_total",
			Help:      "Upstream team lookup requests by result.",
		}, []string{"result"}),
		missingTeams: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "footyguess",
			Name:      "missing_teams",
			Help:      "Teams currently shown with a placeholder badge.",
		}),
		roundsGraded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "footyguess",
			Name:      "rounds_graded_total",
			Help:      "Graded quiz rounds by points awarded.",
		}, []string{"points"}),
		matchesLoaded: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "footyguess",
			Name:      "matches_loaded",
			Help:      "Finished matches loaded per league.",
		}, []string{"league"}),
	}

	reg.MustRegister(m.resolutions, m.lookups, m.missingTeams, m.roundsGraded, m.matchesLoaded)
	reg.MustRegister(prometheus.NewGoCollector(), prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}))

	return m
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry returns the underlying registry (tests gather from it).
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// RecordResolution counts one badge resolution by outcome.
func (m *Metrics) RecordResolution(outcome string) {
	if m == nil {
		return
	}
	m.resolutions.WithLabelValues(outcome).Inc()
}

// RecordLookup counts one upstream lookup attempt ("ok", "empty", "rate_limited", "error").
func (m *Metrics) RecordLookup(result string) {
	if m == nil {
		return
	}
	m.lookups.WithLabelValues(result).Inc()
}

// SetMissingTeams sets the ledger size.
func (m *Metrics) SetMissingTeams(n int) {
	if m == nil {
		return
	}
	m.missingTeams.Set(float64(n))
}

// RecordRound counts a graded round.
func (m *Metrics) RecordRound(points int) {
	if m == nil {
		return
	}
	m.roundsGraded.WithLabelValues(pointsLabel(points)).Inc()
}

// SetMatchesLoaded records how many matches a league contributed.
func (m *Metrics) SetMatchesLoaded(league string, n int) {
	if m == nil {
		return
	}
	m.matchesLoaded.WithLabelValues(league).Set(float64(n))
}

func pointsLabel(points int) string {
	switch points {
	case 10:
		return "10"
	case 7:
		return "7"
	case 5:
		return "5"
	case 3:
		return "3"
	default:
		return "0"
	}
}
