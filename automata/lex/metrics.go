package lex

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics collects Prometheus metrics for scanners and tokenizers.
//
// Metrics exposed (all namespaced with "automata_"):
//
//  1. scans_total (counter): Longest-match scans. Labels: rule, outcome
//     (match, no_match).
//  2. units_pulled_total (counter): Units read from sources. Labels: rule.
//  3. units_restored_total (counter): Units pushed back after scans.
//     Labels: rule.
//  4. units_dropped_total (counter): Units discarded by the narrow pushback
//     policy. Labels: rule.
//  5. match_length (histogram): Length of accepted prefixes. Labels: rule.
//  6. peak_configurations (gauge): Widest configuration set seen by the most
//     recent scan. Labels: rule.
//  7. tokens_total (counter): Tokens produced by tokenizer runs. Labels: rule.
//  8. runs_total (counter): Tokenizer runs. Labels: outcome (success or an
//     error code).
//
// Usage:
//
//	registry := prometheus.NewRegistry()
//	metrics := lex.NewMetrics(registry)
//	tok, _ := lex.NewTokenizer[rune](lex.WithMetrics(metrics))
//	http.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
type Metrics struct {
	scans       *prometheus.CounterVec
	pulled      *prometheus.CounterVec
	restored    *prometheus.CounterVec
	dropped     *prometheus.CounterVec
	matchLength *prometheus.HistogramVec
	peakConfigs *prometheus.GaugeVec
	tokens      *prometheus.CounterVec
	runs        *prometheus.CounterVec

	mu      sync.RWMutex
	enabled bool
}

// NewMetrics creates and registers every metric with registry. A nil
// registry means prometheus.DefaultRegisterer.
func NewMetrics(registry prometheus.Registerer) *Metrics {
	if registry == nil {
		registry = prometheus.DefaultRegisterer
	}
	factory := promauto.With(registry)

	return &Metrics{
		enabled: true,
		scans: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "automata",
			Name:      "scans_total",
			Help:      "Longest-match scans by outcome",
		}, []string{"rule", "outcome"}),
		pulled: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "automata",
			Name:      "units_pulled_total",
			Help:      "Input units read from sources during scans",
		}, []string{"rule"}),
		restored: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "automata",
			Name:      "units_restored_total",
			Help:      "Input units pushed back onto sources after scans",
		}, []string{"rule"}),
		dropped: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "automata",
			Name:      "units_dropped_total",
			Help:      "Input units discarded by the narrow pushback policy",
		}, []string{"rule"}),
		matchLength: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "automata",
			Name:      "match_length",
			Help:      "Length in units of accepted prefixes",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 10), // 1 to 512
		}, []string{"rule"}),
		peakConfigs: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "automata",
			Name:      "peak_configurations",
			Help:      "Widest active configuration set during the most recent scan",
		}, []string{"rule"}),
		tokens: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "automata",
			Name:      "tokens_total",
			Help:      "Tokens produced by tokenizer runs",
		}, []string{"rule"}),
		runs: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "automata",
			Name:      "runs_total",
			Help:      "Tokenizer runs by outcome",
		}, []string{"outcome"}),
	}
}

func (m *Metrics) isEnabled() bool {
	if m == nil {
		return false
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.enabled
}

// RecordScan records the result of one longest-match scan.
func (m *Metrics) RecordScan(rule string, r ScanResult) {
	if !m.isEnabled() {
		return
	}

	outcome := "no_match"
	if r.Matched {
		outcome = "match"
		m.matchLength.WithLabelValues(rule).Observe(float64(r.Length))
	}
	m.scans.WithLabelValues(rule, outcome).Inc()
	m.pulled.WithLabelValues(rule).Add(float64(r.Pulled))
	m.restored.WithLabelValues(rule).Add(float64(r.Restored))
	if r.Dropped > 0 {
		m.dropped.WithLabelValues(rule).Add(float64(r.Dropped))
	}
	if r.PeakConfigurations > 0 {
		m.peakConfigs.WithLabelValues(rule).Set(float64(r.PeakConfigurations))
	}
}

// IncrementTokens counts one token produced for rule.
func (m *Metrics) IncrementTokens(rule string) {
	if !m.isEnabled() {
		return
	}
	m.tokens.WithLabelValues(rule).Inc()
}

// RecordRun counts a finished tokenizer run.
func (m *Metrics) RecordRun(outcome string) {
	if !m.isEnabled() {
		return
	}
	m.runs.WithLabelValues(outcome).Inc()
}

// Disable temporarily disables metric recording.
func (m *Metrics) Disable() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.enabled = false
}

// Enable re-enables metric recording after Disable.
func (m *Metrics) Enable() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.enabled = true
}
