package engine

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	findingsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "anomaly_hub_findings_total",
			Help: "Total findings emitted by the detection engine, by engine and severity",
		},
		[]string{"engine", "severity"},
	)
	healthScoreGauge = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "anomaly_hub_health_score",
			Help: "Last computed health score per agent",
		},
		[]string{"agent_id"},
	)
	ensembleScoreGauge = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "anomaly_hub_ensemble_score",
			Help: "Last computed ensemble score per agent",
		},
		[]string{"agent_id"},
	)
	detectLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "anomaly_hub_detect_duration_seconds",
			Help:    "Wall-clock latency of one orchestrator Detect call",
			Buckets: prometheus.DefBuckets,
		},
		[]string{},
	)
)

func init() {
	prometheus.MustRegister(findingsTotal)
	prometheus.MustRegister(healthScoreGauge)
	prometheus.MustRegister(ensembleScoreGauge)
	prometheus.MustRegister(detectLatency)
}

// RecordDetection updates the package's Prometheus metrics from a
// completed DetectionResult and the time its Detect call took.
func RecordDetection(result *DetectionResult, elapsed time.Duration) {
	for _, f := range result.Findings {
		findingsTotal.WithLabelValues(string(f.Engine), string(f.Severity)).Inc()
	}
	healthScoreGauge.WithLabelValues(result.AgentID).Set(float64(result.HealthScore))
	ensembleScoreGauge.WithLabelValues(result.AgentID).Set(result.EnsembleScore)
	detectLatency.WithLabelValues().Observe(elapsed.Seconds())
}
