package storage

import (
	"time"

	"github.com/pulseai-labs/anomaly-hub/internal/engine"
)

// DetectionRecord is one persisted DetectionResult: the audit trail a
// dashboard can page back through without replaying the live detection
// stream. Findings are stored as JSONB rather than normalized, matching
// the teacher's evidence-as-JSONB convention in DiagnosisRecord.
type DetectionRecord struct {
	ID            int64              `db:"id"`
	AgentID       string             `db:"agent_id"`
	Timestamp     time.Time          `db:"timestamp"`
	HealthScore   int                `db:"health_score"`
	EnsembleScore float64            `db:"ensemble_score"`
	RawMetrics    map[string]float64 `db:"raw_metrics"`
	Findings      []engine.Finding   `db:"findings"`
}
