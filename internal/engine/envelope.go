package engine

import "encoding/json"

// anomalyEnvelope is the wire shape consumers of the hub expect: a typed
// envelope wrapping one DetectionResult's findings under the contractual
// "detections" key. Fields are spelled out rather than embedding
// *DetectionResult, since an anonymous embed would promote Findings under
// its own "findings" tag instead.
type anomalyEnvelope struct {
	Type          string             `json:"type"`
	AgentID       string             `json:"agent_id"`
	Timestamp     string             `json:"timestamp"`
	Detections    []Finding          `json:"detections"`
	HealthScore   int                `json:"health_score"`
	EnsembleScore float64            `json:"ensemble_score"`
	RawMetrics    map[string]float64 `json:"raw_metrics"`
}

// MarshalAnomalyEnvelope wraps a DetectionResult in the "anomaly"-typed
// envelope and serializes it. Offered as a convenience so callers outside
// this package don't need a second copy of the envelope shape.
func MarshalAnomalyEnvelope(result *DetectionResult) ([]byte, error) {
	return json.Marshal(anomalyEnvelope{
		Type:          "anomaly",
		AgentID:       result.AgentID,
		Timestamp:     result.Timestamp,
		Detections:    result.Findings,
		HealthScore:   result.HealthScore,
		EnsembleScore: result.EnsembleScore,
		RawMetrics:    result.RawMetrics,
	})
}
