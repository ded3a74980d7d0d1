package engine

import (
	"encoding/json"
	"testing"
)

func TestDetectDefaultsMissingAgentID(t *testing.T) {
	reg := NewRegistry(DefaultTunables())
	result := Detect(reg, Sample{CPU: 50}, false, false)
	if result.AgentID != "unknown" {
		t.Errorf("AgentID = %q, want unknown", result.AgentID)
	}
}

func TestDetectAlwaysReturnsAResult(t *testing.T) {
	reg := NewRegistry(DefaultTunables())
	result := Detect(reg, Sample{AgentID: "pos-1", CPU: 40, Memory: 30}, true, true)
	if result == nil {
		t.Fatal("Detect must never return nil")
	}
	if result.HealthScore < 0 || result.HealthScore > 100 {
		t.Errorf("HealthScore = %d, out of [0,100]", result.HealthScore)
	}
}

func TestDetectAccumulatesEnsembleOnceBothEnginesQualify(t *testing.T) {
	reg := NewRegistry(DefaultTunables())
	var last *DetectionResult
	for i := 0; i < MinSamplesFD+5; i++ {
		last = Detect(reg, Sample{AgentID: "pos-2", CPU: 50 + float64(i%3), Memory: 60}, true, true)
	}

	hasEnsemble := false
	for _, f := range last.Findings {
		if f.Engine == EngineEnsemble {
			hasEnsemble = true
		}
	}
	if !hasEnsemble {
		t.Error("expected an ENSEMBLE finding once both DD and FD have enough history")
	}
}

func TestDetectPeripheralFailureEscalates(t *testing.T) {
	reg := NewRegistry(DefaultTunables())
	var last *DetectionResult
	for i := 0; i < DefaultPeripheralFailureThreshold; i++ {
		last = Detect(reg, Sample{
			AgentID: "pos-3",
			Logs:    checkLogs("card-reader", PeripheralStatusFailed),
		}, false, false)
	}

	found := false
	for _, f := range last.Findings {
		if f.Engine == EnginePeripheral && f.Metric == "card-reader" {
			found = true
		}
	}
	if !found {
		t.Error("expected a peripheral finding after consecutive failures")
	}
}

func TestDetectHealthScoreDropsWithCriticalFindings(t *testing.T) {
	reg := NewRegistry(DefaultTunables())
	base := Detect(reg, Sample{AgentID: "pos-4", CPU: 50}, false, false)

	var afterFailures *DetectionResult
	for i := 0; i < 5; i++ {
		afterFailures = Detect(reg, Sample{
			AgentID: "pos-4",
			Logs:    checkLogs("printer", PeripheralStatusFailed),
		}, false, false)
	}

	if afterFailures.HealthScore >= base.HealthScore {
		t.Errorf("health score after critical findings = %d, want < %d", afterFailures.HealthScore, base.HealthScore)
	}
}

func TestDetectSerializesToAnomalyEnvelope(t *testing.T) {
	reg := NewRegistry(DefaultTunables())
	result := Detect(reg, Sample{AgentID: "pos-5", CPU: 10}, false, false)

	data, err := MarshalAnomalyEnvelope(result)
	if err != nil {
		t.Fatalf("MarshalAnomalyEnvelope: %v", err)
	}

	var decoded map[string]json.RawMessage
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal envelope: %v", err)
	}
	if _, ok := decoded["detections"]; !ok {
		t.Error(`envelope is missing the contractual "detections" key`)
	}
	if _, ok := decoded["findings"]; ok {
		t.Error(`envelope should not carry an internal "findings" key`)
	}
}
