package engine

import "testing"

func TestComputeEnsembleWeightsBothEngines(t *testing.T) {
	findings := []Finding{
		{Engine: EngineDD, Score: 1.0, Confidence: 1.0},
		{Engine: EngineFD, Score: 0.5, Confidence: 1.0},
	}
	score, _ := ComputeEnsemble(findings, DefaultEnsembleDDWeight, DefaultEnsembleFDWeight)
	want := DefaultEnsembleDDWeight*1.0 + DefaultEnsembleFDWeight*0.5
	if diff := score - want; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("ComputeEnsemble score = %v, want %v", score, want)
	}
}

func TestComputeEnsembleHonorsCustomWeights(t *testing.T) {
	findings := []Finding{
		{Engine: EngineDD, Score: 1.0, Confidence: 1.0},
		{Engine: EngineFD, Score: 0.5, Confidence: 1.0},
	}
	score, _ := ComputeEnsemble(findings, 0.9, 0.1)
	want := 0.9*1.0 + 0.1*0.5
	if diff := score - want; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("ComputeEnsemble with custom weights = %v, want %v", score, want)
	}
}

func TestComputeEnsembleSingleEngineUnweighted(t *testing.T) {
	findings := []Finding{{Engine: EngineDD, Score: 0.9, Confidence: 1.0}}
	score, _ := ComputeEnsemble(findings, DefaultEnsembleDDWeight, DefaultEnsembleFDWeight)
	if score != 0.9 {
		t.Errorf("ComputeEnsemble with only DD findings = %v, want 0.9", score)
	}
}

func TestComputeEnsembleSeverityThresholds(t *testing.T) {
	cases := []struct {
		score float64
		want  Severity
	}{
		{0.9, SeverityCritical},
		{0.6, SeverityWarning},
		{0.2, SeverityNormal},
	}
	for _, tc := range cases {
		findings := []Finding{{Engine: EngineDD, Score: tc.score, Confidence: 1.0}}
		_, severity := ComputeEnsemble(findings, DefaultEnsembleDDWeight, DefaultEnsembleFDWeight)
		if severity != tc.want {
			t.Errorf("severity for score %v = %v, want %v", tc.score, severity, tc.want)
		}
	}
}

func TestComputeEnsembleEmptyFindings(t *testing.T) {
	score, severity := ComputeEnsemble(nil, DefaultEnsembleDDWeight, DefaultEnsembleFDWeight)
	if score != 0 || severity != SeverityNormal {
		t.Errorf("ComputeEnsemble(nil) = (%v, %v), want (0, NORMAL)", score, severity)
	}
}
