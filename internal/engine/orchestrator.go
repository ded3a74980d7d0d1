package engine

import (
	"fmt"
	"time"
)

// forecastMetrics are the only channels the forecast detector runs
// against, matching original_source's detect() loop over [("CPU", ...),
// ("Memory", ...)].
var forecastMetrics = []MetricName{MetricCPU, MetricMemory}

// Detect runs one sample through the full per-agent pipeline: buffer
// update, distributional detector, forecast detector, peripheral monitor,
// ensemble scoring, and health-score accounting. DD and FD run
// sequentially against the same just-appended window (FD's cache-update
// step is cadence-sensitive), so concurrency lives at the Registry level
// instead: many agents' Detect calls may run at once, each serialized by
// its own agent's compartment lock.
func Detect(reg *Registry, sample Sample, runDD, runFD bool) *DetectionResult {
	start := time.Now()
	agentID := sample.AgentID
	if agentID == "" {
		agentID = "unknown"
	}

	state := reg.GetOrCreate(agentID)
	state.mu.Lock()
	defer state.mu.Unlock()

	state.Buffer.Append(sample)

	rawMetrics := map[string]float64{
		string(MetricCPU):         sample.CPU,
		string(MetricMemory):      sample.Memory,
		string(MetricDiskIO):      sample.DiskIO,
		string(MetricNetworkSent): sample.NetworkSent,
		string(MetricNetworkRecv): sample.NetworkRecv,
	}

	var findings []Finding

	if runDD {
		findings = append(findings, RunDistributional(state.Buffer, state.DD)...)
	}

	if runFD {
		for _, metric := range forecastMetrics {
			if f := RunForecast(state.Buffer, metric, state.fdState(metric)); f != nil {
				findings = append(findings, *f)
			}
		}
	}

	findings = append(findings, CheckPeripherals(state.Peripheral, sample.Logs)...)

	ensembleScore, ensembleSeverity := ComputeEnsemble(findings, reg.tunables.EnsembleDDWeight, reg.tunables.EnsembleFDWeight)

	ddCount, fdCount := 0, 0
	for _, f := range findings {
		switch f.Engine {
		case EngineDD:
			ddCount++
		case EngineFD:
			fdCount++
		}
	}

	if ddCount > 0 && fdCount > 0 {
		confidence := 0.7
		if ensembleScore > 0.7 {
			confidence = 0.9
		}
		findings = append(findings, Finding{
			Engine:     EngineEnsemble,
			Metric:     "Combined",
			Value:      ensembleScore,
			Score:      ensembleScore,
			Threshold:  0.5,
			Severity:   ensembleSeverity,
			Confidence: confidence,
			Details:    fmt.Sprintf("DD weight=%.1f, FD weight=%.1f", reg.tunables.EnsembleDDWeight, reg.tunables.EnsembleFDWeight),
		})
	}

	healthScore := 100
	for _, f := range findings {
		switch f.Severity {
		case SeverityCritical:
			healthScore -= int(20 * f.Confidence)
		case SeverityWarning:
			healthScore -= int(10 * f.Confidence)
		}
	}
	healthScore = clampInt(healthScore, 0, 100)

	result := &DetectionResult{
		AgentID:       agentID,
		Timestamp:     sample.Timestamp,
		Findings:      findings,
		HealthScore:   healthScore,
		EnsembleScore: ensembleScore,
		RawMetrics:    rawMetrics,
	}

	RecordDetection(result, time.Since(start))
	return result
}
