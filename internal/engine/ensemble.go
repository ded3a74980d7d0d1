package engine

// DefaultEnsembleDDWeight and DefaultEnsembleFDWeight are the weights
// combining the distributional and forecast detectors into one ensemble
// score when no configuration overrides them, matching original_source's
// ECOD_WEIGHT/ARIMA_WEIGHT.
const (
	DefaultEnsembleDDWeight = 0.6
	DefaultEnsembleFDWeight = 0.4
)

// ComputeEnsemble combines every DD and FD finding in the batch into one
// weighted score and overall severity, matching original_source's
// _calculate_ensemble_score. Findings from the peripheral monitor or a
// prior ensemble pass are ignored. A zero-valued ddWeight and fdWeight pair
// falls back to DefaultEnsembleDDWeight/DefaultEnsembleFDWeight.
func ComputeEnsemble(findings []Finding, ddWeight, fdWeight float64) (score float64, severity Severity) {
	if ddWeight == 0 && fdWeight == 0 {
		ddWeight, fdWeight = DefaultEnsembleDDWeight, DefaultEnsembleFDWeight
	}

	var ddScores, fdScores []float64
	for _, f := range findings {
		switch f.Engine {
		case EngineDD:
			ddScores = append(ddScores, f.Score*f.Confidence)
		case EngineFD:
			fdScores = append(fdScores, f.Score*f.Confidence)
		}
	}

	ddAvg := mean(ddScores)
	fdAvg := mean(fdScores)

	switch {
	case len(ddScores) > 0 && len(fdScores) > 0:
		score = ddWeight*ddAvg + fdWeight*fdAvg
	case len(ddScores) > 0:
		score = ddAvg
	case len(fdScores) > 0:
		score = fdAvg
	default:
		score = 0
	}

	switch {
	case score > 0.8:
		severity = SeverityCritical
	case score > 0.5:
		severity = SeverityWarning
	default:
		severity = SeverityNormal
	}

	return score, severity
}
