package engine

import "math"

// MinSamplesDD is the minimum window length before the distributional
// detector will run, matching original_source's MIN_SAMPLES_ECOD.
const MinSamplesDD = 20

// DefaultBaseContamination is the fraction of the window treated as
// outliers before dynamic adjustment, when no configuration overrides it.
const DefaultBaseContamination = 0.05

// DDState holds the distributional detector's per-agent memory: a rolling
// history of normalized scores used to adapt the contamination fraction,
// matching original_source's score_history deque(maxlen=100).
type DDState struct {
	baseContamination float64
	scoreHistory      []float64
}

// NewDDState returns an empty distributional detector state. A non-positive
// baseContamination falls back to DefaultBaseContamination.
func NewDDState(baseContamination float64) *DDState {
	if baseContamination <= 0 {
		baseContamination = DefaultBaseContamination
	}
	return &DDState{baseContamination: baseContamination}
}

func (s *DDState) record(score float64) {
	s.scoreHistory = append(s.scoreHistory, score)
	if len(s.scoreHistory) > 100 {
		s.scoreHistory = s.scoreHistory[len(s.scoreHistory)-100:]
	}
}

// dynamicContamination tightens the contamination fraction when recent
// history shows a burst of high scores, and relaxes it when the agent has
// been quiet, mirroring _get_dynamic_contamination.
func (s *DDState) dynamicContamination() float64 {
	if len(s.scoreHistory) < 10 {
		return s.baseContamination
	}
	high := 0
	for _, sc := range s.scoreHistory {
		if sc > 0.7 {
			high++
		}
	}
	ratio := float64(high) / float64(len(s.scoreHistory))
	switch {
	case ratio > 0.3:
		return max64(0.01, s.baseContamination-0.02)
	case ratio < 0.05:
		return min64(0.10, s.baseContamination+0.02)
	default:
		return s.baseContamination
	}
}

func max64(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

func min64(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

// ddDimensions are the three columns the multivariate empirical-tail score
// is computed over, matching original_source's column_stack([cpu, mem,
// disk_io]).
var ddDimensions = []MetricName{MetricCPU, MetricMemory, MetricDiskIO}

// ecodScore is a from-scratch empirical cumulative-distribution tail-
// probability score (the ECOD method): for each dimension, a point far
// into either tail of that dimension's empirical distribution contributes
// -log(min(left-tail, right-tail)) to its total score. Points near the
// median of every dimension get the lowest scores (about log 2 per
// dimension); points in an extreme tail of any dimension score highest.
func ecodScore(columns [][]float64, row int) float64 {
	var total float64
	for _, col := range columns {
		n := float64(len(col))
		v := col[row]
		left := rank01(col, v) + 1.0/n // Laplace-smoothed empirical CDF
		if left > 1 {
			left = 1
		}
		right := 1 - left + 1.0/n
		if right > 1 {
			right = 1
		}
		tail := left
		if right < tail {
			tail = right
		}
		total += -logSafe(tail)
	}
	return total
}

func logSafe(p float64) float64 {
	if p <= 0 {
		p = 1e-12
	}
	return math.Log(p)
}

// RunDistributional scores the latest point in the window against the
// multivariate empirical tail distribution of CPU/Memory/DiskIO, then adds
// a per-metric breakdown, matching original_source's
// _run_multivariate_ecod.
func RunDistributional(buf *RollingBuffer, state *DDState) []Finding {
	if buf.Len() < MinSamplesDD {
		return nil
	}

	columns := make([][]float64, len(ddDimensions))
	for i, m := range ddDimensions {
		columns[i] = buf.Series(m)
	}
	n := len(columns[0])

	scores := make([]float64, n)
	for i := 0; i < n; i++ {
		scores[i] = ecodScore(columns, i)
	}

	contamination := state.dynamicContamination()
	outlierThreshold := percentile(scores, 100*(1-contamination))

	latestScore := scores[n-1]
	minScore, maxScore := scores[0], scores[0]
	for _, sc := range scores {
		if sc < minScore {
			minScore = sc
		}
		if sc > maxScore {
			maxScore = sc
		}
	}
	normalized := (latestScore - minScore) / (maxScore - minScore + 1e-10)
	isOutlier := latestScore >= outlierThreshold

	state.record(normalized)

	var severity Severity
	var confidence float64
	switch {
	case isOutlier && normalized > 0.9:
		severity, confidence = SeverityCritical, 0.9
	case isOutlier && normalized > 0.7:
		severity, confidence = SeverityWarning, 0.7
	case isOutlier:
		severity, confidence = SeverityWarning, 0.5
	default:
		severity, confidence = SeverityNormal, 1.0-normalized
	}

	findings := []Finding{{
		Engine:     EngineDD,
		Metric:     "Multivariate",
		Value:      latestScore,
		Score:      normalized,
		Threshold:  contamination,
		Severity:   severity,
		Confidence: confidence,
		Details:    "multivariate tail score across CPU/Memory/DiskIO",
	}}

	for i, m := range ddDimensions {
		col := columns[i]
		value := col[n-1]
		rank := rank01(col, value)
		metricScore := (rank - 0.5) * 2
		if metricScore < 0 {
			metricScore = -metricScore
		}
		sev := SeverityNormal
		if metricScore > 0.8 {
			sev = SeverityWarning
		}
		findings = append(findings, Finding{
			Engine:     EngineDD,
			Metric:     string(m),
			Value:      value,
			Score:      metricScore,
			Threshold:  percentile(col, 95),
			Severity:   sev,
			Confidence: confidence * 0.8,
		})
	}

	return findings
}
