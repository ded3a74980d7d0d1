package engine

import (
	"math"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"

	"github.com/pulseai-labs/anomaly-hub/pkg/logger"
)

// MinSamplesFD is the minimum window length before the forecast detector
// will run, matching original_source's MIN_SAMPLES_ARIMA.
const MinSamplesFD = 30

// DefaultSeasonLength is the seasonal period used for differencing when no
// configuration overrides it, matching original_source's
// ARIMA_SEASON_LENGTH.
const DefaultSeasonLength = 12

// ResidualK scales the residual standard deviation into an adaptive
// threshold, matching original_source's ARIMA_RESIDUAL_K.
const ResidualK = 2.5

// RetrainEvery is how many samples elapse between model refits. Cheaper
// than refitting on every call, and the intent original_source's
// model-caching comment describes even though its literal modulo check
// (against a window capped below 100) never fires in practice.
const RetrainEvery = 100

// maxARIMAOrder bounds the autoregressive order search.
const maxARIMAOrder = 3

// seasonalARModel is a fixed-order autoregression fit to a seasonally
// differenced series: a from-scratch stand-in for AutoARIMA, chosen per
// spec's allowance to constrain the forecaster to "a fixed-order SARIMA fit
// per metric" when no suitable Go AutoARIMA library exists.
type seasonalARModel struct {
	order        int
	coeffs       []float64 // coeffs[0] is the intercept, coeffs[1:] are AR weights
	seasonLength int
}

// fitSeasonalAR seasonally-differences values at lag seasonLength, then
// fits an AR(p) model to the differenced series for each candidate order
// p in [1, maxARIMAOrder], keeping the order that minimizes AIC. A
// differenced series with no variation would leave every AR design matrix
// singular, so it is modeled as order 0: a constant seasonal step equal to
// that difference.
func fitSeasonalAR(values []float64, seasonLength int) (*seasonalARModel, error) {
	if len(values) <= seasonLength+maxARIMAOrder+1 {
		return nil, ErrInsufficientData
	}

	diff := make([]float64, len(values)-seasonLength)
	for i := range diff {
		diff[i] = values[i+seasonLength] - values[i]
	}

	if stddev(diff) == 0 {
		return &seasonalARModel{order: 0, coeffs: []float64{diff[0]}, seasonLength: seasonLength}, nil
	}

	var best *seasonalARModel
	bestAIC := math.Inf(1)

	for p := 1; p <= maxARIMAOrder; p++ {
		coeffs, rss, n, ok := fitAR(diff, p)
		if !ok {
			continue
		}
		k := float64(p + 1)
		aic := n*math.Log(rss/n+1e-12) + 2*k
		if aic < bestAIC {
			bestAIC = aic
			best = &seasonalARModel{order: p, coeffs: coeffs, seasonLength: seasonLength}
		}
	}

	if best == nil {
		return nil, ErrModelFailure
	}
	return best, nil
}

// fitAR solves the AR(p) least-squares problem for a differenced series via
// gonum's QR-based least-squares solve, generalizing the teacher's
// PerformLinearRegressionOnValues from one predictor to p lagged
// predictors.
func fitAR(diff []float64, p int) (coeffs []float64, rss, n float64, ok bool) {
	rows := len(diff) - p
	if rows < p+2 {
		return nil, 0, 0, false
	}

	xData := make([]float64, rows*(p+1))
	yData := make([]float64, rows)
	for i := 0; i < rows; i++ {
		xData[i*(p+1)] = 1
		for j := 0; j < p; j++ {
			xData[i*(p+1)+1+j] = diff[i+p-1-j]
		}
		yData[i] = diff[i+p]
	}

	X := mat.NewDense(rows, p+1, xData)
	y := mat.NewVecDense(rows, yData)

	var beta mat.VecDense
	if err := beta.SolveVec(X, y); err != nil {
		return nil, 0, 0, false
	}

	coeffs = make([]float64, p+1)
	for i := range coeffs {
		coeffs[i] = beta.AtVec(i)
	}

	var resid mat.VecDense
	resid.MulVec(X, &beta)
	for i := 0; i < rows; i++ {
		d := yData[i] - resid.AtVec(i)
		rss += d * d
	}
	return coeffs, rss, float64(rows), true
}

// forecast projects steps future values beyond the given in-sample series,
// returning forecast[0] as the one-step-ahead value. Each step's seasonal
// level is reconstructed by adding the fitted AR prediction for the
// differenced series back onto the value seasonLength steps earlier
// (actual if available, otherwise a previously forecast value).
func (m *seasonalARModel) forecast(values []float64, steps int) []float64 {
	extended := append([]float64(nil), values...)

	diffHistory := make([]float64, len(values)-m.seasonLength)
	for i := range diffHistory {
		diffHistory[i] = values[i+m.seasonLength] - values[i]
	}

	out := make([]float64, steps)
	for k := 0; k < steps; k++ {
		predDiff := m.coeffs[0]
		for j := 0; j < m.order; j++ {
			idx := len(diffHistory) - 1 - j
			if idx < 0 {
				break
			}
			predDiff += m.coeffs[1+j] * diffHistory[idx]
		}

		seasonalIdx := len(extended) - m.seasonLength
		predValue := predDiff + extended[seasonalIdx]

		out[k] = predValue
		extended = append(extended, predValue)
		diffHistory = append(diffHistory, predDiff)
	}
	return out
}

// FDState holds the forecast detector's per-agent-per-metric memory: the
// cached model, a running sample counter driving the retrain cadence, and
// the residual history used for the adaptive threshold, matching
// original_source's arima_models/arima_residuals caches.
type FDState struct {
	seasonLength int
	windowSize   int
	model        *seasonalARModel
	samples      int
	residuals    []float64
}

// NewFDState returns an empty forecast detector state. A non-positive
// seasonLength or windowSize falls back to its Default.
func NewFDState(seasonLength, windowSize int) *FDState {
	if seasonLength <= 0 {
		seasonLength = DefaultSeasonLength
	}
	if windowSize <= 0 {
		windowSize = DefaultWindowSize
	}
	return &FDState{seasonLength: seasonLength, windowSize: windowSize}
}

func (s *FDState) recordResidual(r float64) {
	s.residuals = append(s.residuals, r)
	if len(s.residuals) > s.windowSize {
		s.residuals = s.residuals[len(s.residuals)-s.windowSize:]
	}
}

// staticThresholds returns the static warning and critical forecast-severity
// thresholds for each metric the forecaster runs against, matching
// original_source's CPU 80/90 and Memory 85/95 cutoffs.
func staticThresholds(metric MetricName) (warning, critical float64) {
	switch metric {
	case MetricMemory:
		return 85.0, 95.0
	default:
		return 80.0, 90.0
	}
}

func severityForValue(value float64, metric MetricName) Severity {
	warning, critical := staticThresholds(metric)
	switch {
	case value >= critical:
		return SeverityCritical
	case value >= warning:
		return SeverityWarning
	default:
		return SeverityNormal
	}
}

// RunForecast fits (or reuses) a seasonal AR model for one metric, compares
// its one-step forecast against the latest actual to produce a residual-
// based finding, and attaches a multi-horizon projection at 30/60/120
// minutes, matching original_source's _run_cached_arima.
func RunForecast(buf *RollingBuffer, metric MetricName, state *FDState) *Finding {
	values := buf.Series(metric)
	if len(values) < MinSamplesFD {
		return nil
	}

	state.samples++
	needRetrain := state.model == nil || state.samples%RetrainEvery == 0
	if needRetrain {
		if model, err := fitSeasonalAR(values, state.seasonLength); err == nil {
			state.model = model
		} else {
			logger.Warn("forecast model fit failed", zap.String("metric", string(metric)), zap.Error(err))
			if state.model == nil {
				return nil
			}
		}
	}

	const maxSteps = 1440
	forecasts := state.model.forecast(values, maxSteps)

	forecastValue := forecasts[0]
	actualValue := values[len(values)-1]
	residual := math.Abs(actualValue - forecastValue)
	state.recordResidual(residual)

	var threshold float64
	if len(state.residuals) > 5 {
		threshold = math.Max(ResidualK*stddev(state.residuals), 0.1)
	} else if len(state.residuals) > 0 {
		threshold = mean(state.residuals) * 2
	} else {
		threshold = 1.0
	}

	score := residual / math.Max(threshold, 0.01)

	var severity Severity
	var confidence float64
	switch {
	case residual > threshold*1.5:
		severity, confidence = SeverityCritical, math.Min(0.95, score/2)
	case residual > threshold:
		severity, confidence = SeverityWarning, math.Min(0.8, score/2)
	default:
		severity, confidence = SeverityNormal, 1.0-math.Min(0.9, score)
	}

	horizonSteps := []int{360, 720, 1440}
	horizonMinutes := []int{30, 60, 120}
	horizon := make([]HorizonPoint, len(horizonSteps))
	for i, steps := range horizonSteps {
		predValue := forecasts[steps-1]
		horizon[i] = HorizonPoint{
			Minutes:  horizonMinutes[i],
			Value:    predValue,
			Severity: severityForValue(predValue, metric),
		}
	}

	fv := forecastValue
	rv := residual
	return &Finding{
		Engine:          EngineFD,
		Metric:          string(metric),
		Value:           actualValue,
		Score:           score,
		Threshold:       threshold,
		Forecast:        &fv,
		Residual:        &rv,
		Severity:        severity,
		Confidence:      confidence,
		Details:         "forecast vs actual residual check",
		ForecastHorizon: horizon,
	}
}
