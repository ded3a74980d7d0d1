package engine

// BatchForecast runs the same fixed-order seasonal AR fit as the streaming
// forecast detector over a complete offline series, one shot and
// uncached, producing forecasts at fixed sampling points. Grounded on
// original_source's batch_arima_forecast. A non-positive seasonLength
// falls back to DefaultSeasonLength.
func BatchForecast(series []MetricSeries, forecastHours int, seasonLength int) BatchResult {
	if seasonLength <= 0 {
		seasonLength = DefaultSeasonLength
	}
	result := BatchResult{Metrics: make(map[MetricName]MetricForecast, len(series))}

	horizon := forecastHours * 60 * 12
	samplePoints := []int{10, 30, 60, 120}

	for _, s := range series {
		if len(s.Values) < MinSamplesFD {
			result.Metrics[s.Metric] = MetricForecast{Error: "insufficient data"}
			continue
		}

		model, err := fitSeasonalAR(s.Values, seasonLength)
		if err != nil {
			result.Metrics[s.Metric] = MetricForecast{
				CurrentValue: round2(s.Values[len(s.Values)-1]),
				Error:        "forecast fit failed",
			}
			continue
		}

		forecasts := model.forecast(s.Values, horizon)

		points := make([]HorizonPoint, 0, len(samplePoints))
		for _, minutes := range samplePoints {
			idx := minutes*12 - 1
			if idx >= len(forecasts) {
				idx = len(forecasts) - 1
			}
			value := round2(forecasts[idx])
			points = append(points, HorizonPoint{
				Minutes:  minutes,
				Value:    value,
				Severity: severityForValue(value, s.Metric),
			})
		}

		result.Metrics[s.Metric] = MetricForecast{
			Points:       points,
			CurrentValue: round2(s.Values[len(s.Values)-1]),
		}
	}

	return result
}
