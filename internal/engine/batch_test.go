package engine

import (
	"math"
	"testing"
)

func TestBatchForecastInsufficientData(t *testing.T) {
	series := []MetricSeries{{Metric: MetricCPU, Values: []float64{1, 2, 3}}}
	result := BatchForecast(series, 2, DefaultSeasonLength)
	cpu := result.Metrics[MetricCPU]
	if cpu.Error == "" {
		t.Error("expected an error marker for a too-short series")
	}
	if len(cpu.Points) != 0 {
		t.Error("expected no forecast points for a too-short series")
	}
}

func TestBatchForecastSamplePoints(t *testing.T) {
	series := []MetricSeries{{Metric: MetricCPU, Values: seasonalSeries(60, 50, 5)}}
	result := BatchForecast(series, 2, DefaultSeasonLength)
	cpu := result.Metrics[MetricCPU]
	if cpu.Error != "" {
		t.Fatalf("unexpected error: %s", cpu.Error)
	}
	if len(cpu.Points) != 4 {
		t.Fatalf("expected 4 sample points, got %d", len(cpu.Points))
	}
	wantMinutes := []int{10, 30, 60, 120}
	for i, p := range cpu.Points {
		if p.Minutes != wantMinutes[i] {
			t.Errorf("point[%d].Minutes = %d, want %d", i, p.Minutes, wantMinutes[i])
		}
		if math.IsNaN(p.Value) {
			t.Errorf("point[%d].Value is NaN", i)
		}
	}
}

func TestBatchForecastMultipleMetricsIndependent(t *testing.T) {
	series := []MetricSeries{
		{Metric: MetricCPU, Values: seasonalSeries(60, 50, 5)},
		{Metric: MetricMemory, Values: seasonalSeries(60, 70, 3)},
	}
	result := BatchForecast(series, 1, DefaultSeasonLength)
	if len(result.Metrics) != 2 {
		t.Fatalf("expected 2 metric results, got %d", len(result.Metrics))
	}
}
