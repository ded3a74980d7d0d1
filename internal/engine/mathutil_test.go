package engine

import "testing"

func TestMeanAndStddev(t *testing.T) {
	values := []float64{1, 2, 3, 4, 5}
	if m := mean(values); m != 3 {
		t.Errorf("mean() = %v, want 3", m)
	}
	if sd := stddev(values); sd <= 0 {
		t.Errorf("stddev() = %v, want > 0", sd)
	}
	if mean(nil) != 0 {
		t.Error("mean(nil) should be 0")
	}
}

func TestPercentileBounds(t *testing.T) {
	values := []float64{10, 20, 30, 40, 50}
	if p := percentile(values, 0); p != 10 {
		t.Errorf("percentile(0) = %v, want 10", p)
	}
	if p := percentile(values, 100); p != 50 {
		t.Errorf("percentile(100) = %v, want 50", p)
	}
}

func TestPearsonCorrelationNeedsThreePoints(t *testing.T) {
	if c := pearsonCorrelation([]float64{1, 2}, []float64{1, 2}); c != 0 {
		t.Errorf("pearsonCorrelation with < 3 points = %v, want 0", c)
	}

	x := []float64{1, 2, 3, 4, 5}
	y := []float64{2, 4, 6, 8, 10}
	if c := pearsonCorrelation(x, y); c < 0.99 {
		t.Errorf("pearsonCorrelation of a perfect linear relationship = %v, want ~1", c)
	}
}

func TestZScoreAnomalyCount(t *testing.T) {
	values := []float64{10, 11, 9, 10, 12, 100}
	if count := zScoreAnomalyCount(values, 2.0); count == 0 {
		t.Error("expected at least one anomaly for an extreme outlier")
	}
}

func TestRank01(t *testing.T) {
	values := []float64{1, 2, 3, 4, 5}
	if r := rank01(values, 1); r != 0 {
		t.Errorf("rank01 of the minimum = %v, want 0", r)
	}
	if r := rank01(values, 6); r != 1 {
		t.Errorf("rank01 above the maximum = %v, want 1", r)
	}
}
