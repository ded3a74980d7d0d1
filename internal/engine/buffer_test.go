package engine

import "testing"

func TestRollingBufferEviction(t *testing.T) {
	buf := NewRollingBuffer(DefaultWindowSize)

	for i := 0; i < DefaultWindowSize+10; i++ {
		buf.Append(Sample{CPU: float64(i), Memory: float64(i * 2)})
	}

	if buf.Len() != DefaultWindowSize {
		t.Fatalf("Len() = %d, want %d", buf.Len(), DefaultWindowSize)
	}

	cpu := buf.Series(MetricCPU)
	if cpu[0] != 10 {
		t.Errorf("oldest retained CPU sample = %v, want 10", cpu[0])
	}
	if cpu[len(cpu)-1] != float64(DefaultWindowSize+9) {
		t.Errorf("newest CPU sample = %v, want %v", cpu[len(cpu)-1], DefaultWindowSize+9)
	}
}

func TestRollingBufferChannelsStayEqualLength(t *testing.T) {
	buf := NewRollingBuffer(DefaultWindowSize)
	for i := 0; i < 5; i++ {
		buf.Append(Sample{CPU: 1, Memory: 2, DiskIO: 3, NetworkSent: 4, NetworkRecv: 5})
	}

	for _, m := range []MetricName{MetricCPU, MetricMemory, MetricDiskIO, MetricNetworkSent, MetricNetworkRecv} {
		if got := len(buf.Series(m)); got != 5 {
			t.Errorf("Series(%s) len = %d, want 5", m, got)
		}
	}
}

func TestRollingBufferLatest(t *testing.T) {
	buf := NewRollingBuffer(DefaultWindowSize)
	if _, ok := buf.Latest(MetricCPU); ok {
		t.Fatal("Latest() on empty buffer should report ok=false")
	}

	buf.Append(Sample{CPU: 42})
	v, ok := buf.Latest(MetricCPU)
	if !ok || v != 42 {
		t.Errorf("Latest() = (%v, %v), want (42, true)", v, ok)
	}
}
