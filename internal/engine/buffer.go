package engine

// DefaultWindowSize is the number of samples retained per metric channel
// when no configuration overrides it, roughly five minutes of history at a
// 5s sampling interval.
const DefaultWindowSize = 60

// RollingBuffer is a fixed-capacity, eldest-evicting window over the five
// telemetry channels of one agent, grounded on original_source's
// MetricBuffer (five deque(maxlen=WINDOW_SIZE) fields plus timestamps).
type RollingBuffer struct {
	windowSize  int
	cpu         []float64
	memory      []float64
	diskIO      []float64
	networkSent []float64
	networkRecv []float64
	timestamps  []string
}

// NewRollingBuffer returns an empty buffer capped at windowSize samples per
// channel. A non-positive windowSize falls back to DefaultWindowSize.
func NewRollingBuffer(windowSize int) *RollingBuffer {
	if windowSize <= 0 {
		windowSize = DefaultWindowSize
	}
	return &RollingBuffer{windowSize: windowSize}
}

// Append records one sample, evicting the oldest entry once the buffer is
// at capacity. All channels are kept the same length.
func (b *RollingBuffer) Append(s Sample) {
	b.cpu = push(b.cpu, s.CPU, b.windowSize)
	b.memory = push(b.memory, s.Memory, b.windowSize)
	b.diskIO = push(b.diskIO, s.DiskIO, b.windowSize)
	b.networkSent = push(b.networkSent, s.NetworkSent, b.windowSize)
	b.networkRecv = push(b.networkRecv, s.NetworkRecv, b.windowSize)
	b.timestamps = pushStr(b.timestamps, s.Timestamp, b.windowSize)
}

func push(s []float64, v float64, limit int) []float64 {
	s = append(s, v)
	if len(s) > limit {
		s = s[len(s)-limit:]
	}
	return s
}

func pushStr(s []string, v string, limit int) []string {
	s = append(s, v)
	if len(s) > limit {
		s = s[len(s)-limit:]
	}
	return s
}

// Len returns the number of samples currently buffered.
func (b *RollingBuffer) Len() int {
	return len(b.cpu)
}

// Series returns a defensive copy of the window for the named metric. Only
// the five streamed channels are addressable this way.
func (b *RollingBuffer) Series(metric MetricName) []float64 {
	switch metric {
	case MetricCPU:
		return append([]float64(nil), b.cpu...)
	case MetricMemory:
		return append([]float64(nil), b.memory...)
	case MetricDiskIO:
		return append([]float64(nil), b.diskIO...)
	case MetricNetworkSent:
		return append([]float64(nil), b.networkSent...)
	case MetricNetworkRecv:
		return append([]float64(nil), b.networkRecv...)
	default:
		return nil
	}
}

// Latest returns the most recently appended value for a metric and whether
// the buffer is non-empty.
func (b *RollingBuffer) Latest(metric MetricName) (float64, bool) {
	s := b.Series(metric)
	if len(s) == 0 {
		return 0, false
	}
	return s[len(s)-1], true
}
