package engine

import (
	"sort"
	"strconv"
)

// DefaultPeripheralFailureThreshold is the number of consecutive failures
// that trigger an alert when no configuration overrides it, matching
// original_source's PERIPHERAL_FAILURE_THRESHOLD.
const DefaultPeripheralFailureThreshold = 3

// PeripheralState tracks consecutive failure counts and last-seen status
// per device for one agent.
type PeripheralState struct {
	failureThreshold int
	failureCounts    map[string]int
	lastStates       map[string]string
}

// NewPeripheralState returns an empty state machine. A non-positive
// failureThreshold falls back to DefaultPeripheralFailureThreshold.
func NewPeripheralState(failureThreshold int) *PeripheralState {
	if failureThreshold <= 0 {
		failureThreshold = DefaultPeripheralFailureThreshold
	}
	return &PeripheralState{
		failureThreshold: failureThreshold,
		failureCounts:    make(map[string]int),
		lastStates:       make(map[string]string),
	}
}

// CheckPeripherals scans a sample's logs for peripheral-check entries and
// emits a finding for every device that has failed failureThreshold or more
// times in a row. Grounded directly on original_source's _check_peripherals.
// Devices named in one LogEntry's KeyValues are visited in sorted order:
// map iteration order is unspecified, and callers depend on a deterministic
// finding order.
func CheckPeripherals(state *PeripheralState, logs []LogEntry) []Finding {
	var findings []Finding

	for _, entry := range logs {
		if entry.BodyType != PeripheralCheckBodyType {
			continue
		}

		devices := make([]string, 0, len(entry.KeyValues))
		for device := range entry.KeyValues {
			devices = append(devices, device)
		}
		sort.Strings(devices)

		for _, device := range devices {
			status := entry.KeyValues[device]
			state.lastStates[device] = status

			switch status {
			case PeripheralStatusFailed:
				state.failureCounts[device]++
				count := state.failureCounts[device]
				if count >= state.failureThreshold {
					severity := SeverityWarning
					if count >= 5 {
						severity = SeverityCritical
					}
					score := float64(count) / 10
					if score > 1.0 {
						score = 1.0
					}
					findings = append(findings, Finding{
						Engine:     EnginePeripheral,
						Metric:     device,
						Value:      float64(count),
						Score:      score,
						Threshold:  float64(state.failureThreshold),
						Severity:   severity,
						Confidence: 0.95,
						Details:    device + " consecutive failures: " + strconv.Itoa(count),
					})
				}
			case PeripheralStatusConnected:
				state.failureCounts[device] = 0
			}
		}
	}

	return findings
}
