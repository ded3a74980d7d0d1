package engine

import (
	"sync"
	"testing"
)

func TestRegistryGetOrCreateIsStable(t *testing.T) {
	reg := NewRegistry(DefaultTunables())
	a := reg.GetOrCreate("agent-1")
	b := reg.GetOrCreate("agent-1")
	if a != b {
		t.Fatal("GetOrCreate should return the same compartment for the same agent")
	}
	if reg.Len() != 1 {
		t.Errorf("Len() = %d, want 1", reg.Len())
	}
}

func TestRegistryConcurrentAgentsDoNotShareState(t *testing.T) {
	reg := NewRegistry(DefaultTunables())
	var wg sync.WaitGroup

	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			state := reg.GetOrCreate(agentName(n))
			state.mu.Lock()
			state.Buffer.Append(Sample{CPU: float64(n)})
			state.mu.Unlock()
		}(i)
	}
	wg.Wait()

	if reg.Len() != 20 {
		t.Errorf("Len() = %d, want 20", reg.Len())
	}
}

func agentName(n int) string {
	return string(rune('a' + n))
}
