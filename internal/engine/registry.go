package engine

import "sync"

// AgentState is one agent's compartment: its rolling window, peripheral
// state machine, distributional-detector memory, and one forecast-detector
// memory per metric it is run against. Every field access goes through mu,
// so two different agents never contend for the same lock.
type AgentState struct {
	mu sync.Mutex

	tunables Tunables

	Buffer     *RollingBuffer
	Peripheral *PeripheralState
	DD         *DDState
	FD         map[MetricName]*FDState
}

func newAgentState(tunables Tunables) *AgentState {
	return &AgentState{
		tunables:   tunables,
		Buffer:     NewRollingBuffer(tunables.WindowSize),
		Peripheral: NewPeripheralState(tunables.PeripheralFailureThreshold),
		DD:         NewDDState(tunables.DDBaseContamination),
		FD:         make(map[MetricName]*FDState),
	}
}

func (a *AgentState) fdState(metric MetricName) *FDState {
	s, ok := a.FD[metric]
	if !ok {
		s = NewFDState(a.tunables.ARIMASeasonLength, a.tunables.WindowSize)
		a.FD[metric] = s
	}
	return s
}

// Registry is the explicit, injectable, mutex-guarded owner of every
// agent's compartment. Replaces the hidden process-global dicts
// (self.buffers, self.arima_models, ...) original_source keeps on the
// detector instance itself.
type Registry struct {
	mu       sync.Mutex
	tunables Tunables
	agents   map[string]*AgentState
}

// NewRegistry returns an empty registry. Every agent compartment it creates
// is seeded from tunables.
func NewRegistry(tunables Tunables) *Registry {
	return &Registry{tunables: tunables, agents: make(map[string]*AgentState)}
}

// GetOrCreate returns the compartment for agentID, creating it on first
// use. Safe for concurrent use by many agents at once.
func (r *Registry) GetOrCreate(agentID string) *AgentState {
	r.mu.Lock()
	defer r.mu.Unlock()
	state, ok := r.agents[agentID]
	if !ok {
		state = newAgentState(r.tunables)
		r.agents[agentID] = state
	}
	return state
}

// Len returns the number of agents currently tracked.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.agents)
}
