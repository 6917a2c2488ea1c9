package workflow

import (
	"fmt"
	"sort"
)

// StateMachineBuilder builds configured state machines
type StateMachineBuilder interface {
	// Configure returns the configuration of the given source state
	Configure(state State) StateConfiguration

	// Build creates an independent machine starting in initialState
	Build(initialState State) StateMachine
}

// StateConfiguration configures the transitions out of one state
type StateConfiguration interface {
	// Permit allows trigger to move the machine to toState
	Permit(trigger Trigger, toState State) StateConfiguration
}

type stateConfig struct {
	transitions map[Trigger]State
}

type stateMachineBuilder struct {
	configurations map[State]*stateConfig
}

type stateMachine struct {
	current        State
	configurations map[State]*stateConfig
}

// NewBuilder creates a new state machine builder
func NewBuilder() StateMachineBuilder {
	return &stateMachineBuilder{configurations: make(map[State]*stateConfig)}
}

// Configure panics on an unknown state; configurations are static tables
func (b *stateMachineBuilder) Configure(state State) StateConfiguration {
	if !state.IsValid() {
		panic(fmt.Sprintf("invalid state: %s", state))
	}
	cfg, ok := b.configurations[state]
	if !ok {
		cfg = &stateConfig{transitions: make(map[Trigger]State)}
		b.configurations[state] = cfg
	}
	return cfg
}

// Build copies the configuration so machines never share mutable tables
func (b *stateMachineBuilder) Build(initialState State) StateMachine {
	if !initialState.IsValid() {
		panic(fmt.Sprintf("invalid initial state: %s", initialState))
	}
	configs := make(map[State]*stateConfig, len(b.configurations))
	for state, cfg := range b.configurations {
		transitions := make(map[Trigger]State, len(cfg.transitions))
		for trigger, to := range cfg.transitions {
			transitions[trigger] = to
		}
		configs[state] = &stateConfig{transitions: transitions}
	}
	return &stateMachine{current: initialState, configurations: configs}
}

func (c *stateConfig) Permit(trigger Trigger, toState State) StateConfiguration {
	if !toState.IsValid() {
		panic(fmt.Sprintf("invalid target state: %s", toState))
	}
	c.transitions[trigger] = toState
	return c
}

func (m *stateMachine) State() State {
	return m.current
}

func (m *stateMachine) CanFire(trigger Trigger) bool {
	cfg, ok := m.configurations[m.current]
	if !ok {
		return false
	}
	_, ok = cfg.transitions[trigger]
	return ok
}

func (m *stateMachine) Fire(trigger Trigger) error {
	cfg, ok := m.configurations[m.current]
	if !ok {
		return fmt.Errorf("%w: cannot %s a record that is %s", ErrInvalidTransition, trigger, m.current)
	}
	to, ok := cfg.transitions[trigger]
	if !ok {
		return fmt.Errorf("%w: cannot %s a record that is %s", ErrInvalidTransition, trigger, m.current)
	}
	m.current = to
	return nil
}

func (m *stateMachine) PermittedTriggers() []Trigger {
	cfg, ok := m.configurations[m.current]
	if !ok {
		return []Trigger{}
	}
	triggers := make([]Trigger, 0, len(cfg.transitions))
	for trigger := range cfg.transitions {
		triggers = append(triggers, trigger)
	}
	sort.Slice(triggers, func(i, j int) bool { return triggers[i] < triggers[j] })
	return triggers
}
