package state

import (
	"errors"
	"sync"
)

// 状态机接口
type Machine interface {
	ChangeState(state State) error
	Current() State
	AddTransition(from State, to State, condition func() bool) error
}

// 状态接口
type State interface {
	OnEnter()
	OnExit()
	OnUpdate()
	Name() string
}

// ErrTransitionNotAllowed is returned when a state transition is blocked
// by its registered condition.
var ErrTransitionNotAllowed = errors.New("state transition not allowed")

// 基础状态机实现
type BaseMachine struct {
	current     State
	transitions map[string]map[string]func() bool // from -> to -> condition
	mutex       sync.RWMutex
}

func NewBaseMachine(initial State) *BaseMachine {
	machine := &BaseMachine{
		current:     initial,
		transitions: make(map[string]map[string]func() bool),
	}
	initial.OnEnter()
	return machine
}

func (m *BaseMachine) ChangeState(newState State) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	currentName := m.current.Name()
	newName := newState.Name()

	if conditions, exists := m.transitions[currentName]; exists {
		if condition, exists := conditions[newName]; exists {
			if condition != nil && !condition() {
				return ErrTransitionNotAllowed
			}
		}
	}

	m.current.OnExit()
	m.current = newState
	m.current.OnEnter()

	return nil
}

func (m *BaseMachine) Current() State {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return m.current
}

func (m *BaseMachine) AddTransition(from State, to State, condition func() bool) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	fromName := from.Name()
	toName := to.Name()

	if _, exists := m.transitions[fromName]; !exists {
		m.transitions[fromName] = make(map[string]func() bool)
	}

	m.transitions[fromName][toName] = condition
	return nil
}

// Base carries the state name and provides default no-op hooks for
// concrete states to embed.
type Base struct {
	StateName string
}

func (s *Base) Name() string {
	return s.StateName
}

func (s *Base) OnEnter() {
	// 默认实现
}

func (s *Base) OnExit() {
	// 默认实现
}

func (s *Base) OnUpdate() {
	// 默认实现
}
