package statemachine_test

import (
	"testing"

	"github.com/mutker/coolantd/internal/statemachine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testState int

const (
	stateIdle testState = iota
	stateRunning
	stateError
)

type testEvent int

const (
	eventStart testEvent = iota
	eventStop
	eventFault
	eventReset
)

func newMachine(t *testing.T) (*statemachine.StateMachine[testState, testEvent], map[testState]bool, map[testState]bool) {
	t.Helper()
	entered := map[testState]bool{}
	exited := map[testState]bool{}

	sm := statemachine.New[testState, testEvent](stateIdle)
	sm.AddState(stateIdle, func() { entered[stateIdle] = true }, func() { exited[stateIdle] = true })
	sm.AddState(stateRunning, func() { entered[stateRunning] = true }, func() { exited[stateRunning] = true })
	sm.AddState(stateError, func() { entered[stateError] = true }, func() { exited[stateError] = true })

	return sm, entered, exited
}

func TestInitialState(t *testing.T) {
	sm, _, _ := newMachine(t)
	assert.Equal(t, stateIdle, sm.CurrentState())
}

func TestSimpleTransition(t *testing.T) {
	sm, entered, exited := newMachine(t)
	sm.AddTransition(statemachine.Transition[testState, testEvent]{From: stateIdle, Event: eventStart, To: stateRunning})

	result := sm.ProcessEvent(eventStart)

	require.True(t, result)
	assert.Equal(t, stateRunning, sm.CurrentState())
	assert.True(t, exited[stateIdle])
	assert.True(t, entered[stateRunning])
}

func TestInvalidTransitionLeavesStateUnchanged(t *testing.T) {
	sm, _, _ := newMachine(t)
	sm.AddTransition(statemachine.Transition[testState, testEvent]{From: stateIdle, Event: eventStart, To: stateRunning})

	result := sm.ProcessEvent(eventStop)

	assert.False(t, result)
	assert.Equal(t, stateIdle, sm.CurrentState())
}

func TestGuardCondition(t *testing.T) {
	sm, _, _ := newMachine(t)
	allow := false
	sm.AddTransition(statemachine.Transition[testState, testEvent]{
		From: stateIdle, Event: eventStart, To: stateRunning,
		Guard: func(testEvent) bool { return allow },
	})

	assert.False(t, sm.ProcessEvent(eventStart))
	assert.Equal(t, stateIdle, sm.CurrentState())

	allow = true
	assert.True(t, sm.ProcessEvent(eventStart))
	assert.Equal(t, stateRunning, sm.CurrentState())
}

func TestTransitionAction(t *testing.T) {
	sm, _, _ := newMachine(t)
	actionRan := false
	sm.AddTransition(statemachine.Transition[testState, testEvent]{
		From: stateIdle, Event: eventStart, To: stateRunning,
		Action: func() { actionRan = true },
	})

	sm.ProcessEvent(eventStart)

	assert.True(t, actionRan)
}

func TestMultipleTransitions(t *testing.T) {
	sm, _, _ := newMachine(t)
	sm.AddTransition(statemachine.Transition[testState, testEvent]{From: stateIdle, Event: eventStart, To: stateRunning})
	sm.AddTransition(statemachine.Transition[testState, testEvent]{From: stateRunning, Event: eventStop, To: stateIdle})
	sm.AddTransition(statemachine.Transition[testState, testEvent]{From: stateRunning, Event: eventFault, To: stateError})
	sm.AddTransition(statemachine.Transition[testState, testEvent]{From: stateError, Event: eventReset, To: stateIdle})

	require.True(t, sm.ProcessEvent(eventStart))
	assert.Equal(t, stateRunning, sm.CurrentState())

	require.True(t, sm.ProcessEvent(eventFault))
	assert.Equal(t, stateError, sm.CurrentState())

	require.True(t, sm.ProcessEvent(eventReset))
	assert.Equal(t, stateIdle, sm.CurrentState())
}
