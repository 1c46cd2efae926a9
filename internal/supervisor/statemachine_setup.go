package supervisor

import (
	"time"

	"github.com/mutker/coolantd/internal/statemachine"
)

// buildStateMachine wires the five supervisor states and their transitions.
// Entry/exit actions and guards run with s.mu already held, since the only
// caller is processEventLocked.
func (s *Supervisor) buildStateMachine() *statemachine.StateMachine[SystemState, SystemEvent] {
	sm := statemachine.New[SystemState, SystemEvent](StateOff)

	sm.AddState(StateOff, s.enterOff, nil)
	sm.AddState(StateInitializing, s.enterInitializing, s.exitInitializing)
	sm.AddState(StateRunning, s.enterRunning, nil)
	sm.AddState(StateError, s.enterError, nil)
	sm.AddState(StateEmergencyStop, s.enterEmergencyStop, nil)

	sm.AddTransition(statemachine.Transition[SystemState, SystemEvent]{
		From: StateOff, Event: EventIgnitionOn, To: StateInitializing,
		Guard: func(SystemEvent) bool { return s.levelOk },
	})
	sm.AddTransition(statemachine.Transition[SystemState, SystemEvent]{
		From: StateInitializing, Event: EventInitComplete, To: StateRunning,
	})
	sm.AddTransition(statemachine.Transition[SystemState, SystemEvent]{
		From: StateRunning, Event: EventIgnitionOff, To: StateOff,
	})
	sm.AddTransition(statemachine.Transition[SystemState, SystemEvent]{
		From: StateRunning, Event: EventLowCoolant, To: StateError,
	})
	sm.AddTransition(statemachine.Transition[SystemState, SystemEvent]{
		From: StateRunning, Event: EventCriticalTemp, To: StateEmergencyStop,
	})
	// The over-temperature debounce (currentTemp > TEMP_MAX for >= 10s)
	// also lands in ERROR, distinct from LOW_COOLANT so diagnostics can
	// tell the two faults apart; the transition table names only the event
	// LOW_COOLANT uses for this edge, not the temperature one, so OVER_TEMP
	// is introduced here for the same From/To pair.
	sm.AddTransition(statemachine.Transition[SystemState, SystemEvent]{
		From: StateRunning, Event: EventOverTemp, To: StateError,
	})
	sm.AddTransition(statemachine.Transition[SystemState, SystemEvent]{
		From: StateError, Event: EventErrorCleared, To: StateInitializing,
		Guard: func(SystemEvent) bool { return s.ignition },
	})
	sm.AddTransition(statemachine.Transition[SystemState, SystemEvent]{
		From: StateEmergencyStop, Event: EventTempNormal, To: StateError,
	})

	return sm
}

func (s *Supervisor) enterOff() {
	s.pumpOn = false
	s.fanOn = false
	s.fanSpeed = 0
	s.fan.Reset()
	s.lowLevelSince = nil
	s.overTempSince = nil
	s.updateOutputsLocked()
}

func (s *Supervisor) enterInitializing() {
	s.pumpOn = true
	now := time.Now()
	s.pumpStartInstant = &now
	s.updateOutputsLocked()
}

func (s *Supervisor) exitInitializing() {
	s.pumpStartInstant = nil
}

func (s *Supervisor) enterRunning() {
	s.lowLevelSince = nil
	s.overTempSince = nil
}

func (s *Supervisor) enterError() {
	s.pumpOn = false
	s.fanOn = false
	s.fanSpeed = 0
	s.fan.Reset()
	s.updateOutputsLocked()
}

func (s *Supervisor) enterEmergencyStop() {
	s.pumpOn = false
	s.fanOn = true
	s.fanSpeed = 100
	s.updateOutputsLocked()
}
