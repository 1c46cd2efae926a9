// Package supervisor instantiates the cooling-specific state machine, owns
// the PID fan controller, runs the 10 Hz control loop, and emits actuator
// frames over the message bus.
package supervisor

import (
	"sync"
	"time"

	"github.com/mutker/coolantd/internal/bus"
	"github.com/mutker/coolantd/internal/logger"
	"github.com/mutker/coolantd/internal/pid"
	"github.com/mutker/coolantd/internal/statemachine"
)

// TickPeriod is the fixed control-loop cadence.
const TickPeriod = 100 * time.Millisecond

// Config is the subset of configuration the supervisor needs. It is
// satisfied by *config.Config and lets this package stay free of a direct
// dependency on the config package's loading mechanics.
type Config interface {
	GetSetpoint() float64
	IsDebug() bool
	GetTempMax() float64
	GetTempCritical() float64
	GetFanStart() float64
	GetFanHysteresis() float64
	GetPumpInitTimeoutSeconds() float64
	GetLowLevelTimeoutSeconds() float64
	GetOverTempTimeoutSeconds() float64
	GetPIDGains() (kp, ki, kd float64)
	GetPIDOutputLimits() (min, max float64)
	GetPIDIntegralLimits() (min, max float64)
}

// Diagnostics receives a read-only stream of supervisor events for local
// journaling. Implementations must not block the caller for long; the
// no-op implementation in internal/diagnostics is used when disabled.
type Diagnostics interface {
	RecordTransition(from, to SystemState, event SystemEvent)
	RecordSafetyEvent(kind string, started bool)
	RecordBusCounters(tx, rx, drop uint64)
}

// Supervisor is the core's top-level owner: MessageBus and PID are owned
// exclusively by it, and StateMachine is owned by it in turn.
type Supervisor struct {
	mu sync.Mutex

	sysState    SystemState
	currentTemp float64
	levelOk     bool
	ignition    bool
	pumpOn      bool
	fanOn       bool
	fanSpeed    int
	debugMode   bool

	pumpStartInstant *time.Time
	lowLevelSince    *time.Time
	overTempSince    *time.Time

	cfg  Config
	bus  *bus.Bus
	sm   *statemachine.StateMachine[SystemState, SystemEvent]
	fan  *pid.Controller
	diag Diagnostics

	pumpInitTimeout time.Duration
	lowLevelTimeout time.Duration
	overTempTimeout time.Duration

	running              bool
	done                 chan struct{}
	wg                   sync.WaitGroup
	lastDebugBusSnapshot time.Time
}

// noopDiagnostics discards every event; used when no diagnostics journal is
// configured.
type noopDiagnostics struct{}

func (noopDiagnostics) RecordTransition(SystemState, SystemState, SystemEvent) {
}

func (noopDiagnostics) RecordSafetyEvent(string, bool) {
}

func (noopDiagnostics) RecordBusCounters(uint64, uint64, uint64) {
}

// New constructs a Supervisor starting in state OFF with pump, fan and
// ignition all clear, owning b and a PID controller seeded from cfg. If
// diag is nil, diagnostics events are discarded.
func New(cfg Config, b *bus.Bus, diag Diagnostics) *Supervisor {
	if diag == nil {
		diag = noopDiagnostics{}
	}

	kp, ki, kd := cfg.GetPIDGains()
	outMin, outMax := cfg.GetPIDOutputLimits()
	intMin, intMax := cfg.GetPIDIntegralLimits()

	s := &Supervisor{
		sysState:    StateOff,
		currentTemp: 25.0,
		levelOk:     true,
		ignition:    false,
		debugMode:   cfg.IsDebug(),

		cfg: cfg,
		bus: b,
		fan: pid.New(pid.Parameters{
			Kp: kp, Ki: ki, Kd: kd,
			Setpoint:    cfg.GetSetpoint(),
			OutputMin:   outMin,
			OutputMax:   outMax,
			IntegralMin: intMin,
			IntegralMax: intMax,
		}),
		diag: diag,

		pumpInitTimeout: durationFromSeconds(cfg.GetPumpInitTimeoutSeconds()),
		lowLevelTimeout: durationFromSeconds(cfg.GetLowLevelTimeoutSeconds()),
		overTempTimeout: durationFromSeconds(cfg.GetOverTempTimeoutSeconds()),
	}

	s.sm = s.buildStateMachine()

	return s
}

func durationFromSeconds(seconds float64) time.Duration {
	return time.Duration(seconds * float64(time.Second))
}

// Start spawns the control-loop tick worker. Idempotent.
func (s *Supervisor) Start() {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	s.done = make(chan struct{})
	s.mu.Unlock()

	s.wg.Add(1)
	go s.tickLoop()
}

// Stop clears the running flag, joins the tick worker, and then stops the
// bus. Bus.Stop is idempotent, so a caller that also stops the bus is safe.
func (s *Supervisor) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	close(s.done)
	s.mu.Unlock()

	s.wg.Wait()
	s.bus.Stop()
}

// State returns the current supervisor state.
func (s *Supervisor) State() SystemState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sysState
}

// HandleIgnition records the ignition input and posts IGNITION_ON or
// IGNITION_OFF; the sensors ignition decoder calls it for each 0x102 frame.
// It only acts on an edge.
func (s *Supervisor) HandleIgnition(on bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if on == s.ignition {
		return
	}
	s.ignition = on

	if on {
		s.processEventLocked(EventIgnitionOn)
	} else {
		s.processEventLocked(EventIgnitionOff)
	}
}

// HandleLevel updates levelOk and records when a low-level condition
// starts; the periodic tick debounces it before posting LOW_COOLANT.
func (s *Supervisor) HandleLevel(ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if ok == s.levelOk {
		return
	}
	s.levelOk = ok

	if !s.levelOk && s.sysState == StateRunning {
		// Edge detected; let the tick worker's debounce own the actual
		// transition so LOW_COOLANT always respects LOW_LEVEL_TIMEOUT.
		if s.lowLevelSince == nil {
			now := time.Now()
			s.lowLevelSince = &now
		}
	} else if s.levelOk {
		s.lowLevelSince = nil
	}
}

// HandleTemperature updates currentTemp, handles the two immediate
// preemptions (critical-temperature escalation and recovery-temperature
// de-escalation), and drives edge-triggered fan control while RUNNING.
func (s *Supervisor) HandleTemperature(t float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.currentTemp = t

	switch s.sysState {
	case StateRunning:
		if t > s.cfg.GetTempCritical() {
			s.processEventLocked(EventCriticalTemp)
		}
	case StateEmergencyStop:
		if t < s.cfg.GetTempMax() {
			s.processEventLocked(EventTempNormal)
		}
	}

	// Re-read sysState: the switch above may have just transitioned the
	// supervisor out of RUNNING. Using the post-transition state (rather
	// than the value captured before ProcessEvent, as the reference
	// firmware does) keeps EMERGENCY_STOP's fanSpeed=100 invariant from
	// being clobbered by a stale fan-control pass in the same call.
	if s.sysState == StateRunning {
		fanStart := s.cfg.GetFanStart()
		hysteresis := s.cfg.GetFanHysteresis()

		switch {
		case t > fanStart:
			s.fanOn = true
			s.fanSpeed = clampInt(roundInt(s.fan.Calculate(t)), 0, 100)
		case t < fanStart-hysteresis:
			s.fanOn = false
			s.fanSpeed = 0
			s.fan.Reset()
		}
		s.updateOutputsLocked()
	}
}

func (s *Supervisor) updateOutputsLocked() {
	pumpByte := byte(0)
	if s.pumpOn {
		pumpByte = 1
	}
	if ok := s.bus.SendMessage(PumpFrameID, []byte{pumpByte}, 1); !ok {
		logger.Debug().Msg("pump frame dropped: transmit queue full")
	}

	fanOnByte := byte(0)
	if s.fanOn {
		fanOnByte = 1
	}
	if ok := s.bus.SendMessage(FanFrameID, []byte{fanOnByte, byte(s.fanSpeed)}, 2); !ok {
		logger.Debug().Msg("fan frame dropped: transmit queue full")
	}
}

func (s *Supervisor) processEventLocked(event SystemEvent) bool {
	from := s.sysState
	ok := s.sm.ProcessEvent(event)
	if ok {
		s.sysState = s.sm.CurrentState()
		s.diag.RecordTransition(from, s.sysState, event)
	}
	return ok
}

func clampInt(v, min, max int) int {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

func roundInt(v float64) int {
	if v < 0 {
		return int(v - 0.5)
	}
	return int(v + 0.5)
}
