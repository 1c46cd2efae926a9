package supervisor

import (
	"time"

	"github.com/mutker/coolantd/internal/logger"
)

// tickLoop drives the 100ms control loop using absolute-deadline
// scheduling: each iteration computes its own next deadline from the
// previous one rather than sleeping a fixed relative duration, so a slow
// tick does not push subsequent ticks later and drift accumulate.
func (s *Supervisor) tickLoop() {
	defer s.wg.Done()

	next := time.Now().Add(TickPeriod)

	for {
		timer := time.NewTimer(time.Until(next))
		select {
		case <-s.done:
			timer.Stop()
			return
		case <-timer.C:
		}

		s.tick()

		next = next.Add(TickPeriod)
		if now := time.Now(); next.Before(now) {
			next = now
		}
	}
}

// tick performs one control-loop iteration: pump-init timeout, then the
// safety checks in order (critical, low coolant, over-temperature),
// returning after the first one that fires, mirroring the reference
// firmware's early-return-per-condition structure so at most one transition
// fires per tick.
func (s *Supervisor) tick() {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.sysState {
	case StateInitializing:
		s.checkPumpInit()
	case StateRunning:
		if s.checkCriticalTemp() {
			return
		}
		if s.checkLowCoolant() {
			return
		}
		s.checkOverTemp()
	case StateError:
		s.checkErrorRecovery()
	}

	s.emitBusCounters()
	s.emitDebugStatus()
}

func (s *Supervisor) checkPumpInit() {
	if s.pumpStartInstant == nil {
		return
	}
	if time.Since(*s.pumpStartInstant) >= s.pumpInitTimeout {
		s.processEventLocked(EventInitComplete)
	}
}

// checkCriticalTemp returns true if it fired a transition. Without this,
// a critical reading that arrives while INITIALIZING only sets currentTemp
// (HandleTemperature's switch ignores non-RUNNING/non-EMERGENCY_STOP
// states); once checkPumpInit later promotes the machine to RUNNING, the
// escalation would otherwise wait for the next RX temperature frame
// instead of firing on this tick.
func (s *Supervisor) checkCriticalTemp() bool {
	if s.currentTemp > s.cfg.GetTempCritical() {
		s.processEventLocked(EventCriticalTemp)
		return true
	}
	return false
}

// checkLowCoolant returns true if it fired a transition, so the caller
// skips the remaining safety checks for this tick.
func (s *Supervisor) checkLowCoolant() bool {
	if s.lowLevelSince == nil {
		return false
	}
	if time.Since(*s.lowLevelSince) < s.lowLevelTimeout {
		return false
	}

	s.diag.RecordSafetyEvent("low_coolant", true)
	s.processEventLocked(EventLowCoolant)
	return true
}

func (s *Supervisor) checkOverTemp() {
	if s.currentTemp <= s.cfg.GetTempMax() {
		s.overTempSince = nil
		return
	}

	if s.overTempSince == nil {
		now := time.Now()
		s.overTempSince = &now
		return
	}

	if time.Since(*s.overTempSince) >= s.overTempTimeout {
		s.diag.RecordSafetyEvent("over_temp", true)
		s.processEventLocked(EventOverTemp)
	}
}

// checkErrorRecovery posts ERROR_CLEARED once the fault condition has
// cleared and ignition is still on. If ignition is off, the supervisor
// remains latched in ERROR: the transition table has no ERROR-to-OFF edge,
// only a RUNNING-to-OFF one.
func (s *Supervisor) checkErrorRecovery() {
	if s.levelOk && s.currentTemp < s.cfg.GetTempMax() && s.ignition {
		s.processEventLocked(EventErrorCleared)
	}
}

func (s *Supervisor) emitBusCounters() {
	if time.Since(s.lastDebugBusSnapshot) < time.Second {
		return
	}
	s.lastDebugBusSnapshot = time.Now()
	s.diag.RecordBusCounters(s.bus.TxCount(), s.bus.RxCount(), s.bus.DropCount())
}

// emitDebugStatus logs one status line per tick when --debug is set,
// reimplementing the reference firmware's controlLoop() debug print as a
// structured log line instead of a raw stdout write.
func (s *Supervisor) emitDebugStatus() {
	if !s.debugMode {
		return
	}
	logger.Debug().
		Str("state", s.sysState.String()).
		Float64("temp", s.currentTemp).
		Bool("pump", s.pumpOn).
		Bool("fan", s.fanOn).
		Int("fan_speed", s.fanSpeed).
		Uint64("tx", s.bus.TxCount()).
		Uint64("rx", s.bus.RxCount()).
		Uint64("drop", s.bus.DropCount()).
		Msg("status")
}
