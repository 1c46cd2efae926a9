// Package pid implements a single-input/single-output PID controller with
// anti-windup, used by the supervisor to drive fan speed from coolant
// temperature.
package pid

import (
	"time"
)

// Parameters configures gain, setpoint and clamping limits.
type Parameters struct {
	Kp, Ki, Kd  float64
	Setpoint    float64
	OutputMin   float64
	OutputMax   float64
	IntegralMin float64
	IntegralMax float64
}

// Controller is a stateful PID loop. Not safe for concurrent use; callers
// serialize access (the supervisor does this via its own lock).
type Controller struct {
	params Parameters

	integral   float64
	lastError  float64
	derivative float64
	lastTime   time.Time
	firstRun   bool
}

// New constructs a Controller ready for its first Calculate call.
func New(params Parameters) *Controller {
	return &Controller{
		params:   params,
		firstRun: true,
	}
}

// defaultDt is used for the first Calculate call, when there is no prior
// timestamp to derive an interval from.
const defaultDt = 0.1

// Calculate advances the controller by one sample and returns the clamped
// control output. error is computed as setpoint - process: a process value
// above setpoint yields a negative error and an output pinned at OutputMin.
func (c *Controller) Calculate(process float64) float64 {
	now := time.Now()

	err := c.params.Setpoint - process

	dt := defaultDt
	if !c.firstRun {
		dt = now.Sub(c.lastTime).Seconds()
	}

	pTerm := c.params.Kp * err

	c.integral = clamp(c.integral+err*dt, c.params.IntegralMin, c.params.IntegralMax)
	iTerm := c.params.Ki * c.integral

	if !c.firstRun && dt > 0 {
		c.derivative = (err - c.lastError) / dt
	}
	dTerm := c.params.Kd * c.derivative

	output := clamp(pTerm+iTerm+dTerm, c.params.OutputMin, c.params.OutputMax)

	c.lastError = err
	c.lastTime = now
	c.firstRun = false

	return output
}

// Reset clears accumulated state without touching the configured setpoint
// or gains.
func (c *Controller) Reset() {
	c.integral = 0
	c.lastError = 0
	c.derivative = 0
	c.firstRun = true
}

// SetSetpoint updates the target value only; controller state is preserved.
func (c *Controller) SetSetpoint(setpoint float64) {
	c.params.Setpoint = setpoint
}

// SetParameters replaces the full parameter set.
func (c *Controller) SetParameters(params Parameters) {
	c.params = params
}

func clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
