package pid_test

import (
	"testing"

	"github.com/mutker/coolantd/internal/pid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func baseParams() pid.Parameters {
	return pid.Parameters{
		Kp: 1.0, Ki: 0.1, Kd: 0.01,
		Setpoint:    50.0,
		OutputMin:   0.0,
		OutputMax:   100.0,
		IntegralMin: -100.0,
		IntegralMax: 100.0,
	}
}

func TestProportionalOnly(t *testing.T) {
	params := baseParams()
	params.Ki = 0
	params.Kd = 0
	controller := pid.New(params)

	output := controller.Calculate(40.0)
	assert.InDelta(t, 10.0, output, 1e-6)
}

func TestOutputClamping(t *testing.T) {
	params := baseParams()
	params.Kp = 10.0
	params.Ki = 0
	params.Kd = 0
	controller := pid.New(params)

	assert.InDelta(t, 100.0, controller.Calculate(0.0), 1e-9)

	controller2 := pid.New(params)
	assert.InDelta(t, 0.0, controller2.Calculate(100.0), 1e-9)
}

func TestIntegralClamping(t *testing.T) {
	params := baseParams()
	params.Ki = 1.0
	params.IntegralMax = 5.0
	params.IntegralMin = -5.0
	controller := pid.New(params)

	for i := 0; i < 50; i++ {
		controller.Calculate(0.0)
	}
	output := controller.Calculate(0.0)
	assert.LessOrEqual(t, output, params.OutputMax)
	// Constant error 50: P = 50, integral held at IntegralMax = 5, D = 0.
	assert.InDelta(t, 55.0, output, 1e-9)
}

func TestResetThenCalculateAtSetpointIsZero(t *testing.T) {
	params := baseParams()
	controller := pid.New(params)

	controller.Calculate(40.0)
	controller.Calculate(45.0)
	controller.Calculate(48.0)

	controller.Reset()

	output := controller.Calculate(params.Setpoint)
	assert.InDelta(t, 0.0, output, 1e-6)
}

func TestSetSetpointDoesNotResetState(t *testing.T) {
	params := baseParams()
	params.Ki = 0
	params.Kd = 0
	controller := pid.New(params)

	output1 := controller.Calculate(50.0)
	assert.InDelta(t, 0.0, output1, 1e-6)

	controller.SetSetpoint(60.0)
	output2 := controller.Calculate(50.0)
	require.Greater(t, output2, 0.0)
}

func TestSignConventionOutputPinsToMinWhenAboveSetpoint(t *testing.T) {
	params := baseParams()
	params.Ki = 0
	params.Kd = 0
	params.OutputMin = 0
	params.OutputMax = 100
	controller := pid.New(params)

	// Process value above setpoint yields a negative error, clamped at OutputMin.
	output := controller.Calculate(90.0)
	assert.InDelta(t, params.OutputMin, output, 1e-9)
}
