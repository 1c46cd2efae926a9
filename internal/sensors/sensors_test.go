package sensors_test

import (
	"testing"

	"github.com/mutker/coolantd/internal/bus"
	"github.com/mutker/coolantd/internal/sensors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSupervisor struct {
	temps     []float64
	levels    []bool
	ignitions []bool
}

func (r *recordingSupervisor) HandleTemperature(t float64) {
	r.temps = append(r.temps, t)
}

func (r *recordingSupervisor) HandleLevel(ok bool) {
	r.levels = append(r.levels, ok)
}

func (r *recordingSupervisor) HandleIgnition(on bool) {
	r.ignitions = append(r.ignitions, on)
}

func temperatureFrame(tenths uint16) bus.Frame {
	var f bus.Frame
	f.ID = sensors.TemperatureFrameID
	f.Length = 2
	f.Data[0] = byte(tenths >> 8)
	f.Data[1] = byte(tenths & 0xFF)
	return f
}

func TestTemperatureDecode(t *testing.T) {
	b := bus.New(0x01)
	sup := &recordingSupervisor{}
	sensors.RegisterHandlers(b, sup)

	b.Inject(temperatureFrame(0x02BC)) // 700 tenths = 70.0C

	require.Len(t, sup.temps, 1)
	assert.InDelta(t, 70.0, sup.temps[0], 1e-9)
}

func TestTemperatureFrameTooShortIsIgnored(t *testing.T) {
	b := bus.New(0x01)
	sup := &recordingSupervisor{}
	sensors.RegisterHandlers(b, sup)

	var f bus.Frame
	f.ID = sensors.TemperatureFrameID
	f.Length = 1
	b.Inject(f)

	assert.Empty(t, sup.temps)
}

func TestLevelDecode(t *testing.T) {
	b := bus.New(0x01)
	sup := &recordingSupervisor{}
	sensors.RegisterHandlers(b, sup)

	var low bus.Frame
	low.ID = sensors.LevelFrameID
	low.Length = 1
	low.Data[0] = 0
	b.Inject(low)

	var ok bus.Frame
	ok.ID = sensors.LevelFrameID
	ok.Length = 1
	ok.Data[0] = 1
	b.Inject(ok)

	assert.Equal(t, []bool{false, true}, sup.levels)
}

func TestIgnitionDecode(t *testing.T) {
	b := bus.New(0x01)
	sup := &recordingSupervisor{}
	sensors.RegisterHandlers(b, sup)

	var on bus.Frame
	on.ID = sensors.IgnitionFrameID
	on.Length = 1
	on.Data[0] = 1
	b.Inject(on)

	var off bus.Frame
	off.ID = sensors.IgnitionFrameID
	off.Length = 1
	off.Data[0] = 0
	b.Inject(off)

	assert.Equal(t, []bool{true, false}, sup.ignitions)
}
