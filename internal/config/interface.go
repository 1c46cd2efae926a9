package config

// Provider exposes the resolved configuration to the rest of the daemon
// without exposing how it was loaded. Values are immutable after Load.
type Provider interface {
	GetSetpoint() float64
	IsDebug() bool
	IsTest() bool

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

	GetDiagnosticsPath() string
}

var _ Provider = (*Config)(nil)

func (c *Config) GetSetpoint() float64 {
	return c.Setpoint
}

func (c *Config) IsDebug() bool {
	return c.Debug
}

func (c *Config) IsTest() bool {
	return c.Test
}

func (c *Config) GetTempMax() float64 {
	return c.TempMax
}

func (c *Config) GetTempCritical() float64 {
	return c.TempCritical
}

func (c *Config) GetFanStart() float64 {
	return c.FanStart
}

func (c *Config) GetFanHysteresis() float64 {
	return c.FanHysteresis
}

func (c *Config) GetPumpInitTimeoutSeconds() float64 {
	return c.PumpInitTimeoutSeconds
}

func (c *Config) GetLowLevelTimeoutSeconds() float64 {
	return c.LowLevelTimeoutSeconds
}

func (c *Config) GetOverTempTimeoutSeconds() float64 {
	return c.OverTempTimeoutSeconds
}

func (c *Config) GetPIDGains() (kp, ki, kd float64) {
	return c.PIDKp, c.PIDKi, c.PIDKd
}

func (c *Config) GetPIDOutputLimits() (min, max float64) {
	return c.PIDOutputMin, c.PIDOutputMax
}

func (c *Config) GetPIDIntegralLimits() (min, max float64) {
	return c.PIDIntegralMin, c.PIDIntegralMax
}

func (c *Config) GetDiagnosticsPath() string {
	return c.DiagnosticsPath
}
