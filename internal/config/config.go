package config

import (
	"flag"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

// Config holds every tunable of the cooling control core: PID gains,
// thresholds, timeouts, and startup switches. Values are resolved from
// defaults, then an optional TOML file, then command-line flags, in that
// order of increasing precedence.
type Config struct {
	Setpoint float64 `mapstructure:"setpoint"`
	Debug    bool    `mapstructure:"debug"`
	Verbose  bool    `mapstructure:"verbose"`
	Test     bool    `mapstructure:"test"`

	TempMax       float64 `mapstructure:"temp_max"`
	TempCritical  float64 `mapstructure:"temp_critical"`
	FanStart      float64 `mapstructure:"fan_start"`
	FanHysteresis float64 `mapstructure:"fan_hysteresis"`

	PumpInitTimeoutSeconds float64 `mapstructure:"pump_init_timeout"`
	LowLevelTimeoutSeconds float64 `mapstructure:"low_level_timeout"`
	OverTempTimeoutSeconds float64 `mapstructure:"over_temp_timeout"`

	PIDKp          float64 `mapstructure:"pid_kp"`
	PIDKi          float64 `mapstructure:"pid_ki"`
	PIDKd          float64 `mapstructure:"pid_kd"`
	PIDOutputMin   float64 `mapstructure:"pid_output_min"`
	PIDOutputMax   float64 `mapstructure:"pid_output_max"`
	PIDIntegralMin float64 `mapstructure:"pid_integral_min"`
	PIDIntegralMax float64 `mapstructure:"pid_integral_max"`

	DiagnosticsPath string `mapstructure:"diagnostics_path"`
}

const (
	defaultSetpoint      = 65.0
	defaultTempMax       = 75.0
	defaultTempCritical  = 85.0
	defaultFanStart      = 60.0
	defaultFanHysteresis = 5.0

	defaultPumpInitTimeout = 2.0
	defaultLowLevelTimeout = 3.0
	defaultOverTempTimeout = 10.0

	defaultPIDKp          = 2.5
	defaultPIDKi          = 0.5
	defaultPIDKd          = 0.1
	defaultPIDOutputMin   = 0.0
	defaultPIDOutputMax   = 100.0
	defaultPIDIntegralMin = -50.0
	defaultPIDIntegralMax = 50.0
)

// defaults returns a Config populated with the reference thresholds and
// gains the daemon ships with out of the box.
func defaults() *Config {
	return &Config{
		Setpoint:      defaultSetpoint,
		TempMax:       defaultTempMax,
		TempCritical:  defaultTempCritical,
		FanStart:      defaultFanStart,
		FanHysteresis: defaultFanHysteresis,

		PumpInitTimeoutSeconds: defaultPumpInitTimeout,
		LowLevelTimeoutSeconds: defaultLowLevelTimeout,
		OverTempTimeoutSeconds: defaultOverTempTimeout,

		PIDKp:          defaultPIDKp,
		PIDKi:          defaultPIDKi,
		PIDKd:          defaultPIDKd,
		PIDOutputMin:   defaultPIDOutputMin,
		PIDOutputMax:   defaultPIDOutputMax,
		PIDIntegralMin: defaultPIDIntegralMin,
		PIDIntegralMax: defaultPIDIntegralMax,
	}
}

// Load resolves configuration from defaults, an optional /etc/coolantd.toml,
// and command-line flags in args (excluding the program name), in that
// order of increasing precedence.
func Load(args []string) (*Config, error) {
	cfg := defaults()

	fs := flag.NewFlagSet("coolantd", flag.ContinueOnError)
	setpointFlag := fs.Float64("setpoint", cfg.Setpoint, "Temperature setpoint in Celsius")
	debugFlag := fs.Bool("debug", cfg.Debug, "Enable per-tick debug status logging")
	verboseFlag := fs.Bool("verbose", cfg.Verbose, "Enable verbose logging")
	testFlag := fs.Bool("test", cfg.Test, "Run an internal scripted scenario then exit")
	diagFlag := fs.String("diagnostics", cfg.DiagnosticsPath, "Path to the diagnostics SQLite journal (empty disables it)")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	v := viper.New()
	v.SetConfigName("coolantd")
	v.SetConfigType("toml")
	v.AddConfigPath("/etc")
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetDefault("setpoint", cfg.Setpoint)
	v.SetDefault("temp_max", cfg.TempMax)
	v.SetDefault("temp_critical", cfg.TempCritical)
	v.SetDefault("fan_start", cfg.FanStart)
	v.SetDefault("fan_hysteresis", cfg.FanHysteresis)
	v.SetDefault("pump_init_timeout", cfg.PumpInitTimeoutSeconds)
	v.SetDefault("low_level_timeout", cfg.LowLevelTimeoutSeconds)
	v.SetDefault("over_temp_timeout", cfg.OverTempTimeoutSeconds)
	v.SetDefault("pid_kp", cfg.PIDKp)
	v.SetDefault("pid_ki", cfg.PIDKi)
	v.SetDefault("pid_kd", cfg.PIDKd)
	v.SetDefault("pid_output_min", cfg.PIDOutputMin)
	v.SetDefault("pid_output_max", cfg.PIDOutputMax)
	v.SetDefault("pid_integral_min", cfg.PIDIntegralMin)
	v.SetDefault("pid_integral_max", cfg.PIDIntegralMax)
	v.SetDefault("diagnostics_path", cfg.DiagnosticsPath)

	// Command-line flags win over file values: only overlay flags the user
	// actually set (fs.Visit, not VisitAll).
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "setpoint":
			v.Set("setpoint", *setpointFlag)
		case "debug":
			v.Set("debug", *debugFlag)
		case "verbose":
			v.Set("verbose", *verboseFlag)
		case "test":
			v.Set("test", *testFlag)
		case "diagnostics":
			v.Set("diagnostics_path", *diagFlag)
		}
	})
	v.Set("debug", *debugFlag || v.GetBool("debug"))
	v.Set("verbose", *verboseFlag || v.GetBool("verbose"))
	v.Set("test", *testFlag || v.GetBool("test"))

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if cfg.Debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else if cfg.Verbose {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	}

	return cfg, nil
}

// LoadFromArgs is a convenience wrapper for cmd/coolantd, resolving flags
// from os.Args[1:].
func LoadFromArgs() (*Config, error) {
	return Load(os.Args[1:])
}
