// Command coolantd is the liquid cooling loop's control daemon: it owns the
// message bus, the safety-and-control state machine, and the fan PID loop,
// and journals notable events to a local diagnostics database.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mutker/coolantd/internal/bus"
	"github.com/mutker/coolantd/internal/config"
	"github.com/mutker/coolantd/internal/diagnostics"
	coolerrors "github.com/mutker/coolantd/internal/errors"
	"github.com/mutker/coolantd/internal/lockfile"
	"github.com/mutker/coolantd/internal/logger"
	"github.com/mutker/coolantd/internal/sensors"
	"github.com/mutker/coolantd/internal/supervisor"
)

// nodeID identifies this daemon's node on the message bus.
const nodeID = 0x01

func main() {
	cfg, err := config.LoadFromArgs()
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Init(cfg.Debug, cfg.Verbose, logger.IsService())

	if err := lockfile.Acquire(); err != nil {
		var coolErr coolerrors.Error
		if errors.As(err, &coolErr) {
			logger.FatalWithCode(coolErr).Send()
		} else {
			logger.Fatal().Err(err).Msg("failed to acquire lockfile")
		}
	}
	defer func() {
		if err := lockfile.Release(); err != nil {
			logger.Error().Err(err).Msg("failed to release lockfile")
		}
	}()

	diagCfg := diagnostics.DefaultConfig()
	diagCfg.Enabled = cfg.GetDiagnosticsPath() != ""
	diagCfg.Path = cfg.GetDiagnosticsPath()

	diag, err := diagnostics.New(diagCfg, logger.New())
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open diagnostics journal")
	}
	defer func() {
		if err := diag.Close(); err != nil {
			logger.Error().Err(err).Msg("failed to close diagnostics journal")
		}
	}()

	b := bus.New(nodeID)
	sup := supervisor.New(cfg, b, supervisorDiagnostics{diag})
	sensors.RegisterHandlers(b, sup)

	b.Start()
	sup.Start()

	if cfg.IsTest() {
		runScriptedScenario(b, time.Duration(cfg.GetPumpInitTimeoutSeconds()*float64(time.Second)))
		logger.Info().Str("state", sup.State().String()).Msg("scripted scenario complete")
		sup.Stop()
		b.Stop()
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	go handleSignals(cancel)
	<-ctx.Done()

	logger.Info().Msg("shutting down")
	sup.Stop()
	b.Stop()
}

func handleSignals(cancel context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	<-sigs
	logger.Info().Msg("received termination signal")
	cancel()
}

// runScriptedScenario reimplements the reference firmware's --test mode: it
// feeds ignition and a temperature ramp through the bus as if they had
// arrived from real sensors (coolant level keeps its default of OK),
// waiting out pumpInit so the ramp exercises a full cold-start into RUNNING
// with fan control engaging.
func runScriptedScenario(b *bus.Bus, pumpInit time.Duration) {
	injectIgnition(b, true)
	time.Sleep(pumpInit + 2*supervisor.TickPeriod)

	base := 550 // 55.0C
	for i := 0; i < 40; i++ {
		tenths := base + i*5 + rand.Intn(10)
		injectTemperature(b, uint16(tenths))
		time.Sleep(20 * time.Millisecond)
	}
}

func injectIgnition(b *bus.Bus, on bool) {
	var f bus.Frame
	f.ID = sensors.IgnitionFrameID
	f.Length = 1
	if on {
		f.Data[0] = 1
	}
	b.Inject(f)
}

func injectTemperature(b *bus.Bus, tenths uint16) {
	var f bus.Frame
	f.ID = sensors.TemperatureFrameID
	f.Length = 2
	f.Data[0] = byte(tenths >> 8)
	f.Data[1] = byte(tenths & 0xFF)
	b.Inject(f)
}

// supervisorDiagnostics adapts a diagnostics.Collector to the concrete
// supervisor.Diagnostics interface; it lives here rather than in either
// leaf package so neither has to import the other.
type supervisorDiagnostics struct {
	collector diagnostics.Collector
}

func (d supervisorDiagnostics) RecordTransition(from, to supervisor.SystemState, event supervisor.SystemEvent) {
	d.collector.RecordTransition(from.String(), to.String(), event.String())
}

func (d supervisorDiagnostics) RecordSafetyEvent(kind string, started bool) {
	d.collector.RecordSafetyEvent(kind, started)
}

func (d supervisorDiagnostics) RecordBusCounters(tx, rx, drop uint64) {
	d.collector.RecordBusCounters(tx, rx, drop)
}
