// cmd/skyward/main.go
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/EngoEngine/engo"
	"github.com/gdamore/tcell/v2"

	"github.com/opd-ai/go-skyward/pkg/config"
	"github.com/opd-ai/go-skyward/pkg/effects"
	"github.com/opd-ai/go-skyward/pkg/engine"
	"github.com/opd-ai/go-skyward/pkg/health"
	"github.com/opd-ai/go-skyward/pkg/input"
	"github.com/opd-ai/go-skyward/pkg/logging"
	"github.com/opd-ai/go-skyward/pkg/mission"
	"github.com/opd-ai/go-skyward/pkg/render"
	engorender "github.com/opd-ai/go-skyward/pkg/render/engo"
	"github.com/opd-ai/go-skyward/pkg/render/terminal"
	"github.com/opd-ai/go-skyward/pkg/resource"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "skyward:", err)
		os.Exit(1)
	}
}

// session is everything the hosts share
type session struct {
	env         *config.EnvironmentConfig
	logger      *logging.Logger
	loop        *engine.Loop
	mailbox     *input.Mailbox
	bindings    input.Bindings
	catalog     *mission.Catalog
	instruments render.Instruments
	supervisor  *resource.Supervisor
}

func run(args []string) error {
	env, err := config.ParseConfig(flag.CommandLine, args)
	if err != nil {
		return err
	}

	logger, closeLog, err := newLogger(env)
	if err != nil {
		return err
	}
	defer closeLog()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logging.WithCorrelationID(ctx, logging.GenerateCorrelationID())

	flight := config.DefaultFlightConfig()
	if env.ConfigPath != "" {
		if flight, err = config.LoadConfig(env.ConfigPath); err != nil {
			return err
		}
	}

	catalog, err := loadCatalog(env.MissionsPath)
	if err != nil {
		return err
	}

	bindings := input.DefaultBindings()
	if env.Host == config.HostTerminal {
		bindings = terminal.Bindings()
	}

	var scheduler engine.Scheduler
	var frames *engorender.FrameSystem
	var ticker *engine.TickerScheduler
	if env.Host == config.HostEngo {
		frames = engorender.NewFrameSystem()
		scheduler = frames
	} else {
		ticker = engine.NewTickerScheduler(env.FrameInterval())
		scheduler = ticker
	}

	mailbox := input.NewMailbox()
	fusion := input.New(ctx, mailbox,
		input.WithParams(flight.InputParams()),
		input.WithBindings(bindings),
		input.WithLogger(logger),
	)

	instruments := render.Instruments{
		Propulsion: effects.NewPropulsion(flight.MaxSpeed),
		Cloaking:   effects.NewCloaking(),
		Sensors:    effects.NewSensors(),
	}
	modules := []effects.Module{instruments.Propulsion, instruments.Cloaking, instruments.Sensors}
	if env.Audio {
		instruments.Audio = effects.NewAudio(flight.MaxSpeed)
		modules = append(modules, instruments.Audio)
	}

	loop := engine.NewLoop(engine.Dependencies{
		Config:    flight,
		Controls:  fusion,
		Scheduler: scheduler,
		Missions:  catalog,
		Modules:   modules,
		Logger:    logger,
	},
		engine.WithMaxFrameDelta(env.MaxFrameDelta),
		engine.WithBreakerSettings(effects.BreakerSettings{
			MaxFailures: env.BreakerMaxFailures,
			Timeout:     env.BreakerTimeout,
		}),
	)
	loop.Subscribe(render.NewLogObserver(logger, 0).Observe)

	if err := loop.Initialize(ctx); err != nil {
		return fmt.Errorf("initialize simulation: %w", err)
	}

	supervisor := resource.NewSupervisor(ctx, env, logger)
	checker := health.NewChecker()
	checker.AddCheck(health.NewLoopCheck(loop))
	checker.AddCheck(resource.NewSupervisorHealthCheck(supervisor))
	checker.AddCheck(health.NewMemoryCheck(env.MaxMemoryMB, nil))

	s := &session{
		env:         env,
		logger:      logger,
		loop:        loop,
		mailbox:     mailbox,
		bindings:    bindings,
		catalog:     catalog,
		instruments: instruments,
		supervisor:  supervisor,
	}

	if env.Mission != "" {
		if err := loop.StartMission(env.Mission); err != nil {
			logger.Warn(ctx, "Requested mission not started", "mission", env.Mission, "error", err.Error())
		}
	}

	logger.Info(ctx, "Session starting", "host", env.Host, "missions", catalog.Len(), "audio", env.Audio)

	var hostErr error
	switch env.Host {
	case config.HostEngo:
		hostErr = s.runEngo(frames)
	case config.HostHeadless:
		hostErr = s.runHeadless(ticker, os.Stdout)
	default:
		hostErr = s.runTerminal(ticker)
	}

	checker.Log(ctx, logger)
	loop.Dispose()

	shutdownErr := supervisor.Shutdown(context.Background())
	return errors.Join(hostErr, supervisor.Err(), shutdownErr)
}

// newLogger writes to the log file when one is set. The terminal host owns
// stdout, so without a file its logs are dropped.
func newLogger(env *config.EnvironmentConfig) (*logging.Logger, func(), error) {
	if env.LogFile != "" {
		f, err := os.OpenFile(env.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		return logging.NewLoggerWithWriter(f), func() { f.Close() }, nil
	}
	if env.Host == config.HostTerminal {
		return logging.Discard(), func() {}, nil
	}
	return logging.NewLogger(), func() {}, nil
}

func loadCatalog(path string) (*mission.Catalog, error) {
	if path == "" {
		return mission.Default()
	}
	return mission.Load(path)
}

func (s *session) runTerminal(ticker *engine.TickerScheduler) error {
	if err := s.supervisor.StartGoroutine("frame-ticker", ticker.Run); err != nil {
		return err
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("open terminal: %w", err)
	}
	host := terminal.NewHost(screen, s.loop, s.mailbox, s.catalog.IDs(),
		terminal.WithInstruments(s.instruments),
		terminal.WithLogger(s.logger),
	)
	unsubscribe := s.loop.Subscribe(host.Observe)
	defer unsubscribe()

	return host.Run(s.supervisor.Context())
}

func (s *session) runEngo(frames *engorender.FrameSystem) error {
	commands := render.NewCommands(s.loop, s.catalog.IDs())
	hud := engorender.NewHUDSystem(s.instruments, commands)
	inputSystem := engorender.NewInputSystem(s.mailbox, commands, s.bindings,
		engorender.WithRadar(hud.Radar()),
		engorender.WithInputLogger(s.logger),
	)
	ctx := s.supervisor.Context()
	scene := engorender.NewScene(frames, inputSystem, hud, s.bindings, func() {
		s.logger.Info(ctx, "Window closed")
	})

	unsubscribe := s.loop.Subscribe(hud.Observe)
	defer unsubscribe()

	// a signal closes the window the same way the quit key does
	if err := s.supervisor.StartGoroutine("window-exit", func(ctx context.Context) error {
		<-ctx.Done()
		engo.Exit()
		return nil
	}); err != nil {
		return err
	}

	engorender.Run(engorender.Options{
		Title:      "Skyward",
		Width:      s.env.Width,
		Height:     s.env.Height,
		Fullscreen: s.env.Fullscreen,
		FPS:        s.env.FPS,
	}, scene)
	return nil
}

// runHeadless flies for the configured duration without any display, then
// prints the final instruments and radar to w
func (s *session) runHeadless(ticker *engine.TickerScheduler, w io.Writer) error {
	if err := s.supervisor.StartGoroutine("frame-ticker", ticker.Run); err != nil {
		return err
	}

	ctx := s.supervisor.Context()
	timer := time.NewTimer(s.env.Duration)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		s.logger.Info(ctx, "Headless flight interrupted")
	case <-timer.C:
		s.logger.Info(ctx, "Headless flight finished", "duration", s.env.Duration.String())
	}

	return printSummary(w, s.loop.Snapshot(), s.instruments)
}

func printSummary(w io.Writer, snap engine.SessionState, instruments render.Instruments) error {
	readings := instruments.Read()
	for _, line := range render.HUDLines(snap, readings) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}

	radar := render.NewRadar(41, 21, 100)
	radar.Track(snap, readings.Contacts)
	return radar.Present(w)
}
