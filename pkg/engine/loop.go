// pkg/engine/loop.go
package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel/metric"

	"github.com/opd-ai/go-skyward/pkg/config"
	"github.com/opd-ai/go-skyward/pkg/effects"
	"github.com/opd-ai/go-skyward/pkg/event"
	"github.com/opd-ai/go-skyward/pkg/input"
	"github.com/opd-ai/go-skyward/pkg/logging"
	"github.com/opd-ai/go-skyward/pkg/mission"
	"github.com/opd-ai/go-skyward/pkg/physics"
)

// State is the lifecycle state of the loop
type State int

const (
	StateUninitialized State = iota
	StateRunning
	StatePaused
	StateDisposed
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateRunning:
		return "running"
	case StatePaused:
		return "paused"
	case StateDisposed:
		return "disposed"
	default:
		return "unknown"
	}
}

// DefaultMaxFrameDelta caps a single tick so a stalled host cannot make the
// craft jump.
const DefaultMaxFrameDelta = 100 * time.Millisecond

var (
	ErrAlreadyInitialized = errors.New("simulation loop already initialized")
	ErrNotInitialized     = errors.New("simulation loop not initialized")
	ErrDisposed           = errors.New("simulation loop disposed")
	ErrUnknownMission     = errors.New("unknown mission")
	ErrUnknownSystem      = errors.New("unknown system")
	ErrSystemUnavailable  = errors.New("system unavailable")
	ErrMissingDependency  = errors.New("missing dependency")
)

// Systems lists the names accepted by ToggleSystem
var Systems = []string{effects.Propulsion, effects.Cloaking, effects.Sensors}

// Controls produces one fused control state per tick
type Controls interface {
	Update()
	State() input.ControlInput
}

// Observer receives a session snapshot after every tick and lifecycle change
type Observer func(SessionState)

// Dependencies are the collaborators the loop composes
type Dependencies struct {
	Config    *config.FlightConfig
	Controls  Controls
	Scheduler Scheduler
	Missions  *mission.Catalog
	Modules   []effects.Module
	Events    *event.Bus
	Logger    *logging.Logger
}

// Option configures a Loop
type Option func(*Loop)

// WithMaxFrameDelta overrides DefaultMaxFrameDelta. Zero disables the cap.
func WithMaxFrameDelta(d time.Duration) Option {
	return func(l *Loop) { l.maxFrameDelta = d }
}

// WithBreakerSettings sets the circuit breaker used for every effect module
func WithBreakerSettings(s effects.BreakerSettings) Option {
	return func(l *Loop) { l.breaker = s }
}

// WithMeterProvider records metrics through provider instead of the global one
func WithMeterProvider(provider metric.MeterProvider) Option {
	return func(l *Loop) { l.meterProvider = provider }
}

// Loop drives input fusion, flight dynamics and the effect modules once per
// host frame and owns the session lifecycle.
//
// Every method is safe for concurrent use. Frames and lifecycle calls are
// serialised by one mutex; observers and event handlers run after it is
// released, so they may call back into the loop. Snapshots reach observers
// in the order they were taken, and a snapshot older than one already
// delivered is dropped, so the last snapshot an observer sees is always the
// loop's latest.
type Loop struct {
	deps          Dependencies
	maxFrameDelta time.Duration
	breaker       effects.BreakerSettings
	meterProvider metric.MeterProvider

	mu        sync.Mutex
	ctx       context.Context
	state     State
	session   SessionState
	dynamics  *physics.FlightDynamics
	guards    []*effects.Guard
	byName    map[string]*effects.Guard
	degraded  map[string]bool
	metrics   *loopMetrics
	objective mission.Objective
	pending   []event.Event

	resumeMode     Mode
	hiddenPause    bool
	lastFrame      time.Duration
	hasLastFrame   bool
	frameRequested bool

	seq uint64

	obsMu      sync.Mutex
	observers  map[uint64]Observer
	nextObs    uint64
	queue      []notice
	queuedSeq  uint64
	delivering bool
}

// notice is a snapshot stamped with the order it was taken in
type notice struct {
	seq   uint64
	state SessionState
}

// NewLoop creates an uninitialized loop
func NewLoop(deps Dependencies, opts ...Option) *Loop {
	l := &Loop{
		deps:          deps,
		maxFrameDelta: DefaultMaxFrameDelta,
		breaker:       effects.DefaultBreakerSettings(),
		ctx:           context.Background(),
		byName:        make(map[string]*effects.Guard),
		degraded:      make(map[string]bool),
		observers:     make(map[uint64]Observer),
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.deps.Logger == nil {
		l.deps.Logger = logging.NewLogger()
	}
	if l.deps.Events == nil {
		l.deps.Events = event.NewEventBus()
	}
	return l
}

// Events returns the bus lifecycle and mission events are published on
func (l *Loop) Events() *event.Bus {
	return l.deps.Events
}

// Initialize validates the core collaborators, initializes the effect
// modules and starts requesting frames in menu mode.
//
// A core failure is returned and leaves the loop uninitialized. A module
// that fails to initialize is logged and left inactive.
func (l *Loop) Initialize(ctx context.Context) error {
	l.mu.Lock()

	switch l.state {
	case StateDisposed:
		l.mu.Unlock()
		return ErrDisposed
	case StateRunning, StatePaused:
		l.mu.Unlock()
		return ErrAlreadyInitialized
	}

	if err := l.validateDependencies(); err != nil {
		l.mu.Unlock()
		return fmt.Errorf("initialize simulation loop: %w", err)
	}

	metrics, err := newLoopMetrics(l.meterProvider)
	if err != nil {
		l.mu.Unlock()
		return fmt.Errorf("initialize simulation loop: %w", err)
	}

	if logging.GetCorrelationID(ctx) == "" {
		ctx = logging.WithCorrelationID(ctx, logging.GenerateCorrelationID())
	}
	l.ctx = ctx
	l.metrics = metrics
	l.dynamics = physics.NewFlightDynamics(l.deps.Config.FlightParams())

	var events []event.Event
	for _, m := range l.deps.Modules {
		events = append(events, l.initModule(ctx, m)...)
	}

	l.state = StateRunning
	l.session = Reduce(SessionState{}, SessionUpdate{
		Mode:  ptr(ModeMenu),
		Craft: ptr(snapshotCraft(l.dynamics.State())),
	})
	l.hasLastFrame = false
	l.requestFrameLocked()

	l.deps.Logger.Info(ctx, "Simulation loop initialized",
		"modules", len(l.guards),
		"degraded", len(l.degraded),
		"max_frame_delta", l.maxFrameDelta.String(),
	)

	events = append(events, &event.BaseEvent{EventType: event.LoopStarted, Source: l})
	snap := l.noticeLocked()
	l.mu.Unlock()

	l.publish(events)
	l.notify(snap)
	return nil
}

func (l *Loop) validateDependencies() error {
	if l.deps.Config == nil {
		return fmt.Errorf("%w: flight config", ErrMissingDependency)
	}
	if err := l.deps.Config.Validate(); err != nil {
		return err
	}
	if l.deps.Controls == nil {
		return fmt.Errorf("%w: controls", ErrMissingDependency)
	}
	if l.deps.Scheduler == nil {
		return fmt.Errorf("%w: scheduler", ErrMissingDependency)
	}
	if l.deps.Missions == nil {
		return fmt.Errorf("%w: mission catalog", ErrMissingDependency)
	}
	return nil
}

func (l *Loop) initModule(ctx context.Context, m effects.Module) []event.Event {
	name := m.Name()
	guard := effects.NewGuard(m, l.breaker, l.deps.Logger, l.onBreakerChange)
	l.guards = append(l.guards, guard)
	l.byName[name] = guard

	if err := m.Init(ctx); err != nil {
		l.deps.Logger.Warn(ctx, "Effect module disabled",
			"module", name,
			"error", err.Error(),
		)
		l.degraded[name] = true
		m.SetActive(false)
		return []event.Event{event.NewSystemEvent(event.ModuleDegraded, l, name, false, err)}
	}

	// session systems wait for a mission, anything else runs from the start
	m.SetActive(!isSystem(name))
	return nil
}

func (l *Loop) onBreakerChange(name string, from, to gobreaker.State) {
	if to != gobreaker.StateOpen {
		return
	}
	// breakers only change state inside a tick, with l.mu held
	l.pending = append(l.pending,
		event.NewSystemEvent(event.ModuleDegraded, l, name, false, errors.New("circuit breaker open")))
}

// Step runs one tick with an explicit delta in seconds. It does nothing
// unless the loop is running. Hosts normally let the scheduler drive ticks.
func (l *Loop) Step(deltaTime float64) {
	l.runTick(deltaTime, false, 0)
}

func (l *Loop) frame(now time.Duration) {
	l.runTick(0, true, now)
}

func (l *Loop) runTick(deltaTime float64, fromFrame bool, now time.Duration) {
	start := time.Now()

	l.mu.Lock()
	if fromFrame {
		l.frameRequested = false
	}
	if l.state != StateRunning {
		l.mu.Unlock()
		return
	}

	if fromFrame {
		var ok bool
		if deltaTime, ok = l.frameDelta(now); !ok {
			// baseline only: nothing advances, not even drag or the tick count
			l.requestFrameLocked()
			l.mu.Unlock()
			return
		}
	}
	deltaTime = max(deltaTime, 0)
	if l.maxFrameDelta > 0 {
		deltaTime = min(deltaTime, l.maxFrameDelta.Seconds())
	}

	events := l.tickLocked(deltaTime)
	if fromFrame && l.state == StateRunning {
		l.requestFrameLocked()
	}

	ctx, snap, metrics := l.ctx, l.noticeLocked(), l.metrics
	l.mu.Unlock()

	l.publish(events)
	l.notify(snap)
	metrics.recordTick(ctx, snap.state.Mode, deltaTime, time.Since(start))
}

// frameDelta turns the host clock into a tick delta. The first frame after
// initialization or a resume only sets the baseline and reports false.
func (l *Loop) frameDelta(now time.Duration) (float64, bool) {
	if !l.hasLastFrame {
		l.hasLastFrame = true
		l.lastFrame = now
		return 0, false
	}
	d := now - l.lastFrame
	l.lastFrame = now
	return d.Seconds(), true
}

func (l *Loop) tickLocked(deltaTime float64) []event.Event {
	l.deps.Controls.Update()
	control := l.deps.Controls.State()

	l.dynamics.Update(deltaTime, control.Command())
	craft := l.dynamics.State()

	for _, g := range l.guards {
		if l.degraded[g.Name()] || !g.Module().IsActive() {
			continue
		}
		if err := g.Update(deltaTime, craft); err != nil {
			if effects.IsSkipped(err) {
				continue
			}
			l.metrics.recordModuleFailure(l.ctx, g.Name())
			l.deps.Logger.Warn(l.ctx, "Effect module update failed",
				"module", g.Name(),
				"error", err.Error(),
				"breaker", g.State().String(),
			)
		}
	}

	update := SessionUpdate{
		Craft: ptr(snapshotCraft(craft)),
		Tick:  ptr(l.session.Tick + 1),
	}

	events := l.pending
	l.pending = nil
	var finished *mission.Status
	if l.session.Mode == ModePlaying && l.session.MissionID != "" && !l.session.Objective.Done() {
		elapsed := l.session.Elapsed + deltaTime
		status := l.objective.Evaluate(craft.Altitude, elapsed)
		update.Elapsed = &elapsed
		update.Objective = &status
		if status.Done() {
			finished = &status
		}
	}

	l.session = Reduce(l.session, update)

	if finished != nil {
		eventType := event.MissionCompleted
		if finished.Outcome == mission.Failed {
			eventType = event.MissionFailed
		}
		l.deps.Logger.Info(l.ctx, "Mission ended",
			"mission", l.session.MissionID,
			"outcome", finished.Outcome.String(),
			"reason", finished.Reason,
			"elapsed", l.session.Elapsed,
		)
		events = append(events, event.NewMissionEvent(eventType, l, l.session.MissionID, finished.Reason))
		events = append(events, l.pauseLocked()...)
	}
	return events
}

func (l *Loop) requestFrameLocked() {
	if l.frameRequested {
		return
	}
	l.frameRequested = true
	l.deps.Scheduler.RequestFrame(l.frame)
}

// Pause stops ticking. It does nothing unless the loop is running.
func (l *Loop) Pause() {
	l.mu.Lock()
	if l.state != StateRunning {
		l.mu.Unlock()
		return
	}
	events := l.pauseLocked()
	snap := l.noticeLocked()
	l.mu.Unlock()

	l.publish(events)
	l.notify(snap)
}

func (l *Loop) pauseLocked() []event.Event {
	l.resumeMode = l.session.Mode
	l.state = StatePaused
	l.session = Reduce(l.session, SessionUpdate{Mode: ptr(ModePaused)})
	l.setModulesPaused(true)

	l.deps.Logger.Debug(l.ctx, "Simulation loop paused", "tick", l.session.Tick)
	return []event.Event{&event.BaseEvent{EventType: event.LoopPaused, Source: l}}
}

// Resume restarts ticking after Pause. It does nothing unless the loop is
// paused. The first frame after resuming only resets the frame clock.
func (l *Loop) Resume() {
	l.mu.Lock()
	if l.state != StatePaused {
		l.mu.Unlock()
		return
	}
	events := l.resumeLocked(l.resumeMode)
	snap := l.noticeLocked()
	l.mu.Unlock()

	l.publish(events)
	l.notify(snap)
}

func (l *Loop) resumeLocked(mode Mode) []event.Event {
	l.state = StateRunning
	l.hiddenPause = false
	l.hasLastFrame = false
	l.session = Reduce(l.session, SessionUpdate{Mode: ptr(mode)})
	l.setModulesPaused(false)
	l.requestFrameLocked()

	l.deps.Logger.Debug(l.ctx, "Simulation loop resumed", "mode", mode.String())
	return []event.Event{&event.BaseEvent{EventType: event.LoopResumed, Source: l}}
}

func (l *Loop) setModulesPaused(paused bool) {
	for _, g := range l.guards {
		if p, ok := g.Module().(effects.Pausable); ok {
			p.SetPaused(paused)
		}
	}
}

// SetVisible is called by the host when its window or terminal gains or
// loses visibility. Hiding pauses a running loop; showing resumes it only if
// hiding is what paused it.
func (l *Loop) SetVisible(visible bool) {
	l.mu.Lock()
	var events []event.Event
	switch {
	case !visible && l.state == StateRunning:
		events = l.pauseLocked()
		l.hiddenPause = true
	case visible && l.state == StatePaused && l.hiddenPause:
		events = l.resumeLocked(l.resumeMode)
	default:
		l.mu.Unlock()
		return
	}
	snap := l.noticeLocked()
	l.mu.Unlock()

	l.publish(events)
	l.notify(snap)
}

// StartMission resets the craft and begins the mission with the given id.
// It also re-arms a paused loop, including one paused by a finished mission.
func (l *Loop) StartMission(id string) error {
	l.mu.Lock()
	if err := l.checkLiveLocked(); err != nil {
		l.mu.Unlock()
		return err
	}

	m, ok := l.deps.Missions.Get(id)
	if !ok {
		l.mu.Unlock()
		return fmt.Errorf("%w: %q", ErrUnknownMission, id)
	}

	l.dynamics.Reset()
	for _, g := range l.guards {
		if aware, ok := g.Module().(effects.MissionAware); ok {
			aware.LoadMission(m)
		}
	}

	systems := SystemsUpdate{
		Propulsion: ptr(l.applySystemLocked(effects.Propulsion, m.Systems.Propulsion)),
		Cloaking:   ptr(l.applySystemLocked(effects.Cloaking, m.Systems.Cloaking)),
		Sensors:    ptr(l.applySystemLocked(effects.Sensors, m.Systems.Sensors)),
	}

	l.objective = m.Objective
	l.session = Reduce(l.session, SessionUpdate{
		MissionID: ptr(m.ID),
		Craft:     ptr(snapshotCraft(l.dynamics.State())),
		Systems:   &systems,
		Elapsed:   ptr(0.0),
		Objective: ptr(m.Objective.Evaluate(l.dynamics.Altitude(), 0)),
	})

	var events []event.Event
	if l.state == StatePaused {
		events = append(events, l.resumeLocked(ModePlaying)...)
	} else {
		l.session = Reduce(l.session, SessionUpdate{Mode: ptr(ModePlaying)})
		l.requestFrameLocked()
	}

	l.deps.Logger.Info(l.ctx, "Mission started",
		"mission", m.ID,
		"propulsion", l.session.Systems.Propulsion,
		"cloaking", l.session.Systems.Cloaking,
		"sensors", l.session.Systems.Sensors,
	)
	events = append(events, event.NewMissionEvent(event.MissionStarted, l, m.ID, ""))
	snap := l.noticeLocked()
	l.mu.Unlock()

	l.publish(events)
	l.notify(snap)
	return nil
}

// applySystemLocked activates or deactivates the named module and returns
// the flag to record. A degraded module always records false.
func (l *Loop) applySystemLocked(name string, enabled bool) bool {
	g, ok := l.byName[name]
	if !ok {
		return enabled
	}
	if l.degraded[name] {
		return false
	}
	g.Module().SetActive(enabled)
	return enabled
}

// ToggleSystem switches a subsystem on or off. It has no effect on the
// flight model.
func (l *Loop) ToggleSystem(name string, enabled bool) error {
	if !isSystem(name) {
		return fmt.Errorf("%w: %q", ErrUnknownSystem, name)
	}

	l.mu.Lock()
	if err := l.checkLiveLocked(); err != nil {
		l.mu.Unlock()
		return err
	}
	if enabled && l.degraded[name] {
		l.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrSystemUnavailable, name)
	}

	flag := l.applySystemLocked(name, enabled)
	var u SystemsUpdate
	switch name {
	case effects.Propulsion:
		u.Propulsion = &flag
	case effects.Cloaking:
		u.Cloaking = &flag
	case effects.Sensors:
		u.Sensors = &flag
	}
	l.session = Reduce(l.session, SessionUpdate{Systems: &u})

	l.deps.Logger.Debug(l.ctx, "System toggled", "system", name, "enabled", flag)
	snap := l.noticeLocked()
	l.mu.Unlock()

	l.publish([]event.Event{event.NewSystemEvent(event.SystemToggled, l, name, flag, nil)})
	l.notify(snap)
	return nil
}

func (l *Loop) checkLiveLocked() error {
	switch l.state {
	case StateUninitialized:
		return ErrNotInitialized
	case StateDisposed:
		return ErrDisposed
	}
	return nil
}

// Dispose stops the loop for good. A tick already running completes first;
// no frame runs afterwards. Further calls do nothing.
func (l *Loop) Dispose() {
	l.mu.Lock()
	if l.state == StateDisposed {
		l.mu.Unlock()
		return
	}
	l.state = StateDisposed
	for _, g := range l.guards {
		g.Module().Dispose()
	}
	l.deps.Logger.Info(l.ctx, "Simulation loop disposed", "tick", l.session.Tick)
	snap := l.noticeLocked()
	l.mu.Unlock()

	if closer, ok := l.deps.Scheduler.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			l.deps.Logger.Warn(l.ctx, "Failed to close frame scheduler", "error", err.Error())
		}
	}

	l.publish([]event.Event{&event.BaseEvent{EventType: event.LoopDisposed, Source: l}})
	l.notify(snap)
}

// Subscribe registers an observer. The returned function removes it.
func (l *Loop) Subscribe(o Observer) func() {
	l.obsMu.Lock()
	defer l.obsMu.Unlock()

	l.nextObs++
	id := l.nextObs
	l.observers[id] = o
	return func() {
		l.obsMu.Lock()
		delete(l.observers, id)
		l.obsMu.Unlock()
	}
}

// Snapshot returns the current session state
func (l *Loop) Snapshot() SessionState {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.session
}

// State returns the lifecycle state
func (l *Loop) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// Degraded returns the modules that failed to initialize or whose circuit
// breaker is currently open, sorted by name
func (l *Loop) Degraded() []string {
	l.mu.Lock()
	defer l.mu.Unlock()

	var names []string
	for _, g := range l.guards {
		if l.degraded[g.Name()] || g.State() == gobreaker.StateOpen {
			names = append(names, g.Name())
		}
	}
	sort.Strings(names)
	return names
}

func (l *Loop) publish(events []event.Event) {
	for _, e := range events {
		l.deps.Events.Publish(e)
	}
}

// noticeLocked stamps the current session for notify. l.mu must be held.
func (l *Loop) noticeLocked() notice {
	l.seq++
	return notice{seq: l.seq, state: l.session}
}

// notify queues n for the observers. Whichever call finds the queue idle
// drains it, so an observer that calls back into the loop sees its own
// change only after the current snapshot has reached every observer.
func (l *Loop) notify(n notice) {
	l.obsMu.Lock()
	if n.seq <= l.queuedSeq {
		l.obsMu.Unlock()
		return
	}
	l.queuedSeq = n.seq
	l.queue = append(l.queue, n)
	if l.delivering {
		l.obsMu.Unlock()
		return
	}
	l.delivering = true

	for len(l.queue) > 0 {
		next := l.queue[0]
		l.queue = l.queue[1:]
		observers := make([]Observer, 0, len(l.observers))
		for id := uint64(1); id <= l.nextObs; id++ {
			if o, ok := l.observers[id]; ok {
				observers = append(observers, o)
			}
		}
		l.obsMu.Unlock()

		for _, o := range observers {
			o(next.state)
		}
		l.obsMu.Lock()
	}
	l.delivering = false
	l.obsMu.Unlock()
}

func isSystem(name string) bool {
	for _, s := range Systems {
		if s == name {
			return true
		}
	}
	return false
}
