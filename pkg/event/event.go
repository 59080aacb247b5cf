// pkg/event/event.go
package event

import (
	"sync"
)

// Type represents the type of event
type Type string

// Session and lifecycle event types
const (
	LoopStarted      Type = "loop_started"
	LoopPaused       Type = "loop_paused"
	LoopResumed      Type = "loop_resumed"
	LoopDisposed     Type = "loop_disposed"
	MissionStarted   Type = "mission_started"
	MissionCompleted Type = "mission_completed"
	MissionFailed    Type = "mission_failed"
	SystemToggled    Type = "system_toggled"
	ModuleDegraded   Type = "module_degraded"
)

// Event is the base interface for all events
type Event interface {
	GetType() Type
	GetSource() interface{}
}

// BaseEvent provides common functionality for all events
type BaseEvent struct {
	EventType Type
	Source    interface{}
}

// GetType returns the event type
func (e *BaseEvent) GetType() Type {
	return e.EventType
}

// GetSource returns the event source
func (e *BaseEvent) GetSource() interface{} {
	return e.Source
}

// Handler is a function that handles events
type Handler func(Event)

// Subscription identifies a registered handler. Cancel removes it.
type Subscription struct {
	ID     uint64
	Type   Type
	Cancel func()
}

type registration struct {
	id      uint64
	handler Handler
}

// Bus manages event subscriptions and dispatching
type Bus struct {
	handlers map[Type][]registration
	nextID   uint64
	mu       sync.RWMutex
}

// NewEventBus creates a new event bus
func NewEventBus() *Bus {
	return &Bus{
		handlers: make(map[Type][]registration),
		nextID:   1,
	}
}

// Subscribe registers a handler for a specific event type
func (b *Bus) Subscribe(eventType Type, handler Handler) *Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	b.handlers[eventType] = append(b.handlers[eventType], registration{id: id, handler: handler})

	return &Subscription{
		ID:     id,
		Type:   eventType,
		Cancel: func() { b.unsubscribe(eventType, id) },
	}
}

func (b *Bus) unsubscribe(eventType Type, id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	regs := b.handlers[eventType]
	for i, r := range regs {
		if r.id == id {
			// copy so in-flight Publish snapshots are not disturbed
			next := make([]registration, 0, len(regs)-1)
			next = append(next, regs[:i]...)
			b.handlers[eventType] = append(next, regs[i+1:]...)
			return
		}
	}
}

// HandlerCount returns the number of handlers registered for eventType
func (b *Bus) HandlerCount(eventType Type) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.handlers[eventType])
}

// Publish sends an event to all subscribed handlers. Handlers run on the
// caller's goroutine, outside the bus lock.
func (b *Bus) Publish(event Event) {
	b.mu.RLock()
	regs := b.handlers[event.GetType()]
	b.mu.RUnlock()

	for _, r := range regs {
		r.handler(event)
	}
}

// MissionEvent carries the mission a lifecycle change applies to
type MissionEvent struct {
	BaseEvent
	MissionID string
	Reason    string
}

// NewMissionEvent creates a new mission event
func NewMissionEvent(eventType Type, source interface{}, missionID, reason string) *MissionEvent {
	return &MissionEvent{
		BaseEvent: BaseEvent{EventType: eventType, Source: source},
		MissionID: missionID,
		Reason:    reason,
	}
}

// SystemEvent reports a subsystem toggle or degradation
type SystemEvent struct {
	BaseEvent
	System  string
	Enabled bool
	Err     error
}

// NewSystemEvent creates a new system event
func NewSystemEvent(eventType Type, source interface{}, system string, enabled bool, err error) *SystemEvent {
	return &SystemEvent{
		BaseEvent: BaseEvent{EventType: eventType, Source: source},
		System:    system,
		Enabled:   enabled,
		Err:       err,
	}
}
