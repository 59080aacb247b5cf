package input

import (
	"context"
	"errors"
	"sync"

	"github.com/opd-ai/go-skyward/pkg/physics"
)

// EventKind identifies a raw host input event
type EventKind int

const (
	KeyDown EventKind = iota
	KeyUp
	ContactStart
	ContactMove
	ContactEnd
	OrientationSample
)

// Event is one raw input event as delivered by the host platform
type Event struct {
	Kind        EventKind
	Key         string
	Position    physics.Vector2D
	Orientation Orientation
}

// Source delivers raw events queued since the previous call. Drain appends
// to dst and returns it so callers can reuse a buffer.
type Source interface {
	Drain(dst []Event) []Event
}

// PermissionRequester is implemented by sources that can provide device
// orientation but must ask the platform first.
type PermissionRequester interface {
	RequestOrientationPermission(ctx context.Context) error
}

// ErrOrientationUnsupported is returned when the host has no orientation sensor
var ErrOrientationUnsupported = errors.New("device orientation not supported")

// Mailbox is a concurrency-safe Source. Host adapters push events from their
// own callbacks or goroutines; the fusion drains it once per tick.
type Mailbox struct {
	mu             sync.Mutex
	events         []Event
	orientationErr error
}

// NewMailbox returns an empty mailbox. Orientation is unsupported until
// GrantOrientation is called.
func NewMailbox() *Mailbox {
	return &Mailbox{orientationErr: ErrOrientationUnsupported}
}

func (m *Mailbox) push(e Event) {
	m.mu.Lock()
	m.events = append(m.events, e)
	m.mu.Unlock()
}

// KeyDown records that key is held
func (m *Mailbox) KeyDown(key string) { m.push(Event{Kind: KeyDown, Key: key}) }

// KeyUp records that key was released
func (m *Mailbox) KeyUp(key string) { m.push(Event{Kind: KeyUp, Key: key}) }

// ContactStart records a pointer press or touch start at (x, y)
func (m *Mailbox) ContactStart(x, y float64) {
	m.push(Event{Kind: ContactStart, Position: physics.Vector2D{X: x, Y: y}})
}

// ContactMove records pointer or touch motion to (x, y)
func (m *Mailbox) ContactMove(x, y float64) {
	m.push(Event{Kind: ContactMove, Position: physics.Vector2D{X: x, Y: y}})
}

// ContactEnd records that the contact was lifted
func (m *Mailbox) ContactEnd() { m.push(Event{Kind: ContactEnd}) }

// Orientation records a device orientation sample in degrees
func (m *Mailbox) Orientation(alpha, beta, gamma float64) {
	m.push(Event{Kind: OrientationSample, Orientation: Orientation{Alpha: alpha, Beta: beta, Gamma: gamma}})
}

// GrantOrientation sets the outcome of the next permission request. A nil
// err means orientation is available.
func (m *Mailbox) GrantOrientation(err error) {
	m.mu.Lock()
	m.orientationErr = err
	m.mu.Unlock()
}

// RequestOrientationPermission implements PermissionRequester
func (m *Mailbox) RequestOrientationPermission(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.orientationErr
}

// Drain implements Source
func (m *Mailbox) Drain(dst []Event) []Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	dst = append(dst, m.events...)
	m.events = m.events[:0]
	return dst
}
