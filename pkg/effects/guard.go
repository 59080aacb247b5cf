package effects

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sony/gobreaker"

	"github.com/opd-ai/go-skyward/pkg/logging"
	"github.com/opd-ai/go-skyward/pkg/physics"
)

// BreakerSettings control when a failing module is taken out of the tick
type BreakerSettings struct {
	MaxFailures uint32        // consecutive failures that open the breaker
	Timeout     time.Duration // how long it stays open before a trial update
}

// DefaultBreakerSettings returns the settings used when none are configured
func DefaultBreakerSettings() BreakerSettings {
	return BreakerSettings{MaxFailures: 5, Timeout: 5 * time.Second}
}

// Guard runs a module's updates through a circuit breaker so a misbehaving
// effect cannot take the simulation down with it.
type Guard struct {
	module  Module
	breaker *gobreaker.CircuitBreaker
	logger  *logging.Logger
}

// NewGuard wraps module. onStateChange, when not nil, is called after every
// breaker transition.
func NewGuard(module Module, settings BreakerSettings, logger *logging.Logger, onStateChange func(name string, from, to gobreaker.State)) *Guard {
	if logger == nil {
		logger = logging.NewLogger()
	}

	st := gobreaker.Settings{
		Name:        module.Name(),
		MaxRequests: 1,
		Timeout:     settings.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= settings.MaxFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Info(context.Background(), "circuit breaker state changed",
				"module", name,
				"from", from.String(),
				"to", to.String(),
			)
			if onStateChange != nil {
				onStateChange(name, from, to)
			}
		},
	}

	return &Guard{
		module:  module,
		breaker: gobreaker.NewCircuitBreaker(st),
		logger:  logger,
	}
}

// Module returns the wrapped module
func (g *Guard) Module() Module {
	return g.module
}

// Name returns the wrapped module's name
func (g *Guard) Name() string {
	return g.module.Name()
}

// Update calls the module's Update through the breaker. A panic inside the
// module is recovered and counted as a failure.
func (g *Guard) Update(deltaTime float64, craft physics.CraftState) error {
	_, err := g.breaker.Execute(func() (result interface{}, err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("module %s panicked: %v", g.module.Name(), r)
			}
		}()
		return nil, g.module.Update(deltaTime, craft)
	})
	return err
}

// State returns the breaker state
func (g *Guard) State() gobreaker.State {
	return g.breaker.State()
}

// IsSkipped reports whether err means the update was refused by an open
// breaker rather than attempted and failed.
func IsSkipped(err error) bool {
	return errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests)
}
