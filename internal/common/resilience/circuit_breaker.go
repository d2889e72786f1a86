package resilience

import (
	"context"
	"errors"
	"time"

	"github.com/sony/gobreaker"

	"github.com/AlibekovAA/gym-api/internal/common/constants"
	"github.com/AlibekovAA/gym-api/internal/common/logger"
	"github.com/AlibekovAA/gym-api/internal/observability/metrics"
)

var ErrCircuitOpen = errors.New("circuit breaker is open")

// callerGone marks an error that surfaced after the caller's own context
// ended; it says nothing about the dependency's health.
type callerGone struct{ err error }

func (c callerGone) Error() string { return c.err.Error() }
func (c callerGone) Unwrap() error { return c.err }

type CircuitBreakerConfig struct {
	Name             string
	MaxRequests      uint32
	Interval         time.Duration
	Timeout          time.Duration
	FailureThreshold uint32
	// IsFailure decides which errors count towards tripping. Nil counts every error.
	IsFailure func(err error) bool
	Logger    *logger.Logger
}

func DefaultCircuitBreakerConfig(name string, log *logger.Logger) CircuitBreakerConfig {
	return CircuitBreakerConfig{
		Name:             name,
		MaxRequests:      constants.CircuitBreakerMaxRequests,
		Interval:         constants.CircuitBreakerInterval,
		Timeout:          constants.CircuitBreakerTimeout,
		FailureThreshold: constants.CircuitBreakerFailureLimit,
		Logger:           log,
	}
}

type CircuitBreaker struct {
	cb   *gobreaker.CircuitBreaker
	name string
	log  *logger.Logger
}

func NewCircuitBreaker(config CircuitBreakerConfig) *CircuitBreaker {
	threshold := config.FailureThreshold
	if threshold == 0 {
		threshold = constants.CircuitBreakerFailureLimit
	}
	isFailure := config.IsFailure
	if isFailure == nil {
		isFailure = func(error) bool { return true }
	}

	b := &CircuitBreaker{name: config.Name, log: config.Logger}
	b.cb = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        config.Name,
		MaxRequests: config.MaxRequests,
		Interval:    config.Interval,
		Timeout:     config.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		IsSuccessful: func(err error) bool {
			var gone callerGone
			if err == nil || errors.As(err, &gone) {
				return true
			}
			return !isFailure(err)
		},
		OnStateChange: b.onStateChange,
	})
	metrics.CircuitBreakerState.WithLabelValues(config.Name).Set(float64(gobreaker.StateClosed))
	return b
}

func (b *CircuitBreaker) onStateChange(name string, from, to gobreaker.State) {
	metrics.CircuitBreakerState.WithLabelValues(name).Set(float64(to))
	if b.log != nil {
		b.log.WithFields(context.Background(), logger.Fields{
			"breaker": name,
			"from":    from.String(),
			"to":      to.String(),
			"action":  "circuit_breaker_state_change",
		}).Warn("circuit breaker state changed")
	}
}

// Call runs fn unless the breaker is open. Rejected calls return ErrCircuitOpen
// without invoking fn; there is no retry. Errors returned once ctx is done
// never count towards tripping.
func (b *CircuitBreaker) Call(ctx context.Context, fn func(context.Context) error) error {
	_, err := b.cb.Execute(func() (interface{}, error) {
		err := fn(ctx)
		if err != nil && ctx.Err() != nil {
			return nil, callerGone{err: err}
		}
		return nil, err
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		metrics.CircuitBreakerRejections.WithLabelValues(b.name).Inc()
		return ErrCircuitOpen
	}
	var gone callerGone
	if errors.As(err, &gone) {
		return gone.err
	}
	return err
}

func (b *CircuitBreaker) State() gobreaker.State {
	return b.cb.State()
}
