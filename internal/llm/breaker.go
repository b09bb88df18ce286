package llm

import (
	"context"
	"errors"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/justestif/go-spotify-ai-curator/internal/logging"
	"github.com/justestif/go-spotify-ai-curator/internal/metrics"
)

// Completer produces a completion for a system and user message.
type Completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// BreakerSettings tunes the circuit breaker.
type BreakerSettings struct {
	Name        string
	MinRequests uint32        // requests in the window before the ratio is evaluated
	FailureRate float64       // trip when failures/requests reaches this
	Interval    time.Duration // closed-state count reset
	Timeout     time.Duration // open-state duration before half-open
}

// DefaultBreakerSettings returns the production breaker tuning.
func DefaultBreakerSettings() BreakerSettings {
	return BreakerSettings{
		Name:        "model-api",
		MinRequests: 5,
		FailureRate: 0.6,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
	}
}

// BreakerClient guards a Completer with a circuit breaker so a failing
// model endpoint is not hammered by every request.
type BreakerClient struct {
	next Completer
	cb   *gobreaker.CircuitBreaker[string]
	name string
}

// NewBreakerClient wraps next.
func NewBreakerClient(next Completer, s BreakerSettings) *BreakerClient {
	log := logging.Component("llm")
	metrics.CircuitBreakerState.WithLabelValues(s.Name).Set(0)

	cb := gobreaker.NewCircuitBreaker[string](gobreaker.Settings{
		Name:        s.Name,
		MaxRequests: 1,
		Interval:    s.Interval,
		Timeout:     s.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < s.MinRequests {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= s.FailureRate
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("circuit breaker state change")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateValue(to))
		},
		// Caller cancellations say nothing about endpoint health.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
	})

	return &BreakerClient{next: next, cb: cb, name: s.Name}
}

// Complete runs the wrapped completion through the breaker. When the
// circuit is open it fails fast with gobreaker.ErrOpenState.
func (b *BreakerClient) Complete(ctx context.Context, system, user string) (string, error) {
	start := time.Now()
	out, err := b.cb.Execute(func() (string, error) {
		return b.next.Complete(ctx, system, user)
	})

	switch {
	case err == nil:
		metrics.RecordModelCall("success", time.Since(start))
	case errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests):
		metrics.RecordModelCall("rejected", 0)
	default:
		metrics.RecordModelCall("failure", time.Since(start))
	}
	return out, err
}

// State returns the breaker state.
func (b *BreakerClient) State() gobreaker.State {
	return b.cb.State()
}

func stateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}
