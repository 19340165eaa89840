package resilience

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"
)

const tracerName = "lexiapi/resilience"

const (
	OutcomeSuccess  = "success"
	OutcomeFailure  = "failure"
	OutcomeTimeout  = "timeout"
	OutcomeRejected = "rejected"
	OutcomeCanceled = "canceled"
)

// Guard runs collaborator calls once, under a deadline, an optional rate limit
// and a per-operation circuit breaker, and records the outcome.
type Guard struct {
	cfg     Config
	log     *slog.Logger
	limiter *rate.Limiter
	tracer  trace.Tracer

	mu       sync.Mutex
	breakers map[string]*gobreaker.CircuitBreaker[any]

	calls    *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewGuard builds a Guard and registers its metrics on reg (nil skips registration).
func NewGuard(cfg Config, log *slog.Logger, reg prometheus.Registerer) (*Guard, error) {
	cfg = cfg.normalize()
	if log == nil {
		log = slog.Default()
	}

	g := &Guard{
		cfg:      cfg,
		log:      log,
		tracer:   otel.Tracer(tracerName),
		breakers: make(map[string]*gobreaker.CircuitBreaker[any]),
		calls: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "collaborator_calls_total",
				Help: "Total calls made to external AI collaborators by outcome.",
			},
			[]string{"operation", "outcome"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "collaborator_call_duration_seconds",
				Help:    "Duration of external AI collaborator calls in seconds.",
				Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
			},
			[]string{"operation"},
		),
	}
	if cfg.RateLimit > 0 {
		g.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.RateBurst)
	}

	if reg != nil {
		for _, c := range []prometheus.Collector{g.calls, g.duration} {
			if err := reg.Register(c); err != nil {
				return nil, fmt.Errorf("register collaborator metrics: %w", err)
			}
		}
	}
	return g, nil
}

// Execute runs fn exactly once for the named operation.
func (g *Guard) Execute(ctx context.Context, operation string, fn func(context.Context) error) error {
	if fn == nil {
		return fmt.Errorf("resilience: operation callback is nil")
	}
	op := strings.TrimSpace(operation)
	if op == "" {
		op = "unknown"
	}

	ctx, span := g.tracer.Start(ctx, "collaborator."+op,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("collaborator.operation", op)),
	)
	defer span.End()

	start := time.Now()
	err := g.execute(ctx, op, fn)
	outcome := classify(err)
	span.SetAttributes(attribute.String("collaborator.outcome", outcome))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, outcome)
	}

	g.calls.WithLabelValues(op, outcome).Inc()
	g.duration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	if err != nil {
		g.log.Warn("collaborator_call_failed",
			slog.String("operation", op),
			slog.String("outcome", outcome),
			slog.Float64("duration_ms", float64(time.Since(start).Microseconds())/1000.0),
			slog.Any("error", err),
		)
	}
	return err
}

// Do is Execute for callbacks that produce a value.
func Do[T any](ctx context.Context, g *Guard, operation string, fn func(context.Context) (T, error)) (T, error) {
	var out T
	err := g.Execute(ctx, operation, func(ctx context.Context) error {
		v, err := fn(ctx)
		if err != nil {
			return err
		}
		out = v
		return nil
	})
	return out, err
}

func (g *Guard) execute(ctx context.Context, op string, fn func(context.Context) error) error {
	if g.limiter != nil {
		if err := g.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limit wait: %w", err)
		}
	}

	call := func() error {
		callCtx, cancel := context.WithTimeout(ctx, g.cfg.Timeout)
		defer cancel()
		err := fn(callCtx)
		if err == nil || ctx.Err() != nil || !errors.Is(callCtx.Err(), context.DeadlineExceeded) {
			return err
		}
		if errors.Is(err, context.DeadlineExceeded) {
			return fmt.Errorf("%s timed out after %s: %w", op, g.cfg.Timeout, err)
		}
		return fmt.Errorf("%s timed out after %s: %w: %w", op, g.cfg.Timeout, context.DeadlineExceeded, err)
	}

	if !g.cfg.BreakerEnabled {
		return call()
	}
	_, err := g.breaker(op).Execute(func() (any, error) {
		return nil, call()
	})
	return err
}

func (g *Guard) breaker(operation string) *gobreaker.CircuitBreaker[any] {
	g.mu.Lock()
	defer g.mu.Unlock()

	if b, ok := g.breakers[operation]; ok {
		return b
	}

	b := gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:        operation,
		MaxRequests: g.cfg.BreakerHalfOpenMaxCalls,
		Timeout:     g.cfg.BreakerOpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < g.cfg.BreakerMinRequests {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= g.cfg.BreakerFailureRatio
		},
		// A caller hanging up says nothing about the collaborator.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			g.log.Warn("circuit_breaker_state_change",
				slog.String("operation", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()),
			)
		},
	})
	g.breakers[operation] = b
	return b
}

// IsCircuitOpen reports whether err means the call was refused without reaching the collaborator.
func IsCircuitOpen(err error) bool {
	return errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests)
}

func classify(err error) string {
	switch {
	case err == nil:
		return OutcomeSuccess
	case IsCircuitOpen(err):
		return OutcomeRejected
	case errors.Is(err, context.DeadlineExceeded):
		return OutcomeTimeout
	case errors.Is(err, context.Canceled):
		return OutcomeCanceled
	default:
		return OutcomeFailure
	}
}
