package docstore

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/AlibekovAA/gym-api/internal/common/logger"
	"github.com/AlibekovAA/gym-api/internal/common/resilience"
	"github.com/AlibekovAA/gym-api/internal/observability/metrics"
)

const tracerName = "github.com/AlibekovAA/gym-api/docstore"

// Guarded decorates a store so every collection call passes through one
// circuit breaker and is measured. An open breaker fails fast with
// ErrUnavailable; nothing is retried.
type Guarded struct {
	Store
	breaker *resilience.CircuitBreaker
}

func NewGuarded(store Store, log *logger.Logger) *Guarded {
	cfg := resilience.DefaultCircuitBreakerConfig("docstore_"+store.Driver(), log)
	cfg.IsFailure = func(err error) bool {
		return !errors.Is(err, ErrNotFound) &&
			!errors.Is(err, ErrConflict) &&
			!errors.Is(err, context.Canceled)
	}
	return &Guarded{Store: store, breaker: resilience.NewCircuitBreaker(cfg)}
}

func (g *Guarded) Collection(name string) Collection {
	return &guardedCollection{
		inner:   g.Store.Collection(name),
		driver:  g.Store.Driver(),
		breaker: g.breaker,
	}
}

type guardedCollection struct {
	inner   Collection
	driver  string
	breaker *resilience.CircuitBreaker
}

func (c *guardedCollection) Name() string { return c.inner.Name() }

func (c *guardedCollection) Get(ctx context.Context, id string, out any) error {
	return c.run(ctx, "get", func(ctx context.Context) error { return c.inner.Get(ctx, id, out) })
}

func (c *guardedCollection) Create(ctx context.Context, id string, doc any) error {
	return c.run(ctx, "create", func(ctx context.Context) error { return c.inner.Create(ctx, id, doc) })
}

func (c *guardedCollection) Replace(ctx context.Context, id string, doc any) error {
	return c.run(ctx, "replace", func(ctx context.Context) error { return c.inner.Replace(ctx, id, doc) })
}

func (c *guardedCollection) Delete(ctx context.Context, id string) error {
	return c.run(ctx, "delete", func(ctx context.Context) error { return c.inner.Delete(ctx, id) })
}

func (c *guardedCollection) Find(ctx context.Context, filter Filter, out any) error {
	return c.run(ctx, "find", func(ctx context.Context) error { return c.inner.Find(ctx, filter, out) })
}

func (c *guardedCollection) run(ctx context.Context, op string, fn func(context.Context) error) error {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "docstore."+op)
	span.SetAttributes(
		attribute.String("db.system", c.driver),
		attribute.String("db.collection", c.inner.Name()),
		attribute.String("db.operation", op),
	)
	defer span.End()

	start := time.Now()
	err := c.breaker.Call(ctx, fn)
	metrics.StoreOperationDurationSeconds.WithLabelValues(c.driver, op, c.inner.Name()).Observe(time.Since(start).Seconds())

	if err == nil {
		return nil
	}
	if errors.Is(err, resilience.ErrCircuitOpen) {
		err = unavailable(err)
	}

	errType := "unavailable"
	switch {
	case errors.Is(err, ErrNotFound):
		errType = "not_found"
	case errors.Is(err, ErrConflict):
		errType = "conflict"
	default:
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	metrics.StoreOperationErrors.WithLabelValues(c.driver, op, c.inner.Name(), errType).Inc()
	return err
}
