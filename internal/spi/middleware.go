package spi

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"xs2gate/internal/cms/models"
	"xs2gate/pkg/domain"
	"xs2gate/pkg/platform/circuit"
)

var tracer = otel.Tracer("xs2gate/spi")

// Guarded wraps an Ops facade with a caller-imposed per-call timeout and a
// circuit breaker. When the breaker is open the adapter is not invoked at
// all; the call fails fast as a technical failure. Only technical failures
// feed the breaker: a wrong password is not a reason to fence off the bank.
type Guarded struct {
	next    Ops
	breaker *circuit.Breaker
	timeout time.Duration
}

// Guard decorates ops. A zero timeout disables the deadline.
func Guard(next Ops, breaker *circuit.Breaker, timeout time.Duration) *Guarded {
	return &Guarded{next: next, breaker: breaker, timeout: timeout}
}

func (g *Guarded) AuthorisePsu(ctx context.Context, obj *models.BusinessObject, psu domain.PsuIdData, password string, cd ConsentData) Response[AuthorisationResult] {
	return call(ctx, g, "AuthorisePsu", func(ctx context.Context) Response[AuthorisationResult] {
		return g.next.AuthorisePsu(ctx, obj, psu, password, cd)
	})
}

func (g *Guarded) ListScaMethods(ctx context.Context, obj *models.BusinessObject, psu domain.PsuIdData, cd ConsentData) Response[[]domain.AuthenticationObject] {
	return call(ctx, g, "ListScaMethods", func(ctx context.Context) Response[[]domain.AuthenticationObject] {
		return g.next.ListScaMethods(ctx, obj, psu, cd)
	})
}

func (g *Guarded) RequestAuthorisationCode(ctx context.Context, obj *models.BusinessObject, psu domain.PsuIdData, methodID string, cd ConsentData) Response[AuthorisationCodeResult] {
	return call(ctx, g, "RequestAuthorisationCode", func(ctx context.Context) Response[AuthorisationCodeResult] {
		return g.next.RequestAuthorisationCode(ctx, obj, psu, methodID, cd)
	})
}

func (g *Guarded) StartScaDecoupled(ctx context.Context, obj *models.BusinessObject, psu domain.PsuIdData, methodID string, cd ConsentData) Response[DecoupledResult] {
	return call(ctx, g, "StartScaDecoupled", func(ctx context.Context) Response[DecoupledResult] {
		return g.next.StartScaDecoupled(ctx, obj, psu, methodID, cd)
	})
}

func (g *Guarded) VerifyAndFinalise(ctx context.Context, obj *models.BusinessObject, confirmation ScaConfirmation, cd ConsentData) Response[FinalisationResult] {
	return call(ctx, g, "VerifyAndFinalise", func(ctx context.Context) Response[FinalisationResult] {
		return g.next.VerifyAndFinalise(ctx, obj, confirmation, cd)
	})
}

// GuardedRegistry decorates every facade a registry resolves with the same
// breaker and timeout.
type GuardedRegistry struct {
	inner   *Registry
	breaker *circuit.Breaker
	timeout time.Duration
}

// GuardRegistry wraps a registry so stage handlers only ever see guarded
// adapters.
func GuardRegistry(inner *Registry, breaker *circuit.Breaker, timeout time.Duration) *GuardedRegistry {
	return &GuardedRegistry{inner: inner, breaker: breaker, timeout: timeout}
}

// Ops resolves the facade for a kind and decorates it.
func (r *GuardedRegistry) Ops(kind domain.Kind) (Ops, error) {
	ops, err := r.inner.Ops(kind)
	if err != nil {
		return nil, err
	}
	return Guard(ops, r.breaker, r.timeout), nil
}

func call[T any](ctx context.Context, g *Guarded, op string, fn func(context.Context) Response[T]) Response[T] {
	if g.breaker != nil && g.breaker.IsOpen() {
		return TechnicalFailure[T]("authentication backend circuit open")
	}

	ctx, span := tracer.Start(ctx, "spi."+op, trace.WithAttributes(attribute.String("spi.op", op)))
	defer span.End()

	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	resp := fn(ctx)

	// A deadline hit inside the adapter is an unknown outcome regardless of
	// what the adapter managed to return.
	if ctx.Err() != nil && !resp.Technical() {
		resp = TechnicalFailure[T]("authentication backend timed out")
	}

	if g.breaker != nil {
		if resp.Technical() {
			g.breaker.RecordFailure()
			span.SetAttributes(attribute.Bool("spi.technical_failure", true))
		} else {
			g.breaker.RecordSuccess()
		}
	}
	return resp
}
