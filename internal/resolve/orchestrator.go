package resolve

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/joelkehle/weightfill/internal/extract"
	"github.com/joelkehle/weightfill/internal/units"
)

const DefaultMaxAttempts = 2

// Orchestrator drives one row through an ordered adapter chain: first
// successful candidate wins, not-found advances to the next adapter, a
// fatal error aborts the chain and is propagated to the caller.
type Orchestrator struct {
	adapters    []Adapter
	maxAttempts int
	tracer      trace.Tracer
}

func NewOrchestrator(adapters []Adapter, maxAttempts int) *Orchestrator {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	return &Orchestrator{
		adapters:    adapters,
		maxAttempts: maxAttempts,
		tracer:      otel.Tracer("weightfill/resolve"),
	}
}

// Resolve produces a Result for the row. The only error it returns is a
// fatal one (or context cancellation); every other failure lands in the
// Result as not-found.
func (o *Orchestrator) Resolve(ctx context.Context, row Row) (Result, error) {
	ctx, span := o.tracer.Start(ctx, "resolve.row",
		trace.WithAttributes(attribute.String("product", row.Name)))
	defer span.End()

	res := Result{RowKey: row.Key, Name: row.Name}
	for _, adapter := range o.adapters {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		cand, lastRef, err := o.runAdapter(ctx, adapter, row.Name)
		if lastRef != "" {
			res.LastRef = lastRef
		}
		if err != nil {
			if IsFatal(err) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				span.SetStatus(codes.Error, err.Error())
				return res, err
			}
			log.Printf("weight-resolve product=%q adapter=%s miss: %v", row.Name, adapter.Name(), err)
			continue
		}
		grams, err := units.Normalize(cand.Value, cand.Unit)
		if err != nil {
			// Unknown unit is a no-match for this adapter, never a
			// row failure.
			log.Printf("weight-resolve product=%q adapter=%s unusable candidate %v %s: %v",
				row.Name, adapter.Name(), cand.Value, cand.Unit, err)
			continue
		}
		res.Found = true
		res.Grams = math.Round(grams)
		res.Unit = cand.Unit
		res.Method = fmt.Sprintf("%s(%s)", adapter.Name(), cand.Label)
		span.SetAttributes(
			attribute.Float64("grams", res.Grams),
			attribute.String("method", res.Method),
		)
		return res, nil
	}
	span.SetAttributes(attribute.Bool("manual_review", true))
	return res, nil
}

// runAdapter drives one adapter invocation with the retry budget.
// Recoverable failures re-drive the full Locate→Fetch→Extract sequence;
// there is no partial resume.
func (o *Orchestrator) runAdapter(ctx context.Context, a Adapter, product string) (extract.Candidate, string, error) {
	lastRef := ""
	var lastErr error
	for attempt := 1; attempt <= o.maxAttempts; attempt++ {
		cand, ref, err := o.attempt(ctx, a, product, attempt)
		if ref != "" {
			lastRef = ref
		}
		if err == nil {
			return cand, lastRef, nil
		}
		lastErr = err
		if !recoverable(err) {
			return extract.Candidate{}, lastRef, err
		}
		log.Printf("weight-resolve product=%q adapter=%s attempt=%d recoverable: %v",
			product, a.Name(), attempt, err)
	}
	// Retry budget exhausted: the adapter yields not-found, which is
	// distinct from fatal — the chain moves on.
	return extract.Candidate{}, lastRef, fmt.Errorf("%w after %d attempts: %v", ErrNotFound, o.maxAttempts, lastErr)
}

func (o *Orchestrator) attempt(ctx context.Context, a Adapter, product string, attempt int) (extract.Candidate, string, error) {
	ctx, span := o.tracer.Start(ctx, "resolve.adapter", trace.WithAttributes(
		attribute.String("adapter", a.Name()),
		attribute.Int("attempt", attempt),
	))
	defer span.End()

	state := stateNotStarted
	fail := func(err error) error {
		span.SetAttributes(attribute.String("state", state.String()))
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	ref, err := a.Locate(ctx, product)
	if err != nil {
		return extract.Candidate{}, "", fail(err)
	}
	state = stateLocated

	doc, err := a.Fetch(ctx, ref)
	if err != nil {
		return extract.Candidate{}, ref.URL, fail(err)
	}
	state = stateFetched

	cand, err := a.Extract(ctx, doc)
	if err != nil {
		return extract.Candidate{}, ref.URL, fail(err)
	}
	state = stateExtracted
	span.SetAttributes(attribute.String("state", state.String()))
	return cand, ref.URL, nil
}
