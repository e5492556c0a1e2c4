package storage

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var _ Store = (*TracedStore)(nil)

// TracedStore wraps a Store and records a span per call.
type TracedStore struct {
	next   Store
	tracer trace.Tracer
}

// Traced wraps s with spans named storage.Load and storage.Save.
func Traced(s Store, tp trace.TracerProvider) *TracedStore {
	return &TracedStore{
		next:   s,
		tracer: tp.Tracer("github.com/Brugger-UFMG/Online-Market/internal/storage"),
	}
}

// Load implements Store.
func (t *TracedStore) Load(ctx context.Context) (*Snapshot, error) {
	ctx, span := t.tracer.Start(ctx, "storage.Load")
	defer span.End()

	snap, err := t.next.Load(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(snap.attributes()...)
	return snap, nil
}

// Save implements Store.
func (t *TracedStore) Save(ctx context.Context, snap *Snapshot) error {
	ctx, span := t.tracer.Start(ctx, "storage.Save", trace.WithAttributes(snap.attributes()...))
	defer span.End()

	if err := t.next.Save(ctx, snap); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	return nil
}

// Close implements Store.
func (t *TracedStore) Close() error {
	return t.next.Close()
}

func (s *Snapshot) attributes() []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.Int("market.customers", len(s.Customers)),
		attribute.Int("market.products", len(s.Products)),
		attribute.Int("market.orders", len(s.Orders)),
	}
}
