package market

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "github.com/Brugger-UFMG/Online-Market/internal/market"

type metrics struct {
	placed      metric.Int64Counter
	transitions metric.Int64Counter
	retrieved   metric.Int64Counter
}

func newMetrics(mp metric.MeterProvider) (*metrics, error) {
	meter := mp.Meter(meterName)

	placed, err := meter.Int64Counter("market.orders.placed",
		metric.WithDescription("Orders placed"),
	)
	if err != nil {
		return nil, err
	}
	transitions, err := meter.Int64Counter("market.orders.transitions",
		metric.WithDescription("Successful order status transitions"),
	)
	if err != nil {
		return nil, err
	}
	retrieved, err := meter.Int64Counter("market.units.retrieved",
		metric.WithDescription("Product units taken out of the catalog by placed orders"),
		metric.WithUnit("{unit}"),
	)
	if err != nil {
		return nil, err
	}

	return &metrics{
		placed:      placed,
		transitions: transitions,
		retrieved:   retrieved,
	}, nil
}

func (m *metrics) orderPlaced(ctx context.Context, units int) {
	m.placed.Add(ctx, 1)
	m.retrieved.Add(ctx, int64(units))
}

func (m *metrics) transition(ctx context.Context, name string) {
	m.transitions.Add(ctx, 1, metric.WithAttributes(attribute.String("transition", name)))
}
