package market

import (
	"context"
	"slices"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/Brugger-UFMG/Online-Market/internal/domain/order"
	"github.com/Brugger-UFMG/Online-Market/internal/domain/product"
	"github.com/Brugger-UFMG/Online-Market/internal/domain/user"
)

// Selection asks for Quantity units of a catalog product.
type Selection struct {
	ProductID int
	Quantity  int
}

// mergeSelections sums quantities per product, keeping first-seen order.
func mergeSelections(selections []Selection) ([]Selection, error) {
	merged := make([]Selection, 0, len(selections))
	for _, s := range selections {
		if s.Quantity <= 0 {
			return nil, product.ErrInvalidAmount
		}
		i := slices.IndexFunc(merged, func(m Selection) bool { return m.ProductID == s.ProductID })
		if i < 0 {
			merged = append(merged, s)
			continue
		}
		merged[i].Quantity += s.Quantity
	}
	return merged, nil
}

// PlaceOrder takes every selection out of the catalog and places one order
// with the resulting snapshots. If any selection cannot be retrieved, the
// units already taken are put back and no order is placed.
func (m *Market) PlaceOrder(ctx context.Context, customerID int, selections []Selection) (order.Order, error) {
	c, err := m.customers.Get(customerID)
	if err != nil {
		return order.Order{}, err
	}
	merged, err := mergeSelections(selections)
	if err != nil {
		return order.Order{}, err
	}
	if len(merged) == 0 {
		return order.Order{}, order.ErrEmptyProducts
	}

	snapshots := make([]product.Product, 0, len(merged))
	for _, s := range merged {
		p, err := m.catalog.Retrieve(s.ProductID, s.Quantity)
		if err != nil {
			m.putBack(ctx, snapshots)
			return order.Order{}, errors.Wrapf(err, "retrieve product %d", s.ProductID)
		}
		snapshots = append(snapshots, p)
	}

	o, err := m.place(ctx, c, snapshots)
	if err != nil {
		m.putBack(ctx, snapshots)
		return order.Order{}, err
	}
	return o, nil
}

// Submit places an order from snapshots already retrieved from the catalog.
func (m *Market) Submit(ctx context.Context, customerID int, snapshots []product.Product) (order.Order, error) {
	c, err := m.customers.Get(customerID)
	if err != nil {
		return order.Order{}, err
	}
	return m.place(ctx, c, snapshots)
}

func (m *Market) place(ctx context.Context, c *user.Customer, snapshots []product.Product) (order.Order, error) {
	o, err := m.book.Place(c, snapshots)
	if err != nil {
		return order.Order{}, err
	}

	units := 0
	for _, p := range o.Products {
		units += p.Quantity
	}
	m.metrics.orderPlaced(ctx, units)

	zctx.From(ctx).Info("Order placed",
		zap.Int("order_id", o.ID),
		zap.Int("customer_id", o.CustomerID),
		zap.Int("lines", len(o.Products)),
		zap.Stringer("total", o.Total),
	)
	return o, nil
}

func (m *Market) putBack(ctx context.Context, snapshots []product.Product) {
	for _, p := range snapshots {
		if err := m.catalog.Restock(p.ID, p.Quantity); err != nil {
			zctx.From(ctx).Error("Put back retrieved units",
				zap.Int("product_id", p.ID),
				zap.Int("quantity", p.Quantity),
				zap.Error(err),
			)
		}
	}
}

// CancelOrder cancels a placed or sent order. Stock is not returned to the
// catalog.
func (m *Market) CancelOrder(ctx context.Context, id int) (bool, error) {
	return m.transition(ctx, "cancel", id, m.book.Cancel)
}

// SendOrder marks a placed order as sent.
func (m *Market) SendOrder(ctx context.Context, id int) (bool, error) {
	return m.transition(ctx, "send", id, m.book.Send)
}

// ReceiveOrder marks a sent order as finished.
func (m *Market) ReceiveOrder(ctx context.Context, id int) (bool, error) {
	return m.transition(ctx, "receive", id, m.book.Receive)
}

func (m *Market) transition(ctx context.Context, name string, id int, apply func(int) (bool, error)) (bool, error) {
	ok, err := apply(id)
	if err != nil {
		return false, err
	}

	lg := zctx.From(ctx).With(zap.String("transition", name), zap.Int("order_id", id))
	if !ok {
		lg.Info("Order transition refused")
		return false, nil
	}
	m.metrics.transition(ctx, name)
	lg.Info("Order transitioned")
	return true, nil
}

// CustomerOrders resolves the order history of a customer, oldest first.
func (m *Market) CustomerOrders(customerID int) ([]order.Order, error) {
	c, err := m.customers.Get(customerID)
	if err != nil {
		return nil, err
	}

	ids := c.OrderIDs()
	out := make([]order.Order, 0, len(ids))
	for _, id := range ids {
		o, err := m.book.Get(id)
		if err != nil {
			return nil, errors.Wrapf(err, "customer %d history", customerID)
		}
		out = append(out, o)
	}
	return out, nil
}

// CustomerOrder returns one order of the customer. Orders placed by someone
// else are reported as not found.
func (m *Market) CustomerOrder(customerID, orderID int) (order.Order, error) {
	c, err := m.customers.Get(customerID)
	if err != nil {
		return order.Order{}, err
	}
	if !slices.Contains(c.OrderIDs(), orderID) {
		return order.Order{}, &order.NotFoundError{OrderID: orderID}
	}
	return m.book.Get(orderID)
}
