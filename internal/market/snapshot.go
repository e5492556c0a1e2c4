package market

import (
	"fmt"

	"github.com/Brugger-UFMG/Online-Market/internal/domain/order"
	"github.com/Brugger-UFMG/Online-Market/internal/domain/product"
	"github.com/Brugger-UFMG/Online-Market/internal/domain/user"
	"github.com/Brugger-UFMG/Online-Market/internal/storage"
)

// Export captures the whole market as a storage snapshot. Customers,
// products and orders are ordered by id.
func (m *Market) Export() *storage.Snapshot {
	snap := &storage.Snapshot{
		Owner: storage.OwnerRecord{
			ID:       m.owner.ID,
			Name:     m.owner.Name,
			Password: m.owner.Password,
		},
	}

	for _, c := range m.customers.List() {
		snap.Customers = append(snap.Customers, storage.CustomerRecord{
			ID:       c.ID,
			Name:     c.Name,
			Password: c.Password,
			Address:  storage.AddressRecord(c.Address),
		})
	}
	snap.Products = productRecords(m.catalog.List())
	for _, o := range m.book.List() {
		snap.Orders = append(snap.Orders, storage.OrderRecord{
			ID:         o.ID,
			CustomerID: o.CustomerID,
			Status:     string(o.Status),
			Products:   productRecords(o.Products),
		})
	}
	return snap
}

func productRecords(products []product.Product) []storage.ProductRecord {
	if len(products) == 0 {
		return nil
	}
	out := make([]storage.ProductRecord, len(products))
	for i, p := range products {
		out[i] = storage.ProductRecord{
			ID:       p.ID,
			OwnerID:  p.OwnerID,
			Name:     p.Name,
			Price:    p.Price,
			Quantity: p.Quantity,
		}
	}
	return out
}

func fromRecord(r storage.ProductRecord) product.Product {
	return product.Product{
		ID:       r.ID,
		Name:     r.Name,
		Price:    r.Price,
		Quantity: r.Quantity,
		OwnerID:  r.OwnerID,
	}
}

// Restore rebuilds a market from a snapshot, relinking every record by id.
// Customer order histories are rebuilt from the orders. Any duplicate,
// dangling reference or invariant violation yields a storage.FormatError.
func Restore(snap *storage.Snapshot, opts ...Option) (*Market, error) {
	owner := user.NewOwner(snap.Owner.ID, snap.Owner.Name, snap.Owner.Password)
	m, err := New(owner, opts...)
	if err != nil {
		return nil, err
	}

	for _, r := range snap.Customers {
		c := user.NewCustomer(r.ID, r.Name, r.Password, user.Address(r.Address))
		if err := m.customers.Add(c); err != nil {
			return nil, &storage.FormatError{Msg: fmt.Sprintf("customer %d", r.ID), Err: err}
		}
	}

	for _, r := range snap.Products {
		if err := m.catalog.Insert(fromRecord(r)); err != nil {
			return nil, &storage.FormatError{Msg: fmt.Sprintf("product %d", r.ID), Err: err}
		}
	}

	orders := make([]order.Order, 0, len(snap.Orders))
	for _, r := range snap.Orders {
		if _, err := m.customers.Get(r.CustomerID); err != nil {
			return nil, &storage.FormatError{Msg: fmt.Sprintf("order %d", r.ID), Err: err}
		}
		o := order.Order{
			ID:         r.ID,
			CustomerID: r.CustomerID,
			Status:     order.Status(r.Status),
			Products:   make([]product.Product, 0, len(r.Products)),
		}
		for _, p := range r.Products {
			if p.OwnerID != owner.ID {
				return nil, storage.Formatf("order %d: product %d belongs to owner %d", r.ID, p.ID, p.OwnerID)
			}
			o.Products = append(o.Products, fromRecord(p))
		}
		orders = append(orders, o)
	}
	if err := m.book.Restore(orders); err != nil {
		return nil, &storage.FormatError{Msg: "orders", Err: err}
	}

	for _, o := range m.book.List() {
		c, err := m.customers.Get(o.CustomerID)
		if err != nil {
			return nil, &storage.FormatError{Msg: fmt.Sprintf("order %d", o.ID), Err: err}
		}
		c.RecordOrder(o.ID)
	}
	return m, nil
}
