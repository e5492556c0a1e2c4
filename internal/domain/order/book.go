package order

import (
	"fmt"
	"slices"
	"sync"

	"github.com/Brugger-UFMG/Online-Market/internal/domain"
	"github.com/Brugger-UFMG/Online-Market/internal/domain/product"
)

// RestoreError describes why a set of stored orders cannot be loaded into a
// Book.
type RestoreError struct {
	OrderID int
	Reason  string
}

func (e *RestoreError) Error() string {
	return fmt.Sprintf("order %d: %s", e.OrderID, e.Reason)
}

func (e *RestoreError) Unwrap() error { return domain.ErrFormat }

// Book owns every order placed with one owner. Order ids are allocated
// monotonically and never reused: orders are never deleted, so the next id is
// always the current count.
type Book struct {
	mu      sync.Mutex
	ownerID int
	orders  map[int]*Order
}

// NewBook creates an empty order book administered by ownerID.
func NewBook(ownerID int) *Book {
	return &Book{
		ownerID: ownerID,
		orders:  make(map[int]*Order),
	}
}

// OwnerID returns the id of the owner administering the book.
func (b *Book) OwnerID() int {
	return b.ownerID
}

// Place records a new order for c built from already retrieved product
// snapshots. On failure no id is consumed.
func (b *Book) Place(c Customer, products []product.Product) (Order, error) {
	if len(products) == 0 {
		return Order{}, ErrEmptyProducts
	}
	for _, p := range products {
		if p.Quantity <= 0 {
			return Order{}, ErrInvalidQuantity
		}
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	o := &Order{
		ID:         len(b.orders),
		CustomerID: c.CustomerID(),
		Products:   slices.Clone(products),
		Total:      Total(products),
		Status:     StatusPlaced,
	}
	b.orders[o.ID] = o
	c.RecordOrder(o.ID)

	return o.clone(), nil
}

// Cancel moves a placed or sent order to canceled. It reports false, without
// error, when the order is already finished or canceled.
func (b *Book) Cancel(id int) (bool, error) {
	return b.transition(id, (*Order).cancel)
}

// Send moves a placed order to sent. It reports false for any other state.
func (b *Book) Send(id int) (bool, error) {
	return b.transition(id, (*Order).send)
}

// Receive moves a sent order to finished. It reports false for any other
// state.
func (b *Book) Receive(id int) (bool, error) {
	return b.transition(id, (*Order).receive)
}

func (b *Book) transition(id int, apply func(*Order) bool) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	o, ok := b.orders[id]
	if !ok {
		return false, &NotFoundError{OrderID: id}
	}
	return apply(o), nil
}

// Get returns a copy of the order.
func (b *Book) Get(id int) (Order, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	o, ok := b.orders[id]
	if !ok {
		return Order{}, &NotFoundError{OrderID: id}
	}
	return o.clone(), nil
}

// List returns copies of all orders ordered by id.
func (b *Book) List() []Order {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]Order, 0, len(b.orders))
	for id := range len(b.orders) {
		out = append(out, b.orders[id].clone())
	}
	return out
}

// Len returns the number of orders.
func (b *Book) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	return len(b.orders)
}

// NextID returns the id the next successful Place will assign.
func (b *Book) NextID() int {
	return b.Len()
}

// References reports whether any order carries a snapshot of productID.
func (b *Book) References(productID int) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, o := range b.orders {
		if o.Contains(productID) {
			return true
		}
	}
	return false
}

// Restore loads stored orders into an empty book. Ids must be exactly
// 0..n-1, every order must carry at least one positive snapshot and a known
// status. Totals are recomputed from the snapshots.
func (b *Book) Restore(orders []Order) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(b.orders) != 0 {
		return &RestoreError{OrderID: -1, Reason: "book is not empty"}
	}

	restored := make(map[int]*Order, len(orders))
	for _, o := range orders {
		switch {
		case o.ID < 0 || o.ID >= len(orders):
			return &RestoreError{OrderID: o.ID, Reason: "id outside the dense range"}
		case restored[o.ID] != nil:
			return &RestoreError{OrderID: o.ID, Reason: "duplicate id"}
		case !o.Status.Valid():
			return &RestoreError{OrderID: o.ID, Reason: fmt.Sprintf("unknown status %q", o.Status)}
		case len(o.Products) == 0:
			return &RestoreError{OrderID: o.ID, Reason: "no products"}
		}
		for _, p := range o.Products {
			if err := p.Validate(); err != nil || p.Quantity == 0 {
				return &RestoreError{OrderID: o.ID, Reason: fmt.Sprintf("invalid product snapshot %d", p.ID)}
			}
		}

		o = o.clone()
		o.Total = Total(o.Products)
		restored[o.ID] = &o
	}

	b.orders = restored
	return nil
}
