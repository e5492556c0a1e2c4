package order

import (
	"fmt"
	"slices"

	"github.com/shopspring/decimal"

	"github.com/Brugger-UFMG/Online-Market/internal/domain"
	"github.com/Brugger-UFMG/Online-Market/internal/domain/product"
)

// Status is the fulfillment state of an order.
type Status string

const (
	// StatusPlaced is the initial state of every order.
	StatusPlaced Status = "placed"
	// StatusSent marks an order handed to delivery by the owner.
	StatusSent Status = "sent"
	// StatusFinished marks an order whose arrival the customer confirmed.
	StatusFinished Status = "finished"
	// StatusCanceled marks an order withdrawn before completion.
	StatusCanceled Status = "canceled"
)

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusPlaced, StatusSent, StatusFinished, StatusCanceled:
		return true
	default:
		return false
	}
}

// Terminal reports whether no further transition is possible from s.
func (s Status) Terminal() bool {
	return s == StatusFinished || s == StatusCanceled
}

// Sentinel errors for order validation.
var (
	ErrEmptyProducts   = fmt.Errorf("%w: order requires at least one product", domain.ErrInvalidArgument)
	ErrInvalidQuantity = fmt.Errorf("%w: product quantity must be greater than 0", domain.ErrInvalidArgument)
)

// NotFoundError indicates a requested order does not exist.
type NotFoundError struct {
	OrderID int
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("order %d not found", e.OrderID)
}

func (e *NotFoundError) Unwrap() error { return domain.ErrNotFound }

// Order is the record of a purchase. Products holds detached snapshots cut
// from the catalog at placement time; Total is computed once from them.
type Order struct {
	ID         int
	CustomerID int
	Products   []product.Product
	Total      decimal.Decimal
	Status     Status
}

// Customer is the party an order is placed for. The book records the new
// order id in the customer's history.
type Customer interface {
	CustomerID() int
	RecordOrder(orderID int)
}

// Total returns the sum of price * quantity over all snapshots.
func Total(products []product.Product) decimal.Decimal {
	sum := decimal.Zero
	for _, p := range products {
		sum = sum.Add(p.TotalPrice())
	}
	return sum
}

// Contains reports whether the order carries a snapshot of productID.
func (o Order) Contains(productID int) bool {
	return slices.ContainsFunc(o.Products, func(p product.Product) bool {
		return p.ID == productID
	})
}

// clone returns a copy that shares no slice storage with o.
func (o Order) clone() Order {
	o.Products = slices.Clone(o.Products)
	return o
}

func (o *Order) cancel() bool {
	if o.Status != StatusPlaced && o.Status != StatusSent {
		return false
	}
	o.Status = StatusCanceled
	return true
}

func (o *Order) send() bool {
	if o.Status != StatusPlaced {
		return false
	}
	o.Status = StatusSent
	return true
}

func (o *Order) receive() bool {
	if o.Status != StatusSent {
		return false
	}
	o.Status = StatusFinished
	return true
}
