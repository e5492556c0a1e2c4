package product

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/Brugger-UFMG/Online-Market/internal/domain"
)

// Sentinel errors for catalog validation.
var (
	ErrInvalidAmount   = fmt.Errorf("%w: amount must be greater than 0", domain.ErrInvalidArgument)
	ErrInvalidPrice    = fmt.Errorf("%w: price must be greater than 0", domain.ErrInvalidArgument)
	ErrInvalidID       = fmt.Errorf("%w: product id must not be negative", domain.ErrInvalidArgument)
	ErrNegativeStock   = fmt.Errorf("%w: quantity must not be negative", domain.ErrInvalidArgument)
	ErrInsufficientQty = fmt.Errorf("%w: requested amount exceeds available quantity", domain.ErrInvalidArgument)
)

// NotFoundError indicates a requested product does not exist.
type NotFoundError struct {
	ProductID int
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("product %d not found", e.ProductID)
}

func (e *NotFoundError) Unwrap() error { return domain.ErrNotFound }

// DuplicateError indicates a product id is already registered.
type DuplicateError struct {
	ProductID int
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("product %d already exists", e.ProductID)
}

func (e *DuplicateError) Unwrap() error { return domain.ErrDuplicateKey }

// InUseError indicates a product cannot be deleted because an order still
// carries a snapshot of it.
type InUseError struct {
	ProductID int
}

func (e *InUseError) Error() string {
	return fmt.Sprintf("product %d is referenced by an order", e.ProductID)
}

func (e *InUseError) Unwrap() error { return domain.ErrInvalidArgument }

// OwnerMismatchError indicates a product record belongs to another owner.
type OwnerMismatchError struct {
	ProductID int
	Want      int
	Got       int
}

func (e *OwnerMismatchError) Error() string {
	return fmt.Sprintf("product %d: expected owner %d, got %d", e.ProductID, e.Want, e.Got)
}

func (e *OwnerMismatchError) Unwrap() error { return domain.ErrInvalidArgument }

// Product is an inventory line item. Inside a Catalog it is the live stock
// record; anywhere else it is a detached snapshot whose Quantity is the amount
// that was taken out of the catalog.
type Product struct {
	ID       int
	Name     string
	Price    decimal.Decimal
	Quantity int
	OwnerID  int
}

// Equal reports whether both values describe the same product. Products are
// compared by identity, not by value.
func (p Product) Equal(other Product) bool {
	return p.ID == other.ID
}

// TotalPrice returns Price * Quantity.
func (p Product) TotalPrice() decimal.Decimal {
	return p.Price.Mul(decimal.NewFromInt(int64(p.Quantity)))
}

// Validate checks the record invariants: non-negative id, positive price and
// non-negative quantity.
func (p Product) Validate() error {
	if p.ID < 0 {
		return ErrInvalidID
	}
	if !p.Price.IsPositive() {
		return ErrInvalidPrice
	}
	if p.Quantity < 0 {
		return ErrNegativeStock
	}
	return nil
}
