// Package storage defines the persisted shape of a market and the Store
// boundary that loads and saves it.
package storage

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/Brugger-UFMG/Online-Market/internal/domain"
)

// OwnerRecord is the persisted owner identity.
type OwnerRecord struct {
	ID       int
	Name     string
	Password string
}

// AddressRecord is the persisted customer address.
type AddressRecord struct {
	Street      string
	City        string
	State       string
	ZipCode     string
	HouseNumber int
	Complement  string
}

// CustomerRecord is a persisted customer. The order history is not stored:
// it is rebuilt from the customer ids of the orders.
type CustomerRecord struct {
	ID       int
	Name     string
	Password string
	Address  AddressRecord
}

// ProductRecord is a persisted product. The same shape is used for catalog
// entries and for order snapshots.
type ProductRecord struct {
	ID       int
	OwnerID  int
	Name     string
	Price    decimal.Decimal
	Quantity int
}

// OrderRecord is a persisted order. The total is not stored.
type OrderRecord struct {
	ID         int
	CustomerID int
	Status     string
	Products   []ProductRecord
}

// Snapshot is the complete persisted state of a market.
type Snapshot struct {
	Owner     OwnerRecord
	Customers []CustomerRecord
	Products  []ProductRecord
	Orders    []OrderRecord
}

// Store loads and saves whole snapshots.
type Store interface {
	// Load returns ErrNotFound when nothing was saved yet.
	Load(ctx context.Context) (*Snapshot, error)
	Save(ctx context.Context, snap *Snapshot) error
	Close() error
}

// ErrNotFound is returned by Load when the backing store holds no market.
var ErrNotFound = fmt.Errorf("%w: no stored market", domain.ErrNotFound)

// FormatError reports stored data that is malformed or inconsistent.
type FormatError struct {
	Msg string
	Err error
}

// Formatf builds a FormatError from a message.
func Formatf(format string, args ...any) error {
	return &FormatError{Msg: fmt.Sprintf(format, args...)}
}

func (e *FormatError) Error() string {
	if e.Err == nil {
		return "invalid stored data: " + e.Msg
	}
	return fmt.Sprintf("invalid stored data: %s: %v", e.Msg, e.Err)
}

func (e *FormatError) Unwrap() []error {
	if e.Err == nil {
		return []error{domain.ErrFormat}
	}
	return []error{domain.ErrFormat, e.Err}
}

// IOError reports a failure of the underlying medium.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() []error {
	return []error{domain.ErrIO, e.Err}
}
