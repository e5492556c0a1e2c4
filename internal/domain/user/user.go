package user

import (
	"fmt"
	"slices"

	"github.com/go-faster/errors"

	"github.com/Brugger-UFMG/Online-Market/internal/domain"
)

// Role tells which menu of operations an identity is allowed to use.
type Role uint8

const (
	// RoleCustomer browses the catalog and places orders.
	RoleCustomer Role = iota + 1
	// RoleOwner administers the catalog and the order book.
	RoleOwner
)

func (r Role) String() string {
	switch r {
	case RoleCustomer:
		return "customer"
	case RoleOwner:
		return "owner"
	default:
		return fmt.Sprintf("Role(%d)", uint8(r))
	}
}

var (
	// ErrWrongPassword is returned when the current password does not match.
	ErrWrongPassword = errors.New("wrong password")
	// ErrShortPassword is returned for passwords of one character or less.
	ErrShortPassword = fmt.Errorf("%w: password is too short", domain.ErrInvalidArgument)
)

// Identity is the authentication part shared by owners and customers.
// Passwords are kept and compared in plaintext.
type Identity struct {
	ID       int
	Name     string
	Password string
}

// Authenticate reports whether password matches.
func (i *Identity) Authenticate(password string) bool {
	return i.Password == password
}

// ChangePassword replaces the password after checking the current one.
func (i *Identity) ChangePassword(current, next string) error {
	if !i.Authenticate(current) {
		return ErrWrongPassword
	}
	if len(next) <= 1 {
		return ErrShortPassword
	}
	i.Password = next
	return nil
}

// Address is a customer's delivery address.
type Address struct {
	Street      string
	City        string
	State       string
	ZipCode     string
	HouseNumber int
	Complement  string
}

// Owner is the single administrator of a market.
type Owner struct {
	Identity
}

// NewOwner creates an owner identity.
func NewOwner(id int, name, password string) *Owner {
	return &Owner{Identity: Identity{ID: id, Name: name, Password: password}}
}

// Customer is a registered buyer. It keeps the ids of its orders in
// placement order; the orders themselves live in the order book.
type Customer struct {
	Identity
	Address Address

	orders []int
}

// NewCustomer creates a customer with an empty order history.
func NewCustomer(id int, name, password string, address Address) *Customer {
	return &Customer{
		Identity: Identity{ID: id, Name: name, Password: password},
		Address:  address,
	}
}

// CustomerID returns the customer id.
func (c *Customer) CustomerID() int {
	return c.ID
}

// RecordOrder appends an order id to the history.
func (c *Customer) RecordOrder(orderID int) {
	c.orders = append(c.orders, orderID)
}

// OrderIDs returns a copy of the order history.
func (c *Customer) OrderIDs() []int {
	return slices.Clone(c.orders)
}
