package user

import (
	"fmt"
	"maps"
	"slices"

	"github.com/Brugger-UFMG/Online-Market/internal/domain"
)

// NotFoundError indicates a requested customer does not exist.
type NotFoundError struct {
	CustomerID int
	Name       string
}

func (e *NotFoundError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("customer %q not found", e.Name)
	}
	return fmt.Sprintf("customer %d not found", e.CustomerID)
}

func (e *NotFoundError) Unwrap() error { return domain.ErrNotFound }

// NameTakenError indicates a login name is already used.
type NameTakenError struct {
	Name string
}

func (e *NameTakenError) Error() string {
	return fmt.Sprintf("name %q is already taken", e.Name)
}

func (e *NameTakenError) Unwrap() error { return domain.ErrDuplicateKey }

// DuplicateIDError indicates a customer id is already registered.
type DuplicateIDError struct {
	CustomerID int
}

func (e *DuplicateIDError) Error() string {
	return fmt.Sprintf("customer %d already exists", e.CustomerID)
}

func (e *DuplicateIDError) Unwrap() error { return domain.ErrDuplicateKey }

// Directory is the registry of customers, indexed by id and by login name.
// Names reserved with Reserve (the owner's) cannot be registered.
type Directory struct {
	byID     map[int]*Customer
	byName   map[string]*Customer
	reserved map[string]int
}

// NewDirectory creates an empty directory.
func NewDirectory() *Directory {
	return &Directory{
		byID:     make(map[int]*Customer),
		byName:   make(map[string]*Customer),
		reserved: make(map[string]int),
	}
}

// Reserve blocks a name and an id used by a non-customer identity.
func (d *Directory) Reserve(name string, id int) {
	d.reserved[name] = id
}

// Register creates a customer with the next free id.
func (d *Directory) Register(name, password string, address Address) (*Customer, error) {
	if d.taken(name) {
		return nil, &NameTakenError{Name: name}
	}
	if len(password) <= 1 {
		return nil, ErrShortPassword
	}

	c := NewCustomer(d.NextID(), name, password, address)
	d.byID[c.ID] = c
	d.byName[c.Name] = c
	return c, nil
}

// Add inserts an existing customer, as read back from storage.
func (d *Directory) Add(c *Customer) error {
	if _, ok := d.byID[c.ID]; ok {
		return &DuplicateIDError{CustomerID: c.ID}
	}
	for _, id := range d.reserved {
		if id == c.ID {
			return &DuplicateIDError{CustomerID: c.ID}
		}
	}
	if d.taken(c.Name) {
		return &NameTakenError{Name: c.Name}
	}
	d.byID[c.ID] = c
	d.byName[c.Name] = c
	return nil
}

// Get returns the customer with the given id.
func (d *Directory) Get(id int) (*Customer, error) {
	c, ok := d.byID[id]
	if !ok {
		return nil, &NotFoundError{CustomerID: id}
	}
	return c, nil
}

// ByName returns the customer with the given login name.
func (d *Directory) ByName(name string) (*Customer, error) {
	c, ok := d.byName[name]
	if !ok {
		return nil, &NotFoundError{Name: name}
	}
	return c, nil
}

// List returns all customers ordered by id.
func (d *Directory) List() []*Customer {
	ids := slices.Sorted(maps.Keys(d.byID))
	out := make([]*Customer, len(ids))
	for i, id := range ids {
		out[i] = d.byID[id]
	}
	return out
}

// Len returns the number of customers.
func (d *Directory) Len() int {
	return len(d.byID)
}

// NextID returns one past the highest id in use, counting reserved ids, so
// customer ids are never reused.
func (d *Directory) NextID() int {
	next := 0
	for id := range d.byID {
		next = max(next, id+1)
	}
	for _, id := range d.reserved {
		next = max(next, id+1)
	}
	return next
}

func (d *Directory) taken(name string) bool {
	if _, ok := d.reserved[name]; ok {
		return true
	}
	_, ok := d.byName[name]
	return ok
}
