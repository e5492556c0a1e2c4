package product

import (
	"slices"
	"sync"

	"github.com/shopspring/decimal"
)

// CatalogOption configures a Catalog.
type CatalogOption func(*Catalog)

// WithReferenceGuard makes Delete refuse ids for which referenced returns
// true. Without a guard the catalog does not know about orders and the caller
// is responsible for the check.
func WithReferenceGuard(referenced func(id int) bool) CatalogOption {
	return func(c *Catalog) {
		c.referenced = referenced
	}
}

// Catalog owns the stock records of a single owner, keyed by product id.
//
// All operations hold the catalog mutex, so Retrieve is an atomic
// check-then-decrement even if the catalog is shared.
type Catalog struct {
	mu         sync.Mutex
	ownerID    int
	products   map[int]*Product
	referenced func(id int) bool
}

// NewCatalog creates an empty catalog administered by ownerID.
func NewCatalog(ownerID int, opts ...CatalogOption) *Catalog {
	c := &Catalog{
		ownerID:  ownerID,
		products: make(map[int]*Product),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// OwnerID returns the id of the owner administering the catalog.
func (c *Catalog) OwnerID() int {
	return c.ownerID
}

// Register adds a new product with zero stock.
func (c *Catalog) Register(id int, name string, price decimal.Decimal) error {
	p := Product{ID: id, Name: name, Price: price, OwnerID: c.ownerID}
	if err := p.Validate(); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.products[id]; ok {
		return &DuplicateError{ProductID: id}
	}
	c.products[id] = &p
	return nil
}

// Insert adds a fully populated record, as read back from storage.
func (c *Catalog) Insert(p Product) error {
	if err := p.Validate(); err != nil {
		return err
	}
	if p.OwnerID != c.ownerID {
		return &OwnerMismatchError{ProductID: p.ID, Want: c.ownerID, Got: p.OwnerID}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.products[p.ID]; ok {
		return &DuplicateError{ProductID: p.ID}
	}
	c.products[p.ID] = &p
	return nil
}

// Restock increases the stock of a product by amount.
func (c *Catalog) Restock(id, amount int) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	p, ok := c.products[id]
	if !ok {
		return &NotFoundError{ProductID: id}
	}
	p.Quantity += amount
	return nil
}

// Deduct decreases the stock of a product by amount. The quantity never goes
// negative: deducting more than is available fails and leaves the record as
// is.
func (c *Catalog) Deduct(id, amount int) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	return c.deductLocked(id, amount)
}

func (c *Catalog) deductLocked(id, amount int) error {
	p, ok := c.products[id]
	if !ok {
		return &NotFoundError{ProductID: id}
	}
	if amount > p.Quantity {
		return ErrInsufficientQty
	}
	p.Quantity -= amount
	return nil
}

// Delete removes a product and frees its id for reuse.
func (c *Catalog) Delete(id int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.products[id]; !ok {
		return &NotFoundError{ProductID: id}
	}
	if c.referenced != nil && c.referenced(id) {
		return &InUseError{ProductID: id}
	}
	delete(c.products, id)
	return nil
}

// Get returns a copy of the stock record.
func (c *Catalog) Get(id int) (Product, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	p, ok := c.products[id]
	if !ok {
		return Product{}, &NotFoundError{ProductID: id}
	}
	return *p, nil
}

// Retrieve takes amount units out of the catalog and returns them as a
// detached snapshot whose Quantity equals amount.
func (c *Catalog) Retrieve(id, amount int) (Product, error) {
	if amount <= 0 {
		return Product{}, ErrInvalidAmount
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.deductLocked(id, amount); err != nil {
		return Product{}, err
	}
	snapshot := *c.products[id]
	snapshot.Quantity = amount
	return snapshot, nil
}

// Reprice changes the unit price of a product.
func (c *Catalog) Reprice(id int, price decimal.Decimal) error {
	if !price.IsPositive() {
		return ErrInvalidPrice
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	p, ok := c.products[id]
	if !ok {
		return &NotFoundError{ProductID: id}
	}
	p.Price = price
	return nil
}

// Rename changes the display name of a product.
func (c *Catalog) Rename(id int, name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	p, ok := c.products[id]
	if !ok {
		return &NotFoundError{ProductID: id}
	}
	p.Name = name
	return nil
}

// List returns copies of all records ordered by id.
func (c *Catalog) List() []Product {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]Product, 0, len(c.products))
	for _, id := range c.sortedIDsLocked() {
		out = append(out, *c.products[id])
	}
	return out
}

// IDs returns all product ids in ascending order.
func (c *Catalog) IDs() []int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.sortedIDsLocked()
}

// Len returns the number of registered products.
func (c *Catalog) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.products)
}

// NextID returns the smallest non-negative id not in use, so ids of deleted
// products are handed out again.
func (c *Catalog) NextID() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i, id := range c.sortedIDsLocked() {
		if id != i {
			return i
		}
	}
	return len(c.products)
}

func (c *Catalog) sortedIDsLocked() []int {
	ids := make([]int, 0, len(c.products))
	for id := range c.products {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}
