// Package market wires the catalog, the order book and the customer
// directory of one owner into a single aggregate and implements the flows
// that cross them: turning a selection into an order, role based login and
// the export/restore of the whole graph.
package market

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"

	"github.com/Brugger-UFMG/Online-Market/internal/domain/order"
	"github.com/Brugger-UFMG/Online-Market/internal/domain/product"
	"github.com/Brugger-UFMG/Online-Market/internal/domain/user"
)

// ErrInvalidCredentials is returned by Login for an unknown name or a wrong
// password.
var ErrInvalidCredentials = errors.New("invalid name or password")

// Option configures a Market.
type Option func(*options)

type options struct {
	meterProvider metric.MeterProvider
}

// WithMeterProvider sets the provider used for market counters. The global
// provider is used by default.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(o *options) {
		o.meterProvider = mp
	}
}

// Market is the owner-administered aggregate. It is meant for a single
// session at a time; only the catalog and the book guard themselves.
type Market struct {
	owner     *user.Owner
	catalog   *product.Catalog
	book      *order.Book
	customers *user.Directory
	metrics   *metrics
}

// New creates an empty market administered by owner.
func New(owner *user.Owner, opts ...Option) (*Market, error) {
	o := options{meterProvider: otel.GetMeterProvider()}
	for _, opt := range opts {
		opt(&o)
	}

	m, err := newMetrics(o.meterProvider)
	if err != nil {
		return nil, errors.Wrap(err, "create metrics")
	}

	book := order.NewBook(owner.ID)
	customers := user.NewDirectory()
	customers.Reserve(owner.Name, owner.ID)

	return &Market{
		owner:     owner,
		catalog:   product.NewCatalog(owner.ID, product.WithReferenceGuard(book.References)),
		book:      book,
		customers: customers,
		metrics:   m,
	}, nil
}

// Owner returns the administrator of the market.
func (m *Market) Owner() *user.Owner { return m.owner }

// Catalog returns the product catalog.
func (m *Market) Catalog() *product.Catalog { return m.catalog }

// Orders returns the order book.
func (m *Market) Orders() *order.Book { return m.book }

// Customers returns the customer directory.
func (m *Market) Customers() *user.Directory { return m.customers }

// Account is the result of a successful login. Customer is set only for
// RoleCustomer.
type Account struct {
	Role     user.Role
	Identity *user.Identity
	Customer *user.Customer
}

// Login authenticates by name. The owner is checked first.
func (m *Market) Login(name, password string) (Account, error) {
	if name == m.owner.Name {
		if !m.owner.Authenticate(password) {
			return Account{}, ErrInvalidCredentials
		}
		return Account{Role: user.RoleOwner, Identity: &m.owner.Identity}, nil
	}

	c, err := m.customers.ByName(name)
	if err != nil || !c.Authenticate(password) {
		return Account{}, ErrInvalidCredentials
	}
	return Account{Role: user.RoleCustomer, Identity: &c.Identity, Customer: c}, nil
}

// Register creates a customer account.
func (m *Market) Register(ctx context.Context, name, password string, address user.Address) (*user.Customer, error) {
	c, err := m.customers.Register(name, password, address)
	if err != nil {
		return nil, err
	}
	zctx.From(ctx).Info("Customer registered", zap.Int("customer_id", c.ID), zap.String("name", c.Name))
	return c, nil
}

// AddProduct registers a product under the next free id and stocks it with
// quantity units.
func (m *Market) AddProduct(ctx context.Context, name string, price decimal.Decimal, quantity int) (product.Product, error) {
	if quantity < 0 {
		return product.Product{}, product.ErrNegativeStock
	}

	id := m.catalog.NextID()
	if err := m.catalog.Register(id, name, price); err != nil {
		return product.Product{}, err
	}
	if quantity > 0 {
		if err := m.catalog.Restock(id, quantity); err != nil {
			return product.Product{}, err
		}
	}

	zctx.From(ctx).Info("Product added",
		zap.Int("product_id", id),
		zap.String("name", name),
		zap.Stringer("price", price),
		zap.Int("quantity", quantity),
	)
	return m.catalog.Get(id)
}

// DeleteProduct removes a product from the catalog. Products still carried
// by an order cannot be deleted.
func (m *Market) DeleteProduct(ctx context.Context, id int) error {
	if err := m.catalog.Delete(id); err != nil {
		return err
	}
	zctx.From(ctx).Info("Product deleted", zap.Int("product_id", id))
	return nil
}
