// Package postgres implements storage.Store on PostgreSQL.
package postgres

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	pgxdecimal "github.com/jackc/pgx-shopspring-decimal"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/Brugger-UFMG/Online-Market/db"
	"github.com/Brugger-UFMG/Online-Market/internal/storage"
)

const (
	selectOwnerSQL = `SELECT id, name, password FROM owners ORDER BY id LIMIT 1`

	selectCustomersSQL = `SELECT id, name, password, street, city, state, zip_code, house_number, complement
		FROM customers ORDER BY id`

	selectProductsSQL = `SELECT id, owner_id, name, price, quantity FROM products ORDER BY id`

	selectOrdersSQL = `SELECT id, customer_id, status FROM orders ORDER BY id`

	selectOrderProductsSQL = `SELECT order_id, product_id, owner_id, name, price, quantity
		FROM order_products ORDER BY order_id, position`

	truncateSQL = `TRUNCATE order_products, orders, products, customers, owners`

	insertOwnerSQL = `INSERT INTO owners (id, name, password) VALUES ($1, $2, $3)`
)

var _ storage.Store = (*Store)(nil)

// Store keeps a market in PostgreSQL. Every Save replaces the whole graph in
// one transaction.
type Store struct {
	pool *pgxpool.Pool
}

// Open connects to databaseURL, applies db.Schema and returns a Store owning
// the pool. NUMERIC columns are decoded into decimal.Decimal.
func Open(ctx context.Context, databaseURL string) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, &storage.IOError{Op: "parse config", Path: "postgres", Err: err}
	}
	cfg.AfterConnect = func(_ context.Context, conn *pgx.Conn) error {
		pgxdecimal.Register(conn.TypeMap())
		return nil
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, &storage.IOError{Op: "connect", Path: cfg.ConnConfig.Host, Err: err}
	}
	s := &Store{pool: pool}
	if err := s.migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

// migrate pings the server and applies the idempotent schema.
func (s *Store) migrate(ctx context.Context) error {
	if err := s.pool.Ping(ctx); err != nil {
		return &storage.IOError{Op: "ping", Path: "postgres", Err: err}
	}
	if _, err := s.pool.Exec(ctx, db.Schema); err != nil {
		return &storage.IOError{Op: "apply schema", Path: "postgres", Err: err}
	}
	return nil
}

// Load reads all tables in one read-only transaction.
func (s *Store) Load(ctx context.Context) (*storage.Snapshot, error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{AccessMode: pgx.ReadOnly})
	if err != nil {
		return nil, &storage.IOError{Op: "begin", Path: "postgres", Err: err}
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var snap storage.Snapshot
	if err := tx.QueryRow(ctx, selectOwnerSQL).Scan(&snap.Owner.ID, &snap.Owner.Name, &snap.Owner.Password); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, &storage.IOError{Op: "query", Path: "owners", Err: err}
	}

	if snap.Customers, err = collect(ctx, tx, "customers", selectCustomersSQL, scanCustomer); err != nil {
		return nil, err
	}
	if snap.Products, err = collect(ctx, tx, "products", selectProductsSQL, scanProduct); err != nil {
		return nil, err
	}
	if snap.Orders, err = collect(ctx, tx, "orders", selectOrdersSQL, scanOrder); err != nil {
		return nil, err
	}
	if err := s.attachProducts(ctx, tx, snap.Orders); err != nil {
		return nil, err
	}

	zctx.From(ctx).Info("Loaded market",
		zap.String("store", "postgres"),
		zap.Int("customers", len(snap.Customers)),
		zap.Int("products", len(snap.Products)),
		zap.Int("orders", len(snap.Orders)),
	)
	return &snap, nil
}

func (s *Store) attachProducts(ctx context.Context, tx pgx.Tx, orders []storage.OrderRecord) error {
	index := make(map[int]int, len(orders))
	for i, o := range orders {
		index[o.ID] = i
	}

	rows, err := tx.Query(ctx, selectOrderProductsSQL)
	if err != nil {
		return &storage.IOError{Op: "query", Path: "order_products", Err: err}
	}
	defer rows.Close()

	for rows.Next() {
		var (
			orderID int
			p       storage.ProductRecord
		)
		if err := rows.Scan(&orderID, &p.ID, &p.OwnerID, &p.Name, &p.Price, &p.Quantity); err != nil {
			return &storage.IOError{Op: "scan", Path: "order_products", Err: err}
		}
		i, ok := index[orderID]
		if !ok {
			return storage.Formatf("order product references unknown order %d", orderID)
		}
		orders[i].Products = append(orders[i].Products, p)
	}
	if err := rows.Err(); err != nil {
		return &storage.IOError{Op: "read", Path: "order_products", Err: err}
	}
	return nil
}

// Save replaces every stored row with the contents of snap.
func (s *Store) Save(ctx context.Context, snap *storage.Snapshot) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return &storage.IOError{Op: "begin", Path: "postgres", Err: err}
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, truncateSQL); err != nil {
		return &storage.IOError{Op: "truncate", Path: "postgres", Err: err}
	}
	if _, err := tx.Exec(ctx, insertOwnerSQL, snap.Owner.ID, snap.Owner.Name, snap.Owner.Password); err != nil {
		return &storage.IOError{Op: "insert", Path: "owners", Err: err}
	}

	customers := pgx.CopyFromSlice(len(snap.Customers), func(i int) ([]any, error) {
		c := snap.Customers[i]
		a := c.Address
		return []any{c.ID, c.Name, c.Password, a.Street, a.City, a.State, a.ZipCode, a.HouseNumber, a.Complement}, nil
	})
	if err := copyInto(ctx, tx, "customers", []string{
		"id", "name", "password", "street", "city", "state", "zip_code", "house_number", "complement",
	}, customers); err != nil {
		return err
	}

	products := pgx.CopyFromSlice(len(snap.Products), func(i int) ([]any, error) {
		p := snap.Products[i]
		return []any{p.ID, p.OwnerID, p.Name, p.Price, p.Quantity}, nil
	})
	if err := copyInto(ctx, tx, "products", []string{"id", "owner_id", "name", "price", "quantity"}, products); err != nil {
		return err
	}

	orders := pgx.CopyFromSlice(len(snap.Orders), func(i int) ([]any, error) {
		o := snap.Orders[i]
		return []any{o.ID, o.CustomerID, o.Status}, nil
	})
	if err := copyInto(ctx, tx, "orders", []string{"id", "customer_id", "status"}, orders); err != nil {
		return err
	}

	var lines [][]any
	for _, o := range snap.Orders {
		for pos, p := range o.Products {
			lines = append(lines, []any{o.ID, pos, p.ID, p.OwnerID, p.Name, p.Price, p.Quantity})
		}
	}
	if err := copyInto(ctx, tx, "order_products", []string{
		"order_id", "position", "product_id", "owner_id", "name", "price", "quantity",
	}, pgx.CopyFromRows(lines)); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return &storage.IOError{Op: "commit", Path: "postgres", Err: err}
	}

	zctx.From(ctx).Info("Saved market",
		zap.String("store", "postgres"),
		zap.Int("orders", len(snap.Orders)),
		zap.Int("order_products", len(lines)),
	)
	return nil
}

// Close releases the pool.
func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

func copyInto(ctx context.Context, tx pgx.Tx, table string, columns []string, src pgx.CopyFromSource) error {
	if _, err := tx.CopyFrom(ctx, pgx.Identifier{table}, columns, src); err != nil {
		return &storage.IOError{Op: "copy", Path: table, Err: err}
	}
	return nil
}

func collect[T any](ctx context.Context, tx pgx.Tx, table, query string, scan pgx.RowToFunc[T]) ([]T, error) {
	rows, err := tx.Query(ctx, query)
	if err != nil {
		return nil, &storage.IOError{Op: "query", Path: table, Err: err}
	}
	out, err := pgx.CollectRows(rows, scan)
	if err != nil {
		return nil, &storage.IOError{Op: "scan", Path: table, Err: errors.Wrap(err, "collect rows")}
	}
	return out, nil
}

func scanCustomer(row pgx.CollectableRow) (storage.CustomerRecord, error) {
	var c storage.CustomerRecord
	err := row.Scan(
		&c.ID, &c.Name, &c.Password,
		&c.Address.Street, &c.Address.City, &c.Address.State,
		&c.Address.ZipCode, &c.Address.HouseNumber, &c.Address.Complement,
	)
	return c, err
}

func scanProduct(row pgx.CollectableRow) (storage.ProductRecord, error) {
	var p storage.ProductRecord
	err := row.Scan(&p.ID, &p.OwnerID, &p.Name, &p.Price, &p.Quantity)
	return p, err
}

func scanOrder(row pgx.CollectableRow) (storage.OrderRecord, error) {
	var o storage.OrderRecord
	err := row.Scan(&o.ID, &o.CustomerID, &o.Status)
	return o, err
}
