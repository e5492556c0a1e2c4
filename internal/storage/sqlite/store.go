// Package sqlite implements storage.Store on an SQLite database file using
// the pure Go modernc.org/sqlite driver.
package sqlite

import (
	"context"
	"database/sql"

	"github.com/Masterminds/semver/v3"
	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/Brugger-UFMG/Online-Market/db"
	"github.com/Brugger-UFMG/Online-Market/internal/storage"
)

// DriverName is the database/sql driver registered by modernc.org/sqlite.
const DriverName = "sqlite"

// SchemaVersion is the version of db.SQLiteSchema. Databases written by a
// newer major version are refused.
const SchemaVersion = "1.0.0"

var _ storage.Store = (*Store)(nil)

// Store keeps a market in one SQLite file.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens or creates the database at path and applies the schema.
func Open(ctx context.Context, path string) (*Store, error) {
	sdb, err := sql.Open(DriverName, path)
	if err != nil {
		return nil, &storage.IOError{Op: "open", Path: path, Err: err}
	}
	// Single writer.
	sdb.SetMaxOpenConns(1)

	for _, pragma := range []string{"PRAGMA journal_mode=WAL", "PRAGMA foreign_keys=ON"} {
		if _, err := sdb.ExecContext(ctx, pragma); err != nil {
			_ = sdb.Close()
			return nil, &storage.IOError{Op: "configure", Path: path, Err: err}
		}
	}
	if err := migrate(ctx, sdb); err != nil {
		_ = sdb.Close()
		return nil, errors.Wrapf(err, "migrate %s", path)
	}
	return &Store{db: sdb, path: path}, nil
}

func migrate(ctx context.Context, sdb *sql.DB) error {
	if _, err := sdb.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_version (version TEXT NOT NULL)`); err != nil {
		return &storage.IOError{Op: "create", Path: "schema_version", Err: err}
	}

	want := semver.MustParse(SchemaVersion)
	var stored string
	err := sdb.QueryRowContext(ctx, `SELECT version FROM schema_version LIMIT 1`).Scan(&stored)
	switch {
	case errors.Is(err, sql.ErrNoRows):
	case err != nil:
		return &storage.IOError{Op: "query", Path: "schema_version", Err: err}
	default:
		have, err := semver.NewVersion(stored)
		if err != nil {
			return storage.Formatf("schema version %q: %v", stored, err)
		}
		if have.Major() > want.Major() {
			return storage.Formatf("schema version %s is newer than supported %s", have, want)
		}
		if !have.LessThan(want) {
			return nil
		}
	}

	if _, err := sdb.ExecContext(ctx, db.SQLiteSchema); err != nil {
		return &storage.IOError{Op: "apply schema", Path: SchemaVersion, Err: err}
	}
	if _, err := sdb.ExecContext(ctx, `DELETE FROM schema_version`); err != nil {
		return &storage.IOError{Op: "record", Path: "schema_version", Err: err}
	}
	if _, err := sdb.ExecContext(ctx, `INSERT INTO schema_version (version) VALUES (?)`, want.String()); err != nil {
		return &storage.IOError{Op: "record", Path: "schema_version", Err: err}
	}
	return nil
}

// Load reads the whole market in one transaction.
func (s *Store) Load(ctx context.Context) (*storage.Snapshot, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, &storage.IOError{Op: "begin", Path: s.path, Err: err}
	}
	defer func() { _ = tx.Rollback() }()

	var snap storage.Snapshot
	err = tx.QueryRowContext(ctx, `SELECT id, name, password FROM owners ORDER BY id LIMIT 1`).
		Scan(&snap.Owner.ID, &snap.Owner.Name, &snap.Owner.Password)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, &storage.IOError{Op: "query", Path: "owners", Err: err}
	}

	err = query(ctx, tx, "customers", `SELECT id, name, password, street, city, state, zip_code, house_number, complement
		FROM customers ORDER BY id`, func(rows *sql.Rows) error {
		var c storage.CustomerRecord
		a := &c.Address
		if err := rows.Scan(&c.ID, &c.Name, &c.Password, &a.Street, &a.City, &a.State, &a.ZipCode, &a.HouseNumber, &a.Complement); err != nil {
			return err
		}
		snap.Customers = append(snap.Customers, c)
		return nil
	})
	if err != nil {
		return nil, err
	}

	err = query(ctx, tx, "products", `SELECT id, owner_id, name, price, quantity FROM products ORDER BY id`, func(rows *sql.Rows) error {
		var p storage.ProductRecord
		if err := rows.Scan(&p.ID, &p.OwnerID, &p.Name, &p.Price, &p.Quantity); err != nil {
			return err
		}
		snap.Products = append(snap.Products, p)
		return nil
	})
	if err != nil {
		return nil, err
	}

	index := make(map[int]int)
	err = query(ctx, tx, "orders", `SELECT id, customer_id, status FROM orders ORDER BY id`, func(rows *sql.Rows) error {
		var o storage.OrderRecord
		if err := rows.Scan(&o.ID, &o.CustomerID, &o.Status); err != nil {
			return err
		}
		index[o.ID] = len(snap.Orders)
		snap.Orders = append(snap.Orders, o)
		return nil
	})
	if err != nil {
		return nil, err
	}

	err = query(ctx, tx, "order_products", `SELECT order_id, product_id, owner_id, name, price, quantity
		FROM order_products ORDER BY order_id, position`, func(rows *sql.Rows) error {
		var (
			orderID int
			p       storage.ProductRecord
		)
		if err := rows.Scan(&orderID, &p.ID, &p.OwnerID, &p.Name, &p.Price, &p.Quantity); err != nil {
			return err
		}
		i, ok := index[orderID]
		if !ok {
			return storage.Formatf("order product references unknown order %d", orderID)
		}
		snap.Orders[i].Products = append(snap.Orders[i].Products, p)
		return nil
	})
	if err != nil {
		return nil, err
	}

	zctx.From(ctx).Info("Loaded market",
		zap.String("store", "sqlite"),
		zap.String("path", s.path),
		zap.Int("customers", len(snap.Customers)),
		zap.Int("products", len(snap.Products)),
		zap.Int("orders", len(snap.Orders)),
	)
	return &snap, nil
}

// Save replaces every stored row with the contents of snap in one
// transaction.
func (s *Store) Save(ctx context.Context, snap *storage.Snapshot) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return &storage.IOError{Op: "begin", Path: s.path, Err: err}
	}
	defer func() { _ = tx.Rollback() }()

	for _, table := range []string{"order_products", "orders", "products", "customers", "owners"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return &storage.IOError{Op: "delete", Path: table, Err: err}
		}
	}

	exec := func(table, q string, args ...any) error {
		if _, err := tx.ExecContext(ctx, q, args...); err != nil {
			return &storage.IOError{Op: "insert", Path: table, Err: err}
		}
		return nil
	}

	if err := exec("owners", `INSERT INTO owners (id, name, password) VALUES (?, ?, ?)`,
		snap.Owner.ID, snap.Owner.Name, snap.Owner.Password); err != nil {
		return err
	}
	for _, c := range snap.Customers {
		a := c.Address
		if err := exec("customers", `INSERT INTO customers
			(id, name, password, street, city, state, zip_code, house_number, complement)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			c.ID, c.Name, c.Password, a.Street, a.City, a.State, a.ZipCode, a.HouseNumber, a.Complement); err != nil {
			return err
		}
	}
	for _, p := range snap.Products {
		if err := exec("products", `INSERT INTO products (id, owner_id, name, price, quantity) VALUES (?, ?, ?, ?, ?)`,
			p.ID, p.OwnerID, p.Name, p.Price.String(), p.Quantity); err != nil {
			return err
		}
	}
	for _, o := range snap.Orders {
		if err := exec("orders", `INSERT INTO orders (id, customer_id, status) VALUES (?, ?, ?)`,
			o.ID, o.CustomerID, o.Status); err != nil {
			return err
		}
		for pos, p := range o.Products {
			if err := exec("order_products", `INSERT INTO order_products
				(order_id, position, product_id, owner_id, name, price, quantity)
				VALUES (?, ?, ?, ?, ?, ?, ?)`,
				o.ID, pos, p.ID, p.OwnerID, p.Name, p.Price.String(), p.Quantity); err != nil {
				return err
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return &storage.IOError{Op: "commit", Path: s.path, Err: err}
	}

	zctx.From(ctx).Info("Saved market",
		zap.String("store", "sqlite"),
		zap.String("path", s.path),
		zap.Int("orders", len(snap.Orders)),
	)
	return nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

func query(ctx context.Context, tx *sql.Tx, table, q string, scan func(*sql.Rows) error) error {
	rows, err := tx.QueryContext(ctx, q)
	if err != nil {
		return &storage.IOError{Op: "query", Path: table, Err: err}
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		if err := scan(rows); err != nil {
			if errors.As(err, new(*storage.FormatError)) {
				return err
			}
			return &storage.IOError{Op: "scan", Path: table, Err: err}
		}
	}
	if err := rows.Err(); err != nil {
		return &storage.IOError{Op: "read", Path: table, Err: err}
	}
	return nil
}
