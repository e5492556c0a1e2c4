package sqlite

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Brugger-UFMG/Online-Market/internal/domain"
	"github.com/Brugger-UFMG/Online-Market/internal/storage"
)

func openTemp(t *testing.T) (*Store, string) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "market.db")
	s, err := Open(context.Background(), path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s, path
}

func sampleSnapshot() *storage.Snapshot {
	apple := storage.ProductRecord{ID: 0, Name: "Apple", Price: decimal.RequireFromString("2.5"), Quantity: 7}
	pear := storage.ProductRecord{ID: 1, Name: "Pear", Price: decimal.RequireFromString("0.10"), Quantity: 0}
	soldApple, soldPear := apple, pear
	soldApple.Quantity, soldPear.Quantity = 3, 2

	return &storage.Snapshot{
		Owner: storage.OwnerRecord{ID: 0, Name: "admin", Password: "123"},
		Customers: []storage.CustomerRecord{
			{ID: 1, Name: "ana", Password: "pw", Address: storage.AddressRecord{
				Street: "Rua A", City: "BH", State: "MG", ZipCode: "12345-678", HouseNumber: 10, Complement: "ap 1",
			}},
			{ID: 2, Name: "bia", Password: "pw2"},
		},
		Products: []storage.ProductRecord{apple, pear},
		Orders: []storage.OrderRecord{
			{ID: 0, CustomerID: 1, Status: "placed", Products: []storage.ProductRecord{soldApple}},
			{ID: 1, CustomerID: 2, Status: "canceled", Products: []storage.ProductRecord{soldPear, soldApple}},
		},
	}
}

func assertSnapshotEqual(t *testing.T, want, got *storage.Snapshot) {
	t.Helper()

	assert.Equal(t, want.Owner, got.Owner)
	assert.Equal(t, want.Customers, got.Customers)
	assertProductsEqual(t, want.Products, got.Products)
	require.Len(t, got.Orders, len(want.Orders))
	for i, o := range want.Orders {
		g := got.Orders[i]
		assert.Equal(t, o.ID, g.ID)
		assert.Equal(t, o.CustomerID, g.CustomerID)
		assert.Equal(t, o.Status, g.Status)
		assertProductsEqual(t, o.Products, g.Products)
	}
}

func assertProductsEqual(t *testing.T, want, got []storage.ProductRecord) {
	t.Helper()

	require.Len(t, got, len(want))
	for i := range want {
		w, g := want[i], got[i]
		assert.True(t, w.Price.Equal(g.Price), "product %d price: want %s, got %s", w.ID, w.Price, g.Price)
		w.Price, g.Price = decimal.Zero, decimal.Zero
		assert.Equal(t, w, g)
	}
}

func TestStore_EmptyIsNotFound(t *testing.T) {
	s, _ := openTemp(t)

	_, err := s.Load(context.Background())
	require.ErrorIs(t, err, storage.ErrNotFound)
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s, path := openTemp(t)
	want := sampleSnapshot()

	require.NoError(t, s.Save(ctx, want))
	got, err := s.Load(ctx)
	require.NoError(t, err)
	assertSnapshotEqual(t, want, got)
	assert.Equal(t, "0.10", got.Products[1].Price.StringFixed(2))

	require.NoError(t, s.Close())
	reopened, err := Open(ctx, path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = reopened.Close() })

	got, err = reopened.Load(ctx)
	require.NoError(t, err)
	assertSnapshotEqual(t, want, got)
}

func TestStore_SaveReplaces(t *testing.T) {
	ctx := context.Background()
	s, _ := openTemp(t)

	require.NoError(t, s.Save(ctx, sampleSnapshot()))
	next := &storage.Snapshot{Owner: storage.OwnerRecord{ID: 0, Name: "boss", Password: "pw"}}
	require.NoError(t, s.Save(ctx, next))

	got, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, next.Owner, got.Owner)
	assert.Empty(t, got.Customers)
	assert.Empty(t, got.Products)
	assert.Empty(t, got.Orders)
}

func TestStore_FailedSaveKeepsPrevious(t *testing.T) {
	ctx := context.Background()
	s, _ := openTemp(t)
	want := sampleSnapshot()
	require.NoError(t, s.Save(ctx, want))

	bad := sampleSnapshot()
	bad.Products[0].Quantity = -1
	err := s.Save(ctx, bad)
	require.ErrorIs(t, err, domain.ErrIO)

	got, err := s.Load(ctx)
	require.NoError(t, err)
	assertSnapshotEqual(t, want, got)
}

func TestOpen_SchemaVersion(t *testing.T) {
	ctx := context.Background()
	_, path := openTemp(t)

	raw, err := sql.Open(DriverName, path)
	require.NoError(t, err)
	var version string
	require.NoError(t, raw.QueryRowContext(ctx, `SELECT version FROM schema_version`).Scan(&version))
	assert.Equal(t, SchemaVersion, version)

	_, err = raw.ExecContext(ctx, `UPDATE schema_version SET version = '2.0.0'`)
	require.NoError(t, err)
	require.NoError(t, raw.Close())

	_, err = Open(ctx, path)
	require.ErrorIs(t, err, domain.ErrFormat)
	assert.ErrorContains(t, err, "newer than supported")
}
