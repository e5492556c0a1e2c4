package app

import (
	"bytes"
	"context"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/metric/noop"

	"github.com/Brugger-UFMG/Online-Market/internal/domain"
	"github.com/Brugger-UFMG/Online-Market/internal/domain/order"
	"github.com/Brugger-UFMG/Online-Market/internal/domain/user"
	"github.com/Brugger-UFMG/Online-Market/internal/market"
	"github.com/Brugger-UFMG/Online-Market/internal/storage"
	"github.com/Brugger-UFMG/Online-Market/internal/storage/file"
	"github.com/Brugger-UFMG/Online-Market/internal/storage/sqlite"
)

func seeded(t *testing.T) *file.Store {
	t.Helper()

	ctx := context.Background()
	m, err := market.New(user.NewOwner(0, "admin", "123"), market.WithMeterProvider(noop.NewMeterProvider()))
	require.NoError(t, err)
	_, err = m.AddProduct(ctx, "Apple", decimal.RequireFromString("2.50"), 10)
	require.NoError(t, err)
	_, err = m.Register(ctx, "ana", "pw", user.Address{})
	require.NoError(t, err)

	s := file.New(filepath.Join(t.TempDir(), "market.json"))
	require.NoError(t, s.Save(ctx, m.Export()))
	return s
}

func load(t *testing.T, s storage.Store) *market.Market {
	t.Helper()

	snap, err := s.Load(context.Background())
	require.NoError(t, err)
	m, err := market.Restore(snap, market.WithMeterProvider(noop.NewMeterProvider()))
	require.NoError(t, err)
	return m
}

func TestServe_PersistsSession(t *testing.T) {
	s := seeded(t)
	script := strings.Join([]string{"1", "ana", "pw", "2", "0", "3", "", "7", "0"}, "\n") + "\n"

	var out bytes.Buffer
	err := Serve(context.Background(), s, noop.NewMeterProvider(), strings.NewReader(script), &out)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "Order 0 placed.")

	m := load(t, s)
	o, err := m.Orders().Get(0)
	require.NoError(t, err)
	assert.Equal(t, order.StatusPlaced, o.Status)

	p, err := m.Catalog().Get(0)
	require.NoError(t, err)
	assert.Equal(t, 7, p.Quantity)

	ana, err := m.Customers().ByName("ana")
	require.NoError(t, err)
	assert.Equal(t, []int{0}, ana.OrderIDs())
}

func TestServe_SavesOnEOF(t *testing.T) {
	s := seeded(t)
	script := "2\nbia\npw\nRua A\n1\n\nBH\nMG\n30000-000\n"

	err := Serve(context.Background(), s, noop.NewMeterProvider(), strings.NewReader(script), io.Discard)
	require.NoError(t, err)

	_, err = load(t, s).Customers().ByName("bia")
	require.NoError(t, err)
}

func TestServe_Canceled(t *testing.T) {
	s := seeded(t)
	ctx, cancel := context.WithCancel(context.Background())

	in, w := io.Pipe()
	t.Cleanup(func() { _ = w.Close() })
	cancel()

	err := Serve(ctx, s, noop.NewMeterProvider(), in, io.Discard)
	require.NoError(t, err)
	assert.Equal(t, 1, load(t, s).Customers().Len())
}

func TestServe_InterruptedSession(t *testing.T) {
	s := seeded(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	in, w := io.Pipe()
	t.Cleanup(func() { _ = w.Close() })

	done := make(chan error, 1)
	go func() { done <- Serve(ctx, s, noop.NewMeterProvider(), in, io.Discard) }()

	// Login, then place an order of three apples without logging out.
	for _, line := range []string{"1", "ana", "pw", "2", "0", "3", ""} {
		_, err := w.Write([]byte(line + "\n"))
		require.NoError(t, err)
	}
	cancel()
	require.NoError(t, <-done)

	m := load(t, s)
	o, err := m.Orders().Get(0)
	require.NoError(t, err)
	assert.Equal(t, order.StatusPlaced, o.Status)

	p, err := m.Catalog().Get(0)
	require.NoError(t, err)
	assert.Equal(t, 7, p.Quantity)
}

func TestServe_Missing(t *testing.T) {
	s := file.New(filepath.Join(t.TempDir(), "market.json"))

	err := Serve(context.Background(), s, noop.NewMeterProvider(), strings.NewReader(""), io.Discard)
	require.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorContains(t, err, "run market-setup first")
}

func TestOpenStore(t *testing.T) {
	s, err := OpenStore(context.Background(), &Config{Driver: DriverFile, DataFile: "m.json.gz"})
	require.NoError(t, err)
	require.IsType(t, &file.Store{}, s)
	assert.Equal(t, "m.json.gz", s.(*file.Store).Path())

	db, err := OpenStore(context.Background(), &Config{Driver: DriverSQLite, SQLitePath: filepath.Join(t.TempDir(), "m.db")})
	require.NoError(t, err)
	require.IsType(t, &sqlite.Store{}, db)
	_, err = db.Load(context.Background())
	require.ErrorIs(t, err, storage.ErrNotFound)
	require.NoError(t, db.Close())

	_, err = OpenStore(context.Background(), &Config{Driver: "bolt"})
	require.Error(t, err)
}
