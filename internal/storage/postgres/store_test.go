//go:build integration

package postgres

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/Brugger-UFMG/Online-Market/internal/storage"
)

func startPostgres(t *testing.T) string {
	t.Helper()

	ctx := context.Background()
	ctr, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "postgres:17-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "market",
				"POSTGRES_PASSWORD": "market",
				"POSTGRES_DB":       "market",
			},
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(time.Minute),
		},
		Started: true,
	})
	testcontainers.CleanupContainer(t, ctr)
	require.NoError(t, err)

	host, err := ctr.Host(ctx)
	require.NoError(t, err)
	port, err := ctr.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)

	return fmt.Sprintf("postgres://market:market@%s:%s/market?sslmode=disable", host, port.Port())
}

func sampleSnapshot() *storage.Snapshot {
	apple := storage.ProductRecord{ID: 0, Name: "Apple", Price: decimal.RequireFromString("2.5"), Quantity: 7}
	pear := storage.ProductRecord{ID: 1, Name: "Pear", Price: decimal.RequireFromString("1.75"), Quantity: 0}
	soldApple, soldPear := apple, pear
	soldApple.Quantity, soldPear.Quantity = 3, 2

	return &storage.Snapshot{
		Owner: storage.OwnerRecord{ID: 0, Name: "admin", Password: "123"},
		Customers: []storage.CustomerRecord{
			{ID: 1, Name: "ana", Password: "pw", Address: storage.AddressRecord{ZipCode: "12345-678", HouseNumber: 10}},
			{ID: 2, Name: "bia", Password: "pw2"},
		},
		Products: []storage.ProductRecord{apple, pear},
		Orders: []storage.OrderRecord{
			{ID: 0, CustomerID: 1, Status: "sent", Products: []storage.ProductRecord{soldApple, soldPear}},
			{ID: 1, CustomerID: 2, Status: "placed", Products: []storage.ProductRecord{soldPear}},
		},
	}
}

func TestStore(t *testing.T) {
	ctx := context.Background()
	url := startPostgres(t)

	s, err := Open(ctx, url)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	t.Run("EmptyIsNotFound", func(t *testing.T) {
		_, err := s.Load(ctx)
		require.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("RoundTrip", func(t *testing.T) {
		want := sampleSnapshot()
		require.NoError(t, s.Save(ctx, want))

		got, err := s.Load(ctx)
		require.NoError(t, err)

		assert.Equal(t, want.Owner, got.Owner)
		assert.Equal(t, want.Customers, got.Customers)
		require.Len(t, got.Products, 2)
		assert.True(t, want.Products[1].Price.Equal(got.Products[1].Price))
		require.Len(t, got.Orders, 2)
		assert.Equal(t, "sent", got.Orders[0].Status)
		require.Len(t, got.Orders[0].Products, 2)
		assert.Equal(t, "Pear", got.Orders[0].Products[1].Name)
		assert.Equal(t, 2, got.Orders[0].Products[1].Quantity)
	})

	t.Run("SaveReplaces", func(t *testing.T) {
		next := sampleSnapshot()
		next.Orders = next.Orders[:1]
		next.Customers = next.Customers[:1]
		require.NoError(t, s.Save(ctx, next))

		got, err := s.Load(ctx)
		require.NoError(t, err)
		assert.Len(t, got.Orders, 1)
		assert.Len(t, got.Customers, 1)
	})

	t.Run("FailedSaveKeepsPrevious", func(t *testing.T) {
		bad := sampleSnapshot()
		bad.Products[0].Quantity = -1

		require.Error(t, s.Save(ctx, bad))

		got, err := s.Load(ctx)
		require.NoError(t, err)
		assert.Len(t, got.Orders, 1)
		assert.Equal(t, 7, got.Products[0].Quantity)
	})
}
