package app

import (
	"context"
	"io"
	"os"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/app"
	"github.com/go-faster/sdk/zctx"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"

	"github.com/Brugger-UFMG/Online-Market/internal/market"
	"github.com/Brugger-UFMG/Online-Market/internal/shell"
	"github.com/Brugger-UFMG/Online-Market/internal/storage"
	"github.com/Brugger-UFMG/Online-Market/internal/storage/file"
	"github.com/Brugger-UFMG/Online-Market/internal/storage/postgres"
	"github.com/Brugger-UFMG/Online-Market/internal/storage/sqlite"
)

// Run opens the configured store, restores the market and serves the shell
// on the terminal. It is the single wiring point for the application.
func Run(ctx context.Context, lg *zap.Logger, m *app.Telemetry, cfg *Config) error {
	lg.Info("Initializing", zap.String("driver", cfg.Driver))

	st, err := OpenStore(ctx, cfg)
	if err != nil {
		return errors.Wrap(err, "open store")
	}
	store := storage.Traced(st, m.TracerProvider())
	defer func() {
		if err := store.Close(); err != nil {
			lg.Error("Close store", zap.Error(err))
		}
	}()

	return Serve(ctx, store, m.MeterProvider(), os.Stdin, os.Stdout)
}

// OpenStore returns the store selected by cfg.Driver.
func OpenStore(ctx context.Context, cfg *Config) (storage.Store, error) {
	switch cfg.Driver {
	case DriverFile:
		return file.New(cfg.DataFile), nil
	case DriverSQLite:
		return sqlite.Open(ctx, cfg.SQLitePath)
	case DriverPostgres:
		return postgres.Open(ctx, cfg.DatabaseURL)
	default:
		return nil, errors.Errorf("unknown storage driver %q", cfg.Driver)
	}
}

// Serve loads the market from store and runs a shell over in and out. The
// market is saved after every logout and once more when the shell ends,
// including when ctx is canceled while the shell waits for input.
func Serve(ctx context.Context, store storage.Store, mp metric.MeterProvider, in io.Reader, out io.Writer) error {
	lg := zctx.From(ctx)

	snap, err := store.Load(ctx)
	if errors.Is(err, storage.ErrNotFound) {
		return errors.Wrap(err, "no market data, run market-setup first")
	}
	if err != nil {
		return errors.Wrap(err, "load market")
	}

	mk, err := market.Restore(snap, market.WithMeterProvider(mp))
	if err != nil {
		return errors.Wrap(err, "restore market")
	}
	lg.Info("Market ready",
		zap.Int("customers", mk.Customers().Len()),
		zap.Int("products", mk.Catalog().Len()),
		zap.Int("orders", mk.Orders().Len()),
	)

	save := func(ctx context.Context) error {
		if err := store.Save(ctx, mk.Export()); err != nil {
			return errors.Wrap(err, "save market")
		}
		return nil
	}

	sh := shell.New(mk, in, out, shell.WithCheckpoint(save))
	done := make(chan error, 1)
	go func() {
		done <- sh.Run(ctx)
	}()

	// The shell blocks on reads, so cancellation is observed here and the
	// reader goroutine is abandoned. Exclusive waits for a running command to
	// finish before the final save reads the market.
	select {
	case err = <-done:
	case <-ctx.Done():
		lg.Info("Interrupted, saving market")
		err = nil
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		return errors.Wrap(err, "shell")
	}

	return sh.Exclusive(func() error {
		return save(context.WithoutCancel(ctx))
	})
}
