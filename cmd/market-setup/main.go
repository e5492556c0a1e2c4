package main

import (
	"context"
	"encoding/json"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"unicode"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/Brugger-UFMG/Online-Market/internal/app"
	"github.com/Brugger-UFMG/Online-Market/internal/domain/user"
	"github.com/Brugger-UFMG/Online-Market/internal/market"
	"github.com/Brugger-UFMG/Online-Market/internal/storage"
)

type productJSON struct {
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Quantity int             `json:"quantity"`
}

func main() {
	var (
		cfg           app.Config
		ownerName     string
		ownerPassword string
		productsFile  string
		force         bool
	)

	flag.StringVar(&cfg.Driver, "driver", app.DriverFile, "storage driver: file, sqlite or postgres")
	flag.StringVar(&cfg.DataFile, "data-file", "market.json", "market data file; a .gz suffix enables compression")
	flag.StringVar(&cfg.SQLitePath, "sqlite-path", "market.db", "SQLite database file")
	flag.StringVar(&cfg.DatabaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&ownerName, "owner-name", "admin", "name of the market owner")
	flag.StringVar(&ownerPassword, "owner-password", "", "owner password (or MARKET_OWNER_PASSWORD env)")
	flag.StringVar(&productsFile, "products-file", "", "optional JSON file with initial products")
	flag.BoolVar(&force, "force", false, "overwrite an existing market")
	flag.Parse()

	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if ownerPassword == "" {
		ownerPassword = os.Getenv("MARKET_OWNER_PASSWORD")
	}
	if err := validateOwner(ownerName, ownerPassword); err != nil {
		slog.Error("invalid owner", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, &cfg, user.NewOwner(0, ownerName, ownerPassword), productsFile, force); err != nil {
		slog.Error("setup failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("setup completed successfully")
}

func validateOwner(name, password string) error {
	if len([]rune(name)) <= 1 {
		return errors.New("owner name is too short")
	}
	for _, r := range name {
		if !unicode.IsLetter(r) {
			return errors.New("owner name must contain letters only")
		}
	}
	if len(password) <= 1 {
		return errors.New("owner password is required: set --owner-password or MARKET_OWNER_PASSWORD")
	}
	return nil
}

func run(ctx context.Context, cfg *app.Config, owner *user.Owner, productsFile string, force bool) error {
	slog.Info("opening store", slog.String("driver", cfg.Driver))

	store, err := app.OpenStore(ctx, cfg)
	if err != nil {
		return errors.Wrap(err, "open store")
	}
	defer func() { _ = store.Close() }()

	switch _, err := store.Load(ctx); {
	case err == nil && !force:
		return errors.New("a market already exists, use --force to replace it")
	case err == nil:
		slog.Warn("replacing existing market")
	case errors.Is(err, storage.ErrNotFound):
	case !force:
		return errors.Wrap(err, "existing data is unreadable, use --force to replace it")
	default:
		slog.Warn("replacing unreadable market", slog.String("error", err.Error()))
	}

	m, err := market.New(owner)
	if err != nil {
		return errors.Wrap(err, "create market")
	}

	if productsFile != "" {
		if err := seedProducts(ctx, m, productsFile); err != nil {
			return errors.Wrap(err, "seed products")
		}
	}

	if err := store.Save(ctx, m.Export()); err != nil {
		return errors.Wrap(err, "save market")
	}
	slog.Info("market created", slog.String("owner", owner.Name), slog.Int("products", m.Catalog().Len()))
	return nil
}

func seedProducts(ctx context.Context, m *market.Market, productsFile string) error {
	slog.Info("reading products file", slog.String("path", productsFile))

	data, err := os.ReadFile(productsFile)
	if err != nil {
		return errors.Wrap(err, "read products file")
	}

	var products []productJSON
	if err := json.Unmarshal(data, &products); err != nil {
		return errors.Wrap(err, "parse products JSON")
	}

	for _, p := range products {
		added, err := m.AddProduct(ctx, p.Name, p.Price, p.Quantity)
		if err != nil {
			return errors.Wrapf(err, "add product %q", p.Name)
		}
		slog.Info("added product", slog.Int("id", added.ID), slog.String("name", added.Name))
	}
	return nil
}
