// Package file implements storage.Store on top of a single JSON document.
package file

import (
	"bytes"
	"context"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	pgzip "github.com/klauspost/pgzip"
	"go.uber.org/zap"

	"github.com/Brugger-UFMG/Online-Market/internal/storage"
)

var _ storage.Store = (*Store)(nil)

// Store keeps a market in one file. Paths ending in .gz are gzip-compressed.
type Store struct {
	path     string
	compress bool
}

// New returns a Store for path. The file is not touched until Load or Save.
func New(path string) *Store {
	return &Store{
		path:     path,
		compress: strings.HasSuffix(path, ".gz"),
	}
}

// Path returns the file location.
func (s *Store) Path() string {
	return s.path
}

// Load reads and decodes the file. A missing file yields storage.ErrNotFound.
func (s *Store) Load(ctx context.Context) (*storage.Snapshot, error) {
	data, err := s.read()
	if err != nil {
		return nil, err
	}

	snap, err := Decode(data)
	if err != nil {
		return nil, errors.Wrapf(err, "load %s", s.path)
	}

	zctx.From(ctx).Info("Loaded market",
		zap.String("path", s.path),
		zap.Int("customers", len(snap.Customers)),
		zap.Int("products", len(snap.Products)),
		zap.Int("orders", len(snap.Orders)),
	)
	return snap, nil
}

func (s *Store) read() ([]byte, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, storage.ErrNotFound
		}
		return nil, &storage.IOError{Op: "read", Path: s.path, Err: err}
	}
	if !s.compress {
		return raw, nil
	}

	// The file is already in memory, so every gzip failure is bad content.
	gz, err := pgzip.NewReader(bytes.NewReader(raw))
	if err != nil {
		return nil, &storage.FormatError{Msg: "gzip header", Err: err}
	}
	defer func() { _ = gz.Close() }()

	data, err := io.ReadAll(gz)
	if err != nil {
		return nil, &storage.FormatError{Msg: "gzip stream", Err: err}
	}
	return data, nil
}

// Save encodes snap and replaces the file atomically: the document is written
// to a temporary file in the same directory, synced and renamed over the
// destination. On failure the previous file is left untouched.
func (s *Store) Save(ctx context.Context, snap *storage.Snapshot) error {
	data := Encode(snap)

	dir, base := filepath.Split(s.path)
	if dir == "" {
		dir = "."
	}
	tmp, err := os.CreateTemp(dir, base+".tmp-*")
	if err != nil {
		return &storage.IOError{Op: "create temp", Path: s.path, Err: err}
	}
	tmpPath := tmp.Name()

	if err := s.writeTo(tmp, data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return &storage.IOError{Op: "write", Path: tmpPath, Err: err}
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return &storage.IOError{Op: "close", Path: tmpPath, Err: err}
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		_ = os.Remove(tmpPath)
		return &storage.IOError{Op: "rename", Path: s.path, Err: err}
	}

	zctx.From(ctx).Info("Saved market",
		zap.String("path", s.path),
		zap.Int("bytes", len(data)),
		zap.Int("orders", len(snap.Orders)),
	)
	return nil
}

func (s *Store) writeTo(f *os.File, data []byte) error {
	if s.compress {
		gz := pgzip.NewWriter(f)
		if _, err := gz.Write(data); err != nil {
			return err
		}
		if err := gz.Close(); err != nil {
			return err
		}
	} else if _, err := f.Write(data); err != nil {
		return err
	}
	return f.Sync()
}

// Close implements storage.Store. The file is only open during Load and Save.
func (s *Store) Close() error {
	return nil
}
