// Package domain holds the error taxonomy shared by the market domain
// packages. Concrete errors returned by product, order, user and storage
// unwrap to one of these sentinels, so callers can classify a failure with
// errors.Is without knowing which package produced it.
package domain

import "github.com/go-faster/errors"

var (
	// ErrNotFound is returned when a referenced id is absent.
	ErrNotFound = errors.New("not found")
	// ErrDuplicateKey is returned when registering an id or name that is taken.
	ErrDuplicateKey = errors.New("duplicate key")
	// ErrInvalidArgument is returned for non-positive amounts or prices,
	// empty product lists and similar caller mistakes.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrFormat is returned when persisted state is malformed or
	// referentially inconsistent.
	ErrFormat = errors.New("format error")
	// ErrIO is returned when persisted state cannot be read or written.
	ErrIO = errors.New("io failure")
)
