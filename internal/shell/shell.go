// Package shell is the line based front end of the market. A start screen
// offers login and registration; after login the menu is built from the
// capability table of the account's role.
package shell

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Brugger-UFMG/Online-Market/internal/market"
)

var errLogout = errors.New("logout")

// Checkpoint persists the market. It is called after every logout.
type Checkpoint func(ctx context.Context) error

// Option configures a Shell.
type Option func(*Shell)

// WithCheckpoint sets the function called after each logout.
func WithCheckpoint(fn Checkpoint) Option {
	return func(s *Shell) {
		s.checkpoint = fn
	}
}

// Shell reads commands from in and writes prompts and results to out.
//
// mu is held while Run works on the market and released while it waits for
// input, see Exclusive.
type Shell struct {
	m          *market.Market
	in         *bufio.Scanner
	out        io.Writer
	checkpoint Checkpoint

	mu      sync.Mutex
	stopped func() error
}

// New creates a shell over m.
func New(m *market.Market, in io.Reader, out io.Writer, opts ...Option) *Shell {
	s := &Shell{
		m:       m,
		in:      bufio.NewScanner(in),
		out:     out,
		stopped: func() error { return nil },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run serves the start screen until the user quits or input ends. Once ctx
// is canceled, Run returns at the next prompt without reading further
// commands.
func (s *Shell) Run(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped = ctx.Err

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		s.printf("\n=== Online Market ===\n1) Login\n2) Register\n0) Quit\n")
		choice, err := s.prompt("Choose")
		if err != nil {
			return ignoreEOF(err)
		}

		switch choice {
		case "1":
			err = s.login(ctx)
		case "2":
			err = s.register(ctx)
		case "0":
			s.printf("Bye.\n")
			return nil
		default:
			s.printf("Unknown option.\n")
			continue
		}
		if err != nil {
			return ignoreEOF(err)
		}
	}
}

func (s *Shell) login(ctx context.Context) error {
	name, err := s.prompt("Name")
	if err != nil {
		return err
	}
	password, err := s.prompt("Password")
	if err != nil {
		return err
	}

	acct, err := s.m.Login(name, password)
	if err != nil {
		s.printf("Error: %v\n", err)
		return nil
	}

	ctx = zctx.With(ctx,
		zap.String("session", uuid.NewString()),
		zap.String("user", acct.Identity.Name),
		zap.Stringer("role", acct.Role),
	)
	zctx.From(ctx).Info("Logged in")
	s.printf("Welcome, %s.\n", acct.Identity.Name)

	return s.session(ctx, acct)
}

func (s *Shell) register(ctx context.Context) error {
	name, err := s.promptValid("Name", validName)
	if err != nil {
		return err
	}
	password, err := s.promptValid("Password", validPassword)
	if err != nil {
		return err
	}
	address, err := s.promptAddress()
	if err != nil {
		return err
	}

	c, err := s.m.Register(ctx, name, password, address)
	if err != nil {
		s.printf("Error: %v\n", err)
		return nil
	}
	s.printf("Customer %q registered with id %d.\n", c.Name, c.ID)
	return nil
}

func (s *Shell) session(ctx context.Context, acct market.Account) error {
	caps := market.Capabilities(acct.Role)
	for {
		s.printf("\n--- %s menu (%s) ---\n", acct.Role, acct.Identity.Name)
		for i, c := range caps {
			s.printf("%d) %s\n", i+1, labels[c])
		}

		choice, err := s.prompt("Choose")
		if err != nil {
			return err
		}
		n, err := strconv.Atoi(choice)
		if err != nil || n < 1 || n > len(caps) {
			s.printf("Unknown option.\n")
			continue
		}

		c := caps[n-1]
		err = handlers[c](s, ctx, acct)
		switch {
		case errors.Is(err, errLogout):
			zctx.From(ctx).Info("Logged out")
			return s.save(ctx)
		case ctx.Err() != nil:
			return err
		case errors.Is(err, io.EOF):
			if saveErr := s.save(ctx); saveErr != nil {
				return saveErr
			}
			return err
		case err != nil:
			zctx.From(ctx).Debug("Operation failed", zap.Stringer("capability", c), zap.Error(err))
			s.printf("Error: %v\n", err)
		}
	}
}

func (s *Shell) save(ctx context.Context) error {
	if s.checkpoint == nil {
		return nil
	}
	return s.checkpoint(ctx)
}

func (s *Shell) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(s.out, format, args...)
}

// Exclusive runs fn while no command is executing. It is safe to call while
// Run is blocked on input; a Run resumed after its context was canceled
// returns without touching the market.
func (s *Shell) Exclusive(fn func() error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn()
}

// prompt reads one trimmed line. io.EOF is returned when input ends. The
// market lock is released for the duration of the read.
func (s *Shell) prompt(label string) (string, error) {
	if err := s.stopped(); err != nil {
		return "", err
	}
	s.printf("%s: ", label)

	s.mu.Unlock()
	ok := s.in.Scan()
	s.mu.Lock()

	if err := s.stopped(); err != nil {
		return "", err
	}
	if !ok {
		if err := s.in.Err(); err != nil {
			return "", errors.Wrap(err, "read input")
		}
		return "", io.EOF
	}
	return strings.TrimSpace(s.in.Text()), nil
}

// promptValid re-prompts until check accepts the line.
func (s *Shell) promptValid(label string, check func(string) error) (string, error) {
	for {
		v, err := s.prompt(label)
		if err != nil {
			return "", err
		}
		if err := check(v); err != nil {
			s.printf("%s %v.\n", label, err)
			continue
		}
		return v, nil
	}
}

// promptParse re-prompts until parse accepts the line.
func promptParse[T any](s *Shell, label string, parse func(string) (T, error)) (T, error) {
	for {
		v, err := s.prompt(label)
		if err != nil {
			var zero T
			return zero, err
		}
		out, err := parse(v)
		if err != nil {
			s.printf("%s %v.\n", label, err)
			continue
		}
		return out, nil
	}
}

func ignoreEOF(err error) error {
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}
