package shell

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

var (
	errEmpty       = errors.New("must not be empty")
	errTooShort    = errors.New("must be longer than one character")
	errNotLetters  = errors.New("must contain letters only")
	errNotWords    = errors.New("must contain letters and spaces only")
	errZipFormat   = errors.New("must have the form 12345-678")
	errNotNumber   = errors.New("must be a whole number")
	errNotPositive = errors.New("must be greater than zero")
	errNotPrice    = errors.New("must be a positive amount such as 2.50")
)

var zipCode = regexp.MustCompile(`^[0-9]{5}-[0-9]{3}$`)

// validName accepts login names: letters only, at least two of them.
func validName(s string) error {
	if len([]rune(s)) <= 1 {
		return errTooShort
	}
	for _, r := range s {
		if !unicode.IsLetter(r) {
			return errNotLetters
		}
	}
	return nil
}

func validPassword(s string) error {
	if len(s) <= 1 {
		return errTooShort
	}
	return nil
}

// validWords accepts street, city and state names.
func validWords(s string) error {
	if strings.TrimSpace(s) == "" {
		return errEmpty
	}
	for _, r := range s {
		if !unicode.IsLetter(r) && r != ' ' {
			return errNotWords
		}
	}
	return nil
}

func validZipCode(s string) error {
	if !zipCode.MatchString(s) {
		return errZipFormat
	}
	return nil
}

func validProductName(s string) error {
	if strings.TrimSpace(s) == "" {
		return errEmpty
	}
	return nil
}

func anything(string) error { return nil }

// optional accepts an empty line and otherwise defers to check.
func optional(check func(string) error) func(string) error {
	return func(s string) error {
		if s == "" {
			return nil
		}
		return check(s)
	}
}

func parseInt(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, errNotNumber
	}
	return n, nil
}

func parsePositive(s string) (int, error) {
	n, err := parseInt(s)
	if err != nil {
		return 0, err
	}
	if n <= 0 {
		return 0, errNotPositive
	}
	return n, nil
}

func parsePrice(s string) (decimal.Decimal, error) {
	price, err := decimal.NewFromString(s)
	if err != nil || !price.IsPositive() {
		return decimal.Decimal{}, errNotPrice
	}
	return price, nil
}
