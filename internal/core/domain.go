package core

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the only accepted calendar-date form. Lexicographic
// comparison of two such strings matches chronological order.
const DateLayout = "2006-01-02"

type (
	Date struct {
		time.Time
	}

	// Transaction is a single ledger movement as returned by range queries.
	Transaction struct {
		Amount decimal.Decimal
		Day    Date
	}
)

var (
	ErrInvalidDate   = errors.New("invalid date")
	ErrInvalidAmount = errors.New("invalid amount")
)

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t}, nil
}

// Today returns the current calendar date with no time component.
func Today() Date {
	y, m, d := time.Now().Date()
	return Date{Time: time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

func (d Date) String() string {
	return d.Format(DateLayout)
}

// Before reports whether d precedes other.
func (d Date) Before(other Date) bool {
	return d.Time.Before(other.Time)
}

// ParseAmount parses a decimal amount, accepting both "." and "," as the
// fractional separator. The sign convention is the caller's.
func ParseAmount(s string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(strings.ReplaceAll(s, ",", "."))
	if err != nil {
		return decimal.Decimal{}, ErrInvalidAmount
	}
	return amount, nil
}

// IsAmount reports whether s parses as a decimal amount.
func IsAmount(s string) bool {
	_, err := ParseAmount(s)
	return err == nil
}
