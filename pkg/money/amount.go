package money

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	// MaxIntegerDigits is the number of digits allowed left of the decimal point.
	MaxIntegerDigits = 36
	// Scale is the number of fractional digits kept for every amount.
	Scale = 18
)

// ErrInvalidAmount is returned for malformed, negative or out-of-precision amounts
var ErrInvalidAmount = errors.New("invalid amount")

var upperBound = decimal.New(1, MaxIntegerDigits)

// Amount is a fixed-precision currency quantity (36 integer digits, 18 fractional digits)
type Amount struct {
	d decimal.Decimal
}

// Zero is the zero amount
var Zero = Amount{}

// Parse parses an untrusted decimal string. Negative values are rejected.
func Parse(s string) (Amount, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Zero, fmt.Errorf("%w: empty value", ErrInvalidAmount)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Zero, fmt.Errorf("%w: %q is not numeric", ErrInvalidAmount, s)
	}
	return New(d)
}

// ParsePositive parses an untrusted decimal string that must be strictly positive
func ParsePositive(s string) (Amount, error) {
	a, err := Parse(s)
	if err != nil {
		return Zero, err
	}
	if !a.IsPositive() {
		return Zero, fmt.Errorf("%w: must be greater than zero", ErrInvalidAmount)
	}
	return a, nil
}

// New validates a decimal against the precision bounds
func New(d decimal.Decimal) (Amount, error) {
	if d.IsNegative() {
		return Zero, fmt.Errorf("%w: negative value %s", ErrInvalidAmount, d.String())
	}
	if d.Exponent() < -Scale && !d.Equal(d.Truncate(Scale)) {
		return Zero, fmt.Errorf("%w: more than %d fractional digits", ErrInvalidAmount, Scale)
	}
	if d.GreaterThanOrEqual(upperBound) {
		return Zero, fmt.Errorf("%w: more than %d integer digits", ErrInvalidAmount, MaxIntegerDigits)
	}
	return Amount{d: d}, nil
}

// MustParse is Parse for constants and tests; it panics on invalid input.
func MustParse(s string) Amount {
	a, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return a
}

// FromInt builds an amount from a whole number of units
func FromInt(v int64) Amount {
	if v < 0 {
		panic("money: negative amount")
	}
	return Amount{d: decimal.NewFromInt(v)}
}

// Decimal returns the underlying decimal value
func (a Amount) Decimal() decimal.Decimal { return a.d }

func (a Amount) Add(b Amount) Amount { return Amount{d: a.d.Add(b.d)} }

// Sub subtracts b. The result may be negative; callers compare before subtracting.
func (a Amount) Sub(b Amount) Amount { return Amount{d: a.d.Sub(b.d)} }

// MulRate multiplies by a dimensionless rate and rounds half-even to Scale places
func (a Amount) MulRate(rate decimal.Decimal) Amount {
	return Amount{d: a.d.Mul(rate).RoundBank(Scale)}
}

// MulFrac computes a × num / den rounded half-up to Scale places. den must not be zero.
func (a Amount) MulFrac(num, den decimal.Decimal) Amount {
	return Amount{d: a.d.Mul(num).DivRound(den, Scale)}
}

func (a Amount) Cmp(b Amount) int { return a.d.Cmp(b.d) }

func (a Amount) Equal(b Amount) bool { return a.d.Equal(b.d) }

func (a Amount) LessThan(b Amount) bool { return a.d.LessThan(b.d) }

func (a Amount) GreaterThan(b Amount) bool { return a.d.GreaterThan(b.d) }

func (a Amount) IsZero() bool { return a.d.IsZero() }

func (a Amount) IsPositive() bool { return a.d.IsPositive() }

func (a Amount) IsNegative() bool { return a.d.IsNegative() }

// String renders the amount without trailing zeros
func (a Amount) String() string { return a.d.String() }

// StringFixed renders the amount with exactly n fractional digits
func (a Amount) StringFixed(n int32) string { return a.d.StringFixed(n) }

func (a Amount) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.d.String())
}

func (a *Amount) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		// Accept bare JSON numbers as well.
		s = string(data)
	}
	parsed, err := Parse(s)
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// Value implements driver.Valuer
func (a Amount) Value() (driver.Value, error) {
	return a.d.String(), nil
}

// Scan implements sql.Scanner
func (a *Amount) Scan(value interface{}) error {
	var d decimal.Decimal
	if err := d.Scan(value); err != nil {
		return fmt.Errorf("money: scan: %w", err)
	}
	a.d = d
	return nil
}
