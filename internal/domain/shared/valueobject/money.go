package valueobject

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// MinorUnits is the number of fraction digits carried by Money
const MinorUnits int32 = 2

// Money is a value object representing a monetary amount in integer minor units (cents).
// It is immutable - all operations return new Money instances.
// Decimal conversion happens only at boundaries (parsing, storage, presentation).
type Money struct {
	cents int64
}

// Cent is the smallest representable amount
var Cent = Money{cents: 1}

// NewMoney creates Money from a decimal, rounding half away from zero to 2 fraction digits
func NewMoney(amount decimal.Decimal) Money {
	return Money{cents: amount.Round(MinorUnits).Shift(MinorUnits).IntPart()}
}

// NewMoneyFromCents creates Money from integer minor units
func NewMoneyFromCents(cents int64) Money {
	return Money{cents: cents}
}

// NewMoneyFromFloat creates Money from a float64 value
func NewMoneyFromFloat(amount float64) Money {
	return NewMoney(decimal.NewFromFloat(amount))
}

// NewMoneyFromString creates Money from a string representation
func NewMoneyFromString(amount string) (Money, error) {
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return Money{}, fmt.Errorf("invalid amount string: %w", err)
	}
	return NewMoney(d), nil
}

// MustMoney parses amount and panics on malformed input. Intended for constants and tests.
func MustMoney(amount string) Money {
	m, err := NewMoneyFromString(amount)
	if err != nil {
		panic(err)
	}
	return m
}

// Zero returns a zero-value Money
func Zero() Money {
	return Money{}
}

// Cents returns the amount in minor units
func (m Money) Cents() int64 {
	return m.cents
}

// Amount returns the decimal amount
func (m Money) Amount() decimal.Decimal {
	return decimal.New(m.cents, -MinorUnits)
}

// IsZero returns true if the amount is zero
func (m Money) IsZero() bool {
	return m.cents == 0
}

// IsPositive returns true if the amount is positive
func (m Money) IsPositive() bool {
	return m.cents > 0
}

// IsNegative returns true if the amount is negative
func (m Money) IsNegative() bool {
	return m.cents < 0
}

// Add returns the sum of both amounts
func (m Money) Add(other Money) Money {
	return Money{cents: m.cents + other.cents}
}

// Subtract returns the difference of both amounts
func (m Money) Subtract(other Money) Money {
	return Money{cents: m.cents - other.cents}
}

// Multiply returns Money multiplied by factor, rounded to minor units
func (m Money) Multiply(factor decimal.Decimal) Money {
	return NewMoney(m.Amount().Mul(factor))
}

// Negate returns Money with the sign reversed
func (m Money) Negate() Money {
	return Money{cents: -m.cents}
}

// Min returns the smaller of both amounts
func (m Money) Min(other Money) Money {
	if other.cents < m.cents {
		return other
	}
	return m
}

// Max returns the larger of both amounts
func (m Money) Max(other Money) Money {
	if other.cents > m.cents {
		return other
	}
	return m
}

// ClampNonNegative returns zero for negative amounts
func (m Money) ClampNonNegative() Money {
	return m.Max(Zero())
}

// Equals returns true if both amounts are equal
func (m Money) Equals(other Money) bool {
	return m.cents == other.cents
}

// LessThan returns true if this Money is less than the other
func (m Money) LessThan(other Money) bool {
	return m.cents < other.cents
}

// LessThanOrEqual returns true if this Money is less than or equal to the other
func (m Money) LessThanOrEqual(other Money) bool {
	return m.cents <= other.cents
}

// GreaterThan returns true if this Money is greater than the other
func (m Money) GreaterThan(other Money) bool {
	return m.cents > other.cents
}

// GreaterThanOrEqual returns true if this Money is greater than or equal to the other
func (m Money) GreaterThanOrEqual(other Money) bool {
	return m.cents >= other.cents
}

// WithinTolerance reports whether |m - other| <= tolerance
func (m Money) WithinTolerance(other, tolerance Money) bool {
	diff := m.cents - other.cents
	if diff < 0 {
		diff = -diff
	}
	return diff <= tolerance.cents
}

// String returns the amount with two fraction digits
func (m Money) String() string {
	return m.Amount().StringFixed(MinorUnits)
}

// Float64 returns the amount as a float64 (may lose precision; presentation only)
func (m Money) Float64() float64 {
	return m.Amount().InexactFloat64()
}

// MarshalJSON encodes the amount as a fixed two-digit decimal string
func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.String())
}

// UnmarshalJSON accepts either a JSON string or a JSON number
func (m *Money) UnmarshalJSON(data []byte) error {
	var d decimal.Decimal
	if err := d.UnmarshalJSON(data); err != nil {
		return fmt.Errorf("invalid amount: %w", err)
	}
	*m = NewMoney(d)
	return nil
}

// Value implements driver.Valuer for database storage as a numeric string
func (m Money) Value() (driver.Value, error) {
	return m.String(), nil
}

// Scan implements sql.Scanner for database retrieval
func (m *Money) Scan(value any) error {
	if value == nil {
		*m = Zero()
		return nil
	}
	var d decimal.Decimal
	if err := d.Scan(value); err != nil {
		return fmt.Errorf("cannot scan %T into Money: %w", value, err)
	}
	*m = NewMoney(d)
	return nil
}

// Sum adds up all amounts
func Sum(amounts ...Money) Money {
	var total int64
	for _, a := range amounts {
		total += a.cents
	}
	return Money{cents: total}
}
