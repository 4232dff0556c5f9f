package valueobject

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMoney(t *testing.T) {
	t.Run("rounds to minor units", func(t *testing.T) {
		m := NewMoney(decimal.RequireFromString("10.005"))
		assert.Equal(t, int64(1001), m.Cents())
		assert.Equal(t, "10.01", m.String())
	})

	t.Run("keeps exact cents", func(t *testing.T) {
		m := NewMoney(decimal.RequireFromString("123.45"))
		assert.Equal(t, int64(12345), m.Cents())
		assert.True(t, m.Amount().Equal(decimal.RequireFromString("123.45")))
	})

	t.Run("negative amounts", func(t *testing.T) {
		m := NewMoney(decimal.RequireFromString("-7.5"))
		assert.Equal(t, int64(-750), m.Cents())
		assert.True(t, m.IsNegative())
	})
}

func TestNewMoneyFromString(t *testing.T) {
	t.Run("valid string", func(t *testing.T) {
		m, err := NewMoneyFromString("99.99")
		require.NoError(t, err)
		assert.Equal(t, int64(9999), m.Cents())
	})

	t.Run("invalid string", func(t *testing.T) {
		_, err := NewMoneyFromString("not-a-number")
		assert.Error(t, err)
	})
}

func TestMoney_FloatDriftIsAbsorbed(t *testing.T) {
	total := Zero()
	for range 10 {
		total = total.Add(NewMoneyFromFloat(0.1))
	}
	assert.True(t, total.Equals(MustMoney("1.00")))
}

func TestMoney_Arithmetic(t *testing.T) {
	a := MustMoney("30.00")
	b := MustMoney("12.34")

	assert.Equal(t, "42.34", a.Add(b).String())
	assert.Equal(t, "17.66", a.Subtract(b).String())
	assert.Equal(t, "-30.00", a.Negate().String())
	assert.Equal(t, "12.34", a.Min(b).String())
	assert.Equal(t, "30.00", a.Max(b).String())
	assert.Equal(t, "0.00", b.Subtract(a).ClampNonNegative().String())
	assert.Equal(t, "3.70", b.Multiply(decimal.RequireFromString("0.3")).String())
	assert.Equal(t, "54.68", Sum(a, b, b).String())
}

func TestMoney_Comparisons(t *testing.T) {
	a := MustMoney("10.00")
	b := MustMoney("10.01")

	assert.True(t, a.LessThan(b))
	assert.True(t, a.LessThanOrEqual(a))
	assert.True(t, b.GreaterThan(a))
	assert.True(t, b.GreaterThanOrEqual(b))
	assert.True(t, a.WithinTolerance(b, Cent))
	assert.False(t, a.WithinTolerance(MustMoney("10.02"), Cent))
}

func TestMoney_JSON(t *testing.T) {
	t.Run("marshals as fixed string", func(t *testing.T) {
		data, err := json.Marshal(MustMoney("5"))
		require.NoError(t, err)
		assert.Equal(t, `"5.00"`, string(data))
	})

	t.Run("unmarshals numbers and strings", func(t *testing.T) {
		var fromNumber, fromString Money
		require.NoError(t, json.Unmarshal([]byte(`12.5`), &fromNumber))
		require.NoError(t, json.Unmarshal([]byte(`"12.50"`), &fromString))
		assert.True(t, fromNumber.Equals(fromString))
	})
}

func TestMoney_DatabaseRoundTrip(t *testing.T) {
	m := MustMoney("1234.56")
	v, err := m.Value()
	require.NoError(t, err)
	assert.Equal(t, "1234.56", v)

	var scanned Money
	require.NoError(t, scanned.Scan([]byte("1234.56")))
	assert.True(t, scanned.Equals(m))

	require.NoError(t, scanned.Scan(float64(40.1)))
	assert.Equal(t, int64(4010), scanned.Cents())

	require.NoError(t, scanned.Scan(nil))
	assert.True(t, scanned.IsZero())
}
