package format

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCurrencyIndianGrouping(t *testing.T) {
	f := New("")
	cases := map[float64]string{
		0:          "₹0.00",
		999:        "₹999.00",
		1000:       "₹1,000.00",
		123456.5:   "₹1,23,456.50",
		12345678.9: "₹1,23,45,678.90",
		-2500:      "-₹2,500.00",
		10.006:     "₹10.01",
	}
	for in, want := range cases {
		assert.Equal(t, want, f.Currency(in), "amount %v", in)
	}
}

func TestCurrencyIsIdempotent(t *testing.T) {
	f := New("₹")
	for _, raw := range []string{"1234567.891", "₹1,23,456.00", "Rs. 450", "-75.5", "0"} {
		once := f.CurrencyString(raw)
		twice := f.CurrencyString(once)
		assert.Equal(t, once, twice, "input %q", raw)
	}
	assert.Equal(t, "n/a", f.CurrencyString(" n/a "))
}

func TestCurrencyNonFiniteIsZero(t *testing.T) {
	f := New("₹")
	assert.Equal(t, "₹0.00", f.Currency(math.NaN()))
	assert.Equal(t, "₹0.00", f.Currency(math.Inf(1)))
	assert.Equal(t, "₹0.00", f.CurrencyString("NaN"))
	assert.Equal(t, "₹0.00", f.CurrencyString("-Inf"))
}

func TestParseAmountCustomSymbol(t *testing.T) {
	f := New("$")
	v, err := f.ParseAmount("$1,200.25")
	require.NoError(t, err)
	assert.Equal(t, 1200.25, v)

	_, err = f.ParseAmount("  ")
	assert.Error(t, err)
}

func TestPercentIsIdempotent(t *testing.T) {
	assert.Equal(t, "85.50%", Percent(85.5))
	assert.Equal(t, "85.50%", PercentString("85.5"))
	assert.Equal(t, "85.50%", PercentString(PercentString("85.5")))
	assert.Equal(t, "0.00%", Percent(Ratio(3, 0)))
	assert.Equal(t, 66.67, Ratio(2, 3))
}
