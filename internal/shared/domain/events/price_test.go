package events

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePrice(t *testing.T) {
	cases := []struct {
		in       string
		currency string
		amount   string
	}{
		{"USD12.50", "USD", "12.50"},
		{"EUR7", "EUR", "7"},
		{"JPY1500.125", "JPY", "1500.125"},
		{"9.99", "", "9.99"},
	}

	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			p, err := ParsePrice(tc.in)

			require.NoError(t, err)
			assert.Equal(t, tc.currency, p.Currency)
			assert.True(t, p.Amount.Equal(decimal.RequireFromString(tc.amount)), "got %s", p.Amount)
		})
	}
}

func TestParsePrice_Rejects(t *testing.T) {
	for _, in := range []string{"usd12.50", "US12", "USD", "USD12.", "USD-3", "twelve"} {
		_, err := ParsePrice(in)
		assert.Error(t, err, in)
	}
}

func TestPrice_UnmarshalNumberAndNull(t *testing.T) {
	var holder struct {
		A Price `json:"a"`
		B Price `json:"b"`
	}

	err := json.Unmarshal([]byte(`{"a":12.5,"b":null}`), &holder)

	require.NoError(t, err)
	assert.True(t, holder.A.Amount.Equal(decimal.RequireFromString("12.5")))
	assert.Empty(t, holder.A.Currency)
	assert.True(t, holder.B.Amount.IsZero())
}
