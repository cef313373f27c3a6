package events

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"

	"github.com/shopspring/decimal"
)

var currencyAmount = regexp.MustCompile(`^([A-Z]{3})(\d+(?:\.\d+)?)$`)

// Price es un precio unitario. En el cable llega como número (12.5)
// o como código ISO seguido del importe ("USD12.50").
type Price struct {
	Currency string
	Amount   decimal.Decimal
}

// ParsePrice interpreta la forma textual de un precio.
func ParsePrice(s string) (Price, error) {
	if m := currencyAmount.FindStringSubmatch(s); m != nil {
		amount, err := decimal.NewFromString(m[2])
		if err != nil {
			return Price{}, fmt.Errorf("invalid amount %q: %w", m[2], err)
		}
		return Price{Currency: m[1], Amount: amount}, nil
	}
	amount, err := decimal.NewFromString(s)
	if err != nil {
		return Price{}, fmt.Errorf("invalid price %q", s)
	}
	return Price{Amount: amount}, nil
}

func (p *Price) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*p = Price{}
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		parsed, err := ParsePrice(s)
		if err != nil {
			return err
		}
		*p = parsed
		return nil
	}
	amount, err := decimal.NewFromString(string(data))
	if err != nil {
		return fmt.Errorf("invalid price %s", data)
	}
	*p = Price{Amount: amount}
	return nil
}

func (p Price) MarshalJSON() ([]byte, error) {
	if p.Currency == "" {
		return []byte(p.Amount.String()), nil
	}
	return json.Marshal(p.String())
}

func (p Price) String() string {
	return p.Currency + p.Amount.String()
}
