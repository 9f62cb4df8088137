package core

import (
	"bytes"
	"encoding/json"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// Amount is a decimal that decodes permissively: JSON numbers, numeric
// strings, "", null and garbage all decode without error. Anything that has
// no leading number becomes zero. It encodes as a plain JSON number.
type Amount struct {
	decimal.Decimal
}

var Zero = Amount{}

func Amt(d decimal.Decimal) Amount { return Amount{Decimal: d} }

func AmountFromFloat(f float64) Amount { return Amount{Decimal: decimal.NewFromFloat(f)} }

func AmountFromInt(i int64) Amount { return Amount{Decimal: decimal.NewFromInt(i)} }

// ParseAmount reads the leading number of s, as a spreadsheet-style form
// field would. "12.5kg" is 12.5; "abc" is 0.
func ParseAmount(s string) Amount {
	m := leadingNumber.FindString(strings.TrimSpace(s))
	if m == "" {
		return Zero
	}
	d, err := decimal.NewFromString(m)
	if err != nil {
		return Zero
	}
	return Amount{Decimal: d}
}

var leadingNumber = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?`)

func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(a.Decimal.String()), nil
}

func (a *Amount) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	a.Decimal = decimal.Zero
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return nil
	}
	switch b[0] {
	case '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return nil
		}
		*a = ParseAmount(s)
	case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		d, err := decimal.NewFromString(string(b))
		if err == nil {
			a.Decimal = d
		}
	}
	return nil
}

// IsPositive reports a > 0.
func (a Amount) IsPositive() bool { return a.Decimal.IsPositive() }

// Round2 rounds to paise.
func (a Amount) Round2() Amount { return Amount{Decimal: a.Decimal.Round(2)} }

// Sum adds amounts.
func Sum(xs ...Amount) Amount {
	total := decimal.Zero
	for _, x := range xs {
		total = total.Add(x.Decimal)
	}
	return Amount{Decimal: total}
}
