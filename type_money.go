package fxgains

import (
	"encoding/json"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// USD is the currency every broker amount is denominated in.
const USD = "USD"

// Money represents a monetary value.
type Money struct {
	value decimal.Decimal // as major unit value
	cur   string
}

func M[T float32 | float64 | int | int32 | int64 | uint | uint32 | uint64 | decimal.Decimal](value T, currency string) Money {
	return Money{value: newDecimal(value), cur: currency}
}

// ParseMoney parses an amount as printed in broker statements, e.g. "$5,444.00" or "(12.50)".
func ParseMoney(s, currency string) (Money, error) {
	s = strings.TrimSpace(s)
	neg := strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")")
	s = strings.Trim(s, "()")
	s = strings.NewReplacer("$", "", ",", "", " ", "").Replace(s)
	if s == "" {
		return Money{cur: currency}, nil
	}
	v, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, err
	}
	if neg {
		v = v.Neg()
	}
	return Money{value: v, cur: currency}, nil
}

// currency returns the money's currency
func (m Money) currency() money.Currency {
	// to get a never nil currency I need to call the Money constructor
	return *money.New(0, m.cur).Currency()
}

// String returns the string representation of the money value.
func (m Money) String() string {
	cur := m.currency()
	dec := m.value.Round(int32(cur.Fraction)).Shift(int32(cur.Fraction))
	return cur.Formatter().Format(dec.IntPart())
}

// Fixed returns the amount with the currency's number of decimal places and no symbol.
func (m Money) Fixed() string {
	return m.value.StringFixed(int32(m.currency().Fraction))
}

// Simple wrapper around money.Money

func (m Money) Currency() string                { return m.cur }
func (m Money) Decimal() decimal.Decimal        { return m.value }
func (m Money) Equal(n Money) bool              { return m.value.Equal(n.value) && m.cur == n.cur }
func (m Money) IsZero() bool                    { return m.value.IsZero() }
func (m Money) IsPositive() bool                { return m.value.IsPositive() }
func (m Money) IsNegative() bool                { return m.value.IsNegative() }
func (m Money) LessThan(amount Money) bool      { return m.value.LessThan(amount.value) }
func (m Money) GreaterThan(n Money) bool        { return m.value.GreaterThan(n.value) }
func (m Money) GreaterThanOrEqual(n Money) bool { return m.value.GreaterThanOrEqual(n.value) }
func (m Money) Neg() Money                      { return Money{value: m.value.Neg(), cur: m.cur} }
func (m Money) Abs() Money                      { return Money{value: m.value.Abs(), cur: m.cur} }
func (m Money) Mul(n Quantity) Money            { return Money{value: m.value.Mul(n.value), cur: m.cur} }
func (m Money) Div(n Quantity) Money            { return Money{value: m.value.Div(n.value), cur: m.cur} }

// Convert returns the amount multiplied by rate, expressed in currency.
func (m Money) Convert(rate decimal.Decimal, currency string) Money {
	return Money{value: m.value.Mul(rate), cur: currency}
}

// binary operators.
func (m Money) Add(n Money) Money { return Money{value: m.value.Add(n.value), cur: cur(m, n)} }
func (m Money) Sub(n Money) Money { return Money{value: m.value.Sub(n.value), cur: cur(m, n)} }

// makes the "" currency totally weak.
func cur(A, B Money) string {
	if A.cur == "" {
		return B.cur
	}
	if B.cur == "" {
		return A.cur
	}
	if A.cur != B.cur {
		panic("currency mismatch" + A.cur + "!=" + B.cur)
	}
	return A.cur
}

// SignedString returns the string representation of the money value with a sign.
// 0 is represented as a "-"
func (m Money) SignedString() string {
	if m.value.IsZero() {
		return "-"
	}
	if m.value.IsPositive() {
		return "+" + m.String()
	}
	return m.String()
}

type jmoney struct {
	Currency string          `json:"currency,omitempty"`
	Amount   decimal.Decimal `json:"amount"`
}

// MarshalJSON persists the amount with all its digits.
func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(jmoney{Currency: m.cur, Amount: m.value})
}

func (m *Money) UnmarshalJSON(data []byte) error {
	var j jmoney
	if err := json.Unmarshal(data, &j); err != nil {
		return err
	}
	m.value, m.cur = j.Amount, j.Currency
	return nil
}
