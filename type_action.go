package fxgains

import (
	"fmt"
	"strings"
)

// Action is the side of a trade.
type Action int

const (
	// Buy acquires shares and opens a lot.
	Buy Action = iota + 1
	// Sell disposes of shares, closing the oldest open lots first.
	Sell
)

func (a Action) String() string {
	switch a {
	case Buy:
		return "buy"
	case Sell:
		return "sell"
	default:
		return "unknown"
	}
}

// ParseAction parses a trade side as found in broker exports.
func ParseAction(s string) (Action, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "buy", "bought", "b":
		return Buy, nil
	case "sell", "sold", "s":
		return Sell, nil
	default:
		return 0, fmt.Errorf("unknown action: %q", s)
	}
}

func (a Action) MarshalText() ([]byte, error) { return []byte(a.String()), nil }

func (a *Action) UnmarshalText(text []byte) (err error) {
	*a, err = ParseAction(string(text))
	return err
}
