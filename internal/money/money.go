// Package money is the single numeric parsing boundary of the journal.
// Monetary fields arrive from clients as numbers, numeric strings, empty
// strings or null; everything is normalized to a float64 here, with invalid
// input defaulting to zero. Derivations that mix user input with instrument
// tick arithmetic go through decimals so the stored results carry no binary
// residue from intermediate division.
package money

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"

	"trade-journal-go/internal/models"
)

// Value is a monetary amount that unmarshals leniently from JSON. Numbers,
// numeric strings ("12.50", "1.234,56"), "" and null are all accepted;
// anything unparsable becomes 0 rather than an error.
type Value float64

// UnmarshalJSON implements json.Unmarshaler.
func (v *Value) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*v = 0
		return nil
	}
	s := string(data)
	if data[0] == '"' {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			*v = 0
			return nil
		}
		s = str
	}
	*v = Value(Parse(s))
	return nil
}

// Float64 returns the underlying amount.
func (v Value) Float64() float64 {
	return float64(v)
}

// Parse converts a user-supplied amount string to a float64, defaulting to 0
// on anything unparsable. A decimal comma is tolerated when no decimal point
// is present ("1.234,56" and "12,5" both parse).
func Parse(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	if strings.Contains(s, ",") {
		if strings.Contains(s, ".") && strings.LastIndex(s, ",") > strings.LastIndex(s, ".") {
			// "1.234,56": dots are thousand separators.
			s = strings.ReplaceAll(s, ".", "")
		}
		s = strings.ReplaceAll(s, ",", ".")
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0
	}
	return d.InexactFloat64()
}

// GrossResult converts the price move of a trade into a monetary result:
// the direction-signed price delta divided by the instrument's tick size,
// times value per tick, times quantity. A non-positive tick size yields 0.
func GrossResult(direction string, entry, exit float64, quantity int, instrument models.Instrument) float64 {
	if instrument.TickSize <= 0 {
		return 0
	}

	entryD := decimal.NewFromFloat(entry)
	exitD := decimal.NewFromFloat(exit)

	delta := exitD.Sub(entryD)
	if direction == models.DirectionSell {
		delta = entryD.Sub(exitD)
	}

	ticks := delta.Div(decimal.NewFromFloat(instrument.TickSize))
	result := ticks.
		Mul(decimal.NewFromFloat(instrument.ValuePerTick)).
		Mul(decimal.NewFromInt(int64(quantity)))

	return result.InexactFloat64()
}

// Net applies the journal's core identity: net = gross - commission.
func Net(gross, commission float64) float64 {
	return decimal.NewFromFloat(gross).
		Sub(decimal.NewFromFloat(commission)).
		InexactFloat64()
}

// BackSolveCommission derives the commission from a reported net profit, so
// that Net(gross, commission) == reportedNet. This is the alternate
// commission-entry mode: the trader knows what the broker paid out and the
// journal works the fee backwards.
func BackSolveCommission(gross, reportedNet float64) float64 {
	return decimal.NewFromFloat(gross).
		Sub(decimal.NewFromFloat(reportedNet)).
		InexactFloat64()
}
