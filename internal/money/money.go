// Package money converts between the integer fixed-point wire representation
// of monetary amounts and their human-facing decimal form. Wire and storage
// amounts are always integers scaled by 10^6; balances are owned by the
// ledger and this package only translates for display and input.
package money

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Scale is the number of micro-units in one nominal unit.
const Scale = 1_000_000

// maxAmount is the largest float magnitude that still scales into int64.
const maxAmount = float64(math.MaxInt64) / Scale

var (
	ErrParse    = errors.New("not a valid decimal amount")
	ErrOverflow = errors.New("amount overflows the fixed-point range")
)

// Base is a fixed-point amount of the on-ledger currency, in 10^-6 units.
// Displayed with up to six fractional digits.
type Base int64

// Fiat is a fixed-point fiat amount, also in 10^-6 units but displayed with
// exactly two fractional digits (four for exchange rates). Base and Fiat are
// distinct types so the two unit domains cannot be mixed by accident.
type Fiat int64

func fromFloat(v float64) (int64, error) {
	if math.IsNaN(v) {
		return 0, ErrParse
	}
	if math.IsInf(v, 0) || math.Abs(v) >= maxAmount {
		return 0, ErrOverflow
	}
	// Half-away-from-zero, per math.Round. The read path truncates instead;
	// that asymmetry keeps a displayed balance from ever overstating the
	// stored one while still rounding user input fairly.
	return int64(math.Round(v * Scale)), nil
}

func parseFloat(text string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
	if err != nil || math.IsNaN(v) {
		return 0, fmt.Errorf("%q: %w", text, ErrParse)
	}
	return v, nil
}

func BaseFromFloat(v float64) (Base, error) {
	n, err := fromFloat(v)
	return Base(n), err
}

func FiatFromFloat(v float64) (Fiat, error) {
	n, err := fromFloat(v)
	return Fiat(n), err
}

func BaseFromString(text string) (Base, error) {
	v, err := parseFloat(text)
	if err != nil {
		return 0, err
	}
	return BaseFromFloat(v)
}

func FiatFromString(text string) (Fiat, error) {
	v, err := parseFloat(text)
	if err != nil {
		return 0, err
	}
	return FiatFromFloat(v)
}

// BaseFromWire truncates a raw wire value toward zero. Wire amounts are
// integers; a fractional one is a producer bug and the fraction is dropped,
// never rounded up.
func BaseFromWire(v float64) Base {
	return Base(math.Trunc(v))
}

func FiatFromWire(v float64) Fiat {
	return Fiat(math.Trunc(v))
}

func (a Base) Float64() float64 {
	return float64(a) / Scale
}

func (a Fiat) Float64() float64 {
	return float64(a) / Scale
}

// NormalizeBase snaps an arbitrary user-typed decimal onto the fixed-point
// grid. Idempotent after one application.
func NormalizeBase(v float64) (float64, error) {
	a, err := BaseFromFloat(v)
	if err != nil {
		return 0, err
	}
	return a.Float64(), nil
}

func NormalizeFiat(v float64) (float64, error) {
	a, err := FiatFromFloat(v)
	if err != nil {
		return 0, err
	}
	return a.Float64(), nil
}

// Format renders the amount with up to six fractional digits, trailing
// zeros trimmed.
func (a Base) Format(grouping bool) string {
	s := strconv.FormatFloat(a.Float64(), 'f', 6, 64)
	s = strings.TrimRight(s, "0")
	s = strings.TrimSuffix(s, ".")
	if grouping {
		s = groupThousands(s)
	}
	return s
}

// Format renders the amount with exactly two fractional digits.
func (a Fiat) Format(grouping bool) string {
	s := strconv.FormatFloat(a.Float64(), 'f', 2, 64)
	if grouping {
		s = groupThousands(s)
	}
	return s
}

// FormatRate keeps four fractional digits so sub-cent rate precision is not
// lost to the two-digit fiat display. Never grouped.
func (a Fiat) FormatRate() string {
	return strconv.FormatFloat(a.Float64(), 'f', 4, 64)
}

func groupThousands(s string) string {
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	intPart, frac, hasFrac := strings.Cut(s, ".")

	var b strings.Builder
	for i := 0; i < len(intPart); i++ {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteByte(intPart[i])
	}

	out := b.String()
	if hasFrac {
		out += "." + frac
	}
	if neg {
		out = "-" + out
	}
	return out
}
