package money

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBaseRoundTrip(t *testing.T) {
	testCases := []struct {
		name  string
		fixed Base
	}{
		{name: "zero", fixed: 0},
		{name: "one micro", fixed: 1},
		{name: "one unit", fixed: Scale},
		{name: "large", fixed: 123456123456},
		{name: "negative", fixed: -987654321},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			got, err := BaseFromFloat(testCase.fixed.Float64())
			assert.NoError(t, err)
			assert.Equal(t, testCase.fixed, got)
		})
	}
}

func TestBaseFromString(t *testing.T) {
	testCases := []struct {
		name        string
		text        string
		expected    Base
		expectedErr error
	}{
		{name: "six digits preserved", text: "123456.123456", expected: 123456123456},
		{name: "rounds beyond six digits", text: "123456.123456789", expected: 123456123457},
		{name: "half rounds away from zero", text: "0.0000005", expected: 1},
		{name: "negative half rounds away from zero", text: "-0.0000005", expected: -1},
		{name: "whitespace tolerated", text: " 42 ", expected: 42000000},
		{name: "not numeric", text: "12a.4", expectedErr: ErrParse},
		{name: "empty", text: "", expectedErr: ErrParse},
		{name: "nan is rejected", text: "NaN", expectedErr: ErrParse},
		{name: "overflow", text: "99999999999999999999", expectedErr: ErrOverflow},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			got, err := BaseFromString(testCase.text)
			if testCase.expectedErr != nil {
				assert.ErrorIs(t, err, testCase.expectedErr)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, testCase.expected, got)
		})
	}
}

func TestWireTruncatesReadRoundsWrite(t *testing.T) {
	// Fractional wire values are truncated toward zero on the way in,
	// while the same decimal written through FromFloat rounds.
	assert.Equal(t, Base(123456123456), BaseFromWire(123456123456.789))
	assert.Equal(t, Base(-5), BaseFromWire(-5.9))

	written, err := BaseFromFloat(123456.123456789)
	assert.NoError(t, err)
	assert.Equal(t, Base(123456123457), written)
}

func TestBaseFormat(t *testing.T) {
	testCases := []struct {
		name     string
		fixed    Base
		grouping bool
		expected string
	}{
		{name: "full precision", fixed: 123456123456, expected: "123456.123456"},
		{name: "trailing zeros trimmed", fixed: 500000, expected: "0.5"},
		{name: "whole number", fixed: 7 * Scale, expected: "7"},
		{name: "zero", fixed: 0, expected: "0"},
		{name: "grouped", fixed: 123456123456, grouping: true, expected: "123,456.123456"},
		{name: "negative grouped", fixed: -1234 * Scale, grouping: true, expected: "-1,234"},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			assert.Equal(t, testCase.expected, testCase.fixed.Format(testCase.grouping))
		})
	}
}

func TestBaseFormatRoundTripsInput(t *testing.T) {
	fixed, err := BaseFromString("123456.123456")
	assert.NoError(t, err)
	assert.Equal(t, "123456.123456", fixed.Format(false))
}

func TestFiatFormat(t *testing.T) {
	testCases := []struct {
		name     string
		fixed    Fiat
		grouping bool
		expected string
	}{
		{name: "one cent", fixed: 10000, expected: "0.01"},
		{name: "sub-cent shows as zero", fixed: 1, expected: "0.00"},
		{name: "always two digits", fixed: 5 * Scale, expected: "5.00"},
		{name: "grouped", fixed: 123456123456, grouping: true, expected: "123,456.12"},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			assert.Equal(t, testCase.expected, testCase.fixed.Format(testCase.grouping))
		})
	}
}

func TestFiatFormatRate(t *testing.T) {
	assert.Equal(t, "0.0000", Fiat(1).FormatRate())
	assert.Equal(t, "1.0000", Fiat(Scale).FormatRate())
	assert.Equal(t, "0.1234", Fiat(123400).FormatRate())
	// Rates are never grouped, whatever their magnitude.
	assert.Equal(t, "123456.1234", Fiat(123456123400).FormatRate())
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []float64{0, 0.1, 1.0 / 3.0, 123456.123456789, -42.654321999, 0.0000009}

	for _, v := range inputs {
		once, err := NormalizeBase(v)
		assert.NoError(t, err)
		twice, err := NormalizeBase(once)
		assert.NoError(t, err)
		assert.Equal(t, once, twice)
	}
}

func TestFromFloatOverflow(t *testing.T) {
	_, err := BaseFromFloat(math.Inf(1))
	assert.ErrorIs(t, err, ErrOverflow)

	_, err = FiatFromFloat(float64(math.MaxInt64))
	assert.ErrorIs(t, err, ErrOverflow)

	_, err = BaseFromFloat(math.NaN())
	assert.ErrorIs(t, err, ErrParse)
}
