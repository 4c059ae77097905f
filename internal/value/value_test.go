package value

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstructorsCarryTags(t *testing.T) {
	assert.Equal(t, Number, Num(1.5).Type())
	assert.Equal(t, String, Str("hi").Type())
	assert.Equal(t, Bool, Boolean(true).Type())
}

func TestReadersCheckTags(t *testing.T) {
	n := Num(2.5)
	got, err := n.AsNumber()
	require.NoError(t, err)
	assert.Equal(t, 2.5, got)

	_, err = n.AsString()
	assert.ErrorContains(t, err, "not string")
	_, err = n.AsBool()
	assert.ErrorContains(t, err, "not bool")

	s := Str("abc")
	str, err := s.AsString()
	require.NoError(t, err)
	assert.Equal(t, "abc", str)
	_, err = s.AsNumber()
	assert.ErrorContains(t, err, "not number")

	b := Boolean(true)
	bv, err := b.AsBool()
	require.NoError(t, err)
	assert.True(t, bv)
}

func TestZeroValues(t *testing.T) {
	n, err := Zero(Number).AsNumber()
	require.NoError(t, err)
	assert.Equal(t, 0.0, n)

	s, err := Zero(String).AsString()
	require.NoError(t, err)
	assert.Equal(t, "", s)

	b, err := Zero(Bool).AsBool()
	require.NoError(t, err)
	assert.False(t, b)
}

func TestTypeNames(t *testing.T) {
	assert.Equal(t, "number", Number.String())
	assert.Equal(t, "string", String.String())
	assert.Equal(t, "bool", Bool.String())
}

func TestFormatNumberShortestRoundTrip(t *testing.T) {
	assert.Equal(t, "0.1", FormatNumber(0.1))
	assert.Equal(t, "5", FormatNumber(5))
	assert.Equal(t, "-2.5", FormatNumber(-2.5))
	assert.Equal(t, "1e+21", FormatNumber(1e21))
}
