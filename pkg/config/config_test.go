package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRates(t *testing.T) {
	rates := parseRates("USD:1, eur:0.92,GBP:0.79")

	require.Len(t, rates, 3)
	assert.Equal(t, 1.0, rates["USD"])
	assert.Equal(t, 0.92, rates["EUR"])
	assert.Equal(t, 0.79, rates["GBP"])
}

func TestParseRatesRejectsBadInput(t *testing.T) {
	assert.Panics(t, func() { parseRates("USD") })
	assert.Panics(t, func() { parseRates("USD:abc") })
	assert.Panics(t, func() { parseRates("USD:-1") })
	assert.Panics(t, func() { parseRates("USD:0") })
}

func TestGetEnvFallbacks(t *testing.T) {
	t.Setenv("SOME_INT", "42")
	t.Setenv("SOME_FLOAT", "2.5")

	assert.Equal(t, 42, getEnvInt("SOME_INT", 7))
	assert.Equal(t, 7, getEnvInt("SOME_INT_MISSING", 7))
	assert.Equal(t, 2.5, getEnvFloat("SOME_FLOAT", 1))
	assert.Equal(t, 1.0, getEnvFloat("SOME_FLOAT_MISSING", 1))
	assert.Equal(t, "x", getEnvOr("SOME_STR_MISSING", "x"))
	assert.Panics(t, func() { getEnv("SOME_REQUIRED_MISSING") })
}
