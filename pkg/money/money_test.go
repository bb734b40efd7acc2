package money

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLineTotalRoundsHalfAwayFromZero(t *testing.T) {
	price := decimal.RequireFromString("0.125")

	assert.Equal(t, "0.13", Format(LineTotal(price, 1)))
	assert.Equal(t, "3.00", Format(LineTotal(decimal.RequireFromString("1.50"), 2)))
	assert.Equal(t, "0.00", Format(LineTotal(decimal.RequireFromString("9.99"), 0)))
}

func TestDecimalMarshalsAsNumber(t *testing.T) {
	out, err := json.Marshal(map[string]decimal.Decimal{"total": decimal.RequireFromString("12.99")})
	require.NoError(t, err)
	assert.JSONEq(t, `{"total":12.99}`, string(out))
}
