package dto

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAmountAcceptsNumberOrString(t *testing.T) {
	cases := map[string]float64{
		`{"amount":250}`:    250,
		`{"amount":"99.5"}`: 99.5,
		`{"amount":" 10 "}`: 10,
		`{"amount":-3}`:     -3,
		`{"playerId":"p1"}`: 0,
	}
	for body, want := range cases {
		var req CreateOrderRequest
		require.NoError(t, json.Unmarshal([]byte(body), &req), body)
		assert.Equal(t, want, float64(req.Amount), body)
	}
}

func TestAmountRejectsGarbageAsNaN(t *testing.T) {
	for _, body := range []string{`{"amount":"ten"}`, `{"amount":true}`} {
		var req CreateReceiptRequest
		require.NoError(t, json.Unmarshal([]byte(body), &req), body)
		assert.True(t, math.IsNaN(float64(req.Amount)), body)
	}
}
