package domain

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessageTypeValid(t *testing.T) {
	for _, mt := range []MessageType{TypeTrade, TypePosition, TypeMetrics, TypeMarket, TypeTest, TypeBroadcast} {
		assert.True(t, mt.Valid(), "type %q should be allowed", mt)
	}

	for _, mt := range []MessageType{"", "shell_command", "TRADE", "trade "} {
		assert.False(t, mt.Valid(), "type %q should be rejected", mt)
	}
}

func TestNewMessage(t *testing.T) {
	msg, err := NewMessage(TypeTrade, map[string]any{"symbol": "BTC-USD"})
	require.NoError(t, err)
	assert.Equal(t, TypeTrade, msg.Type)

	_, err = NewMessage("bogus", nil)
	assert.Error(t, err)
}

func TestNewMessageDefaultsNilData(t *testing.T) {
	msg, err := NewMessage(TypeTest, nil)
	require.NoError(t, err)

	raw, err := json.Marshal(msg)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"data":{}`)
}

func TestTradeUpdateSerializesDecimals(t *testing.T) {
	msg := TradeUpdate(TradePayload{
		Symbol:   "ETH-USD",
		Price:    decimal.RequireFromString("3150.25"),
		Quantity: decimal.RequireFromString("0.5"),
		Side:     "buy",
	})
	assert.Equal(t, TypeTrade, msg.Type)

	raw, err := json.Marshal(msg)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"price":"3150.25"`)
	assert.Contains(t, string(raw), `"quantity":"0.5"`)
}

func TestUpdateConstructorsSetTypes(t *testing.T) {
	assert.Equal(t, TypePosition, PositionUpdate(PositionPayload{}).Type)
	assert.Equal(t, TypeMarket, MarketUpdate(MarketPayload{}).Type)
	assert.Equal(t, TypeMetrics, MetricsUpdate(MetricsPayload{}).Type)
}
