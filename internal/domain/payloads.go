package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TradePayload is the data carried by a trade update.
type TradePayload struct {
	Symbol   string          `json:"symbol"`
	Price    decimal.Decimal `json:"price"`
	Quantity decimal.Decimal `json:"quantity"`
	Side     string          `json:"side"`
	Strategy string          `json:"strategy,omitempty"`
}

// PositionPayload is the data carried by a position update.
type PositionPayload struct {
	Symbol        string          `json:"symbol"`
	Size          decimal.Decimal `json:"size"`
	EntryPrice    decimal.Decimal `json:"entry_price"`
	MarkPrice     decimal.Decimal `json:"mark_price"`
	UnrealizedPnL decimal.Decimal `json:"unrealized_pnl"`
}

// MarketPayload is the data carried by a market data update.
type MarketPayload struct {
	Symbol    string          `json:"symbol"`
	Bid       decimal.Decimal `json:"bid"`
	Ask       decimal.Decimal `json:"ask"`
	Last      decimal.Decimal `json:"last"`
	Volume24h decimal.Decimal `json:"volume_24h"`
}

// MetricsPayload is the data carried by a metrics update.
type MetricsPayload struct {
	ActiveConnections int64          `json:"active_connections"`
	MessagesSent      int64          `json:"messages_sent"`
	ErrorCount        int64          `json:"error_count"`
	MessageRate       float64        `json:"message_rate"`
	ByChannel         map[string]int `json:"by_channel,omitempty"`
	ReportedAt        time.Time      `json:"reported_at"`
}

// TradeUpdate builds a trade message.
func TradeUpdate(p TradePayload) Message {
	return Message{Type: TypeTrade, Data: p}
}

// PositionUpdate builds a position message.
func PositionUpdate(p PositionPayload) Message {
	return Message{Type: TypePosition, Data: p}
}

// MarketUpdate builds a market data message.
func MarketUpdate(p MarketPayload) Message {
	return Message{Type: TypeMarket, Data: p}
}

// MetricsUpdate builds a metrics message.
func MetricsUpdate(p MetricsPayload) Message {
	return Message{Type: TypeMetrics, Data: p}
}
