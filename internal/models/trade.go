package models

import "time"

// Trade direction values as persisted. The journal predates its Go port and
// stored Portuguese direction labels; they are kept for data compatibility.
const (
	DirectionBuy  = "compra"
	DirectionSell = "venda"
)

// Trade represents one logged trade execution. Trades are immutable once
// created; the only mutation is deletion.
type Trade struct {
	ID               string    `gorm:"primaryKey" json:"id"`
	UserID           string    `gorm:"index:idx_trades_user_account" json:"user_id"`
	AccountID        string    `gorm:"index:idx_trades_user_account" json:"account_id"`
	InstrumentSymbol string    `json:"instrument_symbol"`
	Direction        string    `json:"direction"` // "compra" or "venda"
	Quantity         int       `json:"quantity"`
	EntryPrice       float64   `json:"entry_price"`
	ExitPrice        float64   `json:"exit_price"`
	GrossResult      float64   `json:"gross_result"`
	Commission       float64   `json:"commission"`
	NetResult        float64   `json:"net_result"`
	Notes            string    `json:"notes,omitempty"`
	Screenshot       string    `json:"screenshot,omitempty"`
	ExecutedAt       time.Time `gorm:"index" json:"executed_at"`
	CreatedAt        time.Time `json:"created_at"`
}
