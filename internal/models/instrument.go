package models

// Instrument represents a tradable instrument definition. Tick size and
// value per tick convert raw price movement into a monetary result.
type Instrument struct {
	Symbol       string  `gorm:"primaryKey" json:"symbol"`
	Name         string  `json:"name"`
	AssetClass   string  `json:"asset_class"`
	Market       string  `json:"market"` // CME, B3, NYSE, NASDAQ, ...
	TickSize     float64 `gorm:"not null" json:"tick_size"`
	ValuePerTick float64 `gorm:"not null" json:"value_per_tick"`
	ContractSize float64 `json:"contract_size"`
}
