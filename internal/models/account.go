package models

import "time"

// Account types. "Teste" marks demo/paper accounts, "Real" funded ones.
const (
	AccountTypeDemo = "Teste"
	AccountTypeReal = "Real"
)

// Account represents one trading account trades are booked against.
type Account struct {
	ID             string    `gorm:"primaryKey" json:"id"`
	UserID         string    `gorm:"index" json:"user_id"`
	Name           string    `json:"name"`
	Broker         string    `json:"broker"`
	Type           string    `json:"type"`
	InitialBalance float64   `json:"initial_balance"`
	Notes          string    `json:"notes,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}
