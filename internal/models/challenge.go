package models

import "time"

// Challenge statuses as persisted.
const (
	ChallengeActive    = "em_andamento"
	ChallengeCompleted = "concluido"
	ChallengeAbandoned = "desistido"
)

// Challenge represents a self-improvement challenge a user has started,
// e.g. "five green days in a row".
type Challenge struct {
	ID          string     `gorm:"primaryKey" json:"id"`
	UserID      string     `gorm:"index" json:"user_id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Duration    string     `json:"duration"`
	Status      string     `json:"status"`
	StartedAt   time.Time  `json:"started_at"`
	FinishedAt  *time.Time `json:"finished_at,omitempty"`
}
