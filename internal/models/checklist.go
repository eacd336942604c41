package models

import "time"

// Checklist day statuses, derived from the entry's items.
const (
	ChecklistPending    = "pendente"
	ChecklistIncomplete = "incompleto"
	ChecklistComplete   = "completo"
)

// ChecklistItem is one question on the pre-market checklist.
type ChecklistItem struct {
	ID          int    `json:"id"`
	Category    string `json:"category"`
	Text        string `json:"text"`
	Description string `json:"description,omitempty"`
	Checked     bool   `json:"checked"`
}

// ChecklistEntry stores the state of one user's checklist for one calendar
// day. Date is a plain "YYYY-MM-DD" string so the key is calendar-local and
// timezone shifts cannot split a day in two.
type ChecklistEntry struct {
	UserID    string          `gorm:"primaryKey" json:"user_id"`
	Date      string          `gorm:"primaryKey" json:"date"`
	Items     []ChecklistItem `gorm:"serializer:json" json:"items"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// Status classifies the entry: complete when every item is checked,
// incomplete otherwise. A missing entry is pending.
func (e ChecklistEntry) Status() string {
	if len(e.Items) == 0 {
		return ChecklistPending
	}
	for _, item := range e.Items {
		if !item.Checked {
			return ChecklistIncomplete
		}
	}
	return ChecklistComplete
}
