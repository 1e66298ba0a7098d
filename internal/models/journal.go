package models

import "time"

// JournalEntry is one day's symptom record in a user's personal journal.
// Entries are private to their owner and feed the pain-level chart.
type JournalEntry struct {
	ID        string    `json:"id" gorm:"type:uuid;primaryKey"`
	UserID    uint      `json:"user_id" gorm:"index;not null"`
	EntryDate time.Time `json:"entry_date" gorm:"index;not null"`
	PainLevel int       `json:"pain_level" gorm:"not null"`
	Symptoms  string    `json:"symptoms,omitempty"` // comma-separated symptom labels
	Notes     string    `json:"notes,omitempty" gorm:"type:text"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CreateJournalEntryRequest defines the request body for recording a journal entry
type CreateJournalEntryRequest struct {
	EntryDate string   `json:"entry_date" validate:"required,datetime=2006-01-02"`
	PainLevel int      `json:"pain_level" validate:"min=0,max=10"`
	Symptoms  []string `json:"symptoms,omitempty" validate:"omitempty,dive,min=1,max=100"`
	Notes     string   `json:"notes,omitempty" validate:"omitempty,max=5000"`
}

// UpdateJournalEntryRequest defines the request body for editing a journal entry
type UpdateJournalEntryRequest struct {
	PainLevel *int     `json:"pain_level,omitempty" validate:"omitempty,min=0,max=10"`
	Symptoms  []string `json:"symptoms,omitempty" validate:"omitempty,dive,min=1,max=100"`
	Notes     *string  `json:"notes,omitempty" validate:"omitempty,max=5000"`
}

// JournalSummaryPoint is one aggregated chart point: average pain level for a day.
type JournalSummaryPoint struct {
	Date      string  `json:"date"`
	PainLevel float64 `json:"pain_level"`
	Entries   int     `json:"entries"`
}
