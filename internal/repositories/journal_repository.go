package repositories

import (
	"time"

	"github.com/chiarivoices/backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// JournalRepository defines the interface for symptom journal operations
type JournalRepository interface {
	CreateEntry(entry *models.JournalEntry) error
	GetEntryByID(id string) (*models.JournalEntry, error)
	GetEntriesByUser(userID uint, from, to time.Time) ([]models.JournalEntry, error)
	UpdateEntry(entry *models.JournalEntry) error
	DeleteEntry(id string) error
	GetSummaryByUser(userID uint, from, to time.Time) ([]models.JournalSummaryPoint, error)
}

// PostgresJournalRepository implements JournalRepository for PostgreSQL
type PostgresJournalRepository struct {
	db *gorm.DB
}

// NewPostgresJournalRepository creates a new PostgresJournalRepository
func NewPostgresJournalRepository(db *gorm.DB) *PostgresJournalRepository {
	return &PostgresJournalRepository{db: db}
}

// CreateEntry creates a new journal entry with a generated UUID
func (r *PostgresJournalRepository) CreateEntry(entry *models.JournalEntry) error {
	entry.ID = uuid.NewString()
	return r.db.Create(entry).Error
}

// GetEntryByID retrieves a journal entry by ID
func (r *PostgresJournalRepository) GetEntryByID(id string) (*models.JournalEntry, error) {
	var entry models.JournalEntry
	if err := r.db.First(&entry, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &entry, nil
}

// GetEntriesByUser retrieves a user's journal entries within a date range,
// oldest first so the chart reads left to right.
func (r *PostgresJournalRepository) GetEntriesByUser(userID uint, from, to time.Time) ([]models.JournalEntry, error) {
	var entries []models.JournalEntry
	err := r.db.
		Where("user_id = ? AND entry_date >= ? AND entry_date <= ?", userID, from, to).
		Order("entry_date ASC").
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// UpdateEntry updates an existing journal entry
func (r *PostgresJournalRepository) UpdateEntry(entry *models.JournalEntry) error {
	return r.db.Save(entry).Error
}

// DeleteEntry deletes a journal entry by ID
func (r *PostgresJournalRepository) DeleteEntry(id string) error {
	return r.db.Delete(&models.JournalEntry{}, "id = ?", id).Error
}

// GetSummaryByUser aggregates average pain level per day for the chart view
func (r *PostgresJournalRepository) GetSummaryByUser(userID uint, from, to time.Time) ([]models.JournalSummaryPoint, error) {
	var points []models.JournalSummaryPoint
	err := r.db.Model(&models.JournalEntry{}).
		Select("to_char(entry_date, 'YYYY-MM-DD') AS date, avg(pain_level) AS pain_level, count(*) AS entries").
		Where("user_id = ? AND entry_date >= ? AND entry_date <= ?", userID, from, to).
		Group("to_char(entry_date, 'YYYY-MM-DD')").
		Order("date ASC").
		Scan(&points).Error
	if err != nil {
		return nil, err
	}
	return points, nil
}
