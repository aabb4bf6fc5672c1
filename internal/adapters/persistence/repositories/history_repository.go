package repositories

import (
	"context"

	"gorm.io/gorm"

	"lawdesk-api/internal/adapters/persistence/models"
)

// HistoryRepository handles the case audit trail
type HistoryRepository struct {
	db *gorm.DB
}

// NewHistoryRepository creates a new history repository
func NewHistoryRepository(db *gorm.DB) *HistoryRepository {
	return &HistoryRepository{db: db}
}

// WithTx returns a repository bound to tx
func (r *HistoryRepository) WithTx(tx *gorm.DB) *HistoryRepository {
	return &HistoryRepository{db: tx}
}

func (r *HistoryRepository) Create(ctx context.Context, entry *models.HistoryEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

// ListByProcess gets the history of a case, newest first
func (r *HistoryRepository) ListByProcess(ctx context.Context, processID uint) ([]*models.HistoryEntry, error) {
	var entries []*models.HistoryEntry
	err := r.db.WithContext(ctx).
		Preload("Performer").
		Where("process_id = ?", processID).
		Order("created_at DESC, id DESC").
		Find(&entries).Error
	return entries, err
}
