package repositories

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"lawdesk-api/internal/adapters/persistence/models"
)

// ProcessFilter narrows case listings
type ProcessFilter struct {
	ResponsibleID *uint
	ContactID     *uint
	Workflow      string
	Archived      *bool
	Search        string
}

// Scope applies the filter to a query on processes
func (f ProcessFilter) Scope(db *gorm.DB) *gorm.DB {
	if f.ResponsibleID != nil {
		db = db.Where("processes.responsible_id = ?", *f.ResponsibleID)
	}
	if f.ContactID != nil {
		db = db.Where("processes.contact_id = ?", *f.ContactID)
	}
	if f.Workflow != "" {
		db = db.Where("processes.workflow = ?", f.Workflow)
	}
	if f.Archived != nil {
		if *f.Archived {
			db = db.Where("processes.archived_at IS NOT NULL")
		} else {
			db = db.Where("processes.archived_at IS NULL")
		}
	}
	if f.Search != "" {
		like := "%" + f.Search + "%"
		db = db.Where("(processes.title LIKE ? OR processes.origin LIKE ?)", like, like)
	}
	return db
}

// ProcessRepository handles case data access
type ProcessRepository struct {
	db *gorm.DB
}

// NewProcessRepository creates a new process repository
func NewProcessRepository(db *gorm.DB) *ProcessRepository {
	return &ProcessRepository{db: db}
}

// WithTx returns a repository bound to tx
func (r *ProcessRepository) WithTx(tx *gorm.DB) *ProcessRepository {
	return &ProcessRepository{db: tx}
}

func (r *ProcessRepository) Create(ctx context.Context, process *models.Process) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(process).Error
}

// GetByID gets a case with responsible user and contact
func (r *ProcessRepository) GetByID(ctx context.Context, id uint) (*models.Process, error) {
	var process models.Process
	err := r.db.WithContext(ctx).
		Preload("Responsible").
		Preload("Contact").
		First(&process, id).Error
	if err != nil {
		return nil, err
	}
	return &process, nil
}

// List lists cases matching filter, newest first
func (r *ProcessRepository) List(ctx context.Context, filter ProcessFilter, offset, limit int) ([]*models.Process, int64, error) {
	var processes []*models.Process
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Process{}).Scopes(filter.Scope)
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.
		Preload("Responsible").
		Preload("Contact").
		Order("processes.created_at DESC, processes.id DESC").
		Offset(offset).
		Limit(limit).
		Find(&processes).Error
	return processes, total, err
}

// Count counts cases matching filter
func (r *ProcessRepository) Count(ctx context.Context, filter ProcessFilter) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&models.Process{}).Scopes(filter.Scope).Count(&total).Error
	return total, err
}

// Update saves case columns, never associations
func (r *ProcessRepository) Update(ctx context.Context, process *models.Process) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(process).Error
}

// SetArchivedAt archives (non-nil) or unarchives (nil) a case
func (r *ProcessRepository) SetArchivedAt(ctx context.Context, id uint, at *time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.Process{}).
		Where("id = ?", id).
		Update("archived_at", at).Error
}

// Delete soft deletes a case
func (r *ProcessRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Process{}, id).Error
}
