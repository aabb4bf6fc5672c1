package repositories

import (
	"context"

	"gorm.io/gorm"

	"lawdesk-api/internal/adapters/persistence/models"
)

// ContactRepository handles contact data access
type ContactRepository struct {
	db *gorm.DB
}

// NewContactRepository creates a new contact repository
func NewContactRepository(db *gorm.DB) *ContactRepository {
	return &ContactRepository{db: db}
}

func (r *ContactRepository) Create(ctx context.Context, contact *models.Contact) error {
	return r.db.WithContext(ctx).Create(contact).Error
}

func (r *ContactRepository) GetByID(ctx context.Context, id uint) (*models.Contact, error) {
	var contact models.Contact
	if err := r.db.WithContext(ctx).First(&contact, id).Error; err != nil {
		return nil, err
	}
	return &contact, nil
}

// Exists reports whether a live contact has id
func (r *ContactRepository) Exists(ctx context.Context, id uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Contact{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

// List lists contacts, optionally filtered by a name or document search
func (r *ContactRepository) List(ctx context.Context, search, kind string, offset, limit int) ([]*models.Contact, int64, error) {
	var contacts []*models.Contact
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Contact{})
	if search != "" {
		like := "%" + search + "%"
		query = query.Where("(name LIKE ? OR document LIKE ?)", like, like)
	}
	if kind != "" {
		query = query.Where("kind = ?", kind)
	}

	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := query.Order("name ASC").Offset(offset).Limit(limit).Find(&contacts).Error
	return contacts, total, err
}

func (r *ContactRepository) Update(ctx context.Context, contact *models.Contact) error {
	return r.db.WithContext(ctx).Save(contact).Error
}

// Delete soft deletes a contact
func (r *ContactRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Contact{}, id).Error
}

// CountProcesses counts live cases linked to the contact
func (r *ContactRepository) CountProcesses(ctx context.Context, id uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Process{}).Where("contact_id = ?", id).Count(&count).Error
	return count, err
}
