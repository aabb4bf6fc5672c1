package repositories

import (
	"context"

	"gorm.io/gorm"

	"lawdesk-api/internal/adapters/persistence/models"
	"lawdesk-api/internal/core/domain"
)

// TaskRepository handles task data access
type TaskRepository struct {
	db *gorm.DB
}

// NewTaskRepository creates a new task repository
func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

// WithTx returns a repository bound to tx
func (r *TaskRepository) WithTx(tx *gorm.DB) *TaskRepository {
	return &TaskRepository{db: tx}
}

func (r *TaskRepository) Create(ctx context.Context, task *models.Task) error {
	return r.db.WithContext(ctx).Create(task).Error
}

func (r *TaskRepository) GetByID(ctx context.Context, id uint) (*models.Task, error) {
	var task models.Task
	if err := r.db.WithContext(ctx).First(&task, id).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

// ListByProcess lists tasks of a case, optionally by status, by due date
func (r *TaskRepository) ListByProcess(ctx context.Context, processID uint, status string) ([]*models.Task, error) {
	var tasks []*models.Task
	query := r.db.WithContext(ctx).Where("process_id = ?", processID)
	if status != "" {
		query = query.Where("status = ?", status)
	}
	err := query.Order("due_date IS NULL, due_date ASC, id ASC").Find(&tasks).Error
	return tasks, err
}

func (r *TaskRepository) Update(ctx context.Context, task *models.Task) error {
	return r.db.WithContext(ctx).Save(task).Error
}

// Delete soft deletes a task
func (r *TaskRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Task{}, id).Error
}

// CountOpen counts pending tasks, optionally only those of one responsible
func (r *TaskRepository) CountOpen(ctx context.Context, responsibleID *uint) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&models.Task{}).Where("status = ?", string(domain.TaskPending))
	if responsibleID != nil {
		query = query.Where("responsible_id = ?", *responsibleID)
	}
	err := query.Count(&count).Error
	return count, err
}

// DeleteByProcess soft deletes every task of a case
func (r *TaskRepository) DeleteByProcess(ctx context.Context, processID uint) error {
	return r.db.WithContext(ctx).Where("process_id = ?", processID).Delete(&models.Task{}).Error
}
