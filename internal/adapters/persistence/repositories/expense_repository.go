package repositories

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"lawdesk-api/internal/adapters/persistence/models"
	"lawdesk-api/internal/core/domain"
)

// ExpenseRepository handles expense data access
type ExpenseRepository struct {
	db *gorm.DB
}

// NewExpenseRepository creates a new expense repository
func NewExpenseRepository(db *gorm.DB) *ExpenseRepository {
	return &ExpenseRepository{db: db}
}

// WithTx returns a repository bound to tx
func (r *ExpenseRepository) WithTx(tx *gorm.DB) *ExpenseRepository {
	return &ExpenseRepository{db: tx}
}

func (r *ExpenseRepository) Create(ctx context.Context, expense *models.Expense) error {
	return r.db.WithContext(ctx).Create(expense).Error
}

func (r *ExpenseRepository) GetByID(ctx context.Context, id uint) (*models.Expense, error) {
	var expense models.Expense
	if err := r.db.WithContext(ctx).First(&expense, id).Error; err != nil {
		return nil, err
	}
	return &expense, nil
}

// ListByProcess lists expenses of a case by date
func (r *ExpenseRepository) ListByProcess(ctx context.Context, processID uint) ([]*models.Expense, error) {
	var expenses []*models.Expense
	err := r.db.WithContext(ctx).
		Where("process_id = ?", processID).
		Order("date ASC, id ASC").
		Find(&expenses).Error
	return expenses, err
}

func (r *ExpenseRepository) Update(ctx context.Context, expense *models.Expense) error {
	return r.db.WithContext(ctx).Save(expense).Error
}

// Delete soft deletes an expense
func (r *ExpenseRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Expense{}, id).Error
}

// DeleteByProcess soft deletes every expense of a case
func (r *ExpenseRepository) DeleteByProcess(ctx context.Context, processID uint) error {
	return r.db.WithContext(ctx).Where("process_id = ?", processID).Delete(&models.Expense{}).Error
}

// Total sums non-cancelled expenses dated in [from, to)
func (r *ExpenseRepository) Total(ctx context.Context, from, to time.Time) (decimal.Decimal, error) {
	var rows []struct {
		Amount decimal.Decimal
	}
	err := r.db.WithContext(ctx).
		Model(&models.Expense{}).
		Select("amount").
		Where("date >= ? AND date < ? AND status <> ?", from, to, string(domain.ExpenseCancelled)).
		Find(&rows).Error
	if err != nil {
		return decimal.Zero, err
	}

	total := decimal.Zero
	for _, row := range rows {
		total = total.Add(row.Amount)
	}
	return domain.Money(total), nil
}
