package services

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"lawdesk-api/internal/adapters/persistence/models"
	"lawdesk-api/internal/adapters/persistence/repositories"
	"lawdesk-api/internal/core/domain"
)

var ErrExpenseNotFound = domain.NotFound("expense")

// ExpenseService manages money spent on a case
type ExpenseService struct {
	db          *gorm.DB
	expenseRepo *repositories.ExpenseRepository
	processRepo *repositories.ProcessRepository
	historyRepo *repositories.HistoryRepository
}

// NewExpenseService creates a new expense service
func NewExpenseService(
	db *gorm.DB,
	expenseRepo *repositories.ExpenseRepository,
	processRepo *repositories.ProcessRepository,
	historyRepo *repositories.HistoryRepository,
) *ExpenseService {
	return &ExpenseService{
		db:          db,
		expenseRepo: expenseRepo,
		processRepo: processRepo,
		historyRepo: historyRepo,
	}
}

// ExpenseInput is the payload for creating or updating an expense
type ExpenseInput struct {
	Description string          `json:"description" validate:"required,max=255"`
	Amount      decimal.Decimal `json:"amount"`
	Date        domain.Date     `json:"date"`
	Category    string          `json:"category" validate:"max=50"`
	Status      string          `json:"status" validate:"omitempty,oneof=pending paid cancelled"`
}

func (in *ExpenseInput) validate() error {
	var fields []domain.FieldError
	if !domain.Money(in.Amount).IsPositive() {
		fields = append(fields, domain.FieldError{Field: "amount", Message: "must be greater than 0"})
	}
	if in.Date.IsZero() {
		fields = append(fields, domain.FieldError{Field: "date", Message: "is required"})
	}
	if in.Status != "" && !domain.ExpenseStatus(in.Status).Valid() {
		fields = append(fields, domain.FieldError{Field: "status", Message: "unknown status"})
	}
	if len(fields) > 0 {
		return domain.Validation("invalid expense", fields...)
	}
	return nil
}

func (in *ExpenseInput) status() string {
	if in.Status == "" {
		return string(domain.ExpensePending)
	}
	return in.Status
}

// List lists expenses of a case
func (s *ExpenseService) List(ctx context.Context, processID uint) ([]*models.Expense, error) {
	if _, err := s.processRepo.GetByID(ctx, processID); err != nil {
		return nil, lookup(err, ErrProcessNotFound)
	}
	expenses, err := s.expenseRepo.ListByProcess(ctx, processID)
	return expenses, unexpected(err)
}

// Create records an expense on an open case
func (s *ExpenseService) Create(ctx context.Context, actor Actor, processID uint, input *ExpenseInput) (*models.Expense, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	expense := &models.Expense{
		ProcessID:   processID,
		Description: input.Description,
		Amount:      domain.Money(input.Amount),
		Date:        input.Date.Time,
		Category:    input.Category,
		Status:      input.status(),
	}

	err := inTx(ctx, s.db, "expense.create", func(tx *gorm.DB) error {
		if _, err := openProcess(ctx, s.processRepo.WithTx(tx), processID); err != nil {
			return err
		}
		if err := s.expenseRepo.WithTx(tx).Create(ctx, expense); err != nil {
			return err
		}
		return record(ctx, s.historyRepo.WithTx(tx), actor, processID, domain.HistoryExpenseCreate,
			fmt.Sprintf("Despesa lançada: %s, %s", expense.Description, domain.FormatBRL(expense.Amount)))
	})
	if err != nil {
		return nil, err
	}
	return expense, nil
}

// Update replaces the fields of an expense on an open case
func (s *ExpenseService) Update(ctx context.Context, processID, id uint, input *ExpenseInput) (*models.Expense, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	var expense *models.Expense
	err := inTx(ctx, s.db, "expense.update", func(tx *gorm.DB) error {
		if _, err := openProcess(ctx, s.processRepo.WithTx(tx), processID); err != nil {
			return err
		}
		expenses := s.expenseRepo.WithTx(tx)
		var err error
		expense, err = expenses.GetByID(ctx, id)
		if err != nil || expense.ProcessID != processID {
			return lookup(orNotFound(err), ErrExpenseNotFound)
		}

		expense.Description = input.Description
		expense.Amount = domain.Money(input.Amount)
		expense.Date = input.Date.Time
		expense.Category = input.Category
		expense.Status = input.status()
		return expenses.Update(ctx, expense)
	})
	if err != nil {
		return nil, err
	}
	return expense, nil
}

// Delete soft deletes an expense of an open case
func (s *ExpenseService) Delete(ctx context.Context, processID, id uint) error {
	return inTx(ctx, s.db, "expense.delete", func(tx *gorm.DB) error {
		if _, err := openProcess(ctx, s.processRepo.WithTx(tx), processID); err != nil {
			return err
		}
		expenses := s.expenseRepo.WithTx(tx)
		expense, err := expenses.GetByID(ctx, id)
		if err != nil || expense.ProcessID != processID {
			return lookup(orNotFound(err), ErrExpenseNotFound)
		}
		return expenses.Delete(ctx, id)
	})
}
