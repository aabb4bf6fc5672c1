package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"lawdesk-api/internal/adapters/persistence/models"
	"lawdesk-api/internal/core/domain"
)

// PaymentFilter narrows payment listings and summaries. Both go through
// Scope so a summary always covers exactly the rows the listing shows.
type PaymentFilter struct {
	ProcessID     *uint
	ContactID     *uint
	ResponsibleID *uint
	From          *time.Time
	To            *time.Time
	Type          string
	Status        string
	Nature        string
	// Today makes pending rows due before it match "overdue" instead of
	// "pending". Zero means stored status only.
	Today time.Time
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// Scope applies the filter to a query on process_payments
func (f PaymentFilter) Scope(db *gorm.DB) *gorm.DB {
	if f.ProcessID != nil {
		db = db.Where("process_payments.process_id = ?", *f.ProcessID)
	}
	if f.ContactID != nil || f.ResponsibleID != nil {
		sub := db.Session(&gorm.Session{NewDB: true}).Model(&models.Process{}).Select("id")
		if f.ContactID != nil {
			sub = sub.Where("contact_id = ?", *f.ContactID)
		}
		if f.ResponsibleID != nil {
			sub = sub.Where("responsible_id = ?", *f.ResponsibleID)
		}
		db = db.Where("process_payments.process_id IN (?)", sub)
	}
	if f.From != nil {
		db = db.Where("process_payments.due_date >= ?", startOfDay(*f.From))
	}
	if f.To != nil {
		db = db.Where("process_payments.due_date < ?", startOfDay(*f.To).AddDate(0, 0, 1))
	}
	if f.Type != "" {
		db = db.Where("process_payments.payment_type = ?", f.Type)
	}
	if f.Nature != "" {
		db = db.Where("process_payments.nature = ?", f.Nature)
	}

	if f.Status != "" {
		today := startOfDay(f.Today)
		switch {
		case f.Today.IsZero():
			db = db.Where("process_payments.status = ?", f.Status)
		case f.Status == string(domain.PaymentOverdue):
			db = db.Where("(process_payments.status = ? OR (process_payments.status = ? AND process_payments.due_date < ?))",
				string(domain.PaymentOverdue), string(domain.PaymentPending), today)
		case f.Status == string(domain.PaymentPending):
			db = db.Where("process_payments.status = ? AND (process_payments.due_date IS NULL OR process_payments.due_date >= ?)",
				string(domain.PaymentPending), today)
		default:
			db = db.Where("process_payments.status = ?", f.Status)
		}
	}
	return db
}

// PaymentRepository handles ledger data access
type PaymentRepository struct {
	db *gorm.DB
}

// NewPaymentRepository creates a new payment repository
func NewPaymentRepository(db *gorm.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

// WithTx returns a repository bound to tx
func (r *PaymentRepository) WithTx(tx *gorm.DB) *PaymentRepository {
	return &PaymentRepository{db: tx}
}

func (r *PaymentRepository) CreatePlan(ctx context.Context, plan *models.InstallmentPlan) error {
	return r.db.WithContext(ctx).Create(plan).Error
}

func (r *PaymentRepository) UpdatePlan(ctx context.Context, plan *models.InstallmentPlan) error {
	return r.db.WithContext(ctx).Save(plan).Error
}

func (r *PaymentRepository) GetPlan(ctx context.Context, id uuid.UUID) (*models.InstallmentPlan, error) {
	var plan models.InstallmentPlan
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&plan).Error; err != nil {
		return nil, err
	}
	return &plan, nil
}

// DeletePlan soft deletes the plan record only
func (r *PaymentRepository) DeletePlan(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.InstallmentPlan{}).Error
}

// CreateRows inserts payment rows in order
func (r *PaymentRepository) CreateRows(ctx context.Context, rows []*models.ProcessPayment) error {
	if len(rows) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(rows).Error
}

func (r *PaymentRepository) GetByID(ctx context.Context, id uint) (*models.ProcessPayment, error) {
	var payment models.ProcessPayment
	if err := r.db.WithContext(ctx).First(&payment, id).Error; err != nil {
		return nil, err
	}
	return &payment, nil
}

// ListByGroup lists the rows of a plan in installment order
func (r *PaymentRepository) ListByGroup(ctx context.Context, groupID uuid.UUID) ([]*models.ProcessPayment, error) {
	var rows []*models.ProcessPayment
	err := r.db.WithContext(ctx).
		Where("transaction_group_id = ?", groupID).
		Order("installment_index ASC, id ASC").
		Find(&rows).Error
	return rows, err
}

// ListByProcess lists every row of a case by due date
func (r *PaymentRepository) ListByProcess(ctx context.Context, processID uint) ([]*models.ProcessPayment, error) {
	var rows []*models.ProcessPayment
	err := r.db.WithContext(ctx).
		Where("process_id = ?", processID).
		Order("due_date ASC, installment_index ASC, id ASC").
		Find(&rows).Error
	return rows, err
}

// List lists rows matching filter with pagination
func (r *PaymentRepository) List(ctx context.Context, filter PaymentFilter, offset, limit int) ([]*models.ProcessPayment, int64, error) {
	var rows []*models.ProcessPayment
	var total int64

	query := r.db.WithContext(ctx).Model(&models.ProcessPayment{}).Scopes(filter.Scope)
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.
		Order("process_payments.due_date ASC, process_payments.installment_index ASC, process_payments.id ASC").
		Offset(offset).
		Limit(limit).
		Find(&rows).Error
	return rows, total, err
}

type summaryRow struct {
	TotalAmount decimal.Decimal
	PaymentType string
	Status      string
	Nature      string
	DueDate     *time.Time
}

// SummaryRows loads the projection Summarize folds over. Amounts are
// summed in Go with decimals so the result does not depend on the
// database's numeric type.
func (r *PaymentRepository) SummaryRows(ctx context.Context, filter PaymentFilter) ([]domain.SummaryRow, error) {
	var rows []summaryRow
	err := r.db.WithContext(ctx).
		Model(&models.ProcessPayment{}).
		Scopes(filter.Scope).
		Select("process_payments.total_amount, process_payments.payment_type, process_payments.status, process_payments.nature, process_payments.due_date").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make([]domain.SummaryRow, len(rows))
	for i, row := range rows {
		status := domain.PaymentStatus(row.Status)
		if !filter.Today.IsZero() {
			status = domain.EffectiveStatus(status, row.DueDate, filter.Today)
		}
		out[i] = domain.SummaryRow{
			TotalAmount: row.TotalAmount,
			PaymentType: domain.PaymentType(row.PaymentType),
			Status:      status,
			Nature:      domain.Nature(row.Nature),
		}
	}
	return out, nil
}

// Update saves row columns
func (r *PaymentRepository) Update(ctx context.Context, payment *models.ProcessPayment) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(payment).Error
}

// DeleteRow soft deletes a single row
func (r *PaymentRepository) DeleteRow(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.ProcessPayment{}, id).Error
}

// MarkOverdue moves pending rows due before cutoff to overdue
func (r *PaymentRepository) MarkOverdue(ctx context.Context, cutoff time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.ProcessPayment{}).
		Where("status = ? AND due_date < ?", string(domain.PaymentPending), cutoff).
		Update("status", string(domain.PaymentOverdue))
	return res.RowsAffected, res.Error
}

// DeleteByProcess soft deletes every row and plan of a case
func (r *PaymentRepository) DeleteByProcess(ctx context.Context, processID uint) error {
	if err := r.db.WithContext(ctx).Where("process_id = ?", processID).Delete(&models.ProcessPayment{}).Error; err != nil {
		return err
	}
	return r.db.WithContext(ctx).Where("process_id = ?", processID).Delete(&models.InstallmentPlan{}).Error
}
