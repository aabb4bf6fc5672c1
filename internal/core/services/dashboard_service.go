package services

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"lawdesk-api/internal/adapters/persistence/repositories"
	"lawdesk-api/internal/core/domain"
)

// DashboardService handles dashboard operations
type DashboardService struct {
	db          *gorm.DB
	processRepo *repositories.ProcessRepository
	taskRepo    *repositories.TaskRepository
	expenseRepo *repositories.ExpenseRepository
	payments    *PaymentService
	authz       *AuthorizationService
	now         Clock
}

// NewDashboardService creates a new dashboard service
func NewDashboardService(
	db *gorm.DB,
	processRepo *repositories.ProcessRepository,
	taskRepo *repositories.TaskRepository,
	expenseRepo *repositories.ExpenseRepository,
	payments *PaymentService,
	authz *AuthorizationService,
) *DashboardService {
	return &DashboardService{
		db:          db,
		processRepo: processRepo,
		taskRepo:    taskRepo,
		expenseRepo: expenseRepo,
		payments:    payments,
		authz:       authz,
		now:         time.Now,
	}
}

// WithClock replaces the time source
func (s *DashboardService) WithClock(now Clock) *DashboardService {
	s.now = now
	return s
}

// DashboardData is the landing page of a signed-in user
type DashboardData struct {
	// Case Statistics
	ActiveProcesses   int64 `json:"active_processes"`
	ArchivedProcesses int64 `json:"archived_processes"`
	OpenTasks         int64 `json:"open_tasks"`

	// Monthly Ledger
	Month         string                `json:"month"`
	MonthSummary  domain.PaymentSummary `json:"month_summary"`
	MonthExpenses decimal.Decimal       `json:"month_expenses"`

	// Upcoming
	UpcomingPayments []UpcomingPayment `json:"upcoming_payments"`

	// Recent Activity
	RecentHistory []ActivityInfo `json:"recent_history"`
}

// UpcomingPayment is a pending income row due soon
type UpcomingPayment struct {
	ID           uint            `json:"id"`
	ProcessID    uint            `json:"process_id"`
	ProcessTitle string          `json:"process_title"`
	Amount       decimal.Decimal `json:"amount"`
	DueDate      time.Time       `json:"due_date"`
}

// ActivityInfo is one recent history entry
type ActivityInfo struct {
	ID           uint      `json:"id"`
	ProcessID    uint      `json:"process_id"`
	ProcessTitle string    `json:"process_title"`
	Action       string    `json:"action"`
	Description  string    `json:"description"`
	PerformedBy  string    `json:"performed_by"`
	CreatedAt    time.Time `json:"created_at"`
}

// Get builds the dashboard as seen by actor. Users who are not elevated
// only see the cases they are responsible for.
func (s *DashboardService) Get(ctx context.Context, actor Actor) (*DashboardData, error) {
	scope, err := s.authz.ResponsibleScope(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	data := &DashboardData{}

	// Case counts
	active, archived := false, true
	if data.ActiveProcesses, err = s.processRepo.Count(ctx, repositories.ProcessFilter{ResponsibleID: scope, Archived: &active}); err != nil {
		return nil, domain.Unexpected(err)
	}
	if data.ArchivedProcesses, err = s.processRepo.Count(ctx, repositories.ProcessFilter{ResponsibleID: scope, Archived: &archived}); err != nil {
		return nil, domain.Unexpected(err)
	}
	if data.OpenTasks, err = s.taskRepo.CountOpen(ctx, scope); err != nil {
		return nil, domain.Unexpected(err)
	}

	// This month
	startOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	endOfMonth := startOfMonth.AddDate(0, 1, -1)
	data.Month = startOfMonth.Format("2006-01")

	summary, err := s.payments.Summary(ctx, actor, PaymentListInput{From: &startOfMonth, To: &endOfMonth})
	if err != nil {
		return nil, err
	}
	data.MonthSummary = *summary

	if data.MonthExpenses, err = s.expenseRepo.Total(ctx, startOfMonth, startOfMonth.AddDate(0, 1, 0)); err != nil {
		return nil, domain.Unexpected(err)
	}

	// Upcoming payments, next 7 days
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	var upcoming []struct {
		ID           uint
		ProcessID    uint
		ProcessTitle string
		TotalAmount  decimal.Decimal
		DueDate      time.Time
	}
	q := s.db.WithContext(ctx).Table("process_payments").
		Select("process_payments.id, process_payments.process_id, processes.title as process_title, process_payments.total_amount, process_payments.due_date").
		Joins("JOIN processes ON processes.id = process_payments.process_id AND processes.deleted_at IS NULL").
		Where("process_payments.deleted_at IS NULL AND process_payments.status = ? AND process_payments.nature = ?",
			string(domain.PaymentPending), string(domain.NatureIncome)).
		Where("process_payments.due_date >= ? AND process_payments.due_date < ?", today, today.AddDate(0, 0, 8))
	if scope != nil {
		q = q.Where("processes.responsible_id = ?", *scope)
	}
	if err := q.Order("process_payments.due_date ASC").Limit(10).Scan(&upcoming).Error; err != nil {
		return nil, domain.Unexpected(err)
	}

	data.UpcomingPayments = make([]UpcomingPayment, len(upcoming))
	for i, p := range upcoming {
		data.UpcomingPayments[i] = UpcomingPayment{
			ID:           p.ID,
			ProcessID:    p.ProcessID,
			ProcessTitle: p.ProcessTitle,
			Amount:       p.TotalAmount,
			DueDate:      p.DueDate,
		}
	}

	// Recent activity
	var recent []struct {
		ID           uint
		ProcessID    uint
		ProcessTitle string
		Action       string
		Description  string
		PerformedBy  string
		CreatedAt    time.Time
	}
	q = s.db.WithContext(ctx).Table("process_histories").
		Select("process_histories.id, process_histories.process_id, processes.title as process_title, process_histories.action, process_histories.description, users.name as performed_by, process_histories.created_at").
		Joins("JOIN processes ON processes.id = process_histories.process_id AND processes.deleted_at IS NULL").
		Joins("LEFT JOIN users ON users.id = process_histories.performed_by")
	if scope != nil {
		q = q.Where("processes.responsible_id = ?", *scope)
	}
	if err := q.Order("process_histories.created_at DESC, process_histories.id DESC").Limit(10).Scan(&recent).Error; err != nil {
		return nil, domain.Unexpected(err)
	}

	data.RecentHistory = make([]ActivityInfo, len(recent))
	for i, h := range recent {
		data.RecentHistory[i] = ActivityInfo{
			ID:           h.ID,
			ProcessID:    h.ProcessID,
			ProcessTitle: h.ProcessTitle,
			Action:       h.Action,
			Description:  h.Description,
			PerformedBy:  h.PerformedBy,
			CreatedAt:    h.CreatedAt,
		}
	}

	return data, nil
}
