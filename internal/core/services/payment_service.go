package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"lawdesk-api/internal/adapters/persistence/models"
	"lawdesk-api/internal/adapters/persistence/repositories"
	"lawdesk-api/internal/core/domain"
	"lawdesk-api/internal/pkg/pagination"
)

// Payment service errors
var (
	ErrPaymentNotFound = domain.NotFound("payment")
	ErrPlanNotFound    = domain.NotFound("installment plan")

	ErrSingleRowInstallments = domain.Validation("invalid payment",
		domain.FieldError{Field: "number_of_installments", Message: "only installment plans can change the number of installments"})
)

// PaymentService is the ledger: billing rows, installment plans and summaries
type PaymentService struct {
	db          *gorm.DB
	paymentRepo *repositories.PaymentRepository
	processRepo *repositories.ProcessRepository
	historyRepo *repositories.HistoryRepository
	authz       *AuthorizationService
	now         Clock
}

// NewPaymentService creates a new payment service
func NewPaymentService(
	db *gorm.DB,
	paymentRepo *repositories.PaymentRepository,
	processRepo *repositories.ProcessRepository,
	historyRepo *repositories.HistoryRepository,
	authz *AuthorizationService,
) *PaymentService {
	return &PaymentService{
		db:          db,
		paymentRepo: paymentRepo,
		processRepo: processRepo,
		historyRepo: historyRepo,
		authz:       authz,
		now:         time.Now,
	}
}

// WithClock replaces the time source
func (s *PaymentService) WithClock(now Clock) *PaymentService {
	s.now = now
	return s
}

// CreatePaymentInput is the payload for a new billing obligation
type CreatePaymentInput struct {
	PaymentType             string          `json:"payment_type" validate:"required,oneof=lump_sum installment professional_fee"`
	PaymentMethod           string          `json:"payment_method" validate:"max=50"`
	Nature                  string          `json:"nature" validate:"omitempty,oneof=income expense"`
	TotalAmount             decimal.Decimal `json:"total_amount"`
	DownPaymentAmount       decimal.Decimal `json:"down_payment_amount"`
	DownPaymentDate         *domain.Date    `json:"down_payment_date"`
	NumberOfInstallments    *int            `json:"number_of_installments"`
	InterestAmount          decimal.Decimal `json:"interest_amount"`
	FirstInstallmentDueDate *domain.Date    `json:"first_installment_due_date"`
	Status                  string          `json:"status" validate:"omitempty,oneof=pending paid failed refunded overdue"`
	PaidAt                  *domain.Date    `json:"paid_at"`
	SupplierContactID       *uint           `json:"supplier_contact_id"`
	Notes                   string          `json:"notes"`
}

func (in *CreatePaymentInput) plan() domain.PlanInput {
	p := domain.PlanInput{
		Type:            domain.PaymentType(in.PaymentType),
		TotalAmount:     in.TotalAmount,
		DownPayment:     in.DownPaymentAmount,
		DownPaymentDate: in.DownPaymentDate.Ptr(),
		Interest:        in.InterestAmount,
	}
	if due := in.FirstInstallmentDueDate.Ptr(); due != nil {
		p.FirstDueDate = *due
	}
	if in.NumberOfInstallments != nil {
		p.Installments = *in.NumberOfInstallments
	}
	return p
}

func (in *CreatePaymentInput) nature() string {
	if in.Nature == "" {
		return string(domain.NatureIncome)
	}
	return in.Nature
}

// UpdatePaymentInput changes one row. Changing number_of_installments on a
// plan row regenerates the whole plan.
type UpdatePaymentInput struct {
	TotalAmount          *decimal.Decimal `json:"total_amount"`
	Status               *string          `json:"status" validate:"omitempty,oneof=pending paid failed refunded overdue"`
	PaidAt               *domain.Date     `json:"paid_at"`
	PaymentMethod        *string          `json:"payment_method" validate:"omitempty,max=50"`
	DueDate              *domain.Date     `json:"due_date"`
	NumberOfInstallments *int             `json:"number_of_installments" validate:"omitempty,gte=1"`
	Notes                *string          `json:"notes"`
}

// PaymentListInput filters listings and summaries
type PaymentListInput struct {
	ProcessID *uint
	ContactID *uint
	From      *time.Time
	To        *time.Time
	Type      string
	Status    string
	Nature    string
}

// PaymentResult is what a ledger mutation produced
type PaymentResult struct {
	TransactionGroupID *uuid.UUID                `json:"transaction_group_id"`
	Regenerated        bool                      `json:"regenerated"`
	Payments           []*models.PaymentResponse `json:"payments"`
}

// PlanView is a plan with its rows
type PlanView struct {
	Plan     *models.InstallmentPlan   `json:"plan"`
	Payments []*models.PaymentResponse `json:"payments"`
}

func (s *PaymentService) responses(rows []*models.ProcessPayment) []*models.PaymentResponse {
	now := s.now()
	out := make([]*models.PaymentResponse, len(rows))
	for i, r := range rows {
		out[i] = r.ToResponse(now)
	}
	return out
}

// CreatePlan records a billing obligation on an open case. Installment
// plans get one plan record and one row per installment, all sharing a
// fresh transaction_group_id, written in a single transaction.
func (s *PaymentService) CreatePlan(ctx context.Context, actor Actor, processID uint, input *CreatePaymentInput) (*PaymentResult, error) {
	planInput := input.plan()
	schedule, err := domain.BuildSchedule(planInput)
	if err != nil {
		return nil, err
	}

	status := domain.PaymentPending
	if input.Status != "" {
		status = domain.PaymentStatus(input.Status)
	}

	var rows []*models.ProcessPayment
	var groupID *uuid.UUID

	err = inTx(ctx, s.db, "payment.create", func(tx *gorm.DB) error {
		if _, err := openProcess(ctx, s.processRepo.WithTx(tx), processID); err != nil {
			return err
		}
		payments := s.paymentRepo.WithTx(tx)

		if planInput.Type == domain.PaymentInstallment {
			plan := newPlan(processID, actor, input, planInput)
			if err := payments.CreatePlan(ctx, plan); err != nil {
				return err
			}
			groupID = &plan.ID
			rows = planRows(plan, schedule, input.Notes)
		} else {
			rows = []*models.ProcessPayment{singleRow(processID, input, planInput, schedule[0])}
		}

		for _, row := range rows {
			state := domain.PaymentState{Status: domain.PaymentStatus(row.Status)}
			if err := domain.ApplyStatus(&state, status, input.PaidAt.Ptr(), s.now()); err != nil {
				return err
			}
			row.Status = string(state.Status)
			row.PaidAt = state.PaidAt
		}

		if err := payments.CreateRows(ctx, rows); err != nil {
			return err
		}
		return record(ctx, s.historyRepo.WithTx(tx), actor, processID, domain.HistoryPaymentCreate,
			describeCreate(planInput, schedule))
	})
	if err != nil {
		return nil, err
	}

	return &PaymentResult{TransactionGroupID: groupID, Payments: s.responses(rows)}, nil
}

func newPlan(processID uint, actor Actor, input *CreatePaymentInput, in domain.PlanInput) *models.InstallmentPlan {
	n := in.Installments
	return &models.InstallmentPlan{
		ID:                      uuid.New(),
		ProcessID:               processID,
		PaymentType:             string(in.Type),
		PaymentMethod:           input.PaymentMethod,
		Nature:                  input.nature(),
		TotalAmount:             domain.Money(in.TotalAmount),
		DownPaymentAmount:       domain.Money(in.DownPayment),
		DownPaymentDate:         in.DownPaymentDate,
		NumberOfInstallments:    &n,
		InterestAmount:          domain.Money(in.Interest),
		FirstInstallmentDueDate: in.FirstDueDate,
		SupplierContactID:       input.SupplierContactID,
		CreatedBy:               actor.UserID,
	}
}

// planRows turns a schedule into rows of plan
func planRows(plan *models.InstallmentPlan, schedule []domain.ScheduledInstallment, notes string) []*models.ProcessPayment {
	groupID := plan.ID
	first := plan.FirstInstallmentDueDate
	rows := make([]*models.ProcessPayment, len(schedule))
	for i, inst := range schedule {
		due := inst.DueDate
		rows[i] = &models.ProcessPayment{
			ProcessID:               plan.ProcessID,
			TransactionGroupID:      &groupID,
			InstallmentIndex:        inst.Index,
			PaymentType:             plan.PaymentType,
			PaymentMethod:           plan.PaymentMethod,
			Nature:                  plan.Nature,
			Status:                  string(domain.PaymentPending),
			TotalAmount:             inst.Amount,
			DownPaymentAmount:       plan.DownPaymentAmount,
			DownPaymentDate:         plan.DownPaymentDate,
			NumberOfInstallments:    plan.NumberOfInstallments,
			ValueOfInstallment:      inst.Amount,
			InterestAmount:          plan.InterestAmount,
			FirstInstallmentDueDate: &first,
			DueDate:                 &due,
			SupplierContactID:       plan.SupplierContactID,
			Notes:                   notes,
		}
	}
	return rows
}

// singleRow builds the only row of a lump sum or a professional fee
func singleRow(processID uint, input *CreatePaymentInput, in domain.PlanInput, inst domain.ScheduledInstallment) *models.ProcessPayment {
	due := inst.DueDate
	row := &models.ProcessPayment{
		ProcessID:               processID,
		InstallmentIndex:        inst.Index,
		PaymentType:             string(in.Type),
		PaymentMethod:           input.PaymentMethod,
		Nature:                  input.nature(),
		Status:                  string(domain.PaymentPending),
		TotalAmount:             inst.Amount,
		DownPaymentAmount:       decimal.Zero,
		ValueOfInstallment:      inst.Amount,
		InterestAmount:          decimal.Zero,
		FirstInstallmentDueDate: &due,
		DueDate:                 &due,
		SupplierContactID:       input.SupplierContactID,
		Notes:                   input.Notes,
	}
	if in.Type == domain.PaymentLumpSum {
		one := 1
		row.NumberOfInstallments = &one
	}
	return row
}

func describeCreate(in domain.PlanInput, schedule []domain.ScheduledInstallment) string {
	switch in.Type {
	case domain.PaymentInstallment:
		return fmt.Sprintf("Pagamento parcelado criado: %d parcelas, total %s",
			in.Installments, domain.FormatBRL(in.TotalAmount.Add(in.Interest)))
	case domain.PaymentProfessionalFee:
		return fmt.Sprintf("Honorários lançados: %s", domain.FormatBRL(schedule[0].Amount))
	}
	return fmt.Sprintf("Pagamento à vista criado: %s", domain.FormatBRL(schedule[0].Amount))
}

// Get gets one row
func (s *PaymentService) Get(ctx context.Context, id uint) (*models.PaymentResponse, error) {
	row, err := s.paymentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, lookup(err, ErrPaymentNotFound)
	}
	return row.ToResponse(s.now()), nil
}

// ListByProcess lists every row of a case by due date
func (s *PaymentService) ListByProcess(ctx context.Context, processID uint) ([]*models.PaymentResponse, error) {
	if _, err := s.processRepo.GetByID(ctx, processID); err != nil {
		return nil, lookup(err, ErrProcessNotFound)
	}
	rows, err := s.paymentRepo.ListByProcess(ctx, processID)
	if err != nil {
		return nil, domain.Unexpected(err)
	}
	return s.responses(rows), nil
}

// ListPlan returns a plan and its rows in installment order
func (s *PaymentService) ListPlan(ctx context.Context, groupID uuid.UUID) (*PlanView, error) {
	plan, err := s.paymentRepo.GetPlan(ctx, groupID)
	if err != nil {
		return nil, lookup(err, ErrPlanNotFound)
	}
	rows, err := s.paymentRepo.ListByGroup(ctx, groupID)
	if err != nil {
		return nil, domain.Unexpected(err)
	}
	return &PlanView{Plan: plan, Payments: s.responses(rows)}, nil
}

// Update changes a row. When number_of_installments changes on a plan row
// every row of the plan is deleted and the plan is rebuilt under the same
// transaction_group_id; otherwise only that row changes.
func (s *PaymentService) Update(ctx context.Context, actor Actor, id uint, input *UpdatePaymentInput) (*PaymentResult, error) {
	result := &PaymentResult{}

	err := inTx(ctx, s.db, "payment.update", func(tx *gorm.DB) error {
		payments := s.paymentRepo.WithTx(tx)
		row, err := payments.GetByID(ctx, id)
		if err != nil {
			return lookup(err, ErrPaymentNotFound)
		}
		if _, err := openProcess(ctx, s.processRepo.WithTx(tx), row.ProcessID); err != nil {
			return err
		}

		if row.IsGrouped() && input.NumberOfInstallments != nil &&
			(row.NumberOfInstallments == nil || *row.NumberOfInstallments != *input.NumberOfInstallments) {
			rows, err := s.regenerate(ctx, tx, actor, row, input)
			if err != nil {
				return err
			}
			result.TransactionGroupID = row.TransactionGroupID
			result.Regenerated = true
			result.Payments = s.responses(rows)
			return nil
		}

		if err := s.applyRowChanges(row, input); err != nil {
			return err
		}
		if err := payments.Update(ctx, row); err != nil {
			return err
		}
		result.TransactionGroupID = row.TransactionGroupID
		result.Payments = s.responses([]*models.ProcessPayment{row})

		return record(ctx, s.historyRepo.WithTx(tx), actor, row.ProcessID, domain.HistoryPaymentUpdate,
			fmt.Sprintf("Pagamento #%d atualizado: %s, %s", row.ID,
				domain.PaymentStatus(row.Status).Label(), domain.FormatBRL(row.TotalAmount)))
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *PaymentService) applyRowChanges(row *models.ProcessPayment, input *UpdatePaymentInput) error {
	if input.TotalAmount != nil {
		amount := domain.Money(*input.TotalAmount)
		if !amount.IsPositive() {
			return domain.Validation("invalid payment",
				domain.FieldError{Field: "total_amount", Message: "must be greater than 0"})
		}
		row.TotalAmount = amount
		row.ValueOfInstallment = amount
	}
	if input.PaymentMethod != nil {
		row.PaymentMethod = *input.PaymentMethod
	}
	if input.Notes != nil {
		row.Notes = *input.Notes
	}
	if due := input.DueDate.Ptr(); due != nil {
		row.DueDate = due
	}
	if input.NumberOfInstallments != nil && !row.IsGrouped() {
		// a single row never becomes a plan; lump sums stay at 1, fees carry no count
		if row.PaymentType != string(domain.PaymentLumpSum) || *input.NumberOfInstallments != 1 {
			return ErrSingleRowInstallments
		}
	}

	if input.Status != nil || input.PaidAt != nil {
		next := domain.PaymentStatus(row.Status)
		if input.Status != nil {
			next = domain.PaymentStatus(*input.Status)
		}
		state := domain.PaymentState{Status: domain.PaymentStatus(row.Status), PaidAt: row.PaidAt}
		if err := domain.ApplyStatus(&state, next, input.PaidAt.Ptr(), s.now()); err != nil {
			return err
		}
		row.Status = string(state.Status)
		row.PaidAt = state.PaidAt
	}
	return nil
}

// regenerate rebuilds the plan of row with a new installment count
func (s *PaymentService) regenerate(ctx context.Context, tx *gorm.DB, actor Actor, row *models.ProcessPayment, input *UpdatePaymentInput) ([]*models.ProcessPayment, error) {
	payments := s.paymentRepo.WithTx(tx)

	plan, err := payments.GetPlan(ctx, *row.TransactionGroupID)
	if err != nil {
		return nil, lookup(err, ErrPlanNotFound)
	}

	n := *input.NumberOfInstallments
	plan.NumberOfInstallments = &n
	if input.TotalAmount != nil {
		plan.TotalAmount = domain.Money(*input.TotalAmount)
	}
	if input.PaymentMethod != nil {
		plan.PaymentMethod = *input.PaymentMethod
	}

	schedule, err := domain.BuildSchedule(plan.Input())
	if err != nil {
		return nil, err
	}

	old, err := payments.ListByGroup(ctx, plan.ID)
	if err != nil {
		return nil, err
	}
	for _, r := range old {
		if err := payments.DeleteRow(ctx, r.ID); err != nil {
			return nil, err
		}
	}

	notes := row.Notes
	if input.Notes != nil {
		notes = *input.Notes
	}
	rows := planRows(plan, schedule, notes)
	if err := payments.CreateRows(ctx, rows); err != nil {
		return nil, err
	}
	if err := payments.UpdatePlan(ctx, plan); err != nil {
		return nil, err
	}

	err = record(ctx, s.historyRepo.WithTx(tx), actor, plan.ProcessID, domain.HistoryPlanRegenerate,
		fmt.Sprintf("Plano de pagamento refeito: %d parcelas (antes %d linhas)", n, len(old)))
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// Delete removes a row. A plan row takes every row of its plan and the
// plan itself with it, all or nothing.
func (s *PaymentService) Delete(ctx context.Context, actor Actor, id uint) error {
	return inTx(ctx, s.db, "payment.delete", func(tx *gorm.DB) error {
		payments := s.paymentRepo.WithTx(tx)
		row, err := payments.GetByID(ctx, id)
		if err != nil {
			return lookup(err, ErrPaymentNotFound)
		}
		if _, err := openProcess(ctx, s.processRepo.WithTx(tx), row.ProcessID); err != nil {
			return err
		}

		desc := fmt.Sprintf("Pagamento #%d excluído", row.ID)
		if row.IsGrouped() {
			rows, err := payments.ListByGroup(ctx, *row.TransactionGroupID)
			if err != nil {
				return err
			}
			for _, r := range rows {
				if err := payments.DeleteRow(ctx, r.ID); err != nil {
					return err
				}
			}
			if err := payments.DeletePlan(ctx, *row.TransactionGroupID); err != nil {
				return err
			}
			desc = fmt.Sprintf("Plano de pagamento excluído: %d parcelas", len(rows))
		} else if err := payments.DeleteRow(ctx, row.ID); err != nil {
			return err
		}

		return record(ctx, s.historyRepo.WithTx(tx), actor, row.ProcessID, domain.HistoryPaymentDelete, desc)
	})
}

func (s *PaymentService) filter(ctx context.Context, actor Actor, input PaymentListInput) (repositories.PaymentFilter, error) {
	var fields []domain.FieldError
	if input.Type != "" && !domain.PaymentType(input.Type).Valid() {
		fields = append(fields, domain.FieldError{Field: "payment_type", Message: "unknown payment type"})
	}
	if input.Status != "" && !domain.PaymentStatus(input.Status).Valid() {
		fields = append(fields, domain.FieldError{Field: "status", Message: "unknown status"})
	}
	if input.Nature != "" && !domain.Nature(input.Nature).Valid() {
		fields = append(fields, domain.FieldError{Field: "nature", Message: "unknown nature"})
	}
	if input.From != nil && input.To != nil && input.To.Before(*input.From) {
		fields = append(fields, domain.FieldError{Field: "to", Message: "must not be before from"})
	}
	if len(fields) > 0 {
		return repositories.PaymentFilter{}, domain.Validation("invalid filter", fields...)
	}

	scope, err := s.authz.ResponsibleScope(ctx, actor.UserID)
	if err != nil {
		return repositories.PaymentFilter{}, err
	}

	return repositories.PaymentFilter{
		ProcessID:     input.ProcessID,
		ContactID:     input.ContactID,
		ResponsibleID: scope,
		From:          input.From,
		To:            input.To,
		Type:          input.Type,
		Status:        input.Status,
		Nature:        input.Nature,
		Today:         s.now(),
	}, nil
}

// List lists rows matching the filter
func (s *PaymentService) List(ctx context.Context, actor Actor, input PaymentListInput, page *pagination.Params) ([]*models.PaymentResponse, int64, error) {
	f, err := s.filter(ctx, actor, input)
	if err != nil {
		return nil, 0, err
	}
	rows, total, err := s.paymentRepo.List(ctx, f, page.Offset, page.Limit)
	if err != nil {
		return nil, 0, domain.Unexpected(err)
	}
	return s.responses(rows), total, nil
}

// Summary aggregates exactly the rows List would return for the same filter
func (s *PaymentService) Summary(ctx context.Context, actor Actor, input PaymentListInput) (*domain.PaymentSummary, error) {
	f, err := s.filter(ctx, actor, input)
	if err != nil {
		return nil, err
	}
	rows, err := s.paymentRepo.SummaryRows(ctx, f)
	if err != nil {
		return nil, domain.Unexpected(err)
	}
	summary := domain.Summarize(rows)
	return &summary, nil
}

// MarkOverdue stores overdue on pending rows whose due date is before
// the day of now.
func (s *PaymentService) MarkOverdue(ctx context.Context, now time.Time) (int64, error) {
	y, m, d := now.Date()
	n, err := s.paymentRepo.MarkOverdue(ctx, time.Date(y, m, d, 0, 0, 0, 0, now.Location()))
	if err != nil {
		return 0, domain.Unexpected(err)
	}
	if n > 0 {
		slog.InfoContext(ctx, "payments marked overdue", "count", n)
	}
	return n, nil
}

// Schedule describes the income obligations of a case in pt-BR, one
// paragraph per plan or single payment.
func (s *PaymentService) Schedule(ctx context.Context, processID uint) (string, error) {
	if _, err := s.processRepo.GetByID(ctx, processID); err != nil {
		return "", lookup(err, ErrProcessNotFound)
	}
	rows, err := s.paymentRepo.ListByProcess(ctx, processID)
	if err != nil {
		return "", domain.Unexpected(err)
	}

	type group struct {
		typ  domain.PaymentType
		rows []domain.ScheduledInstallment
	}
	var order []string
	groups := map[string]*group{}

	for _, r := range rows {
		if r.Nature != string(domain.NatureIncome) || r.DueDate == nil {
			continue
		}
		key := fmt.Sprintf("row-%d", r.ID)
		if r.IsGrouped() {
			key = r.TransactionGroupID.String()
		}
		g, ok := groups[key]
		if !ok {
			g = &group{typ: domain.PaymentType(r.PaymentType)}
			groups[key] = g
			order = append(order, key)
		}
		g.rows = append(g.rows, domain.ScheduledInstallment{
			Index:         r.InstallmentIndex,
			Amount:        r.TotalAmount,
			DueDate:       *r.DueDate,
			IsDownPayment: r.IsGrouped() && r.InstallmentIndex == 0,
		})
	}

	parts := make([]string, 0, len(order))
	for _, key := range order {
		g := groups[key]
		total := decimal.Zero
		for _, r := range g.rows {
			total = total.Add(r.Amount)
		}
		parts = append(parts, domain.DescribeSchedule(g.typ, total, g.rows))
	}
	return strings.Join(parts, "\n"), nil
}
