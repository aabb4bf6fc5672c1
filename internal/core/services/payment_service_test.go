package services

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"lawdesk-api/internal/adapters/persistence/models"
	"lawdesk-api/internal/core/domain"
	"lawdesk-api/internal/pkg/pagination"
	"lawdesk-api/internal/testutil"
)

func day(y int, m time.Month, d int) *domain.Date {
	return &domain.Date{Time: time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

func installments(total string, n int, first *domain.Date) *CreatePaymentInput {
	return &CreatePaymentInput{
		PaymentType:             string(domain.PaymentInstallment),
		PaymentMethod:           "pix",
		TotalAmount:             decimal.RequireFromString(total),
		NumberOfInstallments:    &n,
		FirstInstallmentDueDate: first,
	}
}

func TestPaymentService_CreatePlan_Installments(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	process := testutil.Process(t, e.db, "Ação de cobrança", e.admin.ID)

	res, err := e.payments.CreatePlan(ctx, e.actor(e.admin), process.ID, installments("1200", 3, day(2026, time.April, 10)))
	require.NoError(t, err)
	require.NotNil(t, res.TransactionGroupID)
	require.Len(t, res.Payments, 3)

	for i, p := range res.Payments {
		assert.Equal(t, *res.TransactionGroupID, *p.TransactionGroupID)
		assert.Equal(t, i+1, p.InstallmentIndex)
		assert.Equal(t, "400.00", p.TotalAmount.StringFixed(2))
		assert.Equal(t, string(domain.PaymentPending), p.Status)
		assert.Nil(t, p.PaidAt)
	}

	plan, err := e.payments.ListPlan(ctx, *res.TransactionGroupID)
	require.NoError(t, err)
	assert.Equal(t, process.ID, plan.Plan.ProcessID)
	assert.Equal(t, 3, *plan.Plan.NumberOfInstallments)
	assert.Len(t, plan.Payments, 3)

	assert.Equal(t, int64(1), countRows(t, e.db, &models.HistoryEntry{},
		"process_id = ? AND action = ?", process.ID, domain.HistoryPaymentCreate))
}

func TestPaymentService_CreatePlan_SingleRowTypes(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	process := testutil.Process(t, e.db, "Consultoria", e.admin.ID)

	lump, err := e.payments.CreatePlan(ctx, e.actor(e.admin), process.ID, &CreatePaymentInput{
		PaymentType:             string(domain.PaymentLumpSum),
		TotalAmount:             decimal.RequireFromString("850.5"),
		FirstInstallmentDueDate: day(2026, time.May, 2),
		Status:                  string(domain.PaymentPaid),
	})
	require.NoError(t, err)
	assert.Nil(t, lump.TransactionGroupID)
	require.Len(t, lump.Payments, 1)

	row := lump.Payments[0]
	assert.Equal(t, "850.50", row.TotalAmount.StringFixed(2))
	require.NotNil(t, row.NumberOfInstallments)
	assert.Equal(t, 1, *row.NumberOfInstallments)
	require.NotNil(t, row.PaidAt)
	assert.True(t, row.PaidAt.Equal(fixedNow))

	fee, err := e.payments.CreatePlan(ctx, e.actor(e.admin), process.ID, &CreatePaymentInput{
		PaymentType:             string(domain.PaymentProfessionalFee),
		TotalAmount:             decimal.RequireFromString("300"),
		FirstInstallmentDueDate: day(2026, time.May, 5),
	})
	require.NoError(t, err)
	assert.Nil(t, fee.TransactionGroupID)
	assert.Nil(t, fee.Payments[0].NumberOfInstallments)

	assert.Equal(t, int64(0), countRows(t, e.db, &models.InstallmentPlan{}, "process_id = ?", process.ID))

	t.Run("single rows cannot be split", func(t *testing.T) {
		three, one := 3, 1
		_, err := e.payments.Update(ctx, e.actor(e.admin), row.ID, &UpdatePaymentInput{NumberOfInstallments: &three})
		assert.ErrorIs(t, err, ErrSingleRowInstallments)

		_, err = e.payments.Update(ctx, e.actor(e.admin), fee.Payments[0].ID, &UpdatePaymentInput{NumberOfInstallments: &one})
		assert.ErrorIs(t, err, domain.ErrValidation)

		// restating the count a lump sum already has is accepted
		_, err = e.payments.Update(ctx, e.actor(e.admin), row.ID, &UpdatePaymentInput{NumberOfInstallments: &one})
		require.NoError(t, err)

		got, err := e.payments.Get(ctx, row.ID)
		require.NoError(t, err)
		require.NotNil(t, got.NumberOfInstallments)
		assert.Equal(t, 1, *got.NumberOfInstallments)
		assert.Equal(t, int64(2), countRows(t, e.db, &models.ProcessPayment{}, "process_id = ?", process.ID))
	})
}

func TestPaymentService_AmountRoundTrip(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	process := testutil.Process(t, e.db, "Revisional", e.admin.ID)

	res, err := e.payments.CreatePlan(ctx, e.actor(e.admin), process.ID, &CreatePaymentInput{
		PaymentType:             string(domain.PaymentLumpSum),
		TotalAmount:             decimal.RequireFromString("399.995"),
		FirstInstallmentDueDate: day(2026, time.June, 1),
	})
	require.NoError(t, err)
	require.Len(t, res.Payments, 1)

	got, err := e.payments.Get(ctx, res.Payments[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "400.00", got.TotalAmount.StringFixed(2))
	assert.True(t, got.TotalAmount.Equal(res.Payments[0].TotalAmount))

	body, err := json.Marshal(got)
	require.NoError(t, err)
	assert.Contains(t, string(body), `"total_amount":"400.00"`)
	assert.Contains(t, string(body), `"interest_amount":"0.00"`)
}

func TestPaymentService_CreatePlan_Rejected(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	process := testutil.Process(t, e.db, "Inventário", e.admin.ID)

	t.Run("invalid input", func(t *testing.T) {
		_, err := e.payments.CreatePlan(ctx, e.actor(e.admin), process.ID, installments("0", 3, day(2026, time.April, 1)))
		assert.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("unknown process", func(t *testing.T) {
		_, err := e.payments.CreatePlan(ctx, e.actor(e.admin), 9999, installments("100", 1, day(2026, time.April, 1)))
		assert.ErrorIs(t, err, ErrProcessNotFound)
	})

	t.Run("archived process", func(t *testing.T) {
		_, err := e.processes.Archive(ctx, e.actor(e.admin), process.ID)
		require.NoError(t, err)

		_, err = e.payments.CreatePlan(ctx, e.actor(e.admin), process.ID, installments("100", 2, day(2026, time.April, 1)))
		assert.ErrorIs(t, err, ErrProcessArchived)
	})

	assert.Equal(t, int64(0), countRows(t, e.db, &models.ProcessPayment{}, "process_id = ?", process.ID))
	assert.Equal(t, int64(0), countRows(t, e.db, &models.InstallmentPlan{}, "process_id = ?", process.ID))
}

func TestPaymentService_Update_StatusSideEffects(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	process := testutil.Process(t, e.db, "Trabalhista", e.admin.ID)

	res, err := e.payments.CreatePlan(ctx, e.actor(e.admin), process.ID, installments("900", 3, day(2026, time.April, 1)))
	require.NoError(t, err)
	id := res.Payments[1].ID

	paid := string(domain.PaymentPaid)
	out, err := e.payments.Update(ctx, e.actor(e.admin), id, &UpdatePaymentInput{Status: &paid})
	require.NoError(t, err)
	assert.False(t, out.Regenerated)
	require.NotNil(t, out.Payments[0].PaidAt)
	assert.True(t, out.Payments[0].PaidAt.Equal(fixedNow))

	refunded := string(domain.PaymentRefunded)
	_, err = e.payments.Update(ctx, e.actor(e.admin), id, &UpdatePaymentInput{Status: &refunded})
	require.NoError(t, err)

	got, err := e.payments.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, refunded, got.Status)
	assert.Nil(t, got.PaidAt)

	// the other rows of the plan are untouched
	siblings, err := e.payments.ListPlan(ctx, *res.TransactionGroupID)
	require.NoError(t, err)
	assert.Len(t, siblings.Payments, 3)
	assert.Equal(t, string(domain.PaymentPending), siblings.Payments[0].Status)
}

func TestPaymentService_Update_RegeneratesPlan(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	process := testutil.Process(t, e.db, "Revisional", e.admin.ID)

	res, err := e.payments.CreatePlan(ctx, e.actor(e.admin), process.ID, installments("1200", 3, day(2026, time.April, 10)))
	require.NoError(t, err)
	groupID := *res.TransactionGroupID

	four := 4
	out, err := e.payments.Update(ctx, e.actor(e.admin), res.Payments[0].ID, &UpdatePaymentInput{NumberOfInstallments: &four})
	require.NoError(t, err)
	assert.True(t, out.Regenerated)
	require.Len(t, out.Payments, 4)

	for _, p := range out.Payments {
		assert.Equal(t, groupID, *p.TransactionGroupID)
		assert.Equal(t, "300.00", p.TotalAmount.StringFixed(2))
	}

	assert.Equal(t, int64(4), countRows(t, e.db, &models.ProcessPayment{}, "transaction_group_id = ?", groupID))

	var deleted int64
	require.NoError(t, e.db.Unscoped().Model(&models.ProcessPayment{}).
		Where("transaction_group_id = ? AND deleted_at IS NOT NULL", groupID).Count(&deleted).Error)
	assert.Equal(t, int64(3), deleted)

	plan, err := e.payments.ListPlan(ctx, groupID)
	require.NoError(t, err)
	assert.Equal(t, 4, *plan.Plan.NumberOfInstallments)

	assert.Equal(t, int64(1), countRows(t, e.db, &models.HistoryEntry{},
		"process_id = ? AND action = ?", process.ID, domain.HistoryPlanRegenerate))
}

func TestPaymentService_Delete_Grouped(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	process := testutil.Process(t, e.db, "Divórcio", e.admin.ID)

	res, err := e.payments.CreatePlan(ctx, e.actor(e.admin), process.ID, installments("600", 3, day(2026, time.April, 10)))
	require.NoError(t, err)

	require.NoError(t, e.payments.Delete(ctx, e.actor(e.admin), res.Payments[1].ID))

	assert.Equal(t, int64(0), countRows(t, e.db, &models.ProcessPayment{}, "process_id = ?", process.ID))
	_, err = e.payments.ListPlan(ctx, *res.TransactionGroupID)
	assert.ErrorIs(t, err, ErrPlanNotFound)

	assert.Equal(t, int64(1), countRows(t, e.db, &models.HistoryEntry{},
		"process_id = ? AND action = ?", process.ID, domain.HistoryPaymentDelete))
}

func TestPaymentService_Delete_Grouped_RollsBackOnFailure(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	process := testutil.Process(t, e.db, "Usucapião", e.admin.ID)

	res, err := e.payments.CreatePlan(ctx, e.actor(e.admin), process.ID, installments("600", 3, day(2026, time.April, 10)))
	require.NoError(t, err)

	calls := 0
	err = e.db.Callback().Delete().Before("gorm:delete").Register("test:fail_second_row", func(tx *gorm.DB) {
		if tx.Statement.Schema == nil || tx.Statement.Schema.Table != "process_payments" {
			return
		}
		calls++
		if calls == 2 {
			tx.AddError(errors.New("disk I/O error"))
		}
	})
	require.NoError(t, err)

	err = e.payments.Delete(ctx, e.actor(e.admin), res.Payments[0].ID)
	assert.ErrorIs(t, err, domain.ErrUnexpected)

	assert.Equal(t, int64(3), countRows(t, e.db, &models.ProcessPayment{}, "process_id = ?", process.ID))
	_, err = e.payments.ListPlan(ctx, *res.TransactionGroupID)
	assert.NoError(t, err)
	assert.Equal(t, int64(0), countRows(t, e.db, &models.HistoryEntry{},
		"process_id = ? AND action = ?", process.ID, domain.HistoryPaymentDelete))
}

func TestPaymentService_Delete_Archived(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	process := testutil.Process(t, e.db, "Despejo", e.admin.ID)

	res, err := e.payments.CreatePlan(ctx, e.actor(e.admin), process.ID, installments("100", 2, day(2026, time.April, 10)))
	require.NoError(t, err)
	_, err = e.processes.Archive(ctx, e.actor(e.admin), process.ID)
	require.NoError(t, err)

	err = e.payments.Delete(ctx, e.actor(e.admin), res.Payments[0].ID)
	assert.ErrorIs(t, err, ErrProcessArchived)
	assert.Equal(t, int64(2), countRows(t, e.db, &models.ProcessPayment{}, "process_id = ?", process.ID))
}

// seedLedger creates, on one case: a 1200/3 plan due Feb 10, Mar 10 and
// Apr 10 with the first row paid, a paid 300 fee and a paid 50 expense row.
func seedLedger(t *testing.T, e *env, process *models.Process) {
	t.Helper()
	ctx := context.Background()
	actor := e.actor(e.admin)

	plan, err := e.payments.CreatePlan(ctx, actor, process.ID, installments("1200", 3, day(2026, time.February, 10)))
	require.NoError(t, err)
	paid := string(domain.PaymentPaid)
	_, err = e.payments.Update(ctx, actor, plan.Payments[0].ID, &UpdatePaymentInput{Status: &paid})
	require.NoError(t, err)

	_, err = e.payments.CreatePlan(ctx, actor, process.ID, &CreatePaymentInput{
		PaymentType:             string(domain.PaymentProfessionalFee),
		TotalAmount:             decimal.RequireFromString("300"),
		FirstInstallmentDueDate: day(2026, time.March, 1),
		Status:                  paid,
	})
	require.NoError(t, err)

	_, err = e.payments.CreatePlan(ctx, actor, process.ID, &CreatePaymentInput{
		PaymentType:             string(domain.PaymentLumpSum),
		Nature:                  string(domain.NatureExpense),
		TotalAmount:             decimal.RequireFromString("50"),
		FirstInstallmentDueDate: day(2026, time.March, 5),
		Status:                  paid,
	})
	require.NoError(t, err)
}

func TestPaymentService_Summary(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	process := testutil.Process(t, e.db, "Execução", e.admin.ID)
	seedLedger(t, e, process)

	s, err := e.payments.Summary(ctx, e.actor(e.admin), PaymentListInput{ProcessID: &process.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(5), s.Count)
	assert.Equal(t, "700.00", s.TotalReceived.StringFixed(2))
	assert.Equal(t, "800.00", s.TotalPending.StringFixed(2))
	assert.Equal(t, "300.00", s.TotalFees.StringFixed(2))
	assert.Equal(t, "50.00", s.TotalExpenses.StringFixed(2))
}

func TestPaymentService_SummaryMatchesListing(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	process := testutil.Process(t, e.db, "Execução", e.admin.ID)
	seedLedger(t, e, process)

	from := time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, time.March, 31, 0, 0, 0, 0, time.UTC)

	filters := map[string]PaymentListInput{
		"all":      {},
		"overdue":  {Status: string(domain.PaymentOverdue)},
		"pending":  {Status: string(domain.PaymentPending)},
		"paid":     {Status: string(domain.PaymentPaid)},
		"income":   {Nature: string(domain.NatureIncome)},
		"fees":     {Type: string(domain.PaymentProfessionalFee)},
		"in march": {From: &from, To: &to},
	}

	for name, filter := range filters {
		t.Run(name, func(t *testing.T) {
			listed, total, err := e.payments.List(ctx, e.actor(e.admin), filter, pagination.New(1, pagination.MaxLimit))
			require.NoError(t, err)

			rows := make([]domain.SummaryRow, len(listed))
			for i, p := range listed {
				rows[i] = domain.SummaryRow{
					TotalAmount: p.TotalAmount,
					PaymentType: domain.PaymentType(p.PaymentType),
					Status:      domain.PaymentStatus(p.EffectiveStatus),
					Nature:      domain.Nature(p.Nature),
				}
			}

			summary, err := e.payments.Summary(ctx, e.actor(e.admin), filter)
			require.NoError(t, err)
			want := domain.Summarize(rows)
			assert.Equal(t, total, summary.Count)
			assert.Equal(t, want.Count, summary.Count)
			assert.Equal(t, want.TotalReceived.StringFixed(2), summary.TotalReceived.StringFixed(2))
			assert.Equal(t, want.TotalPending.StringFixed(2), summary.TotalPending.StringFixed(2))
			assert.Equal(t, want.TotalFees.StringFixed(2), summary.TotalFees.StringFixed(2))
			assert.Equal(t, want.TotalExpenses.StringFixed(2), summary.TotalExpenses.StringFixed(2))
		})
	}
}

func TestPaymentService_List_EffectiveStatusFilter(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	process := testutil.Process(t, e.db, "Execução", e.admin.ID)
	seedLedger(t, e, process)

	overdue, total, err := e.payments.List(ctx, e.actor(e.admin), PaymentListInput{Status: string(domain.PaymentOverdue)}, pagination.New(1, 20))
	require.NoError(t, err)
	require.Equal(t, int64(1), total)
	assert.Equal(t, 2, overdue[0].InstallmentIndex)
	assert.Equal(t, string(domain.PaymentPending), overdue[0].Status)
	assert.Equal(t, string(domain.PaymentOverdue), overdue[0].EffectiveStatus)

	_, _, err = e.payments.List(ctx, e.actor(e.admin), PaymentListInput{Status: "lost"}, pagination.New(1, 20))
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestPaymentService_List_OnlyOwnCasesForRegularUsers(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	mine := testutil.Process(t, e.db, "Meu processo", e.lawyer.ID)
	other := testutil.Process(t, e.db, "Outro processo", e.admin.ID)

	_, err := e.payments.CreatePlan(ctx, e.actor(e.lawyer), mine.ID, installments("200", 2, day(2026, time.April, 1)))
	require.NoError(t, err)
	_, err = e.payments.CreatePlan(ctx, e.actor(e.admin), other.ID, installments("900", 3, day(2026, time.April, 1)))
	require.NoError(t, err)

	rows, total, err := e.payments.List(ctx, e.actor(e.lawyer), PaymentListInput{}, pagination.New(1, 20))
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	for _, r := range rows {
		assert.Equal(t, mine.ID, r.ProcessID)
	}

	_, total, err = e.payments.List(ctx, e.actor(e.admin), PaymentListInput{}, pagination.New(1, 20))
	require.NoError(t, err)
	assert.Equal(t, int64(5), total)

	s, err := e.payments.Summary(ctx, e.actor(e.lawyer), PaymentListInput{})
	require.NoError(t, err)
	assert.Equal(t, "200.00", s.TotalPending.StringFixed(2))
}

func TestPaymentService_MarkOverdue(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	process := testutil.Process(t, e.db, "Cobrança", e.admin.ID)

	_, err := e.payments.CreatePlan(ctx, e.actor(e.admin), process.ID, installments("900", 3, day(2026, time.February, 15)))
	require.NoError(t, err)

	n, err := e.payments.MarkOverdue(ctx, fixedNow)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	assert.Equal(t, int64(1), countRows(t, e.db, &models.ProcessPayment{}, "status = ?", string(domain.PaymentOverdue)))
	assert.Equal(t, int64(2), countRows(t, e.db, &models.ProcessPayment{}, "status = ?", string(domain.PaymentPending)))

	n, err = e.payments.MarkOverdue(ctx, fixedNow)
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)
}

func TestPaymentService_Schedule(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	process := testutil.Process(t, e.db, "Cobrança", e.admin.ID)

	_, err := e.payments.CreatePlan(ctx, e.actor(e.admin), process.ID, installments("1200", 3, day(2026, time.April, 10)))
	require.NoError(t, err)

	text, err := e.payments.Schedule(ctx, process.ID)
	require.NoError(t, err)
	assert.Contains(t, text, "3 parcelas")
	assert.Contains(t, text, "10/04/2026, 10/05/2026 e 10/06/2026")
}
