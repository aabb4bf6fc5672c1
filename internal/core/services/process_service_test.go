package services

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lawdesk-api/internal/adapters/persistence/models"
	"lawdesk-api/internal/core/domain"
	"lawdesk-api/internal/pkg/pagination"
	"lawdesk-api/internal/testutil"
)

func TestProcessService_CreateValidates(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	ghost := uint(777)

	_, err := e.processes.Create(ctx, e.actor(e.admin), &ProcessInput{
		Title:           "Sem fluxo",
		Workflow:        "judicial",
		Stage:           42,
		NegotiatedValue: decimal.NewFromInt(-1),
		ResponsibleID:   &ghost,
		ContactID:       &ghost,
	})
	require.ErrorIs(t, err, domain.ErrValidation)

	var fields []string
	for _, f := range domain.AsError(err).Fields {
		fields = append(fields, f.Field)
	}
	assert.ElementsMatch(t, []string{"stage", "negotiated_value", "responsible_id", "contact_id"}, fields)
}

func TestProcessService_CreateRecordsHistory(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	p, err := e.processes.Create(ctx, e.actor(e.lawyer), &ProcessInput{
		Title:           "Ação revisional",
		Workflow:        string(domain.WorkflowJudicial),
		Stage:           1,
		NegotiatedValue: decimal.RequireFromString("15000.456"),
	})
	require.NoError(t, err)
	assert.Equal(t, e.lawyer.ID, p.ResponsibleID)
	assert.Equal(t, "15000.46", p.NegotiatedValue.StringFixed(2))

	history, err := e.processes.History(ctx, e.actor(e.lawyer), p.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, domain.HistoryCreate, history[0].Action)
	assert.Equal(t, e.lawyer.ID, history[0].PerformedBy)
	assert.Equal(t, "127.0.0.1", history[0].IPAddress)
}

func TestProcessService_Visibility(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	mine := testutil.Process(t, e.db, "Meu", e.lawyer.ID)
	theirs := testutil.Process(t, e.db, "Deles", e.admin.ID)

	list, total, err := e.processes.List(ctx, e.actor(e.lawyer), ProcessListInput{}, pagination.New(1, 20))
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, mine.ID, list[0].ID)

	_, total, err = e.processes.List(ctx, e.actor(e.admin), ProcessListInput{}, pagination.New(1, 20))
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)

	_, err = e.processes.Get(ctx, e.actor(e.lawyer), theirs.ID)
	assert.ErrorIs(t, err, domain.ErrAuthorization)

	got, err := e.processes.Get(ctx, e.actor(e.admin), mine.ID)
	require.NoError(t, err)
	assert.Equal(t, mine.ID, got.ID)
}

func TestProcessService_ArchiveCycle(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	p := testutil.Process(t, e.db, "Arquivável", e.admin.ID)
	actor := e.actor(e.admin)

	archived, err := e.processes.Archive(ctx, actor, p.ID)
	require.NoError(t, err)
	require.NotNil(t, archived.ArchivedAt)
	assert.True(t, archived.ArchivedAt.Equal(fixedNow))

	_, err = e.processes.Archive(ctx, actor, p.ID)
	assert.ErrorIs(t, err, ErrProcessArchived)

	_, err = e.processes.Update(ctx, actor, p.ID, &ProcessInput{Title: "x", Workflow: "judicial"})
	assert.ErrorIs(t, err, ErrProcessArchived)

	_, err = e.tasks.Create(ctx, actor, p.ID, &TaskInput{Title: "Protocolar"})
	assert.ErrorIs(t, err, ErrProcessArchived)

	reopened, err := e.processes.Unarchive(ctx, actor, p.ID)
	require.NoError(t, err)
	assert.Nil(t, reopened.ArchivedAt)

	_, err = e.processes.Unarchive(ctx, actor, p.ID)
	assert.ErrorIs(t, err, ErrProcessNotArchived)

	history, err := e.processes.History(ctx, actor, p.ID)
	require.NoError(t, err)
	actions := make([]string, len(history))
	for i, h := range history {
		actions[i] = h.Action
	}
	assert.ElementsMatch(t, []string{domain.HistoryArchive, domain.HistoryUnarchive}, actions)
}

func TestProcessService_DeleteCascades(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	p := testutil.Process(t, e.db, "Encerrado", e.admin.ID)
	actor := e.actor(e.admin)

	_, err := e.payments.CreatePlan(ctx, actor, p.ID, installments("300", 3, day(2026, time.April, 1)))
	require.NoError(t, err)
	_, err = e.tasks.Create(ctx, actor, p.ID, &TaskInput{Title: "Arquivar autos"})
	require.NoError(t, err)
	_, err = e.expenses.Create(ctx, actor, p.ID, &ExpenseInput{
		Description: "Custas",
		Amount:      decimal.RequireFromString("120"),
		Date:        domain.Date{Time: time.Date(2026, time.March, 2, 0, 0, 0, 0, time.UTC)},
	})
	require.NoError(t, err)

	require.NoError(t, e.processes.Delete(ctx, actor, p.ID))

	assert.Equal(t, int64(0), countRows(t, e.db, &models.Process{}, "id = ?", p.ID))
	assert.Equal(t, int64(0), countRows(t, e.db, &models.ProcessPayment{}, "process_id = ?", p.ID))
	assert.Equal(t, int64(0), countRows(t, e.db, &models.InstallmentPlan{}, "process_id = ?", p.ID))
	assert.Equal(t, int64(0), countRows(t, e.db, &models.Task{}, "process_id = ?", p.ID))
	assert.Equal(t, int64(0), countRows(t, e.db, &models.Expense{}, "process_id = ?", p.ID))
}

func TestContactService_DeleteInUse(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	c, err := e.contacts.Create(ctx, &ContactInput{Name: "Maria Souza"})
	require.NoError(t, err)
	assert.Equal(t, string(domain.ContactPerson), c.Kind)

	p := testutil.Process(t, e.db, "Cliente Maria", e.admin.ID)
	require.NoError(t, e.db.Model(p).Update("contact_id", c.ID).Error)

	assert.ErrorIs(t, e.contacts.Delete(ctx, c.ID), ErrContactInUse)

	require.NoError(t, e.processes.Delete(ctx, e.actor(e.admin), p.ID))
	require.NoError(t, e.contacts.Delete(ctx, c.ID))

	_, err = e.contacts.Get(ctx, c.ID)
	assert.ErrorIs(t, err, ErrContactNotFound)
}

func TestTaskService_Lifecycle(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	p := testutil.Process(t, e.db, "Com prazo", e.lawyer.ID)
	actor := e.actor(e.lawyer)

	task, err := e.tasks.Create(ctx, actor, p.ID, &TaskInput{Title: "Contestação", DueDate: day(2026, time.March, 20)})
	require.NoError(t, err)
	require.NotNil(t, task.ResponsibleID)
	assert.Equal(t, e.lawyer.ID, *task.ResponsibleID)

	open, err := e.tasks.List(ctx, p.ID, string(domain.TaskPending))
	require.NoError(t, err)
	assert.Len(t, open, 1)

	done, err := e.tasks.Complete(ctx, actor, p.ID, task.ID)
	require.NoError(t, err)
	assert.Equal(t, string(domain.TaskDone), done.Status)
	require.NotNil(t, done.CompletedAt)

	_, err = e.tasks.Complete(ctx, actor, p.ID, task.ID)
	assert.ErrorIs(t, err, ErrTaskDone)

	other := testutil.Process(t, e.db, "Outro", e.lawyer.ID)
	_, err = e.tasks.Complete(ctx, actor, other.ID, task.ID)
	assert.ErrorIs(t, err, ErrTaskNotFound)

	require.NoError(t, e.tasks.Delete(ctx, p.ID, task.ID))
	all, err := e.tasks.List(ctx, p.ID, "")
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestExpenseService_Validation(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	p := testutil.Process(t, e.db, "Com custas", e.admin.ID)

	_, err := e.expenses.Create(ctx, e.actor(e.admin), p.ID, &ExpenseInput{Description: "Nada", Status: "lost"})
	require.ErrorIs(t, err, domain.ErrValidation)
	assert.Len(t, domain.AsError(err).Fields, 3)

	exp, err := e.expenses.Create(ctx, e.actor(e.admin), p.ID, &ExpenseInput{
		Description: "Perícia",
		Amount:      decimal.RequireFromString("1500.005"),
		Date:        domain.Date{Time: time.Date(2026, time.March, 3, 0, 0, 0, 0, time.UTC)},
	})
	require.NoError(t, err)
	assert.Equal(t, "1500.01", exp.Amount.StringFixed(2))
	assert.Equal(t, string(domain.ExpensePending), exp.Status)

	assert.Equal(t, int64(1), countRows(t, e.db, &models.HistoryEntry{},
		"process_id = ? AND action = ?", p.ID, domain.HistoryExpenseCreate))
}

func TestDashboardService_Get(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	p := testutil.Process(t, e.db, "Execução", e.admin.ID)
	seedLedger(t, e, p)
	testutil.Process(t, e.db, "Do advogado", e.lawyer.ID)

	_, err := e.expenses.Create(ctx, e.actor(e.admin), p.ID, &ExpenseInput{
		Description: "Cartório",
		Amount:      decimal.RequireFromString("80"),
		Date:        domain.Date{Time: time.Date(2026, time.March, 10, 0, 0, 0, 0, time.UTC)},
	})
	require.NoError(t, err)

	data, err := e.dashboard.Get(ctx, e.actor(e.admin))
	require.NoError(t, err)
	assert.Equal(t, int64(2), data.ActiveProcesses)
	assert.Equal(t, "2026-03", data.Month)
	// March rows: overdue installment 400, paid fee 300, paid expense row 50
	assert.Equal(t, int64(3), data.MonthSummary.Count)
	assert.Equal(t, "300.00", data.MonthSummary.TotalReceived.StringFixed(2))
	assert.Equal(t, "400.00", data.MonthSummary.TotalPending.StringFixed(2))
	assert.Equal(t, "80.00", data.MonthExpenses.StringFixed(2))
	assert.NotEmpty(t, data.RecentHistory)

	mine, err := e.dashboard.Get(ctx, e.actor(e.lawyer))
	require.NoError(t, err)
	assert.Equal(t, int64(1), mine.ActiveProcesses)
	assert.Equal(t, int64(0), mine.MonthSummary.Count)
	assert.Empty(t, mine.RecentHistory)
}
