package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestMoney_RoundsHalfAwayFromZero(t *testing.T) {
	assert.Equal(t, "400.00", Money(dec("399.995")).StringFixed(2))
	assert.Equal(t, "399.99", Money(dec("399.994")).StringFixed(2))
	assert.Equal(t, "-400.00", Money(dec("-399.995")).StringFixed(2))
}

func TestBuildSchedule_EvenSplit(t *testing.T) {
	rows, err := BuildSchedule(PlanInput{
		Type:         PaymentInstallment,
		TotalAmount:  dec("1200"),
		Installments: 3,
		FirstDueDate: date(2026, time.February, 10),
	})
	require.NoError(t, err)
	require.Len(t, rows, 3)

	for i, r := range rows {
		assert.Equal(t, i+1, r.Index)
		assert.Equal(t, "400.00", r.Amount.StringFixed(2))
		assert.False(t, r.IsDownPayment)
	}
	assert.Equal(t, date(2026, time.February, 10), rows[0].DueDate)
	assert.Equal(t, date(2026, time.March, 10), rows[1].DueDate)
	assert.Equal(t, date(2026, time.April, 10), rows[2].DueDate)
}

func TestBuildSchedule_LastRowAbsorbsResidue(t *testing.T) {
	rows, err := BuildSchedule(PlanInput{
		Type:         PaymentInstallment,
		TotalAmount:  dec("1000"),
		Installments: 3,
		FirstDueDate: date(2026, time.January, 5),
	})
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, "333.33", rows[0].Amount.StringFixed(2))
	assert.Equal(t, "333.33", rows[1].Amount.StringFixed(2))
	assert.Equal(t, "333.34", rows[2].Amount.StringFixed(2))

	sum := decimal.Zero
	for _, r := range rows {
		sum = sum.Add(r.Amount)
	}
	assert.True(t, sum.Equal(dec("1000")))
}

func TestBuildSchedule_DownPaymentAndInterest(t *testing.T) {
	dp := date(2026, time.January, 2)
	rows, err := BuildSchedule(PlanInput{
		Type:            PaymentInstallment,
		TotalAmount:     dec("1000"),
		DownPayment:     dec("200"),
		DownPaymentDate: &dp,
		Interest:        dec("100"),
		Installments:    2,
		FirstDueDate:    date(2026, time.February, 2),
	})
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.True(t, rows[0].IsDownPayment)
	assert.Equal(t, 0, rows[0].Index)
	assert.Equal(t, dp, rows[0].DueDate)
	assert.Equal(t, "200.00", rows[0].Amount.StringFixed(2))

	assert.Equal(t, "450.00", rows[1].Amount.StringFixed(2))
	assert.Equal(t, "450.00", rows[2].Amount.StringFixed(2))
}

func TestBuildSchedule_MonthEndClamp(t *testing.T) {
	rows, err := BuildSchedule(PlanInput{
		Type:         PaymentInstallment,
		TotalAmount:  dec("300"),
		Installments: 3,
		FirstDueDate: date(2028, time.January, 31),
	})
	require.NoError(t, err)

	assert.Equal(t, date(2028, time.January, 31), rows[0].DueDate)
	assert.Equal(t, date(2028, time.February, 29), rows[1].DueDate)
	assert.Equal(t, date(2028, time.March, 31), rows[2].DueDate)
}

func TestBuildSchedule_SingleRowTypes(t *testing.T) {
	for _, typ := range []PaymentType{PaymentLumpSum, PaymentProfessionalFee} {
		rows, err := BuildSchedule(PlanInput{
			Type:         typ,
			TotalAmount:  dec("1500.5"),
			FirstDueDate: date(2026, time.May, 1),
		})
		require.NoError(t, err, typ)
		require.Len(t, rows, 1)
		assert.Equal(t, "1500.50", rows[0].Amount.StringFixed(2))
		assert.Equal(t, date(2026, time.May, 1), rows[0].DueDate)
	}
}

func TestBuildSchedule_Validation(t *testing.T) {
	tests := []struct {
		name  string
		in    PlanInput
		field string
	}{
		{"zero total", PlanInput{Type: PaymentLumpSum, FirstDueDate: date(2026, 1, 1)}, "total_amount"},
		{"unknown type", PlanInput{Type: "barter", TotalAmount: dec("10"), FirstDueDate: date(2026, 1, 1)}, "payment_type"},
		{"no installments", PlanInput{Type: PaymentInstallment, TotalAmount: dec("10"), FirstDueDate: date(2026, 1, 1)}, "number_of_installments"},
		{"missing due date", PlanInput{Type: PaymentLumpSum, TotalAmount: dec("10")}, "first_installment_due_date"},
		{"down payment covers everything", PlanInput{
			Type: PaymentInstallment, TotalAmount: dec("10"), DownPayment: dec("10"),
			DownPaymentDate: ptr(date(2026, 1, 1)), Installments: 1, FirstDueDate: date(2026, 2, 1),
		}, "down_payment_amount"},
		{"down payment without date", PlanInput{
			Type: PaymentInstallment, TotalAmount: dec("10"), DownPayment: dec("2"),
			Installments: 1, FirstDueDate: date(2026, 2, 1),
		}, "down_payment_date"},
		{"down payment on lump sum", PlanInput{
			Type: PaymentLumpSum, TotalAmount: dec("10"), DownPayment: dec("2"), FirstDueDate: date(2026, 2, 1),
		}, "down_payment_amount"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := BuildSchedule(tt.in)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrValidation))

			e := AsError(err)
			require.NotNil(t, e)
			var fields []string
			for _, f := range e.Fields {
				fields = append(fields, f.Field)
			}
			assert.Contains(t, fields, tt.field)
		})
	}
}

func ptr[T any](v T) *T { return &v }

func TestApplyStatus(t *testing.T) {
	now := date(2026, time.March, 15)
	supplied := date(2026, time.March, 1)

	t.Run("paid without date stamps now", func(t *testing.T) {
		s := PaymentState{Status: PaymentPending}
		require.NoError(t, ApplyStatus(&s, PaymentPaid, nil, now))
		assert.Equal(t, PaymentPaid, s.Status)
		require.NotNil(t, s.PaidAt)
		assert.Equal(t, now, *s.PaidAt)
	})

	t.Run("paid with supplied date keeps it", func(t *testing.T) {
		s := PaymentState{Status: PaymentPending}
		require.NoError(t, ApplyStatus(&s, PaymentPaid, &supplied, now))
		assert.Equal(t, supplied, *s.PaidAt)
	})

	t.Run("paid again keeps existing date", func(t *testing.T) {
		s := PaymentState{Status: PaymentPaid, PaidAt: &supplied}
		require.NoError(t, ApplyStatus(&s, PaymentPaid, nil, now))
		assert.Equal(t, supplied, *s.PaidAt)
	})

	t.Run("leaving paid clears date", func(t *testing.T) {
		s := PaymentState{Status: PaymentPaid, PaidAt: &supplied}
		require.NoError(t, ApplyStatus(&s, PaymentRefunded, nil, now))
		assert.Equal(t, PaymentRefunded, s.Status)
		assert.Nil(t, s.PaidAt)
	})

	t.Run("unknown status", func(t *testing.T) {
		s := PaymentState{Status: PaymentPending}
		err := ApplyStatus(&s, "lost", nil, now)
		assert.ErrorIs(t, err, ErrValidation)
		assert.Equal(t, PaymentPending, s.Status)
	})
}

func TestEffectiveStatus(t *testing.T) {
	now := time.Date(2026, time.March, 15, 14, 0, 0, 0, time.UTC)
	yesterday := date(2026, time.March, 14)
	today := date(2026, time.March, 15)

	assert.Equal(t, PaymentOverdue, EffectiveStatus(PaymentPending, &yesterday, now))
	assert.Equal(t, PaymentPending, EffectiveStatus(PaymentPending, &today, now))
	assert.Equal(t, PaymentPaid, EffectiveStatus(PaymentPaid, &yesterday, now))
	assert.Equal(t, PaymentPending, EffectiveStatus(PaymentPending, nil, now))
}

func TestDescribeSchedule(t *testing.T) {
	rows, err := BuildSchedule(PlanInput{
		Type:         PaymentInstallment,
		TotalAmount:  dec("1200"),
		Installments: 3,
		FirstDueDate: date(2026, time.February, 10),
	})
	require.NoError(t, err)

	text := DescribeSchedule(PaymentInstallment, dec("1200"), rows)
	assert.Contains(t, text, "3 parcelas")
	assert.Contains(t, text, "10/02/2026, 10/03/2026 e 10/04/2026")
	assert.Contains(t, text, "400,00")

	fee := DescribeSchedule(PaymentProfessionalFee, dec("50"), []ScheduledInstallment{{Index: 1, Amount: dec("50"), DueDate: date(2026, 1, 20)}})
	assert.Contains(t, fee, "Honorários")
	assert.Contains(t, fee, "20/01/2026")
}

func TestSummarize(t *testing.T) {
	s := Summarize([]SummaryRow{
		{TotalAmount: dec("100.10"), PaymentType: PaymentInstallment, Status: PaymentPaid, Nature: NatureIncome},
		{TotalAmount: dec("200.20"), PaymentType: PaymentInstallment, Status: PaymentPending, Nature: NatureIncome},
		{TotalAmount: dec("0.10"), PaymentType: PaymentLumpSum, Status: PaymentOverdue, Nature: NatureIncome},
		{TotalAmount: dec("300"), PaymentType: PaymentProfessionalFee, Status: PaymentPaid, Nature: NatureIncome},
		{TotalAmount: dec("45.5"), PaymentType: PaymentLumpSum, Status: PaymentPaid, Nature: NatureExpense},
		{TotalAmount: dec("9"), PaymentType: PaymentLumpSum, Status: PaymentFailed, Nature: NatureIncome},
	})

	assert.Equal(t, int64(6), s.Count)
	assert.Equal(t, "400.10", s.TotalReceived.StringFixed(2))
	assert.Equal(t, "200.30", s.TotalPending.StringFixed(2))
	assert.Equal(t, "300.00", s.TotalFees.StringFixed(2))
	assert.Equal(t, "45.50", s.TotalExpenses.StringFixed(2))
}
