package domain

import "github.com/shopspring/decimal"

// History actions recorded against a case
const (
	HistoryCreate         = "CREATE"
	HistoryUpdate         = "UPDATE"
	HistoryArchive        = "ARCHIVE"
	HistoryUnarchive      = "UNARCHIVE"
	HistoryPaymentCreate  = "PAYMENT_CREATE"
	HistoryPaymentUpdate  = "PAYMENT_UPDATE"
	HistoryPaymentDelete  = "PAYMENT_DELETE"
	HistoryPlanRegenerate = "PLAN_REGENERATE"
	HistoryTaskCreate     = "TASK_CREATE"
	HistoryTaskComplete   = "TASK_COMPLETE"
	HistoryExpenseCreate  = "EXPENSE_CREATE"
)

// PaymentSummary aggregates a filtered set of payment rows
type PaymentSummary struct {
	TotalReceived decimal.Decimal `json:"total_received"`
	TotalPending  decimal.Decimal `json:"total_pending"`
	TotalFees     decimal.Decimal `json:"total_fees"`
	TotalExpenses decimal.Decimal `json:"total_expenses"`
	Count         int64           `json:"count"`
}

// SummaryRow is the projection of a payment row the summary needs
type SummaryRow struct {
	TotalAmount decimal.Decimal
	PaymentType PaymentType
	Status      PaymentStatus
	Nature      Nature
}

// Summarize folds rows into a PaymentSummary. Expense rows only count
// toward TotalExpenses.
func Summarize(rows []SummaryRow) PaymentSummary {
	s := PaymentSummary{
		TotalReceived: decimal.Zero,
		TotalPending:  decimal.Zero,
		TotalFees:     decimal.Zero,
		TotalExpenses: decimal.Zero,
	}
	for _, r := range rows {
		s.Count++
		if r.Nature == NatureExpense {
			s.TotalExpenses = s.TotalExpenses.Add(r.TotalAmount)
			continue
		}
		if r.PaymentType == PaymentProfessionalFee {
			s.TotalFees = s.TotalFees.Add(r.TotalAmount)
		}
		switch r.Status {
		case PaymentPaid:
			s.TotalReceived = s.TotalReceived.Add(r.TotalAmount)
		case PaymentPending, PaymentOverdue:
			s.TotalPending = s.TotalPending.Add(r.TotalAmount)
		}
	}
	s.TotalReceived = Money(s.TotalReceived)
	s.TotalPending = Money(s.TotalPending)
	s.TotalFees = Money(s.TotalFees)
	s.TotalExpenses = Money(s.TotalExpenses)
	return s
}
