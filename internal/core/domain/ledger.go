package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// MoneyPlaces is the precision every stored amount is rounded to
const MoneyPlaces = 2

// Money rounds an amount to cents, half away from zero
func Money(d decimal.Decimal) decimal.Decimal {
	return d.Round(MoneyPlaces)
}

// PlanInput describes a billing obligation before it is split into rows
type PlanInput struct {
	Type            PaymentType
	TotalAmount     decimal.Decimal
	DownPayment     decimal.Decimal
	DownPaymentDate *time.Time
	Installments    int
	Interest        decimal.Decimal
	FirstDueDate    time.Time
}

// ScheduledInstallment is one row of a plan
type ScheduledInstallment struct {
	Index         int
	Amount        decimal.Decimal
	DueDate       time.Time
	IsDownPayment bool
}

// Validate checks the plan input and returns field errors
func (in PlanInput) Validate() error {
	var fields []FieldError
	if !in.Type.Valid() {
		fields = append(fields, FieldError{Field: "payment_type", Message: "unknown payment type"})
	}
	if !Money(in.TotalAmount).IsPositive() {
		fields = append(fields, FieldError{Field: "total_amount", Message: "must be greater than 0"})
	}
	if in.DownPayment.IsNegative() {
		fields = append(fields, FieldError{Field: "down_payment_amount", Message: "must not be negative"})
	}
	if in.Interest.IsNegative() {
		fields = append(fields, FieldError{Field: "interest_amount", Message: "must not be negative"})
	}
	if in.FirstDueDate.IsZero() {
		fields = append(fields, FieldError{Field: "first_installment_due_date", Message: "is required"})
	}

	if in.Type == PaymentInstallment {
		if in.Installments < 1 {
			fields = append(fields, FieldError{Field: "number_of_installments", Message: "must be at least 1"})
		}
		if in.DownPayment.IsPositive() {
			if in.DownPaymentDate == nil {
				fields = append(fields, FieldError{Field: "down_payment_date", Message: "is required with a down payment"})
			}
			if in.financed().Sign() <= 0 {
				fields = append(fields, FieldError{Field: "down_payment_amount", Message: "must be lower than the amount financed"})
			}
		}
	} else if in.DownPayment.IsPositive() {
		fields = append(fields, FieldError{Field: "down_payment_amount", Message: "only applies to installment plans"})
	}

	if len(fields) > 0 {
		return Validation("invalid payment plan", fields...)
	}
	return nil
}

func (in PlanInput) financed() decimal.Decimal {
	return Money(in.TotalAmount).Sub(Money(in.DownPayment)).Add(Money(in.Interest))
}

// BuildSchedule splits a plan into rows. Installment amounts are rounded
// to cents and the last row absorbs the residue; due dates advance one
// calendar month per installment from FirstDueDate.
func BuildSchedule(in PlanInput) ([]ScheduledInstallment, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	if in.Type != PaymentInstallment {
		return []ScheduledInstallment{{
			Index:   1,
			Amount:  Money(in.TotalAmount),
			DueDate: in.FirstDueDate,
		}}, nil
	}

	rows := make([]ScheduledInstallment, 0, in.Installments+1)
	if in.DownPayment.IsPositive() {
		rows = append(rows, ScheduledInstallment{
			Index:         0,
			Amount:        Money(in.DownPayment),
			DueDate:       *in.DownPaymentDate,
			IsDownPayment: true,
		})
	}

	financed := in.financed()
	n := decimal.NewFromInt(int64(in.Installments))
	each := financed.DivRound(n, MoneyPlaces)
	last := financed.Sub(each.Mul(n.Sub(decimal.NewFromInt(1))))

	for i := 0; i < in.Installments; i++ {
		amount := each
		if i == in.Installments-1 {
			amount = last
		}
		rows = append(rows, ScheduledInstallment{
			Index:   i + 1,
			Amount:  amount,
			DueDate: AddMonths(in.FirstDueDate, i),
		})
	}
	return rows, nil
}

// AddMonths moves t forward n calendar months, clamping to the last day
// of the target month (Jan 31 + 1 month = Feb 28/29).
func AddMonths(t time.Time, n int) time.Time {
	y, m, d := t.Date()
	first := time.Date(y, m+time.Month(n), 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	lastDay := first.AddDate(0, 1, -1).Day()
	if d > lastDay {
		d = lastDay
	}
	return time.Date(first.Year(), first.Month(), d, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

// PaymentState is the part of a payment row that status changes touch
type PaymentState struct {
	Status PaymentStatus
	PaidAt *time.Time
}

// ApplyStatus moves p to next and applies the side effects.
// Entering paid stamps PaidAt with the supplied date, keeping an existing
// one, or now. Leaving paid always clears PaidAt.
func ApplyStatus(p *PaymentState, next PaymentStatus, paidAt *time.Time, now time.Time) error {
	if !next.Valid() {
		return Validation("invalid payment status", FieldError{Field: "status", Message: "unknown status"})
	}

	if next != PaymentPaid {
		p.Status = next
		p.PaidAt = nil
		return nil
	}

	switch {
	case paidAt != nil:
		t := *paidAt
		p.PaidAt = &t
	case p.Status == PaymentPaid && p.PaidAt != nil:
	default:
		t := now
		p.PaidAt = &t
	}
	p.Status = PaymentPaid
	return nil
}

// EffectiveStatus reads a pending row whose due date is before today as overdue
func EffectiveStatus(status PaymentStatus, due *time.Time, now time.Time) PaymentStatus {
	if status != PaymentPending || due == nil {
		return status
	}
	y, m, d := now.Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	if due.Before(today) {
		return PaymentOverdue
	}
	return status
}

var brl = message.NewPrinter(language.BrazilianPortuguese)

// FormatBRL renders an amount as "R$ 1.200,00"
func FormatBRL(d decimal.Decimal) string {
	return brl.Sprintf("R$ %.2f", Money(d).InexactFloat64())
}

func formatDate(t time.Time) string {
	return t.Format("02/01/2006")
}

func joinPT(items []string) string {
	switch len(items) {
	case 0:
		return ""
	case 1:
		return items[0]
	}
	return strings.Join(items[:len(items)-1], ", ") + " e " + items[len(items)-1]
}

// DescribeSchedule renders a plan as plain pt-BR text for contract templates
func DescribeSchedule(t PaymentType, total decimal.Decimal, rows []ScheduledInstallment) string {
	var b strings.Builder
	var installments []ScheduledInstallment
	for _, r := range rows {
		if r.IsDownPayment {
			fmt.Fprintf(&b, "Entrada de %s em %s. ", FormatBRL(r.Amount), formatDate(r.DueDate))
			continue
		}
		installments = append(installments, r)
	}
	if len(installments) == 0 {
		return strings.TrimSpace(b.String())
	}

	switch t {
	case PaymentProfessionalFee:
		fmt.Fprintf(&b, "Honorários de %s com vencimento em %s.", FormatBRL(installments[0].Amount), formatDate(installments[0].DueDate))
		return b.String()
	case PaymentLumpSum:
		fmt.Fprintf(&b, "Pagamento à vista de %s com vencimento em %s.", FormatBRL(installments[0].Amount), formatDate(installments[0].DueDate))
		return b.String()
	}

	dates := make([]string, len(installments))
	amounts := make([]string, len(installments))
	uniform := true
	for i, r := range installments {
		dates[i] = formatDate(r.DueDate)
		amounts[i] = FormatBRL(r.Amount)
		if !r.Amount.Equal(installments[0].Amount) {
			uniform = false
		}
	}

	word := "parcelas"
	if len(installments) == 1 {
		word = "parcela"
	}
	fmt.Fprintf(&b, "Valor total de %s, ", FormatBRL(total))
	if uniform {
		fmt.Fprintf(&b, "em %d %s de %s", len(installments), word, amounts[0])
	} else {
		fmt.Fprintf(&b, "em %d %s (%s)", len(installments), word, joinPT(amounts))
	}
	fmt.Fprintf(&b, ", com vencimentos em %s.", joinPT(dates))
	return b.String()
}
