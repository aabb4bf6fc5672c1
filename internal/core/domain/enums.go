package domain

// Display labels live here, never in the persisted model.

// Workflow is the kind of work a case goes through
type Workflow string

const (
	WorkflowProspecting    Workflow = "prospecting"
	WorkflowConsultative   Workflow = "consultative"
	WorkflowAdministrative Workflow = "administrative"
	WorkflowJudicial       Workflow = "judicial"
)

var workflowStages = map[Workflow][]string{
	WorkflowProspecting:    {"Primeiro contato", "Reunião agendada", "Proposta enviada", "Contrato assinado"},
	WorkflowConsultative:   {"Análise", "Parecer em elaboração", "Parecer entregue"},
	WorkflowAdministrative: {"Protocolo", "Em análise", "Exigência", "Decisão"},
	WorkflowJudicial:       {"Petição inicial", "Citação", "Instrução", "Sentença", "Recurso", "Execução"},
}

func (w Workflow) Valid() bool {
	_, ok := workflowStages[w]
	return ok
}

func (w Workflow) Label() string {
	switch w {
	case WorkflowProspecting:
		return "Prospecção"
	case WorkflowConsultative:
		return "Consultivo"
	case WorkflowAdministrative:
		return "Administrativo"
	case WorkflowJudicial:
		return "Judicial"
	}
	return string(w)
}

// Stages returns the ordered stage labels of the workflow
func (w Workflow) Stages() []string {
	return workflowStages[w]
}

// ValidStage reports whether stage is an index into the workflow's stages
func (w Workflow) ValidStage(stage int) bool {
	return stage >= 0 && stage < len(workflowStages[w])
}

// StageLabel returns the display name of a stage, or "" when out of range
func (w Workflow) StageLabel(stage int) string {
	if !w.ValidStage(stage) {
		return ""
	}
	return workflowStages[w][stage]
}

// PaymentStatus is the lifecycle state of one payment row
type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentPaid     PaymentStatus = "paid"
	PaymentFailed   PaymentStatus = "failed"
	PaymentRefunded PaymentStatus = "refunded"
	PaymentOverdue  PaymentStatus = "overdue"
)

func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentPending, PaymentPaid, PaymentFailed, PaymentRefunded, PaymentOverdue:
		return true
	}
	return false
}

func (s PaymentStatus) Label() string {
	switch s {
	case PaymentPending:
		return "Pendente"
	case PaymentPaid:
		return "Pago"
	case PaymentFailed:
		return "Falhou"
	case PaymentRefunded:
		return "Reembolsado"
	case PaymentOverdue:
		return "Em atraso"
	}
	return string(s)
}

// PaymentType distinguishes single payments, installment plans and fees
type PaymentType string

const (
	PaymentLumpSum         PaymentType = "lump_sum"
	PaymentInstallment     PaymentType = "installment"
	PaymentProfessionalFee PaymentType = "professional_fee"
)

func (t PaymentType) Valid() bool {
	switch t {
	case PaymentLumpSum, PaymentInstallment, PaymentProfessionalFee:
		return true
	}
	return false
}

func (t PaymentType) Label() string {
	switch t {
	case PaymentLumpSum:
		return "À vista"
	case PaymentInstallment:
		return "Parcelado"
	case PaymentProfessionalFee:
		return "Honorários"
	}
	return string(t)
}

// Nature tells client billing apart from firm outgoings
type Nature string

const (
	NatureIncome  Nature = "income"
	NatureExpense Nature = "expense"
)

func (n Nature) Valid() bool {
	return n == NatureIncome || n == NatureExpense
}

func (n Nature) Label() string {
	switch n {
	case NatureIncome:
		return "Receita"
	case NatureExpense:
		return "Despesa"
	}
	return string(n)
}

// ExpenseStatus is the state of a standalone expense entry
type ExpenseStatus string

const (
	ExpensePending   ExpenseStatus = "pending"
	ExpensePaid      ExpenseStatus = "paid"
	ExpenseCancelled ExpenseStatus = "cancelled"
)

func (s ExpenseStatus) Valid() bool {
	switch s {
	case ExpensePending, ExpensePaid, ExpenseCancelled:
		return true
	}
	return false
}

func (s ExpenseStatus) Label() string {
	switch s {
	case ExpensePending:
		return "Pendente"
	case ExpensePaid:
		return "Paga"
	case ExpenseCancelled:
		return "Cancelada"
	}
	return string(s)
}

// TaskStatus is the state of a case task
type TaskStatus string

const (
	TaskPending TaskStatus = "pending"
	TaskDone    TaskStatus = "done"
)

func (s TaskStatus) Valid() bool {
	return s == TaskPending || s == TaskDone
}

func (s TaskStatus) Label() string {
	switch s {
	case TaskPending:
		return "Pendente"
	case TaskDone:
		return "Concluída"
	}
	return string(s)
}

// ContactKind separates people from companies
type ContactKind string

const (
	ContactPerson  ContactKind = "person"
	ContactCompany ContactKind = "company"
)

func (k ContactKind) Valid() bool {
	return k == ContactPerson || k == ContactCompany
}

func (k ContactKind) Label() string {
	switch k {
	case ContactPerson:
		return "Pessoa física"
	case ContactCompany:
		return "Pessoa jurídica"
	}
	return string(k)
}
