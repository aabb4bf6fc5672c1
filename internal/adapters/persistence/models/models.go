package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"lawdesk-api/internal/core/domain"
)

// ============================================================
// Auth & Access Control
// ============================================================

// User represents users table
type User struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Name        string         `gorm:"size:100;not null" json:"name"`
	Email       string         `gorm:"uniqueIndex;size:100;not null" json:"email"`
	Password    string         `gorm:"size:255;not null" json:"-"`
	IsActive    bool           `gorm:"default:true" json:"is_active"`
	CreatedAt   time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
	Roles       []Role         `gorm:"many2many:user_roles;" json:"roles,omitempty"`
	Permissions []Permission   `gorm:"many2many:user_permissions;" json:"permissions,omitempty"`
}

func (User) TableName() string {
	return "users"
}

// UserResponse DTO
type UserResponse struct {
	ID          uint      `json:"id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	IsActive    bool      `json:"is_active"`
	Roles       []string  `json:"roles"`
	Permissions []string  `json:"permissions"`
	CreatedAt   time.Time `json:"created_at"`
}

func (u *User) ToResponse() *UserResponse {
	resp := &UserResponse{
		ID:          u.ID,
		Name:        u.Name,
		Email:       u.Email,
		IsActive:    u.IsActive,
		Roles:       make([]string, 0, len(u.Roles)),
		Permissions: make([]string, 0, len(u.Permissions)),
		CreatedAt:   u.CreatedAt,
	}
	for _, r := range u.Roles {
		resp.Roles = append(resp.Roles, r.Name)
	}
	for _, p := range u.Permissions {
		resp.Permissions = append(resp.Permissions, p.Name)
	}
	return resp
}

// Grants flattens loaded roles and permissions for the authorization core
func (u *User) Grants() domain.Grants {
	g := domain.Grants{UserID: u.ID}
	for _, r := range u.Roles {
		rg := domain.RoleGrant{Name: r.Name, Level: r.Level}
		for _, p := range r.Permissions {
			rg.Permissions = append(rg.Permissions, p.Name)
		}
		g.Roles = append(g.Roles, rg)
	}
	for _, p := range u.Permissions {
		g.Permissions = append(g.Permissions, p.Name)
	}
	return g
}

// Role is a named permission bundle with a privilege level
type Role struct {
	ID          uint         `gorm:"primaryKey" json:"id"`
	Name        string       `gorm:"uniqueIndex;size:50;not null" json:"name"`
	Description string       `gorm:"size:255" json:"description"`
	Level       int          `gorm:"not null;default:0" json:"level"`
	CreatedAt   time.Time    `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time    `gorm:"autoUpdateTime" json:"updated_at"`
	Permissions []Permission `gorm:"many2many:role_permissions;" json:"permissions,omitempty"`
}

func (Role) TableName() string {
	return "roles"
}

// Permission is a named action, matching a route name
type Permission struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"uniqueIndex;size:100;not null" json:"name"`
	Description string    `gorm:"size:255" json:"description"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (Permission) TableName() string {
	return "permissions"
}

// RefreshToken represents refresh_tokens table
type RefreshToken struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	UserID    uint       `gorm:"index;not null" json:"user_id"`
	TokenHash string     `gorm:"size:255;not null;index" json:"-"`
	ExpiresAt time.Time  `gorm:"not null" json:"expires_at"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
	RevokedAt *time.Time `gorm:"index" json:"revoked_at"`
	User      User       `gorm:"foreignKey:UserID" json:"-"`
}

func (RefreshToken) TableName() string {
	return "refresh_tokens"
}

func (rt *RefreshToken) IsRevoked() bool {
	return rt.RevokedAt != nil
}

func (rt *RefreshToken) IsExpired() bool {
	return time.Now().After(rt.ExpiresAt)
}

// ============================================================
// Practice
// ============================================================

// Contact is a client, counterparty or supplier
type Contact struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Name      string         `gorm:"size:150;not null;index" json:"name"`
	Kind      string         `gorm:"size:20;not null;default:'person'" json:"kind"`
	Document  string         `gorm:"size:30" json:"document"`
	Email     string         `gorm:"size:100" json:"email"`
	Phone     string         `gorm:"size:30" json:"phone"`
	Notes     string         `gorm:"type:text" json:"notes"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Contact) TableName() string {
	return "contacts"
}

// ContactResponse DTO
type ContactResponse struct {
	Contact
	KindLabel string `json:"kind_label"`
}

func (c *Contact) ToResponse() *ContactResponse {
	return &ContactResponse{Contact: *c, KindLabel: domain.ContactKind(c.Kind).Label()}
}

// Process is a legal case
type Process struct {
	ID              uint            `gorm:"primaryKey" json:"id"`
	Title           string          `gorm:"size:200;not null" json:"title"`
	Origin          string          `gorm:"size:100" json:"origin"`
	Description     string          `gorm:"type:text" json:"description"`
	NegotiatedValue decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0" json:"negotiated_value"`
	Workflow        string          `gorm:"size:30;not null;index" json:"workflow"`
	Stage           int             `gorm:"not null;default:0" json:"stage"`
	ArchivedAt      *time.Time      `gorm:"index" json:"archived_at"`
	ResponsibleID   uint            `gorm:"not null;index" json:"responsible_id"`
	ContactID       *uint           `gorm:"index" json:"contact_id"`
	CreatedAt       time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt       gorm.DeletedAt  `gorm:"index" json:"-"`

	// Relations
	Responsible *User    `gorm:"foreignKey:ResponsibleID" json:"responsible,omitempty"`
	Contact     *Contact `gorm:"foreignKey:ContactID" json:"contact,omitempty"`
}

func (Process) TableName() string {
	return "processes"
}

func (p *Process) IsArchived() bool {
	return p.ArchivedAt != nil
}

// ProcessResponse DTO
type ProcessResponse struct {
	ID              uint            `json:"id"`
	Title           string          `json:"title"`
	Origin          string          `json:"origin"`
	Description     string          `json:"description"`
	NegotiatedValue decimal.Decimal `json:"negotiated_value"`
	Workflow        string          `json:"workflow"`
	WorkflowLabel   string          `json:"workflow_label"`
	Stage           int             `json:"stage"`
	StageLabel      string          `json:"stage_label"`
	Archived        bool            `json:"archived"`
	ArchivedAt      *time.Time      `json:"archived_at"`
	ResponsibleID   uint            `json:"responsible_id"`
	ResponsibleName string          `json:"responsible_name,omitempty"`
	ContactID       *uint           `json:"contact_id"`
	ContactName     string          `json:"contact_name,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

func (p *Process) ToResponse() *ProcessResponse {
	wf := domain.Workflow(p.Workflow)
	resp := &ProcessResponse{
		ID:              p.ID,
		Title:           p.Title,
		Origin:          p.Origin,
		Description:     p.Description,
		NegotiatedValue: p.NegotiatedValue,
		Workflow:        p.Workflow,
		WorkflowLabel:   wf.Label(),
		Stage:           p.Stage,
		StageLabel:      wf.StageLabel(p.Stage),
		Archived:        p.IsArchived(),
		ArchivedAt:      p.ArchivedAt,
		ResponsibleID:   p.ResponsibleID,
		ContactID:       p.ContactID,
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
	}
	if p.Responsible != nil {
		resp.ResponsibleName = p.Responsible.Name
	}
	if p.Contact != nil {
		resp.ContactName = p.Contact.Name
	}
	return resp
}

// HistoryEntry is one line of a case's audit trail
type HistoryEntry struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	ProcessID   uint      `gorm:"not null;index" json:"process_id"`
	Action      string    `gorm:"size:50;not null" json:"action"`
	Description string    `gorm:"type:text" json:"description"`
	PerformedBy uint      `gorm:"not null" json:"performed_by"`
	IPAddress   string    `gorm:"size:50" json:"ip_address"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`

	// Relations
	Performer *User `gorm:"foreignKey:PerformedBy" json:"performer,omitempty"`
}

func (HistoryEntry) TableName() string {
	return "process_histories"
}

// Task is a to-do attached to a case
type Task struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	ProcessID     uint           `gorm:"not null;index" json:"process_id"`
	Title         string         `gorm:"size:200;not null" json:"title"`
	Description   string         `gorm:"type:text" json:"description"`
	DueDate       *time.Time     `gorm:"type:date" json:"due_date"`
	Status        string         `gorm:"size:20;not null;default:'pending'" json:"status"`
	ResponsibleID *uint          `json:"responsible_id"`
	CompletedAt   *time.Time     `json:"completed_at"`
	CreatedAt     time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Task) TableName() string {
	return "tasks"
}

// ============================================================
// Ledger
// ============================================================

// InstallmentPlan groups the rows generated from one billing obligation.
// Its id is the transaction_group_id stored on every row.
type InstallmentPlan struct {
	ID                      uuid.UUID       `gorm:"type:char(36);primaryKey" json:"id"`
	ProcessID               uint            `gorm:"not null;index" json:"process_id"`
	PaymentType             string          `gorm:"size:30;not null" json:"payment_type"`
	PaymentMethod           string          `gorm:"size:50" json:"payment_method"`
	Nature                  string          `gorm:"size:20;not null" json:"nature"`
	TotalAmount             decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"total_amount"`
	DownPaymentAmount       decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0" json:"down_payment_amount"`
	DownPaymentDate         *time.Time      `json:"down_payment_date"`
	NumberOfInstallments    *int            `json:"number_of_installments"`
	InterestAmount          decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0" json:"interest_amount"`
	FirstInstallmentDueDate time.Time       `gorm:"not null" json:"first_installment_due_date"`
	SupplierContactID       *uint           `json:"supplier_contact_id"`
	CreatedBy               uint            `gorm:"not null" json:"created_by"`
	CreatedAt               time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt               time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt               gorm.DeletedAt  `gorm:"index" json:"-"`
}

func (InstallmentPlan) TableName() string {
	return "installment_plans"
}

// Input rebuilds the schedule input the plan was created from
func (p *InstallmentPlan) Input() domain.PlanInput {
	in := domain.PlanInput{
		Type:            domain.PaymentType(p.PaymentType),
		TotalAmount:     p.TotalAmount,
		DownPayment:     p.DownPaymentAmount,
		DownPaymentDate: p.DownPaymentDate,
		Interest:        p.InterestAmount,
		FirstDueDate:    p.FirstInstallmentDueDate,
	}
	if p.NumberOfInstallments != nil {
		in.Installments = *p.NumberOfInstallments
	}
	return in
}

// ProcessPayment is one billing row: a single payment, a fee, or one
// installment of a plan.
type ProcessPayment struct {
	ID                      uint            `gorm:"primaryKey" json:"id"`
	ProcessID               uint            `gorm:"not null;index" json:"process_id"`
	TransactionGroupID      *uuid.UUID      `gorm:"type:char(36);index" json:"transaction_group_id"`
	InstallmentIndex        int             `gorm:"not null;default:0" json:"installment_index"`
	PaymentType             string          `gorm:"size:30;not null;index" json:"payment_type"`
	PaymentMethod           string          `gorm:"size:50" json:"payment_method"`
	Nature                  string          `gorm:"size:20;not null;index" json:"nature"`
	Status                  string          `gorm:"size:20;not null;index;default:'pending'" json:"status"`
	TotalAmount             decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"total_amount"`
	DownPaymentAmount       decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0" json:"down_payment_amount"`
	DownPaymentDate         *time.Time      `json:"down_payment_date"`
	NumberOfInstallments    *int            `json:"number_of_installments"`
	ValueOfInstallment      decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0" json:"value_of_installment"`
	InterestAmount          decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0" json:"interest_amount"`
	FirstInstallmentDueDate *time.Time      `json:"first_installment_due_date"`
	DueDate                 *time.Time      `gorm:"index" json:"due_date"`
	PaidAt                  *time.Time      `json:"paid_at"`
	SupplierContactID       *uint           `json:"supplier_contact_id"`
	Notes                   string          `gorm:"type:text" json:"notes"`
	CreatedAt               time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt               time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt               gorm.DeletedAt  `gorm:"index" json:"-"`

	// Relations
	Process *Process `gorm:"foreignKey:ProcessID" json:"-"`
}

func (ProcessPayment) TableName() string {
	return "process_payments"
}

// IsGrouped reports whether the row belongs to an installment plan
func (p *ProcessPayment) IsGrouped() bool {
	return p.TransactionGroupID != nil
}

// PaymentResponse DTO
type PaymentResponse struct {
	ProcessPayment
	EffectiveStatus  string `json:"effective_status"`
	StatusLabel      string `json:"status_label"`
	PaymentTypeLabel string `json:"payment_type_label"`
	NatureLabel      string `json:"nature_label"`

	// Amounts always render with two decimal places; these shadow the
	// embedded decimal fields in JSON.
	TotalAmountFixed        string `json:"total_amount"`
	DownPaymentAmountFixed  string `json:"down_payment_amount"`
	ValueOfInstallmentFixed string `json:"value_of_installment"`
	InterestAmountFixed     string `json:"interest_amount"`
}

// ToResponse attaches labels and the status as read at now
func (p *ProcessPayment) ToResponse(now time.Time) *PaymentResponse {
	eff := domain.EffectiveStatus(domain.PaymentStatus(p.Status), p.DueDate, now)
	return &PaymentResponse{
		ProcessPayment:   *p,
		EffectiveStatus:  string(eff),
		StatusLabel:      eff.Label(),
		PaymentTypeLabel: domain.PaymentType(p.PaymentType).Label(),
		NatureLabel:      domain.Nature(p.Nature).Label(),

		TotalAmountFixed:        p.TotalAmount.StringFixed(2),
		DownPaymentAmountFixed:  p.DownPaymentAmount.StringFixed(2),
		ValueOfInstallmentFixed: p.ValueOfInstallment.StringFixed(2),
		InterestAmountFixed:     p.InterestAmount.StringFixed(2),
	}
}

// Expense is money the firm spent on a case
type Expense struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	ProcessID   uint            `gorm:"not null;index" json:"process_id"`
	Description string          `gorm:"size:255;not null" json:"description"`
	Amount      decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"amount"`
	Date        time.Time       `gorm:"type:date;not null" json:"date"`
	Category    string          `gorm:"size:50" json:"category"`
	Status      string          `gorm:"size:20;not null;default:'pending'" json:"status"`
	CreatedAt   time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt   gorm.DeletedAt  `gorm:"index" json:"-"`
}

func (Expense) TableName() string {
	return "expenses"
}

// ============================================================
// Auto Migration
// ============================================================

// AutoMigrate creates or updates every table the API owns
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&Permission{},
		&Role{},
		&User{},
		&RefreshToken{},
		&Contact{},
		&Process{},
		&HistoryEntry{},
		&Task{},
		&InstallmentPlan{},
		&ProcessPayment{},
		&Expense{},
	)
}
