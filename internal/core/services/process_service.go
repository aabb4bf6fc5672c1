package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"lawdesk-api/internal/adapters/persistence/models"
	"lawdesk-api/internal/adapters/persistence/repositories"
	"lawdesk-api/internal/core/domain"
	"lawdesk-api/internal/pkg/pagination"
)

// Process service errors
var (
	ErrProcessNotFound    = domain.NotFound("process")
	ErrProcessArchived    = domain.Constraint("process is archived")
	ErrProcessNotArchived = domain.Constraint("process is not archived")
	ErrProcessHidden      = domain.Forbidden("you are not responsible for this process")
)

// ProcessService handles legal case business logic
type ProcessService struct {
	db          *gorm.DB
	processRepo *repositories.ProcessRepository
	historyRepo *repositories.HistoryRepository
	paymentRepo *repositories.PaymentRepository
	expenseRepo *repositories.ExpenseRepository
	taskRepo    *repositories.TaskRepository
	userRepo    repositories.UserRepository
	contactRepo *repositories.ContactRepository
	authz       *AuthorizationService
	now         Clock
}

// NewProcessService creates a new process service
func NewProcessService(
	db *gorm.DB,
	processRepo *repositories.ProcessRepository,
	historyRepo *repositories.HistoryRepository,
	paymentRepo *repositories.PaymentRepository,
	expenseRepo *repositories.ExpenseRepository,
	taskRepo *repositories.TaskRepository,
	userRepo repositories.UserRepository,
	contactRepo *repositories.ContactRepository,
	authz *AuthorizationService,
) *ProcessService {
	return &ProcessService{
		db:          db,
		processRepo: processRepo,
		historyRepo: historyRepo,
		paymentRepo: paymentRepo,
		expenseRepo: expenseRepo,
		taskRepo:    taskRepo,
		userRepo:    userRepo,
		contactRepo: contactRepo,
		authz:       authz,
		now:         time.Now,
	}
}

// ProcessInput is the payload for creating or updating a case
type ProcessInput struct {
	Title           string          `json:"title" validate:"required,max=200"`
	Origin          string          `json:"origin" validate:"max=100"`
	Description     string          `json:"description"`
	NegotiatedValue decimal.Decimal `json:"negotiated_value"`
	Workflow        string          `json:"workflow" validate:"required,oneof=prospecting consultative administrative judicial"`
	Stage           int             `json:"stage" validate:"gte=0"`
	ResponsibleID   *uint           `json:"responsible_id"`
	ContactID       *uint           `json:"contact_id"`
}

// ProcessListInput filters a case listing
type ProcessListInput struct {
	Workflow  string
	Archived  *bool
	ContactID *uint
	Search    string
}

// List lists cases visible to the actor. Actors above the elevated level
// see every case, the rest only those they are responsible for.
func (s *ProcessService) List(ctx context.Context, actor Actor, input ProcessListInput, page *pagination.Params) ([]*models.ProcessResponse, int64, error) {
	filter := repositories.ProcessFilter{
		Workflow:  input.Workflow,
		Archived:  input.Archived,
		ContactID: input.ContactID,
		Search:    input.Search,
	}
	scope, err := s.authz.ResponsibleScope(ctx, actor.UserID)
	if err != nil {
		return nil, 0, err
	}
	filter.ResponsibleID = scope

	processes, total, err := s.processRepo.List(ctx, filter, page.Offset, page.Limit)
	if err != nil {
		return nil, 0, domain.Unexpected(err)
	}
	out := make([]*models.ProcessResponse, len(processes))
	for i, p := range processes {
		out[i] = p.ToResponse()
	}
	return out, total, nil
}

// Get gets a case the actor may see
func (s *ProcessService) Get(ctx context.Context, actor Actor, id uint) (*models.Process, error) {
	process, err := s.processRepo.GetByID(ctx, id)
	if err != nil {
		return nil, lookup(err, ErrProcessNotFound)
	}
	if process.ResponsibleID != actor.UserID {
		elevated, err := s.authz.IsElevated(ctx, actor.UserID)
		if err != nil {
			return nil, err
		}
		if !elevated {
			return nil, ErrProcessHidden
		}
	}
	return process, nil
}

func (s *ProcessService) validate(ctx context.Context, input *ProcessInput) error {
	var fields []domain.FieldError

	wf := domain.Workflow(input.Workflow)
	if !wf.Valid() {
		fields = append(fields, domain.FieldError{Field: "workflow", Message: "unknown workflow"})
	} else if !wf.ValidStage(input.Stage) {
		fields = append(fields, domain.FieldError{
			Field:   "stage",
			Message: fmt.Sprintf("must be between 0 and %d", len(wf.Stages())-1),
		})
	}
	if input.NegotiatedValue.IsNegative() {
		fields = append(fields, domain.FieldError{Field: "negotiated_value", Message: "must not be negative"})
	}
	if input.ResponsibleID != nil {
		if _, err := s.userRepo.GetByID(ctx, *input.ResponsibleID); err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.Unexpected(err)
			}
			fields = append(fields, domain.FieldError{Field: "responsible_id", Message: "user does not exist"})
		}
	}
	if input.ContactID != nil {
		ok, err := s.contactRepo.Exists(ctx, *input.ContactID)
		if err != nil {
			return domain.Unexpected(err)
		}
		if !ok {
			fields = append(fields, domain.FieldError{Field: "contact_id", Message: "contact does not exist"})
		}
	}

	if len(fields) > 0 {
		return domain.Validation("invalid process", fields...)
	}
	return nil
}

// Create creates a case; the actor is responsible unless another user is named
func (s *ProcessService) Create(ctx context.Context, actor Actor, input *ProcessInput) (*models.Process, error) {
	if err := s.validate(ctx, input); err != nil {
		return nil, err
	}

	process := &models.Process{
		Title:           input.Title,
		Origin:          input.Origin,
		Description:     input.Description,
		NegotiatedValue: domain.Money(input.NegotiatedValue),
		Workflow:        input.Workflow,
		Stage:           input.Stage,
		ResponsibleID:   actor.UserID,
		ContactID:       input.ContactID,
	}
	if input.ResponsibleID != nil {
		process.ResponsibleID = *input.ResponsibleID
	}

	err := inTx(ctx, s.db, "process.create", func(tx *gorm.DB) error {
		if err := s.processRepo.WithTx(tx).Create(ctx, process); err != nil {
			return err
		}
		return record(ctx, s.historyRepo.WithTx(tx), actor, process.ID, domain.HistoryCreate,
			fmt.Sprintf("Processo criado (%s)", domain.Workflow(process.Workflow).Label()))
	})
	if err != nil {
		return nil, err
	}
	return s.reload(ctx, process.ID)
}

// Update changes a case that is not archived
func (s *ProcessService) Update(ctx context.Context, actor Actor, id uint, input *ProcessInput) (*models.Process, error) {
	process, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if process.IsArchived() {
		return nil, ErrProcessArchived
	}
	if err := s.validate(ctx, input); err != nil {
		return nil, err
	}

	desc := "Processo atualizado"
	if process.Workflow != input.Workflow || process.Stage != input.Stage {
		wf := domain.Workflow(input.Workflow)
		desc = fmt.Sprintf("Processo atualizado: %s / %s", wf.Label(), wf.StageLabel(input.Stage))
	}

	process.Title = input.Title
	process.Origin = input.Origin
	process.Description = input.Description
	process.NegotiatedValue = domain.Money(input.NegotiatedValue)
	process.Workflow = input.Workflow
	process.Stage = input.Stage
	process.ContactID = input.ContactID
	if input.ResponsibleID != nil {
		process.ResponsibleID = *input.ResponsibleID
	}

	err = inTx(ctx, s.db, "process.update", func(tx *gorm.DB) error {
		if err := s.processRepo.WithTx(tx).Update(ctx, process); err != nil {
			return err
		}
		return record(ctx, s.historyRepo.WithTx(tx), actor, process.ID, domain.HistoryUpdate, desc)
	})
	if err != nil {
		return nil, err
	}
	return s.reload(ctx, id)
}

func (s *ProcessService) reload(ctx context.Context, id uint) (*models.Process, error) {
	process, err := s.processRepo.GetByID(ctx, id)
	if err != nil {
		return nil, lookup(err, ErrProcessNotFound)
	}
	return process, nil
}

// Archive marks a case archived; archived cases reject new ledger entries
func (s *ProcessService) Archive(ctx context.Context, actor Actor, id uint) (*models.Process, error) {
	return s.setArchived(ctx, actor, id, true)
}

// Unarchive reopens an archived case
func (s *ProcessService) Unarchive(ctx context.Context, actor Actor, id uint) (*models.Process, error) {
	return s.setArchived(ctx, actor, id, false)
}

func (s *ProcessService) setArchived(ctx context.Context, actor Actor, id uint, archive bool) (*models.Process, error) {
	process, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	var at *time.Time
	action, desc := domain.HistoryUnarchive, "Processo desarquivado"
	if archive {
		if process.IsArchived() {
			return nil, ErrProcessArchived
		}
		now := s.now()
		at = &now
		action, desc = domain.HistoryArchive, "Processo arquivado"
	} else if !process.IsArchived() {
		return nil, ErrProcessNotArchived
	}

	err = inTx(ctx, s.db, "process.archive", func(tx *gorm.DB) error {
		if err := s.processRepo.WithTx(tx).SetArchivedAt(ctx, id, at); err != nil {
			return err
		}
		return record(ctx, s.historyRepo.WithTx(tx), actor, id, action, desc)
	})
	if err != nil {
		return nil, err
	}
	return s.reload(ctx, id)
}

// Delete soft deletes a case together with its ledger rows, expenses and tasks
func (s *ProcessService) Delete(ctx context.Context, actor Actor, id uint) error {
	if _, err := s.Get(ctx, actor, id); err != nil {
		return err
	}
	return inTx(ctx, s.db, "process.delete", func(tx *gorm.DB) error {
		if err := s.paymentRepo.WithTx(tx).DeleteByProcess(ctx, id); err != nil {
			return err
		}
		if err := s.expenseRepo.WithTx(tx).DeleteByProcess(ctx, id); err != nil {
			return err
		}
		if err := s.taskRepo.WithTx(tx).DeleteByProcess(ctx, id); err != nil {
			return err
		}
		return s.processRepo.WithTx(tx).Delete(ctx, id)
	})
}

// History returns the audit trail of a case, newest first
func (s *ProcessService) History(ctx context.Context, actor Actor, id uint) ([]*models.HistoryEntry, error) {
	if _, err := s.Get(ctx, actor, id); err != nil {
		return nil, err
	}
	entries, err := s.historyRepo.ListByProcess(ctx, id)
	return entries, unexpected(err)
}

// record appends one history entry for a case
func record(ctx context.Context, repo *repositories.HistoryRepository, actor Actor, processID uint, action, desc string) error {
	return repo.Create(ctx, &models.HistoryEntry{
		ProcessID:   processID,
		Action:      action,
		Description: desc,
		PerformedBy: actor.UserID,
		IPAddress:   actor.IP,
	})
}

// openProcess loads a case for a ledger or task mutation inside tx.
// Archived cases are rejected.
func openProcess(ctx context.Context, repo *repositories.ProcessRepository, id uint) (*models.Process, error) {
	process, err := repo.GetByID(ctx, id)
	if err != nil {
		return nil, lookup(err, ErrProcessNotFound)
	}
	if process.IsArchived() {
		return nil, ErrProcessArchived
	}
	return process, nil
}
