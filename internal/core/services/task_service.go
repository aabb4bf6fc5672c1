package services

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"lawdesk-api/internal/adapters/persistence/models"
	"lawdesk-api/internal/adapters/persistence/repositories"
	"lawdesk-api/internal/core/domain"
)

// Task service errors
var (
	ErrTaskNotFound = domain.NotFound("task")
	ErrTaskDone     = domain.Constraint("task is already done")
)

// TaskService manages tasks attached to cases
type TaskService struct {
	db          *gorm.DB
	taskRepo    *repositories.TaskRepository
	processRepo *repositories.ProcessRepository
	historyRepo *repositories.HistoryRepository
	now         Clock
}

// NewTaskService creates a new task service
func NewTaskService(
	db *gorm.DB,
	taskRepo *repositories.TaskRepository,
	processRepo *repositories.ProcessRepository,
	historyRepo *repositories.HistoryRepository,
) *TaskService {
	return &TaskService{
		db:          db,
		taskRepo:    taskRepo,
		processRepo: processRepo,
		historyRepo: historyRepo,
		now:         time.Now,
	}
}

// TaskInput is the payload for creating a task
type TaskInput struct {
	Title         string       `json:"title" validate:"required,max=200"`
	Description   string       `json:"description"`
	DueDate       *domain.Date `json:"due_date"`
	ResponsibleID *uint        `json:"responsible_id"`
}

// List lists tasks of a case, optionally by status
func (s *TaskService) List(ctx context.Context, processID uint, status string) ([]*models.Task, error) {
	if status != "" && !domain.TaskStatus(status).Valid() {
		return nil, domain.Validation("invalid filter", domain.FieldError{Field: "status", Message: "unknown status"})
	}
	if _, err := s.processRepo.GetByID(ctx, processID); err != nil {
		return nil, lookup(err, ErrProcessNotFound)
	}
	tasks, err := s.taskRepo.ListByProcess(ctx, processID, status)
	return tasks, unexpected(err)
}

// Create adds a pending task to an open case
func (s *TaskService) Create(ctx context.Context, actor Actor, processID uint, input *TaskInput) (*models.Task, error) {
	task := &models.Task{
		ProcessID:     processID,
		Title:         input.Title,
		Description:   input.Description,
		DueDate:       input.DueDate.Ptr(),
		Status:        string(domain.TaskPending),
		ResponsibleID: input.ResponsibleID,
	}
	if task.ResponsibleID == nil {
		id := actor.UserID
		task.ResponsibleID = &id
	}

	err := inTx(ctx, s.db, "task.create", func(tx *gorm.DB) error {
		if _, err := openProcess(ctx, s.processRepo.WithTx(tx), processID); err != nil {
			return err
		}
		if err := s.taskRepo.WithTx(tx).Create(ctx, task); err != nil {
			return err
		}
		return record(ctx, s.historyRepo.WithTx(tx), actor, processID, domain.HistoryTaskCreate,
			fmt.Sprintf("Tarefa criada: %s", task.Title))
	})
	if err != nil {
		return nil, err
	}
	return task, nil
}

// Complete marks a task done
func (s *TaskService) Complete(ctx context.Context, actor Actor, processID, taskID uint) (*models.Task, error) {
	var task *models.Task
	err := inTx(ctx, s.db, "task.complete", func(tx *gorm.DB) error {
		if _, err := openProcess(ctx, s.processRepo.WithTx(tx), processID); err != nil {
			return err
		}

		tasks := s.taskRepo.WithTx(tx)
		var err error
		task, err = tasks.GetByID(ctx, taskID)
		if err != nil || task.ProcessID != processID {
			return lookup(orNotFound(err), ErrTaskNotFound)
		}
		if task.Status == string(domain.TaskDone) {
			return ErrTaskDone
		}

		now := s.now()
		task.Status = string(domain.TaskDone)
		task.CompletedAt = &now
		if err := tasks.Update(ctx, task); err != nil {
			return err
		}
		return record(ctx, s.historyRepo.WithTx(tx), actor, processID, domain.HistoryTaskComplete,
			fmt.Sprintf("Tarefa concluída: %s", task.Title))
	})
	if err != nil {
		return nil, err
	}
	return task, nil
}

// Delete soft deletes a task of an open case
func (s *TaskService) Delete(ctx context.Context, processID, taskID uint) error {
	return inTx(ctx, s.db, "task.delete", func(tx *gorm.DB) error {
		if _, err := openProcess(ctx, s.processRepo.WithTx(tx), processID); err != nil {
			return err
		}
		tasks := s.taskRepo.WithTx(tx)
		task, err := tasks.GetByID(ctx, taskID)
		if err != nil || task.ProcessID != processID {
			return lookup(orNotFound(err), ErrTaskNotFound)
		}
		return tasks.Delete(ctx, taskID)
	})
}

// orNotFound treats a row found under another parent as missing
func orNotFound(err error) error {
	if err == nil {
		return gorm.ErrRecordNotFound
	}
	return err
}
