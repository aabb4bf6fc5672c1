package services

import (
	"context"

	"lawdesk-api/internal/adapters/persistence/models"
	"lawdesk-api/internal/adapters/persistence/repositories"
	"lawdesk-api/internal/core/domain"
	"lawdesk-api/internal/pkg/pagination"
)

// Contact service errors
var (
	ErrContactNotFound = domain.NotFound("contact")
	ErrContactInUse    = domain.Constraint("contact is linked to cases and cannot be deleted")
)

// ContactService manages clients, counterparties and suppliers
type ContactService struct {
	contactRepo *repositories.ContactRepository
}

// NewContactService creates a new contact service
func NewContactService(contactRepo *repositories.ContactRepository) *ContactService {
	return &ContactService{contactRepo: contactRepo}
}

// ContactInput is the payload for creating or updating a contact
type ContactInput struct {
	Name     string `json:"name" validate:"required,max=150"`
	Kind     string `json:"kind" validate:"omitempty,oneof=person company"`
	Document string `json:"document" validate:"max=30"`
	Email    string `json:"email" validate:"omitempty,email,max=100"`
	Phone    string `json:"phone" validate:"max=30"`
	Notes    string `json:"notes"`
}

func (in *ContactInput) kind() string {
	if in.Kind == "" {
		return string(domain.ContactPerson)
	}
	return in.Kind
}

// List lists contacts matching search
func (s *ContactService) List(ctx context.Context, search, kind string, page *pagination.Params) ([]*models.ContactResponse, int64, error) {
	contacts, total, err := s.contactRepo.List(ctx, search, kind, page.Offset, page.Limit)
	if err != nil {
		return nil, 0, domain.Unexpected(err)
	}
	out := make([]*models.ContactResponse, len(contacts))
	for i, c := range contacts {
		out[i] = c.ToResponse()
	}
	return out, total, nil
}

func (s *ContactService) Get(ctx context.Context, id uint) (*models.Contact, error) {
	contact, err := s.contactRepo.GetByID(ctx, id)
	if err != nil {
		return nil, lookup(err, ErrContactNotFound)
	}
	return contact, nil
}

func (s *ContactService) Create(ctx context.Context, input *ContactInput) (*models.Contact, error) {
	contact := &models.Contact{
		Name:     input.Name,
		Kind:     input.kind(),
		Document: input.Document,
		Email:    input.Email,
		Phone:    input.Phone,
		Notes:    input.Notes,
	}
	if err := s.contactRepo.Create(ctx, contact); err != nil {
		return nil, domain.Unexpected(err)
	}
	return contact, nil
}

func (s *ContactService) Update(ctx context.Context, id uint, input *ContactInput) (*models.Contact, error) {
	contact, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	contact.Name = input.Name
	contact.Kind = input.kind()
	contact.Document = input.Document
	contact.Email = input.Email
	contact.Phone = input.Phone
	contact.Notes = input.Notes

	if err := s.contactRepo.Update(ctx, contact); err != nil {
		return nil, domain.Unexpected(err)
	}
	return contact, nil
}

// Delete soft deletes a contact that no live case references
func (s *ContactService) Delete(ctx context.Context, id uint) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	n, err := s.contactRepo.CountProcesses(ctx, id)
	if err != nil {
		return domain.Unexpected(err)
	}
	if n > 0 {
		return ErrContactInUse
	}
	return unexpected(s.contactRepo.Delete(ctx, id))
}
