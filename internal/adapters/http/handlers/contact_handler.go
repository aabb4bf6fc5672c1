package handlers

import (
	"github.com/gofiber/fiber/v2"

	"lawdesk-api/internal/core/services"
	"lawdesk-api/internal/pkg/pagination"
	"lawdesk-api/internal/pkg/response"
)

// ContactHandler handles contact endpoints
type ContactHandler struct {
	contactService *services.ContactService
}

// NewContactHandler creates a new contact handler
func NewContactHandler(contactService *services.ContactService) *ContactHandler {
	return &ContactHandler{contactService: contactService}
}

// List handles listing contacts
// @Summary List contacts
// @Tags Contacts
// @Produce json
// @Security BearerAuth
// @Param search query string false "Name or document"
// @Param kind query string false "person or company"
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(20)
// @Success 200 {object} response.Response
// @Router /contacts [get]
func (h *ContactHandler) List(c *fiber.Ctx) error {
	page := pagination.GetParams(c)

	contacts, total, err := h.contactService.List(c.UserContext(), c.Query("search"), c.Query("kind"), page)
	if err != nil {
		return response.FromError(c, err)
	}
	return paginated(c, "Contacts retrieved successfully", contacts, page, total)
}

// Get handles getting a contact
// @Summary Get contact
// @Tags Contacts
// @Produce json
// @Security BearerAuth
// @Param id path int true "Contact ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /contacts/{id} [get]
func (h *ContactHandler) Get(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}

	contact, err := h.contactService.Get(c.UserContext(), id)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Contact retrieved successfully", contact)
}

// Create handles creating a contact
// @Summary Create contact
// @Tags Contacts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.ContactInput true "Contact data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /contacts [post]
func (h *ContactHandler) Create(c *fiber.Ctx) error {
	var input services.ContactInput
	if err := bind(c, &input); err != nil {
		return response.FromError(c, err)
	}

	contact, err := h.contactService.Create(c.UserContext(), &input)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Created(c, "Contact created successfully", contact)
}

// Update handles updating a contact
// @Summary Update contact
// @Tags Contacts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Contact ID"
// @Param body body services.ContactInput true "Contact data"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /contacts/{id} [put]
func (h *ContactHandler) Update(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}

	var input services.ContactInput
	if err := bind(c, &input); err != nil {
		return response.FromError(c, err)
	}

	contact, err := h.contactService.Update(c.UserContext(), id, &input)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Contact updated successfully", contact)
}

// Delete handles deleting a contact
// @Summary Delete contact
// @Description Contacts linked to cases cannot be deleted
// @Tags Contacts
// @Produce json
// @Security BearerAuth
// @Param id path int true "Contact ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /contacts/{id} [delete]
func (h *ContactHandler) Delete(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}

	if err := h.contactService.Delete(c.UserContext(), id); err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Contact deleted successfully", nil)
}
