package handlers

import (
	"github.com/gofiber/fiber/v2"

	"lawdesk-api/internal/core/services"
	"lawdesk-api/internal/pkg/response"
)

// ExpenseHandler handles the expenses of a case
type ExpenseHandler struct {
	expenseService *services.ExpenseService
}

// NewExpenseHandler creates a new expense handler
func NewExpenseHandler(expenseService *services.ExpenseService) *ExpenseHandler {
	return &ExpenseHandler{expenseService: expenseService}
}

// List handles listing the expenses of a case
// @Summary List expenses
// @Tags Expenses
// @Produce json
// @Security BearerAuth
// @Param id path int true "Process ID"
// @Success 200 {object} response.Response
// @Router /processes/{id}/expenses [get]
func (h *ExpenseHandler) List(c *fiber.Ctx) error {
	processID, err := paramID(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}

	expenses, err := h.expenseService.List(c.UserContext(), processID)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Expenses retrieved successfully", expenses)
}

// Create handles recording an expense
// @Summary Create expense
// @Tags Expenses
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Process ID"
// @Param body body services.ExpenseInput true "Expense data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /processes/{id}/expenses [post]
func (h *ExpenseHandler) Create(c *fiber.Ctx) error {
	processID, err := paramID(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}

	var input services.ExpenseInput
	if err := bind(c, &input); err != nil {
		return response.FromError(c, err)
	}

	expense, err := h.expenseService.Create(c.UserContext(), actor(c), processID, &input)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Created(c, "Expense created successfully", expense)
}

// Update handles changing an expense
// @Summary Update expense
// @Tags Expenses
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Process ID"
// @Param expenseId path int true "Expense ID"
// @Param body body services.ExpenseInput true "Expense data"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /processes/{id}/expenses/{expenseId} [put]
func (h *ExpenseHandler) Update(c *fiber.Ctx) error {
	processID, err := paramID(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}
	expenseID, err := paramID(c, "expenseId")
	if err != nil {
		return response.FromError(c, err)
	}

	var input services.ExpenseInput
	if err := bind(c, &input); err != nil {
		return response.FromError(c, err)
	}

	expense, err := h.expenseService.Update(c.UserContext(), processID, expenseID, &input)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Expense updated successfully", expense)
}

// Delete handles deleting an expense
// @Summary Delete expense
// @Tags Expenses
// @Produce json
// @Security BearerAuth
// @Param id path int true "Process ID"
// @Param expenseId path int true "Expense ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /processes/{id}/expenses/{expenseId} [delete]
func (h *ExpenseHandler) Delete(c *fiber.Ctx) error {
	processID, err := paramID(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}
	expenseID, err := paramID(c, "expenseId")
	if err != nil {
		return response.FromError(c, err)
	}

	if err := h.expenseService.Delete(c.UserContext(), processID, expenseID); err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Expense deleted successfully", nil)
}
