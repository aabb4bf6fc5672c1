package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"lawdesk-api/internal/core/domain"
	"lawdesk-api/internal/core/services"
	"lawdesk-api/internal/pkg/pagination"
	"lawdesk-api/internal/pkg/response"
)

// PaymentHandler handles the ledger endpoints
type PaymentHandler struct {
	paymentService *services.PaymentService
	processService *services.ProcessService
}

// NewPaymentHandler creates a new payment handler
func NewPaymentHandler(paymentService *services.PaymentService, processService *services.ProcessService) *PaymentHandler {
	return &PaymentHandler{
		paymentService: paymentService,
		processService: processService,
	}
}

// visible checks that the caller may see the case a row belongs to
func (h *PaymentHandler) visible(c *fiber.Ctx, processID uint) error {
	_, err := h.processService.Get(c.UserContext(), actor(c), processID)
	return err
}

func (h *PaymentHandler) listInput(c *fiber.Ctx) (services.PaymentListInput, error) {
	var input services.PaymentListInput
	var err error
	if input.ProcessID, err = queryID(c, "process_id"); err != nil {
		return input, err
	}
	if input.ContactID, err = queryID(c, "contact_id"); err != nil {
		return input, err
	}
	if input.From, err = queryDate(c, "from"); err != nil {
		return input, err
	}
	if input.To, err = queryDate(c, "to"); err != nil {
		return input, err
	}
	input.Type = c.Query("payment_type")
	input.Status = c.Query("status")
	input.Nature = c.Query("nature")
	return input, nil
}

// ListByProcess handles listing the ledger rows of a case
// @Summary List case payments
// @Tags Payments
// @Produce json
// @Security BearerAuth
// @Param id path int true "Process ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /processes/{id}/payments [get]
func (h *PaymentHandler) ListByProcess(c *fiber.Ctx) error {
	processID, err := paramID(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}

	payments, err := h.paymentService.ListByProcess(c.UserContext(), processID)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Payments retrieved successfully", payments)
}

// Create handles creating a payment or an installment plan
// @Summary Create payment
// @Description Installment payments create a plan with one row per installment under one transaction group
// @Tags Payments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Process ID"
// @Param body body services.CreatePaymentInput true "Payment data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /processes/{id}/payments [post]
func (h *PaymentHandler) Create(c *fiber.Ctx) error {
	processID, err := paramID(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}

	var input services.CreatePaymentInput
	if err := bind(c, &input); err != nil {
		return response.FromError(c, err)
	}

	result, err := h.paymentService.CreatePlan(c.UserContext(), actor(c), processID, &input)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Created(c, "Payment created successfully", result)
}

// Schedule handles the plain text payment schedule of a case
// @Summary Payment schedule
// @Description pt-BR description of the income obligations, for contract templates
// @Tags Payments
// @Produce json
// @Security BearerAuth
// @Param id path int true "Process ID"
// @Success 200 {object} response.Response
// @Router /processes/{id}/payments/schedule [get]
func (h *PaymentHandler) Schedule(c *fiber.Ctx) error {
	processID, err := paramID(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}

	text, err := h.paymentService.Schedule(c.UserContext(), processID)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Schedule generated", fiber.Map{"schedule": text})
}

// List handles the filtered ledger listing
// @Summary List payments
// @Description Rows are filtered by due date range, case, client, type, status and nature
// @Tags Payments
// @Produce json
// @Security BearerAuth
// @Param from query string false "Due date from (YYYY-MM-DD)"
// @Param to query string false "Due date to (YYYY-MM-DD)"
// @Param process_id query int false "Process ID"
// @Param contact_id query int false "Client contact ID"
// @Param payment_type query string false "lump_sum, installment or professional_fee"
// @Param status query string false "pending, paid, failed, refunded or overdue"
// @Param nature query string false "income or expense"
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(20)
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /payments [get]
func (h *PaymentHandler) List(c *fiber.Ctx) error {
	input, err := h.listInput(c)
	if err != nil {
		return response.FromError(c, err)
	}
	page := pagination.GetParams(c)

	payments, total, err := h.paymentService.List(c.UserContext(), actor(c), input, page)
	if err != nil {
		return response.FromError(c, err)
	}
	return paginated(c, "Payments retrieved successfully", payments, page, total)
}

// Summary handles the ledger totals
// @Summary Payment summary
// @Description Totals over exactly the rows the listing returns for the same filters
// @Tags Payments
// @Produce json
// @Security BearerAuth
// @Param from query string false "Due date from (YYYY-MM-DD)"
// @Param to query string false "Due date to (YYYY-MM-DD)"
// @Param process_id query int false "Process ID"
// @Param contact_id query int false "Client contact ID"
// @Param payment_type query string false "lump_sum, installment or professional_fee"
// @Param status query string false "pending, paid, failed, refunded or overdue"
// @Param nature query string false "income or expense"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /payments/summary [get]
func (h *PaymentHandler) Summary(c *fiber.Ctx) error {
	input, err := h.listInput(c)
	if err != nil {
		return response.FromError(c, err)
	}

	summary, err := h.paymentService.Summary(c.UserContext(), actor(c), input)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Summary retrieved successfully", summary)
}

// Get handles getting one ledger row
// @Summary Get payment
// @Tags Payments
// @Produce json
// @Security BearerAuth
// @Param id path int true "Payment ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /payments/{id} [get]
func (h *PaymentHandler) Get(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}

	payment, err := h.paymentService.Get(c.UserContext(), id)
	if err != nil {
		return response.FromError(c, err)
	}
	if err := h.visible(c, payment.ProcessID); err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Payment retrieved successfully", payment)
}

// Plan handles an installment plan with its rows
// @Summary Get installment plan
// @Tags Payments
// @Produce json
// @Security BearerAuth
// @Param groupId path string true "Transaction group ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /payments/plans/{groupId} [get]
func (h *PaymentHandler) Plan(c *fiber.Ctx) error {
	groupID, err := uuid.Parse(c.Params("groupId"))
	if err != nil {
		return response.FromError(c, domain.Validation("invalid groupId"))
	}

	plan, err := h.paymentService.ListPlan(c.UserContext(), groupID)
	if err != nil {
		return response.FromError(c, err)
	}
	if err := h.visible(c, plan.Plan.ProcessID); err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Plan retrieved successfully", plan)
}

// Update handles changing one row, or regenerating its plan
// @Summary Update payment
// @Description Changing number_of_installments on a plan row rebuilds the whole plan
// @Tags Payments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Payment ID"
// @Param body body services.UpdatePaymentInput true "Changes"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /payments/{id} [put]
func (h *PaymentHandler) Update(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}

	var input services.UpdatePaymentInput
	if err := bind(c, &input); err != nil {
		return response.FromError(c, err)
	}

	current, err := h.paymentService.Get(c.UserContext(), id)
	if err != nil {
		return response.FromError(c, err)
	}
	if err := h.visible(c, current.ProcessID); err != nil {
		return response.FromError(c, err)
	}

	result, err := h.paymentService.Update(c.UserContext(), actor(c), id, &input)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Payment updated successfully", result)
}

// Delete handles deleting a row, or its whole plan
// @Summary Delete payment
// @Description Deleting a plan row deletes every row of the plan
// @Tags Payments
// @Produce json
// @Security BearerAuth
// @Param id path int true "Payment ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /payments/{id} [delete]
func (h *PaymentHandler) Delete(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}

	current, err := h.paymentService.Get(c.UserContext(), id)
	if err != nil {
		return response.FromError(c, err)
	}
	if err := h.visible(c, current.ProcessID); err != nil {
		return response.FromError(c, err)
	}

	if err := h.paymentService.Delete(c.UserContext(), actor(c), id); err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Payment deleted successfully", nil)
}
