package handlers

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"lawdesk-api/internal/core/domain"
	"lawdesk-api/internal/core/services"
	"lawdesk-api/internal/pkg/pagination"
	"lawdesk-api/internal/pkg/response"
	"lawdesk-api/internal/pkg/validator"
)

// paramID reads a positive numeric path parameter
func paramID(c *fiber.Ctx, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Params(name), 10, 32)
	if err != nil || id == 0 {
		return 0, domain.Validation("invalid " + name)
	}
	return uint(id), nil
}

// queryID reads an optional numeric query parameter
func queryID(c *fiber.Ctx, name string) (*uint, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return nil, domain.Validation("invalid query parameter",
			domain.FieldError{Field: name, Message: "must be a number"})
	}
	v := uint(id)
	return &v, nil
}

// queryDate reads an optional YYYY-MM-DD query parameter
func queryDate(c *fiber.Ctx, name string) (*time.Time, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(domain.DateLayout, raw)
	if err != nil {
		return nil, domain.Validation("invalid query parameter",
			domain.FieldError{Field: name, Message: "must be a date (YYYY-MM-DD)"})
	}
	return &t, nil
}

// queryBool reads an optional boolean query parameter
func queryBool(c *fiber.Ctx, name string) *bool {
	raw := c.Query(name)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return nil
	}
	return &v
}

// bind parses the JSON body into v and validates its tags
func bind(c *fiber.Ctx, v interface{}) error {
	if err := c.BodyParser(v); err != nil {
		return domain.Validation("invalid request body")
	}
	return validator.Struct(v)
}

// actor identifies the authenticated caller
func actor(c *fiber.Ctx) services.Actor {
	userID, _ := c.Locals("userID").(uint)
	return services.Actor{UserID: userID, IP: c.IP()}
}

func paginated(c *fiber.Ctx, message string, data interface{}, page *pagination.Params, total int64) error {
	return response.Success(c, message, pagination.NewResponse(data, page, total))
}
