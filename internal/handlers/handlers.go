package handlers

import (
	"errors"

	"atlas/internal/services"

	"github.com/gofiber/fiber/v2"
)

// errorResponse maps service errors to HTTP statuses and renders the
// human-readable message.
func errorResponse(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	switch {
	case errors.Is(err, services.ErrValidation):
		status = fiber.StatusBadRequest
	case errors.Is(err, services.ErrNotFound):
		status = fiber.StatusNotFound
	case errors.Is(err, services.ErrNotAuthorized):
		status = fiber.StatusUnauthorized
	}
	return c.Status(status).JSON(fiber.Map{
		"message": err.Error(),
	})
}

// currentUserID reads the authenticated user ID placed in the request
// context by the auth middleware.
func currentUserID(c *fiber.Ctx) (string, bool) {
	userID, ok := c.Locals("user_id").(string)
	return userID, ok && userID != ""
}

// formValue returns a pointer to the form field value, or nil when the
// field was not present in the request at all. Presence matters for
// partial updates.
func formValue(c *fiber.Ctx, key string) *string {
	if form, err := c.MultipartForm(); err == nil {
		if vals, ok := form.Value[key]; ok && len(vals) > 0 {
			return &vals[0]
		}
		return nil
	}
	if c.Request().PostArgs().Has(key) {
		v := string(c.Request().PostArgs().Peek(key))
		return &v
	}
	return nil
}
