package handlers

import (
	"log"

	"atlas/internal/services"

	"github.com/gofiber/fiber/v2"
)

// ContactHandler handles "contact us" requests.
type ContactHandler struct {
	service *services.ContactService
}

// NewContactHandler creates a new ContactHandler.
func NewContactHandler(service *services.ContactService) *ContactHandler {
	return &ContactHandler{
		service: service,
	}
}

// RegisterRoutes registers the contact route. Requires authentication.
func (h *ContactHandler) RegisterRoutes(router fiber.Router) {
	router.Post("/contactus", h.HandleContactUs)
}

// ContactRequest represents the request body for a contact message.
type ContactRequest struct {
	Subject string `json:"subject"`
	Message string `json:"message"`
}

// HandleContactUs relays the caller's message to the support queue.
func (h *ContactHandler) HandleContactUs(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"message": "User not authenticated",
		})
	}

	var req ContactRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing contact request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	if err := h.service.SendMessage(userID, req.Subject, req.Message); err != nil {
		log.Printf("Error relaying contact message from user %s: %v", userID, err)
		return errorResponse(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "Email sent successfully. Thank you for contacting us!",
	})
}
