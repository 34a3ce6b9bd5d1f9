package services

import (
	"encoding/json"
	"fmt"
	"time"

	"atlas/internal/models"
	"atlas/internal/repositories"

	"github.com/go-playground/validator/v10"
)

// MessagePublisher publishes a message body to the broker. Satisfied by
// the RabbitMQ client.
type MessagePublisher interface {
	Publish(exchange, routingKey string, body []byte) error
}

// ContactRoutingKey is the queue contact messages are relayed to.
const ContactRoutingKey = "contact_queue"

// ContactService relays "contact us" messages from authenticated users
// to the support queue.
type ContactService struct {
	userRepo  repositories.UserRepository
	publisher MessagePublisher
	validate  *validator.Validate
}

// NewContactService creates a new ContactService.
func NewContactService(userRepo repositories.UserRepository, publisher MessagePublisher) *ContactService {
	return &ContactService{
		userRepo:  userRepo,
		publisher: publisher,
		validate:  validator.New(),
	}
}

// SendMessage validates the message, resolves the sender from the
// authenticated user and publishes the message to the support queue.
func (s *ContactService) SendMessage(userID, subject, message string) error {
	contact := models.ContactMessage{
		Subject: subject,
		Message: message,
		SentAt:  time.Now(),
	}
	if err := s.validate.Struct(contact); err != nil {
		return fmt.Errorf("%w: subject and message are required", ErrValidation)
	}

	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return fmt.Errorf("%w: user not found, please sign up", ErrNotFound)
	}
	contact.SenderName = user.Name
	contact.SenderEmail = user.Email

	body, err := json.Marshal(contact)
	if err != nil {
		return fmt.Errorf("failed to marshal contact message: %w", err)
	}
	if err := s.publisher.Publish("", ContactRoutingKey, body); err != nil {
		return fmt.Errorf("failed to relay contact message: %w", err)
	}
	return nil
}
