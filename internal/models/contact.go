package models

import "time"

// ContactMessage is a "contact us" message relayed to the support queue.
// Sender details are resolved from the authenticated user, not the request.
type ContactMessage struct {
	Subject     string    `json:"subject" validate:"required"`
	Message     string    `json:"message" validate:"required"`
	SenderName  string    `json:"senderName"`
	SenderEmail string    `json:"senderEmail"`
	SentAt      time.Time `json:"sentAt"`
}
