package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ivansvit/upgraded-blog/app/mailer"
	"github.com/ivansvit/upgraded-blog/app/models"
)

var ErrFeedbackNotDelivered = errors.New("feedback could not be delivered")

// FeedbackService relays contact form submissions by email
type FeedbackService struct {
	sender  mailer.Sender
	from    string
	to      string
	timeout time.Duration
}

// NewFeedbackService creates a FeedbackService sending from one address to
// another. Each delivery is bounded by timeout.
func NewFeedbackService(sender mailer.Sender, from, to string, timeout time.Duration) *FeedbackService {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &FeedbackService{sender: sender, from: from, to: to, timeout: timeout}
}

// Submit validates the form and sends it synchronously. Delivery failures
// wrap ErrFeedbackNotDelivered.
func (s *FeedbackService) Submit(ctx context.Context, form models.ContactForm) error {
	if err := form.Validate(); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	err := s.sender.Send(ctx, mailer.Message{
		From:    s.from,
		To:      s.to,
		ReplyTo: form.Email,
		Subject: "New feedback",
		Body:    FeedbackBody(form),
	})
	if err != nil {
		return fmt.Errorf("%w: %w", ErrFeedbackNotDelivered, err)
	}
	return nil
}

// FeedbackBody formats the contact form fields as the mail body.
func FeedbackBody(form models.ContactForm) string {
	return fmt.Sprintf("Name: %s\nEmail: %s\nPhone Number: %s\nMessage: %s",
		form.Name, form.Email, form.Phone, form.Message)
}
