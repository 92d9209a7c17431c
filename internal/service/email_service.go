package service

import (
	"context"
	"fmt"
	"html"
	"log"

	"github.com/resend/resend-go/v2"
)

// EmailService отправляет транзакционные письма
type EmailService interface {
	SendWelcome(ctx context.Context, toEmail, username string) error
}

// NoopEmailService используется, когда отправка писем не настроена
type NoopEmailService struct{}

func (s *NoopEmailService) SendWelcome(ctx context.Context, toEmail, username string) error {
	log.Printf("[EmailService] Отправка писем не настроена, приветствие для %s пропущено", username)
	return nil
}

// ResendEmailService отправляет письма через Resend REST API.
// Повторных попыток нет: письмо необязательно.
type ResendEmailService struct {
	from   string
	client *resend.Client
}

// NewResendEmailService создает сервис отправки писем
func NewResendEmailService(apiKey, from string) (*ResendEmailService, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("resend api key is required")
	}
	if from == "" {
		return nil, fmt.Errorf("email from is required")
	}
	return &ResendEmailService{
		from:   from,
		client: resend.NewClient(apiKey),
	}, nil
}

// SendWelcome отправляет приветственное письмо после регистрации
func (s *ResendEmailService) SendWelcome(ctx context.Context, toEmail, username string) error {
	if toEmail == "" {
		return fmt.Errorf("toEmail is required")
	}

	params := &resend.SendEmailRequest{
		From:    s.from,
		To:      []string{toEmail},
		Subject: "Welcome to MindQuest",
		Text:    fmt.Sprintf("Hi %s, your MindQuest account is ready. Pick a quiz and test your knowledge!", username),
		Html:    fmt.Sprintf("<p>Hi <strong>%s</strong>,</p><p>Your MindQuest account is ready. Pick a quiz and test your knowledge!</p>", html.EscapeString(username)),
	}

	if _, err := s.client.Emails.SendWithOptions(ctx, params, &resend.SendEmailOptions{}); err != nil {
		return fmt.Errorf("resend send failed: %w", err)
	}
	return nil
}
