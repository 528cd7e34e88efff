package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/resend/resend-go/v2"
)

// EmailService sends transactional emails.
type EmailService interface {
	// SendSubmissionConfirmation отправляет респонденту подтверждение
	// с персональной ссылкой на редактирование ответа
	SendSubmissionConfirmation(toEmail, formTitle, editURL string) error
	// SendNewResponseAlert уведомляет владельца формы о новом ответе
	SendNewResponseAlert(toEmail, formTitle string, responseID uint) error
	// SendCollaborationInvite уведомляет пользователя о выданной роли на форме
	SendCollaborationInvite(toEmail, formTitle, role string) error
}

// NoopEmailService is used when email notifications are disabled.
type NoopEmailService struct{}

func (s *NoopEmailService) SendSubmissionConfirmation(toEmail, formTitle, editURL string) error {
	log.Printf("[EmailService] noop submission confirmation to=%s form=%q", toEmail, formTitle)
	return nil
}

func (s *NoopEmailService) SendNewResponseAlert(toEmail, formTitle string, responseID uint) error {
	log.Printf("[EmailService] noop new response alert to=%s form=%q response=%d", toEmail, formTitle, responseID)
	return nil
}

func (s *NoopEmailService) SendCollaborationInvite(toEmail, formTitle, role string) error {
	log.Printf("[EmailService] noop collaboration invite to=%s form=%q role=%s", toEmail, formTitle, role)
	return nil
}

// ResendEmailService sends emails via Resend REST API.
type ResendEmailService struct {
	from   string
	client *resend.Client
}

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

func (s *ResendEmailService) SendSubmissionConfirmation(toEmail, formTitle, editURL string) error {
	if toEmail == "" {
		return fmt.Errorf("toEmail is required")
	}
	params := &resend.SendEmailRequest{
		From:    s.from,
		To:      []string{toEmail},
		Subject: fmt.Sprintf("Ответ на форму %q получен", formTitle),
		Text:    fmt.Sprintf("Ваш ответ на форму %q сохранен.\nИзменить ответ: %s\nСсылка действует 24 часа.", formTitle, editURL),
		Html:    fmt.Sprintf("<p>Ваш ответ на форму <strong>%s</strong> сохранен.</p><p><a href=%q>Изменить ответ</a> (ссылка действует 24 часа).</p>", formTitle, editURL),
	}
	return s.sendWithRetry(params)
}

func (s *ResendEmailService) SendNewResponseAlert(toEmail, formTitle string, responseID uint) error {
	if toEmail == "" {
		return fmt.Errorf("toEmail is required")
	}
	params := &resend.SendEmailRequest{
		From:    s.from,
		To:      []string{toEmail},
		Subject: fmt.Sprintf("Новый ответ на форму %q", formTitle),
		Text:    fmt.Sprintf("На форму %q поступил новый ответ #%d.", formTitle, responseID),
		Html:    fmt.Sprintf("<p>На форму <strong>%s</strong> поступил новый ответ #%d.</p>", formTitle, responseID),
	}
	return s.sendWithRetry(params)
}

func (s *ResendEmailService) SendCollaborationInvite(toEmail, formTitle, role string) error {
	if toEmail == "" {
		return fmt.Errorf("toEmail is required")
	}
	params := &resend.SendEmailRequest{
		From:    s.from,
		To:      []string{toEmail},
		Subject: fmt.Sprintf("Вам открыт доступ к форме %q", formTitle),
		Text:    fmt.Sprintf("Вам выдана роль %s на форме %q.", role, formTitle),
		Html:    fmt.Sprintf("<p>Вам выдана роль <strong>%s</strong> на форме <strong>%s</strong>.</p>", role, formTitle),
	}
	return s.sendWithRetry(params)
}

func (s *ResendEmailService) sendWithRetry(params *resend.SendEmailRequest) error {
	ctx := context.Background()

	var lastErr error
	for attempt := 0; attempt < 3; attempt++ {
		_, err := s.client.Emails.SendWithContext(ctx, params)
		if err == nil {
			return nil
		}
		lastErr = err

		if wait, ok := resendRetryDelay(err, attempt); ok {
			time.Sleep(wait)
			continue
		}

		return fmt.Errorf("resend send failed: %w", err)
	}

	return fmt.Errorf("resend send failed after retries: %w", lastErr)
}

func resendRetryDelay(err error, attempt int) (time.Duration, bool) {
	var rateLimitErr *resend.RateLimitError
	if errors.As(err, &rateLimitErr) {
		if seconds, convErr := strconv.Atoi(strings.TrimSpace(rateLimitErr.RetryAfter)); convErr == nil && seconds > 0 {
			if seconds > 30 {
				seconds = 30
			}
			return time.Duration(seconds) * time.Second, true
		}
		return time.Duration(attempt+1) * time.Second, true
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return time.Duration(attempt+1) * 500 * time.Millisecond, true
	}

	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "timeout") || strings.Contains(msg, "temporar") {
		return time.Duration(attempt+1) * 500 * time.Millisecond, true
	}

	return 0, false
}
