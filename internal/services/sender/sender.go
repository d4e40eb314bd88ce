// Package sender отправляет письма с кодами подтверждения из очереди уведомлений.
package sender

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/magabrotheeeer/mystery-message/internal/lib/sl"
	"github.com/magabrotheeeer/mystery-message/internal/lib/smtp"
	"github.com/magabrotheeeer/mystery-message/internal/models"
)

const verificationSubject = "Mystery Message Verification Code"

// ErrInvalidJob возвращается, если тело сообщения из очереди не является
// корректным заданием на отправку.
var ErrInvalidJob = errors.New("invalid verification email job")

// Service отправляет письма через SMTP транспорт.
type Service struct {
	transport smtp.TransportInterface
	log       *slog.Logger
}

// New создает новый экземпляр Service.
func New(log *slog.Logger, transport smtp.TransportInterface) *Service {
	return &Service{
		transport: transport,
		log:       log,
	}
}

// SendVerificationEmail разбирает задание из очереди и отправляет письмо с кодом.
func (s *Service) SendVerificationEmail(ctx context.Context, body []byte) error {
	const op = "services.sender.SendVerificationEmail"
	log := s.log.With(slog.String("op", op))

	var job models.VerificationEmail
	if err := json.Unmarshal(body, &job); err != nil {
		log.Error("failed to unmarshal message body", sl.Err(err))
		return fmt.Errorf("%s: %w: %v", op, ErrInvalidJob, err)
	}
	if job.Email == "" || job.Code == "" {
		log.Error("verification job without email or code")
		return fmt.Errorf("%s: %w", op, ErrInvalidJob)
	}

	if err := s.sendEmail(ctx, []string{job.Email}, verificationSubject, verificationBody(job)); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func verificationBody(job models.VerificationEmail) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Hello %s,\r\n\r\n", job.Username)
	b.WriteString("Thank you for registering. Please use the following verification code to complete your registration:\r\n\r\n")
	fmt.Fprintf(&b, "%s\r\n\r\n", job.Code)
	if !job.ExpiresAt.IsZero() {
		fmt.Fprintf(&b, "The code is valid until %s.\r\n\r\n", job.ExpiresAt.UTC().Format(time.RFC1123))
	}
	b.WriteString("If you did not request this code, please ignore this email.\r\n")
	return b.String()
}

func (s *Service) sendEmail(ctx context.Context, to []string, subject, bodyText string) error {
	from := s.transport.GetSMTPUser()
	msg := strings.Join([]string{
		"From: " + from,
		"To: " + strings.Join(to, ", "),
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=\"UTF-8\"",
		"",
		bodyText,
	}, "\r\n")

	client, err := s.transport.Connect(ctx)
	if err != nil {
		s.log.Error("failed to connect to SMTP server", sl.Err(err))
		return err
	}
	defer func() {
		if closeErr := client.Close(); closeErr != nil {
			s.log.Debug("failed to close SMTP client", sl.Err(closeErr))
		}
	}()

	if err := client.Mail(from); err != nil {
		s.log.Error("failed to set MAIL FROM", slog.String("from", from), sl.Err(err))
		return err
	}

	for _, addr := range to {
		if err := client.Rcpt(addr); err != nil {
			s.log.Error("failed to set RCPT TO", slog.String("recipient", addr), sl.Err(err))
			return err
		}
	}

	wc, err := client.Data()
	if err != nil {
		s.log.Error("failed to get Data writer", sl.Err(err))
		return err
	}

	if _, err = wc.Write([]byte(msg)); err != nil {
		s.log.Error("failed to write email body", sl.Err(err))
		return err
	}

	if err = wc.Close(); err != nil {
		s.log.Error("failed to close Data writer", sl.Err(err))
		return err
	}

	if err = client.Quit(); err != nil {
		s.log.Error("failed to quit SMTP client", sl.Err(err))
		return err
	}

	s.log.Info("email sent successfully", slog.Any("to", to))
	return nil
}
