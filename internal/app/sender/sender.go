// Package sender собирает воркер, который отправляет письма с кодами подтверждения.
package sender

import (
	"context"
	"errors"
	"log/slog"

	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/mystery-message/internal/config"
	"github.com/magabrotheeeer/mystery-message/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/mystery-message/internal/lib/sl"
	"github.com/magabrotheeeer/mystery-message/internal/lib/smtp"
	senderservice "github.com/magabrotheeeer/mystery-message/internal/services/sender"
)

// App читает задания из очереди и отправляет письма через SMTP.
type App struct {
	conn          *amqp.Connection
	ch            *amqp.Channel
	senderService *senderservice.Service
	logger        *slog.Logger
}

// New подключается к RabbitMQ и объявляет очереди.
func New(_ context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	conn, err := rabbitmq.Connect(cfg.RabbitMQURL, cfg.RabbitMQMaxRetries, cfg.RabbitMQRetryDelay)
	if err != nil {
		return nil, err
	}

	ch, err := rabbitmq.SetupChannel(conn, rabbitmq.GetNotificationQueues())
	if err != nil {
		_ = conn.Close()
		return nil, err
	}

	transport := smtp.NewTransport(cfg.SMTP, logger)

	return &App{
		conn:          conn,
		ch:            ch,
		senderService: senderservice.New(logger, transport),
		logger:        logger,
	}, nil
}

// Run обрабатывает задания до отмены ctx.
func (a *App) Run(ctx context.Context) error {
	err := rabbitmq.ConsumerMessage(ctx, a.logger, a.ch, rabbitmq.VerificationQueue, a.handle(ctx))
	if err != nil {
		a.logger.Error("failed to start verification consumer", sl.Err(err))
		return err
	}

	<-ctx.Done()
	a.logger.Info("Sender service shutting down gracefully")

	if err := a.ch.Close(); err != nil {
		a.logger.Error("failed to close channel", sl.Err(err))
	}

	if err := a.conn.Close(); err != nil {
		a.logger.Error("failed to close connection", sl.Err(err))
	}

	return nil
}

// handle отбрасывает битые задания, чтобы они не возвращались в очередь.
func (a *App) handle(ctx context.Context) func([]byte) error {
	return func(body []byte) error {
		err := a.senderService.SendVerificationEmail(ctx, body)
		if errors.Is(err, senderservice.ErrInvalidJob) {
			a.logger.Warn("dropping invalid verification job", sl.Err(err))
			return nil
		}
		return err
	}
}
