// Package scheduler периодически удаляет неподтверждённые аккаунты,
// код которых давно истёк.
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/mystery-message/internal/lib/sl"
)

// UserRepository удаляет устаревшие неподтверждённые записи.
type UserRepository interface {
	DeleteStaleUnverified(ctx context.Context, before time.Time) (int, error)
}

// Service чистит неподтверждённые аккаунты.
type Service struct {
	repo      UserRepository
	retention time.Duration
	log       *slog.Logger
	now       func() time.Time
}

// NewService создает сервис. Запись удаляется, когда с момента истечения
// её кода прошло больше retention.
func NewService(repo UserRepository, retention time.Duration, log *slog.Logger) *Service {
	return &Service{
		repo:      repo,
		retention: retention,
		log:       log,
		now:       time.Now,
	}
}

// PurgeStaleUnverified удаляет устаревшие записи один раз и возвращает их количество.
func (s *Service) PurgeStaleUnverified(ctx context.Context) (int, error) {
	const op = "services.scheduler.PurgeStaleUnverified"
	deleted, err := s.repo.DeleteStaleUnverified(ctx, s.now().Add(-s.retention))
	if err != nil {
		s.log.Error("failed to purge unverified users", slog.String("op", op), sl.Err(err))
		return 0, err
	}
	if deleted > 0 {
		s.log.Info("purged unverified users", slog.String("op", op), slog.Int("count", deleted))
	}
	return deleted, nil
}

// Run выполняет очистку сразу и затем каждые interval до отмены ctx.
func (s *Service) Run(ctx context.Context, interval time.Duration) {
	s.log.Info("starting unverified users cleanup", slog.Duration("interval", interval))
	_, _ = s.PurgeStaleUnverified(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_, _ = s.PurgeStaleUnverified(ctx)
		}
	}
}
