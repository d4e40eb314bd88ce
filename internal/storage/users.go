package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/mystery-message/internal/lib/apperr"
	"github.com/magabrotheeeer/mystery-message/internal/models"
)

const userColumns = `id, username, email, password_hash, verify_code, verify_code_expiry,
	is_verified, is_accepting_messages, created_at`

// CreateUser вставляет нового неподтверждённого пользователя и возвращает сохранённую запись.
func (s *Storage) CreateUser(ctx context.Context, user models.User) (*models.User, error) {
	const op = "storage.CreateUser"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	query := `INSERT INTO users (username, email, password_hash, verify_code, verify_code_expiry)
			  VALUES ($1, $2, $3, $4, $5)
			  RETURNING ` + userColumns
	var created models.User
	err := s.DB.GetContext(ctx, &created, query,
		user.Username, user.Email, user.PasswordHash, user.VerifyCode, user.VerifyCodeExpiry)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapUniqueViolation(err))
	}
	return &created, nil
}

// GetUserByID возвращает пользователя по идентификатору.
func (s *Storage) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	const op = "storage.GetUserByID"
	if _, err := uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("%s: %w", op, apperr.ErrUserNotFound)
	}
	return s.getUser(ctx, op, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

// GetUserByUsername возвращает пользователя по точному совпадению имени.
func (s *Storage) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	const op = "storage.GetUserByUsername"
	return s.getUser(ctx, op, `SELECT `+userColumns+` FROM users WHERE username = $1`, username)
}

// GetUserByEmail возвращает пользователя по адресу почты.
func (s *Storage) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	const op = "storage.GetUserByEmail"
	return s.getUser(ctx, op, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
}

// GetUserByIdentifier ищет пользователя по имени или почте.
// Если идентификатор совпадает с именем одного пользователя и почтой другого,
// возвращается совпадение по имени.
func (s *Storage) GetUserByIdentifier(ctx context.Context, identifier string) (*models.User, error) {
	const op = "storage.GetUserByIdentifier"
	query := `SELECT ` + userColumns + ` FROM users
			  WHERE username = $1 OR email = $1
			  ORDER BY (username = $1) DESC
			  LIMIT 1`
	return s.getUser(ctx, op, query, identifier)
}

func (s *Storage) getUser(ctx context.Context, op, query string, args ...any) (*models.User, error) {
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}
	var user models.User
	if err := s.DB.GetContext(ctx, &user, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, apperr.ErrUserNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &user, nil
}

// UpdateUnverifiedUser перезаписывает имя, хэш пароля и код подтверждения
// неподтверждённого пользователя. Подтверждённые записи не изменяются.
func (s *Storage) UpdateUnverifiedUser(ctx context.Context, id, username, passwordHash, code string,
	expiry time.Time) (*models.User, error) {
	const op = "storage.UpdateUnverifiedUser"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	query := `UPDATE users
			  SET username = $2, password_hash = $3, verify_code = $4, verify_code_expiry = $5
			  WHERE id = $1 AND is_verified = FALSE
			  RETURNING ` + userColumns
	var updated models.User
	err := s.DB.GetContext(ctx, &updated, query, id, username, passwordHash, code, expiry)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, apperr.ErrUserNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, mapUniqueViolation(err))
	}
	return &updated, nil
}

// DeleteUnverifiedUser удаляет неподтверждённую запись вместе с её сообщениями.
// Возвращает количество удалённых строк.
func (s *Storage) DeleteUnverifiedUser(ctx context.Context, id string) (int, error) {
	const op = "storage.DeleteUnverifiedUser"
	if err := checkCtx(ctx, op); err != nil {
		return 0, err
	}

	result, err := s.DB.ExecContext(ctx, `DELETE FROM users WHERE id = $1 AND is_verified = FALSE`, id)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

// DeleteStaleUnverified удаляет неподтверждённые записи, код которых истёк раньше before.
func (s *Storage) DeleteStaleUnverified(ctx context.Context, before time.Time) (int, error) {
	const op = "storage.DeleteStaleUnverified"
	if err := checkCtx(ctx, op); err != nil {
		return 0, err
	}

	result, err := s.DB.ExecContext(ctx,
		`DELETE FROM users WHERE is_verified = FALSE AND verify_code_expiry < $1`, before)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

// MarkVerified помечает пользователя подтверждённым.
func (s *Storage) MarkVerified(ctx context.Context, id string) error {
	const op = "storage.MarkVerified"
	if err := checkCtx(ctx, op); err != nil {
		return err
	}

	result, err := s.DB.ExecContext(ctx, `UPDATE users SET is_verified = TRUE WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%s: %w", op, apperr.ErrUserNotFound)
	}
	return nil
}

// SetAcceptingMessages сохраняет флаг приёма сообщений и возвращает обновлённую запись.
func (s *Storage) SetAcceptingMessages(ctx context.Context, id string, accepting bool) (*models.User, error) {
	const op = "storage.SetAcceptingMessages"
	if _, err := uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("%s: %w", op, apperr.ErrUserNotFound)
	}
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	query := `UPDATE users SET is_accepting_messages = $2
			  WHERE id = $1
			  RETURNING ` + userColumns
	var updated models.User
	if err := s.DB.GetContext(ctx, &updated, query, id, accepting); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, apperr.ErrUserNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &updated, nil
}

func mapUniqueViolation(err error) error {
	constraint, ok := uniqueConstraint(err)
	if !ok {
		return err
	}
	switch constraint {
	case usernameConstraint:
		return apperr.Wrap(apperr.KindConflict, apperr.ErrUsernameTaken.Message, err)
	case emailConstraint:
		return apperr.Wrap(apperr.KindConflict, apperr.ErrEmailTaken.Message, err)
	default:
		return err
	}
}
