// Package apperr содержит типизированные ошибки бизнес-логики.
//
// Каждая ошибка несёт Kind, по которому HTTP-слой выбирает статус ответа,
// и сообщение, безопасное для показа клиенту.
package apperr

import (
	"errors"
	"fmt"
)

// Kind классифицирует ошибку.
type Kind string

const (
	KindValidation Kind = "VALIDATION"
	KindNotFound   Kind = "NOT_FOUND"
	KindConflict   Kind = "CONFLICT"
	KindAuth       Kind = "AUTH"
	KindGateClosed Kind = "GATE_CLOSED"
	KindInternal   Kind = "INTERNAL"
)

// AppError описывает ошибку с классом и клиентским сообщением.
type AppError struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error { return e.Cause }

// Is сравнивает ошибки по классу и сообщению, чтобы обёрнутые копии
// sentinel-ошибок находились через errors.Is.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Kind == t.Kind && e.Message == t.Message
}

// New создаёт AppError без причины.
func New(kind Kind, msg string) *AppError {
	return &AppError{Kind: kind, Message: msg}
}

// Wrap создаёт AppError с причиной.
func Wrap(kind Kind, msg string, cause error) *AppError {
	return &AppError{Kind: kind, Message: msg, Cause: cause}
}

// Internal оборачивает ошибку инфраструктуры.
func Internal(msg string, cause error) *AppError {
	return Wrap(KindInternal, msg, cause)
}

// KindOf возвращает класс ошибки. Для ошибок вне пакета возвращается KindInternal.
func KindOf(err error) Kind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// MessageOf возвращает клиентское сообщение ошибки.
// Для внутренних ошибок возвращается fallback, детали наружу не уходят.
func MessageOf(err error, fallback string) string {
	var appErr *AppError
	if errors.As(err, &appErr) && appErr.Kind != KindInternal {
		return appErr.Message
	}
	return fallback
}

// Classify оставляет классифицированную ошибку как есть, а прочие
// оборачивает во внутреннюю с сообщением msg.
func Classify(err error, msg string) error {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return err
	}
	return Internal(msg, err)
}
