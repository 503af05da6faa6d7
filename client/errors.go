package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/ignatzorin/eventmarket-backend/internal/pkg/apperror"
)

// Kind - класс ошибки, на который опирается вызывающий код.
type Kind string

const (
	KindUnauthenticated   Kind = "UNAUTHENTICATED"
	KindForbidden         Kind = "FORBIDDEN"
	KindAccountSuspended  Kind = "ACCOUNT_SUSPENDED"
	KindNotFound          Kind = "NOT_FOUND"
	KindConflict          Kind = "CONFLICT"
	KindInvalidTransition Kind = "INVALID_TRANSITION"
	KindInvalidInput      Kind = "INVALID_INPUT"
	KindUnknown           Kind = "UNKNOWN"
)

const defaultErrorMessage = "не удалось выполнить запрос, попробуйте позже"

// Error - ошибка API или локальной проверки.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	// Status - HTTP статус, 0 для ошибок, отклонённых без обращения к серверу.
	Status  int
	Details map[string]string
	Reason  string
	Contact string
}

func (e *Error) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return e.Message
}

// Is сравнивает по Kind, а если у цели задан Code, то и по коду.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Kind != e.Kind {
		return false
	}
	return t.Code == "" || t.Code == e.Code
}

var (
	ErrUnauthenticated   = &Error{Kind: KindUnauthenticated}
	ErrForbidden         = &Error{Kind: KindForbidden}
	ErrAccountSuspended  = &Error{Kind: KindAccountSuspended}
	ErrNotFound          = &Error{Kind: KindNotFound}
	ErrConflict          = &Error{Kind: KindConflict}
	ErrInvalidTransition = &Error{Kind: KindInvalidTransition}
	ErrInvalidInput      = &Error{Kind: KindInvalidInput}
	ErrUnknown           = &Error{Kind: KindUnknown}

	ErrDuplicatePitch   = &Error{Kind: KindConflict, Code: string(apperror.ErrCodeDuplicatePitch)}
	ErrAlreadyReviewed  = &Error{Kind: KindConflict, Code: string(apperror.ErrCodeAlreadyReviewed)}
	ErrPaymentExists    = &Error{Kind: KindConflict, Code: string(apperror.ErrCodePaymentExists)}
	ErrEmailTaken       = &Error{Kind: KindConflict, Code: string(apperror.ErrCodeEmailTaken)}
	ErrInvalidRating    = &Error{Kind: KindInvalidInput, Code: string(apperror.ErrCodeInvalidRating)}
	ErrBadCredentials   = &Error{Kind: KindUnauthenticated, Code: string(apperror.ErrCodeInvalidCredentials)}
	ErrNotAuthenticated = &Error{Kind: KindUnauthenticated, Code: "NO_SESSION"}
)

// KindOf возвращает Kind ошибки, KindUnknown для чужих ошибок.
func KindOf(err error) Kind {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	return KindUnknown
}

func kindForCode(code string, status int) Kind {
	switch apperror.ErrorCode(code) {
	case apperror.ErrCodeUnauthorized, apperror.ErrCodeInvalidCredentials:
		return KindUnauthenticated
	case apperror.ErrCodeForbidden:
		return KindForbidden
	case apperror.ErrCodeAccountSuspended:
		return KindAccountSuspended
	case apperror.ErrCodeNotFound:
		return KindNotFound
	case apperror.ErrCodeConflict, apperror.ErrCodeEmailTaken, apperror.ErrCodeDuplicatePitch,
		apperror.ErrCodeAlreadyReviewed, apperror.ErrCodePaymentExists:
		return KindConflict
	case apperror.ErrCodeInvalidTransition:
		return KindInvalidTransition
	case apperror.ErrCodeValidation, apperror.ErrCodeBadRequest, apperror.ErrCodeInvalidRating:
		return KindInvalidInput
	}

	// код не распознан, ориентируемся на статус
	switch status {
	case http.StatusUnauthorized:
		return KindUnauthenticated
	case http.StatusForbidden:
		return KindForbidden
	case http.StatusNotFound:
		return KindNotFound
	case http.StatusConflict:
		return KindConflict
	case http.StatusBadRequest:
		return KindInvalidInput
	}
	return KindUnknown
}

type errorBody struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details"`
}

// decodeError разбирает конверт ошибки. Нечитаемое тело даёт KindUnknown.
func decodeError(status int, body []byte) *Error {
	var env struct {
		Error *errorBody `json:"error"`
	}
	if err := json.Unmarshal(body, &env); err != nil || env.Error == nil || env.Error.Code == "" {
		return &Error{Kind: KindUnknown, Status: status, Message: defaultErrorMessage}
	}

	e := &Error{
		Kind:    kindForCode(env.Error.Code, status),
		Code:    env.Error.Code,
		Message: env.Error.Message,
		Status:  status,
		Details: env.Error.Details,
	}
	if e.Message == "" {
		e.Message = defaultErrorMessage
	}
	if e.Details != nil {
		e.Reason = e.Details["reason"]
		e.Contact = e.Details["contact"]
	}
	return e
}

// localError превращает ошибку локальной проверки в *Error без обращения к сети.
func localError(err error) *Error {
	code := apperror.CodeOf(err)
	if code == "" || code == apperror.ErrCodeInternal {
		code = apperror.ErrCodeValidation
	}
	return &Error{Kind: kindForCode(string(code), 0), Code: string(code), Message: messageOf(err)}
}

func messageOf(err error) string {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return err.Error()
}
