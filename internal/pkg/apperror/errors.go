package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

type ErrorCode string

const (
	ErrCodeNotFound            ErrorCode = "NOT_FOUND"
	ErrCodeUnauthorized        ErrorCode = "UNAUTHORIZED"
	ErrCodeInvalidCredentials  ErrorCode = "INVALID_CREDENTIALS"
	ErrCodeForbidden           ErrorCode = "FORBIDDEN"
	ErrCodeAccountSuspended    ErrorCode = "ACCOUNT_SUSPENDED"
	ErrCodeBadRequest          ErrorCode = "BAD_REQUEST"
	ErrCodeValidation          ErrorCode = "VALIDATION_ERROR"
	ErrCodeInvalidRating       ErrorCode = "INVALID_RATING"
	ErrCodeConflict            ErrorCode = "CONFLICT"
	ErrCodeEmailTaken          ErrorCode = "EMAIL_TAKEN"
	ErrCodeDuplicatePitch      ErrorCode = "DUPLICATE_PITCH"
	ErrCodeAlreadyReviewed     ErrorCode = "ALREADY_REVIEWED"
	ErrCodePaymentExists       ErrorCode = "PAYMENT_EXISTS"
	ErrCodeInvalidTransition   ErrorCode = "INVALID_TRANSITION"
	ErrCodeInternal            ErrorCode = "INTERNAL_ERROR"
	ErrCodeDatabaseError       ErrorCode = "DATABASE_ERROR"
	ErrCodePaymentGatewayError ErrorCode = "PAYMENT_GATEWAY_ERROR"
)

type AppError struct {
	Code       ErrorCode
	Message    string
	HTTPStatus int
	Details    map[string]string
	Cause      error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is сравнивает ошибки по коду, чтобы errors.Is работал с сентинелами.
func (e *AppError) Is(target error) bool {
	var t *AppError
	if !errors.As(target, &t) {
		return false
	}
	return e.Code == t.Code && (t.Message == "" || e.Message == t.Message)
}

func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: codeToHTTPStatus(code),
	}
}

func Wrap(err error, code ErrorCode, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: codeToHTTPStatus(code),
		Cause:      err,
	}
}

// WithDetail возвращает копию ошибки с дополнительным полем details.
func (e *AppError) WithDetail(key, value string) *AppError {
	cp := *e
	cp.Details = make(map[string]string, len(e.Details)+1)
	for k, v := range e.Details {
		cp.Details[k] = v
	}
	cp.Details[key] = value
	return &cp
}

// Suspended строит ошибку блокировки аккаунта с причиной и контактом для обжалования.
func Suspended(reason, contact string) *AppError {
	err := New(ErrCodeAccountSuspended, "аккаунт заблокирован, действие недоступно")
	if reason != "" {
		err = err.WithDetail("reason", reason)
	}
	if contact != "" {
		err = err.WithDetail("contact", contact)
	}
	return err
}

func codeToHTTPStatus(code ErrorCode) int {
	switch code {
	case ErrCodeNotFound:
		return http.StatusNotFound
	case ErrCodeUnauthorized, ErrCodeInvalidCredentials:
		return http.StatusUnauthorized
	case ErrCodeForbidden, ErrCodeAccountSuspended:
		return http.StatusForbidden
	case ErrCodeBadRequest, ErrCodeValidation, ErrCodeInvalidRating:
		return http.StatusBadRequest
	case ErrCodeConflict, ErrCodeEmailTaken, ErrCodeDuplicatePitch,
		ErrCodeAlreadyReviewed, ErrCodePaymentExists, ErrCodeInvalidTransition:
		return http.StatusConflict
	case ErrCodePaymentGatewayError:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// CodeOf возвращает код ошибки или INTERNAL_ERROR для неизвестных ошибок.
func CodeOf(err error) ErrorCode {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ErrCodeInternal
}

func IsNotFound(err error) bool {
	return CodeOf(err) == ErrCodeNotFound
}

func IsForbidden(err error) bool {
	return CodeOf(err) == ErrCodeForbidden
}

func IsValidation(err error) bool {
	return CodeOf(err) == ErrCodeValidation
}

func IsInvalidTransition(err error) bool {
	return CodeOf(err) == ErrCodeInvalidTransition
}

var (
	ErrRequestNotFound      = New(ErrCodeNotFound, "заявка не найдена")
	ErrPitchNotFound        = New(ErrCodeNotFound, "питч не найден")
	ErrPaymentNotFound      = New(ErrCodeNotFound, "платёж не найден")
	ErrProviderNotFound     = New(ErrCodeNotFound, "исполнитель не найден")
	ErrNotificationNotFound = New(ErrCodeNotFound, "уведомление не найдено")
	ErrUserNotFound         = New(ErrCodeNotFound, "пользователь не найден")
	ErrUnauthorized         = New(ErrCodeUnauthorized, "требуется авторизация")
	ErrForbidden            = New(ErrCodeForbidden, "недостаточно прав")
	ErrInvalidCredentials   = New(ErrCodeInvalidCredentials, "неверные учетные данные")
	ErrEmailTaken           = New(ErrCodeEmailTaken, "email уже зарегистрирован")
	ErrDuplicatePitch       = New(ErrCodeDuplicatePitch, "вы уже отправили питч на эту заявку")
	ErrAlreadyReviewed      = New(ErrCodeAlreadyReviewed, "отзыв по этой заявке уже оставлен")
	ErrPaymentExists        = New(ErrCodePaymentExists, "по заявке уже есть активный платёж")
)
