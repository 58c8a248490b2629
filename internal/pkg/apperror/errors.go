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
	ErrCodeForbidden           ErrorCode = "FORBIDDEN"
	ErrCodeBadRequest          ErrorCode = "BAD_REQUEST"
	ErrCodeValidation          ErrorCode = "VALIDATION_ERROR"
	ErrCodeAlreadyExists       ErrorCode = "ALREADY_EXISTS"
	ErrCodeInvalidState        ErrorCode = "INVALID_STATE"
	ErrCodeRateLimited         ErrorCode = "RATE_LIMITED"
	ErrCodeInsufficientBalance ErrorCode = "INSUFFICIENT_BALANCE"
	ErrCodeExceedsBalance      ErrorCode = "EXCEEDS_BALANCE"
	ErrCodeInvalidReferrer     ErrorCode = "INVALID_REFERRER"
	ErrCodeNoPendingRequest    ErrorCode = "NO_PENDING_REQUEST"
	ErrCodeInternal            ErrorCode = "INTERNAL_ERROR"
)

type AppError struct {
	Code       ErrorCode
	Message    string
	HTTPStatus int
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

func codeToHTTPStatus(code ErrorCode) int {
	switch code {
	case ErrCodeNotFound:
		return http.StatusNotFound
	case ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case ErrCodeForbidden:
		return http.StatusForbidden
	case ErrCodeBadRequest, ErrCodeValidation, ErrCodeInsufficientBalance,
		ErrCodeExceedsBalance, ErrCodeInvalidReferrer, ErrCodeNoPendingRequest:
		return http.StatusBadRequest
	case ErrCodeAlreadyExists, ErrCodeInvalidState:
		return http.StatusConflict
	case ErrCodeRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// Is проверяет, что ошибка — AppError с указанным кодом.
func Is(err error, code ErrorCode) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == code
}

func IsNotFound(err error) bool   { return Is(err, ErrCodeNotFound) }
func IsForbidden(err error) bool  { return Is(err, ErrCodeForbidden) }
func IsValidation(err error) bool { return Is(err, ErrCodeValidation) }

// HTTPStatusOf возвращает статус ответа для ошибки; для неизвестных — 500.
func HTTPStatusOf(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.HTTPStatus
	}
	return http.StatusInternalServerError
}

var (
	ErrUserNotFound       = New(ErrCodeNotFound, "пользователь не найден")
	ErrBidNotFound        = New(ErrCodeNotFound, "заявка не найдена")
	ErrSubmissionNotFound = New(ErrCodeNotFound, "работа не найдена")
	ErrUnauthorized       = New(ErrCodeUnauthorized, "требуется авторизация")
	ErrForbidden          = New(ErrCodeForbidden, "недостаточно прав")
	ErrInvalidCredentials = New(ErrCodeUnauthorized, "неверные учетные данные")

	ErrUserAlreadyExists       = New(ErrCodeAlreadyExists, "username или email уже зарегистрирован")
	ErrSubmissionAlreadyExists = New(ErrCodeAlreadyExists, "по этой заявке работа уже отправлена")
	ErrInvalidReferrer         = New(ErrCodeInvalidReferrer, "реферер не найден или неактивен")

	ErrBidNotPending        = New(ErrCodeInvalidState, "заявка уже рассмотрена")
	ErrBidNotApproved       = New(ErrCodeInvalidState, "отправлять работу можно только по одобренной заявке")
	ErrSubmissionReviewed   = New(ErrCodeInvalidState, "работа уже рассмотрена")
	ErrAlreadyPremium       = New(ErrCodeInvalidState, "премиум-пакет уже подключён")
	ErrWithdrawalPending    = New(ErrCodeInvalidState, "заявка на вывод уже ожидает рассмотрения")
	ErrNoPendingWithdrawal  = New(ErrCodeNoPendingRequest, "нет ожидающей заявки на вывод")
	ErrBidLimitReached      = New(ErrCodeRateLimited, "лимит заявок: не более 5 за 48 часов")
	ErrInsufficientBalance  = New(ErrCodeInsufficientBalance, "недостаточно средств на балансе")
	ErrWithdrawalTooLarge   = New(ErrCodeExceedsBalance, "нельзя вывести больше доступного баланса")
	ErrPremiumRequired      = New(ErrCodeForbidden, "для подачи заявок нужен премиум-пакет")
	ErrNotEnoughReferrals   = New(ErrCodeForbidden, "для подачи заявок нужно минимум 2 прямых реферала")
	ErrBidOwnershipMismatch = New(ErrCodeForbidden, "эта заявка принадлежит другому пользователю")
)
