package utils

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

// ErrorKind mengelompokkan error aplikasi ke dalam taksonomi tetap.
type ErrorKind int

const (
	ErrKindValidation ErrorKind = iota
	ErrKindAuth
	ErrKindNotFound
	ErrKindConflict
	ErrKindProviderValidation
	ErrKindProviderTransient
	ErrKindInternal
)

// AppError adalah error aplikasi dengan kind yang bisa dipetakan ke HTTP status.
type AppError struct {
	Kind    ErrorKind
	Message string
	// Fields berisi error per-field dari provider (hanya untuk ProviderValidation)
	Fields map[string]string
	Err    error
}

func (e *AppError) Error() string {
	if len(e.Fields) > 0 {
		keys := make([]string, 0, len(e.Fields))
		for k := range e.Fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
		}
		return e.Message + " (" + strings.Join(parts, "; ") + ")"
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Retryable -> true hanya untuk kegagalan provider yang bersifat sementara.
func (e *AppError) Retryable() bool {
	return e.Kind == ErrKindProviderTransient
}

func NewValidationError(msg string) *AppError {
	return &AppError{Kind: ErrKindValidation, Message: msg}
}

func NewAuthError(msg string) *AppError {
	return &AppError{Kind: ErrKindAuth, Message: msg}
}

func NewNotFoundError(msg string) *AppError {
	return &AppError{Kind: ErrKindNotFound, Message: msg}
}

func NewConflictError(msg string) *AppError {
	return &AppError{Kind: ErrKindConflict, Message: msg}
}

// NewProviderValidationError -> provider menolak request karena data tidak valid (jangan retry)
func NewProviderValidationError(msg string, fields map[string]string) *AppError {
	return &AppError{Kind: ErrKindProviderValidation, Message: msg, Fields: fields}
}

// NewProviderTransientError -> provider gagal sementara (network/5xx), boleh retry
func NewProviderTransientError(msg string, err error) *AppError {
	return &AppError{Kind: ErrKindProviderTransient, Message: msg, Err: err}
}

func NewInternalError(err error) *AppError {
	return &AppError{Kind: ErrKindInternal, Message: "internal error", Err: err}
}

// AsAppError membuka AppError dari error chain.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// IsRetryable melaporkan apakah error layak di-retry.
func IsRetryable(err error) bool {
	if appErr, ok := AsAppError(err); ok {
		return appErr.Retryable()
	}
	return false
}

// HTTPStatus memetakan error ke HTTP status code.
func HTTPStatus(err error) int {
	appErr, ok := AsAppError(err)
	if !ok {
		return http.StatusInternalServerError
	}
	switch appErr.Kind {
	case ErrKindValidation:
		return http.StatusBadRequest
	case ErrKindAuth:
		return http.StatusUnauthorized
	case ErrKindNotFound:
		return http.StatusNotFound
	case ErrKindConflict:
		return http.StatusConflict
	case ErrKindProviderValidation:
		return http.StatusUnprocessableEntity
	case ErrKindProviderTransient:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
